package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amoraapp/ledger/internal/app/service/authevents"
	wh "github.com/amoraapp/ledger/internal/app/service/webhook"
	"github.com/amoraapp/ledger/pkg/logctx"
	"github.com/amoraapp/ledger/pkg/response"
	"github.com/amoraapp/ledger/pkg/types"
)

// billingWebhook responds 401 on verification failure and 5xx on handling
// failure so the platform's redelivery only retries events we actually
// failed to process.
func billingWebhook(h *wh.Handler, platform types.BillingPlatform) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logctx.FromGin(c, h.Logger)
		log.Infow("webhook_received", "platform", platform)

		if err := h.HandleEvent(c, platform); err != nil {
			log.Errorw("webhook_handle_error", "platform", platform, "error", err.Error())
			if errors.Is(err, wh.ErrVerification) {
				c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Polar Webhook
// @Description  Handles Polar webhook deliveries signed per the Standard Webhooks spec.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/webhook/polar [post]
func ApiPolarWebhook(h *wh.Handler) gin.HandlerFunc {
	return billingWebhook(h, types.BillingPlatformPolar)
}

// @Summary      RevenueCat Webhook
// @Description  Handles RevenueCat webhook deliveries authorized via a static bearer token.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/webhook/revenuecat [post]
func ApiRevenueCatWebhook(h *wh.Handler) gin.HandlerFunc {
	return billingWebhook(h, types.BillingPlatformRevenueCat)
}

// @Summary      Auth Lifecycle Webhook
// @Description  Handles user-lifecycle notifications from the auth provider. The request body is a signed JWS payload.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        payload body string true "Signed JWS lifecycle payload"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/webhook/auth [post]
func ApiAuthWebhook(svc *authevents.Service, h *wh.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logctx.FromGin(c, h.Logger)

		body, err := io.ReadAll(c.Request.Body)
		if err != nil || len(body) == 0 {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing payload"))
			return
		}

		if err := svc.HandleToken(c.Request.Context(), string(body)); err != nil {
			log.Errorw("auth_webhook_handle_error", "error", err.Error())
			if errors.Is(err, authevents.ErrVerification) {
				c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterWebhookRoutes(r gin.IRouter, h *wh.Handler, authSvc *authevents.Service) {
	r.POST("/polar", ApiPolarWebhook(h))
	r.POST("/revenuecat", ApiRevenueCatWebhook(h))
	r.POST("/auth", ApiAuthWebhook(authSvc, h))
}
