package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/amoraapp/ledger/internal/app/service/billing"
	"github.com/amoraapp/ledger/internal/app/service/credits"
	"github.com/amoraapp/ledger/internal/app/service/profile"
	"github.com/amoraapp/ledger/internal/models"
	"github.com/amoraapp/ledger/pkg/response"
	"github.com/amoraapp/ledger/pkg/types"
)

// @Summary      Get Entitlement
// @Description  Returns the credit balance and effective premium state for a user.
// @Tags         Entitlement
// @Produce      json
// @Param        user_id query string true "Auth user id"
// @Success      200  {object}  handlers.RespEntitlement
// @Router       /api/v1/entitlement/balance [get]
func ApiGetEntitlement(profiles *profile.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id"))
			return
		}
		ent, err := profiles.GetEntitlement(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, "profile not found"))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(ent))
	}
}

type SubscriptionItem struct {
	Platform               types.BillingPlatform    `json:"platform"`
	PlatformSubscriptionID string                   `json:"platform_subscription_id"`
	PlatformProductID      string                   `json:"platform_product_id"`
	Status                 types.SubscriptionStatus `json:"status"`
	ProductType            *string                  `json:"product_type"`
	CurrentPeriodEnd       *string                  `json:"current_period_end"`
	CanceledAt             *string                  `json:"canceled_at"`
}

func toSubscriptionItem(m *models.Subscription) *SubscriptionItem {
	item := &SubscriptionItem{
		Platform:               m.Platform,
		PlatformSubscriptionID: m.PlatformSubscriptionID,
		PlatformProductID:      m.PlatformProductID,
		Status:                 m.Status,
		ProductType:            m.ProductType,
	}
	if m.CurrentPeriodEnd != nil {
		item.CurrentPeriodEnd = lo.ToPtr(m.CurrentPeriodEnd.UTC().Format(time.RFC3339))
	}
	if m.CanceledAt != nil {
		item.CanceledAt = lo.ToPtr(m.CanceledAt.UTC().Format(time.RFC3339))
	}
	return item
}

// @Summary      List Subscriptions
// @Description  Returns the subscription rows recorded for a user across platforms.
// @Tags         Entitlement
// @Produce      json
// @Param        user_id query string true "Auth user id"
// @Success      200  {object}  handlers.RespSubscriptionList
// @Router       /api/v1/entitlement/subscriptions [get]
func ApiListSubscriptions(billingSvc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id"))
			return
		}
		subs, err := billingSvc.GetSubscriptionsByUser(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		items := lo.Map(subs, func(m *models.Subscription, _ int) *SubscriptionItem { return toSubscriptionItem(m) })
		c.JSON(http.StatusOK, response.OKT(items))
	}
}

// @Summary      Can Purchase Subscription
// @Description  Checks whether the user may start a subscription checkout on the given platform.
// @Tags         Entitlement
// @Produce      json
// @Param        user_id query string true "Auth user id"
// @Param        platform query string true "Billing platform (polar|revenuecat)"
// @Success      200  {object}  handlers.RespCanPurchase
// @Router       /api/v1/entitlement/can_purchase [get]
func ApiCanPurchase(billingSvc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		platform := types.BillingPlatform(c.Query("platform"))
		if userID == "" || !platform.Valid() {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id or platform"))
			return
		}
		res, err := billingSvc.CanPurchaseSubscription(c.Request.Context(), userID, platform)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type CreditMutationRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
	Reason string `json:"reason"`
}

type CreditMutationResponse struct {
	Balance int64 `json:"balance"`
	Amount  int64 `json:"amount"`
}

func creditErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, profile.ErrNotFound):
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, "profile not found"))
	case errors.Is(err, credits.ErrInsufficientCredits):
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "insufficient credits"))
	case errors.Is(err, credits.ErrInvalidAmount):
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "amount must be positive"))
	default:
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
	}
}

// @Summary      Deduct Credits
// @Description  Spends credits on a paid action. Fails when the balance cannot cover the amount.
// @Tags         Entitlement
// @Accept       json
// @Produce      json
// @Param        request body CreditMutationRequest true "Deduction request"
// @Success      200  {object}  handlers.RespCreditMutation
// @Router       /api/v1/entitlement/deduct_credits [post]
func ApiDeductCredits(creditsSvc *credits.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreditMutationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		balance, deducted, err := creditsSvc.DeductCredits(c.Request.Context(), req.UserID, req.Amount, req.Reason)
		if err != nil {
			creditErrorResponse(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&CreditMutationResponse{Balance: balance, Amount: deducted}))
	}
}

// @Summary      Refund Credits
// @Description  Reverses a prior deduction after the paid action failed downstream.
// @Tags         Entitlement
// @Accept       json
// @Produce      json
// @Param        request body CreditMutationRequest true "Refund request"
// @Success      200  {object}  handlers.RespCreditMutation
// @Router       /api/v1/entitlement/refund_credits [post]
func ApiRefundCredits(creditsSvc *credits.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreditMutationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		balance, err := creditsSvc.RefundCredits(c.Request.Context(), req.UserID, req.Amount, req.Reason)
		if err != nil {
			creditErrorResponse(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&CreditMutationResponse{Balance: balance, Amount: req.Amount}))
	}
}

type CompleteOnboardingRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// @Summary      Complete Onboarding
// @Description  Marks the user's onboarding as completed.
// @Tags         Entitlement
// @Accept       json
// @Produce      json
// @Param        request body CompleteOnboardingRequest true "Onboarding request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/entitlement/complete_onboarding [post]
func ApiCompleteOnboarding(profiles *profile.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CompleteOnboardingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := profiles.SetOnboardingCompleted(c.Request.Context(), req.UserID); err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, "profile not found"))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterEntitlementRoutes(r gin.IRouter, profiles *profile.Service, billingSvc *billing.Service, creditsSvc *credits.Service) {
	r.GET("/balance", ApiGetEntitlement(profiles))
	r.GET("/subscriptions", ApiListSubscriptions(billingSvc))
	r.GET("/can_purchase", ApiCanPurchase(billingSvc))
	r.POST("/deduct_credits", ApiDeductCredits(creditsSvc))
	r.POST("/refund_credits", ApiRefundCredits(creditsSvc))
	r.POST("/complete_onboarding", ApiCompleteOnboarding(profiles))
}
