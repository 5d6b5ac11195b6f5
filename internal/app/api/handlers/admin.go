package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amoraapp/ledger/internal/app/service/billing"
	"github.com/amoraapp/ledger/internal/app/service/credits"
	"github.com/amoraapp/ledger/internal/app/service/premium"
	"github.com/amoraapp/ledger/internal/app/service/profile"
	"github.com/amoraapp/ledger/internal/app/service/stats"
	"github.com/amoraapp/ledger/pkg/response"
	"github.com/amoraapp/ledger/pkg/types"
)

type GrantPremiumRequest struct {
	UserID       string                 `json:"user_id" binding:"required"`
	GrantType    types.PremiumGrantType `json:"grant_type" binding:"required"`
	DurationDays *int                   `json:"duration_days"`
}

// @Summary      Grant Premium (Admin)
// @Description  Applies a manual or lifetime premium grant to a user.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body GrantPremiumRequest true "Grant request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/grant_premium [post]
func ApiGrantPremium(premiumSvc *premium.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GrantPremiumRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := premiumSvc.Grant(c.Request.Context(), req.UserID, req.GrantType, req.DurationDays); err != nil {
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

type RevokePremiumRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// @Summary      Revoke Premium (Admin)
// @Description  Clears a manual or lifetime grant. Subscription-based premium cannot be revoked here.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body RevokePremiumRequest true "Revoke request"
// @Success      200  {object}  handlers.RespRevokePremium
// @Router       /api/v1/admin/revoke_premium [post]
func ApiRevokePremium(premiumSvc *premium.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RevokePremiumRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := premiumSvc.Revoke(c.Request.Context(), req.UserID)
		if err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, "profile not found"))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type AddBonusCreditsRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
}

// @Summary      Add Bonus Credits (Admin)
// @Description  Grants promotional credits to a user.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body AddBonusCreditsRequest true "Bonus credits request"
// @Success      200  {object}  handlers.RespCreditMutation
// @Router       /api/v1/admin/add_bonus_credits [post]
func ApiAddBonusCredits(creditsSvc *credits.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddBonusCreditsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		balance, err := creditsSvc.AddBonusCredits(c.Request.Context(), req.UserID, req.Amount)
		if err != nil {
			creditErrorResponse(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&CreditMutationResponse{Balance: balance, Amount: req.Amount}))
	}
}

// @Summary      List Orders (Admin)
// @Description  Retrieves a paginated and filterable list of recorded orders.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body billing.ScanOrdersRequest true "List request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespOrderList
// @Router       /api/v1/admin/list_orders [post]
func ApiListOrders(billingSvc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req billing.ScanOrdersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := billingSvc.ScanOrders(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Get Overview (Admin)
// @Description  Returns ledger-wide counters for the admin dashboard.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespStatsOverview
// @Router       /api/v1/admin/stats [get]
func ApiGetStats(statsSvc *stats.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := statsSvc.GetOverview(c.Request.Context(), time.Now())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, premiumSvc *premium.Service, creditsSvc *credits.Service, billingSvc *billing.Service, statsSvc *stats.Service) {
	r.POST("/grant_premium", ApiGrantPremium(premiumSvc))
	r.POST("/revoke_premium", ApiRevokePremium(premiumSvc))
	r.POST("/add_bonus_credits", ApiAddBonusCredits(creditsSvc))
	r.POST("/list_orders", ApiListOrders(billingSvc))
	r.GET("/stats", ApiGetStats(statsSvc))
}
