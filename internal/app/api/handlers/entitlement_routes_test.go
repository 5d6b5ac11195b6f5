package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amoraapp/ledger/internal/app/service/billing"
	"github.com/amoraapp/ledger/internal/app/service/credits"
	"github.com/amoraapp/ledger/internal/app/service/profile"
	"github.com/amoraapp/ledger/internal/models"
	"github.com/amoraapp/ledger/pkg/response"
	"github.com/amoraapp/ledger/pkg/tool"
)

func setupEntitlementRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Subscription{}, &models.Order{}, &models.CreditLog{}))

	log := zap.NewNop().Sugar()
	r := gin.New()
	g := r.Group("/api/v1/entitlement")
	RegisterEntitlementRoutes(g, profile.NewService(db, log), billing.NewService(db, log), credits.NewService(db, log))
	return r, db
}

func TestRegisterEntitlementRoutes_RegistersEndpoints(t *testing.T) {
	r, _ := setupEntitlementRouter(t)

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("GET /api/v1/entitlement/balance"))
	require.True(t, contains("GET /api/v1/entitlement/subscriptions"))
	require.True(t, contains("GET /api/v1/entitlement/can_purchase"))
	require.True(t, contains("POST /api/v1/entitlement/deduct_credits"))
	require.True(t, contains("POST /api/v1/entitlement/refund_credits"))
	require.True(t, contains("POST /api/v1/entitlement/complete_onboarding"))
}

func TestApiGetEntitlement(t *testing.T) {
	r, db := setupEntitlementRouter(t)
	require.NoError(t, db.Create(&models.Profile{
		ID:         tool.GenerateUUIDV7(),
		AuthUserID: "user-1",
		Credits:    120,
	}).Error)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/entitlement/balance?user_id=user-1", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var res response.APIResponse[*profile.Entitlement]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, response.APIResponseCodeOK, res.Code)
	require.Equal(t, int64(120), res.Data.Credits)
	require.False(t, res.Data.IsPremium)
}

func TestApiGetEntitlement_NotFound(t *testing.T) {
	r, _ := setupEntitlementRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/entitlement/balance?user_id=nobody", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var res response.APIResponse[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, response.APIResponseCodeNotFound, res.Code)
}

func TestApiDeductCredits(t *testing.T) {
	r, db := setupEntitlementRouter(t)
	require.NoError(t, db.Create(&models.Profile{
		ID:         tool.GenerateUUIDV7(),
		AuthUserID: "user-1",
		Credits:    100,
	}).Error)

	body := []byte(`{"user_id": "user-1", "amount": 30, "reason": "unlock_chat"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/entitlement/deduct_credits", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var res response.APIResponse[*CreditMutationResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, response.APIResponseCodeOK, res.Code)
	require.Equal(t, int64(70), res.Data.Balance)
	require.Equal(t, int64(30), res.Data.Amount)
}

func TestApiDeductCredits_Insufficient(t *testing.T) {
	r, db := setupEntitlementRouter(t)
	require.NoError(t, db.Create(&models.Profile{
		ID:         tool.GenerateUUIDV7(),
		AuthUserID: "user-1",
		Credits:    10,
	}).Error)

	body := []byte(`{"user_id": "user-1", "amount": 30}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/entitlement/deduct_credits", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var res response.APIResponse[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, response.APIResponseCodeBadRequest, res.Code)

	var p models.Profile
	require.NoError(t, db.Where("auth_user_id = ?", "user-1").First(&p).Error)
	require.Equal(t, int64(10), p.Credits)
}
