package authevents

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amoraapp/ledger/internal/app/service/profile"
	"github.com/amoraapp/ledger/internal/models"
	"github.com/amoraapp/ledger/pkg/config"
)

const testJWTSecret = "auth-webhook-secret"

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:authevents_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Subscription{}, &models.Order{}))

	log := zap.NewNop().Sugar()
	cfg := &config.Config{AuthWebhook: config.AuthWebhookConfig{JWTSecret: testJWTSecret}}
	return NewService(cfg, profile.NewService(db, log), log), db
}

func signLifecycleToken(t *testing.T, secret string, claims *LifecycleClaims) string {
	t.Helper()
	claims.IssuedAt = jwt.NewNumericDate(time.Now())
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(5 * time.Minute))
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestHandleToken_UserCreated(t *testing.T) {
	svc, db := setupService(t)

	token := signLifecycleToken(t, testJWTSecret, &LifecycleClaims{
		Type:        EventUserCreated,
		UserID:      "user-1",
		DisplayName: lo.ToPtr("Alex"),
	})
	require.NoError(t, svc.HandleToken(context.Background(), token))

	var p models.Profile
	require.NoError(t, db.Where("auth_user_id = ?", "user-1").First(&p).Error)
	require.Equal(t, int64(0), p.Credits)
	require.Equal(t, "Alex", *p.DisplayName)

	// Redelivery of the same event stays a no-op.
	require.NoError(t, svc.HandleToken(context.Background(), token))
	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestHandleToken_UserDeleted(t *testing.T) {
	svc, db := setupService(t)

	create := signLifecycleToken(t, testJWTSecret, &LifecycleClaims{Type: EventUserCreated, UserID: "user-1"})
	require.NoError(t, svc.HandleToken(context.Background(), create))

	del := signLifecycleToken(t, testJWTSecret, &LifecycleClaims{Type: EventUserDeleted, UserID: "user-1"})
	require.NoError(t, svc.HandleToken(context.Background(), del))

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&count).Error)
	require.Equal(t, int64(0), count)

	// Deleting again is still fine.
	require.NoError(t, svc.HandleToken(context.Background(), del))
}

func TestHandleToken_BadSignature(t *testing.T) {
	svc, _ := setupService(t)

	token := signLifecycleToken(t, "wrong-secret", &LifecycleClaims{Type: EventUserCreated, UserID: "user-1"})
	err := svc.HandleToken(context.Background(), token)
	require.ErrorIs(t, err, ErrVerification)
}

func TestHandleToken_Garbage(t *testing.T) {
	svc, _ := setupService(t)

	err := svc.HandleToken(context.Background(), "not-a-jws")
	require.ErrorIs(t, err, ErrVerification)
}

func TestHandleToken_MissingUserID(t *testing.T) {
	svc, _ := setupService(t)

	token := signLifecycleToken(t, testJWTSecret, &LifecycleClaims{Type: EventUserCreated})
	require.Error(t, svc.HandleToken(context.Background(), token))
}

func TestHandleToken_UnsupportedType(t *testing.T) {
	svc, _ := setupService(t)

	token := signLifecycleToken(t, testJWTSecret, &LifecycleClaims{Type: "user.suspended", UserID: "user-1"})
	require.Error(t, svc.HandleToken(context.Background(), token))
}
