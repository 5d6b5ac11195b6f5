package billing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amoraapp/ledger/internal/app/service/profile"
	"github.com/amoraapp/ledger/internal/models"
	"github.com/amoraapp/ledger/pkg/tool"
	"github.com/amoraapp/ledger/pkg/types"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:billing_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Subscription{}, &models.Order{}))
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, userID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Profile{
		ID:         tool.GenerateUUIDV7(),
		AuthUserID: userID,
	}).Error)
}

func subArgs(userID, subID string, periodStart time.Time) *UpsertSubscriptionArgs {
	periodEnd := periodStart.Add(30 * 24 * time.Hour)
	return &UpsertSubscriptionArgs{
		UserID:                 userID,
		Platform:               types.BillingPlatformPolar,
		PlatformSubscriptionID: subID,
		PlatformCustomerID:     "cus_1",
		PlatformProductID:      "prod_premium",
		Status:                 types.SubscriptionStatusActive,
		CurrentPeriodStart:     &periodStart,
		CurrentPeriodEnd:       &periodEnd,
	}
}

func TestUpsertSubscription_New(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar())
	seedProfile(t, db, "user-1")

	res, err := svc.UpsertSubscription(context.Background(), subArgs("user-1", "sub_1", time.Now()))
	require.NoError(t, err)
	require.True(t, res.IsNew)
	require.False(t, res.IsRenewal)
	require.NotEmpty(t, res.Subscription.ID)
}

func TestUpsertSubscription_UnknownUserRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar())

	_, err := svc.UpsertSubscription(context.Background(), subArgs("nobody", "sub_1", time.Now()))
	require.ErrorIs(t, err, profile.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestUpsertSubscription_Renewal(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar())
	seedProfile(t, db, "user-1")

	start := time.Now().Add(-30 * 24 * time.Hour)
	res, err := svc.UpsertSubscription(context.Background(), subArgs("user-1", "sub_1", start))
	require.NoError(t, err)
	require.True(t, res.IsNew)
	firstID := res.Subscription.ID

	res, err = svc.UpsertSubscription(context.Background(), subArgs("user-1", "sub_1", time.Now()))
	require.NoError(t, err)
	require.False(t, res.IsNew)
	require.True(t, res.IsRenewal)
	require.Equal(t, firstID, res.Subscription.ID)

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUpsertSubscription_SamePeriodNotRenewal(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar())
	seedProfile(t, db, "user-1")

	start := time.Now().Truncate(time.Second)
	_, err := svc.UpsertSubscription(context.Background(), subArgs("user-1", "sub_1", start))
	require.NoError(t, err)

	// Redelivery of the same period (e.g. a status change) is not a renewal.
	args := subArgs("user-1", "sub_1", start)
	args.Status = types.SubscriptionStatusCanceled
	res, err := svc.UpsertSubscription(context.Background(), args)
	require.NoError(t, err)
	require.False(t, res.IsRenewal)
	require.Equal(t, types.SubscriptionStatusCanceled, res.Subscription.Status)
}

func TestUpsertSubscription_OutOfOrderNotRenewal(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar())
	seedProfile(t, db, "user-1")

	_, err := svc.UpsertSubscription(context.Background(), subArgs("user-1", "sub_1", time.Now()))
	require.NoError(t, err)

	stale := subArgs("user-1", "sub_1", time.Now().Add(-60*24*time.Hour))
	res, err := svc.UpsertSubscription(context.Background(), stale)
	require.NoError(t, err)
	require.False(t, res.IsRenewal)
}

func TestUpsertSubscription_InvalidArgs(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar())
	seedProfile(t, db, "user-1")

	args := subArgs("user-1", "", time.Now())
	_, err := svc.UpsertSubscription(context.Background(), args)
	require.Error(t, err)

	args = subArgs("user-1", "sub_1", time.Now())
	args.Platform = "stripe"
	_, err = svc.UpsertSubscription(context.Background(), args)
	require.Error(t, err)
}

func TestInsertOrder_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar())
	seedProfile(t, db, "user-1")

	args := &InsertOrderArgs{
		UserID:            "user-1",
		Platform:          types.BillingPlatformPolar,
		PlatformOrderID:   "ord_1",
		PlatformProductID: "prod_credits_100",
		Amount:            999,
		Currency:          "usd",
		Status:            types.OrderStatusPaid,
	}

	order, err := svc.InsertOrder(context.Background(), args)
	require.NoError(t, err)
	require.NotEmpty(t, order.ID)

	_, err = svc.InsertOrder(context.Background(), args)
	require.ErrorIs(t, err, ErrDuplicateOrder)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestGetOrderByPlatformOrderID_Missing(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar())

	order, err := svc.GetOrderByPlatformOrderID(context.Background(), "ord_missing")
	require.NoError(t, err)
	require.Nil(t, order)
}

func TestHasActiveSubscription(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar())
	seedProfile(t, db, "user-1")

	active, err := svc.HasActiveSubscription(context.Background(), "user-1")
	require.NoError(t, err)
	require.False(t, active)

	_, err = svc.UpsertSubscription(context.Background(), subArgs("user-1", "sub_1", time.Now()))
	require.NoError(t, err)

	active, err = svc.HasActiveSubscription(context.Background(), "user-1")
	require.NoError(t, err)
	require.True(t, active)
}

func TestHasActiveSubscription_ExpiredPeriod(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar())
	seedProfile(t, db, "user-1")

	// Active status but a period end in the past does not entitle.
	args := subArgs("user-1", "sub_1", time.Now().Add(-60*24*time.Hour))
	end := time.Now().Add(-30 * 24 * time.Hour)
	args.CurrentPeriodEnd = &end
	_, err := svc.UpsertSubscription(context.Background(), args)
	require.NoError(t, err)

	active, err := svc.HasActiveSubscription(context.Background(), "user-1")
	require.NoError(t, err)
	require.False(t, active)
}

func TestCanPurchaseSubscription(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar())
	seedProfile(t, db, "user-1")

	res, err := svc.CanPurchaseSubscription(context.Background(), "user-1", types.BillingPlatformRevenueCat)
	require.NoError(t, err)
	require.True(t, res.Allowed)

	_, err = svc.UpsertSubscription(context.Background(), subArgs("user-1", "sub_1", time.Now()))
	require.NoError(t, err)

	// Cross-platform double subscription is denied.
	res, err = svc.CanPurchaseSubscription(context.Background(), "user-1", types.BillingPlatformRevenueCat)
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Equal(t, types.BillingPlatformPolar, res.ActivePlatform)
	require.NotEmpty(t, res.Reason)
}

func TestScanOrders(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar())
	seedProfile(t, db, "user-1")
	seedProfile(t, db, "user-2")

	for i := 0; i < 3; i++ {
		_, err := svc.InsertOrder(context.Background(), &InsertOrderArgs{
			UserID:          "user-1",
			Platform:        types.BillingPlatformPolar,
			PlatformOrderID: fmt.Sprintf("ord_u1_%d", i),
			Amount:          100,
			Status:          types.OrderStatusPaid,
		})
		require.NoError(t, err)
	}
	_, err := svc.InsertOrder(context.Background(), &InsertOrderArgs{
		UserID:          "user-2",
		Platform:        types.BillingPlatformRevenueCat,
		PlatformOrderID: "ord_u2_0",
		Amount:          200,
		Status:          types.OrderStatusPaid,
	})
	require.NoError(t, err)

	res, err := svc.ScanOrders(context.Background(), &ScanOrdersRequest{
		Filters: []*types.CommonFilter{
			{Field: "user_id", Operator: types.CommonFilterOperatorEq, Values: []any{"user-1"}},
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(3), res.Total)
	require.Len(t, res.Items, 3)

	res, err = svc.ScanOrders(context.Background(), &ScanOrdersRequest{Size: 2})
	require.NoError(t, err)
	require.Equal(t, int64(4), res.Total)
	require.Len(t, res.Items, 2)
}
