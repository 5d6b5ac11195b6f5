package stats

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amoraapp/ledger/internal/models"
	"github.com/amoraapp/ledger/pkg/types"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Overview is the admin dashboard summary.
type Overview struct {
	TotalProfiles       int64 `json:"total_profiles"`
	PremiumProfiles     int64 `json:"premium_profiles"`
	ActiveSubscriptions int64 `json:"active_subscriptions"`
	OrdersToday         int64 `json:"orders_today"`
	GMVToday            int64 `json:"gmv_today"`
	TotalGMV            int64 `json:"total_gmv"`
}

func (s *Service) GetOverview(ctx context.Context, now time.Time) (*Overview, error) {
	o := &Overview{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Profile{}).Count(&o.TotalProfiles).Error; err != nil {
		return nil, fmt.Errorf("failed to count profiles: %w", err)
	}
	if err := db.Model(&models.Profile{}).Where("is_premium = ?", true).Count(&o.PremiumProfiles).Error; err != nil {
		return nil, fmt.Errorf("failed to count premium profiles: %w", err)
	}

	if err := db.Model(&models.Subscription{}).
		Where("status IN ?", []types.SubscriptionStatus{types.SubscriptionStatusActive, types.SubscriptionStatusTrialing}).
		Where("current_period_end IS NULL OR current_period_end > ?", now).
		Count(&o.ActiveSubscriptions).Error; err != nil {
		return nil, fmt.Errorf("failed to count active subscriptions: %w", err)
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := db.Model(&models.Order{}).
		Where("status = ? AND created_at >= ?", types.OrderStatusPaid, dayStart).
		Count(&o.OrdersToday).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	type sumRow struct{ Total int64 }
	var row sumRow
	if err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("status = ? AND created_at >= ?", types.OrderStatusPaid, dayStart).
		Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to sum daily gmv: %w", err)
	}
	o.GMVToday = row.Total

	if err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("status = ?", types.OrderStatusPaid).
		Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to sum total gmv: %w", err)
	}
	o.TotalGMV = row.Total

	return o, nil
}
