package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amoraapp/ledger/internal/app/service/profile"
	"github.com/amoraapp/ledger/internal/models"
	"github.com/amoraapp/ledger/pkg/logctx"
	"github.com/amoraapp/ledger/pkg/tool"
	"github.com/amoraapp/ledger/pkg/types"
)

// ErrDuplicateOrder is returned by InsertOrder when the platform order id
// was already recorded. Webhook redeliveries hit this path.
var ErrDuplicateOrder = errors.New("order already recorded")

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// UpsertSubscriptionArgs carries the normalized subscription state a webhook
// event resolved to.
type UpsertSubscriptionArgs struct {
	UserID                 string
	Platform               types.BillingPlatform
	PlatformSubscriptionID string
	PlatformCustomerID     string
	PlatformProductID      string
	Status                 types.SubscriptionStatus
	ProductType            *string
	CurrentPeriodStart     *time.Time
	CurrentPeriodEnd       *time.Time
	CanceledAt             *time.Time
	CustomerEmail          string
	CustomerName           string
}

type UpsertResult struct {
	// IsNew is true when this delivery created the subscription row.
	IsNew bool
	// IsRenewal is true when the delivery moved CurrentPeriodStart forward
	// on an existing row. Detection relies on the platform sending period
	// starts monotonically; an out-of-order delivery reports false.
	IsRenewal    bool
	Subscription *models.Subscription
}

// UpsertSubscription creates or patches the row keyed by the
// platform-assigned subscription id. Events referencing a user with no
// profile are rejected rather than recording a dangling row.
func (s *Service) UpsertSubscription(ctx context.Context, args *UpsertSubscriptionArgs) (*UpsertResult, error) {
	if args.PlatformSubscriptionID == "" {
		return nil, fmt.Errorf("platform subscription id is required")
	}
	if !args.Platform.Valid() {
		return nil, fmt.Errorf("unsupported platform: %s", args.Platform)
	}

	result := &UpsertResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Profile{}).Where("auth_user_id = ?", args.UserID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check profile: %w", err)
		}
		if count == 0 {
			return profile.ErrNotFound
		}

		var existing models.Subscription
		err := tx.Where("platform_subscription_id = ?", args.PlatformSubscriptionID).First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load subscription: %w", err)
		}

		sub := models.Subscription{
			UserID:                 args.UserID,
			Platform:               args.Platform,
			PlatformSubscriptionID: args.PlatformSubscriptionID,
			PlatformCustomerID:     args.PlatformCustomerID,
			PlatformProductID:      args.PlatformProductID,
			Status:                 args.Status,
			ProductType:            args.ProductType,
			CurrentPeriodStart:     args.CurrentPeriodStart,
			CurrentPeriodEnd:       args.CurrentPeriodEnd,
			CanceledAt:             args.CanceledAt,
			CustomerEmail:          args.CustomerEmail,
			CustomerName:           args.CustomerName,
		}

		if existing.ID != "" {
			sub.ID = existing.ID
			sub.CreatedAt = existing.CreatedAt
			result.IsRenewal = existing.CurrentPeriodStart != nil &&
				args.CurrentPeriodStart != nil &&
				args.CurrentPeriodStart.After(*existing.CurrentPeriodStart)
		} else {
			sub.ID = tool.GenerateUUIDV7()
			result.IsNew = true
		}

		if err := tx.Save(&sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}
		result.Subscription = &sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("subscription_upserted",
		"user_id", args.UserID,
		"platform", args.Platform,
		"platform_subscription_id", args.PlatformSubscriptionID,
		"status", args.Status,
		"is_new", result.IsNew,
		"is_renewal", result.IsRenewal,
	)
	return result, nil
}

type InsertOrderArgs struct {
	UserID            string
	Platform          types.BillingPlatform
	PlatformOrderID   string
	PlatformProductID string
	Amount            int64
	Currency          string
	Status            types.OrderStatus
}

// InsertOrder appends an order row. The platform order id is unique at the
// data layer, so a redelivered order event fails with ErrDuplicateOrder
// instead of double-recording.
func (s *Service) InsertOrder(ctx context.Context, args *InsertOrderArgs) (*models.Order, error) {
	if args.PlatformOrderID == "" {
		return nil, fmt.Errorf("platform order id is required")
	}

	order := &models.Order{
		ID:                tool.GenerateUUIDV7(),
		UserID:            args.UserID,
		Platform:          args.Platform,
		PlatformOrderID:   args.PlatformOrderID,
		PlatformProductID: args.PlatformProductID,
		Amount:            args.Amount,
		Currency:          args.Currency,
		Status:            args.Status,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Order{}).Where("platform_order_id = ?", args.PlatformOrderID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check order: %w", err)
		}
		if count > 0 {
			return ErrDuplicateOrder
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("order_recorded",
		"user_id", args.UserID, "platform", args.Platform, "platform_order_id", args.PlatformOrderID, "amount", args.Amount)
	return order, nil
}

func (s *Service) GetSubscriptionByPlatformID(ctx context.Context, platformSubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.WithContext(ctx).Where("platform_subscription_id = ?", platformSubscriptionID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

func (s *Service) GetSubscriptionsByUser(ctx context.Context, userID string) ([]*models.Subscription, error) {
	var subs []*models.Subscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

func (s *Service) GetOrderByPlatformOrderID(ctx context.Context, platformOrderID string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Where("platform_order_id = ?", platformOrderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// HasActiveSubscription reports whether any platform currently entitles the
// user.
func (s *Service) HasActiveSubscription(ctx context.Context, userID string) (bool, error) {
	subs, err := s.GetSubscriptionsByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	now := time.Now()
	for _, sub := range subs {
		if sub.Active(now) {
			return true, nil
		}
	}
	return false, nil
}

type CanPurchaseResult struct {
	Allowed        bool                  `json:"allowed"`
	Reason         string                `json:"reason,omitempty"`
	ActivePlatform types.BillingPlatform `json:"active_platform,omitempty"`
}

// CanPurchaseSubscription is the read-side check the app runs before
// starting a checkout: purchasing is denied while any platform holds an
// active subscription, so users cannot end up double-subscribed.
func (s *Service) CanPurchaseSubscription(ctx context.Context, userID string, platform types.BillingPlatform) (*CanPurchaseResult, error) {
	if !platform.Valid() {
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
	subs, err := s.GetSubscriptionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for _, sub := range subs {
		if sub.Active(now) {
			return &CanPurchaseResult{
				Allowed:        false,
				Reason:         fmt.Sprintf("an active subscription already exists on %s", sub.Platform),
				ActivePlatform: sub.Platform,
			}, nil
		}
	}
	return &CanPurchaseResult{Allowed: true}, nil
}
