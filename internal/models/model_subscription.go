package models

import (
	"time"

	"github.com/amoraapp/ledger/pkg/types"
)

// Subscription mirrors the billing platform's view of one subscription.
// Rows are keyed by the platform-assigned subscription id and patched on
// every webhook delivery; they are never deleted in-band, the status moves
// to canceled/expired instead.
type Subscription struct {
	ID string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	// UserID references Profile.AuthUserID by value, not by foreign key.
	UserID                 string                   `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	Platform               types.BillingPlatform    `gorm:"column:platform;type:varchar(32);not null" json:"platform"`
	PlatformSubscriptionID string                   `gorm:"column:platform_subscription_id;type:varchar(128);not null;uniqueIndex" json:"platform_subscription_id"`
	PlatformCustomerID     string                   `gorm:"column:platform_customer_id;type:varchar(128)" json:"platform_customer_id"`
	PlatformProductID      string                   `gorm:"column:platform_product_id;type:varchar(128)" json:"platform_product_id"`
	Status                 types.SubscriptionStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	ProductType            *string                  `gorm:"column:product_type;type:varchar(64)" json:"product_type"`
	CurrentPeriodStart     *time.Time               `gorm:"column:current_period_start;default:null" json:"current_period_start"`
	CurrentPeriodEnd       *time.Time               `gorm:"column:current_period_end;default:null" json:"current_period_end"`
	CanceledAt             *time.Time               `gorm:"column:canceled_at;default:null" json:"canceled_at"`
	CustomerEmail          string                   `gorm:"column:customer_email;type:varchar(256)" json:"customer_email"`
	CustomerName           string                   `gorm:"column:customer_name;type:varchar(128)" json:"customer_name"`
	CreatedAt              time.Time                `json:"created_at"`
	UpdatedAt              time.Time                `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// Active reports whether the subscription entitles the user at now:
// an entitling status and a period end either unset or in the future.
func (s *Subscription) Active(now time.Time) bool {
	if s == nil || !s.Status.Entitling() {
		return false
	}
	if s.CurrentPeriodEnd != nil && !s.CurrentPeriodEnd.After(now) {
		return false
	}
	return true
}
