package models

import (
	"time"

	"github.com/amoraapp/ledger/pkg/types"
)

// Order is an append-only record of a one-time purchase (credit packs).
// PlatformOrderID carries a uniqueness constraint so a redelivered order
// webhook cannot be recorded twice.
type Order struct {
	ID                string                `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID            string                `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	Platform          types.BillingPlatform `gorm:"column:platform;type:varchar(32);not null" json:"platform"`
	PlatformOrderID   string                `gorm:"column:platform_order_id;type:varchar(128);not null;uniqueIndex" json:"platform_order_id"`
	PlatformProductID string                `gorm:"column:platform_product_id;type:varchar(128)" json:"platform_product_id"`
	// Amount is in the currency's minor unit (cents).
	Amount    int64             `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Currency  string            `gorm:"column:currency;type:varchar(8)" json:"currency"`
	Status    types.OrderStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}
