package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/amoraapp/ledger/pkg/types"
)

type WebhookEventLogStatus string

const (
	WebhookEventLogStatusReceived     WebhookEventLogStatus = "received"
	WebhookEventLogStatusHandled      WebhookEventLogStatus = "handled"
	WebhookEventLogStatusHandleFailed WebhookEventLogStatus = "handle_failed"
)

// WebhookEventLog records every billing-platform webhook delivery together
// with the handling outcome. Deliveries are at-least-once and unordered, so
// the log is the primary tool for debugging duplicate or stale events.
type WebhookEventLog struct {
	ID        string                `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Platform  types.BillingPlatform `gorm:"column:platform;type:varchar(32);not null" json:"platform"`
	UserID    *string               `gorm:"column:user_id;type:varchar(64)" json:"user_id"`
	TraceID   string                `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	EventID   string                `gorm:"column:event_id;type:varchar(128)" json:"event_id"`
	EventType string                `gorm:"column:event_type;type:varchar(64)" json:"event_type"`
	Data      datatypes.JSON        `gorm:"column:data;type:jsonb" json:"data"`
	Result    *datatypes.JSON       `gorm:"column:result;type:jsonb" json:"result"`
	Status    WebhookEventLogStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func (WebhookEventLog) TableName() string { return "webhook_event_log" }
