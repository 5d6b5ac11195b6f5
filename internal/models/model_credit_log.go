package models

import (
	"time"

	"github.com/amoraapp/ledger/pkg/types"
)

// CreditLog is an append-only audit trail of balance changes. Entries are
// written asynchronously after the balance mutation commits; a lost entry
// is tolerated, a wrong balance is not.
type CreditLog struct {
	ID           string                 `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID       string                 `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	Kind         types.CreditChangeKind `gorm:"column:kind;type:varchar(32);not null" json:"kind"`
	Amount       int64                  `gorm:"column:amount;type:bigint;not null" json:"amount"`
	BalanceAfter int64                  `gorm:"column:balance_after;type:bigint;not null" json:"balance_after"`
	Reason       string                 `gorm:"column:reason;type:varchar(128)" json:"reason"`
	TraceID      string                 `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	CreatedAt    time.Time              `json:"created_at"`
}

func (CreditLog) TableName() string {
	return "credit_log"
}
