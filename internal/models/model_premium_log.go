package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/amoraapp/ledger/pkg/types"
)

// PremiumSnapshot captures the premium fields of a profile at one point in
// time, stored as before/after pairs on PremiumLog.
type PremiumSnapshot struct {
	IsPremium bool                    `json:"is_premium"`
	GrantedBy *types.PremiumGrantType `json:"granted_by"`
	GrantedAt *time.Time              `json:"granted_at"`
	ExpiresAt *time.Time              `json:"expires_at"`
}

type PremiumLog struct {
	ID        string                               `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string                               `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	Reason    types.PremiumChangeReason            `gorm:"column:reason;type:varchar(32);not null" json:"reason"`
	Before    datatypes.JSONType[*PremiumSnapshot] `gorm:"column:before;type:jsonb" json:"before"`
	After     datatypes.JSONType[*PremiumSnapshot] `gorm:"column:after;type:jsonb" json:"after"`
	CreatedAt time.Time                            `json:"created_at"`
}

func (PremiumLog) TableName() string {
	return "premium_log"
}
