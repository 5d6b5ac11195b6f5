package models

import (
	"time"

	"github.com/amoraapp/ledger/pkg/types"
)

// Profile is the per-user ledger record. Exactly one row exists per
// auth-provider user id; the row is created when the auth provider signals
// user creation and removed when it signals deletion.
type Profile struct {
	ID          string  `gorm:"column:id;type:uuid;primary_key" json:"id"`
	AuthUserID  string  `gorm:"column:auth_user_id;type:varchar(64);not null;uniqueIndex" json:"auth_user_id"`
	DisplayName *string `gorm:"column:display_name;type:varchar(128)" json:"display_name"`
	// Credits is the spendable balance; DeductCredits is the only operation
	// that can lower it and never below zero.
	Credits   int64 `gorm:"column:credits;type:bigint;not null;default:0" json:"credits"`
	IsPremium bool  `gorm:"column:is_premium;not null;default:false" json:"is_premium"`
	// PremiumGrantedBy records which mechanism granted premium. Manual and
	// lifetime grants take precedence over subscription sync.
	PremiumGrantedBy       *types.PremiumGrantType `gorm:"column:premium_granted_by;type:varchar(32)" json:"premium_granted_by"`
	PremiumGrantedAt       *time.Time              `gorm:"column:premium_granted_at;default:null" json:"premium_granted_at"`
	PremiumExpiresAt       *time.Time              `gorm:"column:premium_expires_at;default:null" json:"premium_expires_at"`
	HasCompletedOnboarding bool                    `gorm:"column:has_completed_onboarding;not null;default:false" json:"has_completed_onboarding"`
	CreatedAt              time.Time               `json:"created_at"`
	UpdatedAt              time.Time               `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profile"
}

// PremiumActive reports whether the premium flag is effective at now,
// honoring the expiry stamped on time-boxed manual grants.
func (p *Profile) PremiumActive(now time.Time) bool {
	if p == nil || !p.IsPremium {
		return false
	}
	if p.PremiumExpiresAt != nil && !p.PremiumExpiresAt.After(now) {
		return false
	}
	return true
}
