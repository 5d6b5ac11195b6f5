package premium

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/amoraapp/ledger/internal/app/service/profile"
	"github.com/amoraapp/ledger/internal/models"
	"github.com/amoraapp/ledger/pkg/logctx"
	"github.com/amoraapp/ledger/pkg/tool"
	"github.com/amoraapp/ledger/pkg/types"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// RevokeResult is a handled business outcome, not an error: revocation of a
// subscription-granted premium is refused so admin action cannot fight live
// billing state.
type RevokeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Grant applies an operator grant. Manual grants with a duration expire via
// PremiumExpiresAt; lifetime grants and open-ended manual grants do not.
func (s *Service) Grant(ctx context.Context, userID string, grantType types.PremiumGrantType, durationDays *int) error {
	if grantType != types.PremiumGrantTypeManual && grantType != types.PremiumGrantTypeLifetime {
		return fmt.Errorf("unsupported grant type: %s", grantType)
	}

	return s.mutate(ctx, userID, types.PremiumChangeReasonGrant, func(p *models.Profile, now time.Time) {
		p.IsPremium = true
		p.PremiumGrantedBy = &grantType
		p.PremiumGrantedAt = &now
		p.PremiumExpiresAt = nil
		if grantType == types.PremiumGrantTypeManual && durationDays != nil {
			expires := now.Add(time.Duration(*durationDays) * 24 * time.Hour)
			p.PremiumExpiresAt = &expires
		}
	})
}

// Revoke clears a manual or lifetime grant. Subscription-derived premium is
// left untouched and reported back as a non-success result; the user must
// cancel the subscription on the billing platform instead.
func (s *Service) Revoke(ctx context.Context, userID string) (*RevokeResult, error) {
	var result *RevokeResult
	err := s.mutateChecked(ctx, userID, types.PremiumChangeReasonRevoke, func(p *models.Profile, now time.Time) bool {
		if p.PremiumGrantedBy == nil {
			result = &RevokeResult{Success: false, Message: "no premium grant to revoke"}
			return false
		}
		if *p.PremiumGrantedBy == types.PremiumGrantTypeSubscription {
			result = &RevokeResult{Success: false, Message: "premium is subscription-based; cancel the subscription instead"}
			return false
		}
		clearPremium(p)
		result = &RevokeResult{Success: true}
		return true
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SyncFromSubscription reconciles the premium flag with live subscription
// state. Manual and lifetime grants are never overridden; for subscription
// or absent grants the sync is idempotent, so duplicate or out-of-order
// webhook deliveries converge on the same profile state.
func (s *Service) SyncFromSubscription(ctx context.Context, userID string, hasActiveSubscription bool) error {
	return s.mutateChecked(ctx, userID, types.PremiumChangeReasonSubscriptionSync, func(p *models.Profile, now time.Time) bool {
		if p.PremiumGrantedBy != nil &&
			*p.PremiumGrantedBy != types.PremiumGrantTypeSubscription {
			return false
		}

		if hasActiveSubscription {
			sub := types.PremiumGrantTypeSubscription
			p.IsPremium = true
			p.PremiumGrantedBy = &sub
			p.PremiumGrantedAt = &now
			// Subscription premium tracks live status, it carries no fixed expiry.
			p.PremiumExpiresAt = nil
		} else {
			clearPremium(p)
		}
		return true
	})
}

func clearPremium(p *models.Profile) {
	p.IsPremium = false
	p.PremiumGrantedBy = nil
	p.PremiumGrantedAt = nil
	p.PremiumExpiresAt = nil
}

func (s *Service) mutate(ctx context.Context, userID string, reason types.PremiumChangeReason, fn func(p *models.Profile, now time.Time)) error {
	return s.mutateChecked(ctx, userID, reason, func(p *models.Profile, now time.Time) bool {
		fn(p, now)
		return true
	})
}

// mutateChecked loads the profile, lets fn decide whether to write, and
// persists the premium fields plus an async audit log when it does.
func (s *Service) mutateChecked(ctx context.Context, userID string, reason types.PremiumChangeReason, fn func(p *models.Profile, now time.Time) bool) error {
	var before, after *models.PremiumSnapshot

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Profile
		if err := tx.Where("auth_user_id = ?", userID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return profile.ErrNotFound
			}
			return fmt.Errorf("failed to load profile: %w", err)
		}

		before = snapshot(&p)
		if !fn(&p, time.Now()) {
			return nil
		}
		after = snapshot(&p)

		updates := map[string]any{
			"is_premium":         p.IsPremium,
			"premium_granted_by": p.PremiumGrantedBy,
			"premium_granted_at": p.PremiumGrantedAt,
			"premium_expires_at": p.PremiumExpiresAt,
		}
		if err := tx.Model(&models.Profile{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update premium fields: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if after == nil {
		return nil
	}

	logctx.FromCtx(ctx, s.log).Infow("premium_changed",
		"user_id", userID, "reason", reason, "is_premium", after.IsPremium)

	go func(b, a *models.PremiumSnapshot) {
		entry := &models.PremiumLog{
			ID:     tool.GenerateUUIDV7(),
			UserID: userID,
			Reason: reason,
			Before: datatypes.NewJSONType(b),
			After:  datatypes.NewJSONType(a),
		}
		if err := s.db.Save(entry).Error; err != nil {
			s.log.Errorf("failed to save premium log: %v", err)
		}
	}(before, after)

	return nil
}

func snapshot(p *models.Profile) *models.PremiumSnapshot {
	return &models.PremiumSnapshot{
		IsPremium: p.IsPremium,
		GrantedBy: p.PremiumGrantedBy,
		GrantedAt: p.PremiumGrantedAt,
		ExpiresAt: p.PremiumExpiresAt,
	}
}
