package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amoraapp/ledger/internal/models"
	"github.com/amoraapp/ledger/pkg/logctx"
	"github.com/amoraapp/ledger/pkg/tool"
	"github.com/amoraapp/ledger/pkg/types"
)

// ErrNotFound is returned by every operation that looks up a profile by
// auth-user id and finds none.
var ErrNotFound = errors.New("profile not found")

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// CreateForAuthUser provisions the ledger row for a newly created auth user:
// zero credits, no premium. Redelivered creation events return the existing
// profile unchanged.
func (s *Service) CreateForAuthUser(ctx context.Context, authUserID string, displayName *string) (*models.Profile, error) {
	if authUserID == "" {
		return nil, fmt.Errorf("authUserID is required")
	}

	var p models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("auth_user_id = ?", authUserID).First(&p).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load profile: %w", err)
		}

		p = models.Profile{
			ID:          tool.GenerateUUIDV7(),
			AuthUserID:  authUserID,
			DisplayName: displayName,
			Credits:     0,
			IsPremium:   false,
		}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		logctx.FromCtx(ctx, s.log).Infow("profile_created", "user_id", authUserID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteForAuthUser removes the profile and its subscription rows when the
// auth provider signals user deletion. Orders are kept as a financial
// record. Deleting an unknown user is a no-op so redeliveries stay clean.
func (s *Service) DeleteForAuthUser(ctx context.Context, authUserID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Profile
		if err := tx.Where("auth_user_id = ?", authUserID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load profile: %w", err)
		}

		if err := tx.Where("user_id = ?", authUserID).Delete(&models.Subscription{}).Error; err != nil {
			return fmt.Errorf("failed to delete subscriptions: %w", err)
		}
		if err := tx.Delete(&p).Error; err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		logctx.FromCtx(ctx, s.log).Infow("profile_deleted", "user_id", authUserID)
		return nil
	})
}

func (s *Service) GetByAuthUserID(ctx context.Context, authUserID string) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.WithContext(ctx).Where("auth_user_id = ?", authUserID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &p, nil
}

// Entitlement is the read-side view application code queries: the credit
// balance plus the effective premium state.
type Entitlement struct {
	Credits                int64                   `json:"credits"`
	IsPremium              bool                    `json:"is_premium"`
	PremiumGrantedBy       *types.PremiumGrantType `json:"premium_granted_by"`
	PremiumExpiresAt       *time.Time              `json:"premium_expires_at"`
	HasActiveSubscription  bool                    `json:"has_active_subscription"`
	HasCompletedOnboarding bool                    `json:"has_completed_onboarding"`
}

func (s *Service) GetEntitlement(ctx context.Context, authUserID string) (*Entitlement, error) {
	p, err := s.GetByAuthUserID(ctx, authUserID)
	if err != nil {
		return nil, err
	}

	var subs []*models.Subscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", authUserID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	now := time.Now()
	hasActive := false
	for _, sub := range subs {
		if sub.Active(now) {
			hasActive = true
			break
		}
	}

	return &Entitlement{
		Credits:                p.Credits,
		IsPremium:              p.PremiumActive(now),
		PremiumGrantedBy:       p.PremiumGrantedBy,
		PremiumExpiresAt:       p.PremiumExpiresAt,
		HasActiveSubscription:  hasActive,
		HasCompletedOnboarding: p.HasCompletedOnboarding,
	}, nil
}

func (s *Service) SetOnboardingCompleted(ctx context.Context, authUserID string) error {
	res := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("auth_user_id = ?", authUserID).
		Update("has_completed_onboarding", true)
	if res.Error != nil {
		return fmt.Errorf("failed to update profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
