package credits

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amoraapp/ledger/internal/app/service/profile"
	"github.com/amoraapp/ledger/internal/models"
	"github.com/amoraapp/ledger/pkg/logctx"
	"github.com/amoraapp/ledger/pkg/tool"
	"github.com/amoraapp/ledger/pkg/types"
)

var (
	// ErrInsufficientCredits is returned by DeductCredits when the balance
	// cannot cover the requested amount. The balance is left unchanged.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrInvalidAmount is returned when a non-positive amount is requested.
	ErrInvalidAmount = errors.New("amount must be positive")
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// AddCredits fulfils a purchased credit pack. Returns the new balance.
func (s *Service) AddCredits(ctx context.Context, userID string, amount int64) (int64, error) {
	return s.apply(ctx, userID, amount, types.CreditChangeKindPurchase, "")
}

// AddBonusCredits grants promotional credits (signup, renewal bonus).
// Same contract as AddCredits, recorded under a separate ledger kind.
func (s *Service) AddBonusCredits(ctx context.Context, userID string, amount int64) (int64, error) {
	return s.apply(ctx, userID, amount, types.CreditChangeKindBonus, "")
}

// DeductCredits spends credits on a paid action. The only operation with a
// precondition: it fails with ErrInsufficientCredits when balance < amount.
// Returns the new balance and the amount deducted.
func (s *Service) DeductCredits(ctx context.Context, userID string, amount int64, reason string) (int64, int64, error) {
	newBalance, err := s.apply(ctx, userID, amount, types.CreditChangeKindDeduct, reason)
	if err != nil {
		return 0, 0, err
	}
	return newBalance, amount, nil
}

// RefundCredits reverses a prior deduction after a downstream failure.
// Pairing the refund with the right deduction is the caller's
// responsibility; no linkage is tracked here.
func (s *Service) RefundCredits(ctx context.Context, userID string, amount int64, reason string) (int64, error) {
	return s.apply(ctx, userID, amount, types.CreditChangeKindRefund, reason)
}

// apply performs the single read-modify-write every credit operation shares.
// The surrounding DB transaction serializes concurrent writers on the same
// profile row.
func (s *Service) apply(ctx context.Context, userID string, amount int64, kind types.CreditChangeKind, reason string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var newBalance int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Profile
		if err := tx.Where("auth_user_id = ?", userID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return profile.ErrNotFound
			}
			return fmt.Errorf("failed to load profile: %w", err)
		}

		if kind == types.CreditChangeKindDeduct {
			if p.Credits < amount {
				return ErrInsufficientCredits
			}
			newBalance = p.Credits - amount
		} else {
			newBalance = p.Credits + amount
		}

		if err := tx.Model(&models.Profile{}).Where("id = ?", p.ID).Update("credits", newBalance).Error; err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logctx.FromCtx(ctx, s.log).Infow("credits_changed",
		"user_id", userID, "kind", kind, "amount", amount, "balance", newBalance, "reason", reason)

	// Audit entry is best-effort; the balance change has already committed.
	go func(traceID string) {
		entry := &models.CreditLog{
			ID:           tool.GenerateUUIDV7(),
			UserID:       userID,
			Kind:         kind,
			Amount:       amount,
			BalanceAfter: newBalance,
			Reason:       reason,
			TraceID:      traceID,
		}
		if err := s.db.Save(entry).Error; err != nil {
			s.log.Errorf("failed to save credit log: %v", err)
		}
	}(traceIDFromCtx(ctx))

	return newBalance, nil
}

// GetHistory returns the most recent balance changes for a user.
func (s *Service) GetHistory(ctx context.Context, userID string, limit int) ([]*models.CreditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []*models.CreditLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list credit log: %w", err)
	}
	return entries, nil
}

func traceIDFromCtx(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if tid, ok := ctx.Value("traceID").(string); ok {
		return tid
	}
	return ""
}
