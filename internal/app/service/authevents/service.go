package authevents

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/amoraapp/ledger/internal/app/service/profile"
	"github.com/amoraapp/ledger/pkg/config"
	"github.com/amoraapp/ledger/pkg/logctx"
)

const (
	EventUserCreated = "user.created"
	EventUserDeleted = "user.deleted"
)

// ErrVerification marks lifecycle payloads that failed JWS verification.
var ErrVerification = errors.New("auth event verification failed")

// LifecycleClaims is the JWS payload the auth provider signs for
// user-lifecycle notifications.
type LifecycleClaims struct {
	jwt.RegisteredClaims
	Type        string  `json:"type"`
	UserID      string  `json:"user_id"`
	DisplayName *string `json:"display_name,omitempty"`
}

// Service ingests user-lifecycle notifications from the auth provider and
// keeps the profile store in sync: creation provisions a zero-credit
// profile, deletion cascades it away.
type Service struct {
	cfg      *config.Config
	profiles *profile.Service
	log      *zap.SugaredLogger
}

func NewService(cfg *config.Config, profiles *profile.Service, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, profiles: profiles, log: log}
}

// HandleToken verifies a compact JWS lifecycle payload and dispatches it.
func (s *Service) HandleToken(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	if claims.UserID == "" {
		return fmt.Errorf("missing user_id in lifecycle event")
	}

	log := logctx.FromCtx(ctx, s.log)
	switch claims.Type {
	case EventUserCreated:
		if _, err := s.profiles.CreateForAuthUser(ctx, claims.UserID, claims.DisplayName); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		log.Infow("auth_event_handled", "type", claims.Type, "user_id", claims.UserID)
		return nil
	case EventUserDeleted:
		if err := s.profiles.DeleteForAuthUser(ctx, claims.UserID); err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		log.Infow("auth_event_handled", "type", claims.Type, "user_id", claims.UserID)
		return nil
	default:
		return fmt.Errorf("unsupported lifecycle event type: %s", claims.Type)
	}
}

func (s *Service) parse(token string) (*LifecycleClaims, error) {
	if s.cfg.AuthWebhook.JWTSecret == "" {
		return nil, fmt.Errorf("auth webhook secret not configured")
	}

	var claims LifecycleClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.AuthWebhook.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	return &claims, nil
}
