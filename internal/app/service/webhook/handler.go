package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/amoraapp/ledger/internal/app/service/billing"
	"github.com/amoraapp/ledger/internal/app/service/credits"
	"github.com/amoraapp/ledger/internal/app/service/eventlog"
	"github.com/amoraapp/ledger/internal/app/service/premium"
	"github.com/amoraapp/ledger/internal/models"
	"github.com/amoraapp/ledger/pkg/config"
	"github.com/amoraapp/ledger/pkg/logctx"
	"github.com/amoraapp/ledger/pkg/types"
)

// ErrVerification marks deliveries that failed signature or token checks.
// Callers respond 401 so the platform does not redeliver a forged request
// forever.
var ErrVerification = errors.New("webhook verification failed")

// Handler turns verified billing-platform events into ledger mutations:
// subscription upserts, premium sync, and credit grants.
type Handler struct {
	cfg        *config.Config
	billingSvc *billing.Service
	creditsSvc *credits.Service
	premiumSvc *premium.Service
	eventLog   *eventlog.Service
	Logger     *zap.SugaredLogger
}

func NewHandler(cfg *config.Config, b *billing.Service, c *credits.Service, p *premium.Service, el *eventlog.Service, log *zap.SugaredLogger) *Handler {
	return &Handler{cfg: cfg, billingSvc: b, creditsSvc: c, premiumSvc: p, eventLog: el, Logger: log}
}

func (h *Handler) HandleEvent(c *gin.Context, platform types.BillingPlatform) (resErr error) {
	body, err := c.GetRawData()
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}

	var parser EventParser
	switch platform {
	case types.BillingPlatformPolar:
		parser, err = ParsePolarEvent(h.cfg.Polar.WebhookSecret, c.Request.Header, body, time.Now())
	case types.BillingPlatformRevenueCat:
		parser, err = ParseRevenueCatEvent(h.cfg.RevenueCat.WebhookToken, c.Request.Header, body)
	default:
		return fmt.Errorf("unsupported platform: %s", platform)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}

	userID := parser.UserID()
	var traceID string
	if v, ok := c.Get("traceID"); ok {
		if s, ok2 := v.(string); ok2 {
			traceID = s
		}
	}
	dataBytes, _ := json.Marshal(parser.Data())

	h.eventLog.Save(c.Request.Context(), &models.WebhookEventLog{
		Platform: platform,
		UserID: func() *string {
			if userID == "" {
				return nil
			}
			return lo.ToPtr(userID)
		}(),
		TraceID:   traceID,
		EventID:   parser.EventID(),
		EventType: parser.EventType(),
		Data:      datatypes.JSON(dataBytes),
		Status:    models.WebhookEventLogStatusReceived,
	})

	defer func() {
		resMap := map[string]any{}
		status := models.WebhookEventLogStatusHandled
		if resErr != nil {
			resMap["error"] = resErr.Error()
			status = models.WebhookEventLogStatusHandleFailed
		}
		resBytes, _ := json.Marshal(resMap)
		h.eventLog.Save(c.Request.Context(), &models.WebhookEventLog{
			Platform: platform,
			UserID: func() *string {
				if userID == "" {
					return nil
				}
				return lo.ToPtr(userID)
			}(),
			TraceID:   traceID,
			EventID:   parser.EventID(),
			EventType: parser.EventType(),
			Data:      datatypes.JSON(dataBytes),
			Result:    func() *datatypes.JSON { j := datatypes.JSON(resBytes); return &j }(),
			Status:    status,
		})
	}()

	ctx := c.Request.Context()
	log := logctx.FromGin(c, h.Logger)

	if subArgs, ok := parser.SubscriptionChange(); ok {
		product := h.cfg.GetPremiumProductByProduct(platform, subArgs.PlatformProductID)
		if product != nil && subArgs.ProductType == nil && product.ProductType != "" {
			subArgs.ProductType = lo.ToPtr(product.ProductType)
		}

		res, err := h.billingSvc.UpsertSubscription(ctx, subArgs)
		if err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		hasActive, err := h.billingSvc.HasActiveSubscription(ctx, subArgs.UserID)
		if err != nil {
			return fmt.Errorf("failed to check active subscriptions: %w", err)
		}
		if err := h.premiumSvc.SyncFromSubscription(ctx, subArgs.UserID, hasActive); err != nil {
			return fmt.Errorf("failed to sync premium: %w", err)
		}

		if product != nil {
			var bonus int64
			switch {
			case res.IsNew:
				bonus = product.InitialBonusCredits
			case res.IsRenewal:
				bonus = product.RenewalBonusCredits
			}
			if bonus > 0 {
				if _, err := h.creditsSvc.AddBonusCredits(ctx, subArgs.UserID, bonus); err != nil {
					return fmt.Errorf("failed to grant bonus credits: %w", err)
				}
			}
		}

		log.Infow("webhook_subscription_handled",
			"event_type", parser.EventType(), "user_id", subArgs.UserID,
			"is_new", res.IsNew, "is_renewal", res.IsRenewal, "has_active", hasActive)
		return nil
	}

	if ordArgs, ok := parser.OrderPaid(); ok {
		if _, err := h.billingSvc.InsertOrder(ctx, ordArgs); err != nil {
			if errors.Is(err, billing.ErrDuplicateOrder) {
				log.Infow("webhook_order_duplicate", "platform_order_id", ordArgs.PlatformOrderID)
				return nil
			}
			return fmt.Errorf("failed to insert order: %w", err)
		}

		if pack := h.cfg.GetCreditPackByProduct(platform, ordArgs.PlatformProductID); pack != nil {
			if _, err := h.creditsSvc.AddCredits(ctx, ordArgs.UserID, pack.Credits); err != nil {
				return fmt.Errorf("failed to add credits: %w", err)
			}
		}

		log.Infow("webhook_order_handled",
			"event_type", parser.EventType(), "user_id", ordArgs.UserID, "platform_order_id", ordArgs.PlatformOrderID)
		return nil
	}

	// Platforms send many event types this ledger does not react to; ack
	// them so they are not redelivered.
	log.Infow("webhook_event_ignored", "event_type", parser.EventType())
	return nil
}
