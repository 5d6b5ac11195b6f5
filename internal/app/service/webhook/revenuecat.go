package webhook

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/amoraapp/ledger/internal/app/service/billing"
	"github.com/amoraapp/ledger/pkg/types"
)

type revenueCatEventBody struct {
	ID                    string         `json:"id"`
	Type                  string         `json:"type"`
	AppUserID             string         `json:"app_user_id"`
	ProductID             string         `json:"product_id"`
	PeriodType            string         `json:"period_type"`
	PurchasedAtMs         int64          `json:"purchased_at_ms"`
	ExpirationAtMs        int64          `json:"expiration_at_ms"`
	EventTimestampMs      int64          `json:"event_timestamp_ms"`
	TransactionID         string         `json:"transaction_id"`
	OriginalTransactionID string         `json:"original_transaction_id"`
	Store                 string         `json:"store"`
	Price                 float64        `json:"price"`
	Currency              string         `json:"currency"`
	SubscriberAttributes  map[string]any `json:"subscriber_attributes"`
}

type revenueCatEvent struct {
	APIVersion string              `json:"api_version"`
	E          revenueCatEventBody `json:"event"`
}

// ParseRevenueCatEvent checks the static Authorization header configured in
// the RevenueCat dashboard and decodes the delivery.
func ParseRevenueCatEvent(token string, headers http.Header, body []byte) (EventParser, error) {
	if token == "" {
		return nil, fmt.Errorf("revenuecat webhook token not configured")
	}
	got := strings.TrimPrefix(headers.Get("Authorization"), "Bearer ")
	if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
		return nil, fmt.Errorf("invalid authorization header")
	}

	var ev revenueCatEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode revenuecat event: %w", err)
	}
	if ev.E.Type == "" {
		return nil, fmt.Errorf("missing event type")
	}
	return &ev, nil
}

func (e *revenueCatEvent) Platform() types.BillingPlatform { return types.BillingPlatformRevenueCat }
func (e *revenueCatEvent) EventID() string                 { return e.E.ID }
func (e *revenueCatEvent) EventType() string               { return e.E.Type }
func (e *revenueCatEvent) UserID() string                  { return e.E.AppUserID }
func (e *revenueCatEvent) Data() any                       { return e }

// subscriptionID prefers the original transaction id, which stays stable
// across renewals of the same subscription.
func (e *revenueCatEvent) subscriptionID() string {
	if e.E.OriginalTransactionID != "" {
		return e.E.OriginalTransactionID
	}
	return e.E.TransactionID
}

func (e *revenueCatEvent) SubscriptionChange() (*billing.UpsertSubscriptionArgs, bool) {
	var status types.SubscriptionStatus
	var canceledAt *time.Time

	switch e.E.Type {
	case "INITIAL_PURCHASE", "RENEWAL", "UNCANCELLATION", "PRODUCT_CHANGE":
		status = types.SubscriptionStatusActive
		if e.E.PeriodType == "TRIAL" {
			status = types.SubscriptionStatusTrialing
		}
	case "CANCELLATION":
		status = types.SubscriptionStatusCanceled
		t := msToTime(e.E.EventTimestampMs)
		canceledAt = t
	case "EXPIRATION":
		status = types.SubscriptionStatusExpired
	case "BILLING_ISSUE":
		status = types.SubscriptionStatusPastDue
	default:
		return nil, false
	}

	return &billing.UpsertSubscriptionArgs{
		UserID:                 e.E.AppUserID,
		Platform:               types.BillingPlatformRevenueCat,
		PlatformSubscriptionID: e.subscriptionID(),
		PlatformCustomerID:     e.E.AppUserID,
		PlatformProductID:      e.E.ProductID,
		Status:                 status,
		CurrentPeriodStart:     msToTime(e.E.PurchasedAtMs),
		CurrentPeriodEnd:       msToTime(e.E.ExpirationAtMs),
		CanceledAt:             canceledAt,
	}, true
}

func (e *revenueCatEvent) OrderPaid() (*billing.InsertOrderArgs, bool) {
	if e.E.Type != "NON_RENEWING_PURCHASE" {
		return nil, false
	}
	return &billing.InsertOrderArgs{
		UserID:            e.E.AppUserID,
		Platform:          types.BillingPlatformRevenueCat,
		PlatformOrderID:   e.E.TransactionID,
		PlatformProductID: e.E.ProductID,
		Amount:            int64(math.Round(e.E.Price * 100)),
		Currency:          e.E.Currency,
		Status:            types.OrderStatusPaid,
	}, true
}

func msToTime(ms int64) *time.Time {
	if ms <= 0 {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}
