package webhook

import (
	"github.com/amoraapp/ledger/internal/app/service/billing"
	"github.com/amoraapp/ledger/pkg/types"
)

// EventParser is the normalized view of one verified webhook delivery.
// Each billing platform ships its own implementation; the handler only sees
// this interface.
type EventParser interface {
	Platform() types.BillingPlatform
	EventID() string
	EventType() string
	// UserID is the auth-provider user id the event resolves to. Empty when
	// the platform payload carries no user reference.
	UserID() string
	// Data returns the decoded payload for audit logging.
	Data() any
	// SubscriptionChange extracts subscription state when the event is a
	// subscription lifecycle event.
	SubscriptionChange() (*billing.UpsertSubscriptionArgs, bool)
	// OrderPaid extracts order data when the event is a paid one-time order.
	OrderPaid() (*billing.InsertOrderArgs, bool)
}
