package types

type BillingPlatform string

const (
	BillingPlatformPolar      BillingPlatform = "polar"
	BillingPlatformRevenueCat BillingPlatform = "revenuecat"
)

func (p BillingPlatform) Valid() bool {
	return p == BillingPlatformPolar || p == BillingPlatformRevenueCat
}

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusExpired  SubscriptionStatus = "expired"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
)

// Entitling reports whether the status alone grants access; the
// subscription row's period bounds are checked separately.
func (s SubscriptionStatus) Entitling() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}

type OrderStatus string

const (
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusFailed   OrderStatus = "failed"
	OrderStatusRefunded OrderStatus = "refunded"
)

type PremiumGrantType string

const (
	PremiumGrantTypeManual       PremiumGrantType = "manual"
	PremiumGrantTypeLifetime     PremiumGrantType = "lifetime"
	PremiumGrantTypeSubscription PremiumGrantType = "subscription"
)

type PremiumChangeReason string

const (
	PremiumChangeReasonGrant            PremiumChangeReason = "grant"
	PremiumChangeReasonRevoke           PremiumChangeReason = "revoke"
	PremiumChangeReasonSubscriptionSync PremiumChangeReason = "subscription_sync"
)

type CreditChangeKind string

const (
	CreditChangeKindBonus    CreditChangeKind = "bonus"
	CreditChangeKindPurchase CreditChangeKind = "purchase"
	CreditChangeKindDeduct   CreditChangeKind = "deduct"
	CreditChangeKindRefund   CreditChangeKind = "refund"
)
