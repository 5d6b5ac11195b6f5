package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amoraapp/ledger/pkg/types"
)

func TestProfilePremiumActive(t *testing.T) {
	now := time.Now()

	var nilProfile *Profile
	require.False(t, nilProfile.PremiumActive(now))

	require.False(t, (&Profile{}).PremiumActive(now))
	require.True(t, (&Profile{IsPremium: true}).PremiumActive(now))

	future := now.Add(time.Hour)
	require.True(t, (&Profile{IsPremium: true, PremiumExpiresAt: &future}).PremiumActive(now))

	past := now.Add(-time.Hour)
	require.False(t, (&Profile{IsPremium: true, PremiumExpiresAt: &past}).PremiumActive(now))

	// Exactly at expiry the grant has lapsed.
	require.False(t, (&Profile{IsPremium: true, PremiumExpiresAt: &now}).PremiumActive(now))
}

func TestSubscriptionActive(t *testing.T) {
	now := time.Now()

	var nilSub *Subscription
	require.False(t, nilSub.Active(now))

	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	cases := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{"active no period end", Subscription{Status: types.SubscriptionStatusActive}, true},
		{"active future period end", Subscription{Status: types.SubscriptionStatusActive, CurrentPeriodEnd: &future}, true},
		{"active past period end", Subscription{Status: types.SubscriptionStatusActive, CurrentPeriodEnd: &past}, false},
		{"trialing", Subscription{Status: types.SubscriptionStatusTrialing, CurrentPeriodEnd: &future}, true},
		{"canceled", Subscription{Status: types.SubscriptionStatusCanceled, CurrentPeriodEnd: &future}, false},
		{"expired", Subscription{Status: types.SubscriptionStatusExpired}, false},
		{"past due", Subscription{Status: types.SubscriptionStatusPastDue, CurrentPeriodEnd: &future}, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.sub.Active(now), tc.name)
	}
}

func TestTableNames(t *testing.T) {
	require.Equal(t, "profile", Profile{}.TableName())
	require.Equal(t, "subscription", Subscription{}.TableName())
	require.Equal(t, "orders", Order{}.TableName())
	require.Equal(t, "credit_log", CreditLog{}.TableName())
	require.Equal(t, "premium_log", PremiumLog{}.TableName())
	require.Equal(t, "webhook_event_log", WebhookEventLog{}.TableName())
}
