package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amoraapp/ledger/pkg/types"
)

const testPolarSecret = "whsec_dGVzdC1zaWduaW5nLWtleQ==" // "test-signing-key"

func signPolar(t *testing.T, secret, msgID, timestamp string, body []byte) string {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString(secret[len("whsec_"):])
	require.NoError(t, err)
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.%s", msgID, timestamp, body)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func polarHeaders(t *testing.T, msgID string, sent time.Time, body []byte) http.Header {
	t.Helper()
	ts := strconv.FormatInt(sent.Unix(), 10)
	h := http.Header{}
	h.Set("webhook-id", msgID)
	h.Set("webhook-timestamp", ts)
	h.Set("webhook-signature", signPolar(t, testPolarSecret, msgID, ts, body))
	return h
}

func TestParsePolarEvent_ValidSignature(t *testing.T) {
	now := time.Now()
	body := []byte(`{
		"type": "subscription.created",
		"data": {
			"id": "sub_123",
			"status": "active",
			"product_id": "prod_premium",
			"current_period_start": "2026-08-01T00:00:00Z",
			"current_period_end": "2026-09-01T00:00:00Z",
			"customer": {"id": "cus_1", "email": "a@b.c", "name": "Alex", "external_id": "user-1"}
		}
	}`)

	parser, err := ParsePolarEvent(testPolarSecret, polarHeaders(t, "msg_1", now, body), body, now)
	require.NoError(t, err)
	require.Equal(t, types.BillingPlatformPolar, parser.Platform())
	require.Equal(t, "msg_1", parser.EventID())
	require.Equal(t, "subscription.created", parser.EventType())
	require.Equal(t, "user-1", parser.UserID())

	args, ok := parser.SubscriptionChange()
	require.True(t, ok)
	require.Equal(t, "sub_123", args.PlatformSubscriptionID)
	require.Equal(t, "user-1", args.UserID)
	require.Equal(t, types.SubscriptionStatusActive, args.Status)
	require.Equal(t, "a@b.c", args.CustomerEmail)
	require.NotNil(t, args.CurrentPeriodEnd)

	_, ok = parser.OrderPaid()
	require.False(t, ok)
}

func TestParsePolarEvent_BadSignature(t *testing.T) {
	now := time.Now()
	body := []byte(`{"type": "subscription.created", "data": {"id": "sub_123"}}`)

	headers := polarHeaders(t, "msg_1", now, body)
	headers.Set("webhook-signature", "v1,Zm9yZ2VkLXNpZ25hdHVyZQ==")

	_, err := ParsePolarEvent(testPolarSecret, headers, body, now)
	require.Error(t, err)
}

func TestParsePolarEvent_TamperedBody(t *testing.T) {
	now := time.Now()
	body := []byte(`{"type": "order.paid", "data": {"id": "ord_1", "total_amount": 999}}`)
	headers := polarHeaders(t, "msg_1", now, body)

	tampered := []byte(`{"type": "order.paid", "data": {"id": "ord_1", "total_amount": 99900}}`)
	_, err := ParsePolarEvent(testPolarSecret, headers, tampered, now)
	require.Error(t, err)
}

func TestParsePolarEvent_MissingHeaders(t *testing.T) {
	_, err := ParsePolarEvent(testPolarSecret, http.Header{}, []byte(`{}`), time.Now())
	require.Error(t, err)
}

func TestParsePolarEvent_StaleTimestamp(t *testing.T) {
	now := time.Now()
	body := []byte(`{"type": "subscription.created", "data": {"id": "sub_123"}}`)
	headers := polarHeaders(t, "msg_1", now.Add(-10*time.Minute), body)

	_, err := ParsePolarEvent(testPolarSecret, headers, body, now)
	require.Error(t, err)
}

func TestParsePolarEvent_MetadataUserFallback(t *testing.T) {
	now := time.Now()
	body := []byte(`{
		"type": "order.paid",
		"data": {
			"id": "ord_1",
			"product_id": "prod_credits_100",
			"total_amount": 999,
			"currency": "usd",
			"customer": {"id": "cus_1"},
			"metadata": {"user_id": "user-7"}
		}
	}`)

	parser, err := ParsePolarEvent(testPolarSecret, polarHeaders(t, "msg_1", now, body), body, now)
	require.NoError(t, err)
	require.Equal(t, "user-7", parser.UserID())

	args, ok := parser.OrderPaid()
	require.True(t, ok)
	require.Equal(t, "ord_1", args.PlatformOrderID)
	require.Equal(t, int64(999), args.Amount)
	require.Equal(t, "usd", args.Currency)
	require.Equal(t, types.OrderStatusPaid, args.Status)
}

func TestPolarSubscriptionRevoked_ForcesExpired(t *testing.T) {
	now := time.Now()
	// Revocation payloads can still carry an "active" status snapshot.
	body := []byte(`{
		"type": "subscription.revoked",
		"data": {"id": "sub_123", "status": "active", "customer": {"external_id": "user-1"}}
	}`)

	parser, err := ParsePolarEvent(testPolarSecret, polarHeaders(t, "msg_1", now, body), body, now)
	require.NoError(t, err)

	args, ok := parser.SubscriptionChange()
	require.True(t, ok)
	require.Equal(t, types.SubscriptionStatusExpired, args.Status)
}

func TestMapPolarStatus(t *testing.T) {
	cases := map[string]types.SubscriptionStatus{
		"active":     types.SubscriptionStatusActive,
		"trialing":   types.SubscriptionStatusTrialing,
		"past_due":   types.SubscriptionStatusPastDue,
		"unpaid":     types.SubscriptionStatusPastDue,
		"incomplete": types.SubscriptionStatusPastDue,
		"canceled":   types.SubscriptionStatusCanceled,
		"revoked":    types.SubscriptionStatusExpired,
		"":           types.SubscriptionStatusExpired,
	}
	for in, want := range cases {
		require.Equal(t, want, mapPolarStatus(in), "status %q", in)
	}
}
