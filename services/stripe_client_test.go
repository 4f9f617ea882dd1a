package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"checkout-service/apperrors"
	"checkout-service/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"
)

// newStubStripe serves a handler in place of api.stripe.com.
func newStubStripe(t *testing.T, handler http.HandlerFunc) *services.StripeService {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return services.NewStripeServiceWithBackend("sk_test_stub", backend)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestStripeService_CreateIntent(t *testing.T) {
	var form map[string]string
	svc := newStubStripe(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = map[string]string{
			"amount":   r.PostForm.Get("amount"),
			"currency": r.PostForm.Get("currency"),
		}
		writeJSON(w, http.StatusOK, `{"id":"pi_123","object":"payment_intent","amount":2300,"currency":"usd","status":"requires_payment_method","client_secret":"pi_123_secret_abc"}`)
	})

	pi, err := svc.CreateIntent(context.Background(), 2300, "USD")
	require.NoError(t, err)

	assert.Equal(t, "2300", form["amount"])
	assert.Equal(t, "usd", form["currency"])
	assert.Equal(t, "pi_123", pi.ID)
	assert.Equal(t, int64(2300), pi.Amount)
	assert.Equal(t, "usd", pi.Currency)
	assert.Equal(t, "requires_payment_method", pi.Status)
	assert.Equal(t, "pi_123_secret_abc", pi.ClientSecret)
}

func TestStripeService_CreateIntent_ProcessorRejects(t *testing.T) {
	svc := newStubStripe(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":{"type":"invalid_request_error","message":"Invalid currency: xyz"}}`)
	})

	_, err := svc.CreateIntent(context.Background(), 2300, "xyz")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindGateway))
}

func TestStripeService_NoRetryOnServerError(t *testing.T) {
	var calls int32
	svc := newStubStripe(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusInternalServerError, `{"error":{"type":"api_error","message":"boom"}}`)
	})

	_, err := svc.CreateIntent(context.Background(), 2300, "usd")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStripeService_AttachReceiptEmail(t *testing.T) {
	svc := newStubStripe(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payment_intents/pi_123", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "a@b.com", r.PostForm.Get("metadata[receipt_email]"))
		writeJSON(w, http.StatusOK, `{"id":"pi_123","object":"payment_intent","amount":2300,"currency":"usd","client_secret":"pi_123_secret_abc","metadata":{"receipt_email":"a@b.com"}}`)
	})

	secret, err := svc.AttachReceiptEmail(context.Background(), "pi_123", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret_abc", secret)
}

func TestStripeService_ListCharges(t *testing.T) {
	svc := newStubStripe(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/charges", r.URL.Path)
		assert.Equal(t, "pi_123", r.URL.Query().Get("payment_intent"))
		writeJSON(w, http.StatusOK, `{
			"object":"list","url":"/v1/charges","has_more":false,
			"data":[
				{"id":"ch_failed","object":"charge","status":"failed","amount_captured":0,"currency":"usd"},
				{"id":"ch_ok","object":"charge","status":"succeeded","amount_captured":2300,"currency":"usd",
				 "receipt_url":"https://pay.stripe.com/receipts/ch_ok","payment_intent":"pi_123",
				 "billing_details":{"email":"wallet@b.com"},"metadata":{"receipt_email":"a@b.com"}}
			]}`)
	})

	charges, err := svc.ListCharges(context.Background(), "pi_123")
	require.NoError(t, err)
	require.Len(t, charges, 2)

	assert.Equal(t, "failed", charges[0].Status)
	ok := charges[1]
	assert.Equal(t, "ch_ok", ok.ID)
	assert.Equal(t, "pi_123", ok.PaymentIntent)
	assert.Equal(t, int64(2300), ok.AmountCaptured)
	assert.Equal(t, "https://pay.stripe.com/receipts/ch_ok", ok.ReceiptURL)
	assert.Equal(t, "wallet@b.com", ok.BillingEmail)
	assert.Equal(t, "a@b.com", ok.ReceiptEmail())
}

func TestStripeService_ListCharges_Error(t *testing.T) {
	svc := newStubStripe(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"error":{"type":"invalid_request_error","message":"Invalid API Key provided"}}`)
	})

	_, err := svc.ListCharges(context.Background(), "pi_123")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindGateway))
}
