package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"checkout-service/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrchestrator(t *testing.T, mux *http.ServeMux) *client.Orchestrator {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return client.NewOrchestrator(srv.URL+"/", 5*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestOrchestrator_PaymentConfigAndItem(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/payment/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"pk":"pk_test_123","country":"US","defaultCurrency":"usd","supportedCurrencies":["usd","eur"]}`)
	})
	mux.HandleFunc("/item/2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"2","title":"The Making of Prince of Persia: Journals 1985-1993","amount":2500}`)
	})
	o := newOrchestrator(t, mux)

	cfg, err := o.PaymentConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pk_test_123", cfg.PublishableKey)
	assert.Equal(t, []string{"usd", "eur"}, cfg.SupportedCurrencies)

	item, err := o.Item(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), item.Amount)
}

func TestOrchestrator_InitPayment(t *testing.T) {
	var body map[string]interface{}
	mux := http.NewServeMux()
	mux.HandleFunc("/init-payment", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, `{"pi":{"id":"pi_123","amount":2300,"currency":"usd","status":"requires_payment_method","client_secret":"pi_123_secret_abc"}}`)
	})
	o := newOrchestrator(t, mux)

	pi, err := o.InitPayment(context.Background(), "1", "usd")
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"item": "1", "currency": "usd"}, body)
	assert.Equal(t, "pi_123", pi.ID)
	assert.Equal(t, "pi_123_secret_abc", pi.ClientSecret)
}

func TestOrchestrator_UpdateIntent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/update-intent", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pi_123", req["pi"])
		assert.Equal(t, "pi_123_secret_abc", req["clientSecret"])
		assert.Equal(t, "a@b.com", req["email"])
		writeJSON(w, http.StatusOK, `{"clientSecret":"pi_123_secret_abc"}`)
	})
	o := newOrchestrator(t, mux)

	secret, err := o.UpdateIntent(context.Background(), "pi_123", "pi_123_secret_abc", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret_abc", secret)
}

func TestOrchestrator_ErrorResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/init-payment", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":"Invalid amount or item"}`)
	})
	mux.HandleFunc("/item/9", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	})
	o := newOrchestrator(t, mux)

	_, err := o.InitPayment(context.Background(), "999", "")
	var statusErr *client.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, "Invalid amount or item", statusErr.Message)

	_, err = o.Item(context.Background(), "9")
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "upstream down", statusErr.Message)
}
