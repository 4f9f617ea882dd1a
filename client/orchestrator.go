package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"checkout-service/config"
	"checkout-service/models"
)

// Backend is the checkout server as seen by the payment controller.
type Backend interface {
	PaymentConfig(ctx context.Context) (*config.ClientConfig, error)
	Item(ctx context.Context, id string) (*models.CatalogItem, error)
	InitPayment(ctx context.Context, itemID, currency string) (*models.PaymentIntent, error)
	UpdateIntent(ctx context.Context, intentID, clientSecret, email string) (string, error)
}

// StatusError is a non-2xx answer from the checkout server.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("checkout server: status=%d: %s", e.StatusCode, e.Message)
}

// Orchestrator talks JSON to a running checkout server.
type Orchestrator struct {
	baseURL string
	client  *http.Client
}

func NewOrchestrator(baseURL string, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL is the server root that success paths are resolved against.
func (o *Orchestrator) BaseURL() string {
	return o.baseURL
}

func (o *Orchestrator) PaymentConfig(ctx context.Context) (*config.ClientConfig, error) {
	var cfg config.ClientConfig
	if err := o.do(ctx, http.MethodGet, "/payment/config", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (o *Orchestrator) Item(ctx context.Context, id string) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := o.do(ctx, http.MethodGet, "/item/"+url.PathEscape(id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (o *Orchestrator) InitPayment(ctx context.Context, itemID, currency string) (*models.PaymentIntent, error) {
	var resp models.InitPaymentResponse
	req := models.InitPaymentRequest{Item: itemID, Currency: currency}
	if err := o.do(ctx, http.MethodPost, "/init-payment", req, &resp); err != nil {
		return nil, err
	}
	return &resp.PI, nil
}

func (o *Orchestrator) UpdateIntent(ctx context.Context, intentID, clientSecret, email string) (string, error) {
	var resp models.UpdateIntentResponse
	req := models.UpdateIntentRequest{PI: intentID, ClientSecret: clientSecret, Email: email}
	if err := o.do(ctx, http.MethodPost, "/update-intent", req, &resp); err != nil {
		return "", err
	}
	return resp.ClientSecret, nil
}

func (o *Orchestrator) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, o.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

func decodeJSON(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(raw))
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
