package services

import (
	"context"
	"strings"

	"checkout-service/apperrors"
	"checkout-service/models"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/charge"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"go.uber.org/zap"
)

// PaymentGateway is the only component that talks to the payment processor.
// Every call moves money-related state, so none of them are retried.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (*models.PaymentIntent, error)
	AttachReceiptEmail(ctx context.Context, intentID, email string) (string, error)
	ListCharges(ctx context.Context, intentID string) ([]models.Charge, error)
}

type StripeService struct {
	intents paymentintent.Client
	charges charge.Client
}

// NewStripeService talks to the live Stripe API with network retries disabled.
func NewStripeService(secretKey string, logger *zap.Logger) *StripeService {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     logger.Sugar(),
	})
	return NewStripeServiceWithBackend(secretKey, backend)
}

// NewStripeServiceWithBackend is used to point the gateway at a stub API.
func NewStripeServiceWithBackend(secretKey string, backend stripe.Backend) *StripeService {
	return &StripeService{
		intents: paymentintent.Client{B: backend, Key: secretKey},
		charges: charge.Client{B: backend, Key: secretKey},
	}
}

func (s *StripeService) CreateIntent(ctx context.Context, amount int64, currency string) (*models.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(strings.ToLower(currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := s.intents.New(params)
	if err != nil {
		return nil, apperrors.Gateway(err)
	}
	return toPaymentIntent(pi), nil
}

// AttachReceiptEmail stores the buyer's email on the intent metadata and
// returns the intent's client secret.
func (s *StripeService) AttachReceiptEmail(ctx context.Context, intentID, email string) (string, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddMetadata(models.MetadataReceiptEmail, email)

	pi, err := s.intents.Update(intentID, params)
	if err != nil {
		return "", apperrors.Gateway(err)
	}
	return pi.ClientSecret, nil
}

// ListCharges returns the intent's charges in the order the processor lists them.
func (s *StripeService) ListCharges(ctx context.Context, intentID string) ([]models.Charge, error) {
	params := &stripe.ChargeListParams{PaymentIntent: stripe.String(intentID)}
	params.Context = ctx

	var out []models.Charge
	it := s.charges.List(params)
	for it.Next() {
		out = append(out, toCharge(it.Charge()))
	}
	if err := it.Err(); err != nil {
		return nil, apperrors.Gateway(err)
	}
	return out, nil
}

func toPaymentIntent(pi *stripe.PaymentIntent) *models.PaymentIntent {
	return &models.PaymentIntent{
		ID:           pi.ID,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		ClientSecret: pi.ClientSecret,
		Metadata:     pi.Metadata,
	}
}

func toCharge(ch *stripe.Charge) models.Charge {
	c := models.Charge{
		ID:             ch.ID,
		Status:         string(ch.Status),
		AmountCaptured: ch.AmountCaptured,
		Currency:       string(ch.Currency),
		ReceiptURL:     ch.ReceiptURL,
		Metadata:       ch.Metadata,
	}
	if ch.BillingDetails != nil {
		c.BillingEmail = ch.BillingDetails.Email
	}
	if ch.PaymentIntent != nil {
		c.PaymentIntent = ch.PaymentIntent.ID
	}
	return c
}
