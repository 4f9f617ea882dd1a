package client

import (
	"context"
	"errors"
	"strings"

	"checkout-service/apperrors"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
)

// StripeProcessor confirms intents the way Stripe.js does: with the
// publishable key and the intent's client secret. Card details are a
// payment method id, e.g. the test method pm_card_visa.
type StripeProcessor struct {
	intents           paymentintent.Client
	cardPaymentMethod string
	walletAvailable   bool
}

func NewStripeProcessor(publishableKey, cardPaymentMethod string, walletAvailable bool) *StripeProcessor {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	})
	return NewStripeProcessorWithBackend(publishableKey, cardPaymentMethod, walletAvailable, backend)
}

func NewStripeProcessorWithBackend(publishableKey, cardPaymentMethod string, walletAvailable bool, backend stripe.Backend) *StripeProcessor {
	return &StripeProcessor{
		intents:           paymentintent.Client{B: backend, Key: publishableKey},
		cardPaymentMethod: cardPaymentMethod,
		walletAvailable:   walletAvailable,
	}
}

type cardElement string

func (c cardElement) PaymentMethodID() string { return string(c) }

func (p *StripeProcessor) MountCard(context.Context) (CardElement, error) {
	if p.cardPaymentMethod == "" {
		return nil, errors.New("no card payment method configured")
	}
	return cardElement(p.cardPaymentMethod), nil
}

func (p *StripeProcessor) ConfirmCardPayment(ctx context.Context, clientSecret string, method PaymentMethod, handleActions bool) (*Confirmation, error) {
	intentID, err := intentIDFromSecret(clientSecret)
	if err != nil {
		return nil, err
	}
	pmID := method.ID
	if method.Card != nil {
		pmID = method.Card.PaymentMethodID()
	}

	params := &stripe.PaymentIntentConfirmParams{PaymentMethod: stripe.String(pmID)}
	params.Context = ctx
	params.AddExtra("client_secret", clientSecret)

	pi, err := p.intents.Confirm(intentID, params)
	if err != nil {
		return nil, confirmError(err)
	}

	// there is no browser to run an authentication challenge in
	if handleActions && pi.Status == stripe.PaymentIntentStatusRequiresAction {
		return nil, apperrors.Confirmation("Your card requires authentication, which is not supported here")
	}
	return &Confirmation{IntentID: pi.ID, Status: string(pi.Status)}, nil
}

func (p *StripeProcessor) PaymentRequest(Descriptor) PaymentRequest {
	return walletRequest(p.walletAvailable)
}

type walletRequest bool

func (w walletRequest) CanMakePayment(context.Context) (bool, error) {
	return bool(w), nil
}

// intentIDFromSecret extracts pi_123 from pi_123_secret_abc.
func intentIDFromSecret(secret string) (string, error) {
	id, _, ok := strings.Cut(secret, "_secret_")
	if !ok || id == "" {
		return "", errors.New("malformed client secret")
	}
	return id, nil
}

// confirmError keeps card declines and authentication failures verbatim.
func confirmError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		switch stripeErr.Type {
		case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest:
			return apperrors.Confirmation(stripeErr.Msg)
		}
	}
	return apperrors.Gateway(err)
}

var _ Processor = (*StripeProcessor)(nil)
