package client

import "context"

// Outcomes a native payment sheet must be told about before it closes.
const (
	CompleteSuccess = "success"
	CompleteFail    = "fail"
)

// CardElement is a mounted card field. Its contents never pass through
// the checkout server.
type CardElement interface {
	PaymentMethodID() string
}

// PaymentMethod is what a confirmation pays with: a mounted card field or
// a wallet-provided payment method id.
type PaymentMethod struct {
	ID   string
	Card CardElement
}

// Descriptor describes the payment shown on the native payment sheet.
type Descriptor struct {
	Country           string
	Currency          string
	Label             string
	Amount            int64 // minor units
	RequestPayerEmail bool
}

// PaymentRequest is a prepared native payment sheet.
type PaymentRequest interface {
	CanMakePayment(ctx context.Context) (bool, error)
}

// Confirmation is the intent state after a confirm call.
type Confirmation struct {
	IntentID string
	Status   string
}

// Processor is the payment processor's client library. Declines and failed
// authentication are returned as confirmation errors carrying the
// processor's message.
type Processor interface {
	MountCard(ctx context.Context) (CardElement, error)
	ConfirmCardPayment(ctx context.Context, clientSecret string, method PaymentMethod, handleActions bool) (*Confirmation, error)
	PaymentRequest(d Descriptor) PaymentRequest
}

// CardChange is emitted by the card field on every edit.
type CardChange struct {
	Empty bool
	Error string
}

// PaymentMethodEvent is emitted by the native sheet once the buyer picked a
// payment method. Complete must be called exactly once.
type PaymentMethodEvent struct {
	PayerEmail      string
	PaymentMethodID string
	Complete        func(status string)
}

// UI is the checkout page surface the controller drives.
type UI interface {
	SetPayEnabled(enabled bool)
	SetSpinner(visible bool)
	ShowError(message string)
	ShowRequestButton(hint string)
	HideRequestButton()
	HideCardForm()
	Navigate(path string)
}
