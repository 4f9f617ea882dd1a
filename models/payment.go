package models

// Payment intent statuses as reported by the processor.
const (
	IntentRequiresPaymentMethod = "requires_payment_method"
	IntentRequiresAction        = "requires_action"
	IntentSucceeded             = "succeeded"

	ChargeSucceeded = "succeeded"

	// MetadataReceiptEmail is the intent metadata key holding the buyer's email.
	MetadataReceiptEmail = "receipt_email"
)

// PaymentIntent is the part of the processor's intent the checkout exposes.
type PaymentIntent struct {
	ID           string            `json:"id"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	ClientSecret string            `json:"client_secret"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Charge is a captured (or failed) attempt against a PaymentIntent.
type Charge struct {
	ID             string
	PaymentIntent  string
	Status         string
	AmountCaptured int64
	Currency       string
	ReceiptURL     string
	BillingEmail   string
	Metadata       map[string]string
}

// ReceiptEmail prefers the email attached to the intent over the wallet's billing email.
func (c Charge) ReceiptEmail() string {
	if email := c.Metadata[MetadataReceiptEmail]; email != "" {
		return email
	}
	return c.BillingEmail
}

// Receipt holds the fields rendered on the success page.
type Receipt struct {
	IntentID   string `json:"intent_id"`
	ChargeID   string `json:"charge_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Email      string `json:"email"`
	ReceiptURL string `json:"receipt_url"`
}
