package models

import "time"

const (
	EventIntentCreated = "payment_intent_created"
	EventIntentUpdated = "payment_intent_updated"
)

// CheckoutEvent is published to the checkout topic after each intent mutation.
type CheckoutEvent struct {
	Type      string    `json:"type"`
	IntentID  string    `json:"intent_id"`
	ItemID    string    `json:"item_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"` // minor units
	Currency  string    `json:"currency,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
