package client

import (
	"errors"
	"sync"

	"checkout-service/models"
)

// ErrPathEngaged is returned when a payment path is used after the other
// path was engaged.
var ErrPathEngaged = errors.New("another payment path is already engaged")

// Session is one checkout held in client memory. Nothing in it survives a
// reload; a fresh Start creates a new intent.
type Session struct {
	ItemID   string
	Currency string
	Item     models.CatalogItem
	Intent   models.PaymentIntent

	PaymentRequestSupported  bool
	CardPathEngaged          bool
	RequestButtonPathEngaged bool

	mu sync.Mutex
}

// engageCard marks the card path as taken unless the request button won first.
func (s *Session) engageCard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RequestButtonPathEngaged {
		return ErrPathEngaged
	}
	s.CardPathEngaged = true
	return nil
}

// engageRequestButton marks the payment request path as taken unless the card
// path won first.
func (s *Session) engageRequestButton() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CardPathEngaged {
		return ErrPathEngaged
	}
	s.RequestButtonPathEngaged = true
	return nil
}

// Engaged reports the current state of both path flags.
func (s *Session) Engaged() (card, requestButton bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CardPathEngaged, s.RequestButtonPathEngaged
}
