package models

// InitPaymentRequest never carries an amount; the price always comes from the catalog.
type InitPaymentRequest struct {
	Item     string `json:"item" binding:"required"`
	Currency string `json:"currency"`
}

type InitPaymentResponse struct {
	PI PaymentIntent `json:"pi"`
}

type UpdateIntentRequest struct {
	PI           string `json:"pi" binding:"required"`
	ClientSecret string `json:"clientSecret"`
	Email        string `json:"email" binding:"required,email"`
}

type UpdateIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}
