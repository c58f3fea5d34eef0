package dto

// CreatePaymentIntentRequest: payload for starting a payment
type CreatePaymentIntentRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

// PaymentIntentResponse: what the browser needs to confirm the payment
type PaymentIntentResponse struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	AmountCents  int64  `json:"amount_cents"`
	Currency     string `json:"currency"`
}
