package request

// CreatePaymentRequest represents a payment initiation request
type CreatePaymentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Method string  `json:"method" binding:"required,oneof=cash mobile-money other"`
}

// SettlePaymentRequest represents a manual payment settlement request
type SettlePaymentRequest struct {
	Success     bool    `json:"success"`
	ProviderRef *string `json:"provider_ref"`
}

// PaymentWebhookRequest represents a payment gateway outcome notification
type PaymentWebhookRequest struct {
	PaymentID   string `json:"payment_id" binding:"required,uuid"`
	Success     bool   `json:"success"`
	ProviderRef string `json:"provider_ref" binding:"required"`
}
