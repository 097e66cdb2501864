package dto

import "encoding/json"

// GatewayEvent is the envelope posted by the subscription gateway:
// {"id": "...", "type": "...", "data": {"object": {...}}}.
type GatewayEvent struct {
	Id   string           `json:"id"`
	Type string           `json:"type"`
	Data GatewayEventData `json:"data"`
}

type GatewayEventData struct {
	Object json.RawMessage `json:"object"`
}

type CheckoutSessionObject struct {
	Id           string            `json:"id"`
	Mode         string            `json:"mode"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	PaymentState string            `json:"payment_status"`
	Metadata     map[string]string `json:"metadata"`
}

type InvoiceObject struct {
	Id           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
	// AmountPaid is in cents.
	AmountPaid    int64  `json:"amount_paid"`
	BillingReason string `json:"billing_reason"`
}

type SubscriptionObject struct {
	Id       string `json:"id"`
	Customer string `json:"customer"`
	Status   string `json:"status"`
}

type ChargeObject struct {
	Id       string            `json:"id"`
	Customer string            `json:"customer"`
	Invoice  string            `json:"invoice"`
	Metadata map[string]string `json:"metadata"`
}

type MidtransWebhookRequest struct {
	TransactionStatus string `json:"transaction_status"`
	OrderId           string `json:"order_id"`
	FraudStatus       string `json:"fraud_status"`
	SignatureKey      string `json:"signature_key"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
}

type WebhookResponse struct {
	Received bool   `json:"received"`
	Handled  bool   `json:"handled"`
	Message  string `json:"message,omitempty"`
}
