package types

import (
	"time"

	"github.com/google/uuid"
)

// WebhookSource identifies which external system delivered an event.
type WebhookSource string

const (
	SourceRazorpay   WebhookSource = "razorpay"
	SourceBlockchain WebhookSource = "blockchain"
	SourceLightning  WebhookSource = "lightning"
	SourceInternal   WebhookSource = "internal"
)

// WebhookStatus is the processing state of a received event.
type WebhookStatus string

const (
	WebhookReceived   WebhookStatus = "received"
	WebhookProcessing WebhookStatus = "processing"
	WebhookProcessed  WebhookStatus = "processed"
	WebhookFailed     WebhookStatus = "failed"
	WebhookIgnored    WebhookStatus = "ignored"
)

// WebhookEvent is the audit record of a received webhook. The raw payload,
// the delivery headers and the provided signature are persisted before any
// verification or dispatch so delivery is never lost; SignatureVerified
// records the outcome of the signature check. Duplicate deliveries are
// detected by (Source, ProviderEventID).
type WebhookEvent struct {
	ID                uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	Source            WebhookSource     `json:"source" gorm:"index:idx_webhook_provider,priority:1"`
	ProviderEventID   string            `json:"provider_event_id,omitempty" gorm:"index:idx_webhook_provider,priority:2"`
	EventType         string            `json:"event_type"`
	Payload           []byte            `json:"payload"`
	Headers           map[string]string `json:"headers,omitempty" gorm:"serializer:json"`
	Signature         string            `json:"signature,omitempty"`
	SignatureVerified bool              `json:"signature_verified"`
	Status            WebhookStatus     `json:"status" gorm:"index"`
	ErrorMessage      string            `json:"error_message,omitempty"`
	ProcessedAt       *time.Time        `json:"processed_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// RazorpayWebhookPayload is the envelope Razorpay posts.
type RazorpayWebhookPayload struct {
	Entity    string                 `json:"entity"`
	AccountID string                 `json:"account_id"`
	Event     string                 `json:"event"`
	Contains  []string               `json:"contains"`
	Payload   RazorpayWebhookWrapper `json:"payload"`
	CreatedAt int64                  `json:"created_at"`
}

// RazorpayWebhookWrapper holds the entity wrappers present on an event.
type RazorpayWebhookWrapper struct {
	Payment *RazorpayPaymentWrapper `json:"payment,omitempty"`
	Order   *RazorpayOrderWrapper   `json:"order,omitempty"`
	Refund  *RazorpayRefundWrapper  `json:"refund,omitempty"`
}

type RazorpayPaymentWrapper struct {
	Entity RazorpayPaymentEntity `json:"entity"`
}

type RazorpayOrderWrapper struct {
	Entity RazorpayOrderEntity `json:"entity"`
}

type RazorpayRefundWrapper struct {
	Entity RazorpayRefundEntity `json:"entity"`
}

// RazorpayPaymentEntity mirrors the fields consumed from Razorpay's
// payment entity. Amount is in the smallest currency unit.
type RazorpayPaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	Email            string `json:"email,omitempty"`
	Contact          string `json:"contact,omitempty"`
	ErrorCode        string `json:"error_code,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	CreatedAt        int64  `json:"created_at"`
}

type RazorpayOrderEntity struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt,omitempty"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
}

type RazorpayRefundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// BlockchainWebhookPayload is pushed by chain watchers when a monitored
// address receives funds or a tracked transaction gains confirmations.
type BlockchainWebhookPayload struct {
	EventID       string `json:"event_id"`
	Chain         string `json:"chain"`
	TxHash        string `json:"tx_hash"`
	FromAddress   string `json:"from_address,omitempty"`
	ToAddress     string `json:"to_address"`
	Amount        int64  `json:"amount"`
	Confirmations uint64 `json:"confirmations"`
	BlockNumber   uint64 `json:"block_number,omitempty"`
}
