package types

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the payment lifecycle state
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentRefunded   PaymentStatus = "refunded"
	PaymentExpired    PaymentStatus = "expired"
)

// IsTerminal reports whether no further transitions are expected.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentCompleted, PaymentFailed, PaymentCancelled, PaymentRefunded, PaymentExpired:
		return true
	}
	return false
}

// Payment is the financial record of one payment attempt. Exactly one of the
// processor, chain or invoice field groups is populated, fixed by Method at
// creation. Amount is in the smallest currency/chain unit and immutable.
// Rows are never deleted.
type Payment struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	Amount        int64         `json:"amount"`
	Currency      CurrencyType  `json:"currency"`
	Status        PaymentStatus `json:"status" gorm:"index"`
	Method        PaymentMethod `json:"method"`
	Description   string        `json:"description,omitempty"`
	CustomerEmail string        `json:"customer_email,omitempty"`

	// Processor (Razorpay) fields
	ProcessorOrderID   string `json:"processor_order_id,omitempty" gorm:"index"`
	ProcessorPaymentID string `json:"processor_payment_id,omitempty"`
	ProcessorSignature string `json:"processor_signature,omitempty"`

	// Chain fields
	CryptoTxHash      string `json:"crypto_tx_hash,omitempty"`
	CryptoFromAddress string `json:"crypto_from_address,omitempty"`
	CryptoToAddress   string `json:"crypto_to_address,omitempty" gorm:"index"`
	CryptoChain       string `json:"crypto_chain,omitempty"`

	// Lightning fields
	LightningInvoice     string `json:"lightning_invoice,omitempty"`
	LightningPaymentHash string `json:"lightning_payment_hash,omitempty"`

	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreatePaymentRequest is the input to the orchestrator
type CreatePaymentRequest struct {
	Amount        int64         `json:"amount" validate:"required,gt=0"`
	Currency      CurrencyType  `json:"currency" validate:"required"`
	Method        PaymentMethod `json:"method" validate:"required"`
	Description   string        `json:"description,omitempty" validate:"max=255"`
	CustomerEmail string        `json:"customer_email,omitempty" validate:"omitempty,email"`
}

// PaymentCreationResult is returned from CreatePayment with the
// method-specific handle the client needs to complete the payment.
type PaymentCreationResult struct {
	PaymentID        uuid.UUID     `json:"payment_id"`
	Status           PaymentStatus `json:"status"`
	ProcessorOrderID string        `json:"processor_order_id,omitempty"`
	ProcessorKeyID   string        `json:"processor_key_id,omitempty"`
	CryptoAddress    string        `json:"crypto_address,omitempty"`
	LightningInvoice string        `json:"lightning_invoice,omitempty"`
	Chain            string        `json:"chain,omitempty"`
	ExpiresAt        *time.Time    `json:"expires_at,omitempty"`
}

// CryptoAddress is a deposit address bound to at most one payment. While
// active it is eligible for inbound-transaction matching.
type CryptoAddress struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	PaymentID      *uuid.UUID `json:"payment_id,omitempty" gorm:"type:uuid;index"`
	Address        string     `json:"address" gorm:"index"`
	Chain          ChainType  `json:"chain"`
	IsActive       bool       `json:"is_active" gorm:"index"`
	ExpectedAmount int64      `json:"expected_amount,omitempty"`
	ReceivedAmount int64      `json:"received_amount,omitempty"`
	TokenAddress   string     `json:"token_address,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// PaymentUpdate is the fire-and-forget notification published to the
// broadcast collaborator on every state transition.
type PaymentUpdate struct {
	PaymentID     uuid.UUID     `json:"payment_id"`
	Status        PaymentStatus `json:"status"`
	TxHash        string        `json:"tx_hash,omitempty"`
	Confirmations int           `json:"confirmations,omitempty"`
	Timestamp     int64         `json:"timestamp"`
}
