package types

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies the direction of value movement.
type TransactionType string

const (
	TxTypePayment    TransactionType = "payment"
	TxTypeRefund     TransactionType = "refund"
	TxTypeTransfer   TransactionType = "transfer"
	TxTypeWithdrawal TransactionType = "withdrawal"
)

// TransactionStatus is the chain-side observation state, advanced
// independently of the parent payment status.
type TransactionStatus string

const (
	TxPending    TransactionStatus = "pending"
	TxConfirming TransactionStatus = "confirming"
	TxConfirmed  TransactionStatus = "confirmed"
	TxFailed     TransactionStatus = "failed"
	TxCancelled  TransactionStatus = "cancelled"
)

// Transaction is a chain-side observation record tied to a payment.
// Confirmations only ever increases; RequiredConfirmations is fixed by the
// confirmation policy when the transaction is first verified.
type Transaction struct {
	ID                    uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	PaymentID             uuid.UUID         `json:"payment_id" gorm:"type:uuid;index"`
	Type                  TransactionType   `json:"type"`
	Status                TransactionStatus `json:"status" gorm:"index"`
	Chain                 ChainType         `json:"chain"`
	TxHash                string            `json:"tx_hash" gorm:"index"`
	FromAddress           string            `json:"from_address,omitempty"`
	ToAddress             string            `json:"to_address,omitempty"`
	Amount                int64             `json:"amount"`
	Fee                   int64             `json:"fee,omitempty"`
	BlockNumber           uint64            `json:"block_number,omitempty"`
	Confirmations         uint64            `json:"confirmations"`
	RequiredConfirmations uint64            `json:"required_confirmations"`
	ConfirmedAt           *time.Time        `json:"confirmed_at,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// VerifyPaymentRequest asks the orchestrator to check a claimed on-chain
// payment against the chain.
type VerifyPaymentRequest struct {
	PaymentID uuid.UUID `json:"payment_id" validate:"required"`
	TxHash    string    `json:"tx_hash" validate:"required"`
	Chain     string    `json:"chain" validate:"required"`
}

// VerifyPaymentResult reports the chain observation for a claimed payment.
type VerifyPaymentResult struct {
	PaymentID             uuid.UUID     `json:"payment_id"`
	Status                PaymentStatus `json:"status"`
	TxHash                string        `json:"tx_hash"`
	Confirmations         uint64        `json:"confirmations"`
	RequiredConfirmations uint64        `json:"required_confirmations"`
	IsValid               bool          `json:"is_valid"`
}

// WalletSignatureRequest carries a wallet-ownership proof for verification.
type WalletSignatureRequest struct {
	Address   string `json:"address" validate:"required"`
	Message   string `json:"message" validate:"required"`
	Signature string `json:"signature" validate:"required"`
	Chain     string `json:"chain" validate:"required"`
}
