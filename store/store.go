package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/chainpay/gateway/types"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// PaymentStore persists payment records. Payments are append-and-update;
// nothing deletes them.
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *types.Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*types.Payment, error)
	GetPaymentByOrderID(ctx context.Context, processorOrderID string) (*types.Payment, error)
	UpdatePayment(ctx context.Context, payment *types.Payment) error
	ListPaymentsByStatus(ctx context.Context, status types.PaymentStatus, limit int) ([]*types.Payment, error)
}

// TransactionStore persists chain-side observation records.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *types.Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*types.Transaction, error)
	GetTransactionByHash(ctx context.Context, chain types.ChainType, txHash string) (*types.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *types.Transaction) error
	ListTransactionsByPayment(ctx context.Context, paymentID uuid.UUID) ([]*types.Transaction, error)
}

// AddressStore persists deposit addresses.
type AddressStore interface {
	CreateAddress(ctx context.Context, addr *types.CryptoAddress) error
	GetActiveAddress(ctx context.Context, chain types.ChainType, address string) (*types.CryptoAddress, error)
	GetAddressByPaymentID(ctx context.Context, paymentID uuid.UUID) (*types.CryptoAddress, error)
	UpdateAddress(ctx context.Context, addr *types.CryptoAddress) error
}

// WebhookStore persists received webhook events for audit and dedup.
type WebhookStore interface {
	CreateWebhookEvent(ctx context.Context, event *types.WebhookEvent) error
	UpdateWebhookEvent(ctx context.Context, event *types.WebhookEvent) error
	GetWebhookEventByProviderID(ctx context.Context, source types.WebhookSource, providerEventID string) (*types.WebhookEvent, error)
}

// Store is the full persistence surface the gateway needs.
type Store interface {
	PaymentStore
	TransactionStore
	AddressStore
	WebhookStore
}
