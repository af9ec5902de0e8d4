package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpay/gateway/types"
)

func TestMemoryStorePayments(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	payment := &types.Payment{
		ID:               uuid.New(),
		Amount:           50000,
		Currency:         types.CurrencyINR,
		Status:           types.PaymentPending,
		Method:           types.MethodUpi,
		ProcessorOrderID: "order_abc",
	}
	require.NoError(t, s.CreatePayment(ctx, payment))
	assert.False(t, payment.CreatedAt.IsZero())

	got, err := s.GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, got.ID)
	assert.Equal(t, types.PaymentPending, got.Status)

	// mutating the returned copy does not affect the store
	got.Status = types.PaymentFailed
	again, err := s.GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentPending, again.Status)

	byOrder, err := s.GetPaymentByOrderID(ctx, "order_abc")
	require.NoError(t, err)
	assert.Equal(t, payment.ID, byOrder.ID)

	payment.Status = types.PaymentCompleted
	require.NoError(t, s.UpdatePayment(ctx, payment))
	updated, err := s.GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentCompleted, updated.Status)

	_, err = s.GetPayment(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetPaymentByOrderID(ctx, "order_missing")
	assert.ErrorIs(t, err, ErrNotFound)

	completed, err := s.ListPaymentsByStatus(ctx, types.PaymentCompleted, 0)
	require.NoError(t, err)
	assert.Len(t, completed, 1)
}

func TestMemoryStoreTransactions(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	paymentID := uuid.New()
	tx := &types.Transaction{
		ID:        uuid.New(),
		PaymentID: paymentID,
		Type:      types.TxTypePayment,
		Status:    types.TxPending,
		Chain:     types.ChainEthereum,
		TxHash:    "0xAbCd",
		Amount:    500000000000000000,
	}
	require.NoError(t, s.CreateTransaction(ctx, tx))

	// hash lookup is case-insensitive
	got, err := s.GetTransactionByHash(ctx, types.ChainEthereum, "0xabcd")
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)

	_, err = s.GetTransactionByHash(ctx, types.ChainPolygon, "0xabcd")
	assert.ErrorIs(t, err, ErrNotFound)

	tx.Status = types.TxConfirmed
	tx.Confirmations = 12
	require.NoError(t, s.UpdateTransaction(ctx, tx))

	list, err := s.ListTransactionsByPayment(ctx, paymentID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uint64(12), list[0].Confirmations)
}

func TestMemoryStoreAddresses(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	paymentID := uuid.New()
	addr := &types.CryptoAddress{
		ID:        uuid.New(),
		PaymentID: &paymentID,
		Address:   "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		Chain:     types.ChainEthereum,
		IsActive:  true,
	}
	require.NoError(t, s.CreateAddress(ctx, addr))

	got, err := s.GetActiveAddress(ctx, types.ChainEthereum, "0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	require.NoError(t, err)
	assert.Equal(t, addr.ID, got.ID)

	byPayment, err := s.GetAddressByPaymentID(ctx, paymentID)
	require.NoError(t, err)
	assert.Equal(t, addr.ID, byPayment.ID)

	_, err = s.GetAddressByPaymentID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	addr.IsActive = false
	require.NoError(t, s.UpdateAddress(ctx, addr))

	// a retired address no longer matches, but stays reachable by payment
	_, err = s.GetActiveAddress(ctx, types.ChainEthereum, addr.Address)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetAddressByPaymentID(ctx, paymentID)
	require.NoError(t, err)
}

func TestMemoryStoreWebhookDedup(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	event := &types.WebhookEvent{
		ID:              uuid.New(),
		Source:          types.SourceRazorpay,
		ProviderEventID: "evt_123",
		EventType:       "payment.captured",
		Status:          types.WebhookReceived,
	}
	require.NoError(t, s.CreateWebhookEvent(ctx, event))

	got, err := s.GetWebhookEventByProviderID(ctx, types.SourceRazorpay, "evt_123")
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)

	// same provider id from a different source is a different event
	_, err = s.GetWebhookEventByProviderID(ctx, types.SourceBlockchain, "evt_123")
	assert.ErrorIs(t, err, ErrNotFound)

	// events without a provider id never collide
	_, err = s.GetWebhookEventByProviderID(ctx, types.SourceRazorpay, "")
	assert.ErrorIs(t, err, ErrNotFound)
}
