package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chainpay/gateway/types"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-process Store for tests and single-node setups.
// All records are copied on the way in and out so callers cannot mutate
// stored state.
type MemoryStore struct {
	mu           sync.RWMutex
	payments     map[uuid.UUID]*types.Payment
	transactions map[uuid.UUID]*types.Transaction
	addresses    map[uuid.UUID]*types.CryptoAddress
	webhooks     map[uuid.UUID]*types.WebhookEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		payments:     make(map[uuid.UUID]*types.Payment),
		transactions: make(map[uuid.UUID]*types.Transaction),
		addresses:    make(map[uuid.UUID]*types.CryptoAddress),
		webhooks:     make(map[uuid.UUID]*types.WebhookEvent),
	}
}

func (s *MemoryStore) CreatePayment(ctx context.Context, payment *types.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	copied := *payment
	s.payments[payment.ID] = &copied
	return nil
}

func (s *MemoryStore) GetPayment(ctx context.Context, id uuid.UUID) (*types.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payment, ok := s.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *payment
	return &copied, nil
}

func (s *MemoryStore) GetPaymentByOrderID(ctx context.Context, processorOrderID string) (*types.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, payment := range s.payments {
		if payment.ProcessorOrderID == processorOrderID {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdatePayment(ctx context.Context, payment *types.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[payment.ID]; !ok {
		return ErrNotFound
	}
	payment.UpdatedAt = time.Now().UTC()
	copied := *payment
	s.payments[payment.ID] = &copied
	return nil
}

func (s *MemoryStore) ListPaymentsByStatus(ctx context.Context, status types.PaymentStatus, limit int) ([]*types.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*types.Payment
	for _, payment := range s.payments {
		if payment.Status != status {
			continue
		}
		copied := *payment
		result = append(result, &copied)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (s *MemoryStore) CreateTransaction(ctx context.Context, tx *types.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	copied := *tx
	s.transactions[tx.ID] = &copied
	return nil
}

func (s *MemoryStore) GetTransaction(ctx context.Context, id uuid.UUID) (*types.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *tx
	return &copied, nil
}

func (s *MemoryStore) GetTransactionByHash(ctx context.Context, chain types.ChainType, txHash string) (*types.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.transactions {
		if tx.Chain == chain && strings.EqualFold(tx.TxHash, txHash) {
			copied := *tx
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateTransaction(ctx context.Context, tx *types.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[tx.ID]; !ok {
		return ErrNotFound
	}
	tx.UpdatedAt = time.Now().UTC()
	copied := *tx
	s.transactions[tx.ID] = &copied
	return nil
}

func (s *MemoryStore) ListTransactionsByPayment(ctx context.Context, paymentID uuid.UUID) ([]*types.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*types.Transaction
	for _, tx := range s.transactions {
		if tx.PaymentID == paymentID {
			copied := *tx
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *MemoryStore) CreateAddress(ctx context.Context, addr *types.CryptoAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	addr.CreatedAt = now
	addr.UpdatedAt = now

	copied := *addr
	s.addresses[addr.ID] = &copied
	return nil
}

func (s *MemoryStore) GetActiveAddress(ctx context.Context, chain types.ChainType, address string) (*types.CryptoAddress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, addr := range s.addresses {
		if addr.Chain == chain && addr.IsActive && strings.EqualFold(addr.Address, address) {
			copied := *addr
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetAddressByPaymentID(ctx context.Context, paymentID uuid.UUID) (*types.CryptoAddress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, addr := range s.addresses {
		if addr.PaymentID != nil && *addr.PaymentID == paymentID {
			copied := *addr
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateAddress(ctx context.Context, addr *types.CryptoAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.addresses[addr.ID]; !ok {
		return ErrNotFound
	}
	addr.UpdatedAt = time.Now().UTC()
	copied := *addr
	s.addresses[addr.ID] = &copied
	return nil
}

func (s *MemoryStore) CreateWebhookEvent(ctx context.Context, event *types.WebhookEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.CreatedAt = time.Now().UTC()
	copied := *event
	s.webhooks[event.ID] = &copied
	return nil
}

func (s *MemoryStore) UpdateWebhookEvent(ctx context.Context, event *types.WebhookEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.webhooks[event.ID]; !ok {
		return ErrNotFound
	}
	copied := *event
	s.webhooks[event.ID] = &copied
	return nil
}

func (s *MemoryStore) GetWebhookEventByProviderID(ctx context.Context, source types.WebhookSource, providerEventID string) (*types.WebhookEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if providerEventID == "" {
		return nil, ErrNotFound
	}
	for _, event := range s.webhooks {
		if event.Source == source && event.ProviderEventID == providerEventID {
			copied := *event
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}
