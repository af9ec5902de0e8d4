package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/chainpay/gateway/types"
)

var _ Store = (*GormStore)(nil)

// GormStore is the Postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore connects to Postgres and migrates the schema.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, types.WrapError(types.ErrConfig, "failed to connect to database", err)
	}

	if err := db.AutoMigrate(
		&types.Payment{},
		&types.Transaction{},
		&types.CryptoAddress{},
		&types.WebhookEvent{},
	); err != nil {
		return nil, types.WrapError(types.ErrInternal, "failed to migrate schema", err)
	}

	return &GormStore{db: db}, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) CreatePayment(ctx context.Context, payment *types.Payment) error {
	return s.db.WithContext(ctx).Create(payment).Error
}

func (s *GormStore) GetPayment(ctx context.Context, id uuid.UUID) (*types.Payment, error) {
	var payment types.Payment
	if err := s.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (s *GormStore) GetPaymentByOrderID(ctx context.Context, processorOrderID string) (*types.Payment, error) {
	var payment types.Payment
	err := s.db.WithContext(ctx).First(&payment, "processor_order_id = ?", processorOrderID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (s *GormStore) UpdatePayment(ctx context.Context, payment *types.Payment) error {
	return s.db.WithContext(ctx).Save(payment).Error
}

func (s *GormStore) ListPaymentsByStatus(ctx context.Context, status types.PaymentStatus, limit int) ([]*types.Payment, error) {
	var payments []*types.Payment
	q := s.db.WithContext(ctx).Where("status = ?", status).Order("created_at")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *GormStore) CreateTransaction(ctx context.Context, tx *types.Transaction) error {
	return s.db.WithContext(ctx).Create(tx).Error
}

func (s *GormStore) GetTransaction(ctx context.Context, id uuid.UUID) (*types.Transaction, error) {
	var tx types.Transaction
	if err := s.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

func (s *GormStore) GetTransactionByHash(ctx context.Context, chain types.ChainType, txHash string) (*types.Transaction, error) {
	var tx types.Transaction
	err := s.db.WithContext(ctx).
		First(&tx, "chain = ? AND lower(tx_hash) = lower(?)", chain, txHash).Error
	if err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

func (s *GormStore) UpdateTransaction(ctx context.Context, tx *types.Transaction) error {
	return s.db.WithContext(ctx).Save(tx).Error
}

func (s *GormStore) ListTransactionsByPayment(ctx context.Context, paymentID uuid.UUID) ([]*types.Transaction, error) {
	var txs []*types.Transaction
	err := s.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).Order("created_at").Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *GormStore) CreateAddress(ctx context.Context, addr *types.CryptoAddress) error {
	return s.db.WithContext(ctx).Create(addr).Error
}

func (s *GormStore) GetActiveAddress(ctx context.Context, chain types.ChainType, address string) (*types.CryptoAddress, error) {
	var addr types.CryptoAddress
	err := s.db.WithContext(ctx).
		First(&addr, "chain = ? AND is_active AND lower(address) = lower(?)", chain, address).Error
	if err != nil {
		return nil, translate(err)
	}
	return &addr, nil
}

func (s *GormStore) GetAddressByPaymentID(ctx context.Context, paymentID uuid.UUID) (*types.CryptoAddress, error) {
	var addr types.CryptoAddress
	if err := s.db.WithContext(ctx).First(&addr, "payment_id = ?", paymentID).Error; err != nil {
		return nil, translate(err)
	}
	return &addr, nil
}

func (s *GormStore) UpdateAddress(ctx context.Context, addr *types.CryptoAddress) error {
	return s.db.WithContext(ctx).Save(addr).Error
}

func (s *GormStore) CreateWebhookEvent(ctx context.Context, event *types.WebhookEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s *GormStore) UpdateWebhookEvent(ctx context.Context, event *types.WebhookEvent) error {
	return s.db.WithContext(ctx).Save(event).Error
}

func (s *GormStore) GetWebhookEventByProviderID(ctx context.Context, source types.WebhookSource, providerEventID string) (*types.WebhookEvent, error) {
	if providerEventID == "" {
		return nil, ErrNotFound
	}
	var event types.WebhookEvent
	err := s.db.WithContext(ctx).
		First(&event, "source = ? AND provider_event_id = ?", source, providerEventID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &event, nil
}
