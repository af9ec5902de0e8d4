package payment

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpay/gateway/broadcast"
	"github.com/chainpay/gateway/clients"
	"github.com/chainpay/gateway/store"
	"github.com/chainpay/gateway/types"
)

const (
	merchantAddress = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	payerAddress    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testTxHash      = "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b"
)

// stubVerifier is a canned ChainVerifier for driving the orchestrator.
type stubVerifier struct {
	chain   types.ChainType
	verdict *clients.VerifyResult
	err     error
}

func (s *stubVerifier) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (s *stubVerifier) GetTokenBalance(ctx context.Context, address, token string) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (s *stubVerifier) GetTransactionProof(ctx context.Context, txHash string) (*clients.PaymentProof, error) {
	if s.verdict == nil {
		return nil, s.err
	}
	return s.verdict.Proof, s.err
}

func (s *stubVerifier) GetConfirmations(ctx context.Context, txHash string) (uint64, error) {
	if s.verdict == nil || s.verdict.Proof == nil {
		return 0, s.err
	}
	return s.verdict.Proof.Confirmations, s.err
}

func (s *stubVerifier) VerifyPayment(ctx context.Context, params clients.VerifyParams) (*clients.VerifyResult, error) {
	return s.verdict, s.err
}

func (s *stubVerifier) RequiredConfirmations(amount *big.Int) uint64 {
	return clients.RequiredConfirmations(s.chain, amount)
}

func (s *stubVerifier) Chain() types.ChainType { return s.chain }
func (s *stubVerifier) Close()                 {}

func newTestProcessor(t *testing.T, verifier *stubVerifier) (*Processor, *store.MemoryStore) {
	t.Helper()

	s := store.NewMemoryStore()
	proc, err := NewProcessor(Options{
		Store: s,
		Verifiers: map[types.ChainType]clients.ChainVerifier{
			types.ChainEthereum: verifier,
		},
		Merchants: map[types.ChainType]string{
			types.ChainEthereum: merchantAddress,
		},
		Broadcaster: broadcast.NewBroadcaster(nil),
	})
	require.NoError(t, err)
	return proc, s
}

func validProof(confirmations uint64) *clients.VerifyResult {
	return &clients.VerifyResult{
		IsValid: true,
		Proof: &clients.PaymentProof{
			TxHash:        testTxHash,
			FromAddress:   payerAddress,
			ToAddress:     merchantAddress,
			Amount:        big.NewInt(500000000000000000),
			BlockNumber:   100,
			Confirmations: confirmations,
			Success:       true,
		},
	}
}

func createEthPayment(t *testing.T, proc *Processor) *types.PaymentCreationResult {
	t.Helper()
	result, err := proc.CreatePayment(context.Background(), &types.CreatePaymentRequest{
		Amount:   500000000000000000, // 0.5 ETH in wei
		Currency: types.CurrencyETH,
		Method:   types.MethodEthereum,
	})
	require.NoError(t, err)
	return result
}

func TestCreateCryptoPayment(t *testing.T) {
	verifier := &stubVerifier{chain: types.ChainEthereum}
	proc, s := newTestProcessor(t, verifier)

	result := createEthPayment(t, proc)
	assert.Equal(t, types.PaymentPending, result.Status)
	assert.Equal(t, merchantAddress, result.CryptoAddress)
	assert.Equal(t, "ethereum", result.Chain)
	require.NotNil(t, result.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(DefaultExpiry), *result.ExpiresAt, time.Minute)

	// deposit address is registered and bound to the payment
	addr, err := s.GetActiveAddress(context.Background(), types.ChainEthereum, merchantAddress)
	require.NoError(t, err)
	require.NotNil(t, addr.PaymentID)
	assert.Equal(t, result.PaymentID, *addr.PaymentID)
}

func TestCreatePaymentValidation(t *testing.T) {
	verifier := &stubVerifier{chain: types.ChainEthereum}
	proc, _ := newTestProcessor(t, verifier)
	ctx := context.Background()

	// amount must be positive
	_, err := proc.CreatePayment(ctx, &types.CreatePaymentRequest{
		Amount:   0,
		Currency: types.CurrencyETH,
		Method:   types.MethodEthereum,
	})
	assert.True(t, types.IsCode(err, types.ErrValidation))

	// currency must match the method
	_, err = proc.CreatePayment(ctx, &types.CreatePaymentRequest{
		Amount:   1000,
		Currency: types.CurrencySOL,
		Method:   types.MethodEthereum,
	})
	assert.True(t, types.IsCode(err, types.ErrValidation))

	// unconfigured chain
	_, err = proc.CreatePayment(ctx, &types.CreatePaymentRequest{
		Amount:   1000,
		Currency: types.CurrencySOL,
		Method:   types.MethodSolana,
	})
	assert.True(t, types.IsCode(err, types.ErrConfig))

	// processor payments need razorpay
	_, err = proc.CreatePayment(ctx, &types.CreatePaymentRequest{
		Amount:   50000,
		Currency: types.CurrencyINR,
		Method:   types.MethodUpi,
	})
	assert.True(t, types.IsCode(err, types.ErrConfig))

	// processor currency allow-list
	_, err = proc.CreatePayment(ctx, &types.CreatePaymentRequest{
		Amount:   50000,
		Currency: types.CurrencyETH,
		Method:   types.MethodCard,
	})
	assert.True(t, types.IsCode(err, types.ErrValidation))
}

func TestCreateCryptoPaymentNoMerchantAddress(t *testing.T) {
	verifier := &stubVerifier{chain: types.ChainEthereum}
	s := store.NewMemoryStore()
	proc, err := NewProcessor(Options{
		Store: s,
		Verifiers: map[types.ChainType]clients.ChainVerifier{
			types.ChainEthereum: verifier,
		},
	})
	require.NoError(t, err)

	_, err = proc.CreatePayment(context.Background(), &types.CreatePaymentRequest{
		Amount:   1000,
		Currency: types.CurrencyETH,
		Method:   types.MethodEthereum,
	})
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrNotImplemented))
}

func TestVerifyCryptoPaymentConfirming(t *testing.T) {
	// 0.5 ETH needs 3 confirmations; 2 are not enough
	verifier := &stubVerifier{chain: types.ChainEthereum, verdict: validProof(2)}
	proc, _ := newTestProcessor(t, verifier)
	ctx := context.Background()

	created := createEthPayment(t, proc)

	result, err := proc.VerifyCryptoPayment(ctx, &types.VerifyPaymentRequest{
		PaymentID: created.PaymentID,
		TxHash:    testTxHash,
		Chain:     "ethereum",
	})
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, types.PaymentProcessing, result.Status)
	assert.Equal(t, uint64(3), result.RequiredConfirmations)
	assert.Equal(t, uint64(2), result.Confirmations)

	payment, err := proc.GetPayment(ctx, created.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentProcessing, payment.Status)
	assert.Equal(t, testTxHash, payment.CryptoTxHash)
}

func TestVerifyCryptoPaymentCompletes(t *testing.T) {
	verifier := &stubVerifier{chain: types.ChainEthereum, verdict: validProof(5)}
	proc, s := newTestProcessor(t, verifier)
	ctx := context.Background()

	created := createEthPayment(t, proc)

	result, err := proc.VerifyCryptoPayment(ctx, &types.VerifyPaymentRequest{
		PaymentID: created.PaymentID,
		TxHash:    testTxHash,
		Chain:     "ethereum",
	})
	require.NoError(t, err)
	assert.Equal(t, types.PaymentCompleted, result.Status)

	payment, err := proc.GetPayment(ctx, created.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentCompleted, payment.Status)
	require.NotNil(t, payment.CompletedAt)

	tx, err := s.GetTransactionByHash(ctx, types.ChainEthereum, testTxHash)
	require.NoError(t, err)
	assert.Equal(t, types.TxConfirmed, tx.Status)
	assert.Equal(t, uint64(5), tx.Confirmations)
	assert.Equal(t, uint64(3), tx.RequiredConfirmations)

	// the settled payment's deposit address no longer matches inbound transfers
	_, err = s.GetActiveAddress(ctx, types.ChainEthereum, merchantAddress)
	assert.ErrorIs(t, err, store.ErrNotFound)
	addr, err := s.GetAddressByPaymentID(ctx, created.PaymentID)
	require.NoError(t, err)
	assert.False(t, addr.IsActive)

	// replaying the verification is a no-op
	completedAt := *payment.CompletedAt
	_, err = proc.VerifyCryptoPayment(ctx, &types.VerifyPaymentRequest{
		PaymentID: created.PaymentID,
		TxHash:    testTxHash,
		Chain:     "ethereum",
	})
	require.NoError(t, err)
	payment, err = proc.GetPayment(ctx, created.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, completedAt, *payment.CompletedAt)
}

func TestVerifyCryptoPaymentLaggingReplayKeepsConfirmed(t *testing.T) {
	verifier := &stubVerifier{chain: types.ChainEthereum, verdict: validProof(5)}
	proc, s := newTestProcessor(t, verifier)
	ctx := context.Background()

	created := createEthPayment(t, proc)

	req := &types.VerifyPaymentRequest{
		PaymentID: created.PaymentID,
		TxHash:    testTxHash,
		Chain:     "ethereum",
	}
	_, err := proc.VerifyCryptoPayment(ctx, req)
	require.NoError(t, err)

	// a lagging node reports fewer confirmations on the replay
	verifier.verdict = validProof(1)
	result, err := proc.VerifyCryptoPayment(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentCompleted, result.Status)

	tx, err := s.GetTransactionByHash(ctx, types.ChainEthereum, testTxHash)
	require.NoError(t, err)
	assert.Equal(t, types.TxConfirmed, tx.Status)
	assert.Equal(t, uint64(5), tx.Confirmations)

	payment, err := proc.GetPayment(ctx, created.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentCompleted, payment.Status)
}

func TestVerifyCryptoPaymentInvalid(t *testing.T) {
	verifier := &stubVerifier{chain: types.ChainEthereum, verdict: &clients.VerifyResult{
		InvalidReason: "recipient does not match expected address",
		Proof: &clients.PaymentProof{
			TxHash:        testTxHash,
			Confirmations: 10,
			Success:       true,
		},
	}}
	proc, _ := newTestProcessor(t, verifier)
	ctx := context.Background()

	created := createEthPayment(t, proc)

	req := &types.VerifyPaymentRequest{
		PaymentID: created.PaymentID,
		TxHash:    testTxHash,
		Chain:     "ethereum",
	}
	_, err := proc.VerifyCryptoPayment(ctx, req)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrPayment))

	// the payment is untouched by the rejected claim
	payment, err := proc.GetPayment(ctx, created.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentPending, payment.Status)

	// so a later valid proof still settles it
	verifier.verdict = validProof(5)
	result, err := proc.VerifyCryptoPayment(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentCompleted, result.Status)

	payment, err = proc.GetPayment(ctx, created.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentCompleted, payment.Status)
}

func TestVerifyCryptoPaymentGuards(t *testing.T) {
	verifier := &stubVerifier{chain: types.ChainEthereum, verdict: validProof(5)}
	proc, _ := newTestProcessor(t, verifier)
	ctx := context.Background()

	created := createEthPayment(t, proc)

	// unknown payment
	_, err := proc.VerifyCryptoPayment(ctx, &types.VerifyPaymentRequest{
		PaymentID: uuid.New(),
		TxHash:    testTxHash,
		Chain:     "ethereum",
	})
	assert.True(t, types.IsCode(err, types.ErrNotFound))

	// malformed hash
	_, err = proc.VerifyCryptoPayment(ctx, &types.VerifyPaymentRequest{
		PaymentID: created.PaymentID,
		TxHash:    "0x1234",
		Chain:     "ethereum",
	})
	assert.True(t, types.IsCode(err, types.ErrValidation))

	// chain mismatch
	_, err = proc.VerifyCryptoPayment(ctx, &types.VerifyPaymentRequest{
		PaymentID: created.PaymentID,
		TxHash:    testTxHash,
		Chain:     "polygon",
	})
	assert.True(t, types.IsCode(err, types.ErrValidation))
}

func TestVerifyCryptoPaymentExpired(t *testing.T) {
	verifier := &stubVerifier{chain: types.ChainEthereum, verdict: validProof(5)}
	s := store.NewMemoryStore()
	proc, err := NewProcessor(Options{
		Store: s,
		Verifiers: map[types.ChainType]clients.ChainVerifier{
			types.ChainEthereum: verifier,
		},
		Merchants: map[types.ChainType]string{
			types.ChainEthereum: merchantAddress,
		},
		Expiry: time.Nanosecond,
	})
	require.NoError(t, err)
	ctx := context.Background()

	created := createEthPayment(t, proc)
	time.Sleep(time.Millisecond)

	_, err = proc.VerifyCryptoPayment(ctx, &types.VerifyPaymentRequest{
		PaymentID: created.PaymentID,
		TxHash:    testTxHash,
		Chain:     "ethereum",
	})
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrPayment))

	payment, err := proc.GetPayment(ctx, created.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentExpired, payment.Status)

	// the expired payment's deposit address is retired
	addr, err := s.GetAddressByPaymentID(ctx, created.PaymentID)
	require.NoError(t, err)
	assert.False(t, addr.IsActive)
}

func TestExpirePending(t *testing.T) {
	verifier := &stubVerifier{chain: types.ChainEthereum}
	s := store.NewMemoryStore()
	proc, err := NewProcessor(Options{
		Store: s,
		Verifiers: map[types.ChainType]clients.ChainVerifier{
			types.ChainEthereum: verifier,
		},
		Merchants: map[types.ChainType]string{
			types.ChainEthereum: merchantAddress,
		},
		Expiry: time.Nanosecond,
	})
	require.NoError(t, err)
	ctx := context.Background()

	createEthPayment(t, proc)
	createEthPayment(t, proc)
	time.Sleep(time.Millisecond)

	expired, err := proc.ExpirePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, expired)

	pending, err := s.ListPaymentsByStatus(ctx, types.PaymentPending, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
