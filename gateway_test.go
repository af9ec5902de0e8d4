package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpay/gateway/store"
	"github.com/chainpay/gateway/types"
)

func TestNewRequiresStore(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrConfig))
}

func TestAddChain(t *testing.T) {
	g, err := New(store.NewMemoryStore())
	require.NoError(t, err)
	defer g.Close()

	require.NoError(t, g.AddChain(types.ChainEthereum, "http://127.0.0.1:8545", ""))
	require.NoError(t, g.AddChain(types.ChainSolana, "http://127.0.0.1:8899", ""))
	assert.True(t, g.IsChainSupported(types.ChainEthereum))
	assert.True(t, g.IsChainSupported(types.ChainSolana))
	assert.False(t, g.IsChainSupported(types.ChainPolygon))

	// bitcoin has no on-chain adapter; only lightning invoices are handled
	err = g.AddChain(types.ChainBitcoin, "http://127.0.0.1:8332", "")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrConfig))
}

func TestOperationsRequireEthereum(t *testing.T) {
	g, err := New(store.NewMemoryStore())
	require.NoError(t, err)
	defer g.Close()

	_, err = g.CreatePayment(context.Background(), &types.CreatePaymentRequest{
		Amount:   1000,
		Currency: types.CurrencyETH,
		Method:   types.MethodEthereum,
	})
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrConfig))
}

func TestChainsFrozenAfterFirstUse(t *testing.T) {
	g, err := New(store.NewMemoryStore())
	require.NoError(t, err)
	defer g.Close()

	require.NoError(t, g.AddChain(types.ChainEthereum, "http://127.0.0.1:8545", ""))

	_, err = g.ExpirePending(context.Background())
	require.NoError(t, err)

	err = g.AddChain(types.ChainPolygon, "http://127.0.0.1:8546", "")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrConfig))
}

func TestGetBalanceUnknownChain(t *testing.T) {
	g, err := New(store.NewMemoryStore())
	require.NoError(t, err)
	defer g.Close()

	_, err = g.GetBalance(context.Background(), types.ChainPolygon, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrConfig))
}
