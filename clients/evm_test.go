package clients

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpay/gateway/types"
)

func TestNewEVMClient(t *testing.T) {
	client, err := NewEVMClient(types.ChainPolygon, "http://localhost:8545", 137, time.Second)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, types.ChainPolygon, client.Chain())
	assert.Equal(t, uint64(137), client.ChainID())
}

func TestNewEVMClientRejectsBadConfig(t *testing.T) {
	// non-EVM chain
	_, err := NewEVMClient(types.ChainSolana, "http://localhost:8545", 1, time.Second)
	assert.True(t, types.IsCode(err, types.ErrConfig))

	// missing chain id
	_, err = NewEVMClient(types.ChainEthereum, "http://localhost:8545", 0, time.Second)
	assert.True(t, types.IsCode(err, types.ErrConfig))
}
