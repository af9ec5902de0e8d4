package clients

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/chainpay/gateway/types"
)

// RequiredConfirmations returns how many confirmations a payment of the
// given amount needs before it is considered final. Amount is in the
// chain's smallest unit; tiers are defined on the native-unit value
// (ETH, SOL, ...), so the amount is scaled down by the chain's decimals
// first. Larger payments demand deeper finality.
func RequiredConfirmations(chain types.ChainType, amount *big.Int) uint64 {
	if amount == nil {
		amount = big.NewInt(0)
	}
	native := decimal.NewFromBigInt(amount, -chain.NativeDecimals())

	switch chain {
	case types.ChainEthereum:
		switch {
		case native.GreaterThan(decimal.NewFromInt(10)):
			return 12
		case native.GreaterThan(decimal.NewFromInt(1)):
			return 6
		default:
			return 3
		}
	case types.ChainPolygon, types.ChainBsc:
		switch {
		case native.GreaterThan(decimal.NewFromInt(10)):
			return 50
		case native.GreaterThan(decimal.NewFromInt(1)):
			return 25
		default:
			return 10
		}
	case types.ChainArbitrum:
		if native.GreaterThan(decimal.NewFromInt(10)) {
			return 20
		}
		return 5
	case types.ChainSolana:
		switch {
		case native.GreaterThan(decimal.NewFromInt(100)):
			return 32
		case native.GreaterThan(decimal.NewFromInt(10)):
			return 16
		default:
			return 1
		}
	default:
		return 3
	}
}
