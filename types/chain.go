package types

import (
	"fmt"
	"strings"
)

// ChainType represents supported blockchain networks
type ChainType string

const (
	ChainEthereum ChainType = "ethereum"
	ChainPolygon  ChainType = "polygon"
	ChainBsc      ChainType = "bsc"
	ChainArbitrum ChainType = "arbitrum"
	ChainSolana   ChainType = "solana"
	ChainBitcoin  ChainType = "bitcoin"
)

// ParseChainType parses a chain name or its currency alias
func ParseChainType(s string) (ChainType, error) {
	switch strings.ToLower(s) {
	case "ethereum", "eth":
		return ChainEthereum, nil
	case "polygon", "matic":
		return ChainPolygon, nil
	case "bsc", "bnb":
		return ChainBsc, nil
	case "arbitrum", "arb":
		return ChainArbitrum, nil
	case "solana", "sol":
		return ChainSolana, nil
	case "bitcoin", "btc":
		return ChainBitcoin, nil
	default:
		return "", fmt.Errorf("unknown chain: %s", s)
	}
}

func (c ChainType) IsEVM() bool {
	return c == ChainEthereum || c == ChainPolygon || c == ChainBsc || c == ChainArbitrum
}

func (c ChainType) IsSolana() bool {
	return c == ChainSolana
}

func (c ChainType) IsBitcoin() bool {
	return c == ChainBitcoin
}

func (c ChainType) String() string {
	return string(c)
}

// EVMChainID returns the canonical mainnet chain id for EVM chains, zero
// otherwise.
func (c ChainType) EVMChainID() uint64 {
	switch c {
	case ChainEthereum:
		return 1
	case ChainPolygon:
		return 137
	case ChainBsc:
		return 56
	case ChainArbitrum:
		return 42161
	}
	return 0
}

// NativeDecimals returns the number of decimals of the chain's smallest unit
// (wei for EVM chains, lamports for Solana, satoshis for Bitcoin).
func (c ChainType) NativeDecimals() int32 {
	switch {
	case c.IsEVM():
		return 18
	case c.IsSolana():
		return 9
	case c.IsBitcoin():
		return 8
	default:
		return 18
	}
}

// PaymentMethod represents how a payment is settled
type PaymentMethod string

const (
	// Processor methods (fiat via Razorpay)
	MethodCard       PaymentMethod = "card"
	MethodUpi        PaymentMethod = "upi"
	MethodNetBanking PaymentMethod = "net_banking"
	MethodWallet     PaymentMethod = "wallet"
	MethodEmi        PaymentMethod = "emi"

	// Crypto methods
	MethodEthereum  PaymentMethod = "ethereum"
	MethodPolygon   PaymentMethod = "polygon"
	MethodBsc       PaymentMethod = "bsc"
	MethodArbitrum  PaymentMethod = "arbitrum"
	MethodSolana    PaymentMethod = "solana"
	MethodLightning PaymentMethod = "lightning"
)

func (m PaymentMethod) IsProcessor() bool {
	switch m {
	case MethodCard, MethodUpi, MethodNetBanking, MethodWallet, MethodEmi:
		return true
	}
	return false
}

func (m PaymentMethod) IsCrypto() bool {
	switch m {
	case MethodEthereum, MethodPolygon, MethodBsc, MethodArbitrum, MethodSolana, MethodLightning:
		return true
	}
	return false
}

// ChainType returns the chain a crypto method settles on, or false for
// processor methods and lightning (which settles off-chain).
func (m PaymentMethod) ChainType() (ChainType, bool) {
	switch m {
	case MethodEthereum:
		return ChainEthereum, true
	case MethodPolygon:
		return ChainPolygon, true
	case MethodBsc:
		return ChainBsc, true
	case MethodArbitrum:
		return ChainArbitrum, true
	case MethodSolana:
		return ChainSolana, true
	}
	return "", false
}

// CurrencyType represents payment currencies
type CurrencyType string

const (
	CurrencyINR   CurrencyType = "INR"
	CurrencyUSD   CurrencyType = "USD"
	CurrencyEUR   CurrencyType = "EUR"
	CurrencyETH   CurrencyType = "ETH"
	CurrencyMATIC CurrencyType = "MATIC"
	CurrencyBNB   CurrencyType = "BNB"
	CurrencySOL   CurrencyType = "SOL"
	CurrencyBTC   CurrencyType = "BTC"
	CurrencyUSDT  CurrencyType = "USDT"
	CurrencyUSDC  CurrencyType = "USDC"
)

// CurrencyForMethod is the fixed method-to-currency mapping for crypto
// methods. Processor methods accept any fiat currency on the allow-list.
func CurrencyForMethod(m PaymentMethod) (CurrencyType, bool) {
	switch m {
	case MethodEthereum:
		return CurrencyETH, true
	case MethodPolygon:
		return CurrencyMATIC, true
	case MethodBsc:
		return CurrencyBNB, true
	case MethodArbitrum:
		return CurrencyETH, true
	case MethodSolana:
		return CurrencySOL, true
	case MethodLightning:
		return CurrencyBTC, true
	}
	return "", false
}
