package clients

import (
	"context"
	"math/big"

	"github.com/chainpay/gateway/types"
)

// PaymentProof is a chain-agnostic snapshot of an observed transaction.
type PaymentProof struct {
	TxHash        string
	FromAddress   string
	ToAddress     string
	Amount        *big.Int
	BlockNumber   uint64
	Confirmations uint64
	Success       bool
}

// VerifyParams carries the expectation a claimed payment is checked against.
type VerifyParams struct {
	TxHash          string
	ExpectedAddress string
	ExpectedAmount  *big.Int
	TokenAddress    string
}

// VerifyResult is a chain adapter's verdict on a claimed payment.
type VerifyResult struct {
	IsValid       bool
	InvalidReason string
	Proof         *PaymentProof
}

// ChainVerifier is implemented by every chain adapter. A verification
// failure (wrong recipient, insufficient amount, reverted transaction) is
// reported in VerifyResult, not as an error; errors mean the chain could
// not be consulted.
type ChainVerifier interface {
	// GetBalance returns the native balance of an address in the chain's
	// smallest unit.
	GetBalance(ctx context.Context, address string) (*big.Int, error)

	// GetTokenBalance returns the token balance of an address for the given
	// token mint or contract.
	GetTokenBalance(ctx context.Context, address, token string) (*big.Int, error)

	// GetTransactionProof fetches the current on-chain view of a transaction.
	GetTransactionProof(ctx context.Context, txHash string) (*PaymentProof, error)

	// GetConfirmations returns how many confirmations a transaction has.
	// Unknown transactions report zero confirmations, not an error.
	GetConfirmations(ctx context.Context, txHash string) (uint64, error)

	// VerifyPayment checks a claimed transaction against the expected
	// recipient and amount.
	VerifyPayment(ctx context.Context, params VerifyParams) (*VerifyResult, error)

	// RequiredConfirmations applies the confirmation policy for an amount
	// in the chain's smallest unit.
	RequiredConfirmations(amount *big.Int) uint64

	Chain() types.ChainType
	Close()
}
