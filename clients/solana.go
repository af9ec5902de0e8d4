package clients

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/chainpay/gateway/types"
)

// finalizedConfirmations is reported for transactions the cluster has
// finalized; Solana stops counting individual confirmations past this depth.
const finalizedConfirmations = 32

var _ ChainVerifier = (*SolanaClient)(nil)

// SolanaClient verifies payments on Solana via JSON-RPC.
type SolanaClient struct {
	rpcURL  string
	client  *rpc.Client
	timeout time.Duration
}

func NewSolanaClient(rpcURL string, timeout time.Duration) (*SolanaClient, error) {
	return &SolanaClient{
		rpcURL:  rpcURL,
		client:  rpc.New(rpcURL),
		timeout: timeout,
	}, nil
}

func (s *SolanaClient) Chain() types.ChainType { return types.ChainSolana }

func (s *SolanaClient) Close() {}

func (s *SolanaClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// GetBalance returns the lamport balance of an account at finalized
// commitment.
func (s *SolanaClient) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	pubkey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, types.WrapError(types.ErrInvalidAddress, fmt.Sprintf("invalid solana address: %s", address), err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err := s.client.GetBalance(ctx, pubkey, rpc.CommitmentFinalized)
	if err != nil {
		return nil, types.WrapError(types.ErrChain, "failed to fetch balance", err)
	}

	return new(big.Int).SetUint64(out.Value), nil
}

// GetTokenBalance resolves the owner's associated token account for the
// mint and reads its balance. The RPC returns the raw amount as a decimal
// string in the token's smallest unit.
func (s *SolanaClient) GetTokenBalance(ctx context.Context, address, token string) (*big.Int, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, types.WrapError(types.ErrInvalidAddress, fmt.Sprintf("invalid solana address: %s", address), err)
	}
	mint, err := solana.PublicKeyFromBase58(token)
	if err != nil {
		return nil, types.WrapError(types.ErrInvalidAddress, fmt.Sprintf("invalid token mint: %s", token), err)
	}

	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, types.WrapError(types.ErrChain, "failed to derive associated token account", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err := s.client.GetTokenAccountBalance(ctx, ata, rpc.CommitmentFinalized)
	if err != nil {
		return nil, types.WrapError(types.ErrChain, "failed to fetch token balance", err)
	}

	amount, ok := new(big.Int).SetString(out.Value.Amount, 10)
	if !ok {
		return nil, types.NewError(types.ErrChain, fmt.Sprintf("malformed token amount: %s", out.Value.Amount))
	}

	return amount, nil
}

// GetTransactionProof fetches a confirmed transaction. Success means the
// transaction landed without an execution error; a present meta.Err marks
// the transfer failed regardless of its depth.
func (s *SolanaClient) GetTransactionProof(ctx context.Context, txHash string) (*PaymentProof, error) {
	sig, err := solana.SignatureFromBase58(txHash)
	if err != nil {
		return nil, types.WrapError(types.ErrValidation, fmt.Sprintf("invalid transaction signature: %s", txHash), err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err := s.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, types.WrapError(types.ErrChain, fmt.Sprintf("transaction not found: %s", txHash), err)
	}

	proof := &PaymentProof{
		TxHash:      txHash,
		BlockNumber: out.Slot,
		Success:     out.Meta == nil || out.Meta.Err == nil,
	}

	confirmations, err := s.GetConfirmations(ctx, txHash)
	if err == nil {
		proof.Confirmations = confirmations
	}

	return proof, nil
}

// GetConfirmations reads the signature status. A signature the cluster does
// not know yet reports zero confirmations rather than an error; finalized
// transactions report the finalized depth.
func (s *SolanaClient) GetConfirmations(ctx context.Context, txHash string) (uint64, error) {
	sig, err := solana.SignatureFromBase58(txHash)
	if err != nil {
		return 0, types.WrapError(types.ErrValidation, fmt.Sprintf("invalid transaction signature: %s", txHash), err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err := s.client.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return 0, types.WrapError(types.ErrChain, "failed to fetch signature status", err)
	}

	if len(out.Value) == 0 || out.Value[0] == nil {
		return 0, nil
	}

	status := out.Value[0]
	if status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
		return finalizedConfirmations, nil
	}
	if status.Confirmations != nil {
		return *status.Confirmations, nil
	}

	return 0, nil
}

// VerifyPayment checks that the claimed transaction executed without error.
// Recipient and amount matching happens at the payment layer once the
// deposit address watcher attributes the transfer.
func (s *SolanaClient) VerifyPayment(ctx context.Context, params VerifyParams) (*VerifyResult, error) {
	proof, err := s.GetTransactionProof(ctx, params.TxHash)
	if err != nil {
		return nil, err
	}

	if !proof.Success {
		return &VerifyResult{InvalidReason: "transaction failed on chain", Proof: proof}, nil
	}

	return &VerifyResult{IsValid: true, Proof: proof}, nil
}

func (s *SolanaClient) RequiredConfirmations(amount *big.Int) uint64 {
	return RequiredConfirmations(types.ChainSolana, amount)
}
