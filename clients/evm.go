package clients

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/chainpay/gateway/types"
)

// erc20BalanceOfSelector is the first four bytes of keccak256("balanceOf(address)").
var erc20BalanceOfSelector = []byte{0x70, 0xa0, 0x82, 0x31}

var _ ChainVerifier = (*EVMClient)(nil)

// EVMClient verifies payments on Ethereum-compatible chains. A single
// implementation serves Ethereum, Polygon, BSC and Arbitrum; only the RPC
// endpoint, the chain id and the confirmation policy differ per chain.
type EVMClient struct {
	chain   types.ChainType
	rpcURL  string
	chainID uint64
	signer  ethtypes.Signer
	client  *ethclient.Client
	timeout time.Duration
}

func NewEVMClient(chain types.ChainType, rpcURL string, chainID uint64, timeout time.Duration) (*EVMClient, error) {
	if !chain.IsEVM() {
		return nil, types.NewError(types.ErrConfig, fmt.Sprintf("not an EVM chain: %s", chain))
	}
	if chainID == 0 {
		return nil, types.NewError(types.ErrConfig, fmt.Sprintf("chain id is required for %s", chain))
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, types.WrapError(types.ErrChain, fmt.Sprintf("failed to connect to %s RPC", chain), err)
	}

	return &EVMClient{
		chain:   chain,
		rpcURL:  rpcURL,
		chainID: chainID,
		signer:  ethtypes.LatestSignerForChainID(new(big.Int).SetUint64(chainID)),
		client:  client,
		timeout: timeout,
	}, nil
}

func (e *EVMClient) Chain() types.ChainType { return e.chain }

// ChainID returns the numeric chain id the client recovers senders against.
func (e *EVMClient) ChainID() uint64 { return e.chainID }

func (e *EVMClient) Close() {
	e.client.Close()
}

func (e *EVMClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.timeout)
}

// GetBalance returns the native balance in wei at the latest block.
func (e *EVMClient) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, types.NewError(types.ErrInvalidAddress, fmt.Sprintf("invalid ethereum address: %s", address))
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	balance, err := e.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, types.WrapError(types.ErrChain, "failed to fetch balance", err)
	}

	return balance, nil
}

// GetTokenBalance calls balanceOf(address) on an ERC-20 contract with
// hand-built calldata: the four-byte selector followed by the holder
// address left-padded to 32 bytes. The first 32 returned bytes are the
// big-endian balance.
func (e *EVMClient) GetTokenBalance(ctx context.Context, address, token string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, types.NewError(types.ErrInvalidAddress, fmt.Sprintf("invalid ethereum address: %s", address))
	}
	if !common.IsHexAddress(token) {
		return nil, types.NewError(types.ErrInvalidAddress, fmt.Sprintf("invalid token contract: %s", token))
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	data := make([]byte, 0, 36)
	data = append(data, erc20BalanceOfSelector...)
	data = append(data, common.LeftPadBytes(common.HexToAddress(address).Bytes(), 32)...)

	contract := common.HexToAddress(token)
	result, err := e.client.CallContract(ctx, ethereum.CallMsg{
		To:   &contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, types.WrapError(types.ErrChain, "balanceOf call failed", err)
	}
	if len(result) < 32 {
		return nil, types.NewError(types.ErrChain, fmt.Sprintf("balanceOf returned %d bytes, want 32", len(result)))
	}

	return new(big.Int).SetBytes(result[:32]), nil
}

// GetTransactionProof fetches the transaction, its receipt and the current
// head, and condenses them into a PaymentProof. A mined transaction's
// confirmations are head minus receipt block; a pending one reports zero
// confirmations and no block number.
func (e *EVMClient) GetTransactionProof(ctx context.Context, txHash string) (*PaymentProof, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	hash := common.HexToHash(txHash)

	tx, isPending, err := e.client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, types.WrapError(types.ErrChain, fmt.Sprintf("transaction not found: %s", txHash), err)
	}

	proof := &PaymentProof{
		TxHash: txHash,
		Amount: tx.Value(),
	}
	if tx.To() != nil {
		proof.ToAddress = tx.To().Hex()
	}

	if from, ferr := ethtypes.Sender(e.signer, tx); ferr == nil {
		proof.FromAddress = from.Hex()
	}

	if isPending {
		return proof, nil
	}

	receipt, err := e.client.TransactionReceipt(ctx, hash)
	if err != nil {
		return proof, nil
	}

	proof.Success = receipt.Status == ethtypes.ReceiptStatusSuccessful
	proof.BlockNumber = receipt.BlockNumber.Uint64()

	head, err := e.client.BlockNumber(ctx)
	if err != nil {
		return nil, types.WrapError(types.ErrChain, "failed to fetch block number", err)
	}
	if head >= proof.BlockNumber {
		proof.Confirmations = head - proof.BlockNumber
	}

	return proof, nil
}

// GetConfirmations reports confirmations for a transaction; zero for
// pending or unmined transactions.
func (e *EVMClient) GetConfirmations(ctx context.Context, txHash string) (uint64, error) {
	proof, err := e.GetTransactionProof(ctx, txHash)
	if err != nil {
		return 0, err
	}
	return proof.Confirmations, nil
}

// VerifyPayment checks that the transaction succeeded, paid the expected
// address, and carried at least the expected amount. Mismatches come back
// as an invalid result, not an error.
func (e *EVMClient) VerifyPayment(ctx context.Context, params VerifyParams) (*VerifyResult, error) {
	proof, err := e.GetTransactionProof(ctx, params.TxHash)
	if err != nil {
		return nil, err
	}

	if !proof.Success {
		return &VerifyResult{InvalidReason: "transaction reverted or not yet mined", Proof: proof}, nil
	}
	if !strings.EqualFold(proof.ToAddress, params.ExpectedAddress) {
		return &VerifyResult{InvalidReason: "recipient does not match expected address", Proof: proof}, nil
	}
	if params.ExpectedAmount != nil && proof.Amount.Cmp(params.ExpectedAmount) < 0 {
		return &VerifyResult{InvalidReason: "amount below expected", Proof: proof}, nil
	}

	return &VerifyResult{IsValid: true, Proof: proof}, nil
}

func (e *EVMClient) RequiredConfirmations(amount *big.Int) uint64 {
	return RequiredConfirmations(e.chain, amount)
}
