// Package gateway is a multi-chain payment gateway core: it creates
// payments, verifies crypto settlements on EVM chains and Solana, decodes
// Lightning invoices, and reconciles fiat payments from Razorpay webhooks.
package gateway

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/chainpay/gateway/broadcast"
	"github.com/chainpay/gateway/clients"
	"github.com/chainpay/gateway/config"
	"github.com/chainpay/gateway/logger"
	"github.com/chainpay/gateway/metrics"
	"github.com/chainpay/gateway/payment"
	"github.com/chainpay/gateway/razorpay"
	"github.com/chainpay/gateway/store"
	"github.com/chainpay/gateway/types"
	"github.com/chainpay/gateway/webhook"
)

// Gateway is the top-level entry point tying the chain adapters, the
// processor client, the store and the webhook reconciler together.
type Gateway struct {
	store       store.Store
	verifiers   map[types.ChainType]clients.ChainVerifier
	merchants   map[types.ChainType]string
	lightning   *clients.LightningClient
	razorpay    *razorpay.Client
	rzpVerifier *razorpay.WebhookVerifier
	broadcaster *broadcast.Broadcaster
	processor   *payment.Processor
	reconciler  *webhook.Reconciler
	timeout     time.Duration
	expiry      time.Duration
	logger      logger.Logger
	metrics     metrics.Recorder
}

// New creates a Gateway around a store. Chains are registered with
// AddChain; the first payment operation requires at least Ethereum.
func New(st store.Store, opts ...Option) (*Gateway, error) {
	if st == nil {
		return nil, types.NewError(types.ErrConfig, "store is required")
	}

	g := &Gateway{
		store:     st,
		verifiers: make(map[types.ChainType]clients.ChainVerifier),
		merchants: make(map[types.ChainType]string),
		timeout:   config.DefaultRequestTimeout,
		expiry:    payment.DefaultExpiry,
		logger:    logger.NoopLogger{},
		metrics:   metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.broadcaster = broadcast.NewBroadcaster(g.logger)

	return g, nil
}

// NewFromConfig builds a fully wired Gateway from environment config:
// every configured chain gets an adapter, and Razorpay and Lightning are
// attached when their settings are present.
func NewFromConfig(cfg *config.Config, st store.Store, opts ...Option) (*Gateway, error) {
	opts = append([]Option{WithTimeout(cfg.RequestTimeout)}, opts...)
	if cfg.RazorpayConfigured() {
		opts = append(opts, WithRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret))
	}
	if cfg.LightningNodeURL != "" {
		opts = append(opts, WithLightning(cfg.LightningNodeURL))
	}

	g, err := New(st, opts...)
	if err != nil {
		return nil, err
	}

	chains := map[types.ChainType]config.ChainConfig{
		types.ChainEthereum: cfg.Ethereum,
		types.ChainPolygon:  cfg.Polygon,
		types.ChainBsc:      cfg.Bsc,
		types.ChainArbitrum: cfg.Arbitrum,
		types.ChainSolana:   cfg.Solana,
	}
	for chain, cc := range chains {
		if !cc.Enabled() {
			continue
		}
		if err := g.AddChain(chain, cc.RPCURL, cc.MerchantAddress); err != nil {
			g.Close()
			return nil, err
		}
	}

	return g, nil
}

// AddChain registers a chain adapter. merchantAddress may be empty, in
// which case crypto payments on the chain fail until address generation
// is available.
func (g *Gateway) AddChain(chain types.ChainType, rpcURL, merchantAddress string) error {
	if g.processor != nil {
		return types.NewError(types.ErrConfig, "chains must be added before the first payment operation")
	}

	var (
		verifier clients.ChainVerifier
		err      error
	)
	switch {
	case chain.IsEVM():
		verifier, err = clients.NewEVMClient(chain, rpcURL, chain.EVMChainID(), g.timeout)
	case chain.IsSolana():
		verifier, err = clients.NewSolanaClient(rpcURL, g.timeout)
	default:
		return types.NewError(types.ErrConfig, fmt.Sprintf("unsupported chain: %s", chain))
	}
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", chain, err)
	}

	g.verifiers[chain] = verifier
	if merchantAddress != "" {
		g.merchants[chain] = merchantAddress
	}
	return nil
}

// IsChainSupported reports whether a chain adapter is registered.
func (g *Gateway) IsChainSupported(chain types.ChainType) bool {
	return g.verifiers[chain] != nil
}

// ensure lazily builds the orchestrator and reconciler once all chains
// are registered.
func (g *Gateway) ensure() error {
	if g.processor != nil {
		return nil
	}

	proc, err := payment.NewProcessor(payment.Options{
		Store:       g.store,
		Verifiers:   g.verifiers,
		Lightning:   g.lightning,
		Razorpay:    g.razorpay,
		Merchants:   g.merchants,
		Broadcaster: g.broadcaster,
		Expiry:      g.expiry,
		Logger:      g.logger,
		Metrics:     g.metrics,
	})
	if err != nil {
		return err
	}

	rec, err := webhook.NewReconciler(webhook.Options{
		Store:       g.store,
		Verifier:    g.rzpVerifier,
		Broadcaster: g.broadcaster,
		Logger:      g.logger,
		Metrics:     g.metrics,
	})
	if err != nil {
		return err
	}

	g.processor = proc
	g.reconciler = rec
	return nil
}

// CreatePayment provisions a payment for any supported method.
func (g *Gateway) CreatePayment(ctx context.Context, req *types.CreatePaymentRequest) (*types.PaymentCreationResult, error) {
	if err := g.ensure(); err != nil {
		return nil, err
	}
	return g.processor.CreatePayment(ctx, req)
}

// VerifyCryptoPayment checks a claimed on-chain settlement and advances
// the payment status.
func (g *Gateway) VerifyCryptoPayment(ctx context.Context, req *types.VerifyPaymentRequest) (*types.VerifyPaymentResult, error) {
	if err := g.ensure(); err != nil {
		return nil, err
	}
	return g.processor.VerifyCryptoPayment(ctx, req)
}

// GetPayment returns a payment by id.
func (g *Gateway) GetPayment(ctx context.Context, id uuid.UUID) (*types.Payment, error) {
	if err := g.ensure(); err != nil {
		return nil, err
	}
	return g.processor.GetPayment(ctx, id)
}

// VerifyWalletSignature proves wallet ownership for a payment flow.
func (g *Gateway) VerifyWalletSignature(ctx context.Context, req *types.WalletSignatureRequest) (bool, error) {
	if err := g.ensure(); err != nil {
		return false, err
	}
	return g.processor.VerifyWalletSignature(ctx, req)
}

// HandleRazorpayWebhook reconciles one processor webhook delivery.
func (g *Gateway) HandleRazorpayWebhook(ctx context.Context, body []byte, signature, eventID string) (*types.WebhookEvent, error) {
	if err := g.ensure(); err != nil {
		return nil, err
	}
	return g.reconciler.HandleRazorpay(ctx, body, signature, eventID)
}

// HandleBlockchainWebhook reconciles a chain watcher notification.
func (g *Gateway) HandleBlockchainWebhook(ctx context.Context, payload *types.BlockchainWebhookPayload) (*types.WebhookEvent, error) {
	if err := g.ensure(); err != nil {
		return nil, err
	}
	return g.reconciler.HandleBlockchain(ctx, payload)
}

// DecodeLightningInvoice decodes a BOLT11 payment request offline.
func (g *Gateway) DecodeLightningInvoice(invoice string) (*clients.Bolt11Invoice, error) {
	return clients.DecodeBolt11(invoice)
}

// GetBalance returns the native balance of an address on a registered
// chain, in the chain's smallest unit.
func (g *Gateway) GetBalance(ctx context.Context, chain types.ChainType, address string) (*big.Int, error) {
	verifier := g.verifiers[chain]
	if verifier == nil {
		return nil, types.NewError(types.ErrConfig, fmt.Sprintf("chain %s is not configured", chain))
	}
	return verifier.GetBalance(ctx, address)
}

// Subscribe returns a channel of payment status updates.
func (g *Gateway) Subscribe() (uuid.UUID, <-chan types.PaymentUpdate) {
	return g.broadcaster.Subscribe()
}

// Unsubscribe removes a status update listener.
func (g *Gateway) Unsubscribe(id uuid.UUID) {
	g.broadcaster.Unsubscribe(id)
}

// ExpirePending sweeps pending payments past their expiry window.
func (g *Gateway) ExpirePending(ctx context.Context) (int, error) {
	if err := g.ensure(); err != nil {
		return 0, err
	}
	return g.processor.ExpirePending(ctx)
}

// CaptureProcessorPayment captures an authorized processor payment.
func (g *Gateway) CaptureProcessorPayment(ctx context.Context, id uuid.UUID) (*types.Payment, error) {
	if err := g.ensure(); err != nil {
		return nil, err
	}
	return g.processor.CaptureProcessorPayment(ctx, id)
}

// RefundProcessorPayment refunds a completed processor payment in full.
func (g *Gateway) RefundProcessorPayment(ctx context.Context, id uuid.UUID) (*types.Payment, error) {
	if err := g.ensure(); err != nil {
		return nil, err
	}
	return g.processor.RefundProcessorPayment(ctx, id)
}

// Close shuts down chain connections and the update broadcaster.
func (g *Gateway) Close() {
	for _, verifier := range g.verifiers {
		verifier.Close()
	}
	g.broadcaster.Close()
}

// Version information
const Version = "1.0.0"
