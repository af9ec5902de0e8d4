package payment

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/chainpay/gateway/broadcast"
	"github.com/chainpay/gateway/clients"
	"github.com/chainpay/gateway/logger"
	"github.com/chainpay/gateway/metrics"
	"github.com/chainpay/gateway/razorpay"
	"github.com/chainpay/gateway/store"
	"github.com/chainpay/gateway/types"
	"github.com/chainpay/gateway/utils"
)

// DefaultExpiry is how long a created payment stays payable.
const DefaultExpiry = time.Hour

// fiat currencies the processor accepts
var allowedFiatCurrencies = map[types.CurrencyType]bool{
	types.CurrencyINR: true,
	types.CurrencyUSD: true,
	types.CurrencyEUR: true,
}

// Processor orchestrates payment creation and settlement across the
// processor, the chain adapters and lightning. It owns all status
// transitions; collaborators only observe.
type Processor struct {
	store       store.Store
	verifiers   map[types.ChainType]clients.ChainVerifier
	lightning   *clients.LightningClient
	processor   *razorpay.Client
	merchants   map[types.ChainType]string
	broadcaster *broadcast.Broadcaster
	expiry      time.Duration
	log         logger.Logger
	metrics     metrics.Recorder
}

// Options configures a Processor. Store and at least the Ethereum verifier
// are required; everything else degrades to a config error on use.
type Options struct {
	Store       store.Store
	Verifiers   map[types.ChainType]clients.ChainVerifier
	Lightning   *clients.LightningClient
	Razorpay    *razorpay.Client
	Merchants   map[types.ChainType]string
	Broadcaster *broadcast.Broadcaster
	Expiry      time.Duration
	Logger      logger.Logger
	Metrics     metrics.Recorder
}

func NewProcessor(opts Options) (*Processor, error) {
	if opts.Store == nil {
		return nil, types.NewError(types.ErrConfig, "store is required")
	}
	if opts.Verifiers[types.ChainEthereum] == nil {
		return nil, types.NewError(types.ErrConfig, "ethereum verifier is required")
	}
	if opts.Expiry <= 0 {
		opts.Expiry = DefaultExpiry
	}
	if opts.Logger == nil {
		opts.Logger = logger.NoopLogger{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoopRecorder{}
	}
	if opts.Merchants == nil {
		opts.Merchants = map[types.ChainType]string{}
	}

	return &Processor{
		store:       opts.Store,
		verifiers:   opts.Verifiers,
		lightning:   opts.Lightning,
		processor:   opts.Razorpay,
		merchants:   opts.Merchants,
		broadcaster: opts.Broadcaster,
		expiry:      opts.Expiry,
		log:         opts.Logger,
		metrics:     opts.Metrics,
	}, nil
}

// CreatePayment validates the request, provisions the method-specific
// collection handle (processor order, deposit address or invoice) and
// persists the payment as pending.
func (p *Processor) CreatePayment(ctx context.Context, req *types.CreatePaymentRequest) (*types.PaymentCreationResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	payment := &types.Payment{
		ID:            uuid.New(),
		Amount:        req.Amount,
		Currency:      req.Currency,
		Status:        types.PaymentPending,
		Method:        req.Method,
		Description:   req.Description,
		CustomerEmail: req.CustomerEmail,
	}
	expiresAt := time.Now().UTC().Add(p.expiry)
	payment.ExpiresAt = &expiresAt

	result := &types.PaymentCreationResult{
		PaymentID: payment.ID,
		Status:    types.PaymentPending,
		ExpiresAt: payment.ExpiresAt,
	}

	switch {
	case req.Method.IsProcessor():
		if err := p.prepareProcessorPayment(ctx, payment, result); err != nil {
			return nil, err
		}
	case req.Method == types.MethodLightning:
		if err := p.prepareLightningPayment(ctx, payment, result); err != nil {
			return nil, err
		}
	case req.Method.IsCrypto():
		if err := p.prepareCryptoPayment(ctx, payment, result); err != nil {
			return nil, err
		}
	default:
		return nil, types.NewError(types.ErrValidation, fmt.Sprintf("unsupported payment method: %s", req.Method))
	}

	if err := p.store.CreatePayment(ctx, payment); err != nil {
		return nil, types.WrapError(types.ErrInternal, "failed to persist payment", err)
	}

	p.metrics.IncCounter("payment_created", map[string]string{"chain": payment.CryptoChain})
	p.log.Info("payment created", map[string]any{
		"payment_id": payment.ID.String(),
		"method":     string(payment.Method),
		"amount":     payment.Amount,
		"currency":   string(payment.Currency),
	})

	return result, nil
}

func (p *Processor) prepareProcessorPayment(ctx context.Context, payment *types.Payment, result *types.PaymentCreationResult) error {
	if !allowedFiatCurrencies[payment.Currency] {
		return types.NewError(types.ErrValidation,
			fmt.Sprintf("currency %s is not accepted by the processor", payment.Currency))
	}
	if p.processor == nil {
		return types.NewError(types.ErrConfig, "razorpay is not configured")
	}

	order, err := p.processor.CreateOrder(ctx, &razorpay.CreateOrderRequest{
		Amount:   payment.Amount,
		Currency: string(payment.Currency),
		Receipt:  payment.ID.String(),
	})
	if err != nil {
		return err
	}

	payment.ProcessorOrderID = order.ID
	result.ProcessorOrderID = order.ID
	result.ProcessorKeyID = p.processor.KeyID()
	return nil
}

func (p *Processor) prepareCryptoPayment(ctx context.Context, payment *types.Payment, result *types.PaymentCreationResult) error {
	expected, ok := types.CurrencyForMethod(payment.Method)
	if !ok || expected != payment.Currency {
		return types.NewError(types.ErrValidation,
			fmt.Sprintf("method %s settles in %s, not %s", payment.Method, expected, payment.Currency))
	}

	chain, _ := payment.Method.ChainType()
	if p.verifiers[chain] == nil {
		return types.NewError(types.ErrConfig, fmt.Sprintf("chain %s is not configured", chain))
	}

	address, err := p.depositAddress(chain)
	if err != nil {
		return err
	}

	payment.CryptoToAddress = address
	payment.CryptoChain = chain.String()
	result.CryptoAddress = address
	result.Chain = chain.String()

	record := &types.CryptoAddress{
		ID:             uuid.New(),
		PaymentID:      &payment.ID,
		Address:        address,
		Chain:          chain,
		IsActive:       true,
		ExpectedAmount: payment.Amount,
	}
	if err := p.store.CreateAddress(ctx, record); err != nil {
		return types.WrapError(types.ErrInternal, "failed to persist deposit address", err)
	}
	return nil
}

// depositAddress returns the merchant's receiving address for the chain.
// Per-payment HD wallet derivation is the extension point here; without it,
// an unconfigured chain cannot accept crypto payments.
func (p *Processor) depositAddress(chain types.ChainType) (string, error) {
	if addr := p.merchants[chain]; addr != "" {
		if !utils.IsValidAddress(addr, chain) {
			return "", types.NewError(types.ErrConfig,
				fmt.Sprintf("merchant address for %s is malformed", chain))
		}
		return addr, nil
	}
	return "", types.NewError(types.ErrNotImplemented,
		fmt.Sprintf("address generation for %s is not implemented; configure a merchant address", chain))
}

func (p *Processor) prepareLightningPayment(ctx context.Context, payment *types.Payment, result *types.PaymentCreationResult) error {
	if payment.Currency != types.CurrencyBTC {
		return types.NewError(types.ErrValidation,
			fmt.Sprintf("lightning settles in BTC, not %s", payment.Currency))
	}
	if p.lightning == nil {
		return types.NewError(types.ErrConfig, "lightning is not configured")
	}

	// amount is in satoshi; lightning invoices are denominated in msat
	invoice, err := p.lightning.CreateInvoice(ctx, uint64(payment.Amount)*1000, payment.Description)
	if err != nil {
		return err
	}

	decoded, err := p.lightning.DecodeInvoice(invoice)
	if err != nil {
		return err
	}

	payment.LightningInvoice = invoice
	payment.LightningPaymentHash = decoded.PaymentHash
	result.LightningInvoice = invoice
	return nil
}

// VerifyCryptoPayment checks a claimed transaction against the chain and
// advances the payment: completed once confirmations reach the policy
// threshold, processing while they accumulate. A rejected claim returns a
// payment error and leaves the payment unchanged, so a later valid proof
// can still settle it.
func (p *Processor) VerifyCryptoPayment(ctx context.Context, req *types.VerifyPaymentRequest) (*types.VerifyPaymentResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	chain, err := types.ParseChainType(req.Chain)
	if err != nil {
		return nil, types.WrapError(types.ErrValidation, "unknown chain", err)
	}
	if err := utils.ValidateTransactionHash(req.TxHash, chain); err != nil {
		return nil, types.WrapError(types.ErrValidation, "invalid transaction hash", err)
	}

	payment, err := p.store.GetPayment(ctx, req.PaymentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, types.NewError(types.ErrNotFound, fmt.Sprintf("payment not found: %s", req.PaymentID))
		}
		return nil, types.WrapError(types.ErrInternal, "failed to load payment", err)
	}

	if payment.Status.IsTerminal() && payment.Status != types.PaymentCompleted {
		return nil, types.NewError(types.ErrPayment,
			fmt.Sprintf("payment is %s and cannot be verified", payment.Status))
	}
	if payment.CryptoChain != chain.String() {
		return nil, types.NewError(types.ErrValidation,
			fmt.Sprintf("payment settles on %s, not %s", payment.CryptoChain, chain))
	}

	if payment.ExpiresAt != nil && payment.Status == types.PaymentPending && time.Now().After(*payment.ExpiresAt) {
		p.transition(ctx, payment, types.PaymentExpired, "", 0)
		return nil, types.NewError(types.ErrPayment, "payment has expired")
	}

	verifier := p.verifiers[chain]
	if verifier == nil {
		return nil, types.NewError(types.ErrConfig, fmt.Sprintf("chain %s is not configured", chain))
	}

	start := time.Now()
	verdict, err := verifier.VerifyPayment(ctx, clients.VerifyParams{
		TxHash:          req.TxHash,
		ExpectedAddress: payment.CryptoToAddress,
		ExpectedAmount:  big.NewInt(payment.Amount),
	})
	p.metrics.ObserveLatency("verify_payment", time.Since(start), map[string]string{"chain": chain.String()})
	if err != nil {
		return nil, err
	}

	required := verifier.RequiredConfirmations(big.NewInt(payment.Amount))
	result := &types.VerifyPaymentResult{
		PaymentID:             payment.ID,
		TxHash:                req.TxHash,
		RequiredConfirmations: required,
		IsValid:               verdict.IsValid,
	}
	if verdict.Proof != nil {
		result.Confirmations = verdict.Proof.Confirmations
	}

	if err := p.recordTransaction(ctx, payment, chain, req.TxHash, required, verdict); err != nil {
		return nil, err
	}

	switch {
	case !verdict.IsValid:
		p.log.Warn("payment verification rejected", map[string]any{
			"payment_id": payment.ID.String(),
			"tx_hash":    req.TxHash,
			"reason":     verdict.InvalidReason,
		})
		p.metrics.IncCounter("payment_verification_rejected", map[string]string{"chain": chain.String()})
		return nil, types.NewError(types.ErrPayment,
			fmt.Sprintf("transaction %s rejected: %s", req.TxHash, verdict.InvalidReason))
	case payment.Status == types.PaymentCompleted:
		// replayed proof for an already settled payment
		result.Status = types.PaymentCompleted
	case result.Confirmations >= required:
		p.transition(ctx, payment, types.PaymentCompleted, req.TxHash, result.Confirmations)
		result.Status = types.PaymentCompleted
	default:
		p.transition(ctx, payment, types.PaymentProcessing, req.TxHash, result.Confirmations)
		result.Status = types.PaymentProcessing
	}

	p.metrics.IncCounter("payment_verified", map[string]string{"chain": chain.String()})
	return result, nil
}

// recordTransaction creates or refreshes the chain observation record for
// a claimed transaction. Confirmations never move backwards, and a
// confirmed record stays confirmed even when a lagging node reports fewer
// confirmations on a replay.
func (p *Processor) recordTransaction(ctx context.Context, payment *types.Payment, chain types.ChainType, txHash string, required uint64, verdict *clients.VerifyResult) error {
	confirmations := uint64(0)
	blockNumber := uint64(0)
	fromAddress := ""
	if verdict.Proof != nil {
		confirmations = verdict.Proof.Confirmations
		blockNumber = verdict.Proof.BlockNumber
		fromAddress = verdict.Proof.FromAddress
	}

	status := types.TxConfirming
	var confirmedAt *time.Time
	switch {
	case !verdict.IsValid:
		status = types.TxFailed
	case confirmations >= required:
		status = types.TxConfirmed
		now := time.Now().UTC()
		confirmedAt = &now
	}

	existing, err := p.store.GetTransactionByHash(ctx, chain, txHash)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return types.WrapError(types.ErrInternal, "failed to load transaction", err)
	}

	if existing == nil {
		tx := &types.Transaction{
			ID:                    uuid.New(),
			PaymentID:             payment.ID,
			Type:                  types.TxTypePayment,
			Status:                status,
			Chain:                 chain,
			TxHash:                txHash,
			FromAddress:           fromAddress,
			ToAddress:             payment.CryptoToAddress,
			Amount:                payment.Amount,
			BlockNumber:           blockNumber,
			Confirmations:         confirmations,
			RequiredConfirmations: required,
			ConfirmedAt:           confirmedAt,
		}
		if err := p.store.CreateTransaction(ctx, tx); err != nil {
			return types.WrapError(types.ErrInternal, "failed to persist transaction", err)
		}
		return nil
	}

	if confirmations > existing.Confirmations {
		existing.Confirmations = confirmations
	}
	if existing.Status != types.TxConfirmed {
		existing.Status = status
	}
	existing.BlockNumber = blockNumber
	if existing.ConfirmedAt == nil {
		existing.ConfirmedAt = confirmedAt
	}
	if err := p.store.UpdateTransaction(ctx, existing); err != nil {
		return types.WrapError(types.ErrInternal, "failed to update transaction", err)
	}
	return nil
}

// transition moves a payment to a new status, persists it and notifies
// subscribers. Completed payments keep their original completion time on
// replayed verifications. A terminal status retires the payment's deposit
// address from inbound matching.
func (p *Processor) transition(ctx context.Context, payment *types.Payment, status types.PaymentStatus, txHash string, confirmations uint64) {
	if payment.Status == status && payment.CryptoTxHash == txHash {
		return
	}

	payment.Status = status
	if txHash != "" {
		payment.CryptoTxHash = txHash
	}
	if status == types.PaymentCompleted && payment.CompletedAt == nil {
		now := time.Now().UTC()
		payment.CompletedAt = &now
	}

	if err := p.store.UpdatePayment(ctx, payment); err != nil {
		p.log.Error("failed to persist payment transition", map[string]any{
			"payment_id": payment.ID.String(),
			"status":     string(status),
			"error":      err.Error(),
		})
		return
	}

	if status.IsTerminal() && payment.CryptoToAddress != "" {
		p.deactivateAddress(ctx, payment.ID)
	}

	if p.broadcaster != nil {
		p.broadcaster.Publish(types.PaymentUpdate{
			PaymentID:     payment.ID,
			Status:        status,
			TxHash:        txHash,
			Confirmations: int(confirmations),
			Timestamp:     time.Now().Unix(),
		})
	}

	p.log.Info("payment transitioned", map[string]any{
		"payment_id": payment.ID.String(),
		"status":     string(status),
	})
}

// deactivateAddress retires the deposit address bound to a payment so it
// no longer matches inbound transfers.
func (p *Processor) deactivateAddress(ctx context.Context, paymentID uuid.UUID) {
	addr, err := p.store.GetAddressByPaymentID(ctx, paymentID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			p.log.Error("failed to load deposit address", map[string]any{
				"payment_id": paymentID.String(),
				"error":      err.Error(),
			})
		}
		return
	}
	if !addr.IsActive {
		return
	}

	addr.IsActive = false
	if err := p.store.UpdateAddress(ctx, addr); err != nil {
		p.log.Error("failed to deactivate deposit address", map[string]any{
			"payment_id": paymentID.String(),
			"address":    addr.Address,
			"error":      err.Error(),
		})
	}
}

// GetPayment returns a payment by id.
func (p *Processor) GetPayment(ctx context.Context, id uuid.UUID) (*types.Payment, error) {
	payment, err := p.store.GetPayment(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, types.NewError(types.ErrNotFound, fmt.Sprintf("payment not found: %s", id))
		}
		return nil, types.WrapError(types.ErrInternal, "failed to load payment", err)
	}
	return payment, nil
}

// VerifyWalletSignature proves wallet ownership for the payment's chain.
func (p *Processor) VerifyWalletSignature(ctx context.Context, req *types.WalletSignatureRequest) (bool, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return false, err
	}
	chain, err := types.ParseChainType(req.Chain)
	if err != nil {
		return false, types.WrapError(types.ErrValidation, "unknown chain", err)
	}
	return utils.VerifyWalletSignature(req.Address, req.Message, req.Signature, chain)
}

// ExpirePending sweeps pending payments whose expiry window has passed.
// Intended to run periodically from a background goroutine.
func (p *Processor) ExpirePending(ctx context.Context) (int, error) {
	pending, err := p.store.ListPaymentsByStatus(ctx, types.PaymentPending, 0)
	if err != nil {
		return 0, types.WrapError(types.ErrInternal, "failed to list pending payments", err)
	}

	expired := 0
	now := time.Now()
	for _, payment := range pending {
		if payment.ExpiresAt != nil && now.After(*payment.ExpiresAt) {
			p.transition(ctx, payment, types.PaymentExpired, "", 0)
			expired++
		}
	}
	return expired, nil
}

// CaptureProcessorPayment captures an authorized processor payment and
// completes the local record.
func (p *Processor) CaptureProcessorPayment(ctx context.Context, paymentID uuid.UUID) (*types.Payment, error) {
	if p.processor == nil {
		return nil, types.NewError(types.ErrConfig, "razorpay is not configured")
	}

	payment, err := p.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.ProcessorPaymentID == "" {
		return nil, types.NewError(types.ErrPayment, "payment has no processor payment id to capture")
	}

	if _, err := p.processor.CapturePayment(ctx, payment.ProcessorPaymentID, payment.Amount, string(payment.Currency)); err != nil {
		return nil, err
	}

	p.transition(ctx, payment, types.PaymentCompleted, "", 0)
	return payment, nil
}

// RefundProcessorPayment refunds a completed processor payment in full.
func (p *Processor) RefundProcessorPayment(ctx context.Context, paymentID uuid.UUID) (*types.Payment, error) {
	if p.processor == nil {
		return nil, types.NewError(types.ErrConfig, "razorpay is not configured")
	}

	payment, err := p.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != types.PaymentCompleted {
		return nil, types.NewError(types.ErrPayment,
			fmt.Sprintf("only completed payments can be refunded, payment is %s", payment.Status))
	}
	if payment.ProcessorPaymentID == "" {
		return nil, types.NewError(types.ErrPayment, "payment has no processor payment id to refund")
	}

	if _, err := p.processor.RefundPayment(ctx, payment.ProcessorPaymentID, 0); err != nil {
		return nil, err
	}

	p.transition(ctx, payment, types.PaymentRefunded, "", 0)
	return payment, nil
}
