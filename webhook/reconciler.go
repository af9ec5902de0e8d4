package webhook

import (
	"context"
	"encoding/json"
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
)

// Reconciler turns external webhook deliveries into payment transitions.
// Every delivery is persisted before verification so no event is ever
// lost, and deliveries are deduplicated on the provider's event id.
type Reconciler struct {
	store       store.Store
	verifier    *razorpay.WebhookVerifier
	broadcaster *broadcast.Broadcaster
	log         logger.Logger
	metrics     metrics.Recorder
}

type Options struct {
	Store       store.Store
	Verifier    *razorpay.WebhookVerifier
	Broadcaster *broadcast.Broadcaster
	Logger      logger.Logger
	Metrics     metrics.Recorder
}

func NewReconciler(opts Options) (*Reconciler, error) {
	if opts.Store == nil {
		return nil, types.NewError(types.ErrConfig, "store is required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.NoopLogger{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoopRecorder{}
	}
	return &Reconciler{
		store:       opts.Store,
		verifier:    opts.Verifier,
		broadcaster: opts.Broadcaster,
		log:         opts.Logger,
		metrics:     opts.Metrics,
	}, nil
}

// HandleRazorpay processes one webhook delivery. body must be the raw
// request bytes; signature and eventID come from the X-Razorpay-Signature
// and X-Razorpay-Event-Id headers. A repeated event id returns the stored
// event without reprocessing.
func (r *Reconciler) HandleRazorpay(ctx context.Context, body []byte, signature, eventID string) (*types.WebhookEvent, error) {
	if existing, err := r.store.GetWebhookEventByProviderID(ctx, types.SourceRazorpay, eventID); err == nil {
		r.log.Info("duplicate webhook delivery ignored", map[string]any{
			"event_id": eventID,
			"status":   string(existing.Status),
		})
		return existing, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, types.WrapError(types.ErrInternal, "failed to check webhook dedup", err)
	}

	event := &types.WebhookEvent{
		ID:              uuid.New(),
		Source:          types.SourceRazorpay,
		ProviderEventID: eventID,
		Payload:         body,
		Headers: map[string]string{
			"x-razorpay-signature": signature,
			"x-razorpay-event-id":  eventID,
		},
		Signature: signature,
		Status:    types.WebhookReceived,
	}
	if err := r.store.CreateWebhookEvent(ctx, event); err != nil {
		return nil, types.WrapError(types.ErrInternal, "failed to persist webhook event", err)
	}

	if r.verifier == nil {
		return r.fail(ctx, event, types.NewError(types.ErrConfig, "webhook verifier is not configured"))
	}
	if err := r.verifier.VerifyWebhook(body, signature); err != nil {
		r.metrics.IncCounter("webhook_rejected", map[string]string{"chain": ""})
		return r.fail(ctx, event, err)
	}
	event.SignatureVerified = true

	var payload types.RazorpayWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return r.fail(ctx, event, types.WrapError(types.ErrValidation, "malformed webhook payload", err))
	}
	event.EventType = payload.Event
	event.Status = types.WebhookProcessing
	if err := r.store.UpdateWebhookEvent(ctx, event); err != nil {
		return nil, types.WrapError(types.ErrInternal, "failed to update webhook event", err)
	}

	var err error
	switch payload.Event {
	case "payment.authorized":
		err = r.onPaymentEvent(ctx, &payload, types.PaymentProcessing)
	case "payment.captured":
		err = r.onPaymentEvent(ctx, &payload, types.PaymentCompleted)
	case "payment.failed":
		err = r.onPaymentEvent(ctx, &payload, types.PaymentFailed)
	case "refund.created", "refund.processed":
		err = r.onRefundEvent(ctx, &payload)
	default:
		r.log.Info("unhandled webhook event type", map[string]any{"event": payload.Event})
		return r.finish(ctx, event, types.WebhookIgnored)
	}

	if err != nil {
		return r.fail(ctx, event, err)
	}
	r.metrics.IncCounter("webhook_processed", map[string]string{"chain": ""})
	return r.finish(ctx, event, types.WebhookProcessed)
}

func (r *Reconciler) onPaymentEvent(ctx context.Context, payload *types.RazorpayWebhookPayload, target types.PaymentStatus) error {
	if payload.Payload.Payment == nil {
		return types.NewError(types.ErrValidation, "payment event carries no payment entity")
	}
	entity := payload.Payload.Payment.Entity

	payment, err := r.store.GetPaymentByOrderID(ctx, entity.OrderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.NewError(types.ErrNotFound, fmt.Sprintf("no payment for order %s", entity.OrderID))
		}
		return types.WrapError(types.ErrInternal, "failed to load payment", err)
	}

	// a capture replayed after completion, or an authorize arriving after
	// the capture, changes nothing
	if payment.Status == target || (payment.Status == types.PaymentCompleted && target == types.PaymentProcessing) {
		return nil
	}
	if payment.Status.IsTerminal() && payment.Status != types.PaymentCompleted {
		r.log.Warn("webhook for terminal payment ignored", map[string]any{
			"payment_id": payment.ID.String(),
			"status":     string(payment.Status),
			"event":      payload.Event,
		})
		return nil
	}

	payment.ProcessorPaymentID = entity.ID
	payment.Status = target
	if target == types.PaymentCompleted && payment.CompletedAt == nil {
		now := time.Now().UTC()
		payment.CompletedAt = &now
	}
	if err := r.store.UpdatePayment(ctx, payment); err != nil {
		return types.WrapError(types.ErrInternal, "failed to update payment", err)
	}

	r.publish(payment)
	r.log.Info("payment reconciled from webhook", map[string]any{
		"payment_id": payment.ID.String(),
		"status":     string(target),
		"event":      payload.Event,
	})
	return nil
}

func (r *Reconciler) onRefundEvent(ctx context.Context, payload *types.RazorpayWebhookPayload) error {
	if payload.Payload.Refund == nil {
		return types.NewError(types.ErrValidation, "refund event carries no refund entity")
	}
	entity := payload.Payload.Refund.Entity

	// refunds reference the processor payment id, not our order
	payments, err := r.store.ListPaymentsByStatus(ctx, types.PaymentCompleted, 0)
	if err != nil {
		return types.WrapError(types.ErrInternal, "failed to list payments", err)
	}
	for _, payment := range payments {
		if payment.ProcessorPaymentID == entity.PaymentID {
			payment.Status = types.PaymentRefunded
			if err := r.store.UpdatePayment(ctx, payment); err != nil {
				return types.WrapError(types.ErrInternal, "failed to update payment", err)
			}
			r.publish(payment)
			return nil
		}
	}

	r.log.Warn("refund for unknown payment recorded", map[string]any{
		"refund_id":            entity.ID,
		"processor_payment_id": entity.PaymentID,
	})
	return nil
}

// HandleBlockchain processes a chain watcher notification: an inbound
// transfer to a monitored deposit address, or a confirmation update for a
// tracked transaction.
func (r *Reconciler) HandleBlockchain(ctx context.Context, payload *types.BlockchainWebhookPayload) (*types.WebhookEvent, error) {
	if existing, err := r.store.GetWebhookEventByProviderID(ctx, types.SourceBlockchain, payload.EventID); err == nil {
		return existing, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, types.WrapError(types.ErrInternal, "failed to check webhook dedup", err)
	}

	body, _ := json.Marshal(payload)
	event := &types.WebhookEvent{
		ID:              uuid.New(),
		Source:          types.SourceBlockchain,
		ProviderEventID: payload.EventID,
		EventType:       "transfer",
		Payload:         body,
		Status:          types.WebhookReceived,
	}
	if err := r.store.CreateWebhookEvent(ctx, event); err != nil {
		return nil, types.WrapError(types.ErrInternal, "failed to persist webhook event", err)
	}

	chain, err := types.ParseChainType(payload.Chain)
	if err != nil {
		return r.fail(ctx, event, types.WrapError(types.ErrValidation, "unknown chain", err))
	}

	addr, err := r.store.GetActiveAddress(ctx, chain, payload.ToAddress)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return r.finish(ctx, event, types.WebhookIgnored)
		}
		return nil, types.WrapError(types.ErrInternal, "failed to look up address", err)
	}
	if addr.PaymentID == nil {
		return r.finish(ctx, event, types.WebhookIgnored)
	}

	payment, err := r.store.GetPayment(ctx, *addr.PaymentID)
	if err != nil {
		return r.fail(ctx, event, types.WrapError(types.ErrInternal, "failed to load payment", err))
	}
	if payment.Status.IsTerminal() {
		return r.finish(ctx, event, types.WebhookIgnored)
	}

	addr.ReceivedAmount = payload.Amount

	required := clients.RequiredConfirmations(chain, big.NewInt(payment.Amount))
	switch {
	case payload.Amount < payment.Amount:
		if err := r.store.UpdateAddress(ctx, addr); err != nil {
			return nil, types.WrapError(types.ErrInternal, "failed to update address", err)
		}
		r.log.Warn("underpaid transfer observed", map[string]any{
			"payment_id": payment.ID.String(),
			"expected":   payment.Amount,
			"received":   payload.Amount,
		})
		return r.finish(ctx, event, types.WebhookIgnored)
	case payload.Confirmations >= required:
		payment.Status = types.PaymentCompleted
		payment.CryptoTxHash = payload.TxHash
		payment.CryptoFromAddress = payload.FromAddress
		now := time.Now().UTC()
		payment.CompletedAt = &now
		// the settled payment's address stops matching inbound transfers
		addr.IsActive = false
	default:
		payment.Status = types.PaymentProcessing
		payment.CryptoTxHash = payload.TxHash
		payment.CryptoFromAddress = payload.FromAddress
	}

	if err := r.store.UpdateAddress(ctx, addr); err != nil {
		return nil, types.WrapError(types.ErrInternal, "failed to update address", err)
	}
	if err := r.store.UpdatePayment(ctx, payment); err != nil {
		return nil, types.WrapError(types.ErrInternal, "failed to update payment", err)
	}

	r.publish(payment)
	r.metrics.IncCounter("webhook_processed", map[string]string{"chain": chain.String()})
	return r.finish(ctx, event, types.WebhookProcessed)
}

func (r *Reconciler) publish(payment *types.Payment) {
	if r.broadcaster == nil {
		return
	}
	r.broadcaster.Publish(types.PaymentUpdate{
		PaymentID: payment.ID,
		Status:    payment.Status,
		TxHash:    payment.CryptoTxHash,
		Timestamp: time.Now().Unix(),
	})
}

func (r *Reconciler) finish(ctx context.Context, event *types.WebhookEvent, status types.WebhookStatus) (*types.WebhookEvent, error) {
	event.Status = status
	now := time.Now().UTC()
	event.ProcessedAt = &now
	if err := r.store.UpdateWebhookEvent(ctx, event); err != nil {
		return nil, types.WrapError(types.ErrInternal, "failed to update webhook event", err)
	}
	return event, nil
}

// fail records the error on the audit row and propagates it.
func (r *Reconciler) fail(ctx context.Context, event *types.WebhookEvent, cause error) (*types.WebhookEvent, error) {
	event.Status = types.WebhookFailed
	event.ErrorMessage = cause.Error()
	now := time.Now().UTC()
	event.ProcessedAt = &now
	if err := r.store.UpdateWebhookEvent(ctx, event); err != nil {
		r.log.Error("failed to record webhook failure", map[string]any{
			"event_id": event.ID.String(),
			"error":    err.Error(),
		})
	}
	return event, cause
}
