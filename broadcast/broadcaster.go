package broadcast

import (
	"sync"

	"github.com/google/uuid"

	"github.com/chainpay/gateway/logger"
	"github.com/chainpay/gateway/types"
)

// subscriberBuffer bounds each subscriber channel; a subscriber that falls
// further behind starts losing updates rather than blocking publishers.
const subscriberBuffer = 16

// Broadcaster fans payment status updates out to subscribers. Publishing
// is fire-and-forget: a slow or absent subscriber never blocks or fails
// the payment flow.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]chan types.PaymentUpdate
	closed bool
	log    logger.Logger
}

func NewBroadcaster(log logger.Logger) *Broadcaster {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Broadcaster{
		subs: make(map[uuid.UUID]chan types.PaymentUpdate),
		log:  log,
	}
}

// Subscribe registers a new listener and returns its id and channel. The
// channel is closed on Unsubscribe or Close.
func (b *Broadcaster) Subscribe() (uuid.UUID, <-chan types.PaymentUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New()
	ch := make(chan types.PaymentUpdate, subscriberBuffer)
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (b *Broadcaster) Unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers an update to every subscriber without blocking. Updates
// to a full subscriber channel are dropped and logged.
func (b *Broadcaster) Publish(update types.PaymentUpdate) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- update:
		default:
			b.log.Warn("dropping payment update for slow subscriber", map[string]any{
				"subscriber": id.String(),
				"payment_id": update.PaymentID.String(),
			})
		}
	}
}

// Close shuts down all subscriber channels. Publish after Close is a no-op.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
