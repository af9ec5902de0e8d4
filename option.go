package gateway

import (
	"time"

	"github.com/chainpay/gateway/clients"
	"github.com/chainpay/gateway/logger"
	"github.com/chainpay/gateway/metrics"
	"github.com/chainpay/gateway/razorpay"
)

type Option func(*Gateway)

func WithLogger(l logger.Logger) Option {
	return func(g *Gateway) {
		g.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(g *Gateway) {
		g.metrics = r
	}
}

// WithTimeout bounds every external call (chain RPC, processor API).
func WithTimeout(t time.Duration) Option {
	return func(g *Gateway) {
		if t > 0 {
			g.timeout = t
		}
	}
}

// WithExpiry sets how long created payments stay payable.
func WithExpiry(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.expiry = d
		}
	}
}

// WithRazorpay enables fiat payments through Razorpay.
func WithRazorpay(keyID, keySecret, webhookSecret string) Option {
	return func(g *Gateway) {
		g.razorpay = razorpay.NewClient(keyID, keySecret, g.timeout)
		g.rzpVerifier = razorpay.NewWebhookVerifier(webhookSecret, keySecret)
	}
}

// WithLightning attaches a lightning node for invoice creation and
// settlement checks.
func WithLightning(nodeURL string) Option {
	return func(g *Gateway) {
		g.lightning = clients.NewLightningClient(nodeURL)
	}
}
