package razorpay

import (
	"fmt"

	"github.com/chainpay/gateway/types"
	"github.com/chainpay/gateway/utils"
)

// WebhookVerifier checks Razorpay's HMAC-SHA256 signatures. Webhooks sign
// the raw request body with the webhook secret; checkout and subscription
// callbacks sign pipe-joined id pairs with the key secret.
type WebhookVerifier struct {
	webhookSecret string
	keySecret     string
}

func NewWebhookVerifier(webhookSecret, keySecret string) *WebhookVerifier {
	return &WebhookVerifier{
		webhookSecret: webhookSecret,
		keySecret:     keySecret,
	}
}

// VerifyWebhook checks the X-Razorpay-Signature header against the raw
// body. The body must be the exact bytes received; re-serialized JSON
// will not match.
func (v *WebhookVerifier) VerifyWebhook(body []byte, signature string) error {
	if !utils.VerifyHMAC(string(body), signature, v.webhookSecret) {
		return types.NewError(types.ErrWebhookVerification, "webhook signature mismatch")
	}
	return nil
}

// VerifyCheckout validates the signature Razorpay's checkout returns after
// a successful payment, computed over "{order_id}|{payment_id}".
func (v *WebhookVerifier) VerifyCheckout(orderID, paymentID, signature string) error {
	payload := fmt.Sprintf("%s|%s", orderID, paymentID)
	if !utils.VerifyHMAC(payload, signature, v.keySecret) {
		return types.NewError(types.ErrWebhookVerification, "checkout signature mismatch")
	}
	return nil
}

// VerifySubscription validates a subscription callback signature, computed
// over "{payment_id}|{subscription_id}".
func (v *WebhookVerifier) VerifySubscription(paymentID, subscriptionID, signature string) error {
	payload := fmt.Sprintf("%s|%s", paymentID, subscriptionID)
	if !utils.VerifyHMAC(payload, signature, v.keySecret) {
		return types.NewError(types.ErrWebhookVerification, "subscription signature mismatch")
	}
	return nil
}
