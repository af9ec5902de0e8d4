package razorpay

import (
	"context"
	"fmt"
	"net/http"

	"github.com/chainpay/gateway/types"
)

// FetchPayment retrieves a payment by id.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*types.RazorpayPaymentEntity, error) {
	var payment types.RazorpayPaymentEntity
	if err := c.do(ctx, http.MethodGet, "/payments/"+paymentID, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// CapturePayment captures an authorized payment for the given amount.
// Amount and currency must match the order.
func (c *Client) CapturePayment(ctx context.Context, paymentID string, amount int64, currency string) (*types.RazorpayPaymentEntity, error) {
	body := map[string]any{
		"amount":   amount,
		"currency": currency,
	}

	var payment types.RazorpayPaymentEntity
	path := fmt.Sprintf("/payments/%s/capture", paymentID)
	if err := c.do(ctx, http.MethodPost, path, body, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// RefundPayment issues a refund. A zero amount refunds the full payment.
func (c *Client) RefundPayment(ctx context.Context, paymentID string, amount int64) (*types.RazorpayRefundEntity, error) {
	body := map[string]any{}
	if amount > 0 {
		body["amount"] = amount
	}

	var refund types.RazorpayRefundEntity
	path := fmt.Sprintf("/payments/%s/refund", paymentID)
	if err := c.do(ctx, http.MethodPost, path, body, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}
