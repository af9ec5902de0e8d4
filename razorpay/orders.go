package razorpay

import (
	"context"
	"net/http"

	"github.com/chainpay/gateway/types"
)

// CreateOrderRequest creates a Razorpay order. Amount is in the smallest
// currency unit (paise for INR).
type CreateOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// CreateOrder registers an order, the prerequisite to collecting a checkout
// payment.
func (c *Client) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*types.RazorpayOrderEntity, error) {
	var order types.RazorpayOrderEntity
	if err := c.do(ctx, http.MethodPost, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// FetchOrder retrieves an order by id.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*types.RazorpayOrderEntity, error) {
	var order types.RazorpayOrderEntity
	if err := c.do(ctx, http.MethodGet, "/orders/"+orderID, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
