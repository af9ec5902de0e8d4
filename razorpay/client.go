package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chainpay/gateway/types"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

// apiError is the envelope Razorpay wraps failures in.
type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client is a minimal Razorpay REST client covering the order and payment
// endpoints the gateway uses. Requests authenticate with HTTP basic auth
// (key id / key secret) and share one timeout.
type Client struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

func NewClient(keyID, keySecret string, timeout time.Duration) *Client {
	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// KeyID returns the public key id, which checkout pages need.
func (c *Client) KeyID() string { return c.keyID }

// do sends an authenticated JSON request and decodes the response into out.
// Non-2xx responses surface Razorpay's error description.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return types.WrapError(types.ErrInternal, "failed to encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return types.WrapError(types.ErrInternal, "failed to build request", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.WrapError(types.ErrProcessor, "razorpay request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.WrapError(types.ErrProcessor, "failed to read razorpay response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Description != "" {
			return types.NewError(types.ErrProcessor,
				fmt.Sprintf("razorpay error (%d): %s", resp.StatusCode, apiErr.Error.Description))
		}
		return types.NewError(types.ErrProcessor,
			fmt.Sprintf("razorpay error: status %d", resp.StatusCode))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return types.WrapError(types.ErrProcessor, "failed to decode razorpay response", err)
		}
	}

	return nil
}
