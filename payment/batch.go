package payment

import (
	"context"

	"github.com/chainpay/gateway/types"
)

// BatchVerifyCryptoPayments verifies multiple claimed payments
// concurrently. Results keep the order of the requests; a per-request
// failure is reported in its slot without aborting the batch, and the
// first error is returned alongside the partial results.
func (p *Processor) BatchVerifyCryptoPayments(
	ctx context.Context,
	requests []*types.VerifyPaymentRequest,
) ([]*types.VerifyPaymentResult, error) {
	if len(requests) == 0 {
		return nil, types.NewError(types.ErrValidation, "no verification requests given")
	}

	results := make([]*types.VerifyPaymentResult, len(requests))
	errs := make([]error, len(requests))

	type indexed struct {
		index  int
		result *types.VerifyPaymentResult
		err    error
	}

	resultChan := make(chan indexed, len(requests))

	for i, req := range requests {
		go func(index int, r *types.VerifyPaymentRequest) {
			result, err := p.VerifyCryptoPayment(ctx, r)
			resultChan <- indexed{index: index, result: result, err: err}
		}(i, req)
	}

	for range requests {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-resultChan:
			results[res.index] = res.result
			errs[res.index] = res.err
		}
	}

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}

	return results, nil
}
