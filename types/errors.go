package types

import "fmt"

// Common error codes
const (
	ErrValidation          = "VALIDATION_ERROR"
	ErrInvalidAddress      = "INVALID_ADDRESS"
	ErrInvalidSignature    = "INVALID_SIGNATURE"
	ErrNotFound            = "NOT_FOUND"
	ErrPayment             = "PAYMENT_ERROR"
	ErrChain               = "CHAIN_ERROR"
	ErrProcessor           = "PROCESSOR_ERROR"
	ErrLightning           = "LIGHTNING_ERROR"
	ErrWebhookVerification = "WEBHOOK_VERIFICATION_FAILED"
	ErrConfig              = "CONFIG_ERROR"
	ErrNotImplemented      = "NOT_IMPLEMENTED"
	ErrInternal            = "INTERNAL_ERROR"
)

// Error is the gateway error type. Code is a stable machine-readable
// classifier; Message is safe to surface to clients. Err, when set, carries
// the underlying cause and is never exposed beyond logs.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by code so callers can branch with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WrapError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// IsCode reports whether err carries the given gateway error code.
func IsCode(err error, code string) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
