package utils

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/chainpay/gateway/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs the validate tags on any request struct.
func ValidateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		return types.WrapError(types.ErrValidation, "request validation failed", err)
	}
	return nil
}

// ValidateAmount checks if an amount string is a non-negative decimal
func ValidateAmount(amount string) (*decimal.Decimal, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if dec.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	return &dec, nil
}

// ValidateTransactionHash checks hash shape per chain family: EVM hashes are
// 0x + 64 hex, Solana signatures are 86-90 character Base58 strings.
func ValidateTransactionHash(hash string, chain types.ChainType) error {
	if hash == "" {
		return fmt.Errorf("transaction hash cannot be empty")
	}

	switch {
	case chain.IsEVM():
		if !strings.HasPrefix(hash, "0x") {
			return fmt.Errorf("EVM transaction hash must start with 0x")
		}
		if len(hash) != 66 {
			return fmt.Errorf("EVM transaction hash must be 66 characters long")
		}
		if !isHexString(hash[2:]) {
			return fmt.Errorf("EVM transaction hash must be valid hex")
		}

	case chain.IsSolana():
		if len(hash) < 80 || len(hash) > 90 {
			return fmt.Errorf("solana transaction signature has invalid length")
		}
		if !isBase58String(hash) {
			return fmt.Errorf("solana transaction signature must be valid base58")
		}

	default:
		return fmt.Errorf("unsupported chain for transaction hash validation: %s", chain)
	}

	return nil
}

// ValidateDeadline ensures a deadline is in the future
func ValidateDeadline(deadline time.Time) error {
	if deadline.Before(time.Now()) {
		return fmt.Errorf("deadline must be in the future")
	}

	return nil
}

func isHexString(s string) bool {
	match, _ := regexp.MatchString("^[0-9a-fA-F]+$", s)
	return match
}

func isBase58String(s string) bool {
	match, _ := regexp.MatchString("^[1-9A-HJ-NP-Za-km-z]+$", s)
	return match
}

// ConvertDecimals converts an amount from one decimal precision to another
func ConvertDecimals(amount *big.Int, fromDecimals, toDecimals int) *big.Int {
	if fromDecimals == toDecimals {
		return new(big.Int).Set(amount)
	}

	result := new(big.Int).Set(amount)

	if fromDecimals > toDecimals {
		divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(fromDecimals-toDecimals)), nil)
		result.Div(result, divisor)
	} else {
		multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(toDecimals-fromDecimals)), nil)
		result.Mul(result, multiplier)
	}

	return result
}

// FormatAmountFromBigInt formats a big.Int amount to a decimal string with
// the given number of decimals.
func FormatAmountFromBigInt(amount *big.Int, decimals int) string {
	dec := decimal.NewFromBigInt(amount, -int32(decimals))
	return dec.String()
}
