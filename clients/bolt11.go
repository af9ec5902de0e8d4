package clients

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/chainpay/gateway/types"
)

const (
	// defaultInvoiceExpiry applies when an invoice carries no x field.
	defaultInvoiceExpiry = 3600

	// signatureGroupCount is the 5-bit group count of the trailing
	// 512-bit signature plus recovery id.
	signatureGroupCount = 104

	timestampGroupCount = 7

	tagPaymentHash = 1
	tagExpiry      = 6
	tagDescription = 13
)

// Bolt11Invoice is the decoded view of a Lightning payment request.
// AmountMsat is zero for amount-less invoices.
type Bolt11Invoice struct {
	Network     string
	PaymentHash string
	AmountMsat  uint64
	Description string
	Timestamp   time.Time
	Expiry      time.Duration
}

// IsExpired reports whether the invoice's expiry window has passed.
func (inv *Bolt11Invoice) IsExpired() bool {
	return time.Now().After(inv.Timestamp.Add(inv.Expiry))
}

// DecodeBolt11 decodes a BOLT11 payment request: bech32 with no length
// limit, an ln<network><amount> human-readable part, a 35-bit timestamp,
// tagged fields, and a trailing signature. The signature is not verified;
// decoding serves display and payment-hash extraction.
func DecodeBolt11(invoice string) (*Bolt11Invoice, error) {
	hrp, data, err := bech32.DecodeNoLimit(strings.ToLower(invoice))
	if err != nil {
		return nil, types.WrapError(types.ErrLightning, "invalid bech32 encoding", err)
	}

	if !strings.HasPrefix(hrp, "ln") {
		return nil, types.NewError(types.ErrLightning, fmt.Sprintf("not a lightning invoice: %s", hrp))
	}

	network, amountMsat, err := parseHRP(hrp[2:])
	if err != nil {
		return nil, err
	}

	if len(data) < timestampGroupCount+signatureGroupCount {
		return nil, types.NewError(types.ErrLightning, "invoice data too short")
	}

	// strip the signature tail; it is opaque to us
	data = data[:len(data)-signatureGroupCount]

	inv := &Bolt11Invoice{
		Network:    network,
		AmountMsat: amountMsat,
		Timestamp:  time.Unix(int64(groupsToUint(data[:timestampGroupCount])), 0).UTC(),
		Expiry:     defaultInvoiceExpiry * time.Second,
	}

	fields := data[timestampGroupCount:]
	for len(fields) > 0 {
		if len(fields) < 3 {
			return nil, types.NewError(types.ErrLightning, "truncated tagged field")
		}
		tag := fields[0]
		length := int(fields[1])*32 + int(fields[2])
		fields = fields[3:]
		if len(fields) < length {
			return nil, types.NewError(types.ErrLightning, "tagged field overruns invoice data")
		}
		value := fields[:length]
		fields = fields[length:]

		switch tag {
		case tagPaymentHash:
			// a payment hash is exactly 52 groups; BOLT11 says to skip
			// fields with unexpected lengths
			if length != 52 {
				continue
			}
			hash, err := bech32.ConvertBits(value, 5, 8, false)
			if err != nil || len(hash) != 32 {
				return nil, types.NewError(types.ErrLightning, "malformed payment hash field")
			}
			inv.PaymentHash = hex.EncodeToString(hash)
		case tagDescription:
			desc, err := bech32.ConvertBits(value, 5, 8, false)
			if err != nil {
				return nil, types.NewError(types.ErrLightning, "malformed description field")
			}
			inv.Description = string(desc)
		case tagExpiry:
			inv.Expiry = time.Duration(groupsToUint(value)) * time.Second
		}
	}

	if inv.PaymentHash == "" {
		return nil, types.NewError(types.ErrLightning, "invoice is missing payment hash")
	}

	return inv, nil
}

// parseHRP splits the post-"ln" human-readable part into a network prefix
// and an optional amount. Amounts are denominated in bitcoin with an
// optional m/u/n/p multiplier and are converted to millisatoshi.
func parseHRP(hrp string) (string, uint64, error) {
	i := 0
	for i < len(hrp) && (hrp[i] < '0' || hrp[i] > '9') {
		i++
	}
	network := hrp[:i]
	amount := hrp[i:]
	if network == "" {
		return "", 0, types.NewError(types.ErrLightning, "invoice has no network prefix")
	}
	if amount == "" {
		return network, 0, nil
	}

	multiplier := uint64(100_000_000_000) // msat per bitcoin
	divisor := uint64(1)
	switch amount[len(amount)-1] {
	case 'm':
		divisor = 1_000
		amount = amount[:len(amount)-1]
	case 'u':
		divisor = 1_000_000
		amount = amount[:len(amount)-1]
	case 'n':
		divisor = 1_000_000_000
		amount = amount[:len(amount)-1]
	case 'p':
		divisor = 1_000_000_000_000
		amount = amount[:len(amount)-1]
	}

	value, err := strconv.ParseUint(amount, 10, 64)
	if err != nil {
		return "", 0, types.WrapError(types.ErrLightning, "malformed invoice amount", err)
	}

	// pico amounts carry sub-millisatoshi precision the protocol forbids
	if divisor > multiplier {
		ratio := divisor / multiplier
		if value%ratio != 0 {
			return "", 0, types.NewError(types.ErrLightning, "invoice amount has sub-millisatoshi precision")
		}
		return network, value / ratio, nil
	}

	return network, value * (multiplier / divisor), nil
}

func groupsToUint(groups []byte) uint64 {
	var v uint64
	for _, g := range groups {
		v = v<<5 | uint64(g)
	}
	return v
}
