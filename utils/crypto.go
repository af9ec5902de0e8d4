package utils

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"

	"github.com/chainpay/gateway/types"
)

// RecoverAddressFromSignature recovers the Ethereum address that produced a
// 65-byte r||s||v signature over hash. The recovery id is normalized from
// the 27/28 convention wallets emit.
func RecoverAddressFromSignature(hash []byte, signature string) (common.Address, error) {
	signature = strings.TrimPrefix(signature, "0x")

	sigBytes, err := hex.DecodeString(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to decode signature: %w", err)
	}

	if len(sigBytes) != 65 {
		return common.Address{}, fmt.Errorf("signature must be 65 bytes, got %d", len(sigBytes))
	}

	if sigBytes[64] >= 27 {
		sigBytes[64] -= 27
	}

	pubKey, err := crypto.SigToPub(hash, sigBytes)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}

// VerifyPersonalMessage checks an EIP-191 personal_sign signature: the
// message is hashed with the "\x19Ethereum Signed Message:\n" prefix and
// the recovered signer is compared to expectedAddress.
func VerifyPersonalMessage(message, signature string, expectedAddress common.Address) (bool, error) {
	hash := accounts.TextHash([]byte(message))
	recoveredAddr, err := RecoverAddressFromSignature(hash, signature)
	if err != nil {
		return false, err
	}

	return recoveredAddr == expectedAddress, nil
}

// SignPersonalMessage signs a message with the EIP-191 personal_sign prefix.
func SignPersonalMessage(message string, privateKey *ecdsa.PrivateKey) (string, error) {
	hash := accounts.TextHash([]byte(message))
	signature, err := crypto.Sign(hash, privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign hash: %w", err)
	}

	return hexutil.Encode(signature), nil
}

// VerifySolanaSignature checks an Ed25519 signature over the raw message
// bytes. Solana wallets sign the message as-is, with no prefix. The public
// key is Base58; the signature may be hex (with or without 0x) or Base58.
func VerifySolanaSignature(message, signature, publicKey string) (bool, error) {
	pubBytes, err := base58.Decode(publicKey)
	if err != nil {
		return false, fmt.Errorf("failed to decode public key: %w", err)
	}
	if len(pubBytes) != ed25519.PublicKeySize {
		return false, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pubBytes))
	}

	sigBytes, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		sigBytes, err = base58.Decode(signature)
		if err != nil {
			return false, fmt.Errorf("signature is neither hex nor base58: %w", err)
		}
	}
	if len(sigBytes) != ed25519.SignatureSize {
		return false, fmt.Errorf("signature must be %d bytes, got %d", ed25519.SignatureSize, len(sigBytes))
	}

	return ed25519.Verify(ed25519.PublicKey(pubBytes), []byte(message), sigBytes), nil
}

// VerifyWalletSignature dispatches on the chain family: EVM chains verify a
// personal_sign recovery against the claimed address, Solana verifies
// Ed25519 against the address as public key.
func VerifyWalletSignature(address, message, signature string, chain types.ChainType) (bool, error) {
	switch {
	case chain.IsEVM():
		if !common.IsHexAddress(address) {
			return false, types.NewError(types.ErrInvalidAddress, fmt.Sprintf("invalid ethereum address: %s", address))
		}
		return VerifyPersonalMessage(message, signature, common.HexToAddress(address))
	case chain.IsSolana():
		return VerifySolanaSignature(message, signature, address)
	default:
		return false, types.NewError(types.ErrValidation, fmt.Sprintf("signature verification not supported for chain: %s", chain))
	}
}

// SignHMAC computes a lower-case hex HMAC-SHA256 of payload.
func SignHMAC(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC checks a lower-case hex HMAC-SHA256 signature in constant time.
func VerifyHMAC(payload, signature, secret string) bool {
	expected := SignHMAC(payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// CreatePaymentMessage builds the canonical text a wallet signs to prove
// ownership for a payment.
func CreatePaymentMessage(paymentID string, amount int64, currency string, timestamp int64) string {
	return fmt.Sprintf("Sign this message to verify your payment:\n\nPayment ID: %s\nAmount: %d %s\nTimestamp: %d",
		paymentID, amount, currency, timestamp)
}
