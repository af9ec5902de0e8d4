package utils

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpay/gateway/types"
)

var testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestPersonalMessageRoundTrip(t *testing.T) {
	privateKey, err := crypto.HexToECDSA(testPrivateKey)
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(privateKey.PublicKey)

	message := "Sign this message to verify your payment"
	signature, err := SignPersonalMessage(message, privateKey)
	require.NoError(t, err)

	valid, err := VerifyPersonalMessage(message, signature, address)
	require.NoError(t, err)
	assert.True(t, valid)

	// tampered message recovers a different signer
	valid, err = VerifyPersonalMessage(message+" tampered", signature, address)
	require.NoError(t, err)
	assert.False(t, valid)

	// signature without 0x prefix is accepted
	valid, err = VerifyPersonalMessage(message, signature[2:], address)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestVerifyPersonalMessageMalformedSignature(t *testing.T) {
	privateKey, err := crypto.HexToECDSA(testPrivateKey)
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(privateKey.PublicKey)

	_, err = VerifyPersonalMessage("hello", "0xzzzz", address)
	assert.Error(t, err)

	_, err = VerifyPersonalMessage("hello", "0xdeadbeef", address)
	assert.Error(t, err)
}

func TestVerifySolanaSignature(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	pubB58 := base58.Encode(pub)

	message := "verify wallet ownership"
	sig := ed25519.Sign(priv, []byte(message))

	// hex signature
	valid, err := VerifySolanaSignature(message, hex.EncodeToString(sig), pubB58)
	require.NoError(t, err)
	assert.True(t, valid)

	// base58 signature
	valid, err = VerifySolanaSignature(message, base58.Encode(sig), pubB58)
	require.NoError(t, err)
	assert.True(t, valid)

	// tampered message
	valid, err = VerifySolanaSignature(message+"!", hex.EncodeToString(sig), pubB58)
	require.NoError(t, err)
	assert.False(t, valid)

	// wrong key length
	_, err = VerifySolanaSignature(message, hex.EncodeToString(sig), base58.Encode(pub[:16]))
	assert.Error(t, err)
}

func TestVerifyWalletSignatureDispatch(t *testing.T) {
	privateKey, err := crypto.HexToECDSA(testPrivateKey)
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(privateKey.PublicKey)

	message := "dispatch test"
	signature, err := SignPersonalMessage(message, privateKey)
	require.NoError(t, err)

	valid, err := VerifyWalletSignature(address.Hex(), message, signature, types.ChainPolygon)
	require.NoError(t, err)
	assert.True(t, valid)

	_, err = VerifyWalletSignature("bad-address", message, signature, types.ChainEthereum)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrInvalidAddress))

	_, err = VerifyWalletSignature("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", message, signature, types.ChainBitcoin)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrValidation))
}

func TestHMACSignAndVerify(t *testing.T) {
	payload := "order_abc123|pay_def456"
	secret := "whsec_test"

	sig := SignHMAC(payload, secret)
	assert.Len(t, sig, 64)
	assert.Equal(t, sig, SignHMAC(payload, secret))

	assert.True(t, VerifyHMAC(payload, sig, secret))
	assert.False(t, VerifyHMAC(payload, sig, "other-secret"))
	assert.False(t, VerifyHMAC(payload+"x", sig, secret))
	assert.False(t, VerifyHMAC(payload, "", secret))
}

func TestCreatePaymentMessage(t *testing.T) {
	msg := CreatePaymentMessage("1c9e59a2-9a3f-4a6f-8a2e-2f0d7b9c1a11", 500000000000000000, "ETH", 1700000000)
	assert.Contains(t, msg, "Payment ID: 1c9e59a2-9a3f-4a6f-8a2e-2f0d7b9c1a11")
	assert.Contains(t, msg, "Amount: 500000000000000000 ETH")
	assert.Contains(t, msg, "Timestamp: 1700000000")
}
