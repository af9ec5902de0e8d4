package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainpay/gateway/types"
)

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// bech32 data charset minus the characters segwit addresses never carry
const bech32DataCharset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// IsValidEthereumAddress checks for a 0x-prefixed 40-hex-digit address.
// Checksum casing is not enforced; mixed-case inputs are accepted as-is.
func IsValidEthereumAddress(address string) bool {
	return common.IsHexAddress(address)
}

// IsValidSolanaAddress checks for a Base58-encoded public key. Solana
// addresses are 32-44 characters from the Bitcoin Base58 alphabet
// (0, O, I and l excluded).
func IsValidSolanaAddress(address string) bool {
	if len(address) < 32 || len(address) > 44 {
		return false
	}
	for _, c := range address {
		if !strings.ContainsRune(base58Alphabet, c) {
			return false
		}
	}
	return true
}

// IsValidBitcoinAddress accepts legacy Base58Check addresses (prefix 1, 3,
// m, n or 2; 25-34 characters) and bech32 segwit addresses (bc1/tb1,
// 42-62 characters, lower case).
func IsValidBitcoinAddress(address string) bool {
	if len(address) >= 25 && len(address) <= 34 {
		switch address[0] {
		case '1', '3', 'm', 'n', '2':
			valid := true
			for _, c := range address {
				if !strings.ContainsRune(base58Alphabet, c) {
					valid = false
					break
				}
			}
			if valid {
				return true
			}
		}
	}
	if (strings.HasPrefix(address, "bc1") || strings.HasPrefix(address, "tb1")) &&
		len(address) >= 42 && len(address) <= 62 {
		for _, c := range address[3:] {
			if !strings.ContainsRune(bech32DataCharset, c) {
				return false
			}
		}
		return true
	}
	return false
}

// IsValidAddress reports whether address is well-formed for the given chain.
func IsValidAddress(address string, chain types.ChainType) bool {
	switch {
	case chain.IsEVM():
		return IsValidEthereumAddress(address)
	case chain.IsSolana():
		return IsValidSolanaAddress(address)
	case chain.IsBitcoin():
		return IsValidBitcoinAddress(address)
	}
	return false
}

// DetectChain guesses the chain family from an address's shape. EVM is
// checked first since its format is unambiguous; Base58 strings that pass
// both Solana and Bitcoin checks resolve as Solana. Returns false when the
// address matches no known format. EVM addresses resolve to ethereum; the
// caller must disambiguate among EVM networks out of band.
func DetectChain(address string) (types.ChainType, bool) {
	switch {
	case IsValidEthereumAddress(address):
		return types.ChainEthereum, true
	case IsValidSolanaAddress(address):
		return types.ChainSolana, true
	case IsValidBitcoinAddress(address):
		return types.ChainBitcoin, true
	}
	return "", false
}

// NormalizeEthereumAddress returns the EIP-55 checksummed form, or an empty
// string for malformed input.
func NormalizeEthereumAddress(address string) string {
	if !common.IsHexAddress(address) {
		return ""
	}
	return common.HexToAddress(address).Hex()
}
