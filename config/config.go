package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/chainpay/gateway/types"
)

// DefaultRequestTimeout bounds every external call (RPC, processor API).
const DefaultRequestTimeout = 30 * time.Second

// ChainConfig holds the per-chain settings. MerchantAddress is the deposit
// address inbound payments are checked against.
type ChainConfig struct {
	RPCURL          string
	MerchantAddress string
}

// Enabled reports whether the chain was configured at all.
func (c ChainConfig) Enabled() bool { return c.RPCURL != "" }

type Config struct {
	DatabaseURL string

	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string

	Ethereum ChainConfig
	Polygon  ChainConfig
	Bsc      ChainConfig
	Arbitrum ChainConfig
	Solana   ChainConfig

	LightningNodeURL string

	LogLevel       string
	RequestTimeout time.Duration
}

// Load reads configuration from the environment, with a .env file as
// fallback for local development. The Ethereum RPC endpoint is the only
// hard requirement; every other chain and the processor are optional.
func Load() (*Config, error) {
	// missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getString("DATABASE_URL", ""),

		RazorpayKeyID:         getString("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:     getString("RAZORPAY_KEY_SECRET", ""),
		RazorpayWebhookSecret: getString("RAZORPAY_WEBHOOK_SECRET", ""),

		Ethereum: ChainConfig{
			RPCURL:          getString("ETHEREUM_RPC_URL", ""),
			MerchantAddress: getString("ETHEREUM_MERCHANT_ADDRESS", ""),
		},
		Polygon: ChainConfig{
			RPCURL:          getString("POLYGON_RPC_URL", ""),
			MerchantAddress: getString("POLYGON_MERCHANT_ADDRESS", ""),
		},
		Bsc: ChainConfig{
			RPCURL:          getString("BSC_RPC_URL", ""),
			MerchantAddress: getString("BSC_MERCHANT_ADDRESS", ""),
		},
		Arbitrum: ChainConfig{
			RPCURL:          getString("ARBITRUM_RPC_URL", ""),
			MerchantAddress: getString("ARBITRUM_MERCHANT_ADDRESS", ""),
		},
		Solana: ChainConfig{
			RPCURL:          getString("SOLANA_RPC_URL", ""),
			MerchantAddress: getString("SOLANA_MERCHANT_ADDRESS", ""),
		},

		LightningNodeURL: getString("LIGHTNING_NODE_URL", ""),

		LogLevel:       getString("LOG_LEVEL", "info"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT_SECONDS", DefaultRequestTimeout),
	}

	if cfg.Ethereum.RPCURL == "" {
		return nil, types.NewError(types.ErrConfig, "ETHEREUM_RPC_URL is required")
	}

	return cfg, nil
}

// RazorpayConfigured reports whether processor payments can be accepted.
func (c *Config) RazorpayConfigured() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
