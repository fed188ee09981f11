package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the gateway.
type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Logging    LoggingConfig     `yaml:"logging"`
	Account    AccountConfig     `yaml:"account"`
	Network    NetworkConfig     `yaml:"network"`
	Contracts  ContractsConfig   `yaml:"contracts"`
	Tokens     []TokenConfig     `yaml:"tokens"`
	Crosschain CrosschainConfig  `yaml:"crosschain"`
	Indexer    IndexerConfig     `yaml:"indexer"`
	PriceAPI   PriceAPIConfig    `yaml:"priceApi"`
	Cache      CacheConfig       `yaml:"cache"`
	Pools      PoolServiceConfig `yaml:"poolService"`
}

// ServerConfig holds the server-specific configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// AccountConfig identifies the operator account used for mutations. An empty
// address means no wallet is connected and all mutations fail fast.
type AccountConfig struct {
	Address        string `yaml:"address"`
	PrivateKeyFile string `yaml:"privateKeyFile"`
}

// NetworkConfig holds the configuration for the chain the gateway serves.
type NetworkConfig struct {
	ChainID         uint64   `yaml:"chainID"`
	Name            string   `yaml:"name"`
	NativeSymbol    string   `yaml:"nativeSymbol"`
	PrimaryRPCURL   string   `yaml:"primaryRpcUrl"`
	FallbackRPCURLs []string `yaml:"fallbackRpcUrls"`
	RPCTimeoutMs    int64    `yaml:"rpcTimeoutMs"`
}

// ContractsConfig holds the protocol contract addresses.
type ContractsConfig struct {
	Factory string `yaml:"factory"`
	Helper  string `yaml:"helper"`
}

// TokenConfig describes one token the gateway knows about.
type TokenConfig struct {
	Name       string `yaml:"name"`
	Symbol     string `yaml:"symbol"`
	Address    string `yaml:"address"`
	OFTAddress string `yaml:"oftAddress"`
	Decimals   uint8  `yaml:"decimals"`
}

// CrosschainConfig holds the cross-chain messaging parameters. A borrow whose
// destination equals LocalEndpointID is fee-free and quoted without any chain
// read.
type CrosschainConfig struct {
	LocalEndpointID uint32 `yaml:"localEndpointId"`
	FeeQuoteTTLSecs int    `yaml:"feeQuoteTtlSeconds"`
	BorrowGasLimit  uint64 `yaml:"borrowGasLimit"`
}

// IndexerConfig holds the configuration for the GraphQL indexer client.
type IndexerConfig struct {
	URL                  string `yaml:"url"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// PriceAPIConfig holds the configuration for the spot price ticker client.
type PriceAPIConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// CacheConfig holds configuration for the read-query cache.
type CacheConfig struct {
	DefaultExpirationSeconds int `yaml:"defaultExpirationSeconds"`
	CleanupIntervalMinutes   int `yaml:"cleanupIntervalMinutes"`
}

// PoolServiceConfig holds configuration for pool listing enrichment.
type PoolServiceConfig struct {
	MaxConcurrentReads int `yaml:"maxConcurrentReads"`
	ReadsPerSecond     int `yaml:"readsPerSecond"`
}

// LoadConfig loads configuration from a YAML file and applies defaults.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	if cfg.Network.RPCTimeoutMs == 0 {
		cfg.Network.RPCTimeoutMs = 10000
		logrus.Infof("Network.RPCTimeoutMs not set, defaulting to %d ms", cfg.Network.RPCTimeoutMs)
	}
	if cfg.Crosschain.LocalEndpointID == 0 {
		// Avalanche mainnet endpoint in the cross-chain messaging scheme.
		cfg.Crosschain.LocalEndpointID = 30106
		logrus.Infof("Crosschain.LocalEndpointID not set, defaulting to %d", cfg.Crosschain.LocalEndpointID)
	}
	if cfg.Crosschain.FeeQuoteTTLSecs == 0 {
		cfg.Crosschain.FeeQuoteTTLSecs = 30
		logrus.Infof("Crosschain.FeeQuoteTtlSeconds not set, defaulting to %d s", cfg.Crosschain.FeeQuoteTTLSecs)
	}
	if cfg.Crosschain.BorrowGasLimit == 0 {
		cfg.Crosschain.BorrowGasLimit = 65000
	}
	if cfg.Indexer.RequestTimeoutMillis == 0 {
		cfg.Indexer.RequestTimeoutMillis = 10000
		logrus.Infof("Indexer.RequestTimeoutMillis not set, defaulting to %d ms", cfg.Indexer.RequestTimeoutMillis)
	}
	if cfg.PriceAPI.BaseURL == "" {
		cfg.PriceAPI.BaseURL = "https://api.binance.com"
		logrus.Infof("PriceAPI.BaseURL not set, defaulting to %s", cfg.PriceAPI.BaseURL)
	}
	if cfg.PriceAPI.RequestTimeoutMillis == 0 {
		cfg.PriceAPI.RequestTimeoutMillis = 10000
	}
	if cfg.Cache.DefaultExpirationSeconds == 0 {
		cfg.Cache.DefaultExpirationSeconds = 30
		logrus.Infof("Cache.DefaultExpirationSeconds not set, defaulting to %d s", cfg.Cache.DefaultExpirationSeconds)
	}
	if cfg.Cache.CleanupIntervalMinutes == 0 {
		cfg.Cache.CleanupIntervalMinutes = 10
	}
	if cfg.Pools.MaxConcurrentReads == 0 {
		cfg.Pools.MaxConcurrentReads = 5
	}
	if cfg.Pools.ReadsPerSecond == 0 {
		cfg.Pools.ReadsPerSecond = 10
	}

	if len(cfg.Tokens) == 0 {
		logrus.Warn("No tokens configured; pool listings will be empty until tokens are registered.")
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}
