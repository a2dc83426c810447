package config

import (
	"fmt"
	"os"

	"portfolio_tracker/internal/entity"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server       ServerConfig         `yaml:"server"`
	Moralis      MoralisConfig        `yaml:"moralis"`
	CoinGecko    CoinGeckoConfig      `yaml:"coinGecko"`
	Cache        CacheConfig          `yaml:"cache"`
	PriceService PriceServiceConfig   `yaml:"priceService"`
	RateLimit    RateLimitConfig      `yaml:"rateLimit"`
	Logging      LoggingConfig        `yaml:"logging"`
	Chains       []entity.ChainConfig `yaml:"chains"`
}

// ServerConfig holds the server-specific configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// MoralisConfig holds the configuration for the balance provider client.
type MoralisConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"apiKey"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// CoinGeckoConfig holds the configuration for the market-data client.
type CoinGeckoConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"apiKey"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// CacheConfig holds configuration for the portfolio snapshot cache.
type CacheConfig struct {
	SnapshotTTLSeconds int `yaml:"snapshotTTLSeconds"`
}

// PriceServiceConfig holds configuration for the price resolution service.
type PriceServiceConfig struct {
	CacheTTLMinutes        int                `yaml:"cacheTTLMinutes"`
	RefreshIntervalSeconds int                `yaml:"refreshIntervalSeconds"`
	LookupTimeoutMillis    int64              `yaml:"lookupTimeoutMillis"`
	FallbackPrices         map[string]float64 `yaml:"fallbackPrices"`
}

// RateLimitConfig holds configuration for per-client API rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// DefaultFallbackPrices returns the hard-coded last-resort prices used until
// the background refresher has succeeded at least once. Keys are upper-case
// symbols. Overridable via priceService.fallbackPrices in the config file.
func DefaultFallbackPrices() map[string]float64 {
	return map[string]float64{
		"ETH":   3000,
		"WETH":  3000,
		"BTC":   60000,
		"WBTC":  60000,
		"BNB":   600,
		"MATIC": 0.5,
		"POL":   0.5,
		"AVAX":  30,
		"USDT":  1,
		"USDC":  1,
		"DAI":   1,
	}
}

// LoadConfig loads configuration from a YAML file and applies defaults for
// anything left unset.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	cfg.ApplyDefaults()

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

// ApplyDefaults fills every unset field with its default value. Exposed so
// tests can build a Config from scratch without a file on disk.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Moralis.BaseURL == "" {
		cfg.Moralis.BaseURL = "https://deep-index.moralis.io/api/v2.2"
		logrus.Infof("Moralis.BaseURL not set, defaulting to %s", cfg.Moralis.BaseURL)
	}
	if cfg.Moralis.RequestTimeoutMillis == 0 {
		cfg.Moralis.RequestTimeoutMillis = 10000
		logrus.Infof("Moralis.RequestTimeoutMillis not set, defaulting to %d ms", cfg.Moralis.RequestTimeoutMillis)
	}
	if cfg.CoinGecko.BaseURL == "" {
		cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
		logrus.Infof("CoinGecko.BaseURL not set, defaulting to %s", cfg.CoinGecko.BaseURL)
	}
	if cfg.CoinGecko.RequestTimeoutMillis == 0 {
		cfg.CoinGecko.RequestTimeoutMillis = 10000
		logrus.Infof("CoinGecko.RequestTimeoutMillis not set, defaulting to %d ms", cfg.CoinGecko.RequestTimeoutMillis)
	}
	if cfg.Cache.SnapshotTTLSeconds == 0 {
		cfg.Cache.SnapshotTTLSeconds = 300
		logrus.Infof("Cache.SnapshotTTLSeconds not set, defaulting to %d seconds", cfg.Cache.SnapshotTTLSeconds)
	}
	if cfg.PriceService.CacheTTLMinutes == 0 {
		cfg.PriceService.CacheTTLMinutes = 10
		logrus.Infof("PriceService.CacheTTLMinutes not set, defaulting to %d minutes", cfg.PriceService.CacheTTLMinutes)
	}
	if cfg.PriceService.RefreshIntervalSeconds == 0 {
		cfg.PriceService.RefreshIntervalSeconds = 180
		logrus.Infof("PriceService.RefreshIntervalSeconds not set, defaulting to %d seconds", cfg.PriceService.RefreshIntervalSeconds)
	}
	if cfg.PriceService.LookupTimeoutMillis == 0 {
		cfg.PriceService.LookupTimeoutMillis = 5000
	}
	if len(cfg.PriceService.FallbackPrices) == 0 {
		cfg.PriceService.FallbackPrices = DefaultFallbackPrices()
		logrus.Info("PriceService.FallbackPrices not set, using built-in defaults")
	}
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 10
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 20
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
