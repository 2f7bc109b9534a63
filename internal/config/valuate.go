package config

import (
	"time"

	"github.com/spf13/pflag"
)

// ValuateConfig holds configuration for the valuate command.
type ValuateConfig struct {
	Token              string
	ChainID            uint64
	Trades             string
	CoinID             string
	APIBase            string
	CacheDir           string
	MinRequestInterval time.Duration
	MaxRetries         int
	RetryDelay         time.Duration
	Out                string
	LogLevel           string
}

// LoadValuate merges config file, environment variables, and flags.
func LoadValuate(cfgFile string, flags *pflag.FlagSet) (ValuateConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"trades":               "./data/trade_history.csv",
		"cache-dir":            "./data",
		"min-request-interval": 2 * time.Second,
		"max-retries":          6,
		"retry-delay":          15 * time.Second,
		"out":                  "./data/loss_free_price.json",
		"log-level":            "info",
	})
	if err != nil {
		return ValuateConfig{}, err
	}

	return ValuateConfig{
		Token:              v.GetString("token"),
		ChainID:            v.GetUint64("chain-id"),
		Trades:             v.GetString("trades"),
		CoinID:             v.GetString("coin-id"),
		APIBase:            v.GetString("api-base"),
		CacheDir:           v.GetString("cache-dir"),
		MinRequestInterval: v.GetDuration("min-request-interval"),
		MaxRetries:         v.GetInt("max-retries"),
		RetryDelay:         v.GetDuration("retry-delay"),
		Out:                v.GetString("out"),
		LogLevel:           v.GetString("log-level"),
	}, nil
}
