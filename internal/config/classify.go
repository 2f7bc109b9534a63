package config

import "github.com/spf13/pflag"

// ClassifyConfig holds configuration for the classify command.
type ClassifyConfig struct {
	RPCURL       string
	Token        string
	ChainID      uint64
	Events       string
	PGDSN        string
	ExchangeFile string
	UserFile     string
	Decimals     int
	Out          string
	LogLevel     string
}

// LoadClassify merges config file, environment variables, and flags.
func LoadClassify(cfgFile string, flags *pflag.FlagSet) (ClassifyConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"events":    "./data/transfer_events.jsonl",
		"decimals":  -1,
		"out":       "./data/trade_history.csv",
		"log-level": "info",
	})
	if err != nil {
		return ClassifyConfig{}, err
	}

	return ClassifyConfig{
		RPCURL:       v.GetString("rpc"),
		Token:        v.GetString("token"),
		ChainID:      v.GetUint64("chain-id"),
		Events:       v.GetString("events"),
		PGDSN:        v.GetString("pg-dsn"),
		ExchangeFile: v.GetString("exchange-addresses"),
		UserFile:     v.GetString("user-addresses"),
		Decimals:     v.GetInt("decimals"),
		Out:          v.GetString("out"),
		LogLevel:     v.GetString("log-level"),
	}, nil
}
