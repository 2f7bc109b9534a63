package config

import (
	"time"

	"github.com/spf13/pflag"
)

// ScanConfig holds configuration for the scan command.
type ScanConfig struct {
	RPCURL       string
	Token        string
	FromBlock    uint64
	ToBlock      uint64
	BatchSize    uint64
	MinBatchSize uint64
	Events       string
	Checkpoint   string
	PGDSN        string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// LoadScan merges config file, environment variables, and flags.
func LoadScan(cfgFile string, flags *pflag.FlagSet) (ScanConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"batch-size":     uint64(500),
		"min-batch-size": uint64(1),
		"events":         "./data/transfer_events.jsonl",
		"checkpoint":     "./data/checkpoints.json",
		"max-retries":    5,
		"retry-backoff":  500 * time.Millisecond,
		"log-level":      "info",
	})
	if err != nil {
		return ScanConfig{}, err
	}

	return ScanConfig{
		RPCURL:       v.GetString("rpc"),
		Token:        v.GetString("token"),
		FromBlock:    v.GetUint64("from"),
		ToBlock:      v.GetUint64("to"),
		BatchSize:    v.GetUint64("batch-size"),
		MinBatchSize: v.GetUint64("min-batch-size"),
		Events:       v.GetString("events"),
		Checkpoint:   v.GetString("checkpoint"),
		PGDSN:        v.GetString("pg-dsn"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}, nil
}
