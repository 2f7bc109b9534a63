package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Optional .env in the working directory, same as the RPC_URL-style
	// setup the shell scripts around this tool expect.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "positionscope",
		Short:        "Token trade-history and loss-free price tracker",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Ingest transfer events from the chain",
		RunE:  runScan,
	}

	scanCmd.Flags().String("rpc", "", "chain RPC URL")
	scanCmd.Flags().String("token", "", "token contract address")
	scanCmd.Flags().Uint64("from", 0, "start block when no checkpoint exists")
	scanCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	scanCmd.Flags().Uint64("batch-size", 500, "initial blocks per batch")
	scanCmd.Flags().Uint64("min-batch-size", 1, "batch size floor before a sub-range is skipped")
	scanCmd.Flags().String("events", "./data/transfer_events.jsonl", "event store JSONL path")
	scanCmd.Flags().String("checkpoint", "./data/checkpoints.json", "checkpoint file path")
	scanCmd.Flags().String("pg-dsn", "", "Postgres DSN (replaces the file stores)")
	scanCmd.Flags().Int("max-retries", 5, "maximum retry attempts for transient failures")
	scanCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	scanCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(scanCmd)

	classifyCmd := &cobra.Command{
		Use:   "classify",
		Short: "Label stored transfer events as trades",
		RunE:  runClassify,
	}

	classifyCmd.Flags().String("rpc", "", "chain RPC URL (for decimals lookup)")
	classifyCmd.Flags().String("token", "", "token contract address")
	classifyCmd.Flags().Uint64("chain-id", 0, "chain id (required with --pg-dsn)")
	classifyCmd.Flags().String("events", "./data/transfer_events.jsonl", "event store JSONL path")
	classifyCmd.Flags().String("pg-dsn", "", "Postgres DSN (replaces the file store)")
	classifyCmd.Flags().String("exchange-addresses", "", "file with exchange addresses, one per line")
	classifyCmd.Flags().String("user-addresses", "", "file with tracked user addresses, one per line")
	classifyCmd.Flags().Int("decimals", -1, "token decimals override, -1 resolves from the contract")
	classifyCmd.Flags().String("out", "./data/trade_history.csv", "trade history CSV path")
	classifyCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(classifyCmd)

	valuateCmd := &cobra.Command{
		Use:   "valuate",
		Short: "Compute the loss-free price from a trade history",
		RunE:  runValuate,
	}

	valuateCmd.Flags().String("token", "", "token contract address")
	valuateCmd.Flags().Uint64("chain-id", 0, "chain id for the price platform lookup")
	valuateCmd.Flags().String("trades", "./data/trade_history.csv", "trade history CSV path")
	valuateCmd.Flags().String("coin-id", "", "price API coin id, resolved from the contract when empty")
	valuateCmd.Flags().String("api-base", "", "price API base URL override")
	valuateCmd.Flags().String("cache-dir", "./data", "price cache directory")
	valuateCmd.Flags().Duration("min-request-interval", 2*time.Second, "minimum spacing between price API calls")
	valuateCmd.Flags().Int("max-retries", 6, "retry ceiling for rate-limited price requests")
	valuateCmd.Flags().Duration("retry-delay", 15*time.Second, "delay between rate-limit retries")
	valuateCmd.Flags().String("out", "./data/loss_free_price.json", "valuation result JSON path")
	valuateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(valuateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
