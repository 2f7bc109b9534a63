package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"positionScope/internal/chain"
	"positionScope/internal/classify"
	"positionScope/internal/config"
	"positionScope/internal/report"
	"positionScope/internal/store"
	"positionScope/internal/store/postgres"
)

func runClassify(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadClassify(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !common.IsHexAddress(cfg.Token) {
		return fmt.Errorf("invalid token address: %q", cfg.Token)
	}
	token := common.HexToAddress(cfg.Token)

	if cfg.ExchangeFile == "" || cfg.UserFile == "" {
		return fmt.Errorf("exchange and user address files are required")
	}

	roles, err := classify.LoadRoleSets(cfg.ExchangeFile, cfg.UserFile)
	if err != nil {
		return err
	}
	if err := roles.Validate(); err != nil {
		return fmt.Errorf("role sets: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events store.EventStore
	if cfg.PGDSN != "" {
		if cfg.ChainID == 0 {
			return fmt.Errorf("chain id is required with --pg-dsn")
		}
		pgStore, err := postgres.NewStore(ctx, cfg.PGDSN, token.Hex(), cfg.ChainID)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
		events = pgStore
	} else {
		events = store.NewFileEventStore(cfg.Events)
	}

	stored, err := events.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	if len(stored) == 0 {
		logger.Warn("event store is empty, run scan first")
	}

	decimals, err := resolveDecimals(ctx, cfg, token)
	if err != nil {
		return err
	}

	trades, err := classify.Classify(stored, roles, decimals)
	if err != nil {
		return err
	}

	if err := report.WriteTradeHistory(cfg.Out, trades); err != nil {
		return err
	}

	logger.Info("classify complete",
		zap.String("token", token.Hex()),
		zap.Uint8("decimals", decimals),
		zap.Int("events", len(stored)),
		zap.Int("trades", len(trades)),
		zap.String("out", cfg.Out),
	)
	return nil
}

// resolveDecimals uses the override when given, otherwise asks the token
// contract. Decimals are resolved once and held constant for the run.
func resolveDecimals(ctx context.Context, cfg config.ClassifyConfig, token common.Address) (uint8, error) {
	if cfg.Decimals >= 0 {
		if cfg.Decimals > 255 {
			return 0, fmt.Errorf("decimals out of range: %d", cfg.Decimals)
		}
		return uint8(cfg.Decimals), nil
	}

	if cfg.RPCURL == "" {
		return 0, fmt.Errorf("rpc url is required to resolve token decimals")
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return 0, fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	decimals, err := chainClient.TokenDecimals(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("resolve decimals: %w", err)
	}
	return decimals, nil
}
