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
	"positionScope/internal/config"
	"positionScope/internal/model"
	"positionScope/internal/scanner"
	"positionScope/internal/store"
	"positionScope/internal/store/postgres"
)

func runScan(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadScan(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(cfg.Token) {
		return fmt.Errorf("invalid token address: %q", cfg.Token)
	}
	token := common.HexToAddress(cfg.Token)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	chainIDValue := chainID.Uint64()

	var (
		events      store.EventStore
		checkpoints store.CheckpointStore
	)
	if cfg.PGDSN != "" {
		pgStore, err := postgres.NewStore(ctx, cfg.PGDSN, token.Hex(), chainIDValue)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
		events = pgStore
		checkpoints = pgStore
	} else {
		events = store.NewFileEventStore(cfg.Events)
		checkpoints = store.NewFileCheckpointStore(cfg.Checkpoint)
	}

	// Primes the dedup index so a re-run over an overlapping range is a
	// no-op at the storage layer.
	existing, err := events.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}

	from := cfg.FromBlock
	cp, ok, err := checkpoints.Load(ctx, token.Hex(), chainIDValue)
	if err != nil {
		return err
	}
	switch {
	case ok && len(existing) == 0:
		// The checkpoint outlived its event store. Resuming would lose
		// the earlier events, so rescan from the configured start.
		logger.Warn("checkpoint found but event store is empty, full scan required",
			zap.Uint64("latest_block", cp.LatestBlock),
			zap.Uint64("from", from),
		)
	case ok && cp.LatestBlock >= from:
		from = cp.LatestBlock + 1
		logger.Info("resume from checkpoint", zap.Uint64("latest_block", cp.LatestBlock), zap.Uint64("from", from))
	}

	// The head is resolved once per run so the scan target never moves.
	to := cfg.ToBlock
	if to == 0 {
		latest, err := chainClient.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	logger.Info("scan start",
		zap.String("token", token.Hex()),
		zap.Uint64("chain_id", chainIDValue),
		zap.Uint64("from", from),
		zap.Uint64("to", to),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.Int("stored_events", len(existing)),
	)

	scan := scanner.New(scanner.Config{
		ChainID:      chainIDValue,
		BatchSize:    cfg.BatchSize,
		MinBatchSize: cfg.MinBatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, chainClient, logger)

	var appended int
	err = scan.Scan(ctx, token, from, to, func(blockRange scanner.BlockRange, batch []model.TransferEvent) error {
		added, err := events.Append(ctx, batch)
		if err != nil {
			return fmt.Errorf("store events: %w", err)
		}
		appended += added

		// Checkpoint only after the sub-range is durably stored.
		if err := checkpoints.Save(ctx, token.Hex(), chainIDValue, blockRange.To); err != nil {
			return fmt.Errorf("save checkpoint: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("scan complete",
		zap.Uint64("through_block", to),
		zap.Int("new_events", appended),
	)
	return nil
}
