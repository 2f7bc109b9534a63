package scanner

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"positionScope/internal/chain"
	"positionScope/internal/model"
)

// LogSource is the slice of the chain client the scanner needs.
type LogSource interface {
	FilterTransferLogs(ctx context.Context, token common.Address, fromBlock, toBlock uint64) ([]types.Log, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// Config holds runtime settings for the scanner.
type Config struct {
	ChainID      uint64
	BatchSize    uint64
	MinBatchSize uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// Scanner pulls transfer events for a block range in adaptive-size batches.
// Provider capacity failures halve the batch size for the failing sub-range;
// below the floor the sub-range is skipped and the size resets so the scan
// always makes forward progress.
type Scanner struct {
	cfg    Config
	source LogSource
	logger *zap.Logger
	now    func() time.Time
}

// New builds a Scanner with its dependencies.
func New(cfg Config, source LogSource, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 500
	}
	if cfg.MinBatchSize == 0 {
		cfg.MinBatchSize = 1
	}
	return &Scanner{
		cfg:    cfg,
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// Scan walks [fromBlock, toBlock] in ascending order and calls emit once per
// completed sub-range with that sub-range's events, sorted by block number.
// Callers persist each emitted batch before their checkpoint advances, which
// makes an interrupted scan resumable from the last completed sub-range.
func (s *Scanner) Scan(ctx context.Context, token common.Address, fromBlock, toBlock uint64, emit func(BlockRange, []model.TransferEvent) error) error {
	if s.source == nil {
		return fmt.Errorf("log source is nil")
	}
	if emit == nil {
		return fmt.Errorf("emit callback is nil")
	}
	if fromBlock > toBlock {
		s.logger.Info("nothing to scan", zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		return nil
	}

	tracker := newProgressTracker(fromBlock, toBlock, s.now)
	batchSize := s.cfg.BatchSize
	cursor := fromBlock

	for cursor <= toBlock {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		blockRange := nextRange(cursor, toBlock, batchSize)

		logs, err := s.filterWithRetry(ctx, token, blockRange)
		if err != nil {
			if chain.IsCapacityError(err) {
				if batchSize <= s.cfg.MinBatchSize {
					s.logger.Warn("sub-range exceeds provider capacity at minimum batch size, skipping",
						zap.Uint64("from", blockRange.From),
						zap.Uint64("to", blockRange.To),
					)
					cursor = blockRange.To + 1
					batchSize = s.cfg.BatchSize
					continue
				}
				batchSize = halve(batchSize, s.cfg.MinBatchSize)
				s.logger.Warn("batch too large, halving",
					zap.Uint64("from", blockRange.From),
					zap.Uint64("batch_size", batchSize),
				)
				continue
			}
			return fmt.Errorf("filter logs [%d, %d]: %w", blockRange.From, blockRange.To, err)
		}

		events, err := s.buildEvents(ctx, token, logs)
		if err != nil {
			return err
		}

		if err := emit(blockRange, events); err != nil {
			return fmt.Errorf("emit [%d, %d]: %w", blockRange.From, blockRange.To, err)
		}

		cursor = blockRange.To + 1

		percent, blocksPerSec, eta := tracker.report(blockRange.To)
		s.logger.Info("batch complete",
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
			zap.Int("events", len(events)),
			zap.Float64("percent", percent),
			zap.Float64("blocks_per_sec", blocksPerSec),
			zap.Duration("eta", eta),
		)
	}

	return nil
}

func (s *Scanner) filterWithRetry(ctx context.Context, token common.Address, blockRange BlockRange) ([]types.Log, error) {
	var logs []types.Log
	err := withRetry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = s.source.FilterTransferLogs(ctx, token, blockRange.From, blockRange.To)
		if err != nil && !chain.IsCapacityError(err) {
			s.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
		}
		return err
	})
	return logs, err
}

// buildEvents converts raw logs to transfer events. Providers do not
// guarantee log order within a range, so results are sorted here.
func (s *Scanner) buildEvents(ctx context.Context, token common.Address, logs []types.Log) ([]model.TransferEvent, error) {
	sort.Slice(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})

	events := make([]model.TransferEvent, 0, len(logs))
	for _, log := range logs {
		if len(log.Topics) < 3 {
			s.logger.Warn("transfer log missing indexed topics",
				zap.Uint64("block_number", log.BlockNumber),
				zap.String("tx_hash", log.TxHash.Hex()),
			)
			continue
		}

		ts, err := s.blockTimestampWithRetry(ctx, log.BlockNumber)
		if err != nil {
			return nil, fmt.Errorf("block timestamp %d: %w", log.BlockNumber, err)
		}

		events = append(events, model.TransferEvent{
			ChainID:     s.cfg.ChainID,
			Token:       token.Hex(),
			From:        common.BytesToAddress(log.Topics[1].Bytes()).Hex(),
			To:          common.BytesToAddress(log.Topics[2].Bytes()).Hex(),
			Amount:      new(big.Int).SetBytes(log.Data).String(),
			BlockNumber: log.BlockNumber,
			Timestamp:   ts,
		})
	}
	return events, nil
}

func (s *Scanner) blockTimestampWithRetry(ctx context.Context, blockNumber uint64) (uint64, error) {
	var ts uint64
	err := withRetry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		ts, err = s.source.BlockTimestamp(ctx, blockNumber)
		if err != nil {
			s.logger.Warn("block timestamp fetch failed", zap.Error(err), zap.Uint64("block_number", blockNumber))
		}
		return err
	})
	return ts, err
}
