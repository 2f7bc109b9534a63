package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"positionScope/internal/config"
	"positionScope/internal/model"
	"positionScope/internal/price"
	"positionScope/internal/report"
	"positionScope/internal/valuation"
)

func runValuate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadValuate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	trades, err := report.ReadTradeHistory(cfg.Trades)
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		return fmt.Errorf("trade history %s is empty", cfg.Trades)
	}

	start, end := trades[0].Time(), trades[0].Time()
	for _, trade := range trades[1:] {
		if trade.Time().Before(start) {
			start = trade.Time()
		}
		if trade.Time().After(end) {
			end = trade.Time()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := price.NewLimiter(cfg.MinRequestInterval)
	client := price.NewClient(cfg.APIBase, limiter)

	coinID := cfg.CoinID
	if coinID == "" {
		platform, err := price.PlatformForChain(cfg.ChainID)
		if err != nil {
			return err
		}
		coinID, err = client.CoinID(ctx, platform, cfg.Token)
		if err != nil {
			return fmt.Errorf("resolve coin id: %w", err)
		}
		logger.Info("resolved coin id", zap.String("coin_id", coinID), zap.String("platform", platform))
	}

	cache := price.NewCache(filepath.Join(cfg.CacheDir, coinID+"_price_cache.json"))
	filler := price.NewFiller(price.FillConfig{
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	}, client, logger)

	logger.Info("filling price cache",
		zap.String("coin_id", coinID),
		zap.String("start", start.Format("2006-01-02")),
		zap.String("end", end.Format("2006-01-02")),
	)
	if err := filler.Fill(ctx, cache, coinID, start, end); err != nil {
		return err
	}

	result := valuation.Evaluate(trades, cache.Snapshot(), logger)
	result.TokenAddress = cfg.Token
	result.ChainID = cfg.ChainID

	if err := report.WriteValuation(cfg.Out, result); err != nil {
		return err
	}

	logValuation(logger, result, cfg.Out)
	return nil
}

func logValuation(logger *zap.Logger, result model.ValuationResult, out string) {
	logger.Info("valuation complete",
		zap.String("total_cost", result.TotalCost.StringFixed(2)),
		zap.String("total_revenue", result.TotalRevenue.StringFixed(2)),
		zap.String("remaining_amount", result.RemainingAmount.StringFixed(2)),
		zap.String("remaining_tokens", result.RemainingTokens.String()),
		zap.String("loss_free_price", result.LossFreePrice.String()),
		zap.Int("skipped_trades", result.SkippedTrades),
		zap.Bool("oversold", result.Oversold),
		zap.String("out", out),
	)
}
