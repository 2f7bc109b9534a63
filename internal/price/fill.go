package price

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Source is the slice of the API client the filler needs.
type Source interface {
	PriceOnDate(ctx context.Context, coinID string, date time.Time) (float64, bool, error)
}

// FillConfig bounds the per-date retry loop for rate-limited requests.
type FillConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// Filler fills the missing dates of a price cache from a remote source.
// Partial progress is always persisted: a run that fills three of ten dates
// saves those three so the next run only retries the rest.
type Filler struct {
	cfg    FillConfig
	source Source
	logger *zap.Logger

	// sleep is injectable so retry tests run without real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewFiller(cfg FillConfig, source Source, logger *zap.Logger) *Filler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 6
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 15 * time.Second
	}
	return &Filler{
		cfg:    cfg,
		source: source,
		logger: logger,
		sleep:  sleepCtx,
	}
}

// Fill loads the cache, fetches every calendar day in [start, end] not
// already present in ascending order, and persists the merged result. Dates
// the source has no data for are skipped; the fill never fails as a whole
// for a bad date.
func (f *Filler) Fill(ctx context.Context, cache *Cache, coinID string, start, end time.Time) error {
	if f.source == nil {
		return fmt.Errorf("price source is nil")
	}

	if err := cache.Load(); err != nil {
		return err
	}

	missing := missingDates(cache, start, end)
	if len(missing) == 0 {
		f.logger.Info("price cache already complete", zap.String("coin_id", coinID), zap.Int("known", cache.Len()))
		return nil
	}

	f.logger.Info("filling missing prices",
		zap.String("coin_id", coinID),
		zap.Int("missing", len(missing)),
		zap.Int("known", cache.Len()),
	)

	var fillErr error
	for _, day := range missing {
		if err := f.fillDate(ctx, cache, coinID, day); err != nil {
			fillErr = err
			break
		}
	}

	// Persist whatever was fetched even when the pass was cut short.
	if err := cache.Save(); err != nil {
		return err
	}
	return fillErr
}

// fillDate fetches one date, retrying only on rate limits. A non-nil return
// means the context was cancelled; every other failure is downgraded to a
// warning.
func (f *Filler) fillDate(ctx context.Context, cache *Cache, coinID string, day time.Time) error {
	key := day.Format("2006-01-02")

	for attempt := 1; ; attempt++ {
		value, ok, err := f.source.PriceOnDate(ctx, coinID, day)
		if err == nil {
			if !ok {
				f.logger.Warn("no price data for date", zap.String("coin_id", coinID), zap.String("date", key))
				return nil
			}
			cache.Put(key, value)
			f.logger.Debug("price fetched", zap.String("date", key), zap.Float64("price", value))
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !errors.Is(err, ErrRateLimited) {
			f.logger.Warn("price fetch failed", zap.String("date", key), zap.Error(err))
			return nil
		}
		if attempt >= f.cfg.MaxRetries {
			f.logger.Warn("rate limit retries exhausted for date",
				zap.String("date", key),
				zap.Int("attempts", attempt),
			)
			return nil
		}

		f.logger.Warn("rate limited, backing off",
			zap.String("date", key),
			zap.Int("attempt", attempt),
			zap.Duration("delay", f.cfg.RetryDelay),
		)
		if err := f.sleep(ctx, f.cfg.RetryDelay); err != nil {
			return err
		}
	}
}

// missingDates lists the calendar days in [start, end] absent from the
// cache, in ascending order.
func missingDates(cache *Cache, start, end time.Time) []time.Time {
	start = truncateDay(start)
	end = truncateDay(end)

	var missing []time.Time
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if _, ok := cache.Get(day.Format("2006-01-02")); !ok {
			missing = append(missing, day)
		}
	}
	return missing
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
