package valuation

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"positionScope/internal/model"
)

// Evaluate folds labeled trades against daily prices into the cost-basis
// summary. Trades whose date has no price are skipped with a warning; only
// Buy and Sell move the running totals. A negative remaining balance means
// the inputs record more sold than bought; it is surfaced, not corrected.
func Evaluate(trades []model.LabeledTrade, prices map[string]float64, logger *zap.Logger) model.ValuationResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		totalCost       = decimal.Zero
		totalRevenue    = decimal.Zero
		remainingTokens = decimal.Zero
		skipped         int
	)

	for _, trade := range trades {
		if trade.Label != model.LabelBuy && trade.Label != model.LabelSell {
			continue
		}

		date := trade.Date()
		value, ok := prices[date]
		if !ok {
			skipped++
			logger.Warn("no price for trade date, skipping trade",
				zap.String("date", date),
				zap.String("label", string(trade.Label)),
				zap.Uint64("block_number", trade.BlockNumber),
			)
			continue
		}
		price := decimal.NewFromFloat(value)

		switch trade.Label {
		case model.LabelBuy:
			totalCost = totalCost.Add(trade.Amount.Mul(price))
			remainingTokens = remainingTokens.Add(trade.Amount)
		case model.LabelSell:
			totalRevenue = totalRevenue.Add(trade.Amount.Mul(price))
			remainingTokens = remainingTokens.Sub(trade.Amount)
		}
	}

	remainingAmount := totalCost.Sub(totalRevenue)

	lossFreePrice := decimal.Zero
	oversold := false
	if remainingTokens.IsPositive() {
		lossFreePrice = remainingAmount.Div(remainingTokens)
	} else if remainingTokens.IsNegative() {
		oversold = true
		logger.Warn("remaining tokens is negative, trade history may be inconsistent",
			zap.String("remaining_tokens", remainingTokens.String()),
		)
	}

	return model.ValuationResult{
		TotalCost:       totalCost,
		TotalRevenue:    totalRevenue,
		RemainingAmount: remainingAmount,
		RemainingTokens: remainingTokens,
		LossFreePrice:   lossFreePrice,
		SkippedTrades:   skipped,
		Oversold:        oversold,
		CalculatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
}
