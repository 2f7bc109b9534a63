package valuation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"positionScope/internal/model"
)

func trade(label model.TradeLabel, amount string, day string) model.LabeledTrade {
	ts, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return model.LabeledTrade{
		Label:     label,
		Amount:    decimal.RequireFromString(amount),
		Timestamp: uint64(ts.Unix()),
	}
}

func TestEvaluateBuySell(t *testing.T) {
	trades := []model.LabeledTrade{
		trade(model.LabelBuy, "100", "2024-01-01"),
		trade(model.LabelSell, "40", "2024-01-02"),
	}
	prices := map[string]float64{
		"2024-01-01": 1,
		"2024-01-02": 2,
	}

	result := Evaluate(trades, prices, nil)

	if !result.TotalCost.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("total cost = %s, want 100", result.TotalCost)
	}
	if !result.TotalRevenue.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("total revenue = %s, want 80", result.TotalRevenue)
	}
	if !result.RemainingAmount.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("remaining amount = %s, want 20", result.RemainingAmount)
	}
	if !result.RemainingTokens.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("remaining tokens = %s, want 60", result.RemainingTokens)
	}

	want := decimal.NewFromInt(20).Div(decimal.NewFromInt(60))
	if !result.LossFreePrice.Equal(want) {
		t.Fatalf("loss-free price = %s, want %s", result.LossFreePrice, want)
	}
}

func TestEvaluateNonTradeLabelsDoNotMoveTotals(t *testing.T) {
	trades := []model.LabeledTrade{
		trade(model.LabelBuy, "10", "2024-01-01"),
		trade(model.LabelTransferWithin, "500", "2024-01-01"),
		trade(model.LabelInputUnknown, "500", "2024-01-01"),
		trade(model.LabelOutputUnknown, "500", "2024-01-01"),
	}
	prices := map[string]float64{"2024-01-01": 2}

	result := Evaluate(trades, prices, nil)

	if !result.TotalCost.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("total cost = %s, want 20", result.TotalCost)
	}
	if !result.RemainingTokens.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("remaining tokens = %s, want 10", result.RemainingTokens)
	}
}

func TestEvaluateSkipsTradesWithoutPrice(t *testing.T) {
	trades := []model.LabeledTrade{
		trade(model.LabelBuy, "100", "2024-01-01"),
		trade(model.LabelBuy, "50", "2024-01-05"),
	}
	prices := map[string]float64{"2024-01-01": 1}

	result := Evaluate(trades, prices, nil)

	if result.SkippedTrades != 1 {
		t.Fatalf("skipped = %d, want 1", result.SkippedTrades)
	}
	if !result.RemainingTokens.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("remaining tokens = %s, want 100", result.RemainingTokens)
	}
}

func TestEvaluateOversold(t *testing.T) {
	trades := []model.LabeledTrade{
		trade(model.LabelBuy, "10", "2024-01-01"),
		trade(model.LabelSell, "25", "2024-01-02"),
	}
	prices := map[string]float64{
		"2024-01-01": 1,
		"2024-01-02": 1,
	}

	result := Evaluate(trades, prices, nil)

	if !result.Oversold {
		t.Fatalf("expected oversold flag")
	}
	if !result.LossFreePrice.IsZero() {
		t.Fatalf("loss-free price = %s, want 0", result.LossFreePrice)
	}
	if !result.RemainingTokens.Equal(decimal.NewFromInt(-15)) {
		t.Fatalf("remaining tokens = %s, want -15", result.RemainingTokens)
	}
}

func TestEvaluateZeroRemainingTokens(t *testing.T) {
	trades := []model.LabeledTrade{
		trade(model.LabelBuy, "10", "2024-01-01"),
		trade(model.LabelSell, "10", "2024-01-02"),
	}
	prices := map[string]float64{
		"2024-01-01": 1,
		"2024-01-02": 3,
	}

	result := Evaluate(trades, prices, nil)

	if !result.LossFreePrice.IsZero() {
		t.Fatalf("loss-free price = %s, want 0", result.LossFreePrice)
	}
	if result.Oversold {
		t.Fatalf("zero remaining is not oversold")
	}
}

func TestEvaluateEmptyTrades(t *testing.T) {
	result := Evaluate(nil, nil, nil)

	if !result.TotalCost.IsZero() || !result.TotalRevenue.IsZero() || !result.LossFreePrice.IsZero() {
		t.Fatalf("empty input should produce zero result: %+v", result)
	}
}
