package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeLabel classifies a transfer relative to the tracked position.
type TradeLabel string

const (
	LabelBuy            TradeLabel = "Buy"
	LabelSell           TradeLabel = "Sell"
	LabelTransferWithin TradeLabel = "Transfer within"
	LabelInputUnknown   TradeLabel = "Input unknown"
	LabelOutputUnknown  TradeLabel = "Output unknown"
)

// LabeledTrade is a classified transfer with its amount scaled to whole
// tokens.
type LabeledTrade struct {
	Label       TradeLabel      `json:"label"`
	Amount      decimal.Decimal `json:"amount"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	BlockNumber uint64          `json:"block_number"`
	Timestamp   uint64          `json:"timestamp"`
}

// Time returns the trade timestamp as a UTC instant.
func (t LabeledTrade) Time() time.Time {
	return time.Unix(int64(t.Timestamp), 0).UTC()
}

// Date returns the trade's calendar day in price-cache key format.
func (t LabeledTrade) Date() string {
	return t.Time().Format("2006-01-02")
}
