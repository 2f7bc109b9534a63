package model

import "github.com/shopspring/decimal"

// ValuationResult is the cost-basis summary for one run.
//
// RemainingAmount is the net cost still to recover; LossFreePrice is the unit
// price at which selling all remaining tokens recovers exactly that amount.
type ValuationResult struct {
	TokenAddress    string          `json:"token_address"`
	ChainID         uint64          `json:"chain_id"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	RemainingTokens decimal.Decimal `json:"remaining_tokens"`
	LossFreePrice   decimal.Decimal `json:"loss_free_price"`
	SkippedTrades   int             `json:"skipped_trades"`
	Oversold        bool            `json:"oversold"`
	CalculatedAt    string          `json:"calculated_at"`
}
