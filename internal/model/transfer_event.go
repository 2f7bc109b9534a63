package model

import (
	"fmt"
	"math/big"
	"time"
)

// TransferEvent is the normalized representation of one ERC-20 transfer log.
// Amounts are kept as decimal strings of raw base units so values above
// uint64 survive JSON round-trips unchanged.
type TransferEvent struct {
	ChainID     uint64 `json:"chain_id"`
	Token       string `json:"token"`
	From        string `json:"from"`
	To          string `json:"to"`
	Amount      string `json:"amount"`
	BlockNumber uint64 `json:"block_number"`
	Timestamp   uint64 `json:"timestamp"`
}

// DedupKey identifies an event inside one (token, chain) store. Block plus
// endpoints plus amount is sufficient because scanned batch ranges are
// disjoint within a run.
func (e TransferEvent) DedupKey() string {
	return fmt.Sprintf("%d:%s:%s:%s", e.BlockNumber, e.From, e.To, e.Amount)
}

// AmountBig parses the raw amount string.
func (e TransferEvent) AmountBig() (*big.Int, error) {
	v, ok := new(big.Int).SetString(e.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q at block %d", e.Amount, e.BlockNumber)
	}
	return v, nil
}

// Time returns the block timestamp as a UTC instant.
func (e TransferEvent) Time() time.Time {
	return time.Unix(int64(e.Timestamp), 0).UTC()
}
