package model

import "fmt"

// Checkpoint marks the highest block already ingested for one (token, chain)
// key. LatestBlock is monotonically non-decreasing across runs.
type Checkpoint struct {
	LatestBlock uint64 `json:"latest_block"`
	LastUpdated string `json:"last_updated"`
}

// CheckpointKey builds the persisted-state key for a (token, chain) pair.
func CheckpointKey(token string, chainID uint64) string {
	return fmt.Sprintf("%s_%d", token, chainID)
}
