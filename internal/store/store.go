package store

import (
	"context"

	"positionScope/internal/model"
)

// EventStore owns the growing set of transfer events for one (token, chain)
// key. Append must be idempotent under re-ingestion of overlapping ranges.
type EventStore interface {
	LoadAll(ctx context.Context) ([]model.TransferEvent, error)
	Append(ctx context.Context, events []model.TransferEvent) (int, error)
}

// CheckpointStore is the source of truth for scan resume positions. Save is
// only called after the corresponding events are durably stored.
type CheckpointStore interface {
	Load(ctx context.Context, token string, chainID uint64) (model.Checkpoint, bool, error)
	Save(ctx context.Context, token string, chainID uint64, latestBlock uint64) error
}
