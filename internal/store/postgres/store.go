package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"positionScope/internal/model"
)

// Store provides Postgres persistence for transfer events and checkpoints,
// scoped to one (token, chain) key.
type Store struct {
	pool    *pgxpool.Pool
	token   string
	chainID uint64
}

func NewStore(ctx context.Context, dsn, token string, chainID uint64) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, token: token, chainID: chainID}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// LoadAll returns stored events for the store's key in block order.
func (s *Store) LoadAll(ctx context.Context) ([]model.TransferEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT chain_id, token, from_address, to_address, amount, block_number, block_timestamp
		FROM transfer_events
		WHERE chain_id = $1 AND token = $2
		ORDER BY block_number
	`, int64(s.chainID), s.token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.TransferEvent
	for rows.Next() {
		var (
			chainID   int64
			event     model.TransferEvent
			block, ts int64
		)
		if err := rows.Scan(&chainID, &event.Token, &event.From, &event.To, &event.Amount, &block, &ts); err != nil {
			return nil, err
		}
		event.ChainID = uint64(chainID)
		event.BlockNumber = uint64(block)
		event.Timestamp = uint64(ts)
		events = append(events, event)
	}
	return events, rows.Err()
}

// Append inserts events, skipping ones already stored.
func (s *Store) Append(ctx context.Context, events []model.TransferEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(`
			INSERT INTO transfer_events (
				chain_id, token, from_address, to_address, amount, block_number, block_timestamp, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			ON CONFLICT (chain_id, token, block_number, from_address, to_address, amount) DO NOTHING
		`,
			int64(event.ChainID),
			event.Token,
			event.From,
			event.To,
			event.Amount,
			int64(event.BlockNumber),
			int64(event.Timestamp),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	added := 0
	for range events {
		tag, err := br.Exec()
		if err != nil {
			return added, err
		}
		added += int(tag.RowsAffected())
	}
	return added, nil
}

// Load returns the checkpoint for a (token, chain) key.
func (s *Store) Load(ctx context.Context, token string, chainID uint64) (model.Checkpoint, bool, error) {
	var (
		latest  int64
		updated string
	)
	row := s.pool.QueryRow(ctx, `
		SELECT latest_block, to_char(updated_at, 'YYYY-MM-DD"T"HH24:MI:SS.US"Z"')
		FROM ingest_checkpoints
		WHERE chain_id = $1 AND token = $2
	`, int64(chainID), token)
	if err := row.Scan(&latest, &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Checkpoint{}, false, nil
		}
		return model.Checkpoint{}, false, err
	}
	return model.Checkpoint{LatestBlock: uint64(latest), LastUpdated: updated}, true, nil
}

// Save upserts the checkpoint, never moving it backwards.
func (s *Store) Save(ctx context.Context, token string, chainID uint64, latestBlock uint64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ingest_checkpoints (chain_id, token, latest_block, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (chain_id, token) DO UPDATE
		SET latest_block = GREATEST(ingest_checkpoints.latest_block, EXCLUDED.latest_block),
		    updated_at = now()
	`, int64(chainID), token, int64(latestBlock))
	return err
}
