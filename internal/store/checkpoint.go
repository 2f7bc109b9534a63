package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"positionScope/internal/model"
)

// FileCheckpointStore persists checkpoints for all (token, chain) keys in one
// JSON document, written atomically via tmp+rename.
type FileCheckpointStore struct {
	path string
}

func NewFileCheckpointStore(path string) *FileCheckpointStore {
	return &FileCheckpointStore{path: path}
}

// Load returns the checkpoint for a (token, chain) key if one exists.
func (s *FileCheckpointStore) Load(ctx context.Context, token string, chainID uint64) (model.Checkpoint, bool, error) {
	records, err := s.read()
	if err != nil {
		return model.Checkpoint{}, false, err
	}

	cp, ok := records[model.CheckpointKey(token, chainID)]
	return cp, ok, nil
}

// Save writes the checkpoint for a (token, chain) key. A latestBlock below
// the stored one is ignored: the resume position never moves backwards.
func (s *FileCheckpointStore) Save(ctx context.Context, token string, chainID uint64, latestBlock uint64) error {
	records, err := s.read()
	if err != nil {
		return err
	}

	key := model.CheckpointKey(token, chainID)
	if existing, ok := records[key]; ok && existing.LatestBlock >= latestBlock {
		return nil
	}

	records[key] = model.Checkpoint{
		LatestBlock: latestBlock,
		LastUpdated: time.Now().UTC().Format(time.RFC3339Nano),
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoints: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint tmp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}

	return nil
}

func (s *FileCheckpointStore) read() (map[string]model.Checkpoint, error) {
	stat, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]model.Checkpoint), nil
		}
		return nil, fmt.Errorf("stat checkpoint: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("checkpoint path is a directory")
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	records := make(map[string]model.Checkpoint)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse checkpoint: %w", err)
	}
	return records, nil
}
