package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"positionScope/internal/model"
)

// FileEventStore appends transfer events to a JSONL file, deduplicating on
// (block, from, to, amount). LoadAll primes the dedup index, so a typical run
// is LoadAll once, then Append for each scanned sub-range.
type FileEventStore struct {
	path string

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewFileEventStore(path string) *FileEventStore {
	return &FileEventStore{
		path: path,
		seen: make(map[string]struct{}),
	}
}

// LoadAll reads every stored event in file order.
func (s *FileEventStore) LoadAll(ctx context.Context) ([]model.TransferEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open event store: %w", err)
	}
	defer file.Close()

	var events []model.TransferEvent
	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var event model.TransferEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("parse event store line: %w", err)
		}
		s.seen[event.DedupKey()] = struct{}{}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan event store: %w", err)
	}
	return events, nil
}

// Append durably writes events not already present and returns how many were
// added. Re-appending an overlapping range is a no-op for known events.
func (s *FileEventStore) Append(ctx context.Context, events []model.TransferEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := make([]model.TransferEvent, 0, len(events))
	for _, event := range events {
		key := event.DedupKey()
		if _, ok := s.seen[key]; ok {
			continue
		}
		s.seen[key] = struct{}{}
		fresh = append(fresh, event)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create event store dir: %w", err)
		}
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open event store: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, event := range fresh {
		line, err := json.Marshal(event)
		if err != nil {
			return 0, fmt.Errorf("marshal event: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return 0, fmt.Errorf("write event: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return 0, fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return 0, fmt.Errorf("flush event store: %w", err)
	}
	if err := file.Sync(); err != nil {
		return 0, fmt.Errorf("sync event store: %w", err)
	}

	return len(fresh), nil
}
