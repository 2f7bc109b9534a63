package store

import (
	"context"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"positionScope/internal/model"
)

func testEvent(block uint64, amount string) model.TransferEvent {
	return model.TransferEvent{
		ChainID:     56,
		Token:       testToken,
		From:        "0x2222222222222222222222222222222222222222",
		To:          "0x3333333333333333333333333333333333333333",
		Amount:      amount,
		BlockNumber: block,
		Timestamp:   block * 10,
	}
}

func TestEventStoreAppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	ctx := context.Background()

	s := NewFileEventStore(path)
	events := []model.TransferEvent{testEvent(1, "100"), testEvent(2, "200")}

	added, err := s.Append(ctx, events)
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if added != 2 {
		t.Fatalf("added = %d, want 2", added)
	}

	// Fresh handle, as a new run would open it.
	loaded, err := NewFileEventStore(path).LoadAll(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, events) {
		t.Fatalf("round-trip mismatch: %+v != %+v", loaded, events)
	}
}

func TestEventStoreDeduplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	ctx := context.Background()

	s := NewFileEventStore(path)
	if _, err := s.Append(ctx, []model.TransferEvent{testEvent(1, "100")}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	// Same event again plus a new one.
	added, err := s.Append(ctx, []model.TransferEvent{testEvent(1, "100"), testEvent(2, "200")})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}

	loaded, err := NewFileEventStore(path).LoadAll(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("stored %d events, want 2", len(loaded))
	}
}

func TestEventStoreDedupSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	ctx := context.Background()

	if _, err := NewFileEventStore(path).Append(ctx, []model.TransferEvent{testEvent(1, "100")}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	// A second run loads first, then re-ingests an overlapping range.
	s := NewFileEventStore(path)
	if _, err := s.LoadAll(ctx); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	added, err := s.Append(ctx, []model.TransferEvent{testEvent(1, "100")})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if added != 0 {
		t.Fatalf("re-ingest added %d events, want 0", added)
	}
}

// Scanning two disjoint ranges separately must equal scanning their union.
func TestEventStoreMergeIsOrderIndependent(t *testing.T) {
	ctx := context.Background()

	r1 := []model.TransferEvent{testEvent(1, "100"), testEvent(2, "200")}
	r2 := []model.TransferEvent{testEvent(3, "300"), testEvent(4, "400")}

	pathSplit := filepath.Join(t.TempDir(), "split.jsonl")
	split := NewFileEventStore(pathSplit)
	if _, err := split.Append(ctx, r2); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := split.Append(ctx, r1); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	pathUnion := filepath.Join(t.TempDir(), "union.jsonl")
	union := NewFileEventStore(pathUnion)
	if _, err := union.Append(ctx, append(append([]model.TransferEvent{}, r1...), r2...)); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	gotSplit, err := NewFileEventStore(pathSplit).LoadAll(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	gotUnion, err := NewFileEventStore(pathUnion).LoadAll(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	sortByBlock(gotSplit)
	sortByBlock(gotUnion)
	if !reflect.DeepEqual(gotSplit, gotUnion) {
		t.Fatalf("merge result differs: %+v != %+v", gotSplit, gotUnion)
	}
}

func sortByBlock(events []model.TransferEvent) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].BlockNumber < events[j].BlockNumber
	})
}
