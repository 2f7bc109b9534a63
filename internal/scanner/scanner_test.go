package scanner

import (
	"context"
	"fmt"
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"positionScope/internal/chain"
	"positionScope/internal/model"
)

var (
	testToken = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testFrom  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testTo    = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

// fakeSource serves one synthetic transfer log per block. Ranges wider than
// maxRange blocks fail with a capacity error; ranges containing a poisoned
// block fail with a capacity error at any size.
type fakeSource struct {
	maxRange     uint64
	poisonBlock  uint64
	transientErr int
	calls        []BlockRange
}

func (f *fakeSource) FilterTransferLogs(_ context.Context, _ common.Address, fromBlock, toBlock uint64) ([]types.Log, error) {
	f.calls = append(f.calls, BlockRange{From: fromBlock, To: toBlock})

	if f.transientErr > 0 {
		f.transientErr--
		return nil, fmt.Errorf("connection reset by peer")
	}
	if f.maxRange > 0 && toBlock-fromBlock+1 > f.maxRange {
		return nil, fmt.Errorf("query returned more than 10000 results")
	}
	if f.poisonBlock >= fromBlock && f.poisonBlock <= toBlock {
		return nil, fmt.Errorf("query returned more than 10000 results")
	}

	// Emit blocks in descending order: the scanner must sort.
	var logs []types.Log
	for block := toBlock; ; block-- {
		logs = append(logs, types.Log{
			Address:     testToken,
			Topics:      []common.Hash{chain.TransferTopic, common.BytesToHash(testFrom.Bytes()), common.BytesToHash(testTo.Bytes())},
			Data:        new(big.Int).SetUint64(block * 100).FillBytes(make([]byte, 32)),
			BlockNumber: block,
		})
		if block == fromBlock {
			break
		}
	}
	return logs, nil
}

func (f *fakeSource) BlockTimestamp(_ context.Context, number uint64) (uint64, error) {
	return number * 10, nil
}

func collectScan(t *testing.T, cfg Config, source LogSource, from, to uint64) []model.TransferEvent {
	t.Helper()
	var got []model.TransferEvent
	s := New(cfg, source, nil)
	err := s.Scan(context.Background(), testToken, from, to, func(_ BlockRange, events []model.TransferEvent) error {
		got = append(got, events...)
		return nil
	})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	return got
}

func TestScanEmitsOrderedEvents(t *testing.T) {
	events := collectScan(t, Config{ChainID: 56, BatchSize: 3}, &fakeSource{}, 100, 107)

	if len(events) != 8 {
		t.Fatalf("expected 8 events, got %d", len(events))
	}
	for i, event := range events {
		want := uint64(100 + i)
		if event.BlockNumber != want {
			t.Fatalf("event %d at block %d, want %d", i, event.BlockNumber, want)
		}
		if event.Timestamp != want*10 {
			t.Fatalf("event %d timestamp %d, want %d", i, event.Timestamp, want*10)
		}
		if event.From != testFrom.Hex() || event.To != testTo.Hex() {
			t.Fatalf("event %d endpoints %s -> %s", i, event.From, event.To)
		}
		if event.Amount != fmt.Sprintf("%d", want*100) {
			t.Fatalf("event %d amount %s, want %d", i, event.Amount, want*100)
		}
	}
}

func TestScanEmptyRange(t *testing.T) {
	source := &fakeSource{}
	events := collectScan(t, Config{BatchSize: 10}, source, 50, 40)

	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
	if len(source.calls) != 0 {
		t.Fatalf("expected no provider calls, got %d", len(source.calls))
	}
}

func TestScanHalvesOnCapacityError(t *testing.T) {
	source := &fakeSource{maxRange: 2}
	got := collectScan(t, Config{BatchSize: 8, MaxRetries: 3, RetryBackoff: time.Millisecond}, source, 100, 107)

	// The same output as a scan that used the working size from the start.
	want := collectScan(t, Config{BatchSize: 2}, &fakeSource{}, 100, 107)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("adaptive scan output diverges from fixed-size scan")
	}

	// First call at size 8 fails, then 4 fails, then 2 succeeds.
	if len(source.calls) < 3 {
		t.Fatalf("expected at least 3 calls, got %d", len(source.calls))
	}
	first3 := source.calls[:3]
	wantCalls := []BlockRange{
		{From: 100, To: 107},
		{From: 100, To: 103},
		{From: 100, To: 101},
	}
	if !reflect.DeepEqual(first3, wantCalls) {
		t.Fatalf("call sequence %+v, want %+v", first3, wantCalls)
	}
}

func TestScanSkipsPoisonedSubRange(t *testing.T) {
	source := &fakeSource{poisonBlock: 13}
	events := collectScan(t, Config{BatchSize: 4, MinBatchSize: 1}, source, 10, 17)

	for _, event := range events {
		if event.BlockNumber == 13 {
			t.Fatalf("poisoned block 13 should have been skipped")
		}
	}
	if len(events) != 7 {
		t.Fatalf("expected 7 events (8 blocks minus skipped), got %d", len(events))
	}

	// Batch size resets to the default after a skip: the next call after
	// the single-block failure covers a full batch again.
	last := source.calls[len(source.calls)-1]
	if last.To-last.From+1 != 4 {
		t.Fatalf("batch size did not reset after skip: last call %+v", last)
	}
}

func TestScanRetriesTransientFailures(t *testing.T) {
	source := &fakeSource{transientErr: 2}
	events := collectScan(t, Config{BatchSize: 10, MaxRetries: 3, RetryBackoff: time.Millisecond}, source, 1, 5)

	if len(events) != 5 {
		t.Fatalf("expected 5 events after retries, got %d", len(events))
	}
}

func TestScanTransientRetryExhaustion(t *testing.T) {
	source := &fakeSource{transientErr: 10}
	s := New(Config{BatchSize: 10, MaxRetries: 1, RetryBackoff: time.Millisecond}, source, nil)

	err := s.Scan(context.Background(), testToken, 1, 5, func(_ BlockRange, _ []model.TransferEvent) error {
		return nil
	})
	if err == nil {
		t.Fatalf("expected error after retry exhaustion")
	}
}
