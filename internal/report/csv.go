package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"positionScope/internal/model"
)

const timestampLayout = "2006-01-02 15:04:05"

var tradeHeader = []string{"label", "amount", "from", "to", "block_number", "timestamp"}

// WriteTradeHistory writes labeled trades as the trade-history CSV artifact.
func WriteTradeHistory(path string, trades []model.LabeledTrade) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trade history: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(tradeHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, trade := range trades {
		record := []string{
			string(trade.Label),
			trade.Amount.String(),
			trade.From,
			trade.To,
			strconv.FormatUint(trade.BlockNumber, 10),
			trade.Time().Format(timestampLayout),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write trade: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush trade history: %w", err)
	}
	return nil
}

// ReadTradeHistory reads a trade-history CSV back into labeled trades.
func ReadTradeHistory(path string) ([]model.LabeledTrade, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trade history: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read trade history: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	trades := make([]model.LabeledTrade, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(tradeHeader) {
			return nil, fmt.Errorf("trade history row %d has %d fields, want %d", i+2, len(record), len(tradeHeader))
		}

		amount, err := decimal.NewFromString(record[1])
		if err != nil {
			return nil, fmt.Errorf("trade history row %d amount: %w", i+2, err)
		}
		blockNumber, err := strconv.ParseUint(record[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("trade history row %d block number: %w", i+2, err)
		}
		ts, err := time.ParseInLocation(timestampLayout, record[5], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("trade history row %d timestamp: %w", i+2, err)
		}

		trades = append(trades, model.LabeledTrade{
			Label:       model.TradeLabel(record[0]),
			Amount:      amount,
			From:        record[2],
			To:          record[3],
			BlockNumber: blockNumber,
			Timestamp:   uint64(ts.Unix()),
		})
	}
	return trades, nil
}
