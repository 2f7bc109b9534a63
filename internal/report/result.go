package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"positionScope/internal/model"
)

// WriteValuation writes the valuation result as the run's JSON artifact.
func WriteValuation(path string, result model.ValuationResult) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal valuation: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write valuation: %w", err)
	}
	return nil
}
