// Package export writes the final aggregation summary to disk as JSON so
// other tooling can consume the run result without scraping console output.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"sensormon/aggregate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteSummary marshals the summary and writes it to path, creating parent
// directories as needed.
func WriteSummary(path string, s aggregate.Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal summary: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: ensure dir: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}
