package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jiayuqiu/sisi-mcp/schema"
)

// DetectionRecordsPath returns the JSON records path for a run date.
func DetectionRecordsPath(dir string, runDateID int) string {
	return filepath.Join(dir, fmt.Sprintf("detection_results_%d.json", runDateID))
}

// WriteDetectionRecords persists a run's explanation records as indented
// JSON. The file is written to a temp path first and renamed into place so
// readers never observe a partial file. Returns the final path.
func WriteDetectionRecords(dir string, runDateID int, records []schema.ExplanationRecord) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create records directory: %w", err)
	}
	if records == nil {
		records = []schema.ExplanationRecord{}
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal detection records: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "detection_results_*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp records file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write detection records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close temp records file: %w", err)
	}

	target := DetectionRecordsPath(dir, runDateID)
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move records into place: %w", err)
	}
	return target, nil
}
