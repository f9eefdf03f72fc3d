package seriesstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/schema"
)

// ImportCSV reads seed rows from a CSV file into the store. The file must
// carry a header naming at least pipe_name, date_id and ship_cnt in any
// column order. Returns the number of imported rows.
func ImportCSV(ctx context.Context, store contract.SeriesStore, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	rows, err := ReadCSVRows(file)
	if err != nil {
		return 0, err
	}
	if err := store.UpsertRows(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ReadCSVRows parses series rows from CSV content.
func ReadCSVRows(r io.Reader) ([]schema.SeriesRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	pipeIdx, dateIdx, cntIdx := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "pipe_name":
			pipeIdx = i
		case "date_id":
			dateIdx = i
		case "ship_cnt":
			cntIdx = i
		}
	}
	if pipeIdx < 0 || dateIdx < 0 || cntIdx < 0 {
		return nil, fmt.Errorf("CSV header must contain pipe_name, date_id and ship_cnt columns, got %v", header)
	}

	var rows []schema.SeriesRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		dateID, err := strconv.Atoi(strings.TrimSpace(record[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("invalid date_id on line %d: %w", line, err)
		}
		if _, err := schema.DateIDToTime(dateID); err != nil {
			return nil, fmt.Errorf("invalid date_id on line %d: %w", line, err)
		}
		cnt, err := strconv.ParseFloat(strings.TrimSpace(record[cntIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ship_cnt on line %d: %w", line, err)
		}
		rows = append(rows, schema.SeriesRow{
			PipeName: strings.TrimSpace(record[pipeIdx]),
			DateID:   dateID,
			ShipCnt:  cnt,
		})
	}
	return rows, nil
}
