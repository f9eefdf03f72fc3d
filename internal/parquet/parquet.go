// Package parquet exports detection records and series rows to Parquet
// files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"

	"github.com/jiayuqiu/sisi-mcp/schema"
	"github.com/parquet-go/parquet-go"
)

// DetectionRecord is the Parquet row shape for one explained congestion
// event. The schema is inferred from the struct tags.
type DetectionRecord struct {
	// RunDateID is the YYYYMMDD key of the detection run
	RunDateID int64 `parquet:"run_date_id,snappy"`

	// DateID is the YYYYMMDD key of the flagged boundary
	DateID int64 `parquet:"date_id,snappy"`

	// PipeName is the monitored chokepoint
	PipeName string `parquet:"pipe_name,snappy"`

	// Detection is the explanation text; empty for unexplained events
	Detection string `parquet:"detection,snappy"`
}

// SeriesRow is the Parquet row shape for one daily observation.
type SeriesRow struct {
	// PipeName is the monitored chokepoint
	PipeName string `parquet:"pipe_name,snappy"`

	// DateID is the YYYYMMDD key of the observation
	DateID int64 `parquet:"date_id,snappy"`

	// ShipCnt is the daily ship count
	ShipCnt float64 `parquet:"ship_cnt,snappy"`
}

// WriteDetectionRecordsParquet writes a run's explanation records to a
// Parquet file.
func WriteDetectionRecordsParquet(runDateID int, records []schema.ExplanationRecord, outputPath string) error {
	return writeParquet(ConvertExplanationRecords(runDateID, records), outputPath)
}

// WriteSeriesRowsParquet writes series rows to a Parquet file.
func WriteSeriesRowsParquet(rows []schema.SeriesRow, outputPath string) error {
	return writeParquet(ConvertSeriesRows(rows), outputPath)
}

// writeParquet creates the output file and streams the rows through a
// generic writer with schema inference from struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}

// ConvertExplanationRecords converts schema.ExplanationRecord to
// DetectionRecord for Parquet export.
func ConvertExplanationRecords(runDateID int, records []schema.ExplanationRecord) []DetectionRecord {
	result := make([]DetectionRecord, len(records))
	for i, record := range records {
		result[i] = DetectionRecord{
			RunDateID: int64(runDateID),
			DateID:    int64(record.DateID),
			PipeName:  record.PipeName,
			Detection: record.Detection,
		}
	}
	return result
}

// ConvertSeriesRows converts schema.SeriesRow to the Parquet row shape.
func ConvertSeriesRows(rows []schema.SeriesRow) []SeriesRow {
	result := make([]SeriesRow, len(rows))
	for i, row := range rows {
		result[i] = SeriesRow{
			PipeName: row.PipeName,
			DateID:   int64(row.DateID),
			ShipCnt:  row.ShipCnt,
		}
	}
	return result
}
