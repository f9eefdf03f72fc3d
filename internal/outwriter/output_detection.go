package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/internal/parquet"
	"github.com/jiayuqiu/sisi-mcp/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintDetection outputs a detection run, dispatching based on the output
// format configured.
func PrintDetection(analysis *schema.WindowAnalysis, records []schema.ExplanationRecord, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDetectionJSON(w, analysis, records)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDetectionCSV(w, analysis, records)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires an output file")
		}
		if err := parquet.WriteDetectionRecordsParquet(analysis.RunDateID, records, cfg.OutputFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDetectionTable(w, analysis, records, cfg, duration)
		}, "Wrote table")
	}
}

// writeDetectionTable generates and writes the human-readable run summary.
func writeDetectionTable(w io.Writer, analysis *schema.WindowAnalysis, records []schema.ExplanationRecord, cfg *contract.Config, duration time.Duration) error {
	if !analysis.Result.Succeeded() {
		_, err := fmt.Fprintf(w, "⚠️ Detection error: %s\n", analysis.Result.Message)
		return err
	}

	if _, err := fmt.Fprintln(w, analysis.ResultText()); err != nil {
		return err
	}

	if len(analysis.Events) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"#", "Date", "Channel", "Label", "Explanation"})
		table.Configure(func(tcfg *tablewriter.Config) {
			tcfg.Row.Alignment.Global = tw.AlignRight
		})

		maxTextWidth := getMaxTableTextWidth()
		var data [][]string
		for i, ev := range analysis.Events {
			label := contract.GetPlainLabel(true)
			if cfg.UseColors {
				label = contract.GetColorLabel(true)
			}
			data = append(data, []string{
				strconv.Itoa(i + 1),
				schema.FormatDateID(ev.DateID),
				ev.PipeName,
				label,
				truncateText(detectionFor(records, i), maxTextWidth),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Found %d boundaries and %d congestion events over %d rows in %v\n",
		len(analysis.Result.ChangePoints), len(analysis.Events), len(analysis.Rows), duration)
	return err
}

// writeDetectionCSV writes one line per flagged event.
func writeDetectionCSV(w io.Writer, analysis *schema.WindowAnalysis, records []schema.ExplanationRecord) error {
	header := []string{"run_date_id", "date_id", "pipe_name", "label", "detection"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, ev := range analysis.Events {
			rec := []string{
				strconv.Itoa(analysis.RunDateID),
				strconv.Itoa(ev.DateID),
				ev.PipeName,
				contract.GetPlainLabel(true),
				detectionFor(records, i),
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeDetectionJSON writes the full analysis plus records and verdict line.
func writeDetectionJSON(w io.Writer, analysis *schema.WindowAnalysis, records []schema.ExplanationRecord) error {
	type JSONDetection struct {
		ResultText string `json:"result_text"`
		*schema.WindowAnalysis
		Records []schema.ExplanationRecord `json:"records"`
	}
	if records == nil {
		records = []schema.ExplanationRecord{}
	}
	return writeJSON(w, JSONDetection{
		ResultText:     analysis.ResultText(),
		WindowAnalysis: analysis,
		Records:        records,
	})
}

// detectionFor returns the explanation text for the i-th event, tolerating
// runs where no explainer was attached.
func detectionFor(records []schema.ExplanationRecord, i int) string {
	if i < 0 || i >= len(records) {
		return ""
	}
	return records[i].Detection
}
