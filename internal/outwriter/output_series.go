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

// PrintSeries outputs a channel window row by row with boundary and
// congestion annotation, dispatching based on the output format configured.
func PrintSeries(analysis *schema.WindowAnalysis, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, analysis)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSeriesCSV(w, analysis, cfg)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires an output file")
		}
		if err := parquet.WriteSeriesRowsParquet(analysis.Rows, cfg.OutputFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSeriesTable(w, analysis, cfg, duration)
		}, "Wrote table")
	}
}

// writeSeriesTable renders the window as a human-readable table.
func writeSeriesTable(w io.Writer, analysis *schema.WindowAnalysis, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFloatFormatter(cfg.Precision)
	boundaries, mask := annotate(analysis)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Ships", "Boundary", "Label"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, row := range analysis.Rows {
		marker := ""
		if boundaries[i] {
			marker = "*"
		}
		label := contract.GetPlainLabel(mask[i])
		if cfg.UseColors {
			label = contract.GetColorLabel(mask[i])
		}
		data = append(data, []string{
			schema.FormatDateID(row.DateID),
			fmtFloat(row.ShipCnt),
			marker,
			label,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if !analysis.Result.Succeeded() {
		if _, err := fmt.Fprintf(w, "⚠️ Detection error: %s\n", analysis.Result.Message); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Showing %d days for %s (%d boundaries) in %v\n",
		len(analysis.Rows), analysis.PipeName, len(analysis.Result.ChangePoints), duration)
	return err
}

// writeSeriesCSV writes one line per observation.
func writeSeriesCSV(w io.Writer, analysis *schema.WindowAnalysis, cfg *contract.Config) error {
	fmtFloat := createFloatFormatter(cfg.Precision)
	boundaries, mask := annotate(analysis)

	header := []string{"pipe_name", "date_id", "ship_cnt", "boundary", "label"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, row := range analysis.Rows {
			rec := []string{
				row.PipeName,
				strconv.Itoa(row.DateID),
				fmtFloat(row.ShipCnt),
				strconv.FormatBool(boundaries[i]),
				contract.GetPlainLabel(mask[i]),
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// annotate marks boundary rows and the rows inside congested segments.
func annotate(analysis *schema.WindowAnalysis) (boundaries, mask []bool) {
	n := len(analysis.Rows)
	boundaries = make([]bool, n)
	mask = make([]bool, n)

	flagged := make(map[int]bool, len(analysis.Events))
	for _, ev := range analysis.Events {
		flagged[ev.DateID] = true
	}

	ends := analysis.Result.ChangePoints
	for i, b := range ends {
		if b < 0 || b >= n {
			continue
		}
		boundaries[b] = true
		if !flagged[analysis.Rows[b].DateID] {
			continue
		}
		segEnd := n
		if i+1 < len(ends) {
			segEnd = ends[i+1]
		}
		for j := b; j < segEnd && j < n; j++ {
			mask[j] = true
		}
	}
	return boundaries, mask
}
