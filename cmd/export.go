package cmd

import (
	"fmt"

	"github.com/jiayuqiu/sisi-mcp/core"
	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/internal/parquet"
	"github.com/jiayuqiu/sisi-mcp/internal/seriesstore"
	"github.com/jiayuqiu/sisi-mcp/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exportCmd writes detection results or series rows as Parquet.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export detection records or series rows to a Parquet file",
	Long: `Run detection for the configured channel window and write the results as
a snappy-compressed Parquet file for downstream analytics.

By default the flagged events with their explanations are exported. Pass
--series to export the windowed daily rows instead.

Examples:
  # Export detection records
  sisimcp export --pipe 曼德海峡 --run-date 2023-12-31 --output-file events.parquet

  # Export the raw windowed series
  sisimcp export --pipe 曼德海峡 --series --output-file series.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := requirePipe(); err != nil {
			contract.LogFatal("Cannot export", err)
		}
		if cfg.OutputFile == "" {
			contract.LogFatal("Cannot export", fmt.Errorf("%w: --output-file is required", schema.ErrInvalidParameter))
		}

		store, err := seriesstore.New(cfg.SeriesBackend, cfg.SeriesDBConnect)
		if err != nil {
			contract.LogFatal("Failed to open series store", err)
		}
		defer func() { _ = store.Close() }()

		explainer := core.NewExplainer(rootCtx, cfg)
		defer func() { _ = explainer.Close() }()

		ctx := core.WithSuppressHeader(rootCtx)
		pipeline := core.NewPipeline(cfg, store, explainer)

		if viper.GetBool("series") {
			analysis, err := pipeline.Analyze(ctx, cfg.PipeName, cfg.RunDate)
			if err != nil {
				contract.LogFatal("Cannot export series", err)
			}
			if err := parquet.WriteSeriesRowsParquet(analysis.Rows, cfg.OutputFile); err != nil {
				contract.LogFatal("Cannot write Parquet file", err)
			}
			fmt.Printf("Exported %d series rows to %s\n", len(analysis.Rows), cfg.OutputFile)
			return
		}

		analysis, records, err := pipeline.Run(ctx)
		if err != nil {
			contract.LogFatal("Cannot export detection records", err)
		}
		if err := parquet.WriteDetectionRecordsParquet(analysis.RunDateID, records, cfg.OutputFile); err != nil {
			contract.LogFatal("Cannot write Parquet file", err)
		}
		fmt.Printf("Exported %d detection records to %s\n", len(records), cfg.OutputFile)
	},
}
