package cmd

import (
	"github.com/jiayuqiu/sisi-mcp/core"
	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/spf13/cobra"
)

// detectCmd performs congestion detection for one channel window.
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect congestion in a channel's ship-count series.",
	Long: `Load a channel's daily ship counts, segment the window with changepoint
detection and flag boundaries whose following regime runs above the window
average. When a web-search chat service is configured, flagged events are
explained through a two-step search-then-rephrase language chain.

Examples:
  # Detect over the default three-month window ending today
  sisimcp detect --pipe 曼德海峡

  # Detect for a fixed month end with a specific method
  sisimcp detect --pipe 马六甲海峡 --run-date 2023-12-31 --method binseg

  # Explain every flagged event, not only the most recent one
  sisimcp detect --pipe 曼德海峡 --explain-all

  # Persist detection records next to the binary
  sisimcp detect --pipe 曼德海峡 --persist-records --records-dir ./out

  # Export findings to CSV for tracking
  sisimcp detect --pipe 曼德海峡 --output csv --output-file results.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := requirePipe(); err != nil {
			contract.LogFatal("Cannot run detection", err)
		}
		if err := core.ExecuteDetect(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run detection", err)
		}
	},
}
