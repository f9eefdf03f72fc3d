package cmd

import (
	"github.com/jiayuqiu/sisi-mcp/core"
	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/spf13/cobra"
)

// seriesCmd prints a channel's windowed series with boundary annotation.
var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Show a channel's daily ship counts with detected boundaries.",
	Long: `Load a channel's windowed ship-count series, run changepoint detection and
print the daily rows. Boundary days and days inside congested regimes are
marked. No language chain is involved.

Examples:
  # Inspect the default three-month window
  sisimcp series --pipe 曼德海峡

  # Inspect a fixed window in CSV form
  sisimcp series --pipe 马六甲海峡 --run-date 2023-12-31 --output csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := requirePipe(); err != nil {
			contract.LogFatal("Cannot show series", err)
		}
		if err := core.ExecuteSeries(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot show series", err)
		}
	},
}
