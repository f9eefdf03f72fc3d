package cmd

import (
	"github.com/jiayuqiu/sisi-mcp/core"
	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/spf13/cobra"
)

// askCmd answers a natural-language congestion question.
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a natural-language congestion question.",
	Long: `Parse a Chinese question into a channel and month, then run the same
pipeline as 'detect' against the last day of that month.

The question must name a year-month and a known channel, for example:

  sisimcp ask "2023年12月曼德海峡是否发生拥堵？"
  sisimcp ask "马六甲 2024-03 有无异常"`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteAsk(rootCtx, cfg, args[0]); err != nil {
			contract.LogFatal("Cannot answer question", err)
		}
	},
}
