package cmd

import (
	"github.com/jiayuqiu/sisi-mcp/core"
	"github.com/jiayuqiu/sisi-mcp/internal/mcp"
	"github.com/jiayuqiu/sisi-mcp/internal/seriesstore"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the congestion detection MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents run congestion
detection and ask natural-language questions via standard tools.

Run headers are suppressed so stdout stays clean for the protocol.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := seriesstore.New(cfg.SeriesBackend, cfg.SeriesDBConnect)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		explainer := core.NewExplainer(rootCtx, cfg)
		defer func() { _ = explainer.Close() }()

		pipeline := core.NewPipeline(cfg, store, explainer)
		return mcp.StartMCPServer(rootCtx, cfg, pipeline)
	},
}
