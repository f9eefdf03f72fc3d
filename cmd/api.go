package cmd

import (
	"os/signal"
	"syscall"

	"github.com/jiayuqiu/sisi-mcp/core"
	"github.com/jiayuqiu/sisi-mcp/internal/httpapi"
	"github.com/jiayuqiu/sisi-mcp/internal/seriesstore"
	"github.com/spf13/cobra"
)

// apiCmd runs the HTTP API server.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the congestion detection HTTP API server",
	Long: `Serve question-driven detection over HTTP.

Endpoints:
  POST /api/detect_congestion - parse a question and return the verdict
  POST /api/ask_question      - parse a question, detect and explain
  GET  /health                - health check
  GET  /metrics               - prometheus metrics

The server shuts down gracefully on SIGINT or SIGTERM.

Examples:
  # Serve on the default address
  sisimcp api

  # Serve on a custom port with debug logs
  sisimcp api --http-addr :9000 --log-level debug`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := seriesstore.New(cfg.SeriesBackend, cfg.SeriesDBConnect)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		explainer := core.NewExplainer(ctx, cfg)
		defer func() { _ = explainer.Close() }()

		logger := httpapi.NewLogger(cfg.LogLevel)
		pipeline := core.NewPipeline(cfg, store, explainer)
		return httpapi.Start(ctx, cfg, pipeline, logger)
	},
}
