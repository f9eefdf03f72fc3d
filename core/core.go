// Package core has the detection pipeline: windowed series loading,
// changepoint segmentation, congestion classification and the explanation
// chain that turns flagged events into human-readable text.
package core

import (
	"context"
	"time"

	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/internal/nlquery"
	"github.com/jiayuqiu/sisi-mcp/internal/outwriter"
	"github.com/jiayuqiu/sisi-mcp/internal/seriesstore"
)

// ExecutorFunc defines the function signature for executing different pipeline modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

// ExecuteDetect runs the full detection pipeline for the configured channel
// and run date, then prints results to stdout. It serves as the main entry
// point for the 'detect' mode.
func ExecuteDetect(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	store, err := seriesstore.New(cfg.SeriesBackend, cfg.SeriesDBConnect)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	explainer := NewExplainer(ctx, cfg)
	defer func() { _ = explainer.Close() }()

	if !shouldSuppressHeader(ctx) {
		outwriter.LogRunHeader(cfg)
	}
	pipeline := NewPipeline(cfg, store, explainer)
	analysis, records, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintDetection(analysis, records, cfg, duration)
}

// ExecuteAsk parses a natural-language question into a channel and run date,
// then runs the same pipeline as ExecuteDetect against that target.
func ExecuteAsk(ctx context.Context, cfg *contract.Config, question string) error {
	target, err := nlquery.ParseQuestion(question)
	if err != nil {
		return err
	}
	return ExecuteDetect(ctx, cfg.CloneWithTarget(target.PipeName, target.RunDate))
}

// ExecuteSeries loads and segments the configured channel window and prints
// the daily rows with boundary and congestion annotation. No explanation
// chain is involved.
func ExecuteSeries(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	store, err := seriesstore.New(cfg.SeriesBackend, cfg.SeriesDBConnect)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if !shouldSuppressHeader(ctx) {
		outwriter.LogRunHeader(cfg)
	}
	analysis, err := runWindowAnalysis(ctx, cfg, store)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintSeries(analysis, cfg, duration)
}
