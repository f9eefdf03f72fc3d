package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jiayuqiu/sisi-mcp/core/segment"
	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/schema"
)

// Pipeline binds a validated config to a series store and an optional
// explanation chain. One Pipeline serves many runs; server front ends share
// it across requests and retarget per call with RunForTarget.
type Pipeline struct {
	cfg       *contract.Config
	store     contract.SeriesStore
	explainer *Explainer
}

// NewPipeline returns a Pipeline over the given store. The explainer may be
// nil, in which case flagged events are reported without explanation text.
func NewPipeline(cfg *contract.Config, store contract.SeriesStore, explainer *Explainer) *Pipeline {
	return &Pipeline{cfg: cfg, store: store, explainer: explainer}
}

// Run executes the pipeline for the configured channel and run date.
func (p *Pipeline) Run(ctx context.Context) (*schema.WindowAnalysis, []schema.ExplanationRecord, error) {
	return p.run(ctx, p.cfg)
}

// RunForTarget executes the pipeline against a different channel and run
// date without mutating the shared config.
func (p *Pipeline) RunForTarget(ctx context.Context, pipeName string, runDate time.Time) (*schema.WindowAnalysis, []schema.ExplanationRecord, error) {
	return p.run(ctx, p.cfg.CloneWithTarget(pipeName, runDate))
}

// Analyze runs the detection stage alone for a target, skipping the
// explanation chain and record persistence.
func (p *Pipeline) Analyze(ctx context.Context, pipeName string, runDate time.Time) (*schema.WindowAnalysis, error) {
	return runWindowAnalysis(ctx, p.cfg.CloneWithTarget(pipeName, runDate), p.store)
}

func (p *Pipeline) run(ctx context.Context, cfg *contract.Config) (*schema.WindowAnalysis, []schema.ExplanationRecord, error) {
	analysis, err := runWindowAnalysis(ctx, cfg, p.store)
	if err != nil {
		return nil, nil, err
	}

	records := []schema.ExplanationRecord{}
	if p.explainer != nil && len(analysis.Events) > 0 {
		records, err = p.explainer.ExplainEvents(ctx, analysis.Events, cfg.ExplainAll)
		if err != nil {
			return nil, nil, err
		}
	}

	if cfg.PersistRecords {
		path, err := WriteDetectionRecords(cfg.RecordsDir, analysis.RunDateID, records)
		if err != nil {
			return nil, nil, err
		}
		if !shouldSuppressHeader(ctx) {
			fmt.Printf("Detection results saved to: %s\n", path)
		}
	}
	return analysis, records, nil
}

// runWindowAnalysis loads the channel window, segments it and classifies the
// resulting segments. Detection-stage failures (short or empty window,
// unknown method) land in the result's status, not in the returned error.
func runWindowAnalysis(ctx context.Context, cfg *contract.Config, store contract.SeriesStore) (*schema.WindowAnalysis, error) {
	rows, err := store.LoadWindow(ctx, cfg.PipeName, cfg.RunDate, cfg.LookbackMonths, cfg.LookbackDays)
	if err != nil {
		return nil, err
	}

	result := segment.Detect(schema.Values(rows), segment.Config{
		Method:  cfg.Method,
		Model:   cfg.Model,
		MinSize: cfg.MinSize,
		Penalty: cfg.Penalty,
		NBkps:   cfg.NBkps,
		Jump:    cfg.Jump,
		Width:   cfg.Width,
	})

	analysis := &schema.WindowAnalysis{
		PipeName:  cfg.PipeName,
		RunDateID: cfg.RunDateID(),
		Rows:      rows,
		Result:    result,
		Events:    []schema.CongestionEvent{},
	}
	if result.Succeeded() {
		analysis.Events, analysis.CongestedDays = buildEvents(rows, result.ChangePoints, cfg.PipeName)
		analysis.Congested = len(analysis.Events) > 0
	}
	return analysis, nil
}
