package core

import (
	"context"
	"fmt"

	"github.com/jiayuqiu/sisi-mcp/internal/aiclient"
	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/internal/explaincache"
	"github.com/jiayuqiu/sisi-mcp/schema"
)

// weatherNewsPrompt asks the web-search service for the weather and shipping
// news around a flagged boundary. The rephrase service then summarizes and
// translates the answer into Chinese.
const weatherNewsPrompt = "请通过联网检索，整理 %s 前后一周内 %s 附近的天气情况与航运相关新闻，" +
	"包括恶劣天气、事故、袭击、港口拥堵或地缘政治事件，并说明这些因素对船舶通行的可能影响。"

// Explainer runs the two-step explanation chain: a web-search chat service
// gathers raw weather and news text, a rephrase chat service condenses it.
// An optional cache short-circuits repeat questions about the same event.
type Explainer struct {
	Search   contract.ChatClient
	Rephrase contract.ChatClient
	Cache    contract.ExplainCache
}

// NewExplainer builds the chain from config. Returns nil when no search
// service is configured; the cache is attached only when a redis address is
// set and reachable.
func NewExplainer(ctx context.Context, cfg *contract.Config) *Explainer {
	if cfg.SearchAPIBase == "" {
		return nil
	}
	e := &Explainer{
		Search:   aiclient.NewSearchClient(cfg),
		Rephrase: aiclient.NewRephraseClient(cfg),
	}
	if cfg.RedisAddr != "" {
		cache, err := explaincache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)
		if err != nil {
			contract.LogWarn("Explanation cache unavailable, continuing without it", err)
		} else {
			e.Cache = cache
		}
	}
	return e
}

// Close releases the cache connection if one was attached.
func (e *Explainer) Close() error {
	if e == nil || e.Cache == nil {
		return nil
	}
	return e.Cache.Close()
}

// Explain produces the explanation text for one congestion event. The
// web-search answer is forwarded verbatim as the rephrase question; any
// <think> block in the rephrase output is stripped. No retry on failure.
func (e *Explainer) Explain(ctx context.Context, event schema.CongestionEvent) (string, error) {
	if e.Cache != nil {
		text, ok, err := e.Cache.Get(ctx, event.PipeName, event.DateID)
		if err != nil {
			contract.LogWarn("Explanation cache read failed", err)
		} else if ok {
			return text, nil
		}
	}

	question := fmt.Sprintf(weatherNewsPrompt, schema.FormatDateID(event.DateID), event.PipeName)
	raw, err := e.Search.Ask(ctx, question)
	if err != nil {
		return "", err
	}
	summary, err := e.Rephrase.Ask(ctx, raw)
	if err != nil {
		return "", err
	}
	text := aiclient.RemoveThinkTag(summary)

	if e.Cache != nil {
		if err := e.Cache.Set(ctx, event.PipeName, event.DateID, text); err != nil {
			contract.LogWarn("Explanation cache write failed", err)
		}
	}
	return text, nil
}

// ExplainEvents returns one record per event, in event order. Only the most
// recent event gets explanation text unless explainAll is set; the rest
// carry an empty detection field.
func (e *Explainer) ExplainEvents(ctx context.Context, events []schema.CongestionEvent, explainAll bool) ([]schema.ExplanationRecord, error) {
	records := make([]schema.ExplanationRecord, len(events))
	for i, ev := range events {
		records[i] = schema.ExplanationRecord{DateID: ev.DateID, PipeName: ev.PipeName}
	}
	for i := len(events) - 1; i >= 0; i-- {
		text, err := e.Explain(ctx, events[i])
		if err != nil {
			return nil, err
		}
		records[i].Detection = text
		if !explainAll {
			break
		}
	}
	return records, nil
}
