// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/jiayuqiu/sisi-mcp/schema"
)

// SeriesStore defines the operations over the persisted ship-count series.
// This allows the detection pipeline to be tested without a real database.
type SeriesStore interface {
	// LoadWindow returns the channel's rows with dates inside
	// [end - lookback, end] inclusive, ordered by date ascending. A channel
	// with rows but none inside the window yields an empty slice and no
	// error; a channel with zero rows anywhere yields ErrNoDataForChannel.
	LoadWindow(ctx context.Context, pipeName string, end time.Time, lookbackMonths, lookbackDays int) ([]schema.SeriesRow, error)

	// HasChannel reports whether the channel has any persisted rows at all.
	HasChannel(ctx context.Context, pipeName string) (bool, error)

	// UpsertRows inserts or replaces series rows. Used by ingestion only;
	// the detection pipeline never mutates the store.
	UpsertRows(ctx context.Context, rows []schema.SeriesRow) error

	// Channels lists all channels with persisted rows.
	Channels(ctx context.Context) ([]string, error)

	// GetStatus returns status information about the series store.
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// ChatClient defines a single chat-completions language service endpoint.
type ChatClient interface {
	// Ask sends one user question and returns the first choice's message
	// content. Transport and HTTP failures wrap schema.ErrUpstreamService;
	// payloads missing the expected fields wrap
	// schema.ErrMalformedUpstreamResponse.
	Ask(ctx context.Context, question string) (string, error)
}

// ExplainCache caches explanation text per (channel, date) pair so repeated
// questions about the same event skip the two-step language chain.
type ExplainCache interface {
	// Get returns the cached text and whether it was present.
	Get(ctx context.Context, pipeName string, dateID int) (string, bool, error)

	// Set stores the text under the store's TTL policy.
	Set(ctx context.Context, pipeName string, dateID int, text string) error

	// Close closes the underlying connection.
	Close() error
}
