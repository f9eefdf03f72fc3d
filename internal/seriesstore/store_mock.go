package seriesstore

import (
	"context"
	"time"

	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/schema"
	"github.com/stretchr/testify/mock"
)

// MockSeriesStore is a mock implementation of SeriesStore for testing.
type MockSeriesStore struct {
	mock.Mock
}

var _ contract.SeriesStore = &MockSeriesStore{} // Compile-time check

// LoadWindow implements the SeriesStore interface.
func (m *MockSeriesStore) LoadWindow(ctx context.Context, pipeName string, end time.Time, lookbackMonths, lookbackDays int) ([]schema.SeriesRow, error) {
	args := m.Called(ctx, pipeName, end, lookbackMonths, lookbackDays)
	rows, _ := args.Get(0).([]schema.SeriesRow)
	return rows, args.Error(1)
}

// HasChannel implements the SeriesStore interface.
func (m *MockSeriesStore) HasChannel(ctx context.Context, pipeName string) (bool, error) {
	args := m.Called(ctx, pipeName)
	return args.Bool(0), args.Error(1)
}

// UpsertRows implements the SeriesStore interface.
func (m *MockSeriesStore) UpsertRows(ctx context.Context, rows []schema.SeriesRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

// Channels implements the SeriesStore interface.
func (m *MockSeriesStore) Channels(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	channels, _ := args.Get(0).([]string)
	return channels, args.Error(1)
}

// GetStatus implements the SeriesStore interface.
func (m *MockSeriesStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the SeriesStore interface.
func (m *MockSeriesStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
