package explaincache

import (
	"context"

	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/stretchr/testify/mock"
)

// MockExplainCache is a mock implementation of ExplainCache for testing.
type MockExplainCache struct {
	mock.Mock
}

var _ contract.ExplainCache = &MockExplainCache{} // Compile-time check

// Get implements the ExplainCache interface.
func (m *MockExplainCache) Get(ctx context.Context, pipeName string, dateID int) (string, bool, error) {
	args := m.Called(ctx, pipeName, dateID)
	return args.String(0), args.Bool(1), args.Error(2)
}

// Set implements the ExplainCache interface.
func (m *MockExplainCache) Set(ctx context.Context, pipeName string, dateID int, text string) error {
	args := m.Called(ctx, pipeName, dateID, text)
	return args.Error(0)
}

// Close implements the ExplainCache interface.
func (m *MockExplainCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
