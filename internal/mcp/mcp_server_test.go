package mcp_test

import (
	"context"
	"testing"
	"time"

	"github.com/jiayuqiu/sisi-mcp/core"
	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	mcp_internal "github.com/jiayuqiu/sisi-mcp/internal/mcp"
	"github.com/jiayuqiu/sisi-mcp/internal/seriesstore"
	"github.com/jiayuqiu/sisi-mcp/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func baseTestConfig() *contract.Config {
	return &contract.Config{
		PipeName:       schema.PipeBabElMandeb,
		LookbackMonths: 3,
		Method:         schema.PELTMethod,
		Model:          schema.L2Model,
		MinSize:        3,
		NBkps:          3,
		Jump:           5,
		Width:          5,
	}
}

func callTool(t *testing.T, store *seriesstore.MockSeriesStore, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	cfg := baseTestConfig()
	s := mcp_internal.NewMCPServer(cfg, core.NewPipeline(cfg, store, nil))

	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func windowFixture(pipeName string) []schema.SeriesRow {
	counts := []float64{1, 1, 1, 1, 1, 1, 1, 1, 20, 20, 20, 20, 20, 20, 20, 20, 1, 1, 1, 1, 1, 1, 1}
	rows := make([]schema.SeriesRow, len(counts))
	start := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range counts {
		rows[i] = schema.SeriesRow{
			PipeName: pipeName,
			DateID:   schema.TimeToDateID(start.AddDate(0, 0, i)),
			ShipCnt:  c,
		}
	}
	return rows
}

func TestDetectCongestionTool(t *testing.T) {
	t.Run("missing parameters", func(t *testing.T) {
		res := callTool(t, &seriesstore.MockSeriesStore{}, "detect_congestion", map[string]any{
			"run_date": "",
		})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "Missing required parameters")
	})

	t.Run("invalid run_date", func(t *testing.T) {
		res := callTool(t, &seriesstore.MockSeriesStore{}, "detect_congestion", map[string]any{
			"run_date":  "not-a-date",
			"pipe_name": schema.PipeBabElMandeb,
		})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid run_date")
	})

	t.Run("congested window", func(t *testing.T) {
		store := &seriesstore.MockSeriesStore{}
		runDate := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
		store.On("LoadWindow", mock.Anything, schema.PipeBabElMandeb, runDate, 3, 0).
			Return(windowFixture(schema.PipeBabElMandeb), nil).Once()

		res := callTool(t, store, "detect_congestion", map[string]any{
			"run_date":  "2023-12-31",
			"pipe_name": schema.PipeBabElMandeb,
		})
		require.False(t, res.IsError)
		text := res.Content[0].(mcp.TextContent).Text
		assert.Contains(t, text, "交通拥堵检测结果")
		assert.Contains(t, text, "发生异常")
		assert.Contains(t, text, "2023-12-31")
		store.AssertExpectations(t)
	})

	t.Run("unknown channel", func(t *testing.T) {
		store := &seriesstore.MockSeriesStore{}
		runDate := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
		store.On("LoadWindow", mock.Anything, schema.PipeMalacca, runDate, 3, 0).
			Return(nil, schema.ErrNoDataForChannel).Once()

		// The shorthand name maps onto the stored channel name.
		res := callTool(t, store, "detect_congestion", map[string]any{
			"run_date":  "2023-12-31",
			"pipe_name": "马六甲",
		})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "detection failed")
	})
}

func TestAskQuestionTool(t *testing.T) {
	t.Run("unparseable question", func(t *testing.T) {
		res := callTool(t, &seriesstore.MockSeriesStore{}, "ask_question", map[string]any{
			"question": "今天天气怎么样",
		})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "无法解析问题")
	})

	t.Run("missing question", func(t *testing.T) {
		res := callTool(t, &seriesstore.MockSeriesStore{}, "ask_question", map[string]any{})
		assert.True(t, res.IsError)
	})

	t.Run("parsed and detected", func(t *testing.T) {
		store := &seriesstore.MockSeriesStore{}
		runDate := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
		store.On("LoadWindow", mock.Anything, schema.PipeBabElMandeb, runDate, 3, 0).
			Return(windowFixture(schema.PipeBabElMandeb), nil).Once()

		res := callTool(t, store, "ask_question", map[string]any{
			"question": "请问，2023年12月 曼德海峡 是否发生异常？",
		})
		require.False(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "曼德海峡")
		store.AssertExpectations(t)
	})
}
