// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/jiayuqiu/sisi-mcp/core"
	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the congestion detection MCP server
// without starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, pipeline *core.Pipeline) *server.MCPServer {
	s := server.NewMCPServer(
		"Traffic Congestion Detection Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:  baseCfg,
		pipeline: pipeline,
	}

	// --- 1. Tool: detect_congestion ---
	s.AddTool(mcp.NewTool("detect_congestion",
		mcp.WithDescription(
			"检测指定日期和通道的交通拥堵情况。支持马六甲海峡和曼德海峡的拥堵检测。"+
				"通过分析船舶数量数据的变点，并结合天气和新闻信息，判断是否发生拥堵。\n\n"+
				"Detect traffic congestion for a specific date and shipping channel. "+
				"Supports Malacca Strait and Mandeb Strait congestion detection. "+
				"Analyzes changepoints in vessel count data combined with weather and news information."),
		mcp.WithString("run_date",
			mcp.Description("日期，格式为 YYYY-MM-DD（通常是月末日期）/ Date in YYYY-MM-DD format (typically end of month)."),
			mcp.Required()),
		mcp.WithString("pipe_name",
			mcp.Description("通道名称，如'马六甲海峡'或'曼德海峡' / Channel name, e.g., '马六甲海峡' or '曼德海峡'."),
			mcp.Required(),
			mcp.Enum(schema.PipeMalacca, schema.PipeBabElMandeb, "马六甲")),
	), h.handleDetectCongestion)

	// --- 2. Tool: ask_question ---
	s.AddTool(mcp.NewTool("ask_question",
		mcp.WithDescription(
			"使用自然语言提问交通拥堵情况。系统会自动解析问题中的日期和通道信息。\n"+
				"例如：'请问，2023年12月 曼德海峡 是否发生异常？'\n\n"+
				"Ask about traffic congestion in natural language (Chinese). "+
				"The system will automatically parse the date and channel from your question. "+
				"Example: '请问，2023年12月 曼德海峡 是否发生异常？'"),
		mcp.WithString("question",
			mcp.Description("用中文提出的问题，包含年月和通道名称 / Question in Chinese containing year, month, and channel name."),
			mcp.Required()),
	), h.handleAskQuestion)

	return s
}

// StartMCPServer starts the congestion detection MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, pipeline *core.Pipeline) error {
	s := NewMCPServer(baseCfg, pipeline)
	return server.ServeStdio(s)
}
