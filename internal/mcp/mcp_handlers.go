package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/jiayuqiu/sisi-mcp/core"
	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/internal/nlquery"
	"github.com/jiayuqiu/sisi-mcp/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg  *contract.Config
	pipeline *core.Pipeline
}

func (h *toolHandler) handleDetectCongestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runDateStr := request.GetString("run_date", "")
	pipeName := request.GetString("pipe_name", "")
	if runDateStr == "" || pipeName == "" {
		return mcp.NewToolResultError("缺少必需参数 run_date 或 pipe_name / Missing required parameters run_date or pipe_name"), nil
	}

	runDate, err := contract.ParseRunDate(runDateStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("无法解析日期 / invalid run_date: %v", err)), nil
	}
	if pipeName == "马六甲" {
		pipeName = schema.PipeMalacca
	}

	analysis, records, err := h.pipeline.RunForTarget(core.WithSuppressHeader(ctx), pipeName, runDate)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("检测失败 / detection failed: %v", err)), nil
	}
	return mcp.NewToolResultText(formatDetectionResponse(analysis, records)), nil
}

func (h *toolHandler) handleAskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question := request.GetString("question", "")
	if question == "" {
		return mcp.NewToolResultError("缺少问题参数 / Missing question parameter"), nil
	}

	target, err := nlquery.ParseQuestion(question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf(
			"❓ 无法解析问题 / Unable to Parse Question\n\n"+
				"您的问题：%s\n\n"+
				"请确保问题包含年月和通道名称。示例：'请问，2023年12月 曼德海峡 是否发生异常？'", question)), nil
	}

	analysis, records, err := h.pipeline.RunForTarget(core.WithSuppressHeader(ctx), target.PipeName, target.RunDate)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("检测失败 / detection failed: %v", err)), nil
	}
	return mcp.NewToolResultText(formatDetectionResponse(analysis, records)), nil
}

// formatDetectionResponse renders the emoji-boxed bilingual tool response.
func formatDetectionResponse(analysis *schema.WindowAnalysis, records []schema.ExplanationRecord) string {
	var sb strings.Builder
	sb.WriteString("🚢 交通拥堵检测结果 / Traffic Congestion Detection Result\n")
	sb.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&sb, "📅 日期 / Date: %s\n", schema.FormatDateID(analysis.RunDateID))
	fmt.Fprintf(&sb, "🌊 通道 / Channel: %s\n", analysis.PipeName)
	sb.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	if !analysis.Result.Succeeded() {
		fmt.Fprintf(&sb, "⚠️ %s", analysis.Result.Message)
		return sb.String()
	}

	sb.WriteString(analysis.ResultText())
	for _, rec := range records {
		if rec.Detection == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n\n📖 %s 原因分析 / Analysis:\n%s", schema.FormatDateID(rec.DateID), rec.Detection)
	}
	return sb.String()
}
