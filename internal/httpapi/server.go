// Package httpapi exposes the detection pipeline as a small REST surface:
// question-driven detection and explanation endpoints plus health and
// Prometheus metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jiayuqiu/sisi-mcp/core"
	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/internal/nlquery"
	"github.com/jiayuqiu/sisi-mcp/schema"
)

// parseFailureMessage guides the caller toward a parseable question.
const parseFailureMessage = "无法解析问题。请确保包含年月和通道名称。示例：2023年12月 曼德海峡是否发生异常？"

// Server routes API requests into the shared detection pipeline.
type Server struct {
	cfg      *contract.Config
	pipeline *core.Pipeline
	logger   *slog.Logger
}

// NewServer returns a Server over the given pipeline.
func NewServer(cfg *contract.Config, pipeline *core.Pipeline, logger *slog.Logger) *Server {
	return &Server{cfg: cfg, pipeline: pipeline, logger: logger}
}

// Handler builds the route table. Exposed for httptest use.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/detect_congestion", s.handleDetectCongestion)
	mux.HandleFunc("/api/ask_question", s.handleAskQuestion)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleIndex)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start serves the API until the context is canceled, then shuts down
// gracefully.
func Start(ctx context.Context, cfg *contract.Config, pipeline *core.Pipeline, logger *slog.Logger) error {
	server := NewServer(cfg, pipeline, logger)
	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: server.Handler()}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()

	logger.Info("api listening", "addr", cfg.HTTPAddr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

type questionRequest struct {
	Question string `json:"question"`
}

type detectionResponse struct {
	Success  bool   `json:"success"`
	Result   string `json:"result,omitempty"`
	Message  string `json:"message,omitempty"`
	RunDate  string `json:"run_date,omitempty"`
	PipeName string `json:"pipe_name,omitempty"`
}

// handleDetectCongestion runs the detection stage for a parsed question and
// answers with the one-line verdict. The explanation chain is not involved.
func (s *Server) handleDetectCongestion(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { recordRequest("/api/detect_congestion", "done", time.Since(start)) }()

	target, ok := s.parseQuestionRequest(w, r)
	if !ok {
		return
	}

	analysis, err := s.pipeline.Analyze(core.WithSuppressHeader(r.Context()), target.PipeName, target.RunDate)
	recordDetection(target.PipeName, err == nil && analysis != nil && analysis.Congested, err)
	if err != nil {
		s.logger.Error("detection failed", "pipe_name", target.PipeName, "err", err)
		writeJSON(w, http.StatusInternalServerError, detectionResponse{
			Success: false,
			Message: fmt.Sprintf("检测失败：%v", err),
		})
		return
	}
	if !analysis.Result.Succeeded() {
		writeJSON(w, http.StatusOK, detectionResponse{
			Success:  false,
			Message:  analysis.Result.Message,
			RunDate:  schema.FormatDateID(analysis.RunDateID),
			PipeName: analysis.PipeName,
		})
		return
	}

	writeJSON(w, http.StatusOK, detectionResponse{
		Success:  true,
		Result:   analysis.ResultText(),
		RunDate:  schema.FormatDateID(analysis.RunDateID),
		PipeName: analysis.PipeName,
	})
}

// handleAskQuestion runs the full pipeline including the explanation chain
// and answers with a markdown-ish report.
func (s *Server) handleAskQuestion(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { recordRequest("/api/ask_question", "done", time.Since(start)) }()

	target, ok := s.parseQuestionRequest(w, r)
	if !ok {
		return
	}

	analysis, records, err := s.pipeline.RunForTarget(core.WithSuppressHeader(r.Context()), target.PipeName, target.RunDate)
	recordDetection(target.PipeName, err == nil && analysis != nil && analysis.Congested, err)
	if err != nil {
		s.logger.Error("pipeline failed", "pipe_name", target.PipeName, "err", err)
		writeJSON(w, http.StatusInternalServerError, detectionResponse{
			Success: false,
			Message: fmt.Sprintf("分析失败：%v", err),
		})
		return
	}

	writeJSON(w, http.StatusOK, detectionResponse{
		Success:  true,
		Result:   formatReport(analysis, records),
		RunDate:  schema.FormatDateID(analysis.RunDateID),
		PipeName: analysis.PipeName,
	})
}

// parseQuestionRequest decodes and parses the question body. An unparseable
// question is a client mistake, not a server failure, so it answers HTTP 200
// with success=false and guidance text.
func (s *Server) parseQuestionRequest(w http.ResponseWriter, r *http.Request) (nlquery.Target, bool) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return nlquery.Target{}, false
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, detectionResponse{Success: false, Message: "无法读取请求体"})
		return nlquery.Target{}, false
	}
	var req questionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, detectionResponse{Success: false, Message: "请求体必须是 JSON"})
		return nlquery.Target{}, false
	}

	target, err := nlquery.ParseQuestion(req.Question)
	if err != nil {
		s.logger.Debug("question parse failed", "question", req.Question, "err", err)
		writeJSON(w, http.StatusOK, detectionResponse{Success: false, Message: parseFailureMessage})
		return nlquery.Target{}, false
	}
	return target, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// handleIndex lists the available endpoints.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "sisimcp",
		"endpoints": map[string]string{
			"POST /api/detect_congestion": "检测指定年月和通道是否发生异常",
			"POST /api/ask_question":      "检测并分析异常原因",
			"GET /health":                 "health check",
			"GET /metrics":                "prometheus metrics",
		},
	})
}

// formatReport renders the ask_question response body.
func formatReport(analysis *schema.WindowAnalysis, records []schema.ExplanationRecord) string {
	var sb strings.Builder
	sb.WriteString("## 🚢 检测结果 / Detection Result\n\n")
	if !analysis.Result.Succeeded() {
		fmt.Fprintf(&sb, "⚠️ %s\n", analysis.Result.Message)
		return sb.String()
	}
	sb.WriteString(analysis.ResultText())
	sb.WriteString("\n")
	for _, rec := range records {
		if rec.Detection == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n### %s 原因分析\n\n%s\n", schema.FormatDateID(rec.DateID), rec.Detection)
	}
	return sb.String()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
