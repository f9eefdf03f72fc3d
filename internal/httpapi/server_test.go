package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jiayuqiu/sisi-mcp/core"
	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/internal/seriesstore"
	"github.com/jiayuqiu/sisi-mcp/schema"
)

func testServer(store *seriesstore.MockSeriesStore) *Server {
	cfg := &contract.Config{
		LookbackMonths: 3,
		Method:         schema.PELTMethod,
		Model:          schema.L2Model,
		MinSize:        3,
		NBkps:          3,
		Jump:           5,
		Width:          5,
		HTTPAddr:       ":0",
	}
	return NewServer(cfg, core.NewPipeline(cfg, store, nil), NewLogger("error"))
}

func postJSON(t *testing.T, handler http.Handler, path, question string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"question": question})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) detectionResponse {
	t.Helper()
	var resp detectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decemberWindow(pipeName string) []schema.SeriesRow {
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

// TestDetectCongestionEndpoint covers the verdict path and the congested
// result string.
func TestDetectCongestionEndpoint(t *testing.T) {
	store := &seriesstore.MockSeriesStore{}
	runDate := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	store.On("LoadWindow", mock.Anything, "曼德海峡", runDate, 3, 0).
		Return(decemberWindow("曼德海峡"), nil).Once()

	handler := testServer(store).Handler()
	rec := postJSON(t, handler, "/api/detect_congestion", "2023年12月 曼德海峡是否发生异常?")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Result, "🚢 检测结果：2023-12-31 曼德海峡 发生异常")
	assert.Equal(t, "2023-12-31", resp.RunDate)
	assert.Equal(t, "曼德海峡", resp.PipeName)
	store.AssertExpectations(t)
}

// TestDetectCongestionQuiet answers the all-clear result string.
func TestDetectCongestionQuiet(t *testing.T) {
	store := &seriesstore.MockSeriesStore{}
	rows := decemberWindow("曼德海峡")
	for i := range rows {
		rows[i].ShipCnt = 5
	}
	runDate := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	store.On("LoadWindow", mock.Anything, "曼德海峡", runDate, 3, 0).
		Return(rows, nil).Once()

	rec := postJSON(t, testServer(store).Handler(), "/api/detect_congestion", "2023年12月 曼德海峡是否发生异常?")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Result, "✅ 检测结果：2023-12-31 曼德海峡 无异常发生")
}

// TestDetectCongestionParseFailure answers HTTP 200 with guidance text.
func TestDetectCongestionParseFailure(t *testing.T) {
	rec := postJSON(t, testServer(&seriesstore.MockSeriesStore{}).Handler(), "/api/detect_congestion", "今天天气怎么样")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "无法解析问题")
}

// TestDetectCongestionPipelineFailure answers HTTP 500 on loader errors.
func TestDetectCongestionPipelineFailure(t *testing.T) {
	store := &seriesstore.MockSeriesStore{}
	store.On("LoadWindow", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, schema.ErrNoDataForChannel).Once()

	rec := postJSON(t, testServer(store).Handler(), "/api/detect_congestion", "2023年12月 曼德海峡是否发生异常?")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, decodeResponse(t, rec).Success)
}

// TestDetectCongestionMethodNotAllowed rejects GETs.
func TestDetectCongestionMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/detect_congestion", nil)
	rec := httptest.NewRecorder()
	testServer(&seriesstore.MockSeriesStore{}).Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// TestAskQuestionEndpoint returns the markdown-ish report.
func TestAskQuestionEndpoint(t *testing.T) {
	store := &seriesstore.MockSeriesStore{}
	runDate := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	store.On("LoadWindow", mock.Anything, "曼德海峡", runDate, 3, 0).
		Return(decemberWindow("曼德海峡"), nil).Once()

	rec := postJSON(t, testServer(store).Handler(), "/api/ask_question", "请分析2023年12月曼德海峡发生异常的原因")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Result, "## 🚢 检测结果 / Detection Result")
	assert.Contains(t, resp.Result, "发生异常")
}

// TestHealthEndpoint answers ok.
func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	testServer(&seriesstore.MockSeriesStore{}).Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
}

// TestIndexEndpoint lists the routes and 404s elsewhere.
func TestIndexEndpoint(t *testing.T) {
	handler := testServer(&seriesstore.MockSeriesStore{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "detect_congestion")

	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestMetricsEndpoint exposes prometheus output.
func TestMetricsEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	testServer(&seriesstore.MockSeriesStore{}).Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sisimcp_app_start_time_seconds")
}
