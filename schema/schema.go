// Package schema has configs, models and global variables for all parts of sisimcp.
package schema

import "fmt"

// DetectionResult is the outcome of a single changepoint detection call.
// Detection-stage failures (short series, unknown method) are reported through
// Status and Message rather than a Go error, so callers can tell "no signal"
// apart from a crash.
type DetectionResult struct {
	Status       DetectionStatus `json:"status"`            // success or error
	Method       Method          `json:"method"`            // method that produced the result
	Message      string          `json:"message,omitempty"` // human-readable detail on error
	ChangePoints []int           `json:"change_points"`     // strictly increasing indices, each < series length
}

// Succeeded reports whether the detection completed without a structured error.
func (r DetectionResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// CongestionEvent marks a boundary considered most likely due to a genuine
// traffic anomaly. It exists only when the owning change-point list is non-empty.
type CongestionEvent struct {
	DateID   int    `json:"date_id"`   // YYYYMMDD date key of the boundary
	PipeName string `json:"pipe_name"` // monitored chokepoint
}

// ExplanationRecord pairs a congestion event with its free-text explanation.
// One per detected event; collected in order and optionally persisted as JSON.
type ExplanationRecord struct {
	DateID    int    `json:"date_id"`
	PipeName  string `json:"pipe_name"`
	Detection string `json:"detection"`
}

// WindowAnalysis bundles everything a front end needs to present one
// detection run over a channel window.
type WindowAnalysis struct {
	PipeName      string            `json:"pipe_name"`
	RunDateID     int               `json:"run_date_id"`
	Rows          []SeriesRow       `json:"rows"`
	Result        DetectionResult   `json:"result"`
	Events        []CongestionEvent `json:"events"`
	Congested     bool              `json:"congested"`
	CongestedDays int               `json:"congested_days"`
}

// ResultText renders the one-line detection verdict shown by every front end.
func (a *WindowAnalysis) ResultText() string {
	date := FormatDateID(a.RunDateID)
	if a.Congested {
		return fmt.Sprintf("🚢 检测结果：%s %s 发生异常，异常天数 %d", date, a.PipeName, a.CongestedDays)
	}
	return fmt.Sprintf("✅ 检测结果：%s %s 无异常发生", date, a.PipeName)
}
