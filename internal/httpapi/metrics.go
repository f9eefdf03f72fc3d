package httpapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP server metrics
var (
	// RequestsTotal tracks the total number of API requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sisimcp_http_requests_total",
			Help: "Total number of API requests served",
		},
		[]string{"path", "status"},
	)

	// RequestDuration tracks the duration of API requests
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sisimcp_http_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	// DetectionsTotal tracks detection pipeline outcomes per channel
	DetectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sisimcp_detections_total",
			Help: "Total number of detection runs by channel and outcome",
		},
		[]string{"pipe_name", "outcome"},
	)

	// AppStartTime records when the server started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sisimcp_app_start_time_seconds",
			Help: "Unix timestamp of when the server started",
		},
	)
)

func init() {
	AppStartTime.SetToCurrentTime()
}

// recordRequest records one served API request.
func recordRequest(path, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(path, status).Inc()
	RequestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// recordDetection records a detection pipeline outcome.
func recordDetection(pipeName string, congested bool, err error) {
	outcome := "normal"
	switch {
	case err != nil:
		outcome = "error"
	case congested:
		outcome = "congested"
	}
	DetectionsTotal.WithLabelValues(pipeName, outcome).Inc()
}
