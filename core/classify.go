package core

import (
	"github.com/jiayuqiu/sisi-mcp/schema"
)

// ClassifySegment reports whether the segment values[start:end] carries
// congestion traffic: its mean must exceed the whole-window mean by the
// congestion margin. A single-segment window has no internal boundary and
// can never be flagged through this path.
func ClassifySegment(values []float64, start, end int) bool {
	if start < 0 || end > len(values) || start >= end {
		return false
	}
	return mean(values[start:end]) > mean(values)*schema.CongestionMarginRatio
}

// buildEvents walks the boundary list and flags every boundary whose
// following segment classifies as congested. It returns the flagged events
// in date order plus the total day count inside congested segments.
func buildEvents(rows []schema.SeriesRow, boundaries []int, pipeName string) ([]schema.CongestionEvent, int) {
	values := schema.Values(rows)
	events := []schema.CongestionEvent{}
	days := 0
	for i, b := range boundaries {
		segEnd := len(rows)
		if i+1 < len(boundaries) {
			segEnd = boundaries[i+1]
		}
		if ClassifySegment(values, b, segEnd) {
			events = append(events, schema.CongestionEvent{DateID: rows[b].DateID, PipeName: pipeName})
			days += segEnd - b
		}
	}
	return events, days
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
