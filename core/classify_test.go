package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jiayuqiu/sisi-mcp/schema"
)

// TestClassifySegment checks the margin rule against hand-built windows.
func TestClassifySegment(t *testing.T) {
	for name, tc := range map[string]struct {
		values []float64
		start  int
		end    int
		want   bool
	}{
		"elevated segment": {
			values: []float64{1, 1, 1, 10, 10, 10},
			start:  3, end: 6,
			want: true,
		},
		"quiet segment": {
			values: []float64{1, 1, 1, 10, 10, 10},
			start:  0, end: 3,
			want: false,
		},
		"constant series": {
			values: []float64{5, 5, 5, 5, 5, 5},
			start:  2, end: 4,
			want: false,
		},
		"within margin": {
			// segment mean 10.5 vs whole mean 10, under the 1.1 ratio
			values: []float64{9.5, 9.5, 10.5, 10.5},
			start:  2, end: 4,
			want: false,
		},
		"empty range": {
			values: []float64{1, 2, 3},
			start:  2, end: 2,
			want: false,
		},
		"out of bounds": {
			values: []float64{1, 2, 3},
			start:  1, end: 9,
			want: false,
		},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifySegment(tc.values, tc.start, tc.end))
		})
	}
}

// TestClassifySegmentConstantNeverFlags sweeps every split of a flat series.
func TestClassifySegmentConstantNeverFlags(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 7
	}
	for start := range len(values) {
		for end := start + 1; end <= len(values); end++ {
			assert.False(t, ClassifySegment(values, start, end))
		}
	}
}

// TestBuildEvents verifies which boundaries get flagged and the day count.
func TestBuildEvents(t *testing.T) {
	rows := []schema.SeriesRow{
		{PipeName: "曼德海峡", DateID: 20231201, ShipCnt: 1},
		{PipeName: "曼德海峡", DateID: 20231202, ShipCnt: 1},
		{PipeName: "曼德海峡", DateID: 20231203, ShipCnt: 1},
		{PipeName: "曼德海峡", DateID: 20231204, ShipCnt: 20},
		{PipeName: "曼德海峡", DateID: 20231205, ShipCnt: 20},
		{PipeName: "曼德海峡", DateID: 20231206, ShipCnt: 20},
		{PipeName: "曼德海峡", DateID: 20231207, ShipCnt: 1},
		{PipeName: "曼德海峡", DateID: 20231208, ShipCnt: 1},
	}

	events, days := buildEvents(rows, []int{3, 6}, "曼德海峡")
	assert.Equal(t, []schema.CongestionEvent{{DateID: 20231204, PipeName: "曼德海峡"}}, events)
	assert.Equal(t, 3, days)

	// No boundaries means no events regardless of shape.
	events, days = buildEvents(rows, []int{}, "曼德海峡")
	assert.Empty(t, events)
	assert.Zero(t, days)
}
