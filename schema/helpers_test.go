package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTimeToDateID tests time to date key conversion.
func TestTimeToDateID(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want int
	}{
		{"end of year", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), 20231231},
		{"start of year", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 20240101},
		{"mid month", time.Date(2023, 6, 15, 23, 59, 0, 0, time.UTC), 20230615},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeToDateID(tt.in))
		})
	}
}

// TestDateIDToTime tests round-tripping and rejection of bad keys.
func TestDateIDToTime(t *testing.T) {
	ts, err := DateIDToTime(20231231)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), ts)

	_, err = DateIDToTime(20231332) // month 13
	assert.Error(t, err)

	_, err = DateIDToTime(20230230) // Feb 30
	assert.Error(t, err)
}

// TestFormatDateID tests display formatting including the malformed fallback.
func TestFormatDateID(t *testing.T) {
	assert.Equal(t, "2023-12-31", FormatDateID(20231231))
	assert.Equal(t, "20231399", FormatDateID(20231399))
}

// TestLastDayOfMonth tests month-end resolution including leap years.
func TestLastDayOfMonth(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		want  int
	}{
		{"december", 2023, time.December, 31},
		{"april", 2023, time.April, 30},
		{"february leap", 2024, time.February, 29},
		{"february non-leap", 2023, time.February, 28},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LastDayOfMonth(tt.year, tt.month).Day())
		})
	}
}

// TestWindowStart tests lookback window arithmetic.
func TestWindowStart(t *testing.T) {
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC), WindowStart(end, 3, 1))
	assert.Equal(t, end, WindowStart(end, 0, 0))
}

// TestValues tests value extraction from series rows.
func TestValues(t *testing.T) {
	rows := []SeriesRow{
		{PipeName: PipeMalacca, DateID: 20230101, ShipCnt: 12},
		{PipeName: PipeMalacca, DateID: 20230102, ShipCnt: 15},
	}
	assert.Equal(t, []float64{12, 15}, Values(rows))
	assert.Empty(t, Values(nil))
}
