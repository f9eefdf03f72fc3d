package schema

import (
	"fmt"
	"time"
)

// DateIDLayout is the compact date key layout used by the series store.
const DateIDLayout = "20060102"

// TimeToDateID converts a time into a YYYYMMDD integer date key.
func TimeToDateID(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// DateIDToTime converts a YYYYMMDD integer date key into a UTC time.
// Returns an error for keys that do not encode a real calendar date.
func DateIDToTime(dateID int) (time.Time, error) {
	t, err := time.Parse(DateIDLayout, fmt.Sprintf("%08d", dateID))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %d: %w", dateID, err)
	}
	return t, nil
}

// FormatDateID renders a YYYYMMDD date key as "YYYY-MM-DD" for display.
// Malformed keys are rendered as the raw integer.
func FormatDateID(dateID int) string {
	t, err := DateIDToTime(dateID)
	if err != nil {
		return fmt.Sprintf("%d", dateID)
	}
	return t.Format("2006-01-02")
}

// LastDayOfMonth returns the final calendar day of the given year/month in UTC.
func LastDayOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// WindowStart computes the inclusive start of a lookback window ending at end.
func WindowStart(end time.Time, lookbackMonths, lookbackDays int) time.Time {
	return end.AddDate(0, -lookbackMonths, -lookbackDays)
}
