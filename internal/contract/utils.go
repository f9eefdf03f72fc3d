package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jiayuqiu/sisi-mcp/schema"
)

// Traffic state label constants.
const (
	CongestedValue = "Congested" // elevated regime
	NormalValue    = "Normal"    // regular regime
)

// Color variables for console output.
var (
	CongestedColor = color.New(color.FgRed, color.Bold) // congestedColor flags an abnormal regime.
	NormalColor    = color.New(color.FgCyan)            // normalColor marks regular traffic.
)

// GetPlainLabel returns a plain text traffic label. This is the core logic
// used for CSV, JSON and table printing.
func GetPlainLabel(congested bool) string {
	if congested {
		return CongestedValue
	}
	return NormalValue
}

// GetColorLabel returns a colored traffic label for console output (table).
func GetColorLabel(congested bool) string {
	if congested {
		return CongestedColor.Sprint(CongestedValue)
	}
	return NormalColor.Sprint(NormalValue)
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout for empty paths.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetSeriesDBFilePath returns the path to the SQLite DB file for the series store.
func GetSeriesDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".sisimcp_series.db"
	}
	return filepath.Join(homeDir, ".sisimcp_series.db")
}

// ParseRunDate parses a run date given as "YYYY-MM-DD" or compact "YYYYMMDD".
func ParseRunDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(schema.DateIDLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid run date %q (expected YYYY-MM-DD or YYYYMMDD)", s)
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
