// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"os"

	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/schema"
	"golang.org/x/term"
)

// LogRunHeader prints the run banner to stderr before an analysis starts.
func LogRunHeader(cfg *contract.Config) {
	start := schema.WindowStart(cfg.RunDate, cfg.LookbackMonths, cfg.LookbackDays)
	fmt.Fprintf(os.Stderr, "🔍 Analyzing %s from %s to %s (method=%s, model=%s)\n",
		cfg.PipeName,
		start.Format(contract.DateTimeFormat),
		cfg.RunDate.Format(contract.DateTimeFormat),
		cfg.Method, cfg.Model)
}

// getMaxTableTextWidth calculates the maximum width for explanation text in
// table output based on terminal width.
func getMaxTableTextWidth() int {
	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termWidth <= 0 {
		// Fallback to conservative default for narrow terminals and CI
		termWidth = 80
	}

	// Reserve space for the fixed columns with borders and padding
	available := termWidth - 45
	if available < 20 {
		return 20
	}
	if available > 70 {
		return 70
	}
	return available
}

// truncateText shortens text to maxWidth runes with an ellipsis.
func truncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) <= maxWidth {
		return s
	}
	if maxWidth <= 1 {
		return string(runes[:maxWidth])
	}
	return string(runes[:maxWidth-1]) + "…"
}
