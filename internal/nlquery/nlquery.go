// Package nlquery extracts a detection target (channel and month) from a
// Chinese natural-language question about strait congestion.
package nlquery

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jiayuqiu/sisi-mcp/schema"
)

var (
	// yearMonthPattern matches "2025年6月" style dates, tolerating spaces.
	yearMonthPattern = regexp.MustCompile(`(\d{4})\s*年\s*(\d{1,2})\s*月`)

	// numericDatePattern matches "2025-6" and "2025/06" style dates.
	numericDatePattern = regexp.MustCompile(`(\d{4})[-/](\d{1,2})`)

	// channelCutPattern splits off the question tail after the channel name.
	channelCutPattern = regexp.MustCompile(`是否|会不会|有无|发生|拥堵|异常|堵塞`)
)

// Target is the detection request recovered from a question.
type Target struct {
	PipeName string
	RunDate  time.Time
}

// ParseQuestion recovers the channel and month from a question like
// "2025年6月曼德海峡是否发生拥堵". The run date is the last day of the
// matched month. Failures wrap schema.ErrInvalidParameter.
func ParseQuestion(question string) (Target, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Target{}, fmt.Errorf("%w: empty question", schema.ErrInvalidParameter)
	}

	year, month, rest, err := extractMonth(question)
	if err != nil {
		return Target{}, err
	}

	pipeName, err := extractChannel(question, rest)
	if err != nil {
		return Target{}, err
	}

	return Target{
		PipeName: pipeName,
		RunDate:  schema.LastDayOfMonth(year, time.Month(month)),
	}, nil
}

// extractMonth returns the year, month, and the question text after the date.
func extractMonth(question string) (int, int, string, error) {
	for _, pattern := range []*regexp.Regexp{yearMonthPattern, numericDatePattern} {
		loc := pattern.FindStringSubmatchIndex(question)
		if loc == nil {
			continue
		}
		year, _ := strconv.Atoi(question[loc[2]:loc[3]])
		month, _ := strconv.Atoi(question[loc[4]:loc[5]])
		if month < 1 || month > 12 {
			return 0, 0, "", fmt.Errorf("%w: month %d out of range in question", schema.ErrInvalidParameter, month)
		}
		return year, month, question[loc[1]:], nil
	}
	return 0, 0, "", fmt.Errorf("%w: no year and month found in question", schema.ErrInvalidParameter)
}

// extractChannel pulls the channel name out of the text following the date,
// falling back to a scan of the whole question for a known channel.
func extractChannel(question, rest string) (string, error) {
	name := rest
	if loc := channelCutPattern.FindStringIndex(rest); loc != nil {
		name = rest[:loc[0]]
	}
	name = strings.TrimSpace(name)
	if name != "" {
		return canonicalChannel(name), nil
	}

	// Date came after the channel name.
	for _, known := range schema.KnownPipeNames {
		if strings.Contains(question, known) {
			return known, nil
		}
	}
	if strings.Contains(question, "马六甲") {
		return schema.PipeMalacca, nil
	}
	return "", fmt.Errorf("%w: no channel name found in question", schema.ErrInvalidParameter)
}

// canonicalChannel maps shorthand names onto stored channel names.
func canonicalChannel(name string) string {
	if name == "马六甲" {
		return schema.PipeMalacca
	}
	return name
}
