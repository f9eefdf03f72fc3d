package aiclient

import (
	"regexp"
	"strings"
)

// thinkTagPattern matches the delimited reasoning markup some models emit
// before their actual answer. The match spans newlines.
var thinkTagPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// RemoveThinkTag strips any <think>...</think> reasoning block from the text
// and trims surrounding whitespace.
func RemoveThinkTag(text string) string {
	return strings.TrimSpace(thinkTagPattern.ReplaceAllString(text, ""))
}
