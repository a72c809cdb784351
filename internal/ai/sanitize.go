package ai

import (
	"strings"
	"unicode/utf8"

	"github.com/RibirX/ribir-bot/internal/regex"
)

const (
	// MaxSummaryLen bounds the generated summary in the PR body.
	MaxSummaryLen = 1000
	// MaxChangelogLen bounds the generated changelog block.
	MaxChangelogLen = 5000
)

// SanitizeMarkdown strips active-content fragments the model could echo
// back from a malicious PR body.
func SanitizeMarkdown(text string) string {
	text = regex.HTMLScript.ReplaceAllString(text, "")
	text = regex.HTMLIframe.ReplaceAllString(text, "")
	text = regex.JavascriptURI.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Truncate cuts text at max bytes on a rune boundary.
func Truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}

	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return strings.TrimSpace(text[:cut]) + "…"
}
