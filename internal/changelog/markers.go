package changelog

import (
	"strings"

	"github.com/RibirX/ribir-bot/internal/errors"
	"github.com/RibirX/ribir-bot/internal/models"
	"github.com/RibirX/ribir-bot/internal/regex"
)

// Marker and placeholder strings shared with the PR template. These must
// match the template byte for byte.
const (
	ChangelogStartMarker  = "<!-- RIBIR_CHANGELOG_START -->"
	ChangelogEndMarker    = "<!-- RIBIR_CHANGELOG_END -->"
	SummaryStartMarker    = "<!-- RIBIR_SUMMARY_START -->"
	SummaryEndMarker      = "<!-- RIBIR_SUMMARY_END -->"
	HighlightsStartMarker = "<!-- RIBIR_HIGHLIGHTS_START -->"
	HighlightsEndMarker   = "<!-- RIBIR_HIGHLIGHTS_END -->"
	NextHeaderMarker      = "<!-- next-header -->"

	SummaryPlaceholder   = "> 🤖 *Leave this placeholder and the bot will write a summary, or replace it with your own description.*"
	ChangelogPlaceholder = "> 🤖 *Leave this placeholder and the bot will generate changelog entries, or write your own between the markers.*"

	SkipChangelogChecked = "- [x] 🛠️ No changelog needed (tests, CI, infra, or unreleased fix)"
	skipChangelogLabel   = "🛠️ No changelog needed"
)

// ExtractBlock returns the text between two markers. The second result is
// false when either marker is missing or they are out of order.
func ExtractBlock(body, start, end string) (string, bool) {
	i := strings.Index(body, start)
	if i < 0 {
		return "", false
	}
	rest := body[i+len(start):]
	j := strings.Index(rest, end)
	if j < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:j]), true
}

// ReplaceBlock swaps the text between two markers, keeping the markers.
func ReplaceBlock(body, start, end, content string) (string, bool) {
	i := strings.Index(body, start)
	if i < 0 {
		return body, false
	}
	rest := body[i+len(start):]
	j := strings.Index(rest, end)
	if j < 0 {
		return body, false
	}

	var b strings.Builder
	b.WriteString(body[:i+len(start)])
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(content))
	b.WriteString("\n")
	b.WriteString(rest[j:])
	return b.String(), true
}

// ExtractPREntries parses the changelog block of a PR body into entry
// lines. The second result is false when the markers are absent.
func ExtractPREntries(body string) ([]string, bool) {
	block, ok := ExtractBlock(body, ChangelogStartMarker, ChangelogEndMarker)
	if !ok {
		return nil, false
	}

	var entries []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "<!--") || strings.HasPrefix(line, ">") {
			continue
		}
		if regex.EntryLine.MatchString(line) {
			entries = append(entries, line)
		}
	}
	return entries, true
}

// SkipRequested reports whether the PR author checked the "no changelog
// needed" box.
func SkipRequested(body string) bool {
	for _, line := range strings.Split(body, "\n") {
		m := regex.MarkdownCheckbox.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		checked := m[1] == "x" || m[1] == "X"
		if checked && strings.Contains(m[2], skipChangelogLabel) {
			return true
		}
	}
	return false
}

// ReplaceSummarySection writes the generated summary into the PR body. A
// previously written summary (between the summary markers) is replaced in
// place; otherwise the placeholder is swapped for a marker-wrapped summary
// so later regenerations can find it.
func ReplaceSummarySection(body, summary string) (string, error) {
	summary = strings.TrimSpace(summary)

	if updated, ok := ReplaceBlock(body, SummaryStartMarker, SummaryEndMarker, summary); ok {
		return updated, nil
	}

	if !strings.Contains(body, SummaryPlaceholder) {
		return "", errors.ErrMarkersMissing.WithContext("section", "summary")
	}

	wrapped := SummaryStartMarker + "\n" + summary + "\n" + SummaryEndMarker
	return strings.Replace(body, SummaryPlaceholder, wrapped, 1), nil
}

// ReplaceChangelogSection writes the generated changelog into the PR body.
// The marker pair wins; without it the placeholder line is replaced, eating
// a following code fence when the placeholder sits right above one.
func ReplaceChangelogSection(body, content string) (string, error) {
	if updated, ok := ReplaceBlock(body, ChangelogStartMarker, ChangelogEndMarker, content); ok {
		return updated, nil
	}

	i := strings.Index(body, ChangelogPlaceholder)
	if i < 0 {
		return "", errors.ErrMarkersMissing
	}

	end := i + len(ChangelogPlaceholder)
	if fenceEnd, ok := findCodeBlockEnd(body[end:]); ok {
		end += fenceEnd
	}

	wrapped := ChangelogStartMarker + "\n" + strings.TrimSpace(content) + "\n" + ChangelogEndMarker
	return body[:i] + wrapped + body[end:], nil
}

// findCodeBlockEnd locates an example code fence following the placeholder,
// blockquoted or not, and returns the offset past its closing fence.
func findCodeBlockEnd(rest string) (int, bool) {
	open := strings.Index(rest, "```")
	if open < 0 {
		return 0, false
	}
	nl := strings.Index(rest[open:], "\n")
	if nl < 0 {
		return 0, false
	}
	closing := strings.Index(rest[open+nl+1:], "```")
	if closing < 0 {
		return 0, false
	}
	return open + nl + 1 + closing + len("```"), true
}

// FormatHighlights renders highlight items for a release PR body.
func FormatHighlights(highlights []models.Highlight) string {
	var b strings.Builder
	b.WriteString("**Highlights:**\n")
	for _, h := range highlights {
		b.WriteString("- ")
		if h.Emoji != "" {
			b.WriteString(h.Emoji)
			b.WriteString(" ")
		}
		b.WriteString(strings.TrimSpace(h.Description))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// ExtractHighlights pulls the highlights text from a release PR body.
func ExtractHighlights(body string) (string, error) {
	block, ok := ExtractBlock(body, HighlightsStartMarker, HighlightsEndMarker)
	if !ok {
		return "", errors.ErrHighlightsMissing
	}
	return block, nil
}

// UpdateHighlights writes the highlights block into a release PR body.
func UpdateHighlights(body, highlights string) (string, error) {
	updated, ok := ReplaceBlock(body, HighlightsStartMarker, HighlightsEndMarker, highlights)
	if !ok {
		return "", errors.ErrHighlightsMissing
	}
	return updated, nil
}
