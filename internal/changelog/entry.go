package changelog

import (
	"fmt"
	"strings"

	"github.com/RibirX/ribir-bot/internal/regex"
)

// Entry is a parsed "type(scope): description" changelog line.
type Entry struct {
	Type        string
	Scope       string
	Breaking    bool
	Description string
}

// ParseEntry parses a changelog entry from a line, with or without the
// leading "- " bullet. Returns false when the line has no conventional head.
func ParseEntry(line string) (Entry, bool) {
	text := strings.TrimSpace(line)
	text = strings.TrimPrefix(text, "- ")
	text = strings.TrimPrefix(text, "* ")

	m := regex.ConventionalHead.FindStringSubmatch(text)
	if m == nil {
		return Entry{}, false
	}

	return Entry{
		Type:        strings.ToLower(m[1]),
		Scope:       m[3],
		Breaking:    m[4] == "!",
		Description: strings.TrimSpace(m[5]),
	}, true
}

// Kind returns the section the entry belongs to. A "!" head always lands
// in Breaking.
func (e Entry) Kind() SectionKind {
	if e.Breaking {
		return Breaking
	}
	return SectionFromType(e.Type)
}

// String renders the entry as a changelog bullet line.
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString("- ")
	b.WriteString(e.Type)
	if e.Scope != "" {
		b.WriteString("(")
		b.WriteString(e.Scope)
		b.WriteString(")")
	}
	if e.Breaking {
		b.WriteString("!")
	}
	b.WriteString(": ")
	b.WriteString(e.Description)
	return b.String()
}

// InjectPRMeta appends " (#N @author)" to an entry line. An existing
// trailing "(#N)" reference is dropped first so squash-merge titles do not
// end up with the number twice.
func InjectPRMeta(line string, prNumber int, author string) string {
	text := strings.TrimRight(line, " \t")
	if m := regex.PRMeta.FindStringIndex(text); m != nil {
		text = strings.TrimRight(text[:m[0]], " \t")
	}

	if author != "" {
		return fmt.Sprintf("%s (#%d @%s)", text, prNumber, author)
	}
	return fmt.Sprintf("%s (#%d)", text, prNumber)
}

// StampPRNumber replaces literal "#pr" placeholders in a line with the
// actual PR number.
func StampPRNumber(line string, prNumber int) string {
	return regex.PRPlaceholder.ReplaceAllString(line, fmt.Sprintf("#%d", prNumber))
}
