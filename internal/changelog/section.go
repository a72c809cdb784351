package changelog

import "strings"

// SectionKind identifies one of the canonical changelog sections.
type SectionKind int

const (
	Features SectionKind = iota
	Fixed
	Changed
	Performance
	Documentation
	Breaking
	Internal
)

// AllSections lists the canonical sections in rendering order.
var AllSections = []SectionKind{
	Features,
	Fixed,
	Changed,
	Performance,
	Documentation,
	Breaking,
	Internal,
}

func (k SectionKind) Title() string {
	switch k {
	case Features:
		return "Features"
	case Fixed:
		return "Fixed"
	case Changed:
		return "Changed"
	case Performance:
		return "Performance"
	case Documentation:
		return "Documentation"
	case Breaking:
		return "Breaking"
	default:
		return "Internal"
	}
}

func (k SectionKind) Emoji() string {
	switch k {
	case Features:
		return "🎨"
	case Fixed:
		return "🐛"
	case Changed:
		return "🔄"
	case Performance:
		return "⚡"
	case Documentation:
		return "📚"
	case Breaking:
		return "💥"
	default:
		return "🔧"
	}
}

// Header returns the H3 heading text for the section, without the "### ".
func (k SectionKind) Header() string {
	return k.Emoji() + " " + k.Title()
}

// SectionFromType maps a changelog entry type token to its section.
// Unknown tokens land in Internal.
func SectionFromType(token string) SectionKind {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "feat", "feature":
		return Features
	case "fix", "fixed":
		return Fixed
	case "change", "changed":
		return Changed
	case "perf", "performance":
		return Performance
	case "docs", "doc", "documentation":
		return Documentation
	case "breaking", "break":
		return Breaking
	default:
		return Internal
	}
}

// SectionFromHeader recognizes a canonical section by its title, with or
// without the emoji prefix.
func SectionFromHeader(header string) (SectionKind, bool) {
	title := strings.TrimSpace(header)
	for _, k := range AllSections {
		if title == k.Header() || title == k.Title() {
			return k, true
		}
		if strings.HasSuffix(title, " "+k.Title()) {
			return k, true
		}
	}
	return Internal, false
}
