package changelog

import (
	"strings"

	"github.com/RibirX/ribir-bot/internal/errors"
	"github.com/RibirX/ribir-bot/internal/regex"
)

type (
	// Section is an H3 group inside a release.
	Section struct {
		Title string
		Lines []string
	}

	// Release is an H2 version block.
	Release struct {
		Version  string
		Date     string
		Intro    []string
		Sections []*Section
	}

	// Document is a parsed changelog: a preamble followed by releases,
	// newest first.
	Document struct {
		Preamble []string
		Releases []*Release
	}
)

// Parse reads a changelog into its structure. Parsing is lenient: anything
// that is not a recognizable release or section heading stays attached to
// the surrounding block as plain text.
func Parse(content string) *Document {
	doc := &Document{}

	var release *Release
	var section *Section

	for _, line := range strings.Split(content, "\n") {
		if m := regex.ReleaseHeading.FindStringSubmatch(line); m != nil {
			release = &Release{
				Version: NormalizeVersion(m[1]),
				Date:    m[2],
			}
			section = nil
			doc.Releases = append(doc.Releases, release)
			continue
		}

		if release != nil {
			if m := regex.SectionHeading.FindStringSubmatch(line); m != nil {
				section = &Section{Title: m[1]}
				release.Sections = append(release.Sections, section)
				continue
			}
			if section != nil {
				section.Lines = append(section.Lines, line)
			} else {
				release.Intro = append(release.Intro, line)
			}
			continue
		}

		doc.Preamble = append(doc.Preamble, line)
	}

	doc.Preamble = trimBlank(doc.Preamble)
	for _, r := range doc.Releases {
		r.Intro = trimBlank(r.Intro)
		for _, s := range r.Sections {
			s.Lines = trimBlank(s.Lines)
		}
	}

	return doc
}

// Render writes the document back as markdown with normalized blank lines.
func (d *Document) Render() string {
	var b strings.Builder

	if len(d.Preamble) > 0 {
		b.WriteString(strings.Join(d.Preamble, "\n"))
		b.WriteString("\n")
	}

	for _, r := range d.Releases {
		b.WriteString("\n## [")
		b.WriteString(r.Version)
		b.WriteString("]")
		if r.Date != "" {
			b.WriteString(" - ")
			b.WriteString(r.Date)
		}
		b.WriteString("\n")

		if len(r.Intro) > 0 {
			b.WriteString("\n")
			b.WriteString(strings.Join(r.Intro, "\n"))
			b.WriteString("\n")
		}

		for _, s := range r.Sections {
			b.WriteString("\n### ")
			b.WriteString(s.Title)
			b.WriteString("\n")
			if len(s.Lines) > 0 {
				b.WriteString("\n")
				b.WriteString(strings.Join(s.Lines, "\n"))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// LatestVersion returns the version of the newest release with a valid
// semver heading.
func (d *Document) LatestVersion() (string, error) {
	for _, r := range d.Releases {
		if IsValidVersion(r.Version) {
			return r.Version, nil
		}
	}
	return "", errors.ErrNoReleases
}

// FindRelease looks a release up by version.
func (d *Document) FindRelease(version string) *Release {
	version = NormalizeVersion(version)
	for _, r := range d.Releases {
		if r.Version == version {
			return r
		}
	}
	return nil
}

// EnsureRelease returns the release for version, creating it at the top of
// the document when it does not exist yet.
func (d *Document) EnsureRelease(version, date string) *Release {
	if r := d.FindRelease(version); r != nil {
		if r.Date == "" {
			r.Date = date
		}
		return r
	}

	r := &Release{Version: NormalizeVersion(version), Date: date}
	d.Releases = append([]*Release{r}, d.Releases...)
	return r
}

// AddEntries appends grouped entry lines under version, creating the
// release and its sections as needed. Sections keep canonical order.
func (d *Document) AddEntries(version, date string, grouped map[SectionKind][]string) {
	r := d.EnsureRelease(version, date)

	for _, kind := range AllSections {
		lines := grouped[kind]
		if len(lines) == 0 {
			continue
		}
		s := r.findSection(kind.Header())
		if s == nil {
			s = &Section{Title: kind.Header()}
			r.Sections = append(r.Sections, s)
		}
		s.Lines = append(s.Lines, lines...)
	}
}

// FindMergeCandidates returns the prereleases of target, in document order.
func (d *Document) FindMergeCandidates(target string) []*Release {
	var out []*Release
	for _, r := range d.Releases {
		if IsPrereleaseOf(r.Version, target) {
			out = append(out, r)
		}
	}
	return out
}

// MergePrereleases folds every alpha/beta/rc of target into a single stable
// release. Identically titled sections are regrouped into one, intro text
// stays ahead of the sections, and the prerelease headings disappear.
func (d *Document) MergePrereleases(target, date string) error {
	target = NormalizeVersion(target)
	if !IsValidVersion(target) {
		return errors.ErrInvalidVersion.WithContext("version", target)
	}

	candidates := d.FindMergeCandidates(target)
	if len(candidates) == 0 {
		return errors.ErrNoPrereleases.WithContext("version", target)
	}

	var intro []string
	var titleOrder []string
	buckets := make(map[string][]string)

	absorb := func(r *Release) {
		intro = append(intro, r.Intro...)
		for _, s := range r.Sections {
			if _, seen := buckets[s.Title]; !seen {
				titleOrder = append(titleOrder, s.Title)
			}
			buckets[s.Title] = append(buckets[s.Title], s.Lines...)
		}
	}

	existing := d.FindRelease(target)
	if existing != nil {
		absorb(existing)
		if date == "" {
			date = existing.Date
		}
	}
	for _, r := range candidates {
		absorb(r)
		if date == "" {
			date = r.Date
		}
	}

	merged := &Release{Version: target, Date: date, Intro: trimBlank(intro)}
	for _, title := range orderTitles(titleOrder) {
		merged.Sections = append(merged.Sections, &Section{
			Title: title,
			Lines: trimBlank(buckets[title]),
		})
	}

	// The merged release takes the slot of the newest block it absorbed.
	drop := make(map[*Release]bool, len(candidates)+1)
	for _, r := range candidates {
		drop[r] = true
	}
	if existing != nil {
		drop[existing] = true
	}

	var releases []*Release
	placed := false
	for _, r := range d.Releases {
		if drop[r] {
			if !placed {
				releases = append(releases, merged)
				placed = true
			}
			continue
		}
		releases = append(releases, r)
	}
	d.Releases = releases

	return nil
}

// Stamp replaces "#pr" placeholders in the newest released version with
// prNumber and returns how many lines changed. An [Unreleased] block on top
// is skipped.
func (d *Document) Stamp(prNumber int) int {
	var r *Release
	for _, rel := range d.Releases {
		if IsValidVersion(rel.Version) {
			r = rel
			break
		}
	}
	if r == nil {
		return 0
	}

	count := 0
	stamp := func(lines []string) {
		for i, line := range lines {
			if regex.PRPlaceholder.MatchString(line) {
				lines[i] = StampPRNumber(line, prNumber)
				count++
			}
		}
	}

	stamp(r.Intro)
	for _, s := range r.Sections {
		stamp(s.Lines)
	}
	return count
}

// Verify parses, renders and re-parses the content and fails on the first
// structural divergence.
func Verify(content string) error {
	before := Parse(content)
	after := Parse(before.Render())

	if len(before.Releases) != len(after.Releases) {
		return errors.ErrVerifyMismatch.
			WithContext("releases_before", len(before.Releases)).
			WithContext("releases_after", len(after.Releases))
	}

	for i, r := range before.Releases {
		other := after.Releases[i]
		if r.Version != other.Version || r.Date != other.Date {
			return errors.ErrVerifyMismatch.WithContext("release", r.Version)
		}
		if len(r.Sections) != len(other.Sections) {
			return errors.ErrVerifyMismatch.
				WithContext("release", r.Version).
				WithContext("sections_before", len(r.Sections)).
				WithContext("sections_after", len(other.Sections))
		}
		for j, s := range r.Sections {
			if s.Title != other.Sections[j].Title {
				return errors.ErrVerifyMismatch.
					WithContext("release", r.Version).
					WithContext("section", s.Title)
			}
			if strings.Join(dropBlank(s.Lines), "\n") != strings.Join(dropBlank(other.Sections[j].Lines), "\n") {
				return errors.ErrVerifyMismatch.
					WithContext("release", r.Version).
					WithContext("section", s.Title)
			}
		}
	}

	return nil
}

// ExtractVersionSection returns the raw markdown block of one release, as
// used for GitHub release bodies. Escaped "\[" headings are tolerated.
func ExtractVersionSection(content, version string) (string, error) {
	version = NormalizeVersion(version)

	lines := strings.Split(content, "\n")
	start := -1
	for i, line := range lines {
		m := regex.ReleaseHeading.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if start >= 0 {
			return strings.TrimSpace(strings.Join(lines[start:i], "\n")), nil
		}
		if NormalizeVersion(m[1]) == version {
			start = i + 1
		}
	}

	if start < 0 {
		return "", errors.ErrReleaseNotFound.WithContext("version", version)
	}
	return strings.TrimSpace(strings.Join(lines[start:], "\n")), nil
}

// InsertHighlights places the highlights text directly under the release
// heading for version.
func InsertHighlights(content, version, highlights string) (string, error) {
	version = NormalizeVersion(version)
	highlights = strings.TrimSpace(highlights)
	if highlights == "" {
		return content, nil
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		m := regex.ReleaseHeading.FindStringSubmatch(line)
		if m == nil || NormalizeVersion(m[1]) != version {
			continue
		}

		out := make([]string, 0, len(lines)+4)
		out = append(out, lines[:i+1]...)
		out = append(out, "")
		out = append(out, strings.Split(highlights, "\n")...)
		out = append(out, lines[i+1:]...)
		return strings.Join(out, "\n"), nil
	}

	return "", errors.ErrReleaseNotFound.WithContext("version", version)
}

func (r *Release) findSection(title string) *Section {
	for _, s := range r.Sections {
		if s.Title == title {
			return s
		}
	}
	return nil
}

// orderTitles sorts known section titles canonically and keeps unknown ones
// in first-seen order after them.
func orderTitles(titles []string) []string {
	var known []string
	var unknown []string

	for _, kind := range AllSections {
		for _, t := range titles {
			if k, ok := SectionFromHeader(t); ok && k == kind {
				if !containsString(known, t) {
					known = append(known, t)
				}
			}
		}
	}
	for _, t := range titles {
		if _, ok := SectionFromHeader(t); !ok {
			unknown = append(unknown, t)
		}
	}

	return append(known, unknown...)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func trimBlank(lines []string) []string {
	start := 0
	end := len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

func dropBlank(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
