package changelog

import (
	"strings"

	"github.com/RibirX/ribir-bot/internal/regex"
	"golang.org/x/mod/semver"
)

// NormalizeVersion strips brackets, escape backslashes and the leading "v"
// from a version string as it appears in a changelog heading or a tag.
func NormalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	v = strings.ReplaceAll(v, "\\", "")
	v = strings.Trim(v, "[]")
	v = strings.TrimPrefix(v, "v")
	return v
}

func IsValidVersion(v string) bool {
	return semver.IsValid("v" + NormalizeVersion(v))
}

func IsPrerelease(v string) bool {
	return semver.Prerelease("v"+NormalizeVersion(v)) != ""
}

// IsPrereleaseOf reports whether v is a prerelease (alpha, beta, rc) of the
// stable version: same major.minor.patch with a non-empty prerelease suffix.
func IsPrereleaseOf(v, stable string) bool {
	v = NormalizeVersion(v)
	stable = NormalizeVersion(stable)

	mv := regex.SemVer.FindStringSubmatch(v)
	ms := regex.SemVer.FindStringSubmatch(stable)
	if mv == nil || ms == nil {
		return false
	}

	sameCore := mv[1] == ms[1] && mv[2] == ms[2] && mv[3] == ms[3]
	return sameCore && mv[4] != "" && v != stable
}

// CompareVersions orders two versions per semver. Invalid versions sort last.
func CompareVersions(a, b string) int {
	va, vb := "v"+NormalizeVersion(a), "v"+NormalizeVersion(b)
	switch {
	case semver.IsValid(va) && semver.IsValid(vb):
		return semver.Compare(va, vb)
	case semver.IsValid(va):
		return 1
	case semver.IsValid(vb):
		return -1
	default:
		return strings.Compare(a, b)
	}
}

// StripTagPrefix extracts the version from a release tag, trying the
// configured prefixes in order.
func StripTagPrefix(tag string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		rest, ok := strings.CutPrefix(tag, p)
		if !ok {
			continue
		}
		if IsValidVersion(rest) {
			return NormalizeVersion(rest), true
		}
	}
	return "", false
}

// StableFromBranch derives the stable version implied by a release branch:
// release-0.5.x means 0.5.0.
func StableFromBranch(branch string) (string, bool) {
	m := regex.ReleaseBranch.FindStringSubmatch(branch)
	if m == nil {
		return "", false
	}
	return m[1] + "." + m[2] + ".0", true
}
