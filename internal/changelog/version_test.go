package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVersion(t *testing.T) {
	assert.Equal(t, "0.5.0", NormalizeVersion("[v0.5.0]"))
	assert.Equal(t, "0.5.0-rc.1", NormalizeVersion("\\[0.5.0-rc.1\\]"))
	assert.Equal(t, "0.5.0", NormalizeVersion("  0.5.0 "))
}

func TestIsValidVersion(t *testing.T) {
	assert.True(t, IsValidVersion("0.5.0"))
	assert.True(t, IsValidVersion("v0.5.0-alpha.1"))
	assert.False(t, IsValidVersion("Unreleased"))
	assert.False(t, IsValidVersion("0.5"))
}

func TestIsPrereleaseOf(t *testing.T) {
	tests := []struct {
		v      string
		stable string
		want   bool
	}{
		{"0.5.0-alpha.1", "0.5.0", true},
		{"0.5.0-rc.2", "0.5.0", true},
		{"0.5.0", "0.5.0", false},
		{"0.5.1-alpha.1", "0.5.0", false},
		{"0.4.0-alpha.1", "0.5.0", false},
		{"garbage", "0.5.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.v+" of "+tt.stable, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPrereleaseOf(tt.v, tt.stable))
		})
	}
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, 1, CompareVersions("0.5.0", "0.5.0-rc.1"))
	assert.Equal(t, -1, CompareVersions("0.4.9", "0.5.0"))
	assert.Equal(t, 0, CompareVersions("v0.5.0", "0.5.0"))
	assert.Equal(t, 1, CompareVersions("0.5.0", "not-a-version"))
}

func TestStripTagPrefix(t *testing.T) {
	prefixes := []string{"v", "ribir-v", ""}

	t.Run("plain v prefix", func(t *testing.T) {
		got, ok := StripTagPrefix("v0.4.0", prefixes)

		require.True(t, ok)
		assert.Equal(t, "0.4.0", got)
	})

	t.Run("project prefix", func(t *testing.T) {
		got, ok := StripTagPrefix("ribir-v0.4.0-alpha.3", prefixes)

		require.True(t, ok)
		assert.Equal(t, "0.4.0-alpha.3", got)
	})

	t.Run("bare version", func(t *testing.T) {
		got, ok := StripTagPrefix("0.4.0", prefixes)

		require.True(t, ok)
		assert.Equal(t, "0.4.0", got)
	})

	t.Run("rejects unrelated tags", func(t *testing.T) {
		_, ok := StripTagPrefix("nightly-2026-08-01", prefixes)

		assert.False(t, ok)
	})
}

func TestStableFromBranch(t *testing.T) {
	t.Run("release branch", func(t *testing.T) {
		got, ok := StableFromBranch("release-0.5.x")

		require.True(t, ok)
		assert.Equal(t, "0.5.0", got)
	})

	t.Run("other branches", func(t *testing.T) {
		_, ok := StableFromBranch("master")
		assert.False(t, ok)

		_, ok = StableFromBranch("feature/release-0.5.x-prep")
		assert.False(t, ok)
	})
}
