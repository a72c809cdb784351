package services

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/RibirX/ribir-bot/internal/changelog"
	"github.com/RibirX/ribir-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const releaseChangelog = `# Changelog

<!-- next-header -->

## [0.5.0-rc.1] - 2026-08-10

### 🎨 Features

- feat(core): pipe memoization (#120 @alice)

## [0.5.0-alpha.1] - 2026-07-01

### 🐛 Fixed

- fix(gpu): texture leak (#110 @bob)

## [0.4.0] - 2026-05-01

### 🔧 Internal

- chore: bump msrv (#90 @carol)
`

func releasePRBody() string {
	return "Release 0.5.0\n\n" +
		changelog.HighlightsStartMarker + "\n" +
		changelog.HighlightsEndMarker + "\n"
}

func threeHighlights() []models.Highlight {
	return []models.Highlight{
		{Emoji: "🎨", Description: "Pipe memoization"},
		{Emoji: "🐛", Description: "GPU texture leak fixed"},
		{Emoji: "⚡", Description: "Faster text shaping"},
	}
}

func TestGenerateHighlights(t *testing.T) {
	t.Run("writes highlights into the release PR", func(t *testing.T) {
		// Arrange
		projectCfg := testProjectConfig(t, releaseChangelog)
		mockVCS := new(MockVCSClient)
		mockGen := new(MockHighlightsGenerator)
		service := NewReleaseService(mockVCS, new(MockGitService), mockGen, projectCfg, WithReleaseClock(fixedClock()))

		mockVCS.On("GetPR", mock.Anything, 77).Return(models.PullRequest{
			Number:     77,
			Body:       releasePRBody(),
			HeadBranch: "release-0.5.x",
			BaseBranch: "master",
		}, nil)
		mockGen.On("GenerateHighlights", mock.Anything, mock.Anything).Return(threeHighlights(), nil)
		mockVCS.On("UpdatePRBody", mock.Anything, 77, mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "**Highlights:**")
		})).Return(nil)

		// Act
		highlights, err := service.GenerateHighlights(context.Background(), HighlightsOptions{PRNumber: 77})

		// Assert
		require.NoError(t, err)
		assert.Len(t, highlights, 3)
		mockVCS.AssertExpectations(t)
	})

	t.Run("derives the version from the release branch", func(t *testing.T) {
		// Arrange
		projectCfg := testProjectConfig(t, releaseChangelog)
		mockVCS := new(MockVCSClient)
		mockGen := new(MockHighlightsGenerator)
		service := NewReleaseService(mockVCS, new(MockGitService), mockGen, projectCfg, WithReleaseClock(fixedClock()))

		mockVCS.On("GetPR", mock.Anything, 77).Return(models.PullRequest{
			Number:     77,
			Body:       releasePRBody(),
			HeadBranch: "feature-branch",
			BaseBranch: "release-0.5.x",
		}, nil)
		mockGen.On("GenerateHighlights", mock.Anything, mock.MatchedBy(func(prompt string) bool {
			return strings.Contains(prompt, "0.5.0")
		})).Return(threeHighlights(), nil)

		// Act
		_, err := service.GenerateHighlights(context.Background(), HighlightsOptions{PRNumber: 77, DryRun: true})

		// Assert
		require.NoError(t, err)
		mockVCS.AssertNotCalled(t, "UpdatePRBody", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("keeps existing highlights unless regenerate is set", func(t *testing.T) {
		// Arrange
		projectCfg := testProjectConfig(t, releaseChangelog)
		mockVCS := new(MockVCSClient)
		mockGen := new(MockHighlightsGenerator)
		service := NewReleaseService(mockVCS, new(MockGitService), mockGen, projectCfg, WithReleaseClock(fixedClock()))

		body := "Release PR\n\n" + changelog.HighlightsStartMarker + "\n**Highlights:**\n- 🎨 Pipe memoization\n- 🐛 Leak fixed\n" + changelog.HighlightsEndMarker
		mockVCS.On("GetPR", mock.Anything, 77).Return(models.PullRequest{
			Number:     77,
			Body:       body,
			HeadBranch: "release-0.5.x",
		}, nil)

		// Act
		highlights, err := service.GenerateHighlights(context.Background(), HighlightsOptions{PRNumber: 77})

		// Assert
		require.NoError(t, err)
		require.Len(t, highlights, 2)
		assert.Equal(t, "🎨", highlights[0].Emoji)
		assert.Equal(t, "Pipe memoization", highlights[0].Description)
		mockGen.AssertNotCalled(t, "GenerateHighlights", mock.Anything, mock.Anything)
		mockVCS.AssertNotCalled(t, "UpdatePRBody", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a PR off the release branches", func(t *testing.T) {
		projectCfg := testProjectConfig(t, releaseChangelog)
		mockVCS := new(MockVCSClient)
		service := NewReleaseService(mockVCS, new(MockGitService), new(MockHighlightsGenerator), projectCfg)

		mockVCS.On("GetPR", mock.Anything, 77).Return(models.PullRequest{
			Number:     77,
			HeadBranch: "fix-typo",
			BaseBranch: "master",
		}, nil)

		_, err := service.GenerateHighlights(context.Background(), HighlightsOptions{PRNumber: 77})

		assert.Error(t, err)
	})

	t.Run("rejects too few highlights", func(t *testing.T) {
		projectCfg := testProjectConfig(t, releaseChangelog)
		mockVCS := new(MockVCSClient)
		mockGen := new(MockHighlightsGenerator)
		service := NewReleaseService(mockVCS, new(MockGitService), mockGen, projectCfg, WithReleaseClock(fixedClock()))

		mockVCS.On("GetPR", mock.Anything, 77).Return(models.PullRequest{
			Number:     77,
			Body:       releasePRBody(),
			HeadBranch: "release-0.5.x",
		}, nil)
		mockGen.On("GenerateHighlights", mock.Anything, mock.Anything).Return([]models.Highlight{
			{Emoji: "🎨", Description: "Only one"},
		}, nil)

		_, err := service.GenerateHighlights(context.Background(), HighlightsOptions{PRNumber: 77})

		assert.Error(t, err)
	})
}

func TestStable(t *testing.T) {
	t.Run("dry run merges and extracts the section", func(t *testing.T) {
		// Arrange
		projectCfg := testProjectConfig(t, releaseChangelog)
		mockVCS := new(MockVCSClient)
		mockGit := new(MockGitService)
		service := NewReleaseService(mockVCS, mockGit, new(MockHighlightsGenerator), projectCfg, WithReleaseClock(fixedClock()))

		// Act
		result, err := service.Stable(context.Background(), StableOptions{Version: "0.5.0", DryRun: true})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "v0.5.0", result.Tag)
		assert.Contains(t, result.Content, "## [0.5.0] - 2026-08-25")
		assert.Contains(t, result.Section, "- feat(core): pipe memoization (#120 @alice)")
		assert.Contains(t, result.Section, "- fix(gpu): texture leak (#110 @bob)")
		assert.NotContains(t, result.Section, "0.4.0")
		mockGit.AssertNotCalled(t, "CreateCommit", mock.Anything, mock.Anything)
		mockVCS.AssertNotCalled(t, "CreateRelease", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("publishes the release with highlights from the PR", func(t *testing.T) {
		// Arrange
		projectCfg := testProjectConfig(t, releaseChangelog)
		mockVCS := new(MockVCSClient)
		mockGit := new(MockGitService)
		service := NewReleaseService(mockVCS, mockGit, new(MockHighlightsGenerator), projectCfg, WithReleaseClock(fixedClock()))

		prBody := "Release PR\n\n" + changelog.HighlightsStartMarker + "\n**Highlights:**\n- 🎨 Pipe memoization\n- 🐛 Leak fixed\n- ⚡ Faster shaping\n" + changelog.HighlightsEndMarker
		mockVCS.On("GetPR", mock.Anything, 77).Return(models.PullRequest{Number: 77, Body: prBody}, nil)

		mockGit.On("AddFileToStaging", mock.Anything, projectCfg.ChangelogPath).Return(nil)
		mockGit.On("CreateCommit", mock.Anything, "chore(release): merge changelog for v0.5.0").Return(nil)
		mockGit.On("Push", mock.Anything).Return(nil)
		mockVCS.On("CreateRelease", mock.Anything, "v0.5.0", "v0.5.0", mock.Anything, false).Return(nil)

		// Act
		result, err := service.Stable(context.Background(), StableOptions{Version: "0.5.0", PRNumber: 77})

		// Assert
		require.NoError(t, err)
		assert.Contains(t, result.Section, "**Highlights:**")
		assert.Contains(t, result.Section, "- 🎨 Pipe memoization")

		data, err := os.ReadFile(projectCfg.ChangelogPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "## [0.5.0] - 2026-08-25")
		mockGit.AssertExpectations(t)
		mockVCS.AssertExpectations(t)
	})

	t.Run("continues without highlights when the PR has none", func(t *testing.T) {
		// Arrange
		projectCfg := testProjectConfig(t, releaseChangelog)
		mockVCS := new(MockVCSClient)
		mockGit := new(MockGitService)
		service := NewReleaseService(mockVCS, mockGit, new(MockHighlightsGenerator), projectCfg, WithReleaseClock(fixedClock()))

		mockVCS.On("GetPR", mock.Anything, 77).Return(models.PullRequest{Number: 77, Body: "no markers"}, nil)

		// Act
		result, err := service.Stable(context.Background(), StableOptions{Version: "0.5.0", PRNumber: 77, DryRun: true})

		// Assert
		require.NoError(t, err)
		assert.NotContains(t, result.Section, "**Highlights:**")
	})
}

func TestArchive(t *testing.T) {
	t.Run("dry run only reports the path", func(t *testing.T) {
		projectCfg := testProjectConfig(t, releaseChangelog)
		mockGit := new(MockGitService)
		service := NewReleaseService(new(MockVCSClient), mockGit, new(MockHighlightsGenerator), projectCfg)

		path, err := service.Archive(context.Background(), ArchiveOptions{Series: "0.4"})

		require.NoError(t, err)
		assert.Contains(t, path, "CHANGELOG-0.4.md")
		mockGit.AssertNotCalled(t, "CreateCommit", mock.Anything, mock.Anything)
	})

	t.Run("writes the archive and resets the changelog", func(t *testing.T) {
		// Arrange
		projectCfg := testProjectConfig(t, releaseChangelog)
		mockGit := new(MockGitService)
		service := NewReleaseService(new(MockVCSClient), mockGit, new(MockHighlightsGenerator), projectCfg)

		mockGit.On("AddFileToStaging", mock.Anything, mock.Anything).Return(nil)
		mockGit.On("CreateCommit", mock.Anything, "chore(release): archive changelog for 0.4").Return(nil)
		mockGit.On("Push", mock.Anything).Return(nil)

		// Act
		path, err := service.Archive(context.Background(), ArchiveOptions{Series: "0.4", Write: true})

		// Assert
		require.NoError(t, err)

		archived, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, releaseChangelog, string(archived))

		fresh, err := os.ReadFile(projectCfg.ChangelogPath)
		require.NoError(t, err)
		assert.Contains(t, string(fresh), changelog.NextHeaderMarker)
		assert.NotContains(t, string(fresh), "0.5.0-rc.1")
		mockGit.AssertExpectations(t)
	})
}

func TestVerifyBranch(t *testing.T) {
	tests := []struct {
		name    string
		branch  string
		version string
		wantErr bool
	}{
		{"prerelease of the series", "release-0.5.x", "0.5.0-rc.1", false},
		{"stable of the series", "release-0.5.x", "0.5.0", false},
		{"wrong series", "release-0.5.x", "0.6.0-rc.1", true},
		{"not a release branch", "master", "0.5.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			projectCfg := testProjectConfig(t, releaseChangelog)
			mockGit := new(MockGitService)
			service := NewReleaseService(new(MockVCSClient), mockGit, new(MockHighlightsGenerator), projectCfg)
			mockGit.On("GetCurrentBranch", mock.Anything).Return(tt.branch, nil)

			// Act
			err := service.VerifyBranch(context.Background(), tt.version)

			// Assert
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
