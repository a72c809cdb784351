package services

import (
	"context"
	"strings"
	"testing"

	"github.com/RibirX/ribir-bot/internal/changelog"
	"github.com/RibirX/ribir-bot/internal/config"
	"github.com/RibirX/ribir-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func templateBody() string {
	return "## What does this PR do?\n\n" +
		changelog.SummaryPlaceholder + "\n\n" +
		"## Changelog\n\n" +
		changelog.ChangelogPlaceholder + "\n\n" +
		"- [ ] 🛠️ No changelog needed (tests, CI, infra, or unreleased fix)\n"
}

func newTestPR(body string) models.PullRequest {
	return models.PullRequest{
		Number:     42,
		Title:      "feat(core): add pipe memoization",
		Body:       body,
		Author:     "alice",
		BaseBranch: "master",
		HeadBranch: "pipe-memo",
		Commits:    []models.Commit{{Message: "feat(core): add pipe memoization\n\ndetails"}},
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input string
		want  UpdateMode
		err   bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{"regenerate", ModeRegenerate, false},
		{"regenerate-all", ModeRegenerate, false},
		{"Summary", ModeSummaryOnly, false},
		{"changelog", ModeChangelogOnly, false},
		{"bogus", ModeAuto, true},
	}

	for _, tt := range tests {
		t.Run("mode "+tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)

			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdatePR(t *testing.T) {
	t.Run("auto mode fills both placeholders", func(t *testing.T) {
		// Arrange
		mockVCS := new(MockVCSClient)
		mockGen := new(MockPRGenerator)
		service := NewPRService(mockVCS, mockGen, config.DefaultProjectConfig())

		mockVCS.On("GetPR", mock.Anything, 42).Return(newTestPR(templateBody()), nil)
		mockGen.On("GeneratePRContent", mock.Anything, mock.Anything).Return(models.BotResponse{
			Summary:   "Memoizes pipes so rebuilds stop recomputing.",
			Changelog: "- feat(core): memoize pipe values across rebuilds",
		}, nil)
		mockVCS.On("UpdatePRBody", mock.Anything, 42, mock.Anything).Return(nil)
		mockVCS.On("AddLabelsToPR", mock.Anything, 42, []string{"changelog"}).Return(nil)

		// Act
		result, err := service.UpdatePR(context.Background(), PRUpdateOptions{PRNumber: 42})

		// Assert
		require.NoError(t, err)
		assert.True(t, result.SummaryUpdated)
		assert.True(t, result.ChangelogUpdated)
		assert.Contains(t, result.Body, "Memoizes pipes so rebuilds stop recomputing.")
		assert.Contains(t, result.Body, "- feat(core): memoize pipe values across rebuilds")
		assert.NotContains(t, result.Body, changelog.SummaryPlaceholder)
		mockVCS.AssertExpectations(t)
		mockGen.AssertExpectations(t)
	})

	t.Run("auto mode does nothing when placeholders are gone", func(t *testing.T) {
		// Arrange
		mockVCS := new(MockVCSClient)
		mockGen := new(MockPRGenerator)
		service := NewPRService(mockVCS, mockGen, config.DefaultProjectConfig())

		body := "Hand-written description, no placeholders."
		mockVCS.On("GetPR", mock.Anything, 42).Return(newTestPR(body), nil)

		// Act
		result, err := service.UpdatePR(context.Background(), PRUpdateOptions{PRNumber: 42})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, body, result.Body)
		mockGen.AssertNotCalled(t, "GeneratePRContent", mock.Anything, mock.Anything)
		mockVCS.AssertNotCalled(t, "UpdatePRBody", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("skip checkbox disables the changelog in auto mode", func(t *testing.T) {
		// Arrange
		mockVCS := new(MockVCSClient)
		mockGen := new(MockPRGenerator)
		service := NewPRService(mockVCS, mockGen, config.DefaultProjectConfig())

		body := changelog.SummaryPlaceholder + "\n\n" +
			changelog.ChangelogPlaceholder + "\n\n" +
			changelog.SkipChangelogChecked + "\n"
		mockVCS.On("GetPR", mock.Anything, 42).Return(newTestPR(body), nil)
		mockGen.On("GeneratePRContent", mock.Anything, mock.Anything).Return(models.BotResponse{
			Summary: "A test-only change.",
		}, nil)
		mockVCS.On("UpdatePRBody", mock.Anything, 42, mock.Anything).Return(nil)

		// Act
		result, err := service.UpdatePR(context.Background(), PRUpdateOptions{PRNumber: 42})

		// Assert
		require.NoError(t, err)
		assert.True(t, result.SummaryUpdated)
		assert.False(t, result.ChangelogUpdated)
		assert.Contains(t, result.Body, changelog.ChangelogPlaceholder)
		mockVCS.AssertNotCalled(t, "AddLabelsToPR", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("skip answer checks the box and labels no-changelog", func(t *testing.T) {
		// Arrange
		mockVCS := new(MockVCSClient)
		mockGen := new(MockPRGenerator)
		service := NewPRService(mockVCS, mockGen, config.DefaultProjectConfig())

		mockVCS.On("GetPR", mock.Anything, 42).Return(newTestPR(templateBody()), nil)
		mockGen.On("GeneratePRContent", mock.Anything, mock.Anything).Return(models.BotResponse{
			Summary:       "CI tweak only.",
			SkipChangelog: true,
		}, nil)
		mockVCS.On("UpdatePRBody", mock.Anything, 42, mock.Anything).Return(nil)
		mockVCS.On("AddLabelsToPR", mock.Anything, 42, []string{"no-changelog"}).Return(nil)

		// Act
		result, err := service.UpdatePR(context.Background(), PRUpdateOptions{PRNumber: 42})

		// Assert
		require.NoError(t, err)
		assert.Contains(t, result.Body, changelog.SkipChangelogChecked)
		assert.Equal(t, []string{"no-changelog"}, result.Labels)
	})

	t.Run("breaking entries add the breaking label", func(t *testing.T) {
		// Arrange
		mockVCS := new(MockVCSClient)
		mockGen := new(MockPRGenerator)
		service := NewPRService(mockVCS, mockGen, config.DefaultProjectConfig())

		mockVCS.On("GetPR", mock.Anything, 42).Return(newTestPR(templateBody()), nil)
		mockGen.On("GeneratePRContent", mock.Anything, mock.Anything).Return(models.BotResponse{
			Summary:   "Renames the widget.",
			Changelog: "- feat(widgets)!: rename Row to Flex",
		}, nil)
		mockVCS.On("UpdatePRBody", mock.Anything, 42, mock.Anything).Return(nil)
		mockVCS.On("AddLabelsToPR", mock.Anything, 42, []string{"changelog", "breaking"}).Return(nil)

		// Act
		result, err := service.UpdatePR(context.Background(), PRUpdateOptions{PRNumber: 42})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"changelog", "breaking"}, result.Labels)
	})

	t.Run("dry run never touches the PR", func(t *testing.T) {
		// Arrange
		mockVCS := new(MockVCSClient)
		mockGen := new(MockPRGenerator)
		service := NewPRService(mockVCS, mockGen, config.DefaultProjectConfig())

		mockVCS.On("GetPR", mock.Anything, 42).Return(newTestPR(templateBody()), nil)
		mockGen.On("GeneratePRContent", mock.Anything, mock.Anything).Return(models.BotResponse{
			Summary:   "Summary.",
			Changelog: "- fix(core): a bug",
		}, nil)

		// Act
		result, err := service.UpdatePR(context.Background(), PRUpdateOptions{PRNumber: 42, DryRun: true})

		// Assert
		require.NoError(t, err)
		assert.NotEmpty(t, result.Body)
		mockVCS.AssertNotCalled(t, "UpdatePRBody", mock.Anything, mock.Anything, mock.Anything)
		mockVCS.AssertNotCalled(t, "AddLabelsToPR", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("regenerate rewrites a previously filled summary", func(t *testing.T) {
		// Arrange
		mockVCS := new(MockVCSClient)
		mockGen := new(MockPRGenerator)
		service := NewPRService(mockVCS, mockGen, config.DefaultProjectConfig())

		body := changelog.SummaryStartMarker + "\nStale summary.\n" + changelog.SummaryEndMarker + "\n\n" +
			changelog.ChangelogStartMarker + "\n- fix(core): old entry\n" + changelog.ChangelogEndMarker + "\n"
		mockVCS.On("GetPR", mock.Anything, 42).Return(newTestPR(body), nil)
		mockGen.On("GeneratePRContent", mock.Anything, mock.Anything).Return(models.BotResponse{
			Summary:   "Fresh summary.",
			Changelog: "- fix(core): new entry",
		}, nil)
		mockVCS.On("UpdatePRBody", mock.Anything, 42, mock.Anything).Return(nil)
		mockVCS.On("AddLabelsToPR", mock.Anything, 42, mock.Anything).Return(nil)

		// Act
		result, err := service.UpdatePR(context.Background(), PRUpdateOptions{PRNumber: 42, Mode: ModeRegenerate})

		// Assert
		require.NoError(t, err)
		assert.Contains(t, result.Body, "Fresh summary.")
		assert.NotContains(t, result.Body, "Stale summary.")
		assert.Contains(t, result.Body, "- fix(core): new entry")
		assert.NotContains(t, result.Body, "- fix(core): old entry")
	})

	t.Run("prompt excludes the bot managed blocks", func(t *testing.T) {
		// Arrange
		mockVCS := new(MockVCSClient)
		mockGen := new(MockPRGenerator)
		service := NewPRService(mockVCS, mockGen, config.DefaultProjectConfig())

		body := "Human context the model should see.\n\n" +
			changelog.SummaryStartMarker + "\nPrevious bot summary.\n" + changelog.SummaryEndMarker + "\n"
		mockVCS.On("GetPR", mock.Anything, 42).Return(newTestPR(body), nil)
		mockGen.On("GeneratePRContent", mock.Anything, mock.MatchedBy(func(prompt string) bool {
			return !strings.Contains(prompt, "Previous bot summary.") &&
				strings.Contains(prompt, "Human context the model should see.")
		})).Return(models.BotResponse{Summary: "ok", Changelog: "- fix: x"}, nil)
		mockVCS.On("UpdatePRBody", mock.Anything, 42, mock.Anything).Return(nil)
		mockVCS.On("AddLabelsToPR", mock.Anything, 42, mock.Anything).Return(nil)

		// Act
		_, err := service.UpdatePR(context.Background(), PRUpdateOptions{PRNumber: 42, Mode: ModeRegenerate})

		// Assert
		require.NoError(t, err)
		mockGen.AssertExpectations(t)
	})
}
