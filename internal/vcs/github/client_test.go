package github

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	domainErrors "github.com/RibirX/ribir-bot/internal/errors"
	"github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestClient() (*GitHubClient, *MockPullRequestsService, *MockIssuesService, *MockReactionsService, *MockReleasesService) {
	prs := new(MockPullRequestsService)
	issues := new(MockIssuesService)
	reactions := new(MockReactionsService)
	releases := new(MockReleasesService)
	client := NewGitHubClientWithServices(prs, issues, reactions, releases, "RibirX", "Ribir")
	return client, prs, issues, reactions, releases
}

func ghResponse(status int) *github.Response {
	return &github.Response{Response: &http.Response{StatusCode: status, Header: http.Header{}}}
}

func TestGetPR(t *testing.T) {
	t.Run("maps the PR, commits and files", func(t *testing.T) {
		// Arrange
		client, prs, _, _, _ := newTestClient()

		mergedAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
		prs.On("Get", mock.Anything, "RibirX", "Ribir", 42).Return(&github.PullRequest{
			Title:    github.Ptr("feat(core): pipe memoization"),
			Body:     github.Ptr("body"),
			User:     &github.User{Login: github.Ptr("alice")},
			Base:     &github.PullRequestBranch{Ref: github.Ptr("master")},
			Head:     &github.PullRequestBranch{Ref: github.Ptr("pipe-memo")},
			MergedAt: &github.Timestamp{Time: mergedAt},
		}, ghResponse(200), nil)
		prs.On("ListCommits", mock.Anything, "RibirX", "Ribir", 42, mock.Anything).Return([]*github.RepositoryCommit{
			{Commit: &github.Commit{Message: github.Ptr("feat(core): pipe memoization")}},
		}, ghResponse(200), nil)
		prs.On("ListFiles", mock.Anything, "RibirX", "Ribir", 42, mock.Anything).Return([]*github.CommitFile{
			{Filename: github.Ptr("core/src/pipe.rs")},
		}, ghResponse(200), nil)

		// Act
		pr, err := client.GetPR(context.Background(), 42)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 42, pr.Number)
		assert.Equal(t, "feat(core): pipe memoization", pr.Title)
		assert.Equal(t, "alice", pr.Author)
		assert.Equal(t, "master", pr.BaseBranch)
		assert.Equal(t, "pipe-memo", pr.HeadBranch)
		require.NotNil(t, pr.MergedAt)
		assert.Equal(t, mergedAt, *pr.MergedAt)
		require.Len(t, pr.Commits, 1)
		assert.Equal(t, []string{"core/src/pipe.rs"}, pr.ChangedFiles)
	})

	t.Run("a failed file listing is not fatal", func(t *testing.T) {
		// Arrange
		client, prs, _, _, _ := newTestClient()

		prs.On("Get", mock.Anything, "RibirX", "Ribir", 42).Return(&github.PullRequest{
			Title: github.Ptr("fix: x"),
		}, ghResponse(200), nil)
		prs.On("ListCommits", mock.Anything, "RibirX", "Ribir", 42, mock.Anything).Return([]*github.RepositoryCommit{}, ghResponse(200), nil)
		prs.On("ListFiles", mock.Anything, "RibirX", "Ribir", 42, mock.Anything).Return(nil, ghResponse(500), errors.New("boom"))

		// Act
		pr, err := client.GetPR(context.Background(), 42)

		// Assert
		require.NoError(t, err)
		assert.Empty(t, pr.ChangedFiles)
	})

	t.Run("404 maps to a typed error", func(t *testing.T) {
		client, prs, _, _, _ := newTestClient()

		prs.On("Get", mock.Anything, "RibirX", "Ribir", 42).Return(nil, ghResponse(http.StatusNotFound), errors.New("404"))

		_, err := client.GetPR(context.Background(), 42)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestUpdatePRBody(t *testing.T) {
	t.Run("edits only the body", func(t *testing.T) {
		// Arrange
		client, prs, _, _, _ := newTestClient()

		prs.On("Edit", mock.Anything, "RibirX", "Ribir", 42, mock.MatchedBy(func(pr *github.PullRequest) bool {
			return pr.GetBody() == "new body" && pr.Title == nil
		})).Return(&github.PullRequest{}, ghResponse(200), nil)

		// Act
		err := client.UpdatePRBody(context.Background(), 42, "new body")

		// Assert
		assert.NoError(t, err)
		prs.AssertExpectations(t)
	})

	t.Run("401 maps to a token error", func(t *testing.T) {
		client, prs, _, _, _ := newTestClient()

		prs.On("Edit", mock.Anything, "RibirX", "Ribir", 42, mock.Anything).Return(nil, ghResponse(http.StatusUnauthorized), errors.New("401"))

		err := client.UpdatePRBody(context.Background(), 42, "body")

		assert.Error(t, err)
	})
}

func TestListMergedPRsSince(t *testing.T) {
	t.Run("filters unmerged and old PRs", func(t *testing.T) {
		// Arrange
		client, prs, _, _, _ := newTestClient()
		since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

		prs.On("List", mock.Anything, "RibirX", "Ribir", mock.MatchedBy(func(opts *github.PullRequestListOptions) bool {
			return opts.State == "closed" && opts.Base == "master" && opts.Sort == "updated"
		})).Return([]*github.PullRequest{
			{
				Number:   github.Ptr(120),
				MergedAt: &github.Timestamp{Time: since.AddDate(0, 0, 5)},
				User:     &github.User{Login: github.Ptr("alice")},
			},
			{
				// Closed without merging.
				Number: github.Ptr(119),
			},
			{
				// Merged before the cutoff.
				Number:   github.Ptr(118),
				MergedAt: &github.Timestamp{Time: since.AddDate(0, 0, -5)},
			},
		}, ghResponse(200), nil)

		// Act
		merged, err := client.ListMergedPRsSince(context.Background(), "master", since)

		// Assert
		require.NoError(t, err)
		require.Len(t, merged, 1)
		assert.Equal(t, 120, merged[0].Number)
		assert.Equal(t, "alice", merged[0].Author)
	})

	t.Run("stops paging once a page predates the cutoff", func(t *testing.T) {
		// Arrange
		client, prs, _, _, _ := newTestClient()
		since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

		resp := ghResponse(200)
		resp.NextPage = 2
		prs.On("List", mock.Anything, "RibirX", "Ribir", mock.Anything).Return([]*github.PullRequest{
			{
				Number:    github.Ptr(110),
				MergedAt:  &github.Timestamp{Time: since.AddDate(0, 0, -10)},
				UpdatedAt: &github.Timestamp{Time: since.AddDate(0, 0, -10)},
			},
		}, resp, nil).Once()

		// Act
		merged, err := client.ListMergedPRsSince(context.Background(), "master", since)

		// Assert
		require.NoError(t, err)
		assert.Empty(t, merged)
		prs.AssertExpectations(t)
	})
}

func TestAddLabelsToPR(t *testing.T) {
	t.Run("creates missing labels then applies them", func(t *testing.T) {
		// Arrange
		client, _, issues, _, _ := newTestClient()

		issues.On("ListLabels", mock.Anything, "RibirX", "Ribir", mock.Anything).Return([]*github.Label{
			{Name: github.Ptr("changelog")},
		}, ghResponse(200), nil)
		issues.On("CreateLabel", mock.Anything, "RibirX", "Ribir", mock.MatchedBy(func(l *github.Label) bool {
			return l.GetName() == "breaking" && l.GetColor() == "D93F0B"
		})).Return(&github.Label{}, ghResponse(201), nil)
		issues.On("AddLabelsToIssue", mock.Anything, "RibirX", "Ribir", 42, []string{"changelog", "breaking"}).Return([]*github.Label{}, ghResponse(200), nil)

		// Act
		err := client.AddLabelsToPR(context.Background(), 42, []string{"changelog", "breaking"})

		// Assert
		assert.NoError(t, err)
		issues.AssertExpectations(t)
	})

	t.Run("unknown labels are dropped", func(t *testing.T) {
		client, _, issues, _, _ := newTestClient()

		err := client.AddLabelsToPR(context.Background(), 42, []string{"wip", "urgent"})

		assert.NoError(t, err)
		issues.AssertNotCalled(t, "AddLabelsToIssue", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCreateRelease(t *testing.T) {
	t.Run("marks stable releases latest", func(t *testing.T) {
		// Arrange
		client, _, _, _, releases := newTestClient()

		releases.On("CreateRelease", mock.Anything, "RibirX", "Ribir", mock.MatchedBy(func(r *github.RepositoryRelease) bool {
			return r.GetTagName() == "v0.5.0" && !r.GetPrerelease() && r.GetMakeLatest() == "true"
		})).Return(&github.RepositoryRelease{}, ghResponse(201), nil)

		// Act
		err := client.CreateRelease(context.Background(), "v0.5.0", "v0.5.0", "notes", false)

		// Assert
		assert.NoError(t, err)
		releases.AssertExpectations(t)
	})

	t.Run("prereleases are not latest", func(t *testing.T) {
		client, _, _, _, releases := newTestClient()

		releases.On("CreateRelease", mock.Anything, "RibirX", "Ribir", mock.MatchedBy(func(r *github.RepositoryRelease) bool {
			return r.GetPrerelease() && r.MakeLatest == nil
		})).Return(&github.RepositoryRelease{}, ghResponse(201), nil)

		err := client.CreateRelease(context.Background(), "v0.5.0-rc.1", "v0.5.0-rc.1", "notes", true)

		assert.NoError(t, err)
	})

	t.Run("duplicate tag reports already exists", func(t *testing.T) {
		client, _, _, _, releases := newTestClient()

		releases.On("CreateRelease", mock.Anything, "RibirX", "Ribir", mock.Anything).Return(nil, ghResponse(http.StatusUnprocessableEntity), errors.New("422"))

		err := client.CreateRelease(context.Background(), "v0.5.0", "v0.5.0", "notes", false)

		require.Error(t, err)
		var appErr *domainErrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "release already exists", appErr.Context["reason"])
	})
}

func TestAddReaction(t *testing.T) {
	client, _, _, reactions, _ := newTestClient()

	reactions.On("CreateIssueCommentReaction", mock.Anything, "RibirX", "Ribir", int64(9001), "rocket").Return(&github.Reaction{}, ghResponse(201), nil)

	err := client.AddReaction(context.Background(), 9001, "rocket")

	assert.NoError(t, err)
	reactions.AssertExpectations(t)
}

func TestGetReleaseByTag(t *testing.T) {
	client, _, _, _, releases := newTestClient()

	releases.On("GetReleaseByTag", mock.Anything, "RibirX", "Ribir", "v0.4.0").Return(&github.RepositoryRelease{
		Body: github.Ptr("release notes"),
	}, ghResponse(200), nil)

	body, err := client.GetReleaseByTag(context.Background(), "v0.4.0")

	require.NoError(t, err)
	assert.Equal(t, "release notes", body)
}
