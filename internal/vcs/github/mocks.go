package github

import (
	"context"

	"github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/mock"
)

type MockPullRequestsService struct {
	mock.Mock
}

func (m *MockPullRequestsService) Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number)
	return getOrNil[*github.PullRequest](args, 0), getOrNil[*github.Response](args, 1), args.Error(2)
}

func (m *MockPullRequestsService) Edit(ctx context.Context, owner, repo string, number int, pr *github.PullRequest) (*github.PullRequest, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, pr)
	return getOrNil[*github.PullRequest](args, 0), getOrNil[*github.Response](args, 1), args.Error(2)
}

func (m *MockPullRequestsService) List(ctx context.Context, owner, repo string, opts *github.PullRequestListOptions) ([]*github.PullRequest, *github.Response, error) {
	args := m.Called(ctx, owner, repo, opts)
	return getOrNil[[]*github.PullRequest](args, 0), getOrNil[*github.Response](args, 1), args.Error(2)
}

func (m *MockPullRequestsService) ListCommits(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.RepositoryCommit, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, opts)
	return getOrNil[[]*github.RepositoryCommit](args, 0), getOrNil[*github.Response](args, 1), args.Error(2)
}

func (m *MockPullRequestsService) ListFiles(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, opts)
	return getOrNil[[]*github.CommitFile](args, 0), getOrNil[*github.Response](args, 1), args.Error(2)
}

type MockIssuesService struct {
	mock.Mock
}

func (m *MockIssuesService) CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, comment)
	return getOrNil[*github.IssueComment](args, 0), getOrNil[*github.Response](args, 1), args.Error(2)
}

func (m *MockIssuesService) ListLabels(ctx context.Context, owner, repo string, opts *github.ListOptions) ([]*github.Label, *github.Response, error) {
	args := m.Called(ctx, owner, repo, opts)
	return getOrNil[[]*github.Label](args, 0), getOrNil[*github.Response](args, 1), args.Error(2)
}

func (m *MockIssuesService) CreateLabel(ctx context.Context, owner, repo string, label *github.Label) (*github.Label, *github.Response, error) {
	args := m.Called(ctx, owner, repo, label)
	return getOrNil[*github.Label](args, 0), getOrNil[*github.Response](args, 1), args.Error(2)
}

func (m *MockIssuesService) AddLabelsToIssue(ctx context.Context, owner, repo string, number int, labels []string) ([]*github.Label, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, labels)
	return getOrNil[[]*github.Label](args, 0), getOrNil[*github.Response](args, 1), args.Error(2)
}

type MockReactionsService struct {
	mock.Mock
}

func (m *MockReactionsService) CreateIssueCommentReaction(ctx context.Context, owner, repo string, id int64, content string) (*github.Reaction, *github.Response, error) {
	args := m.Called(ctx, owner, repo, id, content)
	return getOrNil[*github.Reaction](args, 0), getOrNil[*github.Response](args, 1), args.Error(2)
}

type MockReleasesService struct {
	mock.Mock
}

func (m *MockReleasesService) CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, *github.Response, error) {
	args := m.Called(ctx, owner, repo, release)
	return getOrNil[*github.RepositoryRelease](args, 0), getOrNil[*github.Response](args, 1), args.Error(2)
}

func (m *MockReleasesService) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*github.RepositoryRelease, *github.Response, error) {
	args := m.Called(ctx, owner, repo, tag)
	return getOrNil[*github.RepositoryRelease](args, 0), getOrNil[*github.Response](args, 1), args.Error(2)
}

func getOrNil[T any](args mock.Arguments, index int) T {
	var zero T
	if v := args.Get(index); v != nil {
		return v.(T)
	}
	return zero
}
