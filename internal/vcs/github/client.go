package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/RibirX/ribir-bot/internal/errors"
	"github.com/RibirX/ribir-bot/internal/logger"
	"github.com/RibirX/ribir-bot/internal/models"
	"github.com/RibirX/ribir-bot/internal/vcs"
	"github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

var _ vcs.Client = (*GitHubClient)(nil)

type PullRequestsService interface {
	Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error)
	Edit(ctx context.Context, owner, repo string, number int, pr *github.PullRequest) (*github.PullRequest, *github.Response, error)
	List(ctx context.Context, owner, repo string, opts *github.PullRequestListOptions) ([]*github.PullRequest, *github.Response, error)
	ListCommits(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.RepositoryCommit, *github.Response, error)
	ListFiles(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error)
}

type IssuesService interface {
	CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
	ListLabels(ctx context.Context, owner, repo string, opts *github.ListOptions) ([]*github.Label, *github.Response, error)
	CreateLabel(ctx context.Context, owner, repo string, label *github.Label) (*github.Label, *github.Response, error)
	AddLabelsToIssue(ctx context.Context, owner, repo string, number int, labels []string) ([]*github.Label, *github.Response, error)
}

type ReactionsService interface {
	CreateIssueCommentReaction(ctx context.Context, owner, repo string, id int64, content string) (*github.Reaction, *github.Response, error)
}

type ReleasesService interface {
	CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, *github.Response, error)
	GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*github.RepositoryRelease, *github.Response, error)
}

type GitHubClient struct {
	prService       PullRequestsService
	issuesService   IssuesService
	reactionService ReactionsService
	releaseService  ReleasesService
	owner           string
	repo            string
}

// Labels the bot manages on pull requests.
var allowedLabels = map[string]struct {
	Color       string
	Description string
}{
	"changelog":    {"0E8A16", "Has changelog entries"},
	"no-changelog": {"808080", "No changelog entry needed"},
	"breaking":     {"D93F0B", "Contains breaking changes"},
}

func NewGitHubClient(owner, repo, token string) *GitHubClient {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	return &GitHubClient{
		prService:       client.PullRequests,
		issuesService:   client.Issues,
		reactionService: client.Reactions,
		releaseService:  client.Repositories,
		owner:           owner,
		repo:            repo,
	}
}

func NewGitHubClientWithServices(
	prService PullRequestsService,
	issuesService IssuesService,
	reactionService ReactionsService,
	releaseService ReleasesService,
	owner string,
	repo string,
) *GitHubClient {
	return &GitHubClient{
		prService:       prService,
		issuesService:   issuesService,
		reactionService: reactionService,
		releaseService:  releaseService,
		owner:           owner,
		repo:            repo,
	}
}

func (ghc *GitHubClient) GetPR(ctx context.Context, prNumber int) (models.PullRequest, error) {
	log := logger.FromContext(ctx)

	log.Debug("fetching github pull request",
		"owner", ghc.owner,
		"repo", ghc.repo,
		"pr", prNumber)

	pr, resp, err := ghc.prService.Get(ctx, ghc.owner, ghc.repo, prNumber)
	if err != nil {
		if mapped := ghc.mapStatusError(resp, "get PR", prNumber); mapped != nil {
			return models.PullRequest{}, mapped
		}
		return models.PullRequest{}, fmt.Errorf("failed to get PR #%d: %w", prNumber, err)
	}

	commits, _, err := ghc.prService.ListCommits(ctx, ghc.owner, ghc.repo, prNumber, &github.ListOptions{PerPage: 100})
	if err != nil {
		return models.PullRequest{}, fmt.Errorf("failed to get commits for PR #%d: %w", prNumber, err)
	}

	prCommits := make([]models.Commit, len(commits))
	for i, commit := range commits {
		prCommits[i] = models.Commit{
			Message: commit.GetCommit().GetMessage(),
		}
	}

	var changedFiles []string
	files, _, err := ghc.prService.ListFiles(ctx, ghc.owner, ghc.repo, prNumber, &github.ListOptions{PerPage: 100})
	if err != nil {
		// The file list only enriches the prompt, a failure is not fatal.
		log.Warn("failed to list changed files", "pr", prNumber, "error", err)
	} else {
		for _, f := range files {
			changedFiles = append(changedFiles, f.GetFilename())
		}
	}

	data := models.PullRequest{
		Number:       prNumber,
		Title:        pr.GetTitle(),
		Body:         pr.GetBody(),
		Author:       pr.GetUser().GetLogin(),
		BaseBranch:   pr.GetBase().GetRef(),
		HeadBranch:   pr.GetHead().GetRef(),
		MergedAt:     timePtr(pr.GetMergedAt()),
		Commits:      prCommits,
		ChangedFiles: changedFiles,
	}

	log.Debug("github PR fetched successfully",
		"pr", prNumber,
		"title", data.Title,
		"commits_count", len(prCommits))

	return data, nil
}

func (ghc *GitHubClient) UpdatePRBody(ctx context.Context, prNumber int, body string) error {
	pr := &github.PullRequest{
		Body: github.Ptr(body),
	}

	_, resp, err := ghc.prService.Edit(ctx, ghc.owner, ghc.repo, prNumber, pr)
	if err != nil {
		if mapped := ghc.mapStatusError(resp, "update PR", prNumber); mapped != nil {
			return mapped
		}
		return errors.ErrUpdatePR.WithError(err).WithContext("pr_number", prNumber)
	}
	return nil
}

// ListMergedPRsSince returns the PRs merged into base after the given time,
// newest first.
func (ghc *GitHubClient) ListMergedPRsSince(ctx context.Context, base string, since time.Time) ([]models.PullRequest, error) {
	log := logger.FromContext(ctx)

	opts := &github.PullRequestListOptions{
		State:     "closed",
		Base:      base,
		Sort:      "updated",
		Direction: "desc",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var merged []models.PullRequest
	for {
		prs, resp, err := ghc.prService.List(ctx, ghc.owner, ghc.repo, opts)
		if err != nil {
			if mapped := ghc.mapStatusError(resp, "list merged PRs", 0); mapped != nil {
				return nil, mapped
			}
			return nil, fmt.Errorf("failed to list pull requests: %w", err)
		}

		stale := false
		for _, pr := range prs {
			mergedAt := pr.GetMergedAt()
			if mergedAt.IsZero() {
				continue
			}
			if !since.IsZero() && !mergedAt.Time.After(since) {
				continue
			}
			merged = append(merged, models.PullRequest{
				Number:     pr.GetNumber(),
				Title:      pr.GetTitle(),
				Body:       pr.GetBody(),
				Author:     pr.GetUser().GetLogin(),
				BaseBranch: pr.GetBase().GetRef(),
				HeadBranch: pr.GetHead().GetRef(),
				MergedAt:   timePtr(mergedAt),
			})
		}

		// Results are sorted by update time, so once a whole page predates
		// the cutoff there is nothing newer left.
		if len(prs) > 0 && !since.IsZero() {
			last := prs[len(prs)-1]
			if last.GetUpdatedAt().Time.Before(since) {
				stale = true
			}
		}

		if stale || resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	log.Debug("merged PRs listed", "base", base, "count", len(merged))
	return merged, nil
}

func (ghc *GitHubClient) CreateComment(ctx context.Context, prNumber int, body string) error {
	comment := &github.IssueComment{Body: github.Ptr(body)}
	_, resp, err := ghc.issuesService.CreateComment(ctx, ghc.owner, ghc.repo, prNumber, comment)
	if err != nil {
		if mapped := ghc.mapStatusError(resp, "create comment", prNumber); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to comment on PR #%d: %w", prNumber, err)
	}
	return nil
}

func (ghc *GitHubClient) AddReaction(ctx context.Context, commentID int64, content string) error {
	_, _, err := ghc.reactionService.CreateIssueCommentReaction(ctx, ghc.owner, ghc.repo, commentID, content)
	if err != nil {
		return fmt.Errorf("failed to react to comment %d: %w", commentID, err)
	}
	return nil
}

func (ghc *GitHubClient) AddLabelsToPR(ctx context.Context, prNumber int, labels []string) error {
	validLabels := filterAllowedLabels(labels)
	if len(validLabels) == 0 {
		return nil
	}

	existing, err := ghc.getRepoLabels(ctx)
	if err != nil {
		return err
	}

	if err := ghc.ensureLabelsExist(ctx, existing, validLabels); err != nil {
		return err
	}

	_, _, err = ghc.issuesService.AddLabelsToIssue(ctx, ghc.owner, ghc.repo, prNumber, validLabels)
	if err != nil {
		return fmt.Errorf("failed to add labels to PR #%d: %w", prNumber, err)
	}
	return nil
}

func (ghc *GitHubClient) CreateRelease(ctx context.Context, tag, name, body string, prerelease bool) error {
	releaseRequest := &github.RepositoryRelease{
		TagName:    github.Ptr(tag),
		Name:       github.Ptr(name),
		Body:       github.Ptr(body),
		Prerelease: github.Ptr(prerelease),
	}
	if !prerelease {
		releaseRequest.MakeLatest = github.Ptr("true")
	}

	_, resp, err := ghc.releaseService.CreateRelease(ctx, ghc.owner, ghc.repo, releaseRequest)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
			return errors.ErrCreateRelease.
				WithContext("tag", tag).
				WithContext("reason", "release already exists")
		}
		if mapped := ghc.mapStatusError(resp, "create release", 0); mapped != nil {
			return mapped
		}
		return errors.ErrCreateRelease.WithError(err).WithContext("tag", tag)
	}
	return nil
}

// GetReleaseByTag returns the body of an existing release.
func (ghc *GitHubClient) GetReleaseByTag(ctx context.Context, tag string) (string, error) {
	release, resp, err := ghc.releaseService.GetReleaseByTag(ctx, ghc.owner, ghc.repo, tag)
	if err != nil {
		if mapped := ghc.mapStatusError(resp, "get release", 0); mapped != nil {
			return "", mapped
		}
		return "", fmt.Errorf("failed to get release %s: %w", tag, err)
	}
	return release.GetBody(), nil
}

func (ghc *GitHubClient) getRepoLabels(ctx context.Context) ([]string, error) {
	labels, _, err := ghc.issuesService.ListLabels(ctx, ghc.owner, ghc.repo, &github.ListOptions{PerPage: 100})
	if err != nil {
		return nil, fmt.Errorf("failed to list repository labels: %w", err)
	}

	labelNames := make([]string, len(labels))
	for i, label := range labels {
		labelNames[i] = label.GetName()
	}
	return labelNames, nil
}

func (ghc *GitHubClient) ensureLabelsExist(ctx context.Context, existing, wanted []string) error {
	existingSet := make(map[string]bool, len(existing))
	for _, name := range existing {
		existingSet[name] = true
	}

	for _, name := range wanted {
		if existingSet[name] {
			continue
		}
		spec := allowedLabels[name]
		_, _, err := ghc.issuesService.CreateLabel(ctx, ghc.owner, ghc.repo, &github.Label{
			Name:        github.Ptr(name),
			Color:       github.Ptr(spec.Color),
			Description: github.Ptr(spec.Description),
		})
		if err != nil {
			return fmt.Errorf("failed to create label %q: %w", name, err)
		}
	}
	return nil
}

func (ghc *GitHubClient) mapStatusError(resp *github.Response, operation string, prNumber int) error {
	if resp == nil {
		return nil
	}

	base := func(appErr *errors.AppError) *errors.AppError {
		e := appErr.
			WithContext("operation", operation).
			WithContext("repo", fmt.Sprintf("%s/%s", ghc.owner, ghc.repo))
		if prNumber > 0 {
			e = e.WithContext("pr_number", prNumber)
		}
		return e
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return base(errors.ErrGitHubTokenInvalid)
	case http.StatusForbidden:
		return base(errors.ErrGitHubInsufficientPerms)
	case http.StatusNotFound:
		if prNumber > 0 {
			return base(errors.ErrPRNotFound)
		}
		return base(errors.ErrRepositoryNotFound)
	case http.StatusTooManyRequests:
		return base(errors.ErrGitHubRateLimit).
			WithContext("retry_after", resp.Header.Get("Retry-After"))
	default:
		return nil
	}
}

func filterAllowedLabels(labels []string) []string {
	var out []string
	for _, l := range labels {
		if _, ok := allowedLabels[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

func timePtr(t github.Timestamp) *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}
