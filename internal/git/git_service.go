package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/RibirX/ribir-bot/internal/errors"
	"github.com/RibirX/ribir-bot/internal/logger"
	"github.com/RibirX/ribir-bot/internal/regex"
)

type GitService struct{}

func NewGitService() *GitService {
	return &GitService{}
}

func (s *GitService) GetCurrentBranch(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "branch", "--show-current")
	output, err := cmd.Output()
	if err != nil {
		return "", errors.ErrGetBranch.WithError(err)
	}

	branchName := strings.TrimSpace(string(output))
	if branchName == "" {
		return "", errors.ErrNoBranch
	}

	return branchName, nil
}

// GetRepoInfo extracts owner and repository name from the origin remote.
func (s *GitService) GetRepoInfo(ctx context.Context) (string, string, error) {
	cmd := exec.CommandContext(ctx, "git", "remote", "get-url", "origin")
	output, err := cmd.Output()
	if err != nil {
		return "", "", errors.ErrGetRepoURL.WithError(err)
	}

	return parseRepoURL(strings.TrimSpace(string(output)))
}

func (s *GitService) FetchTags(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "git", "fetch", "--tags", "--quiet")
	if err := cmd.Run(); err != nil {
		return errors.ErrFetchTags.WithError(err)
	}
	return nil
}

// TagExists checks whether a tag is present in the local repository.
func (s *GitService) TagExists(ctx context.Context, tag string) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--verify", "--quiet", "refs/tags/"+tag)
	return cmd.Run() == nil
}

// ResolveReleaseTag finds the tag a released version was published under,
// trying each configured prefix in order.
func (s *GitService) ResolveReleaseTag(ctx context.Context, version string, prefixes []string) (string, error) {
	log := logger.FromContext(ctx)

	for _, prefix := range prefixes {
		tag := prefix + version
		if s.TagExists(ctx, tag) {
			log.Debug("resolved release tag", "version", version, "tag", tag)
			return tag, nil
		}
	}

	return "", errors.ErrTagNotFound.WithContext("version", version)
}

// GetTagDate returns the commit date of a tag in RFC 3339 form.
func (s *GitService) GetTagDate(ctx context.Context, tag string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "log", "-1", "--format=%aI", tag)
	output, err := cmd.Output()
	if err != nil {
		return "", errors.ErrGetTagDate.WithError(err).WithContext("tag", tag)
	}

	return strings.TrimSpace(string(output)), nil
}

func (s *GitService) AddFileToStaging(ctx context.Context, file string) error {
	repoRoot, err := s.getRepoRoot(ctx)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "git", "add", "--", file)
	cmd.Dir = repoRoot
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return errors.ErrAddFile.
			WithError(err).
			WithContext("file", file).
			WithContext("stderr", strings.TrimSpace(stderr.String()))
	}
	return nil
}

func (s *GitService) CreateCommit(ctx context.Context, message string) error {
	cmd := exec.CommandContext(ctx, "git", "commit", "-m", message)
	if err := cmd.Run(); err != nil {
		return errors.ErrCreateCommit.WithError(err)
	}
	return nil
}

func (s *GitService) Push(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "git", "push")
	if err := cmd.Run(); err != nil {
		return errors.ErrPush.WithError(err)
	}
	return nil
}

func (s *GitService) getRepoRoot(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", errors.ErrGetRepoRoot.WithError(err)
	}
	return strings.TrimSpace(string(output)), nil
}

func parseRepoURL(url string) (string, string, error) {
	var matches []string
	if regex.SSHRepo.MatchString(url) {
		matches = regex.SSHRepo.FindStringSubmatch(url)
	} else if regex.HTTPSRepo.MatchString(url) {
		matches = regex.HTTPSRepo.FindStringSubmatch(url)
	}

	if len(matches) >= 4 {
		repoName := strings.TrimSuffix(matches[3], ".git")
		return matches[2], repoName, nil
	}

	return "", "", fmt.Errorf("%w [%s]", errors.ErrExtractRepoInfo, url)
}
