package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/RibirX/ribir-bot/internal/ai"
	"github.com/RibirX/ribir-bot/internal/changelog"
	"github.com/RibirX/ribir-bot/internal/config"
	domainErrors "github.com/RibirX/ribir-bot/internal/errors"
	"github.com/RibirX/ribir-bot/internal/logger"
	"github.com/RibirX/ribir-bot/internal/models"
)

const changelogSkeleton = `# Changelog

All notable changes to this project will be documented in this file.

<!-- next-header -->
`

type releaseVCSClient interface {
	GetPR(ctx context.Context, prNumber int) (models.PullRequest, error)
	UpdatePRBody(ctx context.Context, prNumber int, body string) error
	CreateRelease(ctx context.Context, tag, name, body string, prerelease bool) error
}

type releaseGitService interface {
	GetCurrentBranch(ctx context.Context) (string, error)
	AddFileToStaging(ctx context.Context, file string) error
	CreateCommit(ctx context.Context, message string) error
	Push(ctx context.Context) error
}

type ReleaseService struct {
	vcs        releaseVCSClient
	git        releaseGitService
	generator  ai.HighlightsGenerator
	projectCfg *config.ProjectConfig
	now        func() time.Time
}

type ReleaseOption func(*ReleaseService)

func WithReleaseClock(now func() time.Time) ReleaseOption {
	return func(s *ReleaseService) {
		s.now = now
	}
}

func NewReleaseService(vcsClient releaseVCSClient, gitService releaseGitService, generator ai.HighlightsGenerator, projectCfg *config.ProjectConfig, opts ...ReleaseOption) *ReleaseService {
	s := &ReleaseService{
		vcs:        vcsClient,
		git:        gitService,
		generator:  generator,
		projectCfg: projectCfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type HighlightsOptions struct {
	PRNumber   int
	Version    string
	Regenerate bool
	DryRun     bool
}

// GenerateHighlights asks the model for 3-5 release highlights and writes
// them between the highlight markers of the release PR body.
func (s *ReleaseService) GenerateHighlights(ctx context.Context, opts HighlightsOptions) ([]models.Highlight, error) {
	ctx = logger.With(ctx, "pr", opts.PRNumber)
	log := logger.FromContext(ctx)

	pr, err := s.vcs.GetPR(ctx, opts.PRNumber)
	if err != nil {
		return nil, err
	}

	if !opts.Regenerate {
		if block, err := changelog.ExtractHighlights(pr.Body); err == nil {
			if existing := parseHighlightLines(block); len(existing) > 0 {
				log.Info("release PR already has highlights, keeping them", "count", len(existing))
				return existing, nil
			}
		}
	}

	version := opts.Version
	if version == "" {
		v, ok := changelog.StableFromBranch(pr.HeadBranch)
		if !ok {
			v, ok = changelog.StableFromBranch(pr.BaseBranch)
		}
		if !ok {
			return nil, domainErrors.ErrNotReleaseBranch.
				WithContext("head", pr.HeadBranch).
				WithContext("base", pr.BaseBranch)
		}
		version = v
	}

	section, err := s.mergedSectionPreview(version)
	if err != nil {
		return nil, err
	}

	prompt, err := ai.RenderPrompt("highlightsPrompt", ai.GetHighlightsPromptTemplate(), ai.PromptData{
		Version:   version,
		Changelog: section,
	})
	if err != nil {
		return nil, domainErrors.ErrRenderPrompt.WithError(err)
	}

	highlights, err := s.generator.GenerateHighlights(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if err := validateHighlights(ctx, highlights); err != nil {
		return nil, err
	}

	text := changelog.FormatHighlights(highlights)
	body, err := changelog.UpdateHighlights(pr.Body, text)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		log.Info("dry run, release PR not updated", "highlights", len(highlights))
		return highlights, nil
	}

	if err := s.vcs.UpdatePRBody(ctx, opts.PRNumber, body); err != nil {
		return nil, err
	}

	log.Info("highlights written to release PR", "count", len(highlights))
	return highlights, nil
}

type StableOptions struct {
	Version  string
	PRNumber int
	DryRun   bool
}

type StableResult struct {
	Content string
	Section string
	Tag     string
}

// Stable promotes a release: merge the prereleases in the changelog, put
// the highlights from the release PR under the new heading, commit the
// file and create the GitHub release.
func (s *ReleaseService) Stable(ctx context.Context, opts StableOptions) (StableResult, error) {
	ctx = logger.With(ctx, "version", opts.Version)
	log := logger.FromContext(ctx)

	version := changelog.NormalizeVersion(opts.Version)
	if !changelog.IsValidVersion(version) {
		return StableResult{}, domainErrors.ErrInvalidVersion.WithContext("version", opts.Version)
	}

	content, err := s.readChangelog()
	if err != nil {
		return StableResult{}, err
	}

	doc := changelog.Parse(content)
	if err := doc.MergePrereleases(version, s.now().Format("2006-01-02")); err != nil {
		return StableResult{}, err
	}
	rendered := doc.Render()

	if opts.PRNumber > 0 {
		highlights, err := s.highlightsFromPR(ctx, opts.PRNumber)
		if err != nil {
			log.Warn("no highlights found in release PR, continuing without", "error", err)
		} else {
			rendered, err = changelog.InsertHighlights(rendered, version, highlights)
			if err != nil {
				return StableResult{}, err
			}
		}
	}

	section, err := changelog.ExtractVersionSection(rendered, version)
	if err != nil {
		return StableResult{}, err
	}

	tag := "v" + version
	result := StableResult{Content: rendered, Section: section, Tag: tag}

	if opts.DryRun {
		log.Info("dry run, nothing written")
		return result, nil
	}

	if err := s.writeChangelog(rendered); err != nil {
		return StableResult{}, err
	}
	if err := s.commitChangelog(ctx, fmt.Sprintf("chore(release): merge changelog for %s", tag)); err != nil {
		return StableResult{}, err
	}

	if err := s.vcs.CreateRelease(ctx, tag, tag, section, changelog.IsPrerelease(version)); err != nil {
		return StableResult{}, err
	}

	log.Info("stable release published", "tag", tag)
	return result, nil
}

type ArchiveOptions struct {
	Series string // "X.Y"
	Write  bool
}

// Archive moves the current changelog to changelogs/CHANGELOG-X.Y.md and
// resets CHANGELOG.md to a fresh skeleton. Done when a release series
// branches off.
func (s *ReleaseService) Archive(ctx context.Context, opts ArchiveOptions) (string, error) {
	log := logger.FromContext(ctx)

	content, err := s.readChangelog()
	if err != nil {
		return "", err
	}

	archivePath := filepath.Join(s.projectCfg.ArchiveDir, fmt.Sprintf("CHANGELOG-%s.md", opts.Series))
	if !opts.Write {
		log.Info("dry run, archive not written", "path", archivePath)
		return archivePath, nil
	}

	if err := os.MkdirAll(s.projectCfg.ArchiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := os.WriteFile(archivePath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write archive: %w", err)
	}
	if err := s.writeChangelog(changelogSkeleton); err != nil {
		return "", err
	}

	for _, file := range []string{archivePath, s.projectCfg.ChangelogPath} {
		if err := s.git.AddFileToStaging(ctx, file); err != nil {
			return "", err
		}
	}
	if err := s.git.CreateCommit(ctx, fmt.Sprintf("chore(release): archive changelog for %s", opts.Series)); err != nil {
		return "", err
	}
	if err := s.git.Push(ctx); err != nil {
		return "", err
	}

	log.Info("changelog archived", "path", archivePath)
	return archivePath, nil
}

// VerifyBranch checks that the version belongs to the release branch the
// command runs on.
func (s *ReleaseService) VerifyBranch(ctx context.Context, version string) error {
	branch, err := s.git.GetCurrentBranch(ctx)
	if err != nil {
		return err
	}

	stable, ok := changelog.StableFromBranch(branch)
	if !ok {
		return domainErrors.ErrNotReleaseBranch.WithContext("branch", branch)
	}

	version = changelog.NormalizeVersion(version)
	if !changelog.IsPrereleaseOf(version, stable) && version != stable {
		return domainErrors.ErrNotReleaseBranch.
			WithContext("branch", branch).
			WithContext("version", version).
			WithSuggestion(fmt.Sprintf("Branch %s releases the %s series", branch, stable))
	}
	return nil
}

// mergedSectionPreview renders what the stable section will look like once
// the prereleases are folded, without touching the file.
func (s *ReleaseService) mergedSectionPreview(version string) (string, error) {
	content, err := s.readChangelog()
	if err != nil {
		return "", err
	}

	doc := changelog.Parse(content)
	if err := doc.MergePrereleases(version, s.now().Format("2006-01-02")); err != nil {
		return "", err
	}

	return changelog.ExtractVersionSection(doc.Render(), version)
}

func (s *ReleaseService) highlightsFromPR(ctx context.Context, prNumber int) (string, error) {
	pr, err := s.vcs.GetPR(ctx, prNumber)
	if err != nil {
		return "", err
	}
	return changelog.ExtractHighlights(pr.Body)
}

func (s *ReleaseService) commitChangelog(ctx context.Context, message string) error {
	if err := s.git.AddFileToStaging(ctx, s.projectCfg.ChangelogPath); err != nil {
		return err
	}
	if err := s.git.CreateCommit(ctx, message); err != nil {
		return err
	}
	return s.git.Push(ctx)
}

func (s *ReleaseService) readChangelog() (string, error) {
	data, err := os.ReadFile(s.projectCfg.ChangelogPath)
	if err != nil {
		return "", domainErrors.ErrChangelogNotFound.
			WithError(err).
			WithContext("path", s.projectCfg.ChangelogPath)
	}
	return string(data), nil
}

func (s *ReleaseService) writeChangelog(content string) error {
	return os.WriteFile(s.projectCfg.ChangelogPath, []byte(content), 0644)
}

// parseHighlightLines reads `- <emoji> <description>` bullets back out of a
// highlights block.
func parseHighlightLines(block string) []models.Highlight {
	var highlights []models.Highlight
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, "- "))
		if rest == "" {
			continue
		}

		h := models.Highlight{Description: rest}
		if emoji, desc, ok := strings.Cut(rest, " "); ok && !startsWithLetterOrDigit(emoji) {
			h.Emoji = emoji
			h.Description = strings.TrimSpace(desc)
		}
		highlights = append(highlights, h)
	}
	return highlights
}

func startsWithLetterOrDigit(s string) bool {
	for _, r := range s {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	return false
}

// validateHighlights enforces the 3-5 item rule and warns on long
// descriptions.
func validateHighlights(ctx context.Context, highlights []models.Highlight) error {
	if len(highlights) < 3 || len(highlights) > 5 {
		return domainErrors.ErrHighlightCount.WithContext("count", len(highlights))
	}

	log := logger.FromContext(ctx)
	for _, h := range highlights {
		if len([]rune(h.Description)) > 60 {
			log.Warn("highlight description over 60 characters", "description", h.Description)
		}
	}
	return nil
}
