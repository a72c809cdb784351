package services

import (
	"context"
	"os"
	"time"

	"github.com/RibirX/ribir-bot/internal/changelog"
	"github.com/RibirX/ribir-bot/internal/config"
	domainErrors "github.com/RibirX/ribir-bot/internal/errors"
	"github.com/RibirX/ribir-bot/internal/logger"
	"github.com/RibirX/ribir-bot/internal/models"
	"github.com/RibirX/ribir-bot/internal/regex"
)

type changelogVCSClient interface {
	ListMergedPRsSince(ctx context.Context, base string, since time.Time) ([]models.PullRequest, error)
}

type changelogGitService interface {
	FetchTags(ctx context.Context) error
	ResolveReleaseTag(ctx context.Context, version string, prefixes []string) (string, error)
	GetTagDate(ctx context.Context, tag string) (string, error)
}

type ChangelogService struct {
	vcs        changelogVCSClient
	git        changelogGitService
	projectCfg *config.ProjectConfig
	now        func() time.Time
}

type ChangelogOption func(*ChangelogService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) ChangelogOption {
	return func(s *ChangelogService) {
		s.now = now
	}
}

func NewChangelogService(vcsClient changelogVCSClient, gitService changelogGitService, projectCfg *config.ProjectConfig, opts ...ChangelogOption) *ChangelogService {
	s := &ChangelogService{
		vcs:        vcsClient,
		git:        gitService,
		projectCfg: projectCfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CollectOptions struct {
	Version string
	Date    string
	Write   bool
}

type CollectResult struct {
	Content string
	Entries int
	PRs     int
}

// Collect gathers changelog entries from the PRs merged since the latest
// released version and inserts them as a new release block.
func (s *ChangelogService) Collect(ctx context.Context, opts CollectOptions) (CollectResult, error) {
	ctx = logger.With(ctx, "version", opts.Version)
	log := logger.FromContext(ctx)

	version := changelog.NormalizeVersion(opts.Version)
	if !changelog.IsValidVersion(version) {
		return CollectResult{}, domainErrors.ErrInvalidVersion.WithContext("version", opts.Version)
	}

	content, err := s.readChangelog()
	if err != nil {
		return CollectResult{}, err
	}
	doc := changelog.Parse(content)

	since, err := s.lastReleaseTime(ctx, doc)
	if err != nil {
		return CollectResult{}, err
	}

	prs, err := s.vcs.ListMergedPRsSince(ctx, s.projectCfg.BaseBranch, since)
	if err != nil {
		return CollectResult{}, err
	}

	grouped, entryCount := collectEntries(ctx, prs)
	if entryCount == 0 {
		log.Info("no changelog entries in merged PRs, changelog unchanged", "prs", len(prs))
		return CollectResult{Content: content, PRs: len(prs)}, nil
	}

	date := opts.Date
	if date == "" {
		date = s.now().Format("2006-01-02")
	}

	doc.AddEntries(version, date, grouped)
	rendered := doc.Render()

	if opts.Write {
		if err := s.writeChangelog(rendered); err != nil {
			return CollectResult{}, err
		}
	}

	log.Info("entries collected",
		"prs", len(prs),
		"entries", entryCount)

	return CollectResult{Content: rendered, Entries: entryCount, PRs: len(prs)}, nil
}

// collectEntries extracts the entry lines of each PR, grouped by section.
// PRs are processed oldest first so entries keep merge order.
func collectEntries(ctx context.Context, prs []models.PullRequest) (map[changelog.SectionKind][]string, int) {
	log := logger.FromContext(ctx)

	grouped := make(map[changelog.SectionKind][]string)
	count := 0

	add := func(kind changelog.SectionKind, line string) {
		grouped[kind] = append(grouped[kind], line)
		count++
	}

	for i := len(prs) - 1; i >= 0; i-- {
		pr := prs[i]

		if isBotAuthor(pr.Author) {
			continue
		}
		if changelog.SkipRequested(pr.Body) {
			log.Debug("PR opted out of changelog", "pr", pr.Number)
			continue
		}

		entries, ok := changelog.ExtractPREntries(pr.Body)
		if ok && len(entries) > 0 {
			for _, line := range entries {
				kind := changelog.Internal
				if e, parsed := changelog.ParseEntry(line); parsed {
					kind = e.Kind()
				}
				add(kind, changelog.InjectPRMeta(line, pr.Number, pr.Author))
			}
			continue
		}

		// No marker block: fall back to the PR title.
		if e, parsed := changelog.ParseEntry(pr.Title); parsed {
			add(e.Kind(), changelog.InjectPRMeta(e.String(), pr.Number, pr.Author))
			continue
		}
		add(changelog.Internal, changelog.InjectPRMeta("- "+pr.Title, pr.Number, pr.Author))
	}

	return grouped, count
}

type MergeOptions struct {
	Version string
	Write   bool
}

// Merge folds the prereleases of a version into the stable release block.
func (s *ChangelogService) Merge(ctx context.Context, opts MergeOptions) (string, error) {
	ctx = logger.With(ctx, "version", opts.Version)

	content, err := s.readChangelog()
	if err != nil {
		return "", err
	}

	doc := changelog.Parse(content)
	if err := doc.MergePrereleases(opts.Version, s.now().Format("2006-01-02")); err != nil {
		return "", err
	}

	rendered := doc.Render()
	if opts.Write {
		if err := s.writeChangelog(rendered); err != nil {
			return "", err
		}
	}

	logger.Info(ctx, "prereleases merged")
	return rendered, nil
}

// Verify checks the changelog survives a parse/render round trip.
func (s *ChangelogService) Verify(ctx context.Context) error {
	content, err := s.readChangelog()
	if err != nil {
		return err
	}
	return changelog.Verify(content)
}

type StampOptions struct {
	PRNumber int
	Write    bool
}

// Stamp replaces "#pr" placeholders in the newest release with the actual
// PR number. Returns the updated content and how many lines changed.
func (s *ChangelogService) Stamp(ctx context.Context, opts StampOptions) (string, int, error) {
	content, err := s.readChangelog()
	if err != nil {
		return "", 0, err
	}

	doc := changelog.Parse(content)
	count := doc.Stamp(opts.PRNumber)
	rendered := doc.Render()

	if count > 0 && opts.Write {
		if err := s.writeChangelog(rendered); err != nil {
			return "", 0, err
		}
	}

	logger.Info(ctx, "placeholders stamped", "pr", opts.PRNumber, "lines", count)
	return rendered, count, nil
}

// lastReleaseTime resolves when the latest released version was tagged.
// With no releases yet, the zero time collects everything.
func (s *ChangelogService) lastReleaseTime(ctx context.Context, doc *changelog.Document) (time.Time, error) {
	log := logger.FromContext(ctx)

	latest, err := doc.LatestVersion()
	if err != nil {
		log.Info("changelog has no releases yet, collecting all merged PRs")
		return time.Time{}, nil
	}

	if err := s.git.FetchTags(ctx); err != nil {
		log.Warn("could not fetch tags, using local state", "error", err)
	}

	tag, err := s.git.ResolveReleaseTag(ctx, latest, s.projectCfg.TagPrefixes)
	if err != nil {
		return time.Time{}, err
	}

	dateStr, err := s.git.GetTagDate(ctx, tag)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return time.Time{}, domainErrors.ErrGetTagDate.WithError(err).WithContext("tag", tag)
	}

	log.Debug("collecting PRs merged after last release",
		"version", latest,
		"tag", tag,
		"since", t.Format(time.RFC3339))
	return t, nil
}

func (s *ChangelogService) readChangelog() (string, error) {
	data, err := os.ReadFile(s.projectCfg.ChangelogPath)
	if err != nil {
		return "", domainErrors.ErrChangelogNotFound.
			WithError(err).
			WithContext("path", s.projectCfg.ChangelogPath)
	}
	return string(data), nil
}

func (s *ChangelogService) writeChangelog(content string) error {
	return os.WriteFile(s.projectCfg.ChangelogPath, []byte(content), 0644)
}

func isBotAuthor(login string) bool {
	return regex.BotLogin.MatchString(login)
}
