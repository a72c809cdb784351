package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/RibirX/ribir-bot/internal/ai"
	"github.com/RibirX/ribir-bot/internal/changelog"
	"github.com/RibirX/ribir-bot/internal/config"
	domainErrors "github.com/RibirX/ribir-bot/internal/errors"
	"github.com/RibirX/ribir-bot/internal/logger"
	"github.com/RibirX/ribir-bot/internal/models"
)

// UpdateMode selects which PR body sections the bot rewrites.
type UpdateMode int

const (
	// ModeAuto fills only sections that still hold their placeholder.
	ModeAuto UpdateMode = iota
	// ModeRegenerate rewrites both sections.
	ModeRegenerate
	// ModeSummaryOnly rewrites the summary.
	ModeSummaryOnly
	// ModeChangelogOnly rewrites the changelog block.
	ModeChangelogOnly
)

func ParseMode(s string) (UpdateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "regenerate", "regenerate-all":
		return ModeRegenerate, nil
	case "summary":
		return ModeSummaryOnly, nil
	case "changelog":
		return ModeChangelogOnly, nil
	default:
		return ModeAuto, fmt.Errorf("unknown mode %q", s)
	}
}

// needs reports which sections the mode wants rewritten for the given body.
func (m UpdateMode) needs(body string) (summary, changelogSection bool) {
	switch m {
	case ModeRegenerate:
		return true, true
	case ModeSummaryOnly:
		return true, false
	case ModeChangelogOnly:
		return false, true
	default:
		return strings.Contains(body, changelog.SummaryPlaceholder),
			strings.Contains(body, changelog.ChangelogPlaceholder)
	}
}

// prVCSClient is the slice of the forge client the PR bot needs.
type prVCSClient interface {
	GetPR(ctx context.Context, prNumber int) (models.PullRequest, error)
	UpdatePRBody(ctx context.Context, prNumber int, body string) error
	AddLabelsToPR(ctx context.Context, prNumber int, labels []string) error
}

type PRService struct {
	vcs        prVCSClient
	generator  ai.PRGenerator
	projectCfg *config.ProjectConfig
	language   string
}

type PROption func(*PRService)

func WithPRLanguage(lang string) PROption {
	return func(s *PRService) {
		s.language = lang
	}
}

func NewPRService(vcsClient prVCSClient, generator ai.PRGenerator, projectCfg *config.ProjectConfig, opts ...PROption) *PRService {
	s := &PRService{
		vcs:        vcsClient,
		generator:  generator,
		projectCfg: projectCfg,
		language:   "en",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type PRUpdateOptions struct {
	PRNumber int
	Mode     UpdateMode
	Context  string
	DryRun   bool
}

type PRUpdateResult struct {
	Body             string
	Response         models.BotResponse
	SummaryUpdated   bool
	ChangelogUpdated bool
	Labels           []string
}

// UpdatePR runs the PR bot against one pull request: generate the summary
// and changelog entries and splice them into the body.
func (s *PRService) UpdatePR(ctx context.Context, opts PRUpdateOptions) (PRUpdateResult, error) {
	ctx = logger.With(ctx, "pr", opts.PRNumber)
	log := logger.FromContext(ctx)

	pr, err := s.vcs.GetPR(ctx, opts.PRNumber)
	if err != nil {
		return PRUpdateResult{}, err
	}

	needsSummary, needsChangelog := opts.Mode.needs(pr.Body)

	// The author's skip checkbox wins in auto mode. Explicit commands
	// override it.
	skipChecked := changelog.SkipRequested(pr.Body)
	if opts.Mode == ModeAuto && skipChecked {
		needsChangelog = false
	}

	if !needsSummary && !needsChangelog {
		log.Info("nothing to update, placeholders already filled")
		return PRUpdateResult{Body: pr.Body}, nil
	}

	prompt, err := s.buildPrompt(pr, opts.Context)
	if err != nil {
		return PRUpdateResult{}, err
	}

	response, err := s.generator.GeneratePRContent(ctx, prompt)
	if err != nil {
		return PRUpdateResult{}, err
	}

	result := PRUpdateResult{Response: response}
	body := pr.Body

	if needsSummary {
		updated, err := changelog.ReplaceSummarySection(body, response.Summary)
		if err != nil {
			log.Warn("summary placeholder missing, leaving body as is", "error", err)
		} else {
			body = updated
			result.SummaryUpdated = true
		}
	}

	if needsChangelog {
		content, labels := s.changelogContent(response)
		updated, err := changelog.ReplaceChangelogSection(body, content)
		if err != nil {
			return PRUpdateResult{}, err
		}
		body = updated
		result.ChangelogUpdated = true
		result.Labels = labels
	}

	result.Body = body

	if opts.DryRun {
		log.Info("dry run, PR not updated")
		return result, nil
	}

	if err := s.vcs.UpdatePRBody(ctx, opts.PRNumber, body); err != nil {
		return PRUpdateResult{}, err
	}

	if len(result.Labels) > 0 {
		if err := s.vcs.AddLabelsToPR(ctx, opts.PRNumber, result.Labels); err != nil {
			// Labels are cosmetic, the body update already landed.
			log.Warn("failed to label PR", "error", err)
		}
	}

	log.Info("PR updated",
		"summary", result.SummaryUpdated,
		"changelog", result.ChangelogUpdated)

	return result, nil
}

// changelogContent turns the AI answer into the marker block content plus
// the labels that describe it.
func (s *PRService) changelogContent(response models.BotResponse) (string, []string) {
	if response.SkipChangelog {
		return changelog.SkipChangelogChecked, []string{"no-changelog"}
	}

	labels := []string{"changelog"}
	var lines []string
	for _, line := range strings.Split(response.Changelog, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if e, ok := changelog.ParseEntry(line); ok && e.Kind() == changelog.Breaking {
			labels = append(labels, "breaking")
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n"), labels
}

func (s *PRService) buildPrompt(pr models.PullRequest, extraContext string) (string, error) {
	var content strings.Builder
	fmt.Fprintf(&content, "Title: %s\n", pr.Title)
	fmt.Fprintf(&content, "Author: @%s\n", pr.Author)
	fmt.Fprintf(&content, "Branch: %s -> %s\n", pr.HeadBranch, pr.BaseBranch)

	if desc := strippedBody(pr.Body); desc != "" {
		fmt.Fprintf(&content, "\nDescription:\n%s\n", desc)
	}

	if len(pr.Commits) > 0 {
		content.WriteString("\nCommits:\n")
		for _, c := range pr.Commits {
			fmt.Fprintf(&content, "- %s\n", firstLine(c.Message))
		}
	}

	if len(pr.ChangedFiles) > 0 {
		content.WriteString("\nChanged files:\n")
		for _, f := range pr.ChangedFiles {
			fmt.Fprintf(&content, "- %s\n", f)
		}
	}

	data := ai.PromptData{
		PRContent:    content.String(),
		Scopes:       strings.Join(s.projectCfg.Scopes, ", "),
		ExtraContext: extraContext,
	}

	rendered, err := ai.RenderPrompt("prPrompt", ai.GetPRPromptTemplate(s.language), data)
	if err != nil {
		return "", domainErrors.ErrRenderPrompt.WithError(err)
	}
	return rendered, nil
}

// strippedBody removes the bot-managed blocks and placeholders so the model
// does not echo its own previous output back.
func strippedBody(body string) string {
	for _, pair := range [][2]string{
		{changelog.SummaryStartMarker, changelog.SummaryEndMarker},
		{changelog.ChangelogStartMarker, changelog.ChangelogEndMarker},
	} {
		if updated, ok := changelog.ReplaceBlock(body, pair[0], pair[1], ""); ok {
			body = updated
		}
	}

	body = strings.ReplaceAll(body, changelog.SummaryPlaceholder, "")
	body = strings.ReplaceAll(body, changelog.ChangelogPlaceholder, "")
	return strings.TrimSpace(body)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
