package services

import (
	"context"

	"github.com/RibirX/ribir-bot/internal/ai/gemini"
	"github.com/RibirX/ribir-bot/internal/config"
	"github.com/RibirX/ribir-bot/internal/git"
	"github.com/RibirX/ribir-bot/internal/logger"
	"github.com/RibirX/ribir-bot/internal/vcs"
	githubvcs "github.com/RibirX/ribir-bot/internal/vcs/github"
)

// Factory wires services on demand. Commands only pay for the clients they
// actually use: changelog verify needs no AI key, pr update does.
type Factory struct {
	cfg        *config.Config
	projectCfg *config.ProjectConfig
	git        *git.GitService

	vcsClient vcs.Client
	provider  *gemini.GeminiProvider
}

func NewFactory(cfg *config.Config, projectCfg *config.ProjectConfig, gitService *git.GitService) *Factory {
	return &Factory{
		cfg:        cfg,
		projectCfg: projectCfg,
		git:        gitService,
	}
}

func (f *Factory) ProjectConfig() *config.ProjectConfig {
	return f.projectCfg
}

// VCSClient resolves owner/repo from the config, falling back to the origin
// remote of the working directory.
func (f *Factory) VCSClient(ctx context.Context) (vcs.Client, error) {
	if f.vcsClient != nil {
		return f.vcsClient, nil
	}

	if err := f.cfg.ValidateForVCS(); err != nil {
		owner, repo, remoteErr := f.git.GetRepoInfo(ctx)
		if remoteErr != nil {
			return nil, err
		}
		f.cfg.Owner = owner
		f.cfg.Repo = repo
		if err := f.cfg.ValidateForVCS(); err != nil {
			return nil, err
		}
		logger.Debug(ctx, "repository resolved from origin remote",
			"owner", owner, "repo", repo)
	}

	f.vcsClient = githubvcs.NewGitHubClient(f.cfg.Owner, f.cfg.Repo, f.cfg.GithubToken)
	return f.vcsClient, nil
}

func (f *Factory) geminiProvider(ctx context.Context) (*gemini.GeminiProvider, error) {
	if f.provider != nil {
		return f.provider, nil
	}

	client, err := gemini.NewClient(ctx, f.cfg)
	if err != nil {
		return nil, err
	}
	f.provider = gemini.NewGeminiProvider(client, f.cfg.Models)
	return f.provider, nil
}

func (f *Factory) PRService(ctx context.Context) (*PRService, error) {
	vcsClient, err := f.VCSClient(ctx)
	if err != nil {
		return nil, err
	}
	provider, err := f.geminiProvider(ctx)
	if err != nil {
		return nil, err
	}

	return NewPRService(
		vcsClient,
		gemini.NewGeminiPRGenerator(provider),
		f.projectCfg,
		WithPRLanguage(f.cfg.Language),
	), nil
}

func (f *Factory) CommentService(ctx context.Context) (*CommentService, error) {
	vcsClient, err := f.VCSClient(ctx)
	if err != nil {
		return nil, err
	}
	prService, err := f.PRService(ctx)
	if err != nil {
		return nil, err
	}
	return NewCommentService(vcsClient, prService), nil
}

func (f *Factory) ChangelogService(ctx context.Context) (*ChangelogService, error) {
	vcsClient, err := f.VCSClient(ctx)
	if err != nil {
		return nil, err
	}
	return NewChangelogService(vcsClient, f.git, f.projectCfg), nil
}

func (f *Factory) ReleaseService(ctx context.Context) (*ReleaseService, error) {
	vcsClient, err := f.VCSClient(ctx)
	if err != nil {
		return nil, err
	}
	provider, err := f.geminiProvider(ctx)
	if err != nil {
		return nil, err
	}

	return NewReleaseService(
		vcsClient,
		f.git,
		gemini.NewGeminiHighlightsGenerator(provider),
		f.projectCfg,
	), nil
}
