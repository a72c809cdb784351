package vcs

import (
	"context"
	"time"

	"github.com/RibirX/ribir-bot/internal/models"
)

// Client is the forge surface the bots depend on. GitHub is the only
// implementation today.
type Client interface {
	GetPR(ctx context.Context, prNumber int) (models.PullRequest, error)
	UpdatePRBody(ctx context.Context, prNumber int, body string) error
	ListMergedPRsSince(ctx context.Context, base string, since time.Time) ([]models.PullRequest, error)
	CreateComment(ctx context.Context, prNumber int, body string) error
	AddReaction(ctx context.Context, commentID int64, content string) error
	AddLabelsToPR(ctx context.Context, prNumber int, labels []string) error
	CreateRelease(ctx context.Context, tag, name, body string, prerelease bool) error
	GetReleaseByTag(ctx context.Context, tag string) (string, error)
}
