package ai

import (
	"context"

	"github.com/RibirX/ribir-bot/internal/models"
)

// PRGenerator defines the service that writes PR summaries and changelog
// entries.
type PRGenerator interface {
	// GeneratePRContent generates the summary and changelog for a PR given
	// a rendered prompt.
	GeneratePRContent(ctx context.Context, prompt string) (models.BotResponse, error)
}

// HighlightsGenerator defines the service that picks release highlights
// out of a changelog section.
type HighlightsGenerator interface {
	GenerateHighlights(ctx context.Context, prompt string) ([]models.Highlight, error)
}
