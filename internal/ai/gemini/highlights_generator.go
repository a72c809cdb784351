package gemini

import (
	"context"
	"encoding/json"

	"github.com/RibirX/ribir-bot/internal/ai"
	domainErrors "github.com/RibirX/ribir-bot/internal/errors"
	"github.com/RibirX/ribir-bot/internal/logger"
	"github.com/RibirX/ribir-bot/internal/models"
)

var _ ai.HighlightsGenerator = (*GeminiHighlightsGenerator)(nil)

// GeminiHighlightsGenerator picks release highlights from a changelog
// section.
type GeminiHighlightsGenerator struct {
	*GeminiProvider
}

type highlightsJSON struct {
	Highlights []models.Highlight `json:"highlights"`
}

func NewGeminiHighlightsGenerator(provider *GeminiProvider) *GeminiHighlightsGenerator {
	return &GeminiHighlightsGenerator{GeminiProvider: provider}
}

func (g *GeminiHighlightsGenerator) GenerateHighlights(ctx context.Context, prompt string) ([]models.Highlight, error) {
	log := logger.FromContext(ctx)

	text, _, err := g.generateWithFallback(ctx, prompt)
	if err != nil {
		log.Error("failed to generate highlights", "error", err)
		return nil, err
	}

	text = ExtractJSON(text)

	var parsed highlightsJSON
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, domainErrors.ErrInvalidAIOutput.
			WithContext("reason", "failed to parse JSON").
			WithContext("preview", preview(text)).
			WithError(err)
	}

	for i := range parsed.Highlights {
		parsed.Highlights[i].Description = ai.SanitizeMarkdown(parsed.Highlights[i].Description)
	}

	log.Info("highlights generated", "count", len(parsed.Highlights))
	return parsed.Highlights, nil
}
