package gemini

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/RibirX/ribir-bot/internal/ai"
	domainErrors "github.com/RibirX/ribir-bot/internal/errors"
	"github.com/RibirX/ribir-bot/internal/logger"
	"github.com/RibirX/ribir-bot/internal/models"
)

var _ ai.PRGenerator = (*GeminiPRGenerator)(nil)

// GeminiPRGenerator produces PR summaries and changelog entries.
type GeminiPRGenerator struct {
	*GeminiProvider
}

func NewGeminiPRGenerator(provider *GeminiProvider) *GeminiPRGenerator {
	return &GeminiPRGenerator{GeminiProvider: provider}
}

func (g *GeminiPRGenerator) GeneratePRContent(ctx context.Context, prompt string) (models.BotResponse, error) {
	log := logger.FromContext(ctx)

	log.Info("generating PR content via gemini",
		"prompt_length", len(prompt))

	text, usage, err := g.generateWithFallback(ctx, prompt)
	if err != nil {
		log.Error("failed to generate PR content", "error", err)
		return models.BotResponse{}, err
	}

	text = ExtractJSON(text)

	var response models.BotResponse
	if err := json.Unmarshal([]byte(text), &response); err != nil {
		return models.BotResponse{}, domainErrors.ErrInvalidAIOutput.
			WithContext("reason", "failed to parse JSON").
			WithContext("preview", preview(text)).
			WithError(err)
	}

	response.Summary = ai.Truncate(ai.SanitizeMarkdown(response.Summary), ai.MaxSummaryLen)
	response.Changelog = ai.Truncate(ai.SanitizeMarkdown(response.Changelog), ai.MaxChangelogLen)
	response.Usage = usage

	if response.Summary == "" {
		return models.BotResponse{}, domainErrors.ErrEmptySummary.
			WithContext("preview", preview(text))
	}
	if !response.SkipChangelog && !strings.Contains(response.Changelog, "- ") {
		return models.BotResponse{}, domainErrors.ErrNoChangelogBullets.
			WithContext("preview", preview(text))
	}

	log.Info("PR content generated successfully",
		"skip_changelog", response.SkipChangelog)

	return response, nil
}

func preview(text string) string {
	if len(text) > 500 {
		return text[:500] + "..."
	}
	return text
}
