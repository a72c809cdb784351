package gemini

import (
	"context"
	"strings"

	"github.com/RibirX/ribir-bot/internal/config"
	domainErrors "github.com/RibirX/ribir-bot/internal/errors"
	"github.com/RibirX/ribir-bot/internal/logger"
	"github.com/RibirX/ribir-bot/internal/models"
	"google.golang.org/genai"
)

// generateFunc lets tests stub the raw model call.
type generateFunc func(ctx context.Context, model, prompt string) (string, *models.TokenUsage, error)

// GeminiProvider wraps the genai client with a model fallback chain: when a
// model is over quota or misbehaves, the next one in the list gets a try.
type GeminiProvider struct {
	client     *genai.Client
	models     []string
	generateFn generateFunc
}

func NewClient(ctx context.Context, cfg *config.Config) (*genai.Client, error) {
	if err := cfg.ValidateForAI(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		if isAuthError(err) {
			return nil, domainErrors.ErrGeminiAPIKeyInvalid.WithError(err)
		}
		return nil, domainErrors.NewAppError(domainErrors.TypeAI, "error creating AI client", err)
	}
	return client, nil
}

func NewGeminiProvider(client *genai.Client, modelNames []string) *GeminiProvider {
	if len(modelNames) == 0 {
		modelNames = config.DefaultModels
	}
	p := &GeminiProvider{
		client: client,
		models: modelNames,
	}
	p.generateFn = p.defaultGenerate
	return p
}

func (p *GeminiProvider) defaultGenerate(ctx context.Context, model, prompt string) (string, *models.TokenUsage, error) {
	genConfig := GetGenerateConfig(model, "application/json")

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(prompt), genConfig)
	if err != nil {
		return "", nil, classifyError(err)
	}

	return formatResponse(resp), extractUsage(resp, model), nil
}

// generateWithFallback walks the model chain until one answers with
// non-empty text.
func (p *GeminiProvider) generateWithFallback(ctx context.Context, prompt string) (string, *models.TokenUsage, error) {
	log := logger.FromContext(ctx)

	var lastErr error
	for _, model := range p.models {
		text, usage, err := p.generateFn(ctx, model, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return "", nil, err
			}
			log.Warn("model failed, trying next",
				"model", model,
				"error", err)
			lastErr = err
			continue
		}
		if text == "" {
			log.Warn("model returned empty response, trying next", "model", model)
			lastErr = domainErrors.ErrInvalidAIOutput.WithContext("model", model)
			continue
		}

		log.Debug("model answered", "model", model)
		return text, usage, nil
	}

	return "", nil, domainErrors.ErrAllModelsFailed.WithError(lastErr)
}

func classifyError(err error) error {
	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "quota") ||
		strings.Contains(errMsg, "rate limit") ||
		strings.Contains(errMsg, "resource exhausted") {
		return domainErrors.ErrGeminiQuotaExceeded.WithError(err)
	}

	if isAuthError(err) {
		return domainErrors.ErrGeminiAPIKeyInvalid.WithError(err)
	}

	return domainErrors.ErrAIGeneration.WithError(err)
}

func isAuthError(err error) bool {
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "invalid") ||
		strings.Contains(errMsg, "unauthorized") ||
		strings.Contains(errMsg, "api key") ||
		strings.Contains(errMsg, "authentication")
}
