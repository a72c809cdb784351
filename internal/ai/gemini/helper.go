package gemini

import (
	"encoding/json"
	"strings"

	"github.com/RibirX/ribir-bot/internal/models"
	"github.com/RibirX/ribir-bot/internal/regex"
	"google.golang.org/genai"
)

// extractUsage extracts usage metadata from the Gemini response
func extractUsage(resp *genai.GenerateContentResponse, model string) *models.TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	return &models.TokenUsage{
		InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		Model:        model,
	}
}

// GetGenerateConfig returns the generation configuration for the model,
// enabling Thinking Mode when the model supports it.
func GetGenerateConfig(modelName string, responseType string) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     float32Ptr(0.3),
		MaxOutputTokens: int32(10000),
	}

	if responseType == "application/json" {
		config.ResponseMIMEType = "application/json"
	}

	if strings.HasPrefix(modelName, "gemini-3") {
		config.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingLevel:   genai.ThinkingLevelHigh,
		}
	}

	return config
}

// formatResponse concatenates the text parts of the first-choice answer,
// skipping thought parts.
func formatResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// ExtractJSON attempts to extract a valid JSON object from text, handling
// markdown code blocks and the extra prose thinking models sometimes emit.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	for _, m := range regex.MarkdownJSONBlock.FindAllStringSubmatch(text, -1) {
		if len(m) > 1 {
			content := strings.TrimSpace(m[1])
			if json.Valid([]byte(content)) {
				return content
			}
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate
		}
	}

	return text
}

func float32Ptr(v float32) *float32 {
	return &v
}
