package collyassist

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const providerNameGemini = "gemini"

// GeminiProvider implements Provider using Google's Gemini API: a single
// system-instruction-plus-single-turn-content call, with no structured-
// output schema or streaming since collyassist only ever wants plain text
// back.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Generate sends systemPrompt/userPrompt to the Gemini API and returns the
// raw text output.
func (p *GeminiProvider) Generate(ctx context.Context, systemPrompt, userPrompt, model string) (string, Usage, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: userPrompt}}},
	}

	result, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", Usage{}, fmt.Errorf("gemini request failed: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", Usage{}, fmt.Errorf("gemini response did not include any output text")
	}

	text := result.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", Usage{}, fmt.Errorf("gemini response did not include any output text")
	}

	var usage Usage
	if result.UsageMetadata != nil {
		usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return text, usage, nil
}
