package collyassist

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const providerNameOpenAI = "openai"

// OpenAIProvider implements Provider using OpenAI's Responses API. It never
// hands the model a grammar tool; collyassist validates the raw text
// response with parser.Parse instead.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Generate sends systemPrompt/userPrompt to the Responses API and returns
// the raw text output.
func (p *OpenAIProvider) Generate(ctx context.Context, systemPrompt, userPrompt, model string) (string, Usage, error) {
	params := responses.ResponseNewParams{
		Model:        model,
		Instructions: openai.String(systemPrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(userPrompt, responses.EasyInputMessageRoleUser),
			},
		},
	}

	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return "", Usage{}, fmt.Errorf("openai request failed: %w", err)
	}

	text := resp.OutputText()
	if text == "" {
		return "", Usage{}, fmt.Errorf("openai response did not include any output text")
	}

	usage := Usage{
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
		TotalTokens:  int(resp.Usage.TotalTokens),
	}
	return text, usage, nil
}
