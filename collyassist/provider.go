// Package collyassist wires an LLM provider, a Colly-shaped system prompt,
// and this repository's own parser into a small assistant that proposes
// pattern source text and validates it before handing it back to the
// caller.
package collyassist

import "context"

// Usage reports the token accounting a provider call records to
// metrics.SentryMetrics.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Provider is narrowed to the single call this package needs: send a
// system/user prompt pair, get text back. OpenAIProvider and GeminiProvider
// both satisfy it.
type Provider interface {
	Name() string
	Generate(ctx context.Context, systemPrompt, userPrompt, model string) (string, Usage, error)
}
