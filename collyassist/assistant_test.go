package collyassist

import (
	"context"
	"testing"

	"github.com/ales-tsurko/colly-go/clock"
	"github.com/ales-tsurko/colly-go/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSource_StripsCodeFence(t *testing.T) {
	got := sanitizeSource("```colly\n| 0 1 |\n```")
	assert.Equal(t, "| 0 1 |", got)
}

func TestExtractPattern_ValidSource(t *testing.T) {
	p, err := extractPattern("| 0 1 2 |")
	require.NoError(t, err)
	assert.Len(t, p.Beats, 3)
}

func TestExtractPattern_NoPatternExpression(t *testing.T) {
	_, err := extractPattern(":x = 5")
	require.Error(t, err)
}

// scriptedProvider returns its responses in order, one per call, so tests
// can exercise the assistant's retry-once behavior without an API key.
type scriptedProvider struct {
	name      string
	responses []string
	calls     int
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) Generate(_ context.Context, _, _, _ string) (string, Usage, error) {
	out := p.responses[p.calls]
	p.calls++
	return out, Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, nil
}

func newTestAssistant() *Assistant {
	return &Assistant{
		prompt:  NewPromptBuilder(),
		metrics: metrics.NewSentryMetrics(),
		model:   defaultModel,
		clock:   clock.New(16),
	}
}

func TestAssistant_RetriesOnceOnParseError(t *testing.T) {
	p := &scriptedProvider{name: "stub", responses: []string{"not colly at all", "| 0 1 |"}}
	a := newTestAssistant()

	source, pat, err := a.generateWithProvider(context.Background(), p, "a simple two note pattern")
	require.NoError(t, err)
	assert.Equal(t, "| 0 1 |", source)
	require.NotNil(t, pat)
	assert.Equal(t, 2, p.calls)
}

func TestAssistant_GivesUpAfterOneRetry(t *testing.T) {
	p := &scriptedProvider{name: "stub", responses: []string{"nope", "still nope"}}
	a := newTestAssistant()

	_, _, err := a.generateWithProvider(context.Background(), p, "anything")
	require.Error(t, err)
	assert.Equal(t, 2, p.calls)
}

func TestAssistant_SucceedsFirstTry(t *testing.T) {
	p := &scriptedProvider{name: "stub", responses: []string{"| 0 1 2 |"}}
	a := newTestAssistant()

	source, pat, err := a.generateWithProvider(context.Background(), p, "three notes")
	require.NoError(t, err)
	assert.Equal(t, "| 0 1 2 |", source)
	require.NotNil(t, pat)
	assert.Equal(t, 1, p.calls)
}
