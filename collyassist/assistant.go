package collyassist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ales-tsurko/colly-go/ast"
	"github.com/ales-tsurko/colly-go/clock"
	"github.com/ales-tsurko/colly-go/collyerr"
	"github.com/ales-tsurko/colly-go/config"
	"github.com/ales-tsurko/colly-go/interpreter"
	"github.com/ales-tsurko/colly-go/metrics"
	"github.com/ales-tsurko/colly-go/parser"
	"github.com/ales-tsurko/colly-go/pattern"
)

const defaultModel = "gpt-4.1-mini"

// Assistant generates Colly pattern source from a natural-language request
// and validates it against this repository's own parser/interpreter before
// returning it: parser.Parse is the only grammar engine a generated
// pattern ever runs through.
type Assistant struct {
	factory *ProviderFactory
	prompt  *PromptBuilder
	metrics *metrics.SentryMetrics
	model   string
	clock   *clock.Clock
}

// NewAssistant creates an Assistant from cfg, using cfg's API keys to
// build a ProviderFactory and cfg's resolution/tempo defaults to build the
// clock that anchors every pattern it interprets.
func NewAssistant(cfg config.Config) *Assistant {
	clk := clock.New(cfg.ResolutionOrDefault())
	clk.SetTempo(cfg.TempoOrDefault())
	return &Assistant{
		factory: NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey),
		prompt:  NewPromptBuilder(),
		metrics: metrics.NewSentryMetrics(),
		model:   defaultModel,
		clock:   clk,
	}
}

// GeneratePattern asks the configured provider for Colly source satisfying
// request, parses and interprets it, and retries once with the parser's
// error appended to the prompt if the first attempt does not parse.
func (a *Assistant) GeneratePattern(ctx context.Context, request string) (string, *pattern.Pattern, error) {
	provider, err := a.factory.GetProvider(ctx, a.model, "")
	if err != nil {
		return "", nil, fmt.Errorf("collyassist: %w", err)
	}
	return a.generateWithProvider(ctx, provider, request)
}

// generateWithProvider runs the validation loop against an already-resolved
// provider, split out of GeneratePattern so it can be exercised with a
// stub Provider in tests without a real factory/API key.
func (a *Assistant) generateWithProvider(ctx context.Context, provider Provider, request string) (string, *pattern.Pattern, error) {
	systemPrompt, err := a.prompt.BuildPrompt()
	if err != nil {
		return "", nil, fmt.Errorf("collyassist: %w", err)
	}

	userPrompt := request
	var lastSource string
	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		start := time.Now()
		text, usage, err := provider.Generate(ctx, systemPrompt, userPrompt, a.model)
		a.metrics.RecordGenerationDuration(ctx, time.Since(start), err == nil)
		if err != nil {
			return "", nil, fmt.Errorf("collyassist: %w", err)
		}
		a.metrics.RecordAssistantCall(ctx, provider.Name(), a.model, usage.InputTokens, usage.OutputTokens)
		a.metrics.RecordTokenUsage(ctx, a.model, usage.TotalTokens, usage.InputTokens, usage.OutputTokens, 0)

		source := sanitizeSource(text)
		astPattern, parseErr := extractPattern(source)
		a.metrics.RecordParsePattern(ctx, source, len(astPattern.Beats), parseErr)
		if parseErr != nil {
			lastSource, lastErr = source, parseErr
			userPrompt = buildRetryPrompt(request, source, parseErr.Error())
			continue
		}

		pat, interpErr := interpreter.InterpretPattern(astPattern, a.clock.StartAnchor(), a.clock.Resolution())
		if interpErr != nil {
			lastSource, lastErr = source, interpErr
			userPrompt = buildRetryPrompt(request, source, interpErr.Error())
			continue
		}

		return source, pat, nil
	}

	return lastSource, nil, fmt.Errorf("collyassist: generated source did not validate: %w", lastErr)
}

// sanitizeSource strips the code-fence wrapping models sometimes add
// despite the prompt's "nothing else" instruction.
func sanitizeSource(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```colly")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extractPattern parses source and returns the ast.Pattern carried by its
// first pattern expression.
func extractPattern(source string) (ast.Pattern, error) {
	file, err := parser.Parse(source)
	if err != nil {
		return ast.Pattern{}, err
	}
	for _, st := range file.Statements {
		if st.Kind != ast.StatementSuperExpression || st.SuperExpr == nil {
			continue
		}
		expr := st.SuperExpr.Expression
		if expr == nil || expr.Kind != ast.ExpressionPatternSuperExpression {
			continue
		}
		pse := expr.PatternSuperExpression
		if pse == nil || len(pse.Expressions) == 0 {
			continue
		}
		return pse.Expressions[0].Pattern, nil
	}
	return ast.Pattern{}, &collyerr.InterpretRuleError{
		Rule:   "AssistantOutput",
		Detail: "response did not contain a pattern expression",
	}
}
