package collyassist

import "strings"

// PromptBuilder builds the system prompt sent to a Provider: each concern
// gets its own method, joined with blank lines into one system prompt.
type PromptBuilder struct{}

// NewPromptBuilder creates a new prompt builder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildPrompt builds the complete system prompt describing Colly pattern
// syntax to the model.
func (b *PromptBuilder) BuildPrompt() (string, error) {
	sections := []string{
		b.getSystemInstructions(),
		b.getGrammarReference(),
		b.getOutputFormatInstructions(),
	}
	return strings.Join(sections, "\n\n"), nil
}

func (b *PromptBuilder) getSystemInstructions() string {
	return `You are an assistant that turns a musical request into Colly pattern
source. Colly is a small textual language for live-coding musical patterns:
pitch material is addressed as scale degrees (not absolute pitches), and a
pattern is a pipe-delimited sequence of beats.

Your job is to generate a single Colly pattern expression that satisfies
the user's request. Output ONLY the pattern source, nothing else.`
}

func (b *PromptBuilder) getGrammarReference() string {
	return `## Colly pattern grammar

A pattern is written between pipes: ` + "`| ... |`" + `.

Within the pipes, whitespace always separates beats. Characters glued
together with no space share one beat (e.g. ` + "`01 2`" + ` is two beats,
` + "`012`" + ` is one beat with three notes).

Atoms:
- A hex digit (` + "`0`" + `-` + "`f`" + `) is a scale degree.
- ` + "`+`" + ` / ` + "`-`" + ` before a digit alters it up/down a half step; multiple
  alterations stack (e.g. ` + "`++a`" + `).
- ` + "`_`" + ` ties the previous voice's note across this beat.
- ` + "`r`" + ` is a rest (pause).
- ` + "`O`" + ` / ` + "`o`" + ` raises/lowers the octave register for subsequent notes.
- ` + "`[ a b c ]`" + ` is a chord: each space-separated voice sounds at the same
  instant.
- ` + "`(a b)`" + ` subdivides a beat: each space-separated group gets an equal
  share of the beat.
- A trailing ` + "`.`" + ` dots a note's duration (x1.5), ` + "`*`" + ` doubles it, ` + "`:`" + `
  halves it.
- ` + "`p`" + `/` + "`F`" + `/` + "`<`" + `/` + "`>`" + ` and ` + "`{0.5}`" + ` are modulation markers (down,
  up, crescendo, diminuendo, literal amount).

Every pattern must be syntactically closed with a trailing pipe and must
not contain a tie (` + "`_`" + `) as the very first atom, nor more tied voices than
the immediately preceding chord had.`
}

func (b *PromptBuilder) getOutputFormatInstructions() string {
	return `## Output format

Respond with exactly one line of Colly pattern source, piped on both
ends, and nothing else: no prose, no code fences, no explanation.`
}

// buildRetryPrompt appends a validation failure to the user prompt, asking
// the model to correct its own output.
func buildRetryPrompt(original, badSource, parseErr string) string {
	var b strings.Builder
	b.WriteString(original)
	b.WriteString("\n\nYour previous answer did not parse:\n")
	b.WriteString(badSource)
	b.WriteString("\n\nParser error: ")
	b.WriteString(parseErr)
	b.WriteString("\n\nReturn a corrected pattern, following the same output format.")
	return b.String()
}
