// Package collyerr defines the error kinds produced by the grammar, AST
// builder, and pattern interpreter. Every error carries whatever span or
// beat-index payload it has; none of them are bare errors.New values so a
// caller can errors.As its way back to the payload.
package collyerr

import "fmt"

// Span identifies a byte range in source text.
type Span struct {
	Start int
	End   int
}

// ParseError is a grammar violation encountered by the parser.
type ParseError struct {
	Msg  string
	Span Span
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d-%d: %s", e.Span.Start, e.Span.End, e.Msg)
}

// BadChildError means the AST builder found a rule whose inner shape did
// not match what the grammar should guarantee. It should never occur in a
// correctly paired grammar/builder; seeing one means the two have drifted.
type BadChildError struct {
	Rule string
	Span Span
}

func (e *BadChildError) Error() string {
	return fmt.Sprintf("bad child for rule %q at %d-%d", e.Rule, e.Span.Start, e.Span.End)
}

// InterpretRuleError is a lowering failure for a specific pattern construct.
type InterpretRuleError struct {
	Rule   string
	Detail string
}

func (e *InterpretRuleError) Error() string {
	return fmt.Sprintf("cannot interpret %s: %s", e.Rule, e.Detail)
}

// LonelyTieError is a tie with nothing behind it to prolong: either the
// first arranged group of the pattern, or an overflow voice in a chord
// with no corresponding voice in the previous group.
type LonelyTieError struct {
	Beat uint64
}

func (e *LonelyTieError) Error() string {
	return fmt.Sprintf("lonely tie at beat %d", e.Beat)
}

// NumericLiteralError means a hex pitch digit failed to parse. The grammar
// should guard against this; seeing one signals an internal inconsistency
// rather than a user mistake.
type NumericLiteralError struct {
	Literal string
}

func (e *NumericLiteralError) Error() string {
	return fmt.Sprintf("invalid numeric literal %q", e.Literal)
}
