// Command collyc reads a .colly source file, parses and interprets each
// pattern assignment it contains, and prints the resulting event stream.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ales-tsurko/colly-go/ast"
	"github.com/ales-tsurko/colly-go/clock"
	"github.com/ales-tsurko/colly-go/cursor"
	"github.com/ales-tsurko/colly-go/eventstream"
	"github.com/ales-tsurko/colly-go/interpreter"
	"github.com/ales-tsurko/colly-go/parser"
	"github.com/ales-tsurko/colly-go/pattern"
)

// maxTicks caps how many ticks any pattern is driven for, looping or not;
// a looping Pattern.Next never reports the pattern as finished on its own.
const maxTicks = 64

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: collyc <source.colly>")
	}

	src, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("❌ ERROR: could not read %s: %v", os.Args[1], err)
	}

	file, err := parser.Parse(string(src))
	if err != nil {
		log.Fatalf("❌ parse error: %v", err)
	}

	clk := clock.New(cursor.DefaultResolution)

	for i, st := range file.Statements {
		for j, pe := range patternExpressionsIn(st) {
			fmt.Printf("━━━ statement %d, pattern %d (tempo %g bpm) ━━━\n", i, j, clk.Tempo())
			pat, err := interpreter.InterpretPattern(pe.Pattern, clk.StartAnchor(), clk.Resolution())
			if err != nil {
				log.Printf("❌ interpret error: %v", err)
				continue
			}
			printEvents(pat)
		}
	}
}

// patternExpressionsIn collects the pattern expressions a statement
// carries, whether written as a bare pattern super-expression (`| ... |`)
// or as the right-hand side of a pattern assignment (`$1@0 | ... |`).
func patternExpressionsIn(st ast.Statement) []ast.PatternExpression {
	switch st.Kind {
	case ast.StatementSuperExpression:
		if st.SuperExpr == nil || st.SuperExpr.Kind != ast.SuperExpressionPlain {
			return nil
		}
		expr := st.SuperExpr.Expression
		if expr == nil || expr.Kind != ast.ExpressionPatternSuperExpression {
			return nil
		}
		return expr.PatternSuperExpression.Expressions

	case ast.StatementAssignment:
		if st.Assignment == nil || st.Assignment.Kind != ast.AssignmentPattern || st.Assignment.PatternRHS == nil {
			return nil
		}
		return st.Assignment.PatternRHS.Expressions

	default:
		return nil
	}
}

// printEvents drives pat tick by tick, printing every On event, until the
// iterator reports it is finished or maxTicks ticks have been driven,
// whichever comes first. Events after the first maxTicks ticks are not
// printed, even for a non-looping pattern.
func printEvents(pat *pattern.Pattern) {
	for tick := 0; tick < maxTicks; tick++ {
		events, ok := pat.Next()
		if !ok {
			return
		}
		for _, e := range events {
			if e.State != eventstream.On {
				continue
			}
			if e.Value.IsModulation {
				fmt.Printf("  beat=%d tick=%d modulation=%s(%g)\n",
					e.Position.Beat, e.Position.Tick, e.Value.ModulationName, e.Value.ModulationVal)
			} else {
				fmt.Printf("  beat=%d tick=%d pitch=%d\n", e.Position.Beat, e.Position.Tick, e.Value.Pitch)
			}
		}
	}
}
