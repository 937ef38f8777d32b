package parser

import (
	"strconv"

	"github.com/ales-tsurko/colly-go/ast"
	"github.com/ales-tsurko/colly-go/collyerr"
)

// Build lowers a raw rule-tagged tree produced by ParseTree into the typed
// ast.File. Every BadChildError/NumericLiteralError it raises signals that
// the grammar and this builder have drifted out of sync with each other —
// it should never be reachable from valid grammar output.
func Build(root *Node) (*ast.File, error) {
	if root.Rule != RuleFile {
		return nil, badChild(root)
	}
	file := &ast.File{}
	for _, st := range root.Children {
		stmt, err := buildStatement(st)
		if err != nil {
			return nil, err
		}
		file.Statements = append(file.Statements, *stmt)
	}
	return file, nil
}

func badChild(n *Node) error {
	return &collyerr.BadChildError{Rule: string(n.Rule), Span: collyerr.Span{Start: n.Span.Start, End: n.Span.End}}
}

func assertRule(n *Node, rule Rule) error {
	if n == nil || n.Rule != rule {
		if n == nil {
			return &collyerr.BadChildError{Rule: string(rule)}
		}
		return badChild(n)
	}
	return nil
}

func buildStatement(n *Node) (*ast.Statement, error) {
	if err := assertRule(n, RuleStatement); err != nil {
		return nil, err
	}
	inner := n.firstChild()
	if inner == nil {
		return nil, badChild(n)
	}
	switch inner.Rule {
	case RuleAssignStatement:
		assign, err := buildAssignment(inner.firstChild())
		if err != nil {
			return nil, err
		}
		return &ast.Statement{Kind: ast.StatementAssignment, Assignment: assign}, nil
	case RuleSuperExpression:
		super, err := buildSuperExpression(inner)
		if err != nil {
			return nil, err
		}
		return &ast.Statement{Kind: ast.StatementSuperExpression, SuperExpr: super}, nil
	default:
		return nil, badChild(inner)
	}
}

func buildAssignment(n *Node) (*ast.Assignment, error) {
	if n == nil {
		return nil, &collyerr.BadChildError{Rule: "Assignment"}
	}
	switch n.Rule {
	case RuleVariableAssignment:
		if len(n.Children) != 2 {
			return nil, badChild(n)
		}
		variable, err := buildVariableIdent(n.Children[0])
		if err != nil {
			return nil, err
		}
		rhs, err := buildSuperExpression(n.Children[1])
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Kind: ast.AssignmentVariable, VariableName: variable, VariableRHS: rhs}, nil

	case RulePatternAssignment:
		if len(n.Children) != 2 {
			return nil, badChild(n)
		}
		assignee, err := buildExpression(&Node{Rule: RuleExpression, Span: n.Children[0].Span, Children: []*Node{n.Children[0]}})
		if err != nil {
			return nil, err
		}
		rhs, err := buildPatternSuperExpression(n.Children[1])
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Kind: ast.AssignmentPattern, Assignee: assignee, PatternRHS: rhs}, nil

	case RulePropertiesAssignment:
		if len(n.Children) != 2 {
			return nil, badChild(n)
		}
		assignee, err := buildExpression(wrapExpression(n.Children[0]))
		if err != nil {
			return nil, err
		}
		props, err := buildProperties(n.Children[1])
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Kind: ast.AssignmentProperties, Assignee: assignee, PropertiesRHS: props}, nil

	default:
		return nil, badChild(n)
	}
}

// wrapExpression wraps a raw base-expression node (Variable, Track,
// PatternSlot, ...) or an already-wrapped SuperExpression/Expression node
// into a canonical Expression node, since the grammar's LHS positions
// (PropertiesAssignment's SuperExpression, PatternAssignment's slot) don't
// always arrive pre-wrapped the same way.
func wrapExpression(n *Node) *Node {
	switch n.Rule {
	case RuleExpression:
		return n
	case RuleSuperExpression:
		inner := n.firstChild()
		if inner != nil && inner.Rule == RuleExpression {
			return inner
		}
		return &Node{Rule: RuleExpression, Span: n.Span, Children: []*Node{n}}
	default:
		return &Node{Rule: RuleExpression, Span: n.Span, Children: []*Node{n}}
	}
}

func buildVariableIdent(n *Node) (ast.Ident, error) {
	if err := assertRule(n, RuleVariable); err != nil {
		return "", err
	}
	id := n.firstChild()
	if err := assertRule(id, RuleIdentifier); err != nil {
		return "", err
	}
	return ast.Ident(id.Text), nil
}

func buildSuperExpression(n *Node) (*ast.SuperExpression, error) {
	if err := assertRule(n, RuleSuperExpression); err != nil {
		return nil, err
	}
	inner := n.firstChild()
	if inner == nil {
		return nil, badChild(n)
	}
	switch inner.Rule {
	case RuleMethodCall:
		mc, err := buildMethodCall(inner)
		if err != nil {
			return nil, err
		}
		return &ast.SuperExpression{Kind: ast.SuperExpressionMethodCall, MethodCall: mc}, nil
	case RuleExpression:
		expr, err := buildExpression(inner)
		if err != nil {
			return nil, err
		}
		return &ast.SuperExpression{Kind: ast.SuperExpressionPlain, Expression: expr}, nil
	default:
		return nil, badChild(inner)
	}
}

func buildMethodCall(n *Node) (*ast.MethodCall, error) {
	if err := assertRule(n, RuleMethodCall); err != nil {
		return nil, err
	}
	if len(n.Children) < 2 {
		return nil, badChild(n)
	}
	caller, err := buildExpression(n.Children[0])
	if err != nil {
		return nil, err
	}
	var callees []ast.FunctionCall
	for _, c := range n.Children[1:] {
		fc, err := buildFunctionCall(c)
		if err != nil {
			return nil, err
		}
		callees = append(callees, *fc)
	}
	return &ast.MethodCall{Caller: *caller, Callee: callees}, nil
}

func buildFunctionCall(n *Node) (*ast.FunctionCall, error) {
	if err := assertRule(n, RuleFunctionCall); err != nil {
		return nil, err
	}
	if len(n.Children) == 0 {
		return nil, badChild(n)
	}
	name := n.Children[0]
	if err := assertRule(name, RuleIdentifier); err != nil {
		return nil, err
	}
	fc := &ast.FunctionCall{Name: ast.Ident(name.Text)}
	for _, arg := range n.Children[1:] {
		expr, err := buildExpression(arg)
		if err != nil {
			return nil, err
		}
		fc.Args = append(fc.Args, *expr)
	}
	return fc, nil
}

func buildExpression(n *Node) (*ast.Expression, error) {
	if err := assertRule(n, RuleExpression); err != nil {
		return nil, err
	}
	inner := n.firstChild()
	if inner == nil {
		return nil, badChild(n)
	}

	if inner.Rule == RulePropertyGetter {
		if len(inner.Children) < 2 {
			return nil, badChild(inner)
		}
		base, err := buildExpression(wrapExpression(inner.Children[0]))
		if err != nil {
			return nil, err
		}
		var path []ast.Ident
		for _, p := range inner.Children[1:] {
			if err := assertRule(p, RuleIdentifier); err != nil {
				return nil, err
			}
			path = append(path, ast.Ident(p.Text))
		}
		return &ast.Expression{Kind: ast.ExpressionPropertyGetter, PropertyAssignee: base, PropertyPath: path}, nil
	}

	return buildBaseExpression(inner)
}

func buildBaseExpression(n *Node) (*ast.Expression, error) {
	switch n.Rule {
	case RuleBoolean:
		return &ast.Expression{Kind: ast.ExpressionBoolean, Boolean: n.Text == "true"}, nil

	case RuleNumber:
		val, err := strconv.ParseFloat(n.Text, 64)
		if err != nil {
			return nil, &collyerr.NumericLiteralError{Literal: n.Text}
		}
		return &ast.Expression{Kind: ast.ExpressionNumber, Number: val}, nil

	case RuleString:
		return &ast.Expression{Kind: ast.ExpressionString, String: stringLiteralValue(n.Text)}, nil

	case RuleVariable:
		id, err := buildVariableIdent(n)
		if err != nil {
			return nil, err
		}
		return &ast.Expression{Kind: ast.ExpressionVariable, Variable: id}, nil

	case RulePatternSlot:
		if len(n.Children) != 2 {
			return nil, badChild(n)
		}
		track, err := parseTrackNode(n.Children[0])
		if err != nil {
			return nil, err
		}
		slot, err := strconv.ParseUint(n.Children[1].Text, 10, 64)
		if err != nil {
			return nil, &collyerr.NumericLiteralError{Literal: n.Children[1].Text}
		}
		return &ast.Expression{Kind: ast.ExpressionPatternSlot, Track: track, Slot: slot}, nil

	case RuleTrack:
		track, err := parseTrackNode(n)
		if err != nil {
			return nil, err
		}
		return &ast.Expression{Kind: ast.ExpressionTrack, Track: track}, nil

	case RuleMixer:
		return &ast.Expression{Kind: ast.ExpressionMixer}, nil

	case RuleProperties:
		props, err := buildProperties(n)
		if err != nil {
			return nil, err
		}
		return &ast.Expression{Kind: ast.ExpressionProperties, Properties: *props}, nil

	case RuleArray:
		var items []ast.SuperExpression
		for _, c := range n.Children {
			se, err := buildSuperExpression(c)
			if err != nil {
				return nil, err
			}
			items = append(items, *se)
		}
		return &ast.Expression{Kind: ast.ExpressionArray, Array: items}, nil

	case RuleFunctionCall:
		fc, err := buildFunctionCall(n)
		if err != nil {
			return nil, err
		}
		return &ast.Expression{Kind: ast.ExpressionFunctionCall, FunctionCall: fc}, nil

	case RulePatternSuperExpression:
		pse, err := buildPatternSuperExpression(n)
		if err != nil {
			return nil, err
		}
		return &ast.Expression{Kind: ast.ExpressionPatternSuperExpression, PatternSuperExpression: pse}, nil

	default:
		return nil, badChild(n)
	}
}

func parseTrackNode(n *Node) (uint64, error) {
	if err := assertRule(n, RuleTrack); err != nil {
		return 0, err
	}
	num := n.firstChild()
	if err := assertRule(num, RuleNumber); err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(num.Text, 10, 64)
	if err != nil {
		return 0, &collyerr.NumericLiteralError{Literal: num.Text}
	}
	return v, nil
}

func stringLiteralValue(text string) string {
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		return text[1 : len(text)-1]
	}
	return text
}

func buildProperties(n *Node) (*ast.Properties, error) {
	if err := assertRule(n, RuleProperties); err != nil {
		return nil, err
	}
	props := &ast.Properties{}
	for _, entry := range n.Children {
		if err := assertRule(entry, RulePropertyEntry); err != nil {
			return nil, err
		}
		if len(entry.Children) != 2 {
			return nil, badChild(entry)
		}
		key := entry.Children[0]
		if err := assertRule(key, RuleIdentifier); err != nil {
			return nil, err
		}
		value, err := buildPropertyValue(entry.Children[1])
		if err != nil {
			return nil, err
		}
		props.Entries = append(props.Entries, ast.PropertyEntry{Key: ast.Ident(key.Text), Value: *value})
	}
	return props, nil
}

func buildPropertyValue(n *Node) (*ast.PropertyValue, error) {
	switch n.Rule {
	case RulePatternExpression:
		pe, err := buildPatternExpression(n)
		if err != nil {
			return nil, err
		}
		return &ast.PropertyValue{Kind: ast.PropertyValuePatternExpression, PatternExpr: pe}, nil
	case RuleSuperExpression:
		se, err := buildSuperExpression(n)
		if err != nil {
			return nil, err
		}
		return &ast.PropertyValue{Kind: ast.PropertyValueSuperExpression, SuperExpression: se}, nil
	default:
		return nil, badChild(n)
	}
}

func buildPatternSuperExpression(n *Node) (*ast.PatternSuperExpression, error) {
	if err := assertRule(n, RulePatternSuperExpression); err != nil {
		return nil, err
	}
	pse := &ast.PatternSuperExpression{}
	for _, c := range n.Children {
		pe, err := buildPatternExpression(c)
		if err != nil {
			return nil, err
		}
		pse.Expressions = append(pse.Expressions, *pe)
	}
	return pse, nil
}

func buildPatternExpression(n *Node) (*ast.PatternExpression, error) {
	if err := assertRule(n, RulePatternExpression); err != nil {
		return nil, err
	}
	pe := &ast.PatternExpression{}
	for _, c := range n.Children {
		switch c.Rule {
		case RuleBeatEvent:
			beat, err := buildBeatEvent(c)
			if err != nil {
				return nil, err
			}
			pe.Pattern.Beats = append(pe.Pattern.Beats, *beat)
		case RuleExpression:
			if pe.Input != nil {
				return nil, badChild(c)
			}
			expr, err := buildExpression(c)
			if err != nil {
				return nil, err
			}
			pe.Input = expr
		case RuleFunctionCall:
			fc, err := buildFunctionCall(c)
			if err != nil {
				return nil, err
			}
			pe.Methods = append(pe.Methods, *fc)
		case RuleProperties:
			props, err := buildProperties(c)
			if err != nil {
				return nil, err
			}
			pe.Properties = props
		default:
			return nil, badChild(c)
		}
	}
	return pe, nil
}

func buildBeatEvent(n *Node) (*ast.BeatEvent, error) {
	if err := assertRule(n, RuleBeatEvent); err != nil {
		return nil, err
	}
	beat := &ast.BeatEvent{}
	for _, c := range n.Children {
		ev, err := buildEvent(c)
		if err != nil {
			return nil, err
		}
		beat.Events = append(beat.Events, *ev)
	}
	return beat, nil
}

func buildEvent(n *Node) (*ast.Event, error) {
	switch n.Rule {
	case RuleGroup:
		atoms, err := buildAtoms(n.Children)
		if err != nil {
			return nil, err
		}
		return &ast.Event{Kind: ast.EventGroup, Atoms: atoms}, nil

	case RuleChord, RuleParenthesisedEvent:
		var inner []ast.BeatEvent
		var methods []ast.EventMethod
		for _, c := range n.Children {
			if c.Rule == RuleBeatEvent {
				beat, err := buildBeatEvent(c)
				if err != nil {
					return nil, err
				}
				inner = append(inner, *beat)
				continue
			}
			if c.Rule == RuleEventMethod {
				m, err := buildEventMethod(c)
				if err != nil {
					return nil, err
				}
				methods = append(methods, m)
				continue
			}
			return nil, badChild(c)
		}
		kind := ast.EventChord
		if n.Rule == RuleParenthesisedEvent {
			kind = ast.EventParenthesised
		}
		return &ast.Event{Kind: kind, Inner: inner, Methods: methods}, nil

	default:
		return nil, badChild(n)
	}
}

func buildAtoms(nodes []*Node) ([]ast.PatternAtom, error) {
	var atoms []ast.PatternAtom
	for _, n := range nodes {
		if err := assertRule(n, RulePatternAtom); err != nil {
			return nil, err
		}
		if len(n.Children) == 0 {
			return nil, badChild(n)
		}
		value, err := buildAtomValue(n.Children[0])
		if err != nil {
			return nil, err
		}
		var methods []ast.EventMethod
		for _, m := range n.Children[1:] {
			em, err := buildEventMethod(m)
			if err != nil {
				return nil, err
			}
			methods = append(methods, em)
		}
		atoms = append(atoms, ast.PatternAtom{Value: *value, Methods: methods})
	}
	return atoms, nil
}

func buildAtomValue(n *Node) (*ast.AtomValue, error) {
	switch n.Rule {
	case RuleOctave:
		dir := ast.Up
		if n.Text == "o" {
			dir = ast.Down
		}
		return &ast.AtomValue{Kind: ast.AtomOctave, OctaveDirection: dir}, nil

	case RuleTie:
		return &ast.AtomValue{Kind: ast.AtomTie}, nil

	case RulePause:
		return &ast.AtomValue{Kind: ast.AtomPause}, nil

	case RuleInlet:
		expr, err := buildExpression(n.firstChild())
		if err != nil {
			return nil, err
		}
		return &ast.AtomValue{Kind: ast.AtomPatternInlet, InletExpr: expr}, nil

	case RuleInterpolation:
		return &ast.AtomValue{Kind: ast.AtomInterpolation}, nil

	case RuleModulation:
		mod, err := buildModulation(n)
		if err != nil {
			return nil, err
		}
		return &ast.AtomValue{Kind: ast.AtomModulation, Modulation: *mod}, nil

	case RuleNote:
		return buildNote(n)

	default:
		return nil, badChild(n)
	}
}

func buildNote(n *Node) (*ast.AtomValue, error) {
	if len(n.Children) == 0 {
		return nil, badChild(n)
	}
	var alterations []ast.Direction
	for _, c := range n.Children[:len(n.Children)-1] {
		if err := assertRule(c, RuleAlteration); err != nil {
			return nil, err
		}
		dir := ast.Up
		if c.Text == "-" {
			dir = ast.Down
		}
		alterations = append(alterations, dir)
	}
	pitchNode := n.Children[len(n.Children)-1]
	if err := assertRule(pitchNode, RuleNumber); err != nil {
		return nil, err
	}
	pitch, err := strconv.ParseUint(pitchNode.Text, 16, 64)
	if err != nil {
		return nil, &collyerr.NumericLiteralError{Literal: pitchNode.Text}
	}
	return &ast.AtomValue{Kind: ast.AtomNote, Pitch: pitch, Alterations: alterations}, nil
}

func buildEventMethod(n *Node) (ast.EventMethod, error) {
	if err := assertRule(n, RuleEventMethod); err != nil {
		return 0, err
	}
	switch n.Text {
	case ".":
		return ast.MethodDot, nil
	case "*":
		return ast.MethodMultiply, nil
	case ":":
		return ast.MethodDivide, nil
	default:
		return 0, badChild(n)
	}
}

func buildModulation(n *Node) (*ast.Modulation, error) {
	if len(n.Children) == 1 {
		num := n.Children[0]
		if err := assertRule(num, RuleNumber); err != nil {
			return nil, err
		}
		val, err := strconv.ParseFloat(num.Text, 64)
		if err != nil {
			return nil, &collyerr.NumericLiteralError{Literal: num.Text}
		}
		return &ast.Modulation{Kind: ast.ModulationLiteral, Literal: val}, nil
	}
	switch n.Text {
	case "p":
		return &ast.Modulation{Kind: ast.ModulationDown}, nil
	case "F":
		return &ast.Modulation{Kind: ast.ModulationUp}, nil
	case "<":
		return &ast.Modulation{Kind: ast.ModulationCrescendo}, nil
	case ">":
		return &ast.Modulation{Kind: ast.ModulationDiminuendo}, nil
	default:
		return nil, badChild(n)
	}
}
