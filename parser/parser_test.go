package parser

import (
	"testing"

	"github.com/ales-tsurko/colly-go/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	file, err := Parse(src)
	require.NoError(t, err)
	require.NotNil(t, file)
	return file
}

func onePatternExpr(t *testing.T, file *ast.File) ast.PatternExpression {
	t.Helper()
	require.Len(t, file.Statements, 1)
	st := file.Statements[0]
	require.Equal(t, ast.StatementSuperExpression, st.Kind)
	require.Equal(t, ast.SuperExpressionPlain, st.SuperExpr.Kind)
	require.Equal(t, ast.ExpressionPatternSuperExpression, st.SuperExpr.Expression.Kind)
	pse := st.SuperExpr.Expression.PatternSuperExpression
	require.Len(t, pse.Expressions, 1)
	return pse.Expressions[0]
}

func TestParse_SimplePattern_TwoNoteGroupThenSingleNote(t *testing.T) {
	file := mustParse(t, "| 01 2 |")
	pe := onePatternExpr(t, file)
	require.Len(t, pe.Pattern.Beats, 2)

	beat0 := pe.Pattern.Beats[0]
	require.Len(t, beat0.Events, 1)
	ev01 := beat0.Events[0]
	require.Equal(t, ast.EventGroup, ev01.Kind)
	require.Len(t, ev01.Atoms, 2)
	assert.Equal(t, ast.AtomNote, ev01.Atoms[0].Value.Kind)
	assert.Equal(t, uint64(0), ev01.Atoms[0].Value.Pitch)
	assert.Equal(t, uint64(1), ev01.Atoms[1].Value.Pitch)

	ev2 := pe.Pattern.Beats[1].Events[0]
	require.Len(t, ev2.Atoms, 1)
	assert.Equal(t, uint64(2), ev2.Atoms[0].Value.Pitch)
}

func TestParse_EventMethodsOnAGroup(t *testing.T) {
	file := mustParse(t, "| a*._: |")
	pe := onePatternExpr(t, file)
	beat := pe.Pattern.Beats[0]
	require.Len(t, beat.Events, 1)
	group := beat.Events[0]
	// "_" is a Tie atom, not a method: "a*." is one atom and "_:" another.
	require.Len(t, group.Atoms, 2)
	atom := group.Atoms[0]
	assert.Equal(t, uint64(0xa), atom.Value.Pitch)
	require.Len(t, atom.Methods, 2)
	assert.Equal(t, ast.MethodMultiply, atom.Methods[0])
	assert.Equal(t, ast.MethodDot, atom.Methods[1])
	tie := group.Atoms[1]
	assert.Equal(t, ast.AtomTie, tie.Value.Kind)
	assert.Equal(t, []ast.EventMethod{ast.MethodDivide}, tie.Methods)
}

func TestParse_Alterations(t *testing.T) {
	file := mustParse(t, "| ++a-+--b |")
	pe := onePatternExpr(t, file)
	group := pe.Pattern.Beats[0].Events[0]
	require.Len(t, group.Atoms, 2)

	a := group.Atoms[0].Value
	assert.Equal(t, uint64(0xa), a.Pitch)
	assert.Equal(t, []ast.Direction{ast.Up, ast.Up}, a.Alterations)

	b := group.Atoms[1].Value
	assert.Equal(t, uint64(0xb), b.Pitch)
	assert.Equal(t, []ast.Direction{ast.Down, ast.Up, ast.Down, ast.Down}, b.Alterations)
}

func TestParse_ParenthesisedSubdivision(t *testing.T) {
	file := mustParse(t, "| 0(11 1)00 |")
	pe := onePatternExpr(t, file)
	beat := pe.Pattern.Beats[0]
	require.Len(t, beat.Events, 3)

	assert.Equal(t, ast.EventGroup, beat.Events[0].Kind)
	assert.Equal(t, uint64(0), beat.Events[0].Atoms[0].Value.Pitch)

	paren := beat.Events[1]
	require.Equal(t, ast.EventParenthesised, paren.Kind)
	require.Len(t, paren.Inner, 2)
	assert.Equal(t, uint64(1), paren.Inner[0].Events[0].Atoms[0].Value.Pitch)
	assert.Equal(t, uint64(1), paren.Inner[0].Events[0].Atoms[1].Value.Pitch)
	assert.Equal(t, uint64(1), paren.Inner[1].Events[0].Atoms[0].Value.Pitch)

	last := beat.Events[2]
	assert.Equal(t, ast.EventGroup, last.Kind)
	require.Len(t, last.Atoms, 2)
}

func TestParse_ChordsWithTiesAcrossVoices(t *testing.T) {
	file := mustParse(t, "| [ 0 2 4 ] [ _ r ] [ _ _ r ] 1 |")
	pe := onePatternExpr(t, file)
	// Whitespace separates beats: each chord, and the final note, is its own beat.
	require.Len(t, pe.Pattern.Beats, 4)

	chord0 := pe.Pattern.Beats[0].Events[0]
	require.Equal(t, ast.EventChord, chord0.Kind)
	require.Len(t, chord0.Inner, 3)
	assert.Equal(t, uint64(0), chord0.Inner[0].Events[0].Atoms[0].Value.Pitch)
	assert.Equal(t, uint64(2), chord0.Inner[1].Events[0].Atoms[0].Value.Pitch)
	assert.Equal(t, uint64(4), chord0.Inner[2].Events[0].Atoms[0].Value.Pitch)

	chord1 := pe.Pattern.Beats[1].Events[0]
	require.Len(t, chord1.Inner, 2)
	assert.Equal(t, ast.AtomTie, chord1.Inner[0].Events[0].Atoms[0].Value.Kind)
	assert.Equal(t, ast.AtomPause, chord1.Inner[1].Events[0].Atoms[0].Value.Kind)

	chord2 := pe.Pattern.Beats[2].Events[0]
	require.Len(t, chord2.Inner, 3)
	assert.Equal(t, ast.AtomTie, chord2.Inner[0].Events[0].Atoms[0].Value.Kind)
	assert.Equal(t, ast.AtomTie, chord2.Inner[1].Events[0].Atoms[0].Value.Kind)
	assert.Equal(t, ast.AtomPause, chord2.Inner[2].Events[0].Atoms[0].Value.Kind)

	last := pe.Pattern.Beats[3].Events[0]
	assert.Equal(t, ast.EventGroup, last.Kind)
	assert.Equal(t, uint64(1), last.Atoms[0].Value.Pitch)
}

func TestParse_TwoBeatsOfChordsWithTieAndPause(t *testing.T) {
	file := mustParse(t, "| [ 0 2 ] [ _ r _ ] |")
	pe := onePatternExpr(t, file)
	require.Len(t, pe.Pattern.Beats, 2)

	chord0 := pe.Pattern.Beats[0].Events[0]
	require.Len(t, chord0.Inner, 2)

	chord1 := pe.Pattern.Beats[1].Events[0]
	require.Len(t, chord1.Inner, 3)
	assert.Equal(t, ast.AtomTie, chord1.Inner[0].Events[0].Atoms[0].Value.Kind)
	assert.Equal(t, ast.AtomPause, chord1.Inner[1].Events[0].Atoms[0].Value.Kind)
	assert.Equal(t, ast.AtomTie, chord1.Inner[2].Events[0].Atoms[0].Value.Kind)
}

func TestParse_VariableAssignment(t *testing.T) {
	file := mustParse(t, ":x = 5")
	require.Len(t, file.Statements, 1)
	assign := file.Statements[0].Assignment
	require.NotNil(t, assign)
	assert.Equal(t, ast.AssignmentVariable, assign.Kind)
	assert.Equal(t, ast.Ident("x"), assign.VariableName)
	require.NotNil(t, assign.VariableRHS)
	assert.Equal(t, ast.ExpressionNumber, assign.VariableRHS.Expression.Kind)
	assert.Equal(t, 5.0, assign.VariableRHS.Expression.Number)
}

func TestParse_PatternAssignmentToSlot(t *testing.T) {
	file := mustParse(t, "$1@0 | 0 1 |")
	assign := file.Statements[0].Assignment
	require.NotNil(t, assign)
	assert.Equal(t, ast.AssignmentPattern, assign.Kind)
	require.NotNil(t, assign.Assignee)
	assert.Equal(t, ast.ExpressionPatternSlot, assign.Assignee.Kind)
	assert.Equal(t, uint64(1), assign.Assignee.Track)
	assert.Equal(t, uint64(0), assign.Assignee.Slot)
	require.NotNil(t, assign.PatternRHS)
	require.Len(t, assign.PatternRHS.Expressions, 1)
}

func TestParse_MethodCallChain(t *testing.T) {
	file := mustParse(t, ":x reverse transpose")
	st := file.Statements[0]
	require.Equal(t, ast.StatementSuperExpression, st.Kind)
	require.Equal(t, ast.SuperExpressionMethodCall, st.SuperExpr.Kind)
	mc := st.SuperExpr.MethodCall
	assert.Equal(t, ast.ExpressionVariable, mc.Caller.Kind)
	require.Len(t, mc.Callee, 2)
	assert.Equal(t, ast.Ident("reverse"), mc.Callee[0].Name)
	assert.Equal(t, ast.Ident("transpose"), mc.Callee[1].Name)
}

func TestParse_PropertiesLiteral(t *testing.T) {
	file := mustParse(t, `:x = {volume: 0.5, name: "lead"}`)
	assign := file.Statements[0].Assignment
	props := assign.VariableRHS.Expression.Properties
	require.Len(t, props.Entries, 2)
	assert.Equal(t, ast.Ident("volume"), props.Entries[0].Key)
	assert.Equal(t, ast.Ident("name"), props.Entries[1].Key)
	assert.Equal(t, "lead", props.Entries[1].Value.SuperExpression.Expression.String)
}

func TestParse_InletAndInterpolationAtoms(t *testing.T) {
	file := mustParse(t, "| ^:x ~0 |")
	pe := onePatternExpr(t, file)
	require.Len(t, pe.Pattern.Beats, 2)
	inlet := pe.Pattern.Beats[0].Events[0]
	require.Len(t, inlet.Atoms, 1)
	assert.Equal(t, ast.AtomPatternInlet, inlet.Atoms[0].Value.Kind)
	require.NotNil(t, inlet.Atoms[0].Value.InletExpr)
	assert.Equal(t, ast.ExpressionVariable, inlet.Atoms[0].Value.InletExpr.Kind)
	group := pe.Pattern.Beats[1].Events[0]
	require.Len(t, group.Atoms, 2)
	assert.Equal(t, ast.AtomInterpolation, group.Atoms[0].Value.Kind)
}

func TestParse_ModulationAtomsSymbolicAndLiteral(t *testing.T) {
	file := mustParse(t, "| p F < > {0.5} |")
	pe := onePatternExpr(t, file)
	beats := pe.Pattern.Beats
	require.Len(t, beats, 5)

	kinds := []ast.ModulationKind{
		ast.ModulationDown,
		ast.ModulationUp,
		ast.ModulationCrescendo,
		ast.ModulationDiminuendo,
	}
	for i, want := range kinds {
		atom := beats[i].Events[0].Atoms[0].Value
		require.Equal(t, ast.AtomModulation, atom.Kind)
		assert.Equal(t, want, atom.Modulation.Kind)
	}
	literal := beats[4].Events[0].Atoms[0].Value
	assert.Equal(t, ast.ModulationLiteral, literal.Modulation.Kind)
	assert.InDelta(t, 0.5, literal.Modulation.Literal, 1e-9)
}

func TestParse_OctaveAtomDirections(t *testing.T) {
	file := mustParse(t, "| O o |")
	pe := onePatternExpr(t, file)
	beats := pe.Pattern.Beats
	require.Len(t, beats, 2)
	assert.Equal(t, ast.Up, beats[0].Events[0].Atoms[0].Value.OctaveDirection)
	assert.Equal(t, ast.Down, beats[1].Events[0].Atoms[0].Value.OctaveDirection)
}

func TestParse_RejectsUnclosedPattern(t *testing.T) {
	_, err := Parse("| 0 1")
	assert.Error(t, err)
}
