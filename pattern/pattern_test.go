package pattern

import (
	"testing"

	"github.com/ales-tsurko/colly-go/cursor"
	"github.com/ales-tsurko/colly-go/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPattern_New_DefaultsGapFillStreamsToMusicalDefaults(t *testing.T) {
	p := New(cursor.Position{}, 16)

	g, ok := p.Scale.Next()
	require.True(t, ok)
	require.Len(t, g, 1)
	assert.Equal(t, value.ChromaticScale(), g[0].Value)
}

func TestPattern_Next_ComposesDegreeWithScaleRootOctave(t *testing.T) {
	p := New(cursor.Position{}, 4)
	p.ScheduleDegree(value.Degree{Value: 0}, cursor.Position{}, 1)

	// A one-tick span puts its On and its Off event on the same tick.
	events, ok := p.Next()
	require.True(t, ok)
	require.Len(t, events, 2)
	assert.False(t, events[0].Value.IsModulation)
	assert.Equal(t, int64(60), events[0].Value.Pitch) // default root+octave
}

func TestPattern_Next_ModulationPassesThroughNameAndPayload(t *testing.T) {
	p := New(cursor.Position{}, 4)
	p.ScheduleModulation(value.Modulation{Kind: value.ModulationLiteral, Literal: 0.75}, cursor.Position{}, 1)

	// On and Off of the one-tick span, both on tick 0.
	events, ok := p.Next()
	require.True(t, ok)
	require.Len(t, events, 2)
	assert.True(t, events[0].Value.IsModulation)
	assert.Equal(t, "literal", events[0].Value.ModulationName)
	assert.InDelta(t, 0.75, events[0].Value.ModulationVal, 1e-9)
}

func TestPattern_Next_FinishesWhenNonLoopingAndEmptyAtBeatBoundary(t *testing.T) {
	p := New(cursor.Position{}, 2)
	p.ScheduleDegree(value.Degree{Value: 0}, cursor.Position{}, 2) // on at tick0, off at tick1

	_, ok := p.Next() // tick 0: on event
	require.True(t, ok)
	_, ok = p.Next() // tick 1: off event (still returns something: the off event itself)
	require.True(t, ok)

	// Now degree stream is exhausted; at the next beat boundary (tick 0)
	// with nothing scheduled, the pattern finishes.
	_, ok = p.Next()
	assert.False(t, ok)
}

func TestPattern_SetLoop_OnlyAffectsDegreeAndModulation(t *testing.T) {
	p := New(cursor.Position{}, 4)
	p.SetLoop(true)

	assert.True(t, p.Degree.Loop)
	assert.True(t, p.Modulation.Loop)
	assert.True(t, p.Scale.Loop) // always true regardless
}
