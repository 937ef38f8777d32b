// Package clock carries the tempo and cursor the pattern interpreter reads
// as its start anchor.
package clock

import "github.com/ales-tsurko/colly-go/cursor"

// MinBPM and MaxBPM are the tempo clamp bounds.
const (
	MinBPM = 27.0
	MaxBPM = 200.0
)

// DefaultTempo is the tempo a freshly constructed Clock starts at.
const DefaultTempo = 117.0

// Clock carries a clamped tempo and a monotonically advancing cursor.
type Clock struct {
	tempo  float64
	Cursor *cursor.Cursor
}

// New creates a Clock at DefaultTempo with the given resolution.
func New(resolution uint64) *Clock {
	return &Clock{tempo: DefaultTempo, Cursor: cursor.New(resolution)}
}

// Tempo returns the clock's current BPM.
func (c *Clock) Tempo() float64 {
	return c.tempo
}

// SetTempo clamps tempo to [MinBPM, MaxBPM] before storing it.
func (c *Clock) SetTempo(bpm float64) {
	if bpm < MinBPM {
		bpm = MinBPM
	}
	if bpm > MaxBPM {
		bpm = MaxBPM
	}
	c.tempo = bpm
}

// StartAnchor returns the clock's current cursor position, which the
// pattern interpreter uses as the start position for a newly lowered
// pattern.
func (c *Clock) StartAnchor() cursor.Position {
	return c.Cursor.Position
}

// Resolution returns the ticks-per-beat the clock's cursor uses.
func (c *Clock) Resolution() uint64 {
	return c.Cursor.Resolution
}
