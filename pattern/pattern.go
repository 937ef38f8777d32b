// Package pattern implements the scheduled Pattern: five EventStreams
// (degree, scale, root, octave, modulation) bundled together and stepped
// tick by tick into combined Value events.
package pattern

import (
	"github.com/ales-tsurko/colly-go/cursor"
	"github.com/ales-tsurko/colly-go/eventstream"
	"github.com/ales-tsurko/colly-go/value"
)

// Pattern bundles the five scheduled streams a compiled pattern needs to
// produce its combined event stream.
type Pattern struct {
	Degree     *eventstream.Stream[value.Degree]
	Scale      *eventstream.Stream[value.Scale]
	Root       *eventstream.Stream[value.Root]
	Octave     *eventstream.Stream[value.Octave]
	Modulation *eventstream.Stream[value.Modulation]

	Start      cursor.Position
	Resolution uint64
	loop       bool
	finished   bool
}

// New creates a Pattern anchored at start with the given tick resolution.
// scale/root/octave always loop and are always gap-filled with their
// musical defaults, so they hold their last (or default) value across any
// gap rather than going silent.
func New(start cursor.Position, resolution uint64) *Pattern {
	scale := eventstream.New[value.Scale](resolution)
	scale.Loop = true
	scale.FillGaps = true
	scale.Default = value.ChromaticScale()

	root := eventstream.New[value.Root](resolution)
	root.Loop = true
	root.FillGaps = true
	root.Default = value.DefaultRoot

	octave := eventstream.New[value.Octave](resolution)
	octave.Loop = true
	octave.FillGaps = true
	octave.Default = value.DefaultOctave

	return &Pattern{
		Degree:     eventstream.New[value.Degree](resolution),
		Scale:      scale,
		Root:       root,
		Octave:     octave,
		Modulation: eventstream.New[value.Modulation](resolution),
		Start:      start,
		Resolution: resolution,
	}
}

// SetLoop propagates loop to the degree and modulation streams; scale,
// root, and octave always loop regardless.
func (p *Pattern) SetLoop(loop bool) {
	p.loop = loop
	p.Degree.Loop = loop
	p.Modulation.Loop = loop
}

// ScheduleDegree inserts an On event at position and an Off event one
// tick before position+duration into the degree stream.
func (p *Pattern) ScheduleDegree(d value.Degree, position cursor.Position, durationTicks uint64) {
	scheduleSpan(p.Degree, d, position, durationTicks, p.Resolution)
}

// ScheduleModulation schedules a modulation event the same way.
func (p *Pattern) ScheduleModulation(m value.Modulation, position cursor.Position, durationTicks uint64) {
	scheduleSpan(p.Modulation, m, position, durationTicks, p.Resolution)
}

// ScheduleScale schedules a scale change.
func (p *Pattern) ScheduleScale(s value.Scale, position cursor.Position, durationTicks uint64) {
	scheduleSpan(p.Scale, s, position, durationTicks, p.Resolution)
}

// ScheduleRoot schedules a root change.
func (p *Pattern) ScheduleRoot(r value.Root, position cursor.Position, durationTicks uint64) {
	scheduleSpan(p.Root, r, position, durationTicks, p.Resolution)
}

// ScheduleOctave schedules an octave change.
func (p *Pattern) ScheduleOctave(o value.Octave, position cursor.Position, durationTicks uint64) {
	scheduleSpan(p.Octave, o, position, durationTicks, p.Resolution)
}

func scheduleSpan[T any](s *eventstream.Stream[T], v T, position cursor.Position, durationTicks uint64, resolution uint64) {
	s.Add(eventstream.Event[T]{Value: v, Position: position, State: eventstream.On})
	if durationTicks == 0 {
		durationTicks = 1
	}
	off := position.AddTicks(durationTicks-1, resolution)
	s.Add(eventstream.Event[T]{Value: v, Position: off, State: eventstream.Off})
}

// Event is one combined output of the pattern's iteration: a resolved
// Value (pitch or modulation) at a position, with its on/off state.
type Event struct {
	Value    value.Value
	Position cursor.Position
	State    eventstream.State
}

// Next steps every stream one tick and composes their groups into the
// pattern's combined output. A nil, false result means the pattern is
// finished (only possible when non-looping).
func (p *Pattern) Next() ([]Event, bool) {
	if p.finished {
		return nil, false
	}

	atTickZero := p.Degree.Position().Tick == 0

	degreeGroup, _ := p.Degree.Next()
	modGroup, _ := p.Modulation.Next()

	if len(degreeGroup) == 0 && len(modGroup) == 0 {
		if atTickZero && !p.loop {
			p.finished = true
			return nil, false
		}
		p.Scale.Next()
		p.Root.Next()
		p.Octave.Next()
		return []Event{}, true
	}

	scaleGroup, _ := p.Scale.Next()
	rootGroup, _ := p.Root.Next()
	octGroup, _ := p.Octave.Next()

	var out []Event
	for _, mv := range modGroup {
		out = append(out, Event{
			Value:    value.NewModulationValue(mv.Value),
			Position: mv.Position,
			State:    mv.State,
		})
	}
	for i, dv := range degreeGroup {
		sc := pickScale(scaleGroup, i)
		rt := pickRoot(rootGroup, i)
		oc := pickOctave(octGroup, i)
		pitch := value.Pitch(dv.Value, sc, rt, oc)
		out = append(out, Event{
			Value:    value.NewPitchValue(pitch),
			Position: dv.Position,
			State:    dv.State,
		})
	}

	return out, true
}

func pickScale(group []eventstream.Event[value.Scale], i int) value.Scale {
	if len(group) == 0 {
		return value.ChromaticScale()
	}
	return group[i%len(group)].Value
}

func pickRoot(group []eventstream.Event[value.Root], i int) value.Root {
	if len(group) == 0 {
		return value.DefaultRoot
	}
	return group[i%len(group)].Value
}

func pickOctave(group []eventstream.Event[value.Octave], i int) value.Octave {
	if len(group) == 0 {
		return value.DefaultOctave
	}
	return group[i%len(group)].Value
}
