// Package eventstream implements Stream[T], a sorted, optionally looping,
// optionally gap-filled time series stepped tick by tick.
package eventstream

import (
	"sort"

	"github.com/ales-tsurko/colly-go/cursor"
)

// State distinguishes an event that begins a value's sounding from one
// that ends it.
type State int

const (
	On State = iota
	Off
)

// Event is a single timed occurrence of a value, on or off.
type Event[T any] struct {
	Value    T
	Position cursor.Position
	State    State
}

// Stream is a sorted, tick-driven sequence of Event[T]. It is finite when
// it holds events and neither Loop nor FillGaps is set, and infinite
// otherwise; it is always restartable via Reset.
type Stream[T any] struct {
	Resolution uint64
	Loop       bool
	FillGaps   bool
	Default    T

	events     []Event[T]
	sorted     bool
	index      int
	cursor     cursor.Position
	lastEmit   []Event[T]
	everEmitted bool
}

// New creates an empty Stream under the given resolution.
func New[T any](resolution uint64) *Stream[T] {
	return &Stream[T]{Resolution: resolution}
}

// Add appends an event. The stream is marked unsorted; it is re-sorted
// lazily just before the next read.
func (s *Stream[T]) Add(e Event[T]) {
	s.events = append(s.events, e)
	s.sorted = false
}

// ensureSorted sorts events by position then original insertion order
// (Go's sort.SliceStable preserves insertion order for equal keys).
func (s *Stream[T]) ensureSorted() {
	if s.sorted {
		return
	}
	sort.SliceStable(s.events, func(i, j int) bool {
		return s.events[i].Position.Less(s.events[j].Position)
	})
	s.sorted = true
}

// Next returns all events at the current cursor position (possibly none),
// then advances the cursor by one tick. When the stream has consumed its
// last event and is neither looping nor gap-filling, ok is false. When
// looping, the stream resets to the origin as soon as its last event has
// been consumed and continues. A stream with no events, or a non-looping
// gap-filling one, never reports ok as false.
func (s *Stream[T]) Next() (group []Event[T], ok bool) {
	s.ensureSorted()

	if s.index >= len(s.events) && len(s.events) > 0 {
		if s.Loop {
			s.index = 0
			s.cursor = cursor.Position{}
		} else if !s.FillGaps {
			return nil, false
		}
	}

	group = s.pullGroupAt(s.cursor)
	if len(group) == 0 && s.FillGaps {
		group = s.gapFill()
	}
	if len(group) > 0 {
		s.lastEmit = group
		s.everEmitted = true
	}

	s.cursor = s.cursor.AddTicks(1, s.Resolution)
	return group, true
}

// pullGroupAt collects every event at exactly position p starting from the
// stream's current index, advancing the index past them.
func (s *Stream[T]) pullGroupAt(p cursor.Position) []Event[T] {
	var group []Event[T]
	for s.index < len(s.events) && s.events[s.index].Position.Equal(p) {
		group = append(group, s.events[s.index])
		s.index++
	}
	return group
}

// gapFill returns a clone of the most recently emitted group rewritten to
// the current tick, or the default value if nothing has ever been
// emitted.
func (s *Stream[T]) gapFill() []Event[T] {
	if !s.everEmitted {
		return []Event[T]{{Value: s.Default, Position: s.cursor, State: On}}
	}
	filled := make([]Event[T], len(s.lastEmit))
	for i, e := range s.lastEmit {
		e.Position = s.cursor
		filled[i] = e
	}
	return filled
}

// Position returns the position the next call to Next will pull events
// from, before it advances.
func (s *Stream[T]) Position() cursor.Position {
	return s.cursor
}

// Reset sets the stream's index and cursor back to the origin.
func (s *Stream[T]) Reset() {
	s.index = 0
	s.cursor = cursor.Position{}
}

// Events returns a read-only view of every event added to the stream, in
// sorted order.
func (s *Stream[T]) Events() []Event[T] {
	s.ensureSorted()
	return s.events
}
