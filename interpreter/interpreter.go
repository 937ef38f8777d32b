// Package interpreter lowers a parsed ast.Pattern into a
// scheduled pattern.Pattern, resolving duration modifiers, octave
// threading, and cross-beat ties along the way.
package interpreter

import (
	"math"

	"github.com/ales-tsurko/colly-go/ast"
	"github.com/ales-tsurko/colly-go/collyerr"
	"github.com/ales-tsurko/colly-go/cursor"
	"github.com/ales-tsurko/colly-go/pattern"
	"github.com/ales-tsurko/colly-go/value"
)

// AudibleKind tags what an IntermediateEvent actually sounds like once
// lowered out of the AST's atom-level representation.
type AudibleKind int

const (
	AudibleDegree AudibleKind = iota
	AudibleModulation
	AudiblePause
	AudibleTie
)

// Audible is the resolved value an atom lowers to, before scheduling.
type Audible struct {
	Kind       AudibleKind
	Degree     value.Degree
	Modulation value.Modulation
}

// IntermediateEvent is one voice's contribution at a beat_position, before
// tie-folding collapses Tie atoms into the voice they prolong.
type IntermediateEvent struct {
	Value        Audible
	Octave       *value.Octave // non-nil: an octave change consumed here
	Beat         uint64
	BeatPosition float64
	Duration     float64
}

// ArrangedIntermediates groups the voices that sound together at one
// position: a single value for a Group or Parenthesised note, several for
// a Chord.
type ArrangedIntermediates struct {
	Values       []IntermediateEvent
	Beat         uint64
	BeatPosition float64
	Duration     float64
}

// octaveRegister is the shared mutable octave state an Octave atom updates
// and the next Note atom consumes.
type octaveRegister struct {
	current value.Octave
	pending *value.Octave
}

func newOctaveRegister() *octaveRegister {
	return &octaveRegister{current: value.DefaultOctave}
}

func (o *octaveRegister) apply(dir ast.Direction) {
	delta := int64(1)
	if dir == ast.Down {
		delta = -1
	}
	o.current.Number += delta
	o.current.Pitch += delta * 12
	snapshot := o.current
	o.pending = &snapshot
}

func (o *octaveRegister) consume() *value.Octave {
	p := o.pending
	o.pending = nil
	return p
}

// applyMethods folds a trailing EventMethod chain into a single duration
// multiplier, left to right: Dot x1.5, Multiply x2, Divide /2.
func applyMethods(methods []ast.EventMethod) float64 {
	d := 1.0
	for _, m := range methods {
		switch m {
		case ast.MethodDot:
			d *= 1.5
		case ast.MethodMultiply:
			d *= 2
		case ast.MethodDivide:
			d /= 2
		}
	}
	return d
}

func mapModulationKind(k ast.ModulationKind) value.ModulationKind {
	switch k {
	case ast.ModulationUp:
		return value.ModulationUp
	case ast.ModulationDown:
		return value.ModulationDown
	case ast.ModulationCrescendo:
		return value.ModulationCrescendo
	case ast.ModulationDiminuendo:
		return value.ModulationDiminuendo
	default:
		return value.ModulationLiteral
	}
}

// interp carries the state threaded across an entire pattern's lowering:
// right now just the shared octave register.
type interp struct {
	octave *octaveRegister
}

// InterpretPattern lowers a parsed pattern into a scheduled pattern.Pattern
// anchored at start, under resolution ticks per beat.
func InterpretPattern(astPattern ast.Pattern, start cursor.Position, resolution uint64) (*pattern.Pattern, error) {
	ip := &interp{octave: newOctaveRegister()}

	var flat []ArrangedIntermediates
	for beatIdx, be := range astPattern.Beats {
		arranged, err := ip.lowerBeatEvent(be, uint64(beatIdx), 1.0)
		if err != nil {
			return nil, err
		}
		flat = append(flat, arranged...)
	}

	resolved, err := foldTies(flat)
	if err != nil {
		return nil, err
	}

	pat := pattern.New(start, resolution)
	for _, arranged := range resolved {
		for _, v := range arranged.Values {
			if err := scheduleIntermediate(pat, start, resolution, v); err != nil {
				return nil, err
			}
		}
	}
	return pat, nil
}

// lowerBeatEvent interprets one BeatEvent's Events in sequence, sharing a
// running beat_position accumulator across them, then normalizes every
// arranged item's position and duration by D = (sum of raw durations) *
// divisorMultiplier. divisorMultiplier is 1 for a top-level beat or a
// chord voice, and len(inner) for a parenthesised subdivision's voices —
// the same normalization formula serves all three.
func (ip *interp) lowerBeatEvent(be ast.BeatEvent, beat uint64, divisorMultiplier float64) ([]ArrangedIntermediates, error) {
	acc := 0.0
	arranged, err := ip.lowerEventsRaw(be.Events, beat, &acc)
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, a := range arranged {
		total += a.Duration
	}
	if total == 0 {
		return arranged, nil
	}
	d := total * divisorMultiplier

	for i := range arranged {
		arranged[i].BeatPosition /= d
		arranged[i].Duration /= d
		for j := range arranged[i].Values {
			arranged[i].Values[j].BeatPosition /= d
			arranged[i].Values[j].Duration /= d
		}
	}
	return arranged, nil
}

func (ip *interp) lowerEventsRaw(events []ast.Event, beat uint64, acc *float64) ([]ArrangedIntermediates, error) {
	var out []ArrangedIntermediates
	for _, ev := range events {
		items, err := ip.lowerEvent(ev, beat, acc)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func (ip *interp) lowerEvent(ev ast.Event, beat uint64, acc *float64) ([]ArrangedIntermediates, error) {
	switch ev.Kind {
	case ast.EventGroup:
		return ip.lowerGroup(ev.Atoms, beat, acc)
	case ast.EventChord:
		return ip.lowerChord(ev, beat, acc)
	case ast.EventParenthesised:
		return ip.lowerParenthesised(ev, beat, acc)
	default:
		return nil, &collyerr.InterpretRuleError{Rule: "Event", Detail: "unknown event kind"}
	}
}

// lowerGroup walks a Group's atoms in order. Octave atoms update the
// shared register without emitting anything or advancing the accumulator;
// every other atom becomes its own single-valued ArrangedIntermediates,
// consuming any pending octave change.
func (ip *interp) lowerGroup(atoms []ast.PatternAtom, beat uint64, acc *float64) ([]ArrangedIntermediates, error) {
	var out []ArrangedIntermediates
	for _, atom := range atoms {
		if atom.Value.Kind == ast.AtomOctave {
			ip.octave.apply(atom.Value.OctaveDirection)
			continue
		}
		if atom.Value.Kind == ast.AtomPatternInlet || atom.Value.Kind == ast.AtomInterpolation {
			// Binding an inlet/interpolation to a scheduled event is left
			// for the outer evaluator (see DESIGN.md); the atom itself
			// contributes no audible value here.
			continue
		}

		audible, err := audibleFromAtom(atom.Value)
		if err != nil {
			return nil, err
		}
		dur := applyMethods(atom.Methods)
		pos := *acc
		*acc += dur

		ev := IntermediateEvent{
			Value:        audible,
			Octave:       ip.octave.consume(),
			Beat:         beat,
			BeatPosition: pos,
			Duration:     dur,
		}
		out = append(out, ArrangedIntermediates{
			Values:       []IntermediateEvent{ev},
			Beat:         beat,
			BeatPosition: pos,
			Duration:     dur,
		})
	}
	return out, nil
}

// lowerChord interprets each voice (one BeatEvent per voice) with
// divisor_multiplier = 1, so every voice's own content is normalized to a
// total width of 1.0 regardless of how many atoms it contains. All voices
// then fire together at the current accumulator, sharing one duration of
// 1.0 x the chord's own trailing-method modifier.
func (ip *interp) lowerChord(ev ast.Event, beat uint64, acc *float64) ([]ArrangedIntermediates, error) {
	modifier := applyMethods(ev.Methods)
	pos := *acc
	dur := modifier
	*acc += dur

	var values []IntermediateEvent
	for _, voice := range ev.Inner {
		items, err := ip.lowerBeatEvent(voice, beat, 1.0)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			for _, v := range it.Values {
				v.Duration *= modifier
				v.BeatPosition = pos
				v.Beat = beat
				values = append(values, v)
			}
		}
	}

	return []ArrangedIntermediates{{
		Values:       values,
		Beat:         beat,
		BeatPosition: pos,
		Duration:     dur,
	}}, nil
}

// lowerParenthesised splits its content into len(inner) equal slots
// (divisor_multiplier = len(inner)), each voice independently normalized
// to occupy exactly 1/len(inner) of the whole construct regardless of how
// many atoms it holds; voices are placed back to back. The whole
// construct's own trailing-method modifier then stretches every resulting
// position and duration, and it is offset into the outer accumulator's
// frame. Every inner note becomes its own single-valued
// ArrangedIntermediates — ties are resolved later, in the single
// outermost fold over the flattened pattern.
func (ip *interp) lowerParenthesised(ev ast.Event, beat uint64, acc *float64) ([]ArrangedIntermediates, error) {
	n := len(ev.Inner)
	if n == 0 {
		return nil, &collyerr.InterpretRuleError{Rule: "Parenthesised", Detail: "empty subdivision"}
	}
	modifier := applyMethods(ev.Methods)

	parenAcc := 0.0
	var all []ArrangedIntermediates
	for _, voice := range ev.Inner {
		items, err := ip.lowerBeatEvent(voice, beat, float64(n))
		if err != nil {
			return nil, err
		}
		voiceTotal := 0.0
		for i := range items {
			items[i].BeatPosition += parenAcc
			for j := range items[i].Values {
				items[i].Values[j].BeatPosition += parenAcc
			}
			voiceTotal += items[i].Duration
		}
		parenAcc += voiceTotal
		all = append(all, items...)
	}

	total := 0.0
	for i := range all {
		all[i].Duration *= modifier
		all[i].BeatPosition = *acc + all[i].BeatPosition*modifier
		all[i].Beat = beat
		for j := range all[i].Values {
			all[i].Values[j].Duration *= modifier
			all[i].Values[j].BeatPosition = *acc + all[i].Values[j].BeatPosition*modifier
			all[i].Values[j].Beat = beat
		}
		total += all[i].Duration
	}
	*acc += total

	return all, nil
}

func audibleFromAtom(v ast.AtomValue) (Audible, error) {
	switch v.Kind {
	case ast.AtomNote:
		alteration := int64(0)
		for _, d := range v.Alterations {
			if d == ast.Up {
				alteration++
			} else {
				alteration--
			}
		}
		return Audible{Kind: AudibleDegree, Degree: value.Degree{Value: v.Pitch, Alteration: alteration}}, nil
	case ast.AtomTie:
		return Audible{Kind: AudibleTie}, nil
	case ast.AtomPause:
		return Audible{Kind: AudiblePause}, nil
	case ast.AtomModulation:
		m := value.Modulation{Kind: mapModulationKind(v.Modulation.Kind), Literal: v.Modulation.Literal}
		return Audible{Kind: AudibleModulation, Modulation: m}, nil
	default:
		return Audible{}, &collyerr.InterpretRuleError{Rule: "PatternAtom", Detail: "atom kind has no audible value"}
	}
}

// voiceRef points at a particular value within a particular result entry,
// so a later Tie can find and prolong exactly the event it continues.
type voiceRef struct {
	arrangedIdx int
	valueIdx    int
}

// foldTies is the outermost, single tie-resolution pass over every beat's
// flattened arranged groups. Each voice slot (by index
// within its group) carries its own previous-index pointer: a Tie
// prolongs whatever that pointer references (extending its Duration by
// the tie's own), instead of becoming a new event. A group shorter than
// the one before it implicitly prolongs its missing trailing voices by
// the whole group's Duration — they simply were not mentioned. A voice
// beyond anything the previous group had is a LonelyTie if it is itself a
// Tie; the very first group's voices have nothing behind them at all, so
// any Tie there is also a LonelyTie.
func foldTies(flat []ArrangedIntermediates) ([]ArrangedIntermediates, error) {
	if len(flat) == 0 {
		return nil, nil
	}
	for _, v := range flat[0].Values {
		if v.Value.Kind == AudibleTie {
			return nil, &collyerr.LonelyTieError{Beat: flat[0].Beat}
		}
	}

	result := []ArrangedIntermediates{flat[0]}
	prevRefs := make([]voiceRef, len(flat[0].Values))
	for i := range prevRefs {
		prevRefs[i] = voiceRef{arrangedIdx: 0, valueIdx: i}
	}

	for gi := 1; gi < len(flat); gi++ {
		cur := flat[gi]
		n := len(cur.Values)
		maxLen := n
		if len(prevRefs) > maxLen {
			maxLen = len(prevRefs)
		}

		newRefs := make([]voiceRef, maxLen)
		isFresh := make([]bool, maxLen)
		var freshValues []IntermediateEvent

		for i := 0; i < maxLen; i++ {
			hasCur := i < n
			hasPrev := i < len(prevRefs)

			switch {
			case hasCur && hasPrev && cur.Values[i].Value.Kind == AudibleTie:
				ref := prevRefs[i]
				result[ref.arrangedIdx].Values[ref.valueIdx].Duration += cur.Values[i].Duration
				newRefs[i] = ref
			case !hasCur && hasPrev:
				// Voice absent from this (shorter) group: implicitly
				// sustained through its whole duration.
				ref := prevRefs[i]
				result[ref.arrangedIdx].Values[ref.valueIdx].Duration += cur.Duration
				newRefs[i] = ref
			case hasCur && !hasPrev && cur.Values[i].Value.Kind == AudibleTie:
				return nil, &collyerr.LonelyTieError{Beat: cur.Beat}
			case hasCur:
				freshValues = append(freshValues, cur.Values[i])
				isFresh[i] = true
			}
		}

		if len(freshValues) > 0 {
			result = append(result, ArrangedIntermediates{
				Values:       freshValues,
				Beat:         cur.Beat,
				BeatPosition: cur.BeatPosition,
				Duration:     cur.Duration,
			})
			newIdx := len(result) - 1
			fi := 0
			for i := 0; i < maxLen; i++ {
				if isFresh[i] {
					newRefs[i] = voiceRef{arrangedIdx: newIdx, valueIdx: fi}
					fi++
				}
			}
		}

		prevRefs = newRefs
	}

	return result, nil
}

// scheduleIntermediate places one surviving voice onto the pattern's
// streams: absolute position is start + (beat, 0) + round(beat_position *
// R) ticks, duration in ticks is round(duration * R). A consumed octave
// change is scheduled onto the octave stream at the same position; Pause
// schedules nothing; a surviving Tie is an internal invariant failure —
// folding should never let one through.
func scheduleIntermediate(pat *pattern.Pattern, start cursor.Position, resolution uint64, iv IntermediateEvent) error {
	beatStart := start.Add(cursor.Position{Beat: iv.Beat}, resolution)
	offsetTicks := uint64(math.Round(iv.BeatPosition * float64(resolution)))
	pos := beatStart.AddTicks(offsetTicks, resolution)

	durationTicks := uint64(math.Round(iv.Duration * float64(resolution)))
	if durationTicks == 0 {
		durationTicks = 1
	}

	if iv.Octave != nil {
		pat.ScheduleOctave(*iv.Octave, pos, durationTicks)
	}

	switch iv.Value.Kind {
	case AudibleDegree:
		pat.ScheduleDegree(iv.Value.Degree, pos, durationTicks)
	case AudibleModulation:
		pat.ScheduleModulation(iv.Value.Modulation, pos, durationTicks)
	case AudiblePause:
		// No event: the gap itself is the content.
	case AudibleTie:
		return &collyerr.InterpretRuleError{Rule: "Tie", Detail: "tie value survived the fold pass"}
	}
	return nil
}
