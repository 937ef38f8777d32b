// Package value implements the musical value model: degrees resolved
// against a scale, root, and octave into a final pitch, and the
// modulation payload that travels alongside pitches in a pattern's event
// stream.
package value

// Degree is an abstract scale index plus a chromatic alteration. It
// becomes a concrete pitch only once paired with a Scale, Root, and
// Octave.
type Degree struct {
	Value     uint64
	Alteration int64
}

// Scale is an ordered set of chromatic offsets (0-11 in the chromatic
// case) used to convert a Degree's Value into a pitch offset.
type Scale struct {
	PitchSet []int64
}

// ChromaticScale is the default scale: every semitone, 0 through 11.
func ChromaticScale() Scale {
	set := make([]int64, 12)
	for i := range set {
		set[i] = int64(i)
	}
	return Scale{PitchSet: set}
}

// Root is the tonic offset added to every resolved pitch.
type Root struct {
	Semitones int64
}

// DefaultRoot is root = 0 (C).
var DefaultRoot = Root{Semitones: 0}

// Octave anchors a pitch range: Pitch is the MIDI-like pitch of the
// octave's first degree (60 for octave number 5, i.e. middle C), Number
// is the nominal octave index carried alongside it for display purposes.
type Octave struct {
	Pitch  int64
	Number int64
}

// DefaultOctave is octave 5, pitch 60 (middle C).
var DefaultOctave = Octave{Pitch: 60, Number: 5}

// PitchAtScale resolves a degree against a scale only, ignoring root and
// octave: pitch_set[degree.Value % |set|] + 12*(degree.Value/|set|) +
// degree.Alteration.
func PitchAtScale(d Degree, s Scale) int64 {
	n := uint64(len(s.PitchSet))
	if n == 0 {
		return d.Alteration
	}
	idx := d.Value % n
	octaves := int64(d.Value / n)
	return s.PitchSet[idx] + 12*octaves + d.Alteration
}

// Pitch resolves a degree to a final MIDI-like pitch number, clamped at
// zero rather than going negative.
func Pitch(d Degree, s Scale, root Root, oct Octave) int64 {
	p := oct.Pitch + root.Semitones + PitchAtScale(d, s)
	if p < 0 {
		return 0
	}
	return p
}

// ModulationKind distinguishes the symbolic modulation shapes from a
// literal numeric one.
type ModulationKind int

const (
	ModulationUp ModulationKind = iota
	ModulationDown
	ModulationCrescendo
	ModulationDiminuendo
	ModulationLiteral
)

// Modulation is a named modulation event: either one of the fixed
// symbolic kinds, or a literal float payload.
type Modulation struct {
	Kind    ModulationKind
	Literal float64
}

// Name returns the modulation's display name: "down", "up", "crescendo"
// or "diminuendo" for the symbols p, F, <, > respectively, or "literal"
// for a {float}.
func (m Modulation) Name() string {
	switch m.Kind {
	case ModulationUp:
		return "up"
	case ModulationDown:
		return "down"
	case ModulationCrescendo:
		return "crescendo"
	case ModulationDiminuendo:
		return "diminuendo"
	default:
		return "literal"
	}
}

// Value is the payload a Pattern's combined event stream yields: either a
// resolved pitch or a named modulation.
type Value struct {
	IsModulation   bool
	Pitch          int64
	ModulationName string
	ModulationVal  float64
}

// NewPitchValue wraps a resolved pitch.
func NewPitchValue(p int64) Value {
	return Value{Pitch: p}
}

// NewModulationValue wraps a modulation's name and payload.
func NewModulationValue(m Modulation) Value {
	return Value{IsModulation: true, ModulationName: m.Name(), ModulationVal: m.Literal}
}
