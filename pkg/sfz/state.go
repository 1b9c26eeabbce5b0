package sfz

import (
	"github.com/hiway/sfzmap/pkg/sample"
)

// GroupDefaults holds the values a <group> line sets for the regions that
// follow it. Every <group> starts again from NewGroupDefaults.
type GroupDefaults struct {
	NoteNumber int
	LowNote    int
	HighNote   int
	Tune       int
	Gain       float64
	Pan        float64

	// Defaulted lists opcodes whose values failed to parse.
	Defaulted []string
}

// NewGroupDefaults returns the defaults in effect before any <group>.
func NewGroupDefaults() GroupDefaults {
	return GroupDefaults{
		NoteNumber: sample.DefaultNote,
		LowNote:    sample.MinNote,
		HighNote:   sample.MaxNote,
	}
}

// Apply sets the field named by op and reports whether the key is a group opcode.
func (g *GroupDefaults) Apply(op Opcode) bool {
	switch op.Key {
	case "key":
		g.NoteNumber = g.midi(op)
		g.LowNote = g.NoteNumber
		g.HighNote = g.NoteNumber
	case "lokey":
		g.LowNote = g.midi(op)
	case "hikey":
		g.HighNote = g.midi(op)
	case "pitch_keycenter":
		g.NoteNumber = g.midi(op)
	case "tune":
		n := ParseInt(op.Value)
		g.track(op, n.Defaulted)
		g.Tune = n.Value
	case "volume":
		g.Gain = g.float(op)
	case "pan":
		g.Pan = g.float(op)
	default:
		return false
	}
	return true
}

func (g *GroupDefaults) midi(op Opcode) int {
	n := ParseMIDI(op.Value)
	g.track(op, n.Defaulted)
	return n.Value
}

func (g *GroupDefaults) float(op Opcode) float64 {
	n := ParseFloat(op.Value)
	g.track(op, n.Defaulted)
	return n.Value
}

func (g *GroupDefaults) track(op Opcode, defaulted bool) {
	if defaulted {
		g.Defaulted = append(g.Defaulted, op.Key)
	}
}

// RegionOverrides holds the values one <region> line sets. Note fields are
// nil unless the region names them, in which case they replace the group's.
type RegionOverrides struct {
	NoteNumber *int
	LowNote    *int
	HighNote   *int

	LowVelocity  int
	HighVelocity int
	LoopMode     string
	LoopStart    float64
	LoopEnd      float64
	Start        float64
	End          float64
	Tune         int
	Gain         float64
	Pan          float64
	Sample       string

	// Defaulted lists opcodes whose values failed to parse.
	Defaulted []string
}

// LoopModeNone disables looping; any other loop_mode value enables it.
const LoopModeNone = "no_loop"

// NewRegionOverrides returns a region with full velocity range, no loop,
// no sample and zero deltas.
func NewRegionOverrides() RegionOverrides {
	return RegionOverrides{
		LowVelocity:  sample.MinVelocity,
		HighVelocity: sample.MaxVelocity,
		LoopMode:     LoopModeNone,
	}
}

// Apply sets the field named by op and reports whether the key is a region opcode.
func (r *RegionOverrides) Apply(op Opcode) bool {
	switch op.Key {
	case "key":
		n := r.midi(op)
		r.NoteNumber, r.LowNote, r.HighNote = &n, &n, &n
	case "lokey":
		n := r.midi(op)
		r.LowNote = &n
	case "hikey":
		n := r.midi(op)
		r.HighNote = &n
	case "pitch_keycenter":
		n := r.midi(op)
		r.NoteNumber = &n
	case "lovel":
		r.LowVelocity = r.midi(op)
	case "hivel":
		r.HighVelocity = r.midi(op)
	case "loop_mode":
		r.LoopMode = op.Value
	case "loop_start":
		r.LoopStart = r.float(op)
	case "loop_end":
		r.LoopEnd = r.float(op)
	case "start":
		r.Start = r.float(op)
	case "end":
		r.End = r.float(op)
	case "tune":
		n := ParseInt(op.Value)
		r.track(op, n.Defaulted)
		r.Tune = n.Value
	case "volume":
		r.Gain = r.float(op)
	case "pan":
		r.Pan = r.float(op)
	case sampleKey:
		r.Sample = op.Value
	default:
		return false
	}
	return true
}

func (r *RegionOverrides) midi(op Opcode) int {
	n := ParseMIDI(op.Value)
	r.track(op, n.Defaulted)
	return n.Value
}

func (r *RegionOverrides) float(op Opcode) float64 {
	n := ParseFloat(op.Value)
	r.track(op, n.Defaulted)
	return n.Value
}

func (r *RegionOverrides) track(op Opcode, defaulted bool) {
	if defaulted {
		r.Defaulted = append(r.Defaulted, op.Key)
	}
}

// Resolve merges a region with the group it belongs to. Tune, gain and pan
// add; note fields named by the region replace the group's.
func Resolve(g GroupDefaults, r RegionOverrides) sample.Descriptor {
	note, low, high := g.NoteNumber, g.LowNote, g.HighNote
	if r.NoteNumber != nil {
		note = *r.NoteNumber
	}
	if r.LowNote != nil {
		low = *r.LowNote
	}
	if r.HighNote != nil {
		high = *r.HighNote
	}

	return sample.Descriptor{
		NoteNumber:    note,
		NoteFrequency: sample.NoteFrequency(note),
		MinNote:       low,
		MaxNote:       high,
		MinVelocity:   r.LowVelocity,
		MaxVelocity:   r.HighVelocity,
		Tune:          g.Tune + r.Tune,
		Gain:          g.Gain + r.Gain,
		Pan:           g.Pan + r.Pan,
		Looping:       r.LoopMode != LoopModeNone,
		LoopStart:     r.LoopStart,
		LoopEnd:       r.LoopEnd,
		Start:         r.Start,
		End:           r.End,
	}
}
