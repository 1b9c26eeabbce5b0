package sample

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MinNote is the lowest MIDI note number.
	MinNote = 0
	// MaxNote is the highest MIDI note number.
	MaxNote = 127
	// MinVelocity is the lowest MIDI velocity.
	MinVelocity = 0
	// MaxVelocity is the highest MIDI velocity.
	MaxVelocity = 127
	// DefaultNote is middle C, used when no key center is given.
	DefaultNote = 60
)

// Descriptor is one fully resolved region, ready to hand to a sampler engine.
// Tune, Gain and Pan are group value plus region delta.
type Descriptor struct {
	NoteNumber    int     `json:"note_number"`
	NoteFrequency float64 `json:"note_frequency"`
	MinNote       int     `json:"min_note"`
	MaxNote       int     `json:"max_note"`
	MinVelocity   int     `json:"min_velocity"`
	MaxVelocity   int     `json:"max_velocity"`
	Tune          int     `json:"tune"`
	Gain          float64 `json:"gain"` // dB
	Pan           float64 `json:"pan"`
	Looping       bool    `json:"looping"`
	LoopStart     float64 `json:"loop_start"`
	LoopEnd       float64 `json:"loop_end"`
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
}

// NoteFrequency returns the equal-tempered frequency of a MIDI note, A4 (69) = 440Hz.
func NoteFrequency(note int) float64 {
	return 440.0 * math.Pow(2.0, (float64(note)-69.0)/12.0)
}

// ContainsNote reports whether note falls inside [MinNote, MaxNote].
func (d Descriptor) ContainsNote(note int) bool {
	return note >= d.MinNote && note <= d.MaxNote
}

// ContainsVelocity reports whether velocity falls inside [MinVelocity, MaxVelocity].
func (d Descriptor) ContainsVelocity(velocity int) bool {
	return velocity >= d.MinVelocity && velocity <= d.MaxVelocity
}

// Validate checks the descriptor for values an engine cannot use. Inverted
// note ranges are legal (they simply never match) and are not reported.
func (d Descriptor) Validate() error {
	if d.NoteNumber < MinNote || d.NoteNumber > MaxNote {
		return fmt.Errorf("note number %d out of range", d.NoteNumber)
	}
	if d.NoteFrequency <= 0 {
		return errors.New("note frequency must be positive")
	}
	if d.Start < 0 || d.End < 0 {
		return fmt.Errorf("negative start/end point: %v/%v", d.Start, d.End)
	}
	return nil
}

// Playback holds the frame offsets a voice actually uses.
type Playback struct {
	Start     float64
	End       float64
	Looping   bool
	LoopStart float64
	LoopEnd   float64
}

// ResolvePlayback converts the descriptor's trim and loop points into frame
// offsets for a sample with the given number of frames.
//
// A zero end point means the last frame. Loop points above 1 are frame
// offsets; values in [0, 1] are fractions of the end point. A zero loop end
// means the last frame. Loop bounds are clamped to [Start, End].
func (d Descriptor) ResolvePlayback(frames int) Playback {
	last := float64(frames - 1)
	if last < 0 {
		last = 0
	}
	p := Playback{
		Start:   0,
		End:     last,
		Looping: d.Looping,
	}
	if d.Start > 0 {
		p.Start = d.Start
	}
	if d.End > 0 {
		p.End = d.End
	}
	if !p.Looping {
		return p
	}

	loopEnd := d.LoopEnd
	if loopEnd == 0 {
		loopEnd = last
	}
	if d.LoopStart > 1 {
		p.LoopStart = d.LoopStart
	} else {
		p.LoopStart = p.End * d.LoopStart
	}
	if loopEnd > 1 {
		p.LoopEnd = loopEnd
	} else {
		p.LoopEnd = p.End * loopEnd
	}

	if p.LoopStart < p.Start {
		p.LoopStart = p.Start
	}
	if p.LoopEnd > p.End {
		p.LoopEnd = p.End
	}
	return p
}
