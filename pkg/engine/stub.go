package engine

import (
	"github.com/rs/zerolog"

	"github.com/hiway/sfzmap/pkg/audiofile"
	"github.com/hiway/sfzmap/pkg/sample"
)

// Stub is an Engine that only logs what it is asked to load.
type Stub struct {
	log    zerolog.Logger
	loaded int
}

// NewStub creates a new Stub.
func NewStub(log zerolog.Logger) *Stub {
	return &Stub{log: log.With().Str("engine", "stub").Logger()}
}

// LoadCompressedSampleFile logs the compressed sample.
func (s *Stub) LoadCompressedSampleFile(d sample.Descriptor, path string) {
	s.loaded++
	s.event(d).Str("path", path).Msg("Compressed sample")
}

// LoadAudioFile logs the audio file and its format.
func (s *Stub) LoadAudioFile(d sample.Descriptor, f *audiofile.File) {
	s.loaded++
	s.event(d).
		Str("path", f.Path).
		Int("sample_rate", f.Format.SampleRate).
		Int("channels", f.Format.NumChannels).
		Int("frames", f.Frames).
		Msg("Audio sample")
}

// BuildKeyMap logs the number of samples seen.
func (s *Stub) BuildKeyMap() {
	s.log.Info().Int("samples", s.loaded).Msg("Key map built")
}

// Loaded returns the number of samples logged so far.
func (s *Stub) Loaded() int { return s.loaded }

func (s *Stub) event(d sample.Descriptor) *zerolog.Event {
	return s.log.Info().
		Int("note", d.NoteNumber).
		Float64("frequency_hz", d.NoteFrequency).
		Int("lokey", d.MinNote).
		Int("hikey", d.MaxNote).
		Int("lovel", d.MinVelocity).
		Int("hivel", d.MaxVelocity).
		Int("tune", d.Tune).
		Float64("gain_db", d.Gain).
		Float64("pan", d.Pan).
		Bool("looping", d.Looping)
}
