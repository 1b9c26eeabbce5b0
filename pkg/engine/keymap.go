package engine

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/hiway/sfzmap/pkg/audiofile"
	"github.com/hiway/sfzmap/pkg/sample"
)

// NoteCount is the number of MIDI note numbers.
const NoteCount = sample.MaxNote + 1

// MappedSample is one loaded region as the key map sees it.
type MappedSample struct {
	Index      int               `json:"index"`
	Descriptor sample.Descriptor `json:"descriptor"`
	Path       string            `json:"path"`
	Compressed bool              `json:"compressed"`
	Frames     int               `json:"frames,omitempty"`
	SampleRate int               `json:"sample_rate,omitempty"`
	Channels   int               `json:"channels,omitempty"`
	Playback   sample.Playback   `json:"playback"`
}

// KeyMap is an in-memory Engine that records loaded samples and maps every
// MIDI note to the samples whose note range covers it.
type KeyMap struct {
	log     zerolog.Logger
	mu      sync.RWMutex // Protects everything below
	samples []*MappedSample
	keyMap  [NoteCount][]*MappedSample
	tuning  [NoteCount]float64
	valid   bool
}

// NewKeyMap creates an empty KeyMap with equal-tempered tuning.
func NewKeyMap(log zerolog.Logger) *KeyMap {
	k := &KeyMap{log: log.With().Str("engine", "keymap").Logger()}
	for nn := 0; nn < NoteCount; nn++ {
		k.tuning[nn] = sample.NoteFrequency(nn)
	}
	return k
}

// LoadCompressedSampleFile records a compressed sample. Its length is unknown
// until decoded, so only explicit trim points survive.
func (k *KeyMap) LoadCompressedSampleFile(d sample.Descriptor, path string) {
	k.add(&MappedSample{
		Descriptor: d,
		Path:       path,
		Compressed: true,
		Playback:   d.ResolvePlayback(0),
	})
}

// LoadAudioFile records an uncompressed sample using its header information.
func (k *KeyMap) LoadAudioFile(d sample.Descriptor, f *audiofile.File) {
	k.add(&MappedSample{
		Descriptor: d,
		Path:       f.Path,
		Frames:     f.Frames,
		SampleRate: f.Format.SampleRate,
		Channels:   f.Format.NumChannels,
		Playback:   d.ResolvePlayback(f.Frames),
	})
}

func (k *KeyMap) add(s *MappedSample) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := s.Descriptor.Validate(); err != nil {
		k.log.Warn().Err(err).Str("path", s.Path).Msg("Loading questionable sample")
	}
	s.Index = len(k.samples)
	k.samples = append(k.samples, s)
	k.valid = false
	k.log.Trace().
		Int("index", s.Index).
		Str("path", s.Path).
		Bool("compressed", s.Compressed).
		Msg("Sample added")
}

// SetNoteFrequency retunes a single note. The key map must be rebuilt afterwards.
func (k *KeyMap) SetNoteFrequency(note int, freq float64) {
	if note < 0 || note >= NoteCount {
		return
	}
	k.mu.Lock()
	k.tuning[note] = freq
	k.valid = false
	k.mu.Unlock()
}

// BuildKeyMap maps each note to every sample whose [MinNote, MaxNote]
// frequency span contains the note's frequency.
func (k *KeyMap) BuildKeyMap() {
	k.mu.Lock()
	defer k.mu.Unlock()

	for nn := range k.keyMap {
		k.keyMap[nn] = nil
	}
	for nn := 0; nn < NoteCount; nn++ {
		freq := k.tuning[nn]
		for _, s := range k.samples {
			minFreq := sample.NoteFrequency(s.Descriptor.MinNote)
			maxFreq := sample.NoteFrequency(s.Descriptor.MaxNote)
			if freq >= minFreq && freq <= maxFreq {
				k.keyMap[nn] = append(k.keyMap[nn], s)
			}
		}
	}
	k.valid = true

	k.log.Debug().Int("samples", len(k.samples)).Msg("Key map built")
}

// Valid reports whether the key map reflects every loaded sample.
func (k *KeyMap) Valid() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.valid
}

// Lookup returns the samples mapped to note whose velocity range contains velocity.
func (k *KeyMap) Lookup(note, velocity int) []*MappedSample {
	if note < 0 || note >= NoteCount {
		return nil
	}
	k.mu.RLock()
	defer k.mu.RUnlock()

	var out []*MappedSample
	for _, s := range k.keyMap[note] {
		if s.Descriptor.ContainsVelocity(velocity) {
			out = append(out, s)
		}
	}
	return out
}

// Samples returns every loaded sample in load order.
func (k *KeyMap) Samples() []*MappedSample {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]*MappedSample, len(k.samples))
	copy(out, k.samples)
	return out
}

// Unload drops all samples and invalidates the key map.
func (k *KeyMap) Unload() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.samples = nil
	for nn := range k.keyMap {
		k.keyMap[nn] = nil
	}
	k.valid = false
	k.log.Debug().Msg("All samples unloaded")
}
