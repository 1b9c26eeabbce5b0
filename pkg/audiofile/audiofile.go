package audiofile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"
)

// Kind is the container type of an uncompressed sample file.
type Kind string

const (
	KindWAV  Kind = "wav"
	KindAIFF Kind = "aiff"
)

// File is an opened, header-checked uncompressed sample file. The PCM data is
// left unread; Reader rewinds to the start of the file.
type File struct {
	Path     string
	Kind     Kind
	Format   audio.Format
	BitDepth int
	Duration time.Duration
	Frames   int

	f *os.File
}

// Reader returns the underlying file positioned at its first byte.
func (f *File) Reader() (io.ReadSeeker, error) {
	if f.f == nil {
		return nil, fmt.Errorf("audio file %s is not open", f.Path)
	}
	if _, err := f.f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind %s: %w", f.Path, err)
	}
	return f.f, nil
}

// Close releases the underlying file. Closing a File that was never opened
// is a no-op.
func (f *File) Close() error {
	if f.f == nil {
		return nil
	}
	return f.f.Close()
}

// Opener opens .wav and .aif files for reading.
type Opener struct {
	log zerolog.Logger
}

// NewOpener creates an Opener.
func NewOpener(log zerolog.Logger) *Opener {
	return &Opener{log: log.With().Str("component", "audiofile").Logger()}
}

// KindOf maps a file extension to a container kind.
func KindOf(path string) (Kind, bool) {
	switch filepath.Ext(path) {
	case ".wav":
		return KindWAV, true
	case ".aif", ".aiff":
		return KindAIFF, true
	}
	return "", false
}

// Open opens path and validates its container header.
func (o *Opener) Open(path string) (*File, error) {
	kind, ok := KindOf(path)
	if !ok {
		return nil, fmt.Errorf("unsupported audio file extension: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	af := &File{Path: path, Kind: kind, f: f}
	if err := af.readInfo(); err != nil {
		f.Close()
		return nil, err
	}

	o.log.Debug().
		Str("path", path).
		Str("kind", string(kind)).
		Int("sample_rate", af.Format.SampleRate).
		Int("channels", af.Format.NumChannels).
		Int("bit_depth", af.BitDepth).
		Int("frames", af.Frames).
		Msg("Opened audio file")
	return af, nil
}

func (f *File) readInfo() error {
	var (
		format   *audio.Format
		bitDepth uint16
		frames   int
	)

	switch f.Kind {
	case KindWAV:
		d := wav.NewDecoder(f.f)
		if !d.IsValidFile() {
			return fmt.Errorf("invalid wav file: %s", f.Path)
		}
		if err := d.FwdToPCM(); err != nil {
			return fmt.Errorf("failed to locate PCM data in %s: %w", f.Path, err)
		}
		format = d.Format()
		bitDepth = d.BitDepth
		if frameSize := int(d.NumChans) * int(d.BitDepth) / 8; frameSize > 0 {
			frames = d.PCMSize / frameSize
		}
	case KindAIFF:
		d := aiff.NewDecoder(f.f)
		if !d.IsValidFile() {
			return fmt.Errorf("invalid aiff file: %s", f.Path)
		}
		format = d.Format()
		bitDepth = d.BitDepth
		frames = int(d.NumSampleFrames)
	}
	if format == nil || format.SampleRate <= 0 {
		return fmt.Errorf("missing audio format in %s", f.Path)
	}

	f.Format = *format
	f.BitDepth = int(bitDepth)
	f.Frames = frames
	f.Duration = time.Duration(float64(frames) / float64(format.SampleRate) * float64(time.Second))
	return nil
}
