package preview

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/hiway/sfzmap/pkg/engine"
	"github.com/hiway/sfzmap/pkg/sample"
)

// Options controls an audition.
type Options struct {
	Duration time.Duration
	Gap      time.Duration
	Volume   float64
}

// ToneFor builds the tone for one region: its root frequency shifted by tune
// (cents), its gain (dB) applied to volume, and its pan.
func ToneFor(d sample.Descriptor, name string, opts Options) Tone {
	return Tone{
		Name:      name,
		Frequency: d.NoteFrequency * math.Pow(2, float64(d.Tune)/1200),
		Duration:  opts.Duration,
		Volume:    opts.Volume * math.Pow(10, d.Gain/20),
		Pan:       d.Pan,
	}
}

// Audition plays one tone per loaded sample in load order, stopping early
// when ctx is canceled.
func Audition(ctx context.Context, p Player, samples []*engine.MappedSample, opts Options, log zerolog.Logger) error {
	log = log.With().Str("component", "preview").Logger()
	log.Info().Int("samples", len(samples)).Msg("Auditioning key map")

	for i, s := range samples {
		if err := ctx.Err(); err != nil {
			log.Info().Msg("Audition canceled")
			return err
		}
		tone := ToneFor(s.Descriptor, filepath.Base(s.Path), opts)
		log.Trace().Int("index", i).Str("tone", tone.Name).Msg("Playing region")
		if err := p.Play(tone); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		if opts.Gap > 0 && i < len(samples)-1 {
			select {
			case <-ctx.Done():
				log.Info().Msg("Audition canceled")
				return ctx.Err()
			case <-time.After(opts.Gap):
			}
		}
	}
	return nil
}
