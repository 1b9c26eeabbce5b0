// Package sfzmap loads SFZ instrument mappings into an in-memory sampler key map.
package sfzmap

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hiway/sfzmap/pkg/audiofile"
	"github.com/hiway/sfzmap/pkg/config"
	"github.com/hiway/sfzmap/pkg/engine"
	"github.com/hiway/sfzmap/pkg/preview"
	"github.com/hiway/sfzmap/pkg/sfz"
)

// Instrument is a loaded SFZ file and the key map built from it.
type Instrument struct {
	Source string
	KeyMap *engine.KeyMap
	Result sfz.Result

	cfg *config.Config
	log zerolog.Logger
}

// Open loads the SFZ file at path using cfg's failure policy.
func Open(path string, cfg *config.Config, log zerolog.Logger) (*Instrument, error) {
	log = log.With().Str("instrument", path).Logger()

	km := engine.NewKeyMap(log)
	res, err := sfz.LoadFile(path, km,
		sfz.WithLogger(log),
		sfz.WithOpener(audiofile.NewOpener(log)),
		sfz.WithFailurePolicy(cfg.FailurePolicy()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load instrument: %w", err)
	}

	log.Info().
		Int("regions", res.Regions).
		Int("loaded", res.Loaded).
		Int("unsupported", res.Unsupported).
		Int("failed", res.Failed).
		Msg("Instrument loaded")

	return &Instrument{
		Source: path,
		KeyMap: km,
		Result: res,
		cfg:    cfg,
		log:    log,
	}, nil
}

// Audition plays a tone for every loaded region through p.
func (i *Instrument) Audition(ctx context.Context, p preview.Player) error {
	opts := preview.Options{
		Duration: time.Duration(i.cfg.Preview.DurationMs) * time.Millisecond,
		Gap:      time.Duration(i.cfg.Preview.GapMs) * time.Millisecond,
		Volume:   i.cfg.Preview.Volume,
	}
	return preview.Audition(ctx, p, i.KeyMap.Samples(), opts, i.log)
}
