package preview

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/rs/zerolog"
)

const (
	// SampleRate is the number of samples per second
	SampleRate = 48000
	// ChannelCount represents stereo audio
	ChannelCount = 2
	// BitDepthInBytes represents 16-bit audio
	BitDepthInBytes = 2
)

// Tone is a short sine tone standing in for one mapped region.
type Tone struct {
	Name      string
	Frequency float64 // Hz
	Duration  time.Duration
	Volume    float64 // Linear amplitude (0.0 to 1.0)
	Pan       float64 // -100 (left) to 100 (right)
}

// Player is the interface for playing tones.
type Player interface {
	Play(tone Tone) error
	Close() error
}

var (
	otoCtx *oto.Context
	once   sync.Once
	ctxErr error
)

// initOtoContext initializes the oto context singleton.
func initOtoContext() (*oto.Context, error) {
	once.Do(func() {
		op := &oto.NewContextOptions{}
		op.SampleRate = SampleRate
		op.ChannelCount = ChannelCount
		op.Format = oto.FormatSignedInt16LE

		var readyChan chan struct{}
		otoCtx, readyChan, ctxErr = oto.NewContext(op)
		if ctxErr == nil {
			<-readyChan
		}
	})
	return otoCtx, ctxErr
}

// OtoPlayer plays tones through ebitengine/oto/v3.
type OtoPlayer struct {
	log zerolog.Logger
	ctx *oto.Context
}

// NewOtoPlayer creates a new player using the Oto library.
func NewOtoPlayer(log zerolog.Logger) (*OtoPlayer, error) {
	ctx, err := initOtoContext()
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize Oto audio context")
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}
	log.Debug().Msg("Oto audio context initialized successfully")

	return &OtoPlayer{
		log: log.With().Str("player_type", "oto").Logger(),
		ctx: ctx,
	}, nil
}

// Play generates the tone and blocks until it has finished playing.
func (p *OtoPlayer) Play(tone Tone) error {
	p.log.Debug().
		Str("tone", tone.Name).
		Float64("frequency_hz", tone.Frequency).
		Dur("duration", tone.Duration).
		Float64("volume", tone.Volume).
		Float64("pan", tone.Pan).
		Msg("Playing tone")

	data, err := GenerateTone(tone)
	if err != nil {
		return fmt.Errorf("failed to generate tone '%s': %w", tone.Name, err)
	}
	if data == nil {
		p.log.Debug().Str("tone", tone.Name).Msg("Skipping silent tone")
		return nil
	}

	if err := p.playSound(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to play tone '%s': %w", tone.Name, err)
	}
	return nil
}

// playSound plays the raw audio data from an io.Reader.
func (p *OtoPlayer) playSound(reader io.Reader) error {
	player := p.ctx.NewPlayer(reader)
	defer player.Close()

	player.Play()
	for player.IsPlaying() {
		time.Sleep(time.Millisecond)
	}

	if err := player.Err(); err != nil {
		return fmt.Errorf("oto player error: %w", err)
	}
	return nil
}

// Close cleans up the OtoPlayer resources. The Oto context is shared and stays open.
func (p *OtoPlayer) Close() error {
	p.log.Debug().Msg("Closing OtoPlayer")
	return nil
}

// GenerateTone renders a stereo 16-bit little-endian sine tone with an ADSR
// envelope. It returns nil data for silent or zero-length tones.
func GenerateTone(tone Tone) ([]byte, error) {
	if tone.Volume <= 0 || tone.Duration <= 0 || tone.Frequency <= 0 {
		return nil, nil
	}

	numSamples := int(tone.Duration.Seconds() * SampleRate)
	data := make([]int16, numSamples*ChannelCount)

	// ADSR as fractions of the tone length
	attack := 0.05
	decay := 0.15
	sustain := 0.7
	release := 0.3

	omega := 2.0 * math.Pi * tone.Frequency
	amplitude := math.Min(tone.Volume, 1.0) * 32767.0
	left, right := panGains(tone.Pan)

	for i := 0; i < numSamples; i++ {
		t := float64(i) / SampleRate
		envelope := calculateEnvelope(float64(i)/float64(numSamples), attack, decay, sustain, release)
		v := amplitude * envelope * math.Sin(omega*t)

		data[i*ChannelCount] = int16(v * left)
		data[i*ChannelCount+1] = int16(v * right)
	}

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("failed to write audio data to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

// panGains returns constant-power channel gains for a pan in [-100, 100].
func panGains(pan float64) (float64, float64) {
	pan = math.Max(-100, math.Min(100, pan))
	angle := (pan + 100) / 200 * math.Pi / 2
	return math.Cos(angle), math.Sin(angle)
}

// calculateEnvelope applies ADSR envelope to the sound.
func calculateEnvelope(progress, attack, decay, sustain, release float64) float64 {
	if progress < attack {
		return progress / attack
	}
	if progress < attack+decay {
		decayProgress := (progress - attack) / decay
		return 1.0 - (1.0-sustain)*decayProgress
	}
	if progress > 1.0-release {
		releaseProgress := (progress - (1.0 - release)) / release
		return sustain * (1.0 - releaseProgress)
	}
	return sustain
}

// StubPlayer logs tones instead of playing them.
type StubPlayer struct {
	log    zerolog.Logger
	Played []Tone
}

// NewStubPlayer creates a new StubPlayer.
func NewStubPlayer(log zerolog.Logger) *StubPlayer {
	return &StubPlayer{log: log.With().Str("player_type", "stub").Logger()}
}

// Play records and logs the tone.
func (p *StubPlayer) Play(tone Tone) error {
	p.log.Debug().
		Str("tone", tone.Name).
		Float64("frequency_hz", tone.Frequency).
		Dur("duration", tone.Duration).
		Msg("Simulating tone")
	p.Played = append(p.Played, tone)
	return nil
}

// Close cleans up the StubPlayer resources.
func (p *StubPlayer) Close() error {
	p.log.Debug().Msg("Closing StubPlayer")
	return nil
}
