package preview

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hiway/sfzmap/pkg/engine"
	"github.com/hiway/sfzmap/pkg/sample"
)

func TestGenerateTone(t *testing.T) {
	data, err := GenerateTone(Tone{Frequency: 440, Duration: 10 * time.Millisecond, Volume: 1})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	frames := SampleRate / 100
	if len(data) != frames*ChannelCount*BitDepthInBytes {
		t.Fatalf("expected %d bytes, got %d", frames*ChannelCount*BitDepthInBytes, len(data))
	}

	var peak int16
	for i := 0; i+1 < len(data); i += 2 {
		v := int16(binary.LittleEndian.Uint16(data[i:]))
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		t.Fatalf("expected a non-silent tone")
	}
}

func TestGenerateToneSilent(t *testing.T) {
	cases := []Tone{
		{Frequency: 440, Duration: time.Second, Volume: 0},
		{Frequency: 440, Duration: 0, Volume: 1},
		{Frequency: 0, Duration: time.Second, Volume: 1},
	}
	for _, tone := range cases {
		data, err := GenerateTone(tone)
		if err != nil || data != nil {
			t.Fatalf("GenerateTone(%+v) = %d bytes, %v; want nil, nil", tone, len(data), err)
		}
	}
}

func TestPanGains(t *testing.T) {
	l, r := panGains(-100)
	if math.Abs(l-1) > 1e-9 || math.Abs(r) > 1e-9 {
		t.Fatalf("hard left = %f/%f", l, r)
	}
	l, r = panGains(0)
	if math.Abs(l-r) > 1e-9 {
		t.Fatalf("center should be balanced, got %f/%f", l, r)
	}
	l, r = panGains(500)
	if math.Abs(l) > 1e-9 || math.Abs(r-1) > 1e-9 {
		t.Fatalf("pan beyond range should clamp right, got %f/%f", l, r)
	}
}

func TestCalculateEnvelope(t *testing.T) {
	cases := []struct {
		progress float64
		want     float64
	}{
		{0, 0},
		{0.05, 1},
		{0.5, 0.7},
		{1, 0},
	}
	for _, tc := range cases {
		got := calculateEnvelope(tc.progress, 0.05, 0.15, 0.7, 0.3)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("envelope(%f) = %f; want %f", tc.progress, got, tc.want)
		}
	}
}

func TestToneFor(t *testing.T) {
	d := sample.Descriptor{NoteFrequency: 440, Tune: 1200, Gain: -20, Pan: 30}
	tone := ToneFor(d, "a4.wav", Options{Duration: time.Second, Volume: 0.5})
	if math.Abs(tone.Frequency-880) > 1e-9 {
		t.Fatalf("expected tune to shift an octave, got %f", tone.Frequency)
	}
	if math.Abs(tone.Volume-0.05) > 1e-9 {
		t.Fatalf("expected -20dB of 0.5, got %f", tone.Volume)
	}
	if tone.Pan != 30 || tone.Name != "a4.wav" || tone.Duration != time.Second {
		t.Fatalf("unexpected tone %+v", tone)
	}
}

func TestAudition(t *testing.T) {
	samples := []*engine.MappedSample{
		{Path: "/i/c4.wav", Descriptor: sample.Descriptor{NoteFrequency: sample.NoteFrequency(60)}},
		{Path: "/i/a4.wv", Descriptor: sample.Descriptor{NoteFrequency: 440}},
	}
	p := NewStubPlayer(zerolog.Nop())
	opts := Options{Duration: 10 * time.Millisecond, Gap: time.Millisecond, Volume: 0.3}

	if err := Audition(context.Background(), p, samples, opts, zerolog.Nop()); err != nil {
		t.Fatalf("audition failed: %v", err)
	}
	if len(p.Played) != 2 || p.Played[0].Name != "c4.wav" || p.Played[1].Frequency != 440 {
		t.Fatalf("unexpected tones %+v", p.Played)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p = NewStubPlayer(zerolog.Nop())
	err := Audition(ctx, p, samples, opts, zerolog.Nop())
	if !errors.Is(err, context.Canceled) || len(p.Played) != 0 {
		t.Fatalf("expected canceled audition with no tones, got %v and %d tones", err, len(p.Played))
	}
}
