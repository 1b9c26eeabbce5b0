package sfz

import (
	"math"
	"slices"
	"testing"

	"github.com/hiway/sfzmap/pkg/sample"
)

func applyGroup(t *testing.T, rest string) GroupDefaults {
	t.Helper()
	g := NewGroupDefaults()
	for _, op := range Tokenize(rest) {
		g.Apply(op)
	}
	return g
}

func applyRegion(t *testing.T, rest string) RegionOverrides {
	t.Helper()
	r := NewRegionOverrides()
	for _, op := range Tokenize(rest) {
		r.Apply(op)
	}
	return r
}

func sameGroup(a, b GroupDefaults) bool {
	return a.NoteNumber == b.NoteNumber &&
		a.LowNote == b.LowNote &&
		a.HighNote == b.HighNote &&
		a.Tune == b.Tune &&
		a.Gain == b.Gain &&
		a.Pan == b.Pan
}

func TestGroupDefaults(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want GroupDefaults
	}{
		{
			name: "defaults",
			in:   "",
			want: GroupDefaults{NoteNumber: 60, LowNote: 0, HighNote: 127},
		},
		{
			name: "key collapses range",
			in:   " key=64",
			want: GroupDefaults{NoteNumber: 64, LowNote: 64, HighNote: 64},
		},
		{
			name: "lokey hikey widen after key",
			in:   " key=64 lokey=60 hikey=70",
			want: GroupDefaults{NoteNumber: 64, LowNote: 60, HighNote: 70},
		},
		{
			name: "key after lokey wins",
			in:   " lokey=60 key=64",
			want: GroupDefaults{NoteNumber: 64, LowNote: 64, HighNote: 64},
		},
		{
			name: "pitch_keycenter keeps range",
			in:   " pitch_keycenter=48",
			want: GroupDefaults{NoteNumber: 48, LowNote: 0, HighNote: 127},
		},
		{
			name: "inverted range kept",
			in:   " lokey=80 hikey=20",
			want: GroupDefaults{NoteNumber: 60, LowNote: 80, HighNote: 20},
		},
		{
			name: "tune gain pan",
			in:   " tune=10 volume=-3 pan=25.5",
			want: GroupDefaults{NoteNumber: 60, LowNote: 0, HighNote: 127, Tune: 10, Gain: -3, Pan: 25.5},
		},
		{
			name: "region opcodes ignored",
			in:   " lovel=10 sample=a.wav",
			want: GroupDefaults{NoteNumber: 60, LowNote: 0, HighNote: 127},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := applyGroup(t, tc.in)
			if !sameGroup(got, tc.want) {
				t.Fatalf("group %q = %+v; want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestDefaultedValues(t *testing.T) {
	g := applyGroup(t, " tune=abc volume=0 pan=")
	if g.Tune != 0 || g.Gain != 0 || g.Pan != 0 {
		t.Fatalf("expected zeroed values, got %+v", g)
	}
	if !slices.Equal(g.Defaulted, []string{"tune", "pan"}) {
		t.Fatalf("expected tune and pan defaulted, got %v", g.Defaulted)
	}

	r := applyRegion(t, " lovel=soft hivel=100 loop_start=x tune=0")
	if r.LowVelocity != 0 || r.HighVelocity != 100 || r.LoopStart != 0 {
		t.Fatalf("unexpected region %+v", r)
	}
	if !slices.Equal(r.Defaulted, []string{"lovel", "loop_start"}) {
		t.Fatalf("expected lovel and loop_start defaulted, got %v", r.Defaulted)
	}
}

func TestResolve(t *testing.T) {
	g := applyGroup(t, " key=69 tune=10 volume=-3 pan=-20")
	r := applyRegion(t, " lovel=20 hivel=90 loop_mode=loop_continuous loop_start=100 loop_end=2000 start=10 end=3000 tune=5 volume=1.5 pan=30 sample=a.wav")

	d := Resolve(g, r)
	want := sample.Descriptor{
		NoteNumber:    69,
		NoteFrequency: 440,
		MinNote:       69,
		MaxNote:       69,
		MinVelocity:   20,
		MaxVelocity:   90,
		Tune:          15,
		Gain:          -1.5,
		Pan:           10,
		Looping:       true,
		LoopStart:     100,
		LoopEnd:       2000,
		Start:         10,
		End:           3000,
	}
	if math.Abs(d.NoteFrequency-want.NoteFrequency) > 1e-3 {
		t.Fatalf("frequency = %f; want %f", d.NoteFrequency, want.NoteFrequency)
	}
	d.NoteFrequency = want.NoteFrequency
	if d != want {
		t.Fatalf("Resolve() = %+v; want %+v", d, want)
	}
}

func TestResolveDefaults(t *testing.T) {
	d := Resolve(NewGroupDefaults(), applyRegion(t, " sample=a.wav"))
	if d.NoteNumber != 60 || d.MinNote != 0 || d.MaxNote != 127 {
		t.Fatalf("unexpected note defaults %+v", d)
	}
	if d.MinVelocity != 0 || d.MaxVelocity != 127 {
		t.Fatalf("unexpected velocity defaults %+v", d)
	}
	if d.Looping {
		t.Fatalf("region without loop_mode should not loop")
	}

	single := Resolve(applyGroup(t, " key=81"), applyRegion(t, ""))
	if single.MinNote != 81 || single.MaxNote != 81 || math.Abs(single.NoteFrequency-880) > 1e-3 {
		t.Fatalf("unexpected single-key region %+v", single)
	}
}

func TestResolveRegionNoteOverrides(t *testing.T) {
	g := applyGroup(t, " lokey=36 hikey=96 pitch_keycenter=60")

	cases := []struct {
		name            string
		in              string
		note, low, high int
	}{
		{"inherits group", "", 60, 36, 96},
		{"key collapses", " key=40", 40, 40, 40},
		{"lokey only", " lokey=50", 60, 50, 96},
		{"keycenter only", " pitch_keycenter=62", 62, 36, 96},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Resolve(g, applyRegion(t, tc.in))
			if d.NoteNumber != tc.note || d.MinNote != tc.low || d.MaxNote != tc.high {
				t.Fatalf("region %q = note %d range %d-%d; want %d %d-%d",
					tc.in, d.NoteNumber, d.MinNote, d.MaxNote, tc.note, tc.low, tc.high)
			}
		})
	}

	// The group is never written by region parsing.
	if g.NoteNumber != 60 || g.LowNote != 36 || g.HighNote != 96 {
		t.Fatalf("group changed by region resolution: %+v", g)
	}
}

func TestLoopMode(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{" loop_mode=no_loop", false},
		{" loop_mode=loop_continuous", true},
		{" loop_mode=one_shot", true},
		{" loop_mode=", true},
	}
	for _, tc := range cases {
		d := Resolve(NewGroupDefaults(), applyRegion(t, tc.in))
		if d.Looping != tc.want {
			t.Fatalf("region %q looping = %v; want %v", tc.in, d.Looping, tc.want)
		}
	}
}
