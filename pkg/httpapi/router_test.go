package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hiway/sfzmap/pkg/engine"
	"github.com/hiway/sfzmap/pkg/sample"
)

func newTestKeyMap() *engine.KeyMap {
	km := engine.NewKeyMap(zerolog.Nop())
	km.LoadCompressedSampleFile(sample.Descriptor{
		NoteNumber:    60,
		NoteFrequency: sample.NoteFrequency(60),
		MinNote:       55,
		MaxNote:       65,
		MinVelocity:   0,
		MaxVelocity:   100,
	}, "/i/c4.wv")
	return km
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLookup(t *testing.T) {
	km := newTestKeyMap()
	h := NewRouter(RouterDeps{KeyMap: km, Source: "/i/piano.sfz", Log: zerolog.Nop()})

	t.Run("not built", func(t *testing.T) {
		rec := get(t, h, "/api/lookup/60/10")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})

	km.BuildKeyMap()

	cases := []struct {
		name  string
		path  string
		code  int
		count int
	}{
		{"hit", "/api/lookup/60/10", http.StatusOK, 1},
		{"velocity miss", "/api/lookup/60/110", http.StatusOK, 0},
		{"note miss", "/api/lookup/70/10", http.StatusOK, 0},
		{"bad note", "/api/lookup/128/10", http.StatusBadRequest, 0},
		{"bad velocity", "/api/lookup/60/loud", http.StatusBadRequest, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, h, tc.path)
			if rec.Code != tc.code {
				t.Fatalf("GET %s = %d; want %d", tc.path, rec.Code, tc.code)
			}
			if tc.code != http.StatusOK {
				return
			}
			var resp lookupResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(resp.Samples) != tc.count {
				t.Fatalf("GET %s returned %d samples; want %d", tc.path, len(resp.Samples), tc.count)
			}
		})
	}
}

func TestInstrumentAndRegions(t *testing.T) {
	km := newTestKeyMap()
	km.BuildKeyMap()
	h := NewRouter(RouterDeps{KeyMap: km, Source: "/i/piano.sfz", Log: zerolog.Nop()})

	var inst instrumentResponse
	rec := get(t, h, "/api/instrument")
	if err := json.Unmarshal(rec.Body.Bytes(), &inst); err != nil {
		t.Fatalf("decode instrument: %v", err)
	}
	if inst.Source != "/i/piano.sfz" || inst.Samples != 1 || !inst.Valid {
		t.Fatalf("unexpected instrument %+v", inst)
	}

	var regions []engine.MappedSample
	rec = get(t, h, "/api/regions")
	if err := json.Unmarshal(rec.Body.Bytes(), &regions); err != nil {
		t.Fatalf("decode regions: %v", err)
	}
	if len(regions) != 1 || regions[0].Path != "/i/c4.wv" || regions[0].Descriptor.MinNote != 55 {
		t.Fatalf("unexpected regions %+v", regions)
	}
}

func TestFrequency(t *testing.T) {
	h := NewRouter(RouterDeps{KeyMap: engine.NewKeyMap(zerolog.Nop()), Log: zerolog.Nop()})

	var resp frequencyResponse
	rec := get(t, h, "/api/notes/81/frequency")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Note != 81 || resp.Frequency < 879.999 || resp.Frequency > 880.001 {
		t.Fatalf("unexpected frequency %+v", resp)
	}
}
