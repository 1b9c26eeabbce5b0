package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/hiway/sfzmap/pkg/engine"
	"github.com/hiway/sfzmap/pkg/sample"
)

type RouterDeps struct {
	KeyMap *engine.KeyMap
	Source string
	Log    zerolog.Logger
}

type Server struct {
	km     *engine.KeyMap
	source string
	log    zerolog.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	s := &Server{
		km:     deps.KeyMap,
		source: deps.Source,
		log:    deps.Log.With().Str("component", "httpapi").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(3 * time.Second))
	r.Use(s.logRequests)

	r.Get("/api/instrument", s.handleInstrument)
	r.Get("/api/regions", s.handleRegions)
	r.Get("/api/lookup/{note}/{velocity}", s.handleLookup)
	r.Get("/api/notes/{note}/frequency", s.handleFrequency)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Dur("duration", time.Since(t0)).
			Msg("Handled request")
	})
}

type instrumentResponse struct {
	Source  string `json:"source"`
	Samples int    `json:"samples"`
	Valid   bool   `json:"key_map_valid"`
}

func (s *Server) handleInstrument(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, instrumentResponse{
		Source:  s.source,
		Samples: len(s.km.Samples()),
		Valid:   s.km.Valid(),
	})
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.km.Samples())
}

type lookupResponse struct {
	Note     int                    `json:"note"`
	Velocity int                    `json:"velocity"`
	Samples  []*engine.MappedSample `json:"samples"`
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	note, ok := midiParam(w, r, "note")
	if !ok {
		return
	}
	velocity, ok := midiParam(w, r, "velocity")
	if !ok {
		return
	}
	if !s.km.Valid() {
		writeError(w, http.StatusServiceUnavailable, "key map not built")
		return
	}

	hits := s.km.Lookup(note, velocity)
	if hits == nil {
		hits = []*engine.MappedSample{}
	}
	writeJSON(w, http.StatusOK, lookupResponse{Note: note, Velocity: velocity, Samples: hits})
}

type frequencyResponse struct {
	Note      int     `json:"note"`
	Frequency float64 `json:"frequency_hz"`
}

func (s *Server) handleFrequency(w http.ResponseWriter, r *http.Request) {
	note, ok := midiParam(w, r, "note")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, frequencyResponse{Note: note, Frequency: sample.NoteFrequency(note)})
}

// midiParam reads a URL parameter in [0, 127], writing a 400 when it is not.
func midiParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v < 0 || v > 127 {
		writeError(w, http.StatusBadRequest, name+" must be an integer between 0 and 127")
		return 0, false
	}
	return v, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
