package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/ShaharFullStack/TheDemo/debug"
	"github.com/ShaharFullStack/TheDemo/gesture"
	"github.com/ShaharFullStack/TheDemo/session"
	"github.com/ShaharFullStack/TheDemo/theory"
	"github.com/ShaharFullStack/TheDemo/voice"
)

// maxFrameBody bounds a landmark POST. A two-hand frame is well under
// 4KB of JSON.
const maxFrameBody = 64 << 10

// Server ingests hand tracking frames over HTTP. The tracker frontend
// (camera plus landmark model) runs out of process, typically in a
// browser, and POSTs normalized landmarks here. Frames funnel through a
// small channel into the session manager; when the manager falls
// behind, stale frames are dropped rather than queued, because a
// landmark frame is only useful fresh.
type Server struct {
	manager *session.Manager
	srv     *http.Server
	frames  chan gesture.Frame
	done    chan struct{}
}

func NewServer(addr string, m *session.Manager) *Server {
	s := &Server{
		manager: m,
		frames:  make(chan gesture.Frame, 8),
		done:    make(chan struct{}),
	}
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routed, CORS-wrapped handler. Exposed so tests
// can drive the server without a listener.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/frames", s.handleFrame).Methods("POST")
	router.HandleFunc("/snapshot", s.handleSnapshot).Methods("GET")
	router.HandleFunc("/options", s.handleOptions).Methods("GET")
	router.HandleFunc("/settings", s.handleSettings).Methods("POST")
	return cors.Default().Handler(router)
}

// ListenAndServe starts the frame consumer and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	go s.run()
	debug.Log("tracker", "listening on %s", s.srv.Addr)
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the listener and the frame consumer.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.done)
	return s.srv.Shutdown(ctx)
}

func (s *Server) run() {
	for {
		select {
		case f := <-s.frames:
			s.manager.ProcessFrame(f)
		case <-s.done:
			return
		}
	}
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFrameBody)
	var frame gesture.Frame
	if err := json.NewDecoder(r.Body).Decode(&frame); err != nil {
		http.Error(w, "bad frame: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(frame.Hands) > 2 {
		http.Error(w, "too many hands", http.StatusBadRequest)
		return
	}
	select {
	case s.frames <- frame:
	default:
		// manager is behind, drop the stale frame
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.manager.Snapshot())
}

// optionsResponse lists the values the frontend may offer as controls.
type optionsResponse struct {
	Roots   []string `json:"roots"`
	Scales  []string `json:"scales"`
	Presets []string `json:"presets"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(optionsResponse{
		Roots:   theory.RootNames(),
		Scales:  theory.ScaleNames(),
		Presets: voice.PresetKeys(),
	})
}

// settingsRequest is a partial update; nil fields are left alone.
type settingsRequest struct {
	Root         *string `json:"root"`
	Scale        *string `json:"scale"`
	Preset       *string `json:"preset"`
	OctaveShift  *int    `json:"octaveShift"`
	UseSeventh   *bool   `json:"useSeventh"`
	VoiceLeading *bool   `json:"voiceLeading"`
	Enabled      *bool   `json:"enabled"`
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFrameBody)
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad settings: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Root != nil {
		s.manager.SetRoot(*req.Root)
	}
	if req.Scale != nil {
		s.manager.SetScale(*req.Scale)
	}
	if req.Preset != nil {
		s.manager.SetPreset(*req.Preset)
	}
	if req.OctaveShift != nil {
		s.manager.ShiftOctave(*req.OctaveShift)
	}
	if req.UseSeventh != nil && *req.UseSeventh != s.manager.Settings().UseSeventh {
		s.manager.ToggleSeventh()
	}
	if req.VoiceLeading != nil && *req.VoiceLeading != s.manager.Settings().VoiceLeading {
		s.manager.ToggleVoiceLeading()
	}
	if req.Enabled != nil {
		s.manager.SetEnabled(*req.Enabled)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.manager.Snapshot())
}
