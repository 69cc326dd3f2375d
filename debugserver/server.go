package debugserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rv32isim/rv32i/cpu"
	"github.com/rv32isim/rv32i/decode"
	"github.com/rv32isim/rv32i/trace"
)

// Server exposes a single cpu.Hart over HTTP and WebSocket. Unlike the
// teacher's multi-session API, one debugserver instance drives exactly
// one hart: the simulator process already owns a single image.
type Server struct {
	mu          sync.Mutex
	hart        *cpu.Hart
	broadcaster *Broadcaster
	history     *trace.Log

	mux    *http.ServeMux
	server *http.Server
	addr   string
}

// NewServer returns a Server bound to hart, listening on addr (host:port).
// maxTraceEntries bounds the in-memory instruction history served from
// /api/trace (config.Trace.MaxEntries; 0 means unbounded).
func NewServer(addr string, hart *cpu.Hart, maxTraceEntries int) *Server {
	s := &Server{
		hart:        hart,
		broadcaster: NewBroadcaster(),
		history:     trace.NewLog(maxTraceEntries),
		mux:         http.NewServeMux(),
		addr:        addr,
	}
	hart.Recorder = trace.Multi{hart.Recorder, &recorderAdapter{s}, s.history}
	s.registerRoutes()
	return s
}

// recorderAdapter publishes every executed instruction to the server's
// broadcaster, alongside whatever Recorder the hart already had.
type recorderAdapter struct{ s *Server }

func (r *recorderAdapter) Record(e trace.Entry) {
	r.s.broadcaster.Publish(Event{
		Sequence: e.Sequence,
		PC:       e.PC,
		Word:     e.Word,
		Mnemonic: e.Mnemonic,
		Halted:   e.Halted,
	})
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/api/state", s.handleState)
	s.mux.HandleFunc("/api/step", s.handleStep)
	s.mux.HandleFunc("/api/run", s.handleRun)
	s.mux.HandleFunc("/api/reset", s.handleReset)
	s.mux.HandleFunc("/api/trace", s.handleTrace)
	s.mux.HandleFunc("/api/ws", s.handleWS)
}

// Handler returns the HTTP handler with CORS headers for localhost tools
// applied.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.mux)
}

// Start runs the HTTP server until it is shut down or fails.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Printf("debugserver listening on http://%s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and disconnects WebSocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.broadcaster.Close()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if isLocalOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isLocalOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	return strings.HasPrefix(origin, "http://localhost") ||
		strings.HasPrefix(origin, "http://127.0.0.1") ||
		strings.HasPrefix(origin, "https://localhost") ||
		strings.HasPrefix(origin, "https://127.0.0.1")
}

// stateResponse is the JSON shape of /api/state and the result of
// /api/step, /api/run, and /api/reset.
type stateResponse struct {
	PC               uint32     `json:"pc"`
	Registers        [32]uint32 `json:"registers"`
	Halted           bool       `json:"halted"`
	InstructionCount uint64     `json:"instructionCount"`
	Mnemonic         string     `json:"mnemonic"`
}

func (s *Server) snapshot() stateResponse {
	var regs [32]uint32
	for i := range regs {
		regs[i] = s.hart.Regs.Get(uint32(i))
	}
	word := s.hart.Mem.Get32(s.hart.PC())
	return stateResponse{
		PC:               s.hart.PC(),
		Registers:        regs,
		Halted:           s.hart.IsHalted(),
		InstructionCount: s.hart.InstructionCount(),
		Mnemonic:         decode.Mnemonic(decode.Decode(word)),
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hart.Tick()
	writeJSON(w, http.StatusOK, s.snapshot())
}

type runRequest struct {
	Limit uint64 `json:"limit"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req runRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("bad request body: %v", err))
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hart.Run(req.Limit, nil)
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hart.Reset()
	s.history.Reset()
	writeJSON(w, http.StatusOK, s.snapshot())
}

// handleTrace returns the instruction history accumulated since the last
// reset, bounded by the maxTraceEntries the server was constructed with.
func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.history.Entries())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
