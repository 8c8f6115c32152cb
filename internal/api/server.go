// Package api provides the HTTP surface the ecosystem UI talks to.
// GET endpoints are public (read-only observation). The reset endpoint
// requires a bearer token. Per-tick updates stream over a websocket.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/ecosphere/internal/eco"
	"github.com/talgya/ecosphere/internal/persistence"
)

// Server serves ecosystem state over HTTP and drives the simulation on
// behalf of its clients.
type Server struct {
	Eco      *eco.Ecosystem
	Driver   *eco.Driver
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for the reset endpoint. Empty = disabled.

	started  time.Time
	upgrader websocket.Upgrader

	// Current player name, captured at simulation start and attached to
	// the persisted run.
	playerMu sync.Mutex
	player   string

	streamMu sync.Mutex
	streams  map[*websocket.Conn]struct{}
}

// New wires a server over the engine and hooks the driver callbacks so every
// tick is streamed and every completed run is persisted.
func New(e *eco.Ecosystem, d *eco.Driver, db *persistence.DB, port int, adminKey string) *Server {
	s := &Server{
		Eco:      e,
		Driver:   d,
		DB:       db,
		Port:     port,
		AdminKey: adminKey,
		started:  time.Now(),
		streams:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	d.OnTick = s.publishTick
	d.OnComplete = s.finishRun
	return s
}

// Handler builds the route table. Split out from Start so tests can exercise
// the API without a listener.
func (s *Server) Handler() http.Handler {
	limiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()

	// Public observation endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/catalog", s.handleCatalog)
	mux.HandleFunc("/api/v1/state", s.handleState)
	mux.HandleFunc("/api/v1/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("/api/v1/runs", s.handleRecentRuns)

	// Game mutation endpoints (rate limited).
	mux.HandleFunc("/api/v1/species/add", RateLimitMiddleware(limiter, s.handleAddSpecies))
	mux.HandleFunc("/api/v1/species/remove", RateLimitMiddleware(limiter, s.handleRemoveSpecies))
	mux.HandleFunc("/api/v1/simulation/start", RateLimitMiddleware(limiter, s.handleStartSimulation))

	// Admin control plane.
	mux.HandleFunc("/api/v1/simulation/reset", s.adminOnly(s.handleReset))

	// Live tick stream.
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	handler := s.Handler()
	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no ECOSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
