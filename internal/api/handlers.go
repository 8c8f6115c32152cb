package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/ecosphere/internal/eco"
	"github.com/talgya/ecosphere/internal/persistence"
)

// stateResponse is the full engine view published to the UI.
type stateResponse struct {
	Phase        eco.Phase          `json:"phase"`
	Tick         int                `json:"tick"`
	Metrics      eco.Metrics        `json:"metrics"`
	Warnings     []string           `json:"warnings"`
	Achievements []string           `json:"achievements"`
	Species      []eco.SpeciesState `json:"species"`
}

func (s *Server) currentState() stateResponse {
	return stateResponse{
		Phase:        s.Eco.Phase(),
		Tick:         s.Eco.Tick(),
		Metrics:      s.Eco.Metrics(),
		Warnings:     s.Eco.Warnings(),
		Achievements: s.Eco.Achievements(),
		Species:      s.Eco.Snapshot(),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var totalPop int64
	for _, sp := range s.Eco.Snapshot() {
		totalPop += int64(sp.Population)
	}

	writeJSON(w, map[string]any{
		"name":       "Ecosphere",
		"phase":      s.Eco.Phase(),
		"tick":       s.Eco.Tick(),
		"species":    s.Eco.SpeciesCount(),
		"population": humanize.Comma(totalPop),
		"uptime":     time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{"species": s.Eco.Catalog().All()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.currentState())
}

// speciesRequest is the body for add/remove operations.
type speciesRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleAddSpecies(w http.ResponseWriter, r *http.Request) {
	s.handleSpeciesOp(w, r, s.Eco.AddSpecies)
}

func (s *Server) handleRemoveSpecies(w http.ResponseWriter, r *http.Request) {
	s.handleSpeciesOp(w, r, s.Eco.RemoveSpecies)
}

func (s *Server) handleSpeciesOp(w http.ResponseWriter, r *http.Request, op func(string) error) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req speciesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "body must be JSON with a species id", http.StatusBadRequest)
		return
	}

	if err := op(req.ID); err != nil {
		switch {
		case errors.Is(err, eco.ErrSimulationRunning):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, eco.ErrUnknownSpecies):
			msg := fmt.Sprintf("unknown species %q", req.ID)
			if hint := s.Eco.Catalog().Suggest(req.ID); hint != "" {
				msg += fmt.Sprintf(" (did you mean %q?)", hint)
			}
			http.Error(w, msg, http.StatusNotFound)
		case errors.Is(err, eco.ErrNotInEcosystem):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, s.currentState())
}

// startRequest optionally names the player for the persisted run.
type startRequest struct {
	Player string `json:"player"`
}

func (s *Server) handleStartSimulation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req startRequest
	// Body is optional; ignore decode errors from an empty body.
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.playerMu.Lock()
	s.player = req.Player
	s.playerMu.Unlock()

	if err := s.Driver.Start(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	slog.Info("simulation started", "player", req.Player, "species", s.Eco.SpeciesCount())
	writeJSON(w, s.currentState())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.Driver.Stop()
	s.Eco.Reset()
	slog.Info("simulation reset")
	writeJSON(w, s.currentState())
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	s.handleRunQuery(w, r, s.DB.Leaderboard)
}

func (s *Server) handleRecentRuns(w http.ResponseWriter, r *http.Request) {
	s.handleRunQuery(w, r, s.DB.RecentRuns)
}

func (s *Server) handleRunQuery(w http.ResponseWriter, r *http.Request, query func(int) ([]persistence.RunRow, error)) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	rows, err := query(limit)
	if err != nil {
		slog.Error("run query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"runs": rows})
}

// finishRun persists the completed run and logs the outcome. Wired as the
// driver's OnComplete callback.
func (s *Server) finishRun(result eco.RunResult) {
	s.playerMu.Lock()
	player := s.player
	s.playerMu.Unlock()

	id, err := s.DB.SaveRun(player, result)
	if err != nil {
		slog.Error("failed to persist run", "error", err)
	}

	slog.Info("simulation complete",
		"run_id", id,
		"player", player,
		"score", result.Score,
		"xp", result.XP,
		"achievements", len(result.Achievements),
		"biodiversity", fmt.Sprintf("%.2f", result.Biodiversity),
		"energy_flow", result.EnergyFlow,
		"stability", result.Stability,
	)

	s.broadcast(map[string]any{
		"type":   "complete",
		"run_id": id,
		"result": result,
	})
}
