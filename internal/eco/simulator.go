package eco

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/talgya/ecosphere/internal/species"
)

// TicksPerRun is the fixed length of a simulation run.
const TicksPerRun = 10

// Per-tick population rules.
const (
	producerGrowth   = 1.1  // producers grow toward their ceiling
	consumerGrowth   = 1.05 // consumers with food available
	starvationDecay  = 0.9  // consumers with no living prey
	predationPerHead = 0.1  // pressure per predator individual
)

// Phase is the simulator lifecycle state.
type Phase uint8

const (
	Idle Phase = iota
	Running
	Complete
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the phase as its lowercase name.
func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON decodes a phase name written by MarshalJSON.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "idle":
		*p = Idle
	case "running":
		*p = Running
	case "complete":
		*p = Complete
	default:
		return fmt.Errorf("unknown simulation phase %q", s)
	}
	return nil
}

// TickResult is what one tick publishes to the host for display.
type TickResult struct {
	Tick         int            `json:"tick"`
	Done         bool           `json:"done"`
	Metrics      Metrics        `json:"metrics"`
	Warnings     []string       `json:"warnings"`
	Achievements []string       `json:"achievements"`
	Species      []SpeciesState `json:"species"`
}

// RunResult is the outcome of a completed run, handed to the host for
// persistence and display.
type RunResult struct {
	Score        int      `json:"score"`
	XP           int      `json:"xp"`
	Achievements []string `json:"achievements"`
	Biodiversity float64  `json:"biodiversity"`
	EnergyFlow   int      `json:"energy_flow"`
	Stability    int      `json:"stability"`
	SpeciesCount int      `json:"species_count"`
}

// Phase returns the current simulator phase.
func (e *Ecosystem) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Tick returns the number of ticks processed this run.
func (e *Ecosystem) Tick() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// StartSimulation transitions Idle → Running and resets the tick counter.
// A completed run must be Reset before it can start again.
func (e *Ecosystem) StartSimulation() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != Idle {
		return ErrNotIdle
	}
	e.phase = Running
	e.tick = 0
	return nil
}

// Reset returns the simulator to Idle, clearing the tick counter and the
// session achievement list. The composition is kept as-is so the player can
// rework it between runs.
func (e *Ecosystem) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.phase = Idle
	e.tick = 0
	e.earned = nil
	e.earnedSet = make(map[string]struct{})
	e.refresh()
}

// AdvanceTick runs one simulation step: every entry is updated from a
// consistent snapshot of the composition as it stood at the start of the
// tick, then metrics are recomputed. After the final tick the simulator
// transitions to Complete.
func (e *Ecosystem) AdvanceTick() (TickResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != Running {
		return TickResult{}, ErrNotRunning
	}

	snapshot := e.comp
	next := make(Composition, len(snapshot))
	for id, entry := range snapshot {
		entry.Population = nextPopulation(entry, snapshot)
		next[id] = entry
	}
	e.comp = next
	e.tick++
	e.refresh()

	if e.tick >= TicksPerRun {
		e.phase = Complete
	}

	return TickResult{
		Tick:         e.tick,
		Done:         e.phase == Complete,
		Metrics:      e.metrics,
		Warnings:     append([]string(nil), e.warnings...),
		Achievements: append([]string(nil), e.earned...),
		Species:      e.snapshotLocked(),
	}, nil
}

// nextPopulation applies the trophic update rule for one entry against the
// start-of-tick snapshot.
func nextPopulation(entry Entry, snapshot Composition) float64 {
	sp := entry.Species
	ceiling := float64(sp.Ceiling)
	pop := entry.Population

	if sp.Role == species.Producer {
		return math.Min(ceiling, pop*producerGrowth)
	}

	hasFood := false
	for _, preyID := range sp.Prey {
		if prey, ok := snapshot[preyID]; ok && prey.Population > 0 {
			hasFood = true
			break
		}
	}

	var pressure float64
	for _, predID := range sp.Predators {
		if pred, ok := snapshot[predID]; ok {
			pressure += pred.Population * predationPerHead
		}
	}

	if hasFood {
		pop = math.Min(ceiling, pop*consumerGrowth)
	} else {
		pop *= starvationDecay
	}
	return math.Max(0, pop-pressure)
}

// Result returns the final score once the run is Complete.
func (e *Ecosystem) Result() (RunResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != Complete {
		return RunResult{}, ErrNotRunning
	}
	m := e.metrics
	score := int(math.Round(m.Biodiversity*100 + float64(m.EnergyFlow) + float64(m.Stability)))
	return RunResult{
		Score:        score,
		XP:           score + 25*len(e.earned),
		Achievements: append([]string(nil), e.earned...),
		Biodiversity: m.Biodiversity,
		EnergyFlow:   m.EnergyFlow,
		Stability:    m.Stability,
		SpeciesCount: len(e.comp),
	}, nil
}
