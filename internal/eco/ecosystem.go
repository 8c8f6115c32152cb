package eco

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/talgya/ecosphere/internal/species"
)

var (
	// ErrUnknownSpecies means the id does not resolve in the catalog.
	ErrUnknownSpecies = errors.New("unknown species")
	// ErrNotInEcosystem means a remove targeted a species that was never added.
	ErrNotInEcosystem = errors.New("species not in ecosystem")
	// ErrSimulationRunning means add/remove arrived while the simulator owns
	// the composition.
	ErrSimulationRunning = errors.New("simulation is running")
	// ErrNotIdle means a start arrived while Running or Complete.
	ErrNotIdle = errors.New("simulation is not idle")
	// ErrNotRunning means a tick or result request arrived in the wrong phase.
	ErrNotRunning = errors.New("simulation is not running")
)

// Ecosystem owns the user-assembled composition and its derived state. All
// methods are safe for use from the tick driver and the host API at once;
// internally a single mutex serializes every mutation and read, so the engine
// itself stays a single-writer system.
type Ecosystem struct {
	mu      sync.Mutex
	catalog *species.Catalog
	comp    Composition
	rng     *rand.Rand

	metrics  Metrics
	warnings []string

	// Achievements accumulate over the session in first-unlock order.
	earned    []string
	earnedSet map[string]struct{}

	phase Phase
	tick  int
}

// New creates an empty ecosystem over the given catalog. rng feeds the
// cosmetic temperature/rainfall jitter; nil pins the base readings.
func New(catalog *species.Catalog, rng *rand.Rand) *Ecosystem {
	e := &Ecosystem{
		catalog:   catalog,
		comp:      make(Composition),
		rng:       rng,
		earnedSet: make(map[string]struct{}),
	}
	e.refresh()
	return e
}

// Catalog returns the immutable species catalog backing this ecosystem.
func (e *Ecosystem) Catalog() *species.Catalog { return e.catalog }

// AddSpecies inserts a species at the onboarding population, or grows an
// existing entry by the same step, capped at its ceiling. Rejected while the
// simulator is running.
func (e *Ecosystem) AddSpecies(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == Running {
		return ErrSimulationRunning
	}
	sp, ok := e.catalog.Get(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSpecies, id)
	}
	ceiling := float64(sp.Ceiling)
	if entry, present := e.comp[id]; present {
		if entry.Population >= ceiling {
			return nil // already at ceiling
		}
		entry.Population = math.Min(ceiling, entry.Population+AddIncrement)
		e.comp[id] = entry
	} else {
		e.comp[id] = Entry{Species: sp, Population: math.Min(ceiling, AddIncrement)}
	}
	e.refresh()
	return nil
}

// RemoveSpecies shrinks an entry by the onboarding step, deleting it entirely
// once at or below that step. Rejected while the simulator is running.
func (e *Ecosystem) RemoveSpecies(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == Running {
		return ErrSimulationRunning
	}
	entry, present := e.comp[id]
	if !present {
		return fmt.Errorf("%w: %q", ErrNotInEcosystem, id)
	}
	if entry.Population > AddIncrement {
		entry.Population -= AddIncrement
		e.comp[id] = entry
	} else {
		delete(e.comp, id)
	}
	e.refresh()
	return nil
}

// refresh recomputes metrics and warnings and folds newly unlocked
// achievements into the session list. Callers hold e.mu.
func (e *Ecosystem) refresh() {
	e.metrics = ComputeMetrics(e.comp, e.rng)
	e.warnings = EvaluateWarnings(e.comp, e.metrics.EnergyFlow)
	for _, label := range EvaluateAchievements(e.metrics, len(e.comp)) {
		if _, seen := e.earnedSet[label]; !seen {
			e.earnedSet[label] = struct{}{}
			e.earned = append(e.earned, label)
		}
	}
}

// Metrics returns the most recently computed health metrics.
func (e *Ecosystem) Metrics() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metrics
}

// Warnings returns the current risk messages.
func (e *Ecosystem) Warnings() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.warnings...)
}

// Achievements returns the labels unlocked so far this session.
func (e *Ecosystem) Achievements() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.earned...)
}

// SpeciesState is one composition entry as published to the host.
type SpeciesState struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Role       species.TrophicRole `json:"role"`
	Population int                 `json:"population"`
	Ceiling    int                 `json:"ceiling"`
}

// Snapshot returns the composition in catalog order with rounded populations.
func (e *Ecosystem) Snapshot() []SpeciesState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Ecosystem) snapshotLocked() []SpeciesState {
	out := make([]SpeciesState, 0, len(e.comp))
	for _, sp := range e.catalog.All() {
		entry, present := e.comp[sp.ID]
		if !present {
			continue
		}
		out = append(out, SpeciesState{
			ID:         sp.ID,
			Name:       sp.Name,
			Role:       sp.Role,
			Population: entry.Rounded(),
			Ceiling:    sp.Ceiling,
		})
	}
	return out
}

// SpeciesCount returns the number of distinct species currently assembled.
func (e *Ecosystem) SpeciesCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.comp)
}
