// Package eco implements the ecosystem health and population dynamics engine:
// the user-assembled composition, the health metric calculator, the warning and
// achievement evaluators, and the tick-based population simulator.
package eco

import (
	"math"

	"github.com/talgya/ecosphere/internal/species"
)

// AddIncrement is the population step for add/remove operations and the
// population a species starts with when first added.
const AddIncrement = 10

// Entry is one species in the composition with its live population.
// Populations are held as float64 so growth compounds exactly across ticks;
// they are rounded only when published (see Rounded).
type Entry struct {
	Species    species.Species
	Population float64
}

// Rounded returns the population as the integer count shown to the host.
func (e Entry) Rounded() int {
	return int(math.Round(e.Population))
}

// Composition maps species id to its live entry. Updates during a simulation
// tick are replace-on-write: the next composition is computed from a snapshot
// of the previous one, never mutated in place.
type Composition map[string]Entry

// Clone returns a shallow copy usable as a consistent tick snapshot.
func (c Composition) Clone() Composition {
	out := make(Composition, len(c))
	for id, e := range c {
		out[id] = e
	}
	return out
}

// Total returns the summed population across all entries.
func (c Composition) Total() float64 {
	var n float64
	for _, e := range c {
		n += e.Population
	}
	return n
}

// RoleTotals holds per-trophic-level population sums.
type RoleTotals struct {
	Producers  float64
	Primary    float64
	Secondary  float64
	Tertiary   float64
	Decomposer float64
}

// Total returns the summed population across all levels.
func (t RoleTotals) Total() float64 {
	return t.Producers + t.Primary + t.Secondary + t.Tertiary + t.Decomposer
}

// Totals sums populations by trophic role.
func (c Composition) Totals() RoleTotals {
	var t RoleTotals
	for _, e := range c {
		switch e.Species.Role {
		case species.Producer:
			t.Producers += e.Population
		case species.PrimaryConsumer:
			t.Primary += e.Population
		case species.SecondaryConsumer:
			t.Secondary += e.Population
		case species.TertiaryConsumer:
			t.Tertiary += e.Population
		case species.Decomposer:
			t.Decomposer += e.Population
		}
	}
	return t
}
