package eco

import (
	"testing"

	"github.com/talgya/ecosphere/internal/species"
)

// testComp builds a composition over the builtin catalog with the given
// populations.
func testComp(t *testing.T, pops map[string]float64) Composition {
	t.Helper()
	cat := species.Builtin()
	c := make(Composition, len(pops))
	for id, n := range pops {
		sp, ok := cat.Get(id)
		if !ok {
			t.Fatalf("unknown test species %q", id)
		}
		c[id] = Entry{Species: sp, Population: n}
	}
	return c
}

// testEcosystem returns an ecosystem over the builtin catalog with jitter
// pinned to the base readings.
func testEcosystem(t *testing.T) *Ecosystem {
	t.Helper()
	return New(species.Builtin(), nil)
}

// seed populates an ecosystem directly, bypassing the add/remove step size.
func seed(t *testing.T, e *Ecosystem, pops map[string]float64) {
	t.Helper()
	e.mu.Lock()
	e.comp = testComp(t, pops)
	e.refresh()
	e.mu.Unlock()
}
