package species

import (
	"fmt"
	"os"
	"sort"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"
)

// Catalog is an immutable, ordered collection of species definitions.
// Loaded once at startup and never mutated afterwards.
type Catalog struct {
	byID map[string]Species
	ids  []string // catalog order
}

// NewCatalog builds a catalog from definitions, preserving their order.
// It fails if an ID repeats or a prey/predator reference dangles.
func NewCatalog(defs []Species) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Species, len(defs))}
	for _, sp := range defs {
		if sp.ID == "" {
			return nil, fmt.Errorf("species %q has empty id", sp.Name)
		}
		if _, dup := c.byID[sp.ID]; dup {
			return nil, fmt.Errorf("duplicate species id %q", sp.ID)
		}
		if sp.Ceiling <= 0 {
			return nil, fmt.Errorf("species %q has non-positive ceiling %d", sp.ID, sp.Ceiling)
		}
		if sp.EnergyNeed < 0 || sp.EnergyYield < 0 {
			return nil, fmt.Errorf("species %q has negative energy values", sp.ID)
		}
		c.byID[sp.ID] = sp
		c.ids = append(c.ids, sp.ID)
	}
	for _, sp := range defs {
		for _, prey := range sp.Prey {
			if _, ok := c.byID[prey]; !ok {
				return nil, fmt.Errorf("species %q lists unknown prey %q", sp.ID, prey)
			}
		}
		for _, pred := range sp.Predators {
			if _, ok := c.byID[pred]; !ok {
				return nil, fmt.Errorf("species %q lists unknown predator %q", sp.ID, pred)
			}
		}
	}
	return c, nil
}

// Get looks up a species by id.
func (c *Catalog) Get(id string) (Species, bool) {
	sp, ok := c.byID[id]
	return sp, ok
}

// Len returns the number of species in the catalog.
func (c *Catalog) Len() int { return len(c.ids) }

// All returns the species in catalog order.
func (c *Catalog) All() []Species {
	out := make([]Species, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

// Suggest returns the catalog id closest to the given (unknown) id, for
// "did you mean" error messages. Empty when nothing is plausibly close.
func (c *Catalog) Suggest(id string) string {
	best := ""
	bestDist := 4 // anything further is not a typo
	ids := append([]string(nil), c.ids...)
	sort.Strings(ids)
	for _, candidate := range ids {
		if d := levenshtein.ComputeDistance(id, candidate); d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	return best
}

// catalogFile mirrors the YAML catalog document.
type catalogFile struct {
	Species []struct {
		Species `yaml:",inline"`
		Role    string `yaml:"role"`
	} `yaml:"species"`
}

// LoadFile reads a YAML species catalog from disk and validates it.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	defs := make([]Species, 0, len(doc.Species))
	for _, row := range doc.Species {
		sp := row.Species
		role, err := ParseRole(row.Role)
		if err != nil {
			return nil, fmt.Errorf("species %q: %w", sp.ID, err)
		}
		sp.Role = role
		defs = append(defs, sp)
	}
	cat, err := NewCatalog(defs)
	if err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return cat, nil
}
