// Package species holds the static species catalog: immutable definitions of
// trophic role, habitat, population ceiling, energy figures, and the
// prey/predator links that drive the population dynamics rules.
package species

import (
	"encoding/json"
	"fmt"
)

// TrophicRole is a species' position in the food chain.
type TrophicRole uint8

const (
	Producer TrophicRole = iota
	PrimaryConsumer
	SecondaryConsumer
	TertiaryConsumer
	Decomposer
)

// String returns the catalog-file spelling of the role.
func (r TrophicRole) String() string {
	switch r {
	case Producer:
		return "producer"
	case PrimaryConsumer:
		return "primary_consumer"
	case SecondaryConsumer:
		return "secondary_consumer"
	case TertiaryConsumer:
		return "tertiary_consumer"
	case Decomposer:
		return "decomposer"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the role under its catalog-file spelling.
func (r TrophicRole) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON decodes a catalog-file role spelling.
func (r *TrophicRole) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	role, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// ParseRole maps a catalog-file role string to its TrophicRole.
func ParseRole(s string) (TrophicRole, error) {
	switch s {
	case "producer":
		return Producer, nil
	case "primary_consumer":
		return PrimaryConsumer, nil
	case "secondary_consumer":
		return SecondaryConsumer, nil
	case "tertiary_consumer":
		return TertiaryConsumer, nil
	case "decomposer":
		return Decomposer, nil
	default:
		return 0, fmt.Errorf("unknown trophic role %q", s)
	}
}

// IsConsumer reports whether the role draws down producer energy
// (decomposers recycle rather than consume, so they are excluded).
func (r TrophicRole) IsConsumer() bool {
	return r == PrimaryConsumer || r == SecondaryConsumer || r == TertiaryConsumer
}

// Species is one immutable catalog entry.
type Species struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Role        TrophicRole `yaml:"-" json:"role"`
	Habitat     string      `yaml:"habitat" json:"habitat"`
	Ceiling     int         `yaml:"ceiling" json:"ceiling"`
	EnergyNeed  float64     `yaml:"energy_need" json:"energy_need"`   // per individual, 0 for producers/decomposers
	EnergyYield float64     `yaml:"energy_yield" json:"energy_yield"` // per individual, 0 for consumers/decomposers
	Prey        []string    `yaml:"prey" json:"prey"`
	Predators   []string    `yaml:"predators" json:"predators"`
}
