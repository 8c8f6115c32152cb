package species

// Builtin returns the default twelve-species catalog used when no catalog
// file is supplied. Prey/predator links are all internally resolvable.
func Builtin() *Catalog {
	cat, err := NewCatalog([]Species{
		{
			ID: "grass", Name: "Grass", Role: Producer, Habitat: "grassland",
			Ceiling: 1000, EnergyYield: 5,
			Predators: []string{"rabbit", "deer", "mouse", "grasshopper"},
		},
		{
			ID: "oak", Name: "Oak Tree", Role: Producer, Habitat: "forest",
			Ceiling: 500, EnergyYield: 8,
			Predators: []string{"deer", "mouse"},
		},
		{
			ID: "rabbit", Name: "Rabbit", Role: PrimaryConsumer, Habitat: "grassland",
			Ceiling: 300, EnergyNeed: 2,
			Prey:      []string{"grass"},
			Predators: []string{"fox", "wolf", "hawk"},
		},
		{
			ID: "deer", Name: "Deer", Role: PrimaryConsumer, Habitat: "forest",
			Ceiling: 150, EnergyNeed: 4,
			Prey:      []string{"grass", "oak"},
			Predators: []string{"wolf"},
		},
		{
			ID: "mouse", Name: "Field Mouse", Role: PrimaryConsumer, Habitat: "grassland",
			Ceiling: 400, EnergyNeed: 1,
			Prey:      []string{"grass", "oak"},
			Predators: []string{"fox", "snake", "hawk"},
		},
		{
			ID: "grasshopper", Name: "Grasshopper", Role: PrimaryConsumer, Habitat: "grassland",
			Ceiling: 800, EnergyNeed: 1,
			Prey:      []string{"grass"},
			Predators: []string{"snake", "hawk"},
		},
		{
			ID: "fox", Name: "Red Fox", Role: SecondaryConsumer, Habitat: "forest",
			Ceiling: 80, EnergyNeed: 6,
			Prey:      []string{"rabbit", "mouse"},
			Predators: []string{"wolf"},
		},
		{
			ID: "snake", Name: "Grass Snake", Role: SecondaryConsumer, Habitat: "grassland",
			Ceiling: 100, EnergyNeed: 5,
			Prey:      []string{"mouse", "grasshopper"},
			Predators: []string{"hawk"},
		},
		{
			ID: "wolf", Name: "Gray Wolf", Role: TertiaryConsumer, Habitat: "forest",
			Ceiling: 40, EnergyNeed: 10,
			Prey: []string{"deer", "fox"},
		},
		{
			ID: "hawk", Name: "Red-tailed Hawk", Role: TertiaryConsumer, Habitat: "grassland",
			Ceiling: 50, EnergyNeed: 8,
			Prey: []string{"rabbit", "mouse", "grasshopper", "snake"},
		},
		{
			ID: "mushroom", Name: "Mushroom", Role: Decomposer, Habitat: "forest",
			Ceiling: 600,
		},
		{
			ID: "earthworm", Name: "Earthworm", Role: Decomposer, Habitat: "grassland",
			Ceiling: 900,
		},
	})
	if err != nil {
		// The builtin catalog is authored here; a broken reference is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return cat
}
