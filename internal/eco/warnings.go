package eco

// Warning texts shown to the player. Kept as constants so tests and the host
// UI match on identity, not substring.
const (
	WarnNoProducers   = "No producers! Herbivores will starve."
	WarnApexPredators = "Too many apex predators! The food chain is top-heavy."
	WarnNoDecomposers = "No decomposers! Dead matter will pile up."
	WarnLowEnergyFlow = "Low energy flow! Producers are not sustaining the consumers."
)

// EvaluateWarnings derives the current risk messages from a composition and
// its computed energy-flow ratio. Each rule is checked independently and the
// list is rebuilt from scratch on every call.
func EvaluateWarnings(c Composition, energyFlow int) []string {
	if len(c) == 0 {
		return nil
	}
	t := c.Totals()
	var warnings []string
	if t.Producers == 0 && t.Primary > 0 {
		warnings = append(warnings, WarnNoProducers)
	}
	if t.Tertiary > 2*t.Secondary {
		warnings = append(warnings, WarnApexPredators)
	}
	if t.Decomposer == 0 && t.Total() > 50 {
		warnings = append(warnings, WarnNoDecomposers)
	}
	if energyFlow < 30 {
		warnings = append(warnings, WarnLowEnergyFlow)
	}
	return warnings
}
