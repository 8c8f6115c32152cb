package eco

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"

	"github.com/talgya/ecosphere/internal/species"
)

// Base values for the cosmetic environment readings.
const (
	BaseTemperature = 20.0
	BaseRainfall    = 50.0

	temperatureJitter = 1.0
	rainfallJitter    = 5.0
)

// Stability penalties. Applied independently; the final score is floored at 0.
const (
	penaltyNoProducers   = 50 // food chain has no base
	penaltyApexImbalance = 30 // apex predators outnumber their prey tier
	penaltyNoDecomposers = 20 // no nutrient recycling at scale
)

// Metrics are the derived ecosystem health figures, recomputed on every
// composition change and after every simulation tick.
type Metrics struct {
	Biodiversity float64 `json:"biodiversity"` // Shannon index, 2 decimals
	EnergyFlow   int     `json:"energy_flow"`  // 0-100
	Stability    int     `json:"stability"`    // 0-100
	Pollution    int     `json:"pollution"`    // 100 - stability, floored at 0
	Temperature  float64 `json:"temperature"`  // cosmetic
	Rainfall     float64 `json:"rainfall"`     // cosmetic
}

// ComputeMetrics derives health metrics from a composition. Pure apart from
// the cosmetic temperature/rainfall jitter drawn from rng; a nil rng yields
// the base readings, which keeps scenario tests exact.
func ComputeMetrics(c Composition, rng *rand.Rand) Metrics {
	m := Metrics{Temperature: BaseTemperature, Rainfall: BaseRainfall}
	if rng != nil {
		m.Temperature += rng.Float64()*2*temperatureJitter - temperatureJitter
		m.Rainfall += rng.Float64()*2*rainfallJitter - rainfallJitter
	}
	if len(c) == 0 {
		return m
	}

	m.Biodiversity = biodiversityIndex(c)
	m.EnergyFlow = energyFlowRatio(c)

	totals := c.Totals()
	m.Stability = stabilityScore(totals)
	m.Pollution = int(math.Max(0, 100-float64(m.Stability)))
	return m
}

// biodiversityIndex is the Shannon entropy of the population distribution,
// rounded to two decimals. Zero for an empty or single-species composition.
func biodiversityIndex(c Composition) float64 {
	n := c.Total()
	if n == 0 {
		return 0
	}
	dist := make([]float64, 0, len(c))
	for _, e := range c {
		if e.Population > 0 {
			dist = append(dist, e.Population/n)
		}
	}
	return math.Round(stat.Entropy(dist)*100) / 100
}

// energyFlowRatio approximates how much producer energy the consumer tiers
// draw down, as a percentage capped at 100.
func energyFlowRatio(c Composition) int {
	var produced, consumed float64
	for _, e := range c {
		switch {
		case e.Species.Role.IsConsumer():
			consumed += e.Population * e.Species.EnergyNeed
		case e.Species.Role == species.Producer:
			produced += e.Population * e.Species.EnergyYield
		}
	}
	if produced == 0 {
		return 0
	}
	ratio := math.Round(100 * consumed / produced)
	return int(math.Min(100, ratio))
}

// stabilityScore starts at 100 and subtracts each triggered structural
// penalty, floored at 0.
func stabilityScore(t RoleTotals) int {
	score := 100.0
	if t.Producers == 0 && t.Primary+t.Secondary > 0 {
		score -= penaltyNoProducers
	}
	if t.Tertiary > t.Secondary {
		score -= penaltyApexImbalance
	}
	if t.Decomposer == 0 && t.Total() > 100 {
		score -= penaltyNoDecomposers
	}
	return int(math.Max(0, score))
}
