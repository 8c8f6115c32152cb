package eco

import (
	"math"
	"testing"
)

func TestComputeMetricsEmptyComposition(t *testing.T) {
	m := ComputeMetrics(Composition{}, nil)

	if m.Biodiversity != 0 || m.EnergyFlow != 0 || m.Stability != 0 || m.Pollution != 0 {
		t.Errorf("empty composition metrics = %+v, want all zero", m)
	}
	if m.Temperature != BaseTemperature {
		t.Errorf("temperature = %v, want %v", m.Temperature, BaseTemperature)
	}
	if m.Rainfall != BaseRainfall {
		t.Errorf("rainfall = %v, want %v", m.Rainfall, BaseRainfall)
	}
}

func TestBiodiversityZeroForSingleSpecies(t *testing.T) {
	for _, pop := range []float64{1, 10, 500} {
		m := ComputeMetrics(testComp(t, map[string]float64{"grass": pop}), nil)
		if m.Biodiversity != 0 {
			t.Errorf("single species at %v: biodiversity = %v, want 0", pop, m.Biodiversity)
		}
	}
}

func TestBiodiversityEvenPair(t *testing.T) {
	m := ComputeMetrics(testComp(t, map[string]float64{"grass": 10, "rabbit": 10}), nil)

	// Two equal populations: Shannon index ln(2) ≈ 0.6931, rounded to 0.69.
	if m.Biodiversity != 0.69 {
		t.Errorf("biodiversity = %v, want 0.69", m.Biodiversity)
	}
}

func TestBiodiversityIgnoresZeroPopulations(t *testing.T) {
	withZero := testComp(t, map[string]float64{"grass": 10, "rabbit": 10, "fox": 0})
	without := testComp(t, map[string]float64{"grass": 10, "rabbit": 10})

	a := ComputeMetrics(withZero, nil)
	b := ComputeMetrics(without, nil)
	if a.Biodiversity != b.Biodiversity {
		t.Errorf("zero-population entry changed biodiversity: %v vs %v", a.Biodiversity, b.Biodiversity)
	}
}

func TestEnergyFlowRatio(t *testing.T) {
	tests := []struct {
		name string
		pops map[string]float64
		want int
	}{
		// produced = 10×5 = 50, consumed = 10×2 = 20 → 40.
		{"grass and rabbit", map[string]float64{"grass": 10, "rabbit": 10}, 40},
		// No producers → guarded to 0.
		{"no producers", map[string]float64{"rabbit": 50}, 0},
		// Decomposers neither produce nor consume.
		{"decomposers only", map[string]float64{"earthworm": 40}, 0},
		// consumed = 300×2 = 600 over produced = 10×5 = 50 → capped at 100.
		{"overconsumption capped", map[string]float64{"grass": 10, "rabbit": 300}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComputeMetrics(testComp(t, tt.pops), nil)
			if m.EnergyFlow != tt.want {
				t.Errorf("energy flow = %d, want %d", m.EnergyFlow, tt.want)
			}
			if m.EnergyFlow < 0 || m.EnergyFlow > 100 {
				t.Errorf("energy flow %d out of [0,100]", m.EnergyFlow)
			}
		})
	}
}

func TestStabilityPenalties(t *testing.T) {
	tests := []struct {
		name string
		pops map[string]float64
		want int
	}{
		// Scenario A: a lone producer triggers nothing.
		{"lone producer", map[string]float64{"grass": 10}, 100},
		// Scenario B: producer present, herbivores fed.
		{"producer and herbivore", map[string]float64{"grass": 10, "rabbit": 10}, 100},
		// Scenario C: herbivores with no producers.
		{"no producers", map[string]float64{"rabbit": 50}, 50},
		// Scenario D: apex imbalance (wolf 20 > fox 5) plus no decomposers
		// at total 135 > 100.
		{"apex imbalance", map[string]float64{"grass": 100, "rabbit": 10, "fox": 5, "wolf": 20}, 50},
		// No decomposers at scale.
		{"no decomposers at scale", map[string]float64{"grass": 150}, 80},
		// Decomposers present at scale: no recycling penalty.
		{"decomposers at scale", map[string]float64{"grass": 150, "earthworm": 10}, 100},
		// All three penalties at once: 100 − 50 − 30 − 20 = 0.
		{"everything wrong", map[string]float64{"rabbit": 150, "wolf": 30}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComputeMetrics(testComp(t, tt.pops), nil)
			if m.Stability != tt.want {
				t.Errorf("stability = %d, want %d", m.Stability, tt.want)
			}
			if m.Stability < 0 || m.Stability > 100 {
				t.Errorf("stability %d out of [0,100]", m.Stability)
			}
			if m.Pollution != 100-m.Stability {
				t.Errorf("pollution = %d, want %d", m.Pollution, 100-m.Stability)
			}
		})
	}
}

func TestComputeMetricsIdempotent(t *testing.T) {
	c := testComp(t, map[string]float64{"grass": 100, "rabbit": 30, "fox": 5, "earthworm": 20})

	a := ComputeMetrics(c, nil)
	b := ComputeMetrics(c, nil)
	if a != b {
		t.Errorf("metrics differ across identical calls: %+v vs %+v", a, b)
	}

	// A cloned composition is metric-identical to its source.
	if cloned := ComputeMetrics(c.Clone(), nil); cloned != a {
		t.Errorf("clone metrics differ: %+v vs %+v", cloned, a)
	}
}

func TestJitterBoundsAndDeterminism(t *testing.T) {
	c := testComp(t, map[string]float64{"grass": 10})

	m := ComputeMetrics(c, NewRand(99))
	if math.Abs(m.Temperature-BaseTemperature) > 1 {
		t.Errorf("temperature %v outside base±1", m.Temperature)
	}
	if math.Abs(m.Rainfall-BaseRainfall) > 5 {
		t.Errorf("rainfall %v outside base±5", m.Rainfall)
	}

	// Same seed, same jitter.
	a := ComputeMetrics(c, NewRand(7))
	b := ComputeMetrics(c, NewRand(7))
	if a != b {
		t.Errorf("seeded jitter not reproducible: %+v vs %+v", a, b)
	}
}
