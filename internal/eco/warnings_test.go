package eco

import (
	"slices"
	"testing"
)

func TestEvaluateWarnings(t *testing.T) {
	tests := []struct {
		name       string
		pops       map[string]float64
		energyFlow int
		want       []string
	}{
		{
			name: "empty composition warns nothing",
			pops: nil, energyFlow: 0,
			want: nil,
		},
		{
			name: "healthy pairing",
			pops: map[string]float64{"grass": 10, "rabbit": 10}, energyFlow: 40,
			want: nil,
		},
		{
			name: "herbivores with no producers",
			pops: map[string]float64{"rabbit": 50}, energyFlow: 0,
			want: []string{WarnNoProducers, WarnLowEnergyFlow},
		},
		{
			name: "apex predators past double the secondary tier",
			pops: map[string]float64{"grass": 30, "fox": 5, "wolf": 11}, energyFlow: 35,
			want: []string{WarnApexPredators},
		},
		{
			name: "apex at exactly double does not warn",
			pops: map[string]float64{"grass": 30, "fox": 5, "wolf": 10}, energyFlow: 35,
			want: nil,
		},
		{
			name: "no decomposers past fifty individuals",
			pops: map[string]float64{"grass": 60}, energyFlow: 30,
			want: []string{WarnNoDecomposers},
		},
		{
			name: "low energy flow",
			pops: map[string]float64{"grass": 10, "rabbit": 1}, energyFlow: 4,
			want: []string{WarnLowEnergyFlow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Composition
			if tt.pops != nil {
				c = testComp(t, tt.pops)
			} else {
				c = Composition{}
			}
			got := EvaluateWarnings(c, tt.energyFlow)
			if !slices.Equal(got, tt.want) {
				t.Errorf("warnings = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWarningsRecomputedFresh(t *testing.T) {
	c := testComp(t, map[string]float64{"rabbit": 50})
	first := EvaluateWarnings(c, 0)
	second := EvaluateWarnings(c, 0)
	if !slices.Equal(first, second) {
		t.Errorf("warnings not stable: %v vs %v", first, second)
	}

	// Fixing the problem clears the warning on the next evaluation.
	fixed := testComp(t, map[string]float64{"grass": 20, "rabbit": 50})
	if got := EvaluateWarnings(fixed, 100); slices.Contains(got, WarnNoProducers) {
		t.Errorf("producer warning persisted after producers were added: %v", got)
	}
}
