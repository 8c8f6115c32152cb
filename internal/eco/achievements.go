package eco

// Achievement labels, matched by identity in the host UI and result store.
const (
	AchBiodiversityChampion = "Biodiversity Champion"
	AchEcosystemMaster      = "Ecosystem Master"
	AchSpeciesCollector     = "Species Collector"
	AchPerfectBalance       = "Perfect Balance"
)

// EvaluateAchievements returns the achievement labels unlocked by the given
// metrics and composition size, rebuilt fresh on every call.
func EvaluateAchievements(m Metrics, speciesCount int) []string {
	var unlocked []string
	if m.Biodiversity > 1.5 {
		unlocked = append(unlocked, AchBiodiversityChampion)
	}
	if m.Stability > 90 {
		unlocked = append(unlocked, AchEcosystemMaster)
	}
	if speciesCount >= 8 {
		unlocked = append(unlocked, AchSpeciesCollector)
	}
	if m.EnergyFlow > 80 && m.EnergyFlow < 95 {
		unlocked = append(unlocked, AchPerfectBalance)
	}
	return unlocked
}
