package catalog

// stageMultipliers table fixe à 13 entrées des multiplicateurs de stages,
// indexée de -6 à +6.
var stageMultipliers = [13]float64{
	0.25, 0.28, 0.33, 0.40, 0.50, 0.66, 1.00, 1.50, 2.00, 2.50, 3.00, 3.50, 4.00,
}

// MinStatStage et MaxStatStage bornes des stages de stats
const (
	MinStatStage = -6
	MaxStatStage = 6
)

// StageMultiplier retourne le multiplicateur pour un stage donné.
// Les stages hors bornes sont clampés.
func StageMultiplier(stage int) float64 {
	if stage < MinStatStage {
		stage = MinStatStage
	}
	if stage > MaxStatStage {
		stage = MaxStatStage
	}
	return stageMultipliers[stage+6]
}

// ClampStage borne un stage dans [-6, 6]
func ClampStage(stage int) int {
	if stage < MinStatStage {
		return MinStatStage
	}
	if stage > MaxStatStage {
		return MaxStatStage
	}
	return stage
}
