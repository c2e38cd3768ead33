package risk

import "math"

// Scoring weights.
const (
	scoreWeightConfidence = 0.5
	scoreWeightVolume     = 0.3
	scoreWeightRecency    = 0.2

	// RecencyFactor is fixed until article dates are parsed and decayed.
	RecencyFactor = 0.8

	volumeSaturation = 2.5
)

// Score aggregates evidence into a 0–100 risk score. Neutral items are
// ignored; without any risk item the score is 0.
func Score(evidence []EvidenceItem) int {
	var sum float64
	count := 0
	for _, e := range evidence {
		if e.PredictedRisk == TypologyNeutral {
			continue
		}
		sum += e.Confidence
		count++
	}
	if count == 0 {
		return 0
	}

	avg := sum / float64(count)
	volume := math.Min(math.Log(float64(count+1))/volumeSaturation, 1.0)
	raw := scoreWeightConfidence*avg + scoreWeightVolume*volume + scoreWeightRecency*RecencyFactor

	score := int(math.Floor(math.Min(raw*100, 100)))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

//Personal.AI order the ending
