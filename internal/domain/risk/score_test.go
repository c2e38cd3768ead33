package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func evidenceOf(label Typology, confidence float64, n int) []EvidenceItem {
	out := make([]EvidenceItem, n)
	for i := range out {
		out[i] = EvidenceItem{PredictedRisk: label, Confidence: confidence}
	}
	return out
}

func TestScore(t *testing.T) {
	cases := []struct {
		name     string
		evidence []EvidenceItem
		want     int
	}{
		{"empty", nil, 0},
		{"only neutral", evidenceOf(TypologyNeutral, 0.99, 5), 0},
		{"single fraud 0.9", evidenceOf(TypologyFraud, 0.9, 1), 69},
		{"ten fraud 0.95", evidenceOf(TypologyFraud, 0.95, 10), 92},
		{"many confident items saturate volume", evidenceOf(TypologySanctions, 1.0, 50), 96},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.evidence))
		})
	}
}

func TestScore_NeutralItemsIgnored(t *testing.T) {
	mixed := append(evidenceOf(TypologyFraud, 0.9, 1), evidenceOf(TypologyNeutral, 0.3, 4)...)
	assert.Equal(t, Score(evidenceOf(TypologyFraud, 0.9, 1)), Score(mixed))
}

func TestScore_Bounds(t *testing.T) {
	for n := 1; n <= 30; n++ {
		for _, c := range []float64{0, 0.25, 0.55, 1} {
			s := Score(evidenceOf(TypologyCorruption, c, n))
			assert.GreaterOrEqual(t, s, 0)
			assert.LessOrEqual(t, s, 100)
		}
	}
}

func TestScore_MonotonicInVolume(t *testing.T) {
	prev := 0
	for n := 1; n <= 20; n++ {
		s := Score(evidenceOf(TypologyFraud, 0.8, n))
		assert.GreaterOrEqual(t, s, prev)
		prev = s
	}
}

func TestScore_MonotonicInConfidence(t *testing.T) {
	for _, n := range []int{1, 5, 10} {
		prev := 0
		for step := 0; step <= 20; step++ {
			s := Score(evidenceOf(TypologyFraud, float64(step)*0.05, n))
			assert.GreaterOrEqual(t, s, prev, "n=%d step=%d", n, step)
			prev = s
		}
	}
}

//Personal.AI order the ending
