package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mixedEvidence() []EvidenceItem {
	return []EvidenceItem{
		{Headline: "a", PredictedRisk: TypologySanctions, Confidence: 0.92},
		{Headline: "b", PredictedRisk: TypologyNeutral, Confidence: 0.40},
		{Headline: "c", PredictedRisk: TypologyFraud, Confidence: 0.50},
		{Headline: "d", PredictedRisk: TypologyFraud, Confidence: 0.71},
	}
}

func headlines(items []EvidenceItem) []string {
	out := make([]string, len(items))
	for i, e := range items {
		out[i] = e.Headline
	}
	return out
}

func TestFilterEvidence_DefaultThresholdIsInclusive(t *testing.T) {
	got := FilterEvidence(mixedEvidence(), DefaultEvidenceFilter())
	assert.Equal(t, []string{"a", "c", "d"}, headlines(got.Items))
	assert.Empty(t, got.Message)
}

func TestFilterEvidence_Typologies(t *testing.T) {
	got := FilterEvidence(mixedEvidence(), EvidenceFilter{MinConfidence: 0.6, Typologies: []Typology{TypologyFraud}})
	assert.Equal(t, []string{"d"}, headlines(got.Items))
}

func TestFilterEvidence_NothingPasses(t *testing.T) {
	got := FilterEvidence(mixedEvidence(), EvidenceFilter{MinConfidence: 0.99})
	assert.Empty(t, got.Items)
	assert.Equal(t, SummaryFilteredOut, got.Message)
}

func TestFilterEvidence_NoEvidence(t *testing.T) {
	got := FilterEvidence(nil, DefaultEvidenceFilter())
	assert.Empty(t, got.Items)
	assert.Equal(t, SummaryNotFound, got.Message)
	assert.NotEqual(t, SummaryFilteredOut, got.Message)
}

func TestBuildProfile(t *testing.T) {
	r := &AnalysisResult{
		Entity:        "Silverline Holdings LLC",
		RiskScore:     81,
		TopTypologies: []Typology{TypologyMoneyLaundering, TypologyFraud},
		Evidence:      mixedEvidence(),
	}
	p := BuildProfile(r)
	assert.Equal(t, TypologyMoneyLaundering, p.PrimaryTypology)
	assert.Equal(t, SeverityHigh, p.Severity)
	assert.True(t, p.Critical)
	assert.Equal(t, 3, p.EvidenceCount)
	assert.Equal(t, 81, p.RiskScore)
}

func TestBuildProfile_NoRisk(t *testing.T) {
	p := BuildProfile(NotFoundResult("x"))
	assert.Empty(t, p.PrimaryTypology)
	assert.Equal(t, SeverityLow, p.Severity)
	assert.False(t, p.Critical)
	assert.Zero(t, p.EvidenceCount)

	assert.Equal(t, SeverityLow, BuildProfile(nil).Severity)
}

func TestBuildProfile_MediumNotCritical(t *testing.T) {
	p := BuildProfile(&AnalysisResult{TopTypologies: []Typology{TypologyFinancialDistress}})
	assert.Equal(t, SeverityMedium, p.Severity)
	assert.False(t, p.Critical)
}

//Personal.AI order the ending
