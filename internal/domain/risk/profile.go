package risk

// Profile is the analyst summary card of a result.
type Profile struct {
	Entity          string   `json:"entity"`
	RiskScore       int      `json:"risk_score"`
	PrimaryTypology Typology `json:"primary_typology,omitempty"`
	Severity        Severity `json:"severity"`
	Critical        bool     `json:"critical"`
	EvidenceCount   int      `json:"evidence_count"`
}

// BuildProfile derives the profile of r. The primary typology is the top
// ranked one; without it the severity is low. EvidenceCount counts only
// risk items.
func BuildProfile(r *AnalysisResult) Profile {
	p := Profile{Severity: SeverityLow}
	if r == nil {
		return p
	}
	p.Entity = r.Entity
	p.RiskScore = r.RiskScore
	if len(r.TopTypologies) > 0 {
		p.PrimaryTypology = r.TopTypologies[0]
		p.Severity = p.PrimaryTypology.Severity()
		p.Critical = p.PrimaryTypology.IsCritical()
	}
	for _, e := range r.Evidence {
		if e.PredictedRisk.IsRisk() {
			p.EvidenceCount++
		}
	}
	return p
}

//Personal.AI order the ending
