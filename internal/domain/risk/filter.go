package risk

// DefaultMinConfidence is the analyst filter's default threshold.
const DefaultMinConfidence = 0.5

// SummaryFilteredOut is shown when evidence existed but none passed the filter.
const SummaryFilteredOut = "No evidence meets the current filter criteria."

// EvidenceFilter narrows an evidence list for display.
type EvidenceFilter struct {
	MinConfidence float64    `json:"min_confidence"`
	Typologies    []Typology `json:"typologies,omitempty"`
}

// DefaultEvidenceFilter keeps everything at or above DefaultMinConfidence.
func DefaultEvidenceFilter() EvidenceFilter {
	return EvidenceFilter{MinConfidence: DefaultMinConfidence}
}

// FilteredEvidence is the filtered list plus the message to show when it is
// empty.
type FilteredEvidence struct {
	Items   []EvidenceItem `json:"items"`
	Message string         `json:"message,omitempty"`
}

// FilterEvidence keeps items with Confidence >= MinConfidence whose label is
// in Typologies (any label when Typologies is empty). Order is preserved.
func FilterEvidence(evidence []EvidenceItem, f EvidenceFilter) FilteredEvidence {
	allowed := make(map[Typology]struct{}, len(f.Typologies))
	for _, t := range f.Typologies {
		allowed[t] = struct{}{}
	}

	items := make([]EvidenceItem, 0, len(evidence))
	for _, e := range evidence {
		if e.Confidence < f.MinConfidence {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[e.PredictedRisk]; !ok {
				continue
			}
		}
		items = append(items, e)
	}

	out := FilteredEvidence{Items: items}
	switch {
	case len(evidence) == 0:
		out.Message = SummaryNotFound
	case len(items) == 0:
		out.Message = SummaryFilteredOut
	}
	return out
}

//Personal.AI order the ending
