package riskclf

import (
	"sort"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
)

// MaxExplanationTokens caps an explanation.
const MaxExplanationTokens = 4

// TokenContribution is a token's share of a class score for one snippet.
type TokenContribution struct {
	Token  string  `json:"token"`
	Weight float64 `json:"weight"`
}

// Explain lists the tokens of snippet that push it towards class, strongest
// first. Each weight is coefficient × tf-idf; only positive weights are kept.
// Neutral and classes unknown to the model have no explanation.
func (m *Model) Explain(snippet string, class risk.Typology) []TokenContribution {
	out := []TokenContribution{}
	if m == nil || m.vec == nil || class == risk.TypologyNeutral {
		return out
	}
	ci := m.classIndex(class)
	if ci < 0 {
		return out
	}

	x := m.vec.Transform(snippet)
	type scored struct {
		idx    int
		weight float64
	}
	cands := make([]scored, 0, x.Len())
	for n, j := range x.Indices {
		w := m.coef[ci][j] * x.Values[n]
		if w > 0 {
			cands = append(cands, scored{idx: j, weight: w})
		}
	}
	sort.SliceStable(cands, func(a, b int) bool {
		if cands[a].weight != cands[b].weight {
			return cands[a].weight > cands[b].weight
		}
		return cands[a].idx < cands[b].idx
	})
	if len(cands) > MaxExplanationTokens {
		cands = cands[:MaxExplanationTokens]
	}
	for _, c := range cands {
		out = append(out, TokenContribution{Token: m.vec.Term(c.idx), Weight: c.weight})
	}
	return out
}

//Personal.AI order the ending
