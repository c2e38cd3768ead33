package risk

import (
	"fmt"
	"sort"
	"strings"
)

// Status tells whether an analysis found any media for the entity.
type Status string

const (
	StatusFound    Status = "found"
	StatusNotFound Status = "not_found"
)

// Fixed summaries.
const (
	SummaryNotFound = "No adverse media found."
	SummaryNoRisk   = "No significant risks detected."
)

// TrainingExample is one labelled text of the training corpus.
type TrainingExample struct {
	Text  string   `json:"text"`
	Label Typology `json:"label"`
}

// Article is a news item about an entity, from the local corpus or a live
// source. GroundTruth is only populated by labelled corpora.
type Article struct {
	EntityName  string   `json:"entity_name"`
	Headline    string   `json:"headline"`
	Snippet     string   `json:"snippet"`
	Source      string   `json:"source"`
	Date        string   `json:"date"`
	URL         string   `json:"url,omitempty"`
	GroundTruth Typology `json:"typology_gt,omitempty"`
}

// ClassificationText is what the classifier sees for a.
func (a Article) ClassificationText() string {
	return a.Headline + " " + a.Snippet
}

// EvidenceItem is a classified article. Confidence is the classifier's
// top posterior, kept even when the label was overridden to neutral.
type EvidenceItem struct {
	Headline      string   `json:"headline"`
	Snippet       string   `json:"snippet"`
	Source        string   `json:"source"`
	Date          string   `json:"date"`
	URL           string   `json:"url,omitempty"`
	PredictedRisk Typology `json:"predicted_risk"`
	Confidence    float64  `json:"confidence"`
}

// NewEvidenceItem pairs an article with its prediction.
func NewEvidenceItem(a Article, label Typology, confidence float64) EvidenceItem {
	return EvidenceItem{
		Headline:      a.Headline,
		Snippet:       a.Snippet,
		Source:        a.Source,
		Date:          a.Date,
		URL:           a.URL,
		PredictedRisk: label,
		Confidence:    confidence,
	}
}

// AnalysisResult is the outcome of screening one entity.
type AnalysisResult struct {
	Entity        string         `json:"entity"`
	Status        Status         `json:"status"`
	RiskScore     int            `json:"risk_score"`
	TopTypologies []Typology     `json:"top_typologies"`
	Evidence      []EvidenceItem `json:"evidence"`
	Summary       string         `json:"summary"`
}

// NotFoundResult is the result for an entity without any media.
func NotFoundResult(entity string) *AnalysisResult {
	return &AnalysisResult{
		Entity:        entity,
		Status:        StatusNotFound,
		RiskScore:     0,
		TopTypologies: []Typology{},
		Evidence:      []EvidenceItem{},
		Summary:       SummaryNotFound,
	}
}

// NewFoundResult assembles a found result, deriving score, ranking and
// summary from evidence.
func NewFoundResult(entity string, evidence []EvidenceItem) *AnalysisResult {
	top := RankTypologies(evidence)
	return &AnalysisResult{
		Entity:        entity,
		Status:        StatusFound,
		RiskScore:     Score(evidence),
		TopTypologies: top,
		Evidence:      evidence,
		Summary:       Summarize(len(evidence), top),
	}
}

// IsNotFound reports whether no media was found.
func (r *AnalysisResult) IsNotFound() bool {
	return r.Status == StatusNotFound
}

// RankTypologies orders the risk typologies present in evidence by
// descending count. Equal counts keep first-occurrence order.
func RankTypologies(evidence []EvidenceItem) []Typology {
	counts := map[Typology]int{}
	order := []Typology{}
	for _, e := range evidence {
		if !e.PredictedRisk.IsRisk() {
			continue
		}
		if counts[e.PredictedRisk] == 0 {
			order = append(order, e.PredictedRisk)
		}
		counts[e.PredictedRisk]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return order
}

// Summarize renders the one-line summary of a found result.
func Summarize(articleCount int, top []Typology) string {
	if len(top) == 0 {
		return SummaryNoRisk
	}
	n := len(top)
	if n > 2 {
		n = 2
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = string(top[i])
	}
	return fmt.Sprintf("Found %d articles. Primary risks: %s", articleCount, strings.Join(names, ", "))
}

// ResolveArticles picks the articles of the entity named by a normalised
// query: exact normalised matches first, otherwise every article whose
// normalised entity contains the query. The resolved entity is the first
// matching article's name. An empty query matches nothing.
func ResolveArticles(normalizedQuery string, corpus []Article) (string, []Article) {
	if normalizedQuery == "" {
		return "", nil
	}

	var matched []Article
	for _, a := range corpus {
		if NormalizeName(a.EntityName) == normalizedQuery {
			matched = append(matched, a)
		}
	}
	if len(matched) == 0 {
		for _, a := range corpus {
			if strings.Contains(NormalizeName(a.EntityName), normalizedQuery) {
				matched = append(matched, a)
			}
		}
	}
	if len(matched) == 0 {
		return "", nil
	}
	return matched[0].EntityName, matched
}

// DistinctEntities returns the sorted distinct entity names of corpus.
func DistinctEntities(corpus []Article) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, a := range corpus {
		if _, ok := seen[a.EntityName]; ok || a.EntityName == "" {
			continue
		}
		seen[a.EntityName] = struct{}{}
		out = append(out, a.EntityName)
	}
	sort.Strings(out)
	return out
}

//Personal.AI order the ending
