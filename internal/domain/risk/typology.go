// Package risk holds the adverse-media screening domain: the typology
// taxonomy, articles and evidence, entity-name normalisation, risk scoring
// and the analyst-facing views derived from an analysis result.
package risk

import (
	"strings"

	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// Typology is a category of financial-crime or reputational risk.
type Typology string

const (
	TypologySanctions         Typology = "sanctions"
	TypologyFraud             Typology = "fraud"
	TypologyMoneyLaundering   Typology = "money_laundering"
	TypologyCorruption        Typology = "corruption"
	TypologyHumanTrafficking  Typology = "human_trafficking"
	TypologyFinancialDistress Typology = "financial_distress"
	TypologyNeutral           Typology = "neutral"
)

// allTypologies is the closed set in its canonical order.
var allTypologies = []Typology{
	TypologySanctions,
	TypologyFraud,
	TypologyMoneyLaundering,
	TypologyCorruption,
	TypologyHumanTrafficking,
	TypologyFinancialDistress,
	TypologyNeutral,
}

// Severity grades how serious a typology is for an analyst.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// AllTypologies returns every typology, neutral last.
func AllTypologies() []Typology {
	out := make([]Typology, len(allTypologies))
	copy(out, allTypologies)
	return out
}

// RiskTypologies returns every typology except neutral.
func RiskTypologies() []Typology {
	return AllTypologies()[:len(allTypologies)-1]
}

// ParseTypology accepts a typology name, case-insensitively.
func ParseTypology(s string) (Typology, error) {
	t := Typology(strings.ToLower(strings.TrimSpace(s)))
	if t.IsValid() {
		return t, nil
	}
	return "", errors.Newf(errors.ErrCodeUnknownTypology, "unknown typology %q", s)
}

// ParseTypologies parses every element of names, failing on the first bad one.
func ParseTypologies(names []string) ([]Typology, error) {
	out := make([]Typology, 0, len(names))
	for _, n := range names {
		t, err := ParseTypology(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (t Typology) String() string { return string(t) }

// IsValid reports whether t belongs to the closed set.
func (t Typology) IsValid() bool {
	for _, v := range allTypologies {
		if v == t {
			return true
		}
	}
	return false
}

// IsRisk reports whether t is a valid typology other than neutral.
func (t Typology) IsRisk() bool {
	return t != TypologyNeutral && t.IsValid()
}

// Severity grades t: sanctions, money laundering and corruption are high,
// the remaining risk typologies medium, everything else low.
func (t Typology) Severity() Severity {
	switch t {
	case TypologySanctions, TypologyMoneyLaundering, TypologyCorruption:
		return SeverityHigh
	case TypologyFraud, TypologyHumanTrafficking, TypologyFinancialDistress:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// IsCritical reports whether a primary typology of t makes a profile critical.
func (t Typology) IsCritical() bool {
	return t == TypologySanctions || t == TypologyMoneyLaundering
}

//Personal.AI order the ending
