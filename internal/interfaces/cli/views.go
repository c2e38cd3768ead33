package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/Graphyte-Intelligence/internal/application/screening"
	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/intelligence/riskclf"
)

// The view types share their underlying struct with the service DTOs, so
// JSON output is the DTO itself while text and table output get a layout.

func pct(f float64) string { return strconv.FormatFloat(f*100, 'f', 1, 64) + "%" }

func ratio3(f float64) string { return strconv.FormatFloat(f, 'f', 3, 64) }

// ─────────────────────────────────────────────────────────────────────────────
// Screening
// ─────────────────────────────────────────────────────────────────────────────

type screeningView screening.Screening

func (v *screeningView) String() string {
	var sb strings.Builder
	r := v.Result
	fmt.Fprintf(&sb, "Entity:      %s\n", r.Entity)
	fmt.Fprintf(&sb, "Status:      %s\n", r.Status)
	fmt.Fprintf(&sb, "Risk score:  %d/100\n", r.RiskScore)
	if v.Profile.PrimaryTypology != "" {
		critical := ""
		if v.Profile.Critical {
			critical = " (critical)"
		}
		fmt.Fprintf(&sb, "Primary:     %s, %s severity%s\n", v.Profile.PrimaryTypology, v.Profile.Severity, critical)
	}
	if len(r.TopTypologies) > 0 {
		names := make([]string, len(r.TopTypologies))
		for i, t := range r.TopTypologies {
			names[i] = string(t)
		}
		fmt.Fprintf(&sb, "Typologies:  %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&sb, "Summary:     %s\n", r.Summary)
	fmt.Fprintf(&sb, "Screening:   %s (%s mode, model %s)\n", v.ID, v.Mode, v.ModelVersion)

	fmt.Fprintf(&sb, "\nEvidence (confidence >= %s):\n", pct(v.Filter.MinConfidence))
	if len(v.Evidence.Items) == 0 {
		fmt.Fprintf(&sb, "  %s\n", v.Evidence.Message)
		return sb.String()
	}
	for i, e := range v.Evidence.Items {
		fmt.Fprintf(&sb, "  %d. [%s %s] %s\n", i+1, e.PredictedRisk, pct(e.Confidence), e.Headline)
		fmt.Fprintf(&sb, "     %s, %s\n", e.Source, e.Date)
	}
	return sb.String()
}

func (v *screeningView) TableHeaders() []string {
	return []string{"#", "DATE", "SOURCE", "TYPOLOGY", "CONFIDENCE", "HEADLINE"}
}

func (v *screeningView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Evidence.Items))
	for i, e := range v.Evidence.Items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1), e.Date, e.Source, string(e.PredictedRisk), pct(e.Confidence), e.Headline,
		})
	}
	return rows
}

// ─────────────────────────────────────────────────────────────────────────────
// Model
// ─────────────────────────────────────────────────────────────────────────────

type summaryView screening.ModelSummary

func (v *summaryView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Model version:   %s\n", v.Version)
	fmt.Fprintf(&sb, "Trained at:      %s\n", v.TrainedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Classes:         %d\n", len(v.Classes))
	fmt.Fprintf(&sb, "Vocabulary:      %d\n", v.VocabularySize)
	fmt.Fprintf(&sb, "Examples:        %d\n", v.Training.Examples)
	fmt.Fprintf(&sb, "Iterations:      %d (converged: %t, loss %s)\n", v.Training.Iterations, v.Training.Converged, ratio3(v.Training.Loss))
	return sb.String()
}

func (v *summaryView) TableHeaders() []string {
	return []string{"VERSION", "TRAINED_AT", "CLASSES", "VOCABULARY", "EXAMPLES", "CONVERGED"}
}

func (v *summaryView) TableRows() [][]string {
	return [][]string{{
		v.Version,
		v.TrainedAt.Format(time.RFC3339),
		strconv.Itoa(len(v.Classes)),
		strconv.Itoa(v.VocabularySize),
		strconv.Itoa(v.Training.Examples),
		strconv.FormatBool(v.Training.Converged),
	}}
}

type qualityView riskclf.QualityReport

func (v *qualityView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Model %s on %d examples (%d skipped)\n", v.ModelVersion, v.Evaluated, v.Skipped)
	fmt.Fprintf(&sb, "Accuracy %s, macro precision %s, recall %s, F1 %s\n\n",
		ratio3(v.Accuracy), ratio3(v.MacroPrecision), ratio3(v.MacroRecall), ratio3(v.MacroF1))
	sb.WriteString(FormatTable(v.TableHeaders(), v.TableRows()))

	sb.WriteString("\nConfusion matrix (rows true, columns predicted):\n")
	headers := make([]string, 0, len(v.Classes)+1)
	headers = append(headers, "")
	for _, c := range v.Classes {
		headers = append(headers, string(c))
	}
	rows := make([][]string, 0, len(v.ConfusionMatrix))
	for i, counts := range v.ConfusionMatrix {
		row := make([]string, 0, len(counts)+1)
		row = append(row, string(v.Classes[i]))
		for _, n := range counts {
			row = append(row, strconv.Itoa(n))
		}
		rows = append(rows, row)
	}
	sb.WriteString(FormatTable(headers, rows))
	return sb.String()
}

func (v *qualityView) TableHeaders() []string {
	return []string{"CLASS", "PRECISION", "RECALL", "F1", "SUPPORT"}
}

func (v *qualityView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.PerClass))
	for _, m := range v.PerClass {
		rows = append(rows, []string{string(m.Class), ratio3(m.Precision), ratio3(m.Recall), ratio3(m.F1), strconv.Itoa(m.Support)})
	}
	return rows
}

type explanationView screening.Explanation

func (v *explanationView) String() string {
	if len(v.Contributions) == 0 {
		return fmt.Sprintf("No tokens push this snippet towards %s.\n", v.Typology)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tokens pushing towards %s (model %s):\n", v.Typology, v.ModelVersion)
	for _, c := range v.Contributions {
		fmt.Fprintf(&sb, "  %-24s %s\n", c.Token, strconv.FormatFloat(c.Weight, 'f', 4, 64))
	}
	return sb.String()
}

func (v *explanationView) TableHeaders() []string { return []string{"TOKEN", "WEIGHT"} }

func (v *explanationView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Contributions))
	for _, c := range v.Contributions {
		rows = append(rows, []string{c.Token, strconv.FormatFloat(c.Weight, 'f', 4, 64)})
	}
	return rows
}

type historyList []*risk.ScreeningRecord

func (l historyList) String() string {
	if len(l) == 0 {
		return "No screenings recorded.\n"
	}
	return FormatTable(l.TableHeaders(), l.TableRows())
}

func (l historyList) TableHeaders() []string {
	return []string{"ID", "CREATED_AT", "MODE", "STATUS", "SCORE", "QUERY"}
}

func (l historyList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		status, score := "", ""
		if r.Result != nil {
			status = string(r.Result.Status)
			score = strconv.Itoa(r.Result.RiskScore)
		}
		rows = append(rows, []string{r.ID, r.CreatedAt.Format(time.RFC3339), r.Mode, status, score, r.Query})
	}
	return rows
}

// ─────────────────────────────────────────────────────────────────────────────
// Catalogues
// ─────────────────────────────────────────────────────────────────────────────

type entityList []string

func (l entityList) String() string {
	if len(l) == 0 {
		return "No entities in the local corpus.\n"
	}
	return strings.Join(l, "\n") + "\n"
}

func (l entityList) TableHeaders() []string { return []string{"ENTITY"} }

func (l entityList) TableRows() [][]string {
	rows := make([][]string, len(l))
	for i, e := range l {
		rows[i] = []string{e}
	}
	return rows
}

type typologyList []screening.TypologyInfo

func (l typologyList) String() string {
	var sb strings.Builder
	for _, t := range l {
		fmt.Fprintf(&sb, "%-20s %s\n", t.Name, t.Severity)
	}
	return sb.String()
}

func (l typologyList) TableHeaders() []string {
	return []string{"TYPOLOGY", "SEVERITY", "RISK", "CRITICAL"}
}

func (l typologyList) TableRows() [][]string {
	rows := make([][]string, len(l))
	for i, t := range l {
		rows[i] = []string{string(t.Name), string(t.Severity), strconv.FormatBool(t.Risk), strconv.FormatBool(t.Critical)}
	}
	return rows
}

//Personal.AI order the ending
