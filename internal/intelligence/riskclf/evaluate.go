package riskclf

import (
	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// ClassMetrics are the one-vs-rest scores of one class.
type ClassMetrics struct {
	Class     risk.Typology `json:"class"`
	Precision float64       `json:"precision"`
	Recall    float64       `json:"recall"`
	F1        float64       `json:"f1"`
	Support   int           `json:"support"`
}

// QualityReport summarises a model against labelled examples. Confusion
// rows are true classes and columns predicted classes, both in Classes order.
type QualityReport struct {
	ModelVersion    string          `json:"model_version"`
	Classes         []risk.Typology `json:"classes"`
	PerClass        []ClassMetrics  `json:"per_class"`
	MacroPrecision  float64         `json:"macro_precision"`
	MacroRecall     float64         `json:"macro_recall"`
	MacroF1         float64         `json:"macro_f1"`
	Accuracy        float64         `json:"accuracy"`
	ConfusionMatrix [][]int         `json:"confusion_matrix"`
	Evaluated       int             `json:"evaluated"`
	Skipped         int             `json:"skipped"`
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Evaluate classifies every example and scores the raw predictions. Examples
// whose label the model does not know are skipped. Undefined ratios are 0.
func Evaluate(m *Model, examples []risk.TrainingExample) (*QualityReport, error) {
	if m == nil || m.vec == nil {
		return nil, errors.New(errors.ErrCodeModelNotReady, "risk model is not ready")
	}

	k := len(m.classes)
	report := &QualityReport{
		ModelVersion:    m.version,
		Classes:         m.Classes(),
		ConfusionMatrix: make([][]int, k),
	}
	for i := range report.ConfusionMatrix {
		report.ConfusionMatrix[i] = make([]int, k)
	}

	texts := make([]string, 0, len(examples))
	truth := make([]int, 0, len(examples))
	for _, ex := range examples {
		ci := m.classIndex(ex.Label)
		if ci < 0 {
			report.Skipped++
			continue
		}
		texts = append(texts, ex.Text)
		truth = append(truth, ci)
	}

	preds, err := m.Classify(texts)
	if err != nil {
		return nil, err
	}
	correct := 0
	for i, p := range preds {
		pi := m.classIndex(p.Label)
		report.ConfusionMatrix[truth[i]][pi]++
		if pi == truth[i] {
			correct++
		}
	}
	report.Evaluated = len(preds)
	report.Accuracy = ratio(float64(correct), float64(len(preds)))

	report.PerClass = make([]ClassMetrics, k)
	for c := 0; c < k; c++ {
		tp := report.ConfusionMatrix[c][c]
		support, predicted := 0, 0
		for j := 0; j < k; j++ {
			support += report.ConfusionMatrix[c][j]
			predicted += report.ConfusionMatrix[j][c]
		}
		p := ratio(float64(tp), float64(predicted))
		r := ratio(float64(tp), float64(support))
		cm := ClassMetrics{
			Class:     m.classes[c],
			Precision: p,
			Recall:    r,
			F1:        ratio(2*p*r, p+r),
			Support:   support,
		}
		report.PerClass[c] = cm
		report.MacroPrecision += cm.Precision
		report.MacroRecall += cm.Recall
		report.MacroF1 += cm.F1
	}
	report.MacroPrecision /= float64(k)
	report.MacroRecall /= float64(k)
	report.MacroF1 /= float64(k)

	return report, nil
}

//Personal.AI order the ending
