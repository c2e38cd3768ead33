package riskclf

import (
	"encoding/json"
	"math"
	"time"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// Artifact names in a model store.
const (
	VectorizerArtifact = "vectorizer.json"
	ModelArtifact      = "risk_model.json"
)

// formatVersion is bumped on any incompatible artifact change.
const formatVersion = 1

type vectorizerDoc struct {
	FormatVersion int       `json:"format_version"`
	Vocabulary    []string  `json:"vocabulary"`
	IDF           []float64 `json:"idf"`
}

type modelDoc struct {
	FormatVersion  int             `json:"format_version"`
	Version        string          `json:"version"`
	TrainedAt      time.Time       `json:"trained_at"`
	VocabularySize int             `json:"vocabulary_size"`
	Classes        []risk.Typology `json:"classes"`
	Coefficients   [][]float64     `json:"coefficients"`
	Intercepts     []float64       `json:"intercepts"`
	Training       TrainingInfo    `json:"training"`
}

// Persist serialises m into the vectorizer and model artifacts.
func Persist(m *Model) (vectorizerBlob, modelBlob []byte, err error) {
	if m == nil || m.vec == nil {
		return nil, nil, errors.New(errors.ErrCodeModelNotReady, "cannot persist an unfitted model")
	}

	vectorizerBlob, err = json.Marshal(vectorizerDoc{
		FormatVersion: formatVersion,
		Vocabulary:    m.vec.terms,
		IDF:           m.vec.idf,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal vectorizer")
	}

	modelBlob, err = json.Marshal(modelDoc{
		FormatVersion:  formatVersion,
		Version:        m.version,
		TrainedAt:      m.trainedAt,
		VocabularySize: m.vec.VocabularySize(),
		Classes:        m.classes,
		Coefficients:   m.coef,
		Intercepts:     m.intercept,
		Training:       m.info,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal model")
	}
	return vectorizerBlob, modelBlob, nil
}

func invalidArtifact(format string, args ...interface{}) *errors.AppError {
	return errors.Newf(errors.ErrCodeModelArtifactInvalid, format, args...)
}

// Load rebuilds a model from its artifacts. Any structural inconsistency
// fails with ErrCodeModelArtifactInvalid.
func Load(vectorizerBlob, modelBlob []byte) (*Model, error) {
	var vd vectorizerDoc
	if err := json.Unmarshal(vectorizerBlob, &vd); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeModelArtifactInvalid, "decode "+VectorizerArtifact)
	}
	var md modelDoc
	if err := json.Unmarshal(modelBlob, &md); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeModelArtifactInvalid, "decode "+ModelArtifact)
	}

	if vd.FormatVersion != formatVersion {
		return nil, invalidArtifact("%s format version %d, want %d", VectorizerArtifact, vd.FormatVersion, formatVersion)
	}
	if md.FormatVersion != formatVersion {
		return nil, invalidArtifact("%s format version %d, want %d", ModelArtifact, md.FormatVersion, formatVersion)
	}

	v := len(vd.Vocabulary)
	if v == 0 {
		return nil, invalidArtifact("empty vocabulary")
	}
	if len(vd.IDF) != v {
		return nil, invalidArtifact("idf has %d entries for %d terms", len(vd.IDF), v)
	}
	for i, t := range vd.Vocabulary {
		if t == "" || (i > 0 && vd.Vocabulary[i-1] >= t) {
			return nil, invalidArtifact("vocabulary is not sorted and unique at position %d", i)
		}
	}
	for _, f := range vd.IDF {
		if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
			return nil, invalidArtifact("idf contains a non-positive or non-finite value")
		}
	}

	if md.VocabularySize != v {
		return nil, invalidArtifact("model expects %d features, vectorizer has %d", md.VocabularySize, v)
	}
	k := len(md.Classes)
	if k < 2 {
		return nil, invalidArtifact("model has %d classes", k)
	}
	for i, c := range md.Classes {
		if !c.IsValid() {
			return nil, invalidArtifact("unknown class %q", c)
		}
		if i > 0 && md.Classes[i-1] >= c {
			return nil, invalidArtifact("classes are not sorted and unique")
		}
	}
	if len(md.Coefficients) != k || len(md.Intercepts) != k {
		return nil, invalidArtifact("parameter shape does not match %d classes", k)
	}
	for ci, row := range md.Coefficients {
		if len(row) != v {
			return nil, invalidArtifact("coefficient row %d has %d entries, want %d", ci, len(row), v)
		}
	}

	m := &Model{
		vec:       newVectorizer(vd.Vocabulary, vd.IDF),
		classes:   md.Classes,
		coef:      md.Coefficients,
		intercept: md.Intercepts,
		trainedAt: md.TrainedAt,
		info:      md.Training,
	}
	m.version = fingerprint(m)
	if md.Version != "" && md.Version != m.version {
		return nil, invalidArtifact("artifacts do not belong together: fingerprint %s, recorded %s", m.version, md.Version)
	}
	return m, nil
}

//Personal.AI order the ending
