// Package riskclf implements the risk-typology text classifier: a TF-IDF
// vectorizer followed by a class-balanced multinomial logistic regression
// fitted with L-BFGS.
//
// A *Model is immutable after Fit or Load and safe for concurrent use.
package riskclf

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Model
// ─────────────────────────────────────────────────────────────────────────────

// Model is a fitted classifier.
type Model struct {
	vec       *Vectorizer
	classes   []risk.Typology
	coef      [][]float64 // K × V
	intercept []float64   // K

	version   string
	trainedAt time.Time
	info      TrainingInfo
}

// TrainingInfo describes how a model was fitted.
type TrainingInfo struct {
	Examples   int     `json:"examples"`
	Iterations int     `json:"iterations"`
	Loss       float64 `json:"loss"`
	Converged  bool    `json:"converged"`
}

// Prediction is the classification of one text.
type Prediction struct {
	Label         risk.Typology             `json:"label"`
	Confidence    float64                   `json:"confidence"`
	Probabilities map[risk.Typology]float64 `json:"probabilities"`
}

// Classes returns the known classes in sorted order.
func (m *Model) Classes() []risk.Typology {
	out := make([]risk.Typology, len(m.classes))
	copy(out, m.classes)
	return out
}

// VocabularySize returns the number of TF-IDF features.
func (m *Model) VocabularySize() int { return m.vec.VocabularySize() }

// Version is a content fingerprint of the fitted parameters.
func (m *Model) Version() string { return m.version }

// TrainedAt is when the model was fitted.
func (m *Model) TrainedAt() time.Time { return m.trainedAt }

// Info returns the training summary.
func (m *Model) Info() TrainingInfo { return m.info }

func (m *Model) classIndex(c risk.Typology) int {
	for i, k := range m.classes {
		if k == c {
			return i
		}
	}
	return -1
}

// decision returns the K class scores of x.
func (m *Model) decision(x SparseVector) []float64 {
	z := make([]float64, len(m.classes))
	for k := range m.classes {
		s := m.intercept[k]
		row := m.coef[k]
		for n, j := range x.Indices {
			s += row[j] * x.Values[n]
		}
		z[k] = s
	}
	return z
}

// softmax converts z to probabilities in place.
func softmax(z []float64) {
	lse := floats.LogSumExp(z)
	for i := range z {
		z[i] = math.Exp(z[i] - lse)
	}
}

// Classify predicts every text in one batch, in input order. Ties of the
// top posterior go to the first class in sorted order.
func (m *Model) Classify(texts []string) ([]Prediction, error) {
	if m == nil || m.vec == nil {
		return nil, errors.New(errors.ErrCodeModelNotReady, "risk model is not ready")
	}
	out := make([]Prediction, len(texts))
	for i, text := range texts {
		p := m.decision(m.vec.Transform(text))
		softmax(p)
		best := floats.MaxIdx(p)

		probs := make(map[risk.Typology]float64, len(m.classes))
		for k, c := range m.classes {
			probs[c] = p[k]
		}
		out[i] = Prediction{Label: m.classes[best], Confidence: p[best], Probabilities: probs}
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Options
// ─────────────────────────────────────────────────────────────────────────────

type fitConfig struct {
	maxFeatures       int
	maxIterations     int
	c                 float64
	gradientThreshold float64
	logger            logging.Logger
	now               func() time.Time
}

// FitOption customises Fit.
type FitOption func(*fitConfig)

// WithMaxFeatures bounds the vocabulary size.
func WithMaxFeatures(n int) FitOption {
	return func(c *fitConfig) {
		if n > 0 {
			c.maxFeatures = n
		}
	}
}

// WithMaxIterations bounds the L-BFGS major iterations.
func WithMaxIterations(n int) FitOption {
	return func(c *fitConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithRegularization sets the inverse L2 strength C.
func WithRegularization(cInv float64) FitOption {
	return func(c *fitConfig) {
		if cInv > 0 {
			c.c = cInv
		}
	}
}

// WithGradientThreshold sets the gradient-norm convergence threshold.
func WithGradientThreshold(g float64) FitOption {
	return func(c *fitConfig) {
		if g > 0 {
			c.gradientThreshold = g
		}
	}
}

// WithLogger reports optimiser warnings.
func WithLogger(l logging.Logger) FitOption {
	return func(c *fitConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock fixes the training timestamp.
func WithClock(now func() time.Time) FitOption {
	return func(c *fitConfig) {
		if now != nil {
			c.now = now
		}
	}
}

func defaultFitConfig() *fitConfig {
	return &fitConfig{
		maxFeatures:       DefaultMaxFeatures,
		maxIterations:     500,
		c:                 1.0,
		gradientThreshold: 1e-6,
		logger:            logging.NewNopLogger(),
		now:               time.Now,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Fit
// ─────────────────────────────────────────────────────────────────────────────

// Fit trains a model on examples. Classes are the distinct labels, sorted.
// An empty corpus fails with ErrCodeTrainingDataMissing; a corpus with an
// invalid label, fewer than two classes or no usable token fails with
// ErrCodeInvalidTrainingData.
func Fit(examples []risk.TrainingExample, opts ...FitOption) (*Model, error) {
	cfg := defaultFitConfig()
	for _, o := range opts {
		o(cfg)
	}

	if len(examples) == 0 {
		return nil, errors.New(errors.ErrCodeTrainingDataMissing, "training corpus is empty")
	}

	present := map[risk.Typology]int{}
	for i, ex := range examples {
		if !ex.Label.IsValid() {
			return nil, errors.Newf(errors.ErrCodeInvalidTrainingData, "example %d has unknown label %q", i, ex.Label)
		}
		present[ex.Label]++
	}
	if len(present) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidTrainingData, "training corpus needs at least two distinct labels")
	}

	classes := make([]risk.Typology, 0, len(present))
	for c := range present {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	docs := make([][]string, len(examples))
	for i, ex := range examples {
		docs[i] = Tokenize(ex.Text)
	}
	vec := fitVectorizer(docs, cfg.maxFeatures)
	if vec.VocabularySize() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTrainingData, "training corpus has no usable tokens")
	}

	rows := make([]SparseVector, len(examples))
	labels := make([]int, len(examples))
	weights := make([]float64, len(examples))
	n, k := float64(len(examples)), float64(len(classes))
	for i, ex := range examples {
		rows[i] = vec.transformTokens(docs[i])
		for ci, c := range classes {
			if c == ex.Label {
				labels[i] = ci
				break
			}
		}
		weights[i] = n / (k * float64(present[ex.Label]))
	}

	prob := &softmaxProblem{
		x:       rows,
		y:       labels,
		weights: weights,
		k:       len(classes),
		v:       vec.VocabularySize(),
		c:       cfg.c,
	}
	params, info := prob.minimize(cfg)
	info.Examples = len(examples)

	m := &Model{
		vec:       vec,
		classes:   classes,
		coef:      make([][]float64, len(classes)),
		intercept: make([]float64, len(classes)),
		trainedAt: cfg.now().UTC(),
		info:      info,
	}
	for ci := range classes {
		m.coef[ci] = append([]float64(nil), params[ci*prob.v:(ci+1)*prob.v]...)
		m.intercept[ci] = params[len(classes)*prob.v+ci]
	}
	m.version = fingerprint(m)
	return m, nil
}

// fingerprint hashes vocabulary, classes and parameters.
func fingerprint(m *Model) string {
	h := sha256.New()
	var buf [8]byte
	for _, t := range m.vec.terms {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	for _, f := range m.vec.idf {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	for ci, c := range m.classes {
		h.Write([]byte(c))
		h.Write([]byte{0})
		for _, f := range m.coef[ci] {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
			h.Write(buf[:])
		}
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(m.intercept[ci]))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))[:12]
}

//Personal.AI order the ending
