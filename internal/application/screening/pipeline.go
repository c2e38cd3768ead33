// Package screening orchestrates adverse-media screening: entity resolution
// or live retrieval, batched classification, neutral override, scoring and
// the best-effort side effects around a completed analysis.
package screening

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Graphyte-Intelligence/internal/intelligence/riskclf"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Modes and options
// ─────────────────────────────────────────────────────────────────────────────

// Mode selects where articles come from.
type Mode string

const (
	ModeLocal Mode = "local"
	ModeLive  Mode = "live"
)

// ParseMode accepts "local", "live" or "" (local).
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeLocal:
		return ModeLocal, nil
	case ModeLive:
		return ModeLive, nil
	default:
		return "", errors.Newf(errors.ErrCodeValidation, "unknown screening mode %q", s)
	}
}

// Pipeline defaults.
const (
	DefaultNeutralThreshold = 0.55
	DefaultLimit            = 10
	DefaultRetrievalTimeout = 5 * time.Second
)

// PipelineConfig holds the tunables of Analyze.
type PipelineConfig struct {
	NeutralThreshold float64
	DefaultLimit     int
	RetrievalTimeout time.Duration
}

// DefaultPipelineConfig returns the production defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		NeutralThreshold: DefaultNeutralThreshold,
		DefaultLimit:     DefaultLimit,
		RetrievalTimeout: DefaultRetrievalTimeout,
	}
}

func (c *PipelineConfig) applyDefaults() {
	if c.NeutralThreshold <= 0 {
		c.NeutralThreshold = DefaultNeutralThreshold
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = DefaultLimit
	}
	if c.RetrievalTimeout <= 0 {
		c.RetrievalTimeout = DefaultRetrievalTimeout
	}
}

type analyzeOptions struct {
	mode  Mode
	limit int
}

// AnalyzeOption tunes one Analyze call.
type AnalyzeOption func(*analyzeOptions)

// WithMode selects local or live retrieval. Local is the default.
func WithMode(m Mode) AnalyzeOption {
	return func(o *analyzeOptions) { o.mode = m }
}

// WithLimit bounds the number of live articles. Non-positive means default.
func WithLimit(n int) AnalyzeOption {
	return func(o *analyzeOptions) { o.limit = n }
}

// ─────────────────────────────────────────────────────────────────────────────
// Classifier seam
// ─────────────────────────────────────────────────────────────────────────────

// Classifier labels a batch of texts. *riskclf.Model implements it.
type Classifier interface {
	Classify(texts []string) ([]riskclf.Prediction, error)
	Version() string
}

// ClassifierProvider hands out the current classifier snapshot, or
// ErrCodeModelNotReady before initialisation.
type ClassifierProvider interface {
	Classifier() (Classifier, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Pipeline
// ─────────────────────────────────────────────────────────────────────────────

// Pipeline turns an entity name into an AnalysisResult. It keeps no
// per-call state and is safe for concurrent use.
type Pipeline struct {
	models        ClassifierProvider
	corpus        risk.EntityCorpus
	retriever     risk.Retriever
	retrieverName string
	cfg           PipelineConfig
	metrics       *prometheus.AppMetrics
	logger        logging.Logger
}

// PipelineOption configures NewPipeline.
type PipelineOption func(*Pipeline)

// WithRetriever enables live mode. name labels retrieval-failure metrics.
func WithRetriever(r risk.Retriever, name string) PipelineOption {
	return func(p *Pipeline) {
		p.retriever = r
		p.retrieverName = name
	}
}

// WithPipelineMetrics records retrieval failures on m.
func WithPipelineMetrics(m *prometheus.AppMetrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline builds a pipeline over the local corpus. corpus may be nil
// when only live mode is used.
func NewPipeline(models ClassifierProvider, corpus risk.EntityCorpus, cfg PipelineConfig, log logging.Logger, opts ...PipelineOption) *Pipeline {
	if log == nil {
		log = logging.NewNopLogger()
	}
	cfg.applyDefaults()
	p := &Pipeline{
		models: models,
		corpus: corpus,
		cfg:    cfg,
		logger: log.Named("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LiveEnabled reports whether a retriever is configured.
func (p *Pipeline) LiveEnabled() bool {
	return p.retriever != nil
}

// Analyze screens entityName. An entity without media is a not_found
// result, not an error.
func (p *Pipeline) Analyze(ctx context.Context, entityName string, opts ...AnalyzeOption) (*risk.AnalysisResult, error) {
	clf, err := p.models.Classifier()
	if err != nil {
		return nil, err
	}
	return p.analyzeWith(ctx, clf, entityName, resolveOptions(opts))
}

func resolveOptions(opts []AnalyzeOption) analyzeOptions {
	o := analyzeOptions{mode: ModeLocal}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// analyzeWith runs the pipeline against one classifier snapshot.
func (p *Pipeline) analyzeWith(ctx context.Context, clf Classifier, entityName string, o analyzeOptions) (*risk.AnalysisResult, error) {
	normalized := risk.NormalizeName(entityName)

	var (
		entity   string
		articles []risk.Article
		err      error
	)
	switch o.mode {
	case ModeLive:
		entity = entityName
		articles, err = p.retrieve(ctx, entityName, p.limit(o.limit))
	case ModeLocal, "":
		entity, articles, err = p.resolve(ctx, normalized)
		if entity == "" {
			entity = entityName
		}
	default:
		return nil, errors.Newf(errors.ErrCodeValidation, "unknown screening mode %q", o.mode)
	}
	if err != nil {
		return nil, err
	}

	if len(articles) == 0 {
		p.logger.Debug("no adverse media", logging.String("entity", entityName), logging.String("mode", string(o.mode)))
		return risk.NotFoundResult(entity), nil
	}

	texts := make([]string, len(articles))
	for i, a := range articles {
		texts[i] = a.ClassificationText()
	}
	preds, err := clf.Classify(texts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "classify articles")
	}
	if len(preds) != len(articles) {
		return nil, errors.Newf(errors.ErrCodeInternal, "classifier returned %d predictions for %d articles", len(preds), len(articles))
	}

	evidence := make([]risk.EvidenceItem, len(articles))
	for i, a := range articles {
		label := preds[i].Label
		if preds[i].Confidence < p.cfg.NeutralThreshold {
			label = risk.TypologyNeutral
		}
		evidence[i] = risk.NewEvidenceItem(a, label, preds[i].Confidence)
	}

	result := risk.NewFoundResult(entity, evidence)
	p.logger.Debug("entity analysed",
		logging.String("entity", result.Entity),
		logging.Int("articles", len(articles)),
		logging.Int("risk_score", result.RiskScore))
	return result, nil
}

func (p *Pipeline) limit(n int) int {
	if n <= 0 {
		return p.cfg.DefaultLimit
	}
	return n
}

func (p *Pipeline) resolve(ctx context.Context, normalized string) (string, []risk.Article, error) {
	if p.corpus == nil {
		return "", nil, errors.New(errors.ErrCodeServiceUnavailable, "local article corpus is not configured")
	}
	if normalized == "" {
		return "", nil, nil
	}
	return p.corpus.Resolve(ctx, normalized)
}

// retrieve queries the live source. Failures other than caller
// cancellation count as zero articles.
func (p *Pipeline) retrieve(ctx context.Context, entityName string, limit int) ([]risk.Article, error) {
	if p.retriever == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "live retrieval is not configured")
	}

	rctx, cancel := context.WithTimeout(ctx, p.cfg.RetrievalTimeout)
	defer cancel()

	query := fmt.Sprintf("\"%s\" news", entityName)
	articles, err := p.retriever.Retrieve(rctx, query, limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Warn("live retrieval failed, treating as no articles",
			logging.String("entity", entityName),
			logging.String("retriever", p.retrieverName),
			logging.Err(err))
		prometheus.RecordRetrievalFailure(p.metrics, p.retrieverName)
		return nil, nil
	}
	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

//Personal.AI order the ending
