package screening

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Graphyte-Intelligence/internal/intelligence/riskclf"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// DTOs
// ─────────────────────────────────────────────────────────────────────────────

// AnalyzeRequest asks for one screening. MinConfidence and Typologies only
// shape the filtered evidence view; the result itself is unfiltered.
type AnalyzeRequest struct {
	Entity        string   `json:"entity"`
	Mode          string   `json:"mode,omitempty"`
	Limit         int      `json:"limit,omitempty"`
	MinConfidence *float64 `json:"min_confidence,omitempty"`
	Typologies    []string `json:"typologies,omitempty"`
}

// Screening is a completed analysis with its analyst views.
type Screening struct {
	ID           string                `json:"id"`
	Mode         Mode                  `json:"mode"`
	ModelVersion string                `json:"model_version"`
	Cached       bool                  `json:"cached"`
	CreatedAt    time.Time             `json:"created_at"`
	Result       *risk.AnalysisResult  `json:"result"`
	Profile      risk.Profile          `json:"profile"`
	Filter       risk.EvidenceFilter   `json:"filter"`
	Evidence     risk.FilteredEvidence `json:"filtered_evidence"`
}

// ExplainRequest asks which tokens pushed snippet towards typology.
type ExplainRequest struct {
	Snippet  string `json:"snippet"`
	Typology string `json:"typology"`
}

// Explanation lists the strongest positive token contributions.
type Explanation struct {
	Typology      risk.Typology               `json:"typology"`
	ModelVersion  string                      `json:"model_version"`
	Contributions []riskclf.TokenContribution `json:"contributions"`
}

// ModelSummary describes the active model.
type ModelSummary struct {
	Version        string               `json:"version"`
	TrainedAt      time.Time            `json:"trained_at"`
	Classes        []risk.Typology      `json:"classes"`
	VocabularySize int                  `json:"vocabulary_size"`
	Training       riskclf.TrainingInfo `json:"training"`
}

// TypologyInfo is one entry of the typology catalogue.
type TypologyInfo struct {
	Name     risk.Typology `json:"name"`
	Severity risk.Severity `json:"severity"`
	Risk     bool          `json:"risk"`
	Critical bool          `json:"critical"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Collaborators
// ─────────────────────────────────────────────────────────────────────────────

// ResultCache stores analysis results. The redis Cache implements it.
type ResultCache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

// EventPublisher announces completed screenings. The kafka ScreeningEvents
// adapter implements it.
type EventPublisher interface {
	PublishCompleted(ctx context.Context, rec *risk.ScreeningRecord) error
}

const cacheKeyPrefix = "analysis:"

// ─────────────────────────────────────────────────────────────────────────────
// Service
// ─────────────────────────────────────────────────────────────────────────────

// Service is the facade every interface uses.
type Service interface {
	Analyze(ctx context.Context, req *AnalyzeRequest) (*Screening, error)
	Explain(ctx context.Context, req *ExplainRequest) (*Explanation, error)
	QualityReport(ctx context.Context) (*riskclf.QualityReport, error)
	Retrain(ctx context.Context, trigger string) (*ModelSummary, error)
	Model(ctx context.Context) (*ModelSummary, error)
	Typologies() []TypologyInfo
	Entities(ctx context.Context) ([]string, error)
	GetScreening(ctx context.Context, id string) (*risk.ScreeningRecord, error)
	ListScreenings(ctx context.Context, entity string, limit int) ([]*risk.ScreeningRecord, error)
	Ready() bool
}

// ServiceConfig holds the facade tunables.
type ServiceConfig struct {
	CacheTTL      time.Duration
	MinConfidence float64
}

// ServiceOption wires an optional collaborator.
type ServiceOption func(*serviceImpl)

// WithCache enables result caching.
func WithCache(c ResultCache) ServiceOption {
	return func(s *serviceImpl) { s.cache = c }
}

// WithRepository enables the screening audit trail.
func WithRepository(r risk.ScreeningRepository) ServiceOption {
	return func(s *serviceImpl) { s.repo = r }
}

// WithPublisher enables completion events.
func WithPublisher(p EventPublisher, topic string) ServiceOption {
	return func(s *serviceImpl) {
		s.publisher = p
		s.topic = topic
	}
}

// WithServiceMetrics records screenings on m.
func WithServiceMetrics(m *prometheus.AppMetrics) ServiceOption {
	return func(s *serviceImpl) { s.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *serviceImpl) { s.now = now }
}

type serviceImpl struct {
	pipeline  *Pipeline
	models    *ModelManager
	corpus    risk.EntityCorpus
	cfg       ServiceConfig
	cache     ResultCache
	repo      risk.ScreeningRepository
	publisher EventPublisher
	topic     string
	metrics   *prometheus.AppMetrics
	now       func() time.Time
	logger    logging.Logger
}

// NewService wires the facade. corpus may be nil.
func NewService(pipeline *Pipeline, models *ModelManager, corpus risk.EntityCorpus, cfg ServiceConfig, log logging.Logger, opts ...ServiceOption) Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = risk.DefaultMinConfidence
	}
	s := &serviceImpl{
		pipeline: pipeline,
		models:   models,
		corpus:   corpus,
		cfg:      cfg,
		now:      time.Now,
		logger:   log.Named("screening"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze runs the pipeline through the cache, then records and announces
// the result. Recording and publishing failures are logged, never returned.
func (s *serviceImpl) Analyze(ctx context.Context, req *AnalyzeRequest) (*Screening, error) {
	start := s.now()
	if req == nil || strings.TrimSpace(req.Entity) == "" {
		return nil, errors.New(errors.ErrCodeValidation, "entity is required")
	}
	if req.Limit < 0 {
		return nil, errors.Newf(errors.ErrCodeValidation, "limit must be ≥ 0, got %d", req.Limit)
	}
	mode, err := ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	filter, err := s.filter(req)
	if err != nil {
		return nil, err
	}

	clf, err := s.models.Classifier()
	if err != nil {
		return nil, err
	}
	entity := strings.TrimSpace(req.Entity)
	opts := analyzeOptions{mode: mode, limit: req.Limit}

	result, cached, err := s.analyze(ctx, clf, entity, opts)
	if err != nil {
		prometheus.RecordError(s.metrics, "screening", string(errors.GetCode(err)))
		return nil, err
	}

	sc := &Screening{
		ID:           uuid.NewString(),
		Mode:         mode,
		ModelVersion: clf.Version(),
		Cached:       cached,
		CreatedAt:    s.now().UTC(),
		Result:       result,
		Profile:      risk.BuildProfile(result),
		Filter:       filter,
		Evidence:     risk.FilterEvidence(result.Evidence, filter),
	}

	rec := &risk.ScreeningRecord{
		ID:           sc.ID,
		Query:        entity,
		Mode:         string(mode),
		Result:       result,
		ModelVersion: sc.ModelVersion,
		CreatedAt:    sc.CreatedAt,
	}
	s.record(ctx, rec)
	s.publish(ctx, rec)

	prometheus.RecordScreening(s.metrics, string(mode), string(result.Status), result.RiskScore,
		evidenceLabels(result.Evidence), s.now().Sub(start))
	s.logger.Info("screening completed",
		logging.String("id", sc.ID),
		logging.String("entity", result.Entity),
		logging.String("mode", string(mode)),
		logging.String("status", string(result.Status)),
		logging.Int("risk_score", result.RiskScore),
		logging.Bool("cached", cached))
	return sc, nil
}

func (s *serviceImpl) filter(req *AnalyzeRequest) (risk.EvidenceFilter, error) {
	f := risk.EvidenceFilter{MinConfidence: s.cfg.MinConfidence}
	if req.MinConfidence != nil {
		if *req.MinConfidence < 0 || *req.MinConfidence > 1 {
			return f, errors.Newf(errors.ErrCodeValidation, "min_confidence %v is out of range [0, 1]", *req.MinConfidence)
		}
		f.MinConfidence = *req.MinConfidence
	}
	typologies, err := risk.ParseTypologies(req.Typologies)
	if err != nil {
		return f, err
	}
	if len(typologies) > 0 {
		f.Typologies = typologies
	}
	return f, nil
}

func (s *serviceImpl) analyze(ctx context.Context, clf Classifier, entity string, opts analyzeOptions) (*risk.AnalysisResult, bool, error) {
	if s.cache == nil {
		r, err := s.pipeline.analyzeWith(ctx, clf, entity, opts)
		return r, false, err
	}

	limit := 0
	if opts.mode == ModeLive {
		limit = s.pipeline.limit(opts.limit)
	}
	key := fmt.Sprintf("%s%s:%s:%d:%s", cacheKeyPrefix, clf.Version(), opts.mode, limit, cacheSubject(entity, opts.mode))

	loaded := false
	var result risk.AnalysisResult
	err := s.cache.GetOrSet(ctx, key, &result, s.cfg.CacheTTL, func(ctx context.Context) (interface{}, error) {
		loaded = true
		return s.pipeline.analyzeWith(ctx, clf, entity, opts)
	})
	if err != nil {
		return nil, false, err
	}
	prometheus.RecordCacheAccess(s.metrics, "analysis", !loaded)
	if result.IsNotFound() {
		// A shared local entry may have been stored under another spelling.
		result.Entity = entity
	}
	return &result, !loaded, nil
}

// cacheSubject is the entity part of the cache key. Local lookups share an
// entry per normalised name since they resolve to the same corpus rows; live
// queries send the raw name to the retriever, so they key on it verbatim.
func cacheSubject(entity string, mode Mode) string {
	if mode == ModeLive {
		return entity
	}
	return risk.NormalizeName(entity)
}

func (s *serviceImpl) record(ctx context.Context, rec *risk.ScreeningRecord) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		prometheus.RecordError(s.metrics, "screening_repository", string(errors.GetCode(err)))
		s.logger.Warn("failed to record screening", logging.String("id", rec.ID), logging.Err(err))
	}
}

func (s *serviceImpl) publish(ctx context.Context, rec *risk.ScreeningRecord) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishCompleted(ctx, rec)
	prometheus.RecordEventPublished(s.metrics, s.topic, err == nil)
	if err != nil {
		s.logger.Warn("failed to publish screening event", logging.String("id", rec.ID), logging.Err(err))
	}
}

func evidenceLabels(evidence []risk.EvidenceItem) []string {
	out := make([]string, len(evidence))
	for i, e := range evidence {
		out[i] = string(e.PredictedRisk)
	}
	return out
}

// Explain reports the tokens that most support typology for snippet.
func (s *serviceImpl) Explain(ctx context.Context, req *ExplainRequest) (*Explanation, error) {
	if req == nil || strings.TrimSpace(req.Snippet) == "" {
		return nil, errors.New(errors.ErrCodeValidation, "snippet is required")
	}
	t, err := risk.ParseTypology(req.Typology)
	if err != nil {
		return nil, err
	}
	model, err := s.models.Model()
	if err != nil {
		return nil, err
	}
	return &Explanation{
		Typology:      t,
		ModelVersion:  model.Version(),
		Contributions: model.Explain(req.Snippet, t),
	}, nil
}

// QualityReport evaluates the active model on the training corpus.
func (s *serviceImpl) QualityReport(ctx context.Context) (*riskclf.QualityReport, error) {
	model, err := s.models.Model()
	if err != nil {
		return nil, err
	}
	examples, err := s.models.TrainingExamples(ctx)
	if err != nil {
		return nil, err
	}
	return riskclf.Evaluate(model, examples)
}

// Retrain replaces the model and drops cached analyses of older versions.
func (s *serviceImpl) Retrain(ctx context.Context, trigger string) (*ModelSummary, error) {
	if trigger == "" {
		trigger = TriggerManual
	}
	model, err := s.models.Retrain(ctx, trigger)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if n, err := s.cache.DeleteByPrefix(ctx, cacheKeyPrefix); err != nil {
			s.logger.Warn("failed to purge analysis cache", logging.Err(err))
		} else if n > 0 {
			s.logger.Info("analysis cache purged", logging.Int64("keys", n))
		}
	}
	return summarize(model), nil
}

// Model describes the active model.
func (s *serviceImpl) Model(ctx context.Context) (*ModelSummary, error) {
	model, err := s.models.Model()
	if err != nil {
		return nil, err
	}
	return summarize(model), nil
}

func summarize(m *riskclf.Model) *ModelSummary {
	return &ModelSummary{
		Version:        m.Version(),
		TrainedAt:      m.TrainedAt(),
		Classes:        m.Classes(),
		VocabularySize: m.VocabularySize(),
		Training:       m.Info(),
	}
}

// Typologies lists every typology with its severity.
func (s *serviceImpl) Typologies() []TypologyInfo {
	all := risk.AllTypologies()
	out := make([]TypologyInfo, len(all))
	for i, t := range all {
		out[i] = TypologyInfo{Name: t, Severity: t.Severity(), Risk: t.IsRisk(), Critical: t.IsCritical()}
	}
	return out
}

// Entities lists the entities of the local corpus.
func (s *serviceImpl) Entities(ctx context.Context) ([]string, error) {
	if s.corpus == nil {
		return []string{}, nil
	}
	return s.corpus.Entities(ctx)
}

var errHistoryDisabled = errors.New(errors.ErrCodeServiceUnavailable, "screening history is not enabled")

// GetScreening fetches one audit record.
func (s *serviceImpl) GetScreening(ctx context.Context, id string) (*risk.ScreeningRecord, error) {
	if s.repo == nil {
		return nil, errHistoryDisabled
	}
	return s.repo.FindByID(ctx, id)
}

// ListScreenings lists the latest audit records of a resolved entity.
func (s *serviceImpl) ListScreenings(ctx context.Context, entity string, limit int) ([]*risk.ScreeningRecord, error) {
	if s.repo == nil {
		return nil, errHistoryDisabled
	}
	if strings.TrimSpace(entity) == "" {
		return nil, errors.New(errors.ErrCodeValidation, "entity is required")
	}
	return s.repo.ListByEntity(ctx, entity, limit)
}

// Ready reports whether screenings can be served.
func (s *serviceImpl) Ready() bool {
	return s.models.Ready()
}

//Personal.AI order the ending
