package screening

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/storage/modelstore"
	"github.com/turtacn/Graphyte-Intelligence/internal/intelligence/riskclf"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// Training triggers, used as metric labels.
const (
	TriggerStartup    = "startup"
	TriggerManual     = "manual"
	TriggerFileChange = "file_change"
)

// ErrModelNotReady is returned by queries issued before EnsureLoaded.
var ErrModelNotReady = errors.New(errors.ErrCodeModelNotReady, "risk model is not loaded")

// TrainingLock serialises training across processes sharing a model store.
// The redis mutex implements it.
type TrainingLock interface {
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
}

// ModelManager owns the classifier state. Readers take the current snapshot
// without locking; training and swapping are serialised.
type ModelManager struct {
	store   modelstore.Store
	source  risk.TrainingSource
	lock    TrainingLock
	fitOpts []riskclf.FitOption
	metrics *prometheus.AppMetrics
	logger  logging.Logger

	current atomic.Pointer[riskclf.Model]
	mu      sync.Mutex
}

// ManagerOption configures NewModelManager.
type ManagerOption func(*ModelManager)

// WithTrainingLock guards training with a distributed lock.
func WithTrainingLock(l TrainingLock) ManagerOption {
	return func(m *ModelManager) { m.lock = l }
}

// WithFitOptions forwards options to riskclf.Fit.
func WithFitOptions(opts ...riskclf.FitOption) ManagerOption {
	return func(m *ModelManager) { m.fitOpts = append(m.fitOpts, opts...) }
}

// WithManagerMetrics records trainings and the active version on metrics.
func WithManagerMetrics(metrics *prometheus.AppMetrics) ManagerOption {
	return func(m *ModelManager) { m.metrics = metrics }
}

// NewModelManager returns an empty manager. Call EnsureLoaded before serving.
func NewModelManager(store modelstore.Store, source risk.TrainingSource, log logging.Logger, opts ...ManagerOption) *ModelManager {
	if log == nil {
		log = logging.NewNopLogger()
	}
	m := &ModelManager{
		store:  store,
		source: source,
		logger: log.Named("model"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Classifier implements ClassifierProvider.
func (m *ModelManager) Classifier() (Classifier, error) {
	model, err := m.Model()
	if err != nil {
		return nil, err
	}
	return model, nil
}

// Model returns the current snapshot.
func (m *ModelManager) Model() (*riskclf.Model, error) {
	if model := m.current.Load(); model != nil {
		return model, nil
	}
	return nil, ErrModelNotReady
}

// Ready reports whether a model is loaded.
func (m *ModelManager) Ready() bool {
	return m.current.Load() != nil
}

// TrainingExamples reads the training corpus.
func (m *ModelManager) TrainingExamples(ctx context.Context) ([]risk.TrainingExample, error) {
	return m.source.LoadExamples(ctx)
}

// EnsureLoaded loads the persisted model, or trains and persists one when
// the store has none or holds an invalid one. Only the first call does work.
func (m *ModelManager) EnsureLoaded(ctx context.Context) error {
	if m.Ready() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Ready() {
		return nil
	}

	unlock, err := m.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	model, err := m.load(ctx)
	switch {
	case err == nil:
		m.swap(model)
		m.logger.Info("risk model loaded",
			logging.String("version", model.Version()),
			logging.String("location", m.store.Location()))
		return nil
	case errors.IsCode(err, errors.ErrCodeArtifactNotFound):
		m.logger.Info("no persisted risk model, training", logging.String("location", m.store.Location()))
	case errors.IsCode(err, errors.ErrCodeModelArtifactInvalid):
		m.logger.Warn("persisted risk model is invalid, retraining", logging.Err(err))
	default:
		return err
	}

	model, err = m.train(ctx, TriggerStartup)
	if err != nil {
		return err
	}
	m.swap(model)
	return nil
}

// Retrain fits a new model from the current training corpus, persists it and
// swaps it in. Queries already running keep their snapshot.
func (m *ModelManager) Retrain(ctx context.Context, trigger string) (*riskclf.Model, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	unlock, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	model, err := m.train(ctx, trigger)
	if err != nil {
		return nil, err
	}
	previous := m.swap(model)
	if previous != nil {
		m.logger.Info("risk model replaced",
			logging.String("previous", previous.Version()),
			logging.String("version", model.Version()),
			logging.String("trigger", trigger))
	}
	return model, nil
}

func (m *ModelManager) acquire(ctx context.Context) (func(), error) {
	if m.lock == nil {
		return func() {}, nil
	}
	if err := m.lock.Lock(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConflict, "acquire training lock")
	}
	return func() {
		if err := m.lock.Unlock(context.Background()); err != nil {
			m.logger.Warn("failed to release training lock", logging.Err(err))
		}
	}, nil
}

func (m *ModelManager) load(ctx context.Context) (*riskclf.Model, error) {
	artifacts, err := m.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return riskclf.Load(artifacts.Vectorizer, artifacts.Model)
}

// train fits and persists. A model that cannot be persisted is still used;
// the next start will train again.
func (m *ModelManager) train(ctx context.Context, trigger string) (*riskclf.Model, error) {
	start := time.Now()
	model, err := m.fit(ctx)
	prometheus.RecordTraining(m.metrics, trigger, err == nil, time.Since(start))
	if err != nil {
		m.logger.Error("risk model training failed", logging.String("trigger", trigger), logging.Err(err))
		return nil, err
	}

	m.logger.Info("risk model trained",
		logging.String("version", model.Version()),
		logging.String("trigger", trigger),
		logging.Int("vocabulary", model.VocabularySize()),
		logging.Int("iterations", model.Info().Iterations),
		logging.Duration("took", time.Since(start)))

	if err := m.persist(ctx, model); err != nil {
		m.logger.Warn("risk model not persisted", logging.String("location", m.store.Location()), logging.Err(err))
	}
	return model, nil
}

func (m *ModelManager) fit(ctx context.Context) (*riskclf.Model, error) {
	examples, err := m.source.LoadExamples(ctx)
	if err != nil {
		return nil, err
	}
	opts := append([]riskclf.FitOption{riskclf.WithLogger(m.logger)}, m.fitOpts...)
	return riskclf.Fit(examples, opts...)
}

func (m *ModelManager) persist(ctx context.Context, model *riskclf.Model) error {
	vec, mdl, err := riskclf.Persist(model)
	if err != nil {
		return err
	}
	return m.store.Save(ctx, modelstore.Artifacts{Vectorizer: vec, Model: mdl})
}

func (m *ModelManager) swap(model *riskclf.Model) *riskclf.Model {
	previous := m.current.Swap(model)
	if previous != nil && m.metrics != nil && previous.Version() != model.Version() {
		m.metrics.ModelReady.WithLabelValues(previous.Version()).Set(0)
	}
	prometheus.SetModel(m.metrics, model.Version(), model.VocabularySize())
	return previous
}

//Personal.AI order the ending
