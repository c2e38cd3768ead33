package screening

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/storage/modelstore"
	"github.com/turtacn/Graphyte-Intelligence/internal/intelligence/riskclf"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────────────────────────────────────

func trainingExamples() []risk.TrainingExample {
	ex := func(text string, label risk.Typology) risk.TrainingExample {
		return risk.TrainingExample{Text: text, Label: label}
	}
	return []risk.TrainingExample{
		ex("OFAC sanctions designation blocked entity embargo", risk.TypologySanctions),
		ex("Treasury adds shipping firm to SDN list under sanctions", risk.TypologySanctions),
		ex("Export controls embargo violation sanctions OFAC", risk.TypologySanctions),
		ex("Accounting fraud scheme investors defrauded", risk.TypologyFraud),
		ex("Ponzi scheme fraud charges filed against founder", risk.TypologyFraud),
		ex("Executives charged with securities fraud ponzi", risk.TypologyFraud),
		ex("Bribery kickbacks paid to procurement officials", risk.TypologyCorruption),
		ex("Minister accepted bribes corruption probe", risk.TypologyCorruption),
		ex("Corruption charges bribery kickback contract", risk.TypologyCorruption),
		ex("Company opens new headquarters expansion", risk.TypologyNeutral),
		ex("Quarterly earnings beat expectations growth", risk.TypologyNeutral),
		ex("Firm announces partnership product launch expansion", risk.TypologyNeutral),
	}
}

func articleCorpus() []risk.Article {
	return []risk.Article{
		{EntityName: "Northstar Logistics Ltd", Headline: "OFAC designates Northstar", Snippet: "sanctions embargo violation", Source: "Reuters", Date: "2024-03-01"},
		{EntityName: "Northstar Logistics Ltd", Headline: "Northstar fraud probe", Snippet: "investors defrauded in scheme", Source: "FT", Date: "2024-02-11"},
		{EntityName: "Northstar Logistics Ltd", Headline: "Northstar opens hub", Snippet: "headquarters expansion", Source: "AP", Date: "2024-01-20"},
		{EntityName: "Ivan Petrov", Headline: "Petrov charged", Snippet: "bribery kickbacks corruption", Source: "AP", Date: "2023-12-05"},
	}
}

func fitModel(t *testing.T, examples []risk.TrainingExample) *riskclf.Model {
	t.Helper()
	m, err := riskclf.Fit(examples)
	require.NoError(t, err)
	return m
}

// ─────────────────────────────────────────────────────────────────────────────
// Classifier stubs
// ─────────────────────────────────────────────────────────────────────────────

// keywordClassifier labels a text by the first keyword it contains.
type keywordClassifier struct {
	version string
	rules   []keywordRule
	err     error
	short   bool

	mu    sync.Mutex
	calls int
}

type keywordRule struct {
	keyword    string
	label      risk.Typology
	confidence float64
}

func (c *keywordClassifier) Classify(texts []string) ([]riskclf.Prediction, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	out := make([]riskclf.Prediction, 0, len(texts))
	for _, text := range texts {
		p := riskclf.Prediction{Label: risk.TypologyNeutral, Confidence: 0.9}
		for _, r := range c.rules {
			if strings.Contains(strings.ToLower(text), r.keyword) {
				p = riskclf.Prediction{Label: r.label, Confidence: r.confidence}
				break
			}
		}
		out = append(out, p)
	}
	if c.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (c *keywordClassifier) Version() string { return c.version }

type staticProvider struct {
	clf Classifier
	err error
}

func (p staticProvider) Classifier() (Classifier, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.clf, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Retriever
// ─────────────────────────────────────────────────────────────────────────────

type fakeRetriever struct {
	articles []risk.Article
	err      error
	block    bool

	mu        sync.Mutex
	gotQuery  string
	gotLimit  int
	callCount int
}

func (r *fakeRetriever) Retrieve(ctx context.Context, query string, limit int) ([]risk.Article, error) {
	r.mu.Lock()
	r.gotQuery, r.gotLimit = query, limit
	r.callCount++
	r.mu.Unlock()
	if r.block {
		<-ctx.Done()
		return nil, errors.Wrap(ctx.Err(), errors.ErrCodeRetrievalFailure, "search timed out")
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.articles, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Model store and training source
// ─────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	artifacts *modelstore.Artifacts
	loadErr   error
	saveErr   error
	saves     int
}

func (s *memStore) Save(ctx context.Context, a modelstore.Artifacts) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.artifacts = &a
	return nil
}

func (s *memStore) Load(ctx context.Context) (modelstore.Artifacts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return modelstore.Artifacts{}, s.loadErr
	}
	if s.artifacts == nil {
		return modelstore.Artifacts{}, modelstore.ErrArtifactNotFound
	}
	return *s.artifacts, nil
}

func (s *memStore) Location() string { return "memory" }

func (s *memStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

type memSource struct {
	mu       sync.Mutex
	examples []risk.TrainingExample
	err      error
	calls    int
}

func (s *memSource) LoadExamples(ctx context.Context) ([]risk.TrainingExample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.examples, nil
}

func (s *memSource) set(examples []risk.TrainingExample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.examples = examples
}

func (s *memSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type countingLock struct {
	mu      sync.Mutex
	lockErr error
	locks   int
	unlocks int
}

func (l *countingLock) Lock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lockErr != nil {
		return l.lockErr
	}
	l.locks++
	return nil
}

func (l *countingLock) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unlocks++
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Side-effect collaborators
// ─────────────────────────────────────────────────────────────────────────────

type memCache struct {
	mu            sync.Mutex
	data          map[string][]byte
	keys          []string
	deletedPrefix string
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	c.mu.Lock()
	c.keys = append(c.keys, key)
	raw, ok := c.data[key]
	c.mu.Unlock()
	if ok {
		return json.Unmarshal(raw, dest)
	}
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err = json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data[key] = raw
	c.mu.Unlock()
	return json.Unmarshal(raw, dest)
}

func (c *memCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletedPrefix = prefix
	var n int64
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
			n++
		}
	}
	return n, nil
}

type memRepo struct {
	mu      sync.Mutex
	records []*risk.ScreeningRecord
	saveErr error
}

func (r *memRepo) Save(ctx context.Context, rec *risk.ScreeningRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *memRepo) FindByID(ctx context.Context, id string) (*risk.ScreeningRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, errors.NotFound("screening not found")
}

func (r *memRepo) ListByEntity(ctx context.Context, entity string, limit int) ([]*risk.ScreeningRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*risk.ScreeningRecord{}
	for _, rec := range r.records {
		if rec.Result != nil && rec.Result.Entity == entity {
			out = append(out, rec)
		}
	}
	return out, nil
}

type memPublisher struct {
	mu        sync.Mutex
	published []*risk.ScreeningRecord
	err       error
}

func (p *memPublisher) PublishCompleted(ctx context.Context, rec *risk.ScreeningRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, rec)
	return nil
}

//Personal.AI order the ending
