package corpus

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"sync"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Training corpus
// ─────────────────────────────────────────────────────────────────────────────

// TrainingFile is a TrainingSource backed by a "text,label" CSV file. The
// file is re-read on every call so retraining picks up edits.
type TrainingFile struct {
	Path string
}

// NewTrainingFile returns a source for path.
func NewTrainingFile(path string) *TrainingFile {
	return &TrainingFile{Path: path}
}

// LoadExamples reads the file. A missing file is ErrCodeTrainingDataMissing.
func (t *TrainingFile) LoadExamples(ctx context.Context) ([]risk.TrainingExample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(t.Path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Newf(errors.ErrCodeTrainingDataMissing, "training data not found at %s", t.Path)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTrainingDataMissing, "open training data")
	}
	defer f.Close()

	examples, err := ReadTrainingExamples(f)
	if err != nil {
		return nil, err
	}
	if len(examples) == 0 {
		return nil, errors.Newf(errors.ErrCodeTrainingDataMissing, "training data at %s has no rows", t.Path)
	}
	return examples, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Article corpus
// ─────────────────────────────────────────────────────────────────────────────

// MemoryCorpus is an EntityCorpus held entirely in memory.
type MemoryCorpus struct {
	mu       sync.RWMutex
	articles []risk.Article
}

// NewMemoryCorpus wraps articles. The slice is copied.
func NewMemoryCorpus(articles []risk.Article) *MemoryCorpus {
	c := &MemoryCorpus{}
	c.Replace(articles)
	return c
}

// LoadArticleFile reads an article CSV into a MemoryCorpus. A missing file
// yields an empty corpus, so every lookup is not_found.
func LoadArticleFile(path string, log logging.Logger) (*MemoryCorpus, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	f, err := os.Open(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		log.Warn("article corpus not found, serving empty corpus", logging.String("path", path))
		return NewMemoryCorpus(nil), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusInvalid, "open article corpus")
	}
	defer f.Close()

	articles, err := ReadArticles(f)
	if err != nil {
		return nil, err
	}
	log.Info("article corpus loaded", logging.String("path", path), logging.Int("articles", len(articles)))
	return NewMemoryCorpus(articles), nil
}

// Replace swaps the corpus contents.
func (c *MemoryCorpus) Replace(articles []risk.Article) {
	cp := make([]risk.Article, len(articles))
	copy(cp, articles)
	c.mu.Lock()
	c.articles = cp
	c.mu.Unlock()
}

// Len is the number of articles.
func (c *MemoryCorpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.articles)
}

// Articles returns a copy of the corpus.
func (c *MemoryCorpus) Articles() []risk.Article {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := make([]risk.Article, len(c.articles))
	copy(cp, c.articles)
	return cp
}

// Resolve implements risk.EntityCorpus.
func (c *MemoryCorpus) Resolve(ctx context.Context, normalizedQuery string) (string, []risk.Article, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, matched := risk.ResolveArticles(normalizedQuery, c.articles)
	return name, matched, nil
}

// Entities implements risk.EntityCorpus.
func (c *MemoryCorpus) Entities(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return risk.DistinctEntities(c.articles), nil
}

var (
	_ risk.EntityCorpus   = (*MemoryCorpus)(nil)
	_ risk.TrainingSource = (*TrainingFile)(nil)
)

//Personal.AI order the ending
