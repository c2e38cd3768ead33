package risk

import (
	"context"
	"time"
)

// EntityCorpus is the local article corpus keyed by entity.
type EntityCorpus interface {
	// Resolve returns the resolved entity name and its articles for a
	// normalised query; an unknown entity yields "" and no articles.
	Resolve(ctx context.Context, normalizedQuery string) (string, []Article, error)
	// Entities lists the distinct entity names, sorted.
	Entities(ctx context.Context) ([]string, error)
}

// Retriever fetches live articles for a free-text query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]Article, error)
}

// TrainingSource yields the labelled training corpus.
type TrainingSource interface {
	LoadExamples(ctx context.Context) ([]TrainingExample, error)
}

// ScreeningRecord is the audit row of one completed analysis.
type ScreeningRecord struct {
	ID           string          `json:"id"`
	Query        string          `json:"query"`
	Mode         string          `json:"mode"`
	Result       *AnalysisResult `json:"result"`
	ModelVersion string          `json:"model_version"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ScreeningRepository persists screening audit records.
type ScreeningRepository interface {
	Save(ctx context.Context, rec *ScreeningRecord) error
	FindByID(ctx context.Context, id string) (*ScreeningRecord, error)
	ListByEntity(ctx context.Context, entity string, limit int) ([]*ScreeningRecord, error)
}

//Personal.AI order the ending
