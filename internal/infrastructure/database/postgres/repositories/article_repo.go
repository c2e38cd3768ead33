package repositories

import (
	"context"
	"database/sql"
	"sort"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

const articleColumns = `entity_name, headline, snippet, source, published, url, typology_gt`

// ArticleRepository is the Postgres-backed article corpus. Rows keep their
// insertion order so resolution matches the CSV corpus.
type ArticleRepository struct {
	conn *postgres.Connection
	log  logging.Logger
}

// NewArticleRepository returns a corpus over conn.
func NewArticleRepository(conn *postgres.Connection, log logging.Logger) *ArticleRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ArticleRepository{conn: conn, log: log}
}

// Resolve implements risk.EntityCorpus: exact normalised matches first, then
// substring matches. strpos is used instead of LIKE because normalised names
// may contain "_".
func (r *ArticleRepository) Resolve(ctx context.Context, normalizedQuery string) (string, []risk.Article, error) {
	if normalizedQuery == "" {
		return "", nil, nil
	}

	matched, err := r.query(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE normalized_name = $1 ORDER BY id`, normalizedQuery)
	if err != nil {
		return "", nil, err
	}
	if len(matched) == 0 {
		matched, err = r.query(ctx,
			`SELECT `+articleColumns+` FROM articles WHERE strpos(normalized_name, $1) > 0 ORDER BY id`, normalizedQuery)
		if err != nil {
			return "", nil, err
		}
	}
	if len(matched) == 0 {
		return "", nil, nil
	}
	return matched[0].EntityName, matched, nil
}

// Entities implements risk.EntityCorpus. Sorting happens here so the order
// does not depend on the database collation.
func (r *ArticleRepository) Entities(ctx context.Context) ([]string, error) {
	rows, err := r.conn.DB().QueryContext(ctx,
		`SELECT DISTINCT entity_name FROM articles WHERE entity_name <> ''`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list entities")
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan entity")
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate entities")
	}
	sort.Strings(out)
	return out, nil
}

// Import replaces the corpus with articles in one transaction.
func (r *ArticleRepository) Import(ctx context.Context, articles []risk.Article) (int, error) {
	err := r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM articles`); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to clear articles")
		}
		for _, a := range articles {
			if err := insertArticle(ctx, tx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	r.log.Info("article corpus imported", logging.Int("articles", len(articles)))
	return len(articles), nil
}

// Count returns the number of stored articles.
func (r *ArticleRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.conn.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count articles")
	}
	return n, nil
}

func insertArticle(ctx context.Context, exec queryExecutor, a risk.Article) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO articles (normalized_name, `+articleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		risk.NormalizeName(a.EntityName), a.EntityName, a.Headline, a.Snippet, a.Source, a.Date, a.URL, string(a.GroundTruth),
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert article")
	}
	return nil
}

func (r *ArticleRepository) query(ctx context.Context, q string, args ...interface{}) ([]risk.Article, error) {
	rows, err := r.conn.DB().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query articles")
	}
	defer rows.Close()

	var out []risk.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate articles")
	}
	return out, nil
}

func scanArticle(s scanner) (risk.Article, error) {
	var a risk.Article
	var gt string
	if err := s.Scan(&a.EntityName, &a.Headline, &a.Snippet, &a.Source, &a.Date, &a.URL, &gt); err != nil {
		return risk.Article{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan article")
	}
	if t, err := risk.ParseTypology(gt); err == nil {
		a.GroundTruth = t
	}
	return a, nil
}

var _ risk.EntityCorpus = (*ArticleRepository)(nil)

//Personal.AI order the ending
