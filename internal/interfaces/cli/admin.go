package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/Graphyte-Intelligence/internal/bootstrap"
	"github.com/turtacn/Graphyte-Intelligence/internal/config"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/corpus"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// migrate
// ─────────────────────────────────────────────────────────────────────────────

type migrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s migrationStatus) String() string {
	if s.Dirty {
		return fmt.Sprintf("schema version %d (dirty, run 'migrate force')\n", s.Version)
	}
	return fmt.Sprintf("schema version %d\n", s.Version)
}

// databaseURL returns the migration URL, or an error when the database
// section is disabled.
func databaseURL(cmd *cobra.Command) (string, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return "", err
	}
	if !cliCtx.Config.Database.Enabled {
		return "", errors.New(errors.ErrCodeServiceUnavailable, "database is not enabled in the configuration")
	}
	return postgres.DSN(bootstrap.PostgresConfig(cliCtx.Config.Database)), nil
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	status := func(cmd *cobra.Command, url string) error {
		v, dirty, err := postgres.MigrationStatus(url)
		if err != nil {
			return err
		}
		return PrintResult(cmd, migrationStatus{Version: v, Dirty: dirty})
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				url, err := databaseURL(cmd)
				if err != nil {
					return err
				}
				if err := postgres.RunMigrations(url); err != nil {
					return err
				}
				return status(cmd, url)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				url, err := databaseURL(cmd)
				if err != nil {
					return err
				}
				return status(cmd, url)
			},
		},
		newMigrateDownCmd(status),
		&cobra.Command{
			Use:   "force <version>",
			Short: "Record a schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return errors.Newf(errors.ErrCodeValidation, "invalid version %q", args[0])
				}
				url, err := databaseURL(cmd)
				if err != nil {
					return err
				}
				if err := postgres.ForceMigrationVersion(url, version); err != nil {
					return err
				}
				return status(cmd, url)
			},
		},
	)
	return cmd
}

func newMigrateDownCmd(status func(*cobra.Command, string) error) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL(cmd)
			if err != nil {
				return err
			}
			if err := postgres.RollbackMigration(url, steps); err != nil {
				return err
			}
			return status(cmd, url)
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// corpus
// ─────────────────────────────────────────────────────────────────────────────

const (
	targetPostgres   = "postgres"
	targetOpenSearch = "opensearch"
)

type importResult struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Read     int    `json:"read"`
	Imported int    `json:"imported"`
	Failed   int    `json:"failed"`
}

func (r importResult) String() string {
	return fmt.Sprintf("%s -> %s: %d read, %d imported, %d failed\n", r.Source, r.Target, r.Read, r.Imported, r.Failed)
}

func newCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Load article corpora into the stores",
	}
	cmd.AddCommand(newCorpusImportCmd(), newCorpusGenerateCmd())
	return cmd
}

func newCorpusImportCmd() *cobra.Command {
	var (
		target    string
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "import <article_csv>",
		Short: "Import an article CSV into PostgreSQL or the OpenSearch archive",
		Long: "Read entity_name, headline, snippet, source, date, url and typology_gt columns\n" +
			"and load them into the postgres articles table (local corpus) or the\n" +
			"OpenSearch news index (live retrieval).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if target != targetPostgres && target != targetOpenSearch {
				return errors.Newf(errors.ErrCodeValidation, "invalid target %q (must be postgres or opensearch)", target)
			}
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeCorpusInvalid, "open article csv")
			}
			defer f.Close()
			articles, err := corpus.ReadArticles(f)
			if err != nil {
				return err
			}

			return withComponents(cmd, false, func(ctx context.Context, c *bootstrap.Components) error {
				res := importResult{Source: args[0], Target: target, Read: len(articles)}
				switch target {
				case targetPostgres:
					if c.Articles == nil {
						return errors.New(errors.ErrCodeServiceUnavailable, "database is not enabled in the configuration")
					}
					n, err := c.Articles.Import(ctx, articles)
					if err != nil {
						return err
					}
					res.Imported = n
				case targetOpenSearch:
					if c.OpenSearch == nil {
						return errors.New(errors.ErrCodeServiceUnavailable, "opensearch is not enabled in the configuration")
					}
					idx := opensearch.NewIndexer(c.OpenSearch, indexName(c.Config), opensearch.IndexerConfig{
						BulkBatchSize: batchSize,
						RefreshPolicy: "wait_for",
					}, c.Logger)
					if err := idx.EnsureIndex(ctx); err != nil {
						return err
					}
					bulk, err := idx.IndexArticles(ctx, articles)
					if err != nil {
						return err
					}
					res.Imported, res.Failed = bulk.Succeeded, bulk.Failed
				}
				return PrintResult(cmd, res)
			})
		},
	}

	cmd.Flags().StringVar(&target, "target", targetPostgres, "destination store (postgres, opensearch)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 500, "bulk request size for opensearch")
	return cmd
}

type generateResult struct {
	TrainingPath string `json:"training_path"`
	ArticlePath  string `json:"article_path"`
	Examples     int    `json:"examples"`
	Entities     int    `json:"entities"`
	Articles     int    `json:"articles"`
}

func (r generateResult) String() string {
	return fmt.Sprintf("%s: %d examples\n%s: %d articles about %d entities\n",
		r.TrainingPath, r.Examples, r.ArticlePath, r.Articles, r.Entities)
}

func newCorpusGenerateCmd() *cobra.Command {
	var (
		outDir        string
		examples      int
		extraEntities int
		perEntity     int
		seed          int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic training corpus and article corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if examples < 1 || perEntity < 1 || extraEntities < 0 {
				return errors.New(errors.ErrCodeValidation, "--examples and --per-entity must be positive, --extra-entities non-negative")
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "create output directory")
			}

			gen := corpus.NewGenerator(seed, time.Now())
			training := gen.TrainingExamples(examples)
			entities := gen.Entities(extraEntities)
			articles := gen.Articles(entities, perEntity)

			res := generateResult{
				TrainingPath: filepath.Join(outDir, "training_data.csv"),
				ArticlePath:  filepath.Join(outDir, "article_db.csv"),
				Examples:     len(training),
				Entities:     len(entities),
				Articles:     len(articles),
			}
			if err := writeCSV(res.TrainingPath, func(f *os.File) error { return corpus.WriteTrainingExamples(f, training) }); err != nil {
				return err
			}
			if err := writeCSV(res.ArticlePath, func(f *os.File) error { return corpus.WriteArticles(f, articles) }); err != nil {
				return err
			}
			return PrintResult(cmd, res)
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "data", "directory for training_data.csv and article_db.csv")
	cmd.Flags().IntVar(&examples, "examples", 1000, "number of training examples")
	cmd.Flags().IntVar(&extraEntities, "extra-entities", 10, "fake companies added to the named entities")
	cmd.Flags().IntVar(&perEntity, "per-entity", 5, "articles per entity")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}

func writeCSV(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "create "+path)
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrap(err, errors.ErrCodeInternal, "write "+path)
	}
	return f.Close()
}

func indexName(cfg *config.Config) string {
	if cfg.OpenSearch.Index != "" {
		return cfg.OpenSearch.Index
	}
	return config.DefaultOpenSearchIndex
}

//Personal.AI order the ending
