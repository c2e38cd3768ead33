package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Graphyte-Intelligence/internal/application/screening"
	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/corpus"
	"github.com/turtacn/Graphyte-Intelligence/internal/intelligence/riskclf"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

const trainingCSV = `text,label
Company hit with OFAC sanctions over embargo breach,sanctions
Treasury sanctions list adds shipping firm,sanctions
Executives bribed officials to win contracts,corruption
Minister charged with bribery and kickbacks,corruption
Quarterly results beat analyst expectations,neutral
Company opens new regional headquarters,neutral
`

const articleCSV = `entity_name,headline,snippet,source,date
Ivan Petrov,Petrov charged with bribery,Prosecutors say kickbacks were paid to officials,wire,2024-01-01
Acme Corp,Acme opens new headquarters,The company expanded its regional office,wire,2024-02-01
`

// writeConfig lays out a local-only deployment in a temp dir and returns
// the config file path.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "training.csv"), []byte(trainingCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "articles.csv"), []byte(articleCSV), 0o644))

	cfg := fmt.Sprintf(`log:
  level: error
engine:
  training_data_path: %s
  article_db_path: %s
model_store:
  backend: fs
  dir: %s
`, filepath.Join(dir, "training.csv"), filepath.Join(dir, "articles.csv"), filepath.Join(dir, "models"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func execute(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// ─────────────────────────────────────────────────────────────────────────────
// Screening
// ─────────────────────────────────────────────────────────────────────────────

func TestAnalyze_JSON(t *testing.T) {
	cfg := writeConfig(t)
	out, err := execute(t, cfg, "-o", "json", "analyze", "petrov")
	require.NoError(t, err)

	var sc screening.Screening
	require.NoError(t, json.Unmarshal([]byte(out), &sc))
	assert.Equal(t, "Ivan Petrov", sc.Result.Entity)
	assert.Equal(t, risk.StatusFound, sc.Result.Status)
	assert.Equal(t, screening.ModeLocal, sc.Mode)
	assert.NotEmpty(t, sc.ModelVersion)

	models, err := os.ReadDir(filepath.Join(filepath.Dir(cfg), "models"))
	require.NoError(t, err)
	assert.NotEmpty(t, models, "first use trains and persists a model")
}

func TestAnalyze_TextNotFound(t *testing.T) {
	out, err := execute(t, writeConfig(t), "analyze", "nobody", "at", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "Entity:      nobody at all")
	assert.Contains(t, out, "Status:      not_found")
	assert.Contains(t, out, risk.SummaryNotFound)
}

func TestAnalyze_FilterFlags(t *testing.T) {
	out, err := execute(t, writeConfig(t), "-o", "json", "analyze", "petrov",
		"--min-confidence", "0.99", "--typology", "sanctions")
	require.NoError(t, err)

	var sc screening.Screening
	require.NoError(t, json.Unmarshal([]byte(out), &sc))
	assert.Equal(t, 0.99, sc.Filter.MinConfidence)
	assert.Equal(t, []risk.Typology{risk.TypologySanctions}, sc.Filter.Typologies)
}

func TestAnalyze_Table(t *testing.T) {
	out, err := execute(t, writeConfig(t), "-o", "table", "analyze", "petrov", "--min-confidence", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "CONFIDENCE")
	assert.Contains(t, out, "Petrov charged with bribery")
}

func TestAnalyze_LiveNotConfigured(t *testing.T) {
	_, err := execute(t, writeConfig(t), "analyze", "petrov", "--live")
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func TestAnalyze_RequiresEntity(t *testing.T) {
	_, err := execute(t, writeConfig(t), "analyze")
	assert.Error(t, err)
}

func TestExplain(t *testing.T) {
	out, err := execute(t, writeConfig(t), "-o", "json", "explain", "--typology", "corruption", "officials", "bribed", "with", "kickbacks")
	require.NoError(t, err)

	var exp screening.Explanation
	require.NoError(t, json.Unmarshal([]byte(out), &exp))
	assert.Equal(t, risk.TypologyCorruption, exp.Typology)
	assert.NotEmpty(t, exp.ModelVersion)
}

func TestExplain_RequiresTypology(t *testing.T) {
	_, err := execute(t, writeConfig(t), "explain", "some snippet")
	assert.Error(t, err)
}

func TestExplain_UnknownTypology(t *testing.T) {
	_, err := execute(t, writeConfig(t), "explain", "--typology", "piracy", "some snippet")
	assert.True(t, errors.IsValidation(err))
}

func TestHistory_NotEnabled(t *testing.T) {
	_, err := execute(t, writeConfig(t), "history", "Ivan Petrov")
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

// ─────────────────────────────────────────────────────────────────────────────
// Catalogues
// ─────────────────────────────────────────────────────────────────────────────

func TestEntities(t *testing.T) {
	cfg := writeConfig(t)
	out, err := execute(t, cfg, "entities")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp\nIvan Petrov\n", out)

	out, err = execute(t, cfg, "-o", "table", "entities")
	require.NoError(t, err)
	assert.Contains(t, out, "ENTITY")
	assert.Contains(t, out, "Ivan Petrov")
}

func TestTypologies(t *testing.T) {
	cfg := writeConfig(t)
	out, err := execute(t, cfg, "-o", "json", "typologies")
	require.NoError(t, err)

	var infos []screening.TypologyInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	assert.Len(t, infos, len(risk.AllTypologies()))

	out, err = execute(t, cfg, "typologies")
	require.NoError(t, err)
	assert.Contains(t, out, "sanctions")
	assert.Contains(t, out, "high")
}

// ─────────────────────────────────────────────────────────────────────────────
// Model
// ─────────────────────────────────────────────────────────────────────────────

func TestTrain(t *testing.T) {
	out, err := execute(t, writeConfig(t), "-o", "json", "train")
	require.NoError(t, err)

	var summary screening.ModelSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.NotEmpty(t, summary.Version)
	assert.Equal(t, 6, summary.Training.Examples)
	assert.ElementsMatch(t, []risk.Typology{risk.TypologySanctions, risk.TypologyCorruption, risk.TypologyNeutral}, summary.Classes)
}

func TestReport(t *testing.T) {
	cfg := writeConfig(t)
	out, err := execute(t, cfg, "-o", "json", "report")
	require.NoError(t, err)

	var report riskclf.QualityReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 6, report.Evaluated)
	assert.Len(t, report.ConfusionMatrix, len(report.Classes))

	out, err = execute(t, cfg, "-o", "table", "report")
	require.NoError(t, err)
	assert.Contains(t, out, "PRECISION")
	assert.Contains(t, out, "sanctions")
}

// ─────────────────────────────────────────────────────────────────────────────
// Admin
// ─────────────────────────────────────────────────────────────────────────────

func TestMigrate_DatabaseDisabled(t *testing.T) {
	cfg := writeConfig(t)
	for _, args := range [][]string{{"migrate", "up"}, {"migrate", "status"}, {"migrate", "down"}, {"migrate", "force", "1"}} {
		_, err := execute(t, cfg, args...)
		assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable), "%v", args)
	}
}

func TestMigrate_ForceInvalidVersion(t *testing.T) {
	_, err := execute(t, writeConfig(t), "migrate", "force", "latest")
	assert.True(t, errors.IsValidation(err))
}

func TestCorpusImport_Validation(t *testing.T) {
	cfg := writeConfig(t)
	articles := filepath.Join(filepath.Dir(cfg), "articles.csv")

	_, err := execute(t, cfg, "corpus", "import", articles, "--target", "s3")
	assert.True(t, errors.IsValidation(err))

	_, err = execute(t, cfg, "corpus", "import", filepath.Join(t.TempDir(), "absent.csv"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeCorpusInvalid))

	_, err = execute(t, cfg, "corpus", "import", articles, "--target", "postgres")
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))

	_, err = execute(t, cfg, "corpus", "import", articles, "--target", "opensearch")
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func TestCorpusGenerate(t *testing.T) {
	cfg := writeConfig(t)
	outDir := filepath.Join(t.TempDir(), "data")

	out, err := execute(t, cfg, "-o", "json", "corpus", "generate",
		"--out-dir", outDir, "--examples", "50", "--extra-entities", "2", "--per-entity", "3", "--seed", "11")
	require.NoError(t, err)

	var res generateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 50, res.Examples)
	assert.Equal(t, 10, res.Entities)
	assert.Equal(t, 30, res.Articles)

	f, err := os.Open(res.TrainingPath)
	require.NoError(t, err)
	defer f.Close()
	examples, err := corpus.ReadTrainingExamples(f)
	require.NoError(t, err)
	assert.Len(t, examples, 50)

	articles, err := corpus.LoadArticleFile(res.ArticlePath, nil)
	require.NoError(t, err)
	assert.Equal(t, 30, articles.Len())
}

func TestCorpusGenerate_Validation(t *testing.T) {
	_, err := execute(t, writeConfig(t), "corpus", "generate", "--out-dir", t.TempDir(), "--examples", "0")
	assert.True(t, errors.IsValidation(err))
}

func TestMigrationStatus_String(t *testing.T) {
	assert.Equal(t, "schema version 3\n", migrationStatus{Version: 3}.String())
	assert.Contains(t, migrationStatus{Version: 3, Dirty: true}.String(), "dirty")
}

//Personal.AI order the ending
