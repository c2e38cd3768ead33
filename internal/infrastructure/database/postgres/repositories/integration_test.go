//go:build integration

// Integration tests against a real PostgreSQL. They need Docker and are gated
// behind the "integration" build tag.
package repositories_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test helpers
// ─────────────────────────────────────────────────────────────────────────────

// startPostgres launches a PostgreSQL 16 container, migrates it and returns a
// connection.
func startPostgres(t *testing.T) *postgres.Connection {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "graphyte_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	cfg := postgres.PostgresConfig{
		Host:     host,
		Port:     portNum,
		Database: "graphyte_test",
		Username: "test",
		Password: "test",
	}
	require.NoError(t, postgres.RunMigrations(postgres.DSN(cfg)))

	version, dirty, err := postgres.MigrationStatus(postgres.DSN(cfg))
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(2), version)

	conn, err := postgres.NewConnection(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestPostgres_CorpusAndScreenings(t *testing.T) {
	conn := startPostgres(t)
	ctx := context.Background()

	articles := repositories.NewArticleRepository(conn, nil)
	n, err := articles.Import(ctx, []risk.Article{
		{EntityName: "Northstar Logistics Ltd", Headline: "OFAC designates Northstar", Snippet: "embargo", Source: "Reuters", Date: "2024-03-01"},
		{EntityName: "Northstar Logistics Ltd", Headline: "Northstar opens hub", Snippet: "warehouse", Source: "FT", Date: "2024-02-11"},
		{EntityName: "Ivan_Petrov", Headline: "Petrov charged", Snippet: "bribery", Source: "AP", Date: "2023-12-05"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	name, arts, err := articles.Resolve(ctx, risk.NormalizeName("Northstar Logistics"))
	require.NoError(t, err)
	assert.Equal(t, "Northstar Logistics Ltd", name)
	require.Len(t, arts, 2)
	assert.Equal(t, "OFAC designates Northstar", arts[0].Headline)

	name, _, err = articles.Resolve(ctx, "_")
	require.NoError(t, err)
	assert.Equal(t, "Ivan_Petrov", name, "underscore must match literally")

	entities, err := articles.Entities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ivan_Petrov", "Northstar Logistics Ltd"}, entities)

	screenings := repositories.NewScreeningRepository(conn, nil)
	result := risk.NewFoundResult(name, []risk.EvidenceItem{{Headline: "x", PredictedRisk: risk.TypologyCorruption, Confidence: 0.8}})
	for i := 0; i < 3; i++ {
		require.NoError(t, screenings.Save(ctx, &risk.ScreeningRecord{
			Query: "petrov", Mode: "local", Result: result, ModelVersion: fmt.Sprintf("v%d", i),
		}))
	}

	recs, err := screenings.ListByEntity(ctx, name, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	got, err := screenings.FindByID(ctx, recs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, result, got.Result)

	_, err = screenings.FindByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.True(t, errors.IsNotFound(err))
}

//Personal.AI order the ending
