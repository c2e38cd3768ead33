package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Graphyte-Intelligence/internal/config"
)

// validConfig returns a defaulted Config that passes Validate.
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestConfig_Validate_Defaults(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(c *config.Config)
		want   string
	}{
		{"port zero", func(c *config.Config) { c.Server.Port = 0 }, "server.port"},
		{"port high", func(c *config.Config) { c.Server.Port = 70000 }, "server.port"},
		{"grpc port", func(c *config.Config) { c.Server.GRPCPort = -1 }, "server.grpc_port"},
		{"worker health port", func(c *config.Config) { c.Worker.HealthPort = -1 }, "worker.health_port"},
		{"server mode", func(c *config.Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"log level", func(c *config.Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *config.Config) { c.Log.Format = "text" }, "log.format"},
		{"training path", func(c *config.Config) { c.Engine.TrainingDataPath = "" }, "engine.training_data_path"},
		{"article path", func(c *config.Config) { c.Engine.ArticleDBPath = "" }, "engine.article_db_path"},
		{"corpus backend", func(c *config.Config) { c.Engine.CorpusBackend = "sqlite" }, "engine.corpus_backend"},
		{"postgres corpus without db", func(c *config.Config) { c.Engine.CorpusBackend = config.CorpusBackendPostgres }, "database.enabled"},
		{"live retriever", func(c *config.Config) { c.Engine.LiveRetriever = "bing" }, "engine.live_retriever"},
		{"opensearch retriever disabled", func(c *config.Config) { c.Engine.LiveRetriever = config.RetrieverOpenSearch }, "opensearch.enabled"},
		{"newsapi retriever disabled", func(c *config.Config) { c.Engine.LiveRetriever = config.RetrieverNewsAPI }, "news_api.enabled"},
		{"retrieval timeout", func(c *config.Config) { c.Engine.RetrievalTimeout = -1 }, "engine.retrieval_timeout"},
		{"default limit", func(c *config.Config) { c.Engine.DefaultLimit = -3 }, "engine.default_limit"},
		{"neutral threshold", func(c *config.Config) { c.Engine.NeutralThreshold = 1.5 }, "engine.neutral_threshold"},
		{"min confidence", func(c *config.Config) { c.Engine.MinConfidence = -0.1 }, "engine.min_confidence"},
		{"max features", func(c *config.Config) { c.Engine.MaxFeatures = -1 }, "engine.max_features"},
		{"model store backend", func(c *config.Config) { c.ModelStore.Backend = "s3" }, "model_store.backend"},
		{"model store dir", func(c *config.Config) { c.ModelStore.Dir = "" }, "model_store.dir"},
		{"minio endpoint", func(c *config.Config) { c.ModelStore.Backend = config.ModelStoreMinIO }, "minio.endpoint"},
		{"database user", func(c *config.Config) { c.Database.Enabled = true }, "database.user"},
		{"redis db", func(c *config.Config) { c.Redis.Enabled = true; c.Redis.DB = -1 }, "redis.db"},
		{"kafka brokers", func(c *config.Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }, "kafka.brokers"},
		{"opensearch addresses", func(c *config.Config) { c.OpenSearch.Enabled = true }, "opensearch.addresses"},
		{"newsapi base url", func(c *config.Config) { c.NewsAPI.Enabled = true; c.NewsAPI.BaseURL = "" }, "news_api.base_url"},
		{"watchlist mode", func(c *config.Config) { c.Watchlist.Enabled = true; c.Watchlist.Mode = "batch" }, "watchlist.mode"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestConfig_Validate_EnabledSectionsPass(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Database.Enabled = true
	cfg.Database.User = "graphyte"
	cfg.Engine.CorpusBackend = config.CorpusBackendPostgres
	cfg.Redis.Enabled = true
	cfg.Kafka.Enabled = true
	cfg.OpenSearch.Enabled = true
	cfg.OpenSearch.Addresses = []string{"http://localhost:9200"}
	cfg.Engine.LiveRetriever = config.RetrieverOpenSearch
	cfg.ModelStore.Backend = config.ModelStoreMinIO
	cfg.MinIO.Endpoint = "localhost:9000"
	cfg.Watchlist.Enabled = true
	cfg.Watchlist.Entities = []string{"Ivan Petrov"}

	assert.NoError(t, cfg.Validate())
}

//Personal.AI order the ending
