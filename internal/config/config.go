// Package config defines the configuration structures of the screening
// engine. Only data types and validation live here; loading is in loader.go.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP and gRPC server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// RateLimitRPS caps requests per client IP; 0 disables limiting.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// EngineConfig holds the screening pipeline parameters.
type EngineConfig struct {
	TrainingDataPath string `mapstructure:"training_data_path"`
	ArticleDBPath    string `mapstructure:"article_db_path"`

	// CorpusBackend selects the local article corpus: "csv" | "postgres".
	CorpusBackend string `mapstructure:"corpus_backend"`

	// LiveRetriever selects the live-mode source: "opensearch" | "newsapi" | "".
	LiveRetriever string `mapstructure:"live_retriever"`

	RetrievalTimeout time.Duration `mapstructure:"retrieval_timeout"`
	DefaultLimit     int           `mapstructure:"default_limit"`
	NeutralThreshold float64       `mapstructure:"neutral_threshold"`
	MinConfidence    float64       `mapstructure:"min_confidence"`
	MaxIterations    int           `mapstructure:"max_iterations"`
	MaxFeatures      int           `mapstructure:"max_features"`

	WatchTrainingData bool          `mapstructure:"watch_training_data"`
	RetrainDebounce   time.Duration `mapstructure:"retrain_debounce"`
}

// ModelStoreConfig selects where vectorizer.json and risk_model.json live.
type ModelStoreConfig struct {
	Backend string `mapstructure:"backend"` // "fs" | "minio"
	Dir     string `mapstructure:"dir"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis connection and cache parameters.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
}

// KafkaConfig holds producer and consumer parameters.
type KafkaConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Brokers         []string      `mapstructure:"brokers"`
	GroupID         string        `mapstructure:"group_id"`
	CompletedTopic  string        `mapstructure:"completed_topic"`
	RequestedTopic  string        `mapstructure:"requested_topic"`
	DeadLetterTopic string        `mapstructure:"dead_letter_topic"`
	MaxRetries      int           `mapstructure:"max_retries"`
	BatchSize       int           `mapstructure:"batch_size"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

// OpenSearchConfig holds the news-archive cluster parameters.
type OpenSearchConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	Addresses          []string      `mapstructure:"addresses"`
	User               string        `mapstructure:"user"`
	Password           string        `mapstructure:"password"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	Index              string        `mapstructure:"index"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

// NewsAPIConfig holds the HTTP news search parameters.
type NewsAPIConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries uint64        `mapstructure:"max_retries"`
}

// MinIOConfig holds object-storage parameters for model artifacts.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// WatchlistConfig drives periodic re-screening in the worker.
type WatchlistConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Schedule string   `mapstructure:"schedule"` // cron spec with seconds
	Mode     string   `mapstructure:"mode"`     // "local" | "live"
	Entities []string `mapstructure:"entities"`
	// Timeout bounds one sweep; zero leaves it unbounded.
	Timeout time.Duration `mapstructure:"timeout"`
}

// WorkerConfig holds the queue worker's own settings.
type WorkerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration.
type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Log        logging.LogConfig `mapstructure:"log"`
	Engine     EngineConfig      `mapstructure:"engine"`
	ModelStore ModelStoreConfig  `mapstructure:"model_store"`
	Database   DatabaseConfig    `mapstructure:"database"`
	Redis      RedisConfig       `mapstructure:"redis"`
	Kafka      KafkaConfig       `mapstructure:"kafka"`
	OpenSearch OpenSearchConfig  `mapstructure:"opensearch"`
	NewsAPI    NewsAPIConfig     `mapstructure:"news_api"`
	MinIO      MinIOConfig       `mapstructure:"minio"`
	Metrics    MetricsConfig     `mapstructure:"metrics"`
	Watchlist  WatchlistConfig   `mapstructure:"watchlist"`
	Worker     WorkerConfig      `mapstructure:"worker"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate checks a fully defaulted Config and returns the first problem.
// Sections that are disabled are not checked.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("config: server.grpc_port %d is out of range [0, 65535]", c.Server.GRPCPort)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Worker.HealthPort < 1 || c.Worker.HealthPort > 65535 {
		return fmt.Errorf("config: worker.health_port %d is out of range [1, 65535]", c.Worker.HealthPort)
	}
	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("config: server.rate_limit_rps must be ≥ 0, got %v", c.Server.RateLimitRPS)
	}

	// Log
	switch c.Log.Level {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Engine
	if c.Engine.TrainingDataPath == "" {
		return fmt.Errorf("config: engine.training_data_path is required")
	}
	switch c.Engine.CorpusBackend {
	case CorpusBackendCSV:
		if c.Engine.ArticleDBPath == "" {
			return fmt.Errorf("config: engine.article_db_path is required for the csv corpus")
		}
	case CorpusBackendPostgres:
		if !c.Database.Enabled {
			return fmt.Errorf("config: engine.corpus_backend postgres requires database.enabled")
		}
	default:
		return fmt.Errorf("config: engine.corpus_backend %q is invalid; expected csv|postgres", c.Engine.CorpusBackend)
	}
	switch c.Engine.LiveRetriever {
	case "":
	case RetrieverOpenSearch:
		if !c.OpenSearch.Enabled {
			return fmt.Errorf("config: engine.live_retriever opensearch requires opensearch.enabled")
		}
	case RetrieverNewsAPI:
		if !c.NewsAPI.Enabled {
			return fmt.Errorf("config: engine.live_retriever newsapi requires news_api.enabled")
		}
	default:
		return fmt.Errorf("config: engine.live_retriever %q is invalid; expected opensearch|newsapi", c.Engine.LiveRetriever)
	}
	if c.Engine.RetrievalTimeout <= 0 {
		return fmt.Errorf("config: engine.retrieval_timeout must be positive")
	}
	if c.Engine.DefaultLimit < 1 {
		return fmt.Errorf("config: engine.default_limit must be ≥ 1, got %d", c.Engine.DefaultLimit)
	}
	if c.Engine.NeutralThreshold <= 0 || c.Engine.NeutralThreshold > 1 {
		return fmt.Errorf("config: engine.neutral_threshold %v is out of range (0, 1]", c.Engine.NeutralThreshold)
	}
	if c.Engine.MinConfidence < 0 || c.Engine.MinConfidence > 1 {
		return fmt.Errorf("config: engine.min_confidence %v is out of range [0, 1]", c.Engine.MinConfidence)
	}
	if c.Engine.MaxFeatures < 1 {
		return fmt.Errorf("config: engine.max_features must be ≥ 1, got %d", c.Engine.MaxFeatures)
	}

	// Model store
	switch c.ModelStore.Backend {
	case ModelStoreFS:
		if c.ModelStore.Dir == "" {
			return fmt.Errorf("config: model_store.dir is required for the fs backend")
		}
	case ModelStoreMinIO:
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required for the minio backend")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required for the minio backend")
		}
	default:
		return fmt.Errorf("config: model_store.backend %q is invalid; expected fs|minio", c.ModelStore.Backend)
	}

	// Database
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required")
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("config: database.max_conns must be ≥ 1, got %d", c.Database.MaxConns)
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.GroupID == "" {
			return fmt.Errorf("config: kafka.group_id is required")
		}
	}

	// Retrievers
	if c.OpenSearch.Enabled && len(c.OpenSearch.Addresses) == 0 {
		return fmt.Errorf("config: opensearch.addresses must contain at least one address")
	}
	if c.NewsAPI.Enabled && c.NewsAPI.BaseURL == "" {
		return fmt.Errorf("config: news_api.base_url is required")
	}

	// Watchlist
	if c.Watchlist.Enabled {
		if c.Watchlist.Schedule == "" {
			return fmt.Errorf("config: watchlist.schedule is required")
		}
		switch c.Watchlist.Mode {
		case "local", "live":
		default:
			return fmt.Errorf("config: watchlist.mode %q is invalid; expected local|live", c.Watchlist.Mode)
		}
	}

	return nil
}

//Personal.AI order the ending
