package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Enumerations
// ─────────────────────────────────────────────────────────────────────────────

const (
	CorpusBackendCSV      = "csv"
	CorpusBackendPostgres = "postgres"

	RetrieverOpenSearch = "opensearch"
	RetrieverNewsAPI    = "newsapi"

	ModelStoreFS    = "fs"
	ModelStoreMinIO = "minio"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort     = 8080
	DefaultServerGRPCPort = 9090
	DefaultServerMode     = "release"

	DefaultWorkerHealthPort = 8081

	DefaultTrainingDataPath = "data/training_data.csv"
	DefaultArticleDBPath    = "data/article_db.csv"
	DefaultRetrievalTimeout = 5 * time.Second
	DefaultLimit            = 10
	DefaultNeutralThreshold = 0.55
	DefaultMinConfidence    = 0.5
	DefaultMaxIterations    = 500
	DefaultMaxFeatures      = 1000
	DefaultRetrainDebounce  = 2 * time.Second

	DefaultModelDir = "models"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "graphyte"
	DefaultDBMaxConns = 10

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "graphyte:"
	DefaultCacheTTL       = 15 * time.Minute
	DefaultLockTTL        = 2 * time.Minute

	DefaultKafkaBroker         = "localhost:9092"
	DefaultKafkaGroupID        = "graphyte-worker"
	DefaultKafkaCompletedTopic = "screening.completed"
	DefaultKafkaRequestedTopic = "screening.requested"
	DefaultKafkaDeadLetter     = "screening.dead_letter"

	DefaultOpenSearchIndex = "news-articles"

	DefaultNewsAPIBaseURL    = "https://newsapi.org/v2/everything"
	DefaultNewsAPIMaxRetries = 3

	DefaultMinIOBucket = "graphyte-models"

	DefaultMetricsNamespace = "graphyte"
	DefaultMetricsPath      = "/metrics"

	DefaultWatchlistSchedule = "0 0 */6 * * *"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg. Explicit values win.
// Booleans are left alone; false is their default.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.GRPCPort == 0 {
		cfg.Server.GRPCPort = DefaultServerGRPCPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.RateLimitRPS > 0 && cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = int(cfg.Server.RateLimitRPS) * 2
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	if cfg.Engine.TrainingDataPath == "" {
		cfg.Engine.TrainingDataPath = DefaultTrainingDataPath
	}
	if cfg.Engine.ArticleDBPath == "" {
		cfg.Engine.ArticleDBPath = DefaultArticleDBPath
	}
	if cfg.Engine.CorpusBackend == "" {
		cfg.Engine.CorpusBackend = CorpusBackendCSV
	}
	if cfg.Engine.RetrievalTimeout == 0 {
		cfg.Engine.RetrievalTimeout = DefaultRetrievalTimeout
	}
	if cfg.Engine.DefaultLimit == 0 {
		cfg.Engine.DefaultLimit = DefaultLimit
	}
	if cfg.Engine.NeutralThreshold == 0 {
		cfg.Engine.NeutralThreshold = DefaultNeutralThreshold
	}
	if cfg.Engine.MinConfidence == 0 {
		cfg.Engine.MinConfidence = DefaultMinConfidence
	}
	if cfg.Engine.MaxIterations == 0 {
		cfg.Engine.MaxIterations = DefaultMaxIterations
	}
	if cfg.Engine.MaxFeatures == 0 {
		cfg.Engine.MaxFeatures = DefaultMaxFeatures
	}
	if cfg.Engine.RetrainDebounce == 0 {
		cfg.Engine.RetrainDebounce = DefaultRetrainDebounce
	}

	// ── Model store ───────────────────────────────────────────────────────────
	if cfg.ModelStore.Backend == "" {
		cfg.ModelStore.Backend = ModelStoreFS
	}
	if cfg.ModelStore.Dir == "" {
		cfg.ModelStore.Dir = DefaultModelDir
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30 * time.Minute
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.CacheTTL == 0 {
		cfg.Redis.CacheTTL = DefaultCacheTTL
	}
	if cfg.Redis.LockTTL == 0 {
		cfg.Redis.LockTTL = DefaultLockTTL
	}
	// DB 0 is both the zero value and the default.

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.CompletedTopic == "" {
		cfg.Kafka.CompletedTopic = DefaultKafkaCompletedTopic
	}
	if cfg.Kafka.RequestedTopic == "" {
		cfg.Kafka.RequestedTopic = DefaultKafkaRequestedTopic
	}
	if cfg.Kafka.DeadLetterTopic == "" {
		cfg.Kafka.DeadLetterTopic = DefaultKafkaDeadLetter
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = 3
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 100
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}

	// ── OpenSearch ────────────────────────────────────────────────────────────
	if cfg.OpenSearch.Index == "" {
		cfg.OpenSearch.Index = DefaultOpenSearchIndex
	}
	if cfg.OpenSearch.Timeout == 0 {
		cfg.OpenSearch.Timeout = DefaultRetrievalTimeout
	}

	// ── News API ──────────────────────────────────────────────────────────────
	if cfg.NewsAPI.BaseURL == "" {
		cfg.NewsAPI.BaseURL = DefaultNewsAPIBaseURL
	}
	if cfg.NewsAPI.Timeout == 0 {
		cfg.NewsAPI.Timeout = DefaultRetrievalTimeout
	}
	if cfg.NewsAPI.MaxRetries == 0 {
		cfg.NewsAPI.MaxRetries = DefaultNewsAPIMaxRetries
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Watchlist ─────────────────────────────────────────────────────────────
	if cfg.Watchlist.Schedule == "" {
		cfg.Watchlist.Schedule = DefaultWatchlistSchedule
	}
	if cfg.Watchlist.Mode == "" {
		cfg.Watchlist.Mode = "local"
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.HealthPort == 0 {
		cfg.Worker.HealthPort = DefaultWorkerHealthPort
	}
}

//Personal.AI order the ending
