// Package bootstrap assembles the screening engine from configuration. The
// API server, the worker and the CLI all build on it.
package bootstrap

import (
	"context"
	"sort"
	"time"

	"github.com/turtacn/Graphyte-Intelligence/internal/application/screening"
	"github.com/turtacn/Graphyte-Intelligence/internal/config"
	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/corpus"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/search/newsapi"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/storage/modelstore"
	"github.com/turtacn/Graphyte-Intelligence/internal/intelligence/riskclf"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// EventSource stamps the envelopes this process publishes.
const EventSource = "graphyte"

const trainingLockName = "model-training"

// Components holds every collaborator built from one Config. Optional
// backends that are disabled stay nil.
type Components struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	Store     modelstore.Store
	Training  *corpus.TrainingFile
	Corpus    risk.EntityCorpus
	Articles  *repositories.ArticleRepository
	Retriever risk.Retriever

	Postgres   *postgres.Connection
	Redis      *redis.Client
	Cache      redis.Cache
	OpenSearch *opensearch.Client
	MinIO      *minio.MinIOClient
	Producer   *kafka.Producer
	Events     *kafka.ScreeningEvents

	Models   *screening.ModelManager
	Pipeline *screening.Pipeline
	Service  screening.Service

	checks  map[string]func(ctx context.Context) error
	closers []func() error
}

// Build connects every enabled backend and wires the screening service on
// top. On failure everything opened so far is closed again. The model is
// not loaded; callers decide between EnsureLoaded and Retrain.
func Build(ctx context.Context, cfg *config.Config, log logging.Logger) (*Components, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &Components{
		Config: cfg,
		Logger: log,
		checks: make(map[string]func(ctx context.Context) error),
	}
	steps := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"metrics", c.initMetrics},
		{"postgres", c.initPostgres},
		{"redis", c.initRedis},
		{"opensearch", c.initOpenSearch},
		{"model store", c.initModelStore},
		{"corpus", c.initCorpus},
		{"retriever", c.initRetriever},
		{"kafka", c.initKafka},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			c.Close()
			log.Error("bootstrap failed", logging.String("step", s.name), logging.Err(err))
			return nil, err
		}
	}
	c.wireService()

	log.Info("components initialized",
		logging.String("model_store", c.Store.Location()),
		logging.String("corpus", cfg.Engine.CorpusBackend),
		logging.String("live_retriever", cfg.Engine.LiveRetriever),
		logging.Bool("history", c.Postgres != nil),
		logging.Bool("cache", c.Cache != nil),
		logging.Bool("events", c.Events != nil))
	return c, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Infrastructure
// ─────────────────────────────────────────────────────────────────────────────

func (c *Components) initMetrics(ctx context.Context) error {
	if !c.Config.Metrics.Enabled {
		return nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:      c.Config.Metrics.Namespace,
		RuntimeMetrics: true,
	}, c.Logger)
	if err != nil {
		return err
	}
	c.Collector = collector
	c.Metrics = prometheus.NewAppMetrics(collector)
	return nil
}

// PostgresConfig maps the database section onto the connection settings.
func PostgresConfig(cfg config.DatabaseConfig) postgres.PostgresConfig {
	return postgres.PostgresConfig{
		Host:            cfg.Host,
		Port:            cfg.Port,
		Database:        cfg.DBName,
		Username:        cfg.User,
		Password:        cfg.Password,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxConns,
		MaxIdleConns:    cfg.MinConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
}

func (c *Components) initPostgres(ctx context.Context) error {
	db := c.Config.Database
	if !db.Enabled {
		return nil
	}
	pgCfg := PostgresConfig(db)
	if db.AutoMigrate {
		if err := postgres.RunMigrations(postgres.DSN(pgCfg)); err != nil {
			return err
		}
	}
	conn, err := postgres.NewConnection(pgCfg, c.Logger)
	if err != nil {
		return err
	}
	c.Postgres = conn
	c.closers = append(c.closers, conn.Close)
	c.checks["postgres"] = conn.HealthCheck
	return nil
}

func (c *Components) initRedis(ctx context.Context) error {
	rc := c.Config.Redis
	if !rc.Enabled {
		return nil
	}
	client, err := redis.NewClient(&redis.RedisConfig{
		Addr:         rc.Addr,
		Password:     rc.Password,
		DB:           rc.DB,
		PoolSize:     rc.PoolSize,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
		KeyPrefix:    rc.KeyPrefix,
	}, c.Logger)
	if err != nil {
		return err
	}
	c.Redis = client
	c.closers = append(c.closers, client.Close)
	c.checks["redis"] = client.Ping
	c.Cache = redis.NewRedisCache(client, c.Logger, redis.WithDefaultTTL(rc.CacheTTL), redis.WithJitter(true))
	return nil
}

func (c *Components) initOpenSearch(ctx context.Context) error {
	oc := c.Config.OpenSearch
	if !oc.Enabled {
		return nil
	}
	client, err := opensearch.NewClient(opensearch.ClientConfig{
		Addresses:          oc.Addresses,
		Username:           oc.User,
		Password:           oc.Password,
		InsecureSkipVerify: oc.InsecureSkipVerify,
		RequestTimeout:     oc.Timeout,
	}, c.Logger)
	if err != nil {
		return err
	}
	c.OpenSearch = client
	c.closers = append(c.closers, client.Close)
	c.checks["opensearch"] = client.Ping
	return nil
}

func (c *Components) initModelStore(ctx context.Context) error {
	switch c.Config.ModelStore.Backend {
	case config.ModelStoreMinIO:
		mc := c.Config.MinIO
		client, err := minio.NewMinIOClient(&minio.MinIOConfig{
			Endpoint:  mc.Endpoint,
			AccessKey: mc.AccessKey,
			SecretKey: mc.SecretKey,
			UseSSL:    mc.UseSSL,
			Region:    mc.Region,
			Bucket:    mc.Bucket,
			Prefix:    mc.Prefix,
		}, c.Logger)
		if err != nil {
			return err
		}
		c.MinIO = client
		c.closers = append(c.closers, client.Close)
		c.checks["minio"] = func(ctx context.Context) error {
			_, err := client.HealthCheck(ctx)
			return err
		}
		c.Store = minio.NewModelRepository(client, c.Logger)
	default:
		c.Store = modelstore.NewFSStore(c.Config.ModelStore.Dir, c.Logger)
	}
	c.Training = corpus.NewTrainingFile(c.Config.Engine.TrainingDataPath)
	return nil
}

func (c *Components) initCorpus(ctx context.Context) error {
	switch c.Config.Engine.CorpusBackend {
	case config.CorpusBackendPostgres:
		if c.Postgres == nil {
			return errors.New(errors.ErrCodeServiceUnavailable, "postgres corpus requires database.enabled")
		}
		c.Articles = repositories.NewArticleRepository(c.Postgres, c.Logger)
		c.Corpus = c.Articles
	default:
		mem, err := corpus.LoadArticleFile(c.Config.Engine.ArticleDBPath, c.Logger)
		if err != nil {
			return err
		}
		c.Corpus = mem
	}
	if c.Postgres != nil && c.Articles == nil {
		c.Articles = repositories.NewArticleRepository(c.Postgres, c.Logger)
	}
	return nil
}

func (c *Components) initRetriever(ctx context.Context) error {
	switch c.Config.Engine.LiveRetriever {
	case config.RetrieverOpenSearch:
		if c.OpenSearch == nil {
			return errors.New(errors.ErrCodeServiceUnavailable, "opensearch retriever requires opensearch.enabled")
		}
		c.Retriever = opensearch.NewRetriever(c.OpenSearch, c.Config.OpenSearch.Index, c.Logger)
	case config.RetrieverNewsAPI:
		nc := c.Config.NewsAPI
		client, err := newsapi.NewClient(newsapi.Config{
			BaseURL:    nc.BaseURL,
			APIKey:     nc.APIKey,
			Timeout:    nc.Timeout,
			MaxRetries: nc.MaxRetries,
		}, nil, c.Logger)
		if err != nil {
			return err
		}
		c.Retriever = client
	}
	return nil
}

func (c *Components) initKafka(ctx context.Context) error {
	kc := c.Config.Kafka
	if !kc.Enabled {
		return nil
	}
	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      kc.Brokers,
		Acks:         "all",
		MaxRetries:   kc.MaxRetries,
		BatchSize:    kc.BatchSize,
		WriteTimeout: kc.WriteTimeout,
	}, c.Logger)
	if err != nil {
		return err
	}
	c.Producer = producer
	c.closers = append(c.closers, producer.Close)
	c.Events = kafka.NewScreeningEvents(producer, kc.CompletedTopic, EventSource, c.Logger)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Application
// ─────────────────────────────────────────────────────────────────────────────

func (c *Components) wireService() {
	ec := c.Config.Engine

	managerOpts := []screening.ManagerOption{
		screening.WithManagerMetrics(c.Metrics),
		screening.WithFitOptions(
			riskclf.WithMaxFeatures(ec.MaxFeatures),
			riskclf.WithMaxIterations(ec.MaxIterations),
			riskclf.WithLogger(c.Logger),
		),
	}
	if c.Redis != nil {
		ttl := c.Config.Redis.LockTTL
		const retryDelay = 250 * time.Millisecond
		lock := redis.NewLockFactory(c.Redis, c.Logger).NewMutex(trainingLockName,
			redis.WithLockTTL(ttl),
			redis.WithRetryDelay(retryDelay),
			redis.WithRetryCount(int(ttl/retryDelay)+1),
			redis.WithWatchdog(0))
		managerOpts = append(managerOpts, screening.WithTrainingLock(lock))
	}
	c.Models = screening.NewModelManager(c.Store, c.Training, c.Logger, managerOpts...)

	pipelineOpts := []screening.PipelineOption{screening.WithPipelineMetrics(c.Metrics)}
	if c.Retriever != nil {
		pipelineOpts = append(pipelineOpts, screening.WithRetriever(c.Retriever, ec.LiveRetriever))
	}
	c.Pipeline = screening.NewPipeline(c.Models, c.Corpus, screening.PipelineConfig{
		NeutralThreshold: ec.NeutralThreshold,
		DefaultLimit:     ec.DefaultLimit,
		RetrievalTimeout: ec.RetrievalTimeout,
	}, c.Logger, pipelineOpts...)

	serviceOpts := []screening.ServiceOption{screening.WithServiceMetrics(c.Metrics)}
	if c.Cache != nil {
		serviceOpts = append(serviceOpts, screening.WithCache(c.Cache))
	}
	if c.Postgres != nil {
		serviceOpts = append(serviceOpts, screening.WithRepository(repositories.NewScreeningRepository(c.Postgres, c.Logger)))
	}
	if c.Events != nil {
		serviceOpts = append(serviceOpts, screening.WithPublisher(c.Events, c.Config.Kafka.CompletedTopic))
	}
	c.Service = screening.NewService(c.Pipeline, c.Models, c.Corpus, screening.ServiceConfig{
		CacheTTL:      c.Config.Redis.CacheTTL,
		MinConfidence: ec.MinConfidence,
	}, c.Logger, serviceOpts...)

	c.checks["model"] = func(ctx context.Context) error {
		if !c.Models.Ready() {
			return screening.ErrModelNotReady
		}
		return nil
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Lifecycle
// ─────────────────────────────────────────────────────────────────────────────

// HealthCheck pairs a component name with its probe.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthChecks returns the probes of every connected backend plus the
// model, sorted by name.
func (c *Components) HealthChecks() []HealthCheck {
	out := make([]HealthCheck, 0, len(c.checks))
	for name, fn := range c.checks {
		out = append(out, HealthCheck{Name: name, Check: fn})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Close releases backends in reverse order of creation. Safe to call twice.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("close failed", logging.Err(err))
		}
	}
	c.closers = nil
}

//Personal.AI order the ending
