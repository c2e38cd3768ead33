// Command worker consumes screening.requested messages, publishes
// screening.completed events and runs the scheduled watchlist sweep.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/Graphyte-Intelligence/internal/application/screening"
	"github.com/turtacn/Graphyte-Intelligence/internal/bootstrap"
	"github.com/turtacn/Graphyte-Intelligence/internal/config"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/Graphyte-Intelligence/internal/interfaces/http"
	"github.com/turtacn/Graphyte-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/Graphyte-Intelligence/internal/interfaces/worker"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

const (
	defaultWorkerConfigPath = "configs/config.yaml"
	defaultRetryBackoff     = time.Second
	defaultMaxRetryBackoff  = 30 * time.Second
	topicSetupTimeout       = 30 * time.Second
)

var version = "dev"

func main() {
	configPath := flag.String("config", defaultWorkerConfigPath, "path to configuration file")
	healthPort := flag.Int("health-port", 0, "health/metrics port (overrides config)")
	flag.Parse()

	path := *configPath
	if _, err := os.Stat(path); err != nil {
		path = ""
	}
	cfg, err := config.LoadOrEnv(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *healthPort > 0 {
		cfg.Worker.HealthPort = *healthPort
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("worker exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	if !cfg.Kafka.Enabled && !cfg.Watchlist.Enabled {
		return errors.New(errors.ErrCodeValidation, "worker needs kafka.enabled or watchlist.enabled")
	}
	logger.Info("starting Graphyte worker",
		logging.String("version", version),
		logging.Bool("kafka", cfg.Kafka.Enabled),
		logging.Bool("watchlist", cfg.Watchlist.Enabled))

	comps, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	if err := comps.Models.EnsureLoaded(ctx); err != nil {
		return err
	}

	// --- Queue ---
	if cfg.Kafka.Enabled {
		consumer, err := startConsumer(ctx, cfg, comps, logger)
		if err != nil {
			return err
		}
		defer consumer.Close()
	}

	// --- Watchlist ---
	if cfg.Watchlist.Enabled {
		monitor, err := screening.NewWatchlistMonitor(comps.Service, screening.WatchlistConfig{
			Schedule: cfg.Watchlist.Schedule,
			Mode:     screening.Mode(cfg.Watchlist.Mode),
			Entities: cfg.Watchlist.Entities,
			Timeout:  cfg.Watchlist.Timeout,
		}, comps.Metrics, logger)
		if err != nil {
			return err
		}
		monitor.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			_ = monitor.Stop(stopCtx)
		}()
	}

	// --- Health / metrics ---
	srv := httpserver.NewServer(httpserver.ServerConfig{
		Port:            cfg.Worker.HealthPort,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, httpserver.NewRouter(httpserver.RouterConfig{
		HealthHandler:    handlers.NewHealthHandler(version, comps.Metrics, healthCheckers(comps)...),
		Logger:           logger,
		Metrics:          comps.Metrics,
		MetricsCollector: comps.Collector,
		MetricsPath:      cfg.Metrics.Path,
		Mode:             cfg.Server.Mode,
	}), logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- fmt.Errorf("health server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("health server failed, shutting down", logging.Err(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("health server shutdown error", logging.Err(err))
	}
	logger.Info("Graphyte worker stopped")
	return nil
}

// startConsumer creates the topics and subscribes the request handler.
// Handler failures are retried with backoff and then dead-lettered.
func startConsumer(ctx context.Context, cfg *config.Config, comps *bootstrap.Components, logger logging.Logger) (*kafka.Consumer, error) {
	kc := cfg.Kafka

	topics, err := kafka.NewTopicManager(kc.Brokers, logger)
	if err != nil {
		return nil, err
	}
	setupCtx, cancel := context.WithTimeout(ctx, topicSetupTimeout)
	err = topics.EnsureTopics(setupCtx, kafka.ScreeningTopics(kc.RequestedTopic, kc.CompletedTopic, kc.DeadLetterTopic))
	cancel()
	_ = topics.Close()
	if err != nil {
		return nil, err
	}

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: kc.Brokers,
		GroupID: kc.GroupID,
		Topics:  []string{kc.RequestedTopic},
		RetryConfig: kafka.RetryConfig{
			MaxRetries:      kc.MaxRetries,
			RetryBackoff:    defaultRetryBackoff,
			MaxRetryBackoff: defaultMaxRetryBackoff,
			DeadLetterTopic: kc.DeadLetterTopic,
		},
	}, logger)
	if err != nil {
		return nil, err
	}

	handler := worker.NewRequestHandler(comps.Service, logger,
		worker.WithDeadLetter(comps.Producer, kc.DeadLetterTopic),
		worker.WithMetrics(comps.Metrics))
	consumer.Subscribe(kc.RequestedTopic, handler.Handle)

	if err := consumer.Start(ctx); err != nil {
		_ = consumer.Close()
		return nil, err
	}
	return consumer, nil
}

//Personal.AI order the ending
