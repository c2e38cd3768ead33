// Command apiserver serves the screening API over HTTP, with a gRPC health
// endpoint for orchestrators.
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
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	grpcserver "github.com/turtacn/Graphyte-Intelligence/internal/interfaces/grpc"
	httpserver "github.com/turtacn/Graphyte-Intelligence/internal/interfaces/http"
	"github.com/turtacn/Graphyte-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/Graphyte-Intelligence/internal/interfaces/http/middleware"
)

const (
	defaultConfigPath   = "configs/config.yaml"
	healthSyncInterval  = 10 * time.Second
	rateLimiterIdleTime = 10 * time.Minute
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	grpcPort := flag.Int("grpc-port", 0, "gRPC health port (overrides config, 0 keeps config)")
	flag.Parse()

	path := *configPath
	if _, err := os.Stat(path); err != nil {
		// Fall back to GRAPHYTE_* variables.
		path = ""
	}
	cfg, err := config.LoadOrEnv(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}
	if *grpcPort > 0 {
		cfg.Server.GRPCPort = *grpcPort
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, path, logger); err != nil {
		logger.Error("api server exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, configPath string, logger logging.Logger) error {
	logger.Info("starting Graphyte API server",
		logging.String("version", version),
		logging.Int("http_port", cfg.Server.Port),
		logging.Int("grpc_port", cfg.Server.GRPCPort))

	comps, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	if err := comps.Models.EnsureLoaded(ctx); err != nil {
		return err
	}

	// --- HTTP ---
	routerCfg := httpserver.RouterConfig{
		ScreeningHandler: handlers.NewScreeningHandler(comps.Service, logger),
		HealthHandler:    handlers.NewHealthHandler(version, comps.Metrics, healthCheckers(comps)...),
		Logger:           logger,
		Metrics:          comps.Metrics,
		MetricsCollector: comps.Collector,
		MetricsPath:      cfg.Metrics.Path,
		Mode:             cfg.Server.Mode,
	}
	if cfg.Server.RateLimitRPS > 0 {
		limiter := middleware.NewKeyedLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, rateLimiterIdleTime)
		defer limiter.Stop()
		routerCfg.RateLimiter = limiter
	}
	srv := httpserver.NewServer(httpserver.ServerConfig{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, httpserver.NewRouter(routerCfg), logger)

	errCh := make(chan error, 2)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// --- gRPC health ---
	var grpcSrv *grpcserver.Server
	if cfg.Server.GRPCPort > 0 {
		grpcSrv, err = grpcserver.NewServer(grpcserver.Config{
			Port:       cfg.Server.GRPCPort,
			Reflection: cfg.Server.Mode == "debug",
		}, grpcserver.WithLogger(logger), grpcserver.WithMetrics(comps.Metrics),
			grpcserver.WithGracefulTimeout(cfg.Server.ShutdownTimeout))
		if err != nil {
			return err
		}
		go grpcSrv.SyncHealth(ctx, readinessProbe(comps), healthSyncInterval)
		go func() {
			if err := grpcSrv.Start(); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	// --- Background ---
	if configPath != "" {
		watchLogLevel(configPath, logger)
	}
	if cfg.Engine.WatchTrainingData {
		watcher := screening.NewTrainingWatcher(cfg.Engine.TrainingDataPath, cfg.Engine.RetrainDebounce,
			func(ctx context.Context) error {
				_, err := comps.Service.Retrain(ctx, screening.TriggerFileChange)
				return err
			}, logger)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("training watcher stopped", logging.Err(err))
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server failed, shutting down", logging.Err(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", logging.Err(err))
	}
	if grpcSrv != nil {
		if err := grpcSrv.Stop(shutdownCtx); err != nil {
			logger.Error("gRPC server shutdown error", logging.Err(err))
		}
	}
	logger.Info("servers stopped")
	return nil
}

// watchLogLevel applies log.level edits without a restart. Other settings
// need one.
func watchLogLevel(configPath string, logger logging.Logger) {
	setter, ok := logger.(logging.LevelSetter)
	if !ok {
		return
	}
	err := config.Watch(configPath, func(cfg *config.Config) {
		if cfg.Log.Level == setter.Level() {
			return
		}
		setter.SetLevel(cfg.Log.Level)
		logger.Info("log level changed", logging.String("level", cfg.Log.Level))
	}, func(err error) {
		logger.Warn("ignoring invalid configuration change", logging.Err(err))
	})
	if err != nil {
		logger.Warn("config watch disabled", logging.Err(err))
	}
}

//Personal.AI order the ending
