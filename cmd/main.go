package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"machina/internal/adapters/clickhouse"
	"machina/internal/adapters/config"
	"machina/internal/adapters/errors/noop"
	"machina/internal/adapters/errors/sentry"
	"machina/internal/adapters/kafka"
	redisadapter "machina/internal/adapters/redis"
	"machina/internal/api"
	"machina/internal/api/health"
	"machina/internal/api/history"
	"machina/internal/api/predict"
	"machina/internal/events"
	mlefficiency "machina/internal/ml/efficiency"
	chrepo "machina/internal/repository/clickhouse"
	redisrepo "machina/internal/repository/redis"
	"machina/internal/services/prediction"
	"machina/pkg/errors"
	"machina/pkg/logger"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Artifact loading is one-shot bootstrap: either both artifacts
	// deserialize or the process does not serve at all.
	classifier, err := mlefficiency.NewClassifier(cfg.Model.ModelPath, cfg.Model.ScalerPath)
	if err != nil {
		log.Fatalf("Artifact loading failed: %v", err)
	}
	defer classifier.Close()
	log.Infof("Artifacts loaded: model=%s scaler=%s features=%d",
		cfg.Model.ModelPath, cfg.Model.ScalerPath, classifier.NumFeatures())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := prediction.Deps{
		Predictor: classifier,
		Log:       log,
	}
	checkers := make(map[string]health.Checker)
	closers := make([]func(), 0, 4)

	var historyHandler *history.Handler

	if cfg.Redis.Enabled {
		redisClient, err := redisadapter.NewClient(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		deps.Cache = redisrepo.NewPredictionCache(redisClient, cfg.Redis.CacheTTL)
		checkers["redis"] = redisClient
		closers = append(closers, func() { redisClient.Close() })
		log.Info("Prediction cache enabled (Redis)")
	}

	if cfg.ClickHouse.Enabled {
		chClient, err := clickhouse.NewClient(cfg.ClickHouse)
		if err != nil {
			log.Fatalf("Failed to connect to ClickHouse: %v", err)
		}
		historyRepo := chrepo.NewPredictionRepository(chClient.Conn())
		historyRepo.Start(ctx)
		deps.History = historyRepo
		historyHandler = history.New(historyRepo, log)
		checkers["clickhouse"] = chClient
		closers = append(closers, func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			if err := historyRepo.Stop(stopCtx); err != nil {
				log.Warnf("Failed to stop prediction history writer: %v", err)
			}
			chClient.Close()
		})
		log.Info("Prediction history enabled (ClickHouse)")
	}

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers})
		publisher := events.NewPublisher(producer, cfg.Kafka.Topic)
		deps.Events = publisher
		closers = append(closers, func() { publisher.Close() })
		log.Infof("Prediction events enabled (Kafka, topic=%s)", cfg.Kafka.Topic)
	}

	service := prediction.NewService(deps)

	predictHandler := predict.New(service, cfg.Server.RateLimitPerMinute, errorTracker, log)
	healthHandler := health.New(log, checkers, cfg.App.Name, version)

	server := api.NewServer(api.ServerConfig{
		Port:        cfg.Server.Port,
		ServiceName: cfg.App.Name,
		Version:     version,
	}, predictHandler, historyHandler, healthHandler, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.Info("System initialized successfully")

	waitForShutdown(cancel, serverErr, server, closers, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// waitForShutdown waits for a shutdown signal or server failure and performs
// graceful shutdown
func waitForShutdown(cancel context.CancelFunc, serverErr <-chan error, server *api.Server, closers []func(), errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutting down...")
	case err := <-serverErr:
		if err != nil {
			log.Errorf("HTTP server failed: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("Server shutdown failed: %v", err)
	}

	cancel()

	for _, closeFn := range closers {
		closeFn()
	}

	if errorTracker != nil {
		if err := errorTracker.Flush(shutdownCtx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
