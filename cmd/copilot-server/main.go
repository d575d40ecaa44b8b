// cmd/copilot-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"data-copilot/internal/agents/chart"
	"data-copilot/internal/agents/explainer"
	"data-copilot/internal/agents/planner"
	"data-copilot/internal/agents/sqlgen"
	"data-copilot/internal/api"
	"data-copilot/internal/common/config"
	"data-copilot/internal/common/database"
	"data-copilot/internal/common/llm"
	"data-copilot/internal/common/logger"
	"data-copilot/internal/common/observability"
	"data-copilot/internal/history"
	"data-copilot/internal/workflow"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// stageClient builds the retrying LLM client for one pipeline stage.
func stageClient(cfg *config.Config, stage string, log logger.Logger) (llm.Client, error) {
	stageCfg := config.GetStageConfig(cfg, stage)
	base, err := llm.New(cfg.LLM, stageCfg.Temperature)
	if err != nil {
		return nil, err
	}
	return llm.WithRetry(base, stage, config.GetDuration(stageCfg.Timeout), stageCfg.MaxRetries, log), nil
}

func main() {
	zapLog := logger.New("info", "console")

	zapLog.Info("Starting data copilot server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("copilot-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init SQLite with retry ---
	var db *database.SQLiteClient
	err = retryWithBackoff(func() error {
		var err error
		db, err = database.NewSQLite(cfg.Database.SQLite)
		if err != nil {
			return err
		}
		return db.Ping(ctx)
	}, 5, time.Second, zapLog, "SQLite connection")
	if err != nil {
		zapLog.Fatal("sqlite failed after retries", zap.Error(err))
	}
	defer db.Close()

	if err := db.Init(ctx, cfg.Database.SQLite.Seed); err != nil {
		zapLog.Fatal("dataset init failed", zap.Error(err))
	}
	zapLog.Info("SQLite dataset ready", zap.String("path", cfg.Database.SQLite.Path))

	// --- Init Redis (optional) with retry ---
	var redisClient *database.RedisClient
	if cfg.Database.Redis.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")
	}

	// --- LLM clients, one per stage ---
	sqlLLM, err := stageClient(cfg, "sql", log)
	if err != nil {
		zapLog.Fatal("sql stage client failed", zap.Error(err))
	}
	chartLLM, err := stageClient(cfg, "chart", log)
	if err != nil {
		zapLog.Fatal("chart stage client failed", zap.Error(err))
	}
	explainerLLM, err := stageClient(cfg, "explainer", log)
	if err != nil {
		zapLog.Fatal("explainer stage client failed", zap.Error(err))
	}

	// --- Chart renderer ---
	renderer, err := chart.NewRenderer(cfg.Charts.Dir, cfg.Charts.WidthCM, cfg.Charts.HeightCM)
	if err != nil {
		zapLog.Fatal("chart renderer init failed", zap.Error(err))
	}

	// --- History store and caches ---
	store := history.NewStore(db, log)

	var sqlExecutor sqlgen.Executor = db
	var sessionCache workflow.HistoryCache
	if redisClient != nil {
		resultCache := history.NewResultCache(redisClient, config.GetDuration(cfg.History.ResultCacheTTL), log)
		sqlExecutor = history.NewCachingExecutor(db, resultCache)
		sessionCache = history.NewSessionCache(redisClient, config.GetDuration(cfg.History.CacheTTL), log)
	}

	// --- Pipeline ---
	pipeline := workflow.New(workflow.Options{
		Planner:       planner.NewHandler(log),
		SQL:           sqlgen.NewHandler(sqlLLM, sqlExecutor, log),
		Chart:         chart.NewHandler(chartLLM, renderer, log),
		Explainer:     explainer.NewHandler(explainerLLM, log),
		Recorder:      store,
		Cache:         sessionCache,
		Observability: obs,
		HistoryLimit:  cfg.History.MaxTurnsPerSession,
	}, log)

	// --- HTTP server ---
	server := api.NewServer(pipeline, db, renderer, store, log)
	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Routes(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Server stopped")
}
