// cmd/insight-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"crm-insights/internal/api"
	"crm-insights/internal/api/handlers"
	"crm-insights/internal/common/auth"
	"crm-insights/internal/common/camunda"
	"crm-insights/internal/common/config"
	"crm-insights/internal/common/database"
	"crm-insights/internal/common/llm"
	"crm-insights/internal/common/logger"
	"crm-insights/internal/common/observability"
	"crm-insights/internal/common/ratelimit"

	ai "crm-insights/internal/workers/ai-insights/ask-insight"
	pi "crm-insights/internal/workers/ai-insights/plan-intent"
	qo "crm-insights/internal/workers/ai-insights/query-opportunities"
	rs "crm-insights/internal/workers/ai-insights/resolve-scope"
	si "crm-insights/internal/workers/ai-insights/summarize-insight"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting insight server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.Observability.ServiceName)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	shutdownTracing, err := observability.InitTracing(cfg.Observability.ServiceName, cfg.App.Version, cfg.Observability.JaegerEndpoint)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Pipeline stages ---
	limiter := ratelimit.NewLimiter(
		rdb.GetClient(),
		cfg.Insights.RateLimit.Requests,
		time.Duration(cfg.Insights.RateLimit.Window)*time.Second,
	)
	deps := ai.Dependencies{
		Scope:     rs.NewHandler(rs.LoadConfig(cfg), rs.NewPostgresMembershipStore(pg.GetDB()), log),
		Executor:  qo.NewHandler(qo.LoadConfig(cfg), pg.GetDB(), log),
		Limiter:   limiter,
		Telemetry: obs,
	}

	// Without credentials the planner and summarizer stay nil and every ask
	// answers 503.
	if cfg.APIs.GenAI.Configured() {
		generator, err := llm.NewClient(ctx, llm.Config{
			APIKey:      cfg.APIs.GenAI.APIKey,
			Model:       cfg.APIs.GenAI.Model,
			BaseURL:     cfg.APIs.GenAI.BaseURL,
			Timeout:     config.GetDuration(cfg.APIs.GenAI.Timeout),
			Temperature: cfg.APIs.GenAI.Temperature,
		}, log)
		if err != nil {
			zapLog.Error("text generation client unavailable, AI asks disabled", zap.Error(err))
		} else {
			deps.Planner = pi.NewHandler(pi.LoadConfig(cfg), generator, log)
			deps.Summarizer = si.NewHandler(si.LoadConfig(cfg), generator, log)
			zapLog.Info("Text generation client ready", zap.String("model", cfg.APIs.GenAI.Model))
		}
	} else {
		zapLog.Warn("apis.genai.api_key not set, AI asks will answer 503")
	}

	asker := ai.NewHandler(ai.LoadConfig(cfg), deps, log)

	// --- Optional Zeebe job worker ---
	var (
		zeebe  *camunda.Client
		worker *camunda.Worker
	)
	if cfg.Camunda.Enabled() && config.IsWorkerEnabled(cfg, ai.TaskType) {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(camunda.ClientConfigFrom(cfg.Camunda))
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}

		askCfg := ai.LoadConfig(cfg)
		worker = camunda.NewWorker(zeebe.GetClient(), camunda.WorkerOptions{
			TaskType:      ai.TaskType,
			MaxJobsActive: askCfg.MaxJobsActive,
			Timeout:       askCfg.JobTimeout,
		}, asker, log)
	}

	// --- HTTP server ---
	router := api.NewRouter(api.RouterConfig{
		Service:        cfg.App.Name,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Asker:          asker,
		Sessions:       auth.NewSessionStore(rdb.GetClient(), cfg.Auth.SessionPrefix),
		Checks: map[string]handlers.Check{
			"postgres": pg.Ping,
			"redis":    rdb.Ping,
		},
		Logger: log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	if worker != nil {
		worker.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		zapLog.Error("Error flushing traces", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down metrics", zap.Error(err))
	}

	zapLog.Info("Insight server stopped gracefully")
}
