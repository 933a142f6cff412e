package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"

	"github.com/mfagundes/taskfan/internal/middleware"
	"github.com/mfagundes/taskfan/internal/repository"
	"github.com/mfagundes/taskfan/internal/services"
	"github.com/mfagundes/taskfan/internal/tracing"
	"github.com/mfagundes/taskfan/pkg/config"
)

// Application is the assembled control plane: registry, dispatcher,
// orchestrator and the gin engine serving them.
type Application struct {
	Config          *config.Config
	Engine          *gin.Engine
	Registry        repository.WorkerRegistry
	Tasks           services.TaskService
	Logger          *slog.Logger
	TracingShutdown func(context.Context) error
}

func NewApplication(cfg *config.Config) (*Application, error) {
	logger := newLogger(cfg, "taskfan")
	slog.SetDefault(logger)

	tracingShutdown, err := tracing.Setup(context.Background(), tracing.Config{
		Enabled:      cfg.TracingEnabled,
		ServiceName:  "taskfan",
		OTLPEndpoint: cfg.TracingOTLPEndpoint,
		OTLPInsecure: cfg.TracingOTLPInsecure,
		SampleRatio:  cfg.TracingSampleRatio,
	}, logger)
	if err != nil {
		return nil, err
	}

	registry := repository.NewWorkerRegistry(time.Now)
	if n := repository.Bootstrap(registry, cfg.Workers); n > 0 {
		logger.Info("registry bootstrapped from environment", "workers", n)
	}

	dispatcher := services.NewDispatcherService(
		resty.New(),
		logger,
		time.Duration(cfg.WorkerTimeoutSeconds)*time.Second,
	)
	tasks := services.NewTaskService(registry, dispatcher, logger, time.Now)

	if cfg.HealthCheckEnabled {
		hc := services.NewHealthCheckService(registry, resty.New(), logger,
			cfg.HealthCheckIntervalSeconds, cfg.HealthCheckFailureThreshold)
		go hc.Start(context.Background())
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(logger),
		middleware.TracingMiddleware("taskfan"),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)

	return &Application{
		Config:          cfg,
		Engine:          engine,
		Registry:        registry,
		Tasks:           tasks,
		Logger:          logger,
		TracingShutdown: tracingShutdown,
	}, nil
}

func newLogger(cfg *config.Config, service string) *slog.Logger {
	level := new(slog.LevelVar)
	switch cfg.LogLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler).With("service", service, "env", cfg.Env)
}
