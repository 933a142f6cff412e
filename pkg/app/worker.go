package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"

	"github.com/mfagundes/taskfan/internal/controllers"
	"github.com/mfagundes/taskfan/internal/executor"
	"github.com/mfagundes/taskfan/internal/middleware"
	"github.com/mfagundes/taskfan/pkg/config"
)

// WorkerApplication is the assembled worker process: the execute/health
// endpoints plus one-shot startup registration with the control plane.
type WorkerApplication struct {
	Config *config.Config
	Engine *gin.Engine
	Logger *slog.Logger
}

func NewWorkerApplication(cfg *config.Config) *WorkerApplication {
	logger := newLogger(cfg, "taskfan-worker").With("label", cfg.WorkerLabel)
	slog.SetDefault(logger)

	exec := executor.New(cfg.WorkerLabel, cfg.WorkerOutputDir, logger)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(logger),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)
	engine.POST("/execute", controllers.NewExecuteController(exec).Handle)
	engine.GET("/health", controllers.NewHealthController(cfg.WorkerLabel).Handle)

	return &WorkerApplication{Config: cfg, Engine: engine, Logger: logger}
}

// SelfRegister announces this worker's public URL to the control plane once,
// retrying with exponential backoff. It is a no-op unless both registerUrl and
// publicUrl are configured; a final failure is reported, not fatal.
func (w *WorkerApplication) SelfRegister(ctx context.Context) error {
	if w.Config.RegisterURL == "" || w.Config.PublicURL == "" {
		w.Logger.Debug("self-registration skipped; registerUrl or publicUrl not set")
		return nil
	}

	client := resty.New()
	op := func() error {
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		resp, err := client.R().
			SetContext(cctx).
			SetBody(map[string]string{"url": w.Config.PublicURL, "label": w.Config.WorkerLabel}).
			Post(w.Config.RegisterURL)
		if err != nil {
			return err
		}
		if !resp.IsSuccess() {
			return fmt.Errorf("register answered %d: %s", resp.StatusCode(), resp.Body())
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		w.Logger.Warn("self-registration failed", "registerUrl", w.Config.RegisterURL, "err", err)
		return err
	}
	w.Logger.Info("registered with control plane", "publicUrl", w.Config.PublicURL)
	return nil
}
