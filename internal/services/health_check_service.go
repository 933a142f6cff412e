package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mfagundes/taskfan/internal/metrics"
	"github.com/mfagundes/taskfan/internal/repository"
)

// HealthCheckService is the opt-in liveness policy for the registry: the
// source design never removes a worker, so a dead endpoint would be dispatched
// to (and time out) forever. When enabled, a worker failing the /health probe
// for threshold consecutive rounds is evicted.
type HealthCheckService interface {
	Start(ctx context.Context)
}

type healthCheckService struct {
	registry  repository.WorkerRegistry
	client    *resty.Client
	logger    *slog.Logger
	interval  time.Duration
	threshold int
	failures  map[string]int
}

func NewHealthCheckService(registry repository.WorkerRegistry, client *resty.Client, logger *slog.Logger, intervalSeconds, failureThreshold int) HealthCheckService {
	if intervalSeconds <= 0 {
		intervalSeconds = 30
	}
	if failureThreshold <= 0 {
		failureThreshold = 3
	}
	if client == nil {
		client = resty.New()
	}
	return &healthCheckService{
		registry:  registry,
		client:    client,
		logger:    logger,
		interval:  time.Duration(intervalSeconds) * time.Second,
		threshold: failureThreshold,
		failures:  make(map[string]int),
	}
}

func (s *healthCheckService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkOnce(ctx)
		}
	}
}

func (s *healthCheckService) checkOnce(ctx context.Context) {
	snapshot := s.registry.Snapshot()
	seen := make(map[string]bool, len(snapshot))

	for _, w := range snapshot {
		seen[w.Label] = true
		if s.probe(ctx, w.URL) {
			s.failures[w.Label] = 0
			s.registry.Touch(w.Label, time.Now())
			continue
		}
		s.failures[w.Label]++
		if s.failures[w.Label] < s.threshold {
			continue
		}
		if s.registry.Evict(w.Label) {
			metrics.WorkersEvictedTotal.Inc()
			s.logger.Warn("worker evicted after failed health checks",
				"worker", w.Label,
				"url", w.URL,
				"consecutiveFailures", s.failures[w.Label],
			)
		}
		delete(s.failures, w.Label)
	}

	// Forget counters for workers no longer registered.
	for label := range s.failures {
		if !seen[label] {
			delete(s.failures, label)
		}
	}
}

func (s *healthCheckService) probe(ctx context.Context, baseURL string) bool {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := s.client.R().SetContext(cctx).Get(baseURL + "/health")
	return err == nil && resp.IsSuccess()
}
