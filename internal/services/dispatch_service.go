package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/mfagundes/taskfan/internal/metrics"
	"github.com/mfagundes/taskfan/internal/tracing"
	"github.com/mfagundes/taskfan/pkg/domain"
)

// DispatcherService issues one bounded call per non-zero assignment, all
// concurrently, and resolves exactly one outcome per assignment in assignment
// order. A slow or failing worker never blocks or cancels the others.
type DispatcherService interface {
	Dispatch(ctx context.Context, taskID, name string, assignments []domain.WorkerAssignment) []domain.WorkerOutcome
}

type dispatcherService struct {
	client  *resty.Client
	logger  *slog.Logger
	timeout time.Duration
	tracer  oteltrace.Tracer
}

func NewDispatcherService(client *resty.Client, logger *slog.Logger, perCallTimeout time.Duration) DispatcherService {
	if client == nil {
		client = resty.New()
	}
	if perCallTimeout <= 0 {
		perCallTimeout = 60 * time.Second
	}
	return &dispatcherService{
		client:  client,
		logger:  logger,
		timeout: perCallTimeout,
		tracer:  otel.Tracer("taskfan/dispatcher"),
	}
}

func (d *dispatcherService) Dispatch(ctx context.Context, taskID, name string, assignments []domain.WorkerAssignment) []domain.WorkerOutcome {
	outcomes := make([]domain.WorkerOutcome, len(assignments))

	var wg sync.WaitGroup
	for i, a := range assignments {
		if a.AssignedCount == 0 {
			// Synthesized without network I/O.
			outcomes[i] = domain.WorkerOutcome{Label: a.Label}
			continue
		}
		wg.Add(1)
		go func(i int, a domain.WorkerAssignment) {
			defer wg.Done()
			outcomes[i] = d.call(ctx, taskID, name, a)
		}(i, a)
	}
	wg.Wait()

	return outcomes
}

func (d *dispatcherService) call(ctx context.Context, taskID, name string, a domain.WorkerAssignment) domain.WorkerOutcome {
	ctx, span := d.tracer.Start(ctx, "worker.execute", oteltrace.WithAttributes(
		attribute.String("worker.label", a.Label),
		attribute.Int("worker.assigned_count", a.AssignedCount),
	))
	defer span.End()

	// Each call gets its own deadline so a timeout cancels only this wait.
	cctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req := d.client.R().
		SetContext(cctx).
		SetBody(domain.ExecuteRequest{TaskID: taskID, Name: name, Count: a.AssignedCount})
	tracing.InjectHeaders(ctx, req.Header)

	start := time.Now()
	resp, err := req.Post(a.Worker.URL + "/execute")
	elapsed := time.Since(start)

	out := domain.WorkerOutcome{
		Label:         a.Label,
		AssignedCount: a.AssignedCount,
		ElapsedMillis: elapsed.Milliseconds(),
	}

	if err != nil {
		out.Error = classifyTransportError(err)
		d.observe(span, out, elapsed)
		return out
	}

	var body domain.ExecuteResponse
	_ = json.Unmarshal(resp.Body(), &body)

	if resp.IsSuccess() {
		out.CompletedCount = body.CompletedCount
	} else {
		out.Error = domain.ReasonWorkerError(resp.StatusCode())
		// A worker may have done part of the work before failing.
		out.CompletedCount = body.CompletedCount
	}
	d.observe(span, out, elapsed)
	return out
}

func (d *dispatcherService) observe(span oteltrace.Span, out domain.WorkerOutcome, elapsed time.Duration) {
	outcome := metrics.OutcomeSuccess
	switch {
	case out.Error == domain.ReasonTimeout:
		outcome = metrics.OutcomeTimeout
	case out.Error == domain.ReasonConnectionFailed:
		outcome = metrics.OutcomeConnectionFailed
	case out.Error != "":
		outcome = metrics.OutcomeWorkerError
	}
	metrics.WorkerCallsTotal.WithLabelValues(outcome).Inc()
	metrics.WorkerCallLatencySeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())

	span.SetAttributes(attribute.Int("worker.completed_count", out.CompletedCount))
	if out.Error != "" {
		span.SetStatus(codes.Error, out.Error)
		d.logger.Warn("worker call failed",
			"worker", out.Label,
			"assigned", out.AssignedCount,
			"reason", out.Error,
			"elapsedMs", out.ElapsedMillis,
		)
	}
}

func classifyTransportError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ReasonTimeout
	}
	return domain.ReasonConnectionFailed
}
