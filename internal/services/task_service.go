package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mfagundes/taskfan/internal/metrics"
	"github.com/mfagundes/taskfan/internal/repository"
	"github.com/mfagundes/taskfan/pkg/domain"
)

// TaskService runs one fan-out session per call: snapshot, partition,
// dispatch, aggregate. The session is composed and returned synchronously;
// nothing survives the request.
type TaskService interface {
	RunTask(ctx context.Context, name string, count int) (*domain.TaskSession, error)
}

type taskService struct {
	registry   repository.WorkerRegistry
	dispatcher DispatcherService
	logger     *slog.Logger
	now        func() time.Time
}

func NewTaskService(registry repository.WorkerRegistry, dispatcher DispatcherService, logger *slog.Logger, now func() time.Time) TaskService {
	if now == nil {
		now = time.Now
	}
	return &taskService{
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger,
		now:        now,
	}
}

func (s *taskService) RunTask(ctx context.Context, name string, count int) (*domain.TaskSession, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: count must be >= 0", domain.ErrInvalidInput)
	}

	snapshot := s.registry.Snapshot()
	assignments, err := Partition(count, snapshot)
	if err != nil {
		return nil, err
	}

	taskID := uuid.NewString()
	start := s.now()
	outcomes := s.dispatcher.Dispatch(ctx, taskID, name, assignments)
	end := s.now()

	status, totalCompleted := Aggregate(outcomes)
	elapsed := end.Sub(start)

	for _, o := range outcomes {
		if o.Dispatched() && o.Error == "" {
			s.registry.Touch(o.Label, end)
		}
	}

	metrics.SessionsTotal.WithLabelValues(string(status)).Inc()
	metrics.SessionLatencySeconds.Observe(elapsed.Seconds())

	s.logger.Info("task session finished",
		"taskId", taskID,
		"name", name,
		"requestedTotal", count,
		"workers", len(snapshot),
		"totalCompleted", totalCompleted,
		"status", string(status),
		"elapsedMs", elapsed.Milliseconds(),
	)

	return &domain.TaskSession{
		ID:                 taskID,
		Name:               name,
		RequestedTotal:     count,
		AvailableWorkers:   len(snapshot),
		Assignments:        assignments,
		Results:            outcomes,
		TotalCompleted:     totalCompleted,
		TotalElapsedMillis: elapsed.Milliseconds(),
		OverallStatus:      status,
	}, nil
}
