package services

import (
	"testing"

	"github.com/mfagundes/taskfan/pkg/domain"
)

func TestAggregate(t *testing.T) {
	ok := func(label string, assigned, completed int) domain.WorkerOutcome {
		return domain.WorkerOutcome{Label: label, AssignedCount: assigned, CompletedCount: completed}
	}
	fail := func(label string, assigned, completed int, reason string) domain.WorkerOutcome {
		return domain.WorkerOutcome{Label: label, AssignedCount: assigned, CompletedCount: completed, Error: reason}
	}

	tests := []struct {
		name          string
		outcomes      []domain.WorkerOutcome
		wantStatus    domain.SessionStatus
		wantCompleted int
	}{
		{
			"all succeed",
			[]domain.WorkerOutcome{ok("a", 4, 4), ok("b", 3, 3), ok("c", 3, 3)},
			domain.StatusCompleted, 10,
		},
		{
			"one times out",
			[]domain.WorkerOutcome{ok("a", 4, 4), fail("b", 3, 0, domain.ReasonTimeout), ok("c", 3, 3)},
			domain.StatusPartial, 7,
		},
		{
			"all dispatched fail",
			[]domain.WorkerOutcome{fail("a", 2, 0, domain.ReasonConnectionFailed), fail("b", 1, 0, domain.ReasonTimeout)},
			domain.StatusFailed, 0,
		},
		{
			"errored partial count never contributes to total",
			[]domain.WorkerOutcome{ok("a", 2, 2), fail("b", 2, 1, domain.ReasonWorkerError(500))},
			domain.StatusPartial, 2,
		},
		{
			"zero-count outcomes do not affect status",
			[]domain.WorkerOutcome{ok("a", 1, 1), ok("b", 1, 1), ok("c", 0, 0)},
			domain.StatusCompleted, 2,
		},
		{
			"failure among zero-count outcomes is still total failure",
			[]domain.WorkerOutcome{fail("a", 2, 0, domain.ReasonTimeout), ok("b", 0, 0)},
			domain.StatusFailed, 0,
		},
		{
			"nothing dispatched completes trivially",
			[]domain.WorkerOutcome{ok("a", 0, 0), ok("b", 0, 0)},
			domain.StatusCompleted, 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, completed := Aggregate(tt.outcomes)
			if status != tt.wantStatus {
				t.Errorf("status = %s, want %s", status, tt.wantStatus)
			}
			if completed != tt.wantCompleted {
				t.Errorf("totalCompleted = %d, want %d", completed, tt.wantCompleted)
			}
		})
	}
}
