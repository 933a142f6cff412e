package services

import "github.com/mfagundes/taskfan/pkg/domain"

// Aggregate folds per-worker outcomes into the session verdict.
// totalCompleted sums completedCount over error-free outcomes only. The
// status considers dispatched outcomes only: failed when every dispatched
// outcome errored, completed when none did, partial otherwise. A session
// with no dispatched outcomes (total < 1 per worker everywhere) completed
// trivially.
func Aggregate(outcomes []domain.WorkerOutcome) (domain.SessionStatus, int) {
	totalCompleted := 0
	dispatched := 0
	errored := 0

	for _, o := range outcomes {
		if o.Error == "" {
			totalCompleted += o.CompletedCount
		}
		if o.Dispatched() {
			dispatched++
			if o.Error != "" {
				errored++
			}
		}
	}

	switch {
	case dispatched > 0 && errored == dispatched:
		return domain.StatusFailed, totalCompleted
	case errored > 0:
		return domain.StatusPartial, totalCompleted
	default:
		return domain.StatusCompleted, totalCompleted
	}
}
