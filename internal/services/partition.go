package services

import (
	"fmt"

	"github.com/mfagundes/taskfan/pkg/domain"
)

// Partition splits total across the ordered worker snapshot: the first
// total mod K workers receive one extra unit over the base share. The result
// always sums to total, no two counts differ by more than one, and it is fully
// determined by the inputs. Zero-count assignments are kept in the list but
// are never dispatched.
func Partition(total int, workers []domain.WorkerRecord) ([]domain.WorkerAssignment, error) {
	if total < 0 {
		return nil, fmt.Errorf("%w: count must be >= 0", domain.ErrInvalidInput)
	}
	k := len(workers)
	if k == 0 {
		return nil, domain.ErrNoWorkers
	}

	base := total / k
	remainder := total % k

	out := make([]domain.WorkerAssignment, 0, k)
	for i, w := range workers {
		count := base
		if i < remainder {
			count++
		}
		out = append(out, domain.WorkerAssignment{
			Worker:        w,
			Label:         w.Label,
			AssignedCount: count,
		})
	}
	return out, nil
}
