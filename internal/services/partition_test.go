package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mfagundes/taskfan/pkg/domain"
)

func makeWorkers(n int) []domain.WorkerRecord {
	out := make([]domain.WorkerRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.WorkerRecord{
			Label: fmt.Sprintf("w-%d", i+1),
			URL:   fmt.Sprintf("http://w-%d:28080", i+1),
		})
	}
	return out
}

func TestPartitionSumAndBalance(t *testing.T) {
	for total := 0; total <= 25; total++ {
		for k := 1; k <= 5; k++ {
			assignments, err := Partition(total, makeWorkers(k))
			if err != nil {
				t.Fatalf("total=%d k=%d: %v", total, k, err)
			}
			if len(assignments) != k {
				t.Fatalf("total=%d k=%d: got %d assignments", total, k, len(assignments))
			}

			sum, min, max := 0, assignments[0].AssignedCount, assignments[0].AssignedCount
			for _, a := range assignments {
				sum += a.AssignedCount
				if a.AssignedCount < min {
					min = a.AssignedCount
				}
				if a.AssignedCount > max {
					max = a.AssignedCount
				}
			}
			if sum != total {
				t.Errorf("total=%d k=%d: assignments sum to %d", total, k, sum)
			}
			if max-min > 1 {
				t.Errorf("total=%d k=%d: unbalanced (min=%d max=%d)", total, k, min, max)
			}
		}
	}
}

func TestPartitionRemainderGoesToFirstWorkers(t *testing.T) {
	assignments, err := Partition(10, makeWorkers(3))
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []int{4, 3, 3} {
		if assignments[i].AssignedCount != want {
			t.Errorf("assignment[%d] = %d, want %d", i, assignments[i].AssignedCount, want)
		}
	}
}

func TestPartitionTotalSmallerThanWorkers(t *testing.T) {
	assignments, err := Partition(2, makeWorkers(3))
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []int{1, 1, 0} {
		if assignments[i].AssignedCount != want {
			t.Errorf("assignment[%d] = %d, want %d", i, assignments[i].AssignedCount, want)
		}
	}
}

func TestPartitionNoWorkers(t *testing.T) {
	if _, err := Partition(5, nil); !errors.Is(err, domain.ErrNoWorkers) {
		t.Errorf("expected ErrNoWorkers, got %v", err)
	}
}

func TestPartitionNegativeTotal(t *testing.T) {
	if _, err := Partition(-1, makeWorkers(2)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPartitionDeterministic(t *testing.T) {
	workers := makeWorkers(4)
	a, err := Partition(13, workers)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Partition(13, workers)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i].Label != b[i].Label || a[i].AssignedCount != b[i].AssignedCount {
			t.Errorf("partition not deterministic at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}
