package domain

import (
	"errors"
	"fmt"
)

// Session-level errors. These abort the whole request before any dispatch.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNoWorkers    = errors.New("no workers available")
)

// Per-worker failure reasons. These never abort a session; they are recorded
// inside the owning WorkerOutcome.
const (
	ReasonTimeout          = "Timeout"
	ReasonConnectionFailed = "ConnectionFailed"
)

// ReasonWorkerError formats the failure reason for a worker that answered
// with a non-success HTTP status.
func ReasonWorkerError(status int) string {
	return fmt.Sprintf("WorkerError:%d", status)
}
