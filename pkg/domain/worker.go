package domain

import "time"

// WorkerSource records how a worker entered the registry.
type WorkerSource string

const (
	SourceEnv      WorkerSource = "env"
	SourceRegister WorkerSource = "register"
)

// WorkerRecord is one registered executor. Label is the identity key:
// registering an existing label overwrites its URL.
type WorkerRecord struct {
	Label        string       `json:"label"`
	URL          string       `json:"url"`
	Source       WorkerSource `json:"source"`
	RegisteredAt time.Time    `json:"registeredAt"`
	LastSeenAt   time.Time    `json:"lastSeenAt"`
}

// WorkerAssignment is the slice of one session's total given to one worker.
// Worker carries the full record for dispatch; only label and count go on the wire.
type WorkerAssignment struct {
	Worker        WorkerRecord `json:"-"`
	Label         string       `json:"label"`
	AssignedCount int          `json:"assignedCount"`
}

// WorkerOutcome is the resolved result of one assignment. CompletedCount is
// meaningful only when Error is empty, except when a failing worker explicitly
// reported a partial count.
type WorkerOutcome struct {
	Label          string `json:"label"`
	AssignedCount  int    `json:"assignedCount"`
	CompletedCount int    `json:"completedCount"`
	ElapsedMillis  int64  `json:"elapsedMillis"`
	Error          string `json:"error,omitempty"`
}

// Dispatched reports whether this outcome corresponds to a real network call.
// Zero-count assignments are synthesized locally and never dispatched.
func (o WorkerOutcome) Dispatched() bool {
	return o.AssignedCount > 0
}
