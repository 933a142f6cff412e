package domain

// SessionStatus is the aggregated verdict of one fan-out session.
type SessionStatus string

const (
	StatusCompleted SessionStatus = "completed"
	StatusPartial   SessionStatus = "partial"
	StatusFailed    SessionStatus = "failed"
)

// TaskSession is the full result of one task request. It lives only for the
// duration of the request; nothing is persisted.
type TaskSession struct {
	ID                 string             `json:"taskId"`
	Name               string             `json:"name"`
	RequestedTotal     int                `json:"requestedTotal"`
	AvailableWorkers   int                `json:"availableWorkers"`
	Assignments        []WorkerAssignment `json:"assignments"`
	Results            []WorkerOutcome    `json:"results"`
	TotalCompleted     int                `json:"totalCompleted"`
	TotalElapsedMillis int64              `json:"totalElapsedMillis"`
	OverallStatus      SessionStatus      `json:"overallStatus"`
}
