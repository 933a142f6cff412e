package domain

// ExecuteRequest is the payload sent to a worker's POST /execute.
type ExecuteRequest struct {
	TaskID string `json:"taskId"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// ExecuteDetails carries optional worker-side execution detail.
type ExecuteDetails struct {
	Folder        string   `json:"folder,omitempty"`
	SampleFiles   []string `json:"sampleFiles,omitempty"`
	ElapsedMillis int64    `json:"elapsedMillis,omitempty"`
}

// ExecuteResponse is what a worker answers. On a non-2xx status a worker may
// still report a partial CompletedCount alongside Error.
type ExecuteResponse struct {
	CompletedCount int             `json:"completedCount"`
	Details        *ExecuteDetails `json:"details,omitempty"`
	Error          string          `json:"error,omitempty"`
}
