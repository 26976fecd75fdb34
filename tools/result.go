package tools

// Status is the lifecycle state reported for a tool execution.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusErrored   Status = "errored"
	StatusCached    Status = "cached"
)

// ExecutionResult is the outcome of running one tool.
type ExecutionResult struct {
	ToolID    string         `json:"toolId"`
	Status    Status         `json:"status"`
	Output    map[string]any `json:"output"`
	Cached    bool           `json:"cached"`
	Telemetry map[string]any `json:"telemetry"`
}

// Succeeded reports whether the result counts as a success for auditing.
func (r ExecutionResult) Succeeded() bool {
	return r.Status == StatusCompleted || r.Status == StatusCached
}
