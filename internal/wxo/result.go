package wxo

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Run outcome tags carried in Result.Status.
const (
	StatusCompleted = "completed"
	StatusStarted   = "started"
	StatusFailed    = "failed"
	StatusTimeout   = "timeout"
)

// AgentSummary is one entry of a `list` result. The HTTP path fills Name, ID
// and Description; the CLI table fallback fills Name, DisplayName,
// Description and LLM.
type AgentSummary struct {
	Name        string `json:"name"`
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description"`
	LLM         string `json:"llm,omitempty"`
}

// RunHandle holds the identifiers the platform returns for an async
// submission. Any of them may be absent.
type RunHandle struct {
	RunID     string `json:"run_id,omitempty"`
	ThreadID  string `json:"thread_id,omitempty"`
	TaskID    string `json:"task_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
}

// Result is the uniform envelope every public operation returns. Operations
// never surface a Go error for operation-level failures; everything is folded
// into this structure. Success is true exactly when Status is "completed" or
// "started".
type Result struct {
	Success    bool            `json:"success"`
	AgentName  string          `json:"agent_name,omitempty"`
	Status     string          `json:"status,omitempty"`
	Response   string          `json:"response,omitempty"`
	FullOutput json.RawMessage `json:"full_output,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`

	RunID     string `json:"run_id,omitempty"`
	ThreadID  string `json:"thread_id,omitempty"`
	TaskID    string `json:"task_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`

	AgentCount int            `json:"agent_count,omitempty"`
	Agents     []AgentSummary `json:"agents,omitempty"`

	OutputPath string `json:"output_path,omitempty"`
	Message    string `json:"message,omitempty"`

	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Body       string `json:"body,omitempty"`
}

// Completed builds a successful synchronous result.
func Completed(agent, response string, raw json.RawMessage) Result {
	return Result{
		Success:    true,
		AgentName:  agent,
		Status:     StatusCompleted,
		Response:   response,
		FullOutput: raw,
	}
}

// Started builds a successful asynchronous submission result.
func Started(agent string, h RunHandle) Result {
	return Result{
		Success:   true,
		AgentName: agent,
		Status:    StatusStarted,
		RunID:     h.RunID,
		ThreadID:  h.ThreadID,
		TaskID:    h.TaskID,
		MessageID: h.MessageID,
	}
}

// Failed folds an error into the envelope. Transport errors contribute their
// HTTP status code and raw body.
func Failed(agent string, err error) Result {
	r := Result{
		Success:   false,
		AgentName: agent,
		Status:    StatusFailed,
		Error:     err.Error(),
	}
	var te *TransportError
	if errors.As(err, &te) {
		r.StatusCode = te.StatusCode
		r.Body = te.Body
	}
	return r
}

// TimedOut builds the polling-deadline result for a run.
func TimedOut(runID string, timeout time.Duration) Result {
	return Result{
		Success: false,
		Status:  StatusTimeout,
		RunID:   runID,
		Error:   fmt.Sprintf("agent did not complete within %d seconds", int(timeout.Seconds())),
	}
}
