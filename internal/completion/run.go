// Package completion adapts the hosted assistant service (threads, runs,
// assistants, files) and the summarization models to the small interfaces
// used by the rest of the program.
package completion

import (
	"encoding/json"
	"errors"
	"fmt"
)

// RunStatus is the lifecycle state of a remote run.
type RunStatus string

const (
	RunQueued         RunStatus = "queued"
	RunInProgress     RunStatus = "in_progress"
	RunRequiresAction RunStatus = "requires_action"
	RunCancelling     RunStatus = "cancelling"
	RunCancelled      RunStatus = "cancelled"
	RunFailed         RunStatus = "failed"
	RunCompleted      RunStatus = "completed"
	RunIncomplete     RunStatus = "incomplete"
	RunExpired        RunStatus = "expired"
)

// Terminal reports whether polling can stop.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s.Failed()
}

// Failed reports whether the run ended without a usable reply.
func (s RunStatus) Failed() bool {
	switch s {
	case RunFailed, RunCancelled, RunExpired, RunIncomplete:
		return true
	}
	return false
}

// Run is a snapshot of a remote run.
type Run struct {
	ID        string
	Status    RunStatus
	LastError string
	// ToolCalls is set when Status is RunRequiresAction.
	ToolCalls []ToolCall
}

// ToolCall is a function call the run is waiting on.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolOutput answers one ToolCall.
type ToolOutput struct {
	ToolCallID string
	Output     string
}

// ErrNoAssistant is returned when a run is requested before an assistant is
// configured.
var ErrNoAssistant = errors.New("no assistant configured")

// RunExecutionError reports a run that reached a failed terminal status.
type RunExecutionError struct {
	RunID   string
	Status  RunStatus
	Message string
}

func (e *RunExecutionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("run %s %s", e.RunID, e.Status)
	}
	return fmt.Sprintf("run %s %s: %s", e.RunID, e.Status, e.Message)
}
