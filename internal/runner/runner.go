package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/petasbytes/rpg-agent/conversation"
	"github.com/petasbytes/rpg-agent/internal/completion"
	"github.com/petasbytes/rpg-agent/internal/telemetry"
	"github.com/petasbytes/rpg-agent/tools"
)

const (
	// DefaultInterval is the pause between run status polls.
	DefaultInterval = 500 * time.Millisecond
	// DefaultMaxPolls bounds status polls plus tool rounds per run.
	DefaultMaxPolls = 600

	// replyScan is how many of the newest thread messages are searched for
	// the assistant reply.
	replyScan = 20
)

var (
	// ErrPollLimit is returned when a run is still pending after MaxPolls polls
	// and tool rounds.
	ErrPollLimit = errors.New("run did not finish within the poll limit")
	// ErrNoReply is returned when a completed run left no assistant message.
	ErrNoReply = errors.New("run completed without an assistant reply")
)

// Remote is the run-related subset of the hosted assistant service.
type Remote interface {
	CreateRun(ctx context.Context, sessionID string) (completion.Run, error)
	GetRun(ctx context.Context, sessionID, runID string) (completion.Run, error)
	SubmitToolOutputs(ctx context.Context, sessionID, runID string, outputs []completion.ToolOutput) (completion.Run, error)
	ListMessages(ctx context.Context, sessionID string, limit int) ([]conversation.Message, error)
}

// Runner drives hosted runs to a terminal state, answering tool calls with
// Tools along the way. Interval and MaxPolls fall back to the package
// defaults when not positive.
type Runner struct {
	Remote   Remote
	Tools    []tools.ToolDefinition
	Interval time.Duration
	MaxPolls int
}

// New returns a Runner with the default poll interval and limit.
func New(remote Remote, toolDefs []tools.ToolDefinition) *Runner {
	return &Runner{Remote: remote, Tools: toolDefs, Interval: DefaultInterval, MaxPolls: DefaultMaxPolls}
}

// Execute starts a run on sessionID, waits for it to finish and returns the
// newest assistant message, trimmed.
func (r *Runner) Execute(ctx context.Context, sessionID string) (string, error) {
	ctx, turnID := telemetry.EnsureTurnID(ctx)
	start := time.Now()

	run, err := r.Remote.CreateRun(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	telemetry.Emit("run_created", map[string]any{
		"turn_id":    turnID,
		"session_id": sessionID,
		"run_id":     run.ID,
	})

	polls := 0
	finish := func(status completion.RunStatus, errStr string) {
		fields := map[string]any{
			"turn_id":     turnID,
			"run_id":      run.ID,
			"status":      string(status),
			"polls":       polls,
			"duration_ms": time.Since(start).Milliseconds(),
			"error":       nil,
		}
		if errStr != "" {
			fields["error"] = errStr
		}
		telemetry.Emit("run_finished", fields)
	}

	for {
		switch {
		case run.Status == completion.RunCompleted:
			finish(run.Status, "")
			return r.latestReply(ctx, sessionID)

		case run.Status.Failed():
			finish(run.Status, run.LastError)
			return "", &completion.RunExecutionError{RunID: run.ID, Status: run.Status, Message: run.LastError}

		case run.Status == completion.RunRequiresAction:
			// Tool rounds count toward MaxPolls like status polls do.
			if polls >= r.maxPolls() {
				finish(run.Status, ErrPollLimit.Error())
				return "", fmt.Errorf("%w (run %s, status %s)", ErrPollLimit, run.ID, run.Status)
			}
			outputs := make([]completion.ToolOutput, 0, len(run.ToolCalls))
			for _, call := range run.ToolCalls {
				outputs = append(outputs, r.execTool(ctx, call))
			}
			next, err := r.Remote.SubmitToolOutputs(ctx, sessionID, run.ID, outputs)
			if err != nil {
				finish(run.Status, "submit tool outputs")
				return "", fmt.Errorf("submit tool outputs: %w", err)
			}
			polls++
			run = next
			continue
		}

		if polls >= r.maxPolls() {
			finish(run.Status, ErrPollLimit.Error())
			return "", fmt.Errorf("%w (run %s, status %s)", ErrPollLimit, run.ID, run.Status)
		}
		if err := sleep(ctx, r.interval()); err != nil {
			finish(run.Status, "cancelled by caller")
			return "", err
		}

		next, err := r.Remote.GetRun(ctx, sessionID, run.ID)
		if err != nil {
			finish(run.Status, "poll failed")
			return "", fmt.Errorf("poll run: %w", err)
		}
		polls++
		if next.Status != run.Status {
			slog.DebugContext(ctx, "run status", "run_id", run.ID, "from", run.Status, "to", next.Status, "polls", polls)
			telemetry.Emit("run_polled", map[string]any{
				"turn_id": turnID,
				"run_id":  run.ID,
				"status":  string(next.Status),
				"polls":   polls,
			})
		}
		run = next
	}
}

func (r *Runner) latestReply(ctx context.Context, sessionID string) (string, error) {
	msgs, err := r.Remote.ListMessages(ctx, sessionID, replyScan)
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}
	for _, m := range msgs {
		if m.Role == conversation.RoleAssistant {
			return strings.TrimSpace(m.Content), nil
		}
	}
	return "", ErrNoReply
}

func (r *Runner) interval() time.Duration {
	if r.Interval <= 0 {
		return DefaultInterval
	}
	return r.Interval
}

func (r *Runner) maxPolls() int {
	if r.MaxPolls <= 0 {
		return DefaultMaxPolls
	}
	return r.MaxPolls
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *Runner) execTool(ctx context.Context, call completion.ToolCall) completion.ToolOutput {
	var def *tools.ToolDefinition
	for i := range r.Tools {
		if r.Tools[i].Name == call.Name {
			def = &r.Tools[i]
			break
		}
	}

	turnID, _ := telemetry.TurnIDFromContext(ctx)

	// Helper to emit a tool_exec event
	emit := func(durationMs int64, inputSize int, outputSize int, errStr string) {
		fields := map[string]any{
			"tool_name":   call.Name,
			"duration_ms": durationMs,
			"input_size":  inputSize,
			"output_size": outputSize,
			"turn_id":     turnID,
		}
		if errStr != "" {
			fields["error"] = errStr
		} else {
			fields["error"] = nil
		}
		telemetry.Emit("tool_exec", fields)
	}

	start := time.Now()
	input := call.Arguments
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}
	inSize := len(input)

	if def == nil {
		emit(time.Since(start).Milliseconds(), inSize, 0, "tool not found")
		return completion.ToolOutput{ToolCallID: call.ID, Output: "tool not found"}
	}

	resp, err := def.Function(input)
	if err != nil {
		// Generic error string in telemetry; the detailed message goes back to the model.
		emit(time.Since(start).Milliseconds(), inSize, 0, "tool error")
		return completion.ToolOutput{ToolCallID: call.ID, Output: "error: " + err.Error()}
	}
	emit(time.Since(start).Milliseconds(), inSize, len(resp), "")
	return completion.ToolOutput{ToolCallID: call.ID, Output: resp}
}
