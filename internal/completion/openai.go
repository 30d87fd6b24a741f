package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/petasbytes/rpg-agent/conversation"
)

// OpenAI talks to the hosted assistant service. It satisfies thread.Remote
// and runner.Remote.
type OpenAI struct {
	client        *openai.Client
	assistantID   string
	vectorStoreID string
}

// NewOpenAI wraps client. Runs need an assistant, set by CreateAssistant or
// UseAssistant.
func NewOpenAI(client *openai.Client) *OpenAI {
	return &OpenAI{client: client}
}

// AssistantID returns the assistant used for runs.
func (o *OpenAI) AssistantID() string { return o.assistantID }

// UseAssistant points runs at an existing assistant.
func (o *OpenAI) UseAssistant(id string) { o.assistantID = id }

// CreateSession creates an empty thread and returns its ID.
func (o *OpenAI) CreateSession(ctx context.Context) (string, error) {
	th, err := o.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return "", err
	}
	return th.ID, nil
}

// DeleteSession deletes a thread.
func (o *OpenAI) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := o.client.Beta.Threads.Delete(ctx, sessionID)
	return err
}

// AppendMessage adds one message to a thread.
func (o *OpenAI) AppendMessage(ctx context.Context, sessionID string, msg conversation.Message) error {
	var role openai.BetaThreadMessageNewParamsRole
	switch msg.Role {
	case conversation.RoleUser:
		role = openai.BetaThreadMessageNewParamsRoleUser
	case conversation.RoleAssistant:
		role = openai.BetaThreadMessageNewParamsRoleAssistant
	default:
		return fmt.Errorf("unsupported role %q", msg.Role)
	}
	_, err := o.client.Beta.Threads.Messages.New(ctx, sessionID, openai.BetaThreadMessageNewParams{
		Role:    role,
		Content: openai.BetaThreadMessageNewParamsContentUnion{OfString: openai.String(msg.Content)},
	})
	return err
}

// CreateRun starts a run of the configured assistant on a thread.
func (o *OpenAI) CreateRun(ctx context.Context, sessionID string) (Run, error) {
	if o.assistantID == "" {
		return Run{}, ErrNoAssistant
	}
	r, err := o.client.Beta.Threads.Runs.New(ctx, sessionID, openai.BetaThreadRunNewParams{
		AssistantID: o.assistantID,
	})
	if err != nil {
		return Run{}, err
	}
	return toRun(r), nil
}

// GetRun fetches the current state of a run.
func (o *OpenAI) GetRun(ctx context.Context, sessionID, runID string) (Run, error) {
	r, err := o.client.Beta.Threads.Runs.Get(ctx, sessionID, runID)
	if err != nil {
		return Run{}, err
	}
	return toRun(r), nil
}

// SubmitToolOutputs answers the tool calls of a run in requires_action.
func (o *OpenAI) SubmitToolOutputs(ctx context.Context, sessionID, runID string, outputs []ToolOutput) (Run, error) {
	params := openai.BetaThreadRunSubmitToolOutputsParams{
		ToolOutputs: make([]openai.BetaThreadRunSubmitToolOutputsParamsToolOutput, 0, len(outputs)),
	}
	for _, out := range outputs {
		params.ToolOutputs = append(params.ToolOutputs, openai.BetaThreadRunSubmitToolOutputsParamsToolOutput{
			ToolCallID: openai.String(out.ToolCallID),
			Output:     openai.String(out.Output),
		})
	}
	r, err := o.client.Beta.Threads.Runs.SubmitToolOutputs(ctx, sessionID, runID, params)
	if err != nil {
		return Run{}, err
	}
	return toRun(r), nil
}

// ListMessages returns up to limit thread messages, newest first. Only text
// content is kept.
func (o *OpenAI) ListMessages(ctx context.Context, sessionID string, limit int) ([]conversation.Message, error) {
	page, err := o.client.Beta.Threads.Messages.List(ctx, sessionID, openai.BetaThreadMessageListParams{
		Order: openai.BetaThreadMessageListParamsOrderDesc,
		Limit: openai.Int(int64(limit)),
	})
	if err != nil {
		return nil, err
	}
	out := make([]conversation.Message, 0, len(page.Data))
	for _, m := range page.Data {
		var parts []string
		for _, c := range m.Content {
			if c.Type == "text" {
				parts = append(parts, c.Text.Value)
			}
		}
		out = append(out, conversation.Message{
			Role:    conversation.Role(m.Role),
			Content: strings.Join(parts, "\n"),
		})
	}
	return out, nil
}

func toRun(r *openai.Run) Run {
	run := Run{
		ID:        r.ID,
		Status:    RunStatus(r.Status),
		LastError: r.LastError.Message,
	}
	for _, tc := range r.RequiredAction.SubmitToolOutputs.ToolCalls {
		run.ToolCalls = append(run.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	return run
}
