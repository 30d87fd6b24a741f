package completion

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

// OpenAISummarizer produces memory text with a chat completion.
type OpenAISummarizer struct {
	Client *openai.Client
	Model  string
}

// Summarize returns the trimmed completion for prompt.
func (s *OpenAISummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := s.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(s.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// AnthropicSummarizer produces memory text with the Messages API.
type AnthropicSummarizer struct {
	Client    *anthropic.Client
	Model     anthropic.Model
	MaxTokens int64
}

// Summarize returns the trimmed text blocks of the reply to prompt.
func (s *AnthropicSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	msg, err := s.Client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.Model,
		MaxTokens: maxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if v, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(v.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
