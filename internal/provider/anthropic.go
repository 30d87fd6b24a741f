package provider

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// NewAnthropicClient returns a client for the summarizer. An empty apiKey
// falls back to ANTHROPIC_API_KEY from the env.
func NewAnthropicClient(apiKey string, opts ...option.RequestOption) *anthropic.Client {
	if apiKey != "" {
		opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	}
	c := anthropic.NewClient(opts...)
	return &c
}

const DefaultAnthropicModel = anthropic.ModelClaude3_7SonnetLatest
