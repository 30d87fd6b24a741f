// Package provider constructs API clients for the hosted assistant and the
// memory summarizers.
package provider

import (
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// NewOpenAIClient returns a client for the hosted assistant service.
func NewOpenAIClient(apiKey string, opts ...option.RequestOption) *openai.Client {
	if apiKey != "" {
		opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	}
	c := openai.NewClient(opts...)
	return &c
}

const (
	DefaultModel        = "gpt-4o"
	DefaultSummaryModel = "gpt-4o-mini"
)
