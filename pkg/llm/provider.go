package llm

import (
	"context"
	"time"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// StreamResult carries the accumulated response of a streamed completion
// together with whatever stats the backend reported.
type StreamResult struct {
	Content       string
	Model         string
	EvalCount     int
	TotalDuration time.Duration
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatStream sends a chat history and delivers the response
	// incrementally. onDelta is called once per fragment, in emission order;
	// returning an error from it aborts the stream. The accumulated result is
	// returned once the backend reports completion.
	ChatStream(ctx context.Context, history []Message, onDelta func(delta string) error, options ...Option) (*StreamResult, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
