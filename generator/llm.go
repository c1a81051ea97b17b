package generator

import (
	"context"
	"time"
)

// LLMClient abstracts a chat-completion backend so it can be swapped or mocked.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings is the base configuration handed to concrete clients.
type LLMSettings struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// ProviderError marks a failure reported by the model provider (an API
// status error or a transport failure reaching it). The default retry
// classifier retries these and nothing else.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }
