package service

import (
	"context"
	"errors"
	"log"
)

// Errors returned by the AI delegate path. The resolver treats both as "AI path failed".
var (
	ErrAIUnavailable = errors.New("ai delegate is not configured")
	ErrAIParse       = errors.New("ai delegate response could not be parsed")
)

// AIClient is the interface for text-generation providers
type AIClient interface {
	// Complete sends a single prompt and returns the raw text response
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteStream sends a prompt and calls onToken for every content chunk.
	// It returns the accumulated text.
	CompleteStream(ctx context.Context, prompt string, onToken func(content string) error) (string, error)

	// IsEnabled returns whether the AI client is configured and ready
	IsEnabled() bool
}

// StreamChunk represents a generic streaming response chunk
type StreamChunk struct {
	// Regular content (always present in streaming)
	Content string

	// Thinking/reasoning content (provider-specific, e.g., DeepSeek)
	ThinkingContent string

	// Role (assistant, user, system)
	Role string

	// Whether this is the final chunk
	Done bool
}

var debugLogging bool

// SetDebug toggles [DEBUG] log lines for the service package
func SetDebug(enabled bool) {
	debugLogging = enabled
}

func debugf(format string, args ...interface{}) {
	if debugLogging {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// Ensure OpenAIClient implements AIClient
var _ AIClient = (*OpenAIClient)(nil)
