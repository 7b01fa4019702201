package llm

import (
	"context"
	"fmt"
)

// Logical message roles used throughout the pipeline. Providers translate
// these into their own vocabulary before a request goes on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Prompt is the role-tagged message list sent to a provider. Treated as
// immutable once built.
type Prompt struct {
	Messages []Message
}

// StreamProvider defines the interface for streaming LLM providers. One
// implementation exists per provider family; adding a provider means adding
// an implementation, not editing callers.
type StreamProvider interface {
	// Stream opens a streaming request and invokes onFragment for every
	// decoded text delta, in wire order. A non-nil error from onFragment
	// aborts the stream.
	Stream(ctx context.Context, prompt Prompt, model string, onFragment func(text string) error) error

	// DefaultModel returns the default model for this provider.
	DefaultModel() string
}

// TransportError is a fatal provider failure: non-2xx status, connection or
// read timeout, or an unrecoverable decode failure. Body carries whatever
// diagnostic detail the provider returned.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("provider transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
