// Package llm abstracts the chat-completion collaborator used by the
// classification and synthesis stages. The pipeline only depends on the
// Client interface; the Anthropic adapter is the SDK-provided backend.
package llm

import "context"

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a completion conversation.
type Message struct {
	Role    Role
	Content string
}

// ResponseFormat constrains the shape of the completion text.
type ResponseFormat string

const (
	// FormatText is free prose.
	FormatText ResponseFormat = "text"
	// FormatJSON means the returned text must be parseable JSON.
	FormatJSON ResponseFormat = "json"
)

// Options tune a single completion call.
type Options struct {
	// Intent labels the call for logging (e.g. "classify", "synthesize").
	Intent string

	// ResponseFormat defaults to FormatText.
	ResponseFormat ResponseFormat

	// Temperature of zero keeps the backend's default.
	Temperature float64

	// MaxTokens caps the response size. Zero means backend default.
	MaxTokens int64
}

// Client is the chat-completion backend. Implementations may fail on
// transport or auth errors; callers must treat every error as transient
// and fall back.
type Client interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}
