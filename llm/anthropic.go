package llm

import (
	"context"
	"fmt"
	"log"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/rishicds/orinai-sub000/core"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4096
)

// Anthropic is the Claude-backed Client implementation.
type Anthropic struct {
	client *anthropic.Client
	model  string
}

// AnthropicOption configures the adapter.
type AnthropicOption func(*Anthropic)

// WithModel overrides the default Claude model.
func WithModel(model string) AnthropicOption {
	return func(a *Anthropic) {
		a.model = model
	}
}

// NewAnthropic wraps an Anthropic SDK client as a Client.
func NewAnthropic(client *anthropic.Client, opts ...AnthropicOption) *Anthropic {
	a := &Anthropic{
		client: client,
		model:  defaultModel,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Complete runs one completion call. JSON format is enforced via an
// instruction suffix on the system prompt; the caller is responsible for
// parsing and validating the returned text.
func (a *Anthropic) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	system, turns := splitSystem(messages)
	if opts.ResponseFormat == FormatJSON {
		system += "\n\nRespond with a single JSON object and nothing else. No markdown fences, no commentary."
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		Messages:  turns,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		log.Printf("[LLM] %s call failed: %v", opts.Intent, err)
		return "", fmt.Errorf("%w: claude API error: %v", core.ErrBackendUnavailable, err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("%w: empty completion for intent %q", core.ErrSchemaViolation, opts.Intent)
	}
	return text, nil
}

// splitSystem separates system messages from conversational turns.
func splitSystem(messages []Message) (string, []anthropic.MessageParam) {
	var system string
	turns := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
		case RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return system, turns
}
