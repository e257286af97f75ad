package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kayz/scout/internal/config"
)

// Provider is the generation backend: an opaque model call that may answer
// directly or request tool invocations. Everything past this interface is
// treated as untrusted text.
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// Message is a provider-independent conversation entry.
type Message struct {
	Role             string // "user" or "assistant"
	Content          string
	ReasoningContent string
	ToolCalls        []ToolCall
	ToolResult       *ToolResult
}

// Tool declares a callable tool with a JSON schema for its input.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolResult carries a tool's output back to the model.
type ToolResult struct {
	ToolCallID string
	Content    string
	IsError    bool
}

type ChatRequest struct {
	Messages     []Message
	SystemPrompt string
	Tools        []Tool
	MaxTokens    int
}

// ChatResponse normalizes provider output. FinishReason is "tool_use" when
// the model wants tools run, "stop" otherwise.
type ChatResponse struct {
	Content          string
	ToolCalls        []ToolCall
	ReasoningContent string
	FinishReason     string
}

// newProvider builds the configured generation backend.
func newProvider(cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "claude", "anthropic":
		return NewClaudeProvider(ClaudeConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case "gemini", "google", "":
		return NewOpenAICompatProvider(OpenAICompatConfig{
			ProviderName: "gemini",
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
			DefaultURL:   "https://generativelanguage.googleapis.com/v1beta/openai",
			DefaultModel: "gemini-2.0-flash",
		})
	case "openai", "gpt":
		return NewOpenAICompatProvider(OpenAICompatConfig{
			ProviderName: "openai",
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
			DefaultURL:   "https://api.openai.com/v1",
			DefaultModel: "gpt-4o",
		})
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
