package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
)

const claudeDefaultModel = "claude-3-5-sonnet-20241022"

// ClaudeProvider implements Provider with Anthropic's native tool use.
type ClaudeProvider struct {
	client *anthropic.Client
	model  string
}

type ClaudeConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func NewClaudeProvider(cfg ClaudeConfig) (*ClaudeProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	if cfg.Model == "" {
		cfg.Model = claudeDefaultModel
	}

	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	return &ClaudeProvider{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		model:  cfg.Model,
	}, nil
}

func (p *ClaudeProvider) Name() string {
	return "claude"
}

func (p *ClaudeProvider) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	messages := make([]anthropic.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, anthropicMessageFromGeneric(msg))
	}

	tools := make([]anthropic.ToolDefinition, 0, len(req.Tools))
	for _, tool := range req.Tools {
		tools = append(tools, anthropic.ToolDefinition{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
		})
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	resp, err := p.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(p.model),
		System:    req.SystemPrompt,
		Messages:  messages,
		MaxTokens: maxTokens,
		Tools:     tools,
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("claude API error: %w", err)
	}

	return genericResponseFromAnthropic(resp), nil
}

func anthropicMessageFromGeneric(msg Message) anthropic.Message {
	if msg.Role == "user" {
		if msg.ToolResult != nil {
			content := msg.ToolResult.Content
			if content == "" {
				content = "(empty)"
			}
			return anthropic.NewToolResultsMessage(msg.ToolResult.ToolCallID, content, msg.ToolResult.IsError)
		}
		return anthropic.NewUserTextMessage(msg.Content)
	}

	if len(msg.ToolCalls) == 0 {
		return anthropic.NewAssistantTextMessage(msg.Content)
	}

	var content []anthropic.MessageContent
	if msg.Content != "" {
		content = append(content, anthropic.NewTextMessageContent(msg.Content))
	}
	for _, tc := range msg.ToolCalls {
		content = append(content, anthropic.NewToolUseMessageContent(tc.ID, tc.Name, tc.Input))
	}
	return anthropic.Message{
		Role:    anthropic.RoleAssistant,
		Content: content,
	}
}

func genericResponseFromAnthropic(resp anthropic.MessagesResponse) ChatResponse {
	out := ChatResponse{FinishReason: "stop"}
	if resp.StopReason == anthropic.MessagesStopReasonToolUse {
		out.FinishReason = "tool_use"
	}

	for _, c := range resp.Content {
		switch c.Type {
		case anthropic.MessagesContentTypeText:
			out.Content += c.GetText()
		case anthropic.MessagesContentTypeToolUse:
			if c.MessageContentToolUse == nil {
				continue
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:    c.MessageContentToolUse.ID,
				Name:  c.MessageContentToolUse.Name,
				Input: json.RawMessage(c.MessageContentToolUse.Input),
			})
		}
	}
	return out
}
