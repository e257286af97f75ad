package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kayz/scout/internal/config"
	"github.com/kayz/scout/internal/history"
	"github.com/kayz/scout/internal/logger"
	"github.com/kayz/scout/internal/search"
	"github.com/kayz/scout/internal/telemetry"
)

const maxToolRounds = 5

const researchSystemPrompt = `You are a research assistant. Use the provided tools to search the web ` +
	`and fetch page content, then synthesize what you learned.`

// Retriever is the search and fetch surface the agent exposes to the
// model as tools. *search.Orchestrator implements it.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) []search.SearchResult
	Fetch(ctx context.Context, url string) string
}

// Agent runs multi-step research conversations against an AI backend,
// giving the model web search and page fetch tools.
type Agent struct {
	provider   Provider
	retriever  Retriever
	history    *history.Store
	events     *telemetry.Sink
	maxResults int
}

func New(cfg *config.Config) (*Agent, error) {
	provider, err := newProvider(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("create AI provider: %w", err)
	}

	events := telemetry.Init(cfg.Telemetry)

	retriever, err := search.NewOrchestrator(cfg.Search, cfg.Research.Timeout(), search.NewRegistry(), events)
	if err != nil {
		events.Close()
		return nil, fmt.Errorf("create search orchestrator: %w", err)
	}

	store, err := history.Open(cfg.DatabasePath())
	if err != nil {
		logger.Warn("research history disabled: %v", err)
		store = nil
	}

	return &Agent{
		provider:   provider,
		retriever:  retriever,
		history:    store,
		events:     events,
		maxResults: cfg.Research.MaxResults,
	}, nil
}

func (a *Agent) Close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			logger.Warn("close history store: %v", err)
		}
	}
	a.events.Close()
}

// Research runs the full tool-assisted research flow for query. Only
// backend failures surface as errors; search, history and telemetry
// problems degrade silently.
func (a *Agent) Research(ctx context.Context, query string, maxResults int) (ResearchFindings, error) {
	if maxResults <= 0 {
		maxResults = a.maxResults
	}

	start := time.Now()
	a.events.Emit("research.start", "query", query, "provider", a.provider.Name(), "max_results", maxResults)

	prompt := fmt.Sprintf(`Research the following topic: %s

Search the web for relevant information and fetch promising pages. When you are done, respond with a JSON object containing exactly these fields:
- "query": the research query
- "summary": a concise summary of what you found
- "key_findings": a list of the most important findings
- "sources": a list of the sources you used`, query)

	messages := []Message{{Role: "user", Content: prompt}}
	req := ChatRequest{
		SystemPrompt: researchSystemPrompt,
		Tools:        a.toolDefinitions(),
	}

	var content string
	for round := 0; round < maxToolRounds; round++ {
		req.Messages = messages
		resp, err := a.provider.Chat(ctx, req)
		if err != nil {
			a.events.Emit("research.error", "query", query, "error", err.Error())
			return ResearchFindings{}, err
		}

		content = resp.Content
		if resp.FinishReason != "tool_use" || len(resp.ToolCalls) == 0 {
			break
		}

		messages = append(messages, Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		messages = append(messages, a.processToolCalls(ctx, resp.ToolCalls, maxResults)...)
	}

	findings := parseFindings(content, query)

	if a.history != nil {
		if err := a.history.Save(ctx, history.Record{
			Query:       findings.Query,
			Summary:     findings.Summary,
			KeyFindings: findings.KeyFindings,
			Sources:     findings.Sources,
			Provider:    a.provider.Name(),
		}); err != nil {
			logger.Warn("save research history: %v", err)
		}
	}

	a.events.Emit("research.complete", "query", query,
		"findings", len(findings.KeyFindings),
		"sources", len(findings.Sources),
		"duration_ms", time.Since(start).Milliseconds())
	return findings, nil
}

// QuickSearch runs a lightweight research pass and renders the result
// as a plain text report.
func (a *Agent) QuickSearch(ctx context.Context, query string) (string, error) {
	findings, err := a.Research(ctx, query, 3)
	if err != nil {
		return "", err
	}
	return findings.Render(), nil
}

func (a *Agent) toolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "search_web",
			Description: "Search the web for information on a topic. Returns a list of results with titles, URLs and snippets.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {"type": "string", "description": "The search query"},
					"max_results": {"type": "integer", "description": "Maximum number of results to return"}
				},
				"required": ["query"]
			}`),
		},
		{
			Name:        "fetch_webpage_content",
			Description: "Fetch the readable text content of a web page by URL.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"url": {"type": "string", "description": "The URL of the page to fetch"}
				},
				"required": ["url"]
			}`),
		},
	}
}

func (a *Agent) processToolCalls(ctx context.Context, calls []ToolCall, maxResults int) []Message {
	out := make([]Message, 0, len(calls))
	for _, call := range calls {
		a.events.Emit("research.tool_call", "tool", call.Name)
		result := ToolResult{ToolCallID: call.ID}

		switch call.Name {
		case "search_web":
			var args struct {
				Query      string `json:"query"`
				MaxResults int    `json:"max_results"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				result.Content = fmt.Sprintf("invalid search_web arguments: %v", err)
				result.IsError = true
				break
			}
			limit := args.MaxResults
			if limit <= 0 {
				limit = maxResults
			}
			results := a.retriever.Search(ctx, args.Query, limit)
			result.Content = search.FormatResults(args.Query, results)

		case "fetch_webpage_content":
			var args struct {
				URL string `json:"url"`
			}
			if err := json.Unmarshal(call.Input, &args); err != nil {
				result.Content = fmt.Sprintf("invalid fetch_webpage_content arguments: %v", err)
				result.IsError = true
				break
			}
			result.Content = a.retriever.Fetch(ctx, args.URL)

		default:
			result.Content = fmt.Sprintf("unknown tool: %s", call.Name)
			result.IsError = true
		}

		out = append(out, Message{Role: "user", ToolResult: &result})
	}
	return out
}
