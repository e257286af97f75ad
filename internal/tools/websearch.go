package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kayz/scout/internal/config"
	"github.com/kayz/scout/internal/search"
	"github.com/kayz/scout/internal/security"
	"github.com/mark3labs/mcp-go/mcp"
)

// Retriever is the search surface the MCP handlers delegate to.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) []search.SearchResult
	Fetch(ctx context.Context, url string) string
}

var (
	retrieverMu sync.Mutex
	retriever   Retriever
)

// SetRetriever overrides the retriever used by the tool handlers.
func SetRetriever(r Retriever) {
	retrieverMu.Lock()
	defer retrieverMu.Unlock()
	retriever = r
}

func getRetriever() (Retriever, error) {
	retrieverMu.Lock()
	defer retrieverMu.Unlock()

	if retriever != nil {
		return retriever, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	orch, err := search.NewOrchestrator(cfg.Search, cfg.Research.Timeout(), search.NewRegistry(), nil)
	if err != nil {
		return nil, err
	}

	retriever = orch
	return retriever, nil
}

// WebSearch handles the web_search MCP tool.
func WebSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, ok := req.Params.Arguments["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	limit := 5
	if l, ok := req.Params.Arguments["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	r, err := getRetriever()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search engines not configured: %v", err)), nil
	}

	results := r.Search(ctx, query, limit)
	return mcp.NewToolResultText(search.FormatResults(query, results)), nil
}

// WebFetch handles the web_fetch MCP tool. Fetch problems come back as
// readable text rather than protocol errors.
func WebFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	urlStr, ok := req.Params.Arguments["url"].(string)
	if !ok || urlStr == "" {
		return mcp.NewToolResultError("url is required"), nil
	}

	if !strings.HasPrefix(urlStr, "http://") && !strings.HasPrefix(urlStr, "https://") {
		urlStr = "https://" + urlStr
	}

	if err := security.CheckFetchURL(urlStr); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("url rejected: %v", err)), nil
	}

	r, err := getRetriever()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search engines not configured: %v", err)), nil
	}

	return mcp.NewToolResultText(r.Fetch(ctx, urlStr)), nil
}
