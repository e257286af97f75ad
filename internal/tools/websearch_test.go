package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/kayz/scout/internal/search"
	"github.com/mark3labs/mcp-go/mcp"
)

type stubRetriever struct {
	lastQuery string
	lastLimit int
	lastURL   string
	content   string
}

func (r *stubRetriever) Search(_ context.Context, query string, limit int) []search.SearchResult {
	r.lastQuery = query
	r.lastLimit = limit
	return []search.SearchResult{{Title: "Go docs", URL: "https://go.dev", Snippet: "The Go programming language"}}
}

func (r *stubRetriever) Fetch(_ context.Context, url string) string {
	r.lastURL = url
	return r.content
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestWebSearchFormatsResults(t *testing.T) {
	stub := &stubRetriever{}
	SetRetriever(stub)
	defer SetRetriever(nil)

	result, err := WebSearch(context.Background(), toolRequest(map[string]any{
		"query": "golang",
		"limit": float64(3),
	}))
	if err != nil {
		t.Fatalf("WebSearch returned unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result: %#v", result)
	}
	if stub.lastQuery != "golang" || stub.lastLimit != 3 {
		t.Errorf("retriever called with query=%q limit=%d", stub.lastQuery, stub.lastLimit)
	}

	text := result.Content[0].(mcp.TextContent).Text
	if !strings.Contains(text, "Go docs") || !strings.Contains(text, "https://go.dev") {
		t.Errorf("unexpected tool output: %q", text)
	}
}

func TestWebSearchRequiresQuery(t *testing.T) {
	SetRetriever(&stubRetriever{})
	defer SetRetriever(nil)

	result, err := WebSearch(context.Background(), toolRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("WebSearch returned unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing query")
	}
}

func TestWebFetchNormalizesScheme(t *testing.T) {
	stub := &stubRetriever{content: "page text"}
	SetRetriever(stub)
	defer SetRetriever(nil)

	result, err := WebFetch(context.Background(), toolRequest(map[string]any{
		"url": "example.com/doc",
	}))
	if err != nil {
		t.Fatalf("WebFetch returned unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result: %#v", result)
	}
	if stub.lastURL != "https://example.com/doc" {
		t.Errorf("url not normalized, got %q", stub.lastURL)
	}

	text := result.Content[0].(mcp.TextContent).Text
	if text != "page text" {
		t.Errorf("unexpected tool output: %q", text)
	}
}

func TestWebFetchBlocksLocalTargets(t *testing.T) {
	stub := &stubRetriever{}
	SetRetriever(stub)
	defer SetRetriever(nil)

	result, err := WebFetch(context.Background(), toolRequest(map[string]any{
		"url": "http://127.0.0.1:8080",
	}))
	if err != nil {
		t.Fatalf("WebFetch returned unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected blocked URL to return a tool error")
	}
	if stub.lastURL != "" {
		t.Errorf("retriever must not be reached for blocked URLs, got %q", stub.lastURL)
	}
}

func TestWebFetchRequiresURL(t *testing.T) {
	SetRetriever(&stubRetriever{})
	defer SetRetriever(nil)

	result, err := WebFetch(context.Background(), toolRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("WebFetch returned unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing url")
	}
}
