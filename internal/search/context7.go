package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kayz/scout/internal/config"
)

// keyRequiredMarker appears in Fetch output when the engine has no usable
// credential. The orchestrator treats content carrying it as unavailable.
const keyRequiredMarker = "context7 API key required"

// Context7Engine calls the authenticated Context7 search/fetch API. A
// missing key, or a key with the "dummy" placeholder prefix, means the
// engine is unconfigured and answers locally without touching the network.
type Context7Engine struct {
	name     string
	apiKey   string
	baseURL  string
	enabled  bool
	priority int
	client   *http.Client
}

func NewContext7Engine(cfg config.SearchEngineConfig) (Engine, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.context7.com/v1"
	}

	return &Context7Engine{
		name:     cfg.Name,
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		enabled:  cfg.Enabled,
		priority: cfg.Priority,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (e *Context7Engine) Name() string {
	return e.name
}

func (e *Context7Engine) Type() string {
	return "context7"
}

func (e *Context7Engine) IsEnabled() bool {
	return e.enabled
}

func (e *Context7Engine) Priority() int {
	return e.priority
}

// unconfigured reports whether the credential is absent or a placeholder.
func (e *Context7Engine) unconfigured() bool {
	return e.apiKey == "" || strings.HasPrefix(e.apiKey, "dummy")
}

func (e *Context7Engine) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	startTime := time.Now()

	// No usable key: report zero results so the caller falls through to
	// the next tier instead of burning a doomed network call.
	if e.unconfigured() {
		return &SearchResponse{Query: query, Engine: e.name, Duration: time.Since(startTime)}, nil
	}

	requestBody := map[string]any{
		"query":       query,
		"max_results": limit,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/search", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("context7 search http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResponse struct {
		Results []struct {
			Title   string  `json:"title"`
			URL     string  `json:"url"`
			Snippet string  `json:"snippet"`
			Content string  `json:"content"`
			Score   float64 `json:"score"`
		} `json:"results"`
	}

	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	results := make([]SearchResult, 0, len(apiResponse.Results))
	for _, r := range apiResponse.Results {
		snippet := r.Snippet
		if snippet == "" {
			snippet = r.Content
		}
		results = append(results, SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: snippet,
			Source:  e.name,
			Score:   r.Score,
		})
	}

	return &SearchResponse{
		Query:    query,
		Results:  results,
		Engine:   e.name,
		Duration: time.Since(startTime),
	}, nil
}

func (e *Context7Engine) Fetch(ctx context.Context, url string) (string, error) {
	if e.unconfigured() {
		return fmt.Sprintf("Content from %s (%s for real data)", url, keyRequiredMarker), nil
	}

	jsonBody, err := json.Marshal(map[string]any{"url": url})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/fetch", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("context7 fetch http %d", resp.StatusCode)
	}

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return payload.Content, nil
}
