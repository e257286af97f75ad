package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kayz/scout/internal/config"
	"github.com/kayz/scout/internal/logger"
	"github.com/kayz/scout/internal/telemetry"
)

const noResultsSnippet = "No search results available at this time"

// Orchestrator exposes one Search and one Fetch over the primary and
// secondary tiers. Provider faults never cross this boundary: a failed
// search degrades to the next tier and finally to a sentinel result, and a
// failed fetch degrades to an error-text payload. Both operations are
// stateless, so concurrent calls are safe.
type Orchestrator struct {
	primary          Engine
	secondary        Engine
	primaryTimeout   time.Duration
	secondaryTimeout time.Duration
	events           *telemetry.Sink
}

func NewOrchestrator(cfg config.SearchConfig, timeout time.Duration, registry *Registry, events *telemetry.Sink) (*Orchestrator, error) {
	if events == nil {
		events = telemetry.Disabled()
	}
	o := &Orchestrator{
		primaryTimeout:   timeout,
		secondaryTimeout: 10 * time.Second,
		events:           events,
	}
	if o.primaryTimeout <= 0 {
		o.primaryTimeout = 30 * time.Second
	}

	for _, engineCfg := range cfg.Engines {
		if !engineCfg.Enabled {
			continue
		}
		engine, err := registry.CreateEngine(engineCfg)
		if err != nil {
			return nil, err
		}
		switch engineCfg.Name {
		case cfg.PrimaryEngine:
			o.primary = engine
		case cfg.SecondaryEngine:
			o.secondary = engine
		}
	}

	if o.primary == nil && o.secondary == nil {
		return nil, fmt.Errorf("no retrieval engine configured")
	}
	return o, nil
}

// Search runs the query through the tiers. It always returns at least one
// result and never an error.
func (o *Orchestrator) Search(ctx context.Context, query string, limit int) []SearchResult {
	if limit < 1 {
		limit = 1
	}
	o.events.Emit("search.attempt", "query", query, "limit", limit)

	if results := o.searchTier(ctx, o.primary, o.primaryTimeout, query, limit); len(results) > 0 {
		o.events.Emit("search.completed", "query", query, "results", len(results), "engine", o.primary.Name())
		return results
	}

	if o.secondary != nil {
		o.events.Emit("search.fallback", "query", query)
		if results := o.searchTier(ctx, o.secondary, o.secondaryTimeout, query, limit); len(results) > 0 {
			o.events.Emit("search.completed", "query", query, "results", len(results), "engine", o.secondary.Name())
			return results
		}
	}

	o.events.Emit("search.completed", "query", query, "results", 0)
	return []SearchResult{{
		Title:   "Search for: " + query,
		Snippet: noResultsSnippet,
		Score:   0.0,
	}}
}

func (o *Orchestrator) searchTier(ctx context.Context, engine Engine, timeout time.Duration, query string, limit int) []SearchResult {
	if engine == nil || !engine.IsEnabled() {
		return nil
	}
	tierCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := engine.Search(tierCtx, query, limit)
	if err != nil {
		logger.Warn("[Search] %s failed: %v", engine.Name(), err)
		return nil
	}
	if len(resp.Results) > limit {
		return resp.Results[:limit]
	}
	return resp.Results
}

// Fetch retrieves page text through the tiers. Faults become an error-text
// payload naming the URL, never an error, so a dead link cannot abort a
// research run.
func (o *Orchestrator) Fetch(ctx context.Context, url string) string {
	o.events.Emit("fetch.attempt", "url", url)

	content, err := o.fetchTier(ctx, o.primary, o.primaryTimeout, url)
	if err != nil {
		logger.Warn("[Fetch] %s failed: %v", o.primary.Name(), err)
	}

	if content == "" || strings.Contains(content, keyRequiredMarker) {
		if o.secondary != nil {
			o.events.Emit("fetch.fallback", "url", url)
			content, err = o.fetchTier(ctx, o.secondary, o.secondaryTimeout, url)
		}
	}

	if err != nil || content == "" {
		if err == nil {
			err = fmt.Errorf("no content returned")
		}
		content = fmt.Sprintf("Error fetching %s: %v", url, err)
	}

	o.events.Emit("fetch.completed", "url", url, "length", len(content))
	return content
}

func (o *Orchestrator) fetchTier(ctx context.Context, engine Engine, timeout time.Duration, url string) (string, error) {
	if engine == nil || !engine.IsEnabled() {
		return "", nil
	}
	tierCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return engine.Fetch(tierCtx, url)
}

// FormatResults renders results as a readable numbered list.
func FormatResults(query string, results []SearchResult) string {
	if len(results) == 0 {
		return noResultsSnippet
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Search results for '%s':\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r.Title)
		if r.URL != "" {
			fmt.Fprintf(&sb, "   %s\n", r.URL)
		}
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", r.Snippet)
		}
		if r.Score > 0 {
			fmt.Fprintf(&sb, "   relevance: %.2f\n", r.Score)
		}
	}
	return sb.String()
}
