package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/kayz/scout/internal/config"
)

const (
	ddgEndpoint  = "https://html.duckduckgo.com/html/"
	browserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// maxFetchChars bounds extracted page text before it reaches the model.
	maxFetchChars   = 5000
	truncatedMarker = "..."
)

// ddgLimiter enforces 1 query per second across all engine instances and
// goroutines; the HTML endpoint bans faster clients.
var ddgLimiter = rate.NewLimiter(rate.Every(time.Second), 1)

// DuckDuckGoEngine scrapes the DuckDuckGo HTML search surface. It needs no
// credential, which makes it the fallback tier for deployments without a
// Context7 key.
type DuckDuckGoEngine struct {
	name     string
	baseURL  string
	enabled  bool
	priority int
	client   *http.Client
}

func NewDuckDuckGoEngine(cfg config.SearchEngineConfig) (Engine, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = ddgEndpoint
	}

	return &DuckDuckGoEngine{
		name:     cfg.Name,
		baseURL:  baseURL,
		enabled:  cfg.Enabled,
		priority: cfg.Priority,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (e *DuckDuckGoEngine) Name() string {
	return e.name
}

func (e *DuckDuckGoEngine) Type() string {
	return "duckduckgo"
}

func (e *DuckDuckGoEngine) IsEnabled() bool {
	return e.enabled
}

func (e *DuckDuckGoEngine) Priority() int {
	return e.priority
}

func (e *DuckDuckGoEngine) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	startTime := time.Now()

	if err := ddgLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := e.baseURL + "?" + url.Values{"q": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo http %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	results := parseResultsPage(doc, e.name, limit)

	return &SearchResponse{
		Query:    query,
		Results:  results,
		Engine:   e.name,
		Duration: time.Since(startTime),
	}, nil
}

func parseResultsPage(doc *goquery.Document, source string, limit int) []SearchResult {
	var results []SearchResult
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := s.Find("a.result__a").First()
		if title.Length() == 0 {
			return true
		}
		results = append(results, SearchResult{
			Title:   strings.TrimSpace(title.Text()),
			URL:     title.AttrOr("href", ""),
			Snippet: strings.TrimSpace(s.Find("a.result__snippet").First().Text()),
			Source:  source,
		})
		return len(results) < limit
	})
	return results
}

// Fetch downloads the page directly and reduces it to readable text.
func (e *DuckDuckGoEngine) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", browserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch http %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	return ExtractText(doc), nil
}

// ExtractText strips non-content markup, collapses whitespace runs, and
// truncates long pages.
func ExtractText(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()

	text := doc.Text()
	lines := strings.Split(text, "\n")
	var chunks []string
	for _, line := range lines {
		for _, chunk := range strings.Split(strings.TrimSpace(line), "  ") {
			chunk = strings.TrimSpace(chunk)
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
		}
	}
	out := strings.Join(chunks, "\n")

	if len(out) > maxFetchChars {
		out = out[:maxFetchChars] + truncatedMarker
	}
	return out
}
