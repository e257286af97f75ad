package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/kayz/scout/internal/config"
)

const resultsPage = `<html><body>
<div class="result">
  <a class="result__a" href="https://go.dev/blog/generics">An Introduction To Generics</a>
  <a class="result__snippet">Generics add type parameters to Go.</a>
</div>
<div class="result">
  <a class="result__a" href="https://go.dev/doc/tutorial/generics">Tutorial: Getting started with generics</a>
  <a class="result__snippet">This tutorial introduces the basics.</a>
</div>
<div class="result">
  <span>an advert without a result link</span>
</div>
</body></html>`

func TestDuckDuckGoSearchParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "go generics" {
			t.Errorf("unexpected query: %q", r.URL.Query().Get("q"))
		}
		if !strings.Contains(r.Header.Get("User-Agent"), "Mozilla") {
			t.Errorf("expected browser user agent, got %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	engine, err := NewDuckDuckGoEngine(config.SearchEngineConfig{
		Name:    "duckduckgo",
		Type:    "duckduckgo",
		BaseURL: srv.URL,
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := engine.Search(context.Background(), "go generics", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	first := resp.Results[0]
	if first.Title != "An Introduction To Generics" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.URL != "https://go.dev/blog/generics" {
		t.Fatalf("unexpected url: %q", first.URL)
	}
	if first.Snippet != "Generics add type parameters to Go." {
		t.Fatalf("unexpected snippet: %q", first.Snippet)
	}
}

func TestDuckDuckGoSearchHonorsLimit(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resultsPage))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	results := parseResultsPage(doc, "duckduckgo", 1)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestExtractTextStripsMarkupAndCollapsesWhitespace(t *testing.T) {
	page := `<html><head><style>body { color: red }</style></head><body>
<script>alert("nope")</script>
<p>First   paragraph.</p>
<p>Second  paragraph.</p>
<noscript>enable js</noscript>
</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	text := ExtractText(doc)
	if strings.Contains(text, "alert") || strings.Contains(text, "color: red") || strings.Contains(text, "enable js") {
		t.Fatalf("markup not stripped: %q", text)
	}
	if !strings.Contains(text, "First") || !strings.Contains(text, "Second") {
		t.Fatalf("content lost: %q", text)
	}
	if strings.Contains(text, "  ") {
		t.Fatalf("whitespace runs not collapsed: %q", text)
	}
}

func TestExtractTextTruncatesLongPages(t *testing.T) {
	long := strings.Repeat("a", 6000)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><p>" + long + "</p></body></html>"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	text := ExtractText(doc)
	if len(text) != maxFetchChars+len(truncatedMarker) {
		t.Fatalf("expected %d chars, got %d", maxFetchChars+len(truncatedMarker), len(text))
	}
	if !strings.HasSuffix(text, truncatedMarker) {
		t.Fatalf("expected truncation marker suffix")
	}
	if text[:maxFetchChars] != long[:maxFetchChars] {
		t.Fatalf("truncated prefix does not match source text")
	}
}

func TestDuckDuckGoFetchExtractsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><script>var x=1</script><p>Readable text.</p></body></html>`))
	}))
	defer srv.Close()

	engine, err := NewDuckDuckGoEngine(config.SearchEngineConfig{Name: "duckduckgo", Type: "duckduckgo", Enabled: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, err := engine.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if content != "Readable text." {
		t.Fatalf("unexpected content: %q", content)
	}
}
