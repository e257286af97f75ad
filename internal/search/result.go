package search

import "time"

type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Source  string  `json:"source,omitempty"`
	Score   float64 `json:"relevance_score,omitempty"`
}

type SearchResponse struct {
	Query    string         `json:"query"`
	Results  []SearchResult `json:"results"`
	Engine   string         `json:"engine"`
	Duration time.Duration  `json:"duration"`
}
