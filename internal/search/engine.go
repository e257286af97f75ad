package search

import (
	"context"

	"github.com/kayz/scout/internal/config"
)

// Engine is one retrieval tier: a web search plus a page fetch.
type Engine interface {
	Name() string
	Type() string
	Search(ctx context.Context, query string, limit int) (*SearchResponse, error)
	Fetch(ctx context.Context, url string) (string, error)
	IsEnabled() bool
	Priority() int
}

type EngineFactory func(cfg config.SearchEngineConfig) (Engine, error)
