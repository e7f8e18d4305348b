package interfaces

import (
	"context"
)

// WebResult is one hit returned by a web search
type WebResult struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
}

// WebSearchOptions constrain a web search
type WebSearchOptions struct {
	MaxResults  int
	RecencyDays int
}

// WebSearcher issues a single web search
type WebSearcher interface {
	Search(ctx context.Context, query string, opts WebSearchOptions) ([]WebResult, error)
}
