package jobsearch

import (
	"context"
	"errors"
	"sync"

	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
)

type fakeSearcher struct {
	calls   int
	query   string
	opts    interfaces.WebSearchOptions
	results []interfaces.WebResult
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, query string, opts interfaces.WebSearchOptions) ([]interfaces.WebResult, error) {
	f.calls++
	f.query = query
	f.opts = opts
	return f.results, f.err
}

// fakeLLM routes analyzer and formatter requests to separate callbacks
type fakeLLM struct {
	mu        sync.Mutex
	analyzer  func(req *interfaces.ContentRequest) (string, error)
	formatter func(req *interfaces.ContentRequest) (string, error)
	calls     int
}

func (f *fakeLLM) GenerateContent(_ context.Context, req *interfaces.ContentRequest) (*interfaces.ContentResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	respond := f.analyzer
	if req.OutputSchema != nil {
		respond = f.formatter
	}
	if respond == nil {
		return nil, errors.New("unexpected request")
	}
	text, err := respond(req)
	if err != nil {
		return nil, err
	}
	return &interfaces.ContentResponse{Text: text, Provider: "fake"}, nil
}

func (f *fakeLLM) Provider() string { return "fake" }

type fakeFetcher struct {
	pages map[string]*Page
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string) (*Page, error) {
	if p, ok := f.pages[pageURL]; ok {
		return p, nil
	}
	return nil, errors.New("not found")
}

type recordingDeliverer struct {
	results []*models.JobSearchResult
}

func (r *recordingDeliverer) Deliver(_ context.Context, result *models.JobSearchResult) error {
	r.results = append(r.results, result)
	return nil
}

func searchResults() []interfaces.WebResult {
	return []interfaces.WebResult{
		{URL: "https://boards.greenhouse.io/acme/jobs/123", Title: "Go Engineer at Acme", Description: "Acme is hiring a Go engineer"},
		{URL: "https://blog.example.com/how-to-learn-go", Title: "How to learn Go", Description: "A tutorial"},
		{URL: "https://jobs.lever.co/globex/abc-def", Title: "Backend Developer", Description: "Globex backend role"},
		{URL: "not a url", Description: "garbage"},
	}
}
