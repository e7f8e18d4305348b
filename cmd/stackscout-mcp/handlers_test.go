package main

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/services/vectorsearch"
)

type fakeSearcher struct {
	collections []string
	response    *models.SearchAllResponse
	err         error
	lastK       int
}

func (f *fakeSearcher) ListCollections(ctx context.Context) ([]string, error) {
	return f.collections, nil
}

func (f *fakeSearcher) CollectionInfo(ctx context.Context, name string) (*models.CollectionInfo, error) {
	return &models.CollectionInfo{CollectionName: name, RepoName: "octocat/api", DocumentTypes: []string{"concept", "file_analysis"}}, nil
}

func (f *fakeSearcher) SearchAll(ctx context.Context, question string, k int, threshold float64) (*models.SearchAllResponse, error) {
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type fakeScanner struct {
	records []models.RepoRecord
	err     error
}

func (f *fakeScanner) ScanUser(ctx context.Context, username string) ([]models.RepoRecord, error) {
	return f.records, f.err
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) string {
	t.Helper()
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args

	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func sampleResponse() *models.SearchAllResponse {
	hit := models.SearchResult{
		Content:    "Uses an SQS queue to decouple submission grading",
		Score:      0.21,
		Type:       "file_analysis",
		Collection: "repo_0123456789abcdef",
		Metadata:   map[string]string{"repo_name": "octocat/code-clasher", "file_path": "worker/queue.py"},
	}
	return &models.SearchAllResponse{
		Query:   "message queues",
		Results: []models.SearchResult{hit},
		ResultsByCollection: map[string]models.VectorSearchResponse{
			"repo_0123456789abcdef": {Query: "message queues", Results: []models.SearchResult{hit}, CollectionName: "repo_0123456789abcdef", TotalResults: 1},
		},
		TotalCollectionsSearched: 1,
	}
}

func TestGetExample(t *testing.T) {
	searcher := &fakeSearcher{response: sampleResponse()}
	text := callTool(t, handleGetExample(searcher, arbor.NewLogger()), map[string]any{"topic": "message queues"})

	assert.Contains(t, text, "octocat/code-clasher")
	assert.Contains(t, text, "worker/queue.py")
	assert.Contains(t, text, "SQS queue")
}

func TestGetExample_MissingTopic(t *testing.T) {
	text := callTool(t, handleGetExample(&fakeSearcher{}, arbor.NewLogger()), map[string]any{})
	assert.Contains(t, text, "topic parameter is required")
}

func TestGetExample_NoCollections(t *testing.T) {
	searcher := &fakeSearcher{err: vectorsearch.ErrNoCollections}
	text := callTool(t, handleGetExample(searcher, arbor.NewLogger()), map[string]any{"topic": "caching"})
	assert.Contains(t, text, "No repositories have been extracted yet")
}

func TestSearchAll_CapsResultsPerCollection(t *testing.T) {
	searcher := &fakeSearcher{response: sampleResponse()}
	text := callTool(t, handleSearchAll(searcher, arbor.NewLogger()), map[string]any{
		"query":                      "message queues",
		"max_results_per_collection": 500,
	})

	assert.Equal(t, 50, searcher.lastK)
	assert.Contains(t, text, "repo_0123456789abcdef (1)")
}

func TestListCollections(t *testing.T) {
	searcher := &fakeSearcher{collections: []string{"repo_0123456789abcdef"}}
	text := callTool(t, handleListCollections(searcher, arbor.NewLogger()), nil)

	assert.Contains(t, text, "Collections (1)")
	assert.Contains(t, text, "octocat/api")
	assert.Contains(t, text, "concept, file_analysis")
}

func TestScanUser(t *testing.T) {
	scanner := &fakeScanner{records: []models.RepoRecord{
		{RepoName: "api", RepoURL: "https://github.com/octocat/api", Languages: map[string]int{"Go": 100}, Frameworks: []string{"gin"}},
	}}
	text := callTool(t, handleScanUser(scanner, arbor.NewLogger()), map[string]any{"username": "octocat"})
	assert.Contains(t, text, "| [api](https://github.com/octocat/api) | Go | gin |")

	failing := &fakeScanner{err: errors.New("rate limited")}
	text = callTool(t, handleScanUser(failing, arbor.NewLogger()), map[string]any{"username": "octocat"})
	assert.Contains(t, text, "Failed to fetch repos: rate limited")
}
