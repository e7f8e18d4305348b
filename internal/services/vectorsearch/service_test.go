package vectorsearch

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/storage/badger"
)

type stubEmbedder struct {
	vector  []float32
	err     error
	queries []string
}

func (e *stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return e.vector, e.err
}

func (e *stubEmbedder) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	e.queries = append(e.queries, query)
	return e.vector, e.err
}

func (e *stubEmbedder) ModelName() string { return "stub" }
func (e *stubEmbedder) Dimension() int    { return 2 }

func newDoc(id, docType, repo, content string, embedding ...float32) *models.VectorDocument {
	return &models.VectorDocument{
		ID:        id,
		Content:   content,
		Metadata:  map[string]string{"type": docType, "repo_name": repo},
		Embedding: embedding,
	}
}

func newTestService(t *testing.T, embedder *stubEmbedder) (*Service, interfaces.VectorStorage) {
	t.Helper()
	m, err := badger.NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "badger")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	cfg := common.NewDefaultConfig().VectorSearch
	return NewService(m.VectorStorage(), embedder, cfg, arbor.NewLogger()), m.VectorStorage()
}

func seed(t *testing.T, store interfaces.VectorStorage) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.ReplaceCollection(ctx, &models.Collection{Name: "repo_a", RepoName: "webapp"}, []*models.VectorDocument{
		newDoc("a-project", models.DocTypeProjectSummary, "webapp", "Tech stack: react, vite. Architecture: single page app", 0, 0.25),
		newDoc("a-file", models.DocTypeFileAnalysis, "webapp", "File App.tsx: root component", 0.5, 0.5),
		newDoc("a-concept", models.DocTypeConcept, "webapp", "Project uses concept: hooks", 1, 1),
	}))
	require.NoError(t, store.ReplaceCollection(ctx, &models.Collection{Name: "repo_b", RepoName: "api"}, []*models.VectorDocument{
		newDoc("b-project", models.DocTypeProjectSummary, "api", "Tech stack: flask", 0.5, 0),
	}))
	require.NoError(t, store.ReplaceCollection(ctx, &models.Collection{Name: "scratch"}, []*models.VectorDocument{
		newDoc("s-1", models.DocTypeConcept, "scratch", "ignored", 0, 0),
	}))
}

func TestListCollections_FiltersPrefix(t *testing.T) {
	svc, store := newTestService(t, &stubEmbedder{vector: []float32{0, 0}})
	seed(t, store)

	names, err := svc.ListCollections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"repo_a", "repo_b"}, names)
}

func TestRankCollections(t *testing.T) {
	svc, store := newTestService(t, &stubEmbedder{vector: []float32{0, 0}})
	seed(t, store)

	ranked, err := svc.RankCollections(context.Background(), "react experience", 0)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, "repo_a", ranked[0].CollectionName)
	assert.Equal(t, "webapp", ranked[0].RepoName)
	assert.Equal(t, 0.0625, ranked[0].BestScore)
	assert.Equal(t, models.DocTypeProjectSummary, ranked[0].BestMatchType)
	assert.Equal(t, "Tech stack: react, vite. Architecture: single page app...", ranked[0].BestMatchContent)
	assert.Equal(t, "repo_b", ranked[1].CollectionName)
	assert.Equal(t, 0.25, ranked[1].BestScore)

	limited, err := svc.RankCollections(context.Background(), "react experience", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSearchCollection_ThresholdAndTemplate(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{0, 0}}
	svc, store := newTestService(t, embedder)
	seed(t, store)

	resp := svc.SearchCollection(context.Background(), "Tell me about React", "repo_a", 10, 0.5)
	assert.Equal(t, "Tell me about React", resp.Query)
	assert.Equal(t, "repo_a", resp.CollectionName)
	require.Equal(t, 2, resp.TotalResults)
	assert.Equal(t, models.DocTypeProjectSummary, resp.Results[0].Type)
	assert.Equal(t, 0.5, resp.Results[1].Score)

	require.NotEmpty(t, embedder.queries)
	assert.Contains(t, embedder.queries[len(embedder.queries)-1], "Interview question: Tell me about React")
}

func TestSearchCollection_NeverFails(t *testing.T) {
	svc, store := newTestService(t, &stubEmbedder{vector: []float32{0, 0}})
	seed(t, store)

	missing := svc.SearchCollection(context.Background(), "q", "repo_missing", 5, 0.5)
	assert.Equal(t, 0, missing.TotalResults)
	assert.NotNil(t, missing.Results)

	failing, _ := newTestService(t, &stubEmbedder{err: errors.New("quota exceeded")})
	resp := failing.SearchCollection(context.Background(), "q", "repo_a", 5, 0.5)
	assert.Equal(t, 0, resp.TotalResults)
}

func TestSearchAll_MergesByScore(t *testing.T) {
	svc, store := newTestService(t, &stubEmbedder{vector: []float32{0, 0}})
	seed(t, store)

	all, err := svc.SearchAll(context.Background(), "web development", 0, 0.5)
	require.NoError(t, err)
	require.Len(t, all.Results, 3)

	assert.Equal(t, 0.0625, all.Results[0].Score)
	assert.Equal(t, "repo_a", all.Results[0].Collection)
	assert.Equal(t, 0.25, all.Results[1].Score)
	assert.Equal(t, "repo_b", all.Results[1].Collection)
	assert.Equal(t, 0.5, all.Results[2].Score)
	assert.Equal(t, 2, all.TotalCollectionsSearched)
	assert.Contains(t, all.ResultsByCollection, "repo_b")
}

func TestSearchAll_NoCollections(t *testing.T) {
	svc, _ := newTestService(t, &stubEmbedder{vector: []float32{0, 0}})

	_, err := svc.SearchAll(context.Background(), "anything", 5, 0.5)
	assert.ErrorIs(t, err, ErrNoCollections)
}

func TestCollectionInfo(t *testing.T) {
	svc, store := newTestService(t, &stubEmbedder{vector: []float32{0, 0}})
	seed(t, store)

	info, err := svc.CollectionInfo(context.Background(), "repo_a")
	require.NoError(t, err)
	assert.Equal(t, "webapp", info.RepoName)
	assert.Equal(t, 3, info.SampleDocumentCount)
	assert.Equal(t, []string{models.DocTypeConcept, models.DocTypeFileAnalysis, models.DocTypeProjectSummary}, info.DocumentTypes)

	_, err = svc.CollectionInfo(context.Background(), "repo_missing")
	assert.ErrorIs(t, err, interfaces.ErrCollectionNotFound)
}
