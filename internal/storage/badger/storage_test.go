package badger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	cfg := &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "badger")}
	m, err := NewManager(arbor.NewLogger(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func doc(id, collection, docType string, embedding ...float32) *models.VectorDocument {
	return &models.VectorDocument{
		ID:         id,
		Collection: collection,
		Content:    "content " + id,
		Metadata:   map[string]string{"type": docType},
		Embedding:  embedding,
	}
}

func TestVectorStorage_ReplaceAndSearch(t *testing.T) {
	store := newTestManager(t).VectorStorage()
	ctx := context.Background()

	err := store.ReplaceCollection(ctx, &models.Collection{Name: "repo_a", RepoName: "a"}, []*models.VectorDocument{
		doc("a1", "", models.DocTypeProjectSummary, 0, 0),
		doc("a2", "", models.DocTypeFileAnalysis, 1, 0),
		doc("a3", "", models.DocTypeConcept, 3, 4),
		doc("bad", "", models.DocTypeConcept, 1),
	})
	require.NoError(t, err)

	results, err := store.SimilaritySearch(ctx, "repo_a", []float32{0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a1", results[0].Document.ID)
	assert.Equal(t, 0.0, results[0].Score)
	assert.Equal(t, "a2", results[1].Document.ID)
	assert.Equal(t, 1.0, results[1].Score)
	assert.Equal(t, []float32{1, 0}, results[1].Document.Embedding)

	all, err := store.SimilaritySearch(ctx, "repo_a", []float32{0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 25.0, all[2].Score)

	coll, err := store.GetCollection(ctx, "repo_a")
	require.NoError(t, err)
	assert.Equal(t, 4, coll.DocumentCount)
	assert.Equal(t, "a", coll.RepoName)
}

func TestVectorStorage_ReplaceRemovesOldDocuments(t *testing.T) {
	store := newTestManager(t).VectorStorage()
	ctx := context.Background()

	require.NoError(t, store.ReplaceCollection(ctx, &models.Collection{Name: "repo_a"}, []*models.VectorDocument{
		doc("old1", "", models.DocTypeConcept, 1), doc("old2", "", models.DocTypeConcept, 2),
	}))
	require.NoError(t, store.ReplaceCollection(ctx, &models.Collection{Name: "repo_b"}, []*models.VectorDocument{
		doc("b1", "", models.DocTypeConcept, 1),
	}))
	require.NoError(t, store.ReplaceCollection(ctx, &models.Collection{Name: "repo_a"}, []*models.VectorDocument{
		doc("new1", "", models.DocTypeConcept, 5),
	}))

	docs, err := store.ListDocuments(ctx, "repo_a", 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "new1", docs[0].ID)

	other, err := store.ListDocuments(ctx, "repo_b", 0)
	require.NoError(t, err)
	assert.Len(t, other, 1)

	collections, err := store.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, collections, 2)
	assert.Equal(t, "repo_a", collections[0].Name)
}

func TestVectorStorage_MissingCollection(t *testing.T) {
	store := newTestManager(t).VectorStorage()

	_, err := store.SimilaritySearch(context.Background(), "repo_missing", []float32{1}, 3)
	assert.True(t, errors.Is(err, interfaces.ErrCollectionNotFound))

	_, err = store.GetCollection(context.Background(), "repo_missing")
	assert.True(t, errors.Is(err, interfaces.ErrCollectionNotFound))
}

func TestVectorStorage_DeleteCollection(t *testing.T) {
	store := newTestManager(t).VectorStorage()
	ctx := context.Background()

	require.NoError(t, store.ReplaceCollection(ctx, &models.Collection{Name: "repo_a"}, []*models.VectorDocument{
		doc("a1", "", models.DocTypeConcept, 1),
	}))
	require.NoError(t, store.DeleteCollection(ctx, "repo_a"))

	_, err := store.GetCollection(ctx, "repo_a")
	assert.Error(t, err)
	docs, err := store.ListDocuments(ctx, "repo_a", 0)
	require.NoError(t, err)
	assert.Empty(t, docs)

	assert.NoError(t, store.DeleteCollection(ctx, "repo_never"))
}

func TestSquaredL2(t *testing.T) {
	assert.Equal(t, 0.0, SquaredL2([]float32{1, 2}, []float32{1, 2}))
	assert.Equal(t, 8.0, SquaredL2([]float32{0, 0}, []float32{2, 2}))
}

func TestSavedJobStorage_CRUD(t *testing.T) {
	store := newTestManager(t).SavedJobStorage()
	ctx := context.Background()

	older := &models.SavedJob{Title: "Go Engineer", JobURL: "https://a.example/1", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.SavedJob{Title: "Python Dev", JobURL: "https://b.example/2"}
	require.NoError(t, store.SaveJob(ctx, older))
	require.NoError(t, store.SaveJob(ctx, newer))
	assert.NotEmpty(t, newer.ID)
	assert.False(t, newer.CreatedAt.IsZero())

	got, err := store.GetJob(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Engineer", got.Title)

	list, err := store.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	require.NoError(t, store.DeleteJob(ctx, older.ID))
	_, err = store.GetJob(ctx, older.ID)
	assert.True(t, errors.Is(err, interfaces.ErrJobNotFound))
	assert.True(t, errors.Is(store.DeleteJob(ctx, older.ID), interfaces.ErrJobNotFound))
}

func TestJobRunStorage(t *testing.T) {
	store := newTestManager(t).JobRunStorage()
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.SaveRun(ctx, &models.JobSearchResult{
			SearchDate:     base.Add(time.Duration(i) * time.Minute),
			TotalJobsFound: i,
		}))
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 2, runs[0].TotalJobsFound)
	assert.Equal(t, 1, runs[1].TotalJobsFound)
}

func TestNewBadgerDB_ResetOnStartup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "badger")
	cfg := &common.BadgerConfig{Path: dir}

	m, err := NewManager(arbor.NewLogger(), cfg)
	require.NoError(t, err)
	require.NoError(t, m.SavedJobStorage().SaveJob(context.Background(), &models.SavedJob{Title: "Go Engineer", JobURL: "https://a.example/1"}))
	require.NoError(t, m.Close())
	require.NoError(t, m.DB().Close())

	cfg.ResetOnStartup = true
	db, err := NewBadgerDB(arbor.NewLogger(), cfg)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, dir, db.Path())

	jobs, err := NewSavedJobStorage(db, arbor.NewLogger()).ListJobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestNewBadgerDB_EmptyPath(t *testing.T) {
	_, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{})
	assert.Error(t, err)
}
