package jobindex

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/storage/badger"
)

func newSavedJobs(t *testing.T) *badger.Manager {
	t.Helper()
	m, err := badger.NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "badger")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestIndexedStorage_SaveSearchDelete(t *testing.T) {
	ctx := context.Background()
	m := newSavedJobs(t)

	store, err := NewIndexedStorage(ctx, m.SavedJobStorage(), "", arbor.NewLogger())
	require.NoError(t, err)

	golang := &models.SavedJob{Title: "Senior Go Engineer", Location: "Sydney", Description: "Kubernetes and gRPC services", JobURL: "https://jobs.example.com/1"}
	python := &models.SavedJob{Title: "Python Developer", Location: "Melbourne", Description: "Django REST APIs", JobURL: "https://jobs.example.com/2"}
	require.NoError(t, store.SaveJob(ctx, golang))
	require.NoError(t, store.SaveJob(ctx, python))

	hits, err := store.SearchJobs(ctx, "kubernetes", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, golang.ID, hits[0].ID)

	hits, err = store.SearchJobs(ctx, "melbourne", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Python Developer", hits[0].Title)

	require.NoError(t, store.DeleteJob(ctx, python.ID))
	hits, err = store.SearchJobs(ctx, "django", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndexedStorage_ReindexOnCreate(t *testing.T) {
	ctx := context.Background()
	m := newSavedJobs(t)

	require.NoError(t, m.SavedJobStorage().SaveJob(ctx, &models.SavedJob{
		Title:  "Rust Systems Engineer",
		JobURL: "https://jobs.example.com/rust",
	}))

	store, err := NewIndexedStorage(ctx, m.SavedJobStorage(), filepath.Join(t.TempDir(), "jobs.bleve"), arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.index.Close() })

	hits, err := store.SearchJobs(ctx, "rust", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "https://jobs.example.com/rust", hits[0].JobURL)
}
