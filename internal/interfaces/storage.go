package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/stackscout/internal/models"
)

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrJobNotFound        = errors.New("saved job not found")
)

// VectorStorage persists embedded documents grouped into collections
type VectorStorage interface {
	// ReplaceCollection deletes any existing documents of the collection and writes docs
	ReplaceCollection(ctx context.Context, collection *models.Collection, docs []*models.VectorDocument) error
	ListCollections(ctx context.Context) ([]*models.Collection, error)
	GetCollection(ctx context.Context, name string) (*models.Collection, error)
	DeleteCollection(ctx context.Context, name string) error

	// SimilaritySearch returns up to k documents ordered by ascending distance
	SimilaritySearch(ctx context.Context, collection string, query []float32, k int) ([]models.ScoredDocument, error)
	ListDocuments(ctx context.Context, collection string, limit int) ([]*models.VectorDocument, error)
}

// SavedJobStorage persists jobs the user saved
type SavedJobStorage interface {
	SaveJob(ctx context.Context, job *models.SavedJob) error
	GetJob(ctx context.Context, id string) (*models.SavedJob, error)
	ListJobs(ctx context.Context) ([]*models.SavedJob, error)
	DeleteJob(ctx context.Context, id string) error
	Close() error
}

// SavedJobSearcher finds saved jobs by free text
type SavedJobSearcher interface {
	SearchJobs(ctx context.Context, query string, limit int) ([]*models.SavedJob, error)
}

// JobRunStorage keeps the history of job-search runs, newest first
type JobRunStorage interface {
	SaveRun(ctx context.Context, result *models.JobSearchResult) error
	ListRuns(ctx context.Context, limit int) ([]*models.JobSearchResult, error)
}

// StorageManager owns the configured storage backends
type StorageManager interface {
	VectorStorage() VectorStorage
	SavedJobStorage() SavedJobStorage
	JobRunStorage() JobRunStorage
	Close() error
}
