package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
)

// SavedJobStorage implements the SavedJobStorage interface for Badger
type SavedJobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSavedJobStorage creates a new SavedJobStorage instance
func NewSavedJobStorage(db *BadgerDB, logger arbor.ILogger) *SavedJobStorage {
	return &SavedJobStorage{
		db:     db,
		logger: logger,
	}
}

// SaveJob inserts or updates a job, assigning an ID and CreatedAt when unset
func (s *SavedJobStorage) SaveJob(ctx context.Context, job *models.SavedJob) error {
	if job == nil {
		return fmt.Errorf("job is nil")
	}
	if job.ID == "" {
		job.ID = common.NewSavedJobID()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(job.ID, job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

func (s *SavedJobStorage) GetJob(ctx context.Context, id string) (*models.SavedJob, error) {
	var job models.SavedJob
	if err := s.db.Store().Get(id, &job); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrJobNotFound, id)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// ListJobs returns saved jobs newest first
func (s *SavedJobStorage) ListJobs(ctx context.Context) ([]*models.SavedJob, error) {
	var jobs []models.SavedJob
	if err := s.db.Store().Find(&jobs, badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	result := make([]*models.SavedJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

func (s *SavedJobStorage) DeleteJob(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.SavedJob{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("%w: %s", interfaces.ErrJobNotFound, id)
		}
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// Close is a no-op; the database is owned by the Manager
func (s *SavedJobStorage) Close() error {
	return nil
}

var _ interfaces.SavedJobStorage = (*SavedJobStorage)(nil)
