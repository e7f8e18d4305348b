package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
)

// JobRunStorage records job-search runs
type JobRunStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewJobRunStorage creates a new JobRunStorage instance
func NewJobRunStorage(db *BadgerDB, logger arbor.ILogger) *JobRunStorage {
	return &JobRunStorage{
		db:     db,
		logger: logger,
	}
}

func (s *JobRunStorage) SaveRun(ctx context.Context, result *models.JobSearchResult) error {
	if result == nil {
		return fmt.Errorf("result is nil")
	}
	if result.ID == "" {
		result.ID = common.NewRunID()
	}
	if err := s.db.Store().Upsert(result.ID, result); err != nil {
		return fmt.Errorf("failed to save job search run: %w", err)
	}
	return nil
}

func (s *JobRunStorage) ListRuns(ctx context.Context, limit int) ([]*models.JobSearchResult, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("SearchDate").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var runs []models.JobSearchResult
	if err := s.db.Store().Find(&runs, query); err != nil {
		return nil, fmt.Errorf("failed to list job search runs: %w", err)
	}

	result := make([]*models.JobSearchResult, len(runs))
	for i := range runs {
		result[i] = &runs[i]
	}
	return result, nil
}

var _ interfaces.JobRunStorage = (*JobRunStorage)(nil)
