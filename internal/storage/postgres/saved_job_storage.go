package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS saved_jobs (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  job_url TEXT NOT NULL,
  interview_url TEXT NOT NULL DEFAULT '',
  application_deadline TIMESTAMP WITH TIME ZONE NULL,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_saved_jobs_created_at ON saved_jobs (created_at DESC);
`

// SavedJobStorage keeps saved jobs in Postgres through the pgx stdlib driver
type SavedJobStorage struct {
	db     *sql.DB
	logger arbor.ILogger

	schemaOnce sync.Once
	schemaErr  error
}

// NewSavedJobStorage connects to dsn and verifies the connection
func NewSavedJobStorage(ctx context.Context, dsn string, logger arbor.ILogger) (*SavedJobStorage, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s := NewSavedJobStorageWithDB(db, logger)
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info().Msg("Postgres saved job storage initialized")
	return s, nil
}

// NewSavedJobStorageWithDB wraps an existing connection pool
func NewSavedJobStorageWithDB(db *sql.DB, logger arbor.ILogger) *SavedJobStorage {
	return &SavedJobStorage{db: db, logger: logger}
}

func (s *SavedJobStorage) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		if _, err := s.db.ExecContext(ctx, schema); err != nil {
			s.schemaErr = fmt.Errorf("failed to create saved_jobs schema: %w", err)
		}
	})
	return s.schemaErr
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.SavedJob, error) {
	var (
		job      models.SavedJob
		deadline sql.NullTime
	)
	if err := row.Scan(&job.ID, &job.Title, &job.Location, &job.Description, &job.JobURL, &job.InterviewURL, &deadline, &job.CreatedAt); err != nil {
		return nil, err
	}
	if deadline.Valid {
		t := deadline.Time
		job.ApplicationDeadline = &t
	}
	return &job, nil
}

func (s *SavedJobStorage) SaveJob(ctx context.Context, job *models.SavedJob) error {
	if job == nil {
		return fmt.Errorf("job is nil")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	if job.ID == "" {
		job.ID = common.NewSavedJobID()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	var deadline sql.NullTime
	if job.ApplicationDeadline != nil {
		deadline = sql.NullTime{Time: *job.ApplicationDeadline, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO saved_jobs (id, title, location, description, job_url, interview_url, application_deadline, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id)
DO UPDATE SET title=EXCLUDED.title,
  location=EXCLUDED.location,
  description=EXCLUDED.description,
  job_url=EXCLUDED.job_url,
  interview_url=EXCLUDED.interview_url,
  application_deadline=EXCLUDED.application_deadline`,
		job.ID, job.Title, job.Location, job.Description, job.JobURL, job.InterviewURL, deadline, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

func (s *SavedJobStorage) GetJob(ctx context.Context, id string) (*models.SavedJob, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT id, title, location, description, job_url, interview_url, application_deadline, created_at
FROM saved_jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrJobNotFound, id)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

func (s *SavedJobStorage) ListJobs(ctx context.Context) ([]*models.SavedJob, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, location, description, job_url, interview_url, application_deadline, created_at
FROM saved_jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*models.SavedJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *SavedJobStorage) DeleteJob(ctx context.Context, id string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", interfaces.ErrJobNotFound, id)
	}
	return nil
}

func (s *SavedJobStorage) Close() error {
	return s.db.Close()
}

var _ interfaces.SavedJobStorage = (*SavedJobStorage)(nil)
