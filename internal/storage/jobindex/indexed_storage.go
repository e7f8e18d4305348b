package jobindex

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
)

const (
	fieldTitle       = "title"
	fieldLocation    = "location"
	fieldDescription = "description"
	fieldURL         = "job_url"
)

// indexedJob is the bleve document for a saved job
type indexedJob struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
	JobURL      string `json:"job_url"`
}

// IndexedStorage decorates a SavedJobStorage with a bleve full-text index
type IndexedStorage struct {
	inner  interfaces.SavedJobStorage
	index  bleve.Index
	logger arbor.ILogger
}

// NewIndexMapping creates the saved-job index mapping
func NewIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	for _, name := range []string{fieldTitle, fieldDescription, fieldLocation} {
		field := bleve.NewTextFieldMapping()
		field.Analyzer = standard.Name
		field.Store = false
		docMapping.AddFieldMappingsAt(name, field)
	}

	urlField := bleve.NewTextFieldMapping()
	urlField.Analyzer = keyword.Name
	urlField.Store = true
	docMapping.AddFieldMappingsAt(fieldURL, urlField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name
	return indexMapping
}

// NewIndexedStorage opens (or creates) the index at path; an empty path keeps
// the index in memory. A freshly created index is filled from inner.
func NewIndexedStorage(ctx context.Context, inner interfaces.SavedJobStorage, path string, logger arbor.ILogger) (*IndexedStorage, error) {
	var (
		index   bleve.Index
		err     error
		created bool
	)

	switch {
	case path == "":
		index, err = bleve.NewMemOnly(NewIndexMapping())
		created = true
	default:
		index, err = bleve.Open(path)
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			index, err = bleve.New(path, NewIndexMapping())
			created = true
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open saved job index: %w", err)
	}

	s := &IndexedStorage{inner: inner, index: index, logger: logger}
	if created {
		if err := s.Reindex(ctx); err != nil {
			_ = index.Close()
			return nil, err
		}
	}
	return s, nil
}

// Reindex rebuilds the index from the underlying storage
func (s *IndexedStorage) Reindex(ctx context.Context) error {
	jobs, err := s.inner.ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load saved jobs for indexing: %w", err)
	}

	batch := s.index.NewBatch()
	for _, job := range jobs {
		if err := batch.Index(job.ID, toIndexed(job)); err != nil {
			return fmt.Errorf("failed to index job %s: %w", job.ID, err)
		}
	}
	if err := s.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to write saved job index: %w", err)
	}

	s.logger.Debug().Int("jobs", len(jobs)).Msg("Saved job index rebuilt")
	return nil
}

func toIndexed(job *models.SavedJob) indexedJob {
	return indexedJob{
		Title:       job.Title,
		Location:    job.Location,
		Description: job.Description,
		JobURL:      job.JobURL,
	}
}

func (s *IndexedStorage) SaveJob(ctx context.Context, job *models.SavedJob) error {
	if err := s.inner.SaveJob(ctx, job); err != nil {
		return err
	}
	if err := s.index.Index(job.ID, toIndexed(job)); err != nil {
		s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to index saved job")
	}
	return nil
}

func (s *IndexedStorage) GetJob(ctx context.Context, id string) (*models.SavedJob, error) {
	return s.inner.GetJob(ctx, id)
}

func (s *IndexedStorage) ListJobs(ctx context.Context) ([]*models.SavedJob, error) {
	return s.inner.ListJobs(ctx)
}

func (s *IndexedStorage) DeleteJob(ctx context.Context, id string) error {
	if err := s.inner.DeleteJob(ctx, id); err != nil {
		return err
	}
	if err := s.index.Delete(id); err != nil {
		s.logger.Warn().Err(err).Str("job_id", id).Msg("Failed to remove saved job from index")
	}
	return nil
}

// SearchJobs matches query against title, description and location, best first.
// Index hits whose job no longer exists are skipped.
func (s *IndexedStorage) SearchJobs(ctx context.Context, query string, limit int) ([]*models.SavedJob, error) {
	if limit <= 0 {
		limit = 20
	}

	title := bleve.NewMatchQuery(query)
	title.SetField(fieldTitle)
	title.SetBoost(3.0)

	description := bleve.NewMatchQuery(query)
	description.SetField(fieldDescription)

	location := bleve.NewMatchQuery(query)
	location.SetField(fieldLocation)

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(title, description, location))
	req.Size = limit

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("saved job search failed: %w", err)
	}

	jobs := make([]*models.SavedJob, 0, len(res.Hits))
	for _, hit := range res.Hits {
		job, err := s.inner.GetJob(ctx, hit.ID)
		if err != nil {
			if errors.Is(err, interfaces.ErrJobNotFound) {
				continue
			}
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Close closes the index and the underlying storage
func (s *IndexedStorage) Close() error {
	indexErr := s.index.Close()
	innerErr := s.inner.Close()
	if indexErr != nil {
		return indexErr
	}
	return innerErr
}

// RemoveIndex deletes an on-disk index directory
func RemoveIndex(path string) error {
	if path == "" {
		return nil
	}
	return os.RemoveAll(path)
}

var (
	_ interfaces.SavedJobStorage  = (*IndexedStorage)(nil)
	_ interfaces.SavedJobSearcher = (*IndexedStorage)(nil)
)
