package knowledge

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
)

// LocalOwner is the owner recorded for extractions from a local directory
const LocalOwner = "local"

// ErrNoRepositoryHost is returned when a hosted repository is requested
// without a configured repository host
var ErrNoRepositoryHost = errors.New("repository host is not configured")

// Service picks the file source for an extraction and runs the pipeline
type Service struct {
	pipeline *Pipeline
	host     interfaces.RepositoryHost
}

// NewService creates an extraction service. host may be nil; only local
// directories can then be extracted.
func NewService(pipeline *Pipeline, host interfaces.RepositoryHost) *Service {
	return &Service{pipeline: pipeline, host: host}
}

// ExtractRepo extracts knowledge from a hosted repository
func (s *Service) ExtractRepo(ctx context.Context, owner, repo string) (*models.ExtractionResult, error) {
	if s.host == nil {
		return nil, ErrNoRepositoryHost
	}
	return s.pipeline.Run(ctx, NewGitHubSource(s.host, owner, repo), owner, repo)
}

// ExtractPath extracts knowledge from a checked-out repository directory.
// The directory name is used as the repository name.
func (s *Service) ExtractPath(ctx context.Context, dir string) (*models.ExtractionResult, error) {
	source, err := NewLocalSource(dir, s.pipeline.config.MaxFileBytes)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Run(ctx, source, LocalOwner, filepath.Base(source.Root()))
}
