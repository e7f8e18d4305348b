package handlers

import (
	"context"

	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/services/pdf"
)

// RepoScanner scans a user's repositories for languages and frameworks.
type RepoScanner interface {
	ScanUser(ctx context.Context, username string) ([]models.RepoRecord, error)
}

// KnowledgeExtractor runs the extraction pipeline for a hosted repository or a local directory.
type KnowledgeExtractor interface {
	ExtractRepo(ctx context.Context, owner, repo string) (*models.ExtractionResult, error)
	ExtractPath(ctx context.Context, dir string) (*models.ExtractionResult, error)
}

// ContributionSearcher answers interview questions from stored repository knowledge.
type ContributionSearcher interface {
	DefaultThreshold() float64
	ListCollections(ctx context.Context) ([]string, error)
	CollectionInfo(ctx context.Context, name string) (*models.CollectionInfo, error)
	SearchCollection(ctx context.Context, question, collection string, k int, threshold float64) *models.VectorSearchResponse
	SearchAll(ctx context.Context, question string, kPerCollection int, threshold float64) (*models.SearchAllResponse, error)
}

// JobSearcher runs the job-search pipeline.
type JobSearcher interface {
	Search(ctx context.Context, criteria models.SearchCriteria) (*models.JobSearchResult, error)
}

// ProfileExporter renders a user's tech profile as PDF.
type ProfileExporter interface {
	TechProfile(ctx context.Context, username string, records []models.RepoRecord) (*pdf.Report, error)
}
