package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/services/pdf"
	"github.com/ternarybob/stackscout/internal/services/vectorsearch"
)

type fakeScanner struct {
	records []models.RepoRecord
	err     error
	users   []string
}

func (f *fakeScanner) ScanUser(_ context.Context, username string) ([]models.RepoRecord, error) {
	f.users = append(f.users, username)
	return f.records, f.err
}

type fakeExtractor struct {
	repoCalls []string
	pathCalls []string
	err       error
}

func (f *fakeExtractor) ExtractRepo(_ context.Context, owner, repo string) (*models.ExtractionResult, error) {
	f.repoCalls = append(f.repoCalls, owner+"/"+repo)
	if f.err != nil {
		return nil, f.err
	}
	return &models.ExtractionResult{Owner: owner, Repo: repo, Collection: "repo_0123456789abcdef"}, nil
}

func (f *fakeExtractor) ExtractPath(_ context.Context, dir string) (*models.ExtractionResult, error) {
	f.pathCalls = append(f.pathCalls, dir)
	if f.err != nil {
		return nil, f.err
	}
	return &models.ExtractionResult{Owner: "local", Repo: dir}, nil
}

type searchCall struct {
	question   string
	collection string
	k          int
	threshold  float64
}

type fakeContributions struct {
	collections []string
	allResults  []models.SearchResult
	calls       []searchCall
}

func (f *fakeContributions) DefaultThreshold() float64 { return 0.5 }

func (f *fakeContributions) ListCollections(context.Context) ([]string, error) {
	return f.collections, nil
}

func (f *fakeContributions) CollectionInfo(_ context.Context, name string) (*models.CollectionInfo, error) {
	for _, c := range f.collections {
		if c == name {
			return &models.CollectionInfo{CollectionName: name, RepoName: "webapp", DocumentTypes: []string{models.DocTypeProjectSummary}, SampleDocumentCount: 1}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", interfaces.ErrCollectionNotFound, name)
}

func (f *fakeContributions) SearchCollection(_ context.Context, question, collection string, k int, threshold float64) *models.VectorSearchResponse {
	f.calls = append(f.calls, searchCall{question: question, collection: collection, k: k, threshold: threshold})
	return &models.VectorSearchResponse{
		Query:          question,
		CollectionName: collection,
		Results:        []models.SearchResult{{Content: "Tech stack: react", Score: 0.1, Type: models.DocTypeProjectSummary}},
		TotalResults:   1,
	}
}

func (f *fakeContributions) SearchAll(_ context.Context, question string, k int, threshold float64) (*models.SearchAllResponse, error) {
	f.calls = append(f.calls, searchCall{question: question, k: k, threshold: threshold})
	if len(f.collections) == 0 {
		return nil, vectorsearch.ErrNoCollections
	}
	return &models.SearchAllResponse{Query: question, Results: f.allResults, TotalCollectionsSearched: len(f.collections)}, nil
}

type fakeJobSearcher struct {
	criteria []models.SearchCriteria
	err      error
}

func (f *fakeJobSearcher) Search(_ context.Context, criteria models.SearchCriteria) (*models.JobSearchResult, error) {
	f.criteria = append(f.criteria, criteria)
	if f.err != nil {
		return nil, f.err
	}
	return &models.JobSearchResult{
		ID:             "run_test",
		SearchCriteria: criteria,
		TotalJobsFound: 1,
		JobListings:    []models.JobListing{{Title: "Go Engineer", URL: "https://boards.greenhouse.io/acme/jobs/1"}},
	}, nil
}

type fakeExporter struct {
	archiveURL string
}

func (f *fakeExporter) TechProfile(_ context.Context, username string, records []models.RepoRecord) (*pdf.Report, error) {
	return &pdf.Report{Filename: username + "-tech-profile.pdf", Content: []byte("%PDF-1.3 fake"), ArchiveURL: f.archiveURL}, nil
}

// memorySavedJobs implements SavedJobStorage and SavedJobSearcher
type memorySavedJobs struct {
	mu   sync.Mutex
	jobs map[string]*models.SavedJob
	seq  int
}

func newMemorySavedJobs() *memorySavedJobs {
	return &memorySavedJobs{jobs: make(map[string]*models.SavedJob)}
}

func (m *memorySavedJobs) SaveJob(_ context.Context, job *models.SavedJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job.ID == "" {
		m.seq++
		job.ID = fmt.Sprintf("job_%d", m.seq)
	}
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *memorySavedJobs) GetJob(_ context.Context, id string) (*models.SavedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrJobNotFound, id)
	}
	return job, nil
}

func (m *memorySavedJobs) ListJobs(context.Context) ([]*models.SavedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.SavedJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memorySavedJobs) DeleteJob(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return fmt.Errorf("%w: %s", interfaces.ErrJobNotFound, id)
	}
	delete(m.jobs, id)
	return nil
}

func (m *memorySavedJobs) SearchJobs(ctx context.Context, query string, _ int) ([]*models.SavedJob, error) {
	all, _ := m.ListJobs(ctx)
	var out []*models.SavedJob
	for _, job := range all {
		if strings.Contains(strings.ToLower(job.Title+" "+job.Description), strings.ToLower(query)) {
			out = append(out, job)
		}
	}
	return out, nil
}

func (m *memorySavedJobs) Close() error { return nil }
