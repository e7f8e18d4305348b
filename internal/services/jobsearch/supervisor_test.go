package jobsearch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
)

func testConfig() common.JobSearchConfig {
	cfg := common.NewDefaultConfig().JobSearch
	cfg.TopN = 2
	return cfg
}

func TestSupervisor_FullPipeline(t *testing.T) {
	searcher := &fakeSearcher{results: searchResults()}
	llmService := &fakeLLM{
		analyzer: func(req *interfaces.ContentRequest) (string, error) {
			assert.Contains(t, req.SystemInstruction, "Take the first 2")
			return `[{"url":"https://boards.greenhouse.io/acme/jobs/123","description":"Acme"},{"url":"https://jobs.lever.co/globex/abc-def","description":"Globex"},{"url":"https://invented.example.com/jobs/1"}]`, nil
		},
		formatter: func(req *interfaces.ContentRequest) (string, error) {
			if strings.Contains(req.Messages[0].Content, "acme") {
				assert.Contains(t, req.Messages[0].Content, "We build Go services")
				return `{"title":"Senior Go Engineer","company":"Acme","location":"Remote","tech_stack":["Go","Kafka"],"url":"https://evil.example.com"}`, nil
			}
			return "", errors.New("formatter overloaded")
		},
	}
	fetcher := &fakeFetcher{pages: map[string]*Page{
		"https://boards.greenhouse.io/acme/jobs/123": {Title: "Acme careers", Description: "Join Acme", Markdown: "We build Go services"},
	}}
	deliverer := &recordingDeliverer{}

	svc, err := NewService(testConfig(), searcher, llmService, fetcher, deliverer, arbor.NewLogger())
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), models.SearchCriteria{TechStack: []string{"Go", "Kafka"}})
	require.NoError(t, err)

	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, 10, searcher.opts.MaxResults)
	assert.Equal(t, 30, searcher.opts.RecencyDays)
	assert.Equal(t, []string{StageSearcher, StageAnalyzer, StageFormatter, StageSendResults}, result.Stages)

	require.Len(t, result.JobListings, 2)
	acme := result.JobListings[0]
	assert.Equal(t, "Senior Go Engineer", acme.Title)
	assert.Equal(t, "Acme", acme.Company)
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/123", acme.URL)
	assert.Equal(t, []string{"Go", "Kafka"}, acme.TechStack)

	globex := result.JobListings[1]
	assert.Equal(t, "https://jobs.lever.co/globex/abc-def", globex.URL)
	assert.Equal(t, "Backend Developer", globex.Title)
	assert.Equal(t, "Globex backend role", globex.DescriptionSnippet)

	assert.Equal(t, 2, result.TotalJobsFound)
	assert.Equal(t, "remote", result.SearchCriteria.Location)
	require.Len(t, deliverer.results, 1)
	assert.Equal(t, result.ID, deliverer.results[0].ID)
}

func TestSupervisor_WebSearchFailureIsTerminal(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("grounding unavailable")}
	llmService := &fakeLLM{}
	deliverer := &recordingDeliverer{}

	svc, err := NewService(testConfig(), searcher, llmService, nil, deliverer, arbor.NewLogger())
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), models.SearchCriteria{TechStack: []string{"Go"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWebSearchFailed)
	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, 0, llmService.calls)
	assert.Empty(t, deliverer.results)
}

func TestSupervisor_AnalyzerFallsBackToHeuristic(t *testing.T) {
	searcher := &fakeSearcher{results: searchResults()}
	llmService := &fakeLLM{
		analyzer: func(*interfaces.ContentRequest) (string, error) { return "", errors.New("rate limited") },
	}
	cfg := testConfig()
	cfg.EnableFormatter = false

	svc, err := NewService(cfg, searcher, llmService, nil, nil, arbor.NewLogger())
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), models.SearchCriteria{TechStack: []string{"Go"}})
	require.NoError(t, err)
	assert.Equal(t, []string{StageSearcher, StageAnalyzer, StageSendResults}, result.Stages)
	require.Len(t, result.JobListings, 2)
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/123", result.JobListings[0].URL)
	assert.Equal(t, "https://jobs.lever.co/globex/abc-def", result.JobListings[1].URL)
}

func TestSupervisor_RequiresTechStack(t *testing.T) {
	svc, err := NewService(testConfig(), &fakeSearcher{}, nil, nil, nil, arbor.NewLogger())
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), models.SearchCriteria{Location: "remote"})
	assert.Error(t, err)
}

func TestNewSupervisor_RejectsInvalidPlans(t *testing.T) {
	logger := arbor.NewLogger()
	searcher := NewSearcherStage(&fakeSearcher{}, 10, 30, logger)
	analyzer := NewAnalyzerStage(nil, 5, logger)

	_, err := NewSupervisor([]Stage{analyzer, searcher}, nil, logger)
	assert.Error(t, err)

	_, err = NewSupervisor([]Stage{searcher, analyzer, analyzer}, nil, logger)
	assert.Error(t, err)
}

type fakeRegistrar struct {
	name     string
	schedule string
	handler  func(ctx context.Context) error
}

func (f *fakeRegistrar) RegisterJob(name, schedule, description string, handler func(ctx context.Context) error) error {
	f.name, f.schedule, f.handler = name, schedule, handler
	return nil
}

func TestScheduleProfile(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(profile, []byte("tech_stack: [go]\n"), 0644))

	cfg := testConfig()
	cfg.EnableFormatter = false
	cfg.Schedule = "0 8 * * 1"
	cfg.ProfileFile = profile

	searcher := &fakeSearcher{results: searchResults()}
	deliverer := &recordingDeliverer{}
	svc, err := NewService(cfg, searcher, nil, nil, deliverer, arbor.NewLogger())
	require.NoError(t, err)

	registrar := &fakeRegistrar{}
	require.NoError(t, svc.ScheduleProfile(registrar))
	assert.Equal(t, ScheduledJobName, registrar.name)
	assert.Equal(t, "0 8 * * 1", registrar.schedule)

	require.NoError(t, registrar.handler(context.Background()))
	require.Len(t, deliverer.results, 1)
	assert.Equal(t, []string{"go"}, deliverer.results[0].SearchCriteria.TechStack)
}

func TestScheduleProfile_DisabledWithoutSchedule(t *testing.T) {
	svc, err := NewService(testConfig(), &fakeSearcher{}, nil, nil, nil, arbor.NewLogger())
	require.NoError(t, err)

	registrar := &fakeRegistrar{}
	require.NoError(t, svc.ScheduleProfile(registrar))
	assert.Empty(t, registrar.name)
}
