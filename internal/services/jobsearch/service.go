package jobsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
)

// ScheduledJobName is the scheduler entry for profile-driven searches
const ScheduledJobName = "job-search"

// JobRegistrar is the part of the scheduler the service needs
type JobRegistrar interface {
	RegisterJob(name, schedule, description string, handler func(ctx context.Context) error) error
}

// Service wires the searcher, analyzer and optional formatter behind a supervisor
type Service struct {
	supervisor *Supervisor
	config     common.JobSearchConfig
	logger     arbor.ILogger
}

// NewService builds the pipeline from configuration. fetcher may be nil, in
// which case the formatter shapes listings from search snippets only.
func NewService(
	config common.JobSearchConfig,
	searcher interfaces.WebSearcher,
	llmService interfaces.LLMService,
	fetcher PageFetcher,
	deliver Deliverer,
	logger arbor.ILogger,
) (*Service, error) {
	if searcher == nil {
		return nil, fmt.Errorf("web searcher is required")
	}

	stages := []Stage{
		NewSearcherStage(searcher, config.MaxResults, config.RecencyDays, logger),
		NewAnalyzerStage(llmService, config.TopN, logger),
	}
	if config.EnableFormatter {
		stages = append(stages, NewFormatterStage(fetcher, llmService, logger))
	}

	supervisor, err := NewSupervisor(stages, deliver, logger)
	if err != nil {
		return nil, err
	}

	return &Service{supervisor: supervisor, config: config, logger: logger}, nil
}

// Search runs one job search for the criteria
func (s *Service) Search(ctx context.Context, criteria models.SearchCriteria) (*models.JobSearchResult, error) {
	return s.supervisor.Run(ctx, criteria)
}

// ScheduleProfile registers the configured profile as a recurring search.
// It does nothing when no schedule is configured.
func (s *Service) ScheduleProfile(registrar JobRegistrar) error {
	if s.config.Schedule == "" {
		return nil
	}
	if s.config.ProfileFile == "" {
		return fmt.Errorf("jobsearch.schedule is set but jobsearch.profile_file is empty")
	}

	// Fail at startup on a broken profile rather than on the first tick
	if _, err := LoadProfile(s.config.ProfileFile); err != nil {
		return err
	}

	return registrar.RegisterJob(ScheduledJobName, s.config.Schedule, "Scheduled job search from "+s.config.ProfileFile, func(ctx context.Context) error {
		criteria, err := LoadProfile(s.config.ProfileFile)
		if err != nil {
			return err
		}

		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()

		result, err := s.Search(runCtx, criteria)
		if err != nil {
			return err
		}
		s.logger.Info().
			Str("run_id", result.ID).
			Int("jobs", result.TotalJobsFound).
			Msg("Scheduled job search completed")
		return nil
	})
}
