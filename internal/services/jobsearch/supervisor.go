package jobsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
)

// Deliverer receives the final result of a run. It is the send_results step.
type Deliverer interface {
	Deliver(ctx context.Context, result *models.JobSearchResult) error
}

// DeliverFunc adapts a function to Deliverer
type DeliverFunc func(ctx context.Context, result *models.JobSearchResult) error

func (f DeliverFunc) Deliver(ctx context.Context, result *models.JobSearchResult) error {
	return f(ctx, result)
}

// RunRecorder delivers results into the job-run history
type RunRecorder struct {
	store  interfaces.JobRunStorage
	logger arbor.ILogger
}

func NewRunRecorder(store interfaces.JobRunStorage, logger arbor.ILogger) *RunRecorder {
	return &RunRecorder{store: store, logger: logger}
}

func (r *RunRecorder) Deliver(ctx context.Context, result *models.JobSearchResult) error {
	if err := r.store.SaveRun(ctx, result); err != nil {
		return fmt.Errorf("failed to record job search run: %w", err)
	}
	r.logger.Info().
		Str("run_id", result.ID).
		Int("jobs", result.TotalJobsFound).
		Msg("Job search results delivered")
	return nil
}

// Supervisor drives the stages in order, each at most once, and always ends
// with the send_results delivery
type Supervisor struct {
	stages  []Stage
	deliver Deliverer
	logger  arbor.ILogger
}

// NewSupervisor creates a supervisor over the given stages. The first stage
// must be the searcher; a stage name may appear only once.
func NewSupervisor(stages []Stage, deliver Deliverer, logger arbor.ILogger) (*Supervisor, error) {
	if len(stages) == 0 || stages[0].Name() != StageSearcher {
		return nil, fmt.Errorf("job search pipeline must start with the %s stage", StageSearcher)
	}
	seen := make(map[string]bool, len(stages))
	for _, st := range stages {
		if seen[st.Name()] {
			return nil, fmt.Errorf("stage %s registered more than once", st.Name())
		}
		seen[st.Name()] = true
	}
	return &Supervisor{stages: stages, deliver: deliver, logger: logger}, nil
}

// Run executes one job search. A searcher failure ends the run and is
// returned wrapping ErrWebSearchFailed; later stage failures only degrade
// the listings. Delivery failures are logged.
func (s *Supervisor) Run(ctx context.Context, criteria models.SearchCriteria) (*models.JobSearchResult, error) {
	criteria = Normalize(criteria)
	if len(criteria.TechStack) == 0 {
		return nil, fmt.Errorf("tech stack is required")
	}

	state := &RunState{Criteria: criteria}
	completed := make(map[string]bool, len(s.stages))
	var executed []string

	for _, st := range s.stages {
		name := st.Name()
		if completed[name] {
			continue
		}
		completed[name] = true

		start := time.Now()
		err := st.Run(ctx, state)
		executed = append(executed, name)

		if err != nil {
			if name == StageSearcher || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.logger.Error().Err(err).Str("stage", name).Msg("Job search aborted")
				return nil, err
			}
			s.logger.Warn().Err(err).Str("stage", name).Msg("Job search stage failed, continuing")
			continue
		}

		s.logger.Debug().
			Str("stage", name).
			Int("listings", len(state.Listings)).
			Dur("duration", time.Since(start)).
			Msg("Job search stage completed")
	}

	result := &models.JobSearchResult{
		ID:             common.NewRunID(),
		SearchCriteria: criteria,
		TotalJobsFound: len(state.Listings),
		JobListings:    state.Listings,
		SearchDate:     time.Now().UTC(),
		Stages:         append(executed, StageSendResults),
	}
	if result.JobListings == nil {
		result.JobListings = []models.JobListing{}
	}

	if s.deliver != nil {
		if err := s.deliver.Deliver(ctx, result); err != nil {
			s.logger.Warn().Err(err).Str("run_id", result.ID).Msg("Delivering job search results failed")
		}
	}

	return result, nil
}
