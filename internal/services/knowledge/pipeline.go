package knowledge

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/registry"
	"github.com/ternarybob/stackscout/internal/services/workers"
)

// Pipeline stages reported in progress events
const (
	StageDiscover  = "discover"
	StageAnalyze   = "analyze"
	StageSummarize = "summarize"
	StagePersist   = "persist"
	StageDone      = "done"
)

// Pipeline runs discover -> analyze (fan-out) -> summarize -> persist
type Pipeline struct {
	config           common.KnowledgeConfig
	collectionPrefix string
	registry         *registry.Registry
	classifier       interfaces.LLMService
	embedder         interfaces.EmbeddingService
	store            interfaces.VectorStorage
	publisher        interfaces.ProgressPublisher
	logger           arbor.ILogger
}

// NewPipeline creates an extraction pipeline. classifier, embedder and store
// may be nil; the run then degrades to static analysis and skips persistence.
func NewPipeline(
	config common.KnowledgeConfig,
	collectionPrefix string,
	reg *registry.Registry,
	classifier interfaces.LLMService,
	embedder interfaces.EmbeddingService,
	store interfaces.VectorStorage,
	publisher interfaces.ProgressPublisher,
	logger arbor.ILogger,
) *Pipeline {
	if publisher == nil {
		publisher = interfaces.NoopPublisher{}
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &Pipeline{
		config:           config,
		collectionPrefix: collectionPrefix,
		registry:         reg,
		classifier:       classifier,
		embedder:         embedder,
		store:            store,
		publisher:        publisher,
		logger:           logger,
	}
}

// analysisSet accumulates per-file results from concurrent workers
type analysisSet struct {
	mu      sync.Mutex
	byPath  map[string]models.FileAnalysis
	skipped []string
}

func (s *analysisSet) put(a models.FileAnalysis) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byPath[a.FilePath] = a
	return len(s.byPath) + len(s.skipped)
}

func (s *analysisSet) skip(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped = append(s.skipped, path)
	return len(s.byPath) + len(s.skipped)
}

func (s *analysisSet) sorted() []models.FileAnalysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FileAnalysis, 0, len(s.byPath))
	for _, a := range s.byPath {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FilePath < out[j].FilePath })
	return out
}

// Run extracts knowledge from one repository. Only a failure to list the
// source's files is returned as an error; unreadable files are dropped,
// classifier failures fall back, and persistence failures are reported in
// the result's PersistError with an empty Collection.
func (p *Pipeline) Run(ctx context.Context, source FileSource, owner, repo string) (*models.ExtractionResult, error) {
	start := time.Now()
	runID := common.NewRunID()

	result := &models.ExtractionResult{
		RunID:     runID,
		Owner:     owner,
		Repo:      repo,
		StartedAt: start,
	}

	files, err := DiscoverFiles(ctx, source, p.config.MaxFiles)
	if err != nil {
		return nil, err
	}
	result.FilesFound = len(files)

	p.logger.Info().
		Str("run_id", runID).
		Str("repo", owner+"/"+repo).
		Int("files", len(files)).
		Msg("Discovered files for analysis")
	p.publisher.Publish(models.ProgressEvent{RunID: runID, Stage: StageDiscover, Total: len(files)})

	analyses, err := p.analyzeAll(ctx, runID, source, files)
	if err != nil {
		return nil, err
	}
	result.Analyses = analyses

	p.publisher.Publish(models.ProgressEvent{RunID: runID, Stage: StageSummarize, Done: len(analyses), Total: len(files)})
	result.Summary = p.Summarize(ctx, analyses)

	collection, count, err := p.persist(ctx, runID, owner, repo, result.Summary, analyses)
	if err != nil {
		p.logger.Error().Err(err).Str("run_id", runID).Msg("Persisting knowledge failed")
		result.PersistError = err.Error()
	} else {
		result.Collection = collection
		result.Documents = count
	}

	result.Duration = time.Since(start)
	p.publisher.Publish(models.ProgressEvent{RunID: runID, Stage: StageDone, Done: len(analyses), Total: len(files), Error: result.PersistError})

	p.logger.Info().
		Str("run_id", runID).
		Str("collection", result.Collection).
		Int("analyses", len(analyses)).
		Int("documents", result.Documents).
		Dur("duration", result.Duration).
		Msg("Knowledge extraction completed")

	return result, nil
}

// analyzeAll fans files out over a bounded pool and joins before returning
func (p *Pipeline) analyzeAll(ctx context.Context, runID string, source FileSource, files []string) ([]models.FileAnalysis, error) {
	set := &analysisSet{byPath: make(map[string]models.FileAnalysis, len(files))}
	total := len(files)

	pool := workers.NewPool(ctx, p.config.Concurrency, p.logger)
	pool.Start()

	for _, f := range files {
		filePath := f
		err := pool.Submit(func(ctx context.Context) error {
			content, err := source.ReadFile(ctx, filePath)
			if err != nil {
				done := set.skip(filePath)
				p.publisher.Publish(models.ProgressEvent{RunID: runID, Stage: StageAnalyze, File: filePath, Done: done, Total: total, Error: err.Error()})
				return fmt.Errorf("failed to read %s: %w", filePath, err)
			}
			if p.config.MaxFileBytes > 0 && len(content) > p.config.MaxFileBytes {
				done := set.skip(filePath)
				p.publisher.Publish(models.ProgressEvent{RunID: runID, Stage: StageAnalyze, File: filePath, Done: done, Total: total, Error: "file too large"})
				return nil
			}

			done := set.put(p.analyzeFile(ctx, filePath, content))
			p.publisher.Publish(models.ProgressEvent{RunID: runID, Stage: StageAnalyze, File: filePath, Done: done, Total: total})
			return nil
		})
		if err != nil {
			break
		}
	}
	pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return set.sorted(), nil
}
