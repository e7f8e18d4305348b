package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/connectors/github"
	"github.com/ternarybob/stackscout/internal/handlers"
	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/registry"
	"github.com/ternarybob/stackscout/internal/services/embeddings"
	"github.com/ternarybob/stackscout/internal/services/jobsearch"
	"github.com/ternarybob/stackscout/internal/services/knowledge"
	"github.com/ternarybob/stackscout/internal/services/llm"
	"github.com/ternarybob/stackscout/internal/services/pdf"
	"github.com/ternarybob/stackscout/internal/services/scanner"
	"github.com/ternarybob/stackscout/internal/services/scheduler"
	"github.com/ternarybob/stackscout/internal/services/vectorsearch"
	"github.com/ternarybob/stackscout/internal/services/websearch"
	"github.com/ternarybob/stackscout/internal/storage"
	"github.com/ternarybob/stackscout/internal/storage/archive"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	ctx            context.Context
	cancelCtx      context.CancelFunc
	StorageManager *storage.Manager

	// Providers
	LLMService       *llm.ProviderFactory
	EmbeddingService *embeddings.Service
	WebSearcher      *websearch.GeminiSearcher
	GitHub           *github.Connector

	// Domain services
	ScannerService      *scanner.Service
	KnowledgeService    *knowledge.Service
	VectorSearchService *vectorsearch.Service
	JobSearchService    *jobsearch.Service
	PDFService          *pdf.Service
	SchedulerService    *scheduler.Service

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	WSHandler        *handlers.WebSocketHandler
	RepoHandler      *handlers.RepoHandler
	ExtractHandler   *handlers.ExtractHandler
	SearchHandler    *handlers.SearchHandler
	JobsHandler      *handlers.JobsHandler
	SchedulerHandler *handlers.SchedulerHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}
	app.ctx, app.cancelCtx = context.WithCancel(context.Background())

	// Initialize database
	if err := app.initDatabase(); err != nil {
		app.cancelCtx()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	if err := app.initServices(); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Initialize handlers
	app.initHandlers()

	// Scheduled job search starts only after every handler is wired
	if err := app.JobSearchService.ScheduleProfile(app.SchedulerService); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to schedule job search: %w", err)
	}
	app.SchedulerService.Start()

	logger.Info().
		Str("llm_provider", app.LLMService.Provider()).
		Bool("github_token", cfg.GitHub.Token != "").
		Bool("archive", cfg.Storage.Archive.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase opens Badger and the optional Postgres and bleve backends
func (a *App) initDatabase() error {
	manager, err := storage.NewStorageManager(a.ctx, a.Logger, a.Config)
	if err != nil {
		return err
	}
	a.StorageManager = manager

	a.Logger.Info().
		Str("path", a.Config.Storage.Badger.Path).
		Bool("postgres", a.Config.Storage.Postgres.DSN != "").
		Bool("bleve", a.Config.Storage.Bleve.Path != "").
		Msg("Storage initialized")
	return nil
}

// initServices builds the domain services bottom-up
func (a *App) initServices() error {
	cfg := a.Config

	// 1. LLM providers, shared by classification, embeddings and web search
	a.LLMService = llm.NewProviderFactory(&cfg.Gemini, &cfg.Claude, &cfg.LLM, a.Logger)
	a.EmbeddingService = embeddings.NewService(a.LLMService, cfg.Embeddings, a.Logger)
	a.WebSearcher = websearch.NewGeminiSearcher(a.LLMService, cfg.Gemini.SearchModel, duration(cfg.Gemini.Timeout, 2*time.Minute), a.Logger)

	// 2. Repository host
	connector, err := github.NewConnector(cfg.GitHub, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create github connector: %w", err)
	}
	a.GitHub = connector

	// 3. Progress hub; the pipeline publishes into it
	a.WSHandler = handlers.NewWebSocketHandler(a.Logger, duration(cfg.Server.ProgressThrottle, 250*time.Millisecond))

	// 4. Scanner and knowledge extraction
	reg := registry.Default()
	a.ScannerService = scanner.NewService(connector, reg, a.Logger)

	var classifier interfaces.LLMService
	if a.hasLLMKey() {
		classifier = a.LLMService
	} else {
		a.Logger.Warn().
			Str("provider", string(cfg.LLM.DefaultProvider)).
			Msg("No API key for the default LLM provider - extraction falls back to static analysis")
	}

	pipeline := knowledge.NewPipeline(
		cfg.Knowledge,
		cfg.VectorSearch.CollectionPrefix,
		reg,
		classifier,
		a.EmbeddingService,
		a.StorageManager.VectorStorage(),
		a.WSHandler,
		a.Logger,
	)
	a.KnowledgeService = knowledge.NewService(pipeline, connector)

	// 5. Vector search
	a.VectorSearchService = vectorsearch.NewService(a.StorageManager.VectorStorage(), a.EmbeddingService, cfg.VectorSearch, a.Logger)

	// 6. Job search
	fetcher := jobsearch.NewHTTPPageFetcher(duration(cfg.JobSearch.FetchTimeout, 20*time.Second), a.Logger)
	recorder := jobsearch.NewRunRecorder(a.StorageManager.JobRunStorage(), a.Logger)
	jobService, err := jobsearch.NewService(cfg.JobSearch, a.WebSearcher, a.LLMService, fetcher, recorder, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create job search service: %w", err)
	}
	a.JobSearchService = jobService

	// 7. PDF reports with optional S3 archive
	var archiver pdf.Archiver
	if cfg.Storage.Archive.Enabled {
		s3, err := archive.NewS3Archive(cfg.Storage.Archive, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to create report archive: %w", err)
		}
		archiver = s3
	}
	a.PDFService = pdf.NewService(archiver, a.Logger)

	// 8. Scheduler
	a.SchedulerService = scheduler.NewService(a.Logger)

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.RepoHandler = handlers.NewRepoHandler(a.ScannerService, a.PDFService, a.Logger)
	a.ExtractHandler = handlers.NewExtractHandler(a.KnowledgeService, a.Config.Knowledge.AllowLocalPaths, a.Logger)
	a.SearchHandler = handlers.NewSearchHandler(a.VectorSearchService, a.Logger)
	a.JobsHandler = handlers.NewJobsHandler(
		a.JobSearchService,
		a.ScannerService,
		a.StorageManager.SavedJobStorage(),
		a.StorageManager.SavedJobSearcher(),
		a.StorageManager.JobRunStorage(),
		a.Logger,
	)
	a.SchedulerHandler = handlers.NewSchedulerHandler(a.SchedulerService, a.Logger)
}

// hasLLMKey reports whether the default provider can be called at all
func (a *App) hasLLMKey() bool {
	if a.Config.LLM.DefaultProvider == common.LLMProviderClaude {
		return a.Config.Claude.APIKey != ""
	}
	return a.Config.Gemini.APIKey != ""
}

// Close closes all application resources
func (a *App) Close() error {
	if a.cancelCtx != nil {
		a.cancelCtx()
	}

	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}

	if a.WSHandler != nil {
		a.WSHandler.Close()
	}

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM providers")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}

func duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
