package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment  string             `toml:"environment"` // "development" or "production"
	Server       ServerConfig       `toml:"server"`
	Logging      LoggingConfig      `toml:"logging"`
	GitHub       GitHubConfig       `toml:"github"`
	Storage      StorageConfig      `toml:"storage"`
	LLM          LLMConfig          `toml:"llm"`
	Gemini       GeminiConfig       `toml:"gemini"`
	Claude       ClaudeConfig       `toml:"claude"`
	Embeddings   EmbeddingsConfig   `toml:"embeddings"`
	Knowledge    KnowledgeConfig    `toml:"knowledge"`
	VectorSearch VectorSearchConfig `toml:"vectorsearch"`
	JobSearch    JobSearchConfig    `toml:"jobsearch"`
}

type ServerConfig struct {
	Port             int    `toml:"port"`
	Host             string `toml:"host"`
	WriteTimeout     string `toml:"write_timeout"`     // Covers synchronous extraction and job search (default: "10m")
	ProgressThrottle string `toml:"progress_throttle"` // Minimum interval between per-file progress events on /ws
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// GitHubConfig configures the repository-hosting API client
type GitHubConfig struct {
	Token     string `toml:"token"`      // Personal access token; anonymous when empty
	BaseURL   string `toml:"base_url"`   // Enterprise API URL; empty for api.github.com
	PerPage   int    `toml:"per_page"`   // Page size for list calls (max 100)
	CacheSize int    `toml:"cache_size"` // LRU entries for languages/tree responses
	CacheTTL  string `toml:"cache_ttl"`  // Max age of a cached response, e.g. "5m"
}

type StorageConfig struct {
	Badger   BadgerConfig   `toml:"badger"`
	Postgres PostgresConfig `toml:"postgres"`
	Bleve    BleveConfig    `toml:"bleve"`
	Archive  ArchiveConfig  `toml:"archive"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// PostgresConfig selects the Postgres saved-jobs backend when DSN is set
type PostgresConfig struct {
	DSN string `toml:"dsn"`
}

type BleveConfig struct {
	Path string `toml:"path"` // Saved-job full-text index directory; empty disables indexing
}

// ArchiveConfig configures S3-compatible storage for exported reports
type ArchiveConfig struct {
	Enabled   bool   `toml:"enabled"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	UseSSL    bool   `toml:"use_ssl"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "gemini")
	MaxRetries      int         `toml:"max_retries"`      // Classifier retries on rate limit (default: 0, no retry)
}

type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	SearchModel string  `toml:"search_model"` // Model used for grounded web search
	Timeout     string  `toml:"timeout"`      // Operation timeout as duration string (default: "2m")
	RateLimit   string  `toml:"rate_limit"`   // Minimum interval between calls (default: "500ms")
	Temperature float32 `toml:"temperature"`
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	RateLimit   string  `toml:"rate_limit"`
	Temperature float32 `toml:"temperature"`
}

type EmbeddingsConfig struct {
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
}

// KnowledgeConfig controls the extraction pipeline
type KnowledgeConfig struct {
	Concurrency     int  `toml:"concurrency"`       // Bounded worker pool size for per-file analysis
	MaxFiles        int  `toml:"max_files"`         // 0 = unlimited
	ContentLimit    int  `toml:"content_limit"`     // Characters sent to the classifier per file
	MaxFileBytes    int  `toml:"max_file_bytes"`    // Skip files larger than this when reading
	AllowLocalPaths bool `toml:"allow_local_paths"` // Let POST /api/extract read server directories; the CLI is unaffected
}

type VectorSearchConfig struct {
	CollectionPrefix  string  `toml:"collection_prefix"`
	DefaultK          int     `toml:"default_k"`
	DefaultKAll       int     `toml:"default_k_all"`
	ScoreThreshold    float64 `toml:"score_threshold"`
	MaxRankedResults  int     `toml:"max_ranked_results"`
	MatchPreviewChars int     `toml:"match_preview_chars"`
}

type JobSearchConfig struct {
	MaxResults      int    `toml:"max_results"`      // Web-search result count
	RecencyDays     int    `toml:"recency_days"`     // Posting recency window
	TopN            int    `toml:"top_n"`            // Analyzer keeps this many postings
	EnableFormatter bool   `toml:"enable_formatter"` // Run the formatter stage
	FetchTimeout    string `toml:"fetch_timeout"`    // Per-posting page fetch timeout
	ProfileFile     string `toml:"profile_file"`     // YAML search profile for scheduled runs
	Schedule        string `toml:"schedule"`         // Cron expression; empty disables
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:             8085,
			Host:             "localhost",
			WriteTimeout:     "10m",
			ProgressThrottle: "250ms",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		GitHub: GitHubConfig{
			PerPage:   100,
			CacheSize: 2048,
			CacheTTL:  "5m",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/badger",
			},
			Bleve: BleveConfig{
				Path: "./data/saved_jobs.bleve",
			},
			Archive: ArchiveConfig{
				Bucket: "stackscout-reports",
			},
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
			MaxRetries:      0,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			SearchModel: "gemini-2.5-flash",
			Timeout:     "2m",
			RateLimit:   "500ms",
			Temperature: 0.2,
		},
		Claude: ClaudeConfig{
			Model:       "claude-haiku-4-5",
			MaxTokens:   4096,
			Timeout:     "2m",
			RateLimit:   "500ms",
			Temperature: 0.2,
		},
		Embeddings: EmbeddingsConfig{
			Model:      "gemini-embedding-001",
			Dimensions: 768,
		},
		Knowledge: KnowledgeConfig{
			Concurrency:  4,
			MaxFiles:     0,
			ContentLimit: 4000,
			MaxFileBytes: 512 * 1024,
		},
		VectorSearch: VectorSearchConfig{
			CollectionPrefix:  "repo_",
			DefaultK:          10,
			DefaultKAll:       5,
			ScoreThreshold:    0.5,
			MaxRankedResults:  10,
			MatchPreviewChars: 100,
		},
		JobSearch: JobSearchConfig{
			MaxResults:      10,
			RecencyDays:     30,
			TopN:            5,
			EnableFormatter: true,
			FetchTimeout:    "15s",
		},
	}
}

// LoadFromFiles loads configuration with priority: default -> file1 -> file2 -> ... -> .env -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// .env is optional; existing environment variables win over it
	_ = godotenv.Load()

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STACKSCOUT_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("STACKSCOUT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("STACKSCOUT_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("STACKSCOUT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("STACKSCOUT_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// GitHub configuration (standard GITHUB_TOKEN honoured as fallback)
	if token := os.Getenv("STACKSCOUT_GITHUB_TOKEN"); token != "" {
		config.GitHub.Token = token
	} else if token := os.Getenv("GITHUB_TOKEN"); token != "" && config.GitHub.Token == "" {
		config.GitHub.Token = token
	}
	if baseURL := os.Getenv("STACKSCOUT_GITHUB_BASE_URL"); baseURL != "" {
		config.GitHub.BaseURL = baseURL
	}

	// Storage configuration
	if badgerPath := os.Getenv("STACKSCOUT_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if dsn := os.Getenv("STACKSCOUT_POSTGRES_DSN"); dsn != "" {
		config.Storage.Postgres.DSN = dsn
	} else if dsn := os.Getenv("DATABASE_URL"); dsn != "" && config.Storage.Postgres.DSN == "" {
		config.Storage.Postgres.DSN = dsn
	}
	if blevePath := os.Getenv("STACKSCOUT_BLEVE_PATH"); blevePath != "" {
		config.Storage.Bleve.Path = blevePath
	}
	if endpoint := os.Getenv("STACKSCOUT_ARCHIVE_ENDPOINT"); endpoint != "" {
		config.Storage.Archive.Endpoint = endpoint
		config.Storage.Archive.Enabled = true
	}
	if accessKey := os.Getenv("STACKSCOUT_ARCHIVE_ACCESS_KEY"); accessKey != "" {
		config.Storage.Archive.AccessKey = accessKey
	}
	if secretKey := os.Getenv("STACKSCOUT_ARCHIVE_SECRET_KEY"); secretKey != "" {
		config.Storage.Archive.SecretKey = secretKey
	}

	// LLM configuration
	if provider := os.Getenv("STACKSCOUT_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(strings.ToLower(provider))
	}
	if key := firstEnv("STACKSCOUT_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if model := os.Getenv("STACKSCOUT_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if key := firstEnv("STACKSCOUT_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if model := os.Getenv("STACKSCOUT_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}

	// Knowledge pipeline
	if concurrency := os.Getenv("STACKSCOUT_KNOWLEDGE_CONCURRENCY"); concurrency != "" {
		if c, err := strconv.Atoi(concurrency); err == nil {
			config.Knowledge.Concurrency = c
		}
	}

	// Job search
	if schedule := os.Getenv("STACKSCOUT_JOBSEARCH_SCHEDULE"); schedule != "" {
		config.JobSearch.Schedule = schedule
	}
	if profile := os.Getenv("STACKSCOUT_JOBSEARCH_PROFILE"); profile != "" {
		config.JobSearch.ProfileFile = profile
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks values that would otherwise fail late at runtime
func (c *Config) Validate() error {
	switch c.LLM.DefaultProvider {
	case LLMProviderGemini, LLMProviderClaude:
	default:
		return fmt.Errorf("invalid llm.default_provider %q: must be gemini or claude", c.LLM.DefaultProvider)
	}
	if c.Knowledge.Concurrency < 1 {
		return fmt.Errorf("knowledge.concurrency must be at least 1, got %d", c.Knowledge.Concurrency)
	}
	if c.GitHub.PerPage < 1 || c.GitHub.PerPage > 100 {
		return fmt.Errorf("github.per_page must be between 1 and 100, got %d", c.GitHub.PerPage)
	}
	if c.JobSearch.Schedule != "" {
		if err := ValidateSchedule(c.JobSearch.Schedule); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSchedule validates a cron schedule expression (5-field, optional seconds)
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}
