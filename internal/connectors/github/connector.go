package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/ternarybob/arbor"
	"golang.org/x/oauth2"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/interfaces"
)

// defaultCacheTTL bounds how stale a cached languages or tree response may be
const defaultCacheTTL = 5 * time.Minute

// ErrNotFound is returned when the API answers 404 for a repository or file
var ErrNotFound = errors.New("github resource not found")

// Connector implements interfaces.RepositoryHost over the GitHub REST API
type Connector struct {
	client  *github.Client
	perPage int
	cache   *expirable.LRU[string, any]
	logger  arbor.ILogger
}

// NewConnector creates a GitHub connector. An empty token uses anonymous access.
func NewConnector(config common.GitHubConfig, logger arbor.ILogger) (*Connector, error) {
	var httpClient *http.Client
	if config.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: config.Token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	if config.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(config.BaseURL, config.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github base url: %w", err)
		}
	}

	return newConnector(client, config, logger)
}

func newConnector(client *github.Client, config common.GitHubConfig, logger arbor.ILogger) (*Connector, error) {
	perPage := config.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}

	c := &Connector{
		client:  client,
		perPage: perPage,
		logger:  logger,
	}

	if config.CacheSize > 0 {
		ttl, err := cacheTTL(config.CacheTTL)
		if err != nil {
			return nil, err
		}
		c.cache = expirable.NewLRU[string, any](config.CacheSize, nil, ttl)
	}

	return c, nil
}

func cacheTTL(value string) (time.Duration, error) {
	if value == "" {
		return defaultCacheTTL, nil
	}
	ttl, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid github cache_ttl %q: %w", value, err)
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("github cache_ttl must be positive, got %s", value)
	}
	return ttl, nil
}

// TestConnection verifies the API is reachable and reports the remaining rate limit
func (c *Connector) TestConnection(ctx context.Context) error {
	limits, _, err := c.client.RateLimits(ctx)
	if err != nil {
		return fmt.Errorf("github connection test failed: %w", err)
	}
	if c.logger != nil && limits.GetCore() != nil {
		c.logger.Debug().
			Int("remaining", limits.GetCore().Remaining).
			Int("limit", limits.GetCore().Limit).
			Msg("GitHub rate limit")
	}
	return nil
}

func (c *Connector) cached(key string) (any, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *Connector) store(key string, value any) {
	if c.cache != nil {
		c.cache.Add(key, value)
	}
}

// wrapError maps 404 responses to ErrNotFound
func wrapError(op string, err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Ensure interface compliance
var _ interfaces.RepositoryHost = (*Connector)(nil)
