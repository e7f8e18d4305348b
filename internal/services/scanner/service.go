package scanner

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/registry"
	"github.com/ternarybob/stackscout/internal/services/detector"
)

// Service turns a GitHub username into per-repository stack records
type Service struct {
	host     interfaces.RepositoryHost
	registry *registry.Registry
	detector *detector.Detector
	logger   arbor.ILogger
}

// NewService creates a scanner over a repository host and language registry
func NewService(host interfaces.RepositoryHost, reg *registry.Registry, logger arbor.ILogger) *Service {
	return &Service{
		host:     host,
		registry: reg,
		detector: detector.NewDetector(reg),
		logger:   logger,
	}
}

// ScanUser scans every repository of username. Only a failure to list the
// repositories is returned; per-repository problems are logged.
func (s *Service) ScanUser(ctx context.Context, username string) ([]models.RepoRecord, error) {
	repos, err := s.host.ListUserRepos(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories for %s: %w", username, err)
	}

	s.logger.Info().
		Str("username", username).
		Int("repositories", len(repos)).
		Msg("Scanning repositories")

	records := make([]models.RepoRecord, 0, len(repos))
	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		records = append(records, s.scan(ctx, repo))
	}

	return records, nil
}

// ScanRepo scans a single repository
func (s *Service) ScanRepo(ctx context.Context, owner, repo string) (*models.RepoRecord, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo are required")
	}
	record := s.scan(ctx, interfaces.RepositoryInfo{
		Owner:   owner,
		Name:    repo,
		HTMLURL: fmt.Sprintf("https://github.com/%s/%s", owner, repo),
	})
	return &record, nil
}

func (s *Service) scan(ctx context.Context, repo interfaces.RepositoryInfo) models.RepoRecord {
	record := models.RepoRecord{
		RepoName:      repo.Name,
		RepoURL:       repo.HTMLURL,
		Description:   repo.Description,
		DefaultBranch: repo.DefaultBranch,
		Languages:     map[string]int{},
		Frameworks:    []string{},
	}

	languages, err := s.host.ListLanguages(ctx, repo.Owner, repo.Name)
	if err != nil {
		s.logger.Warn().Err(err).Str("repo", repo.Name).Msg("Failed to fetch languages")
		return record
	}
	record.Languages = languages
	if len(languages) == 0 {
		return record
	}

	tree, err := s.host.ListTree(ctx, repo.Owner, repo.Name)
	if err != nil {
		s.logger.Warn().Err(err).Str("repo", repo.Name).Msg("Failed to fetch file tree")
		return record
	}

	deps := s.collectDependencies(ctx, repo, languages, tree)
	record.Dependencies = deps
	record.Frameworks = s.detector.Detect(languages, deps)

	s.logger.Debug().
		Str("repo", repo.Name).
		Int("dependencies", len(deps)).
		Strs("frameworks", record.Frameworks).
		Msg("Repository scanned")

	return record
}

// collectDependencies fetches and parses every manifest of the present languages.
// A manifest shared by several languages (package.json) is read once.
func (s *Service) collectDependencies(ctx context.Context, repo interfaces.RepositoryInfo, languages map[string]int, tree []string) []string {
	langs := make([]string, 0, len(languages))
	for lang := range languages {
		langs = append(langs, strings.ToLower(lang))
	}
	sort.Strings(langs)

	parsed := make(map[string]bool)
	deps := []string{}

	for _, lang := range langs {
		for _, spec := range s.registry.FilesFor(lang) {
			if !spec.Parser.Supported() {
				continue
			}
			for _, path := range tree {
				if !spec.Matches(path) || parsed[spec.Pattern+"|"+path] {
					continue
				}
				parsed[spec.Pattern+"|"+path] = true

				content, err := s.host.GetFileContent(ctx, repo.Owner, repo.Name, path)
				if err != nil {
					s.logger.Warn().
						Err(err).
						Str("repo", repo.Name).
						Str("path", path).
						Msg("Skipping unreadable manifest")
					continue
				}

				found, _ := spec.Parser.Parse(string(content))
				deps = append(deps, found...)
			}
		}
	}

	return deps
}
