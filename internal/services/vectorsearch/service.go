package vectorsearch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
)

// ErrNoCollections is returned when no repository collection exists yet
var ErrNoCollections = errors.New("no collections found")

const sampleDocumentCount = 3

// Service answers interview questions from the stored repository knowledge.
// Scores are squared L2 distances; lower is more similar.
type Service struct {
	store    interfaces.VectorStorage
	embedder interfaces.EmbeddingService
	config   common.VectorSearchConfig
	logger   arbor.ILogger
}

// NewService creates a vector search service
func NewService(store interfaces.VectorStorage, embedder interfaces.EmbeddingService, config common.VectorSearchConfig, logger arbor.ILogger) *Service {
	if config.DefaultK <= 0 {
		config.DefaultK = 10
	}
	if config.DefaultKAll <= 0 {
		config.DefaultKAll = 5
	}
	if config.MaxRankedResults <= 0 {
		config.MaxRankedResults = 10
	}
	if config.MatchPreviewChars <= 0 {
		config.MatchPreviewChars = 100
	}
	return &Service{
		store:    store,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}
}

// DefaultThreshold returns the configured score threshold
func (s *Service) DefaultThreshold() float64 {
	return s.config.ScoreThreshold
}

// ListCollections returns the repository collection names, sorted
func (s *Service) ListCollections(ctx context.Context) ([]string, error) {
	collections, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	names := make([]string, 0, len(collections))
	for _, c := range collections {
		if strings.HasPrefix(c.Name, s.config.CollectionPrefix) {
			names = append(names, c.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// HasCollection reports whether name is a known repository collection
func (s *Service) HasCollection(ctx context.Context, name string) (bool, error) {
	names, err := s.ListCollections(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// RankCollections probes every collection for its single best match and
// returns up to limit collections, most relevant first. Collections that
// fail or are empty are left out.
func (s *Service) RankCollections(ctx context.Context, query string, limit int) ([]models.RankedCollection, error) {
	if limit <= 0 {
		limit = s.config.MaxRankedResults
	}

	names, err := s.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []models.RankedCollection{}, nil
	}

	embedding, err := s.embedder.GenerateQueryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	ranked := make([]models.RankedCollection, 0, len(names))
	for _, name := range names {
		hits, err := s.store.SimilaritySearch(ctx, name, embedding, 1)
		if err != nil {
			s.logger.Warn().Err(err).Str("collection", name).Msg("Failed to evaluate collection")
			continue
		}
		if len(hits) == 0 {
			continue
		}

		best := hits[0]
		repoName := best.Document.Metadata["repo_name"]
		if repoName == "" {
			repoName = "Unknown"
		}
		ranked = append(ranked, models.RankedCollection{
			CollectionName:   name,
			RepoName:         repoName,
			BestScore:        best.Score,
			BestMatchType:    typeOf(best.Document),
			BestMatchContent: preview(best.Document.Content, s.config.MatchPreviewChars),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].BestScore < ranked[j].BestScore })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// EnhanceQuery wraps an interview question in the retrieval template
func EnhanceQuery(question string) string {
	return fmt.Sprintf(`Interview question: %s

Looking for relevant programming experience, projects, frameworks, and technical concepts
that would demonstrate skills and knowledge related to this question.`, question)
}

// SearchCollection returns up to k documents of one collection within the
// score threshold. It never fails: embedding or store errors yield an empty response.
func (s *Service) SearchCollection(ctx context.Context, question, collection string, k int, threshold float64) *models.VectorSearchResponse {
	if k <= 0 {
		k = s.config.DefaultK
	}
	if threshold <= 0 {
		threshold = s.config.ScoreThreshold
	}

	response := &models.VectorSearchResponse{
		Query:          question,
		Results:        []models.SearchResult{},
		CollectionName: collection,
	}

	embedding, err := s.embedder.GenerateQueryEmbedding(ctx, EnhanceQuery(question))
	if err != nil {
		s.logger.Warn().Err(err).Str("collection", collection).Msg("Failed to embed search query")
		return response
	}

	hits, err := s.store.SimilaritySearch(ctx, collection, embedding, k)
	if err != nil {
		s.logger.Warn().Err(err).Str("collection", collection).Msg("Collection search failed")
		return response
	}

	for _, hit := range hits {
		if hit.Score > threshold {
			continue
		}
		response.Results = append(response.Results, models.SearchResult{
			Content:    hit.Document.Content,
			Score:      hit.Score,
			Metadata:   hit.Document.Metadata,
			Type:       typeOf(hit.Document),
			Collection: collection,
		})
	}
	response.TotalResults = len(response.Results)
	return response
}

// SearchAll ranks the collections, searches each in ranked order and merges
// the hits by ascending score. Collections without hits are omitted.
func (s *Service) SearchAll(ctx context.Context, question string, kPerCollection int, threshold float64) (*models.SearchAllResponse, error) {
	if kPerCollection <= 0 {
		kPerCollection = s.config.DefaultKAll
	}

	names, err := s.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrNoCollections
	}

	ranked, err := s.RankCollections(ctx, question, len(names))
	if err != nil {
		return nil, err
	}

	all := &models.SearchAllResponse{
		Query:               question,
		Results:             []models.SearchResult{},
		ResultsByCollection: make(map[string]models.VectorSearchResponse),
	}
	for _, rc := range ranked {
		resp := s.SearchCollection(ctx, question, rc.CollectionName, kPerCollection, threshold)
		if resp.TotalResults == 0 {
			continue
		}
		all.ResultsByCollection[rc.CollectionName] = *resp
		all.Results = append(all.Results, resp.Results...)
	}

	sort.SliceStable(all.Results, func(i, j int) bool { return all.Results[i].Score < all.Results[j].Score })
	all.TotalCollectionsSearched = len(all.ResultsByCollection)

	s.logger.Debug().
		Str("query", question).
		Int("collections", len(ranked)).
		Int("results", len(all.Results)).
		Msg("Cross-collection search completed")

	return all, nil
}

// CollectionInfo describes a collection from a sample of its documents
func (s *Service) CollectionInfo(ctx context.Context, name string) (*models.CollectionInfo, error) {
	collection, err := s.store.GetCollection(ctx, name)
	if err != nil {
		return nil, err
	}

	docs, err := s.store.ListDocuments(ctx, name, sampleDocumentCount)
	if err != nil {
		return nil, fmt.Errorf("failed to sample collection %s: %w", name, err)
	}

	info := &models.CollectionInfo{
		CollectionName:      name,
		RepoName:            collection.RepoName,
		DocumentTypes:       []string{},
		SampleDocumentCount: len(docs),
	}

	seen := make(map[string]bool)
	for _, d := range docs {
		if info.RepoName == "" {
			info.RepoName = d.Metadata["repo_name"]
		}
		if t := d.Type(); t != "" && !seen[t] {
			seen[t] = true
			info.DocumentTypes = append(info.DocumentTypes, t)
		}
	}
	sort.Strings(info.DocumentTypes)
	return info, nil
}

func typeOf(doc models.VectorDocument) string {
	if t := doc.Type(); t != "" {
		return t
	}
	return "unknown"
}

func preview(content string, n int) string {
	runes := []rune(content)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}
