package embeddings

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/interfaces"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	taskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	taskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// ClientSource supplies the shared Gemini client and its call limiter
type ClientSource interface {
	GetGeminiClient(ctx context.Context) (*genai.Client, error)
	GeminiLimiter() *rate.Limiter
}

// embedFunc performs one embedding call; swapped out in tests
type embedFunc func(ctx context.Context, text, taskType string) ([]float32, error)

// Service implements EmbeddingService on the Gemini embedding model
type Service struct {
	source    ClientSource
	model     string
	dimension int
	logger    arbor.ILogger
	embed     embedFunc
}

// NewService creates a new embedding service
func NewService(source ClientSource, config common.EmbeddingsConfig, logger arbor.ILogger) *Service {
	s := &Service{
		source:    source,
		model:     config.Model,
		dimension: config.Dimensions,
		logger:    logger,
	}
	s.embed = s.embedWithGemini
	return s
}

// GenerateEmbedding creates a document embedding
func (s *Service) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return s.generate(ctx, text, taskRetrievalDocument)
}

// GenerateQueryEmbedding creates a query embedding
func (s *Service) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return s.generate(ctx, query, taskRetrievalQuery)
}

func (s *Service) generate(ctx context.Context, text, taskType string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	embedding, err := s.embed(ctx, text, taskType)
	if err != nil {
		return nil, err
	}

	if len(embedding) != s.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.dimension, len(embedding))
	}

	// Truncated Gemini outputs are not unit length; squared L2 thresholds assume they are
	embedding = Normalize(embedding)

	s.logger.Trace().
		Str("task", taskType).
		Int("dimension", len(embedding)).
		Msg("Generated embedding")

	return embedding, nil
}

func (s *Service) embedWithGemini(ctx context.Context, text, taskType string) ([]float32, error) {
	client, err := s.source.GetGeminiClient(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.source.GeminiLimiter().Wait(ctx); err != nil {
		return nil, err
	}

	outputDim := int32(s.dimension)
	config := &genai.EmbedContentConfig{
		TaskType:             taskType,
		OutputDimensionality: &outputDim,
	}

	result, err := client.Models.EmbedContent(ctx, s.model, []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, config)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0].Values == nil {
		return nil, fmt.Errorf("no embedding returned from API")
	}

	return result.Embeddings[0].Values, nil
}

// Normalize scales v to unit length in place. A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		v[i] = float32(float64(x) / norm)
	}
	return v
}

// ModelName returns the embedding model name
func (s *Service) ModelName() string {
	return s.model
}

// Dimension returns the embedding dimension
func (s *Service) Dimension() int {
	return s.dimension
}

var _ interfaces.EmbeddingService = (*Service)(nil)
