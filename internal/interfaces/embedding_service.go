package interfaces

import (
	"context"
)

// EmbeddingService generates vector embeddings
type EmbeddingService interface {
	// Generate embedding for document text
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// Generate query embedding (may use a different task type than documents)
	GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error)

	// Get model information
	ModelName() string
	Dimension() int
}
