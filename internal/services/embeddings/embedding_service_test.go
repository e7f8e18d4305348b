package embeddings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/storage/badger"
)

func newTestService(fn embedFunc) *Service {
	s := NewService(nil, common.EmbeddingsConfig{Model: "test-embed", Dimensions: 3}, arbor.NewLogger())
	s.embed = fn
	return s
}

func TestGenerate_TaskTypes(t *testing.T) {
	var tasks []string
	s := newTestService(func(_ context.Context, _ string, taskType string) ([]float32, error) {
		tasks = append(tasks, taskType)
		return []float32{1, 2, 3}, nil
	})

	_, err := s.GenerateEmbedding(context.Background(), "doc")
	require.NoError(t, err)
	_, err = s.GenerateQueryEmbedding(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, []string{taskRetrievalDocument, taskRetrievalQuery}, tasks)
	assert.Equal(t, "test-embed", s.ModelName())
	assert.Equal(t, 3, s.Dimension())
}

func TestGenerate_EmptyText(t *testing.T) {
	s := newTestService(func(context.Context, string, string) ([]float32, error) {
		t.Fatal("embed should not be called")
		return nil, nil
	})

	_, err := s.GenerateEmbedding(context.Background(), "   ")
	assert.Error(t, err)
}

func TestGenerate_DimensionMismatch(t *testing.T) {
	s := newTestService(func(context.Context, string, string) ([]float32, error) {
		return []float32{1, 2}, nil
	})

	_, err := s.GenerateEmbedding(context.Background(), "doc")
	assert.ErrorContains(t, err, "dimension mismatch")
}

func TestGenerate_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	s := newTestService(func(context.Context, string, string) ([]float32, error) {
		return nil, boom
	})

	_, err := s.GenerateQueryEmbedding(context.Background(), "q")
	assert.ErrorIs(t, err, boom)
}

func TestGenerate_NormalizesToUnitLength(t *testing.T) {
	vectors := map[string][]float32{
		taskRetrievalQuery:    {0.6, 0.8, 0},
		taskRetrievalDocument: {1.2, 1.6, 0},
	}
	s := newTestService(func(_ context.Context, _ string, taskType string) ([]float32, error) {
		src := vectors[taskType]
		return append([]float32(nil), src...), nil
	})

	query, err := s.GenerateQueryEmbedding(context.Background(), "queues")
	require.NoError(t, err)
	doc, err := s.GenerateEmbedding(context.Background(), "uses a queue")
	require.NoError(t, err)

	assert.InDelta(t, 1.0, float64(query[0]*query[0]+query[1]*query[1]), 1e-6)
	assert.InDelta(t, 0.6, float64(doc[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(doc[1]), 1e-6)

	// Same direction, different magnitude: a perfect match under the 0.5 threshold
	assert.Less(t, badger.SquaredL2(query, doc), 1e-6)
}

func TestNormalize_ZeroVector(t *testing.T) {
	assert.Equal(t, []float32{0, 0, 0}, Normalize([]float32{0, 0, 0}))
}
