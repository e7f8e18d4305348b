package knowledge

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
)

// fakeClassifier answers file and summary prompts from callbacks
type fakeClassifier struct {
	mu      sync.Mutex
	calls   int
	respond func(prompt string) (string, error)
}

func (f *fakeClassifier) GenerateContent(_ context.Context, req *interfaces.ContentRequest) (*interfaces.ContentResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	text, err := f.respond(req.Messages[0].Content)
	if err != nil {
		return nil, err
	}
	return &interfaces.ContentResponse{Text: text, Provider: "fake"}, nil
}

func (f *fakeClassifier) Provider() string { return "fake" }

type fakeEmbedder struct {
	fail bool
}

func (f *fakeEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if f.fail {
		return nil, errors.New("embedding unavailable")
	}
	return []float32{float32(len(text)), 1}, nil
}

func (f *fakeEmbedder) GenerateQueryEmbedding(ctx context.Context, q string) ([]float32, error) {
	return f.GenerateEmbedding(ctx, q)
}

func (f *fakeEmbedder) ModelName() string { return "fake" }
func (f *fakeEmbedder) Dimension() int    { return 2 }

type memoryStore struct {
	mu          sync.Mutex
	collections map[string]*models.Collection
	docs        map[string][]*models.VectorDocument
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		collections: make(map[string]*models.Collection),
		docs:        make(map[string][]*models.VectorDocument),
	}
}

func (m *memoryStore) ReplaceCollection(_ context.Context, c *models.Collection, docs []*models.VectorDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[c.Name] = c
	m.docs[c.Name] = docs
	return nil
}

func (m *memoryStore) ListCollections(context.Context) ([]*models.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Collection, 0, len(m.collections))
	for _, c := range m.collections {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryStore) GetCollection(_ context.Context, name string) (*models.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (m *memoryStore) DeleteCollection(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, name)
	delete(m.docs, name)
	return nil
}

func (m *memoryStore) SimilaritySearch(context.Context, string, []float32, int) ([]models.ScoredDocument, error) {
	return nil, nil
}

func (m *memoryStore) ListDocuments(_ context.Context, name string, _ int) ([]*models.VectorDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[name], nil
}

// recordingPublisher keeps every event
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ProgressEvent
}

func (r *recordingPublisher) Publish(e models.ProgressEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingPublisher) stages() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int)
	for _, e := range r.events {
		out[e.Stage]++
	}
	return out
}

func isSummaryPrompt(prompt string) bool {
	return strings.HasPrefix(prompt, "Based on the analysis of")
}
