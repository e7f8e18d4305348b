package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/registry"
)

func newTestPipeline(classifier *fakeClassifier, embedder *fakeEmbedder, store *memoryStore, pub *recordingPublisher) *Pipeline {
	cfg := common.NewDefaultConfig()
	p := NewPipeline(cfg.Knowledge, cfg.VectorSearch.CollectionPrefix, registry.Default(), nil, nil, nil, nil, arbor.NewLogger())
	if classifier != nil {
		p.classifier = classifier
	}
	if embedder != nil {
		p.embedder = embedder
	}
	if store != nil {
		p.store = store
	}
	if pub != nil {
		p.publisher = pub
	}
	return p
}

func TestSummarize_ZeroFiles(t *testing.T) {
	classifier := &fakeClassifier{respond: func(string) (string, error) { return "{}", nil }}
	p := newTestPipeline(classifier, nil, nil, nil)

	summary := p.Summarize(context.Background(), nil)
	assert.Empty(t, summary.TopFrameworks)
	assert.Empty(t, summary.KeyConcepts)
	assert.Empty(t, summary.TechStack)
	assert.Equal(t, emptyRepositoryOverview, summary.ArchitectureOverview)
	assert.False(t, summary.Narrative)
	assert.Equal(t, 0, classifier.calls)
}

func TestSummarize_FallbackOnClassifierError(t *testing.T) {
	classifier := &fakeClassifier{respond: func(string) (string, error) { return "", errors.New("quota") }}
	p := newTestPipeline(classifier, nil, nil, nil)

	analyses := []models.FileAnalysis{
		{FilePath: "a.py", Frameworks: []string{"flask"}, StaticFrameworks: []string{"flask"}, Concepts: []string{"routing"}},
		{FilePath: "b.py", Frameworks: []string{"pandas"}, Concepts: []string{"routing", "etl"}, ArchitecturePatterns: []string{"MVC"}},
	}

	summary := p.Summarize(context.Background(), analyses)
	assert.Equal(t, "Analysis of 2 files completed with some errors", summary.ArchitectureOverview)
	assert.Equal(t, []models.FrequencyCount{{Name: "flask", Count: 2}, {Name: "pandas", Count: 1}}, summary.TopFrameworks)
	assert.Equal(t, []models.FrequencyCount{{Name: "routing", Count: 2}, {Name: "etl", Count: 1}}, summary.KeyConcepts)
	assert.Equal(t, []models.FrequencyCount{{Name: "MVC", Count: 1}}, summary.Patterns)
	assert.Equal(t, []string{"flask", "pandas"}, summary.TechStack)
	assert.False(t, summary.Narrative)
}

func TestSummarize_TopLimits(t *testing.T) {
	p := newTestPipeline(nil, nil, nil, nil)

	var analyses []models.FileAnalysis
	for i := 0; i < 20; i++ {
		name := string(rune('a' + i))
		analyses = append(analyses, models.FileAnalysis{
			FilePath:             name + ".py",
			Frameworks:           []string{"fw-" + name},
			Concepts:             []string{"c-" + name},
			ArchitecturePatterns: []string{"p-" + name},
		})
	}

	summary := p.Summarize(context.Background(), analyses)
	assert.Len(t, summary.TopFrameworks, 10)
	assert.Len(t, summary.KeyConcepts, 15)
	assert.Len(t, summary.Patterns, 5)
	assert.Len(t, summary.TechStack, 10)
	assert.Equal(t, "fw-a", summary.TechStack[0])
}

func TestSummarize_Narrative(t *testing.T) {
	classifier := &fakeClassifier{respond: func(prompt string) (string, error) {
		assert.Contains(t, prompt, "flask: 1")
		return `{"architecture_overview":"A Flask REST API.","tech_stack":["Python","Flask"]}`, nil
	}}
	p := newTestPipeline(classifier, nil, nil, nil)

	summary := p.Summarize(context.Background(), []models.FileAnalysis{
		{FilePath: "a.py", Frameworks: []string{"flask"}, FilePurpose: "Entry point"},
	})
	assert.True(t, summary.Narrative)
	assert.Equal(t, "A Flask REST API.", summary.ArchitectureOverview)
	assert.Equal(t, []string{"Python", "Flask"}, summary.TechStack)
}

func TestTruncateContent(t *testing.T) {
	assert.Equal(t, "abc", truncateContent("abc", 5))
	assert.Equal(t, "ab"+truncationMarker, truncateContent("abcdef", 2))
	assert.Equal(t, "abcdef", truncateContent("abcdef", 0))
}
