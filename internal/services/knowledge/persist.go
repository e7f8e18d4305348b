package knowledge

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/models"
)

// BuildDocuments converts a summary and its file analyses into the documents
// of one collection: a project overview, one per key concept and one per file.
func BuildDocuments(collection, repoName string, summary models.ConceptSummary, analyses []models.FileAnalysis) []*models.VectorDocument {
	now := time.Now()
	docs := make([]*models.VectorDocument, 0, 1+len(summary.KeyConcepts)+len(analyses))

	overview := FlattenMarkdown(summary.ArchitectureOverview)
	docs = append(docs, &models.VectorDocument{
		ID:         common.DocumentID(collection, models.DocTypeProjectSummary, repoName),
		Collection: collection,
		Content:    fmt.Sprintf("Tech stack: %s. Architecture: %s", strings.Join(summary.TechStack, ", "), overview),
		Metadata: map[string]string{
			"type":       models.DocTypeProjectSummary,
			"level":      models.LevelProject,
			"repo_name":  repoName,
			"frameworks": strings.Join(summary.TechStack, ","),
		},
		CreatedAt: now,
	})

	for _, c := range summary.KeyConcepts {
		docs = append(docs, &models.VectorDocument{
			ID:         common.DocumentID(collection, models.DocTypeConcept, c.Name),
			Collection: collection,
			Content:    "Project uses concept: " + c.Name,
			Metadata: map[string]string{
				"type":      models.DocTypeConcept,
				"level":     models.LevelConcept,
				"repo_name": repoName,
				"concepts":  c.Name,
				"frequency": strconv.Itoa(c.Count),
			},
			CreatedAt: now,
		})
	}

	for _, a := range analyses {
		docs = append(docs, &models.VectorDocument{
			ID:         common.DocumentID(collection, models.DocTypeFileAnalysis, a.FilePath),
			Collection: collection,
			Content:    fmt.Sprintf("File %s: %s. Uses: %s", path.Base(a.FilePath), FlattenMarkdown(a.FilePurpose), strings.Join(a.Frameworks, ", ")),
			Metadata: map[string]string{
				"type":       models.DocTypeFileAnalysis,
				"level":      models.LevelFile,
				"repo_name":  repoName,
				"file_path":  a.FilePath,
				"frameworks": strings.Join(a.Frameworks, ","),
				"concepts":   strings.Join(a.Concepts, ","),
			},
			CreatedAt: now,
		})
	}

	return docs
}

// persist embeds the documents and replaces the collection contents
func (p *Pipeline) persist(ctx context.Context, runID, owner, repo string, summary models.ConceptSummary, analyses []models.FileAnalysis) (string, int, error) {
	if p.embedder == nil || p.store == nil {
		return "", 0, fmt.Errorf("vector store not configured")
	}

	collection := common.CollectionName(p.collectionPrefix, owner, repo)
	docs := BuildDocuments(collection, repo, summary, analyses)

	for i, doc := range docs {
		embedding, err := p.embedder.GenerateEmbedding(ctx, doc.Content)
		if err != nil {
			return "", 0, fmt.Errorf("failed to embed document %s: %w", doc.ID, err)
		}
		doc.Embedding = embedding

		p.publisher.Publish(models.ProgressEvent{
			RunID: runID,
			Stage: StagePersist,
			Done:  i + 1,
			Total: len(docs),
		})
	}

	meta := &models.Collection{
		Name:          collection,
		Owner:         owner,
		RepoName:      repo,
		DocumentCount: len(docs),
		Dimensions:    p.embedder.Dimension(),
		CreatedAt:     time.Now(),
	}
	if err := p.store.ReplaceCollection(ctx, meta, docs); err != nil {
		return "", 0, fmt.Errorf("failed to store collection %s: %w", collection, err)
	}

	return collection, len(docs), nil
}
