package models

import "time"

// Document types stored in a repository collection
const (
	DocTypeProjectSummary = "project_summary"
	DocTypeFileAnalysis   = "file_analysis"
	DocTypeConcept        = "concept"
)

// Document levels
const (
	LevelProject = "project"
	LevelFile    = "file"
	LevelConcept = "concept"
)

// VectorDocument is one embedded document in a collection
type VectorDocument struct {
	ID         string            `json:"id" badgerhold:"key"`
	Collection string            `json:"collection" badgerhold:"index"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Embedding  []float32         `json:"-"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Type returns the document type from metadata
func (d VectorDocument) Type() string {
	return d.Metadata["type"]
}

// Collection describes one repository-knowledge collection
type Collection struct {
	Name          string    `json:"name" badgerhold:"key"`
	Owner         string    `json:"owner"`
	RepoName      string    `json:"repo_name"`
	DocumentCount int       `json:"document_count"`
	Dimensions    int       `json:"dimensions"`
	CreatedAt     time.Time `json:"created_at"`
}

// ScoredDocument pairs a stored document with its distance to a query
type ScoredDocument struct {
	Document VectorDocument
	Score    float64
}

// SearchResult is one retrieved document; lower Score is more similar
type SearchResult struct {
	Content    string            `json:"content"`
	Score      float64           `json:"score"`
	Metadata   map[string]string `json:"metadata"`
	Type       string            `json:"type"`
	Collection string            `json:"collection_name,omitempty"`
}

// VectorSearchResponse is the response for a single-collection search
type VectorSearchResponse struct {
	Query          string         `json:"query"`
	Results        []SearchResult `json:"results"`
	CollectionName string         `json:"collection_name"`
	TotalResults   int            `json:"total_results"`
}

// SearchAllResponse is the response for a search across every collection.
// Results is flattened and ordered by ascending score.
type SearchAllResponse struct {
	Query                    string                          `json:"query"`
	Results                  []SearchResult                  `json:"results"`
	ResultsByCollection      map[string]VectorSearchResponse `json:"results_by_collection"`
	TotalCollectionsSearched int                             `json:"total_collections_searched"`
}

// RankedCollection is a collection with its best match for a query
type RankedCollection struct {
	CollectionName   string  `json:"collection_name"`
	RepoName         string  `json:"repo_name"`
	BestScore        float64 `json:"best_score"`
	BestMatchType    string  `json:"best_match_type"`
	BestMatchContent string  `json:"best_match_content"`
}

// CollectionInfo summarises a collection's contents
type CollectionInfo struct {
	CollectionName      string   `json:"collection_name"`
	RepoName            string   `json:"repo_name"`
	DocumentTypes       []string `json:"document_types"`
	SampleDocumentCount int      `json:"sample_document_count"`
}
