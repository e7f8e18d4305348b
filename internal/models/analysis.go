package models

import "time"

// FileAnalysis is the classification of one source file
type FileAnalysis struct {
	FilePath             string   `json:"file_path"`
	FileType             string   `json:"file_type"`
	Frameworks           []string `json:"frameworks"`
	Concepts             []string `json:"concepts"`
	ArchitecturePatterns []string `json:"architecture_patterns"`
	FilePurpose          string   `json:"file_purpose"`
	StaticFrameworks     []string `json:"static_frameworks"`
}

// FrequencyCount is one entry of a frequency-ranked tally
type FrequencyCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ConceptSummary is the reduced view of all FileAnalysis records for one repository
type ConceptSummary struct {
	TopFrameworks        []FrequencyCount `json:"top_frameworks"`
	KeyConcepts          []FrequencyCount `json:"key_concepts"`
	Patterns             []FrequencyCount `json:"architecture_patterns"`
	ArchitectureOverview string           `json:"architecture_overview"`
	TechStack            []string         `json:"tech_stack"`
	Narrative            bool             `json:"narrative"` // false when built from tallies only
}

// ExtractionResult is returned by a knowledge extraction run
type ExtractionResult struct {
	RunID        string         `json:"run_id"`
	Owner        string         `json:"owner"`
	Repo         string         `json:"repo"`
	FilesFound   int            `json:"files_found"`
	Analyses     []FileAnalysis `json:"file_analyses"`
	Summary      ConceptSummary `json:"summary"`
	Collection   string         `json:"collection"` // empty when persistence failed
	Documents    int            `json:"documents"`
	PersistError string         `json:"persist_error,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	Duration     time.Duration  `json:"duration"`
}

// ProgressEvent reports pipeline progress to observers
type ProgressEvent struct {
	RunID string `json:"run_id"`
	Stage string `json:"stage"`
	File  string `json:"file,omitempty"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
	Error string `json:"error,omitempty"`
}
