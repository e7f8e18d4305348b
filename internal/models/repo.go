package models

// RepoRecord is the per-repository result of a scan. Built fresh for each request.
type RepoRecord struct {
	RepoName      string         `json:"repo_name"`
	RepoURL       string         `json:"repo_url"`
	Description   string         `json:"description,omitempty"`
	DefaultBranch string         `json:"default_branch,omitempty"`
	Languages     map[string]int `json:"languages"`
	Frameworks    []string       `json:"frameworks"`
	Dependencies  []string       `json:"dependencies,omitempty"`
}

// LanguageNames returns the language keys of the record
func (r RepoRecord) LanguageNames() []string {
	names := make([]string, 0, len(r.Languages))
	for name := range r.Languages {
		names = append(names, name)
	}
	return names
}
