package interfaces

import (
	"context"
)

// RepositoryInfo is the subset of repository metadata the scanner needs
type RepositoryInfo struct {
	Owner         string
	Name          string
	HTMLURL       string
	Description   string
	DefaultBranch string
	Fork          bool
}

// RepositoryHost is the read-only view of the repository-hosting API
type RepositoryHost interface {
	ListUserRepos(ctx context.Context, username string) ([]RepositoryInfo, error)
	ListLanguages(ctx context.Context, owner, repo string) (map[string]int, error)
	// ListTree returns every blob path of the recursive tree at HEAD
	ListTree(ctx context.Context, owner, repo string) ([]string, error)
	// GetFileContent returns the decoded file content
	GetFileContent(ctx context.Context, owner, repo, path string) ([]byte, error)
}
