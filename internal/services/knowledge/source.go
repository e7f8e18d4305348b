package knowledge

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/ternarybob/stackscout/internal/interfaces"
)

// FileSource lists and reads the files of one repository
type FileSource interface {
	// ListFiles returns every candidate file path, slash-separated and
	// relative to the repository root
	ListFiles(ctx context.Context) ([]string, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

var relevantExtensions = map[string]struct{}{
	".py": {}, ".js": {}, ".ts": {}, ".tsx": {}, ".jsx": {}, ".java": {}, ".cpp": {},
	".c": {}, ".h": {}, ".go": {}, ".rs": {}, ".php": {}, ".rb": {}, ".swift": {},
	".kt": {}, ".dart": {}, ".vue": {}, ".json": {}, ".yaml": {}, ".yml": {},
	".toml": {}, ".md": {},
}

var skipDirs = map[string]struct{}{
	"node_modules":  {},
	".git":          {},
	"__pycache__":   {},
	".venv":         {},
	"venv":          {},
	"env":           {},
	"build":         {},
	"dist":          {},
	".next":         {},
	"target":        {},
	"vendor":        {},
	".pytest_cache": {},
}

// IsRelevant reports whether a path has an analyzable extension and no
// excluded directory component
func IsRelevant(p string) bool {
	p = filepath.ToSlash(p)
	if _, ok := relevantExtensions[strings.ToLower(path.Ext(p))]; !ok {
		return false
	}
	dir := path.Dir(p)
	if dir == "." {
		return true
	}
	for _, part := range strings.Split(dir, "/") {
		if _, skip := skipDirs[part]; skip {
			return false
		}
	}
	return true
}

// DiscoverFiles filters a source's listing to relevant files, sorted, capped
// at maxFiles when positive
func DiscoverFiles(ctx context.Context, source FileSource, maxFiles int) ([]string, error) {
	all, err := source.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	seen := make(map[string]struct{}, len(all))
	files := make([]string, 0, len(all))
	for _, f := range all {
		f = filepath.ToSlash(f)
		if _, dup := seen[f]; dup || !IsRelevant(f) {
			continue
		}
		seen[f] = struct{}{}
		files = append(files, f)
	}
	sort.Strings(files)

	if maxFiles > 0 && len(files) > maxFiles {
		files = files[:maxFiles]
	}
	return files, nil
}

// LocalSource reads a checked-out repository from disk, honouring its root .gitignore
type LocalSource struct {
	root     string
	maxBytes int64
}

// NewLocalSource creates a source rooted at dir. Files larger than maxBytes
// are skipped when maxBytes is positive.
func NewLocalSource(dir string, maxBytes int) (*LocalSource, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("repository path %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository path %s is not a directory", dir)
	}
	return &LocalSource{root: abs, maxBytes: int64(maxBytes)}, nil
}

// Root returns the absolute repository directory
func (s *LocalSource) Root() string {
	return s.root
}

func (s *LocalSource) ListFiles(ctx context.Context) ([]string, error) {
	gi, _ := ignore.CompileIgnoreFile(filepath.Join(s.root, ".gitignore"))

	var files []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(s.root, p)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		if s.maxBytes > 0 {
			if info, infoErr := d.Info(); infoErr == nil && info.Size() > s.maxBytes {
				return nil
			}
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *LocalSource) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full := filepath.Join(s.root, filepath.FromSlash(p))
	if !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return nil, fmt.Errorf("path %s escapes repository root", p)
	}
	return os.ReadFile(full)
}

// GitHubSource reads a repository through the hosting API
type GitHubSource struct {
	host  interfaces.RepositoryHost
	owner string
	repo  string
}

// NewGitHubSource creates a source for owner/repo
func NewGitHubSource(host interfaces.RepositoryHost, owner, repo string) *GitHubSource {
	return &GitHubSource{host: host, owner: owner, repo: repo}
}

func (s *GitHubSource) ListFiles(ctx context.Context) ([]string, error) {
	return s.host.ListTree(ctx, s.owner, s.repo)
}

func (s *GitHubSource) ReadFile(ctx context.Context, p string) ([]byte, error) {
	return s.host.GetFileContent(ctx, s.owner, s.repo, p)
}
