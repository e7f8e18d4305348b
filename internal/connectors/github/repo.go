package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/go-github/v57/github"

	"github.com/ternarybob/stackscout/internal/interfaces"
)

// ListUserRepos returns every public repository of a user, following pagination
func (c *Connector) ListUserRepos(ctx context.Context, username string) ([]interfaces.RepositoryInfo, error) {
	var all []interfaces.RepositoryInfo

	opts := &github.RepositoryListOptions{
		ListOptions: github.ListOptions{PerPage: c.perPage},
	}

	for {
		repos, resp, err := c.client.Repositories.List(ctx, username, opts)
		if err != nil {
			return nil, wrapError("failed to list repositories", err)
		}

		for _, r := range repos {
			owner := username
			if r.Owner != nil && r.Owner.GetLogin() != "" {
				owner = r.Owner.GetLogin()
			}
			all = append(all, interfaces.RepositoryInfo{
				Owner:         owner,
				Name:          r.GetName(),
				HTMLURL:       r.GetHTMLURL(),
				Description:   r.GetDescription(),
				DefaultBranch: r.GetDefaultBranch(),
				Fork:          r.GetFork(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// ListLanguages returns the language byte counts of a repository
func (c *Connector) ListLanguages(ctx context.Context, owner, repo string) (map[string]int, error) {
	key := "languages:" + owner + "/" + repo
	if v, ok := c.cached(key); ok {
		return v.(map[string]int), nil
	}

	languages, _, err := c.client.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		return nil, wrapError("failed to list languages", err)
	}
	if languages == nil {
		languages = map[string]int{}
	}

	c.store(key, languages)
	return languages, nil
}

// ListTree returns every blob path of the recursive tree at HEAD
func (c *Connector) ListTree(ctx context.Context, owner, repo string) ([]string, error) {
	key := "tree:" + owner + "/" + repo
	if v, ok := c.cached(key); ok {
		return v.([]string), nil
	}

	tree, _, err := c.client.Git.GetTree(ctx, owner, repo, "HEAD", true)
	if err != nil {
		return nil, wrapError("failed to get tree", err)
	}

	if tree.GetTruncated() && c.logger != nil {
		c.logger.Warn().
			Str("repo", owner+"/"+repo).
			Int("entries", len(tree.Entries)).
			Msg("Repository tree truncated by API")
	}

	paths := make([]string, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		// Skip directories and submodules
		if entry.GetType() != "blob" {
			continue
		}
		paths = append(paths, entry.GetPath())
	}

	c.store(key, paths)
	return paths, nil
}

// GetFileContent fetches and base64-decodes a single file at HEAD.
// Bodies are never cached; callers read each file once per run.
func (c *Connector) GetFileContent(ctx context.Context, owner, repo, path string) ([]byte, error) {
	content, _, _, err := c.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return nil, wrapError("failed to get file content", err)
	}

	if content == nil {
		return nil, fmt.Errorf("%s is a directory: %w", path, ErrNotFound)
	}

	if content.Content == nil {
		return []byte{}, nil
	}

	if enc := content.GetEncoding(); enc != "" && !strings.EqualFold(enc, "base64") {
		return []byte(*content.Content), nil
	}

	decoded, err := base64.StdEncoding.DecodeString(*content.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode content of %s: %w", path, err)
	}

	return decoded, nil
}
