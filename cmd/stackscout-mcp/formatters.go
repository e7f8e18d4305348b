package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/stackscout/internal/models"
)

const previewChars = 400

func preview(content string) string {
	content = strings.TrimSpace(content)
	if len(content) > previewChars {
		return content[:previewChars] + "..."
	}
	return content
}

// formatExamples formats the closest matches for a topic as markdown
func formatExamples(topic string, results []models.SearchResult, limit int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Examples of \"%s\"\n\n", topic))

	if len(results) == 0 {
		sb.WriteString("No examples found in any extracted repository.\n")
		return sb.String()
	}

	if len(results) > limit {
		results = results[:limit]
	}

	for i, r := range results {
		repo := r.Metadata["repo_name"]
		if repo == "" {
			repo = r.Collection
		}
		sb.WriteString(fmt.Sprintf("### %d. %s", i+1, repo))
		if path := r.Metadata["file_path"]; path != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", path))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("**Type:** %s | **Score:** %.3f\n\n", r.Type, r.Score))
		sb.WriteString(preview(r.Content))
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}

// formatSearchAll formats a cross-collection search grouped by collection
func formatSearchAll(response *models.SearchAllResponse) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Results for \"%s\" (%d results in %d collections)\n\n",
		response.Query, len(response.Results), response.TotalCollectionsSearched))

	if len(response.Results) == 0 {
		sb.WriteString("No results found in any collection.\n")
		return sb.String()
	}

	names := make([]string, 0, len(response.ResultsByCollection))
	for name := range response.ResultsByCollection {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		resp := response.ResultsByCollection[name]
		sb.WriteString(fmt.Sprintf("### %s (%d)\n\n", name, resp.TotalResults))
		for _, r := range resp.Results {
			sb.WriteString(fmt.Sprintf("- [%s, %.3f] %s\n", r.Type, r.Score, strings.ReplaceAll(preview(r.Content), "\n", " ")))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatCollections formats collection details as markdown
func formatCollections(infos []*models.CollectionInfo) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Collections (%d)\n\n", len(infos)))

	if len(infos) == 0 {
		sb.WriteString("No collections found. Extract a repository first.\n")
		return sb.String()
	}

	for _, info := range infos {
		sb.WriteString(fmt.Sprintf("- **%s**", info.CollectionName))
		if info.RepoName != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", info.RepoName))
		}
		if len(info.DocumentTypes) > 0 {
			sb.WriteString(fmt.Sprintf(": %s", strings.Join(info.DocumentTypes, ", ")))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRepos formats scan records as a markdown table
func formatRepos(username string, records []models.RepoRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Repositories of %s (%d)\n\n", username, len(records)))

	if len(records) == 0 {
		sb.WriteString("No public repositories found.\n")
		return sb.String()
	}

	sb.WriteString("| Repository | Languages | Frameworks |\n")
	sb.WriteString("|------------|-----------|------------|\n")
	for _, r := range records {
		languages := r.LanguageNames()
		sort.Strings(languages)
		sb.WriteString(fmt.Sprintf("| [%s](%s) | %s | %s |\n",
			r.RepoName, r.RepoURL, strings.Join(languages, ", "), strings.Join(r.Frameworks, ", ")))
	}

	return sb.String()
}
