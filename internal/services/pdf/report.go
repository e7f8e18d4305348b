package pdf

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/stackscout/internal/models"
)

// TechProfileMarkdown renders a user's scanned repositories as a report
func TechProfileMarkdown(username string, records []models.RepoRecord, generated time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Tech profile: %s\n\n", username)
	fmt.Fprintf(&b, "Generated %s from %d repositories.\n\n", generated.UTC().Format("2006-01-02 15:04 MST"), len(records))

	langBytes := make(map[string]int)
	frameworkRepos := make(map[string]int)
	for _, r := range records {
		for lang, n := range r.Languages {
			langBytes[lang] += n
		}
		for _, f := range r.Frameworks {
			frameworkRepos[f]++
		}
	}

	if len(langBytes) > 0 {
		b.WriteString("## Languages\n\n| Language | Bytes | Share |\n|----------|-------|-------|\n")
		total := 0
		for _, n := range langBytes {
			total += n
		}
		for _, lang := range sortedByValue(langBytes) {
			fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", lang, langBytes[lang], 100*float64(langBytes[lang])/float64(total))
		}
		b.WriteString("\n")
	}

	if len(frameworkRepos) > 0 {
		b.WriteString("## Frameworks\n\n")
		for _, f := range sortedByValue(frameworkRepos) {
			fmt.Fprintf(&b, "- **%s** (%d %s)\n", f, frameworkRepos[f], plural(frameworkRepos[f], "repository", "repositories"))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Repositories\n\n")
	if len(records) == 0 {
		b.WriteString("No repositories found.\n")
		return b.String()
	}
	b.WriteString("| Repository | Languages | Frameworks |\n|------------|-----------|------------|\n")
	for _, r := range records {
		langs := r.LanguageNames()
		sort.Strings(langs)
		fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(r.RepoName), cell(strings.Join(langs, ", ")), cell(strings.Join(r.Frameworks, ", ")))
	}
	return b.String()
}

// JobResultsMarkdown renders a job-search run as a report
func JobResultsMarkdown(result *models.JobSearchResult) string {
	var b strings.Builder
	b.WriteString("# Job search results\n\n")
	fmt.Fprintf(&b, "- **Tech stack:** %s\n", strings.Join(result.SearchCriteria.TechStack, ", "))
	fmt.Fprintf(&b, "- **Location:** %s\n", result.SearchCriteria.Location)
	fmt.Fprintf(&b, "- **Experience:** %s\n", result.SearchCriteria.ExperienceLevel)
	fmt.Fprintf(&b, "- **Searched:** %s\n\n", result.SearchDate.UTC().Format("2006-01-02"))

	if len(result.JobListings) == 0 {
		b.WriteString("No matching postings found.\n")
		return b.String()
	}

	for i, l := range result.JobListings {
		title := l.Title
		if title == "" {
			title = "Untitled posting"
		}
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, title)
		if l.Company != "" {
			fmt.Fprintf(&b, "- **Company:** %s\n", l.Company)
		}
		if l.Location != "" {
			fmt.Fprintf(&b, "- **Location:** %s\n", l.Location)
		}
		if l.SalaryRange != "" {
			fmt.Fprintf(&b, "- **Salary:** %s\n", l.SalaryRange)
		}
		if len(l.TechStack) > 0 {
			fmt.Fprintf(&b, "- **Stack:** %s\n", strings.Join(l.TechStack, ", "))
		}
		fmt.Fprintf(&b, "- **Link:** <%s>\n\n", l.URL)
		if l.DescriptionSnippet != "" {
			fmt.Fprintf(&b, "%s\n\n", l.DescriptionSnippet)
		}
	}
	return b.String()
}

func sortedByValue(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] == m[keys[j]] {
			return keys[i] < keys[j]
		}
		return m[keys[i]] > m[keys[j]]
	})
	return keys
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", "/")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
