package jobsearch

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ternarybob/stackscout/internal/models"
)

const (
	DefaultLocation        = "remote"
	DefaultExperienceLevel = "mid-level"
)

// Normalize trims the criteria, drops empty or duplicate technologies and
// fills the location and experience defaults
func Normalize(c models.SearchCriteria) models.SearchCriteria {
	out := models.SearchCriteria{
		Location:        strings.TrimSpace(c.Location),
		ExperienceLevel: strings.TrimSpace(c.ExperienceLevel),
		Role:            strings.TrimSpace(c.Role),
		TechStack:       []string{},
	}
	if out.Location == "" {
		out.Location = DefaultLocation
	}
	if out.ExperienceLevel == "" {
		out.ExperienceLevel = DefaultExperienceLevel
	}

	seen := make(map[string]bool)
	for _, t := range c.TechStack {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out.TechStack = append(out.TechStack, t)
	}
	return out
}

// CriteriaFromRepos builds a tech stack from scanned repositories: every
// language and framework, lowercased, most widely used first
func CriteriaFromRepos(records []models.RepoRecord) models.SearchCriteria {
	counts := make(map[string]int)
	var order []string
	add := func(name string) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return
		}
		if _, ok := counts[name]; !ok {
			order = append(order, name)
		}
		counts[name]++
	}

	for _, r := range records {
		langs := r.LanguageNames()
		sort.Strings(langs)
		for _, l := range langs {
			add(l)
		}
		for _, f := range r.Frameworks {
			add(f)
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	return Normalize(models.SearchCriteria{TechStack: order})
}

// LoadProfile reads search criteria from a YAML profile:
//
//	tech_stack: [go, postgresql]
//	location: remote
//	experience_level: senior
//	role: backend engineer
func LoadProfile(path string) (models.SearchCriteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.SearchCriteria{}, fmt.Errorf("failed to read search profile %s: %w", path, err)
	}

	var c models.SearchCriteria
	if err := yaml.Unmarshal(data, &c); err != nil {
		return models.SearchCriteria{}, fmt.Errorf("failed to parse search profile %s: %w", path, err)
	}
	c = Normalize(c)
	if len(c.TechStack) == 0 {
		return models.SearchCriteria{}, fmt.Errorf("search profile %s has an empty tech_stack", path)
	}
	return c, nil
}

// BuildQuery renders the single web-search request for the criteria
func BuildQuery(c models.SearchCriteria, maxResults, recencyDays int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find %d %s tech job listings for developers with these skills:\n", maxResults, c.ExperienceLevel)
	fmt.Fprintf(&b, "- Tech Stack: %s\n", strings.Join(c.TechStack, ", "))
	fmt.Fprintf(&b, "- Location: %s\n", c.Location)
	if c.Role != "" {
		fmt.Fprintf(&b, "- Role: %s\n", c.Role)
	}
	b.WriteString("\nRequirements:\n")
	b.WriteString("1. Find ACTUAL job postings with direct application links\n")
	b.WriteString("2. Jobs should require most of the specified technologies\n")
	b.WriteString("3. Include a mix of companies (startups, mid-size, enterprise)\n")
	fmt.Fprintf(&b, "4. Only postings from the last %d days\n", recencyDays)
	b.WriteString("5. Include salary information when available")
	return b.String()
}
