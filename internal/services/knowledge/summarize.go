package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/services/llm"
)

const (
	topFrameworkCount = 10
	topConceptCount   = 15
	topPatternCount   = 5
	samplePurposes    = 10
	techStackFallback = 10
)

const emptyRepositoryOverview = "No analyzable files found"

var summarySchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"architecture_overview": map[string]interface{}{
			"type":        "string",
			"description": "Overall project architecture summary",
		},
		"tech_stack": map[string]interface{}{
			"type":        "array",
			"description": "Main technologies used",
			"items":       map[string]interface{}{"type": "string"},
		},
	},
	"required": []interface{}{"architecture_overview", "tech_stack"},
}

type summaryReply struct {
	ArchitectureOverview string   `json:"architecture_overview"`
	TechStack            []string `json:"tech_stack"`
}

// tally counts occurrences while remembering first-seen order for ties
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(names ...string) {
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := t.counts[n]; !ok {
			t.order = append(t.order, n)
		}
		t.counts[n]++
	}
}

// top returns the n most frequent names, ties broken by first appearance
func (t *tally) top(n int) []models.FrequencyCount {
	out := make([]models.FrequencyCount, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, models.FrequencyCount{Name: name, Count: t.counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func (t *tally) firstSeen(n int) []string {
	if len(t.order) <= n {
		return append([]string{}, t.order...)
	}
	return append([]string{}, t.order[:n]...)
}

func formatCounts(counts []models.FrequencyCount) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s: %d", c.Name, c.Count))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Summarize reduces file analyses into a ConceptSummary. Tallies are always
// computed locally; the classifier only contributes the narrative overview
// and tech stack, and any failure falls back to a tally-only summary.
func (p *Pipeline) Summarize(ctx context.Context, analyses []models.FileAnalysis) models.ConceptSummary {
	frameworks, concepts, patterns := newTally(), newTally(), newTally()
	purposes := make([]string, 0, samplePurposes)

	for _, a := range analyses {
		// Raw imports include stdlib and helpers; only registry-known names are tallied
		if analysisFailed(a) {
			frameworks.add(p.registry.FrameworksIn(a.Frameworks)...)
		} else {
			frameworks.add(a.Frameworks...)
		}
		frameworks.add(p.registry.FrameworksIn(a.StaticFrameworks)...)
		concepts.add(a.Concepts...)
		patterns.add(a.ArchitecturePatterns...)
		if len(purposes) < samplePurposes {
			purposes = append(purposes, a.FilePurpose)
		}
	}

	summary := models.ConceptSummary{
		TopFrameworks: frameworks.top(topFrameworkCount),
		KeyConcepts:   concepts.top(topConceptCount),
		Patterns:      patterns.top(topPatternCount),
		TechStack:     frameworks.firstSeen(techStackFallback),
	}

	if len(analyses) == 0 {
		summary.ArchitectureOverview = emptyRepositoryOverview
		return summary
	}

	summary.ArchitectureOverview = fmt.Sprintf("Analysis of %d files completed with some errors", len(analyses))

	if p.classifier == nil {
		return summary
	}

	prompt := fmt.Sprintf(`Based on the analysis of %d files, create a comprehensive project summary:

Most used frameworks: %s
Key concepts found: %s
Architecture patterns: %s

Sample file purposes:
%s

Provide:
1. Overall architecture description
2. Main tech stack summary`,
		len(analyses),
		formatCounts(summary.TopFrameworks),
		formatCounts(summary.KeyConcepts),
		formatCounts(summary.Patterns),
		strings.Join(purposes, "\n"))

	resp, err := p.classifier.GenerateContent(ctx, &interfaces.ContentRequest{
		Messages:     []interfaces.Message{{Role: "user", Content: prompt}},
		OutputSchema: summarySchema,
	})
	if err != nil {
		p.logger.Warn().Err(err).Msg("Summary generation failed, using tally-only summary")
		return summary
	}

	var reply summaryReply
	if err := llm.DecodeJSON(resp.Text, &reply); err != nil || strings.TrimSpace(reply.ArchitectureOverview) == "" {
		p.logger.Warn().Err(err).Msg("Summary response unreadable, using tally-only summary")
		return summary
	}

	summary.ArchitectureOverview = strings.TrimSpace(reply.ArchitectureOverview)
	if stack := nonNil(reply.TechStack); len(stack) > 0 {
		summary.TechStack = stack
	}
	summary.Narrative = true
	return summary
}
