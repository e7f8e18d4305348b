package jobsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/services/llm"
)

// Stage names in pipeline order
const (
	StageSearcher    = "searcher"
	StageAnalyzer    = "analyzer"
	StageFormatter   = "formatter"
	StageSendResults = "send_results"
)

// ErrWebSearchFailed marks a run that ended because the web search failed
var ErrWebSearchFailed = errors.New("web search failed")

// RunState is the shared blackboard the stages read and write
type RunState struct {
	Criteria models.SearchCriteria
	Results  []interfaces.WebResult
	Listings []models.JobListing
}

// Stage is one agent of the pipeline
type Stage interface {
	Name() string
	Run(ctx context.Context, state *RunState) error
}

// SearcherStage issues exactly one web search
type SearcherStage struct {
	searcher    interfaces.WebSearcher
	maxResults  int
	recencyDays int
	logger      arbor.ILogger
}

func NewSearcherStage(searcher interfaces.WebSearcher, maxResults, recencyDays int, logger arbor.ILogger) *SearcherStage {
	if maxResults <= 0 {
		maxResults = 10
	}
	if recencyDays <= 0 {
		recencyDays = 30
	}
	return &SearcherStage{searcher: searcher, maxResults: maxResults, recencyDays: recencyDays, logger: logger}
}

func (s *SearcherStage) Name() string { return StageSearcher }

func (s *SearcherStage) Run(ctx context.Context, state *RunState) error {
	query := BuildQuery(state.Criteria, s.maxResults, s.recencyDays)

	results, err := s.searcher.Search(ctx, query, interfaces.WebSearchOptions{
		MaxResults:  s.maxResults,
		RecencyDays: s.recencyDays,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWebSearchFailed, err)
	}

	state.Results = results
	state.Listings = make([]models.JobListing, 0, len(results))
	for _, r := range results {
		if !isHTTPURL(r.URL) {
			continue
		}
		state.Listings = append(state.Listings, models.JobListing{
			Title:              r.Title,
			URL:                r.URL,
			DescriptionSnippet: r.Description,
		})
	}

	s.logger.Info().Int("results", len(results)).Msg("Job web search completed")
	return nil
}

// AnalyzerStage removes results that are not job postings and keeps the top N
type AnalyzerStage struct {
	llm    interfaces.LLMService
	topN   int
	logger arbor.ILogger
}

func NewAnalyzerStage(llmService interfaces.LLMService, topN int, logger arbor.ILogger) *AnalyzerStage {
	if topN <= 0 {
		topN = 5
	}
	return &AnalyzerStage{llm: llmService, topN: topN, logger: logger}
}

func (s *AnalyzerStage) Name() string { return StageAnalyzer }

type urlDescription struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

const analyzerInstruction = `Input: a JSON array of web search results.
1. Only filter out non-posting URLs, keep the rest.
2. Take the first %d.
3. Return a JSON array of {"url", "description"} objects and nothing else.`

// Run asks the classifier which results are postings. Any classifier
// failure falls back to FilterPostings. Only URLs from the search results
// survive, in their original order.
func (s *AnalyzerStage) Run(ctx context.Context, state *RunState) error {
	if len(state.Listings) == 0 {
		return nil
	}

	if s.llm == nil {
		state.Listings = FilterPostings(state.Listings, s.topN)
		return nil
	}

	input := make([]urlDescription, 0, len(state.Listings))
	for _, l := range state.Listings {
		input = append(input, urlDescription{URL: l.URL, Description: l.DescriptionSnippet})
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to encode search results: %w", err)
	}

	resp, err := s.llm.GenerateContent(ctx, &interfaces.ContentRequest{
		SystemInstruction: fmt.Sprintf(analyzerInstruction, s.topN),
		Messages:          []interfaces.Message{{Role: "user", Content: string(payload)}},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Analyzer failed, using heuristic posting filter")
		state.Listings = FilterPostings(state.Listings, s.topN)
		return nil
	}

	kept := make(map[string]bool)
	for _, l := range ExtractListings(resp.Text) {
		kept[l.URL] = true
	}

	filtered := make([]models.JobListing, 0, s.topN)
	for _, l := range state.Listings {
		if kept[l.URL] && len(filtered) < s.topN {
			filtered = append(filtered, l)
		}
	}
	if len(filtered) == 0 {
		s.logger.Warn().Msg("Analyzer kept no search results, using heuristic posting filter")
		filtered = FilterPostings(state.Listings, s.topN)
	}
	state.Listings = filtered
	return nil
}

var postingHosts = []string{
	"greenhouse.io",
	"lever.co",
	"ashbyhq.com",
	"workable.com",
	"smartrecruiters.com",
	"myworkdayjobs.com",
	"bamboohr.com",
	"recruitee.com",
	"wellfound.com",
	"weworkremotely.com",
	"remoteok.com",
	"seek.com.au",
}

var postingPathTokens = []string{
	"job", "jobs", "career", "careers", "position", "positions",
	"opening", "openings", "vacancy", "vacancies", "apply", "viewjob",
}

// IsPostingURL reports whether a URL looks like a job posting rather than an
// article, search page or home page
func IsPostingURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}

	host := strings.ToLower(strings.TrimPrefix(u.Host, "www."))
	for _, h := range postingHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return strings.Trim(u.Path, "/") != ""
		}
	}

	for _, segment := range strings.FieldsFunc(strings.ToLower(u.Path), func(r rune) bool {
		return r == '/' || r == '-' || r == '_' || r == '.'
	}) {
		for _, token := range postingPathTokens {
			if segment == token {
				return true
			}
		}
	}
	return strings.HasPrefix(host, "jobs.") || strings.HasPrefix(host, "careers.")
}

// FilterPostings keeps posting URLs in order, up to n
func FilterPostings(listings []models.JobListing, n int) []models.JobListing {
	out := make([]models.JobListing, 0, n)
	for _, l := range listings {
		if len(out) == n {
			break
		}
		if IsPostingURL(l.URL) {
			out = append(out, l)
		}
	}
	return out
}

// FormatterStage enriches each listing from its posting page and shapes the
// canonical listing fields
type FormatterStage struct {
	fetcher PageFetcher
	llm     interfaces.LLMService
	logger  arbor.ILogger
}

func NewFormatterStage(fetcher PageFetcher, llmService interfaces.LLMService, logger arbor.ILogger) *FormatterStage {
	return &FormatterStage{fetcher: fetcher, llm: llmService, logger: logger}
}

func (s *FormatterStage) Name() string { return StageFormatter }

var listingSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"title":               map[string]interface{}{"type": "string"},
		"company":             map[string]interface{}{"type": "string"},
		"location":            map[string]interface{}{"type": "string"},
		"tech_stack":          map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"posted_date":         map[string]interface{}{"type": "string"},
		"salary_range":        map[string]interface{}{"type": "string"},
		"description_snippet": map[string]interface{}{"type": "string"},
	},
	"required": []interface{}{"title", "company", "location", "tech_stack"},
}

func (s *FormatterStage) Run(ctx context.Context, state *RunState) error {
	for i := range state.Listings {
		if err := ctx.Err(); err != nil {
			return err
		}
		state.Listings[i] = s.format(ctx, state.Criteria, state.Listings[i])
	}
	return nil
}

// format never fails; on any error the listing keeps its url and description
func (s *FormatterStage) format(ctx context.Context, criteria models.SearchCriteria, listing models.JobListing) models.JobListing {
	var page *Page
	if s.fetcher != nil {
		p, err := s.fetcher.Fetch(ctx, listing.URL)
		if err != nil {
			s.logger.Debug().Err(err).Str("url", listing.URL).Msg("Posting page unavailable")
		} else {
			page = p
		}
	}

	if page != nil {
		if listing.Title == "" {
			listing.Title = page.Title
		}
		if listing.DescriptionSnippet == "" {
			listing.DescriptionSnippet = page.Description
		}
	}

	if s.llm == nil {
		return listing
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Candidate tech stack: %s\n", strings.Join(criteria.TechStack, ", "))
	fmt.Fprintf(&b, "URL: %s\n", listing.URL)
	fmt.Fprintf(&b, "Title: %s\n", listing.Title)
	fmt.Fprintf(&b, "Description: %s\n", listing.DescriptionSnippet)
	if page != nil && page.Markdown != "" {
		fmt.Fprintf(&b, "\nPosting content:\n%s\n", page.Markdown)
	}
	b.WriteString("\nExtract the job listing fields. Use an empty string for anything the posting does not state. " +
		"tech_stack lists the technologies the posting requires. description_snippet is at most two sentences.")

	resp, err := s.llm.GenerateContent(ctx, &interfaces.ContentRequest{
		Messages:     []interfaces.Message{{Role: "user", Content: b.String()}},
		OutputSchema: listingSchema,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("url", listing.URL).Msg("Formatter failed, keeping raw listing")
		return listing
	}

	var shaped rawListing
	if err := llm.DecodeJSON(resp.Text, &shaped); err != nil {
		s.logger.Warn().Err(err).Str("url", listing.URL).Msg("Formatter reply unreadable, keeping raw listing")
		return listing
	}

	out := shaped.listing()
	out.URL = listing.URL
	if out.Title == "" {
		out.Title = listing.Title
	}
	if out.DescriptionSnippet == "" {
		out.DescriptionSnippet = listing.DescriptionSnippet
	}
	return out
}
