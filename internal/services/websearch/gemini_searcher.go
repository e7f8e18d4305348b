package websearch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/services/embeddings"
	"github.com/ternarybob/stackscout/internal/services/llm"
	"google.golang.org/genai"
)

// groundedCall runs one grounded generation; swapped out in tests
type groundedCall func(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error)

// GeminiSearcher issues web searches through Gemini's GoogleSearch grounding tool
type GeminiSearcher struct {
	source  embeddings.ClientSource
	model   string
	timeout time.Duration
	logger  arbor.ILogger
	call    groundedCall
}

// NewGeminiSearcher creates a searcher using the given search model
func NewGeminiSearcher(source embeddings.ClientSource, model string, timeout time.Duration, logger arbor.ILogger) *GeminiSearcher {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	s := &GeminiSearcher{
		source:  source,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
	s.call = s.generateGrounded
	return s
}

type resultPayload struct {
	Results []interfaces.WebResult `json:"results"`
}

// Search runs the query once. Errors are returned to the caller unchanged in kind;
// there is no retry.
func (s *GeminiSearcher) Search(ctx context.Context, query string, opts interfaces.WebSearchOptions) ([]interfaces.WebResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 10
	}

	prompt := buildSearchPrompt(query, opts, time.Now())

	s.logger.Debug().
		Str("query", query).
		Int("max_results", opts.MaxResults).
		Msg("Executing Gemini web search")

	searchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.call(searchCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("web search failed: %w", err)
	}

	results := parseResults(resp)
	if len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}

	s.logger.Info().
		Str("query", query).
		Int("results", len(results)).
		Msg("Web search completed")

	return results, nil
}

func buildSearchPrompt(query string, opts interfaces.WebSearchOptions, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a research assistant. Today's date is %s.\n", now.Format("January 2, 2006"))
	b.WriteString("Search the web for the following request.\n")
	if opts.RecencyDays > 0 {
		fmt.Fprintf(&b, "Only include pages published in the last %d days.\n", opts.RecencyDays)
	}
	fmt.Fprintf(&b, "Return at most %d results as JSON: {\"results\":[{\"url\":\"...\",\"title\":\"...\",\"description\":\"...\"}]}.\n", opts.MaxResults)
	b.WriteString("Use the real page URL for each result.\n\n")
	fmt.Fprintf(&b, "Request: %s", query)
	return b.String()
}

// parseResults prefers the model's JSON listing and falls back to the
// grounding sources when the reply is not parseable.
func parseResults(resp *genai.GenerateContentResponse) []interfaces.WebResult {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}

	var payload resultPayload
	if err := llm.DecodeJSON(resp.Text(), &payload); err == nil && len(payload.Results) > 0 {
		out := make([]interfaces.WebResult, 0, len(payload.Results))
		for _, r := range payload.Results {
			if strings.TrimSpace(r.URL) == "" {
				continue
			}
			out = append(out, r)
		}
		if len(out) > 0 {
			return out
		}
	}

	var out []interfaces.WebResult
	seen := make(map[string]bool)
	for _, cand := range resp.Candidates {
		gm := cand.GroundingMetadata
		if gm == nil {
			continue
		}
		for _, chunk := range gm.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
				continue
			}
			seen[chunk.Web.URI] = true
			out = append(out, interfaces.WebResult{
				URL:         chunk.Web.URI,
				Title:       chunk.Web.Title,
				Description: chunk.Web.Title,
			})
		}
	}
	return out
}

func (s *GeminiSearcher) generateGrounded(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	client, err := s.source.GetGeminiClient(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.source.GeminiLimiter().Wait(ctx); err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	return client.Models.GenerateContent(ctx, s.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		config,
	)
}

var _ interfaces.WebSearcher = (*GeminiSearcher)(nil)
