package jobsearch

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/services/llm"
)

// rawListing accepts both listing shapes agents produce: the full canonical
// record and the reduced {url, description} form
type rawListing struct {
	Title              string   `json:"title"`
	Company            string   `json:"company"`
	Location           string   `json:"location"`
	URL                string   `json:"url"`
	Link               string   `json:"link"`
	TechStack          []string `json:"tech_stack"`
	PostedDate         string   `json:"posted_date"`
	SalaryRange        string   `json:"salary_range"`
	DescriptionSnippet string   `json:"description_snippet"`
	Description        string   `json:"description"`
}

func (r rawListing) listing() models.JobListing {
	u := strings.TrimSpace(r.URL)
	if u == "" {
		u = strings.TrimSpace(r.Link)
	}
	snippet := strings.TrimSpace(r.DescriptionSnippet)
	if snippet == "" {
		snippet = strings.TrimSpace(r.Description)
	}
	return models.JobListing{
		Title:              strings.TrimSpace(r.Title),
		Company:            strings.TrimSpace(r.Company),
		Location:           strings.TrimSpace(r.Location),
		URL:                u,
		TechStack:          r.TechStack,
		PostedDate:         strings.TrimSpace(r.PostedDate),
		SalaryRange:        strings.TrimSpace(r.SalaryRange),
		DescriptionSnippet: snippet,
	}
}

type listingEnvelope struct {
	JobListings []rawListing `json:"job_listings"`
	Jobs        []rawListing `json:"jobs"`
	Results     []rawListing `json:"results"`
}

// ExtractListings pulls job listings out of agent output. It accepts a JSON
// array, an object carrying a job_listings, jobs or results array, a single
// listing object, or any of those embedded in free text. Entries without a
// valid http(s) URL are dropped. Unparseable text yields an empty slice.
func ExtractListings(text string) []models.JobListing {
	candidate := llm.ExtractJSON(text)
	if candidate == "" {
		return []models.JobListing{}
	}

	var raws []rawListing
	if strings.HasPrefix(candidate, "[") {
		if err := json.Unmarshal([]byte(candidate), &raws); err != nil {
			return []models.JobListing{}
		}
	} else {
		var env listingEnvelope
		if err := json.Unmarshal([]byte(candidate), &env); err != nil {
			return []models.JobListing{}
		}
		switch {
		case env.JobListings != nil:
			raws = env.JobListings
		case env.Jobs != nil:
			raws = env.Jobs
		case env.Results != nil:
			raws = env.Results
		default:
			var single rawListing
			if err := json.Unmarshal([]byte(candidate), &single); err == nil {
				raws = []rawListing{single}
			}
		}
	}

	listings := make([]models.JobListing, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	for _, r := range raws {
		l := r.listing()
		if !isHTTPURL(l.URL) || seen[l.URL] {
			continue
		}
		seen[l.URL] = true
		listings = append(listings, l)
	}
	return listings
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
