package jobsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractListings_Shapes(t *testing.T) {
	tests := []struct {
		name string
		text string
		urls []string
	}{
		{
			name: "array",
			text: `[{"url":"https://a.example.com/jobs/1","description":"first"},{"url":"https://b.example.com/jobs/2"}]`,
			urls: []string{"https://a.example.com/jobs/1", "https://b.example.com/jobs/2"},
		},
		{
			name: "job_listings envelope",
			text: `{"job_listings":[{"title":"Go Dev","url":"https://a.example.com/jobs/1"}]}`,
			urls: []string{"https://a.example.com/jobs/1"},
		},
		{
			name: "jobs envelope",
			text: `{"jobs":[{"link":"https://a.example.com/careers/7"}]}`,
			urls: []string{"https://a.example.com/careers/7"},
		},
		{
			name: "embedded in prose",
			text: "Here are the jobs I found:\n```json\n[{\"url\":\"https://a.example.com/jobs/1\"}]\n```\nGood luck!",
			urls: []string{"https://a.example.com/jobs/1"},
		},
		{
			name: "single object",
			text: `{"url":"https://a.example.com/jobs/9","title":"SRE"}`,
			urls: []string{"https://a.example.com/jobs/9"},
		},
		{
			name: "drops invalid and duplicate urls",
			text: `[{"url":"ftp://a.example.com/x"},{"url":""},{"url":"https://a.example.com/jobs/1"},{"url":"https://a.example.com/jobs/1"}]`,
			urls: []string{"https://a.example.com/jobs/1"},
		},
		{name: "free text", text: "I could not find any jobs.", urls: []string{}},
		{name: "broken json", text: `[{"url": "https://a.example.com"`, urls: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listings := ExtractListings(tt.text)
			require.NotNil(t, listings)
			urls := []string{}
			for _, l := range listings {
				urls = append(urls, l.URL)
			}
			assert.Equal(t, tt.urls, urls)
		})
	}
}

func TestExtractListings_ReducedShapeMapsDescription(t *testing.T) {
	listings := ExtractListings(`[{"url":"https://a.example.com/jobs/1","description":"Remote Go role"}]`)
	require.Len(t, listings, 1)
	assert.Equal(t, "Remote Go role", listings[0].DescriptionSnippet)
}

func TestIsPostingURL(t *testing.T) {
	assert.True(t, IsPostingURL("https://boards.greenhouse.io/acme/jobs/123"))
	assert.True(t, IsPostingURL("https://jobs.lever.co/globex/abc-def"))
	assert.True(t, IsPostingURL("https://www.example.com/careers/senior-go-engineer"))
	assert.True(t, IsPostingURL("https://jobs.example.com/12345"))
	assert.False(t, IsPostingURL("https://boards.greenhouse.io/"))
	assert.False(t, IsPostingURL("https://blog.example.com/how-to-learn-go"))
	assert.False(t, IsPostingURL("not a url"))
}
