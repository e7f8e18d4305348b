package jobsearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

const (
	maxPageBytes    = 2 << 20
	maxSnippetRunes = 3000
	userAgent       = "stackscout/1.0 (+https://github.com/ternarybob/stackscout)"
)

// Page is the readable part of a fetched posting
type Page struct {
	URL         string
	Title       string
	Description string
	Markdown    string
}

// PageFetcher loads posting pages for the formatter
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Page, error)
}

// HTTPPageFetcher fetches static posting pages and reduces them to markdown
type HTTPPageFetcher struct {
	client *http.Client
	logger arbor.ILogger
}

func NewHTTPPageFetcher(timeout time.Duration, logger arbor.ILogger) *HTTPPageFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPPageFetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (f *HTTPPageFetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid posting url: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	page := ParseDocument(doc, pageURL)
	f.logger.Debug().
		Str("url", pageURL).
		Str("title", page.Title).
		Int("markdown_len", len(page.Markdown)).
		Msg("Posting page fetched")
	return page, nil
}

// ParseDocument extracts title, description and a markdown snippet of the main content
func ParseDocument(doc *goquery.Document, pageURL string) *Page {
	page := &Page{URL: pageURL}

	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if page.Title == "" {
		if og, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
			page.Title = strings.TrimSpace(og)
		}
	}
	if page.Title == "" {
		page.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	if desc, ok := doc.Find("meta[name='description']").Attr("content"); ok {
		page.Description = strings.TrimSpace(desc)
	}
	if page.Description == "" {
		if og, ok := doc.Find("meta[property='og:description']").Attr("content"); ok {
			page.Description = strings.TrimSpace(og)
		}
	}

	doc.Find("script, style, noscript, nav, header, footer, aside, form").Remove()
	content := doc.Find("main, article, [role='main'], #content, .content, body").First()
	if content.Length() == 0 {
		return page
	}

	html, err := goquery.OuterHtml(content)
	if err != nil {
		return page
	}

	domain := ""
	if u, err := url.Parse(pageURL); err == nil {
		domain = u.Host
	}
	markdown, err := md.NewConverter(domain, true, nil).ConvertString(html)
	if err != nil {
		return page
	}
	page.Markdown = clip(strings.TrimSpace(markdown), maxSnippetRunes)
	return page
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
