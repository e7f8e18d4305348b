package pdf

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/ternarybob/stackscout/internal/models"
)

// Archiver stores rendered reports and returns where they can be downloaded
type Archiver interface {
	Put(ctx context.Context, key, contentType string, content []byte) (string, error)
}

// Service renders reports to PDF and optionally archives them
type Service struct {
	logger   arbor.ILogger
	archiver Archiver
	markdown goldmark.Markdown
}

// NewService creates a PDF service. archiver may be nil.
func NewService(archiver Archiver, logger arbor.ILogger) *Service {
	return &Service{
		logger:   logger,
		archiver: archiver,
		markdown: goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify)),
	}
}

// ConvertMarkdownToPDF renders markdown into an A4 PDF document
func (s *Service) ConvertMarkdownToPDF(markdown, title string) ([]byte, error) {
	s.logger.Debug().
		Int("markdown_len", len(markdown)).
		Str("title", title).
		Msg("Converting markdown to PDF")

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetCreator("stackscout", true)
	doc.SetMargins(10, 10, 10)
	doc.SetAutoPageBreak(true, 10)
	doc.AddPage()
	doc.SetFont(baseFont, "", baseSize)

	source := []byte(markdown)
	root := s.markdown.Parser().Parse(text.NewReader(source))

	if err := newMarkdownRenderer(doc, source).render(root); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().Int("pdf_size", buf.Len()).Msg("PDF generated")
	return buf.Bytes(), nil
}

// Report is a rendered PDF and, when archived, its download URL
type Report struct {
	Filename   string
	Content    []byte
	ArchiveURL string
}

// TechProfile renders the tech profile report for a user
func (s *Service) TechProfile(ctx context.Context, username string, records []models.RepoRecord) (*Report, error) {
	content, err := s.ConvertMarkdownToPDF(TechProfileMarkdown(username, records, time.Now()), "Tech profile: "+username)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, "profiles/"+username+".pdf", username+".pdf", content), nil
}

// JobResults renders a job-search run
func (s *Service) JobResults(ctx context.Context, result *models.JobSearchResult) (*Report, error) {
	content, err := s.ConvertMarkdownToPDF(JobResultsMarkdown(result), "Job search results")
	if err != nil {
		return nil, err
	}
	name := result.ID + ".pdf"
	return s.finish(ctx, "jobs/"+name, name, content), nil
}

// finish archives the report when an archiver is configured. Archive
// failures are logged and leave ArchiveURL empty.
func (s *Service) finish(ctx context.Context, key, filename string, content []byte) *Report {
	report := &Report{Filename: filename, Content: content}
	if s.archiver == nil {
		return report
	}

	u, err := s.archiver.Put(ctx, key, "application/pdf", content)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to archive report")
		return report
	}
	report.ArchiveURL = u
	return report
}
