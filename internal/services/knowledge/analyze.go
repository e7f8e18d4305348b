package knowledge

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/services/llm"
)

const truncationMarker = "\n... [truncated]"

var fileAnalysisSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"frameworks": map[string]interface{}{
			"type":        "array",
			"description": "Frameworks and libraries used",
			"items":       map[string]interface{}{"type": "string"},
		},
		"concepts": map[string]interface{}{
			"type":        "array",
			"description": "Key concepts, functionality or business logic",
			"items":       map[string]interface{}{"type": "string"},
		},
		"architecture_patterns": map[string]interface{}{
			"type":        "array",
			"description": "Design or architecture patterns",
			"items":       map[string]interface{}{"type": "string"},
		},
		"file_purpose": map[string]interface{}{
			"type":        "string",
			"description": "What this file does in 1-2 sentences",
		},
	},
	"required": []interface{}{"frameworks", "concepts", "architecture_patterns", "file_purpose"},
}

type fileClassification struct {
	Frameworks           []string `json:"frameworks"`
	Concepts             []string `json:"concepts"`
	ArchitecturePatterns []string `json:"architecture_patterns"`
	FilePurpose          string   `json:"file_purpose"`
}

// truncateContent cuts content to limit characters and appends the marker
func truncateContent(content string, limit int) string {
	if limit <= 0 {
		return content
	}
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + truncationMarker
}

func buildAnalysisPrompt(filePath, fileType, content string, staticImports []string) string {
	return fmt.Sprintf(`Analyze this %s file and extract key information:

File: %s
Content:
`+"```"+`
%s
`+"```"+`

Static analysis found these imports: [%s]

Provide a structured analysis focusing on:
1. Frameworks/libraries used (expand on the static analysis)
2. Key concepts, functionality, or business logic
3. Architecture patterns (MVC, Observer, Factory, etc.)
4. What this file's purpose is

Be concise but specific. Focus on technical concepts that would be relevant for job interviews.`,
		fileType, path.Base(filePath), content, strings.Join(staticImports, ", "))
}

const failedPurposePrefix = "Failed to analyze: "

// analysisFailed reports whether a holds only the static fallback
func analysisFailed(a models.FileAnalysis) bool {
	return strings.HasPrefix(a.FilePurpose, failedPurposePrefix)
}

// analyzeFile classifies one file. It never fails: a classifier error yields
// an analysis whose frameworks are the raw static imports and a failure purpose.
func (p *Pipeline) analyzeFile(ctx context.Context, filePath string, content []byte) models.FileAnalysis {
	fileType := path.Ext(filePath)
	imports := ExtractImports(ctx, filePath, content)
	static := append([]string{}, imports...)

	analysis := models.FileAnalysis{
		FilePath:             filePath,
		FileType:             fileType,
		Frameworks:           append([]string{}, static...),
		Concepts:             []string{},
		ArchitecturePatterns: []string{},
		StaticFrameworks:     static,
	}

	if p.classifier == nil {
		analysis.FilePurpose = failedPurposePrefix + "no classifier configured"
		return analysis
	}

	prompt := buildAnalysisPrompt(filePath, fileType, truncateContent(string(content), p.config.ContentLimit), imports)
	resp, err := p.classifier.GenerateContent(ctx, &interfaces.ContentRequest{
		Messages:     []interfaces.Message{{Role: "user", Content: prompt}},
		OutputSchema: fileAnalysisSchema,
	})
	if err != nil {
		p.logger.Warn().Err(err).Str("file", filePath).Msg("File analysis failed")
		analysis.FilePurpose = fmt.Sprintf("%s%v", failedPurposePrefix, err)
		return analysis
	}

	var parsed fileClassification
	if err := llm.DecodeJSON(resp.Text, &parsed); err != nil {
		p.logger.Warn().Err(err).Str("file", filePath).Msg("File analysis response unreadable")
		analysis.FilePurpose = fmt.Sprintf("%s%v", failedPurposePrefix, err)
		return analysis
	}

	analysis.Frameworks = nonNil(parsed.Frameworks)
	analysis.Concepts = nonNil(parsed.Concepts)
	analysis.ArchitecturePatterns = nonNil(parsed.ArchitecturePatterns)
	analysis.FilePurpose = strings.TrimSpace(parsed.FilePurpose)
	return analysis
}

func nonNil(s []string) []string {
	out := make([]string, 0, len(s))
	for _, v := range s {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
