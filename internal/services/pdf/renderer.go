package pdf

import (
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	pageWidth   = 190.0
	baseFont    = "Arial"
	baseSize    = 9.0
	lineHeight  = 5.0
	tableFont   = 8.0
	tableLine   = 4.0
	maxCellRows = 6
)

// markdownRenderer walks a goldmark AST and writes it to an fpdf document
type markdownRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	tr        func(string) string
	bold      bool
	italic    bool
	listLevel int
	linkURL   string
}

func newMarkdownRenderer(pdf *fpdf.Fpdf, source []byte) *markdownRenderer {
	return &markdownRenderer{
		pdf:    pdf,
		source: source,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (r *markdownRenderer) render(node ast.Node) error {
	return ast.Walk(node, r.walk)
}

func (r *markdownRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(baseFont, style, baseSize)
}

func (r *markdownRenderer) write(s string) {
	if r.linkURL != "" {
		r.pdf.SetTextColor(30, 80, 180)
		r.pdf.WriteLinkString(lineHeight, r.tr(s), r.linkURL)
		r.pdf.SetTextColor(0, 0, 0)
		return
	}
	r.pdf.Write(lineHeight, r.tr(s))
}

func (r *markdownRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		r.heading(node, entering)
	case *ast.Paragraph:
		if !entering {
			r.pdf.Ln(7)
		}
	case *ast.Text:
		if entering {
			r.write(string(node.Segment.Value(r.source)))
			if node.SoftLineBreak() {
				r.write(" ")
			}
			if node.HardLineBreak() {
				r.pdf.Ln(lineHeight)
			}
		}
	case *ast.String:
		if entering {
			r.write(string(node.Value))
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case *ast.Link:
		if entering {
			r.linkURL = string(node.Destination)
		} else {
			r.linkURL = ""
		}
	case *ast.AutoLink:
		if entering {
			url := string(node.URL(r.source))
			r.linkURL = url
			r.write(url)
			r.linkURL = ""
		}
		return ast.WalkSkipChildren, nil
	case *ast.CodeSpan:
		if entering {
			r.pdf.SetFont("Courier", "", baseSize+1)
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					r.write(string(t.Segment.Value(r.source)))
				}
			}
			r.updateFont()
		}
		return ast.WalkSkipChildren, nil
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			r.codeBlock(n.Lines())
		}
		return ast.WalkSkipChildren, nil
	case *ast.List:
		if entering {
			r.listLevel++
		} else {
			r.listLevel--
			if r.listLevel == 0 {
				r.pdf.Ln(2)
			}
		}
	case *ast.ListItem:
		if entering {
			r.pdf.Ln(lineHeight)
			r.pdf.SetX(15 + float64(r.listLevel)*5)
			r.pdf.Write(lineHeight, "- ")
		}
	case *ast.ThematicBreak:
		if entering {
			r.pdf.Ln(2)
			r.pdf.Line(15, r.pdf.GetY(), 195, r.pdf.GetY())
			r.pdf.Ln(2)
		}
	case *extast.Table:
		if entering {
			r.table(node)
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func (r *markdownRenderer) heading(n *ast.Heading, entering bool) {
	if !entering {
		r.pdf.Ln(6)
		r.updateFont()
		return
	}
	r.pdf.Ln(6)
	size := 10.0
	switch n.Level {
	case 1:
		size = 14
	case 2:
		size = 12
	case 3:
		size = 11
	}
	r.pdf.SetFont(baseFont, "B", size)
}

func (r *markdownRenderer) codeBlock(lines *text.Segments) {
	r.pdf.Ln(2)
	r.pdf.SetFont("Courier", "", baseSize)
	r.pdf.SetFillColor(245, 245, 245)
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(r.source)), "\n")
		r.pdf.MultiCell(0, lineHeight, r.tr(line), "", "L", true)
	}
	r.pdf.SetFillColor(255, 255, 255)
	r.updateFont()
	r.pdf.Ln(2)
}

func (r *markdownRenderer) table(n *extast.Table) {
	var rows [][]string
	var collect func(node ast.Node)
	collect = func(node ast.Node) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *extast.TableHeader:
				rows = append(rows, r.cells(c))
			case *extast.TableRow:
				rows = append(rows, r.cells(c))
			}
		}
	}
	collect(n)
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	r.pdf.Ln(2)
	cols := len(rows[0])
	widths := r.columnWidths(rows, cols)
	_, pageHeight := r.pdf.GetPageSize()
	_, _, _, bottom := r.pdf.GetMargins()

	for i, row := range rows {
		style := ""
		if i == 0 {
			style = "B"
		}
		r.pdf.SetFont(baseFont, style, tableFont)

		wrapped := make([][]string, cols)
		height := 1
		for j := 0; j < cols && j < len(row); j++ {
			wrapped[j] = r.wrap(row[j], widths[j]-2)
			if len(wrapped[j]) > height {
				height = len(wrapped[j])
			}
		}
		if height > maxCellRows {
			height = maxCellRows
		}
		rowHeight := float64(height)*tableLine + 2

		x, y := r.pdf.GetX(), r.pdf.GetY()
		if y+rowHeight > pageHeight-bottom {
			r.pdf.AddPage()
			x, y = r.pdf.GetX(), r.pdf.GetY()
		}

		cx := x
		for j := 0; j < cols; j++ {
			if i == 0 {
				r.pdf.SetFillColor(230, 230, 230)
				r.pdf.Rect(cx, y, widths[j], rowHeight, "FD")
			} else {
				r.pdf.Rect(cx, y, widths[j], rowHeight, "D")
			}
			for k, line := range wrapped[j] {
				if k == maxCellRows {
					break
				}
				r.pdf.SetXY(cx+1, y+1+float64(k)*tableLine)
				r.pdf.CellFormat(widths[j]-2, tableLine, line, "", 0, "L", false, 0, "")
			}
			cx += widths[j]
		}
		r.pdf.SetXY(x, y+rowHeight)
	}

	r.pdf.SetFillColor(255, 255, 255)
	r.pdf.Ln(3)
	r.updateFont()
}

func (r *markdownRenderer) cells(row ast.Node) []string {
	var out []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			out = append(out, r.tr(strings.TrimSpace(string(cell.Text(r.source)))))
		}
	}
	return out
}

// columnWidths sizes columns to their widest cell, capped at a third of the
// page, then scales the set to fit the page width
func (r *markdownRenderer) columnWidths(rows [][]string, cols int) []float64 {
	widths := make([]float64, cols)
	for i, row := range rows {
		style := ""
		if i == 0 {
			style = "B"
		}
		r.pdf.SetFont(baseFont, style, tableFont)
		for j := 0; j < cols && j < len(row); j++ {
			if w := r.pdf.GetStringWidth(row[j]) + 4; w > widths[j] {
				widths[j] = w
			}
		}
	}

	total := 0.0
	for j := range widths {
		if widths[j] < 12 {
			widths[j] = 12
		}
		if widths[j] > pageWidth/3 {
			widths[j] = pageWidth / 3
		}
		total += widths[j]
	}
	if total > pageWidth {
		for j := range widths {
			widths[j] *= pageWidth / total
		}
	}
	return widths
}

func (r *markdownRenderer) wrap(s string, width float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, w := range words[1:] {
		if r.pdf.GetStringWidth(current+" "+w) <= width {
			current += " " + w
			continue
		}
		lines = append(lines, current)
		current = w
	}
	return append(lines, current)
}
