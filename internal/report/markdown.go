package report

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"io"
	"strings"

	"assocreport/domain/stats"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// RenderMarkdown writes one result as a markdown section with a pipe table
func RenderMarkdown(w io.Writer, r *stats.TestResult) error {
	if r == nil || r.Table == nil {
		return fmt.Errorf("report: nil result")
	}
	var b strings.Builder
	t := r.Table

	fmt.Fprintf(&b, "## %s\n\n", escapeCell(r.Title))
	fmt.Fprintf(&b, "| %s / %s |", escapeCell(string(t.RowVar)), escapeCell(string(t.ColVar)))
	for _, c := range t.ColLabels {
		fmt.Fprintf(&b, " %s |", escapeCell(c))
	}
	b.WriteString("\n|---|")
	for range t.ColLabels {
		b.WriteString("---:|")
	}
	b.WriteString("\n")
	for i, row := range t.RowLabels {
		fmt.Fprintf(&b, "| %s |", escapeCell(row))
		for j := range t.ColLabels {
			fmt.Fprintf(&b, " %d |", t.Counts[i][j])
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "- **Chi2 statistic:** %.4f\n", r.ChiSquare)
	fmt.Fprintf(&b, "- **p-value:** %.6f\n", r.PValue)
	fmt.Fprintf(&b, "- **Degrees of freedom:** %d\n", r.DegreesOfFreedom)
	fmt.Fprintf(&b, "- **Critical value (alpha %s):** %.4f\n", formatAlpha(r.Alpha), r.CriticalValue)
	fmt.Fprintf(&b, "- **Cramer's V:** %.4f (%s)\n", r.CramersV, r.Strength)
	if r.Significant {
		fmt.Fprintf(&b, "- **Verdict:** statistically significant (p < %s)\n", formatAlpha(r.Alpha))
	} else {
		fmt.Fprintf(&b, "- **Verdict:** not statistically significant (p >= %s)\n", formatAlpha(r.Alpha))
	}
	if r.YatesCorrected {
		b.WriteString("- Yates continuity correction applied\n")
	}
	if r.Diagnostics.Sparse() {
		fmt.Fprintf(&b, "\n> Note: %s\n", sparseNote(r.Diagnostics))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderMarkdownError writes a failed pair as a section carrying the error
func RenderMarkdownError(w io.Writer, title string, err error) error {
	_, werr := fmt.Fprintf(w, "## %s\n\n**Error:** %s\n\n", escapeCell(title), escapeCell(err.Error()))
	return werr
}

// MarkdownToHTML converts a markdown document to an HTML fragment. Raw HTML in the
// document is dropped and only safe link protocols are rendered.
func MarkdownToHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML | html.Safelink})
	return markdown.ToHTML(md, p, renderer)
}

// RenderHTML writes one result as HTML
func RenderHTML(w io.Writer, r *stats.TestResult) error {
	var md bytes.Buffer
	if err := RenderMarkdown(&md, r); err != nil {
		return err
	}
	_, err := w.Write(MarkdownToHTML(md.Bytes()))
	return err
}

// escapeCell makes data safe inside markdown: HTML is entity-escaped and pipes cannot split cells.
func escapeCell(s string) string {
	return strings.ReplaceAll(stdhtml.EscapeString(s), "|", "\\|")
}
