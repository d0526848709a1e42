package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"assocreport/domain/stats"
)

// Format selects a renderer
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts text, markdown (or md) and html; empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// ContentType is the HTTP media type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Render writes one result in the given format
func Render(w io.Writer, format Format, r *stats.TestResult) error {
	if r == nil {
		return fmt.Errorf("report: nil result")
	}
	return RenderPairs(w, format, []stats.PairResult{{Title: r.Title, Result: r}})
}

// RenderPairs writes results in order. Failed pairs render as an error entry.
// HTML is produced from the full markdown document in one conversion.
func RenderPairs(w io.Writer, format Format, results []stats.PairResult) error {
	switch format {
	case FormatText:
		for _, pr := range results {
			if err := renderPair(w, pr, RenderText, RenderTextError); err != nil {
				return err
			}
		}
		return nil
	case FormatMarkdown:
		for _, pr := range results {
			if err := renderPair(w, pr, RenderMarkdown, RenderMarkdownError); err != nil {
				return err
			}
		}
		return nil
	case FormatHTML:
		var md bytes.Buffer
		if err := RenderPairs(&md, FormatMarkdown, results); err != nil {
			return err
		}
		_, err := w.Write(MarkdownToHTML(md.Bytes()))
		return err
	}
	return fmt.Errorf("unknown report format %q", format)
}

func renderPair(w io.Writer, pr stats.PairResult, ok func(io.Writer, *stats.TestResult) error, failed func(io.Writer, string, error) error) error {
	if pr.Err != nil || pr.Result == nil {
		err := pr.Err
		if err == nil {
			err = fmt.Errorf("no result")
		}
		return failed(w, pr.Title, err)
	}
	return ok(w, pr.Result)
}
