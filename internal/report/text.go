package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"assocreport/domain/stats"
)

const bannerWidth = 60

// RenderText writes the canonical report block for one result
func RenderText(w io.Writer, r *stats.TestResult) error {
	if r == nil || r.Table == nil {
		return fmt.Errorf("report: nil result")
	}
	var b strings.Builder
	banner := strings.Repeat("-", bannerWidth)

	fmt.Fprintf(&b, "\n%s\n%s\n%s\n", banner, r.Title, banner)
	fmt.Fprintf(&b, "\nCONTINGENCY TABLE (%s vs %s):\n", r.Table.RowVar, r.Table.ColVar)
	if err := writeTable(&b, r.Table); err != nil {
		return err
	}

	b.WriteString("\nCHI-SQUARE TEST:\n")
	fmt.Fprintf(&b, "   Chi2 statistic: %.4f\n", r.ChiSquare)
	fmt.Fprintf(&b, "   p-value: %.6f\n", r.PValue)
	fmt.Fprintf(&b, "   Degrees of freedom: %d\n", r.DegreesOfFreedom)
	fmt.Fprintf(&b, "   Critical value (alpha %s): %.4f\n", formatAlpha(r.Alpha), r.CriticalValue)
	fmt.Fprintf(&b, "   Cramer's V: %.4f\n", r.CramersV)
	if r.Significant {
		fmt.Fprintf(&b, "   --> STATISTICALLY SIGNIFICANT (p < %s)\n", formatAlpha(r.Alpha))
	} else {
		fmt.Fprintf(&b, "   --> Not statistically significant (p >= %s)\n", formatAlpha(r.Alpha))
	}
	fmt.Fprintf(&b, "   Association strength: %s\n", r.Strength)
	if r.YatesCorrected {
		b.WriteString("   Yates continuity correction applied\n")
	}
	if r.Diagnostics.Sparse() {
		fmt.Fprintf(&b, "   Note: %s\n", sparseNote(r.Diagnostics))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderTextError writes the line emitted in place of a failed pair
func RenderTextError(w io.Writer, title string, err error) error {
	banner := strings.Repeat("-", bannerWidth)
	_, werr := fmt.Fprintf(w, "\n%s\n%s\n%s\n   ERROR: %v\n", banner, title, banner, err)
	return werr
}

func writeTable(w io.Writer, t *stats.ContingencyTable) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t", t.RowVar)
	for _, c := range t.ColLabels {
		fmt.Fprintf(tw, "%s\t", c)
	}
	fmt.Fprintln(tw)
	for i, r := range t.RowLabels {
		fmt.Fprintf(tw, "%s\t", r)
		for j := range t.ColLabels {
			fmt.Fprintf(tw, "%d\t", t.Counts[i][j])
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func formatAlpha(alpha float64) string {
	return strconv.FormatFloat(alpha, 'g', -1, 64)
}

func sparseNote(d stats.ExpectedDiagnostics) string {
	return fmt.Sprintf("%.1f%% of expected counts are below 5 (min %.2f); the chi-square approximation may be unreliable",
		d.BelowFiveShare()*100, d.MinExpected)
}
