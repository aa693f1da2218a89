// Package cli provides CLI output formatting for Shinsa.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/shinsa/internal/analysis"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteReport writes an analysis report to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteReport(w io.Writer, report *analysis.Report, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		writeReportText(w, report)
		return nil
	}
}

func writeReportText(w io.Writer, report *analysis.Report) {
	fmt.Fprintf(w, "\n%d results, %d scored, %d originals paired\n\n",
		report.Results, report.Scored, report.Originals)

	if len(report.Variants) > 0 {
		fmt.Fprintln(w, "--- Variant effects (variant vs original) ---")
		for _, v := range report.Variants {
			fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
			fmt.Fprintf(w, "%s | pairs: %d\n", v.VariantType, v.Pairs)
			fmt.Fprintf(w, "mean: %.3f -> %.3f (delta %+.3f)\n",
				v.MeanOriginal, v.MeanVariant, v.MeanDelta)
			if v.TestSkipped {
				fmt.Fprintln(w, "significance: skipped (too few usable pairs)")
			} else {
				fmt.Fprintf(w, "paired t: t=%.3f p=%.4f | wilcoxon: W=%.1f p=%.4f\n",
					v.TStat, v.TPValue, v.WilcoxonW, v.WilcoxonP)
			}
		}
		fmt.Fprintln(w)
	}

	writeAttackBuckets(w, "By attack type", report.ByAttack)
	writeAttackBuckets(w, "By insertion position", report.ByPosition)
}

func writeAttackBuckets(w io.Writer, title string, buckets []analysis.AttackEffect) {
	if len(buckets) == 0 {
		return
	}
	fmt.Fprintf(w, "--- %s ---\n", title)
	for _, b := range buckets {
		fmt.Fprintf(w, "%-14s pairs: %-4d delta: %+.3f lift: %.0f%% found: %.0f%%\n",
			b.Key, b.Pairs, b.MeanDelta, b.LiftRate*100, b.SectionFoundRate*100)
	}
	fmt.Fprintln(w)
}
