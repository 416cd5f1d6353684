// Package report renders year summaries as the console report and the
// summary workbook.
package report

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fcva-data/taxbook-cli/internal/model"
)

const bannerWidth = 60

// FormatText renders the end-of-run console report: county totals per year,
// then the latest year's district breakdown. Numbers are comma-grouped to
// match the county's published figures.
func FormatText(summaries []*model.YearSummary) string {
	sorted := sortedByYear(summaries)
	p := message.NewPrinter(language.English)
	banner := strings.Repeat("=", bannerWidth)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\nSUMMARY BY YEAR\n%s\n", banner, banner)

	for _, s := range sorted {
		fmt.Fprintf(&sb, "\n%d (Rate: $%.2f/$100)\n", s.Year, s.TaxRate)
		fmt.Fprintf(&sb, "  Records:      %12s\n", p.Sprintf("%d", s.TotalRecords))
		fmt.Fprintf(&sb, "  Total Value:  $%15s\n", p.Sprintf("%d", s.Totals.TotalValue))
		fmt.Fprintf(&sb, "  Tax Revenue:  $%15s\n", p.Sprintf("%.2f", s.Totals.TaxAmount))
	}

	if len(sorted) == 0 {
		return sb.String()
	}

	latest := sorted[len(sorted)-1]
	fmt.Fprintf(&sb, "\n%s\n%d BY DISTRICT\n%s\n", banner, latest.Year, banner)

	districts := make([]string, 0, len(latest.ByDistrict))
	for name := range latest.ByDistrict {
		districts = append(districts, name)
	}
	sort.Strings(districts)

	for _, name := range districts {
		d := latest.ByDistrict[name]
		fmt.Fprintf(&sb, "\n%s:\n", name)
		fmt.Fprintf(&sb, "  Properties:   %10s\n", p.Sprintf("%d", d.PropertyCount))
		fmt.Fprintf(&sb, "  Total Value:  $%14s\n", p.Sprintf("%d", d.TotalValue))
		fmt.Fprintf(&sb, "  Tax Revenue:  $%14s\n", p.Sprintf("%.2f", d.TaxAmount))
		fmt.Fprintf(&sb, "  %% of County:  %10.1f%%\n", d.PctOfCountyValue)
	}

	return sb.String()
}

// sortedByYear returns a copy of summaries ordered by year ascending.
func sortedByYear(summaries []*model.YearSummary) []*model.YearSummary {
	out := make([]*model.YearSummary, len(summaries))
	copy(out, summaries)
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
