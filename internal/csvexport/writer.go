package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"spendlens/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Section",
	"Label",
	"Detail",
	"Impact",
	"Value",
}

// Section names, one per part of the analysis.
const (
	SectionSummary       = "Summary"
	SectionMonthlySpend  = "Monthly Spend"
	SectionCategories    = "Category Distribution"
	SectionVendors       = "Vendor Spend"
	SectionSpendOverTime = "Spend Over Time"
	SectionInsight       = "Insight"
	SectionSuggestion    = "Suggestion"
)

// Writer wraps csv.Writer for exporting an analysis as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteAnalysis flattens an analysis into one row per value.
func (w *Writer) WriteAnalysis(a *domain.FinancialAnalysis) error {
	for _, row := range analysisRows(a) {
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// analysisRows converts an analysis to rows of len(columns) cells, in the
// order summary, charts, insights, suggestions.
func analysisRows(a *domain.FinancialAnalysis) [][]string {
	if a == nil {
		return nil
	}
	row := func(section, label, detail, impact, value string) []string {
		return []string{section, label, detail, impact, value}
	}

	rows := [][]string{
		row(SectionSummary, "Total Spend", "", "", formatMoney(a.Summary.TotalSpend)),
		row(SectionSummary, "Total Budget", "", "", formatMoney(a.Summary.TotalBudget)),
		row(SectionSummary, "Burn Rate", "", "", a.Summary.BurnRate),
		row(SectionSummary, "Top Category", "", "", a.Summary.TopCategory),
	}
	for _, m := range a.Charts.MonthlySpend {
		rows = append(rows, row(SectionMonthlySpend, m.Month, "", "", formatMoney(m.Amount)))
	}
	for _, c := range a.Charts.CategoryDistribution {
		rows = append(rows, row(SectionCategories, c.Category, "", "", formatPercent(c.Percentage)))
	}
	for _, v := range a.Charts.VendorSpend {
		rows = append(rows, row(SectionVendors, v.Vendor, "", "", formatMoney(v.Amount)))
	}
	for _, p := range a.Charts.SpendOverTime {
		rows = append(rows, row(SectionSpendOverTime, p.Date, "", "", formatMoney(p.Amount)))
	}
	for i, in := range a.Insights {
		rows = append(rows, row(SectionInsight, strconv.Itoa(i+1), in, "", ""))
	}
	for _, s := range a.Suggestions {
		rows = append(rows, row(SectionSuggestion, s.Title, s.Description, string(s.Impact), formatMoney(s.PotentialSavings)))
	}
	return rows
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a document name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "analysis"
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), now.Format("2006-01-02"), ext)
}
