package csvexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"spendlens/internal/domain"
)

// sheet is one worksheet of the workbook export.
type sheet struct {
	name   string
	header []string
	rows   [][]any
}

// WriteWorkbook renders an analysis as an xlsx workbook with one sheet per
// section, numbers stored as numbers.
func WriteWorkbook(w io.Writer, a *domain.FinancialAnalysis) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheets := workbookSheets(a)
	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sh.name); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("creating sheet %q: %w", sh.name, err)
		}

		if err := f.SetSheetRow(sh.name, "A1", &sh.header); err != nil {
			return fmt.Errorf("writing header of %q: %w", sh.name, err)
		}
		for r, row := range sh.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
				return fmt.Errorf("writing row %d of %q: %w", r+2, sh.name, err)
			}
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func workbookSheets(a *domain.FinancialAnalysis) []sheet {
	summary := sheet{
		name:   SectionSummary,
		header: []string{"Metric", "Value"},
		rows: [][]any{
			{"Total Spend", a.Summary.TotalSpend},
			{"Total Budget", a.Summary.TotalBudget},
			{"Burn Rate", a.Summary.BurnRate},
			{"Top Category", a.Summary.TopCategory},
		},
	}
	monthly := sheet{name: SectionMonthlySpend, header: []string{"Month", "Amount"}}
	for _, m := range a.Charts.MonthlySpend {
		monthly.rows = append(monthly.rows, []any{m.Month, m.Amount})
	}
	categories := sheet{name: SectionCategories, header: []string{"Category", "Percentage"}}
	for _, c := range a.Charts.CategoryDistribution {
		categories.rows = append(categories.rows, []any{c.Category, c.Percentage})
	}
	vendors := sheet{name: SectionVendors, header: []string{"Vendor", "Amount"}}
	for _, v := range a.Charts.VendorSpend {
		vendors.rows = append(vendors.rows, []any{v.Vendor, v.Amount})
	}
	series := sheet{name: SectionSpendOverTime, header: []string{"Date", "Amount"}}
	for _, p := range a.Charts.SpendOverTime {
		series.rows = append(series.rows, []any{p.Date, p.Amount})
	}
	insights := sheet{name: "Insights", header: []string{"#", "Insight"}}
	for i, in := range a.Insights {
		insights.rows = append(insights.rows, []any{i + 1, in})
	}
	suggestions := sheet{name: "Suggestions", header: []string{"Title", "Description", "Impact", "Potential Savings"}}
	for _, s := range a.Suggestions {
		suggestions.rows = append(suggestions.rows, []any{s.Title, s.Description, string(s.Impact), s.PotentialSavings})
	}
	return []sheet{summary, monthly, categories, vendors, series, insights, suggestions}
}
