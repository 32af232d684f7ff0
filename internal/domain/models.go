package domain

import (
	"io"
	"slices"
)

// InputDocument is a user-supplied file awaiting ingestion. Body is read once.
type InputDocument struct {
	Name      string
	MediaType string
	Body      io.Reader
}

// Summary holds the headline metrics of an analysis.
type Summary struct {
	TotalSpend  float64 `json:"totalSpend" validate:"gte=0"`
	TotalBudget float64 `json:"totalBudget" validate:"gte=0"`
	BurnRate    string  `json:"burnRate"`
	TopCategory string  `json:"topCategory"`
}

// MonthlySpend is one bar of the monthly spend chart.
type MonthlySpend struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// CategoryShare is one slice of the category distribution chart.
type CategoryShare struct {
	Category   string  `json:"category"`
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
}

// VendorSpend is the total spent with a single vendor.
type VendorSpend struct {
	Vendor string  `json:"vendor"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// SpendPoint is one point of the spend-over-time series.
type SpendPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// Charts groups the chart series of an analysis.
type Charts struct {
	MonthlySpend         []MonthlySpend  `json:"monthlySpend" validate:"dive"`
	CategoryDistribution []CategoryShare `json:"categoryDistribution" validate:"dive"`
	VendorSpend          []VendorSpend   `json:"vendorSpend" validate:"dive"`
	SpendOverTime        []SpendPoint    `json:"spendOverTime" validate:"dive"`
}

// Suggestion is a ranked savings recommendation.
type Suggestion struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Impact           Impact  `json:"impact" validate:"oneof=High Medium Low"`
	PotentialSavings float64 `json:"potentialSavings" validate:"gte=0"`
}

// FinancialAnalysis is the canonical, validated result of one pipeline run.
type FinancialAnalysis struct {
	Summary     Summary      `json:"summary"`
	Charts      Charts       `json:"charts"`
	Insights    []string     `json:"insights"`
	Suggestions []Suggestion `json:"suggestions" validate:"dive"`
}

// Clone returns a deep copy so callers cannot mutate a stored analysis.
func (a *FinancialAnalysis) Clone() *FinancialAnalysis {
	if a == nil {
		return nil
	}
	out := *a
	out.Charts.MonthlySpend = slices.Clone(a.Charts.MonthlySpend)
	out.Charts.CategoryDistribution = slices.Clone(a.Charts.CategoryDistribution)
	out.Charts.VendorSpend = slices.Clone(a.Charts.VendorSpend)
	out.Charts.SpendOverTime = slices.Clone(a.Charts.SpendOverTime)
	out.Insights = slices.Clone(a.Insights)
	out.Suggestions = slices.Clone(a.Suggestions)
	return &out
}
