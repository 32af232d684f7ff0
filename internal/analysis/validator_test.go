package analysis_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"spendlens/internal/analysis"
	"spendlens/internal/config"
	"spendlens/internal/domain"
)

const validResponse = `{
  "summary": {"totalSpend": 4250.75, "totalBudget": 5000, "burnRate": "$1,416/mo", "topCategory": "Software"},
  "charts": {
    "monthlySpend": [{"month": "Jan", "amount": 1200}, {"month": "Feb", "amount": 1500.5}],
    "categoryDistribution": [{"category": "Software", "percentage": 60}, {"category": "Rent", "percentage": 39}],
    "vendorSpend": [{"vendor": "AWS", "amount": 900}],
    "spendOverTime": [{"date": "2024-01-01", "amount": 100}, {"date": "2024-01-15", "amount": 250}]
  },
  "insights": ["Three overlapping design subscriptions"],
  "suggestions": [
    {"title": "Drop Sketch", "description": "Figma covers it", "impact": "Low", "potentialSavings": 120},
    {"title": "Reserve EC2", "description": "Commit for a year", "impact": "High", "potentialSavings": 2400},
    {"title": "Review seats", "description": "Unused seats", "impact": "Medium", "potentialSavings": 120},
    {"title": "Keep tracking", "description": "No change", "impact": "Low", "potentialSavings": 0}
  ]
}`

func newValidator(policy string) *analysis.Validator {
	return analysis.NewValidator(&config.AnalysisConfig{DistributionPolicy: policy, DistributionTolerance: 0.5}, nil)
}

func requireSchemaError(t *testing.T, err error, kind domain.SchemaKind, path string) *domain.SchemaError {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchema)
	var schErr *domain.SchemaError
	require.True(t, errors.As(err, &schErr))
	assert.Equal(t, kind, schErr.Kind)
	if path != "" {
		assert.Equal(t, path, schErr.Path)
	}
	return schErr
}

func TestValidate_ValidResponse(t *testing.T) {
	a, err := newValidator("").Validate(validResponse)

	require.NoError(t, err)
	assert.Equal(t, 4250.75, a.Summary.TotalSpend)
	assert.Equal(t, "Software", a.Summary.TopCategory)
	assert.Len(t, a.Charts.MonthlySpend, 2)
	assert.Equal(t, "Rent", a.Charts.CategoryDistribution[1].Category)
	assert.Equal(t, []string{"Three overlapping design subscriptions"}, a.Insights)
}

func distributionSum(a *domain.FinancialAnalysis) float64 {
	sum := 0.0
	for _, s := range a.Charts.CategoryDistribution {
		sum += s.Percentage
	}
	return sum
}

func TestValidate_SumWithinToleranceUnchanged(t *testing.T) {
	raw := strings.Replace(validResponse, `"percentage": 39`, `"percentage": 39.6`, 1)

	a, err := newValidator("reject").Validate(raw)

	require.NoError(t, err)
	assert.Equal(t, 39.6, a.Charts.CategoryDistribution[1].Percentage)
}

func TestValidate_RoundingDriftAcceptedUnderReject(t *testing.T) {
	// 60 + 39 = 99
	a, err := newValidator("reject").Validate(validResponse)

	require.NoError(t, err)
	assert.InDelta(t, 100, distributionSum(a), 0.5)
	assert.Equal(t, 60.61, a.Charts.CategoryDistribution[0].Percentage)
	assert.Equal(t, 39.39, a.Charts.CategoryDistribution[1].Percentage)
}

func TestValidate_SuggestionsSortedBySavingsStable(t *testing.T) {
	a, err := newValidator("").Validate(validResponse)

	require.NoError(t, err)
	titles := make([]string, len(a.Suggestions))
	for i, s := range a.Suggestions {
		titles[i] = s.Title
	}
	assert.Equal(t, []string{"Reserve EC2", "Drop Sketch", "Review seats", "Keep tracking"}, titles)
	for i := 1; i < len(a.Suggestions); i++ {
		assert.GreaterOrEqual(t, a.Suggestions[i-1].PotentialSavings, a.Suggestions[i].PotentialSavings)
	}
	assert.Equal(t, domain.ImpactHigh, a.Suggestions[0].Impact)
}

func TestValidate_CodeFenceStripped(t *testing.T) {
	a, err := newValidator("").Validate("```json\n" + validResponse + "\n```")

	require.NoError(t, err)
	assert.Equal(t, 5000.0, a.Summary.TotalBudget)
}

func TestValidate_MalformedJSON(t *testing.T) {
	v := newValidator("")
	for _, raw := range []string{"", "not json", `{"summary":`, validResponse + " trailing"} {
		a, err := v.Validate(raw)
		assert.Nil(t, a)
		requireSchemaError(t, err, domain.SchemaMalformedJSON, "")
	}
}

func TestValidate_TopLevelMustBeObject(t *testing.T) {
	_, err := newValidator("").Validate(`[1,2,3]`)

	requireSchemaError(t, err, domain.SchemaTypeMismatch, "$")
}

func TestValidate_MissingField(t *testing.T) {
	raw := strings.Replace(validResponse, `"vendorSpend": [{"vendor": "AWS", "amount": 900}],`, "", 1)

	_, err := newValidator("").Validate(raw)

	requireSchemaError(t, err, domain.SchemaMissingField, "charts.vendorSpend")
}

func TestValidate_NullIsMissing(t *testing.T) {
	raw := strings.Replace(validResponse, `"topCategory": "Software"`, `"topCategory": null`, 1)

	_, err := newValidator("").Validate(raw)

	requireSchemaError(t, err, domain.SchemaMissingField, "summary.topCategory")
}

func TestValidate_TypeMismatchCarriesPath(t *testing.T) {
	raw := strings.Replace(validResponse, `{"category": "Rent", "percentage": 39}`, `{"category": "Rent", "percentage": "39"}`, 1)

	_, err := newValidator("").Validate(raw)

	schErr := requireSchemaError(t, err, domain.SchemaTypeMismatch, "charts.categoryDistribution[1].percentage")
	assert.Equal(t, "number", schErr.Expected)
	assert.Equal(t, "string", schErr.Actual)
}

func TestValidate_InvalidImpact(t *testing.T) {
	raw := strings.Replace(validResponse, `"impact": "High"`, `"impact": "Critical"`, 1)

	_, err := newValidator("").Validate(raw)

	requireSchemaError(t, err, domain.SchemaInvalidEnum, "suggestions[1].impact")
}

func TestValidate_ImpactIsCaseSensitive(t *testing.T) {
	raw := strings.Replace(validResponse, `"impact": "High"`, `"impact": "high"`, 1)

	_, err := newValidator("").Validate(raw)

	requireSchemaError(t, err, domain.SchemaInvalidEnum, "suggestions[1].impact")
}

func TestValidate_NegativeAmount(t *testing.T) {
	raw := strings.Replace(validResponse, `"vendor": "AWS", "amount": 900`, `"vendor": "AWS", "amount": -900`, 1)

	_, err := newValidator("").Validate(raw)

	requireSchemaError(t, err, domain.SchemaInvalidNumber, "charts.vendorSpend[0].amount")
}

func TestValidate_OverflowingNumber(t *testing.T) {
	raw := strings.Replace(validResponse, `"totalSpend": 4250.75`, `"totalSpend": 1e999`, 1)

	_, err := newValidator("").Validate(raw)

	requireSchemaError(t, err, domain.SchemaInvalidNumber, "summary.totalSpend")
}

func TestValidate_PercentageAboveHundred(t *testing.T) {
	raw := strings.Replace(validResponse,
		`[{"category": "Software", "percentage": 60}, {"category": "Rent", "percentage": 39}]`,
		`[{"category": "Software", "percentage": 140}]`, 1)

	_, err := newValidator("").Validate(raw)

	requireSchemaError(t, err, domain.SchemaInvalidNumber, "charts.categoryDistribution[0].percentage")
}

func TestValidate_EmptyTitleAccepted(t *testing.T) {
	raw := strings.Replace(validResponse, `"title": "Drop Sketch"`, `"title": ""`, 1)

	a, err := newValidator("").Validate(raw)

	require.NoError(t, err)
	titles := make([]string, len(a.Suggestions))
	for i, s := range a.Suggestions {
		titles[i] = s.Title
	}
	assert.Contains(t, titles, "")
}

func TestValidate_MissingTitleRejected(t *testing.T) {
	raw := strings.Replace(validResponse, `"title": "Drop Sketch", `, ``, 1)

	_, err := newValidator("").Validate(raw)

	requireSchemaError(t, err, domain.SchemaMissingField, "suggestions[0].title")
}

func TestValidate_DistributionSumRejected(t *testing.T) {
	raw := strings.Replace(validResponse, `"percentage": 39`, `"percentage": 20`, 1)

	a, err := newValidator("reject").Validate(raw)

	assert.Nil(t, a)
	schErr := requireSchemaError(t, err, domain.SchemaDistributionSum, "charts.categoryDistribution")
	assert.Equal(t, "80", schErr.Actual)
}

func TestValidate_DistributionSumRescaled(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	v := analysis.NewValidator(&config.AnalysisConfig{DistributionPolicy: "rescale"}, zap.New(core))
	raw := strings.Replace(validResponse, `"percentage": 39`, `"percentage": 20`, 1)

	a, err := v.Validate(raw)

	require.NoError(t, err)
	assert.Equal(t, domain.DistributionRescale, v.Policy())
	assert.Equal(t, 75.0, a.Charts.CategoryDistribution[0].Percentage)
	assert.Equal(t, 25.0, a.Charts.CategoryDistribution[1].Percentage)
	assert.Equal(t, 1, logs.FilterMessageSnippet("rescaled").Len())
}

func TestValidate_RescaleKeepsSumWithinTolerance(t *testing.T) {
	raw := strings.Replace(validResponse,
		`[{"category": "Software", "percentage": 60}, {"category": "Rent", "percentage": 39}]`,
		`[{"category": "A", "percentage": 10}, {"category": "B", "percentage": 10}, {"category": "C", "percentage": 10}]`, 1)

	a, err := newValidator("rescale").Validate(raw)

	require.NoError(t, err)
	assert.InDelta(t, 100, distributionSum(a), 0.5)
}

func TestValidate_ZeroSumAlwaysRejected(t *testing.T) {
	raw := strings.Replace(validResponse,
		`[{"category": "Software", "percentage": 60}, {"category": "Rent", "percentage": 39}]`,
		`[{"category": "A", "percentage": 0}]`, 1)

	_, err := newValidator("rescale").Validate(raw)

	requireSchemaError(t, err, domain.SchemaDistributionSum, "")
}

func TestValidate_EmptyDistributionAccepted(t *testing.T) {
	raw := strings.Replace(validResponse,
		`[{"category": "Software", "percentage": 60}, {"category": "Rent", "percentage": 39}]`, `[]`, 1)

	a, err := newValidator("").Validate(raw)

	require.NoError(t, err)
	assert.Empty(t, a.Charts.CategoryDistribution)
	assert.NotNil(t, a.Charts.CategoryDistribution)
}

func TestValidate_OutOfOrderSeriesKeptAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	v := analysis.NewValidator(&config.AnalysisConfig{}, zap.New(core))
	raw := strings.Replace(validResponse,
		`[{"date": "2024-01-01", "amount": 100}, {"date": "2024-01-15", "amount": 250}]`,
		`[{"date": "2024-01-15", "amount": 250}, {"date": "2024-01-01", "amount": 100}]`, 1)

	a, err := v.Validate(raw)

	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", a.Charts.SpendOverTime[0].Date)
	assert.Equal(t, 1, logs.FilterMessageSnippet("chronological").Len())
}

func TestValidate_UnknownFieldsIgnored(t *testing.T) {
	raw := strings.Replace(validResponse, `"insights":`, `"currency": "USD", "insights":`, 1)

	_, err := newValidator("").Validate(raw)

	assert.NoError(t, err)
}
