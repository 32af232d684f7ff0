package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"spendlens/internal/domain"
)

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func mismatch(path, expected string, v any) error {
	return &domain.SchemaError{Kind: domain.SchemaTypeMismatch, Path: path, Expected: expected, Actual: typeName(v)}
}

func asObject(v any, path string) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, mismatch(path, "object", v)
	}
	return m, nil
}

// field returns a required member. Absent and null members are both missing.
func field(m map[string]any, key, path string) (any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, &domain.SchemaError{Kind: domain.SchemaMissingField, Path: join(path, key), Expected: "value", Actual: "nothing"}
	}
	return v, nil
}

func objectField(m map[string]any, key, path string) (map[string]any, error) {
	v, err := field(m, key, path)
	if err != nil {
		return nil, err
	}
	return asObject(v, join(path, key))
}

func arrayField(m map[string]any, key, path string) ([]any, error) {
	v, err := field(m, key, path)
	if err != nil {
		return nil, err
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, mismatch(join(path, key), "array", v)
	}
	return arr, nil
}

func stringField(m map[string]any, key, path string) (string, error) {
	v, err := field(m, key, path)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", mismatch(join(path, key), "string", v)
	}
	return s, nil
}

// amountField reads a finite, non-negative number.
func amountField(m map[string]any, key, path string) (float64, error) {
	p := join(path, key)
	v, err := field(m, key, path)
	if err != nil {
		return 0, err
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, mismatch(p, "number", v)
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, &domain.SchemaError{Kind: domain.SchemaInvalidNumber, Path: p, Expected: "finite number", Actual: n.String()}
	}
	if f < 0 {
		return 0, &domain.SchemaError{Kind: domain.SchemaInvalidNumber, Path: p, Expected: "non-negative number", Actual: n.String()}
	}
	return f, nil
}

// buildAnalysis constructs the canonical model from a generic JSON tree,
// failing on the first value that does not satisfy the schema.
func buildAnalysis(root any) (*domain.FinancialAnalysis, error) {
	top, err := asObject(root, "$")
	if err != nil {
		return nil, err
	}

	out := &domain.FinancialAnalysis{}
	if out.Summary, err = buildSummary(top); err != nil {
		return nil, err
	}
	if out.Charts, err = buildCharts(top); err != nil {
		return nil, err
	}
	if out.Insights, err = buildInsights(top); err != nil {
		return nil, err
	}
	if out.Suggestions, err = buildSuggestions(top); err != nil {
		return nil, err
	}
	return out, nil
}

func buildSummary(top map[string]any) (domain.Summary, error) {
	const path = "summary"
	var s domain.Summary
	m, err := objectField(top, "summary", "")
	if err != nil {
		return s, err
	}
	if s.TotalSpend, err = amountField(m, "totalSpend", path); err != nil {
		return s, err
	}
	if s.TotalBudget, err = amountField(m, "totalBudget", path); err != nil {
		return s, err
	}
	if s.BurnRate, err = stringField(m, "burnRate", path); err != nil {
		return s, err
	}
	if s.TopCategory, err = stringField(m, "topCategory", path); err != nil {
		return s, err
	}
	return s, nil
}

// eachObject applies fn to every element of the array at m[key], which must
// hold only objects.
func eachObject(m map[string]any, key, path string, fn func(item map[string]any, itemPath string) error) error {
	arr, err := arrayField(m, key, path)
	if err != nil {
		return err
	}
	for i, el := range arr {
		p := index(join(path, key), i)
		item, err := asObject(el, p)
		if err != nil {
			return err
		}
		if err := fn(item, p); err != nil {
			return err
		}
	}
	return nil
}

func buildCharts(top map[string]any) (domain.Charts, error) {
	const path = "charts"
	var c domain.Charts
	m, err := objectField(top, "charts", "")
	if err != nil {
		return c, err
	}

	c.MonthlySpend = []domain.MonthlySpend{}
	err = eachObject(m, "monthlySpend", path, func(item map[string]any, p string) error {
		month, err := stringField(item, "month", p)
		if err != nil {
			return err
		}
		amount, err := amountField(item, "amount", p)
		if err != nil {
			return err
		}
		c.MonthlySpend = append(c.MonthlySpend, domain.MonthlySpend{Month: month, Amount: amount})
		return nil
	})
	if err != nil {
		return c, err
	}

	c.CategoryDistribution = []domain.CategoryShare{}
	err = eachObject(m, "categoryDistribution", path, func(item map[string]any, p string) error {
		category, err := stringField(item, "category", p)
		if err != nil {
			return err
		}
		pct, err := amountField(item, "percentage", p)
		if err != nil {
			return err
		}
		c.CategoryDistribution = append(c.CategoryDistribution, domain.CategoryShare{Category: category, Percentage: pct})
		return nil
	})
	if err != nil {
		return c, err
	}

	c.VendorSpend = []domain.VendorSpend{}
	err = eachObject(m, "vendorSpend", path, func(item map[string]any, p string) error {
		vendor, err := stringField(item, "vendor", p)
		if err != nil {
			return err
		}
		amount, err := amountField(item, "amount", p)
		if err != nil {
			return err
		}
		c.VendorSpend = append(c.VendorSpend, domain.VendorSpend{Vendor: vendor, Amount: amount})
		return nil
	})
	if err != nil {
		return c, err
	}

	c.SpendOverTime = []domain.SpendPoint{}
	err = eachObject(m, "spendOverTime", path, func(item map[string]any, p string) error {
		date, err := stringField(item, "date", p)
		if err != nil {
			return err
		}
		amount, err := amountField(item, "amount", p)
		if err != nil {
			return err
		}
		c.SpendOverTime = append(c.SpendOverTime, domain.SpendPoint{Date: date, Amount: amount})
		return nil
	})
	return c, err
}

func buildInsights(top map[string]any) ([]string, error) {
	arr, err := arrayField(top, "insights", "")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(arr))
	for i, el := range arr {
		s, ok := el.(string)
		if !ok {
			return nil, mismatch(index("insights", i), "string", el)
		}
		out = append(out, s)
	}
	return out, nil
}

func buildSuggestions(top map[string]any) ([]domain.Suggestion, error) {
	out := []domain.Suggestion{}
	err := eachObject(top, "suggestions", "", func(item map[string]any, p string) error {
		var s domain.Suggestion
		var err error
		if s.Title, err = stringField(item, "title", p); err != nil {
			return err
		}
		if s.Description, err = stringField(item, "description", p); err != nil {
			return err
		}
		raw, err := stringField(item, "impact", p)
		if err != nil {
			return err
		}
		if s.Impact, err = domain.ParseImpact(raw); err != nil {
			return &domain.SchemaError{
				Kind: domain.SchemaInvalidEnum, Path: join(p, "impact"),
				Expected: "High|Medium|Low", Actual: strconv.Quote(raw),
			}
		}
		if s.PotentialSavings, err = amountField(item, "potentialSavings", p); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	return out, err
}
