package analysis

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"spendlens/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// normalizeDistribution enforces that category percentages sum to 100 within
// tolerance. Rounding drift is rescaled; larger deviations are rejected or
// rescaled according to the policy. An empty distribution is accepted.
func (v *Validator) normalizeDistribution(a *domain.FinancialAnalysis) error {
	shares := a.Charts.CategoryDistribution
	if len(shares) == 0 {
		return nil
	}

	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(decimal.NewFromFloat(s.Percentage))
	}
	deviation := sum.Sub(hundred).Abs()
	if deviation.LessThanOrEqual(v.tolerance) {
		return nil
	}

	sumErr := &domain.SchemaError{
		Kind:     domain.SchemaDistributionSum,
		Path:     "charts.categoryDistribution",
		Expected: fmt.Sprintf("sum of 100 ± %s", v.tolerance.String()),
		Actual:   sum.String(),
	}
	rescale := v.policy == domain.DistributionRescale || deviation.LessThanOrEqual(v.drift)
	if !rescale || sum.IsZero() {
		return sumErr
	}

	factor := hundred.Div(sum)
	rescaled := make([]domain.CategoryShare, len(shares))
	for i, s := range shares {
		pct := decimal.NewFromFloat(s.Percentage).Mul(factor).Round(2)
		rescaled[i] = domain.CategoryShare{Category: s.Category, Percentage: pct.InexactFloat64()}
	}
	a.Charts.CategoryDistribution = rescaled

	v.log.Warn("analysis.Validator: rescaled category distribution",
		zap.String("original_sum", sum.String()), zap.Int("categories", len(shares)),
		zap.String("policy", string(v.policy)))
	return nil
}
