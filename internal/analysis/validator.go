package analysis

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"spendlens/internal/config"
	"spendlens/internal/domain"
)

// Distance of the category percentage sum from 100. Sums within
// DefaultTolerance are kept as returned; sums within DefaultDrift are
// rescaled whatever the policy.
const (
	DefaultTolerance = 0.5
	DefaultDrift     = 1.0
)

// Validator turns raw service output into a validated FinancialAnalysis.
type Validator struct {
	policy    domain.DistributionPolicy
	tolerance decimal.Decimal
	drift     decimal.Decimal
	validate  *validator.Validate
	log       *zap.Logger
}

// NewValidator creates a Validator from analysis config.
func NewValidator(cfg *config.AnalysisConfig, log *zap.Logger) *Validator {
	policy := domain.DistributionPolicy(cfg.DistributionPolicy)
	if policy != domain.DistributionRescale {
		policy = domain.DistributionReject
	}
	tolerance := cfg.DistributionTolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	drift := cfg.DistributionDrift
	if drift < tolerance {
		drift = max(DefaultDrift, tolerance)
	}
	if log == nil {
		log = zap.NewNop()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		policy:    policy,
		tolerance: decimal.NewFromFloat(tolerance),
		drift:     decimal.NewFromFloat(drift),
		validate:  v,
		log:       log,
	}
}

// Policy returns the active distribution policy.
func (v *Validator) Policy() domain.DistributionPolicy {
	return v.policy
}

// Validate parses raw and returns a fresh FinancialAnalysis, or a
// *domain.SchemaError and nil. Suggestions are ordered by descending
// potentialSavings.
func (v *Validator) Validate(raw string) (*domain.FinancialAnalysis, error) {
	body := stripCodeFence(raw)

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, &domain.SchemaError{Kind: domain.SchemaMalformedJSON, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &domain.SchemaError{Kind: domain.SchemaMalformedJSON, Err: errors.New("unexpected data after JSON value")}
	}

	analysis, err := buildAnalysis(root)
	if err != nil {
		return nil, err
	}
	if err := v.checkTags(analysis); err != nil {
		return nil, err
	}
	if err := v.normalizeDistribution(analysis); err != nil {
		return nil, err
	}

	checkChronology(analysis.Charts.SpendOverTime, v.log)
	sortSuggestions(analysis.Suggestions)
	return analysis, nil
}

// checkTags runs the struct-level constraints declared on the domain model.
func (v *Validator) checkTags(a *domain.FinancialAnalysis) error {
	err := v.validate.Struct(a)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &domain.SchemaError{Kind: domain.SchemaTypeMismatch, Err: err}
	}

	fe := verrs[0]
	kind := domain.SchemaInvalidNumber
	if fe.Tag() == "oneof" {
		kind = domain.SchemaInvalidEnum
	}
	expected := fe.Tag()
	if fe.Param() != "" {
		expected += "=" + fe.Param()
	}
	return &domain.SchemaError{
		Kind:     kind,
		Path:     tagPath(fe.Namespace()),
		Expected: expected,
		Actual:   formatValue(fe.Value()),
	}
}

// tagPath drops the root type name from a validator namespace.
func tagPath(ns string) string {
	_, rest, found := strings.Cut(ns, ".")
	if !found {
		return ns
	}
	return rest
}

func formatValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// stripCodeFence removes a surrounding markdown code fence such as
// ```json ... ``` from s.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	nl := strings.IndexByte(s, '\n')
	if nl < 0 {
		return s
	}
	body := strings.TrimSpace(s[nl+1:])
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}
