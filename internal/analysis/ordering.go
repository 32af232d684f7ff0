package analysis

import (
	"cmp"
	"slices"
	"time"

	"go.uber.org/zap"

	"spendlens/internal/domain"
)

// sortSuggestions orders suggestions by descending potential savings. Ties
// keep the service's order.
func sortSuggestions(s []domain.Suggestion) {
	slices.SortStableFunc(s, func(a, b domain.Suggestion) int {
		return cmp.Compare(b.PotentialSavings, a.PotentialSavings)
	})
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01",
	"2006/01/02",
	"02/01/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"Jan 2006",
	"January 2006",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// checkChronology logs when the time series is not in ascending date order.
// The series is left as returned.
func checkChronology(points []domain.SpendPoint, log *zap.Logger) {
	var prev time.Time
	for i, p := range points {
		t, ok := parseDate(p.Date)
		if !ok {
			return
		}
		if i > 0 && t.Before(prev) {
			log.Warn("analysis.Validator: spendOverTime is out of chronological order",
				zap.Int("index", i), zap.String("date", p.Date), zap.String("previous", points[i-1].Date))
			return
		}
		prev = t
	}
}
