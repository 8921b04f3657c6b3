package models

import (
	"time"

	"github.com/sssihms/dashboard-backend/internal/common/errs"
)

// FilterContext holds the selections driving every aggregate: date range,
// hospital, department, ordering department, category and surgeon. Empty
// string selectors mean "no constraint". Built once per request and not
// mutated afterwards.
type FilterContext struct {
	From         time.Time
	To           time.Time
	Hospital     string
	Department   string
	OrderingDept string
	Category     string
	SurgeonID    string
}

// sentinel selector values the UI sends for "no constraint"
var allValues = map[string]bool{
	"":              true,
	"All":           true,
	"All Hospitals": true,
	"All Surgeons":  true,
}

// midnight drops the clock to 00:00 UTC of the same calendar day.
// Truncate would round on the UTC epoch instead, shifting midnights in
// zones east of UTC onto the previous day.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func normalizeSelector(v string) string {
	if allValues[v] {
		return ""
	}
	return v
}

// NewFilterContext validates the date range and normalizes selectors.
// "All"-style values collapse to the empty string so query builders can
// treat them as a universal predicate instead of a literal match.
func NewFilterContext(from, to time.Time, hospital, dept, orderingDept, category, surgeonID string) (FilterContext, error) {
	from = midnight(from)
	to = midnight(to)
	if from.After(to) {
		return FilterContext{}, &errs.InvalidRangeError{
			From: from.Format("2006-01-02"),
			To:   to.Format("2006-01-02"),
		}
	}
	return FilterContext{
		From:         from,
		To:           to,
		Hospital:     normalizeSelector(hospital),
		Department:   normalizeSelector(dept),
		OrderingDept: normalizeSelector(orderingDept),
		Category:     normalizeSelector(category),
		SurgeonID:    normalizeSelector(surgeonID),
	}, nil
}

// Days returns the inclusive day count of the range. Always >= 1 for a
// context built by NewFilterContext.
func (f FilterContext) Days() int {
	return int(f.To.Sub(f.From).Hours()/24) + 1
}

// FromDate and ToDate render the range bounds in the format the data store
// queries bind.
func (f FilterContext) FromDate() string { return f.From.Format("2006-01-02") }
func (f FilterContext) ToDate() string   { return f.To.Format("2006-01-02") }
