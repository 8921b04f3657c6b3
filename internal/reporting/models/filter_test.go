package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sssihms/dashboard-backend/internal/common/errs"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Midnight inputs east of UTC must keep their calendar day. Epoch-based
// truncation used to shift them onto the previous day.
func TestNewFilterContextKeepsCalendarDayEastOfUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	f, err := NewFilterContext(
		time.Date(2025, 6, 1, 0, 0, 0, 0, ist),
		time.Date(2025, 6, 30, 0, 0, 0, 0, ist),
		"", "", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", f.FromDate())
	assert.Equal(t, "2025-06-30", f.ToDate())
	assert.Equal(t, 30, f.Days())
}

func TestNewFilterContextRejectsReversedRange(t *testing.T) {
	_, err := NewFilterContext(date(2025, 6, 10), date(2025, 6, 1), "", "", "", "", "")
	require.Error(t, err)

	var rangeErr *errs.InvalidRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, "2025-06-10", rangeErr.From)
	assert.Equal(t, "2025-06-01", rangeErr.To)
}

func TestNewFilterContextNormalizesAllSelectors(t *testing.T) {
	f, err := NewFilterContext(date(2025, 6, 1), date(2025, 6, 30),
		"All Hospitals", "All", "", "All", "All Surgeons")
	require.NoError(t, err)

	assert.Empty(t, f.Hospital)
	assert.Empty(t, f.Department)
	assert.Empty(t, f.OrderingDept)
	assert.Empty(t, f.Category)
	assert.Empty(t, f.SurgeonID)
}

func TestNewFilterContextKeepsRealSelectors(t *testing.T) {
	f, err := NewFilterContext(date(2025, 6, 1), date(2025, 6, 30),
		"WFH", "Cardiology", "Radiology", "LAB SERVICES", "S001")
	require.NoError(t, err)

	assert.Equal(t, "WFH", f.Hospital)
	assert.Equal(t, "Cardiology", f.Department)
	assert.Equal(t, "Radiology", f.OrderingDept)
	assert.Equal(t, "LAB SERVICES", f.Category)
	assert.Equal(t, "S001", f.SurgeonID)
}

func TestDaysIsInclusive(t *testing.T) {
	same, err := NewFilterContext(date(2025, 6, 1), date(2025, 6, 1), "", "", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, same.Days())

	week, err := NewFilterContext(date(2025, 6, 1), date(2025, 6, 7), "", "", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, 7, week.Days())
}

func TestDateFormatting(t *testing.T) {
	f, err := NewFilterContext(date(2025, 1, 5), date(2025, 2, 7), "", "", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-05", f.FromDate())
	assert.Equal(t, "2025-02-07", f.ToDate())
}
