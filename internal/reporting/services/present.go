package services

import (
	"sort"

	"github.com/sssihms/dashboard-backend/internal/reporting/models"
)

// Presentation helpers: pure transformations from raw aggregate rows to
// display-ready summaries. No I/O happens here.

// AvgPerDay spreads a total over an inclusive day count. days below 1 never
// reaches this point for a validated FilterContext; guard anyway so a bad
// caller gets 0 instead of Inf.
func AvgPerDay(total, days int) float64 {
	if days < 1 {
		return 0
	}
	return float64(total) / float64(days)
}

// SortRows orders rows by total descending, ties broken by key ascending,
// so repeated renders of the same data always come out identical.
func SortRows(rows []models.AggregateRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Key < rows[j].Key
	})
}

// FillAverages computes AvgPerDay for every row in place.
func FillAverages(rows []models.AggregateRow, days int) {
	for i := range rows {
		rows[i].AvgPerDay = AvgPerDay(rows[i].Total, days)
	}
}

// TopNWithOthers returns the top n rows plus an "Others" bucket summing the
// remainder. The bucket is omitted entirely when the remainder sums to
// zero. Input is re-sorted, the caller's slice is not modified.
func TopNWithOthers(rows []models.AggregateRow, n int) []models.AggregateRow {
	sorted := make([]models.AggregateRow, len(rows))
	copy(sorted, rows)
	SortRows(sorted)

	if len(sorted) <= n {
		return sorted
	}

	out := make([]models.AggregateRow, n, n+1)
	copy(out, sorted[:n])

	othersTotal := 0
	for _, r := range sorted[n:] {
		othersTotal += r.Total
	}
	if othersTotal > 0 {
		out = append(out, models.AggregateRow{Key: "Others", Total: othersTotal})
	}
	return out
}

// SumTotals is the grand total across rows, used for the level summary line.
func SumTotals(rows []models.AggregateRow) int {
	sum := 0
	for _, r := range rows {
		sum += r.Total
	}
	return sum
}
