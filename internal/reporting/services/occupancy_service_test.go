package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockOccupancy(t *testing.T) (*OccupancyService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOccupancyService(db, 5*time.Second), mock
}

func bedRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"SPECIALITY", "LOCATION", "BEDSTRENGTH"}).
		AddRow("Cardiology", "CCU", 6).
		AddRow("Cardiology", "WARD-3", 4)
}

func TestSummaryComputesRateFromCensusDeltas(t *testing.T) {
	svc, mock := newMockOccupancy(t)
	f := testFilter(t, "")

	mock.ExpectQuery("FROM BEDMASTER").WillReturnRows(bedRows())
	mock.ExpectQuery("FROM CENSUSDATA").
		WillReturnRows(sqlmock.NewRows([]string{"THEDATE", "SPECIALITY", "OPBAL", "ADMIT", "DISCH", "TRIN", "TROUT", "DEATH"}).
			AddRow(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "CCU", 5, 3, 2, 1, 0, 1).
			AddRow(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), "WARD-3", 4, 0, 1, 0, 0, 0))

	summary, census, err := svc.Summary(context.Background(), f, "")
	require.NoError(t, err)

	// 10 beds over 30 days = 300 bed-days; 6 + 3 = 9 patient-days
	assert.Equal(t, 10, summary.TotalBeds)
	assert.InDelta(t, 3.0, summary.OccupancyRate, 1e-9)
	assert.InDelta(t, 0.3, summary.AvgDailyCensus, 1e-9)

	require.Len(t, census, 2)
	assert.Equal(t, 6, census[0].Occupancy)
	assert.Equal(t, 3, census[1].Occupancy)
}

func TestSummaryZeroBedsShortCircuits(t *testing.T) {
	svc, mock := newMockOccupancy(t)
	f := testFilter(t, "")

	mock.ExpectQuery("FROM BEDMASTER").
		WillReturnRows(sqlmock.NewRows([]string{"SPECIALITY", "LOCATION", "BEDSTRENGTH"}))

	summary, census, err := svc.Summary(context.Background(), f, "")
	require.NoError(t, err)
	assert.Zero(t, summary.TotalBeds)
	assert.Zero(t, summary.OccupancyRate)
	assert.Nil(t, census)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryNoCensusKeepsBedCount(t *testing.T) {
	svc, mock := newMockOccupancy(t)
	f := testFilter(t, "")

	mock.ExpectQuery("FROM BEDMASTER").WillReturnRows(bedRows())
	mock.ExpectQuery("FROM CENSUSDATA").
		WillReturnRows(sqlmock.NewRows([]string{"THEDATE", "SPECIALITY", "OPBAL", "ADMIT", "DISCH", "TRIN", "TROUT", "DEATH"}))

	summary, census, err := svc.Summary(context.Background(), f, "")
	require.NoError(t, err)
	assert.Equal(t, 10, summary.TotalBeds)
	assert.Zero(t, summary.OccupancyRate)
	assert.Empty(t, census)
}
