package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sssihms/dashboard-backend/internal/reporting/models"
)

func newMockDrillDown(t *testing.T) (*DrillDownService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDrillDownService(db, 5*time.Second), mock
}

func TestStateIsPerSession(t *testing.T) {
	svc, _ := newMockDrillDown(t)

	svc.Enter("staff-1", "BIOCHEMISTRY")
	svc.Enter("staff-1", "GLUCOSE")

	assert.Equal(t, models.LevelSubSubcategory, svc.State("staff-1").Level)
	assert.Equal(t, models.LevelCategory, svc.State("staff-2").Level)
}

func TestBackAndHomeMutateOnlyOwnSession(t *testing.T) {
	svc, _ := newMockDrillDown(t)

	svc.Enter("a", "X")
	svc.Enter("b", "Y")
	svc.Enter("b", "Z")

	svc.Home("b")
	assert.Equal(t, models.LevelCategory, svc.State("b").Level)
	assert.Equal(t, models.LevelSubcategory, svc.State("a").Level)

	svc.Back("a")
	assert.Equal(t, models.LevelCategory, svc.State("a").Level)
}

func TestCategoryRowsOrderedAndAveraged(t *testing.T) {
	svc, mock := newMockDrillDown(t)
	f := testFilter(t, "")

	mock.ExpectQuery("SELECT SD.CATEGORY, SUM(COALESCE(SD.THEVALUE, 0)) AS TOTAL_CNT, MAX(COALESCE(SD.THEVALUE, 0)) AS MAX_ENTRY FROM STATS_DETAILS SD WHERE SD.THEDATE BETWEEN ? AND ? AND SD.CATEGORY IS NOT NULL GROUP BY SD.CATEGORY ORDER BY TOTAL_CNT DESC, SD.CATEGORY ASC").
		WithArgs("2025-06-01", "2025-06-30").
		WillReturnRows(sqlmock.NewRows([]string{"CATEGORY", "TOTAL_CNT", "MAX_ENTRY"}).
			AddRow("LAB SERVICES", 300, 40).
			AddRow("IMAGING", 300, 25).
			AddRow("PHARMACY", 90, 10))

	rows, err := svc.CategoryRows(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// ties on total resolve by key ascending
	assert.Equal(t, "IMAGING", rows[0].Key)
	assert.Equal(t, "LAB SERVICES", rows[1].Key)
	assert.Equal(t, "PHARMACY", rows[2].Key)
	assert.InDelta(t, 10.0, rows[0].AvgPerDay, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrentRowsAtSubcategoryPinsCategory(t *testing.T) {
	svc, mock := newMockDrillDown(t)
	f := testFilter(t, "")

	svc.Enter("staff-9", "LAB SERVICES")

	mock.ExpectQuery("SELECT SD.SUBCATG, SUM(COALESCE(SD.THEVALUE, 0)) AS TOTAL_CNT, MAX(COALESCE(SD.THEVALUE, 0)) AS MAX_ENTRY FROM STATS_DETAILS SD WHERE SD.THEDATE BETWEEN ? AND ? AND SD.SUBCATG IS NOT NULL AND SD.CATEGORY = ? GROUP BY SD.SUBCATG ORDER BY TOTAL_CNT DESC, SD.SUBCATG ASC").
		WithArgs("2025-06-01", "2025-06-30", "LAB SERVICES").
		WillReturnRows(sqlmock.NewRows([]string{"SUBCATG", "TOTAL_CNT", "MAX_ENTRY"}).
			AddRow("BIOCHEMISTRY", 120, 20))

	rows, err := svc.CurrentRows(context.Background(), "staff-9", f)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "BIOCHEMISTRY", rows[0].Key)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderingDeptMatchesNameOrCode(t *testing.T) {
	svc, mock := newMockDrillDown(t)
	f, err := models.NewFilterContext(
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		"", "", "Radiology", "", "")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT DEPTCODE FROM DEPARTMENT WHERE DEPTNAME = ? LIMIT 1").
		WithArgs("Radiology").
		WillReturnRows(sqlmock.NewRows([]string{"DEPTCODE"}).AddRow("RAD"))

	mock.ExpectQuery("SELECT SD.CATEGORY, SUM(COALESCE(SD.THEVALUE, 0)) AS TOTAL_CNT, MAX(COALESCE(SD.THEVALUE, 0)) AS MAX_ENTRY FROM STATS_DETAILS SD WHERE SD.THEDATE BETWEEN ? AND ? AND (SD.ORDERING_DEPT = ? OR SD.ORDERING_DEPT = ?) AND SD.CATEGORY IS NOT NULL GROUP BY SD.CATEGORY ORDER BY TOTAL_CNT DESC, SD.CATEGORY ASC").
		WithArgs("2025-06-01", "2025-06-30", "Radiology", "RAD").
		WillReturnRows(sqlmock.NewRows([]string{"CATEGORY", "TOTAL_CNT", "MAX_ENTRY"}).
			AddRow("IMAGING", 55, 9))

	rows, err := svc.CategoryRows(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
