package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sssihms/dashboard-backend/internal/common/errs"
	"github.com/sssihms/dashboard-backend/internal/reporting/models"
)

var (
	errNoDept = errors.New("no rows in result set")
	errBoom   = errors.New("connection reset")
)

func newMockService(t *testing.T) (*ReportService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReportService(db, 5*time.Second), mock
}

func testFilter(t *testing.T, dept string) models.FilterContext {
	t.Helper()
	f, err := models.NewFilterContext(
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		"", dept, "", "", "")
	require.NoError(t, err)
	return f
}

// Department names containing quotes must arrive as bound parameters, not
// inside the SQL text.
func TestCountOutpatientsBindsQuotedDepartment(t *testing.T) {
	svc, mock := newMockService(t)
	f := testFilter(t, "O'Brien Clinic")

	mock.ExpectQuery("SELECT COUNT(*) FROM OUTPATIENT O WHERE O.DOV BETWEEN ? AND ? AND O.DEPTNAME = ?").
		WithArgs("2025-06-01", "2025-06-30", "O'Brien Clinic").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(17))

	cnt, err := svc.CountOutpatients(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 17, cnt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionTypeBreakdownResolvesDeptCode(t *testing.T) {
	svc, mock := newMockService(t)
	f := testFilter(t, "O'Brien Clinic")

	mock.ExpectQuery("SELECT DEPTCODE FROM DEPARTMENT WHERE DEPTNAME = ? LIMIT 1").
		WithArgs("O'Brien Clinic").
		WillReturnRows(sqlmock.NewRows([]string{"DEPTCODE"}).AddRow("OBC"))

	mock.ExpectQuery("SELECT COALESCE(ADMISSIONTYPE, 'UNKNOWN') AS ADMISSIONTYPE, COUNT(*) AS CNT FROM INPATIENT I WHERE I.DOA BETWEEN ? AND ? AND I.DEPTCODE = ? GROUP BY COALESCE(ADMISSIONTYPE, 'UNKNOWN') ORDER BY CNT DESC, ADMISSIONTYPE").
		WithArgs("2025-06-01", "2025-06-30", "OBC").
		WillReturnRows(sqlmock.NewRows([]string{"ADMISSIONTYPE", "CNT"}).
			AddRow("ELECTIVE", 60).
			AddRow("EMERGENCY", 30))

	rows, err := svc.AdmissionTypeBreakdown(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ELECTIVE", rows[0].Key)
	assert.Equal(t, 60, rows[0].Total)
	assert.InDelta(t, 2.0, rows[0].AvgPerDay, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// An unknown department name falls back to an unfiltered query instead of
// failing the section.
func TestAdmissionTypeBreakdownUnknownDeptFallsBack(t *testing.T) {
	svc, mock := newMockService(t)
	f := testFilter(t, "Nonexistent")

	mock.ExpectQuery("SELECT DEPTCODE FROM DEPARTMENT WHERE DEPTNAME = ? LIMIT 1").
		WithArgs("Nonexistent").
		WillReturnError(errNoDept)

	mock.ExpectQuery("SELECT COALESCE(ADMISSIONTYPE, 'UNKNOWN') AS ADMISSIONTYPE, COUNT(*) AS CNT FROM INPATIENT I WHERE I.DOA BETWEEN ? AND ? GROUP BY COALESCE(ADMISSIONTYPE, 'UNKNOWN') ORDER BY CNT DESC, ADMISSIONTYPE").
		WithArgs("2025-06-01", "2025-06-30").
		WillReturnRows(sqlmock.NewRows([]string{"ADMISSIONTYPE", "CNT"}).AddRow("ELECTIVE", 5))

	rows, err := svc.AdmissionTypeBreakdown(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadInpatientsScansDeathDate(t *testing.T) {
	svc, mock := newMockService(t)
	f := testFilter(t, "")

	died := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT I.INPATIENTID, I.MRN, COALESCE(I.DAYSCARED, 0), COALESCE(I.ADMISSIONTYPE, ''), I.DOA, P.DEATHDATE, I.DEPTCODE, I.HOSPITALID FROM INPATIENT I JOIN PATIENT P ON I.MRN = P.MRN WHERE I.DOA BETWEEN ? AND ?").
		WithArgs("2025-06-01", "2025-06-30").
		WillReturnRows(sqlmock.NewRows([]string{"INPATIENTID", "MRN", "DAYSCARED", "ADMISSIONTYPE", "DOA", "DEATHDATE", "DEPTCODE", "HOSPITALID"}).
			AddRow("IP1", "M1", 4.0, "ELECTIVE", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), died, "CAR", "WFH").
			AddRow("IP2", "M2", 2.0, "", time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), nil, "CAR", "WFH"))

	rows, err := svc.LoadInpatients(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].DeathDate)
	assert.Equal(t, died, *rows[0].DeathDate)
	assert.Nil(t, rows[1].DeathDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStateStatsMonthWindow(t *testing.T) {
	svc, mock := newMockService(t)
	f, err := models.NewFilterContext(
		time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		"", "", "", "", "")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT STATE, SUM(CNT) AS CNT FROM STATESTATS WHERE (THEYR * 100 + THEMNTH) BETWEEN ? AND ? GROUP BY STATE ORDER BY CNT DESC, STATE").
		WithArgs(202411, 202502).
		WillReturnRows(sqlmock.NewRows([]string{"STATE", "CNT"}).
			AddRow("ANDHRA PRADESH", 420).
			AddRow("KARNATAKA", 180))

	rows, err := svc.StateStats(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ANDHRA PRADESH", rows[0].Key)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountOutpatientsQueryErrorIsTyped(t *testing.T) {
	svc, mock := newMockService(t)
	f := testFilter(t, "")

	mock.ExpectQuery("SELECT COUNT(*) FROM OUTPATIENT O WHERE O.DOV BETWEEN ? AND ?").
		WithArgs("2025-06-01", "2025-06-30").
		WillReturnError(errBoom)

	_, err := svc.CountOutpatients(context.Background(), f)
	require.Error(t, err)
	var qErr *errs.QueryExecutionError
	assert.ErrorAs(t, err, &qErr)
}
