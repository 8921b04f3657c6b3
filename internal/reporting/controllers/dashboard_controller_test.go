package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sssihms/dashboard-backend/internal/reporting/services"
)

const (
	inpatientQuery  = "SELECT I.INPATIENTID, I.MRN, COALESCE(I.DAYSCARED, 0), COALESCE(I.ADMISSIONTYPE, ''), I.DOA, P.DEATHDATE, I.DEPTCODE, I.HOSPITALID FROM INPATIENT I JOIN PATIENT P ON I.MRN = P.MRN WHERE I.DOA BETWEEN ? AND ?"
	outpatientQuery = "SELECT COUNT(*) FROM OUTPATIENT O WHERE O.DOV BETWEEN ? AND ?"
)

var errStoreDown = errors.New("connection reset")

func newGeneralContext(t *testing.T) (*DashboardController, sqlmock.Sqlmock, echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dc := NewDashboardController(services.NewReportService(db, 5*time.Second), nil, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/general?from=2025-06-01&to=2025-06-30", nil)
	rec := httptest.NewRecorder()
	return dc, mock, e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// A failed outpatient count must not suppress the inpatient-derived KPIs.
// The section falls back to zero and reports its error alongside the rest.
func TestGetGeneralOutpatientFailureKeepsInpatientKPIs(t *testing.T) {
	dc, mock, c, rec := newGeneralContext(t)

	mock.ExpectQuery(inpatientQuery).
		WithArgs("2025-06-01", "2025-06-30").
		WillReturnRows(sqlmock.NewRows([]string{"INPATIENTID", "MRN", "DAYSCARED", "ADMISSIONTYPE", "DOA", "DEATHDATE", "DEPTCODE", "HOSPITALID"}).
			AddRow("IP1", "M1", 4.0, "ELECTIVE", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), "CAR", "WFH").
			AddRow("IP2", "M2", 2.0, "READMISSION", time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), nil, "CAR", "WFH"))

	mock.ExpectQuery(outpatientQuery).
		WithArgs("2025-06-01", "2025-06-30").
		WillReturnError(errStoreDown)

	require.NoError(t, dc.GetGeneral(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["total_inpatients"])
	assert.Equal(t, float64(0), data["total_outpatients"])
	assert.Equal(t, float64(50), data["mortality_rate"])

	sectionErrs, ok := body["errors"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, sectionErrs, "outpatients")
	assert.NotContains(t, sectionErrs, "inpatients")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetGeneralOmitsErrorsWhenAllSectionsSucceed(t *testing.T) {
	dc, mock, c, rec := newGeneralContext(t)

	mock.ExpectQuery(inpatientQuery).
		WithArgs("2025-06-01", "2025-06-30").
		WillReturnRows(sqlmock.NewRows([]string{"INPATIENTID", "MRN", "DAYSCARED", "ADMISSIONTYPE", "DOA", "DEATHDATE", "DEPTCODE", "HOSPITALID"}).
			AddRow("IP1", "M1", 4.0, "ELECTIVE", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), nil, "CAR", "WFH"))

	mock.ExpectQuery(outpatientQuery).
		WithArgs("2025-06-01", "2025-06-30").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(9))

	require.NoError(t, dc.GetGeneral(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), data["total_inpatients"])
	assert.Equal(t, float64(9), data["total_outpatients"])
	assert.NotContains(t, body, "errors")
	assert.NoError(t, mock.ExpectationsWereMet())
}
