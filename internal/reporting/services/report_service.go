package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sssihms/dashboard-backend/internal/common/errs"
	"github.com/sssihms/dashboard-backend/internal/reporting/models"
)

// ReportService translates a FilterContext plus a requested aggregation
// into a single parameter-bound query against the HIS tables. Selector
// values are always bound, never spliced into the SQL text.
type ReportService struct {
	DB      *sql.DB
	Timeout time.Duration
}

func NewReportService(db *sql.DB, timeout time.Duration) *ReportService {
	return &ReportService{DB: db, Timeout: timeout}
}

func (s *ReportService) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// resolveDeptCode maps a department display name to its DEPTCODE. Returns
// "" and false when the department is unknown; the caller then falls back
// to an unfiltered query, matching the dashboard's historical behaviour.
func (s *ReportService) resolveDeptCode(ctx context.Context, deptName string) (string, bool) {
	var code string
	err := s.DB.QueryRowContext(ctx,
		"SELECT DEPTCODE FROM DEPARTMENT WHERE DEPTNAME = ? LIMIT 1", deptName).Scan(&code)
	if err != nil {
		return "", false
	}
	return code, true
}

// ListDepartments returns the selector list resolved from DEPARTMENT.
func (s *ReportService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx,
		"SELECT DISTINCT DEPTNAME, DEPTCODE, HOSPITALID FROM DEPARTMENT ORDER BY DEPTNAME")
	if err != nil {
		return nil, errs.NewQueryError("departments", err)
	}
	defer rows.Close()

	var out []models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.Name, &d.Code, &d.HospitalID); err != nil {
			return nil, errs.NewQueryError("departments", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListHospitals returns the distinct hospital ids known to DEPARTMENT.
func (s *ReportService) ListHospitals(ctx context.Context) ([]string, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx,
		"SELECT DISTINCT HOSPITALID FROM DEPARTMENT ORDER BY HOSPITALID")
	if err != nil {
		return nil, errs.NewQueryError("hospitals", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, errs.NewQueryError("hospitals", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ListCategories returns the distinct statistics categories for the
// category selector.
func (s *ReportService) ListCategories(ctx context.Context) ([]string, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx,
		"SELECT DISTINCT CATEGORY FROM STATS_DETAILS WHERE CATEGORY IS NOT NULL ORDER BY CATEGORY")
	if err != nil {
		return nil, errs.NewQueryError("categories", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, errs.NewQueryError("categories", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LoadInpatients fetches the inpatient rows admitted inside the filter
// range; the KPI math runs client-side over the result.
func (s *ReportService) LoadInpatients(ctx context.Context, f models.FilterContext) ([]models.InpatientRow, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	conditions := []string{"I.DOA BETWEEN ? AND ?"}
	params := []interface{}{f.FromDate(), f.ToDate()}

	if f.Department != "" {
		if code, ok := s.resolveDeptCode(ctx, f.Department); ok {
			conditions = append(conditions, "I.DEPTCODE = ?")
			params = append(params, code)
		}
	}
	if f.Hospital != "" {
		conditions = append(conditions, "I.HOSPITALID = ?")
		params = append(params, f.Hospital)
	}

	q := "SELECT I.INPATIENTID, I.MRN, COALESCE(I.DAYSCARED, 0), COALESCE(I.ADMISSIONTYPE, ''), I.DOA, P.DEATHDATE, I.DEPTCODE, I.HOSPITALID " +
		"FROM INPATIENT I JOIN PATIENT P ON I.MRN = P.MRN " +
		"WHERE " + strings.Join(conditions, " AND ")

	rows, err := s.DB.QueryContext(ctx, q, params...)
	if err != nil {
		log.Error().Err(err).Msg("inpatient load failed")
		return nil, errs.NewQueryError("inpatients", err)
	}
	defer rows.Close()

	var out []models.InpatientRow
	for rows.Next() {
		var r models.InpatientRow
		var death sql.NullTime
		if err := rows.Scan(&r.InpatientID, &r.MRN, &r.DaysCared, &r.AdmissionType, &r.DOA, &death, &r.DeptCode, &r.HospitalID); err != nil {
			return nil, errs.NewQueryError("inpatients", err)
		}
		if death.Valid {
			d := death.Time
			r.DeathDate = &d
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountOutpatients counts outpatient visits inside the filter range.
// OUTPATIENT stores the department display name directly.
func (s *ReportService) CountOutpatients(ctx context.Context, f models.FilterContext) (int, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	conditions := []string{"O.DOV BETWEEN ? AND ?"}
	params := []interface{}{f.FromDate(), f.ToDate()}

	if f.Department != "" {
		conditions = append(conditions, "O.DEPTNAME = ?")
		params = append(params, f.Department)
	}
	if f.Hospital != "" {
		conditions = append(conditions, "O.HOSPITALID = ?")
		params = append(params, f.Hospital)
	}

	q := "SELECT COUNT(*) FROM OUTPATIENT O WHERE " + strings.Join(conditions, " AND ")

	var cnt int
	if err := s.DB.QueryRowContext(ctx, q, params...).Scan(&cnt); err != nil {
		log.Error().Err(err).Msg("outpatient count failed")
		return 0, errs.NewQueryError("outpatients", err)
	}
	return cnt, nil
}

// AdmissionTypeBreakdown groups inpatient admissions by type.
func (s *ReportService) AdmissionTypeBreakdown(ctx context.Context, f models.FilterContext) ([]models.AggregateRow, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	conditions := []string{"I.DOA BETWEEN ? AND ?"}
	params := []interface{}{f.FromDate(), f.ToDate()}

	if f.Department != "" {
		if code, ok := s.resolveDeptCode(ctx, f.Department); ok {
			conditions = append(conditions, "I.DEPTCODE = ?")
			params = append(params, code)
		}
	}
	if f.Hospital != "" {
		conditions = append(conditions, "I.HOSPITALID = ?")
		params = append(params, f.Hospital)
	}

	q := "SELECT COALESCE(ADMISSIONTYPE, 'UNKNOWN') AS ADMISSIONTYPE, COUNT(*) AS CNT FROM INPATIENT I " +
		"WHERE " + strings.Join(conditions, " AND ") +
		" GROUP BY COALESCE(ADMISSIONTYPE, 'UNKNOWN') ORDER BY CNT DESC, ADMISSIONTYPE"

	rows, err := s.DB.QueryContext(ctx, q, params...)
	if err != nil {
		return nil, errs.NewQueryError("admission types", err)
	}
	defer rows.Close()

	var out []models.AggregateRow
	for rows.Next() {
		var r models.AggregateRow
		if err := rows.Scan(&r.Key, &r.Total); err != nil {
			return nil, errs.NewQueryError("admission types", err)
		}
		out = append(out, r)
	}
	FillAverages(out, f.Days())
	return out, rows.Err()
}

var ageBuckets = []struct {
	label string
	lo    int
	hi    int
}{
	{"0-19", 0, 19},
	{"20-39", 20, 39},
	{"40-59", 40, 59},
	{"60-79", 60, 79},
	{"80+", 80, 1 << 30},
}

// AgeDistribution buckets patient ages into the fixed display groups and
// returns the mean age alongside.
func (s *ReportService) AgeDistribution(ctx context.Context) (float64, []models.AggregateRow, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx,
		"SELECT TIMESTAMPDIFF(YEAR, DOB, CURDATE()) AS AGE FROM PATIENT WHERE DOB IS NOT NULL")
	if err != nil {
		return 0, nil, errs.NewQueryError("age distribution", err)
	}
	defer rows.Close()

	counts := make([]int, len(ageBuckets))
	var sum, n int
	for rows.Next() {
		var age int
		if err := rows.Scan(&age); err != nil {
			return 0, nil, errs.NewQueryError("age distribution", err)
		}
		sum += age
		n++
		for i, b := range ageBuckets {
			if age >= b.lo && age <= b.hi {
				counts[i]++
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return 0, nil, errs.NewQueryError("age distribution", err)
	}

	out := make([]models.AggregateRow, len(ageBuckets))
	for i, b := range ageBuckets {
		out[i] = models.AggregateRow{Key: b.label, Total: counts[i]}
	}
	var avg float64
	if n > 0 {
		avg = float64(sum) / float64(n)
	}
	return avg, out, nil
}

// StateStats sums state-wise patient counts for the months covered by the
// filter range. STATESTATS is month-granular (THEYR, THEMNTH).
func (s *ReportService) StateStats(ctx context.Context, f models.FilterContext) ([]models.AggregateRow, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	conditions := []string{"(THEYR * 100 + THEMNTH) BETWEEN ? AND ?"}
	params := []interface{}{
		f.From.Year()*100 + int(f.From.Month()),
		f.To.Year()*100 + int(f.To.Month()),
	}
	if f.Hospital != "" {
		conditions = append(conditions, "HOSPITALID = ?")
		params = append(params, f.Hospital)
	}

	q := "SELECT STATE, SUM(CNT) AS CNT FROM STATESTATS WHERE " + strings.Join(conditions, " AND ") +
		" GROUP BY STATE ORDER BY CNT DESC, STATE"

	rows, err := s.DB.QueryContext(ctx, q, params...)
	if err != nil {
		return nil, errs.NewQueryError("state stats", err)
	}
	defer rows.Close()

	var out []models.AggregateRow
	for rows.Next() {
		var r models.AggregateRow
		if err := rows.Scan(&r.Key, &r.Total); err != nil {
			return nil, errs.NewQueryError("state stats", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// scanTable reads an arbitrary result set into a generic table.
func scanTable(rows *sql.Rows) (*models.Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	t := &models.Table{Columns: cols}
	for rows.Next() {
		cells := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range cells {
			if b, ok := v.([]byte); ok {
				cells[i] = string(b)
			}
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, rows.Err()
}

// StaffPatientRatio reads the precomputed ratio row if the table exists.
// Returns nil without error when no candidate table is usable, so the
// section renders "N/A".
func (s *ReportService) StaffPatientRatio(ctx context.Context) *models.Table {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	for _, tab := range []string{"STAFF_PATIENT_RATIO", "STAFF_PATIENT"} {
		rows, err := s.DB.QueryContext(ctx, "SELECT * FROM "+tab+" LIMIT 1")
		if err != nil {
			continue
		}
		t, err := scanTable(rows)
		rows.Close()
		if err == nil && len(t.Rows) > 0 {
			return t
		}
	}
	return nil
}

// FinancialSummary returns the first 200 rows of the FINANCIAL_SUMMARY
// view when present.
func (s *ReportService) FinancialSummary(ctx context.Context) (*models.Table, error) {
	return s.passthrough(ctx, "FINANCIAL_SUMMARY")
}

// QualityMetrics returns the first 200 rows of the QUALITY_METRICS view
// when present.
func (s *ReportService) QualityMetrics(ctx context.Context) (*models.Table, error) {
	return s.passthrough(ctx, "QUALITY_METRICS")
}

func (s *ReportService) passthrough(ctx context.Context, table string) (*models.Table, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, "SELECT * FROM "+table+" LIMIT 200")
	if err != nil {
		return nil, errs.NewQueryError(table, err)
	}
	defer rows.Close()

	t, err := scanTable(rows)
	if err != nil {
		return nil, errs.NewQueryError(table, err)
	}
	return t, nil
}
