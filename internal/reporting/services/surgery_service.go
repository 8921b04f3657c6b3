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

// SurgeryService answers the Surgery Details tab: volume metrics, the
// surgeon roster and admission-to-surgery wait times.
type SurgeryService struct {
	DB      *sql.DB
	Timeout time.Duration
}

func NewSurgeryService(db *sql.DB, timeout time.Duration) *SurgeryService {
	return &SurgeryService{DB: db, Timeout: timeout}
}

func (s *SurgeryService) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func surgeryConditions(f models.FilterContext) ([]string, []interface{}) {
	conditions := []string{"S.SURGERYDATE BETWEEN ? AND ?"}
	params := []interface{}{f.FromDate(), f.ToDate()}
	if f.Department != "" {
		conditions = append(conditions, "D.DEPTNAME = ?")
		params = append(params, f.Department)
	}
	if f.Hospital != "" {
		conditions = append(conditions, "S.HOSPITALID = ?")
		params = append(params, f.Hospital)
	}
	return conditions, params
}

// Metrics computes total surgeries, the selected surgeon's count, the top
// surgery type and the daily average for the active filter. The surgery
// count joins DEPARTMENT so rows with broken dept references stay out,
// same as every other department-scoped section.
func (s *SurgeryService) Metrics(ctx context.Context, f models.FilterContext) (models.SurgeryMetrics, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	conditions, params := surgeryConditions(f)
	where := strings.Join(conditions, " AND ")
	base := "FROM SURGERY S JOIN DEPARTMENT D ON S.DEPTCODE = D.DEPTCODE AND S.HOSPITALID = D.HOSPITALID WHERE " + where

	var m models.SurgeryMetrics
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) "+base, params...).Scan(&m.Total); err != nil {
		log.Error().Err(err).Msg("surgery total query failed")
		return m, errs.NewQueryError("surgery total", err)
	}

	if f.SurgeonID != "" {
		var cnt int
		q := "SELECT COUNT(*) " + base + " AND S.SURGEONID = ?"
		if err := s.DB.QueryRowContext(ctx, q, append(append([]interface{}{}, params...), f.SurgeonID)...).Scan(&cnt); err != nil {
			return m, errs.NewQueryError("surgery by surgeon", err)
		}
		m.BySurgeon = &cnt
	}

	topQ := "SELECT COALESCE(SURGERYTYPE, 'UNKNOWN') AS SURGERYTYPE, COUNT(*) AS CNT " + base +
		" GROUP BY COALESCE(SURGERYTYPE, 'UNKNOWN') ORDER BY CNT DESC, SURGERYTYPE ASC LIMIT 1"
	switch err := s.DB.QueryRowContext(ctx, topQ, params...).Scan(&m.TopType, new(int)); err {
	case nil:
	case sql.ErrNoRows:
		m.TopType = "N/A"
	default:
		return m, errs.NewQueryError("top surgery type", err)
	}

	m.DailyAvg = AvgPerDay(m.Total, f.Days())
	return m, nil
}

// Surgeons returns the surgeon selector roster with surgery counts,
// lifetime-wide or restricted to the filter range. Only staff recorded as
// the performing surgeon in SURGERY_PERSONNEL qualify.
func (s *SurgeryService) Surgeons(ctx context.Context, f models.FilterContext, lifetime bool) ([]models.Surgeon, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	conditions := []string{"sp.STAFFROLE = 'SURGEON'"}
	params := []interface{}{}
	join := ""
	if !lifetime {
		join = " JOIN SURGERY s ON sp.SURGERYID = s.SURGERYID"
		conditions = append(conditions, "s.SURGERYDATE BETWEEN ? AND ?")
		params = append(params, f.FromDate(), f.ToDate())
	}
	if f.Hospital != "" {
		conditions = append(conditions, "sp.HOSPITALID = ?")
		params = append(params, f.Hospital)
	}

	q := `SELECT sp.STAFFID,
		COALESCE(sm.STAFFNAME, CONCAT(sp.STAFFID, ' (Name Missing)')) AS STAFFNAME,
		COUNT(*) AS TOTAL_SURGERIES
	FROM SURGERY_PERSONNEL sp
	LEFT JOIN STAFFMASTER sm ON sp.STAFFID = sm.STAFFID` + join + `
	WHERE ` + strings.Join(conditions, " AND ") + `
	GROUP BY sp.STAFFID, sm.STAFFNAME
	HAVING COUNT(*) > 0
	ORDER BY TOTAL_SURGERIES DESC, STAFFNAME`

	rows, err := s.DB.QueryContext(ctx, q, params...)
	if err != nil {
		log.Error().Err(err).Msg("surgeon roster query failed")
		return nil, errs.NewQueryError("surgeon roster", err)
	}
	defer rows.Close()

	var out []models.Surgeon
	for rows.Next() {
		var sg models.Surgeon
		if err := rows.Scan(&sg.StaffID, &sg.StaffName, &sg.TotalSurgeries); err != nil {
			return nil, errs.NewQueryError("surgeon roster", err)
		}
		out = append(out, sg)
	}
	return out, rows.Err()
}

// WaitTimes matches each surgery with its closest admission on the same
// MRN and summarizes the wait in days. Matches further than a year out are
// treated as unrelated admissions and dropped.
func (s *SurgeryService) WaitTimes(ctx context.Context, f models.FilterContext) (models.SurgeryWait, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	conditions := []string{
		"s.SURGERYDATE BETWEEN ? AND ?",
		"i.DOA IS NOT NULL",
		"s.SURGERYDATE >= i.DOA",
		"DATEDIFF(s.SURGERYDATE, i.DOA) <= 365",
	}
	params := []interface{}{f.FromDate(), f.ToDate()}
	if f.Hospital != "" {
		conditions = append(conditions, "s.HOSPITALID = ?")
		params = append(params, f.Hospital)
	}

	q := `WITH SurgeryAdmission AS (
		SELECT s.SURGERYID,
			DATEDIFF(s.SURGERYDATE, i.DOA) AS WAIT_DAYS,
			ROW_NUMBER() OVER (
				PARTITION BY s.SURGERYID
				ORDER BY ABS(DATEDIFF(s.SURGERYDATE, i.DOA))
			) AS rn
		FROM SURGERY s
		JOIN INPATIENT i ON s.MRN = i.MRN
		WHERE ` + strings.Join(conditions, " AND ") + `
	)
	SELECT COALESCE(AVG(WAIT_DAYS), 0), COUNT(*), COALESCE(MIN(WAIT_DAYS), 0), COALESCE(MAX(WAIT_DAYS), 0)
	FROM SurgeryAdmission
	WHERE rn = 1 AND WAIT_DAYS >= 0`

	var w models.SurgeryWait
	err := s.DB.QueryRowContext(ctx, q, params...).Scan(&w.AvgWaitDays, &w.TotalSurgeries, &w.MinWaitDays, &w.MaxWaitDays)
	if err != nil {
		log.Error().Err(err).Msg("surgery wait query failed")
		return w, errs.NewQueryError("surgery wait times", err)
	}
	return w, nil
}
