package services

import (
	"context"
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sssihms/dashboard-backend/internal/common/errs"
	"github.com/sssihms/dashboard-backend/internal/reporting/models"
)

// OccupancyService derives bed occupancy from BEDMASTER capacity and the
// CENSUSDATA daily movement ledger. CENSUSDATA.SPECIALITY holds ward
// locations that match BEDMASTER.LOCATION, while BEDMASTER.SPECIALITY is
// the owning department.
type OccupancyService struct {
	DB      *sql.DB
	Timeout time.Duration
}

func NewOccupancyService(db *sql.DB, timeout time.Duration) *OccupancyService {
	return &OccupancyService{DB: db, Timeout: timeout}
}

func (s *OccupancyService) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

type bedRow struct {
	speciality string
	location   string
	strength   int
}

func (s *OccupancyService) loadBeds(ctx context.Context, dept, location string) ([]bedRow, error) {
	conditions := []string{"STATUS = 'A'"}
	params := []interface{}{}
	if dept != "" {
		conditions = append(conditions, "SPECIALITY = ?")
		params = append(params, dept)
	}
	if location != "" {
		conditions = append(conditions, "LOCATION = ?")
		params = append(params, location)
	}
	q := "SELECT SPECIALITY, LOCATION, COALESCE(BEDSTRENGTH, 0) FROM BEDMASTER WHERE " +
		strings.Join(conditions, " AND ")

	rows, err := s.DB.QueryContext(ctx, q, params...)
	if err != nil {
		return nil, errs.NewQueryError("bed master", err)
	}
	defer rows.Close()

	var out []bedRow
	for rows.Next() {
		var b bedRow
		if err := rows.Scan(&b.speciality, &b.location, &b.strength); err != nil {
			return nil, errs.NewQueryError("bed master", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Summary computes the occupancy rate and average daily census for the
// active range, optionally scoped to a department or a single ward
// location. Rate is patient-days over bed-days; a zero-bed scope yields a
// zero summary rather than an error.
func (s *OccupancyService) Summary(ctx context.Context, f models.FilterContext, location string) (models.OccupancySummary, []models.CensusDay, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	beds, err := s.loadBeds(ctx, f.Department, location)
	if err != nil {
		log.Error().Err(err).Msg("bed occupancy: bed master query failed")
		return models.OccupancySummary{}, nil, err
	}

	totalBeds := 0
	var deptLocations []string
	for _, b := range beds {
		totalBeds += b.strength
		if f.Department != "" && b.speciality == f.Department {
			deptLocations = append(deptLocations, b.location)
		}
	}
	if totalBeds == 0 {
		return models.OccupancySummary{}, nil, nil
	}

	conditions := []string{"THEDATE BETWEEN ? AND ?"}
	params := []interface{}{f.FromDate(), f.ToDate()}
	switch {
	case location != "":
		conditions = append(conditions, "SPECIALITY = ?")
		params = append(params, location)
	case len(deptLocations) > 0:
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(deptLocations)), ", ")
		conditions = append(conditions, "SPECIALITY IN ("+placeholders+")")
		for _, loc := range deptLocations {
			params = append(params, loc)
		}
	}

	q := `SELECT THEDATE, SPECIALITY,
		COALESCE(OPBAL, 0), COALESCE(ADMIT, 0), COALESCE(DISCH, 0),
		COALESCE(TRIN, 0), COALESCE(TROUT, 0), COALESCE(DEATH, 0)
	FROM CENSUSDATA
	WHERE ` + strings.Join(conditions, " AND ") + `
	ORDER BY THEDATE, SPECIALITY`

	rows, err := s.DB.QueryContext(ctx, q, params...)
	if err != nil {
		log.Error().Err(err).Msg("bed occupancy: census query failed")
		return models.OccupancySummary{}, nil, errs.NewQueryError("census data", err)
	}
	defer rows.Close()

	var days []models.CensusDay
	totalPatientDays := 0
	for rows.Next() {
		var d models.CensusDay
		if err := rows.Scan(&d.Date, &d.Speciality, &d.Opening, &d.Admitted,
			&d.Discharged, &d.TransferIn, &d.TransferOut, &d.Deaths); err != nil {
			return models.OccupancySummary{}, nil, errs.NewQueryError("census data", err)
		}
		d.Occupancy = d.Opening + d.Admitted + d.TransferIn - d.Discharged - d.TransferOut - d.Deaths
		totalPatientDays += d.Occupancy
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return models.OccupancySummary{}, nil, errs.NewQueryError("census data", err)
	}

	if len(days) == 0 {
		return models.OccupancySummary{TotalBeds: totalBeds}, nil, nil
	}

	periodDays := f.Days()
	availableBedDays := totalBeds * periodDays

	summary := models.OccupancySummary{
		TotalBeds:      totalBeds,
		OccupancyRate:  round2(float64(totalPatientDays) / float64(availableBedDays) * 100),
		AvgDailyCensus: round1(float64(totalPatientDays) / float64(periodDays)),
	}
	return summary, days, nil
}

// DepartmentBreakdown reports one occupancy line per owning department.
func (s *OccupancyService) DepartmentBreakdown(ctx context.Context, f models.FilterContext) ([]models.OccupancyBreakdownRow, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx,
		"SELECT DISTINCT SPECIALITY FROM BEDMASTER WHERE STATUS = 'A' AND SPECIALITY IS NOT NULL ORDER BY SPECIALITY")
	if err != nil {
		return nil, errs.NewQueryError("department breakdown", err)
	}
	defer rows.Close()

	var depts []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, errs.NewQueryError("department breakdown", err)
		}
		depts = append(depts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewQueryError("department breakdown", err)
	}

	out := make([]models.OccupancyBreakdownRow, 0, len(depts))
	for _, dept := range depts {
		scoped := f
		scoped.Department = dept
		summary, _, err := s.Summary(ctx, scoped, "")
		if err != nil {
			return nil, err
		}
		out = append(out, models.OccupancyBreakdownRow{
			Department:     dept,
			TotalBeds:      summary.TotalBeds,
			AvgDailyCensus: summary.AvgDailyCensus,
			OccupancyRate:  summary.OccupancyRate,
		})
	}
	return out, nil
}

// LocationBreakdown reports one occupancy line per ward location,
// optionally restricted to the filter's department.
func (s *OccupancyService) LocationBreakdown(ctx context.Context, f models.FilterContext) ([]models.OccupancyBreakdownRow, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	beds, err := s.loadBeds(ctx, f.Department, "")
	if err != nil {
		return nil, err
	}

	out := make([]models.OccupancyBreakdownRow, 0, len(beds))
	for _, b := range beds {
		scoped := f
		scoped.Department = b.speciality
		summary, _, err := s.Summary(ctx, scoped, b.location)
		if err != nil {
			return nil, err
		}
		out = append(out, models.OccupancyBreakdownRow{
			Department:     b.speciality,
			Location:       b.location,
			TotalBeds:      b.strength,
			AvgDailyCensus: summary.AvgDailyCensus,
			OccupancyRate:  summary.OccupancyRate,
		})
	}
	return out, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
