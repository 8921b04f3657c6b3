package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sssihms/dashboard-backend/internal/reporting/models"
	"github.com/sssihms/dashboard-backend/internal/reporting/services"
)

type DashboardController struct {
	Reports   *services.ReportService
	Occupancy *services.OccupancyService
	Surgery   *services.SurgeryService
}

func NewDashboardController(reports *services.ReportService, occ *services.OccupancyService, surg *services.SurgeryService) *DashboardController {
	return &DashboardController{Reports: reports, Occupancy: occ, Surgery: surg}
}

// parseFilter builds the FilterContext from query params. Dates default
// to the first of the current month through today.
func parseFilter(c echo.Context) (models.FilterContext, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now

	if s := c.QueryParam("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return models.FilterContext{}, errors.New("invalid from date, use YYYY-MM-DD")
		}
		from = t
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return models.FilterContext{}, errors.New("invalid to date, use YYYY-MM-DD")
		}
		to = t
	}

	return models.NewFilterContext(from, to,
		c.QueryParam("hospital"),
		c.QueryParam("dept"),
		c.QueryParam("ordering_dept"),
		c.QueryParam("category"),
		c.QueryParam("surgeon_id"),
	)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]interface{}{
		"status":  http.StatusBadRequest,
		"message": msg,
		"data":    nil,
	})
}

func queryFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"status":  http.StatusInternalServerError,
		"message": "query failed: " + err.Error(),
		"data":    nil,
	})
}

func ok(c echo.Context, msg string, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": msg,
		"data":    data,
	})
}

// okPartial is ok with per-section failure messages attached. Used by
// composite endpoints where one failed aggregate must not suppress the
// rest.
func okPartial(c echo.Context, msg string, data interface{}, sectionErrs map[string]string) error {
	body := map[string]interface{}{
		"status":  http.StatusOK,
		"message": msg,
		"data":    data,
	}
	if len(sectionErrs) > 0 {
		body["errors"] = sectionErrs
	}
	return c.JSON(http.StatusOK, body)
}

// GetGeneral handles GET /dashboard/general. Each aggregate degrades on
// its own: a failed one falls back to a neutral value and reports a
// per-section error while the rest still render.
func (dc *DashboardController) GetGeneral(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	sectionErrs := map[string]string{}

	inpatients, err := dc.Reports.LoadInpatients(ctx, f)
	if err != nil {
		inpatients = nil
		sectionErrs["inpatients"] = err.Error()
	}
	outpatients, err := dc.Reports.CountOutpatients(ctx, f)
	if err != nil {
		outpatients = 0
		sectionErrs["outpatients"] = err.Error()
	}

	kpis := services.ComputeGeneralKPIs(inpatients, outpatients, f.From, f.To)
	return okPartial(c, "general KPIs retrieved successfully", kpis, sectionErrs)
}

// GetAdmissionTypes handles GET /dashboard/admission-types
func (dc *DashboardController) GetAdmissionTypes(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	rows, err := dc.Reports.AdmissionTypeBreakdown(c.Request().Context(), f)
	if err != nil {
		return queryFailed(c, err)
	}
	return ok(c, "admission type breakdown retrieved successfully", rows)
}

// GetAgeDistribution handles GET /dashboard/age-distribution
func (dc *DashboardController) GetAgeDistribution(c echo.Context) error {
	avg, rows, err := dc.Reports.AgeDistribution(c.Request().Context())
	if err != nil {
		return queryFailed(c, err)
	}
	return ok(c, "age distribution retrieved successfully", map[string]interface{}{
		"average_age": avg,
		"groups":      rows,
	})
}

// GetStateStats handles GET /dashboard/state-stats. An optional top_n
// param folds the remainder into an Others bucket.
func (dc *DashboardController) GetStateStats(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	rows, err := dc.Reports.StateStats(c.Request().Context(), f)
	if err != nil {
		return queryFailed(c, err)
	}
	if s := c.QueryParam("top_n"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return badRequest(c, "invalid top_n")
		}
		rows = services.TopNWithOthers(rows, n)
	}
	return ok(c, "state statistics retrieved successfully", rows)
}

// GetOccupancy handles GET /dashboard/occupancy
func (dc *DashboardController) GetOccupancy(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	summary, census, err := dc.Occupancy.Summary(c.Request().Context(), f, c.QueryParam("location"))
	if err != nil {
		return queryFailed(c, err)
	}
	return ok(c, "bed occupancy retrieved successfully", map[string]interface{}{
		"summary": summary,
		"census":  census,
	})
}

// GetOccupancyByDepartment handles GET /dashboard/occupancy/departments
func (dc *DashboardController) GetOccupancyByDepartment(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	rows, err := dc.Occupancy.DepartmentBreakdown(c.Request().Context(), f)
	if err != nil {
		return queryFailed(c, err)
	}
	return ok(c, "department occupancy retrieved successfully", rows)
}

// GetOccupancyByLocation handles GET /dashboard/occupancy/locations
func (dc *DashboardController) GetOccupancyByLocation(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	rows, err := dc.Occupancy.LocationBreakdown(c.Request().Context(), f)
	if err != nil {
		return queryFailed(c, err)
	}
	return ok(c, "location occupancy retrieved successfully", rows)
}

// GetSurgeryMetrics handles GET /dashboard/surgery
func (dc *DashboardController) GetSurgeryMetrics(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	m, err := dc.Surgery.Metrics(c.Request().Context(), f)
	if err != nil {
		return queryFailed(c, err)
	}
	return ok(c, "surgery metrics retrieved successfully", m)
}

// GetSurgeons handles GET /dashboard/surgery/surgeons
func (dc *DashboardController) GetSurgeons(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	lifetime := c.QueryParam("lifetime") != "false"
	rows, err := dc.Surgery.Surgeons(c.Request().Context(), f, lifetime)
	if err != nil {
		return queryFailed(c, err)
	}
	return ok(c, "surgeon roster retrieved successfully", rows)
}

// GetSurgeryWaitTimes handles GET /dashboard/surgery/wait-times
func (dc *DashboardController) GetSurgeryWaitTimes(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	w, err := dc.Surgery.WaitTimes(c.Request().Context(), f)
	if err != nil {
		return queryFailed(c, err)
	}
	return ok(c, "surgery wait times retrieved successfully", w)
}

// GetStaffPatientRatio handles GET /dashboard/staff-ratio
func (dc *DashboardController) GetStaffPatientRatio(c echo.Context) error {
	table := dc.Reports.StaffPatientRatio(c.Request().Context())
	if table == nil {
		return ok(c, "staff to patient ratio unavailable", nil)
	}
	return ok(c, "staff to patient ratio retrieved successfully", table)
}

// GetFinancialSummary handles GET /dashboard/financial-summary
func (dc *DashboardController) GetFinancialSummary(c echo.Context) error {
	table, err := dc.Reports.FinancialSummary(c.Request().Context())
	if err != nil {
		return queryFailed(c, err)
	}
	return ok(c, "financial summary retrieved successfully", table)
}

// GetQualityMetrics handles GET /dashboard/quality-metrics
func (dc *DashboardController) GetQualityMetrics(c echo.Context) error {
	table, err := dc.Reports.QualityMetrics(c.Request().Context())
	if err != nil {
		return queryFailed(c, err)
	}
	return ok(c, "quality metrics retrieved successfully", table)
}

// GetDepartments handles GET /selectors/departments
func (dc *DashboardController) GetDepartments(c echo.Context) error {
	rows, err := dc.Reports.ListDepartments(c.Request().Context())
	if err != nil {
		return queryFailed(c, err)
	}
	return ok(c, "departments retrieved successfully", rows)
}

// GetHospitals handles GET /selectors/hospitals
func (dc *DashboardController) GetHospitals(c echo.Context) error {
	rows, err := dc.Reports.ListHospitals(c.Request().Context())
	if err != nil {
		return queryFailed(c, err)
	}
	return ok(c, "hospitals retrieved successfully", rows)
}

// GetCategories handles GET /selectors/categories
func (dc *DashboardController) GetCategories(c echo.Context) error {
	rows, err := dc.Reports.ListCategories(c.Request().Context())
	if err != nil {
		return queryFailed(c, err)
	}
	return ok(c, "categories retrieved successfully", rows)
}
