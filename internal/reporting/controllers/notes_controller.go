package controllers

import (
	"github.com/labstack/echo/v4"

	"github.com/sssihms/dashboard-backend/internal/reporting/services"
)

type NotesController struct {
	Service *services.NotesService
}

func NewNotesController(svc *services.NotesService) *NotesController {
	return &NotesController{Service: svc}
}

// SearchMRNs handles GET /reports/mrns?q=fragment
func (nc *NotesController) SearchMRNs(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return badRequest(c, "q is required")
	}
	mrns, err := nc.Service.SearchMRNs(c.Request().Context(), q)
	if err != nil {
		return queryFailed(c, err)
	}
	return ok(c, "mrn search completed successfully", mrns)
}

// GetReports handles GET /reports/:mrn
func (nc *NotesController) GetReports(c echo.Context) error {
	mrn := c.Param("mrn")
	if mrn == "" {
		return badRequest(c, "mrn is required")
	}
	notes, err := nc.Service.ReportsForMRN(c.Request().Context(), mrn)
	if err != nil {
		return queryFailed(c, err)
	}
	return ok(c, "reports retrieved successfully", notes)
}
