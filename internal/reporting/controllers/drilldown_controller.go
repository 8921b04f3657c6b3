package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sssihms/dashboard-backend/internal/common/middlewares"
	"github.com/sssihms/dashboard-backend/internal/reporting/models"
	"github.com/sssihms/dashboard-backend/internal/reporting/services"
)

type DrillDownController struct {
	Service *services.DrillDownService
}

func NewDrillDownController(svc *services.DrillDownService) *DrillDownController {
	return &DrillDownController{Service: svc}
}

func sessionID(c echo.Context) (string, error) {
	claims, ok := middlewares.ClaimsFromContext(c)
	if !ok {
		return "", c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"status":  http.StatusUnauthorized,
			"message": "Invalid or missing token claims",
			"data":    nil,
		})
	}
	return claims.StaffID, nil
}

func (dc *DrillDownController) respondState(c echo.Context, sid string, st *models.DrillDownState, f models.FilterContext) error {
	rows, err := dc.Service.CurrentRows(c.Request().Context(), sid, f)
	if err != nil {
		return queryFailed(c, err)
	}
	return ok(c, "drill-down rows retrieved successfully", map[string]interface{}{
		"level":      st.Level,
		"level_name": st.Level.String(),
		"breadcrumb": st.Breadcrumb(),
		"rows":       rows,
	})
}

// GetRows handles GET /drilldown
func (dc *DrillDownController) GetRows(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	f, ferr := parseFilter(c)
	if ferr != nil {
		return badRequest(c, ferr.Error())
	}
	return dc.respondState(c, sid, dc.Service.State(sid), f)
}

// Enter handles POST /drilldown/enter
func (dc *DrillDownController) Enter(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	var req struct {
		Key string `json:"key"`
	}
	if err := c.Bind(&req); err != nil || req.Key == "" {
		return badRequest(c, "key is required")
	}
	f, ferr := parseFilter(c)
	if ferr != nil {
		return badRequest(c, ferr.Error())
	}
	return dc.respondState(c, sid, dc.Service.Enter(sid, req.Key), f)
}

// Back handles POST /drilldown/back
func (dc *DrillDownController) Back(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	f, ferr := parseFilter(c)
	if ferr != nil {
		return badRequest(c, ferr.Error())
	}
	return dc.respondState(c, sid, dc.Service.Back(sid), f)
}

// Home handles POST /drilldown/home
func (dc *DrillDownController) Home(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	f, ferr := parseFilter(c)
	if ferr != nil {
		return badRequest(c, ferr.Error())
	}
	return dc.respondState(c, sid, dc.Service.Home(sid), f)
}
