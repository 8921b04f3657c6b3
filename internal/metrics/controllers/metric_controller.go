package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sssihms/dashboard-backend/internal/common/errs"
	"github.com/sssihms/dashboard-backend/internal/metrics/services"
	rmodels "github.com/sssihms/dashboard-backend/internal/reporting/models"
	"github.com/sssihms/dashboard-backend/ws"
)

type MetricController struct {
	Service *services.MetricService
	Hub     *ws.Hub
}

func NewMetricController(svc *services.MetricService, hub *ws.Hub) *MetricController {
	return &MetricController{Service: svc, Hub: hub}
}

// CreateMetricRequest carries either a raw definition file or the parsed
// fields directly.
type CreateMetricRequest struct {
	Content string `json:"content" validate:"required"`
}

func respond(c echo.Context, code int, msg string, data interface{}) error {
	return c.JSON(code, map[string]interface{}{
		"status":  code,
		"message": msg,
		"data":    data,
	})
}

func metricFilter(c echo.Context) (rmodels.FilterContext, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now

	if s := c.QueryParam("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return rmodels.FilterContext{}, errors.New("invalid from date, use YYYY-MM-DD")
		}
		from = t
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return rmodels.FilterContext{}, errors.New("invalid to date, use YYYY-MM-DD")
		}
		to = t
	}
	return rmodels.NewFilterContext(from, to,
		c.QueryParam("hospital"), c.QueryParam("dept"), "", "", "")
}

// List handles GET /metrics
func (mc *MetricController) List(c echo.Context) error {
	defs, err := mc.Service.List()
	if err != nil {
		return respond(c, http.StatusInternalServerError, "failed to load metrics: "+err.Error(), nil)
	}
	return respond(c, http.StatusOK, "metrics retrieved successfully", defs)
}

// Create handles POST /metrics. The body carries the line-oriented
// definition file; the metric id comes back in the response.
func (mc *MetricController) Create(c echo.Context) error {
	var req CreateMetricRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Validation failed: "+err.Error(), nil)
	}

	def, err := services.ParseDefinition(req.Content)
	if err != nil {
		var malformed *errs.MalformedDefinitionError
		if errors.As(err, &malformed) {
			return respond(c, http.StatusBadRequest, err.Error(), nil)
		}
		return respond(c, http.StatusInternalServerError, "failed to parse metric: "+err.Error(), nil)
	}

	id, err := mc.Service.Save(def)
	if err != nil {
		return respond(c, http.StatusConflict, "failed to save metric: "+err.Error(), nil)
	}

	mc.Hub.Notify(ws.EventMetricSaved, map[string]string{"id": id, "name": def.Name})
	return respond(c, http.StatusOK, "metric saved successfully", map[string]string{"id": id})
}

// Delete handles DELETE /metrics/:id
func (mc *MetricController) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := mc.Service.Delete(id); err != nil {
		var notFound *errs.NotFoundError
		if errors.As(err, &notFound) {
			return respond(c, http.StatusNotFound, err.Error(), nil)
		}
		return respond(c, http.StatusInternalServerError, "failed to delete metric: "+err.Error(), nil)
	}
	mc.Hub.Notify(ws.EventMetricDeleted, map[string]string{"id": id})
	return respond(c, http.StatusOK, "metric deleted successfully", nil)
}

// Execute handles GET /metrics/:id/execute with the standard filter params.
func (mc *MetricController) Execute(c echo.Context) error {
	f, err := metricFilter(c)
	if err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	result, err := mc.Service.Execute(c.Request().Context(), c.Param("id"), f)
	if err != nil {
		var notFound *errs.NotFoundError
		if errors.As(err, &notFound) {
			return respond(c, http.StatusNotFound, err.Error(), nil)
		}
		// Execution failures stay inline per metric so one broken query
		// does not abort the rest of the dashboard.
		var execErr *errs.MetricExecutionError
		if errors.As(err, &execErr) {
			return respond(c, http.StatusOK, "metric execution failed", map[string]string{
				"id":    execErr.MetricID,
				"error": execErr.Error(),
			})
		}
		return respond(c, http.StatusInternalServerError, "metric execution failed: "+err.Error(), nil)
	}
	return respond(c, http.StatusOK, "metric executed successfully", result)
}
