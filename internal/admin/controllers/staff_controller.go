package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sssihms/dashboard-backend/internal/admin/models"
	"github.com/sssihms/dashboard-backend/internal/admin/services"
	"github.com/sssihms/dashboard-backend/internal/common/errs"
	"github.com/sssihms/dashboard-backend/ws"
)

type StaffController struct {
	Service *services.StaffService
	Hub     *ws.Hub
}

func NewStaffController(svc *services.StaffService, hub *ws.Hub) *StaffController {
	return &StaffController{Service: svc, Hub: hub}
}

type SetLoginRequest struct {
	Enabled bool `json:"enabled"`
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=A U"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

func staffError(c echo.Context, op string, err error) error {
	var notFound *errs.NotFoundError
	if errors.As(err, &notFound) {
		return respond(c, http.StatusNotFound, err.Error(), nil)
	}
	return respond(c, http.StatusInternalServerError, "Failed to "+op+": "+err.Error(), nil)
}

// List handles GET /admin/staff
func (sc *StaffController) List(c echo.Context) error {
	staff, err := sc.Service.ListStaff(c.Request().Context())
	if err != nil {
		return staffError(c, "list staff", err)
	}
	return respond(c, http.StatusOK, "Staff roster retrieved successfully", staff)
}

// Add handles POST /admin/staff
func (sc *StaffController) Add(c echo.Context) error {
	var req models.NewStaffInput
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Validation failed: "+err.Error(), nil)
	}

	err := sc.Service.AddStaff(c.Request().Context(), req)
	if errors.Is(err, services.ErrStaffExists) {
		return respond(c, http.StatusConflict, "Staff id already exists", nil)
	}
	if err != nil {
		return staffError(c, "add staff", err)
	}

	sc.Hub.Notify(ws.EventStaffChanged, map[string]string{"staff_id": req.StaffID, "action": "added"})
	return respond(c, http.StatusOK, "Staff added successfully", map[string]string{"staff_id": req.StaffID})
}

// SetLogin handles PUT /admin/staff/:id/login
func (sc *StaffController) SetLogin(c echo.Context) error {
	var req SetLoginRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	id := c.Param("id")
	if err := sc.Service.SetLoginEnabled(c.Request().Context(), id, req.Enabled); err != nil {
		return staffError(c, "update login flag", err)
	}
	sc.Hub.Notify(ws.EventStaffChanged, map[string]string{"staff_id": id, "action": "login_updated"})
	return respond(c, http.StatusOK, "Login flag updated successfully", nil)
}

// SetRole handles PUT /admin/staff/:id/role
func (sc *StaffController) SetRole(c echo.Context) error {
	var req SetRoleRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Validation failed: "+err.Error(), nil)
	}
	id := c.Param("id")
	if err := sc.Service.SetAccessRole(c.Request().Context(), id, req.Role); err != nil {
		return staffError(c, "update access role", err)
	}
	sc.Hub.Notify(ws.EventStaffChanged, map[string]string{"staff_id": id, "action": "role_updated"})
	return respond(c, http.StatusOK, "Access role updated successfully", nil)
}

// ResetPassword handles PUT /admin/staff/:id/password
func (sc *StaffController) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Validation failed: "+err.Error(), nil)
	}
	id := c.Param("id")
	if err := sc.Service.ResetPassword(c.Request().Context(), id, req.NewPassword); err != nil {
		return staffError(c, "reset password", err)
	}
	return respond(c, http.StatusOK, "Password reset successfully", nil)
}

// Delete handles DELETE /admin/staff/:id
func (sc *StaffController) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := sc.Service.DeleteStaff(c.Request().Context(), id); err != nil {
		return staffError(c, "delete staff", err)
	}
	sc.Hub.Notify(ws.EventStaffChanged, map[string]string{"staff_id": id, "action": "deleted"})
	return respond(c, http.StatusOK, "Staff deleted successfully", nil)
}
