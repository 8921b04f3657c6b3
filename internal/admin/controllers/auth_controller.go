package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sssihms/dashboard-backend/internal/admin/services"
	"github.com/sssihms/dashboard-backend/internal/common/middlewares"
	"github.com/sssihms/dashboard-backend/pkg/utils"
)

const tokenLifetime = 12 * time.Hour

type LoginRequest struct {
	StaffID  string `json:"staff_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type AuthController struct {
	Service *services.StaffService
}

func NewAuthController(svc *services.StaffService) *AuthController {
	return &AuthController{Service: svc}
}

func respond(c echo.Context, code int, msg string, data interface{}) error {
	return c.JSON(code, map[string]interface{}{
		"status":  code,
		"message": msg,
		"data":    data,
	})
}

// Login handles POST /auth/login
func (ac *AuthController) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Validation failed: "+err.Error(), nil)
	}

	auth, err := ac.Service.Authenticate(c.Request().Context(), req.StaffID, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return respond(c, http.StatusUnauthorized, "Invalid staff id or password", nil)
	case errors.Is(err, services.ErrLoginDisabled):
		return respond(c, http.StatusForbidden, "Login is not yet activated. Please contact admin.", nil)
	case err != nil:
		return respond(c, http.StatusInternalServerError, "Login failed: "+err.Error(), nil)
	}

	token, err := utils.GenerateJWTToken(auth.StaffID, auth.StaffName, auth.Role, auth.HospitalID,
		time.Now().Add(tokenLifetime))
	if err != nil {
		return respond(c, http.StatusInternalServerError, "Failed to generate token: "+err.Error(), nil)
	}

	return respond(c, http.StatusOK, "Login successful", map[string]interface{}{
		"token":       token,
		"staff_id":    auth.StaffID,
		"staff_name":  auth.StaffName,
		"role":        auth.Role,
		"hospital_id": auth.HospitalID,
	})
}

// ChangePassword handles POST /auth/change-password for the logged-in
// staff member.
func (ac *AuthController) ChangePassword(c echo.Context) error {
	claims, okClaims := middlewares.ClaimsFromContext(c)
	if !okClaims {
		return respond(c, http.StatusUnauthorized, "Invalid or missing token claims", nil)
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Validation failed: "+err.Error(), nil)
	}

	err := ac.Service.ChangePassword(c.Request().Context(), claims.StaffID, req.OldPassword, req.NewPassword)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return respond(c, http.StatusUnauthorized, "Current password is incorrect", nil)
	}
	if err != nil {
		return respond(c, http.StatusInternalServerError, "Failed to change password: "+err.Error(), nil)
	}
	return respond(c, http.StatusOK, "Password changed successfully", nil)
}
