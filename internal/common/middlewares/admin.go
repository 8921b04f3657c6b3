package middlewares

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// RoleFetcher reads the current access role flag for a staff id straight
// from the database.
type RoleFetcher func(ctx context.Context, staffID string) (string, error)

// RequireAdmin rejects requests whose JWT role claim is not "admin", then
// re-checks the role against STAFFMASTER so a stale token cannot outlive
// a demotion.
func RequireAdmin(fetchRole RoleFetcher) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFromContext(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"status":  http.StatusUnauthorized,
					"message": "Missing or invalid JWT claims",
					"data":    nil,
				})
			}
			if claims.Role != "admin" {
				return c.JSON(http.StatusForbidden, map[string]interface{}{
					"status":  http.StatusForbidden,
					"message": "Only administrators can perform this action",
					"data":    nil,
				})
			}
			if fetchRole != nil {
				role, err := fetchRole(c.Request().Context(), claims.StaffID)
				if err != nil || role != "A" {
					return c.JSON(http.StatusForbidden, map[string]interface{}{
						"status":  http.StatusForbidden,
						"message": "Admin access revoked",
						"data":    nil,
					})
				}
			}
			return next(c)
		}
	}
}
