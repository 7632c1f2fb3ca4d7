package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/venuehub/venuehub/internal/session"
)

// RequireRole lets a request through only when its session holds one of
// roles. It must run after LoadSession; a request without a session is
// answered 401, a session with another role 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := session.FromContext(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Not authenticated"})
			}
			if !allowed[s.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "Forbidden"})
			}
			return next(c)
		}
	}
}
