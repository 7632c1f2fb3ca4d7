package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/venuehub/venuehub/internal/session"
)

// SessionLoader resolves the session a request carries. *session.Manager
// implements it.
type SessionLoader interface {
	Load(ctx context.Context, w http.ResponseWriter, r *http.Request) (session.Session, error)
}

// LoadSession attaches the caller's session, when there is a live one, to the
// echo context and rolls its expiry. Requests without a session pass through
// untouched; RequireSession decides whether that is acceptable.
func LoadSession(loader SessionLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, err := loader.Load(c.Request().Context(), c.Response(), c.Request())
			switch {
			case err == nil:
				session.WithContext(c, s)
			case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrInvalidCookie):
			default:
				c.Logger().Warnf("session: load failed: %v", err)
			}
			return next(c)
		}
	}
}

// RequireSession rejects requests that reached it without a session.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := session.FromContext(c); !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Not authenticated"})
			}
			return next(c)
		}
	}
}
