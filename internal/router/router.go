// Package router registers the HTTP routes of the API.
package router

import (
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/venuehub/venuehub/internal/config"
	"github.com/venuehub/venuehub/internal/handler"
	"github.com/venuehub/venuehub/internal/middleware"
	"github.com/venuehub/venuehub/internal/model"
)

// API groups the handlers and shared middleware dependencies of /api.
type API struct {
	Sessions  middleware.SessionLoader
	Auth      *handler.AuthHandler
	Events    *handler.EventsHandler
	Favorites *handler.FavoritesHandler
	RateLimit config.RateLimitConfig
	Redis     *redis.Client // nil disables rate limiting
}

// RegisterRoutes registers routes that need neither a session nor rate
// limiting.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI mounts every /api endpoint. Login, signup and logout manage
// the cookie themselves and never load the presented session.
func RegisterAPI(e *echo.Echo, a API) {
	rl := middleware.RateLimit(a.RateLimit, a.Redis)
	withSession := []echo.MiddlewareFunc{middleware.LoadSession(a.Sessions), rl}
	member := append(withSession[:len(withSession):len(withSession)],
		middleware.RequireSession(),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	)

	api := e.Group("/api")
	api.GET("/check-auth", a.Auth.CheckAuth, withSession...)
	api.POST("/signup", a.Auth.Signup, rl)
	api.POST("/login", a.Auth.Login, rl)
	api.POST("/logout", a.Auth.Logout, rl)

	api.GET("/fetchEvents", a.Events.FetchEvents, withSession...)

	api.POST("/updateLocation", a.Favorites.UpdateLocation, member...)
	api.GET("/locations", a.Favorites.ListLocations, member...)
}

// RegisterStatic serves the built web client from dir, falling back to
// index.html for client-side routes. An empty dir registers nothing.
func RegisterStatic(e *echo.Echo, dir string) {
	if dir == "" {
		return
	}
	e.Use(echomw.StaticWithConfig(echomw.StaticConfig{
		Root:  dir,
		Index: "index.html",
		HTML5: true,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/")
		},
	}))
}
