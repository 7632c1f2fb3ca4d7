package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/venuehub/venuehub/internal/config"
	"github.com/venuehub/venuehub/internal/session"
)

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestRateLimitReturns429WhenBucketEmpty(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            2 * time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
	e := echo.New()
	e.GET("/api/fetchEvents", ok, RateLimit(cfg, rdb))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/fetchEvents", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if i == 2 && rec.Header().Get("Retry-After") == "" {
			t.Fatal("missing Retry-After on 429")
		}
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want [200 200 429]", codes)
	}
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	e := echo.New()
	e.GET("/", ok, RateLimit(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil))
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: code %d", i, rec.Code)
		}
	}
}

func TestOriginMatcher(t *testing.T) {
	match := OriginMatcher([]string{"http://localhost:3000"}, []string{".netlify.app", "railway.app"})
	cases := map[string]bool{
		"http://localhost:3000":        true,
		"http://localhost:3001":        false,
		"https://venuehub.netlify.app": true,
		"https://a.b.railway.app":      true,
		"https://netlify.app.evil.com": false,
		"https://evilnetlify.app":      false,
		"not a url":                    false,
	}
	for origin, want := range cases {
		got, err := match(origin)
		if err != nil || got != want {
			t.Errorf("match(%q) = %v, %v; want %v", origin, got, err, want)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	e := echo.New()
	e.Use(CORS([]string{"http://localhost:3000"}, nil))
	e.POST("/api/login", ok)

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "http://localhost:3000" {
		t.Fatalf("allow-origin = %q", got)
	}
	if rec.Header().Get(echo.HeaderAccessControlAllowCredentials) != "true" {
		t.Fatal("credentials not allowed")
	}
}

type stubLoader struct {
	s   session.Session
	err error
}

func (l stubLoader) Load(context.Context, http.ResponseWriter, *http.Request) (session.Session, error) {
	return l.s, l.err
}

func TestSessionGates(t *testing.T) {
	cases := []struct {
		name   string
		loader stubLoader
		want   int
	}{
		{"no session", stubLoader{err: session.ErrNotFound}, http.StatusUnauthorized},
		{"tampered cookie", stubLoader{err: session.ErrInvalidCookie}, http.StatusUnauthorized},
		{"user", stubLoader{s: session.Session{ID: "x", Role: "user"}}, http.StatusOK},
		{"unknown role", stubLoader{s: session.Session{ID: "x", Role: "guest"}}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			e.Use(LoadSession(tc.loader))
			e.POST("/api/updateLocation", ok, RequireSession(), RequireRole("user", "admin"))

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/updateLocation", nil))
			if rec.Code != tc.want {
				t.Fatalf("code = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
