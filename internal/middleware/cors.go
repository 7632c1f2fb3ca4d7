package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// OriginMatcher reports whether a browser origin may call the API with
// credentials: either an exact entry of allowed, or a host under one of
// suffixes (".netlify.app" matches "https://site.netlify.app").
func OriginMatcher(allowed, suffixes []string) func(origin string) (bool, error) {
	exact := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		exact[strings.TrimRight(o, "/")] = true
	}
	domains := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		if s = strings.Trim(strings.TrimSpace(s), "."); s != "" {
			domains = append(domains, strings.ToLower(s))
		}
	}
	return func(origin string) (bool, error) {
		if exact[origin] {
			return true, nil
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false, nil
		}
		host := strings.ToLower(u.Hostname())
		for _, d := range domains {
			if strings.HasSuffix(host, "."+d) {
				return true, nil
			}
		}
		return false, nil
	}
}

// CORS allows credentialed cross-origin calls from matching origins.
// Requests without an Origin header are not affected.
func CORS(allowed, suffixes []string) echo.MiddlewareFunc {
	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOriginFunc:  OriginMatcher(allowed, suffixes),
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept},
		ExposeHeaders:    []string{"X-Feed-Cache", "X-Feed-Fetched-At", echo.HeaderXRequestID},
	})
}
