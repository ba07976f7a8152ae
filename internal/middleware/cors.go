// Package middleware provides HTTP middleware functions.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CORSMiddleware returns a CORS middleware that allows credentialed requests from
// the configured origins and from localhost during development.
func CORSMiddleware(allowedOrigins ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin != "" {
			allowed[strings.TrimSuffix(origin, "/")] = true
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get("Origin")

			if isAllowedOrigin(origin, allowed) {
				h := c.Response().Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			}

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}

			return next(c)
		}
	}
}

// isAllowedOrigin checks if the origin is allowed for CORS.
func isAllowedOrigin(origin string, allowed map[string]bool) bool {
	if origin == "" {
		return false
	}

	if allowed[origin] {
		return true
	}

	// Allow localhost for development
	return strings.HasPrefix(origin, "http://localhost:")
}
