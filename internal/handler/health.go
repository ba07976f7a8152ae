package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Counter reports the size of a store.
type Counter interface {
	Count() int
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	sessions Counter
	games    Counter
}

// NewHealthHandler creates a new HealthHandler. Either counter may be nil.
func NewHealthHandler(sessions, games Counter) *HealthHandler {
	return &HealthHandler{
		sessions: sessions,
		games:    games,
	}
}

// Check returns the health status of the server.
func (h *HealthHandler) Check(c echo.Context) error {
	resp := map[string]interface{}{
		"status": "ok",
	}
	if h.sessions != nil {
		resp["sessions"] = h.sessions.Count()
	}
	if h.games != nil {
		resp["games"] = h.games.Count()
	}
	return c.JSON(http.StatusOK, resp)
}
