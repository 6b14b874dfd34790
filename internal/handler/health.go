package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// HealthHandler reports service identity and database reachability.
type HealthHandler struct {
	DB *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{DB: db}
}

// Root identifies the service. Useful as a smoke check that the server is
// up at all.
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"name": "ephemeride", "version": Version})
}

// Health pings the database with a short timeout.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
