package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alexampersandria/ephemeride/internal/middleware"
	"github.com/alexampersandria/ephemeride/internal/repository"
)

// SessionHandler bundles dependencies for session endpoints.
type SessionHandler struct {
	Sessions *repository.SessionRepo
}

func NewSessionHandler(sessions *repository.SessionRepo) *SessionHandler {
	return &SessionHandler{Sessions: sessions}
}

// List returns every session belonging to the calling user, so clients
// can show "where you're logged in".
func (h *SessionHandler) List(c echo.Context) error {
	sessions, err := h.Sessions.ListForToken(c.Request().Context(), middleware.BearerToken(c))
	if err != nil {
		return fail(c, err)
	}
	if sessions == nil {
		sessions = []repository.Session{}
	}
	return c.JSON(http.StatusOK, sessions)
}

// Delete revokes the calling session, i.e. logout.
func (h *SessionHandler) Delete(c echo.Context) error {
	session := middleware.SessionFromContext(c)
	if _, err := h.Sessions.Revoke(c.Request().Context(), session.ID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
