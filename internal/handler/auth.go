package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alexampersandria/ephemeride/internal/apperr"
	"github.com/alexampersandria/ephemeride/internal/config"
	"github.com/alexampersandria/ephemeride/internal/repository"
)

// AuthHandler bundles dependencies for login and auth configuration.
type AuthHandler struct {
	Cfg      config.Config
	Sessions *repository.SessionRepo
}

func NewAuthHandler(cfg config.Config, sessions *repository.SessionRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Sessions: sessions}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and opens a session. The session token is
// returned both in the body and in the Authorization response header so
// clients can pick it up either way.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.BadRequest)
	}
	if req.Email == "" || req.Password == "" {
		return fail(c, apperr.BadRequest)
	}

	session, err := h.Sessions.Create(c.Request().Context(),
		repository.Credentials{Email: req.Email, Password: req.Password},
		repository.SessionMetadata{IPAddress: c.RealIP(), UserAgent: c.Request().UserAgent()})
	if err != nil {
		return fail(c, err)
	}

	c.Response().Header().Set(echo.HeaderAuthorization, session.ID)
	return c.JSON(http.StatusCreated, session)
}

// AuthConfig tells clients whether signup currently requires an invite.
func (h *AuthHandler) AuthConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"invite_required": h.Cfg.InviteRequired})
}
