package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alexampersandria/ephemeride/internal/apperr"
	"github.com/alexampersandria/ephemeride/internal/config"
	"github.com/alexampersandria/ephemeride/internal/middleware"
	"github.com/alexampersandria/ephemeride/internal/queue"
	"github.com/alexampersandria/ephemeride/internal/repository"
	"github.com/alexampersandria/ephemeride/internal/service"
	"github.com/alexampersandria/ephemeride/internal/utils"
)

// UserHandler bundles dependencies for account endpoints. Registration
// touches most of the system: invites, the user row, the default
// taxonomy, the first session, and the registered event.
type UserHandler struct {
	Cfg        config.Config
	Users      *repository.UserRepo
	Sessions   *repository.SessionRepo
	Invites    *repository.InviteRepo
	Categories *repository.CategoryRepo
	Tags       *repository.TagRepo
	Publisher  *service.Publisher
}

func NewUserHandler(cfg config.Config, users *repository.UserRepo, sessions *repository.SessionRepo,
	invites *repository.InviteRepo, categories *repository.CategoryRepo, tags *repository.TagRepo,
	publisher *service.Publisher) *UserHandler {
	return &UserHandler{
		Cfg:        cfg,
		Users:      users,
		Sessions:   sessions,
		Invites:    invites,
		Categories: categories,
		Tags:       tags,
		Publisher:  publisher,
	}
}

type registerReq struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Invite   *string `json:"invite"`
}

type updateUserReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updatePasswordReq struct {
	Password string `json:"password"`
}

// Register creates an account. When invites are required the code is
// checked up front but only redeemed once the account exists, so a
// rejected signup (bad input, taken email) leaves the invite usable. The
// redemption's conditional write still guards concurrent use of the same
// code; losing that race unwinds the fresh account. The new account gets
// the default taxonomy and an immediate session.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.BadRequest)
	}

	ctx := c.Request().Context()

	var invite *string
	if h.Cfg.InviteRequired {
		if req.Invite == nil || *req.Invite == "" {
			return fail(c, apperr.InviteNotFound)
		}
		inv, err := h.Invites.Get(ctx, *req.Invite)
		if err != nil {
			return fail(c, err)
		}
		if inv.Used {
			return fail(c, apperr.InviteUsed)
		}
		invite = req.Invite
	}

	user, err := h.Users.Create(ctx, repository.CreateUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Invite:   invite,
	})
	if err != nil {
		return fail(c, err)
	}

	if invite != nil {
		if _, err := h.Invites.Use(ctx, *invite); err != nil {
			_, _ = h.Users.Delete(ctx, user.ID)
			return fail(c, err)
		}
	}

	if err := repository.SeedDefaultData(ctx, h.Categories, h.Tags, user.ID); err != nil {
		return fail(c, err)
	}

	session, err := h.Sessions.Create(ctx,
		repository.Credentials{Email: req.Email, Password: req.Password},
		repository.SessionMetadata{IPAddress: c.RealIP(), UserAgent: c.Request().UserAgent()})
	if err != nil {
		return fail(c, err)
	}

	_ = h.Publisher.PublishUserRegistered(ctx, queue.UserRegisteredEvent{
		UserID:       user.ID,
		Email:        user.Email,
		Invited:      invite != nil,
		RegisteredAt: utils.UnixMS(),
	})

	c.Response().Header().Set(echo.HeaderAuthorization, session.ID)
	return c.JSON(http.StatusCreated, session)
}

// Get returns the calling user's details.
func (h *UserHandler) Get(c echo.Context) error {
	session := middleware.SessionFromContext(c)
	user, err := h.Users.GetByID(c.Request().Context(), session.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// Update edits the calling user's name and email.
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.BadRequest)
	}

	session := middleware.SessionFromContext(c)
	ok, err := h.Users.Update(c.Request().Context(), session.UserID, req.Name, req.Email)
	if err != nil {
		return fail(c, err)
	}
	if !ok {
		return fail(c, apperr.UserNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdatePassword replaces the calling user's password.
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	var req updatePasswordReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.BadRequest)
	}

	session := middleware.SessionFromContext(c)
	ok, err := h.Users.UpdatePassword(c.Request().Context(), session.UserID, req.Password)
	if err != nil {
		return fail(c, err)
	}
	if !ok {
		return fail(c, apperr.UserNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes the calling user's account and everything it owns. The
// session used to authorize the call dies in the same cascade.
func (h *UserHandler) Delete(c echo.Context) error {
	session := middleware.SessionFromContext(c)
	ok, err := h.Users.Delete(c.Request().Context(), session.UserID)
	if err != nil {
		return fail(c, err)
	}
	if !ok {
		return fail(c, apperr.UserNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}
