package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alexampersandria/ephemeride/internal/apperr"
	"github.com/alexampersandria/ephemeride/internal/middleware"
	"github.com/alexampersandria/ephemeride/internal/repository"
)

// TagHandler bundles dependencies for tag endpoints.
type TagHandler struct {
	Tags *repository.TagRepo
}

func NewTagHandler(tags *repository.TagRepo) *TagHandler {
	return &TagHandler{Tags: tags}
}

type createTagReq struct {
	Name       string `json:"name"`
	Color      string `json:"color"`
	CategoryID string `json:"category_id"`
}

type editTagReq struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Create adds a tag inside one of the user's categories.
func (h *TagHandler) Create(c echo.Context) error {
	var req createTagReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.BadRequest)
	}

	session := middleware.SessionFromContext(c)
	tag, err := h.Tags.Create(c.Request().Context(), repository.CreateTag{
		Name:       req.Name,
		Color:      req.Color,
		CategoryID: req.CategoryID,
		UserID:     session.UserID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, tag)
}

// Update renames and recolors a tag.
func (h *TagHandler) Update(c echo.Context) error {
	var req editTagReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.BadRequest)
	}

	session := middleware.SessionFromContext(c)
	tag, err := h.Tags.Edit(c.Request().Context(), c.Param("id"), session.UserID, req.Name, req.Color)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, tag)
}

// Delete removes a tag and detaches it from every entry.
func (h *TagHandler) Delete(c echo.Context) error {
	session := middleware.SessionFromContext(c)
	ok, err := h.Tags.Delete(c.Request().Context(), c.Param("id"), session.UserID)
	if err != nil {
		return fail(c, err)
	}
	if !ok {
		return fail(c, apperr.TagNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}
