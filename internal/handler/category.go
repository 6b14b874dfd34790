package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alexampersandria/ephemeride/internal/apperr"
	"github.com/alexampersandria/ephemeride/internal/middleware"
	"github.com/alexampersandria/ephemeride/internal/repository"
)

// CategoryHandler bundles dependencies for category endpoints.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(categories *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Categories: categories}
}

type categoryReq struct {
	Name string `json:"name"`
}

// Create adds a category for the calling user.
func (h *CategoryHandler) Create(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.BadRequest)
	}

	session := middleware.SessionFromContext(c)
	category, err := h.Categories.Create(c.Request().Context(), session.UserID, req.Name)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, category)
}

// List returns the user's categories with their tags nested.
func (h *CategoryHandler) List(c echo.Context) error {
	session := middleware.SessionFromContext(c)
	categories, err := h.Categories.ListWithTags(c.Request().Context(), session.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

// Update renames a category.
func (h *CategoryHandler) Update(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.BadRequest)
	}

	session := middleware.SessionFromContext(c)
	category, err := h.Categories.Edit(c.Request().Context(), c.Param("id"), session.UserID, req.Name)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

// Delete removes a category together with its tags and their entry links.
func (h *CategoryHandler) Delete(c echo.Context) error {
	session := middleware.SessionFromContext(c)
	ok, err := h.Categories.Delete(c.Request().Context(), c.Param("id"), session.UserID)
	if err != nil {
		return fail(c, err)
	}
	if !ok {
		return fail(c, apperr.CategoryNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}
