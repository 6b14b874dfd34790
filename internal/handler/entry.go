package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/alexampersandria/ephemeride/internal/apperr"
	"github.com/alexampersandria/ephemeride/internal/middleware"
	"github.com/alexampersandria/ephemeride/internal/queue"
	"github.com/alexampersandria/ephemeride/internal/repository"
	"github.com/alexampersandria/ephemeride/internal/service"
)

// EntryHandler bundles dependencies for journal entry endpoints.
type EntryHandler struct {
	Entries   *repository.EntryRepo
	Publisher *service.Publisher
}

func NewEntryHandler(entries *repository.EntryRepo, publisher *service.Publisher) *EntryHandler {
	return &EntryHandler{Entries: entries, Publisher: publisher}
}

type entryReq struct {
	Date         string   `json:"date"`
	Mood         int      `json:"mood"`
	Entry        *string  `json:"entry"`
	SelectedTags []string `json:"selected_tags"`
}

// Create adds a journal entry for the calling user.
func (h *EntryHandler) Create(c echo.Context) error {
	var req entryReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.BadRequest)
	}

	session := middleware.SessionFromContext(c)
	ctx := c.Request().Context()
	entry, err := h.Entries.Create(ctx, repository.CreateEntry{
		Date:         req.Date,
		Mood:         req.Mood,
		Text:         req.Entry,
		SelectedTags: req.SelectedTags,
		UserID:       session.UserID,
	})
	if err != nil {
		return fail(c, err)
	}

	_ = h.Publisher.PublishEntryCreated(ctx, queue.EntryCreatedEvent{
		EntryID:   entry.ID,
		UserID:    entry.UserID,
		Date:      entry.Date,
		Mood:      entry.Mood,
		TagCount:  len(entry.SelectedTags),
		CreatedAt: entry.CreatedAt,
	})
	return c.JSON(http.StatusCreated, entry)
}

// Get fetches one entry by id.
func (h *EntryHandler) Get(c echo.Context) error {
	session := middleware.SessionFromContext(c)
	entry, err := h.Entries.GetWithTags(c.Request().Context(), c.Param("id"), session.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

// Update edits an entry in place, replacing its tag set.
func (h *EntryHandler) Update(c echo.Context) error {
	var req entryReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.BadRequest)
	}

	session := middleware.SessionFromContext(c)
	entry, err := h.Entries.Edit(c.Request().Context(), repository.EditEntry{
		ID:           c.Param("id"),
		Date:         req.Date,
		Mood:         req.Mood,
		Text:         req.Entry,
		SelectedTags: req.SelectedTags,
		UserID:       session.UserID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

// Delete removes an entry and its tag links.
func (h *EntryHandler) Delete(c echo.Context) error {
	session := middleware.SessionFromContext(c)
	ok, err := h.Entries.Delete(c.Request().Context(), c.Param("id"), session.UserID)
	if err != nil {
		return fail(c, err)
	}
	if !ok {
		return fail(c, apperr.EntryNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}

// Query runs the filtered, paginated entry search from query parameters.
// All filters are optional; tags is a comma-separated id list selecting
// entries carrying every listed tag.
func (h *EntryHandler) Query(c echo.Context) error {
	q := repository.EntryQuery{
		FromDate: c.QueryParam("from_date"),
		ToDate:   c.QueryParam("to_date"),
		Order:    repository.EntryOrder(c.QueryParam("order")),
	}

	if v := c.QueryParam("from_mood"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fail(c, apperr.BadRequest)
		}
		q.FromMood = &n
	}
	if v := c.QueryParam("to_mood"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fail(c, apperr.BadRequest)
		}
		q.ToMood = &n
	}
	if v := c.QueryParam("tags"); v != "" {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				q.Tags = append(q.Tags, id)
			}
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fail(c, apperr.BadRequest)
		}
		q.Limit = &n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fail(c, apperr.BadRequest)
		}
		q.Offset = n
	}

	session := middleware.SessionFromContext(c)
	page, err := h.Entries.Query(c.Request().Context(), session.UserID, q)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Range returns all entries between two dates inclusive, oldest first.
func (h *EntryHandler) Range(c echo.Context) error {
	session := middleware.SessionFromContext(c)
	entries, err := h.Entries.Range(c.Request().Context(), session.UserID,
		c.Param("from_date"), c.Param("to_date"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}
