package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/blackhouse/forum/internal/store"
)

// SearchHandler serves combined topic and user search.
type SearchHandler struct {
	Store store.Store
}

func NewSearchHandler(s store.Store) *SearchHandler {
	return &SearchHandler{Store: s}
}

// Search matches topics by title and users by username against ?q=.
func (h *SearchHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if len(q) < 2 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query must be at least 2 characters"})
	}
	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	ctx := c.Request().Context()

	topics, err := h.Store.SearchTopics(ctx, q, limit)
	if err != nil {
		return fail(c, err)
	}
	users, err := h.Store.SearchUsers(ctx, q, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"topics": topics,
		"users":  rankUsers(users),
	})
}
