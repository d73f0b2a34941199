package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blackhouse/forum/internal/store"
)

// CategoryHandler serves the public category listing.
type CategoryHandler struct {
	Store store.Store
}

func NewCategoryHandler(s store.Store) *CategoryHandler {
	return &CategoryHandler{Store: s}
}

// List returns every category ordered by its display position, with
// topic and message counts aggregated on the fly.
func (h *CategoryHandler) List(c echo.Context) error {
	cats, err := h.Store.Categories(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": cats})
}
