package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blackhouse/forum/internal/store"
)

// NotificationHandler serves the authenticated user's inbox.
type NotificationHandler struct {
	Store store.Store
}

func NewNotificationHandler(s store.Store) *NotificationHandler {
	return &NotificationHandler{Store: s}
}

// List returns the newest notifications plus the unread count.
func (h *NotificationHandler) List(c echo.Context) error {
	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	items, unread, err := h.Store.NotificationsByUser(c.Request().Context(), userID(c), limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "unread": unread})
}

// MarkRead marks one of the caller's notifications as read.  Marking
// an already-read notification is a no-op success.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	if err := h.Store.MarkNotificationRead(c.Request().Context(), id, userID(c)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead marks every notification of the caller as read.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	if err := h.Store.MarkAllNotificationsRead(c.Request().Context(), userID(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
