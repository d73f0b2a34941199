// Package handler exposes the HTTP surface of the forum.  Handlers
// bind and validate the request, call the forum engine or the store,
// and translate sentinel errors into HTTP status codes.  They never
// touch XP, levels or achievements directly.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/blackhouse/forum/internal/forum"
	"github.com/blackhouse/forum/internal/middleware"
	"github.com/blackhouse/forum/internal/store"
)

// userID extracts the authenticated user ID placed by the JWT
// middleware.  Zero means the request is not authenticated.
func userID(c echo.Context) uint64 {
	uid, _ := c.Get(middleware.CtxUserID).(uint64)
	return uid
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// queryInt parses an integer query parameter, falling back to def
// when absent or malformed.
func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// fail maps engine and store sentinel errors onto HTTP responses.
// Unknown errors become a 500 without leaking internals.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, forum.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, forum.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, forum.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, forum.ErrInvalidState):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, store.ErrUsernameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
	case errors.Is(err, store.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
