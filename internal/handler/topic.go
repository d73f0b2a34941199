package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/blackhouse/forum/internal/forum"
	"github.com/blackhouse/forum/internal/store"
)

// TopicHandler serves topic browsing plus the authenticated topic
// actions that go through the forum engine.
type TopicHandler struct {
	Store  store.Store
	Engine *forum.Engine
}

func NewTopicHandler(s store.Store, e *forum.Engine) *TopicHandler {
	return &TopicHandler{Store: s, Engine: e}
}

type createTopicReq struct {
	CategoryID uint64 `json:"category_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

// List returns topics, pinned first then most recently active,
// optionally filtered by ?category_id=.
func (h *TopicHandler) List(c echo.Context) error {
	var categoryID uint64
	if v := c.QueryParam("category_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category_id"})
		}
		categoryID = id
	}
	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	topics, err := h.Store.Topics(c.Request().Context(), categoryID, limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": topics})
}

// Get returns one topic with its messages.  Each fetch counts as a
// view; the increment is a separate atomic store operation so
// concurrent fetches never lose counts.
func (h *TopicHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid topic id"})
	}
	ctx := c.Request().Context()

	if err := h.Store.IncrementTopicViews(ctx, id); err != nil {
		return fail(c, err)
	}
	topic, err := h.Store.TopicByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	messages, err := h.Store.MessagesByTopic(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"topic":    topic,
		"messages": messages,
	})
}

// Create starts a topic through the engine, which also writes the
// opening message and credits the author.
func (h *TopicHandler) Create(c echo.Context) error {
	var req createTopicReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	topic, err := h.Engine.CreateTopic(c.Request().Context(), userID(c), req.CategoryID, req.Title, req.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, topic)
}

// ByAuthor lists one user's topics, newest first.
func (h *TopicHandler) ByAuthor(c echo.Context) error {
	authorID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	ctx := c.Request().Context()

	if _, err := h.Store.UserByID(ctx, authorID); err != nil {
		return fail(c, err)
	}
	topics, err := h.Store.TopicsByAuthor(ctx, authorID, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": topics})
}

// Delete removes a topic and its messages.  Routed behind the
// moderator role check; the engine enforces it again.
func (h *TopicHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid topic id"})
	}
	if err := h.Engine.DeleteTopic(c.Request().Context(), userID(c), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleClosed flips the closed flag.  Routed behind the moderator
// role check; the engine enforces it again.
func (h *TopicHandler) ToggleClosed(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid topic id"})
	}
	topic, err := h.Engine.ToggleTopicClosed(c.Request().Context(), userID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, topic)
}

// TogglePinned flips the pinned flag.
func (h *TopicHandler) TogglePinned(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid topic id"})
	}
	topic, err := h.Engine.ToggleTopicPinned(c.Request().Context(), userID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, topic)
}
