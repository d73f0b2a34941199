package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blackhouse/forum/internal/forum"
)

// MessageHandler serves reply posting and solution marking.
type MessageHandler struct {
	Engine *forum.Engine
}

func NewMessageHandler(e *forum.Engine) *MessageHandler {
	return &MessageHandler{Engine: e}
}

type replyReq struct {
	Content string `json:"content"`
}

// Reply appends a message to an open topic through the engine.
func (h *MessageHandler) Reply(c echo.Context) error {
	topicID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid topic id"})
	}
	var req replyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	msg, err := h.Engine.PostReply(c.Request().Context(), userID(c), topicID, req.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// Edit replaces the content of the caller's own message.
func (h *MessageHandler) Edit(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}
	var req replyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	msg, err := h.Engine.EditMessage(c.Request().Context(), userID(c), id, req.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, msg)
}

// MarkSolution marks a message as the accepted answer of its topic.
// The engine enforces that only the topic author or an admin may do
// this and that at most one solution exists per topic.
func (h *MessageHandler) MarkSolution(c echo.Context) error {
	topicID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid topic id"})
	}
	messageID, err := paramID(c, "message_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}
	if err := h.Engine.MarkSolution(c.Request().Context(), userID(c), topicID, messageID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"marked": true})
}
