package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blackhouse/forum/internal/model"
	"github.com/blackhouse/forum/internal/store"
)

// LeaderboardHandler serves the public rankings.
type LeaderboardHandler struct {
	Store store.Store
}

func NewLeaderboardHandler(s store.Store) *LeaderboardHandler {
	return &LeaderboardHandler{Store: s}
}

type leaderboardEntry struct {
	Rank          int    `json:"rank"`
	ID            uint64 `json:"id"`
	Username      string `json:"username"`
	Avatar        string `json:"avatar"`
	Level         int    `json:"level"`
	XP            int64  `json:"xp"`
	MessagesCount int64  `json:"messages_count"`
	TopicsCount   int64  `json:"topics_count"`
}

// List returns the top users ordered by ?by= (xp, messages or
// topics; xp by default).
func (h *LeaderboardHandler) List(c echo.Context) error {
	by := c.QueryParam("by")
	switch by {
	case "", "xp":
		by = "xp"
	case "messages", "topics":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "by must be one of xp, messages, topics"})
	}
	limit := queryInt(c, "limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	users, err := h.Store.Leaderboard(c.Request().Context(), by, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rankUsers(users)})
}

func rankUsers(users []model.User) []leaderboardEntry {
	out := make([]leaderboardEntry, 0, len(users))
	for i, u := range users {
		out = append(out, leaderboardEntry{
			Rank:          i + 1,
			ID:            u.ID,
			Username:      u.Username,
			Avatar:        u.Avatar,
			Level:         u.Level,
			XP:            u.XP,
			MessagesCount: u.MessagesCount,
			TopicsCount:   u.TopicsCount,
		})
	}
	return out
}
