package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/blackhouse/forum/internal/forum"
	"github.com/blackhouse/forum/internal/model"
	"github.com/blackhouse/forum/internal/store"
)

// ProfileHandler serves public user profiles: stats, rank and the
// achievement catalog annotated with what the user has earned.
type ProfileHandler struct {
	Store  store.Store
	Engine *forum.Engine
}

func NewProfileHandler(s store.Store, e *forum.Engine) *ProfileHandler {
	return &ProfileHandler{Store: s, Engine: e}
}

type profileAchievement struct {
	model.Achievement
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

type profileResp struct {
	User         *model.User          `json:"user"`
	Level        model.Level          `json:"level"`
	NextLevel    *model.Level         `json:"next_level,omitempty"`
	XPToNext     int64                `json:"xp_to_next"`
	Achievements []profileAchievement `json:"achievements"`
}

// Get returns the profile of one user.  The catalog is returned in
// full so clients can render locked entries too.
func (h *ProfileHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx := c.Request().Context()

	u, err := h.Store.UserByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	earned, err := h.Store.AchievementsByUser(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	earnedAt := make(map[string]time.Time, len(earned))
	for _, ua := range earned {
		earnedAt[ua.AchievementID] = ua.EarnedAt
	}

	entries := h.Engine.Catalog().Entries()
	achievements := make([]profileAchievement, 0, len(entries))
	for _, entry := range entries {
		pa := profileAchievement{Achievement: entry.Achievement}
		if at, ok := earnedAt[entry.ID]; ok {
			pa.Earned = true
			at := at
			pa.EarnedAt = &at
		}
		achievements = append(achievements, pa)
	}

	level := h.Engine.Levels().LevelForXP(u.XP)
	resp := profileResp{
		User:         u,
		Level:        level,
		Achievements: achievements,
	}
	for _, l := range h.Engine.Levels().Levels() {
		if l.Number == level.Number+1 {
			next := l
			resp.NextLevel = &next
			resp.XPToNext = next.XPRequired - u.XP
			break
		}
	}
	return c.JSON(http.StatusOK, resp)
}
