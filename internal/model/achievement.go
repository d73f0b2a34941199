package model

import "time"

// Achievement describes one entry of the immutable achievement
// catalog ("perfects" in the original data model).  The catalog is
// loaded once at process start and never changes afterwards; the
// trigger predicates live in the forum engine, keyed by the stable
// ID rather than the display name.
//
// Fields:
//  ID          – stable identifier (e.g. "first_post").
//  Name        – display name.
//  Description – short description shown on the profile page.
//  Icon        – emoji or icon reference.
//  XPReward    – fixed positive XP granted exactly once.
//  Category    – grouping tag (activity, social, community, ...).
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	XPReward    int64  `json:"xp_reward"`
	Category    string `json:"category"`
}

// UserAchievement joins a user to an earned achievement.  At most one
// row exists per (user, achievement) pair; awarding is idempotent.
type UserAchievement struct {
	UserID        uint64    `json:"user_id"`        // user_perfects.user_id
	AchievementID string    `json:"achievement_id"` // user_perfects.perfect_id
	EarnedAt      time.Time `json:"earned_at"`      // user_perfects.earned_at
}
