// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// AchievementEarnedEvent is published when the forum engine awards an
// achievement.  It carries enough information for downstream
// consumers to log, notify or feed analytics without querying the
// primary store.  EventID is a UUID, unique per award, so consumers
// can deduplicate redeliveries.
type AchievementEarnedEvent struct {
	EventID         string `json:"event_id"`
	UserID          uint64 `json:"user_id"`
	Username        string `json:"username"`
	AchievementID   string `json:"achievement_id"`
	AchievementName string `json:"achievement_name"`
	XPReward        int64  `json:"xp_reward"`
	TotalXP         int64  `json:"total_xp"`
	Level           int    `json:"level"`
	EarnedAt        string `json:"earned_at"`
}
