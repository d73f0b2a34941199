package model

import "time"

// NotificationTypeAchievement marks notifications produced by the
// achievement evaluator.
const NotificationTypeAchievement = "achievement"

// Notification is a per-user inbox entry recorded when something
// happened that the user should see on their next visit, such as an
// earned achievement.
type Notification struct {
	ID        uint64    `json:"id"`         // notifications.id
	UserID    uint64    `json:"user_id"`    // notifications.user_id
	Type      string    `json:"type"`       // notifications.type
	Message   string    `json:"message"`    // notifications.message
	Link      string    `json:"link"`       // notifications.link
	IsRead    bool      `json:"is_read"`    // notifications.is_read
	CreatedAt time.Time `json:"created_at"` // notifications.created_at
}
