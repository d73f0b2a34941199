// Package store defines the storage port shared by every backend.
// The forum engine and the HTTP handlers are written against the
// Store interface only, so the same code runs on top of the MySQL
// repositories or the in-memory snapshot store.  Each method is an
// atomic single-record operation from the caller's point of view;
// multi-step sequences are serialized by the engine's critical
// sections, not by the backend.
package store

import (
	"context"
	"time"

	"github.com/blackhouse/forum/internal/model"
)

// Store is the full persistence surface of the application.
type Store interface {
	UserStore
	CategoryStore
	TopicStore
	MessageStore
	AchievementStore
	NotificationStore
	TokenStore
}

// UserStore covers user records and user-ordered listings.
type UserStore interface {
	// CreateUser inserts a new user and returns its ID.  Returns
	// ErrUsernameExists or ErrEmailExists on unique violations.
	CreateUser(ctx context.Context, u *model.User) (uint64, error)
	// UserByID returns ErrNotFound when no such user exists.
	UserByID(ctx context.Context, id uint64) (*model.User, error)
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	// SaveUser persists the mutable fields of an existing user
	// (xp, level, counters, last_active, avatar, role).
	SaveUser(ctx context.Context, u *model.User) error
	// Leaderboard returns up to limit users ordered by the given
	// column: "xp", "messages" or "topics".
	Leaderboard(ctx context.Context, orderBy string, limit int) ([]model.User, error)
	// SearchUsers matches usernames containing q, ordered by XP.
	SearchUsers(ctx context.Context, q string, limit int) ([]model.User, error)
}

// CategoryStore covers the category table.
type CategoryStore interface {
	// Categories returns all categories ordered by order_index with
	// topic and message counts aggregated on the fly.
	Categories(ctx context.Context) ([]model.CategorySummary, error)
	CategoryByID(ctx context.Context, id uint64) (*model.Category, error)
}

// TopicStore covers discussion threads.
type TopicStore interface {
	InsertTopic(ctx context.Context, t *model.Topic) (uint64, error)
	TopicByID(ctx context.Context, id uint64) (*model.Topic, error)
	// SaveTopic persists the mutable fields of an existing topic
	// (flags, counters, last_reply_at).
	SaveTopic(ctx context.Context, t *model.Topic) error
	// Topics lists topics, pinned first then most recently replied,
	// optionally filtered by category (0 means all).
	Topics(ctx context.Context, categoryID uint64, limit, offset int) ([]model.TopicSummary, error)
	// TopicsByAuthor lists a user's topics, newest first.
	TopicsByAuthor(ctx context.Context, authorID uint64, limit int) ([]model.TopicSummary, error)
	IncrementTopicViews(ctx context.Context, id uint64) error
	// DeleteTopic removes the topic together with its messages.
	DeleteTopic(ctx context.Context, id uint64) error
	SearchTopics(ctx context.Context, q string, limit int) ([]model.TopicSummary, error)
}

// MessageStore covers posts inside topics.
type MessageStore interface {
	InsertMessage(ctx context.Context, m *model.Message) (uint64, error)
	MessageByID(ctx context.Context, id uint64) (*model.Message, error)
	MessagesByTopic(ctx context.Context, topicID uint64) ([]model.MessageDetail, error)
	// SaveMessage persists the editable fields of an existing message
	// (content, updated_at).  The solution flag moves only through
	// SetSolution.
	SaveMessage(ctx context.Context, m *model.Message) error
	// SetSolution clears is_solution on every message of the topic
	// and sets it on the given message, as one atomic step.
	SetSolution(ctx context.Context, topicID, messageID uint64) error
}

// AchievementStore covers earned achievements.  The catalog itself
// is process-wide configuration and never hits the backend.
type AchievementStore interface {
	AchievementsByUser(ctx context.Context, userID uint64) ([]model.UserAchievement, error)
	// InsertUserAchievement returns ErrAlreadyEarned when the
	// (user, achievement) pair exists.  The uniqueness constraint is
	// the idempotence guard; callers must not rely on a pre-check.
	InsertUserAchievement(ctx context.Context, ua model.UserAchievement) error
}

// NotificationStore covers the per-user inbox.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n *model.Notification) (uint64, error)
	// NotificationsByUser returns the newest limit notifications and
	// the unread count.
	NotificationsByUser(ctx context.Context, userID uint64, limit int) ([]model.Notification, int64, error)
	MarkNotificationRead(ctx context.Context, id, userID uint64) error
	MarkAllNotificationsRead(ctx context.Context, userID uint64) error
}

// TokenStore covers refresh-token persistence.  Only SHA-256 hashes
// of the raw tokens are stored.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error
	// ValidateRefresh returns the owning user ID for an active
	// (unexpired, unrevoked) token hash, or ErrTokenInvalid.
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeRefresh(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}
