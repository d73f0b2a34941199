package model

import "time"

// Role names stored in users.role.  Moderators and admins may pin and
// close topics; admins may additionally mark any message as a solution.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User represents an application user record as stored in the
// `users` table.  XP, level and the activity counters are owned by
// the forum engine: no other code path mutates them.  Level is
// derived from XP via the level table and is recomputed on every
// XP change, so the stored value is never out of sync after an
// engine call completes.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Username      – unique display name.
//  Email         – unique email address.
//  PasswordHash  – bcrypt hashed password.
//  Avatar        – avatar image path.
//  Role          – one of RoleUser, RoleModerator, RoleAdmin.
//  XP            – experience points, non-negative and monotonically
//                  non-decreasing under normal operation.
//  Level         – rank derived from XP (1..10).
//  MessagesCount – number of messages authored.
//  TopicsCount   – number of topics started.
//  PerfectsCount – number of achievements earned.
//  CreatedAt     – timestamp of registration.
//  LastActive    – timestamp of the most recent XP-earning action.
type User struct {
	ID            uint64    `json:"id"`             // users.id
	Username      string    `json:"username"`       // users.username
	Email         string    `json:"email"`          // users.email
	PasswordHash  string    `json:"-"`              // users.password_hash
	Avatar        string    `json:"avatar"`         // users.avatar
	Role          string    `json:"role"`           // users.role
	XP            int64     `json:"xp"`             // users.xp
	Level         int       `json:"level"`          // users.level
	MessagesCount int64     `json:"messages_count"` // users.messages_count
	TopicsCount   int64     `json:"topics_count"`   // users.topics_count
	PerfectsCount int64     `json:"perfects_count"` // users.perfects_count
	CreatedAt     time.Time `json:"created_at"`     // users.created_at
	LastActive    time.Time `json:"last_active"`    // users.last_active
}

// IsModerator reports whether the user may pin or close topics.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}
