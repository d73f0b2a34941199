package store

import "errors"

// Sentinel errors shared by every storage backend.  Repositories map
// driver-specific failures (duplicate key codes, sql.ErrNoRows) onto
// these values so callers can use errors.Is without knowing which
// backend is in play.

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrUsernameExists is returned by CreateUser on a duplicate username.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned by CreateUser on a duplicate email.
var ErrEmailExists = errors.New("email already exists")

// ErrAlreadyEarned is returned by InsertUserAchievement when the
// (user, achievement) pair already exists.
var ErrAlreadyEarned = errors.New("achievement already earned")

// ErrTokenInvalid is returned by ValidateRefresh for unknown, expired
// or revoked token hashes.
var ErrTokenInvalid = errors.New("refresh token invalid")
