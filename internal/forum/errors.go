// Package forum implements the XP/leveling and achievement engine
// together with the forum action handlers (topic creation, replies,
// solution marking, moderation toggles).  Everything here is written
// against the storage port and carries no HTTP or SQL knowledge.
package forum

import "errors"

// Error taxonomy of the engine.  Handlers translate these into HTTP
// status codes; failures that match none of them surface as 500.
var (
	// ErrValidation covers bad input shape or length (short title,
	// empty content, invalid amounts).
	ErrValidation = errors.New("validation failed")
	// ErrForbidden covers role and ownership check failures.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound covers references to absent entities.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState covers actions not permitted in the entity's
	// current state, such as replying to a closed topic.
	ErrInvalidState = errors.New("invalid state")
)
