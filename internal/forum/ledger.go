package forum

import (
	"context"
	"errors"
	"fmt"

	"github.com/blackhouse/forum/internal/model"
	"github.com/blackhouse/forum/internal/store"
)

// AddXP credits amount XP to the user, recomputes the level from the
// level table and stamps last_active.  The whole read-modify-write
// runs inside the user's critical section, so two concurrent calls
// for the same user always see each other's result.  Returns the new
// XP total and level.
//
// Achievement evaluation deliberately does not happen here; the
// calling action decides when the stats are fresh enough to check.
func (e *Engine) AddXP(ctx context.Context, userID uint64, amount int64) (int64, int, error) {
	if amount <= 0 {
		return 0, 0, fmt.Errorf("%w: xp amount must be positive", ErrValidation)
	}

	unlock := e.users.Lock(userID)
	defer unlock()

	u, err := e.store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, 0, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return 0, 0, fmt.Errorf("load user: %w", err)
	}
	if err := e.addXP(ctx, u, amount); err != nil {
		return 0, 0, err
	}
	return u.XP, u.Level, nil
}

// addXP is the in-section ledger step: the caller already holds the
// user's lock and passes the freshly loaded record.
func (e *Engine) addXP(ctx context.Context, u *model.User, amount int64) error {
	u.XP += amount
	u.Level = e.levels.LevelForXP(u.XP).Number
	u.LastActive = e.now()
	if err := e.store.SaveUser(ctx, u); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
