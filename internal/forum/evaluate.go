package forum

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/blackhouse/forum/internal/model"
	"github.com/blackhouse/forum/internal/store"
)

// evaluate awards every catalog achievement the user newly qualifies
// for: one UserAchievement row, the fixed XP reward, and an inbox
// notification each.  The caller holds the user's lock and passes a
// record whose counters and level reflect the action just performed,
// so level-based predicates see the post-reward level.
//
// A reward bumping the user into a new level is visible to predicates
// later in the same pass, since the in-memory record is updated as we
// go.  Awarding is idempotent: the storage uniqueness constraint, not
// the earned-set pre-check, is the real guard against duplicates.
func (e *Engine) evaluate(ctx context.Context, u *model.User) ([]model.Achievement, error) {
	records, err := e.store.AchievementsByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("load earned achievements: %w", err)
	}
	earned := make(map[string]bool, len(records))
	for _, r := range records {
		earned[r.AchievementID] = true
	}

	var awarded []model.Achievement
	for _, entry := range e.catalog.entries {
		if entry.Qualifies == nil || earned[entry.ID] || !entry.Qualifies(u) {
			continue
		}
		err := e.store.InsertUserAchievement(ctx, model.UserAchievement{
			UserID:        u.ID,
			AchievementID: entry.ID,
			EarnedAt:      e.now(),
		})
		if errors.Is(err, store.ErrAlreadyEarned) {
			continue
		}
		if err != nil {
			return awarded, fmt.Errorf("insert achievement %s: %w", entry.ID, err)
		}

		u.PerfectsCount++
		if err := e.addXP(ctx, u, entry.XPReward); err != nil {
			return awarded, err
		}
		if err := e.notify(ctx, u, entry.Achievement); err != nil {
			// The award itself stands; a lost notification is not
			// worth failing the user's action over.
			log.Printf("forum: record achievement notification failed: %v", err)
		}
		awarded = append(awarded, entry.Achievement)
	}
	return awarded, nil
}

// notify records the achievement-earned inbox entry and hands the
// event to the optional notifier.
func (e *Engine) notify(ctx context.Context, u *model.User, a model.Achievement) error {
	n := &model.Notification{
		UserID:    u.ID,
		Type:      model.NotificationTypeAchievement,
		Message:   fmt.Sprintf("You earned: %s (+%d XP)", a.Name, a.XPReward),
		Link:      "/profile",
		CreatedAt: e.now(),
	}
	if _, err := e.store.InsertNotification(ctx, n); err != nil {
		return err
	}
	if e.notifier != nil {
		e.notifier.AchievementEarned(ctx, u, a)
	}
	return nil
}
