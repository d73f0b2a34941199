package repository

import (
	"context"
	"database/sql"

	"github.com/blackhouse/forum/internal/model"
	"github.com/blackhouse/forum/internal/store"
)

// AchievementRepo mirrors the 'user_perfects' join table.  The
// achievement catalog itself lives in code, not in the database.
type AchievementRepo struct{ DB *sql.DB }

func NewAchievementRepo(db *sql.DB) *AchievementRepo { return &AchievementRepo{DB: db} }

func (r *AchievementRepo) AchievementsByUser(ctx context.Context, userID uint64) ([]model.UserAchievement, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT user_id, perfect_id, earned_at FROM user_perfects WHERE user_id=? ORDER BY earned_at ASC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UserAchievement
	for rows.Next() {
		var ua model.UserAchievement
		if err := rows.Scan(&ua.UserID, &ua.AchievementID, &ua.EarnedAt); err != nil {
			return nil, err
		}
		out = append(out, ua)
	}
	return out, rows.Err()
}

// InsertUserAchievement relies on the UNIQUE(user_id, perfect_id)
// constraint for idempotence: a duplicate insert maps to
// store.ErrAlreadyEarned instead of a second award.
func (r *AchievementRepo) InsertUserAchievement(ctx context.Context, ua model.UserAchievement) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_perfects (user_id, perfect_id, earned_at) VALUES (?,?,?)",
		ua.UserID, ua.AchievementID, ua.EarnedAt)
	if isDuplicate(err, "user_id") || isDuplicate(err, "uq_user_perfect") {
		return store.ErrAlreadyEarned
	}
	return err
}
