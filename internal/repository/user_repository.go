package repository

import (
	"context"
	"database/sql"

	"github.com/blackhouse/forum/internal/model"
	"github.com/blackhouse/forum/internal/store"
)

// UserRepo mirrors the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,password_hash,avatar,role,xp,level,messages_count,topics_count,perfects_count,created_at,last_active"

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Avatar, &u.Role,
		&u.XP, &u.Level, &u.MessagesCount, &u.TopicsCount, &u.PerfectsCount,
		&u.CreatedAt, &u.LastActive)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// CreateUser inserts a user and returns its ID.  Duplicate username
// or email violations surface as the port sentinels.
func (r *UserRepo) CreateUser(ctx context.Context, u *model.User) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, avatar, role, xp, level) VALUES (?,?,?,?,?,?,?)",
		u.Username, u.Email, u.PasswordHash, u.Avatar, u.Role, u.XP, u.Level)
	if err != nil {
		if isDuplicate(err, "username") {
			return 0, store.ErrUsernameExists
		}
		if isDuplicate(err, "email") {
			return 0, store.ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *UserRepo) UserByID(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

func (r *UserRepo) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

// SaveUser persists the engine-owned fields of an existing user.
func (r *UserRepo) SaveUser(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET xp=?, level=?, messages_count=?, topics_count=?, perfects_count=?, last_active=?, avatar=?, role=? WHERE id=?",
		u.XP, u.Level, u.MessagesCount, u.TopicsCount, u.PerfectsCount, u.LastActive, u.Avatar, u.Role, u.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Zero affected rows can also mean a no-change update, so
		// confirm the row really is missing.
		if _, err := r.UserByID(ctx, u.ID); err != nil {
			return err
		}
	}
	return nil
}

// Leaderboard returns users ordered by the requested stat.  The
// column is chosen from a fixed set; user input never reaches the
// ORDER BY clause directly.
func (r *UserRepo) Leaderboard(ctx context.Context, orderBy string, limit int) ([]model.User, error) {
	col := "xp"
	switch orderBy {
	case "messages":
		col = "messages_count"
	case "topics":
		col = "topics_count"
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY "+col+" DESC, id ASC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *UserRepo) SearchUsers(ctx context.Context, q string, limit int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username LIKE ? ORDER BY xp DESC, id ASC LIMIT ?",
		"%"+q+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func collectUsers(rows *sql.Rows) ([]model.User, error) {
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
