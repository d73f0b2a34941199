package repository

import (
	"context"
	"database/sql"

	"github.com/blackhouse/forum/internal/model"
	"github.com/blackhouse/forum/internal/store"
)

// NotificationRepo mirrors the 'notifications' table.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

func (r *NotificationRepo) InsertNotification(ctx context.Context, n *model.Notification) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO notifications (user_id, type, message, link, is_read, created_at) VALUES (?,?,?,?,?,?)",
		n.UserID, n.Type, n.Message, n.Link, n.IsRead, n.CreatedAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *NotificationRepo) NotificationsByUser(ctx context.Context, userID uint64, limit int) ([]model.Notification, int64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, type, message, link, is_read, created_at FROM notifications WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var unread int64
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id=? AND is_read=0", userID).Scan(&unread)
	if err != nil {
		return nil, 0, err
	}
	return out, unread, nil
}

func (r *NotificationRepo) MarkNotificationRead(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either absent or already read; distinguish so handlers can 404.
		var exists int
		if qErr := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM notifications WHERE id=? AND user_id=?", id, userID).Scan(&exists); qErr == sql.ErrNoRows {
			return store.ErrNotFound
		}
	}
	return nil
}

func (r *NotificationRepo) MarkAllNotificationsRead(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE user_id=?", userID)
	return err
}
