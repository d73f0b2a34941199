package repository

import (
	"context"
	"database/sql"

	"github.com/blackhouse/forum/internal/model"
	"github.com/blackhouse/forum/internal/store"
)

// TopicRepo mirrors the 'topics' table.
type TopicRepo struct{ DB *sql.DB }

func NewTopicRepo(db *sql.DB) *TopicRepo { return &TopicRepo{DB: db} }

func (r *TopicRepo) InsertTopic(ctx context.Context, t *model.Topic) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO topics (title, category_id, author_id, is_pinned, is_closed, views, replies_count, created_at) VALUES (?,?,?,?,?,?,?,?)",
		t.Title, t.CategoryID, t.AuthorID, t.IsPinned, t.IsClosed, t.Views, t.RepliesCount, t.CreatedAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *TopicRepo) TopicByID(ctx context.Context, id uint64) (*model.Topic, error) {
	var t model.Topic
	var lastReply sql.NullTime
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, title, category_id, author_id, is_pinned, is_closed, views, replies_count, last_reply_at, created_at FROM topics WHERE id=? LIMIT 1",
		id).Scan(&t.ID, &t.Title, &t.CategoryID, &t.AuthorID, &t.IsPinned, &t.IsClosed,
		&t.Views, &t.RepliesCount, &lastReply, &t.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if lastReply.Valid {
		lr := lastReply.Time
		t.LastReplyAt = &lr
	}
	return &t, nil
}

// SaveTopic persists flags, the reply counter and last_reply_at.
// Views move only through IncrementTopicViews.
func (r *TopicRepo) SaveTopic(ctx context.Context, t *model.Topic) error {
	var lastReply sql.NullTime
	if t.LastReplyAt != nil {
		lastReply = sql.NullTime{Time: *t.LastReplyAt, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE topics SET is_pinned=?, is_closed=?, replies_count=?, last_reply_at=? WHERE id=?",
		t.IsPinned, t.IsClosed, t.RepliesCount, lastReply, t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.TopicByID(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}

const topicSummarySelect = `
	SELECT t.id, t.title, t.category_id, t.author_id, t.is_pinned, t.is_closed,
	       t.views, t.replies_count, t.last_reply_at, t.created_at,
	       u.username, u.level, u.avatar, c.name
	FROM topics t
	JOIN users u ON t.author_id = u.id
	JOIN categories c ON t.category_id = c.id`

func (r *TopicRepo) Topics(ctx context.Context, categoryID uint64, limit, offset int) ([]model.TopicSummary, error) {
	q := topicSummarySelect
	args := []any{}
	if categoryID != 0 {
		q += " WHERE t.category_id = ?"
		args = append(args, categoryID)
	}
	q += " ORDER BY t.is_pinned DESC, COALESCE(t.last_reply_at, t.created_at) DESC, t.id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTopicSummaries(rows)
}

func (r *TopicRepo) TopicsByAuthor(ctx context.Context, authorID uint64, limit int) ([]model.TopicSummary, error) {
	rows, err := r.DB.QueryContext(ctx,
		topicSummarySelect+" WHERE t.author_id = ? ORDER BY t.created_at DESC, t.id DESC LIMIT ?",
		authorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTopicSummaries(rows)
}

// DeleteTopic removes the topic and its messages in one transaction.
func (r *TopicRepo) DeleteTopic(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE topic_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM topics WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *TopicRepo) IncrementTopicViews(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE topics SET views = views + 1 WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *TopicRepo) SearchTopics(ctx context.Context, q string, limit int) ([]model.TopicSummary, error) {
	rows, err := r.DB.QueryContext(ctx,
		topicSummarySelect+" WHERE t.title LIKE ? ORDER BY t.created_at DESC, t.id DESC LIMIT ?",
		"%"+q+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTopicSummaries(rows)
}

func collectTopicSummaries(rows *sql.Rows) ([]model.TopicSummary, error) {
	var out []model.TopicSummary
	for rows.Next() {
		var ts model.TopicSummary
		var lastReply sql.NullTime
		if err := rows.Scan(&ts.ID, &ts.Title, &ts.CategoryID, &ts.AuthorID, &ts.IsPinned,
			&ts.IsClosed, &ts.Views, &ts.RepliesCount, &lastReply, &ts.CreatedAt,
			&ts.AuthorName, &ts.AuthorLevel, &ts.AuthorAvatar, &ts.CategoryName); err != nil {
			return nil, err
		}
		if lastReply.Valid {
			lr := lastReply.Time
			ts.LastReplyAt = &lr
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}
