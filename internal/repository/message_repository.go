package repository

import (
	"context"
	"database/sql"

	"github.com/blackhouse/forum/internal/model"
	"github.com/blackhouse/forum/internal/store"
)

// MessageRepo mirrors the 'messages' table.
type MessageRepo struct{ DB *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

func (r *MessageRepo) InsertMessage(ctx context.Context, m *model.Message) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO messages (topic_id, author_id, content, is_solution, created_at, updated_at) VALUES (?,?,?,?,?,?)",
		m.TopicID, m.AuthorID, m.Content, m.IsSolution, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *MessageRepo) MessageByID(ctx context.Context, id uint64) (*model.Message, error) {
	var m model.Message
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, topic_id, author_id, content, is_solution, created_at, updated_at FROM messages WHERE id=? LIMIT 1",
		id).Scan(&m.ID, &m.TopicID, &m.AuthorID, &m.Content, &m.IsSolution, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// SaveMessage persists an edit: content and updated_at only.  The
// solution flag moves through SetSolution.
func (r *MessageRepo) SaveMessage(ctx context.Context, m *model.Message) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE messages SET content=?, updated_at=? WHERE id=?",
		m.Content, m.UpdatedAt, m.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Distinguish a no-op edit from a missing row.
		var exists uint64
		if err := r.DB.QueryRowContext(ctx,
			"SELECT id FROM messages WHERE id=? LIMIT 1", m.ID).Scan(&exists); err != nil {
			return notFound(err)
		}
	}
	return nil
}

func (r *MessageRepo) MessagesByTopic(ctx context.Context, topicID uint64) ([]model.MessageDetail, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT m.id, m.topic_id, m.author_id, m.content, m.is_solution, m.created_at, m.updated_at,
		       u.username, u.level, u.avatar, u.role
		FROM messages m
		JOIN users u ON m.author_id = u.id
		WHERE m.topic_id = ?
		ORDER BY m.created_at ASC, m.id ASC`, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MessageDetail
	for rows.Next() {
		var d model.MessageDetail
		if err := rows.Scan(&d.ID, &d.TopicID, &d.AuthorID, &d.Content, &d.IsSolution,
			&d.CreatedAt, &d.UpdatedAt, &d.AuthorName, &d.AuthorLevel, &d.AuthorAvatar, &d.AuthorRole); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SetSolution clears every solution flag in the topic and sets the
// target message, inside one transaction so concurrent calls can
// never leave two solutions standing.
func (r *MessageRepo) SetSolution(ctx context.Context, topicID, messageID uint64) error {
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

	if _, err := tx.ExecContext(ctx,
		"UPDATE messages SET is_solution=0 WHERE topic_id=?", topicID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE messages SET is_solution=1 WHERE id=? AND topic_id=?", messageID, topicID)
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
