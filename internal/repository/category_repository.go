package repository

import (
	"context"
	"database/sql"

	"github.com/blackhouse/forum/internal/model"
)

// CategoryRepo mirrors the 'categories' table.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// Categories lists all categories with topic and message counts
// aggregated from the topics and messages tables.
func (r *CategoryRepo) Categories(ctx context.Context) ([]model.CategorySummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.name, c.description, c.icon, c.color, c.order_index,
		       COUNT(DISTINCT t.id) AS topics_count,
		       COUNT(m.id) AS messages_count
		FROM categories c
		LEFT JOIN topics t ON t.category_id = c.id
		LEFT JOIN messages m ON m.topic_id = t.id
		GROUP BY c.id, c.name, c.description, c.icon, c.color, c.order_index
		ORDER BY c.order_index ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CategorySummary
	for rows.Next() {
		var cs model.CategorySummary
		if err := rows.Scan(&cs.ID, &cs.Name, &cs.Description, &cs.Icon, &cs.Color,
			&cs.OrderIndex, &cs.TopicsCount, &cs.MessagesCount); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) CategoryByID(ctx context.Context, id uint64) (*model.Category, error) {
	var c model.Category
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, description, icon, color, order_index FROM categories WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.Color, &c.OrderIndex)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}
