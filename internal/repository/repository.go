package repository

import (
	"database/sql"

	"github.com/blackhouse/forum/internal/store"
)

// Store composes the per-entity repos into the full storage port.
// Method promotion through the embedded repos satisfies store.Store.
type Store struct {
	*UserRepo
	*CategoryRepo
	*TopicRepo
	*MessageRepo
	*AchievementRepo
	*NotificationRepo
	*TokenRepo
}

var _ store.Store = (*Store)(nil)

// NewStore binds every repository to the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		UserRepo:         NewUserRepo(db),
		CategoryRepo:     NewCategoryRepo(db),
		TopicRepo:        NewTopicRepo(db),
		MessageRepo:      NewMessageRepo(db),
		AchievementRepo:  NewAchievementRepo(db),
		NotificationRepo: NewNotificationRepo(db),
		TokenRepo:        NewTokenRepo(db),
	}
}
