// Package memory implements the storage port entirely in process
// memory.  It is the source of truth while the server runs; an
// optional write-behind snapshot persists the state as JSON on a
// timer and at shutdown, the way the original deployment exported
// its embedded database to disk.  The engine's critical sections
// provide the ordering guarantees; this package only has to make
// each individual operation atomic, which one RWMutex does.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blackhouse/forum/internal/model"
	"github.com/blackhouse/forum/internal/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu sync.RWMutex

	users         map[uint64]*model.User
	userByName    map[string]uint64
	userByEmail   map[string]uint64
	categories    map[uint64]*model.Category
	topics        map[uint64]*model.Topic
	messages      map[uint64]*model.Message
	earned        map[uint64][]model.UserAchievement
	notifications map[uint64]*model.Notification
	tokens        map[string]*model.RefreshToken

	userSeq         uint64
	categorySeq     uint64
	topicSeq        uint64
	messageSeq      uint64
	notificationSeq uint64
	tokenSeq        uint64

	path  string // snapshot file, empty disables persistence
	dirty bool
}

var _ store.Store = (*Store)(nil)

// New returns an empty store with the default categories seeded.
// path may be empty for a purely volatile store (tests).
func New(path string) *Store {
	s := &Store{
		users:         make(map[uint64]*model.User),
		userByName:    make(map[string]uint64),
		userByEmail:   make(map[string]uint64),
		categories:    make(map[uint64]*model.Category),
		topics:        make(map[uint64]*model.Topic),
		messages:      make(map[uint64]*model.Message),
		earned:        make(map[uint64][]model.UserAchievement),
		notifications: make(map[uint64]*model.Notification),
		tokens:        make(map[string]*model.RefreshToken),
		path:          path,
	}
	s.seedCategories()
	return s
}

func (s *Store) seedCategories() {
	defaults := []model.Category{
		{Name: "General Discussion", Description: "General gaming discussions", Icon: "📁", Color: "#2196F3", OrderIndex: 1},
		{Name: "Game Strategies", Description: "Tips, tricks and strategies", Icon: "🎮", Color: "#4CAF50", OrderIndex: 2},
		{Name: "Clans & Teams", Description: "Find teammates and clans", Icon: "👥", Color: "#9C27B0", OrderIndex: 3},
		{Name: "Tech Support", Description: "Technical help and issues", Icon: "🔧", Color: "#FF9800", OrderIndex: 4},
		{Name: "Off-Topic", Description: "Non-gaming discussions", Icon: "🎲", Color: "#607D8B", OrderIndex: 5},
	}
	for _, c := range defaults {
		s.categorySeq++
		c.ID = s.categorySeq
		cc := c
		s.categories[c.ID] = &cc
	}
}

// ----- users -----

func (s *Store) CreateUser(_ context.Context, u *model.User) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.ToLower(u.Username)
	email := strings.ToLower(u.Email)
	if _, ok := s.userByName[name]; ok {
		return 0, store.ErrUsernameExists
	}
	if _, ok := s.userByEmail[email]; ok {
		return 0, store.ErrEmailExists
	}

	s.userSeq++
	cp := *u
	cp.ID = s.userSeq
	s.users[cp.ID] = &cp
	s.userByName[name] = cp.ID
	s.userByEmail[email] = cp.ID
	s.dirty = true
	return cp.ID, nil
}

func (s *Store) UserByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.userByName[strings.ToLower(username)]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *Store) SaveUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *u
	s.users[u.ID] = &cp
	s.dirty = true
	return nil
}

func (s *Store) Leaderboard(_ context.Context, orderBy string, limit int) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		switch orderBy {
		case "messages":
			if out[i].MessagesCount != out[j].MessagesCount {
				return out[i].MessagesCount > out[j].MessagesCount
			}
		case "topics":
			if out[i].TopicsCount != out[j].TopicsCount {
				return out[i].TopicsCount > out[j].TopicsCount
			}
		default:
			if out[i].XP != out[j].XP {
				return out[i].XP > out[j].XP
			}
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) SearchUsers(_ context.Context, q string, limit int) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q = strings.ToLower(q)
	var out []model.User
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Username), q) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ----- categories -----

func (s *Store) Categories(_ context.Context) ([]model.CategorySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgsByTopic := make(map[uint64]int64, len(s.topics))
	for _, m := range s.messages {
		msgsByTopic[m.TopicID]++
	}
	topicCount := make(map[uint64]int64, len(s.categories))
	msgCount := make(map[uint64]int64, len(s.categories))
	for _, t := range s.topics {
		topicCount[t.CategoryID]++
		msgCount[t.CategoryID] += msgsByTopic[t.ID]
	}

	out := make([]model.CategorySummary, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, model.CategorySummary{
			Category:      *c,
			TopicsCount:   topicCount[c.ID],
			MessagesCount: msgCount[c.ID],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (s *Store) CategoryByID(_ context.Context, id uint64) (*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// ----- topics -----

func (s *Store) InsertTopic(_ context.Context, t *model.Topic) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topicSeq++
	cp := *t
	cp.ID = s.topicSeq
	s.topics[cp.ID] = &cp
	s.dirty = true
	return cp.ID, nil
}

func (s *Store) TopicByID(_ context.Context, id uint64) (*model.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.topics[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) SaveTopic(_ context.Context, t *model.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.topics[t.ID]
	if !ok {
		return store.ErrNotFound
	}
	cp := *t
	// Views move only through IncrementTopicViews; keep the stored
	// counter so a stale read does not roll it back.
	cp.Views = old.Views
	s.topics[t.ID] = &cp
	s.dirty = true
	return nil
}

// topicSortKey orders listings: pinned first, then most recent
// activity (last reply, falling back to creation time).
func topicSortKey(t *model.Topic) time.Time {
	if t.LastReplyAt != nil {
		return *t.LastReplyAt
	}
	return t.CreatedAt
}

func (s *Store) Topics(_ context.Context, categoryID uint64, limit, offset int) ([]model.TopicSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ts []*model.Topic
	for _, t := range s.topics {
		if categoryID != 0 && t.CategoryID != categoryID {
			continue
		}
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].IsPinned != ts[j].IsPinned {
			return ts[i].IsPinned
		}
		ki, kj := topicSortKey(ts[i]), topicSortKey(ts[j])
		if !ki.Equal(kj) {
			return ki.After(kj)
		}
		return ts[i].ID > ts[j].ID
	})

	if offset > len(ts) {
		offset = len(ts)
	}
	ts = ts[offset:]
	if limit > 0 && len(ts) > limit {
		ts = ts[:limit]
	}

	out := make([]model.TopicSummary, 0, len(ts))
	for _, t := range ts {
		out = append(out, s.topicSummaryLocked(t))
	}
	return out, nil
}

func (s *Store) topicSummaryLocked(t *model.Topic) model.TopicSummary {
	sum := model.TopicSummary{Topic: *t}
	if a, ok := s.users[t.AuthorID]; ok {
		sum.AuthorName = a.Username
		sum.AuthorLevel = a.Level
		sum.AuthorAvatar = a.Avatar
	}
	if c, ok := s.categories[t.CategoryID]; ok {
		sum.CategoryName = c.Name
	}
	return sum
}

func (s *Store) IncrementTopicViews(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.topics[id]
	if !ok {
		return store.ErrNotFound
	}
	t.Views++
	s.dirty = true
	return nil
}

func (s *Store) TopicsByAuthor(_ context.Context, authorID uint64, limit int) ([]model.TopicSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ts []*model.Topic
	for _, t := range s.topics {
		if t.AuthorID == authorID {
			ts = append(ts, t)
		}
	}
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.After(ts[j].CreatedAt)
		}
		return ts[i].ID > ts[j].ID
	})
	if limit > 0 && len(ts) > limit {
		ts = ts[:limit]
	}
	out := make([]model.TopicSummary, 0, len(ts))
	for _, t := range ts {
		out = append(out, s.topicSummaryLocked(t))
	}
	return out, nil
}

func (s *Store) DeleteTopic(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.topics[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.topics, id)
	for mid, m := range s.messages {
		if m.TopicID == id {
			delete(s.messages, mid)
		}
	}
	s.dirty = true
	return nil
}

func (s *Store) SearchTopics(_ context.Context, q string, limit int) ([]model.TopicSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q = strings.ToLower(q)
	var ts []*model.Topic
	for _, t := range s.topics {
		if strings.Contains(strings.ToLower(t.Title), q) {
			ts = append(ts, t)
		}
	}
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.After(ts[j].CreatedAt)
		}
		return ts[i].ID > ts[j].ID
	})
	if limit > 0 && len(ts) > limit {
		ts = ts[:limit]
	}
	out := make([]model.TopicSummary, 0, len(ts))
	for _, t := range ts {
		out = append(out, s.topicSummaryLocked(t))
	}
	return out, nil
}

// ----- messages -----

func (s *Store) InsertMessage(_ context.Context, m *model.Message) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messageSeq++
	cp := *m
	cp.ID = s.messageSeq
	s.messages[cp.ID] = &cp
	s.dirty = true
	return cp.ID, nil
}

func (s *Store) MessageByID(_ context.Context, id uint64) (*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *Store) SaveMessage(_ context.Context, m *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.messages[m.ID]
	if !ok {
		return store.ErrNotFound
	}
	cp := *m
	// The solution flag moves only through SetSolution; keep the
	// stored value so a stale read does not roll it back.
	cp.IsSolution = old.IsSolution
	s.messages[m.ID] = &cp
	s.dirty = true
	return nil
}

func (s *Store) MessagesByTopic(_ context.Context, topicID uint64) ([]model.MessageDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.MessageDetail
	for _, m := range s.messages {
		if m.TopicID != topicID {
			continue
		}
		d := model.MessageDetail{Message: *m}
		if a, ok := s.users[m.AuthorID]; ok {
			d.AuthorName = a.Username
			d.AuthorLevel = a.Level
			d.AuthorAvatar = a.Avatar
			d.AuthorRole = a.Role
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) SetSolution(_ context.Context, topicID, messageID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.messages[messageID]
	if !ok || target.TopicID != topicID {
		return store.ErrNotFound
	}
	for _, m := range s.messages {
		if m.TopicID == topicID {
			m.IsSolution = false
		}
	}
	target.IsSolution = true
	s.dirty = true
	return nil
}

// ----- achievements -----

func (s *Store) AchievementsByUser(_ context.Context, userID uint64) ([]model.UserAchievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.earned[userID]
	out := make([]model.UserAchievement, len(records))
	copy(out, records)
	return out, nil
}

func (s *Store) InsertUserAchievement(_ context.Context, ua model.UserAchievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.earned[ua.UserID] {
		if r.AchievementID == ua.AchievementID {
			return store.ErrAlreadyEarned
		}
	}
	s.earned[ua.UserID] = append(s.earned[ua.UserID], ua)
	s.dirty = true
	return nil
}

// ----- notifications -----

func (s *Store) InsertNotification(_ context.Context, n *model.Notification) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notificationSeq++
	cp := *n
	cp.ID = s.notificationSeq
	s.notifications[cp.ID] = &cp
	s.dirty = true
	return cp.ID, nil
}

func (s *Store) NotificationsByUser(_ context.Context, userID uint64, limit int) ([]model.Notification, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Notification
	var unread int64
	for _, n := range s.notifications {
		if n.UserID != userID {
			continue
		}
		out = append(out, *n)
		if !n.IsRead {
			unread++
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, unread, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return store.ErrNotFound
	}
	n.IsRead = true
	s.dirty = true
	return nil
}

func (s *Store) MarkAllNotificationsRead(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	s.dirty = true
	return nil
}

// ----- refresh tokens -----

func (s *Store) StoreRefresh(_ context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenSeq++
	s.tokens[tokenHash] = &model.RefreshToken{
		ID:        s.tokenSeq,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	s.dirty = true
	return nil
}

func (s *Store) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[tokenHash]
	if !ok || t.RevokedAt != nil || time.Now().UTC().After(t.ExpiresAt) {
		return 0, store.ErrTokenInvalid
	}
	return t.UserID, nil
}

func (s *Store) RevokeRefresh(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[tokenHash]
	if !ok {
		return store.ErrTokenInvalid
	}
	now := time.Now().UTC()
	t.RevokedAt = &now
	s.dirty = true
	return nil
}

func (s *Store) RevokeAllForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, t := range s.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	s.dirty = true
	return nil
}
