package memory

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/blackhouse/forum/internal/model"
)

// snapshot is the JSON document written to disk.  Sequence counters
// travel with the data so IDs keep increasing across restarts.
type snapshot struct {
	Users         []model.User            `json:"users"`
	Categories    []model.Category        `json:"categories"`
	Topics        []model.Topic           `json:"topics"`
	Messages      []model.Message         `json:"messages"`
	Earned        []model.UserAchievement `json:"user_achievements"`
	Notifications []model.Notification    `json:"notifications"`

	UserSeq         uint64 `json:"user_seq"`
	CategorySeq     uint64 `json:"category_seq"`
	TopicSeq        uint64 `json:"topic_seq"`
	MessageSeq      uint64 `json:"message_seq"`
	NotificationSeq uint64 `json:"notification_seq"`
}

// Open returns a store backed by the snapshot file at path, loading
// the previous state when the file exists.  Refresh tokens are not
// part of the snapshot; sessions do not survive a restart.
func Open(path string) (*Store, error) {
	s := New(path)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	s.restore(&snap)
	return s, nil
}

func (s *Store) restore(snap *snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(snap.Categories) > 0 {
		s.categories = make(map[uint64]*model.Category, len(snap.Categories))
		for _, c := range snap.Categories {
			cc := c
			s.categories[c.ID] = &cc
		}
	}
	for _, u := range snap.Users {
		uu := u
		s.users[u.ID] = &uu
		s.userByName[strings.ToLower(u.Username)] = u.ID
		s.userByEmail[strings.ToLower(u.Email)] = u.ID
	}
	for _, t := range snap.Topics {
		tt := t
		s.topics[t.ID] = &tt
	}
	for _, m := range snap.Messages {
		mm := m
		s.messages[m.ID] = &mm
	}
	for _, ua := range snap.Earned {
		s.earned[ua.UserID] = append(s.earned[ua.UserID], ua)
	}
	for _, n := range snap.Notifications {
		nn := n
		s.notifications[n.ID] = &nn
	}
	s.userSeq = snap.UserSeq
	s.categorySeq = max(s.categorySeq, snap.CategorySeq)
	s.topicSeq = snap.TopicSeq
	s.messageSeq = snap.MessageSeq
	s.notificationSeq = snap.NotificationSeq
}

// Save writes the current state to the snapshot file.  The write goes
// to a temp file first and is renamed into place so a crash mid-write
// never corrupts the previous snapshot.  A no-op when no path is
// configured or nothing changed since the last save.
func (s *Store) Save() error {
	s.mu.Lock()
	if s.path == "" || !s.dirty {
		s.mu.Unlock()
		return nil
	}
	snap := s.exportLocked()
	s.dirty = false
	s.mu.Unlock()

	if err := s.write(snap); err != nil {
		// The state never reached disk; flag it dirty again so the
		// next tick retries instead of no-opping.
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) write(snap *snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) exportLocked() *snapshot {
	snap := &snapshot{
		UserSeq:         s.userSeq,
		CategorySeq:     s.categorySeq,
		TopicSeq:        s.topicSeq,
		MessageSeq:      s.messageSeq,
		NotificationSeq: s.notificationSeq,
	}
	for _, u := range s.users {
		snap.Users = append(snap.Users, *u)
	}
	for _, c := range s.categories {
		snap.Categories = append(snap.Categories, *c)
	}
	for _, t := range s.topics {
		snap.Topics = append(snap.Topics, *t)
	}
	for _, m := range s.messages {
		snap.Messages = append(snap.Messages, *m)
	}
	for _, records := range s.earned {
		snap.Earned = append(snap.Earned, records...)
	}
	for _, n := range s.notifications {
		snap.Notifications = append(snap.Notifications, *n)
	}
	return snap
}

// AutoSave persists the store every interval until stop is called.
// Save failures are logged and retried on the next tick; the in-memory
// state stays authoritative either way.  stop blocks until the final
// save has been written, so callers can defer it at shutdown.
func (s *Store) AutoSave(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.Save(); err != nil {
					log.Printf("memory: snapshot save failed: %v", err)
				}
			case <-done:
				if err := s.Save(); err != nil {
					log.Printf("memory: final snapshot save failed: %v", err)
				}
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-finished
	}
}
