package memory

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackhouse/forum/internal/model"
	"github.com/blackhouse/forum/internal/store"
)

func addUser(t *testing.T, s *Store, username string, xp int64) *model.User {
	t.Helper()
	u := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
		XP:           xp,
		Level:        1,
	}
	id, err := s.CreateUser(context.Background(), u)
	require.NoError(t, err)
	u.ID = id
	return u
}

func addTopic(t *testing.T, s *Store, authorID uint64, title string) *model.Topic {
	t.Helper()
	tp := &model.Topic{
		Title:      title,
		CategoryID: 1,
		AuthorID:   authorID,
		Views:      1,
		CreatedAt:  time.Now().UTC(),
	}
	id, err := s.InsertTopic(context.Background(), tp)
	require.NoError(t, err)
	tp.ID = id
	return tp
}

func TestCreateUser_UniqueConstraints(t *testing.T) {
	s := New("")
	ctx := context.Background()
	addUser(t, s, "alice", 0)

	_, err := s.CreateUser(ctx, &model.User{Username: "ALICE", Email: "other@example.com"})
	assert.ErrorIs(t, err, store.ErrUsernameExists)

	_, err = s.CreateUser(ctx, &model.User{Username: "bob", Email: "Alice@Example.com"})
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestUserByUsername_CaseInsensitive(t *testing.T) {
	s := New("")
	u := addUser(t, s, "Alice", 0)

	got, err := s.UserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.UserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSaveUser_ReturnsCopies(t *testing.T) {
	s := New("")
	ctx := context.Background()
	u := addUser(t, s, "alice", 10)

	// Mutating a loaded record must not leak into the store until
	// SaveUser is called.
	got, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	got.XP = 999

	fresh, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), fresh.XP)

	require.NoError(t, s.SaveUser(ctx, got))
	saved, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(999), saved.XP)
}

func TestLeaderboard_Ordering(t *testing.T) {
	s := New("")
	a := addUser(t, s, "alice", 300)
	b := addUser(t, s, "bob", 500)
	c := addUser(t, s, "carol", 300)

	got, err := s.Leaderboard(context.Background(), "xp", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, b.ID, got[0].ID)
	// Ties break by ID for a stable order.
	assert.Equal(t, a.ID, got[1].ID)
	assert.Equal(t, c.ID, got[2].ID)

	got, err = s.Leaderboard(context.Background(), "xp", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCategories_SeededWithCounts(t *testing.T) {
	s := New("")
	ctx := context.Background()
	u := addUser(t, s, "alice", 0)
	tp := addTopic(t, s, u.ID, "Seeded topic")
	_, err := s.InsertMessage(ctx, &model.Message{TopicID: tp.ID, AuthorID: u.ID, Content: "hi"})
	require.NoError(t, err)

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 5)
	assert.Equal(t, "General Discussion", cats[0].Name)
	assert.Equal(t, int64(1), cats[0].TopicsCount)
	assert.Equal(t, int64(1), cats[0].MessagesCount)
	assert.Equal(t, int64(0), cats[1].TopicsCount)
}

func TestTopics_PinnedFirstThenActivity(t *testing.T) {
	s := New("")
	ctx := context.Background()
	u := addUser(t, s, "alice", 0)

	older := addTopic(t, s, u.ID, "older")
	newer := addTopic(t, s, u.ID, "newer")
	pinned := addTopic(t, s, u.ID, "pinned")

	// Force distinct creation times.
	older.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	newer.CreatedAt = time.Now().UTC().Add(-1 * time.Hour)
	require.NoError(t, s.SaveTopic(ctx, older))
	require.NoError(t, s.SaveTopic(ctx, newer))

	pinned.IsPinned = true
	require.NoError(t, s.SaveTopic(ctx, pinned))

	// A reply makes the older topic the most recently active.
	now := time.Now().UTC()
	older.LastReplyAt = &now
	require.NoError(t, s.SaveTopic(ctx, older))

	got, err := s.Topics(ctx, 0, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, pinned.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
	assert.Equal(t, newer.ID, got[2].ID)
	assert.Equal(t, "alice", got[0].AuthorName)
}

func TestIncrementTopicViews_SurvivesSaveTopic(t *testing.T) {
	s := New("")
	ctx := context.Background()
	u := addUser(t, s, "alice", 0)
	tp := addTopic(t, s, u.ID, "viewed")

	require.NoError(t, s.IncrementTopicViews(ctx, tp.ID))
	require.NoError(t, s.IncrementTopicViews(ctx, tp.ID))

	// Saving a stale record must not roll the counter back.
	tp.RepliesCount = 1
	require.NoError(t, s.SaveTopic(ctx, tp))

	got, err := s.TopicByID(ctx, tp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Views)
	assert.Equal(t, int64(1), got.RepliesCount)

	assert.ErrorIs(t, s.IncrementTopicViews(ctx, 999), store.ErrNotFound)
}

func TestSetSolution_Exclusive(t *testing.T) {
	s := New("")
	ctx := context.Background()
	u := addUser(t, s, "alice", 0)
	tp := addTopic(t, s, u.ID, "question")

	m1, err := s.InsertMessage(ctx, &model.Message{TopicID: tp.ID, AuthorID: u.ID, Content: "a"})
	require.NoError(t, err)
	m2, err := s.InsertMessage(ctx, &model.Message{TopicID: tp.ID, AuthorID: u.ID, Content: "b"})
	require.NoError(t, err)

	require.NoError(t, s.SetSolution(ctx, tp.ID, m1))
	require.NoError(t, s.SetSolution(ctx, tp.ID, m2))

	msgs, err := s.MessagesByTopic(ctx, tp.ID)
	require.NoError(t, err)
	for _, m := range msgs {
		assert.Equal(t, m.ID == m2, m.IsSolution)
	}

	assert.ErrorIs(t, s.SetSolution(ctx, tp.ID, 999), store.ErrNotFound)
}

func TestTopicsByAuthor_NewestFirst(t *testing.T) {
	s := New("")
	ctx := context.Background()
	alice := addUser(t, s, "alice", 0)
	bob := addUser(t, s, "bob", 0)

	older := addTopic(t, s, alice.ID, "older")
	newer := addTopic(t, s, alice.ID, "newer")
	addTopic(t, s, bob.ID, "not hers")

	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, s.SaveTopic(ctx, older))

	got, err := s.TopicsByAuthor(ctx, alice.ID, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
	assert.Equal(t, "alice", got[0].AuthorName)

	got, err = s.TopicsByAuthor(ctx, alice.ID, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.TopicsByAuthor(ctx, 999, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteTopic_RemovesMessages(t *testing.T) {
	s := New("")
	ctx := context.Background()
	u := addUser(t, s, "alice", 0)
	doomed := addTopic(t, s, u.ID, "doomed")
	kept := addTopic(t, s, u.ID, "kept")

	_, err := s.InsertMessage(ctx, &model.Message{TopicID: doomed.ID, AuthorID: u.ID, Content: "gone"})
	require.NoError(t, err)
	survivor, err := s.InsertMessage(ctx, &model.Message{TopicID: kept.ID, AuthorID: u.ID, Content: "stays"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTopic(ctx, doomed.ID))

	_, err = s.TopicByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	msgs, err := s.MessagesByTopic(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	// The neighbouring topic keeps its thread.
	_, err = s.MessageByID(ctx, survivor)
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteTopic(ctx, doomed.ID), store.ErrNotFound)
}

func TestSaveMessage_KeepsSolutionFlag(t *testing.T) {
	s := New("")
	ctx := context.Background()
	u := addUser(t, s, "alice", 0)
	tp := addTopic(t, s, u.ID, "question")

	id, err := s.InsertMessage(ctx, &model.Message{TopicID: tp.ID, AuthorID: u.ID, Content: "draft"})
	require.NoError(t, err)

	// A record loaded before SetSolution ran must not roll the flag
	// back when saved.
	stale, err := s.MessageByID(ctx, id)
	require.NoError(t, err)
	require.NoError(t, s.SetSolution(ctx, tp.ID, id))

	stale.Content = "edited"
	require.NoError(t, s.SaveMessage(ctx, stale))

	got, err := s.MessageByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
	assert.True(t, got.IsSolution)

	assert.ErrorIs(t, s.SaveMessage(ctx, &model.Message{ID: 999}), store.ErrNotFound)
}

func TestInsertUserAchievement_Idempotent(t *testing.T) {
	s := New("")
	ctx := context.Background()
	u := addUser(t, s, "alice", 0)

	ua := model.UserAchievement{UserID: u.ID, AchievementID: "first_post", EarnedAt: time.Now().UTC()}
	require.NoError(t, s.InsertUserAchievement(ctx, ua))
	assert.ErrorIs(t, s.InsertUserAchievement(ctx, ua), store.ErrAlreadyEarned)

	records, err := s.AchievementsByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestNotifications_ReadTracking(t *testing.T) {
	s := New("")
	ctx := context.Background()
	u := addUser(t, s, "alice", 0)

	id1, err := s.InsertNotification(ctx, &model.Notification{UserID: u.ID, Type: "achievement", Message: "one"})
	require.NoError(t, err)
	_, err = s.InsertNotification(ctx, &model.Notification{UserID: u.ID, Type: "achievement", Message: "two"})
	require.NoError(t, err)

	items, unread, err := s.NotificationsByUser(ctx, u.ID, 10)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, s.MarkNotificationRead(ctx, id1, u.ID))
	_, unread, err = s.NotificationsByUser(ctx, u.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	// Another user cannot touch someone else's inbox.
	other := addUser(t, s, "bob", 0)
	assert.ErrorIs(t, s.MarkNotificationRead(ctx, id1, other.ID), store.ErrNotFound)

	require.NoError(t, s.MarkAllNotificationsRead(ctx, u.ID))
	_, unread, err = s.NotificationsByUser(ctx, u.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestRefreshTokens_Lifecycle(t *testing.T) {
	s := New("")
	ctx := context.Background()
	u := addUser(t, s, "alice", 0)

	exp := time.Now().UTC().Add(time.Hour)
	require.NoError(t, s.StoreRefresh(ctx, u.ID, "hash-1", exp))

	uid, err := s.ValidateRefresh(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)

	_, err = s.ValidateRefresh(ctx, "unknown")
	assert.ErrorIs(t, err, store.ErrTokenInvalid)

	require.NoError(t, s.RevokeRefresh(ctx, "hash-1"))
	_, err = s.ValidateRefresh(ctx, "hash-1")
	assert.ErrorIs(t, err, store.ErrTokenInvalid)

	require.NoError(t, s.StoreRefresh(ctx, u.ID, "hash-2", time.Now().UTC().Add(-time.Hour)))
	_, err = s.ValidateRefresh(ctx, "hash-2")
	assert.ErrorIs(t, err, store.ErrTokenInvalid)

	require.NoError(t, s.StoreRefresh(ctx, u.ID, "hash-3", exp))
	require.NoError(t, s.RevokeAllForUser(ctx, u.ID))
	_, err = s.ValidateRefresh(ctx, "hash-3")
	assert.ErrorIs(t, err, store.ErrTokenInvalid)
}

func TestSnapshotRoundtrip(t *testing.T) {
	path := t.TempDir() + "/forum.json"
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	u := addUser(t, s1, "alice", 120)
	tp := addTopic(t, s1, u.ID, "persisted topic")
	_, err = s1.InsertMessage(ctx, &model.Message{TopicID: tp.ID, AuthorID: u.ID, Content: "hello"})
	require.NoError(t, err)
	require.NoError(t, s1.InsertUserAchievement(ctx, model.UserAchievement{UserID: u.ID, AchievementID: "first_post", EarnedAt: time.Now().UTC()}))
	require.NoError(t, s1.Save())

	s2, err := Open(path)
	require.NoError(t, err)

	got, err := s2.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, int64(120), got.XP)

	topics, err := s2.Topics(ctx, 0, 10, 0)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "persisted topic", topics[0].Title)

	records, err := s2.AchievementsByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// New records after a restore must not collide with restored IDs.
	other := addUser(t, s2, "bob", 0)
	assert.Greater(t, other.ID, u.ID)
}

func TestSave_FailureKeepsStateDirty(t *testing.T) {
	blocker := t.TempDir() + "/blocker"
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// The snapshot's parent "directory" is a regular file, so every
	// write attempt fails.
	s := New(blocker + "/forum.json")
	u := addUser(t, s, "alice", 10)

	require.Error(t, s.Save())
	// The state never reached disk; a second attempt must retry the
	// write, not treat the store as clean.
	require.Error(t, s.Save())

	require.NoError(t, os.Remove(blocker))
	require.NoError(t, s.Save())

	s2, err := Open(blocker + "/forum.json")
	require.NoError(t, err)
	got, err := s2.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.XP)
}

func TestAutoSave_StopFlushes(t *testing.T) {
	path := t.TempDir() + "/forum.json"

	s1, err := Open(path)
	require.NoError(t, err)
	stop := s1.AutoSave(time.Hour) // interval never fires in-test
	addUser(t, s1, "alice", 50)
	stop() // final save on stop

	s2, err := Open(path)
	require.NoError(t, err)
	got, err := s2.UserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.XP)
}
