package forum

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blackhouse/forum/internal/model"
	"github.com/blackhouse/forum/internal/store"
)

// Fixed XP rewards for forum actions.
const (
	XPReply       = 5  // posting a reply
	XPCreateTopic = 15 // starting a topic
	XPSolution    = 25 // having a message marked as solution
)

// Minimum input lengths enforced before any mutation.
const (
	minTitleLen   = 5
	minContentLen = 2
)

// Notifier receives achievement events after they have been recorded.
// Implementations must not block the request for long; failures are
// the implementation's problem, not the engine's.
type Notifier interface {
	AchievementEarned(ctx context.Context, user *model.User, a model.Achievement)
}

// Engine executes forum actions against a storage backend.  All
// mutations of one user's XP, level and counters happen inside that
// user's critical section, and all mutations of one topic's flags and
// counters inside that topic's, so concurrent requests cannot lose
// updates or double-award achievements.
type Engine struct {
	store    store.Store
	levels   *LevelTable
	catalog  *Catalog
	users    *keyedMutex
	topics   *keyedMutex
	notifier Notifier
	now      func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithNotifier attaches a Notifier invoked for every awarded
// achievement.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New builds an Engine on top of the given backend, level table and
// achievement catalog.
func New(s store.Store, levels *LevelTable, catalog *Catalog, opts ...Option) *Engine {
	e := &Engine{
		store:   s,
		levels:  levels,
		catalog: catalog,
		users:   newKeyedMutex(),
		topics:  newKeyedMutex(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Levels exposes the engine's level table.
func (e *Engine) Levels() *LevelTable { return e.levels }

// Catalog exposes the engine's achievement catalog.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// CreateTopic starts a new topic with its opening message, credits the
// author's topic counter and XP, and evaluates achievements against
// the refreshed stats.  Returns the stored topic.
func (e *Engine) CreateTopic(ctx context.Context, authorID, categoryID uint64, title, content string) (*model.Topic, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if len(title) < minTitleLen {
		return nil, fmt.Errorf("%w: title must be at least %d characters", ErrValidation, minTitleLen)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if _, err := e.store.CategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: category %d", ErrNotFound, categoryID)
		}
		return nil, fmt.Errorf("load category: %w", err)
	}

	unlock := e.users.Lock(authorID)
	defer unlock()

	author, err := e.store.UserByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, authorID)
		}
		return nil, fmt.Errorf("load author: %w", err)
	}

	now := e.now()
	topic := &model.Topic{
		Title:      title,
		CategoryID: categoryID,
		AuthorID:   authorID,
		Views:      1,
		CreatedAt:  now,
	}
	id, err := e.store.InsertTopic(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("insert topic: %w", err)
	}
	topic.ID = id

	opening := &model.Message{
		TopicID:   id,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := e.store.InsertMessage(ctx, opening); err != nil {
		return nil, fmt.Errorf("insert opening message: %w", err)
	}

	author.TopicsCount++
	if err := e.addXP(ctx, author, XPCreateTopic); err != nil {
		return nil, err
	}
	if _, err := e.evaluate(ctx, author); err != nil {
		return nil, err
	}
	return topic, nil
}

// PostReply appends a message to an open topic, bumps the topic's
// reply counter, credits the author and evaluates achievements.
// Returns the stored message.
func (e *Engine) PostReply(ctx context.Context, authorID, topicID uint64, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if len(content) < minContentLen {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if _, err := e.store.UserByID(ctx, authorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, authorID)
		}
		return nil, fmt.Errorf("load author: %w", err)
	}

	// Topic section: closed check, message insert and reply counter
	// must not interleave with other replies to the same topic.
	msg, err := e.appendReply(ctx, authorID, topicID, content)
	if err != nil {
		return nil, err
	}

	// User section: counters, XP and achievements for the author.
	unlock := e.users.Lock(authorID)
	defer unlock()

	author, err := e.store.UserByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("reload author: %w", err)
	}
	author.MessagesCount++
	if err := e.addXP(ctx, author, XPReply); err != nil {
		return nil, err
	}
	if _, err := e.evaluate(ctx, author); err != nil {
		return nil, err
	}
	return msg, nil
}

func (e *Engine) appendReply(ctx context.Context, authorID, topicID uint64, content string) (*model.Message, error) {
	unlock := e.topics.Lock(topicID)
	defer unlock()

	topic, err := e.store.TopicByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
		}
		return nil, fmt.Errorf("load topic: %w", err)
	}
	if topic.IsClosed {
		return nil, fmt.Errorf("%w: topic is closed", ErrInvalidState)
	}

	now := e.now()
	msg := &model.Message{
		TopicID:   topicID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := e.store.InsertMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	msg.ID = id

	topic.RepliesCount++
	topic.LastReplyAt = &now
	if err := e.store.SaveTopic(ctx, topic); err != nil {
		return nil, fmt.Errorf("save topic: %w", err)
	}
	return msg, nil
}

// EditMessage replaces a message's content and bumps updated_at.
// Only the message's own author may edit; no XP is involved.
func (e *Engine) EditMessage(ctx context.Context, requesterID, messageID uint64, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if len(content) < minContentLen {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	msg, err := e.store.MessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: message %d", ErrNotFound, messageID)
		}
		return nil, fmt.Errorf("load message: %w", err)
	}
	if msg.AuthorID != requesterID {
		return nil, fmt.Errorf("%w: only the author may edit a message", ErrForbidden)
	}

	// Topic section so the edit cannot interleave with solution
	// marking on the same thread.
	unlock := e.topics.Lock(msg.TopicID)
	defer unlock()

	msg, err = e.store.MessageByID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("reload message: %w", err)
	}
	msg.Content = content
	msg.UpdatedAt = e.now()
	if err := e.store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	return msg, nil
}

// DeleteTopic removes a topic and all its messages.  Moderators and
// admins only.  Author XP and counters are not rewound.
func (e *Engine) DeleteTopic(ctx context.Context, requesterID, topicID uint64) error {
	requester, err := e.store.UserByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, requesterID)
		}
		return fmt.Errorf("load requester: %w", err)
	}
	if !requester.IsModerator() {
		return fmt.Errorf("%w: moderator access required", ErrForbidden)
	}

	unlock := e.topics.Lock(topicID)
	defer unlock()

	if err := e.store.DeleteTopic(ctx, topicID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
		}
		return fmt.Errorf("delete topic: %w", err)
	}
	return nil
}

// MarkSolution flags one message as the accepted answer of its topic.
// Only the topic author or an admin may do this.  Every other message
// in the topic loses the flag in the same atomic step, so a topic
// never shows two solutions.  The message author is credited
// XPSolution; achievements are not re-evaluated in this path.
func (e *Engine) MarkSolution(ctx context.Context, requesterID, topicID, messageID uint64) error {
	requester, err := e.store.UserByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, requesterID)
		}
		return fmt.Errorf("load requester: %w", err)
	}

	var solutionAuthorID uint64
	err = func() error {
		unlock := e.topics.Lock(topicID)
		defer unlock()

		topic, err := e.store.TopicByID(ctx, topicID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
			}
			return fmt.Errorf("load topic: %w", err)
		}
		if topic.AuthorID != requester.ID && requester.Role != model.RoleAdmin {
			return fmt.Errorf("%w: only the topic author or an admin may mark solutions", ErrForbidden)
		}
		msg, err := e.store.MessageByID(ctx, messageID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: message %d", ErrNotFound, messageID)
			}
			return fmt.Errorf("load message: %w", err)
		}
		if msg.TopicID != topicID {
			return fmt.Errorf("%w: message %d does not belong to topic %d", ErrValidation, messageID, topicID)
		}
		if err := e.store.SetSolution(ctx, topicID, messageID); err != nil {
			return fmt.Errorf("set solution: %w", err)
		}
		solutionAuthorID = msg.AuthorID
		return nil
	}()
	if err != nil {
		return err
	}

	_, _, err = e.AddXP(ctx, solutionAuthorID, XPSolution)
	return err
}

// ToggleTopicClosed flips the closed flag.  Moderators and admins only.
func (e *Engine) ToggleTopicClosed(ctx context.Context, requesterID, topicID uint64) (*model.Topic, error) {
	return e.toggleTopicFlag(ctx, requesterID, topicID, func(t *model.Topic) {
		t.IsClosed = !t.IsClosed
	})
}

// ToggleTopicPinned flips the pinned flag.  Moderators and admins only.
func (e *Engine) ToggleTopicPinned(ctx context.Context, requesterID, topicID uint64) (*model.Topic, error) {
	return e.toggleTopicFlag(ctx, requesterID, topicID, func(t *model.Topic) {
		t.IsPinned = !t.IsPinned
	})
}

func (e *Engine) toggleTopicFlag(ctx context.Context, requesterID, topicID uint64, flip func(*model.Topic)) (*model.Topic, error) {
	requester, err := e.store.UserByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, requesterID)
		}
		return nil, fmt.Errorf("load requester: %w", err)
	}
	if !requester.IsModerator() {
		return nil, fmt.Errorf("%w: moderator access required", ErrForbidden)
	}

	unlock := e.topics.Lock(topicID)
	defer unlock()

	topic, err := e.store.TopicByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
		}
		return nil, fmt.Errorf("load topic: %w", err)
	}
	flip(topic)
	if err := e.store.SaveTopic(ctx, topic); err != nil {
		return nil, fmt.Errorf("save topic: %w", err)
	}
	return topic, nil
}
