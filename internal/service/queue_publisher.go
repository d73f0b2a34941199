// Package queue_publisher publishes domain events to RabbitMQ.
// Errors are logged and returned so callers can ignore failures
// without interrupting the main request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/blackhouse/forum/internal/model"
	q "github.com/blackhouse/forum/internal/queue"
)

// Notifier adapts the publisher to the forum engine's notification
// hook.  Publish failures are swallowed: the award is already
// recorded and a lost broker message must not fail the request.
type Notifier struct{}

// NewNotifier returns a broker-backed achievement notifier.
func NewNotifier() *Notifier { return &Notifier{} }

// AchievementEarned publishes an AchievementEarnedEvent for the
// award.  The user snapshot already includes the reward XP.
func (n *Notifier) AchievementEarned(ctx context.Context, u *model.User, a model.Achievement) {
	ev := q.AchievementEarnedEvent{
		EventID:         uuid.NewString(),
		UserID:          u.ID,
		Username:        u.Username,
		AchievementID:   a.ID,
		AchievementName: a.Name,
		XPReward:        a.XPReward,
		TotalXP:         u.XP,
		Level:           u.Level,
		EarnedAt:        time.Now().UTC().Format(time.RFC3339),
	}
	_ = PublishAchievementEarned(ctx, ev)
}

// PublishAchievementEarned publishes the event to the
// "achievement.earned" queue.  The function never panics; any error
// is logged and returned so the caller can choose to ignore it.
// Messages are marked persistent.
func PublishAchievementEarned(ctx context.Context, event q.AchievementEarnedEvent) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		"achievement.earned", // name
		true,                 // durable
		false,                // autoDelete
		false,                // exclusive
		false,                // noWait
		nil,                  // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                   // default exchange
		"achievement.earned", // routing key = queue name
		false,                // mandatory
		false,                // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
