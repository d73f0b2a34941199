package model

import "time"

// Message is a single post inside a topic.  At most one message per
// topic carries IsSolution=true at any time; the forum engine clears
// every other message in the topic before setting a new solution.
type Message struct {
	ID         uint64    `json:"id"`          // messages.id
	TopicID    uint64    `json:"topic_id"`    // messages.topic_id
	AuthorID   uint64    `json:"author_id"`   // messages.author_id
	Content    string    `json:"content"`     // messages.content
	IsSolution bool      `json:"is_solution"` // messages.is_solution
	CreatedAt  time.Time `json:"created_at"`  // messages.created_at
	UpdatedAt  time.Time `json:"updated_at"`  // messages.updated_at
}

// MessageDetail decorates a message with denormalized author fields
// for listing responses.
type MessageDetail struct {
	Message
	AuthorName   string `json:"author_name"`
	AuthorLevel  int    `json:"author_level"`
	AuthorAvatar string `json:"author_avatar"`
	AuthorRole   string `json:"author_role"`
}
