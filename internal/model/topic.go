package model

import "time"

// Topic represents a discussion thread within a category.
// RepliesCount and LastReplyAt are mutated only by the reply-posting
// path of the forum engine; IsPinned and IsClosed only by the
// moderator toggles.
//
// Fields:
//  ID           – primary key identifier.
//  Title        – topic title (minimum five characters).
//  CategoryID   – owning category.
//  AuthorID     – user who started the topic.
//  IsPinned     – pinned topics sort before others in listings.
//  IsClosed     – closed topics reject new replies.
//  Views        – view counter, incremented on topic fetch.
//  RepliesCount – number of reply messages (the opening message is
//                 not counted).
//  LastReplyAt  – timestamp of the most recent reply, nil until the
//                 first reply arrives.
//  CreatedAt    – creation timestamp.
type Topic struct {
	ID           uint64     `json:"id"`            // topics.id
	Title        string     `json:"title"`         // topics.title
	CategoryID   uint64     `json:"category_id"`   // topics.category_id
	AuthorID     uint64     `json:"author_id"`     // topics.author_id
	IsPinned     bool       `json:"is_pinned"`     // topics.is_pinned
	IsClosed     bool       `json:"is_closed"`     // topics.is_closed
	Views        int64      `json:"views"`         // topics.views
	RepliesCount int64      `json:"replies_count"` // topics.replies_count
	LastReplyAt  *time.Time `json:"last_reply_at"` // topics.last_reply_at (nullable)
	CreatedAt    time.Time  `json:"created_at"`    // topics.created_at
}

// TopicSummary decorates a topic with denormalized author and
// category fields for listing responses.
type TopicSummary struct {
	Topic
	AuthorName   string `json:"author_name"`
	AuthorLevel  int    `json:"author_level"`
	AuthorAvatar string `json:"author_avatar"`
	CategoryName string `json:"category_name"`
}
