// Package queue defines message payloads exchanged over the message broker.
package queue

const (
	UserRegisteredQueue = "user.registered"
	EntryCreatedQueue   = "entry.created"
)

// UserRegisteredEvent is published after a signup completes, once the
// account and its default taxonomy exist.
type UserRegisteredEvent struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Invited      bool   `json:"invited"`
	RegisteredAt int64  `json:"registered_at"`
}

// EntryCreatedEvent is published when a journal entry is created. It
// carries enough for downstream consumers (digests, analytics) without
// exposing the entry text.
type EntryCreatedEvent struct {
	EntryID   string `json:"entry_id"`
	UserID    string `json:"user_id"`
	Date      string `json:"date"`
	Mood      int    `json:"mood"`
	TagCount  int    `json:"tag_count"`
	CreatedAt int64  `json:"created_at"`
}
