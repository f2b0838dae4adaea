// Package domain defines the persisted models of the assistant backend.
package domain

import "time"

// User is a person known to the assistant across sessions.
type User struct {
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	LastSession time.Time `json:"last_session"`
}

// Conversation is the persisted record of one session's exchange.
type Conversation struct {
	ConversationID int64     `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Timestamp      time.Time `json:"timestamp"`
	MoodRating     *int      `json:"mood_rating,omitempty"`
	Notes          string    `json:"notes,omitempty"`
}

// Message is a single utterance inside a conversation. Messages are append-only.
type Message struct {
	MessageID      int64     `json:"message_id"`
	ConversationID int64     `json:"conversation_id"`
	Sender         Sender    `json:"sender"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}
