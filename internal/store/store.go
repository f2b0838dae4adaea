// Package store is the only component that touches durable storage.
package store

import (
	"context"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/domain"
)

// Store defines the interface for data persistence.
//
// Point lookups return (nil, nil) when the row does not exist. Every failure
// is a *domain.StorageError.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, userID, name string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	UpdateUserSession(ctx context.Context, userID string) (bool, error)

	// Conversation operations
	CreateConversation(ctx context.Context, userID string, moodRating *int, notes string) (*domain.Conversation, error)
	GetConversation(ctx context.Context, conversationID int64) (*domain.Conversation, error)
	GetUserConversations(ctx context.Context, userID string, limit int) ([]domain.Conversation, error)
	CountUserConversations(ctx context.Context, userID string) (int, error)
	UpdateConversationMood(ctx context.Context, conversationID int64, rating int) (bool, error)
	UpdateConversationNotes(ctx context.Context, conversationID int64, notes string) (bool, error)

	// Message operations
	AddMessage(ctx context.Context, conversationID int64, sender domain.Sender, content string) (*domain.Message, error)
	GetConversationMessages(ctx context.Context, conversationID int64) ([]domain.Message, error)

	// Lifecycle
	Close() error
}
