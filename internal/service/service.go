// Package service owns the live sessions and is the single entry point used by
// the HTTP and WebSocket transports.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/actions"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/config"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/domain"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/observability"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/session"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/store"
)

// ErrSessionNotFound is returned for unknown or closed session ids.
var ErrSessionNotFound = errors.New("session not found")

// State is the public snapshot of a live session.
type State struct {
	SessionID      string         `json:"session_id"`
	UserID         string         `json:"user_id,omitempty"`
	Name           string         `json:"name,omitempty"`
	Status         session.Status `json:"status"`
	ConversationID int64          `json:"conversation_id,omitempty"`
	OpenedAt       time.Time      `json:"opened_at"`
}

type liveSession struct {
	mu       sync.Mutex
	sess     *session.Session
	openedAt time.Time
}

type Service struct {
	store    store.Store
	registry *actions.Registry
	guard    session.Guard
	config   *config.Config
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*liveSession
}

func New(st store.Store, registry *actions.Registry, guard session.Guard, cfg *config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    st,
		registry: registry,
		guard:    guard,
		config:   cfg,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*liveSession),
	}
}

// OpenSession starts an empty session and returns its id.
func (s *Service) OpenSession(ctx context.Context) string {
	id := "sess_" + uuid.New().String()
	sess := session.New(id, s.store, s.guard, s.logger, session.WithRecentLimit(s.config.RecentSummaryLimit))

	s.mu.Lock()
	s.sessions[id] = &liveSession{sess: sess, openedAt: s.now().UTC()}
	s.mu.Unlock()

	observability.FromContext(observability.WithSessionID(ctx, id), s.logger).Info("session opened")
	return id
}

// CloseSession discards a session. It reports whether the session existed.
func (s *Service) CloseSession(ctx context.Context, id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		observability.FromContext(observability.WithSessionID(ctx, id), s.logger).Info("session closed")
	}
	return ok
}

func (s *Service) lookup(id string) (*liveSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ls, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ls, nil
}

// Invoke runs an action on a session. Calls on the same session are serialized.
func (s *Service) Invoke(ctx context.Context, sessionID, action string, args json.RawMessage) (string, error) {
	ls, err := s.lookup(sessionID)
	if err != nil {
		return "", err
	}

	ctx = observability.WithSessionID(ctx, sessionID)
	logger := observability.FromContext(ctx, s.logger)

	ls.mu.Lock()
	defer ls.mu.Unlock()

	start := s.now()
	result, err := s.registry.Execute(ctx, ls.sess, action, args)
	if err != nil {
		logger.Error("action failed", "action", action, "error", err)
		return "", err
	}
	logger.Info("action invoked", "action", action, "duration_ms", s.now().Sub(start).Milliseconds())
	return result, nil
}

// Actions lists the registered actions.
func (s *Service) Actions() []actions.Descriptor {
	return s.registry.List()
}

// SessionState returns a snapshot of a live session.
func (s *Service) SessionState(sessionID string) (*State, error) {
	ls, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	d := ls.sess.Details()
	ls.mu.Unlock()

	return &State{
		SessionID:      sessionID,
		UserID:         d.UserID,
		Name:           d.Name,
		Status:         d.Status,
		ConversationID: d.ConversationID,
		OpenedAt:       ls.openedAt,
	}, nil
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// GetUser returns a user, or nil if it does not exist.
func (s *Service) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

// ListConversations returns a user's conversations, most recent first.
// A non-positive limit falls back to the configured default.
func (s *Service) ListConversations(ctx context.Context, userID string, limit int) ([]domain.Conversation, error) {
	if limit <= 0 {
		limit = s.config.ConversationListLimit
	}
	return s.store.GetUserConversations(ctx, userID, limit)
}

// GetConversationMessages returns a conversation's messages in chronological order.
// It returns nil messages and no error when the conversation does not exist.
func (s *Service) GetConversationMessages(ctx context.Context, conversationID int64) (*domain.Conversation, []domain.Message, error) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil || conv == nil {
		return nil, nil, err
	}
	msgs, err := s.store.GetConversationMessages(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}
	return conv, msgs, nil
}
