// Package session holds the in-memory state of one interaction: the active
// user and the active conversation. It wraps the store with the operations
// exposed to the agent as actions.
//
// A Session is not safe for concurrent use.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/domain"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/store"
)

// Status is the session's knowledge of who the user is.
type Status string

const (
	StatusUnknown   Status = "unknown"
	StatusNew       Status = "new"
	StatusReturning Status = "returning"
)

// DefaultRecentLimit is how many earlier conversations a welcome-back summarizes.
const DefaultRecentLimit = 3

// Action names, shared with the guard policy.
const (
	ActionLookupUser      = "lookup_user"
	ActionGetUserDetails  = "get_user_details"
	ActionCreateUser      = "create_user"
	ActionRecordMessage   = "record_message"
	ActionUpdateMood      = "update_mood_rating"
	ActionUpdateNotes     = "update_session_notes"
	ActionGetConversation = "get_conversation_history"
)

// Session is the per-interaction context.
type Session struct {
	id          string
	store       store.Store
	guard       Guard
	log         *slog.Logger
	recentLimit int
	newID       func() string

	userID         string
	name           string
	status         Status
	conversationID int64 // zero when no conversation is open
}

// Option configures a Session.
type Option func(*Session)

// WithRecentLimit sets how many earlier conversations LookupUser returns.
func WithRecentLimit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.recentLimit = n
		}
	}
}

// WithIDGenerator overrides how new user ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		s.newID = fn
	}
}

// New creates an empty session bound to st and guarded by g.
func New(id string, st store.Store, g Guard, logger *slog.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		id:          id,
		store:       st,
		guard:       g,
		log:         logger.With("session_id", id),
		recentLimit: DefaultRecentLimit,
		newID:       func() string { return uuid.New().String() },
		status:      StatusUnknown,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// HasUser reports whether a user is bound to the session.
func (s *Session) HasUser() bool {
	return s.userID != ""
}

// ConversationID returns the active conversation, or zero.
func (s *Session) ConversationID() int64 {
	return s.conversationID
}

// Details returns a snapshot of the session fields without any precondition.
func (s *Session) Details() Details {
	return Details{
		UserID:         s.userID,
		Name:           s.name,
		Status:         s.status,
		ConversationID: s.conversationID,
	}
}

func (s *Session) check(ctx context.Context, action string, args map[string]interface{}) error {
	reason, err := s.guard.Check(ctx, Precondition{
		Action:          action,
		HasUser:         s.HasUser(),
		HasConversation: s.conversationID != 0,
		Args:            args,
	})
	if err != nil {
		return fmt.Errorf("check %s: %w", action, err)
	}
	if reason != "" {
		s.log.Info("action refused", "action", action, "reason", reason)
		return fail(reason, nil)
	}
	return nil
}

// LookupUser binds an existing user to the session and opens a new
// conversation for it. Every successful call opens a fresh conversation,
// even when one is already active.
func (s *Session) LookupUser(ctx context.Context, userID string) (*Welcome, error) {
	if err := s.check(ctx, ActionLookupUser, map[string]interface{}{"user_id": userID}); err != nil {
		return nil, err
	}
	s.log.Info("lookup user", "user_id", userID)

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fail(ReasonUserNotFound, nil)
	}

	conv, err := s.store.CreateConversation(ctx, user.UserID, nil, "")
	if err != nil {
		return nil, err
	}
	s.bind(user, StatusReturning, conv)

	recent, err := s.store.GetUserConversations(ctx, user.UserID, s.recentLimit+1)
	if err != nil {
		return nil, err
	}

	return &Welcome{
		User:         *user,
		Status:       StatusReturning,
		Conversation: conv,
		Recent:       earlier(recent, conv.ConversationID, s.recentLimit),
	}, nil
}

// GetUserDetails returns the session fields once a user is bound.
func (s *Session) GetUserDetails(ctx context.Context) (*Details, error) {
	if err := s.check(ctx, ActionGetUserDetails, nil); err != nil {
		return nil, err
	}
	d := s.Details()
	return &d, nil
}

// CreateUser registers a new user under a fresh id, binds it to the session
// and opens its first conversation.
func (s *Session) CreateUser(ctx context.Context, name string) (*Welcome, error) {
	name = strings.TrimSpace(name)
	if err := s.check(ctx, ActionCreateUser, map[string]interface{}{"name": name}); err != nil {
		return nil, err
	}

	userID := s.newID()
	s.log.Info("create user", "user_id", userID)

	user, err := s.store.CreateUser(ctx, userID, name)
	if err != nil {
		s.log.Error("create user failed", "user_id", userID, "error", err)
		return nil, fail(ReasonCreateFailed, err)
	}

	conv, err := s.store.CreateConversation(ctx, user.UserID, nil, "")
	if err != nil {
		// The profile exists; the session just has nothing to record into.
		s.log.Error("open conversation failed", "user_id", userID, "error", err)
	}
	s.bind(user, StatusNew, conv)

	return &Welcome{User: *user, Status: StatusNew, Conversation: conv}, nil
}

// RecordMessage appends a message to the active conversation. An empty
// sender means the user.
func (s *Session) RecordMessage(ctx context.Context, content string, sender domain.Sender) (*Recorded, error) {
	if sender == "" {
		sender = domain.SenderUser
	}
	if err := s.check(ctx, ActionRecordMessage, map[string]interface{}{"sender": string(sender)}); err != nil {
		return nil, err
	}
	s.log.Info("recording message", "sender", sender, "conversation_id", s.conversationID)

	msg, err := s.store.AddMessage(ctx, s.conversationID, sender, content)
	if err != nil {
		s.log.Error("record message failed", "conversation_id", s.conversationID, "error", err)
		return nil, fail(ReasonRecordFailed, err)
	}
	return &Recorded{Message: *msg}, nil
}

// UpdateMoodRating stores a 1-10 rating on the active conversation.
func (s *Session) UpdateMoodRating(ctx context.Context, rating int) (*MoodUpdated, error) {
	if err := s.check(ctx, ActionUpdateMood, map[string]interface{}{"rating": rating}); err != nil {
		return nil, err
	}
	s.log.Info("updating mood rating", "rating", rating, "conversation_id", s.conversationID)

	ok, err := s.store.UpdateConversationMood(ctx, s.conversationID, rating)
	if err == nil && !ok {
		err = fmt.Errorf("conversation %d not found", s.conversationID)
	}
	if err != nil {
		s.log.Error("update mood failed", "conversation_id", s.conversationID, "error", err)
		return nil, fail(ReasonUpdateFailed, err)
	}
	return &MoodUpdated{ConversationID: s.conversationID, Rating: rating}, nil
}

// UpdateNotes replaces the notes of the active conversation.
func (s *Session) UpdateNotes(ctx context.Context, notes string) (*NotesUpdated, error) {
	if err := s.check(ctx, ActionUpdateNotes, nil); err != nil {
		return nil, err
	}

	ok, err := s.store.UpdateConversationNotes(ctx, s.conversationID, notes)
	if err == nil && !ok {
		err = fmt.Errorf("conversation %d not found", s.conversationID)
	}
	if err != nil {
		s.log.Error("update notes failed", "conversation_id", s.conversationID, "error", err)
		return nil, fail(ReasonUpdateFailed, err)
	}
	return &NotesUpdated{ConversationID: s.conversationID, Notes: notes}, nil
}

// History returns the messages of the active conversation in chronological order.
func (s *Session) History(ctx context.Context) ([]domain.Message, error) {
	if err := s.check(ctx, ActionGetConversation, nil); err != nil {
		return nil, err
	}
	return s.store.GetConversationMessages(ctx, s.conversationID)
}

func (s *Session) bind(user *domain.User, status Status, conv *domain.Conversation) {
	s.userID = user.UserID
	s.name = user.Name
	s.status = status
	s.conversationID = 0
	if conv != nil {
		s.conversationID = conv.ConversationID
	}
}

// earlier drops the conversation just opened and caps the rest at limit.
func earlier(convs []domain.Conversation, current int64, limit int) []domain.Conversation {
	out := make([]domain.Conversation, 0, limit)
	for _, c := range convs {
		if c.ConversationID == current {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, c)
	}
	return out
}
