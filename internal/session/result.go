package session

import (
	"errors"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/domain"
)

// Reason is the machine-readable code of a soft failure.
type Reason string

const (
	ReasonUserNotFound         Reason = "user_not_found"
	ReasonNoActiveUser         Reason = "no_active_user"
	ReasonNoActiveConversation Reason = "no_active_conversation"
	ReasonInvalidName          Reason = "invalid_name"
	ReasonInvalidRating        Reason = "invalid_rating"
	ReasonInvalidSender        Reason = "invalid_sender"
	ReasonCreateFailed         Reason = "create_failed"
	ReasonRecordFailed         Reason = "record_failed"
	ReasonUpdateFailed         Reason = "update_failed"
)

// Failure is a soft failure: the action did not happen and the caller should
// be told why, but nothing is broken. Err carries the storage cause, if any.
type Failure struct {
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return string(f.Reason) + ": " + f.Err.Error()
	}
	return string(f.Reason)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func fail(reason Reason, err error) *Failure {
	return &Failure{Reason: reason, Err: err}
}

// Welcome is the result of binding a user to the session.
type Welcome struct {
	User         domain.User
	Status       Status
	Conversation *domain.Conversation
	// Recent holds earlier conversations, most recent first. It never
	// contains the conversation opened by this call.
	Recent []domain.Conversation
}

// Details is a snapshot of the session fields.
type Details struct {
	UserID         string
	Name           string
	Status         Status
	ConversationID int64
}

// Recorded is the result of appending a message.
type Recorded struct {
	Message domain.Message
}

// MoodUpdated is the result of rating the active conversation.
type MoodUpdated struct {
	ConversationID int64
	Rating         int
}

// NotesUpdated is the result of annotating the active conversation.
type NotesUpdated struct {
	ConversationID int64
	Notes          string
}
