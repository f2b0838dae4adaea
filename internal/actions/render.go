package actions

import (
	"fmt"
	"strings"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/domain"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/session"
)

var failureText = map[session.Reason]string{
	session.ReasonUserNotFound:         "User not found",
	session.ReasonNoActiveUser:         "No user is currently active. Please create a new user or lookup an existing one.",
	session.ReasonNoActiveConversation: "No active conversation. Please create a user first.",
	session.ReasonInvalidName:          "I need a name to create a profile.",
	session.ReasonInvalidRating:        fmt.Sprintf("Mood rating must be between %d and %d", domain.MinMoodRating, domain.MaxMoodRating),
	session.ReasonInvalidSender:        "Sender must be either user or assistant",
	session.ReasonCreateFailed:         "Failed to create user",
	session.ReasonRecordFailed:         "Failed to record message",
	session.ReasonUpdateFailed:         "Failed to update the current conversation",
}

// RenderFailure returns the text shown for a soft failure.
func RenderFailure(reason session.Reason) string {
	if text, ok := failureText[reason]; ok {
		return text
	}
	return "Unable to complete the request: " + string(reason)
}

// renderError turns soft failures into text and passes hard failures through.
func renderError(err error) (string, error) {
	if f, ok := session.AsFailure(err); ok {
		return RenderFailure(f.Reason), nil
	}
	return "", err
}

// RenderWelcomeBack greets a returning user with a summary of earlier sessions.
func RenderWelcomeBack(w *session.Welcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Welcome back, %s!\n", w.User.Name)
	if len(w.Recent) == 0 {
		return b.String()
	}
	b.WriteString("Here's a summary of your recent conversations:\n")
	for _, c := range w.Recent {
		date := c.Timestamp.Format("2006-01-02")
		if c.MoodRating != nil {
			fmt.Fprintf(&b, "- Session on %s: Mood rating: %d/10\n", date, *c.MoodRating)
		} else {
			fmt.Fprintf(&b, "- Session on %s\n", date)
		}
	}
	return b.String()
}

// RenderWelcomeNew greets a user whose profile was just created.
func RenderWelcomeNew(w *session.Welcome) string {
	return fmt.Sprintf("Welcome, %s! I've created a profile for you. How can I support you today?", w.User.Name)
}

// RenderDetails dumps the session fields. Status is left out while unknown.
func RenderDetails(d *session.Details) string {
	var b strings.Builder
	b.WriteString("The current user details are:\n")
	fmt.Fprintf(&b, "user_id: %s\n", d.UserID)
	fmt.Fprintf(&b, "name: %s\n", d.Name)
	if d.Status != session.StatusUnknown {
		fmt.Fprintf(&b, "status: %s\n", d.Status)
	}
	if d.ConversationID != 0 {
		fmt.Fprintf(&b, "current_conversation_id: %d\n", d.ConversationID)
	}
	return b.String()
}

// RenderMoodUpdated acknowledges a stored mood rating.
func RenderMoodUpdated(m *session.MoodUpdated) string {
	return fmt.Sprintf("Mood rating updated to %d/10", m.Rating)
}

// RenderHistory replays a conversation as "sender: content" lines.
func RenderHistory(messages []domain.Message) string {
	if len(messages) == 0 {
		return "No messages have been recorded in this conversation yet."
	}
	var b strings.Builder
	b.WriteString("Messages in this conversation:\n")
	for _, m := range messages {
		fmt.Fprintf(&b, "%s: %s\n", m.Sender, m.Content)
	}
	return b.String()
}
