package actions

import (
	"context"
	"encoding/json"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/domain"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/session"
)

func builtins() []Action {
	return []Action{
		{
			Name:        session.ActionLookupUser,
			Description: "lookup a user by their ID",
			Parameters: json.RawMessage(`{"type":"object","properties":{` +
				`"user_id":{"type":"string","description":"The ID of the user to lookup"}},"required":["user_id"]}`),
			Exec: lookupUser,
		},
		{
			Name:        session.ActionGetUserDetails,
			Description: "get the details of the current user",
			Exec:        getUserDetails,
		},
		{
			Name:        session.ActionCreateUser,
			Description: "create a new user",
			Parameters: json.RawMessage(`{"type":"object","properties":{` +
				`"name":{"type":"string","description":"The name of the user"}},"required":["name"]}`),
			Exec: createUser,
		},
		{
			Name:        session.ActionRecordMessage,
			Description: "record a message in the current conversation",
			Parameters: json.RawMessage(`{"type":"object","properties":{` +
				`"content":{"type":"string","description":"The message content"},` +
				`"sender":{"type":"string","enum":["user","assistant"],"default":"user","description":"Who sent the message (user/assistant)"}},` +
				`"required":["content"]}`),
			Exec: recordMessage,
		},
		{
			Name:        session.ActionUpdateMood,
			Description: "update the mood rating for the current conversation",
			Parameters: json.RawMessage(`{"type":"object","properties":{` +
				`"rating":{"type":"integer","minimum":1,"maximum":10,"description":"The mood rating on a scale of 1-10"}},"required":["rating"]}`),
			Exec: updateMoodRating,
		},
		{
			Name:        session.ActionUpdateNotes,
			Description: "save notes about the current conversation",
			Parameters: json.RawMessage(`{"type":"object","properties":{` +
				`"notes":{"type":"string","description":"Short notes on what was discussed"}},"required":["notes"]}`),
			Exec: updateNotes,
		},
		{
			Name:        session.ActionGetConversation,
			Description: "get the messages recorded in the current conversation",
			Exec:        getConversationHistory,
		},
	}
}

func lookupUser(ctx context.Context, sess *session.Session, raw json.RawMessage) (string, error) {
	var args struct {
		UserID string `json:"user_id"`
	}
	if err := decodeArgs(session.ActionLookupUser, raw, &args); err != nil {
		return "", err
	}
	welcome, err := sess.LookupUser(ctx, args.UserID)
	if err != nil {
		return renderError(err)
	}
	return RenderWelcomeBack(welcome), nil
}

func getUserDetails(ctx context.Context, sess *session.Session, _ json.RawMessage) (string, error) {
	details, err := sess.GetUserDetails(ctx)
	if err != nil {
		return renderError(err)
	}
	return RenderDetails(details), nil
}

func createUser(ctx context.Context, sess *session.Session, raw json.RawMessage) (string, error) {
	var args struct {
		Name string `json:"name"`
	}
	if err := decodeArgs(session.ActionCreateUser, raw, &args); err != nil {
		return "", err
	}
	welcome, err := sess.CreateUser(ctx, args.Name)
	if err != nil {
		return renderError(err)
	}
	return RenderWelcomeNew(welcome), nil
}

func recordMessage(ctx context.Context, sess *session.Session, raw json.RawMessage) (string, error) {
	var args struct {
		Content string `json:"content"`
		Sender  string `json:"sender"`
	}
	if err := decodeArgs(session.ActionRecordMessage, raw, &args); err != nil {
		return "", err
	}
	if _, err := sess.RecordMessage(ctx, args.Content, domain.Sender(args.Sender)); err != nil {
		return renderError(err)
	}
	return "Message recorded successfully", nil
}

func updateMoodRating(ctx context.Context, sess *session.Session, raw json.RawMessage) (string, error) {
	var args struct {
		Rating int `json:"rating"`
	}
	if err := decodeArgs(session.ActionUpdateMood, raw, &args); err != nil {
		return "", err
	}
	updated, err := sess.UpdateMoodRating(ctx, args.Rating)
	if err != nil {
		return renderError(err)
	}
	return RenderMoodUpdated(updated), nil
}

func updateNotes(ctx context.Context, sess *session.Session, raw json.RawMessage) (string, error) {
	var args struct {
		Notes string `json:"notes"`
	}
	if err := decodeArgs(session.ActionUpdateNotes, raw, &args); err != nil {
		return "", err
	}
	if _, err := sess.UpdateNotes(ctx, args.Notes); err != nil {
		return renderError(err)
	}
	return "Session notes saved", nil
}

func getConversationHistory(ctx context.Context, sess *session.Session, _ json.RawMessage) (string, error) {
	messages, err := sess.History(ctx)
	if err != nil {
		return renderError(err)
	}
	return RenderHistory(messages), nil
}
