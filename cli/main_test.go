package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/protocol"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line   string
		action string
		args   string
	}{
		{"/lookup u-123", "lookup_user", `{"user_id":"u-123"}`},
		{"/create  Alice Smith ", "create_user", `{"name":"Alice Smith"}`},
		{"/say I feel tired", "record_message", `{"content":"I feel tired","sender":"user"}`},
		{"/reply Tell me more", "record_message", `{"content":"Tell me more","sender":"assistant"}`},
		{"/mood 6", "update_mood_rating", `{"rating":6}`},
		{"/notes sleep issues", "update_session_notes", `{"notes":"sleep issues"}`},
		{"/details", "get_user_details", ""},
		{"/history", "get_conversation_history", ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			action, args, err := parseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.action, action)
			if tt.args == "" {
				assert.Nil(t, args)
			} else {
				assert.JSONEq(t, tt.args, string(args))
			}
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	_, _, err := parseCommand("/quit")
	assert.ErrorIs(t, err, errQuit)

	for _, line := range []string{"/mood high", "/lookup", "/dance"} {
		_, _, err := parseCommand(line)
		assert.Error(t, err, line)
	}
}

func TestFormatMessage(t *testing.T) {
	result, err := json.Marshal(protocol.ActionResultMessage{
		BaseMessage: protocol.BaseMessage{Type: protocol.TypeActionResult},
		Action:      "update_mood_rating",
		Result:      "Mood rating updated to 7/10",
	})
	require.NoError(t, err)
	assert.Equal(t, "[update_mood_rating] Mood rating updated to 7/10", formatMessage(result))

	errMsg, err := json.Marshal(protocol.ErrorMessage{
		BaseMessage: protocol.BaseMessage{Type: protocol.TypeError},
		Code:        protocol.ErrorCodeUnknownAction,
		Message:     "no action registered for x",
	})
	require.NoError(t, err)
	assert.Equal(t, "[error unknown_action] no action registered for x", formatMessage(errMsg))
}
