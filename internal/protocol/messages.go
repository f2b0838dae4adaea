// Package protocol defines the WebSocket message protocol between voice
// clients and the assistant backend.
package protocol

import (
	"encoding/json"
	"time"
)

// Message types from client to server
const (
	TypeHello        = "hello"
	TypeActionInvoke = "action_invoke"
	TypeListActions  = "list_actions"
)

// Message types from server to client
const (
	TypeHelloAck     = "hello_ack"
	TypeActionResult = "action_result"
	TypeActions      = "actions"
	TypeError        = "error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// NewBase stamps a message header with the current time.
func NewBase(msgType, requestID, sessionID string) BaseMessage {
	return BaseMessage{
		Type:      msgType,
		Ts:        time.Now().UnixMilli(),
		RequestID: requestID,
		SessionID: sessionID,
	}
}

// HelloMessage is sent by the client to open its session.
type HelloMessage struct {
	BaseMessage
	ClientMeta map[string]string `json:"client_meta,omitempty"`
}

// HelloAckMessage carries the id of the session bound to the connection.
type HelloAckMessage struct {
	BaseMessage
}

// ActionInvokeMessage asks the server to run an action on the session.
type ActionInvokeMessage struct {
	BaseMessage
	Action string          `json:"action"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// ActionResultMessage is the text produced by an action.
type ActionResultMessage struct {
	BaseMessage
	Action string `json:"action"`
	Result string `json:"result"`
}

// ActionDescriptor describes one invocable action.
type ActionDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ActionsMessage lists the actions available on the session.
type ActionsMessage struct {
	BaseMessage
	Actions []ActionDescriptor `json:"actions"`
}

// ErrorMessage is sent by the server when a request cannot be served.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrorCodeInvalidMessage  = "invalid_message"
	ErrorCodeSessionRequired = "session_required"
	ErrorCodeUnknownAction   = "unknown_action"
	ErrorCodeInvalidArgs     = "invalid_arguments"
	ErrorCodeInternalError   = "internal_error"
)
