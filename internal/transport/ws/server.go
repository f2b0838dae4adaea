// Package ws serves voice clients over WebSocket. Each connection owns exactly
// one session, opened on hello and discarded on disconnect.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/actions"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/config"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/protocol"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/service"
)

const sendBufferSize = 64

// Server handles WebSocket connections.
type Server struct {
	svc      *service.Service
	logger   *slog.Logger
	upgrader websocket.Upgrader

	pingInterval   time.Duration
	writeTimeout   time.Duration
	readTimeout    time.Duration
	maxMessageSize int64
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, svc *service.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		svc:            svc,
		logger:         logger,
		pingInterval:   cfg.PingInterval,
		writeTimeout:   cfg.WriteTimeout,
		readTimeout:    cfg.ReadTimeout,
		maxMessageSize: cfg.MaxMessageSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	if s.pingInterval <= 0 {
		s.pingInterval = 30 * time.Second
	}
	if s.writeTimeout <= 0 {
		s.writeTimeout = 10 * time.Second
	}
	if s.readTimeout <= 0 {
		s.readTimeout = 60 * time.Second
	}
	if s.maxMessageSize <= 0 {
		s.maxMessageSize = 65536
	}
	return s
}

// connection is one client socket and the session bound to it.
type connection struct {
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	sessionID string
}

func (c *connection) stop() {
	c.closeOnce.Do(func() { close(c.done) })
}

// enqueue queues data for the writer. It returns false once the connection is closing.
func (c *connection) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	}
}

// HandleWebSocket upgrades the request and serves the connection until it closes.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return err
	}

	conn := &connection{
		ws:   ws,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
	ws.SetReadLimit(s.maxMessageSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.writePump(conn)
	s.readPump(ctx, conn)
	return nil
}

// readPump reads and dispatches messages until the client goes away.
func (s *Server) readPump(ctx context.Context, conn *connection) {
	defer func() {
		conn.stop()
		if conn.sessionID != "" {
			s.svc.CloseSession(ctx, conn.sessionID)
		}
	}()

	_ = conn.ws.SetReadDeadline(time.Now().Add(s.readTimeout))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(s.readTimeout))
	})

	for {
		_, message, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Warn("websocket read failed", "session_id", conn.sessionID, "error", err)
			}
			return
		}
		s.handleMessage(ctx, conn, message)
	}
}

// writePump writes queued messages and keeps the connection alive with pings.
func (s *Server) writePump(conn *connection) {
	ticker := time.NewTicker(s.pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.ws.Close()
	}()

	for {
		select {
		case message := <-conn.send:
			_ = conn.ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := conn.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Warn("websocket write failed", "error", err)
				conn.stop()
				return
			}

		case <-ticker.C:
			_ = conn.ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := conn.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.stop()
				return
			}

		case <-conn.done:
			_ = conn.ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			_ = conn.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleMessage dispatches incoming messages to appropriate handlers.
func (s *Server) handleMessage(ctx context.Context, conn *connection, data []byte) {
	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	switch base.Type {
	case protocol.TypeHello:
		s.handleHello(ctx, conn, data)
	case protocol.TypeActionInvoke:
		s.handleActionInvoke(ctx, conn, data)
	case protocol.TypeListActions:
		s.handleListActions(conn, base.RequestID)
	default:
		s.sendError(conn, base.RequestID, protocol.ErrorCodeInvalidMessage, "unknown message type: "+base.Type)
	}
}

// handleHello opens the connection's session. A repeated hello is acknowledged
// with the existing session.
func (s *Server) handleHello(ctx context.Context, conn *connection, data []byte) {
	var msg protocol.HelloMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid hello message")
		return
	}

	if conn.sessionID == "" {
		conn.sessionID = s.svc.OpenSession(ctx)
		s.logger.Info("hello handshake completed", "session_id", conn.sessionID, "client_meta", msg.ClientMeta)
	}

	s.sendJSON(conn, protocol.HelloAckMessage{
		BaseMessage: protocol.NewBase(protocol.TypeHelloAck, msg.RequestID, conn.sessionID),
	})
}

func (s *Server) handleActionInvoke(ctx context.Context, conn *connection, data []byte) {
	var msg protocol.ActionInvokeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid action_invoke message")
		return
	}
	if conn.sessionID == "" {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeSessionRequired, "must send hello first")
		return
	}

	result, err := s.svc.Invoke(ctx, conn.sessionID, msg.Action, msg.Args)
	if err != nil {
		s.sendError(conn, msg.RequestID, errorCode(err), err.Error())
		return
	}

	s.sendJSON(conn, protocol.ActionResultMessage{
		BaseMessage: protocol.NewBase(protocol.TypeActionResult, msg.RequestID, conn.sessionID),
		Action:      msg.Action,
		Result:      result,
	})
}

func (s *Server) handleListActions(conn *connection, requestID string) {
	list := s.svc.Actions()
	out := make([]protocol.ActionDescriptor, 0, len(list))
	for _, d := range list {
		out = append(out, protocol.ActionDescriptor{Name: d.Name, Description: d.Description, Parameters: d.Parameters})
	}
	s.sendJSON(conn, protocol.ActionsMessage{
		BaseMessage: protocol.NewBase(protocol.TypeActions, requestID, conn.sessionID),
		Actions:     out,
	})
}

func errorCode(err error) string {
	var unknown *actions.UnknownActionError
	var badArgs *actions.ArgumentError
	switch {
	case errors.As(err, &unknown):
		return protocol.ErrorCodeUnknownAction
	case errors.As(err, &badArgs):
		return protocol.ErrorCodeInvalidArgs
	case errors.Is(err, service.ErrSessionNotFound):
		return protocol.ErrorCodeSessionRequired
	default:
		return protocol.ErrorCodeInternalError
	}
}

// sendError sends an error message to a connection.
func (s *Server) sendError(conn *connection, requestID, code, message string) {
	s.sendJSON(conn, protocol.ErrorMessage{
		BaseMessage: protocol.NewBase(protocol.TypeError, requestID, conn.sessionID),
		Code:        code,
		Message:     message,
	})
}

func (s *Server) sendJSON(conn *connection, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("marshal websocket message", "error", err)
		return
	}
	conn.enqueue(data)
}
