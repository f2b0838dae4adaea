// Package main provides an operator REPL that drives a session over the
// assistant's WebSocket endpoint.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/protocol"
)

// Client represents a WebSocket client.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	done      chan struct{}
	seq       int
}

// NewClient creates a new client and connects to the server.
func NewClient(addr string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return &Client{
		conn: conn,
		done: make(chan struct{}),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	close(c.done)
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// SendHello sends a hello message and waits for hello_ack.
func (c *Client) SendHello() error {
	msg := protocol.HelloMessage{
		BaseMessage: protocol.NewBase(protocol.TypeHello, "", ""),
		ClientMeta: map[string]string{
			"client": "assistant-cli",
		},
	}

	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write hello: %w", err)
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read hello_ack: %w", err)
	}

	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return fmt.Errorf("unmarshal hello_ack: %w", err)
	}

	if base.Type == protocol.TypeError {
		var errMsg protocol.ErrorMessage
		_ = json.Unmarshal(data, &errMsg)
		return fmt.Errorf("hello failed: %s - %s", errMsg.Code, errMsg.Message)
	}

	if base.Type != protocol.TypeHelloAck {
		return fmt.Errorf("expected hello_ack, got: %s", base.Type)
	}

	c.sessionID = base.SessionID
	return nil
}

// Invoke sends an action_invoke message.
func (c *Client) Invoke(action string, args json.RawMessage) error {
	c.seq++
	msg := protocol.ActionInvokeMessage{
		BaseMessage: protocol.NewBase(protocol.TypeActionInvoke, fmt.Sprintf("req_%d", c.seq), c.sessionID),
		Action:      action,
		Args:        args,
	}
	return c.conn.WriteJSON(msg)
}

// ReadMessages reads and prints messages from the server.
func (c *Client) ReadMessages() {
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Printf("Read error: %v", err)
				}
				return
			}
			fmt.Printf("\n%s\n> ", formatMessage(data))
		}
	}
}

// formatMessage renders a server message for the terminal.
func formatMessage(data []byte) string {
	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return "unreadable message: " + string(data)
	}

	switch base.Type {
	case protocol.TypeActionResult:
		var msg protocol.ActionResultMessage
		_ = json.Unmarshal(data, &msg)
		return fmt.Sprintf("[%s] %s", msg.Action, strings.TrimRight(msg.Result, "\n"))
	case protocol.TypeError:
		var msg protocol.ErrorMessage
		_ = json.Unmarshal(data, &msg)
		return fmt.Sprintf("[error %s] %s", msg.Code, msg.Message)
	default:
		var pretty map[string]interface{}
		_ = json.Unmarshal(data, &pretty)
		formatted, _ := json.MarshalIndent(pretty, "", "  ")
		return fmt.Sprintf("[%s]\n%s", base.Type, formatted)
	}
}

var errQuit = errors.New("quit")

// parseCommand maps a REPL line to an action and its JSON arguments.
func parseCommand(line string) (string, json.RawMessage, error) {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	var args interface{}
	var action string
	switch cmd {
	case "/quit":
		return "", nil, errQuit
	case "/lookup":
		if rest == "" {
			return "", nil, errors.New("usage: /lookup <user_id>")
		}
		action, args = "lookup_user", map[string]string{"user_id": rest}
	case "/create":
		action, args = "create_user", map[string]string{"name": rest}
	case "/say":
		action, args = "record_message", map[string]string{"content": rest, "sender": "user"}
	case "/reply":
		action, args = "record_message", map[string]string{"content": rest, "sender": "assistant"}
	case "/mood":
		rating, err := strconv.Atoi(rest)
		if err != nil {
			return "", nil, errors.New("usage: /mood <1-10>")
		}
		action, args = "update_mood_rating", map[string]int{"rating": rating}
	case "/notes":
		action, args = "update_session_notes", map[string]string{"notes": rest}
	case "/details":
		action = "get_user_details"
	case "/history":
		action = "get_conversation_history"
	default:
		return "", nil, fmt.Errorf("unknown command: %s", cmd)
	}

	if args == nil {
		return action, nil, nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return "", nil, err
	}
	return action, raw, nil
}

const usage = `Commands:
  /lookup <user_id>   bind an existing user
  /create <name>      create a new user
  /say <text>         record a user message
  /reply <text>       record an assistant message
  /mood <1-10>        rate the current conversation
  /notes <text>       save session notes
  /details            show the session user
  /history            show the current conversation
  /quit               exit`

func main() {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket server address")
	flag.Parse()

	log.SetFlags(log.Ltime)

	fmt.Printf("Connecting to %s...\n", *addr)

	client, err := NewClient(*addr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	if err := client.SendHello(); err != nil {
		log.Fatalf("Hello failed: %v", err)
	}

	fmt.Printf("Session established: %s\n\n%s\n\n", client.sessionID, usage)

	go client.ReadMessages()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	fmt.Print("> ")
	for {
		select {
		case <-interrupt:
			fmt.Println("\nInterrupted")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if strings.TrimSpace(line) == "" {
				fmt.Print("> ")
				continue
			}

			action, args, err := parseCommand(line)
			if errors.Is(err, errQuit) {
				fmt.Println("Bye!")
				return
			}
			if err != nil {
				fmt.Printf("%v\n> ", err)
				continue
			}

			if err := client.Invoke(action, args); err != nil {
				log.Printf("Send error: %v", err)
			}
		}
	}
}
