// Package actions exposes session operations to the agent runtime as named
// actions that take JSON arguments and return plain text.
package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/session"
)

// ExecutorFunc runs an action against a session.
type ExecutorFunc func(ctx context.Context, sess *session.Session, args json.RawMessage) (string, error)

// Action is a callable operation the agent may invoke.
type Action struct {
	Name        string
	Description string
	// Parameters is the JSON schema of the arguments object.
	Parameters json.RawMessage
	Exec       ExecutorFunc
}

// Descriptor is the public, serializable view of an Action.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Registry stores actions keyed by name.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
}

// NewRegistry creates an empty action registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]Action),
	}
}

// NewDefaultRegistry creates a registry holding the built-in actions.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, a := range builtins() {
		r.MustRegister(a)
	}
	return r
}

// Register adds a new action.
func (r *Registry) Register(a Action) error {
	if a.Name == "" {
		return fmt.Errorf("action name is required")
	}
	if a.Exec == nil {
		return fmt.Errorf("executor is required")
	}
	if len(a.Parameters) == 0 {
		a.Parameters = json.RawMessage(`{"type":"object","properties":{}}`)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[a.Name]; exists {
		return fmt.Errorf("action already registered: %s", a.Name)
	}
	r.actions[a.Name] = a
	return nil
}

// MustRegister adds an action or panics.
func (r *Registry) MustRegister(a Action) {
	if err := r.Register(a); err != nil {
		panic(err)
	}
}

// Execute runs the named action.
func (r *Registry) Execute(ctx context.Context, sess *session.Session, name string, args json.RawMessage) (string, error) {
	if name == "" {
		return "", fmt.Errorf("action name is required")
	}
	r.mu.RLock()
	a, ok := r.actions[name]
	r.mu.RUnlock()
	if !ok {
		return "", &UnknownActionError{Name: name}
	}
	return a.Exec(ctx, sess, args)
}

// List returns the registered actions sorted by name.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, Descriptor{Name: a.Name, Description: a.Description, Parameters: a.Parameters})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// UnknownActionError is returned when no action has the requested name.
type UnknownActionError struct {
	Name string
}

func (e *UnknownActionError) Error() string {
	return "no action registered for " + e.Name
}

// ArgumentError is returned when the arguments of an action cannot be decoded.
type ArgumentError struct {
	Action string
	Err    error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %v", e.Action, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

func decodeArgs(action string, raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &ArgumentError{Action: action, Err: err}
	}
	return nil
}
