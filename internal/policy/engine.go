// Package policy decides whether a session action may run, using OPA.
package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/rego"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/session"
)

// decisionAllow is the decision returned when no precondition fails.
const decisionAllow = "allow"

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.session_policy.decision"),
		rego.Module("session_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// LoadEngine builds an engine from a policy file, or from DefaultPolicy when
// path is empty.
func LoadEngine(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		return NewEngine(ctx, DefaultPolicy)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return NewEngine(ctx, string(content))
}

// Evaluate returns the policy decision for input: "allow" or a reason code.
func (e *Engine) Evaluate(ctx context.Context, input interface{}) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	// The policy declares a default, so an empty result set means the
	// module was replaced by one without it.
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return decisionAllow, nil
	}

	s, ok := results[0].Expressions[0].Value.(string)
	if !ok {
		return "", fmt.Errorf("unexpected policy decision type %T", results[0].Expressions[0].Value)
	}
	return s, nil
}

// Check implements session.Guard.
func (e *Engine) Check(ctx context.Context, p session.Precondition) (session.Reason, error) {
	args := p.Args
	if args == nil {
		args = map[string]interface{}{}
	}
	decision, err := e.Evaluate(ctx, map[string]interface{}{
		"action": p.Action,
		"session": map[string]interface{}{
			"has_user":         p.HasUser,
			"has_conversation": p.HasConversation,
		},
		"args": args,
	})
	if err != nil {
		return "", err
	}
	if decision == decisionAllow {
		return "", nil
	}
	return session.Reason(decision), nil
}

// DefaultPolicy is the default precondition table for session actions.
const DefaultPolicy = `
package session_policy

import future.keywords.if
import future.keywords.in

default decision = "allow"

requires_user := {"get_user_details"}

requires_conversation := {
	"record_message",
	"update_mood_rating",
	"update_session_notes",
	"get_conversation_history",
}

senders := {"user", "assistant"}

decision = "no_active_user" if {
	input.action in requires_user
	not input.session.has_user
} else = "invalid_name" if {
	input.action == "create_user"
	trim_space(object.get(input.args, "name", "")) == ""
} else = "no_active_conversation" if {
	input.action in requires_conversation
	not input.session.has_conversation
} else = "invalid_rating" if {
	input.action == "update_mood_rating"
	not valid_rating
} else = "invalid_sender" if {
	input.action == "record_message"
	not valid_sender
}

valid_sender if {
	input.args.sender in senders
}

valid_rating if {
	is_number(input.args.rating)
	input.args.rating >= 1
	input.args.rating <= 10
}
`
