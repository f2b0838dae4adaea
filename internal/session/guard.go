package session

import "context"

// Precondition is what a Guard sees before an action runs.
type Precondition struct {
	Action          string
	HasUser         bool
	HasConversation bool
	Args            map[string]interface{}
}

// Guard decides whether an action may run against the current session state.
// An empty Reason means the action is allowed.
type Guard interface {
	Check(ctx context.Context, p Precondition) (Reason, error)
}
