package core

import "time"

// ActivityKind names a successful mutation.
type ActivityKind string

const (
	TaskCreated       ActivityKind = "task.created"
	TaskCompleted     ActivityKind = "task.completed"
	TaskReopened      ActivityKind = "task.reopened"
	TaskDeleted       ActivityKind = "task.deleted"
	ExpenseCreated    ActivityKind = "expense.created"
	ExpenseDeleted    ActivityKind = "expense.deleted"
	IdentityActivated ActivityKind = "identity.activated"
)

// Activity records one mutation performed through the dashboard.
type Activity struct {
	Kind     ActivityKind
	Identity Identity
	EntityID string
	Date     Date
	At       time.Time
}

// Valid reports whether k is one of the known kinds.
func (k ActivityKind) Valid() bool {
	switch k {
	case TaskCreated, TaskCompleted, TaskReopened, TaskDeleted,
		ExpenseCreated, ExpenseDeleted, IdentityActivated:
		return true
	}
	return false
}
