package domain

import "time"

// ActionKind captures which field a ticket action recorded.
type ActionKind string

const (
	ActionStatus   ActionKind = "status"
	ActionPriority ActionKind = "priority"
	ActionAssigned ActionKind = "assigned"
)

// TicketAction is an immutable audit trail entry for a field-level change on
// a ticket. Actions are never mutated or deleted except by ticket cascade.
type TicketAction struct {
	ID        int64
	TicketID  int64
	UserID    int64
	Kind      ActionKind
	Data      map[string]any
	DateAdded time.Time
}
