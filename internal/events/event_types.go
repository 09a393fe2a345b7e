package events

import (
	"time"

	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketReplied         EventType = "ticket_replied"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
)

// Event represents a domain event emitted by services after the enclosing
// transaction has committed.
type Event struct {
	ID        string       `json:"id"`
	Type      EventType    `json:"type"`
	TicketID  int64        `json:"ticket_id"`
	Actor     domain.Actor `json:"actor"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   interface{}  `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title      string `json:"title"`
	CategoryID int64  `json:"category_id"`
	PriorityID int64  `json:"priority_id"`
}

// TicketRepliedPayload payload.
type TicketRepliedPayload struct {
	PostID      int64  `json:"post_id"`
	BodyPreview string `json:"body_preview"`
	Reopened    bool   `json:"reopened"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority string `json:"old_priority"`
	NewPriority string `json:"new_priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedID *int64 `json:"assigned_id,omitempty"`
}
