package domain

import "time"

// Subscription is a user's opt-in to notifications for a ticket. A user
// subscribes at most once per ticket.
type Subscription struct {
	ID        int64
	TicketID  int64
	UserID    int64
	DateAdded time.Time
}
