package domain

import (
	"fmt"
	"time"
)

// Reserved status labels the reply workflow keys on. Reopening logic depends
// on these labels, never on row ids.
const (
	StatusOpen   = "Open"
	StatusClosed = "Closed"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          int64
	Title       string
	Content     string
	PriorityID  int64
	StatusID    int64
	CategoryID  int64
	StartedID   int64
	AssignedID  *int64
	Hours       float64
	DateAdded   time.Time
	LastUpdated time.Time
}

// ZFill renders the ticket id zero-padded to five digits, the display form
// used in exports and notifications.
func (t *Ticket) ZFill() string {
	return fmt.Sprintf("%05d", t.ID)
}

// TicketDetail is a listing row: the ticket plus the denormalized lookup
// data joined in by the query engine. Reply count is derived from posts,
// never stored on the ticket itself.
type TicketDetail struct {
	Ticket
	SubmitterName  string
	AssignedName   *string
	DepartmentName string
	CategoryName   string
	PriorityLabel  string
	StatusLabel    string
	ReplyCount     int
}

// DepartmentCategory returns the conventional "Department - Category"
// display form.
func (d *TicketDetail) DepartmentCategory() string {
	return d.DepartmentName + " - " + d.CategoryName
}

// AssignedDisplay returns the assignee name or the literal placeholder.
func (d *TicketDetail) AssignedDisplay() string {
	if d.AssignedName == nil || *d.AssignedName == "" {
		return "Not assigned"
	}
	return *d.AssignedName
}
