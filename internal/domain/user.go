package domain

import "time"

// Reserved group names granting capability flags.
const (
	GroupAdmin     = "flicket_admin"
	GroupSuperUser = "flicket_super_user"
)

// User is the domain model for people who submit and answer tickets.
// IsAdmin and IsSuperUser are derived from group membership when loaded.
type User struct {
	ID           int64
	Username     string
	Name         string
	Email        string
	PasswordHash string
	TotalPosts   int
	IsAdmin      bool
	IsSuperUser  bool
	DateAdded    time.Time
}

// Group is a named collection of users.
type Group struct {
	ID   int64
	Name string
}

// Actor is the authenticated caller as seen by the core services. Services
// always take the actor explicitly; there is no ambient current-user state.
type Actor struct {
	ID          int64
	Name        string
	IsAdmin     bool
	IsSuperUser bool
}

// Privileged reports whether the actor may change status/priority and see
// every ticket.
func (a Actor) Privileged() bool {
	return a.IsAdmin || a.IsSuperUser
}
