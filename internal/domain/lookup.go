package domain

// Priority is a small lookup row; rank ordering follows the row id, matching
// the priority_desc/priority_asc sort keys.
type Priority struct {
	ID   int64
	Name string
}

// Status is a small lookup row referenced by tickets.
type Status struct {
	ID   int64
	Name string
}

// IsClosed reports whether this status is the reserved "Closed" label.
func (s Status) IsClosed() bool {
	return s.Name == StatusClosed
}
