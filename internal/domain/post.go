package domain

import "time"

// Post is a reply in a ticket thread. Posts are immutable once created,
// except for upload association performed at creation time, and are ordered
// by creation time ascending within a ticket.
type Post struct {
	ID        int64
	TicketID  int64
	UserID    int64
	Content   string
	Hours     float64
	DateAdded time.Time
	Uploads   []Upload
}

// Upload stores metadata for a file attached to a post.
type Upload struct {
	ID         int64
	PostID     int64
	FileName   string
	StorageKey string
	DateAdded  time.Time
}
