package dto

import (
	"time"

	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/service"
	"github.com/Zachary2562/recordables-ticketquest/pkg/pagination"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title      string  `json:"title" validate:"required"`
	Content    string  `json:"content" validate:"required"`
	CategoryID int64   `json:"category_id" validate:"required,min=1"`
	PriorityID int64   `json:"priority_id" validate:"required,min=1"`
	Hours      float64 `json:"hours" validate:"omitempty,min=0"`
}

// ReplyRequest payload. StatusID and PriorityID are admin-only transitions.
type ReplyRequest struct {
	Content    string  `json:"content" validate:"required"`
	Hours      float64 `json:"hours" validate:"omitempty,min=0"`
	StatusID   *int64  `json:"status_id" validate:"omitempty,min=1"`
	PriorityID *int64  `json:"priority_id" validate:"omitempty,min=1"`
}

// AssignRequest payload; a null assigned_id releases the ticket.
type AssignRequest struct {
	AssignedID *int64 `json:"assigned_id" validate:"omitempty,min=1"`
}

// TicketSummary is one row of the listing response.
type TicketSummary struct {
	ID         int64     `json:"id"`
	DisplayID  string    `json:"display_id"`
	Title      string    `json:"title"`
	Submitter  string    `json:"submitted_by"`
	Assigned   string    `json:"assigned"`
	Category   string    `json:"category"`
	Priority   string    `json:"priority"`
	Status     string    `json:"status"`
	Replies    int       `json:"total_replies"`
	DateAdded  time.Time `json:"date_added"`
	LastUpdate time.Time `json:"last_updated"`
}

// PageMeta carries pagination metadata for listing responses.
type PageMeta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Pages      int   `json:"pages"`
	TotalCount int   `json:"total_count"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
	PrevNum    int   `json:"prev_num,omitempty"`
	NextNum    int   `json:"next_num,omitempty"`
	Window     []int `json:"window"`
}

// TicketListResponse is the listing envelope.
type TicketListResponse struct {
	Items []TicketSummary `json:"items"`
	Sort  string          `json:"sort"`
	Meta  PageMeta        `json:"meta"`
}

// TicketDetailResponse provides the full ticket view.
type TicketDetailResponse struct {
	TicketSummary
	Content string  `json:"content"`
	Hours   float64 `json:"hours"`
}

// ReplyResponse represents one post within a ticket.
type ReplyResponse struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Content   string           `json:"content"`
	Hours     float64          `json:"hours"`
	DateAdded time.Time        `json:"date_added"`
	Uploads   []UploadResponse `json:"uploads,omitempty"`
}

// UploadResponse metadata for a stored attachment.
type UploadResponse struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name"`
}

// ReplyListResponse pages a ticket's replies.
type ReplyListResponse struct {
	Items []ReplyResponse `json:"items"`
	Meta  PageMeta        `json:"meta"`
}

// NewPageMeta projects paginator state into the response shape.
func NewPageMeta(p *pagination.Pagination) PageMeta {
	return PageMeta{
		Page:       p.Page,
		PerPage:    p.PerPage,
		Pages:      p.Pages(),
		TotalCount: p.Total,
		HasPrev:    p.HasPrev(),
		HasNext:    p.HasNext(),
		PrevNum:    p.PrevNum(),
		NextNum:    p.NextNum(),
		Window:     p.IterPages(),
	}
}

// NewTicketSummary projects a detailed ticket row.
func NewTicketSummary(t *domain.TicketDetail) TicketSummary {
	return TicketSummary{
		ID:         t.ID,
		DisplayID:  t.ZFill(),
		Title:      t.Title,
		Submitter:  t.SubmitterName,
		Assigned:   t.AssignedDisplay(),
		Category:   t.DepartmentCategory(),
		Priority:   t.PriorityLabel,
		Status:     t.StatusLabel,
		Replies:    t.ReplyCount,
		DateAdded:  t.DateAdded,
		LastUpdate: t.LastUpdated,
	}
}

// NewTicketDetail projects the full ticket view.
func NewTicketDetail(t *domain.TicketDetail) TicketDetailResponse {
	return TicketDetailResponse{
		TicketSummary: NewTicketSummary(t),
		Content:       t.Content,
		Hours:         t.Hours,
	}
}

// NewTicketListResponse projects one listing page.
func NewTicketListResponse(page *service.TicketPage) TicketListResponse {
	items := make([]TicketSummary, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, NewTicketSummary(&page.Items[i]))
	}
	return TicketListResponse{Items: items, Sort: page.Sort, Meta: NewPageMeta(page.Paging)}
}

// NewReplyResponse projects one post.
func NewReplyResponse(p *domain.Post) ReplyResponse {
	uploads := make([]UploadResponse, 0, len(p.Uploads))
	for _, u := range p.Uploads {
		uploads = append(uploads, UploadResponse{ID: u.ID, FileName: u.FileName})
	}
	return ReplyResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Content:   p.Content,
		Hours:     p.Hours,
		DateAdded: p.DateAdded,
		Uploads:   uploads,
	}
}

// NewReplyListResponse projects one page of replies.
func NewReplyListResponse(page *service.ReplyPage) ReplyListResponse {
	items := make([]ReplyResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, NewReplyResponse(&page.Items[i]))
	}
	return ReplyListResponse{Items: items, Meta: NewPageMeta(page.Paging)}
}
