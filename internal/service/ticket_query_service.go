package service

import (
	"context"

	"github.com/Zachary2562/recordables-ticketquest/internal/config"
	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/repository"
	"github.com/Zachary2562/recordables-ticketquest/pkg/pagination"
)

// DefaultSort is applied when neither the request nor the stored preference
// names a sort key.
const DefaultSort = "priority_desc"

// TicketListRequest describes one listing request after filter
// normalization.
type TicketListRequest struct {
	Filter TicketFilter
	Page   int
	// MyView restricts to the actor's own tickets even for privileged
	// actors ("My Tickets" screen).
	MyView bool
	// Subscribed restricts to tickets the actor subscribes to.
	Subscribed bool
}

// TicketPage is one page of listing rows plus navigation metadata.
type TicketPage struct {
	Items  []domain.TicketDetail
	Total  int
	Sort   string
	Paging *pagination.Pagination
}

// TicketQueryService executes the listing query with visibility scoping and
// pagination.
type TicketQueryService struct {
	tickets repository.TicketRepository
	posts   repository.PostRepository
	prefs   *SortPreferences
	cfg     config.HelpdeskConfig
}

// NewTicketQueryService constructs the service.
func NewTicketQueryService(tickets repository.TicketRepository, posts repository.PostRepository, prefs *SortPreferences, cfg config.HelpdeskConfig) *TicketQueryService {
	return &TicketQueryService{tickets: tickets, posts: posts, prefs: prefs, cfg: cfg}
}

// ListTickets returns one page of tickets visible to the actor. The
// visibility scope lands in the store query itself, before sorting and
// pagination, so non-privileged actors can never observe totals or page
// boundaries of tickets they cannot see.
func (s *TicketQueryService) ListTickets(ctx context.Context, actor domain.Actor, req TicketListRequest) (*TicketPage, error) {
	sort := req.Filter.Sort
	if sort == "" {
		sort = s.prefs.Get(ctx, actor.ID)
	} else {
		s.prefs.Set(ctx, actor.ID, sort)
	}
	if sort == "" {
		sort = DefaultSort
	}

	query := buildTicketQuery(actor, req.Filter, req.MyView, req.Subscribed)
	query.Sort = sort

	total, err := s.tickets.CountDetailed(ctx, query)
	if err != nil {
		return nil, err
	}

	page := req.Page
	if page == 0 {
		page = 1
	}
	paging, err := pagination.New(total, page, s.cfg.PostsPerPage)
	if err != nil {
		return nil, err
	}

	query.Limit = paging.PerPage
	query.Offset = paging.Offset()
	items, err := s.tickets.ListDetailed(ctx, query)
	if err != nil {
		return nil, err
	}

	return &TicketPage{Items: items, Total: total, Sort: sort, Paging: paging}, nil
}

// ListForExport returns the filtered, sorted sequence bounded by the export
// row limit, under the same visibility scoping as ListTickets.
func (s *TicketQueryService) ListForExport(ctx context.Context, actor domain.Actor, filter TicketFilter) ([]domain.TicketDetail, error) {
	sort := filter.Sort
	if sort == "" {
		sort = DefaultSort
	}
	query := buildTicketQuery(actor, filter, false, false)
	query.Sort = sort
	query.Limit = s.cfg.CSVDumpLimit
	query.Offset = 0
	return s.tickets.ListDetailed(ctx, query)
}

// GetTicket fetches one detailed ticket enforcing the visibility scope.
func (s *TicketQueryService) GetTicket(ctx context.Context, id int64) (*domain.TicketDetail, error) {
	return s.tickets.GetDetailByID(ctx, id)
}

// ReplyPage is one page of a ticket's replies in date order.
type ReplyPage struct {
	Items  []domain.Post
	Total  int
	Paging *pagination.Pagination
}

// ListReplies pages through a ticket's posts, oldest first.
func (s *TicketQueryService) ListReplies(ctx context.Context, ticketID int64, page int) (*ReplyPage, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, err
	}
	total, err := s.posts.CountByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if page == 0 {
		page = 1
	}
	paging, err := pagination.New(total, page, s.cfg.PostsPerPage)
	if err != nil {
		return nil, err
	}
	items, err := s.posts.ListByTicket(ctx, ticketID, paging.PerPage, paging.Offset())
	if err != nil {
		return nil, err
	}
	return &ReplyPage{Items: items, Total: total, Paging: paging}, nil
}

func buildTicketQuery(actor domain.Actor, filter TicketFilter, myView, subscribed bool) repository.TicketQuery {
	query := repository.TicketQuery{
		StatusLabel:     filter.Status,
		DepartmentLabel: filter.Department,
		CategoryLabel:   filter.Category,
		Content:         filter.Content,
		AssignedID:      filter.AssignedID,
	}
	// user_id and created_id both constrain the submitter; created_id wins
	// when both are present.
	if filter.UserID != nil {
		query.StartedID = filter.UserID
	}
	if filter.CreatedID != nil {
		query.StartedID = filter.CreatedID
	}
	if subscribed {
		id := actor.ID
		query.SubscriberID = &id
	}
	if myView || !actor.Privileged() {
		id := actor.ID
		query.OnlyStartedBy = &id
	}
	return query
}
