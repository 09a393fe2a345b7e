package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/persistence"
	"github.com/Zachary2562/recordables-ticketquest/pkg/util"
)

// TicketQuery captures normalized listing parameters. Label and free-text
// values always travel as query arguments; only fixed fragments from the
// sort table below are appended to the SQL text.
type TicketQuery struct {
	StatusLabel     *string
	DepartmentLabel *string
	CategoryLabel   *string
	Content         *string
	StartedID       *int64
	AssignedID      *int64
	SubscriberID    *int64
	// OnlyStartedBy is the visibility scope for non-privileged actors. It is
	// applied in the WHERE clause, before sorting and pagination.
	OnlyStartedBy *int64
	Sort          string
	Limit         int
	Offset        int
}

// Sort keys with their total-order clauses. Unrecognized keys fall back to
// ticket id descending.
var sortClauses = map[string]string{
	"priority_desc": "p.id DESC, t.id DESC",
	"priority_asc":  "p.id ASC, t.id DESC",
	"date_desc":     "t.date_added DESC",
	"date_asc":      "t.date_added ASC",
	"title_asc":     "t.title ASC",
	"title_desc":    "t.title DESC",
}

const defaultSortClause = "t.id DESC"

// SortKeys lists the recognized sort keys.
func SortKeys() []string {
	keys := make([]string, 0, len(sortClauses))
	for key := range sortClauses {
		keys = append(keys, key)
	}
	return keys
}

// TicketRepository encapsulates ticket persistence and the listing query
// engine.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetDetailByID(ctx context.Context, id int64) (*domain.TicketDetail, error)
	ListDetailed(ctx context.Context, query TicketQuery) ([]domain.TicketDetail, error)
	CountDetailed(ctx context.Context, query TicketQuery) (int, error)
	Delete(ctx context.Context, id int64) error
	CountByPriority(ctx context.Context, priorityID int64) (int, error)
	CountByStatus(ctx context.Context, statusID int64) (int, error)
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
}

type ticketRepository struct {
	db persistence.Querier
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db persistence.Querier) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) q(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.db)
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO flicket_topic (title, content, ticket_priority_id, status_id, category_id, started_id, assigned_id, hours)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, date_added, last_updated`
	return r.q(ctx).QueryRow(ctx, query,
		ticket.Title,
		ticket.Content,
		ticket.PriorityID,
		ticket.StatusID,
		ticket.CategoryID,
		ticket.StartedID,
		ticket.AssignedID,
		ticket.Hours,
	).Scan(&ticket.ID, &ticket.DateAdded, &ticket.LastUpdated)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE flicket_topic SET title=$1, content=$2, ticket_priority_id=$3, status_id=$4,
            category_id=$5, assigned_id=$6, hours=$7, last_updated=$8
        WHERE id=$9`
	cmd, err := r.q(ctx).Exec(ctx, query,
		ticket.Title,
		ticket.Content,
		ticket.PriorityID,
		ticket.StatusID,
		ticket.CategoryID,
		ticket.AssignedID,
		ticket.Hours,
		ticket.LastUpdated,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, title, content, ticket_priority_id, status_id, category_id,
               started_id, assigned_id, hours, date_added, last_updated
        FROM flicket_topic WHERE id=$1`
	var ticket domain.Ticket
	if err := r.q(ctx).QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Content,
		&ticket.PriorityID,
		&ticket.StatusID,
		&ticket.CategoryID,
		&ticket.StartedID,
		&ticket.AssignedID,
		&ticket.Hours,
		&ticket.DateAdded,
		&ticket.LastUpdated,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) GetDetailByID(ctx context.Context, id int64) (*domain.TicketDetail, error) {
	query := detailedColumns + detailedBase + " AND t.id=$1"
	rows, err := r.q(ctx).Query(ctx, query, id)
	if err != nil {
		return nil, util.NewStoreUnavailable(err)
	}
	defer rows.Close()
	details, err := scanTicketDetails(rows)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &details[0], nil
}

func (r *ticketRepository) ListDetailed(ctx context.Context, query TicketQuery) ([]domain.TicketDetail, error) {
	sql, args := buildDetailedQuery(query, false)
	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, util.NewStoreUnavailable(err)
	}
	defer rows.Close()
	return scanTicketDetails(rows)
}

func (r *ticketRepository) CountDetailed(ctx context.Context, query TicketQuery) (int, error) {
	sql, args := buildDetailedQuery(query, true)
	var count int
	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, util.NewStoreUnavailable(err)
	}
	return count, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q(ctx).Exec(ctx, `DELETE FROM flicket_topic WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) CountByPriority(ctx context.Context, priorityID int64) (int, error) {
	return r.countWhere(ctx, "ticket_priority_id", priorityID)
}

func (r *ticketRepository) CountByStatus(ctx context.Context, statusID int64) (int, error) {
	return r.countWhere(ctx, "status_id", statusID)
}

func (r *ticketRepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	return r.countWhere(ctx, "category_id", categoryID)
}

func (r *ticketRepository) countWhere(ctx context.Context, column string, id int64) (int, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM flicket_topic WHERE %s=$1`, column)
	if err := r.q(ctx).QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, util.NewStoreUnavailable(err)
	}
	return count, nil
}

const detailedBase = `
        FROM flicket_topic t
        JOIN flicket_users u ON t.started_id = u.id
        LEFT JOIN flicket_users au ON t.assigned_id = au.id
        JOIN flicket_category c ON t.category_id = c.id
        JOIN flicket_department d ON c.department_id = d.id
        JOIN flicket_priorities p ON t.ticket_priority_id = p.id
        JOIN flicket_status s ON t.status_id = s.id
        WHERE 1=1`

const detailedColumns = `
        SELECT t.id, t.title, t.content, t.ticket_priority_id, t.status_id, t.category_id,
               t.started_id, t.assigned_id, t.hours, t.date_added, t.last_updated,
               u.name, au.name, d.department, c.category, p.priority, s.status,
               (SELECT COUNT(*) FROM flicket_post fp WHERE fp.ticket_id = t.id) AS num_replies`

// buildDetailedQuery assembles the listing/count SQL. Every filter value is
// passed as a positional argument; the ORDER BY fragment comes from the
// fixed sort table.
func buildDetailedQuery(query TicketQuery, count bool) (string, []any) {
	var sb strings.Builder
	if count {
		sb.WriteString("SELECT COUNT(*)")
	} else {
		sb.WriteString(detailedColumns)
	}
	sb.WriteString(detailedBase)

	args := []any{}
	appendClause := func(clause string, value any) {
		args = append(args, value)
		sb.WriteString(fmt.Sprintf(" AND "+clause, len(args)))
	}

	if query.StatusLabel != nil {
		appendClause("s.status=$%d", *query.StatusLabel)
	}
	if query.DepartmentLabel != nil {
		appendClause("d.department=$%d", *query.DepartmentLabel)
	}
	if query.CategoryLabel != nil {
		appendClause("c.category=$%d", *query.CategoryLabel)
	}
	if query.StartedID != nil {
		appendClause("t.started_id=$%d", *query.StartedID)
	}
	if query.AssignedID != nil {
		appendClause("t.assigned_id=$%d", *query.AssignedID)
	}
	if query.OnlyStartedBy != nil {
		appendClause("t.started_id=$%d", *query.OnlyStartedBy)
	}
	if query.SubscriberID != nil {
		appendClause("EXISTS (SELECT 1 FROM flicket_subscriptions sub WHERE sub.ticket_id=t.id AND sub.user_id=$%d)", *query.SubscriberID)
	}
	if query.Content != nil && strings.TrimSpace(*query.Content) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*query.Content)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		sb.WriteString(fmt.Sprintf(" AND (LOWER(t.title) LIKE %s OR LOWER(t.content) LIKE %s)", placeholder, placeholder))
	}

	if count {
		return sb.String(), args
	}

	order, ok := sortClauses[query.Sort]
	if !ok {
		order = defaultSortClause
	}
	sb.WriteString(" ORDER BY " + order)

	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}
	sb.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))
	return sb.String(), args
}

func scanTicketDetails(rows pgx.Rows) ([]domain.TicketDetail, error) {
	var result []domain.TicketDetail
	for rows.Next() {
		var detail domain.TicketDetail
		if err := rows.Scan(
			&detail.ID,
			&detail.Title,
			&detail.Content,
			&detail.PriorityID,
			&detail.StatusID,
			&detail.CategoryID,
			&detail.StartedID,
			&detail.AssignedID,
			&detail.Hours,
			&detail.DateAdded,
			&detail.LastUpdated,
			&detail.SubmitterName,
			&detail.AssignedName,
			&detail.DepartmentName,
			&detail.CategoryName,
			&detail.PriorityLabel,
			&detail.StatusLabel,
			&detail.ReplyCount,
		); err != nil {
			return nil, err
		}
		result = append(result, detail)
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, util.NewStoreUnavailable(err)
	}
	return result, nil
}
