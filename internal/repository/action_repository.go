package repository

import (
	"context"

	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/persistence"
)

// ActionRepository stores the append-only ticket audit trail.
type ActionRepository interface {
	Create(ctx context.Context, action *domain.TicketAction) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketAction, error)
}

type actionRepository struct {
	db persistence.Querier
}

// NewActionRepository builds repository.
func NewActionRepository(db persistence.Querier) ActionRepository {
	return &actionRepository{db: db}
}

func (r *actionRepository) q(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.db)
}

func (r *actionRepository) Create(ctx context.Context, action *domain.TicketAction) error {
	const query = `
        INSERT INTO flicket_actions (ticket_id, user_id, kind, data)
        VALUES ($1,$2,$3,$4)
        RETURNING id, date_added`
	return r.q(ctx).QueryRow(ctx, query,
		action.TicketID,
		action.UserID,
		action.Kind,
		action.Data,
	).Scan(&action.ID, &action.DateAdded)
}

func (r *actionRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketAction, error) {
	const query = `
        SELECT id, ticket_id, user_id, kind, data, date_added
        FROM flicket_actions WHERE ticket_id=$1 ORDER BY date_added ASC`
	rows, err := r.q(ctx).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketAction
	for rows.Next() {
		var action domain.TicketAction
		if err := rows.Scan(
			&action.ID,
			&action.TicketID,
			&action.UserID,
			&action.Kind,
			&action.Data,
			&action.DateAdded,
		); err != nil {
			return nil, err
		}
		result = append(result, action)
	}
	return result, rows.Err()
}
