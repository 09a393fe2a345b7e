package repository

import (
	"context"

	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/persistence"
)

// SubscriptionRepository manages ticket notification opt-ins.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	Delete(ctx context.Context, ticketID, userID int64) error
	Exists(ctx context.Context, ticketID, userID int64) (bool, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Subscription, error)
}

type subscriptionRepository struct {
	db persistence.Querier
}

// NewSubscriptionRepository builds repository.
func NewSubscriptionRepository(db persistence.Querier) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) q(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.db)
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	// ON CONFLICT keeps the at-most-once-per-ticket invariant under races.
	const query = `
        INSERT INTO flicket_subscriptions (ticket_id, user_id)
        VALUES ($1,$2)
        ON CONFLICT (ticket_id, user_id) DO UPDATE SET user_id=EXCLUDED.user_id
        RETURNING id, date_added`
	return r.q(ctx).QueryRow(ctx, query, sub.TicketID, sub.UserID).Scan(&sub.ID, &sub.DateAdded)
}

func (r *subscriptionRepository) Delete(ctx context.Context, ticketID, userID int64) error {
	_, err := r.q(ctx).Exec(ctx, `DELETE FROM flicket_subscriptions WHERE ticket_id=$1 AND user_id=$2`, ticketID, userID)
	return err
}

func (r *subscriptionRepository) Exists(ctx context.Context, ticketID, userID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM flicket_subscriptions WHERE ticket_id=$1 AND user_id=$2)`
	var exists bool
	if err := r.q(ctx).QueryRow(ctx, query, ticketID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *subscriptionRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Subscription, error) {
	const query = `
        SELECT id, ticket_id, user_id, date_added
        FROM flicket_subscriptions WHERE ticket_id=$1 ORDER BY date_added ASC`
	rows, err := r.q(ctx).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(&sub.ID, &sub.TicketID, &sub.UserID, &sub.DateAdded); err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}
