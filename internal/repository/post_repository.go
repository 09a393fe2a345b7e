package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/persistence"
)

// PostRepository manages ticket replies.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]domain.Post, error)
	CountByTicket(ctx context.Context, ticketID int64) (int, error)
}

type postRepository struct {
	db persistence.Querier
}

// NewPostRepository builds repository.
func NewPostRepository(db persistence.Querier) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) q(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.db)
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	const query = `
        INSERT INTO flicket_post (ticket_id, user_id, content, hours)
        VALUES ($1,$2,$3,$4)
        RETURNING id, date_added`
	return r.q(ctx).QueryRow(ctx, query,
		post.TicketID,
		post.UserID,
		post.Content,
		post.Hours,
	).Scan(&post.ID, &post.DateAdded)
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	const query = `
        SELECT id, ticket_id, user_id, content, hours, date_added
        FROM flicket_post WHERE id=$1`
	var post domain.Post
	if err := r.q(ctx).QueryRow(ctx, query, id).Scan(
		&post.ID,
		&post.TicketID,
		&post.UserID,
		&post.Content,
		&post.Hours,
		&post.DateAdded,
	); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]domain.Post, error) {
	const query = `
        SELECT id, ticket_id, user_id, content, hours, date_added
        FROM flicket_post WHERE ticket_id=$1
        ORDER BY date_added ASC
        LIMIT $2 OFFSET $3`
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.q(ctx).Query(ctx, query, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (r *postRepository) CountByTicket(ctx context.Context, ticketID int64) (int, error) {
	var count int
	if err := r.q(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM flicket_post WHERE ticket_id=$1`, ticketID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanPosts(rows pgx.Rows) ([]domain.Post, error) {
	var result []domain.Post
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(
			&post.ID,
			&post.TicketID,
			&post.UserID,
			&post.Content,
			&post.Hours,
			&post.DateAdded,
		); err != nil {
			return nil, err
		}
		result = append(result, post)
	}
	return result, rows.Err()
}
