package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/persistence"
)

// PriorityRepository manages the priority lookup table.
type PriorityRepository interface {
	Create(ctx context.Context, priority *domain.Priority) error
	Update(ctx context.Context, priority *domain.Priority) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Priority, error)
	List(ctx context.Context) ([]domain.Priority, error)
}

// StatusRepository manages the status lookup table.
type StatusRepository interface {
	Create(ctx context.Context, status *domain.Status) error
	Update(ctx context.Context, status *domain.Status) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Status, error)
	GetByName(ctx context.Context, name string) (*domain.Status, error)
	List(ctx context.Context) ([]domain.Status, error)
}

type priorityRepository struct {
	db persistence.Querier
}

// NewPriorityRepository builds repository.
func NewPriorityRepository(db persistence.Querier) PriorityRepository {
	return &priorityRepository{db: db}
}

func (r *priorityRepository) q(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.db)
}

func (r *priorityRepository) Create(ctx context.Context, priority *domain.Priority) error {
	const query = `INSERT INTO flicket_priorities (priority) VALUES ($1) RETURNING id`
	return r.q(ctx).QueryRow(ctx, query, priority.Name).Scan(&priority.ID)
}

func (r *priorityRepository) Update(ctx context.Context, priority *domain.Priority) error {
	cmd, err := r.q(ctx).Exec(ctx, `UPDATE flicket_priorities SET priority=$1 WHERE id=$2`, priority.Name, priority.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *priorityRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q(ctx).Exec(ctx, `DELETE FROM flicket_priorities WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *priorityRepository) GetByID(ctx context.Context, id int64) (*domain.Priority, error) {
	var priority domain.Priority
	if err := r.q(ctx).QueryRow(ctx, `SELECT id, priority FROM flicket_priorities WHERE id=$1`, id).
		Scan(&priority.ID, &priority.Name); err != nil {
		return nil, err
	}
	return &priority, nil
}

func (r *priorityRepository) List(ctx context.Context) ([]domain.Priority, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT id, priority FROM flicket_priorities ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Priority
	for rows.Next() {
		var priority domain.Priority
		if err := rows.Scan(&priority.ID, &priority.Name); err != nil {
			return nil, err
		}
		result = append(result, priority)
	}
	return result, rows.Err()
}

type statusRepository struct {
	db persistence.Querier
}

// NewStatusRepository builds repository.
func NewStatusRepository(db persistence.Querier) StatusRepository {
	return &statusRepository{db: db}
}

func (r *statusRepository) q(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.db)
}

func (r *statusRepository) Create(ctx context.Context, status *domain.Status) error {
	const query = `INSERT INTO flicket_status (status) VALUES ($1) RETURNING id`
	return r.q(ctx).QueryRow(ctx, query, status.Name).Scan(&status.ID)
}

func (r *statusRepository) Update(ctx context.Context, status *domain.Status) error {
	cmd, err := r.q(ctx).Exec(ctx, `UPDATE flicket_status SET status=$1 WHERE id=$2`, status.Name, status.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *statusRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q(ctx).Exec(ctx, `DELETE FROM flicket_status WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *statusRepository) GetByID(ctx context.Context, id int64) (*domain.Status, error) {
	var status domain.Status
	if err := r.q(ctx).QueryRow(ctx, `SELECT id, status FROM flicket_status WHERE id=$1`, id).
		Scan(&status.ID, &status.Name); err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *statusRepository) GetByName(ctx context.Context, name string) (*domain.Status, error) {
	var status domain.Status
	if err := r.q(ctx).QueryRow(ctx, `SELECT id, status FROM flicket_status WHERE status=$1`, name).
		Scan(&status.ID, &status.Name); err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *statusRepository) List(ctx context.Context) ([]domain.Status, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT id, status FROM flicket_status ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Status
	for rows.Next() {
		var status domain.Status
		if err := rows.Scan(&status.ID, &status.Name); err != nil {
			return nil, err
		}
		result = append(result, status)
	}
	return result, rows.Err()
}
