package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/persistence"
)

// UserRepository manages user persistence. Capability flags are derived from
// membership of the reserved groups at load time.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	IncrementTotalPosts(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	EmailsByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

// GroupRepository manages groups and membership.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	GetByName(ctx context.Context, name string) (*domain.Group, error)
	List(ctx context.Context) ([]domain.Group, error)
	AddMember(ctx context.Context, groupID, userID int64) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
}

const userColumns = `
        SELECT us.id, us.username, us.name, us.email, us.password_hash, us.total_posts, us.date_added,
               EXISTS (SELECT 1 FROM flicket_user_groups ug JOIN flicket_groups g ON ug.group_id=g.id
                       WHERE ug.user_id=us.id AND g.group_name='flicket_admin') AS is_admin,
               EXISTS (SELECT 1 FROM flicket_user_groups ug JOIN flicket_groups g ON ug.group_id=g.id
                       WHERE ug.user_id=us.id AND g.group_name='flicket_super_user') AS is_super_user
        FROM flicket_users us`

type userRepository struct {
	db persistence.Querier
}

// NewUserRepository instantiates repository.
func NewUserRepository(db persistence.Querier) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) q(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.db)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO flicket_users (username, name, email, password_hash)
        VALUES ($1,$2,$3,$4)
        RETURNING id, date_added`
	return r.q(ctx).QueryRow(ctx, query,
		user.Username,
		user.Name,
		user.Email,
		user.PasswordHash,
	).Scan(&user.ID, &user.DateAdded)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.fetchSingle(ctx, userColumns+` WHERE us.id=$1`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.fetchSingle(ctx, userColumns+` WHERE us.username=$1`, username)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.q(ctx).QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.TotalPosts,
		&user.DateAdded,
		&user.IsAdmin,
		&user.IsSuperUser,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.q(ctx).Query(ctx, userColumns+` ORDER BY us.username ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.TotalPosts,
			&user.DateAdded,
			&user.IsAdmin,
			&user.IsSuperUser,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *userRepository) IncrementTotalPosts(ctx context.Context, id int64) error {
	cmd, err := r.q(ctx).Exec(ctx, `UPDATE flicket_users SET total_posts = total_posts + 1 WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	cmd, err := r.q(ctx).Exec(ctx, `UPDATE flicket_users SET password_hash=$1 WHERE id=$2`, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) EmailsByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}
	rows, err := r.q(ctx).Query(ctx, `SELECT id, email FROM flicket_users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]string, len(ids))
	for rows.Next() {
		var (
			id    int64
			email string
		)
		if err := rows.Scan(&id, &email); err != nil {
			return nil, err
		}
		result[id] = email
	}
	return result, rows.Err()
}

type groupRepository struct {
	db persistence.Querier
}

// NewGroupRepository instantiates repository.
func NewGroupRepository(db persistence.Querier) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) q(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.db)
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) error {
	const query = `INSERT INTO flicket_groups (group_name) VALUES ($1) RETURNING id`
	return r.q(ctx).QueryRow(ctx, query, group.Name).Scan(&group.ID)
}

func (r *groupRepository) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	var group domain.Group
	if err := r.q(ctx).QueryRow(ctx, `SELECT id, group_name FROM flicket_groups WHERE group_name=$1`, name).
		Scan(&group.ID, &group.Name); err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) List(ctx context.Context) ([]domain.Group, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT id, group_name FROM flicket_groups ORDER BY group_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Group
	for rows.Next() {
		var group domain.Group
		if err := rows.Scan(&group.ID, &group.Name); err != nil {
			return nil, err
		}
		result = append(result, group)
	}
	return result, rows.Err()
}

func (r *groupRepository) AddMember(ctx context.Context, groupID, userID int64) error {
	const query = `
        INSERT INTO flicket_user_groups (user_id, group_id)
        VALUES ($1,$2) ON CONFLICT DO NOTHING`
	_, err := r.q(ctx).Exec(ctx, query, userID, groupID)
	return err
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID int64) error {
	_, err := r.q(ctx).Exec(ctx, `DELETE FROM flicket_user_groups WHERE user_id=$1 AND group_id=$2`, userID, groupID)
	return err
}
