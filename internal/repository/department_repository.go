package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/persistence"
)

// DepartmentRepository manages department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
	CountCategories(ctx context.Context, id int64) (int, error)
}

// CategoryRepository manages category persistence.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	ListByDepartment(ctx context.Context, departmentID int64) ([]domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

type departmentRepository struct {
	db persistence.Querier
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(db persistence.Querier) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) q(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.db)
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `INSERT INTO flicket_department (department) VALUES ($1) RETURNING id`
	return r.q(ctx).QueryRow(ctx, query, dept.Name).Scan(&dept.ID)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	cmd, err := r.q(ctx).Exec(ctx, `UPDATE flicket_department SET department=$1 WHERE id=$2`, dept.Name, dept.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q(ctx).Exec(ctx, `DELETE FROM flicket_department WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	var dept domain.Department
	if err := r.q(ctx).QueryRow(ctx, `SELECT id, department FROM flicket_department WHERE id=$1`, id).
		Scan(&dept.ID, &dept.Name); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT id, department FROM flicket_department ORDER BY department ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.Name); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}

func (r *departmentRepository) CountCategories(ctx context.Context, id int64) (int, error) {
	var count int
	if err := r.q(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM flicket_category WHERE department_id=$1`, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type categoryRepository struct {
	db persistence.Querier
}

// NewCategoryRepository builds the repository.
func NewCategoryRepository(db persistence.Querier) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) q(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.db)
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	const query = `INSERT INTO flicket_category (department_id, category) VALUES ($1,$2) RETURNING id`
	return r.q(ctx).QueryRow(ctx, query, category.DepartmentID, category.Name).Scan(&category.ID)
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	cmd, err := r.q(ctx).Exec(ctx, `UPDATE flicket_category SET department_id=$1, category=$2 WHERE id=$3`,
		category.DepartmentID, category.Name, category.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q(ctx).Exec(ctx, `DELETE FROM flicket_category WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var category domain.Category
	if err := r.q(ctx).QueryRow(ctx, `SELECT id, department_id, category FROM flicket_category WHERE id=$1`, id).
		Scan(&category.ID, &category.DepartmentID, &category.Name); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListByDepartment(ctx context.Context, departmentID int64) ([]domain.Category, error) {
	const query = `SELECT id, department_id, category FROM flicket_category WHERE department_id=$1 ORDER BY category ASC`
	rows, err := r.q(ctx).Query(ctx, query, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCategories(rows)
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT id, department_id, category FROM flicket_category ORDER BY category ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCategories(rows)
}

func scanCategories(rows pgx.Rows) ([]domain.Category, error) {
	var result []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.DepartmentID, &category.Name); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}
