package service

import (
	"context"
	"strings"

	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/repository"
	"github.com/Zachary2562/recordables-ticketquest/pkg/util"
)

// AdminService manages the helpdesk lookup entities. Every mutation requires
// a privileged actor; deletion of an entity still referenced by tickets or
// categories is blocked with a conflict.
type AdminService struct {
	tickets     repository.TicketRepository
	departments repository.DepartmentRepository
	categories  repository.CategoryRepository
	priorities  repository.PriorityRepository
	statuses    repository.StatusRepository
}

// NewAdminService constructs the service.
func NewAdminService(
	tickets repository.TicketRepository,
	departments repository.DepartmentRepository,
	categories repository.CategoryRepository,
	priorities repository.PriorityRepository,
	statuses repository.StatusRepository,
) *AdminService {
	return &AdminService{
		tickets:     tickets,
		departments: departments,
		categories:  categories,
		priorities:  priorities,
		statuses:    statuses,
	}
}

func requirePrivileged(actor domain.Actor) error {
	if !actor.Privileged() {
		return util.NewAccessDenied("administrator access required")
	}
	return nil
}

func requireLabel(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", util.NewValidationError(field+" cannot be empty", nil)
	}
	return value, nil
}

// Departments

func (s *AdminService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	depts, err := s.departments.List(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	return depts, nil
}

func (s *AdminService) CreateDepartment(ctx context.Context, actor domain.Actor, name string) (*domain.Department, error) {
	if err := requirePrivileged(actor); err != nil {
		return nil, err
	}
	name, err := requireLabel("department", name)
	if err != nil {
		return nil, err
	}
	dept := &domain.Department{Name: name}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, util.MapError(err)
	}
	return dept, nil
}

func (s *AdminService) RenameDepartment(ctx context.Context, actor domain.Actor, id int64, name string) error {
	if err := requirePrivileged(actor); err != nil {
		return err
	}
	name, err := requireLabel("department", name)
	if err != nil {
		return err
	}
	return util.MapError(s.departments.Update(ctx, &domain.Department{ID: id, Name: name}))
}

// DeleteDepartment refuses while any category still belongs to it.
func (s *AdminService) DeleteDepartment(ctx context.Context, actor domain.Actor, id int64) error {
	if err := requirePrivileged(actor); err != nil {
		return err
	}
	if _, err := s.departments.GetByID(ctx, id); err != nil {
		return util.MapError(err)
	}
	count, err := s.departments.CountCategories(ctx, id)
	if err != nil {
		return util.MapError(err)
	}
	if count > 0 {
		return util.NewConflict("department still has categories", map[string]any{"categories": count})
	}
	return util.MapError(s.departments.Delete(ctx, id))
}

// Categories

func (s *AdminService) ListCategories(ctx context.Context, departmentID *int64) ([]domain.Category, error) {
	var (
		cats []domain.Category
		err  error
	)
	if departmentID != nil {
		cats, err = s.categories.ListByDepartment(ctx, *departmentID)
	} else {
		cats, err = s.categories.List(ctx)
	}
	if err != nil {
		return nil, util.MapError(err)
	}
	return cats, nil
}

func (s *AdminService) CreateCategory(ctx context.Context, actor domain.Actor, departmentID int64, name string) (*domain.Category, error) {
	if err := requirePrivileged(actor); err != nil {
		return nil, err
	}
	name, err := requireLabel("category", name)
	if err != nil {
		return nil, err
	}
	if _, err := s.departments.GetByID(ctx, departmentID); err != nil {
		return nil, util.MapError(err)
	}
	category := &domain.Category{DepartmentID: departmentID, Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, util.MapError(err)
	}
	return category, nil
}

func (s *AdminService) RenameCategory(ctx context.Context, actor domain.Actor, id int64, name string) error {
	if err := requirePrivileged(actor); err != nil {
		return err
	}
	name, err := requireLabel("category", name)
	if err != nil {
		return err
	}
	existing, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return util.MapError(err)
	}
	existing.Name = name
	return util.MapError(s.categories.Update(ctx, existing))
}

// DeleteCategory refuses while any ticket is filed under it.
func (s *AdminService) DeleteCategory(ctx context.Context, actor domain.Actor, id int64) error {
	if err := requirePrivileged(actor); err != nil {
		return err
	}
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return util.MapError(err)
	}
	count, err := s.tickets.CountByCategory(ctx, id)
	if err != nil {
		return util.MapError(err)
	}
	if count > 0 {
		return util.NewConflict("category still has tickets", map[string]any{"tickets": count})
	}
	return util.MapError(s.categories.Delete(ctx, id))
}

// Priorities

func (s *AdminService) ListPriorities(ctx context.Context) ([]domain.Priority, error) {
	priorities, err := s.priorities.List(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	return priorities, nil
}

func (s *AdminService) CreatePriority(ctx context.Context, actor domain.Actor, name string) (*domain.Priority, error) {
	if err := requirePrivileged(actor); err != nil {
		return nil, err
	}
	name, err := requireLabel("priority", name)
	if err != nil {
		return nil, err
	}
	priority := &domain.Priority{Name: name}
	if err := s.priorities.Create(ctx, priority); err != nil {
		return nil, util.MapError(err)
	}
	return priority, nil
}

func (s *AdminService) RenamePriority(ctx context.Context, actor domain.Actor, id int64, name string) error {
	if err := requirePrivileged(actor); err != nil {
		return err
	}
	name, err := requireLabel("priority", name)
	if err != nil {
		return err
	}
	return util.MapError(s.priorities.Update(ctx, &domain.Priority{ID: id, Name: name}))
}

// DeletePriority refuses while any ticket still carries it.
func (s *AdminService) DeletePriority(ctx context.Context, actor domain.Actor, id int64) error {
	if err := requirePrivileged(actor); err != nil {
		return err
	}
	if _, err := s.priorities.GetByID(ctx, id); err != nil {
		return util.MapError(err)
	}
	count, err := s.tickets.CountByPriority(ctx, id)
	if err != nil {
		return util.MapError(err)
	}
	if count > 0 {
		return util.NewConflict("priority still in use", map[string]any{"tickets": count})
	}
	return util.MapError(s.priorities.Delete(ctx, id))
}

// Statuses

func (s *AdminService) ListStatuses(ctx context.Context) ([]domain.Status, error) {
	statuses, err := s.statuses.List(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	return statuses, nil
}

func (s *AdminService) CreateStatus(ctx context.Context, actor domain.Actor, name string) (*domain.Status, error) {
	if err := requirePrivileged(actor); err != nil {
		return nil, err
	}
	name, err := requireLabel("status", name)
	if err != nil {
		return nil, err
	}
	status := &domain.Status{Name: name}
	if err := s.statuses.Create(ctx, status); err != nil {
		return nil, util.MapError(err)
	}
	return status, nil
}

func (s *AdminService) RenameStatus(ctx context.Context, actor domain.Actor, id int64, name string) error {
	if err := requirePrivileged(actor); err != nil {
		return err
	}
	existing, err := s.statuses.GetByID(ctx, id)
	if err != nil {
		return util.MapError(err)
	}
	if existing.Name == domain.StatusOpen || existing.Name == domain.StatusClosed {
		return util.NewConflict("reserved status cannot be renamed", map[string]any{"status": existing.Name})
	}
	name, err = requireLabel("status", name)
	if err != nil {
		return err
	}
	existing.Name = name
	return util.MapError(s.statuses.Update(ctx, existing))
}

// DeleteStatus refuses for the reserved workflow statuses and while any
// ticket still carries it.
func (s *AdminService) DeleteStatus(ctx context.Context, actor domain.Actor, id int64) error {
	if err := requirePrivileged(actor); err != nil {
		return err
	}
	existing, err := s.statuses.GetByID(ctx, id)
	if err != nil {
		return util.MapError(err)
	}
	if existing.Name == domain.StatusOpen || existing.Name == domain.StatusClosed {
		return util.NewConflict("reserved status cannot be deleted", map[string]any{"status": existing.Name})
	}
	count, err := s.tickets.CountByStatus(ctx, id)
	if err != nil {
		return util.MapError(err)
	}
	if count > 0 {
		return util.NewConflict("status still in use", map[string]any{"tickets": count})
	}
	return util.MapError(s.statuses.Delete(ctx, id))
}
