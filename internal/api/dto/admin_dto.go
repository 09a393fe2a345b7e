package dto

import "github.com/Zachary2562/recordables-ticketquest/internal/domain"

// LabelRequest covers the single-label lookup entities.
type LabelRequest struct {
	Name string `json:"name" validate:"required,min=1,max=64"`
}

// CreateCategoryRequest payload.
type CreateCategoryRequest struct {
	DepartmentID int64  `json:"department_id" validate:"required,min=1"`
	Name         string `json:"name" validate:"required,min=1,max=64"`
}

// DepartmentResponse shape.
type DepartmentResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryResponse shape.
type CategoryResponse struct {
	ID           int64  `json:"id"`
	DepartmentID int64  `json:"department_id"`
	Name         string `json:"name"`
}

// LookupResponse shape for priorities and statuses.
type LookupResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GroupResponse shape.
type GroupResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewDepartmentResponse projects a department.
func NewDepartmentResponse(d *domain.Department) DepartmentResponse {
	return DepartmentResponse{ID: d.ID, Name: d.Name}
}

// NewCategoryResponse projects a category.
func NewCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, DepartmentID: c.DepartmentID, Name: c.Name}
}
