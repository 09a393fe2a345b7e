package domain

// Department represents a high-level organizational unit. A department
// cannot be deleted while categories reference it.
type Department struct {
	ID   int64
	Name string
}

// Category belongs to exactly one department.
type Category struct {
	ID           int64
	DepartmentID int64
	Name         string
}
