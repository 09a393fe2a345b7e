package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Zachary2562/recordables-ticketquest/internal/api/dto"
	"github.com/Zachary2562/recordables-ticketquest/internal/auth"
	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/service"
	"github.com/Zachary2562/recordables-ticketquest/pkg/util"
)

// AdminHandler exposes the lookup-entity and group administration surface.
type AdminHandler struct {
	admin *service.AdminService
	users *service.UserService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService, userService *service.UserService) *AdminHandler {
	return &AdminHandler{admin: adminService, users: userService}
}

func actorFrom(c *fiber.Ctx) (domain.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.Actor{}, util.NewUnauthorized("authentication required")
	}
	return principal.Actor(), nil
}

func parseLabel(c *fiber.Ctx) (string, error) {
	var req dto.LabelRequest
	if err := c.BodyParser(&req); err != nil {
		return "", util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return "", err
	}
	return req.Name, nil
}

// Departments

// ListDepartments GET /flicket/departments.
func (h *AdminHandler) ListDepartments(c *fiber.Ctx) error {
	depts, err := h.admin.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentResponse, 0, len(depts))
	for i := range depts {
		items = append(items, dto.NewDepartmentResponse(&depts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateDepartment POST /flicket/departments.
func (h *AdminHandler) CreateDepartment(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	name, err := parseLabel(c)
	if err != nil {
		return err
	}
	dept, err := h.admin.CreateDepartment(c.UserContext(), actor, name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewDepartmentResponse(dept)})
}

// RenameDepartment PUT /flicket/departments/:id.
func (h *AdminHandler) RenameDepartment(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	name, err := parseLabel(c)
	if err != nil {
		return err
	}
	if err := h.admin.RenameDepartment(c.UserContext(), actor, id, name); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteDepartment DELETE /flicket/departments/:id.
func (h *AdminHandler) DeleteDepartment(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.admin.DeleteDepartment(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Categories

// ListCategories GET /flicket/categories?department_id=N.
func (h *AdminHandler) ListCategories(c *fiber.Ctx) error {
	var departmentID *int64
	if raw := c.Query("department_id"); raw != "" {
		id, err := queryInt(c, "department_id", 0)
		if err != nil {
			return err
		}
		val := int64(id)
		departmentID = &val
	}
	cats, err := h.admin.ListCategories(c.UserContext(), departmentID)
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(cats))
	for i := range cats {
		items = append(items, dto.NewCategoryResponse(&cats[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateCategory POST /flicket/categories.
func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	category, err := h.admin.CreateCategory(c.UserContext(), actor, req.DepartmentID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCategoryResponse(category)})
}

// RenameCategory PUT /flicket/categories/:id.
func (h *AdminHandler) RenameCategory(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	name, err := parseLabel(c)
	if err != nil {
		return err
	}
	if err := h.admin.RenameCategory(c.UserContext(), actor, id, name); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteCategory DELETE /flicket/categories/:id.
func (h *AdminHandler) DeleteCategory(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.admin.DeleteCategory(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Priorities

// ListPriorities GET /flicket/priorities.
func (h *AdminHandler) ListPriorities(c *fiber.Ctx) error {
	priorities, err := h.admin.ListPriorities(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.LookupResponse, 0, len(priorities))
	for _, p := range priorities {
		items = append(items, dto.LookupResponse{ID: p.ID, Name: p.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreatePriority POST /flicket/priorities.
func (h *AdminHandler) CreatePriority(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	name, err := parseLabel(c)
	if err != nil {
		return err
	}
	priority, err := h.admin.CreatePriority(c.UserContext(), actor, name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.LookupResponse{ID: priority.ID, Name: priority.Name}})
}

// RenamePriority PUT /flicket/priorities/:id.
func (h *AdminHandler) RenamePriority(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	name, err := parseLabel(c)
	if err != nil {
		return err
	}
	if err := h.admin.RenamePriority(c.UserContext(), actor, id, name); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeletePriority DELETE /flicket/priorities/:id.
func (h *AdminHandler) DeletePriority(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.admin.DeletePriority(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Statuses

// ListStatuses GET /flicket/statuses.
func (h *AdminHandler) ListStatuses(c *fiber.Ctx) error {
	statuses, err := h.admin.ListStatuses(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.LookupResponse, 0, len(statuses))
	for _, s := range statuses {
		items = append(items, dto.LookupResponse{ID: s.ID, Name: s.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateStatus POST /flicket/statuses.
func (h *AdminHandler) CreateStatus(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	name, err := parseLabel(c)
	if err != nil {
		return err
	}
	status, err := h.admin.CreateStatus(c.UserContext(), actor, name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.LookupResponse{ID: status.ID, Name: status.Name}})
}

// RenameStatus PUT /flicket/statuses/:id.
func (h *AdminHandler) RenameStatus(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	name, err := parseLabel(c)
	if err != nil {
		return err
	}
	if err := h.admin.RenameStatus(c.UserContext(), actor, id, name); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteStatus DELETE /flicket/statuses/:id.
func (h *AdminHandler) DeleteStatus(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.admin.DeleteStatus(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Groups

// ListGroups GET /flicket/groups.
func (h *AdminHandler) ListGroups(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	groups, err := h.users.ListGroups(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.GroupResponse, 0, len(groups))
	for _, g := range groups {
		items = append(items, dto.GroupResponse{ID: g.ID, Name: g.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddGroupMember POST /flicket/groups/members.
func (h *AdminHandler) AddGroupMember(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.GroupMembershipRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	if err := h.users.AddToGroup(c.UserContext(), actor, req.UserID, req.GroupName); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// RemoveGroupMember DELETE /flicket/groups/members.
func (h *AdminHandler) RemoveGroupMember(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.GroupMembershipRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	if err := h.users.RemoveFromGroup(c.UserContext(), actor, req.UserID, req.GroupName); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
