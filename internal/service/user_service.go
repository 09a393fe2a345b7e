package service

import (
	"context"

	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/repository"
	"github.com/Zachary2562/recordables-ticketquest/pkg/util"
)

// UserService exposes the user and group administration surface. Group
// membership is the capability model: adding a user to a reserved group
// grants the matching flag on their next request.
type UserService struct {
	users  repository.UserRepository
	groups repository.GroupRepository
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, groups repository.GroupRepository) *UserService {
	return &UserService{users: users, groups: groups}
}

// ListUsers pages through user accounts. Privileged actors only.
func (s *UserService) ListUsers(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.User, error) {
	if err := requirePrivileged(actor); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, util.MapError(err)
	}
	return users, nil
}

// GetUser loads a single account. Users may read their own record; anything
// else requires privilege.
func (s *UserService) GetUser(ctx context.Context, actor domain.Actor, id int64) (*domain.User, error) {
	if id != actor.ID {
		if err := requirePrivileged(actor); err != nil {
			return nil, err
		}
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}
	return user, nil
}

// ListGroups lists all groups.
func (s *UserService) ListGroups(ctx context.Context, actor domain.Actor) ([]domain.Group, error) {
	if err := requirePrivileged(actor); err != nil {
		return nil, err
	}
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	return groups, nil
}

// AddToGroup puts a user into a group by group name. Super-user only for the
// reserved groups; plain admins may manage the rest.
func (s *UserService) AddToGroup(ctx context.Context, actor domain.Actor, userID int64, groupName string) error {
	if err := s.checkGroupAccess(actor, groupName); err != nil {
		return err
	}
	group, err := s.groups.GetByName(ctx, groupName)
	if err != nil {
		return util.MapError(err)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return util.MapError(err)
	}
	return util.MapError(s.groups.AddMember(ctx, group.ID, userID))
}

// RemoveFromGroup removes a user from a group by group name.
func (s *UserService) RemoveFromGroup(ctx context.Context, actor domain.Actor, userID int64, groupName string) error {
	if err := s.checkGroupAccess(actor, groupName); err != nil {
		return err
	}
	group, err := s.groups.GetByName(ctx, groupName)
	if err != nil {
		return util.MapError(err)
	}
	return util.MapError(s.groups.RemoveMember(ctx, group.ID, userID))
}

func (s *UserService) checkGroupAccess(actor domain.Actor, groupName string) error {
	if groupName == domain.GroupAdmin || groupName == domain.GroupSuperUser {
		if !actor.IsSuperUser {
			return util.NewAccessDenied("super-user access required for reserved groups")
		}
		return nil
	}
	return requirePrivileged(actor)
}
