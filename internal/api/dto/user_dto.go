package dto

import (
	"time"

	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// AuthResponse returns token material.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public user shape; the hash never leaves the server.
type UserResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	TotalPosts  int       `json:"total_posts"`
	IsAdmin     bool      `json:"is_admin"`
	IsSuperUser bool      `json:"is_super_user"`
	DateAdded   time.Time `json:"date_added"`
}

// GroupMembershipRequest adds or removes a user from a named group.
type GroupMembershipRequest struct {
	UserID    int64  `json:"user_id" validate:"required,min=1"`
	GroupName string `json:"group_name" validate:"required"`
}

// NewUserResponse projects a user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Name:        u.Name,
		Email:       u.Email,
		TotalPosts:  u.TotalPosts,
		IsAdmin:     u.IsAdmin,
		IsSuperUser: u.IsSuperUser,
		DateAdded:   u.DateAdded,
	}
}
