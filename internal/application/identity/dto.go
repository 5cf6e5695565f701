package identity

import (
	"time"

	"github.com/bartab/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// CreateUserRequest creates a ledger account
type CreateUserRequest struct {
	FirstName string            `json:"first_name" binding:"required,min=1,max=64"`
	LastName  string            `json:"last_name" binding:"max=64"`
	Type      identity.UserType `json:"type" binding:"required"`
	Active    bool              `json:"active"`
}

// UpdateUserRequest renames an account and switches its activation
type UpdateUserRequest struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=64"`
	LastName  string `json:"last_name" binding:"max=64"`
	Active    bool   `json:"active"`
}

// UserResponse represents a user account
type UserResponse struct {
	ID        uuid.UUID         `json:"id"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	FullName  string            `json:"full_name"`
	Type      identity.UserType `json:"type"`
	Active    bool              `json:"active"`
	Deleted   bool              `json:"deleted"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Version   int               `json:"version"`
}

func toUserResponse(user *identity.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		FullName:  user.FullName(),
		Type:      user.Type,
		Active:    user.Active,
		Deleted:   user.Deleted,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
		Version:   user.Version,
	}
}
