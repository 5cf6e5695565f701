package identity

import (
	"github.com/bartab/backend/internal/domain/shared"
)

// Event types for the user aggregate
const (
	UserCreatedEventType = "identity.user.created"
	UserDeletedEventType = "identity.user.deleted"
)

// UserCreatedEvent is raised when a new account is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	UserType UserType `json:"user_type"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(UserCreatedEventType, "User", user.ID),
		UserType:        user.Type,
	}
}

// UserDeletedEvent is raised when an account is soft-deleted
type UserDeletedEvent struct {
	shared.BaseDomainEvent
}

// NewUserDeletedEvent creates a new UserDeletedEvent
func NewUserDeletedEvent(user *User) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(UserDeletedEventType, "User", user.ID),
	}
}
