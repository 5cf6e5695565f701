package identity

import (
	"context"

	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByIDs finds multiple users by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)

	// FindAll finds all users matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]User, error)

	// FindByType finds users of the given type
	FindByType(ctx context.Context, userType UserType, filter shared.Filter) ([]User, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error

	// SaveBatch creates or updates multiple users
	SaveBatch(ctx context.Context, users []*User) error

	// Count counts users matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
