package identity

import (
	"context"

	"github.com/bartab/backend/internal/domain/identity"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService manages ledger accounts. Accounts are never hard-deleted:
// the ledger keeps referencing them, so deletion only blocks new
// participation.
type UserService struct {
	userRepo identity.UserRepository
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, eventBus shared.EventPublisher, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreateUser creates a new account
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	user, err := identity.NewUser(req.FirstName, req.LastName, req.Type, req.Active)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, user)
	s.logger.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("type", string(user.Type)))
	return toUserResponse(user), nil
}

// UpdateUser renames the account and switches its activation state
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Deleted {
		return nil, shared.NewDomainError("ENTITY_DELETED", "Cannot update a deleted user")
	}
	if err := user.Rename(req.FirstName, req.LastName); err != nil {
		return nil, err
	}
	user.SetActive(req.Active)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// SoftDeleteUser marks the account deleted; its ledger history stays
func (s *UserService) SoftDeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.SoftDelete()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	s.publishEvents(ctx, user)
	return nil
}

// GetUser loads one account
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ListUsers lists accounts, optionally narrowed to one type
func (s *UserService) ListUsers(ctx context.Context, userType *identity.UserType, filter shared.Filter) (*shared.Paginated[UserResponse], error) {
	var (
		users []identity.User
		err   error
	)
	if userType != nil {
		users, err = s.userRepo.FindByType(ctx, *userType, filter)
	} else {
		users, err = s.userRepo.FindAll(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	total, err := s.userRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = *toUserResponse(&users[i])
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *UserService) publishEvents(ctx context.Context, user *identity.User) {
	events := user.GetDomainEvents()
	if len(events) == 0 || s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish user events", zap.Error(err))
	}
	user.ClearDomainEvents()
}
