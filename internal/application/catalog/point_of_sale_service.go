package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PointOfSaleService handles the point-of-sale revision lifecycle.
// Approval resolves each listed container to its current approved
// revision, completing the pinned graph a purchase will later validate
// against.
type PointOfSaleService struct {
	posRepo       catalog.PointOfSaleRepository
	containerRepo catalog.ContainerRepository
	scope         TransactionScope
}

// NewPointOfSaleService creates a new PointOfSaleService
func NewPointOfSaleService(
	posRepo catalog.PointOfSaleRepository,
	containerRepo catalog.ContainerRepository,
	scope TransactionScope,
) *PointOfSaleService {
	return &PointOfSaleService{
		posRepo:       posRepo,
		containerRepo: containerRepo,
		scope:         scope,
	}
}

// Create makes a new point-of-sale head together with its first draft
func (s *PointOfSaleService) Create(ctx context.Context, req CreatePointOfSaleRequest) (*PointOfSaleResponse, error) {
	pos := catalog.NewPointOfSale(req.OwnerID, req.Payload.UseAuthentication)
	draft, err := catalog.NewPointOfSaleDraft(pos.ID, req.Payload.Name, req.Payload.ContainerIDs, req.Payload.UseAuthentication)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.PointOfSaleRepo().Save(ctx, pos); err != nil {
			return fmt.Errorf("saving point-of-sale head: %w", err)
		}
		if err := repos.PointOfSaleRepo().SaveDraft(ctx, draft); err != nil {
			return fmt.Errorf("saving point-of-sale draft: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toPointOfSaleResponse(pos, nil, draft), nil
}

// CreateDraft stores the pending edit, overwriting any previous draft
func (s *PointOfSaleService) CreateDraft(ctx context.Context, posID uuid.UUID, payload PointOfSalePayload) (*PointOfSaleResponse, error) {
	pos, err := s.posRepo.FindByID(ctx, posID)
	if err != nil {
		return nil, err
	}
	if pos.IsDeleted() {
		return nil, shared.NewDomainError("ENTITY_DELETED", "Deleted points of sale cannot take new drafts")
	}

	draft, err := catalog.NewPointOfSaleDraft(posID, payload.Name, payload.ContainerIDs, payload.UseAuthentication)
	if err != nil {
		return nil, err
	}
	if err := s.posRepo.SaveDraft(ctx, draft); err != nil {
		return nil, fmt.Errorf("saving point-of-sale draft: %w", err)
	}

	current, err := s.currentRevision(ctx, pos)
	if err != nil {
		return nil, err
	}
	return toPointOfSaleResponse(pos, current, draft), nil
}

// Approve turns the pending draft into the next immutable revision
func (s *PointOfSaleService) Approve(ctx context.Context, posID uuid.UUID) (*PointOfSaleResponse, error) {
	var (
		pos      *catalog.PointOfSale
		revision *catalog.PointOfSaleRevision
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		pos, err = repos.PointOfSaleRepo().FindByID(ctx, posID)
		if err != nil {
			return err
		}
		if pos.IsDeleted() {
			return shared.NewDomainError("ENTITY_DELETED", "Deleted points of sale cannot be approved")
		}

		draft, err := repos.PointOfSaleRepo().FindDraft(ctx, posID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("NO_DRAFT", "Point of sale has no pending draft to approve")
			}
			return err
		}

		revision, err = s.buildRevision(ctx, repos, pos, draft)
		if err != nil {
			return err
		}
		return s.promote(ctx, repos, pos, revision)
	})
	if err != nil {
		return nil, err
	}
	return toPointOfSaleResponse(pos, revision, nil), nil
}

// DirectUpdate drafts and approves in one atomic step
func (s *PointOfSaleService) DirectUpdate(ctx context.Context, posID uuid.UUID, payload PointOfSalePayload) (*PointOfSaleResponse, error) {
	var (
		pos      *catalog.PointOfSale
		revision *catalog.PointOfSaleRevision
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		pos, err = repos.PointOfSaleRepo().FindByID(ctx, posID)
		if err != nil {
			return err
		}
		if pos.IsDeleted() {
			return shared.NewDomainError("ENTITY_DELETED", "Deleted points of sale cannot be updated")
		}

		draft, err := catalog.NewPointOfSaleDraft(posID, payload.Name, payload.ContainerIDs, payload.UseAuthentication)
		if err != nil {
			return err
		}
		revision, err = s.buildRevision(ctx, repos, pos, draft)
		if err != nil {
			return err
		}
		return s.promote(ctx, repos, pos, revision)
	})
	if err != nil {
		return nil, err
	}
	return toPointOfSaleResponse(pos, revision, nil), nil
}

// Delete soft-deletes the point of sale. Recorded purchases stay valid;
// new ones are blocked by the snapshot validator.
func (s *PointOfSaleService) Delete(ctx context.Context, posID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		pos, err := repos.PointOfSaleRepo().FindByID(ctx, posID)
		if err != nil {
			return err
		}
		if err := pos.MarkDeleted(time.Now()); err != nil {
			return err
		}
		if err := repos.PointOfSaleRepo().Save(ctx, pos); err != nil {
			return fmt.Errorf("saving point-of-sale head: %w", err)
		}
		if err := repos.PointOfSaleRepo().DeleteDraft(ctx, posID); err != nil && !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("discarding point-of-sale draft: %w", err)
		}
		return nil
	})
}

// Restore clears the soft-deletion mark
func (s *PointOfSaleService) Restore(ctx context.Context, posID uuid.UUID) error {
	pos, err := s.posRepo.FindByID(ctx, posID)
	if err != nil {
		return err
	}
	if err := pos.ClearDeleted(); err != nil {
		return err
	}
	return s.posRepo.Save(ctx, pos)
}

// Get returns the head with its current revision and pending draft
func (s *PointOfSaleService) Get(ctx context.Context, posID uuid.UUID) (*PointOfSaleResponse, error) {
	pos, err := s.posRepo.FindByID(ctx, posID)
	if err != nil {
		return nil, err
	}
	current, err := s.currentRevision(ctx, pos)
	if err != nil {
		return nil, err
	}
	draft, err := s.posRepo.FindDraft(ctx, posID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return toPointOfSaleResponse(pos, current, draft), nil
}

// List returns a page of point-of-sale heads
func (s *PointOfSaleService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[PointOfSaleResponse], error) {
	return s.list(ctx, filter, s.posRepo.FindAll)
}

// ListPurchaseEligible returns the heads new transactions may pin
func (s *PointOfSaleService) ListPurchaseEligible(ctx context.Context, filter shared.Filter) (*shared.Paginated[PointOfSaleResponse], error) {
	return s.list(ctx, filter, s.posRepo.FindPurchaseEligible)
}

func (s *PointOfSaleService) list(ctx context.Context, filter shared.Filter,
	find func(context.Context, shared.Filter) ([]catalog.PointOfSale, error)) (*shared.Paginated[PointOfSaleResponse], error) {
	heads, err := find(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.posRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]PointOfSaleResponse, len(heads))
	for i := range heads {
		current, err := s.currentRevision(ctx, &heads[i])
		if err != nil {
			return nil, err
		}
		responses[i] = *toPointOfSaleResponse(&heads[i], current, nil)
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *PointOfSaleService) currentRevision(ctx context.Context, pos *catalog.PointOfSale) (*catalog.PointOfSaleRevision, error) {
	if pos.CurrentRevision == nil {
		return nil, nil
	}
	rev, err := s.posRepo.FindRevision(ctx, catalog.PointOfSalePin{PointOfSaleID: pos.ID, Revision: *pos.CurrentRevision})
	if err != nil {
		return nil, fmt.Errorf("loading current revision of point of sale %s: %w", pos.ID, err)
	}
	return rev, nil
}

// buildRevision resolves every draft container to its current approved
// revision, failing with UNRESOLVED_DEPENDENCY for never-approved or
// soft-deleted children
func (s *PointOfSaleService) buildRevision(ctx context.Context, repos TransactionalRepositories, pos *catalog.PointOfSale, draft *catalog.PointOfSaleDraft) (*catalog.PointOfSaleRevision, error) {
	number := pos.NextRevision()
	members := make([]catalog.PointOfSaleRevisionContainer, 0, len(draft.ContainerIDs))

	containers, err := repos.ContainerRepo().FindByIDs(ctx, draft.ContainerIDs)
	if err != nil {
		return nil, fmt.Errorf("loading draft containers: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Container, len(containers))
	for i := range containers {
		byID[containers[i].ID] = &containers[i]
	}

	for _, containerID := range draft.ContainerIDs {
		container, ok := byID[containerID]
		if !ok {
			return nil, shared.NewDomainError("UNRESOLVED_DEPENDENCY",
				fmt.Sprintf("Container %s does not exist", containerID))
		}
		if !container.IsPurchaseEligible() {
			return nil, shared.NewDomainError("UNRESOLVED_DEPENDENCY",
				fmt.Sprintf("Container %s has no approved revision or is deleted", containerID))
		}
		members = append(members, catalog.PointOfSaleRevisionContainer{
			PointOfSaleID:     pos.ID,
			Revision:          number,
			ContainerID:       containerID,
			ContainerRevision: *container.CurrentRevision,
		})
	}

	return &catalog.PointOfSaleRevision{
		PointOfSaleID:     pos.ID,
		Revision:          number,
		Name:              draft.Name,
		UseAuthentication: draft.UseAuthentication,
		CreatedAt:         time.Now(),
		Containers:        members,
	}, nil
}

func (s *PointOfSaleService) promote(ctx context.Context, repos TransactionalRepositories, pos *catalog.PointOfSale, revision *catalog.PointOfSaleRevision) error {
	if err := repos.PointOfSaleRepo().InsertRevision(ctx, revision); err != nil {
		return fmt.Errorf("inserting point-of-sale revision: %w", err)
	}
	if err := pos.Promote(revision.Revision); err != nil {
		return err
	}
	if err := repos.PointOfSaleRepo().Save(ctx, pos); err != nil {
		return fmt.Errorf("saving point-of-sale head: %w", err)
	}
	if err := repos.PointOfSaleRepo().DeleteDraft(ctx, pos.ID); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("deleting approved draft: %w", err)
	}
	return nil
}
