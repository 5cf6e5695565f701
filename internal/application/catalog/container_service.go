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

// ContainerService handles the container revision lifecycle. Approving a
// container resolves each listed product to that product's current
// approved revision; the resulting membership rows pin revisions by value
// and never move again.
type ContainerService struct {
	containerRepo catalog.ContainerRepository
	productRepo   catalog.ProductRepository
	scope         TransactionScope
}

// NewContainerService creates a new ContainerService
func NewContainerService(
	containerRepo catalog.ContainerRepository,
	productRepo catalog.ProductRepository,
	scope TransactionScope,
) *ContainerService {
	return &ContainerService{
		containerRepo: containerRepo,
		productRepo:   productRepo,
		scope:         scope,
	}
}

// Create makes a new container head together with its first draft
func (s *ContainerService) Create(ctx context.Context, req CreateContainerRequest) (*ContainerResponse, error) {
	container := catalog.NewContainer(req.OwnerID, req.Public)
	draft, err := catalog.NewContainerDraft(container.ID, req.Payload.Name, req.Payload.ProductIDs)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ContainerRepo().Save(ctx, container); err != nil {
			return fmt.Errorf("saving container head: %w", err)
		}
		if err := repos.ContainerRepo().SaveDraft(ctx, draft); err != nil {
			return fmt.Errorf("saving container draft: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toContainerResponse(container, nil, draft), nil
}

// CreateDraft stores the pending edit of a container, overwriting any
// previous draft. Product references are validated for existence only;
// revision resolution happens at approval.
func (s *ContainerService) CreateDraft(ctx context.Context, containerID uuid.UUID, payload ContainerPayload) (*ContainerResponse, error) {
	container, err := s.containerRepo.FindByID(ctx, containerID)
	if err != nil {
		return nil, err
	}
	if container.IsDeleted() {
		return nil, shared.NewDomainError("ENTITY_DELETED", "Deleted containers cannot take new drafts")
	}

	draft, err := catalog.NewContainerDraft(containerID, payload.Name, payload.ProductIDs)
	if err != nil {
		return nil, err
	}
	if err := s.containerRepo.SaveDraft(ctx, draft); err != nil {
		return nil, fmt.Errorf("saving container draft: %w", err)
	}

	current, err := s.currentRevision(ctx, container)
	if err != nil {
		return nil, err
	}
	return toContainerResponse(container, current, draft), nil
}

// Approve turns the pending draft into the next immutable revision. Every
// listed product must have a current approved revision and not be
// soft-deleted; the revision row pins those numbers by value.
func (s *ContainerService) Approve(ctx context.Context, containerID uuid.UUID) (*ContainerResponse, error) {
	var (
		container *catalog.Container
		revision  *catalog.ContainerRevision
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		container, err = repos.ContainerRepo().FindByID(ctx, containerID)
		if err != nil {
			return err
		}
		if container.IsDeleted() {
			return shared.NewDomainError("ENTITY_DELETED", "Deleted containers cannot be approved")
		}

		draft, err := repos.ContainerRepo().FindDraft(ctx, containerID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("NO_DRAFT", "Container has no pending draft to approve")
			}
			return err
		}

		revision, err = s.buildRevision(ctx, repos, container, draft)
		if err != nil {
			return err
		}
		return s.promote(ctx, repos, container, revision)
	})
	if err != nil {
		return nil, err
	}
	return toContainerResponse(container, revision, nil), nil
}

// DirectUpdate drafts and approves in one atomic step
func (s *ContainerService) DirectUpdate(ctx context.Context, containerID uuid.UUID, payload ContainerPayload) (*ContainerResponse, error) {
	var (
		container *catalog.Container
		revision  *catalog.ContainerRevision
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		container, err = repos.ContainerRepo().FindByID(ctx, containerID)
		if err != nil {
			return err
		}
		if container.IsDeleted() {
			return shared.NewDomainError("ENTITY_DELETED", "Deleted containers cannot be updated")
		}

		draft, err := catalog.NewContainerDraft(containerID, payload.Name, payload.ProductIDs)
		if err != nil {
			return err
		}
		revision, err = s.buildRevision(ctx, repos, container, draft)
		if err != nil {
			return err
		}
		return s.promote(ctx, repos, container, revision)
	})
	if err != nil {
		return nil, err
	}
	return toContainerResponse(container, revision, nil), nil
}

// Delete soft-deletes the container and discards any pending draft
func (s *ContainerService) Delete(ctx context.Context, containerID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		container, err := repos.ContainerRepo().FindByID(ctx, containerID)
		if err != nil {
			return err
		}
		if err := container.MarkDeleted(time.Now()); err != nil {
			return err
		}
		if err := repos.ContainerRepo().Save(ctx, container); err != nil {
			return fmt.Errorf("saving container head: %w", err)
		}
		if err := repos.ContainerRepo().DeleteDraft(ctx, containerID); err != nil && !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("discarding container draft: %w", err)
		}
		return nil
	})
}

// Restore clears the soft-deletion mark
func (s *ContainerService) Restore(ctx context.Context, containerID uuid.UUID) error {
	container, err := s.containerRepo.FindByID(ctx, containerID)
	if err != nil {
		return err
	}
	if err := container.ClearDeleted(); err != nil {
		return err
	}
	return s.containerRepo.Save(ctx, container)
}

// Get returns the container head with its current revision and pending
// draft
func (s *ContainerService) Get(ctx context.Context, containerID uuid.UUID) (*ContainerResponse, error) {
	container, err := s.containerRepo.FindByID(ctx, containerID)
	if err != nil {
		return nil, err
	}
	current, err := s.currentRevision(ctx, container)
	if err != nil {
		return nil, err
	}
	draft, err := s.containerRepo.FindDraft(ctx, containerID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return toContainerResponse(container, current, draft), nil
}

// List returns a page of container heads
func (s *ContainerService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[ContainerResponse], error) {
	return s.list(ctx, filter, s.containerRepo.FindAll)
}

// ListPurchaseEligible returns the heads new transactions may pin
func (s *ContainerService) ListPurchaseEligible(ctx context.Context, filter shared.Filter) (*shared.Paginated[ContainerResponse], error) {
	return s.list(ctx, filter, s.containerRepo.FindPurchaseEligible)
}

func (s *ContainerService) list(ctx context.Context, filter shared.Filter,
	find func(context.Context, shared.Filter) ([]catalog.Container, error)) (*shared.Paginated[ContainerResponse], error) {
	containers, err := find(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.containerRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]ContainerResponse, len(containers))
	for i := range containers {
		current, err := s.currentRevision(ctx, &containers[i])
		if err != nil {
			return nil, err
		}
		responses[i] = *toContainerResponse(&containers[i], current, nil)
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *ContainerService) currentRevision(ctx context.Context, container *catalog.Container) (*catalog.ContainerRevision, error) {
	if container.CurrentRevision == nil {
		return nil, nil
	}
	rev, err := s.containerRepo.FindRevision(ctx, catalog.ContainerPin{ContainerID: container.ID, Revision: *container.CurrentRevision})
	if err != nil {
		return nil, fmt.Errorf("loading current revision of container %s: %w", container.ID, err)
	}
	return rev, nil
}

// buildRevision resolves every draft product to its current approved
// revision. Products that were never approved or are soft-deleted make
// the approval fail with UNRESOLVED_DEPENDENCY.
func (s *ContainerService) buildRevision(ctx context.Context, repos TransactionalRepositories, container *catalog.Container, draft *catalog.ContainerDraft) (*catalog.ContainerRevision, error) {
	number := container.NextRevision()
	members := make([]catalog.ContainerRevisionProduct, 0, len(draft.ProductIDs))

	products, err := repos.ProductRepo().FindByIDs(ctx, draft.ProductIDs)
	if err != nil {
		return nil, fmt.Errorf("loading draft products: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for order, productID := range draft.ProductIDs {
		product, ok := byID[productID]
		if !ok {
			return nil, shared.NewDomainError("UNRESOLVED_DEPENDENCY",
				fmt.Sprintf("Product %s does not exist", productID))
		}
		if !product.IsPurchaseEligible() {
			return nil, shared.NewDomainError("UNRESOLVED_DEPENDENCY",
				fmt.Sprintf("Product %s has no approved revision or is deleted", productID))
		}
		members = append(members, catalog.ContainerRevisionProduct{
			ContainerID:     container.ID,
			Revision:        number,
			ProductID:       productID,
			ProductRevision: *product.CurrentRevision,
			DisplayOrder:    order,
		})
	}

	return &catalog.ContainerRevision{
		ContainerID: container.ID,
		Revision:    number,
		Name:        draft.Name,
		CreatedAt:   time.Now(),
		Products:    members,
	}, nil
}

func (s *ContainerService) promote(ctx context.Context, repos TransactionalRepositories, container *catalog.Container, revision *catalog.ContainerRevision) error {
	if err := repos.ContainerRepo().InsertRevision(ctx, revision); err != nil {
		return fmt.Errorf("inserting container revision: %w", err)
	}
	if err := container.Promote(revision.Revision); err != nil {
		return err
	}
	if err := repos.ContainerRepo().Save(ctx, container); err != nil {
		return fmt.Errorf("saving container head: %w", err)
	}
	if err := repos.ContainerRepo().DeleteDraft(ctx, container.ID); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("deleting approved draft: %w", err)
	}
	return nil
}
