package catalog

import (
	"context"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// VatGroupService manages VAT groups. Groups are not revisioned; product
// approvals snapshot the percentage in force, so edits here never reprice
// history.
type VatGroupService struct {
	vatGroupRepo catalog.VatGroupRepository
}

// NewVatGroupService creates a new VatGroupService
func NewVatGroupService(vatGroupRepo catalog.VatGroupRepository) *VatGroupService {
	return &VatGroupService{vatGroupRepo: vatGroupRepo}
}

// Create creates a VAT group
func (s *VatGroupService) Create(ctx context.Context, req CreateVatGroupRequest) (*VatGroupResponse, error) {
	group, err := catalog.NewVatGroup(req.Name, req.Percentage)
	if err != nil {
		return nil, err
	}
	if err := s.vatGroupRepo.Save(ctx, group); err != nil {
		return nil, err
	}
	return toVatGroupResponse(group), nil
}

// Update changes the group for future approvals only
func (s *VatGroupService) Update(ctx context.Context, id uuid.UUID, req UpdateVatGroupRequest) (*VatGroupResponse, error) {
	group, err := s.vatGroupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group.Deleted {
		return nil, shared.NewDomainError("ENTITY_DELETED", "Deleted VAT groups cannot be updated")
	}
	if err := group.Update(req.Name, req.Percentage, req.Hidden); err != nil {
		return nil, err
	}
	if err := s.vatGroupRepo.Save(ctx, group); err != nil {
		return nil, err
	}
	return toVatGroupResponse(group), nil
}

// Delete soft-deletes the group; revision snapshots keep their percentage
func (s *VatGroupService) Delete(ctx context.Context, id uuid.UUID) error {
	group, err := s.vatGroupRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	group.SoftDelete()
	return s.vatGroupRepo.Save(ctx, group)
}

// Get returns one VAT group
func (s *VatGroupService) Get(ctx context.Context, id uuid.UUID) (*VatGroupResponse, error) {
	group, err := s.vatGroupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toVatGroupResponse(group), nil
}

// List returns a page of VAT groups
func (s *VatGroupService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[VatGroupResponse], error) {
	groups, err := s.vatGroupRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.vatGroupRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]VatGroupResponse, len(groups))
	for i := range groups {
		responses[i] = *toVatGroupResponse(&groups[i])
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}
