package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ProductService handles the product revision lifecycle: head creation,
// draft editing, approval into immutable revisions, soft deletion.
type ProductService struct {
	productRepo  catalog.ProductRepository
	vatGroupRepo catalog.VatGroupRepository
	categoryRepo catalog.CategoryRepository
	scope        TransactionScope
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	vatGroupRepo catalog.VatGroupRepository,
	categoryRepo catalog.CategoryRepository,
	scope TransactionScope,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		vatGroupRepo: vatGroupRepo,
		categoryRepo: categoryRepo,
		scope:        scope,
	}
}

// Create makes a new product head together with its first draft. The
// product is not purchase-eligible until that draft is approved.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product := catalog.NewProduct(req.OwnerID)
	draft, err := s.buildDraft(ctx, product.ID, req.Payload)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ProductRepo().Save(ctx, product); err != nil {
			return fmt.Errorf("saving product head: %w", err)
		}
		if err := repos.ProductRepo().SaveDraft(ctx, draft); err != nil {
			return fmt.Errorf("saving product draft: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, nil, draft), nil
}

// CreateDraft stores the pending edit of a product, overwriting any
// previous draft
func (s *ProductService) CreateDraft(ctx context.Context, productID uuid.UUID, payload ProductPayload) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.IsDeleted() {
		return nil, shared.NewDomainError("ENTITY_DELETED", "Deleted products cannot take new drafts")
	}

	draft, err := s.buildDraft(ctx, productID, payload)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveDraft(ctx, draft); err != nil {
		return nil, fmt.Errorf("saving product draft: %w", err)
	}

	current, err := s.currentRevision(ctx, product)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, current, draft), nil
}

// Approve turns the pending draft into the next immutable revision and
// moves the head pointer, all atomically. This is the only path that
// changes CurrentRevision.
func (s *ProductService) Approve(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	var (
		product  *catalog.Product
		revision *catalog.ProductRevision
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if product.IsDeleted() {
			return shared.NewDomainError("ENTITY_DELETED", "Deleted products cannot be approved")
		}

		draft, err := repos.ProductRepo().FindDraft(ctx, productID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("NO_DRAFT", "Product has no pending draft to approve")
			}
			return err
		}

		revision, err = s.buildRevision(ctx, repos, product, draft)
		if err != nil {
			return err
		}
		return s.promote(ctx, repos, product, revision)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, revision, nil), nil
}

// DirectUpdate drafts and approves in one atomic step
func (s *ProductService) DirectUpdate(ctx context.Context, productID uuid.UUID, payload ProductPayload) (*ProductResponse, error) {
	var (
		product  *catalog.Product
		revision *catalog.ProductRevision
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if product.IsDeleted() {
			return shared.NewDomainError("ENTITY_DELETED", "Deleted products cannot be updated")
		}

		draft, err := catalog.NewProductDraft(productID, payload.Name, payloadPrice(payload), payload.VatGroupID, payload.CategoryID)
		if err != nil {
			return err
		}
		revision, err = s.buildRevision(ctx, repos, product, draft)
		if err != nil {
			return err
		}
		return s.promote(ctx, repos, product, revision)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, revision, nil), nil
}

// Delete soft-deletes the product and discards any pending draft.
// Existing revisions and the transactions pinning them are untouched.
func (s *ProductService) Delete(ctx context.Context, productID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if err := product.MarkDeleted(time.Now()); err != nil {
			return err
		}
		if err := repos.ProductRepo().Save(ctx, product); err != nil {
			return fmt.Errorf("saving product head: %w", err)
		}
		if err := repos.ProductRepo().DeleteDraft(ctx, productID); err != nil && !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("discarding product draft: %w", err)
		}
		return nil
	})
}

// Restore clears the soft-deletion mark. Drafts discarded at deletion
// time stay discarded.
func (s *ProductService) Restore(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if err := product.ClearDeleted(); err != nil {
		return err
	}
	return s.productRepo.Save(ctx, product)
}

// SetImage stores the object-storage key of the product image
func (s *ProductService) SetImage(ctx context.Context, productID uuid.UUID, imageKey string) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	product.SetImageKey(imageKey)
	return s.productRepo.Save(ctx, product)
}

// Get returns the product head with its current revision and pending draft
func (s *ProductService) Get(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	current, err := s.currentRevision(ctx, product)
	if err != nil {
		return nil, err
	}
	draft, err := s.productRepo.FindDraft(ctx, productID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return toProductResponse(product, current, draft), nil
}

// GetRevisions lists all revisions of a product, oldest first
func (s *ProductService) GetRevisions(ctx context.Context, productID uuid.UUID) ([]ProductRevisionResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	revisions, err := s.productRepo.FindRevisions(ctx, productID)
	if err != nil {
		return nil, err
	}
	responses := make([]ProductRevisionResponse, len(revisions))
	for i := range revisions {
		responses[i] = *toProductRevisionResponse(&revisions[i])
	}
	return responses, nil
}

// List returns a page of product heads
func (s *ProductService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[ProductResponse], error) {
	return s.list(ctx, filter, s.productRepo.FindAll)
}

// ListPurchaseEligible returns the heads that new transactions may pin:
// approved at least once and not soft-deleted
func (s *ProductService) ListPurchaseEligible(ctx context.Context, filter shared.Filter) (*shared.Paginated[ProductResponse], error) {
	return s.list(ctx, filter, s.productRepo.FindPurchaseEligible)
}

func (s *ProductService) list(ctx context.Context, filter shared.Filter,
	find func(context.Context, shared.Filter) ([]catalog.Product, error)) (*shared.Paginated[ProductResponse], error) {
	products, err := find(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		current, err := s.currentRevision(ctx, &products[i])
		if err != nil {
			return nil, err
		}
		responses[i] = *toProductResponse(&products[i], current, nil)
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *ProductService) currentRevision(ctx context.Context, product *catalog.Product) (*catalog.ProductRevision, error) {
	if product.CurrentRevision == nil {
		return nil, nil
	}
	rev, err := s.productRepo.FindRevision(ctx, catalog.ProductPin{ProductID: product.ID, Revision: *product.CurrentRevision})
	if err != nil {
		return nil, fmt.Errorf("loading current revision of product %s: %w", product.ID, err)
	}
	return rev, nil
}

// buildDraft validates the payload references and constructs the draft
func (s *ProductService) buildDraft(ctx context.Context, productID uuid.UUID, payload ProductPayload) (*catalog.ProductDraft, error) {
	if _, err := s.resolveVatGroup(ctx, s.vatGroupRepo, payload.VatGroupID); err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.FindByID(ctx, payload.CategoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return nil, err
	}
	return catalog.NewProductDraft(productID, payload.Name, payloadPrice(payload), payload.VatGroupID, payload.CategoryID)
}

// buildRevision freezes a draft into the next revision row, snapshotting
// the VAT percentage in force
func (s *ProductService) buildRevision(ctx context.Context, repos TransactionalRepositories, product *catalog.Product, draft *catalog.ProductDraft) (*catalog.ProductRevision, error) {
	vatGroup, err := s.resolveVatGroup(ctx, repos.VatGroupRepo(), draft.VatGroupID)
	if err != nil {
		return nil, err
	}
	if _, err := repos.CategoryRepo().FindByID(ctx, draft.CategoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("UNRESOLVED_DEPENDENCY", "Category of the draft no longer exists")
		}
		return nil, err
	}
	return &catalog.ProductRevision{
		ProductID:     product.ID,
		Revision:      product.NextRevision(),
		Name:          draft.Name,
		PriceInclVat:  draft.PriceInclVat,
		VatGroupID:    vatGroup.ID,
		VatPercentage: vatGroup.Percentage,
		CategoryID:    draft.CategoryID,
		CreatedAt:     time.Now(),
	}, nil
}

func (s *ProductService) promote(ctx context.Context, repos TransactionalRepositories, product *catalog.Product, revision *catalog.ProductRevision) error {
	if err := repos.ProductRepo().InsertRevision(ctx, revision); err != nil {
		return fmt.Errorf("inserting product revision: %w", err)
	}
	if err := product.Promote(revision.Revision); err != nil {
		return err
	}
	if err := repos.ProductRepo().Save(ctx, product); err != nil {
		return fmt.Errorf("saving product head: %w", err)
	}
	if err := repos.ProductRepo().DeleteDraft(ctx, product.ID); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("deleting approved draft: %w", err)
	}
	return nil
}

func (s *ProductService) resolveVatGroup(ctx context.Context, repo catalog.VatGroupRepository, id uuid.UUID) (*catalog.VatGroup, error) {
	vatGroup, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("UNRESOLVED_DEPENDENCY", "VAT group not found")
		}
		return nil, err
	}
	if vatGroup.Deleted {
		return nil, shared.NewDomainError("UNRESOLVED_DEPENDENCY", "VAT group is deleted")
	}
	return vatGroup, nil
}

func payloadPrice(payload ProductPayload) valueobject.Money {
	currency := valueobject.Currency(payload.Currency)
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	money, _ := valueobject.NewMoney(payload.PriceInclVat, currency)
	return money
}
