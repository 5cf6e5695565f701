package catalog

import (
	"context"
	"fmt"

	"github.com/bartab/backend/internal/domain/shared"
)

// Pin violation reasons. The ledger surfaces these verbatim so a client
// learns exactly which link of the pinned graph is broken.
const (
	ReasonPosNotFound           = "POS_NOT_FOUND"
	ReasonRevisionDeleted       = "REVISION_DELETED"
	ReasonContainerNotInPos     = "CONTAINER_NOT_IN_POS"
	ReasonProductNotInContainer = "PRODUCT_NOT_IN_CONTAINER"
)

// PinViolation is a structured validation failure for a pinned catalog
// reference. It unwraps to a DomainError so the interface layer can map
// it onto a 400-class response without losing the reason code.
type PinViolation struct {
	Reason      string
	PointOfSale PointOfSalePin
	Container   *ContainerPin
	Product     *ProductPin

	err *shared.DomainError
}

// Error implements the error interface
func (v *PinViolation) Error() string {
	return v.err.Message
}

// Unwrap exposes the underlying DomainError
func (v *PinViolation) Unwrap() error {
	return v.err
}

// Code returns the stable reason code
func (v *PinViolation) Code() string {
	return v.Reason
}

func newPinViolation(reason, message string, pos PointOfSalePin, container *ContainerPin, product *ProductPin) *PinViolation {
	return &PinViolation{
		Reason:      reason,
		PointOfSale: pos,
		Container:   container,
		Product:     product,
		err:         shared.NewDomainError(reason, message),
	}
}

// NewPosNotFoundViolation reports that the pinned point-of-sale revision
// does not exist
func NewPosNotFoundViolation(pos PointOfSalePin) *PinViolation {
	return newPinViolation(ReasonPosNotFound,
		fmt.Sprintf("%s does not exist", pos), pos, nil, nil)
}

// Snapshot is the fully loaded subgraph of one point-of-sale revision:
// its container revisions, their product revisions and the head deletion
// state as of load time. It is a pure value - validation has no side
// effects and may be called repeatedly within a single pass.
type Snapshot struct {
	PointOfSale *PointOfSaleRevision
	// PointOfSaleDeleted is the head's soft-deletion state as of load.
	// Deletion after the fact never invalidates recorded purchases, but
	// it blocks new ones.
	PointOfSaleDeleted bool

	containers map[ContainerPin]*ContainerRevision
	products   map[ProductPin]*ProductRevision
}

// NewSnapshot assembles a snapshot from loaded revision rows
func NewSnapshot(pos *PointOfSaleRevision, posDeleted bool, containers []*ContainerRevision, products []*ProductRevision) *Snapshot {
	s := &Snapshot{
		PointOfSale:        pos,
		PointOfSaleDeleted: posDeleted,
		containers:         make(map[ContainerPin]*ContainerRevision, len(containers)),
		products:           make(map[ProductPin]*ProductRevision, len(products)),
	}
	for _, c := range containers {
		s.containers[c.Pin()] = c
	}
	for _, p := range products {
		s.products[p.Pin()] = p
	}
	return s
}

// ValidatePointOfSale checks the snapshot is usable for a new purchase
func (s *Snapshot) ValidatePointOfSale() error {
	if s.PointOfSale == nil {
		return NewPosNotFoundViolation(PointOfSalePin{})
	}
	if s.PointOfSaleDeleted {
		return newPinViolation(ReasonRevisionDeleted,
			fmt.Sprintf("%s belongs to a deleted point of sale", s.PointOfSale.Pin()),
			s.PointOfSale.Pin(), nil, nil)
	}
	return nil
}

// ValidateContainer checks the pinned container revision is a member of
// the point-of-sale revision and returns it
func (s *Snapshot) ValidateContainer(pin ContainerPin) (*ContainerRevision, error) {
	if !s.PointOfSale.ContainsContainer(pin) {
		return nil, newPinViolation(ReasonContainerNotInPos,
			fmt.Sprintf("%s is not part of %s", pin, s.PointOfSale.Pin()),
			s.PointOfSale.Pin(), &pin, nil)
	}
	rev, ok := s.containers[pin]
	if !ok {
		// Membership without a loaded revision row means the snapshot
		// loader or the revision store broke the append-only contract.
		return nil, shared.NewInvariantViolation("Snapshot.ValidateContainer",
			fmt.Sprintf("%s is referenced but its revision row is missing", pin))
	}
	return rev, nil
}

// ValidateProduct checks the pinned product revision is a member of the
// pinned container revision and returns it
func (s *Snapshot) ValidateProduct(containerPin ContainerPin, productPin ProductPin) (*ProductRevision, error) {
	container, err := s.ValidateContainer(containerPin)
	if err != nil {
		return nil, err
	}
	if !container.ContainsProduct(productPin) {
		return nil, newPinViolation(ReasonProductNotInContainer,
			fmt.Sprintf("%s is not part of %s", productPin, containerPin),
			s.PointOfSale.Pin(), &containerPin, &productPin)
	}
	rev, ok := s.products[productPin]
	if !ok {
		return nil, shared.NewInvariantViolation("Snapshot.ValidateProduct",
			fmt.Sprintf("%s is referenced but its revision row is missing", productPin))
	}
	return rev, nil
}

// SnapshotRepository loads the pinned revision subgraph of a point of sale
type SnapshotRepository interface {
	// LoadSnapshot loads the snapshot for the given point-of-sale pin.
	// A missing revision yields a PinViolation with reason POS_NOT_FOUND.
	LoadSnapshot(ctx context.Context, pin PointOfSalePin) (*Snapshot, error)
}
