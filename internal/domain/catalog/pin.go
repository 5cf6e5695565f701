package catalog

import (
	"fmt"

	"github.com/google/uuid"
)

// ProductPin is a value reference to an exact product revision. Pins fix
// the meaning of a ledger row forever: later catalog edits never change
// what was sold.
type ProductPin struct {
	ProductID uuid.UUID `json:"product_id"`
	Revision  int       `json:"revision"`
}

// String returns a compact textual form for error messages
func (p ProductPin) String() string {
	return fmt.Sprintf("product %s@%d", p.ProductID, p.Revision)
}

// ContainerPin is a value reference to an exact container revision
type ContainerPin struct {
	ContainerID uuid.UUID `json:"container_id"`
	Revision    int       `json:"revision"`
}

// String returns a compact textual form for error messages
func (p ContainerPin) String() string {
	return fmt.Sprintf("container %s@%d", p.ContainerID, p.Revision)
}

// PointOfSalePin is a value reference to an exact point-of-sale revision
type PointOfSalePin struct {
	PointOfSaleID uuid.UUID `json:"point_of_sale_id"`
	Revision      int       `json:"revision"`
}

// String returns a compact textual form for error messages
func (p PointOfSalePin) String() string {
	return fmt.Sprintf("point of sale %s@%d", p.PointOfSaleID, p.Revision)
}
