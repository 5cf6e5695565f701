package catalog

import (
	"errors"
	"testing"

	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSnapshot assembles a POS X rev 1 containing container C rev 1
// containing product P rev 1 (priced 100 minor units). P also has a newer
// rev 2 (priced 150) which is deliberately NOT part of C rev 1.
func buildSnapshot(t *testing.T) (*Snapshot, ContainerPin, ProductPin, ProductPin) {
	t.Helper()

	productID := uuid.New()
	containerID := uuid.New()
	posID := uuid.New()

	p1 := &ProductRevision{
		ProductID:     productID,
		Revision:      1,
		Name:          "Pale Ale",
		PriceInclVat:  valueobject.NewMoneyEUR(100),
		VatGroupID:    uuid.New(),
		VatPercentage: decimal.NewFromInt(21),
	}
	p2 := &ProductRevision{
		ProductID:     productID,
		Revision:      2,
		Name:          "Pale Ale",
		PriceInclVat:  valueobject.NewMoneyEUR(150),
		VatGroupID:    p1.VatGroupID,
		VatPercentage: decimal.NewFromInt(21),
	}
	c1 := &ContainerRevision{
		ContainerID: containerID,
		Revision:    1,
		Name:        "Tap list",
		Products: []ContainerRevisionProduct{
			{ContainerID: containerID, Revision: 1, ProductID: productID, ProductRevision: 1, DisplayOrder: 0},
		},
	}
	pos := &PointOfSaleRevision{
		PointOfSaleID: posID,
		Revision:      1,
		Name:          "Main bar",
		Containers: []PointOfSaleRevisionContainer{
			{PointOfSaleID: posID, Revision: 1, ContainerID: containerID, ContainerRevision: 1},
		},
	}

	snapshot := NewSnapshot(pos, false, []*ContainerRevision{c1}, []*ProductRevision{p1, p2})
	return snapshot, c1.Pin(), p1.Pin(), p2.Pin()
}

func TestSnapshotValidatePointOfSale(t *testing.T) {
	t.Run("live snapshot passes", func(t *testing.T) {
		snapshot, _, _, _ := buildSnapshot(t)
		assert.NoError(t, snapshot.ValidatePointOfSale())
	})

	t.Run("deleted head blocks new purchases", func(t *testing.T) {
		snapshot, _, _, _ := buildSnapshot(t)
		snapshot.PointOfSaleDeleted = true

		err := snapshot.ValidatePointOfSale()
		var violation *PinViolation
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, ReasonRevisionDeleted, violation.Reason)
	})
}

func TestSnapshotValidateContainer(t *testing.T) {
	t.Run("member container resolves", func(t *testing.T) {
		snapshot, containerPin, _, _ := buildSnapshot(t)
		rev, err := snapshot.ValidateContainer(containerPin)
		require.NoError(t, err)
		assert.Equal(t, containerPin, rev.Pin())
	})

	t.Run("foreign container is rejected", func(t *testing.T) {
		snapshot, _, _, _ := buildSnapshot(t)
		_, err := snapshot.ValidateContainer(ContainerPin{ContainerID: uuid.New(), Revision: 1})

		var violation *PinViolation
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, ReasonContainerNotInPos, violation.Reason)
	})

	t.Run("wrong revision of a member container is rejected", func(t *testing.T) {
		snapshot, containerPin, _, _ := buildSnapshot(t)
		stale := ContainerPin{ContainerID: containerPin.ContainerID, Revision: 2}

		_, err := snapshot.ValidateContainer(stale)
		var violation *PinViolation
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, ReasonContainerNotInPos, violation.Reason)
	})
}

func TestSnapshotValidateProduct(t *testing.T) {
	t.Run("pinned member product resolves with its pinned price", func(t *testing.T) {
		snapshot, containerPin, p1, _ := buildSnapshot(t)
		rev, err := snapshot.ValidateProduct(containerPin, p1)
		require.NoError(t, err)
		assert.Equal(t, int64(100), rev.PriceInclVat.Amount())
	})

	t.Run("newer revision outside the pinned container is rejected", func(t *testing.T) {
		// P rev 2 exists and is the product's current revision, but
		// C rev 1 only contains P rev 1.
		snapshot, containerPin, _, p2 := buildSnapshot(t)
		_, err := snapshot.ValidateProduct(containerPin, p2)

		var violation *PinViolation
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, ReasonProductNotInContainer, violation.Reason)
	})

	t.Run("unknown product is rejected", func(t *testing.T) {
		snapshot, containerPin, _, _ := buildSnapshot(t)
		_, err := snapshot.ValidateProduct(containerPin, ProductPin{ProductID: uuid.New(), Revision: 1})

		var violation *PinViolation
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, ReasonProductNotInContainer, violation.Reason)
	})
}

func TestPinViolationUnwrapsToDomainError(t *testing.T) {
	snapshot, _, _, _ := buildSnapshot(t)
	_, err := snapshot.ValidateContainer(ContainerPin{ContainerID: uuid.New(), Revision: 1})

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, ReasonContainerNotInPos, domainErr.Code)
}

func TestSnapshotIsReusableAcrossCalls(t *testing.T) {
	snapshot, containerPin, p1, _ := buildSnapshot(t)
	for range 3 {
		_, err := snapshot.ValidateProduct(containerPin, p1)
		require.NoError(t, err)
	}
}
