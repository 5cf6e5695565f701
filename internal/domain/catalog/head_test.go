package catalog

import (
	"testing"
	"time"

	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadPromotion(t *testing.T) {
	t.Run("revisions start at one and increase without gaps", func(t *testing.T) {
		product := NewProduct(uuid.New())
		assert.False(t, product.IsPurchaseEligible())
		assert.Equal(t, 1, product.NextRevision())

		for want := 1; want <= 3; want++ {
			require.NoError(t, product.Promote(want))
			require.NotNil(t, product.CurrentRevision)
			assert.Equal(t, want, *product.CurrentRevision)
			assert.Equal(t, want+1, product.NextRevision())
		}
		assert.True(t, product.IsPurchaseEligible())
	})

	t.Run("skipping a number is an invariant violation", func(t *testing.T) {
		product := NewProduct(uuid.New())
		err := product.Promote(2)

		var violation *shared.InvariantViolation
		require.ErrorAs(t, err, &violation)
	})

	t.Run("reusing a number is an invariant violation", func(t *testing.T) {
		product := NewProduct(uuid.New())
		require.NoError(t, product.Promote(1))

		var violation *shared.InvariantViolation
		require.ErrorAs(t, product.Promote(1), &violation)
	})
}

func TestHeadSoftDeletion(t *testing.T) {
	t.Run("deletion blocks purchase eligibility but keeps the pointer", func(t *testing.T) {
		container := NewContainer(uuid.New(), true)
		require.NoError(t, container.Promote(1))
		require.NoError(t, container.MarkDeleted(time.Now()))

		assert.True(t, container.IsDeleted())
		assert.False(t, container.IsPurchaseEligible())
		require.NotNil(t, container.CurrentRevision)
		assert.Equal(t, 1, *container.CurrentRevision)
	})

	t.Run("double delete is rejected", func(t *testing.T) {
		pos := NewPointOfSale(uuid.New(), true)
		require.NoError(t, pos.MarkDeleted(time.Now()))
		assert.Error(t, pos.MarkDeleted(time.Now()))
	})

	t.Run("restore clears the mark only", func(t *testing.T) {
		pos := NewPointOfSale(uuid.New(), true)
		require.NoError(t, pos.MarkDeleted(time.Now()))
		require.NoError(t, pos.ClearDeleted())
		assert.False(t, pos.IsDeleted())
		assert.Error(t, pos.ClearDeleted())
	})
}
