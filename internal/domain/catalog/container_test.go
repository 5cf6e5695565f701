package catalog

import (
	"testing"

	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContainerDraft(t *testing.T) {
	t.Run("keeps product order", func(t *testing.T) {
		ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
		draft, err := NewContainerDraft(uuid.New(), "Tap list", ids)
		require.NoError(t, err)
		assert.Equal(t, UUIDList(ids), draft.ProductIDs)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewContainerDraft(uuid.New(), "", nil)
		assert.Error(t, err)
	})

	t.Run("rejects duplicate products", func(t *testing.T) {
		id := uuid.New()
		_, err := NewContainerDraft(uuid.New(), "Tap list", []uuid.UUID{id, id})
		assert.Error(t, err)
	})
}

func TestNewProductDraft(t *testing.T) {
	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProductDraft(uuid.New(), "Pale Ale", valueobject.NewMoneyEUR(-1), uuid.New(), uuid.New())
		assert.Error(t, err)
	})

	t.Run("zero price is allowed", func(t *testing.T) {
		_, err := NewProductDraft(uuid.New(), "Tap water", valueobject.ZeroEUR(), uuid.New(), uuid.New())
		assert.NoError(t, err)
	})
}

func TestNewPointOfSaleDraft(t *testing.T) {
	t.Run("rejects duplicate containers", func(t *testing.T) {
		id := uuid.New()
		_, err := NewPointOfSaleDraft(uuid.New(), "Main bar", []uuid.UUID{id, id}, true)
		assert.Error(t, err)
	})
}

func TestUUIDListRoundTrip(t *testing.T) {
	ids := UUIDList{uuid.New(), uuid.New()}
	value, err := ids.Value()
	require.NoError(t, err)

	var scanned UUIDList
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, ids, scanned)

	var empty UUIDList
	require.NoError(t, empty.Scan(nil))
	assert.Empty(t, empty)
}
