package ledger

import (
	"testing"

	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransfer(t *testing.T) {
	from := uuid.New()
	to := uuid.New()

	t.Run("internal transfer", func(t *testing.T) {
		tr, err := NewTransfer(&from, &to, valueobject.NewMoneyEUR(100), "settlement")
		require.NoError(t, err)
		assert.False(t, tr.IsExternal())
		assert.True(t, tr.SignedExternalAmount().IsZero())
	})

	t.Run("external deposit", func(t *testing.T) {
		tr, err := NewTransfer(nil, &to, valueobject.NewMoneyEUR(100), "top-up")
		require.NoError(t, err)
		assert.True(t, tr.IsExternal())
		assert.Equal(t, int64(100), tr.SignedExternalAmount().Amount())
	})

	t.Run("external withdrawal", func(t *testing.T) {
		tr, err := NewTransfer(&from, nil, valueobject.NewMoneyEUR(100), "payout")
		require.NoError(t, err)
		assert.Equal(t, int64(-100), tr.SignedExternalAmount().Amount())
	})

	t.Run("rejects transfer with no parties", func(t *testing.T) {
		_, err := NewTransfer(nil, nil, valueobject.NewMoneyEUR(100), "")
		assert.Error(t, err)
	})

	t.Run("rejects self transfer", func(t *testing.T) {
		_, err := NewTransfer(&from, &from, valueobject.NewMoneyEUR(100), "")
		assert.Error(t, err)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := NewTransfer(&from, &to, valueobject.ZeroEUR(), "")
		assert.Error(t, err)
		_, err = NewTransfer(&from, &to, valueobject.NewMoneyEUR(-5), "")
		assert.Error(t, err)
	})
}

func TestTransferReversal(t *testing.T) {
	from := uuid.New()
	to := uuid.New()
	invoiceID := uuid.New()

	original, err := NewTransfer(&from, &to, valueobject.NewMoneyEUR(450), "invoice settlement")
	require.NoError(t, err)
	original.InvoiceID = &invoiceID

	reversal := original.Reversal("invoice deleted")
	assert.Equal(t, original.ToID, reversal.FromID)
	assert.Equal(t, original.FromID, reversal.ToID)
	assert.True(t, reversal.Amount.Equals(original.Amount))
	assert.Equal(t, &invoiceID, reversal.InvoiceID)
	assert.NotEqual(t, original.ID, reversal.ID)

	// reversal of an external transfer flips the external sign
	deposit, err := NewTransfer(nil, &to, valueobject.NewMoneyEUR(100), "top-up")
	require.NoError(t, err)
	sum := deposit.SignedExternalAmount().MustAdd(deposit.Reversal("undo").SignedExternalAmount())
	assert.True(t, sum.IsZero())
}
