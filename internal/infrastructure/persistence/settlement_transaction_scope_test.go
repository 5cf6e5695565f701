package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDebtorLockKey(t *testing.T) {
	t.Run("is stable for the same debtor", func(t *testing.T) {
		debtorID := uuid.New()

		assert.Equal(t, debtorLockKey(debtorID), debtorLockKey(debtorID))
	})

	t.Run("differs across debtors", func(t *testing.T) {
		assert.NotEqual(t, debtorLockKey(uuid.New()), debtorLockKey(uuid.New()))
	})
}
