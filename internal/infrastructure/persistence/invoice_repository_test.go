package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bartab/backend/internal/domain/settlement"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestGormInvoiceRepository_LatestCreationTime(t *testing.T) {
	t.Run("returns the newest non-deleted invoice time", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(db)

		debtorID := uuid.New()
		createdAt := time.Now().Add(-24 * time.Hour)

		mock.ExpectQuery(`SELECT "created_at" FROM "invoices" WHERE to_id = \$1 AND current_state <> \$2 ORDER BY`).
			WithArgs(debtorID, settlement.InvoiceStateDeleted, 1).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

		since, err := repo.LatestCreationTime(context.Background(), debtorID)

		assert.NoError(t, err)
		assert.WithinDuration(t, createdAt, since, time.Second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("translates a debtor without invoices to ErrNotFound", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(db)

		mock.ExpectQuery(`SELECT "created_at" FROM "invoices" WHERE`).
			WillReturnError(gorm.ErrRecordNotFound)

		since, err := repo.LatestCreationTime(context.Background(), uuid.New())

		assert.True(t, since.IsZero())
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_FindByID(t *testing.T) {
	t.Run("translates a missing invoice to ErrNotFound", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = \$1`).
			WillReturnError(gorm.ErrRecordNotFound)

		invoice, err := repo.FindByID(context.Background(), uuid.New())

		assert.Nil(t, invoice)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
