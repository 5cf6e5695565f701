package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormSnapshotRepository_LoadSnapshot(t *testing.T) {
	t.Run("reports a missing point-of-sale revision as a pin violation", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormSnapshotRepository(db)

		pin := catalog.PointOfSalePin{PointOfSaleID: uuid.New(), Revision: 4}
		mock.ExpectQuery(`SELECT \* FROM "point_of_sale_revisions" WHERE point_of_sale_id = \$1 AND revision = \$2`).
			WillReturnError(gorm.ErrRecordNotFound)

		snapshot, err := repo.LoadSnapshot(context.Background(), pin)

		assert.Nil(t, snapshot)
		var violation *catalog.PinViolation
		require.True(t, errors.As(err, &violation))
		assert.Equal(t, catalog.ReasonPosNotFound, violation.Reason)
		assert.Equal(t, pin, violation.PointOfSale)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
