package persistence

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
)

func setupRevisionTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalog.ProductRevision{},
		&catalog.ContainerRevision{},
		&catalog.ContainerRevisionProduct{},
		&catalog.PointOfSaleRevision{},
		&catalog.PointOfSaleRevisionContainer{},
	))
	return db
}

func requireInvariantViolation(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var violation *shared.InvariantViolation
	require.True(t, errors.As(err, &violation), "expected an invariant violation, got %v", err)
}

// Revision rows are append-only: once persisted, any UPDATE against them
// must be rejected before it reaches the database.
func TestRevisionRowsAreAppendOnly(t *testing.T) {
	db := setupRevisionTestDB(t)

	t.Run("product revision", func(t *testing.T) {
		revision := &catalog.ProductRevision{
			ProductID:     uuid.New(),
			Revision:      1,
			Name:          "Pils",
			PriceInclVat:  valueobject.NewMoneyEUR(250),
			VatGroupID:    uuid.New(),
			VatPercentage: decimal.NewFromInt(21),
			CategoryID:    uuid.New(),
			CreatedAt:     time.Now(),
		}
		require.NoError(t, db.Create(revision).Error)

		requireInvariantViolation(t, db.Model(revision).Update("name", "Tripel").Error)
		requireInvariantViolation(t, db.Save(revision).Error)

		var persisted catalog.ProductRevision
		require.NoError(t, db.First(&persisted, "product_id = ? AND revision = ?",
			revision.ProductID, 1).Error)
		assert.Equal(t, "Pils", persisted.Name)
	})

	t.Run("container revision", func(t *testing.T) {
		revision := &catalog.ContainerRevision{
			ContainerID: uuid.New(),
			Revision:    1,
			Name:        "Taps",
			CreatedAt:   time.Now(),
		}
		require.NoError(t, db.Create(revision).Error)

		requireInvariantViolation(t, db.Model(revision).Update("name", "Fridge").Error)
	})

	t.Run("container revision membership", func(t *testing.T) {
		parent := &catalog.ContainerRevision{
			ContainerID: uuid.New(),
			Revision:    1,
			Name:        "Shelf",
			CreatedAt:   time.Now(),
		}
		require.NoError(t, db.Create(parent).Error)

		membership := &catalog.ContainerRevisionProduct{
			ContainerID:     parent.ContainerID,
			Revision:        parent.Revision,
			ProductID:       uuid.New(),
			ProductRevision: 1,
			DisplayOrder:    0,
		}
		require.NoError(t, db.Create(membership).Error)

		requireInvariantViolation(t, db.Model(membership).Update("product_revision", 2).Error)
	})

	t.Run("point of sale revision", func(t *testing.T) {
		revision := &catalog.PointOfSaleRevision{
			PointOfSaleID:     uuid.New(),
			Revision:          1,
			Name:              "Main bar",
			UseAuthentication: true,
			CreatedAt:         time.Now(),
		}
		require.NoError(t, db.Create(revision).Error)

		requireInvariantViolation(t, db.Model(revision).Update("use_authentication", false).Error)
	})

	t.Run("point of sale revision membership", func(t *testing.T) {
		parent := &catalog.PointOfSaleRevision{
			PointOfSaleID:     uuid.New(),
			Revision:          1,
			Name:              "Terrace",
			UseAuthentication: true,
			CreatedAt:         time.Now(),
		}
		require.NoError(t, db.Create(parent).Error)

		membership := &catalog.PointOfSaleRevisionContainer{
			PointOfSaleID:     parent.PointOfSaleID,
			Revision:          parent.Revision,
			ContainerID:       uuid.New(),
			ContainerRevision: 1,
		}
		require.NoError(t, db.Create(membership).Error)

		requireInvariantViolation(t, db.Model(membership).Update("container_revision", 2).Error)
	})
}
