package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	catalogapp "github.com/bartab/backend/internal/application/catalog"
	identityapp "github.com/bartab/backend/internal/application/identity"
	ledgerapp "github.com/bartab/backend/internal/application/ledger"
	settlementapp "github.com/bartab/backend/internal/application/settlement"
	"github.com/bartab/backend/internal/domain/identity"
	"github.com/bartab/backend/internal/domain/settlement"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/bartab/backend/internal/infrastructure/cache"
	"github.com/bartab/backend/internal/infrastructure/event"
	"github.com/bartab/backend/internal/infrastructure/persistence"
)

// stubRenderer avoids a Chrome dependency in integration tests
type stubRenderer struct{}

func (stubRenderer) Render(context.Context, *settlement.Invoice, *identity.User) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

type services struct {
	users        *identityapp.UserService
	products     *catalogapp.ProductService
	containers   *catalogapp.ContainerService
	pointsOfSale *catalogapp.PointOfSaleService
	vatGroups    *catalogapp.VatGroupService
	categories   *catalogapp.CategoryService
	transactions *ledgerapp.TransactionService
	transfers    *ledgerapp.TransferService
	balances     *ledgerapp.BalanceService
	invoices     *settlementapp.InvoiceService
}

func newServices(db *gorm.DB) services {
	log := zap.NewNop()
	currency := valueobject.EUR

	userRepo := persistence.NewGormUserRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	containerRepo := persistence.NewGormContainerRepository(db)
	posRepo := persistence.NewGormPointOfSaleRepository(db)
	vatGroupRepo := persistence.NewGormVatGroupRepository(db)
	categoryRepo := persistence.NewGormCategoryRepository(db)
	snapshotRepo := persistence.NewGormSnapshotRepository(db)
	transactionRepo := persistence.NewGormTransactionRepository(db)
	transferRepo := persistence.NewGormTransferRepository(db)
	balanceRepo := persistence.NewGormBalanceRepository(db, currency)
	invoiceRepo := persistence.NewGormInvoiceRepository(db)

	catalogScope := persistence.NewGormCatalogTransactionScope(db)
	ledgerScope := persistence.NewGormLedgerTransactionScope(db, currency)
	settlementScope := persistence.NewGormSettlementTransactionScope(db)

	balanceCache := cache.NewInMemoryBalanceCache(time.Minute)
	eventBus := event.NewInMemoryEventBus(log)
	invalidation := cache.NewBalanceInvalidationHandler(balanceCache, log)
	eventBus.Subscribe(invalidation, invalidation.EventTypes()...)

	return services{
		users:        identityapp.NewUserService(userRepo, eventBus, log),
		products:     catalogapp.NewProductService(productRepo, vatGroupRepo, categoryRepo, catalogScope),
		containers:   catalogapp.NewContainerService(containerRepo, productRepo, catalogScope),
		pointsOfSale: catalogapp.NewPointOfSaleService(posRepo, containerRepo, catalogScope),
		vatGroups:    catalogapp.NewVatGroupService(vatGroupRepo),
		categories:   catalogapp.NewCategoryService(categoryRepo),
		transactions: ledgerapp.NewTransactionService(transactionRepo, snapshotRepo, userRepo, ledgerScope, eventBus, valueobject.NewMoneyEUR(0), log),
		transfers:    ledgerapp.NewTransferService(transferRepo, userRepo, ledgerScope, eventBus, log),
		balances:     ledgerapp.NewBalanceService(balanceRepo, balanceCache, log),
		invoices:     settlementapp.NewInvoiceService(invoiceRepo, userRepo, productRepo, settlementScope, eventBus, stubRenderer{}, log),
	}
}

// TestPurchaseSettlementFlow walks the whole lifecycle: catalog setup
// with approved revisions, a funded purchase, the derived balance, an
// invoice freezing the rows and its deletion restoring every balance.
func TestPurchaseSettlementFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb.DB)
	ctx := context.Background()

	// accounts
	buyer, err := svc.users.CreateUser(ctx, identityapp.CreateUserRequest{
		FirstName: "Ada", LastName: "Lovelace", Type: identity.UserTypeMember, Active: true,
	})
	require.NoError(t, err)
	seller, err := svc.users.CreateUser(ctx, identityapp.CreateUserRequest{
		FirstName: "Bar", Type: identity.UserTypeOrgan, Active: true,
	})
	require.NoError(t, err)

	// catalog
	vat, err := svc.vatGroups.Create(ctx, catalogapp.CreateVatGroupRequest{
		Name: "High", Percentage: decimal.NewFromFloat(21.0),
	})
	require.NoError(t, err)
	category, err := svc.categories.Create(ctx, catalogapp.CategoryRequest{Name: "Drinks"})
	require.NoError(t, err)

	product, err := svc.products.Create(ctx, catalogapp.CreateProductRequest{
		OwnerID: seller.ID,
		Payload: catalogapp.ProductPayload{
			Name: "Pils", PriceInclVat: 250, VatGroupID: vat.ID, CategoryID: category.ID,
		},
	})
	require.NoError(t, err)
	product, err = svc.products.Approve(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, product.CurrentRevision)

	container, err := svc.containers.Create(ctx, catalogapp.CreateContainerRequest{
		OwnerID: seller.ID,
		Public:  true,
		Payload: catalogapp.ContainerPayload{Name: "Taps", ProductIDs: []uuid.UUID{product.ID}},
	})
	require.NoError(t, err)
	container, err = svc.containers.Approve(ctx, container.ID)
	require.NoError(t, err)
	require.NotNil(t, container.CurrentRevision)

	pos, err := svc.pointsOfSale.Create(ctx, catalogapp.CreatePointOfSaleRequest{
		OwnerID: seller.ID,
		Payload: catalogapp.PointOfSalePayload{Name: "Main bar", ContainerIDs: []uuid.UUID{container.ID}},
	})
	require.NoError(t, err)
	pos, err = svc.pointsOfSale.Approve(ctx, pos.ID)
	require.NoError(t, err)
	require.NotNil(t, pos.CurrentRevision)

	// fund the buyer
	_, err = svc.transfers.Create(ctx, ledgerapp.CreateTransferRequest{
		ToID: &buyer.ID, Amount: 5000, Description: "Deposit",
	})
	require.NoError(t, err)

	// purchase two beers
	txnReq := ledgerapp.CreateTransactionRequest{
		FromID:            buyer.ID,
		CreatedByID:       buyer.ID,
		PointOfSaleID:     pos.ID,
		PosRevision:       *pos.CurrentRevision,
		TotalPriceInclVat: 500,
		SubTransactions: []ledgerapp.SubTransactionRequest{{
			ToID:              seller.ID,
			ContainerID:       container.ID,
			ContainerRevision: *container.CurrentRevision,
			TotalPriceInclVat: 500,
			Rows: []ledgerapp.RowRequest{{
				ProductID:         product.ID,
				ProductRevision:   *product.CurrentRevision,
				Amount:            2,
				TotalPriceInclVat: 500,
			}},
		}},
	}

	verify, err := svc.transactions.Verify(ctx, txnReq)
	require.NoError(t, err)
	assert.True(t, verify.Valid)

	txn, err := svc.transactions.Create(ctx, txnReq)
	require.NoError(t, err)

	balance, err := svc.balances.Balance(ctx, buyer.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(4500), balance.Balance)

	// freeze the purchase into an invoice; settlement credits the debtor
	invoice, err := svc.invoices.CreateInvoice(ctx, settlementapp.CreateInvoiceRequest{
		ToID:           buyer.ID,
		CreatedByID:    seller.ID,
		Addressee:      "Ada Lovelace",
		Reference:      "INV-2026-001",
		TransactionIDs: []uuid.UUID{txn.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), invoice.Total)
	require.Len(t, invoice.Entries, 1)
	assert.Equal(t, 2, invoice.Entries[0].Amount)

	balance, err = svc.balances.Balance(ctx, buyer.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), balance.Balance)

	// an invoiced transaction cannot be deleted
	err = svc.transactions.Delete(ctx, txn.ID)
	require.Error(t, err)

	// a second invoice finds nothing left to settle
	_, err = svc.invoices.CreateInvoice(ctx, settlementapp.CreateInvoiceRequest{
		ToID:           buyer.ID,
		CreatedByID:    seller.ID,
		Addressee:      "Ada Lovelace",
		Reference:      "INV-2026-002",
		TransactionIDs: []uuid.UUID{txn.ID},
	})
	require.Error(t, err)

	// deleting the invoice reverses settlement and releases the rows
	_, err = svc.invoices.UpdateInvoiceState(ctx, invoice.ID, settlementapp.UpdateInvoiceStateRequest{
		State: settlement.InvoiceStateDeleted, ChangedBy: seller.ID,
	})
	require.NoError(t, err)

	balance, err = svc.balances.Balance(ctx, buyer.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(4500), balance.Balance)

	err = svc.transactions.Delete(ctx, txn.ID)
	require.NoError(t, err)

	balance, err = svc.balances.Balance(ctx, buyer.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), balance.Balance)
}
