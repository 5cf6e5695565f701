package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/identity"
	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ledgerFixture struct {
	transactionRepo *MockTransactionRepository
	transferRepo    *MockTransferRepository
	balanceRepo     *MockBalanceRepository
	snapshotRepo    *MockSnapshotRepository
	userRepo        *MockUserRepository
	eventBus        *MockEventBus
	service         *TransactionService
}

func newLedgerFixture(floor int64) *ledgerFixture {
	f := &ledgerFixture{
		transactionRepo: new(MockTransactionRepository),
		transferRepo:    new(MockTransferRepository),
		balanceRepo:     new(MockBalanceRepository),
		snapshotRepo:    new(MockSnapshotRepository),
		userRepo:        new(MockUserRepository),
		eventBus:        new(MockEventBus),
	}
	scope := NewNoOpTransactionScope(f.transactionRepo, f.transferRepo, f.balanceRepo)
	f.service = NewTransactionService(
		f.transactionRepo, f.snapshotRepo, f.userRepo, scope, f.eventBus,
		valueobject.NewMoneyEUR(floor), zap.NewNop(),
	)
	return f
}

// purchaseWorld is a fully wired pinned catalog graph plus the users and
// request that buy from it
type purchaseWorld struct {
	buyer, cashier, seller *identity.User
	posPin                 catalog.PointOfSalePin
	containerPin           catalog.ContainerPin
	productPin             catalog.ProductPin
	snapshot               *catalog.Snapshot
	request                CreateTransactionRequest
}

func newPurchaseWorld(t *testing.T) *purchaseWorld {
	t.Helper()

	buyer := activeUser(t, identity.UserTypeMember)
	cashier := activeUser(t, identity.UserTypeMember)
	seller := activeUser(t, identity.UserTypeOrgan)

	productRev := &catalog.ProductRevision{
		ProductID:     uuid.New(),
		Revision:      2,
		Name:          "Pale Ale",
		PriceInclVat:  valueobject.NewMoneyEUR(150),
		VatGroupID:    uuid.New(),
		VatPercentage: decimal.NewFromInt(21),
		CategoryID:    uuid.New(),
	}
	containerRev := &catalog.ContainerRevision{
		ContainerID: uuid.New(),
		Revision:    1,
		Name:        "Tap list",
		Products: []catalog.ContainerRevisionProduct{{
			ContainerID:     uuid.New(),
			Revision:        1,
			ProductID:       productRev.ProductID,
			ProductRevision: productRev.Revision,
		}},
	}
	posRev := &catalog.PointOfSaleRevision{
		PointOfSaleID: uuid.New(),
		Revision:      3,
		Name:          "Main bar",
		Containers: []catalog.PointOfSaleRevisionContainer{{
			PointOfSaleID:     uuid.New(),
			Revision:          3,
			ContainerID:       containerRev.ContainerID,
			ContainerRevision: containerRev.Revision,
		}},
	}

	snapshot := catalog.NewSnapshot(posRev, false,
		[]*catalog.ContainerRevision{containerRev},
		[]*catalog.ProductRevision{productRev})

	request := CreateTransactionRequest{
		FromID:            buyer.ID,
		CreatedByID:       cashier.ID,
		PointOfSaleID:     posRev.PointOfSaleID,
		PosRevision:       posRev.Revision,
		TotalPriceInclVat: 450,
		SubTransactions: []SubTransactionRequest{{
			ToID:              seller.ID,
			ContainerID:       containerRev.ContainerID,
			ContainerRevision: containerRev.Revision,
			TotalPriceInclVat: 450,
			Rows: []RowRequest{{
				ProductID:         productRev.ProductID,
				ProductRevision:   productRev.Revision,
				Amount:            3,
				TotalPriceInclVat: 450,
			}},
		}},
	}

	return &purchaseWorld{
		buyer:        buyer,
		cashier:      cashier,
		seller:       seller,
		posPin:       posRev.Pin(),
		containerPin: containerRev.Pin(),
		productPin:   productRev.Pin(),
		snapshot:     snapshot,
		request:      request,
	}
}

func activeUser(t *testing.T, userType identity.UserType) *identity.User {
	t.Helper()
	user, err := identity.NewUser("Test", string(userType), userType, true)
	require.NoError(t, err)
	return user
}

func (w *purchaseWorld) expectLookups(f *ledgerFixture) {
	f.userRepo.On("FindByIDs", mock.Anything, mock.Anything).
		Return([]identity.User{*w.buyer, *w.cashier, *w.seller}, nil)
	f.snapshotRepo.On("LoadSnapshot", mock.Anything, w.posPin).Return(w.snapshot, nil)
}

func assertLedgerCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestTransactionServiceVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("well-formed purchase passes", func(t *testing.T) {
		f := newLedgerFixture(0)
		w := newPurchaseWorld(t)
		w.expectLookups(f)

		resp, err := f.service.Verify(ctx, w.request)
		require.NoError(t, err)
		assert.True(t, resp.Valid)
	})

	t.Run("one minor unit of tampering is rejected", func(t *testing.T) {
		for _, delta := range []int64{-1, 1} {
			f := newLedgerFixture(0)
			w := newPurchaseWorld(t)
			w.expectLookups(f)
			w.request.TotalPriceInclVat += delta
			w.request.SubTransactions[0].TotalPriceInclVat += delta
			w.request.SubTransactions[0].Rows[0].TotalPriceInclVat += delta

			_, err := f.service.Verify(ctx, w.request)
			assertLedgerCode(t, err, "PRICE_MISMATCH")
		}
	})

	t.Run("totals must add up exactly", func(t *testing.T) {
		f := newLedgerFixture(0)
		w := newPurchaseWorld(t)
		w.request.TotalPriceInclVat += 1

		_, err := f.service.Verify(ctx, w.request)
		assertLedgerCode(t, err, "TOTAL_MISMATCH")
	})

	t.Run("container outside the pinned pos revision", func(t *testing.T) {
		f := newLedgerFixture(0)
		w := newPurchaseWorld(t)
		w.expectLookups(f)
		w.request.SubTransactions[0].ContainerRevision = 99
		w.request.SubTransactions[0].TotalPriceInclVat = 450

		_, err := f.service.Verify(ctx, w.request)
		require.Error(t, err)
		var violation *catalog.PinViolation
		require.True(t, errors.As(err, &violation))
		assert.Equal(t, catalog.ReasonContainerNotInPos, violation.Reason)
	})

	t.Run("product outside the pinned container revision", func(t *testing.T) {
		f := newLedgerFixture(0)
		w := newPurchaseWorld(t)
		w.expectLookups(f)
		w.request.SubTransactions[0].Rows[0].ProductRevision = 1

		_, err := f.service.Verify(ctx, w.request)
		require.Error(t, err)
		var violation *catalog.PinViolation
		require.True(t, errors.As(err, &violation))
		assert.Equal(t, catalog.ReasonProductNotInContainer, violation.Reason)
	})

	t.Run("deleted pos blocks new purchases", func(t *testing.T) {
		f := newLedgerFixture(0)
		w := newPurchaseWorld(t)
		deletedSnapshot := catalog.NewSnapshot(w.snapshot.PointOfSale, true, nil, nil)
		f.userRepo.On("FindByIDs", mock.Anything, mock.Anything).
			Return([]identity.User{*w.buyer, *w.cashier, *w.seller}, nil)
		f.snapshotRepo.On("LoadSnapshot", mock.Anything, w.posPin).Return(deletedSnapshot, nil)

		_, err := f.service.Verify(ctx, w.request)
		var violation *catalog.PinViolation
		require.True(t, errors.As(err, &violation))
		assert.Equal(t, catalog.ReasonRevisionDeleted, violation.Reason)
	})

	t.Run("inactive payer is rejected", func(t *testing.T) {
		f := newLedgerFixture(0)
		w := newPurchaseWorld(t)
		w.buyer.SetActive(false)
		f.userRepo.On("FindByIDs", mock.Anything, mock.Anything).
			Return([]identity.User{*w.buyer, *w.cashier, *w.seller}, nil)

		_, err := f.service.Verify(ctx, w.request)
		assertLedgerCode(t, err, "INVALID_PARTY")
	})

	t.Run("non-positive amounts are rejected", func(t *testing.T) {
		f := newLedgerFixture(0)
		w := newPurchaseWorld(t)
		w.request.SubTransactions[0].Rows[0].Amount = 0

		_, err := f.service.Verify(ctx, w.request)
		assertLedgerCode(t, err, "INVALID_AMOUNT")
	})
}

func TestTransactionServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("records the tree and publishes the event", func(t *testing.T) {
		f := newLedgerFixture(0)
		w := newPurchaseWorld(t)
		w.expectLookups(f)
		f.balanceRepo.On("BalanceAsOf", mock.Anything, w.buyer.ID, time.Time{}).
			Return(valueobject.NewMoneyEUR(1000), nil)
		f.transactionRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).Return(nil)
		f.eventBus.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.Create(ctx, w.request)

		require.NoError(t, err)
		assert.Equal(t, int64(450), resp.TotalPriceInclVat)
		f.transactionRepo.AssertExpectations(t)
		f.eventBus.AssertExpectations(t)
	})

	t.Run("floor blocks overspending", func(t *testing.T) {
		f := newLedgerFixture(0)
		w := newPurchaseWorld(t)
		w.expectLookups(f)
		f.balanceRepo.On("BalanceAsOf", mock.Anything, w.buyer.ID, time.Time{}).
			Return(valueobject.NewMoneyEUR(449), nil)

		_, err := f.service.Create(ctx, w.request)
		assertLedgerCode(t, err, "INSUFFICIENT_BALANCE")
		f.transactionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("negative floor extends credit", func(t *testing.T) {
		f := newLedgerFixture(-500)
		w := newPurchaseWorld(t)
		w.expectLookups(f)
		f.balanceRepo.On("BalanceAsOf", mock.Anything, w.buyer.ID, time.Time{}).
			Return(valueobject.NewMoneyEUR(0), nil)
		f.transactionRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).Return(nil)
		f.eventBus.On("Publish", mock.Anything, mock.Anything).Return(nil)

		_, err := f.service.Create(ctx, w.request)
		require.NoError(t, err)
	})

	t.Run("spending exactly to the floor is allowed", func(t *testing.T) {
		f := newLedgerFixture(0)
		w := newPurchaseWorld(t)
		w.expectLookups(f)
		f.balanceRepo.On("BalanceAsOf", mock.Anything, w.buyer.ID, time.Time{}).
			Return(valueobject.NewMoneyEUR(450), nil)
		f.transactionRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).Return(nil)
		f.eventBus.On("Publish", mock.Anything, mock.Anything).Return(nil)

		_, err := f.service.Create(ctx, w.request)
		require.NoError(t, err)
	})
}

func invoicedTree(t *testing.T) *ledger.Transaction {
	t.Helper()
	invoiceID := uuid.New()
	return &ledger.Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FromID:            uuid.New(),
		CreatedByID:       uuid.New(),
		TotalPriceInclVat: valueobject.NewMoneyEUR(150),
		SubTransactions: []ledger.SubTransaction{{
			BaseEntity:        shared.NewBaseEntity(),
			ToID:              uuid.New(),
			TotalPriceInclVat: valueobject.NewMoneyEUR(150),
			Rows: []ledger.SubTransactionRow{{
				BaseEntity:        shared.NewBaseEntity(),
				Amount:            1,
				TotalPriceInclVat: valueobject.NewMoneyEUR(150),
				InvoiceID:         &invoiceID,
			}},
		}},
	}
}

func TestTransactionServiceFrozenRows(t *testing.T) {
	ctx := context.Background()

	t.Run("update of an invoiced tree is rejected", func(t *testing.T) {
		f := newLedgerFixture(0)
		tree := invoicedTree(t)
		f.transactionRepo.On("FindByID", ctx, tree.ID).Return(tree, nil)

		_, err := f.service.Update(ctx, tree.ID, CreateTransactionRequest{})
		assertLedgerCode(t, err, "ROW_INVOICED")
	})

	t.Run("delete of an invoiced tree is rejected", func(t *testing.T) {
		f := newLedgerFixture(0)
		tree := invoicedTree(t)
		f.transactionRepo.On("FindByID", ctx, tree.ID).Return(tree, nil)

		err := f.service.Delete(ctx, tree.ID)
		assertLedgerCode(t, err, "ROW_INVOICED")
		f.transactionRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
