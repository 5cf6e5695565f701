package ledger

import (
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Event types for ledger aggregates. Balance caches subscribe to these to
// invalidate the affected users.
const (
	TransactionCreatedEventType = "ledger.transaction.created"
	TransactionUpdatedEventType = "ledger.transaction.updated"
	TransactionDeletedEventType = "ledger.transaction.deleted"
	TransferCreatedEventType    = "ledger.transfer.created"
)

// TransactionCreatedEvent is raised when a purchase tree is persisted
type TransactionCreatedEvent struct {
	shared.BaseDomainEvent
	// AffectedUsers are all parties whose derived balance moved
	AffectedUsers []uuid.UUID `json:"affected_users"`
}

// NewTransactionCreatedEvent creates a new TransactionCreatedEvent
func NewTransactionCreatedEvent(t *Transaction) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(TransactionCreatedEventType, "Transaction", t.ID),
		AffectedUsers:   t.affectedUsers(),
	}
}

// TransactionUpdatedEvent is raised when a purchase tree is replaced
type TransactionUpdatedEvent struct {
	shared.BaseDomainEvent
	AffectedUsers []uuid.UUID `json:"affected_users"`
}

// NewTransactionUpdatedEvent creates a new TransactionUpdatedEvent
func NewTransactionUpdatedEvent(t *Transaction) *TransactionUpdatedEvent {
	return &TransactionUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(TransactionUpdatedEventType, "Transaction", t.ID),
		AffectedUsers:   t.affectedUsers(),
	}
}

// TransactionDeletedEvent is raised when a purchase tree is removed
type TransactionDeletedEvent struct {
	shared.BaseDomainEvent
	AffectedUsers []uuid.UUID `json:"affected_users"`
}

// NewTransactionDeletedEvent creates a new TransactionDeletedEvent
func NewTransactionDeletedEvent(t *Transaction) *TransactionDeletedEvent {
	return &TransactionDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(TransactionDeletedEventType, "Transaction", t.ID),
		AffectedUsers:   t.affectedUsers(),
	}
}

// TransferCreatedEvent is raised when a transfer is appended
type TransferCreatedEvent struct {
	shared.BaseDomainEvent
	AffectedUsers []uuid.UUID `json:"affected_users"`
}

// NewTransferCreatedEvent creates a new TransferCreatedEvent
func NewTransferCreatedEvent(t *Transfer) *TransferCreatedEvent {
	users := make([]uuid.UUID, 0, 2)
	if t.FromID != nil {
		users = append(users, *t.FromID)
	}
	if t.ToID != nil {
		users = append(users, *t.ToID)
	}
	return &TransferCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(TransferCreatedEventType, "Transfer", t.ID),
		AffectedUsers:   users,
	}
}

// affectedUsers collects the payer and each distinct receiving user
func (t *Transaction) affectedUsers() []uuid.UUID {
	seen := map[uuid.UUID]struct{}{t.FromID: {}}
	users := []uuid.UUID{t.FromID}
	for i := range t.SubTransactions {
		to := t.SubTransactions[i].ToID
		if _, ok := seen[to]; !ok {
			seen[to] = struct{}{}
			users = append(users, to)
		}
	}
	return users
}
