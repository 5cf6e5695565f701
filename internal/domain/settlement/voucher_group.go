package settlement

import (
	"time"

	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// VoucherGroup is a named batch of pre-funded accounts with an activation
// window. Members are created with the group and funded through one
// transfer each; every later adjustment is a corrective transfer of the
// balance delta, never a replacement, so the funding history stays
// auditable.
type VoucherGroup struct {
	shared.BaseAggregateRoot
	Name            string            `gorm:"type:varchar(64);not null"`
	ActiveStartDate time.Time         `gorm:"not null"`
	ActiveEndDate   time.Time         `gorm:"not null"`
	BalancePerUser  valueobject.Money `gorm:"type:bigint;not null"`
	// Amount is the member count; it may only grow
	Amount int `gorm:"not null"`

	Users []VoucherGroupUser `gorm:"foreignKey:VoucherGroupID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (VoucherGroup) TableName() string {
	return "voucher_groups"
}

// NewVoucherGroup creates a voucher group definition. Member accounts are
// created by the settlement service alongside it.
func NewVoucherGroup(name string, start, end time.Time, balance valueobject.Money, amount int) (*VoucherGroup, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Voucher group name cannot be empty")
	}
	if !end.After(start) {
		return nil, shared.NewDomainError("INVALID_WINDOW", "Active end date must be after the start date")
	}
	if amount <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Voucher group needs at least one member")
	}
	if balance.IsNegative() {
		return nil, shared.NewDomainError("INVALID_BALANCE", "Voucher balance cannot be negative")
	}
	return &VoucherGroup{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		ActiveStartDate:   start,
		ActiveEndDate:     end,
		BalancePerUser:    balance,
		Amount:            amount,
	}, nil
}

// Update applies new parameters. The member count may only grow: shrinking
// would orphan funded accounts.
func (g *VoucherGroup) Update(name string, start, end time.Time, balance valueobject.Money, amount int) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Voucher group name cannot be empty")
	}
	if !end.After(start) {
		return shared.NewDomainError("INVALID_WINDOW", "Active end date must be after the start date")
	}
	if amount < g.Amount {
		return shared.NewDomainError("INVALID_AMOUNT", "Voucher group member count cannot shrink")
	}
	if balance.IsNegative() {
		return shared.NewDomainError("INVALID_BALANCE", "Voucher balance cannot be negative")
	}
	g.Name = name
	g.ActiveStartDate = start
	g.ActiveEndDate = end
	g.BalancePerUser = balance
	g.Amount = amount
	g.UpdatedAt = time.Now()
	g.IncrementVersion()
	return nil
}

// IsActiveAt reports whether member accounts should be active at the
// given instant
func (g *VoucherGroup) IsActiveAt(now time.Time) bool {
	return !now.Before(g.ActiveStartDate) && now.Before(g.ActiveEndDate)
}

// AddUser registers a member account with the group
func (g *VoucherGroup) AddUser(userID uuid.UUID) {
	g.Users = append(g.Users, VoucherGroupUser{
		VoucherGroupID: g.ID,
		UserID:         userID,
	})
}

// UserIDs returns the member account IDs in creation order
func (g *VoucherGroup) UserIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(g.Users))
	for i, u := range g.Users {
		ids[i] = u.UserID
	}
	return ids
}

// VoucherGroupUser is the membership join between a group and one of its
// pre-funded accounts
type VoucherGroupUser struct {
	VoucherGroupID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt      time.Time
}

// TableName returns the table name for GORM
func (VoucherGroupUser) TableName() string {
	return "voucher_group_users"
}
