package identity

import (
	"strings"
	"time"

	"github.com/bartab/backend/internal/domain/shared"
)

// UserType classifies an account by how it participates in the ledger
type UserType string

const (
	// UserTypeMember is a regular member buying at points of sale
	UserTypeMember UserType = "MEMBER"
	// UserTypeOrgan is an organizational account that receives
	// sub-transaction value, e.g. the bar committee owning a point of sale
	UserTypeOrgan UserType = "ORGAN"
	// UserTypeVoucher is a pre-funded account created through a voucher group
	UserTypeVoucher UserType = "VOUCHER"
	// UserTypeInvoice is an account settled periodically through invoices
	UserTypeInvoice UserType = "INVOICE"
)

// IsValid returns true for a known user type
func (t UserType) IsValid() bool {
	switch t {
	case UserTypeMember, UserTypeOrgan, UserTypeVoucher, UserTypeInvoice:
		return true
	}
	return false
}

// User is an account that can be party to ledger movements. Users are
// soft-deleted only: historical transactions and transfers keep referring
// to them after deletion, but deleted or inactive users cannot take part
// in new ledger writes.
type User struct {
	shared.BaseAggregateRoot
	// Seq is a database-assigned monotonic sequence used as the
	// insertion-order tiebreak for equal timestamps
	Seq             int64    `gorm:"autoIncrement;uniqueIndex"`
	FirstName       string   `gorm:"type:varchar(64);not null"`
	LastName        string   `gorm:"type:varchar(64)"`
	Type            UserType `gorm:"type:varchar(16);not null;index"`
	Active          bool     `gorm:"not null;default:false"`
	Deleted         bool     `gorm:"not null;default:false;index"`
	VoucherCodeHash string   `gorm:"type:varchar(128)"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user account
func NewUser(firstName, lastName string, userType UserType, active bool) (*User, error) {
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	if !userType.IsValid() {
		return nil, shared.NewDomainError("INVALID_USER_TYPE", "Unknown user type: "+string(userType))
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         firstName,
		LastName:          strings.TrimSpace(lastName),
		Type:              userType,
		Active:            active,
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// Rename updates the user's name
func (u *User) Rename(firstName, lastName string) error {
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	u.FirstName = firstName
	u.LastName = strings.TrimSpace(lastName)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// SetActive switches the account's activation state
func (u *User) SetActive(active bool) {
	if u.Active == active {
		return
	}
	u.Active = active
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// SetVoucherCodeHash stores the bcrypt hash of a voucher redemption code.
// The plaintext code is issued exactly once at creation time.
func (u *User) SetVoucherCodeHash(hash string) error {
	if u.Type != UserTypeVoucher {
		return shared.NewDomainError("INVALID_USER_TYPE", "Only voucher accounts carry a redemption code")
	}
	u.VoucherCodeHash = hash
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// SoftDelete marks the account as deleted. History referencing the user
// stays valid.
func (u *User) SoftDelete() {
	if u.Deleted {
		return
	}
	u.Deleted = true
	u.Active = false
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	u.AddDomainEvent(NewUserDeletedEvent(u))
}

// Restore clears the deletion mark. The account stays inactive until
// explicitly reactivated.
func (u *User) Restore() {
	if !u.Deleted {
		return
	}
	u.Deleted = false
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// CanParticipateInLedger reports whether new ledger rows may reference
// this account
func (u *User) CanParticipateInLedger() bool {
	return !u.Deleted && u.Active
}

// FullName returns the display name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
