package catalog

import (
	"time"

	"github.com/bartab/backend/internal/domain/shared"
)

// Head is the single mutable record of a revisionable entity: a pointer to
// the latest approved revision plus the soft-deletion mark. Everything
// else about the entity lives in append-only revision rows. Moving
// CurrentRevision through Promote is the only legal way the pointer
// changes.
type Head struct {
	// CurrentRevision is nil until the first approval; a nil pointer
	// means the entity is not purchase-eligible
	CurrentRevision *int       `gorm:"column:current_revision"`
	DeletedAt       *time.Time `gorm:"column:deleted_at;index"`
}

// IsDeleted returns true if the entity is soft-deleted
func (h *Head) IsDeleted() bool {
	return h.DeletedAt != nil
}

// IsApproved returns true once at least one revision has been approved
func (h *Head) IsApproved() bool {
	return h.CurrentRevision != nil
}

// IsPurchaseEligible reports whether new transactions may pin this entity
func (h *Head) IsPurchaseEligible() bool {
	return h.IsApproved() && !h.IsDeleted()
}

// NextRevision returns the revision number the next approval would
// allocate. Numbers start at 1 and increase monotonically per entity.
func (h *Head) NextRevision() int {
	if h.CurrentRevision == nil {
		return 1
	}
	return *h.CurrentRevision + 1
}

// Promote moves the head pointer to the given revision. Only the
// immediately following number is accepted; anything else indicates a
// lost update and is an invariant violation.
func (h *Head) Promote(revision int) error {
	if revision != h.NextRevision() {
		return shared.NewInvariantViolation("Head.Promote",
			"revision numbers must be allocated without gaps or reuse")
	}
	h.CurrentRevision = &revision
	return nil
}

// MarkDeleted sets the soft-deletion timestamp
func (h *Head) MarkDeleted(now time.Time) error {
	if h.IsDeleted() {
		return shared.NewDomainError("ALREADY_DELETED", "Entity is already deleted")
	}
	h.DeletedAt = &now
	return nil
}

// ClearDeleted removes the soft-deletion mark. Any draft discarded at
// deletion time is not restored.
func (h *Head) ClearDeleted() error {
	if !h.IsDeleted() {
		return shared.NewDomainError("NOT_DELETED", "Entity is not deleted")
	}
	h.DeletedAt = nil
	return nil
}
