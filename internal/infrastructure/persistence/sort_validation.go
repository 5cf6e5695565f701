package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"seq":        true,
	"first_name": true,
	"last_name":  true,
	"type":       true,
	"active":     true,
}

// ProductSortFields contains allowed sort fields for product heads
var ProductSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"current_revision": true,
	"owner_id":         true,
}

// ContainerSortFields contains allowed sort fields for container heads
var ContainerSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"current_revision": true,
	"owner_id":         true,
	"public":           true,
}

// PointOfSaleSortFields contains allowed sort fields for point-of-sale heads
var PointOfSaleSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"current_revision": true,
	"owner_id":         true,
}

// VatGroupSortFields contains allowed sort fields for VAT groups
var VatGroupSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"percentage": true,
}

// CategorySortFields contains allowed sort fields for product categories
var CategorySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
}

// TransactionSortFields contains allowed sort fields for transactions
var TransactionSortFields = map[string]bool{
	"id":                   true,
	"created_at":           true,
	"seq":                  true,
	"from_id":              true,
	"total_price_incl_vat": true,
}

// TransferSortFields contains allowed sort fields for transfers
var TransferSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"seq":        true,
	"amount":     true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"reference":     true,
	"addressee":     true,
	"current_state": true,
	"total":         true,
}

// VoucherGroupSortFields contains allowed sort fields for voucher groups
var VoucherGroupSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"name":              true,
	"active_start_date": true,
	"active_end_date":   true,
}
