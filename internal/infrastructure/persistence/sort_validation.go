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

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"lease_id":       true,
	"period_start":   true,
	"issue_date":     true,
	"due_date":       true,
	"status":         true,
	"total_amount":   true,
	"paid_amount":    true,
	"balance_amount": true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"invoice_id":   true,
	"mode":         true,
	"status":       true,
	"amount":       true,
	"payment_date": true,
	"payer_name":   true,
}

// ConfirmationSortFields contains allowed sort fields for payment confirmation requests
var ConfirmationSortFields = map[string]bool{
	"id":                   true,
	"created_at":           true,
	"updated_at":           true,
	"invoice_id":           true,
	"status":               true,
	"amount":               true,
	"claimed_payment_date": true,
	"submitted_by":         true,
}

// RecurringChargeSortFields contains allowed sort fields for recurring charges
var RecurringChargeSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"lease_id":    true,
	"description": true,
	"amount":      true,
	"frequency":   true,
	"start_date":  true,
	"end_date":    true,
	"is_active":   true,
}

// UtilityStatementSortFields contains allowed sort fields for utility statements
var UtilityStatementSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"lease_id":     true,
	"utility_type": true,
	"period_start": true,
	"total_amount": true,
	"revision":     true,
	"is_final":     true,
}

// OwnerSortFields contains allowed sort fields for owners
var OwnerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"email":      true,
}
