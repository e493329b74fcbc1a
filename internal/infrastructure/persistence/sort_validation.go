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

// InventoryItemSortFields contains allowed sort fields for inventory items
var InventoryItemSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"category":      true,
	"brand":         true,
	"quantity":      true,
	"price":         true,
	"cost_price":    true,
	"reorder_point": true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"number":        true,
	"customer_name": true,
	"status":        true,
	"total":         true,
	"amount_due":    true,
}

// SalesReturnSortFields contains allowed sort fields for sales returns
var SalesReturnSortFields = map[string]bool{
	"created_at": true,
	"number":     true,
	"status":     true,
	"decided_at": true,
}

// PartnerSortFields contains allowed sort fields for customers and suppliers
var PartnerSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"phone":      true,
	"email":      true,
}

// ExpenseSortFields contains allowed sort fields for expenses
var ExpenseSortFields = map[string]bool{
	"created_at": true,
	"date":       true,
	"amount":     true,
	"category":   true,
}
