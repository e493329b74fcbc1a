// Package models contains GORM persistence models that map to database tables.
// Domain types carry no GORM tags; each model converts with ToDomain and a
// <Name>ModelFromDomain constructor, and repositories only ever query models.
//
// Files:
// - base.go: shared columns (id, tenant, version, timestamps)
// - inventory.go: inventory items and the stock movement ledger
// - invoice.go: invoices, invoice lines and payments
// - returns.go: sales returns and their items
// - partner.go, finance.go, notification.go, identity.go, sequence.go
package models
