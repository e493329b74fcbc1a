package shared

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Document number prefixes
const (
	PrefixInvoice = "INV"
	PrefixReturn  = "RET"
)

// SequenceRepository hands out per-tenant, per-year document sequence numbers.
// Next must run inside the caller's transaction so a rolled-back document
// never consumes a number.
type SequenceRepository interface {
	Next(ctx context.Context, tenantID uuid.UUID, prefix string, year int) (int64, error)
}

// FormatDocumentNumber renders "<prefix>-<year>-<seq>" with a 4-digit zero-padded sequence
func FormatDocumentNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}
