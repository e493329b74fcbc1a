package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/retailops/backoffice/internal/domain/shared"
)

func TestGormSequenceRepository_Next(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormSequenceRepository(db)
	tenantA, tenantB := uuid.New(), uuid.New()

	for want := int64(1); want <= 3; want++ {
		got, err := repo.Next(ctx, tenantA, shared.PrefixInvoice, 2026)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	t.Run("counters are independent per tenant, prefix and year", func(t *testing.T) {
		got, err := repo.Next(ctx, tenantB, shared.PrefixInvoice, 2026)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)

		got, err = repo.Next(ctx, tenantA, shared.PrefixReturn, 2026)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)

		got, err = repo.Next(ctx, tenantA, shared.PrefixInvoice, 2027)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	})

	t.Run("rolled back allocation is given back", func(t *testing.T) {
		rollback := errors.New("abort")
		err := db.Transaction(func(tx *gorm.DB) error {
			got, err := NewGormSequenceRepository(tx).Next(ctx, tenantA, shared.PrefixInvoice, 2026)
			require.NoError(t, err)
			assert.Equal(t, int64(4), got)
			return rollback
		})
		require.ErrorIs(t, err, rollback)

		got, err := repo.Next(ctx, tenantA, shared.PrefixInvoice, 2026)
		require.NoError(t, err)
		assert.Equal(t, int64(4), got)
	})
}

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "INV-2026-0007", shared.FormatDocumentNumber(shared.PrefixInvoice, 2026, 7))
	assert.Equal(t, "RET-2026-12345", shared.FormatDocumentNumber(shared.PrefixReturn, 2026, 12345))
}
