package persistence

import (
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/retailops/backoffice/internal/domain/inventory"
	"github.com/retailops/backoffice/internal/domain/shared"
)

var unsafeDSNChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// newTestDB opens a private in-memory SQLite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := unsafeDSNChars.ReplaceAllString(t.Name(), "_")
	db, err := NewSQLiteDatabase("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

// newMockDB creates a postgres-dialect gorm.DB backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

var testActor = shared.Actor{UserID: uuid.MustParse("00000000-0000-0000-0000-0000000000a1"), Username: "alice"}

// seedItem stores an item with the given quantity and reorder point
func seedItem(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string, qty, reorder int) *inventory.InventoryItem {
	t.Helper()
	item, err := inventory.NewInventoryItem(tenantID, inventory.ItemDetails{
		Name:         name,
		Category:     "Phones",
		Brand:        "Acme",
		Price:        decimal.NewFromInt(100),
		ReorderPoint: reorder,
	}, decimal.NewFromInt(60), qty, testActor.UserID)
	require.NoError(t, err)
	require.NoError(t, NewGormInventoryItemRepository(db).Create(t.Context(), item))
	return item
}
