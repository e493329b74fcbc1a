//go:build integration

package persistence

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/migration"
)

// newPostgresDB starts a throwaway PostgreSQL container and applies the embedded schema
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("backoffice_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(20)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return db
}

func TestAdjustQuantity_ConcurrentSalesNeverOversell(t *testing.T) {
	db := newPostgresDB(t)
	repo := NewGormInventoryItemRepository(db)
	tenantID := uuid.New()
	item := seedItem(t, db, tenantID, "Limited Edition", 10, 0)

	const buyers = 25
	var (
		wg        sync.WaitGroup
		sold      atomic.Int32
		shortfall atomic.Int32
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AdjustQuantity(context.Background(), tenantID, item.ID, -1)
			switch {
			case err == nil:
				sold.Add(1)
			case errors.Is(err, shared.ErrInsufficientStock):
				shortfall.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), sold.Load())
	assert.Equal(t, int32(buyers-10), shortfall.Load())

	reloaded, err := repo.FindByID(context.Background(), tenantID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Quantity)
}

func TestSequenceNext_ConcurrentAllocationsAreUnique(t *testing.T) {
	db := newPostgresDB(t)
	tenantID := uuid.New()

	const writers = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Transaction(func(tx *gorm.DB) error {
				n, err := NewGormSequenceRepository(tx).Next(context.Background(), tenantID, shared.PrefixInvoice, 2026)
				if err != nil {
					return err
				}
				mu.Lock()
				defer mu.Unlock()
				if seen[n] {
					t.Errorf("number %d issued twice", n)
				}
				seen[n] = true
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, seen, writers)
	for n := int64(1); n <= writers; n++ {
		assert.True(t, seen[n], "missing number %d", n)
	}
}
