package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backoffice/internal/domain/finance"
	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/notification"
	"github.com/retailops/backoffice/internal/domain/partner"
	"github.com/retailops/backoffice/internal/domain/shared"
)

func TestGormCustomerRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormCustomerRepository(db)
	tenantID := uuid.New()

	c, err := partner.NewCustomer(tenantID, partner.ContactInfo{Name: "Dana", Phone: "0199", Email: "dana@example.com"}, "prefers calls")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	t.Run("update bumps the version", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, tenantID, c.ID)
		require.NoError(t, err)
		stale := *loaded

		require.NoError(t, loaded.Update(partner.ContactInfo{Name: "Dana K", Phone: "0199"}, ""))
		require.NoError(t, repo.Save(ctx, loaded))

		require.NoError(t, stale.Update(partner.ContactInfo{Name: "Dana old", Phone: "0"}, ""))
		assert.True(t, errors.Is(repo.Save(ctx, &stale), shared.ErrConcurrencyConflict))
	})

	t.Run("search by name", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "dana k"
		rows, total, err := repo.FindAll(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, rows, 1)
		assert.Equal(t, "Dana K", rows[0].Name)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, tenantID, c.ID))
		assert.True(t, errors.Is(repo.Delete(ctx, tenantID, c.ID), shared.ErrNotFound))
		_, err := repo.FindByID(ctx, tenantID, c.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestGormSupplierRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormSupplierRepository(db)
	tenantID := uuid.New()

	s, err := partner.NewSupplier(tenantID, partner.ContactInfo{Name: "Parts Co", Phone: "0200"}, "Eve")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, s))

	loaded, err := repo.FindByID(ctx, tenantID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Eve", loaded.ContactPerson)

	_, err = repo.FindByID(ctx, uuid.New(), s.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	rows, total, err := repo.FindAll(ctx, tenantID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, rows, 1)
}

func TestGormExpenseRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormExpenseRepository(db)
	tenantID := uuid.New()
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	rent, err := finance.NewExpense(tenantID, finance.ExpenseCategoryRent, decimal.NewFromInt(900), day, "March rent", testActor)
	require.NoError(t, err)
	power, err := finance.NewExpense(tenantID, finance.ExpenseCategoryUtilities, decimal.NewFromInt(80), day.AddDate(0, 1, 0), "April power", testActor)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, rent))
	require.NoError(t, repo.Create(ctx, power))

	between, err := repo.FindBetween(ctx, tenantID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, between, 1)
	assert.Equal(t, rent.ID, between[0].ID)

	filter := shared.DefaultFilter()
	filter.Filters["category"] = string(finance.ExpenseCategoryUtilities)
	_, total, err := repo.FindAll(ctx, tenantID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	require.NoError(t, repo.Delete(ctx, tenantID, rent.ID))
	_, err = repo.FindByID(ctx, tenantID, rent.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormNotificationRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormNotificationRepository(db)
	tenantID, alice, bob := uuid.New(), uuid.New(), uuid.New()

	build := func(recipient uuid.UUID, title string) *notification.Notification {
		n, err := notification.New(tenantID, recipient, notification.KindLowStock, title, "below reorder point", "")
		require.NoError(t, err)
		return n
	}
	first := build(alice, "Low stock: Cable")
	require.NoError(t, repo.CreateMany(ctx, first, build(alice, "Low stock: Charger"), build(bob, "Low stock: Cable")))

	unread, err := repo.CountUnread(ctx, tenantID, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, repo.MarkRead(ctx, tenantID, alice, first.ID))
	require.NoError(t, repo.MarkRead(ctx, tenantID, alice, first.ID))
	assert.True(t, errors.Is(repo.MarkRead(ctx, tenantID, bob, first.ID), shared.ErrNotFound))

	filter := shared.DefaultFilter()
	filter.Filters["unread"] = true
	rows, total, err := repo.ListForRecipient(ctx, tenantID, alice, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Low stock: Charger", rows[0].Title)

	marked, err := repo.MarkAllRead(ctx, tenantID, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	unread, err = repo.CountUnread(ctx, tenantID, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestGormMembershipRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormMembershipRepository(db)
	tenantID := uuid.New()

	owner, err := identity.NewMembership(tenantID, uuid.New(), "olivia", "o@example.com", identity.RoleOwner)
	require.NoError(t, err)
	staff, err := identity.NewMembership(tenantID, uuid.New(), "sam", "", identity.RoleStaff)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, owner))
	require.NoError(t, repo.Save(ctx, staff))

	require.NoError(t, staff.ChangeRole(identity.RoleAdmin))
	require.NoError(t, repo.Save(ctx, staff))

	loaded, err := repo.FindByUser(ctx, tenantID, staff.UserID)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleAdmin, loaded.Role)

	privileged, err := repo.FindByRoles(ctx, tenantID, identity.RoleOwner, identity.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, privileged, 2)

	all, err := repo.FindByTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = repo.FindByUser(ctx, uuid.New(), staff.UserID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
