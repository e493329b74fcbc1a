package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/retailops/backoffice/internal/domain/finance"
	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/invoice"
	"github.com/retailops/backoffice/internal/domain/returns"
	"github.com/retailops/backoffice/internal/domain/shared"
)

// Cache stores report results under tenant-versioned keys
type Cache interface {
	BuildKey(ctx context.Context, tenantID uuid.UUID, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error
	Bump(ctx context.Context, tenantID uuid.UUID) error
}

// Storage receives exported report files
type Storage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// Service builds financial reports from invoices, returns and expenses
type Service struct {
	invoices invoice.InvoiceRepository
	returns  returns.SalesReturnRepository
	expenses finance.ExpenseRepository
	cache    Cache
	storage  Storage
	group    singleflight.Group
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new report Service. cache and storage may be nil.
func NewService(invoices invoice.InvoiceRepository, rets returns.SalesReturnRepository, expenses finance.ExpenseRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		invoices: invoices,
		returns:  rets,
		expenses: expenses,
		logger:   logger,
		now:      time.Now,
	}
}

// SetCache enables result caching
func (s *Service) SetCache(cache Cache) {
	s.cache = cache
}

// SetStorage enables report export
func (s *Service) SetStorage(storage Storage) {
	s.storage = storage
}

// ProfitAndLoss returns the statement for [from, to)
func (s *Service) ProfitAndLoss(ctx context.Context, p identity.Principal, filter PeriodFilter) (*ProfitAndLoss, error) {
	if err := p.Authorize(identity.ActionReportView); err != nil {
		return nil, err
	}
	if !filter.To.After(filter.From) {
		return nil, shared.NewValidationError("Report end date must be after its start date")
	}
	from, to := filter.From.Format("2006-01-02"), filter.To.Format("2006-01-02")
	var out ProfitAndLoss
	err := s.cached(ctx, p.TenantID, &out, func(ctx context.Context) (interface{}, error) {
		return s.buildProfitAndLoss(ctx, p.TenantID, filter.From, filter.To)
	}, "pnl", from, to)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ReceivablesAging returns open invoices bucketed by age
func (s *Service) ReceivablesAging(ctx context.Context, p identity.Principal, filter AgingFilter) (*ReceivablesAging, error) {
	if err := p.Authorize(identity.ActionReportView); err != nil {
		return nil, err
	}
	asOf := s.now().UTC()
	if filter.AsOf != nil {
		asOf = filter.AsOf.UTC().Add(24*time.Hour - time.Nanosecond)
	}
	var out ReceivablesAging
	err := s.cached(ctx, p.TenantID, &out, func(ctx context.Context) (interface{}, error) {
		open, err := s.invoices.FindUnsettled(ctx, p.TenantID, asOf)
		if err != nil {
			return nil, err
		}
		aging := BuildAging(open, asOf)
		return &aging, nil
	}, "aging", asOf.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Invalidate bumps the tenant's cache version so every cached report is rebuilt
func (s *Service) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx, tenantID); err != nil {
		s.logger.Warn("failed to bump report cache version",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	}
}

// cached collapses concurrent identical requests and reads through the cache
func (s *Service) cached(ctx context.Context, tenantID uuid.UUID, dest interface{}, loader func(context.Context) (interface{}, error), parts ...string) error {
	if s.cache == nil {
		return s.flight(ctx, tenantID.String()+":"+fmt.Sprint(parts), dest, loader)
	}
	key, err := s.cache.BuildKey(ctx, tenantID, append([]string{"report"}, parts...)...)
	if err != nil {
		s.logger.Warn("report cache unavailable", zap.Error(err))
		return s.flight(ctx, tenantID.String()+":"+fmt.Sprint(parts), dest, loader)
	}
	return s.flight(ctx, key, dest, func(ctx context.Context) (interface{}, error) {
		var v interface{}
		if err := s.cache.FetchJSON(ctx, key, &v, loader); err != nil {
			return nil, err
		}
		return v, nil
	})
}

func (s *Service) flight(ctx context.Context, key string, dest interface{}, fn func(context.Context) (interface{}, error)) error {
	// Collapsed callers share one load; it must not end with the caller that started it.
	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return fn(loadCtx)
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return assign(res.Val, dest)
	}
}

func (s *Service) buildProfitAndLoss(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*ProfitAndLoss, error) {
	var (
		invoices []invoice.Invoice
		approved []returns.SalesReturn
		expenses []finance.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invoices, err = s.invoices.FindCreatedBetween(gctx, tenantID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		approved, err = s.returns.FindApprovedBetween(gctx, tenantID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.FindBetween(gctx, tenantID, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pnl := &ProfitAndLoss{
		From:        from,
		To:          to,
		Revenue:     decimal.Zero,
		Refunds:     decimal.Zero,
		CostOfGoods: decimal.Zero,
		GeneratedAt: s.now().UTC(),
	}
	for i := range invoices {
		inv := &invoices[i]
		if inv.IsCancelled() {
			continue
		}
		pnl.InvoiceCount++
		pnl.Revenue = pnl.Revenue.Add(inv.Totals().Total)
		for _, l := range inv.LineItems {
			pnl.CostOfGoods = pnl.CostOfGoods.Add(l.CostOfGoods())
		}
	}

	returnedCost, err := s.returnedCost(ctx, tenantID, approved)
	if err != nil {
		return nil, err
	}
	for i := range approved {
		pnl.Refunds = pnl.Refunds.Add(approved[i].TotalRefund())
	}
	pnl.CostOfGoods = pnl.CostOfGoods.Sub(returnedCost)
	pnl.NetRevenue = pnl.Revenue.Sub(pnl.Refunds)
	pnl.GrossProfit = pnl.NetRevenue.Sub(pnl.CostOfGoods)

	byCategory := finance.TotalsByCategory(expenses)
	pnl.Expenses = make([]ExpenseLine, 0, len(byCategory))
	pnl.TotalExpenses = decimal.Zero
	for cat, amount := range byCategory {
		pnl.Expenses = append(pnl.Expenses, ExpenseLine{Category: string(cat), Amount: amount})
		pnl.TotalExpenses = pnl.TotalExpenses.Add(amount)
	}
	sort.Slice(pnl.Expenses, func(i, j int) bool { return pnl.Expenses[i].Category < pnl.Expenses[j].Category })
	pnl.NetProfit = pnl.GrossProfit.Sub(pnl.TotalExpenses)
	return pnl, nil
}

// returnedCost values returned units at the cost frozen on their invoice
func (s *Service) returnedCost(ctx context.Context, tenantID uuid.UUID, approved []returns.SalesReturn) (decimal.Decimal, error) {
	total := decimal.Zero
	loaded := make(map[uuid.UUID]*invoice.Invoice)
	for i := range approved {
		r := &approved[i]
		inv, ok := loaded[r.InvoiceID]
		if !ok {
			var err error
			inv, err = s.invoices.FindByID(ctx, tenantID, r.InvoiceID)
			if err != nil {
				return decimal.Zero, err
			}
			loaded[r.InvoiceID] = inv
		}
		for itemID, qty := range r.Quantities() {
			if cost, ok := inv.FrozenCost(itemID); ok {
				total = total.Add(cost.Mul(decimal.NewFromInt(int64(qty))))
			}
		}
	}
	return total, nil
}

// ExportProfitAndLoss renders the statement as CSV, uploads it and returns a download link
func (s *Service) ExportProfitAndLoss(ctx context.Context, p identity.Principal, filter PeriodFilter) (*ExportResponse, error) {
	if err := p.Authorize(identity.ActionReportView); err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, shared.ErrFeatureDisabled.WithDetail("feature", "report_export")
	}
	pnl, err := s.ProfitAndLoss(ctx, p, filter)
	if err != nil {
		return nil, err
	}
	data, err := ProfitAndLossCSV(pnl)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("reports/%s/profit-loss_%s_%s_%d.csv",
		p.TenantID, pnl.From.Format("20060102"), pnl.To.Format("20060102"), s.now().Unix())
	if err := s.storage.Upload(ctx, key, data, "text/csv"); err != nil {
		return nil, shared.NewPersistenceError("upload report", err)
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, 0)
	if err != nil {
		return nil, shared.NewPersistenceError("sign report url", err)
	}
	s.logger.Info("profit and loss exported",
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("key", key),
	)
	return &ExportResponse{Key: key, URL: url, ExpiresAt: expiresAt}, nil
}

// ProfitAndLossCSV renders a statement as two-column CSV
func ProfitAndLossCSV(pnl *ProfitAndLoss) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{
		{"Line", "Amount"},
		{"Period start", pnl.From.Format("2006-01-02")},
		{"Period end", pnl.To.Format("2006-01-02")},
		{"Invoices", fmt.Sprint(pnl.InvoiceCount)},
		{"Revenue", pnl.Revenue.StringFixed(2)},
		{"Refunds", pnl.Refunds.StringFixed(2)},
		{"Net revenue", pnl.NetRevenue.StringFixed(2)},
		{"Cost of goods", pnl.CostOfGoods.StringFixed(2)},
		{"Gross profit", pnl.GrossProfit.StringFixed(2)},
	}
	for _, e := range pnl.Expenses {
		rows = append(rows, []string{"Expense: " + e.Category, e.Amount.StringFixed(2)})
	}
	rows = append(rows,
		[]string{"Total expenses", pnl.TotalExpenses.StringFixed(2)},
		[]string{"Net profit", pnl.NetProfit.StringFixed(2)},
	)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
