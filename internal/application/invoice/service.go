package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinventory "github.com/retailops/backoffice/internal/application/inventory"
	appshared "github.com/retailops/backoffice/internal/application/shared"
	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/inventory"
	"github.com/retailops/backoffice/internal/domain/invoice"
	"github.com/retailops/backoffice/internal/domain/notification"
	"github.com/retailops/backoffice/internal/domain/returns"
	"github.com/retailops/backoffice/internal/domain/shared"
)

// Service is the invoice lifecycle manager. Every operation that changes stock
// runs the invoice write, the conditional stock updates, the ledger entries and
// the number allocation in one transaction.
type Service struct {
	invoices       invoice.InvoiceRepository
	txScope        appshared.TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewService creates a new invoice Service
func NewService(invoices invoice.InvoiceRepository, txScope appshared.TransactionScope, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		invoices: invoices,
		txScope:  txScope,
		logger:   logger,
		now:      time.Now,
	}
}

// SetEventPublisher sets the publisher used after commit
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the clock used for document-number years
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create takes stock for every product line, freezes cost prices, allocates the
// invoice number and applies the initial status. Any failure rolls everything back.
func (s *Service) Create(ctx context.Context, p identity.Principal, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if err := p.Authorize(identity.ActionInvoiceCreate); err != nil {
		return nil, err
	}
	lines, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}
	discount := discountFrom(req.DiscountType, req.DiscountValue)
	if err := discount.Validate(invoice.Subtotal(lines)); err != nil {
		return nil, err
	}
	initialStatus := invoice.Status(req.InitialStatus)
	if initialStatus == invoice.StatusCancelled {
		return nil, shared.NewValidationError("An invoice cannot be created as cancelled")
	}

	var inv *invoice.Invoice
	var keeper *appinventory.StockKeeper
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		customer, err := resolveCustomer(ctx, repos, p.TenantID, req.CustomerRequest)
		if err != nil {
			return err
		}

		year := s.now().Year()
		seq, err := repos.Sequences().Next(ctx, p.TenantID, shared.PrefixInvoice, year)
		if err != nil {
			return err
		}
		number := shared.FormatDocumentNumber(shared.PrefixInvoice, year, seq)

		keeper = appinventory.NewStockKeeper(repos, p.Actor())
		if err := keeper.Take(ctx, p.TenantID, invoice.ProductQuantities(lines), number); err != nil {
			return err
		}
		if err := freezeCosts(ctx, repos, p.TenantID, lines, nil); err != nil {
			return err
		}

		inv, err = invoice.NewInvoice(p.TenantID, number, customer, lines, discount, p.Actor())
		if err != nil {
			return err
		}
		if err := inv.ApplyInitialStatus(initialStatus, req.InitialPayment, req.PaymentMethod, p.Actor()); err != nil {
			return err
		}
		if err := repos.Invoices().Create(ctx, inv); err != nil {
			return err
		}
		return notifyInvoiceCreated(ctx, repos, p, inv)
	})
	if err != nil {
		return nil, err
	}

	events := appshared.CollectEvents(inv)
	events = append(events, keeper.LowStockEvents(inv.Number)...)
	appshared.PublishAfterCommit(ctx, s.eventPublisher, s.logger, events...)

	s.logger.Info("invoice created",
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("invoice_number", inv.Number),
		zap.String("status", string(inv.Status)),
		zap.String("total", inv.Totals().Total.String()),
	)
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Update replaces lines and discount of an open invoice. Stock is moved by the
// net per-item difference between old and new lines.
func (s *Service) Update(ctx context.Context, p identity.Principal, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	if err := p.Authorize(identity.ActionInvoiceEdit); err != nil {
		return nil, err
	}
	lines, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}
	discount := discountFrom(req.DiscountType, req.DiscountValue)

	var inv *invoice.Invoice
	var keeper *appinventory.StockKeeper
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		inv, err = repos.Invoices().FindByID(ctx, p.TenantID, id)
		if err != nil {
			return err
		}
		if inv.IsCancelled() {
			return shared.NewInvalidStateError("Cannot edit a cancelled invoice")
		}
		if req.Version > 0 && req.Version != inv.Version {
			return shared.ErrConcurrencyConflict.WithDetail("version", inv.Version)
		}

		customer := inv.Customer
		if req.CustomerID != nil || strings.TrimSpace(req.Name) != "" {
			customer, err = resolveCustomer(ctx, repos, p.TenantID, req.CustomerRequest)
			if err != nil {
				return err
			}
		}

		prior, err := repos.Returns().FindByInvoice(ctx, p.TenantID, inv.ID)
		if err != nil {
			return err
		}
		if err := checkReturnClaims(invoice.ProductQuantities(lines), prior); err != nil {
			return err
		}

		keeper = appinventory.NewStockKeeper(repos, p.Actor())
		if err := keeper.ApplyNet(ctx, p.TenantID, invoice.NetStockDelta(inv.LineItems, lines), inv.Number); err != nil {
			return err
		}
		if err := freezeCosts(ctx, repos, p.TenantID, lines, inv); err != nil {
			return err
		}
		if err := inv.Revise(customer, lines, discount); err != nil {
			return err
		}
		return repos.Invoices().Save(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	events := appshared.CollectEvents(inv)
	events = append(events, keeper.LowStockEvents(inv.Number)...)
	appshared.PublishAfterCommit(ctx, s.eventPublisher, s.logger, events...)

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Cancel restores stock for every product line still out and moves the invoice
// to Cancelled. Cancelling a cancelled invoice returns it unchanged.
func (s *Service) Cancel(ctx context.Context, p identity.Principal, id uuid.UUID) (*InvoiceResponse, error) {
	if err := p.Authorize(identity.ActionInvoiceCancel); err != nil {
		return nil, err
	}

	var inv *invoice.Invoice
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		inv, err = repos.Invoices().FindByID(ctx, p.TenantID, id)
		if err != nil {
			return err
		}
		if inv.IsCancelled() {
			return nil
		}

		prior, err := repos.Returns().FindByInvoice(ctx, p.TenantID, inv.ID)
		if err != nil {
			return err
		}
		restore := outstandingQuantities(inv.LineItems, prior)

		keeper := appinventory.NewStockKeeper(repos, p.Actor())
		if err := keeper.Restore(ctx, p.TenantID, restore, inventory.MovementCancellation, inv.Number); err != nil {
			return err
		}
		if !inv.Cancel() {
			return nil
		}
		return repos.Invoices().Save(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	appshared.PublishAfterCommit(ctx, s.eventPublisher, s.logger, appshared.CollectEvents(inv)...)
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// checkReturnClaims refuses lines that sell fewer units of an item than
// pending and approved returns already hold against the invoice.
func checkReturnClaims(sold map[uuid.UUID]int, prior []returns.SalesReturn) error {
	claimed := returns.Claimed(prior, uuid.Nil)
	for _, itemID := range appinventory.SortedItemIDs(claimed) {
		if q := claimed[itemID]; q > 0 && sold[itemID] < q {
			return shared.NewValidationError(fmt.Sprintf("Returns already hold %d units of this item; the invoice cannot sell fewer", q)).
				WithDetail("inventory_item_id", itemID.String())
		}
	}
	return nil
}

// outstandingQuantities is what the invoice still holds per item: sold minus
// units already brought back by approved returns.
func outstandingQuantities(lines []invoice.LineItem, prior []returns.SalesReturn) map[uuid.UUID]int {
	out := invoice.ProductQuantities(lines)
	for _, r := range prior {
		if r.Status != returns.StatusApproved {
			continue
		}
		for id, q := range r.Quantities() {
			out[id] -= q
		}
	}
	for id, q := range out {
		if q <= 0 {
			delete(out, id)
		}
	}
	return out
}

// AddPayment records a payment; overpayment resolves to Paid with a negative amount due
func (s *Service) AddPayment(ctx context.Context, p identity.Principal, id uuid.UUID, req AddPaymentRequest) (*InvoiceResponse, error) {
	if err := p.Authorize(identity.ActionInvoicePay); err != nil {
		return nil, err
	}
	draft := invoice.PaymentDraft{Amount: req.Amount, Method: req.Method, Notes: req.Notes}
	if req.Date != nil {
		draft.Date = *req.Date
	}

	var inv *invoice.Invoice
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		inv, err = repos.Invoices().FindByID(ctx, p.TenantID, id)
		if err != nil {
			return err
		}
		if _, err := inv.AddPayment(draft, p.Actor()); err != nil {
			return err
		}
		return repos.Invoices().Save(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	appshared.PublishAfterCommit(ctx, s.eventPublisher, s.logger, appshared.CollectEvents(inv)...)
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// GetByID retrieves an invoice with lines and payments
func (s *Service) GetByID(ctx context.Context, p identity.Principal, id uuid.UUID) (*InvoiceResponse, error) {
	if err := p.Authorize(identity.ActionInvoiceView); err != nil {
		return nil, err
	}
	inv, err := s.invoices.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// List retrieves invoices with filtering and pagination
func (s *Service) List(ctx context.Context, p identity.Principal, filter ListFilter) (shared.Paginated[InvoiceListItemResponse], error) {
	if err := p.Authorize(identity.ActionInvoiceView); err != nil {
		return shared.Paginated[InvoiceListItemResponse]{}, err
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Search),
		Filters:  make(map[string]interface{}),
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "created_at"
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.From != nil {
		domainFilter.Filters["from"] = *filter.From
	}
	if filter.To != nil {
		domainFilter.Filters["to"] = *filter.To
	}
	domainFilter = domainFilter.Normalize()

	invoices, total, err := s.invoices.FindAll(ctx, p.TenantID, domainFilter)
	if err != nil {
		return shared.Paginated[InvoiceListItemResponse]{}, err
	}
	out := make([]InvoiceListItemResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceListItemResponse(&invoices[i])
	}
	return shared.NewPaginated(out, total, domainFilter.Page, domainFilter.PageSize), nil
}

func buildLines(reqs []LineItemRequest) ([]invoice.LineItem, error) {
	if len(reqs) == 0 {
		return nil, shared.NewValidationError("Invoice must have at least one line item")
	}
	lines := make([]invoice.LineItem, 0, len(reqs))
	for _, r := range reqs {
		l, err := invoice.NewLineItem(invoice.LineType(r.Type), r.InventoryItemID, r.Description, r.Quantity, r.Price, r.WarrantyPeriod)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, nil
}

// freezeCosts captures cost prices for product lines. Lines for items already
// on existing keep the cost frozen at the original sale.
func freezeCosts(ctx context.Context, repos appshared.TransactionalRepositories, tenantID uuid.UUID, lines []invoice.LineItem, existing *invoice.Invoice) error {
	ids := make([]uuid.UUID, 0)
	for _, l := range lines {
		if l.IsProduct() {
			ids = append(ids, *l.InventoryItemID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	items, err := repos.Items().FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]inventory.InventoryItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	for i := range lines {
		l := &lines[i]
		if !l.IsProduct() {
			continue
		}
		item, ok := byID[*l.InventoryItemID]
		if !ok {
			return shared.NewNotFoundError("Inventory item").WithDetail("inventory_item_id", l.InventoryItemID.String())
		}
		if l.Description == "" {
			l.Description = item.Name
		}
		if existing != nil {
			if cost, ok := existing.FrozenCost(item.ID); ok {
				l.FreezeCost(cost)
				continue
			}
		}
		l.FreezeCost(item.CostPrice)
	}
	return nil
}

func resolveCustomer(ctx context.Context, repos appshared.TransactionalRepositories, tenantID uuid.UUID, req CustomerRequest) (invoice.Customer, error) {
	c := invoice.Customer{Name: strings.TrimSpace(req.Name), Phone: strings.TrimSpace(req.Phone)}
	if req.CustomerID == nil {
		if c.Name == "" {
			return c, shared.NewValidationError("Customer name or customer_id is required")
		}
		return c, nil
	}
	stored, err := repos.Customers().FindByID(ctx, tenantID, *req.CustomerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return c, shared.NewNotFoundError("Customer")
		}
		return c, err
	}
	id := stored.ID
	c.ID = &id
	if c.Name == "" {
		c.Name = stored.Name
	}
	if c.Phone == "" {
		c.Phone = stored.Phone
	}
	return c, nil
}

func notifyInvoiceCreated(ctx context.Context, repos appshared.TransactionalRepositories, p identity.Principal, inv *invoice.Invoice) error {
	members, err := repos.Memberships().FindByRoles(ctx, p.TenantID, identity.PrivilegedRoles(identity.ActionLowStockAlerts)...)
	if err != nil {
		return err
	}
	recipients := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		if m.UserID != p.UserID {
			recipients = append(recipients, m.UserID)
		}
	}
	if len(recipients) == 0 {
		return nil
	}
	title, message := notification.InvoiceCreatedText(inv.Number, inv.Customer.Name, inv.Totals().Total.StringFixed(2), p.Username)
	notes, err := notification.Fanout(p.TenantID, recipients, notification.KindInvoiceCreated, title, message, inv.Number)
	if err != nil {
		return err
	}
	return repos.Notifications().CreateMany(ctx, notes...)
}
