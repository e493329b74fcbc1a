package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/retailops/backoffice/internal/application/shared"
	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/inventory"
	"github.com/retailops/backoffice/internal/domain/shared"
)

// InventoryService handles inventory item operations and shipment receipt
type InventoryService struct {
	items          inventory.InventoryItemRepository
	movements      inventory.StockMovementRepository
	txScope        appshared.TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	items inventory.InventoryItemRepository,
	movements inventory.StockMovementRepository,
	txScope appshared.TransactionScope,
	logger *zap.Logger,
) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		items:     items,
		movements: movements,
		txScope:   txScope,
		logger:    logger,
	}
}

// SetEventPublisher sets the publisher used after commit
func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create adds a new item. A positive initial quantity is recorded as an addition movement.
func (s *InventoryService) Create(ctx context.Context, p identity.Principal, req CreateItemRequest) (*ItemResponse, error) {
	if err := p.Authorize(identity.ActionInventoryManage); err != nil {
		return nil, err
	}
	if req.Quantity < 0 {
		return nil, shared.NewValidationError("Initial quantity cannot be negative")
	}
	details := inventory.ItemDetails{
		Name:           req.Name,
		Category:       req.Category,
		Brand:          req.Brand,
		Price:          req.Price,
		ReorderPoint:   req.ReorderPoint,
		Status:         inventory.ItemStatus(req.Status),
		WarrantyPeriod: req.WarrantyPeriod,
	}
	item, err := inventory.NewInventoryItem(p.TenantID, details, req.CostPrice, 0, p.UserID)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if err := ensureNameFree(ctx, repos.Items(), p.TenantID, item.NameKey, uuid.Nil); err != nil {
			return err
		}
		if err := repos.Items().Create(ctx, item); err != nil {
			return err
		}
		if req.Quantity == 0 {
			return nil
		}
		keeper := NewStockKeeper(repos, p.Actor())
		change, err := keeper.Record(ctx, p.TenantID, item.ID, inventory.MovementAddition, req.Quantity, inventory.ReferenceInitialStock)
		if err != nil {
			return err
		}
		item.Quantity = change.Current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inventory item created",
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("item_id", item.ID.String()),
		zap.Int("quantity", item.Quantity),
	)
	resp := ToItemResponse(item)
	return &resp, nil
}

func ensureNameFree(ctx context.Context, repo inventory.InventoryItemRepository, tenantID uuid.UUID, key string, self uuid.UUID) error {
	existing, err := repo.FindByNameKey(ctx, tenantID, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID == self {
		return nil
	}
	return shared.ErrAlreadyExists.WithDetail("name", existing.Name)
}

// GetByID retrieves an inventory item
func (s *InventoryService) GetByID(ctx context.Context, p identity.Principal, id uuid.UUID) (*ItemResponse, error) {
	if err := p.Authorize(identity.ActionInventoryView); err != nil {
		return nil, err
	}
	item, err := s.items.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// List retrieves items with filtering and pagination
func (s *InventoryService) List(ctx context.Context, p identity.Principal, filter ListFilter) (shared.Paginated[ItemResponse], error) {
	if err := p.Authorize(identity.ActionInventoryView); err != nil {
		return shared.Paginated[ItemResponse]{}, err
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
		domainFilter.OrderBy = "name"
		if domainFilter.OrderDir == "" {
			domainFilter.OrderDir = "asc"
		}
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.Brand != "" {
		domainFilter.Filters["brand"] = filter.Brand
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	domainFilter = domainFilter.Normalize()

	items, err := s.items.FindAll(ctx, p.TenantID, domainFilter)
	if err != nil {
		return shared.Paginated[ItemResponse]{}, err
	}
	total, err := s.items.Count(ctx, p.TenantID, domainFilter)
	if err != nil {
		return shared.Paginated[ItemResponse]{}, err
	}
	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
	}
	return shared.NewPaginated(out, total, domainFilter.Page, domainFilter.PageSize), nil
}

// ListLowStock returns items at or below their reorder point
func (s *InventoryService) ListLowStock(ctx context.Context, p identity.Principal) ([]ItemResponse, error) {
	if err := p.Authorize(identity.ActionInventoryView); err != nil {
		return nil, err
	}
	items, err := s.items.FindLowStock(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
	}
	return out, nil
}

// Update replaces descriptive fields; quantity and cost are untouched
func (s *InventoryService) Update(ctx context.Context, p identity.Principal, id uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	if err := p.Authorize(identity.ActionInventoryManage); err != nil {
		return nil, err
	}
	item, err := s.items.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, err
	}
	details := inventory.ItemDetails{
		Name:           req.Name,
		Category:       req.Category,
		Brand:          req.Brand,
		Price:          req.Price,
		ReorderPoint:   req.ReorderPoint,
		Status:         inventory.ItemStatus(req.Status),
		WarrantyPeriod: req.WarrantyPeriod,
	}
	if err := item.UpdateDetails(details); err != nil {
		return nil, err
	}
	if err := ensureNameFree(ctx, s.items, p.TenantID, item.NameKey, item.ID); err != nil {
		return nil, err
	}
	if err := s.items.UpdateDetails(ctx, item); err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// Adjust applies a manual correction with one adjustment movement
func (s *InventoryService) Adjust(ctx context.Context, p identity.Principal, id uuid.UUID, req AdjustStockRequest) (*ItemResponse, error) {
	if err := p.Authorize(identity.ActionInventoryAdjust); err != nil {
		return nil, err
	}
	if req.Delta == 0 {
		return nil, shared.NewValidationError("Adjustment delta cannot be zero")
	}
	reference := strings.TrimSpace(req.Reason)
	if reference == "" {
		reference = inventory.ReferenceManualAdjustment
	}

	var keeper *StockKeeper
	var item *inventory.InventoryItem
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		keeper = NewStockKeeper(repos, p.Actor())
		if _, err := keeper.Record(ctx, p.TenantID, id, inventory.MovementAdjustment, req.Delta, reference); err != nil {
			return err
		}
		var err error
		item, err = repos.Items().FindByID(ctx, p.TenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	appshared.PublishAfterCommit(ctx, s.eventPublisher, s.logger, keeper.LowStockEvents(reference)...)
	resp := ToItemResponse(item)
	return &resp, nil
}

// ListMovements returns an item's ledger entries, newest first
func (s *InventoryService) ListMovements(ctx context.Context, p identity.Principal, itemID uuid.UUID, page, pageSize int) (shared.Paginated[MovementResponse], error) {
	if err := p.Authorize(identity.ActionInventoryView); err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}
	if _, err := s.items.FindByID(ctx, p.TenantID, itemID); err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}
	filter := shared.Filter{Page: page, PageSize: pageSize, OrderBy: "created_at", OrderDir: "desc"}.Normalize()
	movements, total, err := s.movements.FindByItem(ctx, p.TenantID, itemID, filter)
	if err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}
	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = ToMovementResponse(&movements[i])
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}

// PreviewShipment runs the landed-cost calculator without writing anything
func (s *InventoryService) PreviewShipment(_ context.Context, p identity.Principal, req ShipmentRequest) (*ShipmentResponse, error) {
	if err := p.Authorize(identity.ActionInventoryReceive); err != nil {
		return nil, err
	}
	result, err := inventory.CalculateLandedCost(req.costLines(), req.costs())
	if err != nil {
		return nil, err
	}
	return &ShipmentResponse{LandedCostResult: result}, nil
}

// ReceiveShipment commits a shipment in one transaction. Lines whose folded name
// matches an existing item are merged with weighted-average cost; the rest
// become new items priced at the suggested price.
func (s *InventoryService) ReceiveShipment(ctx context.Context, p identity.Principal, req ShipmentRequest) (*ShipmentResponse, error) {
	if err := p.Authorize(identity.ActionInventoryReceive); err != nil {
		return nil, err
	}
	result, err := inventory.CalculateLandedCost(req.costLines(), req.costs())
	if err != nil {
		return nil, err
	}

	received := make([]ShipmentLineResult, len(req.Lines))
	totalQty := 0
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		keeper := NewStockKeeper(repos, p.Actor())
		for idx, line := range req.Lines {
			calc := result.Lines[idx]
			lr, err := s.receiveLine(ctx, repos, keeper, p, line, calc)
			if err != nil {
				return err
			}
			received[idx] = lr
			totalQty += line.Quantity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	shipmentID := uuid.New()
	appshared.PublishAfterCommit(ctx, s.eventPublisher, s.logger,
		inventory.NewStockReceivedEvent(p.TenantID, shipmentID, len(req.Lines), totalQty))
	s.logger.Info("shipment received",
		zap.String("tenant_id", p.TenantID.String()),
		zap.Int("lines", len(req.Lines)),
		zap.Int("quantity", totalQty),
		zap.String("total_landed_cost", result.TotalLandedCost.String()),
	)
	return &ShipmentResponse{LandedCostResult: result, Received: received}, nil
}

func (s *InventoryService) receiveLine(
	ctx context.Context,
	repos appshared.TransactionalRepositories,
	keeper *StockKeeper,
	p identity.Principal,
	line ShipmentLineRequest,
	calc inventory.LineCost,
) (ShipmentLineResult, error) {
	out := ShipmentLineResult{LineCost: calc, Name: strings.TrimSpace(line.Name)}

	existing, err := repos.Items().FindByNameKey(ctx, p.TenantID, inventory.NameKey(line.Name))
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return out, err
	}

	if existing == nil {
		item, err := inventory.NewInventoryItem(p.TenantID, inventory.ItemDetails{
			Name:           line.Name,
			Category:       line.Category,
			Brand:          line.Brand,
			Price:          calc.SuggestedPrice,
			ReorderPoint:   line.ReorderPoint,
			WarrantyPeriod: line.WarrantyPeriod,
		}, calc.LandedCost, 0, p.UserID)
		if err != nil {
			return out, err
		}
		if err := repos.Items().Create(ctx, item); err != nil {
			return out, err
		}
		if _, err := keeper.Record(ctx, p.TenantID, item.ID, inventory.MovementAddition, line.Quantity, inventory.ReferenceShipment); err != nil {
			return out, err
		}
		out.ItemID = item.ID
		out.NewCost = item.CostPrice
		return out, nil
	}

	// The conditional update locks the row; the cost read after it is current.
	change, err := keeper.Record(ctx, p.TenantID, existing.ID, inventory.MovementAddition, line.Quantity, inventory.ReferenceShipment)
	if err != nil {
		return out, err
	}
	locked, err := repos.Items().FindByID(ctx, p.TenantID, existing.ID)
	if err != nil {
		return out, err
	}
	locked.Quantity = change.Previous
	if err := locked.ReceiveStock(line.Quantity, calc.LandedCost); err != nil {
		return out, err
	}
	if err := repos.Items().UpdateCostPrice(ctx, p.TenantID, existing.ID, locked.CostPrice); err != nil {
		return out, err
	}
	out.ItemID = existing.ID
	out.Merged = true
	out.NewCost = locked.CostPrice
	return out, nil
}
