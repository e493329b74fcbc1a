package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backoffice/internal/domain/inventory"
)

// InventoryItemModel is the persistence model for the InventoryItem aggregate root.
// The quantity >= 0 check constraint is enforced in the migration as well.
type InventoryItemModel struct {
	TenantAggregateModel
	Name           string          `gorm:"type:varchar(200);not null"`
	NameKey        string          `gorm:"type:varchar(200);not null;index:idx_inventory_items_name_key"`
	Category       string          `gorm:"type:varchar(100)"`
	Brand          string          `gorm:"type:varchar(100)"`
	Quantity       int             `gorm:"not null;default:0;check:quantity >= 0"`
	Price          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderPoint   int             `gorm:"not null;default:0"`
	Status         string          `gorm:"type:varchar(30);not null;default:'Available'"`
	WarrantyPeriod string          `gorm:"type:varchar(100)"`
	CreatedBy      uuid.UUID       `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts the persistence model to a domain InventoryItem.
func (m *InventoryItemModel) ToDomain() *inventory.InventoryItem {
	return &inventory.InventoryItem{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		NameKey:             m.NameKey,
		Category:            m.Category,
		Brand:               m.Brand,
		Quantity:            m.Quantity,
		Price:               m.Price,
		CostPrice:           m.CostPrice,
		ReorderPoint:        m.ReorderPoint,
		Status:              inventory.ItemStatus(m.Status),
		WarrantyPeriod:      m.WarrantyPeriod,
		CreatedBy:           m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain InventoryItem.
func (m *InventoryItemModel) FromDomain(i *inventory.InventoryItem) {
	m.FromDomainTenantAggregateRoot(i.TenantAggregateRoot)
	m.Name = i.Name
	m.NameKey = i.NameKey
	m.Category = i.Category
	m.Brand = i.Brand
	m.Quantity = i.Quantity
	m.Price = i.Price
	m.CostPrice = i.CostPrice
	m.ReorderPoint = i.ReorderPoint
	m.Status = string(i.Status)
	m.WarrantyPeriod = i.WarrantyPeriod
	m.CreatedBy = i.CreatedBy
}

// InventoryItemModelFromDomain creates a new persistence model from a domain InventoryItem.
func InventoryItemModelFromDomain(i *inventory.InventoryItem) *InventoryItemModel {
	m := &InventoryItemModel{}
	m.FromDomain(i)
	return m
}

// StockMovementModel is one append-only ledger row
type StockMovementModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID `gorm:"type:uuid;not null;index:idx_stock_movements_item,priority:1"`
	InventoryItemID uuid.UUID `gorm:"type:uuid;not null;index:idx_stock_movements_item,priority:2"`
	Type            string    `gorm:"type:varchar(20);not null"`
	Quantity        int       `gorm:"not null"`
	ReferenceID     string    `gorm:"type:varchar(100);not null;index"`
	CreatedAt       time.Time `gorm:"not null;index:idx_stock_movements_item,priority:3"`
	CreatedBy       uuid.UUID `gorm:"type:uuid"`
	CreatedByName   string    `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement.
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		ID:              m.ID,
		TenantID:        m.TenantID,
		InventoryItemID: m.InventoryItemID,
		Type:            inventory.MovementType(m.Type),
		Quantity:        m.Quantity,
		ReferenceID:     m.ReferenceID,
		CreatedAt:       m.CreatedAt,
		CreatedBy:       m.CreatedBy,
		CreatedByName:   m.CreatedByName,
	}
}

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement.
func StockMovementModelFromDomain(mv *inventory.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:              mv.ID,
		TenantID:        mv.TenantID,
		InventoryItemID: mv.InventoryItemID,
		Type:            string(mv.Type),
		Quantity:        mv.Quantity,
		ReferenceID:     mv.ReferenceID,
		CreatedAt:       mv.CreatedAt,
		CreatedBy:       mv.CreatedBy,
		CreatedByName:   mv.CreatedByName,
	}
}
