package models

import (
	"github.com/google/uuid"
)

// DocumentSequenceModel holds the last number issued per tenant, prefix and year
type DocumentSequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Prefix    string    `gorm:"type:varchar(10);primaryKey"`
	Year      int       `gorm:"primaryKey"`
	LastValue int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}

// All returns every model, in dependency order, for AutoMigrate in tests and dev
func All() []interface{} {
	return []interface{}{
		&InventoryItemModel{},
		&StockMovementModel{},
		&InvoiceModel{},
		&InvoiceLineModel{},
		&InvoicePaymentModel{},
		&SalesReturnModel{},
		&SalesReturnItemModel{},
		&CustomerModel{},
		&SupplierModel{},
		&ExpenseModel{},
		&NotificationModel{},
		&MembershipModel{},
		&DocumentSequenceModel{},
		&ConversationModel{},
		&ConversationParticipantModel{},
		&MessageModel{},
	}
}
