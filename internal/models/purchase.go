package models

import "time"

// PurchaseStatus represents the lifecycle state of a purchase order
type PurchaseStatus string

const (
	PurchaseStatusOrdered   PurchaseStatus = "ordered"
	PurchaseStatusReceived  PurchaseStatus = "received"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// Purchase represents a purchase order placed with a supplier
type Purchase struct {
	Base
	PurchaseNumber  string         `gorm:"uniqueIndex;not null" json:"purchase_number"`
	SupplierName    string         `gorm:"not null" json:"supplier_name"`
	SupplierContact string         `json:"supplier_contact"`
	SupplierPhone   string         `json:"supplier_phone"`
	Status          PurchaseStatus `gorm:"not null;default:ordered" json:"status"`
	TotalAmount     int64          `gorm:"type:bigint;not null" json:"total_amount"`
	Notes           string         `json:"notes"`
	ReceivedAt      *time.Time     `json:"received_at,omitempty"`
	CreatedByID     uint           `gorm:"not null;index" json:"created_by_id"`

	// Relationships
	Items     []PurchaseItem `gorm:"foreignKey:PurchaseID" json:"items,omitempty"`
	CreatedBy *User          `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

// PurchaseItem represents one line of a purchase order
type PurchaseItem struct {
	Base
	PurchaseID uint  `gorm:"not null;index" json:"purchase_id"`
	ProductID  uint  `gorm:"not null" json:"product_id"`
	Quantity   int64 `gorm:"type:bigint;not null" json:"quantity"`
	UnitPrice  int64 `gorm:"type:bigint;not null" json:"unit_price"`
	TotalPrice int64 `gorm:"type:bigint;not null" json:"total_price"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
