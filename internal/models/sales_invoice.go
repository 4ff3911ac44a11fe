package models

import "time"

// InvoiceStatus represents the lifecycle state of a sales invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusIssued    InvoiceStatus = "issued"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// SalesInvoice represents an invoice issued to a customer
type SalesInvoice struct {
	Base
	InvoiceNumber   string        `gorm:"uniqueIndex;not null" json:"invoice_number"`
	CustomerName    string        `gorm:"not null" json:"customer_name"`
	CustomerContact string        `json:"customer_contact"`
	CustomerPhone   string        `json:"customer_phone"`
	Status          InvoiceStatus `gorm:"not null;default:issued" json:"status"`
	TotalAmount     int64         `gorm:"type:bigint;not null" json:"total_amount"`
	Notes           string        `json:"notes"`
	IssuedAt        time.Time     `gorm:"not null" json:"issued_at"`
	CreatedByID     uint          `gorm:"not null;index" json:"created_by_id"`

	// Relationships
	Items     []SalesInvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	CreatedBy *User              `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

// SalesInvoiceItem represents one line of a sales invoice
type SalesInvoiceItem struct {
	Base
	InvoiceID  uint  `gorm:"not null;index" json:"invoice_id"`
	ProductID  uint  `gorm:"not null" json:"product_id"`
	Quantity   int64 `gorm:"type:bigint;not null" json:"quantity"`
	UnitPrice  int64 `gorm:"type:bigint;not null" json:"unit_price"`
	TotalPrice int64 `gorm:"type:bigint;not null" json:"total_price"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
