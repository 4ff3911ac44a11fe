package models

// Product represents a manufactured or stocked item
type Product struct {
	Base
	SKU          string `gorm:"uniqueIndex;not null" json:"sku"`
	Name         string `gorm:"not null" json:"name"`
	Description  string `json:"description"`
	Unit         string `gorm:"not null;default:pcs" json:"unit"`
	Quantity     int64  `gorm:"type:bigint;not null;default:0" json:"quantity"`
	ReorderLevel int64  `gorm:"type:bigint;default:0" json:"reorder_level"`
	UnitCost     int64  `gorm:"type:bigint;default:0" json:"unit_cost"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}
