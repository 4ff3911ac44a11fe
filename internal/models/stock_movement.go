package models

// MovementType represents the direction of a stock movement
type MovementType string

const (
	MovementTypeIn         MovementType = "in"
	MovementTypeOut        MovementType = "out"
	MovementTypeAdjustment MovementType = "adjustment"
)

// StockMovement represents a change in on-hand quantity for a product.
// Movements recorded at the warehouse gate carry the driver's identity,
// which is treated as regulated personal data in the audit trail.
type StockMovement struct {
	Base
	ProductID     uint         `gorm:"not null;index" json:"product_id"`
	Type          MovementType `gorm:"not null" json:"type"`
	Quantity      int64        `gorm:"type:bigint;not null" json:"quantity"`
	Reference     string       `json:"reference"`
	DriverName    string       `json:"driver_name,omitempty"`
	DriverPhone   string       `json:"driver_phone,omitempty"`
	VehicleNumber string       `json:"vehicle_number,omitempty"`
	Notes         string       `json:"notes"`
	RecordedByID  uint         `gorm:"not null;index" json:"recorded_by_id"`

	Product    *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	RecordedBy *User    `gorm:"foreignKey:RecordedByID" json:"recorded_by,omitempty"`
}
