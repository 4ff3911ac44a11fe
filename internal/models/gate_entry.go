package models

// GateDirection represents whether a vehicle entered or left the premises
type GateDirection string

const (
	GateDirectionIn  GateDirection = "in"
	GateDirectionOut GateDirection = "out"
)

// GateEntry represents one line of the warehouse gate log
type GateEntry struct {
	Base
	EntryNumber     string        `gorm:"uniqueIndex;not null" json:"entry_number"`
	Direction       GateDirection `gorm:"not null" json:"direction"`
	VehicleNumber   string        `gorm:"not null" json:"vehicle_number"`
	DriverName      string        `json:"driver_name"`
	DriverPhone     string        `json:"driver_phone"`
	Purpose         string        `json:"purpose"`
	StockMovementID *uint         `json:"stock_movement_id,omitempty"`
	RecordedByID    uint          `gorm:"not null;index" json:"recorded_by_id"`

	StockMovement *StockMovement `gorm:"foreignKey:StockMovementID" json:"stock_movement,omitempty"`
	RecordedBy    *User          `gorm:"foreignKey:RecordedByID" json:"recorded_by,omitempty"`
}
