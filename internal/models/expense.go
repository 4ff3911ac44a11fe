package models

import "time"

// Expense represents a recorded business expense
type Expense struct {
	Base
	ExpenseNumber string    `gorm:"uniqueIndex;not null" json:"expense_number"`
	Category      string    `gorm:"not null" json:"category"`
	Description   string    `json:"description"`
	Amount        int64     `gorm:"type:bigint;not null" json:"amount"`
	IncurredAt    time.Time `gorm:"not null" json:"incurred_at"`
	CreatedByID   uint      `gorm:"not null;index" json:"created_by_id"`

	CreatedBy *User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}
