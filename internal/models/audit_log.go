package models

// AuditAction represents the kind of mutation that was audited
type AuditAction string

const (
	AuditActionInsert AuditAction = "insert"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// ActivityType groups audit events by who acted.
type ActivityType string

const (
	ActivityGatekeeperEntry       ActivityType = "gatekeeper_entry"
	ActivityAccountantTransaction ActivityType = "accountant_transaction"
	ActivityAdminAction           ActivityType = "admin_action"
	ActivitySystemAction          ActivityType = "system_action"
)

// ActivityCategory groups audit events by domain impact.
type ActivityCategory string

const (
	CategoryStockMovement     ActivityCategory = "stock_movement"
	CategoryFinancial         ActivityCategory = "financial"
	CategoryUserManagement    ActivityCategory = "user_management"
	CategoryProductManagement ActivityCategory = "product_management"
	CategorySystemConfig      ActivityCategory = "system_config"
)

// AuditLog records one privileged mutation for compliance review. Rows are
// write-once: nothing in the system updates or deletes them.
//
// OldValues and NewValues hold redacted snapshots: any field listed in the
// protected-field registry for TableName is replaced by the redaction
// sentinel, and its encrypted true value lives only in SensitiveData.
// OldValues, NewValues, ChangedFields, SensitiveData, and Metadata are
// stored as JSON text columns.
type AuditLog struct {
	Base
	TableName string      `gorm:"not null;index" json:"table_name"`
	RecordID  string      `gorm:"not null;index" json:"record_id"`
	Action    AuditAction `gorm:"not null" json:"action"`

	// Actor; UserID is nil for system actions.
	UserID    *uint    `gorm:"index" json:"user_id,omitempty"`
	UserRole  UserRole `json:"user_role,omitempty"`
	UserEmail string   `json:"user_email,omitempty"`

	// Network context, best-effort.
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`

	ActivityType     ActivityType     `gorm:"not null;index" json:"activity_type"`
	ActivityCategory ActivityCategory `gorm:"not null;index" json:"activity_category"`
	Description      string           `gorm:"not null" json:"description"`

	OldValues     string `gorm:"type:text" json:"old_values,omitempty"`
	NewValues     string `gorm:"type:text" json:"new_values,omitempty"`
	ChangedFields string `gorm:"type:text" json:"changed_fields,omitempty"`
	SensitiveData string `gorm:"type:text" json:"-"`
	Metadata      string `gorm:"type:text" json:"metadata,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
