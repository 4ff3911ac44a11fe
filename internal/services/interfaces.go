package services

import (
	"time"

	"milltrack/internal/models"
	"milltrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, email, phone, password, firstName, lastName string, role models.UserRole) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
	ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	UpdateUser(id uint, role *models.UserRole, isActive *bool, phone *string) (*models.User, error)
}

// ProductServicer defines the contract for product catalogue logic.
type ProductServicer interface {
	CreateProduct(sku, name, description, unit string, reorderLevel, unitCost int64) (*models.Product, error)
	ListProducts(page pagination.PageRequest, activeOnly bool) (*pagination.PageResponse[models.Product], error)
	GetProductByID(id uint) (*models.Product, error)
	UpdateProduct(id uint, name, description string, reorderLevel, unitCost *int64) (*models.Product, error)
	DeleteProduct(id uint) (*models.Product, error)
	LowStockProducts() ([]models.Product, error)
}

// PurchaseItemInput describes one requested purchase order line.
type PurchaseItemInput struct {
	ProductID uint
	Quantity  int64
	UnitPrice int64
}

// PurchaseFilter holds optional filter parameters for listing purchase orders.
type PurchaseFilter struct {
	Status   *models.PurchaseStatus
	FromDate *time.Time
	ToDate   *time.Time
}

// PurchaseServicer defines the contract for purchasing logic.
type PurchaseServicer interface {
	CreatePurchase(createdBy uint, purchaseNumber, supplierName, supplierContact, supplierPhone, notes string, items []PurchaseItemInput) (*models.Purchase, error)
	GetPurchases(page pagination.PageRequest, filter PurchaseFilter) (*pagination.PageResponse[models.Purchase], error)
	GetPurchaseByID(id uint) (*models.Purchase, error)
	UpdatePurchase(id uint, supplierName, supplierContact, supplierPhone, notes string) (*models.Purchase, error)
	ReceivePurchase(id uint) (*models.Purchase, error)
	CancelPurchase(id uint) (*models.Purchase, error)
}

// InvoiceItemInput describes one requested invoice line.
type InvoiceItemInput struct {
	ProductID uint
	Quantity  int64
	UnitPrice int64
}

// InvoiceFilter holds optional filter parameters for listing sales invoices.
type InvoiceFilter struct {
	Status   *models.InvoiceStatus
	FromDate *time.Time
	ToDate   *time.Time
}

// InvoiceServicer defines the contract for sales invoicing logic.
type InvoiceServicer interface {
	CreateInvoice(createdBy uint, invoiceNumber, customerName, customerContact, customerPhone, notes string, issuedAt time.Time, items []InvoiceItemInput) (*models.SalesInvoice, error)
	GetInvoices(page pagination.PageRequest, filter InvoiceFilter) (*pagination.PageResponse[models.SalesInvoice], error)
	GetInvoiceByID(id uint) (*models.SalesInvoice, error)
	MarkInvoicePaid(id uint) (*models.SalesInvoice, error)
	CancelInvoice(id uint) (*models.SalesInvoice, error)
}

// ExpenseServicer defines the contract for expense tracking logic.
type ExpenseServicer interface {
	CreateExpense(createdBy uint, expenseNumber, category, description string, amount int64, incurredAt time.Time) (*models.Expense, error)
	GetExpenses(page pagination.PageRequest, fromDate, toDate *time.Time) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(id uint) (*models.Expense, error)
	UpdateExpense(id uint, category, description string, amount *int64) (*models.Expense, error)
	DeleteExpense(id uint) (*models.Expense, error)
}

// MovementFilter holds optional filter parameters for listing stock movements.
type MovementFilter struct {
	ProductID *uint
	Type      *models.MovementType
	FromDate  *time.Time
	ToDate    *time.Time
}

// StockServicer defines the contract for stock movement logic.
type StockServicer interface {
	RecordMovement(recordedBy, productID uint, movementType models.MovementType, quantity int64, reference, driverName, driverPhone, vehicleNumber, notes string) (*models.StockMovement, error)
	GetMovements(page pagination.PageRequest, filter MovementFilter) (*pagination.PageResponse[models.StockMovement], error)
	GetMovementByID(id uint) (*models.StockMovement, error)
}

// GateServicer defines the contract for the warehouse gate log.
type GateServicer interface {
	CreateGateEntry(recordedBy uint, direction models.GateDirection, vehicleNumber, driverName, driverPhone, purpose string, stockMovementID *uint) (*models.GateEntry, error)
	GetGateEntries(page pagination.PageRequest, direction *models.GateDirection, fromDate, toDate *time.Time) (*pagination.PageResponse[models.GateEntry], error)
	GetGateEntryByID(id uint) (*models.GateEntry, error)
}

// AuditContext carries the actor and network metadata of the request that
// triggered an audited mutation. All fields are best-effort; UserID is nil
// for system actions.
type AuditContext struct {
	UserID    *uint
	UserRole  models.UserRole
	UserEmail string
	IPAddress string
	UserAgent string
	SessionID string
	RequestID string
	Method    string
	Path      string
}

// AuditEntry describes one privileged mutation to record. OldValues and
// NewValues are row snapshots keyed by column name; either may be nil.
type AuditEntry struct {
	Context   AuditContext
	Action    models.AuditAction
	TableName string
	RecordID  string
	OldValues map[string]any
	NewValues map[string]any
}

// AuditLogFilter holds optional filter parameters for the compliance viewer.
// Limit defaults to 50 when zero.
type AuditLogFilter struct {
	ActivityType     *models.ActivityType
	ActivityCategory *models.ActivityCategory
	TableName        *string
	UserID           *uint
	StartDate        *time.Time
	EndDate          *time.Time
	Limit            int
	Offset           int
}

// AuditLogView is a decoded audit row prepared for compliance review, with
// the actor joined and sensitive fields decrypted where possible.
type AuditLogView struct {
	ID               uint                    `json:"id"`
	CreatedAt        time.Time               `json:"created_at"`
	TableName        string                  `json:"table_name"`
	RecordID         string                  `json:"record_id"`
	Action           models.AuditAction      `json:"action"`
	UserID           *uint                   `json:"user_id,omitempty"`
	UserName         string                  `json:"user_name,omitempty"`
	UserRole         models.UserRole         `json:"user_role,omitempty"`
	UserEmail        string                  `json:"user_email,omitempty"`
	IPAddress        string                  `json:"ip_address,omitempty"`
	UserAgent        string                  `json:"user_agent,omitempty"`
	SessionID        string                  `json:"session_id,omitempty"`
	RequestID        string                  `json:"request_id,omitempty"`
	ActivityType     models.ActivityType     `json:"activity_type"`
	ActivityCategory models.ActivityCategory `json:"activity_category"`
	Description      string                  `json:"description"`
	OldValues        map[string]any          `json:"old_values,omitempty"`
	NewValues        map[string]any          `json:"new_values,omitempty"`
	ChangedFields    []string                `json:"changed_fields,omitempty"`
	Metadata         map[string]any          `json:"metadata,omitempty"`
}

// AuditServicer defines the contract for the compliance audit trail. The
// Log* methods are fire-and-forget: they return the id of the recorded row,
// or 0 when recording failed — the triggering business operation must never
// fail because its audit write did.
type AuditServicer interface {
	LogGatekeeperActivity(entry AuditEntry) uint
	LogAccountantActivity(entry AuditEntry) uint
	LogAdminActivity(entry AuditEntry) uint
	LogActivity(entry AuditEntry, activityType models.ActivityType, category models.ActivityCategory, description string) uint
	GetAuditLogs(filter AuditLogFilter) ([]AuditLogView, error)
}
