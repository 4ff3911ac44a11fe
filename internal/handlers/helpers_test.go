package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"milltrack/internal/models"
	"milltrack/internal/pagination"
	"milltrack/internal/services"
	"milltrack/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
	// Token generation reads configuration from the environment.
	os.Setenv("JWT_SECRET", "test-jwt-secret")
	os.Setenv("AUDIT_SECRET", "test-audit-secret")
}

// --- mock audit service ---

// mockAuditService records every audit entry it receives so tests can assert
// on what the handlers logged.
type mockAuditService struct {
	mu      sync.Mutex
	entries []recordedAudit
	logs    []services.AuditLogView
	logsErr error
}

type recordedAudit struct {
	Entry services.AuditEntry
	Type  models.ActivityType
}

func (m *mockAuditService) add(entry services.AuditEntry, activityType models.ActivityType) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, recordedAudit{Entry: entry, Type: activityType})
	return uint(len(m.entries))
}

func (m *mockAuditService) LogGatekeeperActivity(entry services.AuditEntry) uint {
	return m.add(entry, models.ActivityGatekeeperEntry)
}

func (m *mockAuditService) LogAccountantActivity(entry services.AuditEntry) uint {
	return m.add(entry, models.ActivityAccountantTransaction)
}

func (m *mockAuditService) LogAdminActivity(entry services.AuditEntry) uint {
	return m.add(entry, models.ActivityAdminAction)
}

func (m *mockAuditService) LogActivity(entry services.AuditEntry, activityType models.ActivityType, _ models.ActivityCategory, _ string) uint {
	return m.add(entry, activityType)
}

func (m *mockAuditService) GetAuditLogs(_ services.AuditLogFilter) ([]services.AuditLogView, error) {
	return m.logs, m.logsErr
}

func (m *mockAuditService) recorded() []recordedAudit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedAudit(nil), m.entries...)
}

var _ services.AuditServicer = (*mockAuditService)(nil)

// --- mock user service ---

type mockUserService struct {
	createUserFn            func(username, email, phone, password, firstName, lastName string, role models.UserRole) (*models.User, error)
	getUserByEmailFn        func(email string) (*models.User, error)
	getUserByIDFn           func(id uint) (*models.User, error)
	verifyPasswordFn        func(user *models.User, password string) bool
	attemptLoginFn          func(email, password string) (*models.User, error)
	storeRefreshTokenHashFn func(userID uint, tokenHash string) error
	getRefreshTokenHashFn   func(userID uint) (string, error)
	listUsersFn             func(page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	updateUserFn            func(id uint, role *models.UserRole, isActive *bool, phone *string) (*models.User, error)
}

func (m *mockUserService) CreateUser(username, email, phone, password, firstName, lastName string, role models.UserRole) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(username, email, phone, password, firstName, lastName, role)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id uint) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}, IsActive: true}, nil
}

func (m *mockUserService) VerifyPassword(user *models.User, password string) bool {
	if m.verifyPasswordFn != nil {
		return m.verifyPasswordFn(user, password)
	}
	return true
}

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{IsActive: true}, nil
}

func (m *mockUserService) StoreRefreshTokenHash(userID uint, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(userID, tokenHash)
	}
	return nil
}

func (m *mockUserService) GetRefreshTokenHash(userID uint) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(userID)
	}
	return "", nil
}

func (m *mockUserService) ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(page)
	}
	resp := pagination.NewPageResponse([]models.User{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockUserService) UpdateUser(id uint, role *models.UserRole, isActive *bool, phone *string) (*models.User, error) {
	if m.updateUserFn != nil {
		return m.updateUserFn(id, role, isActive, phone)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

var _ services.UserServicer = (*mockUserService)(nil)

// --- mock purchase service ---

type mockPurchaseService struct {
	createPurchaseFn  func(createdBy uint, purchaseNumber, supplierName, supplierContact, supplierPhone, notes string, items []services.PurchaseItemInput) (*models.Purchase, error)
	getPurchasesFn    func(page pagination.PageRequest, filter services.PurchaseFilter) (*pagination.PageResponse[models.Purchase], error)
	getPurchaseByIDFn func(id uint) (*models.Purchase, error)
	updatePurchaseFn  func(id uint, supplierName, supplierContact, supplierPhone, notes string) (*models.Purchase, error)
	receivePurchaseFn func(id uint) (*models.Purchase, error)
	cancelPurchaseFn  func(id uint) (*models.Purchase, error)
}

func (m *mockPurchaseService) CreatePurchase(createdBy uint, purchaseNumber, supplierName, supplierContact, supplierPhone, notes string, items []services.PurchaseItemInput) (*models.Purchase, error) {
	if m.createPurchaseFn != nil {
		return m.createPurchaseFn(createdBy, purchaseNumber, supplierName, supplierContact, supplierPhone, notes, items)
	}
	return &models.Purchase{}, nil
}

func (m *mockPurchaseService) GetPurchases(page pagination.PageRequest, filter services.PurchaseFilter) (*pagination.PageResponse[models.Purchase], error) {
	if m.getPurchasesFn != nil {
		return m.getPurchasesFn(page, filter)
	}
	resp := pagination.NewPageResponse([]models.Purchase{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockPurchaseService) GetPurchaseByID(id uint) (*models.Purchase, error) {
	if m.getPurchaseByIDFn != nil {
		return m.getPurchaseByIDFn(id)
	}
	return &models.Purchase{Base: models.Base{ID: id}}, nil
}

func (m *mockPurchaseService) UpdatePurchase(id uint, supplierName, supplierContact, supplierPhone, notes string) (*models.Purchase, error) {
	if m.updatePurchaseFn != nil {
		return m.updatePurchaseFn(id, supplierName, supplierContact, supplierPhone, notes)
	}
	return &models.Purchase{Base: models.Base{ID: id}}, nil
}

func (m *mockPurchaseService) ReceivePurchase(id uint) (*models.Purchase, error) {
	if m.receivePurchaseFn != nil {
		return m.receivePurchaseFn(id)
	}
	return &models.Purchase{Base: models.Base{ID: id}}, nil
}

func (m *mockPurchaseService) CancelPurchase(id uint) (*models.Purchase, error) {
	if m.cancelPurchaseFn != nil {
		return m.cancelPurchaseFn(id)
	}
	return &models.Purchase{Base: models.Base{ID: id}}, nil
}

var _ services.PurchaseServicer = (*mockPurchaseService)(nil)

// --- mock gate service ---

type mockGateService struct {
	createGateEntryFn  func(recordedBy uint, direction models.GateDirection, vehicleNumber, driverName, driverPhone, purpose string, stockMovementID *uint) (*models.GateEntry, error)
	getGateEntriesFn   func(page pagination.PageRequest, direction *models.GateDirection, fromDate, toDate *time.Time) (*pagination.PageResponse[models.GateEntry], error)
	getGateEntryByIDFn func(id uint) (*models.GateEntry, error)
}

func (m *mockGateService) CreateGateEntry(recordedBy uint, direction models.GateDirection, vehicleNumber, driverName, driverPhone, purpose string, stockMovementID *uint) (*models.GateEntry, error) {
	if m.createGateEntryFn != nil {
		return m.createGateEntryFn(recordedBy, direction, vehicleNumber, driverName, driverPhone, purpose, stockMovementID)
	}
	return &models.GateEntry{}, nil
}

func (m *mockGateService) GetGateEntries(page pagination.PageRequest, direction *models.GateDirection, fromDate, toDate *time.Time) (*pagination.PageResponse[models.GateEntry], error) {
	if m.getGateEntriesFn != nil {
		return m.getGateEntriesFn(page, direction, fromDate, toDate)
	}
	resp := pagination.NewPageResponse([]models.GateEntry{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockGateService) GetGateEntryByID(id uint) (*models.GateEntry, error) {
	if m.getGateEntryByIDFn != nil {
		return m.getGateEntryByIDFn(id)
	}
	return &models.GateEntry{Base: models.Base{ID: id}}, nil
}

var _ services.GateServicer = (*mockGateService)(nil)

// --- test helpers ---

// injectActor simulates AuthMiddleware for a given user and role.
func injectActor(uid uint, role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Set("email", "actor@test.com")
		c.Set("role", role)
		c.Set("sessionID", "sess-test")
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}
