package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"milltrack/internal/fieldcrypt"
	"milltrack/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewTestCipher creates a field cipher keyed by a fixed test secret.
func NewTestCipher(t *testing.T) *fieldcrypt.Cipher {
	t.Helper()

	cipher, err := fieldcrypt.New("test-audit-secret")
	if err != nil {
		t.Fatalf("failed to create test cipher: %v", err)
	}
	return cipher
}

// CreateTestUser creates an active gatekeeper with a unique username and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRole(t, db, models.RoleGatekeeper)
}

// CreateTestUserWithRole creates an active user with the given role.
func CreateTestUserWithRole(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := nextID()
	user := &models.User{
		Username: fmt.Sprintf("user%d", n),
		Email:    fmt.Sprintf("user%d@test.com", n),
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestProduct creates an active product with the given on-hand quantity.
func CreateTestProduct(t *testing.T, db *gorm.DB, quantity int64) *models.Product {
	t.Helper()

	n := nextID()
	product := &models.Product{
		SKU:      fmt.Sprintf("SKU-%d", n),
		Name:     fmt.Sprintf("Test Product %d", n),
		Unit:     "pcs",
		Quantity: quantity,
		IsActive: true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

// CreateTestExpense creates an expense record owned by the given user.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID uint) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		ExpenseNumber: fmt.Sprintf("EXP-%d", nextID()),
		Category:      "utilities",
		Amount:        5000,
		IncurredAt:    time.Now(),
		CreatedByID:   userID,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestGateEntry creates an inbound gate entry recorded by the given user.
func CreateTestGateEntry(t *testing.T, db *gorm.DB, userID uint) *models.GateEntry {
	t.Helper()

	entry := &models.GateEntry{
		EntryNumber:   fmt.Sprintf("GT-%06d", nextID()),
		Direction:     models.GateDirectionIn,
		VehicleNumber: fmt.Sprintf("LEB-%04d", nextID()),
		RecordedByID:  userID,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test gate entry: %v", err)
	}
	return entry
}
