package services

import (
	"testing"
	"time"

	"milltrack/internal/models"
	"milltrack/internal/testutil"
)

func TestCreateInvoice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewInvoiceService(db)
	user := testutil.CreateTestUserWithRole(t, db, models.RoleAccountant)

	t.Run("success_decrements_stock", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, db, 50)

		invoice, err := svc.CreateInvoice(user.ID, "INV-1001", "Karachi Mills", "", "+92-321-0000001", "", time.Now(),
			[]InvoiceItemInput{{ProductID: product.ID, Quantity: 30, UnitPrice: 200}})
		testutil.AssertNoError(t, err)

		if invoice.Status != models.InvoiceStatusIssued {
			t.Errorf("expected issued status, got %s", invoice.Status)
		}
		if invoice.TotalAmount != 6000 {
			t.Errorf("expected total 6000, got %d", invoice.TotalAmount)
		}

		var stored models.Product
		db.First(&stored, product.ID)
		if stored.Quantity != 20 {
			t.Errorf("expected stock 20, got %d", stored.Quantity)
		}
	})

	t.Run("insufficient_stock_rolls_back", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, db, 5)

		_, err := svc.CreateInvoice(user.ID, "INV-1002", "Karachi Mills", "", "", "", time.Now(),
			[]InvoiceItemInput{{ProductID: product.ID, Quantity: 10, UnitPrice: 100}})
		testutil.AssertAppError(t, err, "INSUFFICIENT_STOCK")

		// Transaction rollback: no invoice header, stock untouched.
		var count int64
		db.Model(&models.SalesInvoice{}).Where("invoice_number = ?", "INV-1002").Count(&count)
		if count != 0 {
			t.Error("expected invoice rolled back")
		}
		var stored models.Product
		db.First(&stored, product.ID)
		if stored.Quantity != 5 {
			t.Errorf("expected stock unchanged, got %d", stored.Quantity)
		}
	})

	t.Run("duplicate_number", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, db, 10)
		_, err := svc.CreateInvoice(user.ID, "INV-1001", "Other", "", "", "", time.Now(),
			[]InvoiceItemInput{{ProductID: product.ID, Quantity: 1, UnitPrice: 1}})
		testutil.AssertAppError(t, err, "DUPLICATE_INVOICE_NUMBER")
	})
}

func TestInvoiceLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewInvoiceService(db)
	user := testutil.CreateTestUserWithRole(t, db, models.RoleAccountant)

	t.Run("mark_paid", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, db, 10)
		invoice, err := svc.CreateInvoice(user.ID, "INV-2001", "Karachi Mills", "", "", "", time.Now(),
			[]InvoiceItemInput{{ProductID: product.ID, Quantity: 1, UnitPrice: 100}})
		testutil.AssertNoError(t, err)

		paid, err := svc.MarkInvoicePaid(invoice.ID)
		testutil.AssertNoError(t, err)
		if paid.Status != models.InvoiceStatusPaid {
			t.Errorf("expected paid status, got %s", paid.Status)
		}

		// Paid invoices cannot be cancelled.
		_, err = svc.CancelInvoice(invoice.ID)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("cancel_restores_stock", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, db, 10)
		invoice, err := svc.CreateInvoice(user.ID, "INV-2002", "Karachi Mills", "", "", "", time.Now(),
			[]InvoiceItemInput{{ProductID: product.ID, Quantity: 4, UnitPrice: 100}})
		testutil.AssertNoError(t, err)

		cancelled, err := svc.CancelInvoice(invoice.ID)
		testutil.AssertNoError(t, err)
		if cancelled.Status != models.InvoiceStatusCancelled {
			t.Errorf("expected cancelled status, got %s", cancelled.Status)
		}

		var stored models.Product
		db.First(&stored, product.ID)
		if stored.Quantity != 10 {
			t.Errorf("expected stock restored to 10, got %d", stored.Quantity)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := svc.MarkInvoicePaid(99999)
		testutil.AssertAppError(t, err, "INVOICE_NOT_FOUND")
	})
}
