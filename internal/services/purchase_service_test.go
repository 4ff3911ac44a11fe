package services

import (
	"testing"

	"milltrack/internal/models"
	"milltrack/internal/testutil"
)

func TestCreatePurchase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewPurchaseService(db)
	user := testutil.CreateTestUserWithRole(t, db, models.RoleAccountant)

	t.Run("success_computes_totals", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, db, 0)

		purchase, err := svc.CreatePurchase(user.ID, "PO-1001", "Acme Supplies", "contact@acme.com", "+92-300-1234567", "",
			[]PurchaseItemInput{{ProductID: product.ID, Quantity: 10, UnitPrice: 500}})
		testutil.AssertNoError(t, err)

		if purchase.Status != models.PurchaseStatusOrdered {
			t.Errorf("expected ordered status, got %s", purchase.Status)
		}
		if purchase.TotalAmount != 5000 {
			t.Errorf("expected total 5000, got %d", purchase.TotalAmount)
		}
		if len(purchase.Items) != 1 || purchase.Items[0].TotalPrice != 5000 {
			t.Errorf("unexpected items: %+v", purchase.Items)
		}

		// Stock must not move until the order is received.
		var stored models.Product
		db.First(&stored, product.ID)
		if stored.Quantity != 0 {
			t.Errorf("expected unchanged stock, got %d", stored.Quantity)
		}
	})

	t.Run("duplicate_number", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, db, 0)
		_, err := svc.CreatePurchase(user.ID, "PO-1001", "Other", "", "", "",
			[]PurchaseItemInput{{ProductID: product.ID, Quantity: 1, UnitPrice: 1}})
		testutil.AssertAppError(t, err, "DUPLICATE_PURCHASE_NUMBER")
	})

	t.Run("unknown_product", func(t *testing.T) {
		_, err := svc.CreatePurchase(user.ID, "PO-1002", "Acme", "", "", "",
			[]PurchaseItemInput{{ProductID: 99999, Quantity: 1, UnitPrice: 1}})
		testutil.AssertAppError(t, err, "PRODUCT_NOT_FOUND")
	})

	t.Run("no_items", func(t *testing.T) {
		_, err := svc.CreatePurchase(user.ID, "PO-1003", "Acme", "", "", "", nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestReceivePurchase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewPurchaseService(db)
	user := testutil.CreateTestUserWithRole(t, db, models.RoleAccountant)

	t.Run("increments_stock", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, db, 5)
		purchase, err := svc.CreatePurchase(user.ID, "PO-2001", "Acme", "", "", "",
			[]PurchaseItemInput{{ProductID: product.ID, Quantity: 20, UnitPrice: 100}})
		testutil.AssertNoError(t, err)

		received, err := svc.ReceivePurchase(purchase.ID)
		testutil.AssertNoError(t, err)
		if received.Status != models.PurchaseStatusReceived || received.ReceivedAt == nil {
			t.Errorf("expected received status with timestamp, got %s", received.Status)
		}

		var stored models.Product
		db.First(&stored, product.ID)
		if stored.Quantity != 25 {
			t.Errorf("expected stock 25, got %d", stored.Quantity)
		}
	})

	t.Run("cannot_receive_twice", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, db, 0)
		purchase, err := svc.CreatePurchase(user.ID, "PO-2002", "Acme", "", "", "",
			[]PurchaseItemInput{{ProductID: product.ID, Quantity: 1, UnitPrice: 1}})
		testutil.AssertNoError(t, err)

		_, err = svc.ReceivePurchase(purchase.ID)
		testutil.AssertNoError(t, err)
		_, err = svc.ReceivePurchase(purchase.ID)
		testutil.AssertAppError(t, err, "PURCHASE_NOT_EDITABLE")
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := svc.ReceivePurchase(99999)
		testutil.AssertAppError(t, err, "PURCHASE_NOT_FOUND")
	})
}

func TestUpdatePurchase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewPurchaseService(db)
	user := testutil.CreateTestUserWithRole(t, db, models.RoleAccountant)

	t.Run("open_order_editable", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, db, 0)
		purchase, err := svc.CreatePurchase(user.ID, "PO-3001", "Acme", "", "", "",
			[]PurchaseItemInput{{ProductID: product.ID, Quantity: 1, UnitPrice: 1}})
		testutil.AssertNoError(t, err)

		_, err = svc.UpdatePurchase(purchase.ID, "Acme Industrial", "", "+92-300-9999999", "")
		testutil.AssertNoError(t, err)

		var stored models.Purchase
		db.First(&stored, purchase.ID)
		if stored.SupplierName != "Acme Industrial" || stored.SupplierPhone != "+92-300-9999999" {
			t.Errorf("update not applied: %+v", stored)
		}
	})

	t.Run("cancelled_order_not_editable", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, db, 0)
		purchase, err := svc.CreatePurchase(user.ID, "PO-3002", "Acme", "", "", "",
			[]PurchaseItemInput{{ProductID: product.ID, Quantity: 1, UnitPrice: 1}})
		testutil.AssertNoError(t, err)

		_, err = svc.CancelPurchase(purchase.ID)
		testutil.AssertNoError(t, err)
		_, err = svc.UpdatePurchase(purchase.ID, "New Name", "", "", "")
		testutil.AssertAppError(t, err, "PURCHASE_NOT_EDITABLE")
	})
}
