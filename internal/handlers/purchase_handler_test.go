package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "milltrack/internal/errors"
	"milltrack/internal/models"
	"milltrack/internal/pagination"
	"milltrack/internal/services"
)

func setupPurchaseRouter(handler *PurchaseHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectActor(1, models.RoleAccountant))
	auth.POST("/purchases", handler.CreatePurchase)
	auth.GET("/purchases", handler.ListPurchases)
	auth.GET("/purchases/:id", handler.GetPurchase)
	auth.PUT("/purchases/:id", handler.UpdatePurchase)
	auth.POST("/purchases/:id/receive", handler.ReceivePurchase)
	auth.POST("/purchases/:id/cancel", handler.CancelPurchase)
	return r
}

func TestPurchaseHandler_CreatePurchase(t *testing.T) {
	t.Run("returns 201 and audits header and items", func(t *testing.T) {
		purchaseSvc := &mockPurchaseService{
			createPurchaseFn: func(createdBy uint, purchaseNumber, supplierName, supplierContact, supplierPhone, notes string, items []services.PurchaseItemInput) (*models.Purchase, error) {
				return &models.Purchase{
					Base:           models.Base{ID: 7},
					PurchaseNumber: purchaseNumber,
					SupplierName:   supplierName,
					SupplierPhone:  supplierPhone,
					Status:         models.PurchaseStatusOrdered,
					TotalAmount:    5000,
					CreatedByID:    createdBy,
					Items: []models.PurchaseItem{
						{Base: models.Base{ID: 11}, PurchaseID: 7, ProductID: items[0].ProductID, Quantity: 10, UnitPrice: 500, TotalPrice: 5000},
					},
				}, nil
			},
		}
		auditSvc := &mockAuditService{}
		handler := NewPurchaseHandler(purchaseSvc, auditSvc)
		r := setupPurchaseRouter(handler)

		rec := doRequest(r, "POST", "/purchases",
			`{"purchase_number":"PO-1","supplier_name":"Acme","supplier_phone":"+92-300-1234567","items":[{"product_id":3,"quantity":10,"unit_price":500}]}`)

		assertStatus(t, rec, http.StatusCreated)
		result := parseJSON(t, rec)
		purchase := result["purchase"].(map[string]interface{})
		if purchase["purchase_number"] != "PO-1" {
			t.Errorf("expected PO-1, got %v", purchase["purchase_number"])
		}

		entries := auditSvc.recorded()
		if len(entries) != 2 {
			t.Fatalf("expected header and item audit entries, got %d", len(entries))
		}
		header := entries[0]
		if header.Entry.TableName != "purchases" || header.Entry.RecordID != "7" {
			t.Errorf("unexpected header entry: %+v", header.Entry)
		}
		if header.Entry.Context.UserID == nil || *header.Entry.Context.UserID != 1 {
			t.Error("expected actor attached to audit entry")
		}
		if _, ok := header.Entry.NewValues["items"]; ok {
			t.Error("line items must not ride along in the header snapshot")
		}
		item := entries[1]
		if item.Entry.TableName != "purchase_items" || item.Entry.RecordID != "11" {
			t.Errorf("unexpected item entry: %+v", item.Entry)
		}
		if item.Entry.NewValues["unit_price"] != float64(500) {
			t.Errorf("expected item snapshot with unit price, got %v", item.Entry.NewValues["unit_price"])
		}
	})

	t.Run("returns 400 on missing items", func(t *testing.T) {
		auditSvc := &mockAuditService{}
		handler := NewPurchaseHandler(&mockPurchaseService{}, auditSvc)
		r := setupPurchaseRouter(handler)

		rec := doRequest(r, "POST", "/purchases", `{"purchase_number":"PO-1","supplier_name":"Acme"}`)

		assertStatus(t, rec, http.StatusBadRequest)
		if len(auditSvc.recorded()) != 0 {
			t.Error("rejected request must not be audited")
		}
	})

	t.Run("returns 409 on duplicate number", func(t *testing.T) {
		purchaseSvc := &mockPurchaseService{
			createPurchaseFn: func(uint, string, string, string, string, string, []services.PurchaseItemInput) (*models.Purchase, error) {
				return nil, apperrors.ErrDuplicatePurchaseNo
			},
		}
		handler := NewPurchaseHandler(purchaseSvc, &mockAuditService{})
		r := setupPurchaseRouter(handler)

		rec := doRequest(r, "POST", "/purchases",
			`{"purchase_number":"PO-1","supplier_name":"Acme","items":[{"product_id":3,"quantity":1}]}`)

		assertStatus(t, rec, http.StatusConflict)
	})
}

func TestPurchaseHandler_ReceivePurchase(t *testing.T) {
	t.Run("returns 200 and audits the transition", func(t *testing.T) {
		purchaseSvc := &mockPurchaseService{
			getPurchaseByIDFn: func(id uint) (*models.Purchase, error) {
				return &models.Purchase{Base: models.Base{ID: id}, PurchaseNumber: "PO-2", Status: models.PurchaseStatusOrdered}, nil
			},
			receivePurchaseFn: func(id uint) (*models.Purchase, error) {
				return &models.Purchase{Base: models.Base{ID: id}, PurchaseNumber: "PO-2", Status: models.PurchaseStatusReceived}, nil
			},
		}
		auditSvc := &mockAuditService{}
		handler := NewPurchaseHandler(purchaseSvc, auditSvc)
		r := setupPurchaseRouter(handler)

		rec := doRequest(r, "POST", "/purchases/2/receive", "")

		assertStatus(t, rec, http.StatusOK)
		entries := auditSvc.recorded()
		if len(entries) != 1 {
			t.Fatalf("expected one audit entry, got %d", len(entries))
		}
		entry := entries[0].Entry
		if entry.Action != models.AuditActionUpdate {
			t.Errorf("expected update action, got %s", entry.Action)
		}
		if entry.OldValues["status"] != "ordered" || entry.NewValues["status"] != "received" {
			t.Errorf("expected status transition in snapshots, got %v -> %v", entry.OldValues["status"], entry.NewValues["status"])
		}
	})

	t.Run("returns 404 for unknown order", func(t *testing.T) {
		purchaseSvc := &mockPurchaseService{
			getPurchaseByIDFn: func(uint) (*models.Purchase, error) {
				return nil, apperrors.ErrPurchaseNotFound
			},
		}
		handler := NewPurchaseHandler(purchaseSvc, &mockAuditService{})
		r := setupPurchaseRouter(handler)

		rec := doRequest(r, "POST", "/purchases/99/receive", "")
		assertStatus(t, rec, http.StatusNotFound)
	})
}

func TestPurchaseHandler_ListPurchases(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		var gotFilter services.PurchaseFilter
		purchaseSvc := &mockPurchaseService{
			getPurchasesFn: func(page pagination.PageRequest, filter services.PurchaseFilter) (*pagination.PageResponse[models.Purchase], error) {
				gotFilter = filter
				resp := pagination.NewPageResponse([]models.Purchase{{PurchaseNumber: "PO-1"}}, page.Page, page.PageSize, 1)
				return &resp, nil
			},
		}
		handler := NewPurchaseHandler(purchaseSvc, &mockAuditService{})
		r := setupPurchaseRouter(handler)

		rec := doRequest(r, "GET", "/purchases?status=ordered&from_date=2026-01-01", "")

		assertStatus(t, rec, http.StatusOK)
		if gotFilter.Status == nil || *gotFilter.Status != models.PurchaseStatusOrdered {
			t.Error("expected status filter forwarded")
		}
		if gotFilter.FromDate == nil || gotFilter.FromDate.Year() != 2026 {
			t.Error("expected from_date filter forwarded")
		}
	})

	t.Run("returns 400 on malformed date", func(t *testing.T) {
		handler := NewPurchaseHandler(&mockPurchaseService{}, &mockAuditService{})
		r := setupPurchaseRouter(handler)

		rec := doRequest(r, "GET", "/purchases?from_date=January", "")
		assertStatus(t, rec, http.StatusBadRequest)
	})
}
