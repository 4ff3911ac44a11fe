package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "milltrack/internal/errors"
	"milltrack/internal/models"
	"milltrack/internal/pagination"
	"milltrack/internal/services"
)

// PurchaseHandler handles purchase order requests.
type PurchaseHandler struct {
	purchaseService services.PurchaseServicer
	auditService    services.AuditServicer
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(purchaseService services.PurchaseServicer, auditService services.AuditServicer) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService, auditService: auditService}
}

// PurchaseItemRequest represents one requested purchase order line
type PurchaseItemRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	Quantity  int64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice int64 `json:"unit_price" binding:"gte=0"`
}

// CreatePurchaseRequest represents the request payload for creating a purchase order
type CreatePurchaseRequest struct {
	PurchaseNumber  string                `json:"purchase_number" binding:"required,min=1,max=50"`
	SupplierName    string                `json:"supplier_name" binding:"required,min=1,max=200"`
	SupplierContact string                `json:"supplier_contact" binding:"max=255"`
	SupplierPhone   string                `json:"supplier_phone" binding:"max=30"`
	Notes           string                `json:"notes" binding:"max=1000"`
	Items           []PurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdatePurchaseRequest represents the request payload for updating an open purchase order
type UpdatePurchaseRequest struct {
	SupplierName    string `json:"supplier_name" binding:"omitempty,min=1,max=200"`
	SupplierContact string `json:"supplier_contact" binding:"omitempty,max=255"`
	SupplierPhone   string `json:"supplier_phone" binding:"omitempty,max=30"`
	Notes           string `json:"notes" binding:"omitempty,max=1000"`
}

// auditPurchase writes audit entries for a purchase order mutation: one for
// the header and one per line item, so line prices fall under the
// purchase_items field registry.
func (h *PurchaseHandler) auditPurchase(c *gin.Context, action models.AuditAction, purchase *models.Purchase, oldValues map[string]any) {
	h.auditService.LogAccountantActivity(services.AuditEntry{
		Context:   auditContext(c),
		Action:    action,
		TableName: "purchases",
		RecordID:  recordID(purchase.ID),
		OldValues: oldValues,
		NewValues: auditSnapshot(purchase),
	})
	if action != models.AuditActionInsert {
		return
	}
	for i := range purchase.Items {
		item := &purchase.Items[i]
		h.auditService.LogAccountantActivity(services.AuditEntry{
			Context:   auditContext(c),
			Action:    models.AuditActionInsert,
			TableName: "purchase_items",
			RecordID:  recordID(item.ID),
			NewValues: auditSnapshot(item),
		})
	}
}

// CreatePurchase creates a purchase order
// @Summary     Create a purchase order
// @Description Create a purchase order with line items (accountant only)
// @Tags        purchases
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePurchaseRequest true "Purchase order data"
// @Success     201 {object} models.Purchase "Purchase order created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Duplicate purchase number"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /purchases [post]
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	items := make([]services.PurchaseItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.PurchaseItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	purchase, err := h.purchaseService.CreatePurchase(userID, req.PurchaseNumber, req.SupplierName, req.SupplierContact, req.SupplierPhone, req.Notes, items)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditPurchase(c, models.AuditActionInsert, purchase, nil)

	c.JSON(http.StatusCreated, gin.H{"purchase": purchase})
}

// ListPurchases returns purchase orders
// @Summary     List purchase orders
// @Description Get a paginated, filtered list of purchase orders
// @Tags        purchases
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       status query string false "Filter by status" Enums(ordered, received, cancelled)
// @Param       from_date query string false "Start date (YYYY-MM-DD)"
// @Param       to_date query string false "End date (YYYY-MM-DD)"
// @Success     200 {object} pagination.PageResponse[models.Purchase] "Paginated purchase orders"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /purchases [get]
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.PurchaseFilter
	if status := c.Query("status"); status != "" {
		s := models.PurchaseStatus(status)
		filter.Status = &s
	}
	var err error
	if filter.FromDate, err = parseDateQuery(c, "from_date"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.ToDate, err = parseDateQuery(c, "to_date"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.purchaseService.GetPurchases(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPurchase returns a single purchase order
// @Summary     Get a purchase order
// @Description Get a purchase order with its line items
// @Tags        purchases
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Purchase ID"
// @Success     200 {object} models.Purchase "Purchase order"
// @Failure     404 {object} ErrorResponse "Purchase order not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /purchases/{id} [get]
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	purchase, err := h.purchaseService.GetPurchaseByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase": purchase})
}

// UpdatePurchase updates an open purchase order
// @Summary     Update a purchase order
// @Description Update supplier details of an order that has not been received (accountant only)
// @Tags        purchases
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Purchase ID"
// @Param       request body UpdatePurchaseRequest true "Fields to update"
// @Success     200 {object} models.Purchase "Updated purchase order"
// @Failure     400 {object} ErrorResponse "Invalid input or not editable"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Purchase order not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /purchases/{id} [put]
func (h *PurchaseHandler) UpdatePurchase(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	before, err := h.purchaseService.GetPurchaseByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	oldValues := auditSnapshot(before)

	purchase, err := h.purchaseService.UpdatePurchase(id, req.SupplierName, req.SupplierContact, req.SupplierPhone, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if after, err := h.purchaseService.GetPurchaseByID(id); err == nil {
		purchase = after
	}

	h.auditPurchase(c, models.AuditActionUpdate, purchase, oldValues)

	c.JSON(http.StatusOK, gin.H{"purchase": purchase})
}

// ReceivePurchase marks a purchase order as received
// @Summary     Receive a purchase order
// @Description Mark an order as received and add its quantities to stock (accountant only)
// @Tags        purchases
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Purchase ID"
// @Success     200 {object} models.Purchase "Received purchase order"
// @Failure     400 {object} ErrorResponse "Order not receivable"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Purchase order not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /purchases/{id}/receive [post]
func (h *PurchaseHandler) ReceivePurchase(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	before, err := h.purchaseService.GetPurchaseByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	oldValues := auditSnapshot(before)

	purchase, err := h.purchaseService.ReceivePurchase(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditPurchase(c, models.AuditActionUpdate, purchase, oldValues)

	c.JSON(http.StatusOK, gin.H{"purchase": purchase})
}

// CancelPurchase cancels an open purchase order
// @Summary     Cancel a purchase order
// @Description Cancel an order that has not been received (accountant only)
// @Tags        purchases
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Purchase ID"
// @Success     200 {object} models.Purchase "Cancelled purchase order"
// @Failure     400 {object} ErrorResponse "Order not cancellable"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Purchase order not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /purchases/{id}/cancel [post]
func (h *PurchaseHandler) CancelPurchase(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	before, err := h.purchaseService.GetPurchaseByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	oldValues := auditSnapshot(before)

	purchase, err := h.purchaseService.CancelPurchase(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.LogAccountantActivity(services.AuditEntry{
		Context:   auditContext(c),
		Action:    models.AuditActionDelete,
		TableName: "purchases",
		RecordID:  recordID(purchase.ID),
		OldValues: oldValues,
		NewValues: auditSnapshot(purchase),
	})

	c.JSON(http.StatusOK, gin.H{"purchase": purchase})
}
