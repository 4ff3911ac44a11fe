package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "milltrack/internal/errors"
	"milltrack/internal/models"
	"milltrack/internal/pagination"
	"milltrack/internal/services"
)

// InvoiceHandler handles sales invoice requests.
type InvoiceHandler struct {
	invoiceService services.InvoiceServicer
	auditService   services.AuditServicer
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService services.InvoiceServicer, auditService services.AuditServicer) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, auditService: auditService}
}

// InvoiceItemRequest represents one requested invoice line
type InvoiceItemRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	Quantity  int64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice int64 `json:"unit_price" binding:"gte=0"`
}

// CreateInvoiceRequest represents the request payload for issuing an invoice
type CreateInvoiceRequest struct {
	InvoiceNumber   string               `json:"invoice_number" binding:"required,min=1,max=50"`
	CustomerName    string               `json:"customer_name" binding:"required,min=1,max=200"`
	CustomerContact string               `json:"customer_contact" binding:"max=255"`
	CustomerPhone   string               `json:"customer_phone" binding:"max=30"`
	Notes           string               `json:"notes" binding:"max=1000"`
	IssuedAt        *time.Time           `json:"issued_at"`
	Items           []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateInvoice issues a sales invoice
// @Summary     Create a sales invoice
// @Description Issue an invoice and deduct its quantities from stock (accountant only)
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateInvoiceRequest true "Invoice data"
// @Success     201 {object} models.SalesInvoice "Invoice created"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient stock"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Duplicate invoice number"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	items := make([]services.InvoiceItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.InvoiceItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	var issuedAt time.Time
	if req.IssuedAt != nil {
		issuedAt = *req.IssuedAt
	}

	invoice, err := h.invoiceService.CreateInvoice(userID, req.InvoiceNumber, req.CustomerName, req.CustomerContact, req.CustomerPhone, req.Notes, issuedAt, items)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.LogAccountantActivity(services.AuditEntry{
		Context:   auditContext(c),
		Action:    models.AuditActionInsert,
		TableName: "sales_invoices",
		RecordID:  recordID(invoice.ID),
		NewValues: auditSnapshot(invoice),
	})
	for i := range invoice.Items {
		item := &invoice.Items[i]
		h.auditService.LogAccountantActivity(services.AuditEntry{
			Context:   auditContext(c),
			Action:    models.AuditActionInsert,
			TableName: "sales_invoice_items",
			RecordID:  recordID(item.ID),
			NewValues: auditSnapshot(item),
		})
	}

	c.JSON(http.StatusCreated, gin.H{"invoice": invoice})
}

// ListInvoices returns sales invoices
// @Summary     List sales invoices
// @Description Get a paginated, filtered list of sales invoices
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       status query string false "Filter by status" Enums(draft, issued, paid, cancelled)
// @Param       from_date query string false "Start date (YYYY-MM-DD)"
// @Param       to_date query string false "End date (YYYY-MM-DD)"
// @Success     200 {object} pagination.PageResponse[models.SalesInvoice] "Paginated invoices"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.InvoiceFilter
	if status := c.Query("status"); status != "" {
		s := models.InvoiceStatus(status)
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

	result, err := h.invoiceService.GetInvoices(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetInvoice returns a single invoice
// @Summary     Get a sales invoice
// @Description Get an invoice with its line items
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Invoice ID"
// @Success     200 {object} models.SalesInvoice "Invoice"
// @Failure     404 {object} ErrorResponse "Invoice not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoice, err := h.invoiceService.GetInvoiceByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// MarkPaid marks an invoice as paid
// @Summary     Mark invoice paid
// @Description Transition an issued invoice to paid (accountant only)
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Invoice ID"
// @Success     200 {object} models.SalesInvoice "Paid invoice"
// @Failure     400 {object} ErrorResponse "Invoice not in issued state"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Invoice not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /invoices/{id}/pay [post]
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	before, err := h.invoiceService.GetInvoiceByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	oldValues := auditSnapshot(before)

	invoice, err := h.invoiceService.MarkInvoicePaid(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.LogAccountantActivity(services.AuditEntry{
		Context:   auditContext(c),
		Action:    models.AuditActionUpdate,
		TableName: "sales_invoices",
		RecordID:  recordID(invoice.ID),
		OldValues: oldValues,
		NewValues: auditSnapshot(invoice),
	})

	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// CancelInvoice voids an issued invoice
// @Summary     Cancel a sales invoice
// @Description Void an issued invoice and return its quantities to stock (accountant only)
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Invoice ID"
// @Success     200 {object} models.SalesInvoice "Cancelled invoice"
// @Failure     400 {object} ErrorResponse "Invoice not cancellable"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Invoice not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /invoices/{id}/cancel [post]
func (h *InvoiceHandler) CancelInvoice(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	before, err := h.invoiceService.GetInvoiceByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	oldValues := auditSnapshot(before)

	invoice, err := h.invoiceService.CancelInvoice(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.LogAccountantActivity(services.AuditEntry{
		Context:   auditContext(c),
		Action:    models.AuditActionDelete,
		TableName: "sales_invoices",
		RecordID:  recordID(invoice.ID),
		OldValues: oldValues,
		NewValues: auditSnapshot(invoice),
	})

	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}
