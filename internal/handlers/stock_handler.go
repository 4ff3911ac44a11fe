package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "milltrack/internal/errors"
	"milltrack/internal/models"
	"milltrack/internal/pagination"
	"milltrack/internal/services"
)

// StockHandler handles stock movement requests.
type StockHandler struct {
	stockService services.StockServicer
	auditService services.AuditServicer
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockService services.StockServicer, auditService services.AuditServicer) *StockHandler {
	return &StockHandler{stockService: stockService, auditService: auditService}
}

// RecordMovementRequest represents the request payload for recording a stock movement
type RecordMovementRequest struct {
	ProductID     uint   `json:"product_id" binding:"required"`
	Type          string `json:"type" binding:"required,movement_type"`
	Quantity      int64  `json:"quantity" binding:"required"`
	Reference     string `json:"reference" binding:"max=100"`
	DriverName    string `json:"driver_name" binding:"max=100"`
	DriverPhone   string `json:"driver_phone" binding:"max=30"`
	VehicleNumber string `json:"vehicle_number" binding:"max=30"`
	Notes         string `json:"notes" binding:"max=500"`
}

// RecordMovement records a stock movement
// @Summary     Record a stock movement
// @Description Record an inbound, outbound, or adjustment movement and apply it to stock (gatekeeper only)
// @Tags        stock
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RecordMovementRequest true "Movement data"
// @Success     201 {object} models.StockMovement "Movement recorded"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient stock"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stock/movements [post]
func (h *StockHandler) RecordMovement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	movement, err := h.stockService.RecordMovement(userID, req.ProductID, models.MovementType(req.Type), req.Quantity,
		req.Reference, req.DriverName, req.DriverPhone, req.VehicleNumber, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.LogGatekeeperActivity(services.AuditEntry{
		Context:   auditContext(c),
		Action:    models.AuditActionInsert,
		TableName: "stock_movements",
		RecordID:  recordID(movement.ID),
		NewValues: auditSnapshot(movement),
	})

	c.JSON(http.StatusCreated, gin.H{"movement": movement})
}

// ListMovements returns stock movements
// @Summary     List stock movements
// @Description Get a paginated, filtered list of stock movements
// @Tags        stock
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       product_id query int false "Filter by product"
// @Param       type query string false "Filter by type" Enums(in, out, adjustment)
// @Param       from_date query string false "Start date (YYYY-MM-DD)"
// @Param       to_date query string false "End date (YYYY-MM-DD)"
// @Success     200 {object} pagination.PageResponse[models.StockMovement] "Paginated movements"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stock/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.MovementFilter
	if raw := c.Query("product_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid product_id"))
			return
		}
		productID := uint(id)
		filter.ProductID = &productID
	}
	if raw := c.Query("type"); raw != "" {
		mt := models.MovementType(raw)
		filter.Type = &mt
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

	result, err := h.stockService.GetMovements(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetMovement returns a single stock movement
// @Summary     Get a stock movement
// @Description Get a stock movement by ID
// @Tags        stock
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Movement ID"
// @Success     200 {object} models.StockMovement "Movement"
// @Failure     404 {object} ErrorResponse "Movement not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stock/movements/{id} [get]
func (h *StockHandler) GetMovement(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	movement, err := h.stockService.GetMovementByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movement": movement})
}
