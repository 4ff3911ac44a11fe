package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "milltrack/internal/errors"
	"milltrack/internal/models"
	"milltrack/internal/pagination"
	"milltrack/internal/services"
)

// GateHandler handles warehouse gate log requests.
type GateHandler struct {
	gateService  services.GateServicer
	auditService services.AuditServicer
}

// NewGateHandler creates a new GateHandler.
func NewGateHandler(gateService services.GateServicer, auditService services.AuditServicer) *GateHandler {
	return &GateHandler{gateService: gateService, auditService: auditService}
}

// CreateGateEntryRequest represents the request payload for logging a gate entry
type CreateGateEntryRequest struct {
	Direction       string `json:"direction" binding:"required,gate_direction"`
	VehicleNumber   string `json:"vehicle_number" binding:"required,min=1,max=30"`
	DriverName      string `json:"driver_name" binding:"max=100"`
	DriverPhone     string `json:"driver_phone" binding:"max=30"`
	Purpose         string `json:"purpose" binding:"max=255"`
	StockMovementID *uint  `json:"stock_movement_id"`
}

// CreateGateEntry logs a vehicle passing the gate
// @Summary     Create a gate entry
// @Description Log a vehicle entering or leaving the premises (gatekeeper only)
// @Tags        gate
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGateEntryRequest true "Gate entry data"
// @Success     201 {object} models.GateEntry "Gate entry created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Linked movement not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /gate/entries [post]
func (h *GateHandler) CreateGateEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.gateService.CreateGateEntry(userID, models.GateDirection(req.Direction), req.VehicleNumber,
		req.DriverName, req.DriverPhone, req.Purpose, req.StockMovementID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.LogGatekeeperActivity(services.AuditEntry{
		Context:   auditContext(c),
		Action:    models.AuditActionInsert,
		TableName: "gate_entries",
		RecordID:  recordID(entry.ID),
		NewValues: auditSnapshot(entry),
	})

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// ListGateEntries returns the gate log
// @Summary     List gate entries
// @Description Get a paginated, filtered view of the gate log
// @Tags        gate
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       direction query string false "Filter by direction" Enums(in, out)
// @Param       from_date query string false "Start date (YYYY-MM-DD)"
// @Param       to_date query string false "End date (YYYY-MM-DD)"
// @Success     200 {object} pagination.PageResponse[models.GateEntry] "Paginated gate entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /gate/entries [get]
func (h *GateHandler) ListGateEntries(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var direction *models.GateDirection
	if raw := c.Query("direction"); raw != "" {
		d := models.GateDirection(raw)
		direction = &d
	}
	fromDate, err := parseDateQuery(c, "from_date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	toDate, err := parseDateQuery(c, "to_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.gateService.GetGateEntries(page, direction, fromDate, toDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetGateEntry returns a single gate entry
// @Summary     Get a gate entry
// @Description Get a gate entry by ID
// @Tags        gate
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Gate entry ID"
// @Success     200 {object} models.GateEntry "Gate entry"
// @Failure     404 {object} ErrorResponse "Gate entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /gate/entries/{id} [get]
func (h *GateHandler) GetGateEntry(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.gateService.GetGateEntryByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}
