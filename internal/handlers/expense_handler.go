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

// ExpenseHandler handles expense tracking requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// CreateExpenseRequest represents the request payload for recording an expense
type CreateExpenseRequest struct {
	ExpenseNumber string     `json:"expense_number" binding:"required,min=1,max=50"`
	Category      string     `json:"category" binding:"required,min=1,max=100"`
	Description   string     `json:"description" binding:"max=500"`
	Amount        int64      `json:"amount" binding:"required,gt=0"`
	IncurredAt    *time.Time `json:"incurred_at"`
}

// UpdateExpenseRequest represents the request payload for updating an expense
type UpdateExpenseRequest struct {
	Category    string `json:"category" binding:"omitempty,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
	Amount      *int64 `json:"amount" binding:"omitempty,gt=0"`
}

// CreateExpense records a business expense
// @Summary     Record an expense
// @Description Record a business expense (accountant only)
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateExpenseRequest true "Expense data"
// @Success     201 {object} models.Expense "Expense recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var incurredAt time.Time
	if req.IncurredAt != nil {
		incurredAt = *req.IncurredAt
	}

	expense, err := h.expenseService.CreateExpense(userID, req.ExpenseNumber, req.Category, req.Description, req.Amount, incurredAt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.LogAccountantActivity(services.AuditEntry{
		Context:   auditContext(c),
		Action:    models.AuditActionInsert,
		TableName: "expenses",
		RecordID:  recordID(expense.ID),
		NewValues: auditSnapshot(expense),
	})

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// ListExpenses returns expenses in a date range
// @Summary     List expenses
// @Description Get a paginated list of expenses, optionally bounded by date
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       from_date query string false "Start date (YYYY-MM-DD)"
// @Param       to_date query string false "End date (YYYY-MM-DD)"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
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

	result, err := h.expenseService.GetExpenses(page, fromDate, toDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetExpense returns a single expense
// @Summary     Get an expense
// @Description Get an expense by ID
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     200 {object} models.Expense "Expense"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense updates an expense
// @Summary     Update an expense
// @Description Update an expense record (accountant only)
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Param       request body UpdateExpenseRequest true "Fields to update"
// @Success     200 {object} models.Expense "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	before, err := h.expenseService.GetExpenseByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	oldValues := auditSnapshot(before)

	expense, err := h.expenseService.UpdateExpense(id, req.Category, req.Description, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if after, err := h.expenseService.GetExpenseByID(id); err == nil {
		expense = after
	}

	h.auditService.LogAccountantActivity(services.AuditEntry{
		Context:   auditContext(c),
		Action:    models.AuditActionUpdate,
		TableName: "expenses",
		RecordID:  recordID(expense.ID),
		OldValues: oldValues,
		NewValues: auditSnapshot(expense),
	})

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense removes an expense
// @Summary     Delete an expense
// @Description Soft-delete an expense record (accountant only)
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     204 "Expense deleted"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.DeleteExpense(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.LogAccountantActivity(services.AuditEntry{
		Context:   auditContext(c),
		Action:    models.AuditActionDelete,
		TableName: "expenses",
		RecordID:  recordID(expense.ID),
		OldValues: auditSnapshot(expense),
	})

	c.Status(http.StatusNoContent)
}
