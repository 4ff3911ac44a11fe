package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "milltrack/internal/errors"
	"milltrack/internal/models"
	"milltrack/internal/services"
)

// AuditHandler serves the compliance audit trail viewer.
type AuditHandler struct {
	auditService services.AuditServicer
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService services.AuditServicer) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// AuditLogQuery represents the query parameters of the audit trail viewer
type AuditLogQuery struct {
	ActivityType     string `form:"activity_type" binding:"omitempty,activity_type"`
	ActivityCategory string `form:"activity_category" binding:"omitempty,max=50"`
	TableName        string `form:"table_name" binding:"omitempty,max=64"`
	UserID           *uint  `form:"user_id"`
	StartDate        string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate          string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Limit            int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset           int    `form:"offset" binding:"omitempty,min=0"`
}

// ListAuditLogs returns audit trail records
// @Summary     List audit logs
// @Description Get audit trail records, newest first, with sensitive fields decrypted for review (admin only)
// @Tags        audit
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       activity_type query string false "Filter by activity type" Enums(gatekeeper_entry, accountant_transaction, admin_action, system_action)
// @Param       activity_category query string false "Filter by activity category"
// @Param       table_name query string false "Filter by affected table"
// @Param       user_id query int false "Filter by acting user"
// @Param       start_date query string false "Start date (YYYY-MM-DD)"
// @Param       end_date query string false "End date (YYYY-MM-DD)"
// @Param       limit query int false "Maximum rows (default 50)"
// @Param       offset query int false "Rows to skip"
// @Success     200 {array} services.AuditLogView "Audit records"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	var query AuditLogQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.AuditLogFilter{
		UserID: query.UserID,
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if query.ActivityType != "" {
		t := models.ActivityType(query.ActivityType)
		filter.ActivityType = &t
	}
	if query.ActivityCategory != "" {
		cat := models.ActivityCategory(query.ActivityCategory)
		filter.ActivityCategory = &cat
	}
	if query.TableName != "" {
		filter.TableName = &query.TableName
	}
	var err error
	if filter.StartDate, err = parseDateQuery(c, "start_date"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.EndDate, err = parseDateQuery(c, "end_date"); err != nil {
		respondWithError(c, err)
		return
	}

	logs, err := h.auditService.GetAuditLogs(filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": logs})
}
