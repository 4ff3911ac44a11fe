package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"milltrack/internal/models"
	"milltrack/internal/services"
)

func setupAuditRouter(handler *AuditHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectActor(1, models.RoleAdmin))
	auth.GET("/audit-logs", handler.ListAuditLogs)
	return r
}

func TestAuditHandler_ListAuditLogs(t *testing.T) {
	t.Run("returns decoded audit records", func(t *testing.T) {
		auditSvc := &mockAuditService{
			logs: []services.AuditLogView{
				{
					ID:           1,
					TableName:    "purchases",
					Action:       models.AuditActionInsert,
					ActivityType: models.ActivityAccountantTransaction,
					Description:  "Accountant created purchase order PO-1 for Acme",
					NewValues:    map[string]any{"supplier_phone": "+92-300-1234567"},
				},
			},
		}
		handler := NewAuditHandler(auditSvc)
		r := setupAuditRouter(handler)

		rec := doRequest(r, "GET", "/audit-logs?activity_type=accountant_transaction", "")

		assertStatus(t, rec, http.StatusOK)
		result := parseJSON(t, rec)
		logs := result["audit_logs"].([]interface{})
		if len(logs) != 1 {
			t.Fatalf("expected one log, got %d", len(logs))
		}
		row := logs[0].(map[string]interface{})
		if row["description"] != "Accountant created purchase order PO-1 for Acme" {
			t.Errorf("unexpected description: %v", row["description"])
		}
	})

	t.Run("returns 400 on unknown activity type", func(t *testing.T) {
		handler := NewAuditHandler(&mockAuditService{})
		r := setupAuditRouter(handler)

		rec := doRequest(r, "GET", "/audit-logs?activity_type=espionage", "")
		assertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("returns 400 on malformed date", func(t *testing.T) {
		handler := NewAuditHandler(&mockAuditService{})
		r := setupAuditRouter(handler)

		rec := doRequest(r, "GET", "/audit-logs?start_date=last-week", "")
		assertStatus(t, rec, http.StatusBadRequest)
	})
}
