package services

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"milltrack/internal/fieldcrypt"
	"milltrack/internal/models"
	"milltrack/internal/testutil"
)

func newTestAuditService(t *testing.T) (*auditService, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	svc := NewAuditService(db, testutil.NewTestCipher(t)).(*auditService)
	return svc, func() { testutil.TeardownTestDB(t, db) }
}

func accountantContext(userID uint) AuditContext {
	return AuditContext{
		UserID:    &userID,
		UserRole:  models.RoleAccountant,
		UserEmail: "books@test.com",
		IPAddress: "10.0.0.5",
		UserAgent: "go-test",
		SessionID: "sess-1",
		RequestID: "req-1",
		Method:    "POST",
		Path:      "/api/v1/purchases",
	}
}

func TestLogAccountantActivity(t *testing.T) {
	t.Run("purchase_insert", func(t *testing.T) {
		svc, teardown := newTestAuditService(t)
		defer teardown()
		user := testutil.CreateTestUserWithRole(t, svc.db, models.RoleAccountant)

		id := svc.LogAccountantActivity(AuditEntry{
			Context:   accountantContext(user.ID),
			Action:    models.AuditActionInsert,
			TableName: "purchases",
			RecordID:  "7",
			NewValues: map[string]any{
				"purchase_number": "PO-1",
				"supplier_name":   "Acme",
			},
		})
		if id == 0 {
			t.Fatal("expected non-zero audit id")
		}

		var count int64
		svc.db.Model(&models.AuditLog{}).Count(&count)
		if count != 1 {
			t.Fatalf("expected exactly one audit row, got %d", count)
		}

		var row models.AuditLog
		svc.db.First(&row, id)
		if row.ActivityType != models.ActivityAccountantTransaction {
			t.Errorf("expected accountant_transaction, got %s", row.ActivityType)
		}
		if row.ActivityCategory != models.CategoryFinancial {
			t.Errorf("expected financial category, got %s", row.ActivityCategory)
		}
		if row.TableName != "purchases" || row.Action != models.AuditActionInsert {
			t.Errorf("unexpected table/action: %s/%s", row.TableName, row.Action)
		}
		if !strings.Contains(row.Description, "PO-1") || !strings.Contains(row.Description, "Acme") {
			t.Errorf("expected description to name PO-1 and Acme, got %q", row.Description)
		}
		if row.IPAddress != "10.0.0.5" || row.RequestID != "req-1" {
			t.Errorf("expected network context captured, got ip=%s request=%s", row.IPAddress, row.RequestID)
		}
	})

	t.Run("protected_fields_redacted_at_rest", func(t *testing.T) {
		svc, teardown := newTestAuditService(t)
		defer teardown()
		user := testutil.CreateTestUserWithRole(t, svc.db, models.RoleAccountant)

		id := svc.LogAccountantActivity(AuditEntry{
			Context:   accountantContext(user.ID),
			Action:    models.AuditActionInsert,
			TableName: "purchases",
			RecordID:  "12",
			NewValues: map[string]any{
				"purchase_number": "PO-12",
				"supplier_name":   "Acme",
				"supplier_phone":  "+92-300-1234567",
			},
		})
		if id == 0 {
			t.Fatal("expected non-zero audit id")
		}

		var row models.AuditLog
		svc.db.First(&row, id)

		if strings.Contains(row.NewValues, "+92-300-1234567") {
			t.Error("protected value leaked into stored snapshot")
		}
		if strings.Contains(row.Description, "+92-300-1234567") {
			t.Error("protected value leaked into description")
		}

		var stored map[string]any
		if err := json.Unmarshal([]byte(row.NewValues), &stored); err != nil {
			t.Fatalf("failed to decode stored snapshot: %v", err)
		}
		if stored["supplier_phone"] != fieldcrypt.Sentinel {
			t.Errorf("expected sentinel for supplier_phone, got %v", stored["supplier_phone"])
		}
		if stored["supplier_name"] != "Acme" {
			t.Errorf("expected unprotected field in clear, got %v", stored["supplier_name"])
		}
		if row.SensitiveData == "" {
			t.Error("expected a sensitive payload for the protected field")
		}
	})

	t.Run("changed_fields_recorded_on_update", func(t *testing.T) {
		svc, teardown := newTestAuditService(t)
		defer teardown()
		user := testutil.CreateTestUserWithRole(t, svc.db, models.RoleAccountant)

		id := svc.LogAccountantActivity(AuditEntry{
			Context:   accountantContext(user.ID),
			Action:    models.AuditActionUpdate,
			TableName: "expenses",
			RecordID:  "3",
			OldValues: map[string]any{"expense_number": "EXP-3", "category": "fuel"},
			NewValues: map[string]any{"expense_number": "EXP-3", "category": "utilities"},
		})
		if id == 0 {
			t.Fatal("expected non-zero audit id")
		}

		var row models.AuditLog
		svc.db.First(&row, id)

		var changed []string
		if err := json.Unmarshal([]byte(row.ChangedFields), &changed); err != nil {
			t.Fatalf("failed to decode changed fields: %v", err)
		}
		if len(changed) != 1 || changed[0] != "category" {
			t.Errorf("expected [category], got %v", changed)
		}
	})
}

func TestLogGatekeeperActivity(t *testing.T) {
	svc, teardown := newTestAuditService(t)
	defer teardown()
	user := testutil.CreateTestUserWithRole(t, svc.db, models.RoleGatekeeper)

	ctx := accountantContext(user.ID)
	ctx.UserRole = models.RoleGatekeeper

	id := svc.LogGatekeeperActivity(AuditEntry{
		Context:   ctx,
		Action:    models.AuditActionInsert,
		TableName: "gate_entries",
		RecordID:  "44",
		NewValues: map[string]any{
			"entry_number":   "GT-000044",
			"vehicle_number": "LEB-1234",
			"driver_name":    "Jane Driver",
		},
	})
	if id == 0 {
		t.Fatal("expected non-zero audit id")
	}

	var row models.AuditLog
	svc.db.First(&row, id)
	if row.ActivityType != models.ActivityGatekeeperEntry {
		t.Errorf("expected gatekeeper_entry, got %s", row.ActivityType)
	}
	if row.ActivityCategory != models.CategoryStockMovement {
		t.Errorf("expected stock_movement category, got %s", row.ActivityCategory)
	}
	if !strings.Contains(row.Description, "GT-000044") {
		t.Errorf("expected description to name the entry number, got %q", row.Description)
	}
	if strings.Contains(row.NewValues, "Jane Driver") {
		t.Error("driver identity leaked into stored snapshot")
	}
}

func TestLogAdminActivity(t *testing.T) {
	cases := []struct {
		table    string
		category models.ActivityCategory
	}{
		{"users", models.CategoryUserManagement},
		{"products", models.CategoryProductManagement},
		{"settings", models.CategorySystemConfig},
	}

	for _, tc := range cases {
		t.Run(tc.table, func(t *testing.T) {
			svc, teardown := newTestAuditService(t)
			defer teardown()
			user := testutil.CreateTestUserWithRole(t, svc.db, models.RoleAdmin)

			ctx := accountantContext(user.ID)
			ctx.UserRole = models.RoleAdmin

			id := svc.LogAdminActivity(AuditEntry{
				Context:   ctx,
				Action:    models.AuditActionUpdate,
				TableName: tc.table,
				RecordID:  "1",
				OldValues: map[string]any{"name": "old"},
				NewValues: map[string]any{"name": "new"},
			})
			if id == 0 {
				t.Fatal("expected non-zero audit id")
			}

			var row models.AuditLog
			svc.db.First(&row, id)
			if row.ActivityType != models.ActivityAdminAction {
				t.Errorf("expected admin_action, got %s", row.ActivityType)
			}
			if row.ActivityCategory != tc.category {
				t.Errorf("expected %s category, got %s", tc.category, row.ActivityCategory)
			}
		})
	}
}

func TestLogActivitySystemAction(t *testing.T) {
	svc, teardown := newTestAuditService(t)
	defer teardown()

	id := svc.LogActivity(AuditEntry{
		Context:   AuditContext{}, // no actor: system action
		Action:    models.AuditActionUpdate,
		TableName: "settings",
		RecordID:  "retention",
		NewValues: map[string]any{"days": 365},
	}, models.ActivitySystemAction, models.CategorySystemConfig, "Retention policy applied")
	if id == 0 {
		t.Fatal("expected non-zero audit id")
	}

	var row models.AuditLog
	svc.db.First(&row, id)
	if row.UserID != nil {
		t.Errorf("expected nil user id for system action, got %v", *row.UserID)
	}
	if row.ActivityType != models.ActivitySystemAction {
		t.Errorf("expected system_action, got %s", row.ActivityType)
	}
}

func TestLogActivityNonBlocking(t *testing.T) {
	t.Run("persistence_failure_returns_zero", func(t *testing.T) {
		svc, teardown := newTestAuditService(t)
		// Close the store up-front so the insert must fail.
		teardown()

		id := svc.LogAccountantActivity(AuditEntry{
			Context:   accountantContext(1),
			Action:    models.AuditActionInsert,
			TableName: "purchases",
			RecordID:  "1",
			NewValues: map[string]any{"purchase_number": "PO-X"},
		})
		if id != 0 {
			t.Errorf("expected zero id on persistence failure, got %d", id)
		}
	})

	t.Run("record_reports_cause", func(t *testing.T) {
		svc, teardown := newTestAuditService(t)
		teardown()

		_, err := svc.record(AuditEntry{
			Context:   accountantContext(1),
			Action:    models.AuditActionInsert,
			TableName: "purchases",
			RecordID:  "1",
			NewValues: map[string]any{"purchase_number": "PO-X"},
		}, models.ActivityAccountantTransaction, models.CategoryFinancial, "test")
		if err == nil {
			t.Fatal("expected record to report the persistence failure")
		}
	})
}

func TestGetChangedFields(t *testing.T) {
	t.Run("nil_when_either_snapshot_absent", func(t *testing.T) {
		if got := ChangedFields(nil, map[string]any{"a": 1}); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
		if got := ChangedFields(map[string]any{"a": 1}, nil); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("detects_differing_and_new_keys", func(t *testing.T) {
		old := map[string]any{"a": "1", "b": "2", "c": "3"}
		new := map[string]any{"a": "1", "b": "changed", "d": "added"}

		got := ChangedFields(old, new)
		if len(got) != 2 || got[0] != "b" || got[1] != "d" {
			t.Errorf("expected [b d], got %v", got)
		}
	})

	t.Run("empty_for_identical_snapshots", func(t *testing.T) {
		snap := map[string]any{"a": "1"}
		if got := ChangedFields(snap, map[string]any{"a": "1"}); len(got) != 0 {
			t.Errorf("expected no changes, got %v", got)
		}
	})
}

func TestGetAuditLogs(t *testing.T) {
	t.Run("decrypts_sensitive_fields_for_display", func(t *testing.T) {
		svc, teardown := newTestAuditService(t)
		defer teardown()
		user := testutil.CreateTestUserWithRole(t, svc.db, models.RoleAccountant)

		id := svc.LogAccountantActivity(AuditEntry{
			Context:   accountantContext(user.ID),
			Action:    models.AuditActionInsert,
			TableName: "purchases",
			RecordID:  "9",
			NewValues: map[string]any{
				"purchase_number": "PO-9",
				"supplier_name":   "Acme",
				"supplier_phone":  "+92-300-1234567",
			},
		})
		if id == 0 {
			t.Fatal("expected non-zero audit id")
		}

		logs, err := svc.GetAuditLogs(AuditLogFilter{})
		testutil.AssertNoError(t, err)
		if len(logs) != 1 {
			t.Fatalf("expected one log, got %d", len(logs))
		}

		view := logs[0]
		if view.NewValues["supplier_phone"] != "+92-300-1234567" {
			t.Errorf("expected decrypted phone for display, got %v", view.NewValues["supplier_phone"])
		}
		if view.NewValues["supplier_name"] != "Acme" {
			t.Errorf("expected clear field preserved, got %v", view.NewValues["supplier_name"])
		}
		if view.UserName != user.DisplayName() {
			t.Errorf("expected actor name joined, got %q", view.UserName)
		}
		if view.UserRole != models.RoleAccountant {
			t.Errorf("expected actor role joined, got %q", view.UserRole)
		}
	})

	t.Run("corrupted_field_stays_redacted", func(t *testing.T) {
		svc, teardown := newTestAuditService(t)
		defer teardown()
		user := testutil.CreateTestUserWithRole(t, svc.db, models.RoleGatekeeper)

		ctx := accountantContext(user.ID)
		ctx.UserRole = models.RoleGatekeeper

		id := svc.LogGatekeeperActivity(AuditEntry{
			Context:   ctx,
			Action:    models.AuditActionInsert,
			TableName: "stock_movements",
			RecordID:  "5",
			NewValues: map[string]any{
				"type":         "in",
				"quantity":     40,
				"driver_name":  "Jane Driver",
				"driver_phone": "+92-300-7654321",
			},
		})
		if id == 0 {
			t.Fatal("expected non-zero audit id")
		}

		// Corrupt one encrypted field directly in the stored payload.
		var row models.AuditLog
		svc.db.First(&row, id)
		var payload sensitivePayload
		if err := json.Unmarshal([]byte(row.SensitiveData), &payload); err != nil {
			t.Fatalf("failed to decode sensitive payload: %v", err)
		}
		corrupted := payload.New["driver_phone"]
		corrupted.AuthTag = strings.Repeat("0", len(corrupted.AuthTag))
		payload.New["driver_phone"] = corrupted
		data, _ := json.Marshal(payload)
		svc.db.Model(&models.AuditLog{}).Where("id = ?", id).Update("sensitive_data", string(data))

		logs, err := svc.GetAuditLogs(AuditLogFilter{})
		testutil.AssertNoError(t, err)
		if len(logs) != 1 {
			t.Fatalf("expected one log, got %d", len(logs))
		}

		view := logs[0]
		if view.NewValues["driver_name"] != "Jane Driver" {
			t.Errorf("expected intact field decrypted, got %v", view.NewValues["driver_name"])
		}
		if view.NewValues["driver_phone"] != fieldcrypt.Sentinel {
			t.Errorf("expected corrupted field to stay redacted, got %v", view.NewValues["driver_phone"])
		}
	})

	t.Run("filters_by_activity_type_and_table", func(t *testing.T) {
		svc, teardown := newTestAuditService(t)
		defer teardown()
		accountant := testutil.CreateTestUserWithRole(t, svc.db, models.RoleAccountant)
		gatekeeper := testutil.CreateTestUserWithRole(t, svc.db, models.RoleGatekeeper)

		svc.LogAccountantActivity(AuditEntry{
			Context:   accountantContext(accountant.ID),
			Action:    models.AuditActionInsert,
			TableName: "purchases",
			RecordID:  "1",
			NewValues: map[string]any{"purchase_number": "PO-1", "supplier_name": "Acme"},
		})

		gateCtx := accountantContext(gatekeeper.ID)
		gateCtx.UserRole = models.RoleGatekeeper
		svc.LogGatekeeperActivity(AuditEntry{
			Context:   gateCtx,
			Action:    models.AuditActionInsert,
			TableName: "gate_entries",
			RecordID:  "2",
			NewValues: map[string]any{"entry_number": "GT-2", "vehicle_number": "LEB-2"},
		})

		atype := models.ActivityAccountantTransaction
		logs, err := svc.GetAuditLogs(AuditLogFilter{ActivityType: &atype})
		testutil.AssertNoError(t, err)
		if len(logs) != 1 || logs[0].TableName != "purchases" {
			t.Errorf("expected only the accountant event, got %d rows", len(logs))
		}

		table := "gate_entries"
		logs, err = svc.GetAuditLogs(AuditLogFilter{TableName: &table})
		testutil.AssertNoError(t, err)
		if len(logs) != 1 || logs[0].ActivityType != models.ActivityGatekeeperEntry {
			t.Errorf("expected only the gate event, got %d rows", len(logs))
		}

		logs, err = svc.GetAuditLogs(AuditLogFilter{UserID: &gatekeeper.ID})
		testutil.AssertNoError(t, err)
		if len(logs) != 1 || logs[0].UserID == nil || *logs[0].UserID != gatekeeper.ID {
			t.Errorf("expected only the gatekeeper's event, got %d rows", len(logs))
		}
	})

	t.Run("date_filter_and_ordering", func(t *testing.T) {
		svc, teardown := newTestAuditService(t)
		defer teardown()
		user := testutil.CreateTestUserWithRole(t, svc.db, models.RoleAccountant)

		first := svc.LogAccountantActivity(AuditEntry{
			Context:   accountantContext(user.ID),
			Action:    models.AuditActionInsert,
			TableName: "expenses",
			RecordID:  "1",
			NewValues: map[string]any{"expense_number": "EXP-1", "category": "fuel"},
		})
		second := svc.LogAccountantActivity(AuditEntry{
			Context:   accountantContext(user.ID),
			Action:    models.AuditActionInsert,
			TableName: "expenses",
			RecordID:  "2",
			NewValues: map[string]any{"expense_number": "EXP-2", "category": "fuel"},
		})
		if first == 0 || second == 0 {
			t.Fatal("expected both writes to succeed")
		}

		logs, err := svc.GetAuditLogs(AuditLogFilter{})
		testutil.AssertNoError(t, err)
		if len(logs) != 2 {
			t.Fatalf("expected two logs, got %d", len(logs))
		}
		if logs[0].ID != second || logs[1].ID != first {
			t.Errorf("expected newest-first ordering, got %d then %d", logs[0].ID, logs[1].ID)
		}

		future := time.Now().Add(time.Hour)
		logs, err = svc.GetAuditLogs(AuditLogFilter{StartDate: &future})
		testutil.AssertNoError(t, err)
		if len(logs) != 0 {
			t.Errorf("expected no logs after future start date, got %d", len(logs))
		}
	})

	t.Run("limit_and_offset", func(t *testing.T) {
		svc, teardown := newTestAuditService(t)
		defer teardown()
		user := testutil.CreateTestUserWithRole(t, svc.db, models.RoleAccountant)

		for i := 0; i < 3; i++ {
			svc.LogAccountantActivity(AuditEntry{
				Context:   accountantContext(user.ID),
				Action:    models.AuditActionInsert,
				TableName: "expenses",
				RecordID:  "1",
				NewValues: map[string]any{"expense_number": "EXP", "category": "fuel"},
			})
		}

		logs, err := svc.GetAuditLogs(AuditLogFilter{Limit: 2})
		testutil.AssertNoError(t, err)
		if len(logs) != 2 {
			t.Errorf("expected limit applied, got %d rows", len(logs))
		}

		logs, err = svc.GetAuditLogs(AuditLogFilter{Limit: 2, Offset: 2})
		testutil.AssertNoError(t, err)
		if len(logs) != 1 {
			t.Errorf("expected one remaining row past offset, got %d", len(logs))
		}
	})
}
