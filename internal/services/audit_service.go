package services

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	"gorm.io/gorm"

	apperrors "milltrack/internal/errors"
	"milltrack/internal/fieldcrypt"
	"milltrack/internal/logger"
	"milltrack/internal/models"
)

// protectedFields lists, per table, the columns whose values are regulated
// and must never appear in clear text inside an audit snapshot. Tables
// absent from this registry protect nothing.
var protectedFields = map[string][]string{
	"purchases":           {"supplier_contact", "supplier_phone", "total_amount"},
	"purchase_items":      {"unit_price", "total_price"},
	"sales_invoices":      {"customer_contact", "customer_phone", "total_amount"},
	"sales_invoice_items": {"unit_price", "total_price"},
	"expenses":            {"amount"},
	"stock_movements":     {"driver_name", "driver_phone"},
	"gate_entries":        {"driver_name", "driver_phone"},
	"users":               {"email", "phone"},
}

// sensitivePayload is the JSON shape of the AuditLog.SensitiveData column:
// the only place a protected field's true value can be recovered from.
type sensitivePayload struct {
	Old map[string]fieldcrypt.EncryptedField `json:"old,omitempty"`
	New map[string]fieldcrypt.EncryptedField `json:"new,omitempty"`
}

// auditService turns business mutations into durable, privacy-preserving
// audit trail rows, and reconstructs them for compliance review.
type auditService struct {
	db     *gorm.DB
	cipher *fieldcrypt.Cipher
}

// NewAuditService creates a new AuditServicer backed by the given store and
// field cipher.
func NewAuditService(db *gorm.DB, cipher *fieldcrypt.Cipher) AuditServicer {
	return &auditService{db: db, cipher: cipher}
}

// LogGatekeeperActivity records a gate or stock mutation performed by a
// gatekeeper.
func (s *auditService) LogGatekeeperActivity(entry AuditEntry) uint {
	return s.LogActivity(entry, models.ActivityGatekeeperEntry, models.CategoryStockMovement,
		describeActivity(models.RoleGatekeeper, entry))
}

// LogAccountantActivity records a financial mutation performed by an
// accountant.
func (s *auditService) LogAccountantActivity(entry AuditEntry) uint {
	return s.LogActivity(entry, models.ActivityAccountantTransaction, models.CategoryFinancial,
		describeActivity(models.RoleAccountant, entry))
}

// LogAdminActivity records an administrative mutation; the activity category
// is inferred from the affected table.
func (s *auditService) LogAdminActivity(entry AuditEntry) uint {
	return s.LogActivity(entry, models.ActivityAdminAction, adminActivityCategory(entry.TableName),
		describeActivity(models.RoleAdmin, entry))
}

// LogActivity records one audit event. It is fire-and-forget: every failure
// (encryption or persistence) is logged locally and converted to a zero id,
// so the triggering business operation is never affected.
func (s *auditService) LogActivity(entry AuditEntry, activityType models.ActivityType, category models.ActivityCategory, description string) uint {
	id, err := s.record(entry, activityType, category, description)
	if err != nil {
		logger.Get().Errorw("audit write failed; business operation unaffected",
			"error", err,
			"table", entry.TableName,
			"record_id", entry.RecordID,
			"action", entry.Action,
		)
		return 0
	}
	return id
}

// record builds, redacts, encrypts, and persists one AuditLog row. It keeps
// the full error so tests and internal callers can distinguish failure
// causes; LogActivity flattens it at the public boundary.
func (s *auditService) record(entry AuditEntry, activityType models.ActivityType, category models.ActivityCategory, description string) (uint, error) {
	protected := protectedFields[entry.TableName]

	redactedOld, sensitiveOld, err := s.cipher.EncryptFields(entry.OldValues, protected, entry.RecordID)
	if err != nil {
		return 0, fmt.Errorf("encrypt old snapshot: %w", err)
	}
	redactedNew, sensitiveNew, err := s.cipher.EncryptFields(entry.NewValues, protected, entry.RecordID)
	if err != nil {
		return 0, fmt.Errorf("encrypt new snapshot: %w", err)
	}

	row := &models.AuditLog{
		TableName:        entry.TableName,
		RecordID:         entry.RecordID,
		Action:           entry.Action,
		UserID:           entry.Context.UserID,
		UserRole:         entry.Context.UserRole,
		UserEmail:        entry.Context.UserEmail,
		IPAddress:        entry.Context.IPAddress,
		UserAgent:        entry.Context.UserAgent,
		SessionID:        entry.Context.SessionID,
		RequestID:        entry.Context.RequestID,
		ActivityType:     activityType,
		ActivityCategory: category,
		Description:      description,
	}

	if redactedOld != nil {
		if row.OldValues, err = marshalColumn(redactedOld); err != nil {
			return 0, err
		}
	}
	if redactedNew != nil {
		if row.NewValues, err = marshalColumn(redactedNew); err != nil {
			return 0, err
		}
	}

	if changed := ChangedFields(entry.OldValues, entry.NewValues); changed != nil {
		if row.ChangedFields, err = marshalColumn(changed); err != nil {
			return 0, err
		}
	}

	if len(sensitiveOld) > 0 || len(sensitiveNew) > 0 {
		payload := sensitivePayload{Old: sensitiveOld, New: sensitiveNew}
		if row.SensitiveData, err = marshalColumn(payload); err != nil {
			return 0, err
		}
	}

	metadata := map[string]any{
		"user_role":  entry.Context.UserRole,
		"user_email": entry.Context.UserEmail,
		"method":     entry.Context.Method,
		"path":       entry.Context.Path,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if row.Metadata, err = marshalColumn(metadata); err != nil {
		return 0, err
	}

	if err := s.db.Create(row).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return row.ID, nil
}

// GetAuditLogs retrieves audit rows matching the filter, newest first, with
// the actor joined and the sensitive payload decrypted for display. A field
// that fails to decrypt keeps the redaction sentinel; the rest of the row is
// still returned.
func (s *auditService) GetAuditLogs(filter AuditLogFilter) ([]AuditLogView, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	q := s.db.Model(&models.AuditLog{}).Preload("User")
	if filter.ActivityType != nil {
		q = q.Where("activity_type = ?", *filter.ActivityType)
	}
	if filter.ActivityCategory != nil {
		q = q.Where("activity_category = ?", *filter.ActivityCategory)
	}
	if filter.TableName != nil {
		q = q.Where("table_name = ?", *filter.TableName)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.StartDate != nil {
		q = q.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("created_at <= ?", *filter.EndDate)
	}

	var rows []models.AuditLog
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(filter.Offset).Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	views := make([]AuditLogView, 0, len(rows))
	for i := range rows {
		views = append(views, s.buildView(&rows[i]))
	}
	return views, nil
}

// buildView decodes one stored row and merges decrypted sensitive values
// back over the redacted snapshots.
func (s *auditService) buildView(row *models.AuditLog) AuditLogView {
	view := AuditLogView{
		ID:               row.ID,
		CreatedAt:        row.CreatedAt,
		TableName:        row.TableName,
		RecordID:         row.RecordID,
		Action:           row.Action,
		UserID:           row.UserID,
		UserRole:         row.UserRole,
		UserEmail:        row.UserEmail,
		IPAddress:        row.IPAddress,
		UserAgent:        row.UserAgent,
		SessionID:        row.SessionID,
		RequestID:        row.RequestID,
		ActivityType:     row.ActivityType,
		ActivityCategory: row.ActivityCategory,
		Description:      row.Description,
	}
	if row.User != nil {
		view.UserName = row.User.DisplayName()
	}

	view.OldValues = unmarshalObject(row.OldValues, row.ID, "old_values")
	view.NewValues = unmarshalObject(row.NewValues, row.ID, "new_values")

	if row.ChangedFields != "" {
		if err := json.Unmarshal([]byte(row.ChangedFields), &view.ChangedFields); err != nil {
			logger.Get().Warnw("malformed changed_fields in audit row", "audit_id", row.ID, "error", err)
		}
	}
	if row.Metadata != "" {
		if err := json.Unmarshal([]byte(row.Metadata), &view.Metadata); err != nil {
			logger.Get().Warnw("malformed metadata in audit row", "audit_id", row.ID, "error", err)
		}
	}

	if row.SensitiveData == "" {
		return view
	}

	var payload sensitivePayload
	if err := json.Unmarshal([]byte(row.SensitiveData), &payload); err != nil {
		logger.Get().Warnw("malformed sensitive payload in audit row", "audit_id", row.ID, "error", err)
		return view
	}

	var err error
	if len(payload.Old) > 0 {
		if view.OldValues, err = s.cipher.DecryptFields(view.OldValues, payload.Old, row.RecordID); err != nil {
			logger.Get().Warnw("partial decrypt of old snapshot", "audit_id", row.ID, "error", err)
		}
	}
	if len(payload.New) > 0 {
		if view.NewValues, err = s.cipher.DecryptFields(view.NewValues, payload.New, row.RecordID); err != nil {
			logger.Get().Warnw("partial decrypt of new snapshot", "audit_id", row.ID, "error", err)
		}
	}
	return view
}

// ChangedFields returns the sorted keys of new whose value differs from the
// corresponding key of old. It returns nil when either snapshot is absent:
// a diff is only meaningful between two snapshots.
func ChangedFields(old, new map[string]any) []string {
	if old == nil || new == nil {
		return nil
	}

	var changed []string
	for key, newValue := range new {
		oldValue, ok := old[key]
		if !ok || !reflect.DeepEqual(oldValue, newValue) {
			changed = append(changed, key)
		}
	}
	sort.Strings(changed)
	return changed
}

// Snapshot converts a model into a column-keyed map suitable for an
// AuditEntry, using the model's JSON field names.
func Snapshot(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Get().Warnw("failed to build audit snapshot", "error", err)
		return nil
	}
	var snapshot map[string]any
	if err := json.Unmarshal(data, &snapshot); err != nil {
		logger.Get().Warnw("failed to build audit snapshot", "error", err)
		return nil
	}
	return snapshot
}

func marshalColumn(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal audit column: %w", err)
	}
	return string(data), nil
}

func unmarshalObject(data string, auditID uint, column string) map[string]any {
	if data == "" || data == "null" {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		logger.Get().Warnw("malformed snapshot in audit row", "audit_id", auditID, "column", column, "error", err)
		return nil
	}
	return obj
}
