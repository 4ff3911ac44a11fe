package services

import (
	"fmt"
	"regexp"

	"milltrack/internal/models"
)

// descriptionKey identifies one (role, table, action) combination with a
// specific human-readable description template.
type descriptionKey struct {
	Role   models.UserRole
	Table  string
	Action models.AuditAction
}

// activityDescriptions maps each handled combination to a template whose
// {field} placeholders are rendered from the row snapshots. Templates must
// only reference unprotected fields: descriptions are stored in clear text,
// so a protected field in a template would leak past redaction.
// Combinations absent from this table fall back to a generic sentence.
var activityDescriptions = map[descriptionKey]string{
	// Gatekeeper
	{models.RoleGatekeeper, "gate_entries", models.AuditActionInsert}:    "Gatekeeper recorded gate entry {entry_number} for vehicle {vehicle_number}",
	{models.RoleGatekeeper, "gate_entries", models.AuditActionUpdate}:    "Gatekeeper amended gate entry {entry_number}",
	{models.RoleGatekeeper, "stock_movements", models.AuditActionInsert}: "Gatekeeper recorded stock {type} movement of {quantity} units",
	{models.RoleGatekeeper, "stock_movements", models.AuditActionUpdate}: "Gatekeeper corrected a stock movement record",

	// Accountant
	{models.RoleAccountant, "purchases", models.AuditActionInsert}:      "Accountant created purchase order {purchase_number} for {supplier_name}",
	{models.RoleAccountant, "purchases", models.AuditActionUpdate}:      "Accountant updated purchase order {purchase_number}",
	{models.RoleAccountant, "purchases", models.AuditActionDelete}:      "Accountant cancelled purchase order {purchase_number}",
	{models.RoleAccountant, "sales_invoices", models.AuditActionInsert}: "Accountant issued invoice {invoice_number} to {customer_name}",
	{models.RoleAccountant, "sales_invoices", models.AuditActionUpdate}: "Accountant updated invoice {invoice_number}",
	{models.RoleAccountant, "sales_invoices", models.AuditActionDelete}: "Accountant voided invoice {invoice_number}",
	{models.RoleAccountant, "expenses", models.AuditActionInsert}:       "Accountant recorded expense {expense_number} under {category}",
	{models.RoleAccountant, "expenses", models.AuditActionUpdate}:       "Accountant updated expense {expense_number}",
	{models.RoleAccountant, "expenses", models.AuditActionDelete}:       "Accountant removed expense {expense_number}",

	// Admin
	{models.RoleAdmin, "users", models.AuditActionInsert}:    "Administrator created user account {username}",
	{models.RoleAdmin, "users", models.AuditActionUpdate}:    "Administrator updated user account {username}",
	{models.RoleAdmin, "users", models.AuditActionDelete}:    "Administrator deactivated user account {username}",
	{models.RoleAdmin, "products", models.AuditActionInsert}: "Administrator added product {name} ({sku})",
	{models.RoleAdmin, "products", models.AuditActionUpdate}: "Administrator updated product {name}",
	{models.RoleAdmin, "products", models.AuditActionDelete}: "Administrator retired product {name}",
}

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// describeActivity renders the description for an audit entry. Placeholders
// resolve against the new snapshot first, then the old one; a placeholder
// with no value in either snapshot is left as-is.
func describeActivity(role models.UserRole, entry AuditEntry) string {
	tmpl, ok := activityDescriptions[descriptionKey{Role: role, Table: entry.TableName, Action: entry.Action}]
	if !ok {
		return fmt.Sprintf("%s performed %s on %s", roleLabel(role), entry.Action, entry.TableName)
	}

	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		field := match[1 : len(match)-1]
		if v, ok := snapshotValue(entry.NewValues, field); ok {
			return v
		}
		if v, ok := snapshotValue(entry.OldValues, field); ok {
			return v
		}
		return match
	})
}

func snapshotValue(snapshot map[string]any, field string) (string, bool) {
	if snapshot == nil {
		return "", false
	}
	v, ok := snapshot[field]
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprintf("%v", v), true
}

func roleLabel(role models.UserRole) string {
	switch role {
	case models.RoleAdmin:
		return "Administrator"
	case models.RoleAccountant:
		return "Accountant"
	case models.RoleGatekeeper:
		return "Gatekeeper"
	case models.RoleManager:
		return "Manager"
	}
	return "System"
}

// adminActivityCategory infers the domain impact of an admin mutation from
// the affected table.
func adminActivityCategory(tableName string) models.ActivityCategory {
	switch tableName {
	case "users":
		return models.CategoryUserManagement
	case "products":
		return models.CategoryProductManagement
	}
	return models.CategorySystemConfig
}
