// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("user_role", validateUserRole)
		_ = v.RegisterValidation("movement_type", validateMovementType)
		_ = v.RegisterValidation("gate_direction", validateGateDirection)
		_ = v.RegisterValidation("purchase_status", validatePurchaseStatus)
		_ = v.RegisterValidation("invoice_status", validateInvoiceStatus)
		_ = v.RegisterValidation("activity_type", validateActivityType)
		_ = v.RegisterValidation("audit_action", validateAuditAction)
	}
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "admin", "accountant", "gatekeeper", "manager":
		return true
	}
	return false
}

func validateMovementType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "in", "out", "adjustment":
		return true
	}
	return false
}

func validateGateDirection(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "in", "out":
		return true
	}
	return false
}

func validatePurchaseStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "ordered", "received", "cancelled":
		return true
	}
	return false
}

func validateInvoiceStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "draft", "issued", "paid", "cancelled":
		return true
	}
	return false
}

func validateActivityType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "gatekeeper_entry", "accountant_transaction", "admin_action", "system_action":
		return true
	}
	return false
}

func validateAuditAction(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "insert", "update", "delete":
		return true
	}
	return false
}
