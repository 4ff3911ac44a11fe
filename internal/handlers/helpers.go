package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "milltrack/internal/errors"
	"milltrack/internal/logger"
	"milltrack/internal/middleware"
	"milltrack/internal/models"
	"milltrack/internal/services"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return 0, apperrors.ErrUnauthorized
	}
	return userID.(uint), nil
}

// parsePathID parses a uint path parameter.
// Returns ErrInvalidInput if the parameter is not a valid positive integer.
//
//nolint:unparam // param is intentionally generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return uint(id), nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// auditContext assembles the actor and network metadata of the current
// request for the audit trail.
func auditContext(c *gin.Context) services.AuditContext {
	ctx := services.AuditContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		SessionID: c.GetString("sessionID"),
		RequestID: middleware.RequestID(c),
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
	}
	if v, exists := c.Get("userID"); exists {
		if id, ok := v.(uint); ok {
			ctx.UserID = &id
		}
	}
	if v, exists := c.Get("role"); exists {
		if role, ok := v.(models.UserRole); ok {
			ctx.UserRole = role
		}
	}
	ctx.UserEmail = c.GetString("email")
	return ctx
}

// auditSnapshot builds a column-keyed snapshot of a model for the audit
// trail, with nested line items stripped: lines are audited as rows of their
// own table so their prices can be redacted under the right field registry.
func auditSnapshot(v any) map[string]any {
	snapshot := services.Snapshot(v)
	delete(snapshot, "items")
	return snapshot
}

// recordID formats a numeric primary key as the audit trail's record key.
func recordID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// parseDateQuery parses an optional YYYY-MM-DD query parameter.
func parseDateQuery(c *gin.Context, param string) (*time.Time, error) {
	value := c.Query(param)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param+", expected YYYY-MM-DD")
	}
	return &t, nil
}
