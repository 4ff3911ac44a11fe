package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "milltrack/internal/errors"
	"milltrack/internal/models"
	"milltrack/internal/pagination"
	"milltrack/internal/services"
)

// UserHandler handles staff account administration.
type UserHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer, auditService services.AuditServicer) *UserHandler {
	return &UserHandler{userService: userService, auditService: auditService}
}

// CreateUserRequest represents the request payload for creating a staff account
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Phone     string `json:"phone" binding:"max=30"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Role      string `json:"role" binding:"required,user_role"`
}

// UpdateUserRequest represents the request payload for updating a staff account
type UpdateUserRequest struct {
	Role     *string `json:"role" binding:"omitempty,user_role"`
	IsActive *bool   `json:"is_active"`
	Phone    *string `json:"phone" binding:"omitempty,max=30"`
}

// CreateUser handles the creation of a new staff account
// @Summary     Create a staff account
// @Description Create a new staff account with the given role (admin only)
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateUserRequest true "Staff account data"
// @Success     201 {object} UserResponse "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Duplicate email or username"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.CreateUser(req.Username, req.Email, req.Phone, req.Password, req.FirstName, req.LastName, models.UserRole(req.Role))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.LogAdminActivity(services.AuditEntry{
		Context:   auditContext(c),
		Action:    models.AuditActionInsert,
		TableName: "users",
		RecordID:  recordID(user.ID),
		NewValues: auditSnapshot(user),
	})

	c.JSON(http.StatusCreated, gin.H{"user": userResponse(user)})
}

// ListUsers returns all staff accounts
// @Summary     List staff accounts
// @Description Get a paginated list of all staff accounts (admin only)
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[UserResponse] "Staff accounts"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.userService.ListUsers(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	users := make([]UserResponse, 0, len(result.Data))
	for i := range result.Data {
		users = append(users, userResponse(&result.Data[i]))
	}
	c.JSON(http.StatusOK, pagination.NewPageResponse(users, result.Page, result.PageSize, result.TotalItems))
}

// UpdateUser updates a staff account
// @Summary     Update a staff account
// @Description Change a staff account's role, active flag, or phone (admin only)
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "User ID"
// @Param       request body UpdateUserRequest true "Fields to update"
// @Success     200 {object} UserResponse "Updated account"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	before, err := h.userService.GetUserByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	oldValues := auditSnapshot(before)

	var role *models.UserRole
	if req.Role != nil {
		r := models.UserRole(*req.Role)
		role = &r
	}

	user, err := h.userService.UpdateUser(id, role, req.IsActive, req.Phone)
	if err != nil {
		respondWithError(c, err)
		return
	}

	after, err := h.userService.GetUserByID(id)
	if err == nil {
		user = after
	}

	h.auditService.LogAdminActivity(services.AuditEntry{
		Context:   auditContext(c),
		Action:    models.AuditActionUpdate,
		TableName: "users",
		RecordID:  recordID(user.ID),
		OldValues: oldValues,
		NewValues: auditSnapshot(user),
	})

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}
