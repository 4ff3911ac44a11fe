package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "milltrack/internal/errors"
	"milltrack/internal/models"
	"milltrack/internal/pagination"
	"milltrack/internal/services"
)

// ProductHandler handles product catalogue requests.
type ProductHandler struct {
	productService services.ProductServicer
	auditService   services.AuditServicer
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService services.ProductServicer, auditService services.AuditServicer) *ProductHandler {
	return &ProductHandler{productService: productService, auditService: auditService}
}

// CreateProductRequest represents the request payload for adding a product
type CreateProductRequest struct {
	SKU          string `json:"sku" binding:"required,min=1,max=50"`
	Name         string `json:"name" binding:"required,min=1,max=200"`
	Description  string `json:"description" binding:"max=500"`
	Unit         string `json:"unit" binding:"max=20"`
	ReorderLevel int64  `json:"reorder_level" binding:"gte=0"`
	UnitCost     int64  `json:"unit_cost" binding:"gte=0"`
}

// UpdateProductRequest represents the request payload for updating a product
type UpdateProductRequest struct {
	Name         string `json:"name" binding:"omitempty,min=1,max=200"`
	Description  string `json:"description" binding:"omitempty,max=500"`
	ReorderLevel *int64 `json:"reorder_level" binding:"omitempty,gte=0"`
	UnitCost     *int64 `json:"unit_cost" binding:"omitempty,gte=0"`
}

// CreateProduct adds a product to the catalogue
// @Summary     Create a product
// @Description Add a new product to the catalogue (admin only)
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateProductRequest true "Product data"
// @Success     201 {object} models.Product "Product created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Duplicate SKU"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	product, err := h.productService.CreateProduct(req.SKU, req.Name, req.Description, req.Unit, req.ReorderLevel, req.UnitCost)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.LogAdminActivity(services.AuditEntry{
		Context:   auditContext(c),
		Action:    models.AuditActionInsert,
		TableName: "products",
		RecordID:  recordID(product.ID),
		NewValues: auditSnapshot(product),
	})

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// ListProducts returns the product catalogue
// @Summary     List products
// @Description Get a paginated list of products
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       active_only query bool false "Only active products"
// @Success     200 {object} pagination.PageResponse[models.Product] "Paginated products"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	activeOnly := c.Query("active_only") == "true"

	result, err := h.productService.ListProducts(page, activeOnly)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetProduct returns a single product
// @Summary     Get a product
// @Description Get a product by ID
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Product ID"
// @Success     200 {object} models.Product "Product"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	product, err := h.productService.GetProductByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// UpdateProduct updates a product
// @Summary     Update a product
// @Description Update a product's mutable attributes (admin only)
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Product ID"
// @Param       request body UpdateProductRequest true "Fields to update"
// @Success     200 {object} models.Product "Updated product"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	before, err := h.productService.GetProductByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	oldValues := auditSnapshot(before)

	product, err := h.productService.UpdateProduct(id, req.Name, req.Description, req.ReorderLevel, req.UnitCost)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if after, err := h.productService.GetProductByID(id); err == nil {
		product = after
	}

	h.auditService.LogAdminActivity(services.AuditEntry{
		Context:   auditContext(c),
		Action:    models.AuditActionUpdate,
		TableName: "products",
		RecordID:  recordID(product.ID),
		OldValues: oldValues,
		NewValues: auditSnapshot(product),
	})

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct retires a product
// @Summary     Delete a product
// @Description Soft-delete a product from the catalogue (admin only)
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Product ID"
// @Success     204 "Product deleted"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	product, err := h.productService.DeleteProduct(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.LogAdminActivity(services.AuditEntry{
		Context:   auditContext(c),
		Action:    models.AuditActionDelete,
		TableName: "products",
		RecordID:  recordID(product.ID),
		OldValues: auditSnapshot(product),
	})

	c.Status(http.StatusNoContent)
}

// LowStock returns products at or below their reorder level
// @Summary     Low stock report
// @Description List active products at or below their reorder level
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Product "Low stock products"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products/low-stock [get]
func (h *ProductHandler) LowStock(c *gin.Context) {
	products, err := h.productService.LowStockProducts()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}
