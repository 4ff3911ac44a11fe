package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "milltrack/internal/errors"
	"milltrack/internal/models"
	"milltrack/internal/pagination"
)

// productService handles product catalogue business logic.
type productService struct {
	db *gorm.DB
}

// NewProductService creates a new ProductServicer.
func NewProductService(db *gorm.DB) ProductServicer {
	return &productService{db: db}
}

// CreateProduct adds a product to the catalogue.
func (s *productService) CreateProduct(sku, name, description, unit string, reorderLevel, unitCost int64) (*models.Product, error) {
	if sku == "" || name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "sku and name are required")
	}

	var count int64
	if err := s.db.Model(&models.Product{}).Where("sku = ?", sku).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateSKU
	}

	if unit == "" {
		unit = "pcs"
	}
	product := &models.Product{
		SKU:          sku,
		Name:         name,
		Description:  description,
		Unit:         unit,
		ReorderLevel: reorderLevel,
		UnitCost:     unitCost,
		IsActive:     true,
	}
	if err := s.db.Create(product).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return product, nil
}

// ListProducts retrieves a paginated product list.
func (s *productService) ListProducts(page pagination.PageRequest, activeOnly bool) (*pagination.PageResponse[models.Product], error) {
	page.Defaults()

	base := s.db.Model(&models.Product{})
	if activeOnly {
		base = base.Where("is_active = ?", true)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var products []models.Product
	if err := base.Scopes(pagination.Paginate(page)).Order("name").Find(&products).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(products, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetProductByID retrieves a product by ID.
func (s *productService) GetProductByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &product, nil
}

// UpdateProduct updates the mutable attributes of a product.
func (s *productService) UpdateProduct(id uint, name, description string, reorderLevel, unitCost *int64) (*models.Product, error) {
	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if name != "" {
		updates["name"] = name
	}
	if description != "" {
		updates["description"] = description
	}
	if reorderLevel != nil {
		updates["reorder_level"] = *reorderLevel
	}
	if unitCost != nil {
		updates["unit_cost"] = *unitCost
	}

	if len(updates) > 0 {
		if err := s.db.Model(product).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return product, nil
}

// DeleteProduct soft-deletes a product. Historical purchase and invoice
// lines keep their product_id reference.
func (s *productService) DeleteProduct(id uint) (*models.Product, error) {
	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Delete(product).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return product, nil
}

// LowStockProducts returns active products at or below their reorder level.
func (s *productService) LowStockProducts() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("is_active = ? AND quantity <= reorder_level", true).
		Order("quantity").Find(&products).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return products, nil
}

// adjustProductQuantity applies a stock delta inside the given transaction,
// guarding against negative on-hand quantity.
func adjustProductQuantity(tx *gorm.DB, productID uint, delta int64) error {
	var product models.Product
	if err := tx.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrProductNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	newQuantity := product.Quantity + delta
	if newQuantity < 0 {
		return apperrors.ErrInsufficientStock
	}

	if err := tx.Model(&product).Update("quantity", newQuantity).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
