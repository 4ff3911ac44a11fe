package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "milltrack/internal/errors"
	"milltrack/internal/models"
	"milltrack/internal/pagination"
)

// stockService handles stock movement business logic.
type stockService struct {
	db *gorm.DB
}

// NewStockService creates a new StockServicer.
func NewStockService(db *gorm.DB) StockServicer {
	return &stockService{db: db}
}

// RecordMovement records a stock movement and applies it to the product's
// on-hand quantity atomically. Outbound movements fail when they would take
// the quantity negative; adjustments carry a signed quantity.
func (s *stockService) RecordMovement(recordedBy, productID uint, movementType models.MovementType, quantity int64, reference, driverName, driverPhone, vehicleNumber, notes string) (*models.StockMovement, error) {
	var delta int64
	switch movementType {
	case models.MovementTypeIn:
		if quantity <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be positive")
		}
		delta = quantity
	case models.MovementTypeOut:
		if quantity <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be positive")
		}
		delta = -quantity
	case models.MovementTypeAdjustment:
		if quantity == 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "adjustment quantity cannot be zero")
		}
		delta = quantity
	default:
		return nil, apperrors.ErrInvalidMovementType
	}

	movement := &models.StockMovement{
		ProductID:     productID,
		Type:          movementType,
		Quantity:      quantity,
		Reference:     reference,
		DriverName:    driverName,
		DriverPhone:   driverPhone,
		VehicleNumber: vehicleNumber,
		Notes:         notes,
		RecordedByID:  recordedBy,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := adjustProductQuantity(tx, productID, delta); err != nil {
			return err
		}
		if err := tx.Create(movement).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// GetMovements retrieves a paginated, filtered list of stock movements.
func (s *stockService) GetMovements(page pagination.PageRequest, filter MovementFilter) (*pagination.PageResponse[models.StockMovement], error) {
	page.Defaults()

	base := s.db.Model(&models.StockMovement{})
	if filter.ProductID != nil {
		base = base.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	if filter.FromDate != nil {
		base = base.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("created_at <= ?", *filter.ToDate)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var movements []models.StockMovement
	if err := base.Preload("Product").Scopes(pagination.Paginate(page)).
		Order("created_at DESC").Find(&movements).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(movements, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetMovementByID retrieves a stock movement by ID.
func (s *stockService) GetMovementByID(id uint) (*models.StockMovement, error) {
	var movement models.StockMovement
	if err := s.db.Preload("Product").First(&movement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMovementNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &movement, nil
}
