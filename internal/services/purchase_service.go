package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "milltrack/internal/errors"
	"milltrack/internal/models"
	"milltrack/internal/pagination"
)

// purchaseService handles purchase order business logic.
type purchaseService struct {
	db *gorm.DB
}

// NewPurchaseService creates a new PurchaseServicer.
func NewPurchaseService(db *gorm.DB) PurchaseServicer {
	return &purchaseService{db: db}
}

// CreatePurchase creates a purchase order with its line items. Stock is not
// adjusted until the order is received.
func (s *purchaseService) CreatePurchase(createdBy uint, purchaseNumber, supplierName, supplierContact, supplierPhone, notes string, items []PurchaseItemInput) (*models.Purchase, error) {
	if purchaseNumber == "" || supplierName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "purchase number and supplier name are required")
	}
	if len(items) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one item is required")
	}

	var count int64
	if err := s.db.Model(&models.Purchase{}).Where("purchase_number = ?", purchaseNumber).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicatePurchaseNo
	}

	purchase := &models.Purchase{
		PurchaseNumber:  purchaseNumber,
		SupplierName:    supplierName,
		SupplierContact: supplierContact,
		SupplierPhone:   supplierPhone,
		Status:          models.PurchaseStatusOrdered,
		Notes:           notes,
		CreatedByID:     createdBy,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var total int64
		for _, item := range items {
			if item.Quantity <= 0 || item.UnitPrice < 0 {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "item quantity must be positive")
			}
			var exists int64
			if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).Count(&exists).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if exists == 0 {
				return apperrors.ErrProductNotFound
			}
			total += item.Quantity * item.UnitPrice
		}
		purchase.TotalAmount = total

		if err := tx.Create(purchase).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for _, item := range items {
			line := &models.PurchaseItem{
				PurchaseID: purchase.ID,
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
				TotalPrice: item.Quantity * item.UnitPrice,
			}
			if err := tx.Create(line).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			purchase.Items = append(purchase.Items, *line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// GetPurchases retrieves a paginated, filtered list of purchase orders.
func (s *purchaseService) GetPurchases(page pagination.PageRequest, filter PurchaseFilter) (*pagination.PageResponse[models.Purchase], error) {
	page.Defaults()

	base := s.db.Model(&models.Purchase{})
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
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

	var purchases []models.Purchase
	if err := base.Preload("Items").Scopes(pagination.Paginate(page)).
		Order("created_at DESC").Find(&purchases).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(purchases, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPurchaseByID retrieves a purchase order with its items.
func (s *purchaseService) GetPurchaseByID(id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := s.db.Preload("Items").First(&purchase, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPurchaseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &purchase, nil
}

// UpdatePurchase updates supplier details of an order that is still open.
func (s *purchaseService) UpdatePurchase(id uint, supplierName, supplierContact, supplierPhone, notes string) (*models.Purchase, error) {
	purchase, err := s.GetPurchaseByID(id)
	if err != nil {
		return nil, err
	}
	if purchase.Status != models.PurchaseStatusOrdered {
		return nil, apperrors.ErrPurchaseNotEditable
	}

	updates := make(map[string]any)
	if supplierName != "" {
		updates["supplier_name"] = supplierName
	}
	if supplierContact != "" {
		updates["supplier_contact"] = supplierContact
	}
	if supplierPhone != "" {
		updates["supplier_phone"] = supplierPhone
	}
	if notes != "" {
		updates["notes"] = notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(purchase).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return purchase, nil
}

// ReceivePurchase marks an order as received and increments stock for every
// line item atomically.
func (s *purchaseService) ReceivePurchase(id uint) (*models.Purchase, error) {
	purchase, err := s.GetPurchaseByID(id)
	if err != nil {
		return nil, err
	}
	if purchase.Status != models.PurchaseStatusOrdered {
		return nil, apperrors.ErrPurchaseNotEditable
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range purchase.Items {
			if err := adjustProductQuantity(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		now := time.Now()
		if err := tx.Model(purchase).Updates(map[string]any{
			"status":      models.PurchaseStatusReceived,
			"received_at": now,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		purchase.Status = models.PurchaseStatusReceived
		purchase.ReceivedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// CancelPurchase cancels an order that has not been received.
func (s *purchaseService) CancelPurchase(id uint) (*models.Purchase, error) {
	purchase, err := s.GetPurchaseByID(id)
	if err != nil {
		return nil, err
	}
	if purchase.Status != models.PurchaseStatusOrdered {
		return nil, apperrors.ErrPurchaseNotEditable
	}

	if err := s.db.Model(purchase).Update("status", models.PurchaseStatusCancelled).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	purchase.Status = models.PurchaseStatusCancelled
	return purchase, nil
}
