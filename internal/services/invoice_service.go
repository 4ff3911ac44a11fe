package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "milltrack/internal/errors"
	"milltrack/internal/models"
	"milltrack/internal/pagination"
)

// invoiceService handles sales invoicing business logic.
type invoiceService struct {
	db *gorm.DB
}

// NewInvoiceService creates a new InvoiceServicer.
func NewInvoiceService(db *gorm.DB) InvoiceServicer {
	return &invoiceService{db: db}
}

// CreateInvoice issues a sales invoice and decrements stock for every line
// item atomically. Fails when any product lacks sufficient stock.
func (s *invoiceService) CreateInvoice(createdBy uint, invoiceNumber, customerName, customerContact, customerPhone, notes string, issuedAt time.Time, items []InvoiceItemInput) (*models.SalesInvoice, error) {
	if invoiceNumber == "" || customerName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invoice number and customer name are required")
	}
	if len(items) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one item is required")
	}

	var count int64
	if err := s.db.Model(&models.SalesInvoice{}).Where("invoice_number = ?", invoiceNumber).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateInvoiceNo
	}

	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	invoice := &models.SalesInvoice{
		InvoiceNumber:   invoiceNumber,
		CustomerName:    customerName,
		CustomerContact: customerContact,
		CustomerPhone:   customerPhone,
		Status:          models.InvoiceStatusIssued,
		Notes:           notes,
		IssuedAt:        issuedAt,
		CreatedByID:     createdBy,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var total int64
		for _, item := range items {
			if item.Quantity <= 0 || item.UnitPrice < 0 {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "item quantity must be positive")
			}
			total += item.Quantity * item.UnitPrice
		}
		invoice.TotalAmount = total

		if err := tx.Create(invoice).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for _, item := range items {
			if err := adjustProductQuantity(tx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
			line := &models.SalesInvoiceItem{
				InvoiceID:  invoice.ID,
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
				TotalPrice: item.Quantity * item.UnitPrice,
			}
			if err := tx.Create(line).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			invoice.Items = append(invoice.Items, *line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// GetInvoices retrieves a paginated, filtered list of sales invoices.
func (s *invoiceService) GetInvoices(page pagination.PageRequest, filter InvoiceFilter) (*pagination.PageResponse[models.SalesInvoice], error) {
	page.Defaults()

	base := s.db.Model(&models.SalesInvoice{})
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		base = base.Where("issued_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("issued_at <= ?", *filter.ToDate)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var invoices []models.SalesInvoice
	if err := base.Preload("Items").Scopes(pagination.Paginate(page)).
		Order("issued_at DESC").Find(&invoices).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(invoices, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetInvoiceByID retrieves an invoice with its items.
func (s *invoiceService) GetInvoiceByID(id uint) (*models.SalesInvoice, error) {
	var invoice models.SalesInvoice
	if err := s.db.Preload("Items").First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvoiceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &invoice, nil
}

// MarkInvoicePaid transitions an issued invoice to paid.
func (s *invoiceService) MarkInvoicePaid(id uint) (*models.SalesInvoice, error) {
	invoice, err := s.GetInvoiceByID(id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusIssued {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "only issued invoices can be marked paid")
	}

	if err := s.db.Model(invoice).Update("status", models.InvoiceStatusPaid).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	invoice.Status = models.InvoiceStatusPaid
	return invoice, nil
}

// CancelInvoice voids an issued invoice and returns its stock.
func (s *invoiceService) CancelInvoice(id uint) (*models.SalesInvoice, error) {
	invoice, err := s.GetInvoiceByID(id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusIssued {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "only issued invoices can be cancelled")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range invoice.Items {
			if err := adjustProductQuantity(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Model(invoice).Update("status", models.InvoiceStatusCancelled).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		invoice.Status = models.InvoiceStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}
