package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "milltrack/internal/errors"
	"milltrack/internal/models"
	"milltrack/internal/pagination"
	"milltrack/internal/uuid"
)

// gateService handles the warehouse gate log.
type gateService struct {
	db *gorm.DB
}

// NewGateService creates a new GateServicer.
func NewGateService(db *gorm.DB) GateServicer {
	return &gateService{db: db}
}

// CreateGateEntry records a vehicle passing the warehouse gate. The entry
// number is generated server-side so gatekeepers cannot collide on it.
func (s *gateService) CreateGateEntry(recordedBy uint, direction models.GateDirection, vehicleNumber, driverName, driverPhone, purpose string, stockMovementID *uint) (*models.GateEntry, error) {
	if direction != models.GateDirectionIn && direction != models.GateDirectionOut {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "direction must be in or out")
	}
	if vehicleNumber == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "vehicle number is required")
	}

	if stockMovementID != nil {
		var exists int64
		if err := s.db.Model(&models.StockMovement{}).Where("id = ?", *stockMovementID).Count(&exists).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if exists == 0 {
			return nil, apperrors.ErrMovementNotFound
		}
	}

	entry := &models.GateEntry{
		EntryNumber:     newEntryNumber(),
		Direction:       direction,
		VehicleNumber:   vehicleNumber,
		DriverName:      driverName,
		DriverPhone:     driverPhone,
		Purpose:         purpose,
		StockMovementID: stockMovementID,
		RecordedByID:    recordedBy,
	}
	if err := s.db.Create(entry).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entry, nil
}

// GetGateEntries retrieves a paginated, filtered slice of the gate log.
func (s *gateService) GetGateEntries(page pagination.PageRequest, direction *models.GateDirection, fromDate, toDate *time.Time) (*pagination.PageResponse[models.GateEntry], error) {
	page.Defaults()

	base := s.db.Model(&models.GateEntry{})
	if direction != nil {
		base = base.Where("direction = ?", *direction)
	}
	if fromDate != nil {
		base = base.Where("created_at >= ?", *fromDate)
	}
	if toDate != nil {
		base = base.Where("created_at <= ?", *toDate)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.GateEntry
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetGateEntryByID retrieves a gate entry by ID.
func (s *gateService) GetGateEntryByID(id uint) (*models.GateEntry, error) {
	var entry models.GateEntry
	if err := s.db.Preload("StockMovement").First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGateEntryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entry, nil
}

// newEntryNumber derives a short, time-ordered gate entry number from a
// UUIDv7.
func newEntryNumber() string {
	id := strings.ReplaceAll(uuid.New(), "-", "")
	return fmt.Sprintf("GT-%s", strings.ToUpper(id[:12]))
}
