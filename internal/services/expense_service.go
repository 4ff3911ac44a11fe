package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "milltrack/internal/errors"
	"milltrack/internal/models"
	"milltrack/internal/pagination"
)

// expenseService handles expense tracking business logic.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// CreateExpense records a business expense.
func (s *expenseService) CreateExpense(createdBy uint, expenseNumber, category, description string, amount int64, incurredAt time.Time) (*models.Expense, error) {
	if expenseNumber == "" || category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "expense number and category are required")
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}

	var count int64
	if err := s.db.Model(&models.Expense{}).Where("expense_number = ?", expenseNumber).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "expense with this number already exists")
	}

	if incurredAt.IsZero() {
		incurredAt = time.Now()
	}
	expense := &models.Expense{
		ExpenseNumber: expenseNumber,
		Category:      category,
		Description:   description,
		Amount:        amount,
		IncurredAt:    incurredAt,
		CreatedByID:   createdBy,
	}
	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// GetExpenses retrieves a paginated list of expenses in a date range.
func (s *expenseService) GetExpenses(page pagination.PageRequest, fromDate, toDate *time.Time) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{})
	if fromDate != nil {
		base = base.Where("incurred_at >= ?", *fromDate)
	}
	if toDate != nil {
		base = base.Where("incurred_at <= ?", *toDate)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Scopes(pagination.Paginate(page)).Order("incurred_at DESC").Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetExpenseByID retrieves an expense by ID.
func (s *expenseService) GetExpenseByID(id uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.First(&expense, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense updates an expense record.
func (s *expenseService) UpdateExpense(id uint, category, description string, amount *int64) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if category != "" {
		updates["category"] = category
	}
	if description != "" {
		updates["description"] = description
	}
	if amount != nil {
		if *amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
		}
		updates["amount"] = *amount
	}

	if len(updates) > 0 {
		if err := s.db.Model(expense).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return expense, nil
}

// DeleteExpense soft-deletes an expense record.
func (s *expenseService) DeleteExpense(id uint) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Delete(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}
