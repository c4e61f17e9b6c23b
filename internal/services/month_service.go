package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/validation"
)

// monthService handles monthly overview and income source business logic.
type monthService struct {
	db *gorm.DB
}

// NewMonthService creates a new MonthServicer.
func NewMonthService(db *gorm.DB) MonthServicer {
	return &monthService{db: db}
}

// CreateMonth creates a new monthly overview after validating its date range.
func (s *monthService) CreateMonth(userID uint, name string, startDate, endDate time.Time) (*models.MonthlyOverview, error) {
	if err := validation.DateRange(startDate, endDate, name); err != nil {
		return nil, err
	}

	month := &models.MonthlyOverview{
		UserID:    userID,
		Name:      name,
		StartDate: startDate,
		EndDate:   endDate,
	}
	if err := s.db.Create(month).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return month, nil
}

// GetMonthByID returns a monthly overview if it belongs to the user.
func (s *monthService) GetMonthByID(userID, monthID uint) (*models.MonthlyOverview, error) {
	var month models.MonthlyOverview
	if err := s.db.Where("id = ? AND user_id = ?", monthID, userID).First(&month).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMonthNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &month, nil
}

// GetUserMonths returns a paginated list of the user's monthly overviews,
// newest period first.
func (s *monthService) GetUserMonths(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.MonthlyOverview], error) {
	page.Defaults()

	base := s.db.Model(&models.MonthlyOverview{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var months []models.MonthlyOverview
	if err := base.Scopes(pagination.Paginate(page)).Order("start_date DESC").Find(&months).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(months, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateMonth updates an overview, re-validating the date range using the
// stored values for any date not being changed.
func (s *monthService) UpdateMonth(userID, monthID uint, name string, startDate, endDate *time.Time) (*models.MonthlyOverview, error) {
	month, err := s.GetMonthByID(userID, monthID)
	if err != nil {
		return nil, err
	}

	newStart := month.StartDate
	newEnd := month.EndDate
	if startDate != nil {
		newStart = *startDate
	}
	if endDate != nil {
		newEnd = *endDate
	}
	if err := validation.DateRange(newStart, newEnd, month.Name); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if startDate != nil {
		updates["start_date"] = newStart
	}
	if endDate != nil {
		updates["end_date"] = newEnd
	}

	if len(updates) > 0 {
		if err := s.db.Model(month).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return month, nil
}

// DeleteMonth removes an overview together with its budgets, their expenses,
// and its income sources in one transaction. Each removed budget gets a
// deleted history entry, same as a direct budget delete.
func (s *monthService) DeleteMonth(userID, monthID uint) error {
	month, err := s.GetMonthByID(userID, monthID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var budgets []models.Budget
		if err := tx.Where("monthly_overview_id = ?", month.ID).Find(&budgets).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if len(budgets) > 0 {
			budgetIDs := make([]uint, len(budgets))
			for i, b := range budgets {
				budgetIDs[i] = b.ID
				if err := recordBudgetHistory(tx, userID, b.ID, models.HistoryActionDeleted, b, nil); err != nil {
					return err
				}
			}
			if err := tx.Where("budget_id IN ?", budgetIDs).Delete(&models.Expense{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if err := tx.Where("monthly_overview_id = ?", month.ID).Delete(&models.Budget{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := tx.Where("monthly_overview_id = ?", month.ID).Delete(&models.IncomeSource{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Delete(month).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetMonthSummary totals the month's income against its budgeted amounts.
func (s *monthService) GetMonthSummary(userID, monthID uint) (*validation.MonthlyOverviewSummary, error) {
	month, err := s.GetMonthByID(userID, monthID)
	if err != nil {
		return nil, err
	}

	var incomeAmounts []float64
	if err := s.db.Model(&models.IncomeSource{}).
		Where("monthly_overview_id = ?", month.ID).
		Pluck("amount", &incomeAmounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgetAmounts []float64
	if err := s.db.Model(&models.Budget{}).
		Where("monthly_overview_id = ?", month.ID).
		Pluck("amount", &budgetAmounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := validation.CalculateMonthlyOverviewSummary(incomeAmounts, budgetAmounts)
	return &summary, nil
}

// CreateIncomeSource adds an income line to a month.
func (s *monthService) CreateIncomeSource(userID, monthID uint, name string, amount float64, receivedOn *time.Time) (*models.IncomeSource, error) {
	month, err := s.GetMonthByID(userID, monthID)
	if err != nil {
		return nil, err
	}
	if err := validation.PositiveAmount(amount, "Income amount"); err != nil {
		return nil, err
	}

	income := &models.IncomeSource{
		UserID:            userID,
		MonthlyOverviewID: month.ID,
		Name:              name,
		Amount:            amount,
		ReceivedOn:        receivedOn,
	}
	if err := s.db.Create(income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return income, nil
}

// UpdateIncomeSource updates an income line's fields.
func (s *monthService) UpdateIncomeSource(userID, incomeID uint, name string, amount *float64, receivedOn *time.Time) (*models.IncomeSource, error) {
	var income models.IncomeSource
	if err := s.db.Where("id = ? AND user_id = ?", incomeID, userID).First(&income).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIncomeSourceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if amount != nil {
		if err := validation.PositiveAmount(*amount, "Income amount"); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if amount != nil {
		updates["amount"] = *amount
	}
	if receivedOn != nil {
		updates["received_on"] = receivedOn
	}

	if len(updates) > 0 {
		if err := s.db.Model(&income).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return &income, nil
}

// DeleteIncomeSource removes an income line.
func (s *monthService) DeleteIncomeSource(userID, incomeID uint) error {
	var income models.IncomeSource
	if err := s.db.Where("id = ? AND user_id = ?", incomeID, userID).First(&income).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrIncomeSourceNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Delete(&income).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
