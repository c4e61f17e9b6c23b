package services

import (
	"errors"
	"math"

	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/validation"
)

// overrideTolerance is the largest divergence from a master budget amount
// that does not count as an override.
const overrideTolerance = 0.01

// budgetService handles month-scoped budget lines and their audit history.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a budget line in a month and appends its creation
// history. The master budget link is optional.
func (s *budgetService) CreateBudget(userID, monthID uint, name string, amount float64, description string, masterBudgetID *uint) (*models.Budget, error) {
	if err := validation.NonNegativeAmount(amount, "Budget amount"); err != nil {
		return nil, err
	}

	var month models.MonthlyOverview
	if err := s.db.Where("id = ? AND user_id = ?", monthID, userID).First(&month).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMonthNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if masterBudgetID != nil {
		var mb models.MasterBudget
		if err := s.db.Where("id = ? AND user_id = ?", *masterBudgetID, userID).First(&mb).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrMasterBudgetNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	budget := &models.Budget{
		UserID:            userID,
		MonthlyOverviewID: month.ID,
		MasterBudgetID:    masterBudgetID,
		Name:              name,
		Amount:            amount,
		Description:       description,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return recordBudgetHistory(tx, userID, budget.ID, models.HistoryActionCreated, nil, budget)
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// GetBudgetByID returns a budget if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// GetMonthBudgets returns a paginated list of a month's budgets.
func (s *budgetService) GetMonthBudgets(userID, monthID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ? AND monthly_overview_id = ?", userID, monthID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("MasterBudget").Scopes(pagination.Paginate(page)).Order("name ASC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateBudget patches a budget line. Changing the amount of a budget that is
// linked to a master template by more than a cent requires a non-empty
// override reason, and the new amount is recorded as the override amount.
// Every update appends a history entry.
func (s *budgetService) UpdateBudget(userID, budgetID uint, patch BudgetUpdate) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	if patch.Amount != nil {
		if err := validation.NonNegativeAmount(*patch.Amount, "Budget amount"); err != nil {
			return nil, err
		}
	}

	before := *budget
	updates := make(map[string]interface{})

	if patch.Name != nil && *patch.Name != "" {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}

	if patch.Amount != nil {
		updates["amount"] = *patch.Amount

		if budget.MasterBudgetID != nil {
			var mb models.MasterBudget
			if err := s.db.Where("id = ? AND user_id = ?", *budget.MasterBudgetID, userID).First(&mb).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			} else if err == nil {
				if math.Abs(*patch.Amount-mb.Amount) > overrideTolerance {
					if patch.OverrideReason == nil || *patch.OverrideReason == "" {
						return nil, apperrors.ErrOverrideReason
					}
					updates["override_amount"] = *patch.Amount
					updates["override_reason"] = *patch.OverrideReason
				} else {
					// Back in line with the template; drop any stale override.
					updates["override_amount"] = nil
					updates["override_reason"] = ""
				}
			}
		}
	}

	if len(updates) == 0 {
		return budget, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(budget).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return recordBudgetHistory(tx, userID, budget.ID, models.HistoryActionUpdated, &before, budget)
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// DeleteBudget removes a budget line together with its expenses and appends
// the deletion to the history.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("budget_id = ?", budget.ID).Delete(&models.Expense{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return recordBudgetHistory(tx, userID, budget.ID, models.HistoryActionDeleted, budget, nil)
	})
}

// GetBudgetSummary returns the spent/left/percent picture of a budget. The
// budget amount is transfer-adjusted before the summary arithmetic.
func (s *budgetService) GetBudgetSummary(userID, budgetID uint) (*validation.BudgetSummary, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	effective, err := budgetEffectiveAmount(s.db, budget)
	if err != nil {
		return nil, err
	}

	var expenseAmounts []float64
	if err := s.db.Model(&models.Expense{}).
		Where("budget_id = ?", budget.ID).
		Pluck("amount", &expenseAmounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := validation.CalculateBudgetSummary(effective, expenseAmounts)
	return &summary, nil
}

// GetBudgetDeviation reports the divergence between a budget and its master
// template. Unlinked budgets have a zero deviation.
func (s *budgetService) GetBudgetDeviation(userID, budgetID uint) (*BudgetDeviation, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}
	if budget.MasterBudgetID == nil {
		return &BudgetDeviation{}, nil
	}

	var mb models.MasterBudget
	if err := s.db.Where("id = ?", *budget.MasterBudgetID).First(&mb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &BudgetDeviation{}, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	deviation := budget.Amount - mb.Amount
	var percent float64
	if mb.Amount > 0 {
		percent = deviation / mb.Amount * 100
	}
	return &BudgetDeviation{Deviation: deviation, DeviationPercent: percent}, nil
}

// GetBudgetHistory returns the budget's audit trail, oldest first.
func (s *budgetService) GetBudgetHistory(userID, budgetID uint, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetHistoryEntry], error) {
	page.Defaults()

	base := s.db.Model(&models.BudgetHistoryEntry{}).
		Where("user_id = ? AND budget_id = ?", userID, budgetID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.BudgetHistoryEntry
	if err := base.Scopes(pagination.Paginate(page)).Order("changed_at ASC").Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// budgetSpent sums the expenses recorded against a budget.
func budgetSpent(tx *gorm.DB, budgetID uint) (float64, error) {
	var spent float64
	err := tx.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("budget_id = ?", budgetID).
		Scan(&spent).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return spent, nil
}

// budgetEffectiveAmount is the budget's allocation after applying transfers:
// the stored amount, plus money transferred in, minus money transferred out.
func budgetEffectiveAmount(tx *gorm.DB, budget *models.Budget) (float64, error) {
	var in float64
	err := tx.Model(&models.Transfer{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("to_budget_id = ?", budget.ID).
		Scan(&in).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var out float64
	err = tx.Model(&models.Transfer{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("from_budget_id = ?", budget.ID).
		Scan(&out).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget.Amount + in - out, nil
}
