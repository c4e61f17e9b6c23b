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

// expenseService handles expenses inside budgets.
type expenseService struct {
	db            *gorm.DB
	budgetService BudgetServicer
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, budgetService BudgetServicer) ExpenseServicer {
	return &expenseService{db: db, budgetService: budgetService}
}

// CreateExpense records spending against a budget. The date must fall inside
// the owning month and the amount must fit the budget's remaining allocation.
// The overspend check runs inside the same transaction as the insert so two
// racing writers cannot both pass it. A goal-linked expense counts toward
// that goal's balance.
func (s *expenseService) CreateExpense(
	userID, budgetID uint,
	name string,
	amount float64,
	date time.Time,
	goalID *uint,
	isRecurring bool,
	frequency *models.Frequency,
	notes string,
) (*models.Expense, error) {
	if err := validation.PositiveAmount(amount, "Expense amount"); err != nil {
		return nil, err
	}

	budget, err := s.budgetService.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	var month models.MonthlyOverview
	if err := s.db.Where("id = ?", budget.MonthlyOverviewID).First(&month).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := validation.ExpenseDateWithinMonth(date, month.StartDate, month.EndDate, month.Name); err != nil {
		return nil, err
	}

	if goalID != nil {
		var goal models.FinancialGoal
		if err := s.db.Where("id = ? AND user_id = ?", *goalID, userID).First(&goal).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrGoalNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	expense := &models.Expense{
		UserID:      userID,
		BudgetID:    budget.ID,
		GoalID:      goalID,
		Name:        name,
		Amount:      amount,
		Date:        date,
		IsRecurring: isRecurring,
		Frequency:   frequency,
		Notes:       notes,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		effective, err := budgetEffectiveAmount(tx, budget)
		if err != nil {
			return err
		}
		spent, err := budgetSpent(tx, budget.ID)
		if err != nil {
			return err
		}
		if err := validation.NoOverspending(effective, spent, amount, budget.Name); err != nil {
			return err
		}

		if err := tx.Create(expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// GetExpenseByID returns an expense if it belongs to the user.
func (s *expenseService) GetExpenseByID(userID, expenseID uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// GetBudgetExpenses returns a paginated list of a budget's expenses, newest
// first.
func (s *expenseService) GetBudgetExpenses(userID, budgetID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	if _, err := s.budgetService.GetBudgetByID(userID, budgetID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("user_id = ? AND budget_id = ?", userID, budgetID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Scopes(pagination.Paginate(page)).Order("date DESC").Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateExpense patches an expense, re-running the date and overspend checks
// for any change that affects them.
func (s *expenseService) UpdateExpense(userID, expenseID uint, name string, amount *float64, date *time.Time, notes *string) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	budget, err := s.budgetService.GetBudgetByID(userID, expense.BudgetID)
	if err != nil {
		return nil, err
	}

	if amount != nil {
		if err := validation.PositiveAmount(*amount, "Expense amount"); err != nil {
			return nil, err
		}
	}
	if date != nil {
		var month models.MonthlyOverview
		if err := s.db.Where("id = ?", budget.MonthlyOverviewID).First(&month).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := validation.ExpenseDateWithinMonth(*date, month.StartDate, month.EndDate, month.Name); err != nil {
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
	if date != nil {
		updates["date"] = *date
	}
	if notes != nil {
		updates["notes"] = *notes
	}
	if len(updates) == 0 {
		return expense, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if amount != nil {
			effective, err := budgetEffectiveAmount(tx, budget)
			if err != nil {
				return err
			}
			spent, err := budgetSpent(tx, budget.ID)
			if err != nil {
				return err
			}
			// The old amount is being replaced, not added on top.
			if err := validation.NoOverspending(effective, spent-expense.Amount, *amount, budget.Name); err != nil {
				return err
			}

			// A goal-linked expense counts toward the goal's balance, so
			// shrinking it must not undercut what was already drawn down.
			if expense.GoalID != nil {
				delta := *amount - expense.Amount
				if err := checkGoalBalanceAfter(tx, userID, *expense.GoalID, delta); err != nil {
					return err
				}
			}
		}

		if err := tx.Model(expense).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// DeleteExpense removes an expense. Deleting a goal-linked expense is refused
// when its amount has already been drawn down from the goal.
func (s *expenseService) DeleteExpense(userID, expenseID uint) error {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if expense.GoalID != nil {
			if err := checkGoalBalanceAfter(tx, userID, *expense.GoalID, -expense.Amount); err != nil {
				return err
			}
		}
		if err := tx.Delete(expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// checkGoalBalanceAfter verifies that shifting a goal's balance by delta would
// not leave it negative. It runs inside the caller's transaction so the check
// and the write that follows see the same ledger state.
func checkGoalBalanceAfter(tx *gorm.DB, userID, goalID uint, delta float64) error {
	var goal models.FinancialGoal
	if err := tx.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrGoalNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	balance, err := goalBalance(tx, &goal)
	if err != nil {
		return err
	}
	return validation.NoNegativeBalance(balance+delta, goal.Name)
}
