package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/validation"
)

// goalService maintains the goal ledger: a goal's balance is always derived
// from its stored base amount plus the contribution ledger, minus drawdowns
// and transfers out. The balance is recomputed on read, never stored.
type goalService struct {
	db *gorm.DB
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db}
}

// CreateGoal creates a goal. The supplied current amount becomes the stored
// base amount; there is no ledger yet, so the two start out equal.
func (s *goalService) CreateGoal(
	userID uint,
	name, description string,
	targetAmount, currentAmount float64,
	startDate time.Time,
	endDate *time.Time,
	priority models.GoalPriority,
) (*models.FinancialGoal, error) {
	if err := validation.PositiveAmount(targetAmount, "Target amount"); err != nil {
		return nil, err
	}
	if err := validation.NonNegativeAmount(currentAmount, "Current amount"); err != nil {
		return nil, err
	}
	if endDate != nil {
		if err := validation.DateRange(startDate, *endDate, name); err != nil {
			return nil, err
		}
	}
	if priority == "" {
		priority = models.GoalPriorityMedium
	}

	goal := &models.FinancialGoal{
		UserID:       userID,
		Name:         name,
		Description:  description,
		TargetAmount: targetAmount,
		BaseAmount:   currentAmount,
		StartDate:    startDate,
		EndDate:      endDate,
		Priority:     priority,
	}
	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	goal.CurrentAmount = goal.BaseAmount
	return goal, nil
}

// GetGoalByID returns a goal with its derived current amount and sub-goals.
func (s *goalService) GetGoalByID(userID, goalID uint) (*models.FinancialGoal, error) {
	var goal models.FinancialGoal
	if err := s.db.Preload("SubGoals").Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	balance, err := goalBalance(s.db, &goal)
	if err != nil {
		return nil, err
	}
	goal.CurrentAmount = balance
	return &goal, nil
}

// GetUserGoals returns a paginated list of the user's goals with derived
// balances.
func (s *goalService) GetUserGoals(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.FinancialGoal], error) {
	page.Defaults()

	base := s.db.Model(&models.FinancialGoal{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var goals []models.FinancialGoal
	if err := base.Preload("SubGoals").Scopes(pagination.Paginate(page)).Order("created_at ASC").Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range goals {
		balance, err := goalBalance(s.db, &goals[i])
		if err != nil {
			return nil, err
		}
		goals[i].CurrentAmount = balance
	}

	result := pagination.NewPageResponse(goals, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateGoal patches a goal. The target amount and date range are
// re-validated using stored values for any field not being changed.
func (s *goalService) UpdateGoal(userID, goalID uint, patch GoalUpdate) (*models.FinancialGoal, error) {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	newTarget := goal.TargetAmount
	if patch.TargetAmount != nil {
		newTarget = *patch.TargetAmount
	}
	if err := validation.PositiveAmount(newTarget, "Target amount"); err != nil {
		return nil, err
	}

	newStart := goal.StartDate
	newEnd := goal.EndDate
	if patch.StartDate != nil {
		newStart = *patch.StartDate
	}
	if patch.EndDate != nil {
		newEnd = patch.EndDate
	}
	if newEnd != nil {
		if err := validation.DateRange(newStart, *newEnd, goal.Name); err != nil {
			return nil, err
		}
	}

	if patch.BaseAmount != nil {
		if err := validation.NonNegativeAmount(*patch.BaseAmount, "Current amount"); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	if patch.Name != nil && *patch.Name != "" {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.TargetAmount != nil {
		updates["target_amount"] = *patch.TargetAmount
	}
	if patch.BaseAmount != nil {
		updates["base_amount"] = *patch.BaseAmount
	}
	if patch.StartDate != nil {
		updates["start_date"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		updates["end_date"] = patch.EndDate
	}
	if patch.Priority != nil {
		updates["priority"] = *patch.Priority
	}

	if len(updates) > 0 {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			// Lowering the base amount must not leave the balance below what
			// has already been drawn down.
			if patch.BaseAmount != nil {
				current, err := goalBalance(tx, goal)
				if err != nil {
					return err
				}
				newBalance := current - goal.BaseAmount + *patch.BaseAmount
				if err := validation.NoNegativeBalance(newBalance, goal.Name); err != nil {
					return err
				}
			}
			if err := tx.Model(goal).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	balance, err := goalBalance(s.db, goal)
	if err != nil {
		return nil, err
	}
	goal.CurrentAmount = balance
	return goal, nil
}

// DeleteGoal removes a goal together with its sub-goals. Ledger rows are
// kept for audit.
func (s *goalService) DeleteGoal(userID, goalID uint) error {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ?", goal.ID).Delete(&models.FinancialSubGoal{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(goal).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// CreateSubGoal adds a step toward a goal and marks the parent as having
// sub-goals. The date range is only checked when both dates are supplied.
func (s *goalService) CreateSubGoal(userID, goalID uint, name string, progress float64, startDate, endDate *time.Time) (*models.FinancialSubGoal, error) {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	if err := validation.Progress(progress); err != nil {
		return nil, err
	}
	if startDate != nil && endDate != nil {
		if err := validation.DateRange(*startDate, *endDate, name); err != nil {
			return nil, err
		}
	}

	subGoal := &models.FinancialSubGoal{
		GoalID:    goal.ID,
		Name:      name,
		Progress:  progress,
		StartDate: startDate,
		EndDate:   endDate,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(subGoal).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !goal.HasSubGoals {
			if err := tx.Model(goal).Update("has_sub_goals", true).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subGoal, nil
}

// UpdateSubGoal patches a sub-goal with the same progress and date checks as
// creation.
func (s *goalService) UpdateSubGoal(userID, subGoalID uint, name string, progress *float64, startDate, endDate *time.Time) (*models.FinancialSubGoal, error) {
	subGoal, err := s.getSubGoal(userID, subGoalID)
	if err != nil {
		return nil, err
	}

	if progress != nil {
		if err := validation.Progress(*progress); err != nil {
			return nil, err
		}
	}

	newStart := subGoal.StartDate
	newEnd := subGoal.EndDate
	if startDate != nil {
		newStart = startDate
	}
	if endDate != nil {
		newEnd = endDate
	}
	if newStart != nil && newEnd != nil {
		if err := validation.DateRange(*newStart, *newEnd, subGoal.Name); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if progress != nil {
		updates["progress"] = *progress
	}
	if startDate != nil {
		updates["start_date"] = startDate
	}
	if endDate != nil {
		updates["end_date"] = endDate
	}

	if len(updates) > 0 {
		if err := s.db.Model(subGoal).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return subGoal, nil
}

// DeleteSubGoal removes a sub-goal and clears the parent's has_sub_goals flag
// when it was the last one.
func (s *goalService) DeleteSubGoal(userID, subGoalID uint) error {
	subGoal, err := s.getSubGoal(userID, subGoalID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(subGoal).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var remaining int64
		if err := tx.Model(&models.FinancialSubGoal{}).Where("goal_id = ?", subGoal.GoalID).Count(&remaining).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if remaining == 0 {
			if err := tx.Model(&models.FinancialGoal{}).Where("id = ?", subGoal.GoalID).Update("has_sub_goals", false).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
}

// ApplyContribution records an unconditional deposit into a goal.
func (s *goalService) ApplyContribution(userID, goalID uint, amount float64, date time.Time, note string) (*models.GoalContribution, error) {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}
	if err := validation.PositiveAmount(amount, "Contribution amount"); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = time.Now()
	}

	contribution := &models.GoalContribution{
		UserID: userID,
		GoalID: goal.ID,
		Amount: amount,
		Date:   date,
		Note:   note,
	}
	if err := s.db.Create(contribution).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return contribution, nil
}

// ApplyDrawdown withdraws cash from a goal with no destination budget. The
// balance check and the transfer row land in one transaction, so the balance
// can never be pushed below zero by racing withdrawals.
func (s *goalService) ApplyDrawdown(userID, goalID uint, amount float64, date time.Time, details TransferDetails) (*models.Transfer, error) {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}
	if err := validation.PositiveAmount(amount, "Drawdown amount"); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = time.Now()
	}

	gID := goal.ID
	transfer := &models.Transfer{
		UserID:        userID,
		Type:          models.TransferTypeGoalDrawdown,
		Amount:        amount,
		Date:          date,
		Reference:     uuid.New().String(),
		Description:   details.Description,
		Notes:         details.Notes,
		PaymentMethod: details.PaymentMethod,
		GoalID:        &gID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		balance, err := goalBalance(tx, goal)
		if err != nil {
			return err
		}
		if err := validation.NoOverdraw(balance, amount, goal.Name); err != nil {
			return err
		}
		if err := tx.Create(transfer).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

// CurrentBalance returns the goal's derived balance.
func (s *goalService) CurrentBalance(userID, goalID uint) (float64, error) {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return 0, err
	}
	return goal.CurrentAmount, nil
}

func (s *goalService) getSubGoal(userID, subGoalID uint) (*models.FinancialSubGoal, error) {
	var subGoal models.FinancialSubGoal
	err := s.db.
		Joins("JOIN financial_goals ON financial_goals.id = financial_sub_goals.goal_id").
		Where("financial_sub_goals.id = ? AND financial_goals.user_id = ?", subGoalID, userID).
		First(&subGoal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &subGoal, nil
}

// goalBalance recomputes a goal's balance from its base amount and the
// ledgers: contributions and goal-linked expenses add, drawdowns and
// transfers out subtract.
func goalBalance(tx *gorm.DB, goal *models.FinancialGoal) (float64, error) {
	var contributed float64
	err := tx.Model(&models.GoalContribution{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("goal_id = ?", goal.ID).
		Scan(&contributed).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var fromExpenses float64
	err = tx.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("goal_id = ?", goal.ID).
		Scan(&fromExpenses).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var withdrawn float64
	err = tx.Model(&models.Transfer{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("goal_id = ? AND type IN ?", goal.ID,
			[]models.TransferType{models.TransferTypeGoalToBudget, models.TransferTypeGoalDrawdown}).
		Scan(&withdrawn).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return goal.BaseAmount + contributed + fromExpenses - withdrawn, nil
}
