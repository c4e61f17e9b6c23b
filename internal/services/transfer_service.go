package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/validation"
)

// transferService coordinates money movements between budgets and goals.
// Each operation persists exactly one transfer row; budget and goal balances
// are derived from those rows, so writing the row atomically updates both
// sides of the movement.
type transferService struct {
	db            *gorm.DB
	budgetService BudgetServicer
	goalService   GoalServicer
}

// NewTransferService creates a new TransferServicer.
func NewTransferService(db *gorm.DB, budgetService BudgetServicer, goalService GoalServicer) TransferServicer {
	return &transferService{
		db:            db,
		budgetService: budgetService,
		goalService:   goalService,
	}
}

// BudgetToBudget moves part of one budget's unspent allocation into another
// budget. The source's remaining allocation is re-checked inside the same
// transaction that writes the transfer row.
func (s *transferService) BudgetToBudget(userID, fromBudgetID, toBudgetID uint, amount float64, date time.Time, details TransferDetails) (*models.Transfer, error) {
	if err := validation.PositiveAmount(amount, "Transfer amount"); err != nil {
		return nil, err
	}
	if fromBudgetID == toBudgetID {
		return nil, apperrors.ErrSameBudgetTransfer
	}

	from, err := s.budgetService.GetBudgetByID(userID, fromBudgetID)
	if err != nil {
		return nil, err
	}
	to, err := s.budgetService.GetBudgetByID(userID, toBudgetID)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = time.Now()
	}

	fromID, toID := from.ID, to.ID
	transfer := &models.Transfer{
		UserID:        userID,
		Type:          models.TransferTypeBudgetToBudget,
		Amount:        amount,
		Date:          date,
		Reference:     uuid.New().String(),
		Description:   details.Description,
		Notes:         details.Notes,
		PaymentMethod: details.PaymentMethod,
		FromBudgetID:  &fromID,
		ToBudgetID:    &toID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		effective, err := budgetEffectiveAmount(tx, from)
		if err != nil {
			return err
		}
		spent, err := budgetSpent(tx, from.ID)
		if err != nil {
			return err
		}
		if err := validation.NoOverspending(effective, spent, amount, from.Name); err != nil {
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

// GoalToBudget moves money out of a goal into a budget's allocation for the
// month. The goal balance is re-checked inside the write transaction.
func (s *transferService) GoalToBudget(userID, goalID, toBudgetID uint, amount float64, date time.Time, details TransferDetails) (*models.Transfer, error) {
	if err := validation.PositiveAmount(amount, "Transfer amount"); err != nil {
		return nil, err
	}

	goal, err := s.goalService.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}
	to, err := s.budgetService.GetBudgetByID(userID, toBudgetID)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = time.Now()
	}

	gID, toID := goal.ID, to.ID
	transfer := &models.Transfer{
		UserID:        userID,
		Type:          models.TransferTypeGoalToBudget,
		Amount:        amount,
		Date:          date,
		Reference:     uuid.New().String(),
		Description:   details.Description,
		Notes:         details.Notes,
		PaymentMethod: details.PaymentMethod,
		GoalID:        &gID,
		ToBudgetID:    &toID,
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

// GoalDrawdown withdraws cash from a goal with no destination budget,
// recorded for audit and reporting only.
func (s *transferService) GoalDrawdown(userID, goalID uint, amount float64, date time.Time, details TransferDetails) (*models.Transfer, error) {
	return s.goalService.ApplyDrawdown(userID, goalID, amount, date, details)
}

// GetUserTransfers returns a paginated, filtered list of transfers, newest
// first.
func (s *transferService) GetUserTransfers(userID uint, page pagination.PageRequest, filter TransferFilter) (*pagination.PageResponse[models.Transfer], error) {
	page.Defaults()

	base := s.db.Model(&models.Transfer{}).Where("user_id = ?", userID)
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	if filter.FromDate != nil {
		base = base.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("date <= ?", *filter.ToDate)
	}
	if filter.GoalID != nil {
		base = base.Where("goal_id = ?", *filter.GoalID)
	}
	if filter.BudgetID != nil {
		base = base.Where("from_budget_id = ? OR to_budget_id = ?", *filter.BudgetID, *filter.BudgetID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transfers []models.Transfer
	if err := base.Scopes(pagination.Paginate(page)).Order("date DESC").Find(&transfers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transfers, page.Page, page.PageSize, totalItems)
	return &result, nil
}
