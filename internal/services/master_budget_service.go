package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/seed"
	"hearth/internal/validation"
)

// masterBudgetService handles the reusable budget templates, their audit
// history, and their propagation into months.
type masterBudgetService struct {
	db *gorm.DB
}

// NewMasterBudgetService creates a new MasterBudgetServicer.
func NewMasterBudgetService(db *gorm.DB) MasterBudgetServicer {
	return &masterBudgetService{db: db}
}

// CreateMasterBudget creates a template and appends its creation history.
func (s *masterBudgetService) CreateMasterBudget(userID uint, name string, amount float64, description string) (*models.MasterBudget, error) {
	if err := validation.NonNegativeAmount(amount, "Budget amount"); err != nil {
		return nil, err
	}

	mb := &models.MasterBudget{
		UserID:      userID,
		Name:        name,
		Amount:      amount,
		Description: description,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mb).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return recordMasterBudgetHistory(tx, userID, mb.ID, models.HistoryActionCreated, nil, mb)
	})
	if err != nil {
		return nil, err
	}
	return mb, nil
}

// GetMasterBudgetByID returns a template if it belongs to the user.
func (s *masterBudgetService) GetMasterBudgetByID(userID, masterBudgetID uint) (*models.MasterBudget, error) {
	var mb models.MasterBudget
	if err := s.db.Where("id = ? AND user_id = ?", masterBudgetID, userID).First(&mb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMasterBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &mb, nil
}

// GetUserMasterBudgets returns a paginated list of the user's templates.
func (s *masterBudgetService) GetUserMasterBudgets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.MasterBudget], error) {
	page.Defaults()

	base := s.db.Model(&models.MasterBudget{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.MasterBudget
	if err := base.Scopes(pagination.Paginate(page)).Order("name ASC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateMasterBudget patches a template and appends a before/after history
// entry in the same transaction. Months that already copied the template are
// never touched.
func (s *masterBudgetService) UpdateMasterBudget(userID, masterBudgetID uint, name string, amount *float64, description *string) (*models.MasterBudget, error) {
	mb, err := s.GetMasterBudgetByID(userID, masterBudgetID)
	if err != nil {
		return nil, err
	}

	if amount != nil {
		if err := validation.NonNegativeAmount(*amount, "Budget amount"); err != nil {
			return nil, err
		}
	}

	before := *mb

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if amount != nil {
		updates["amount"] = *amount
	}
	if description != nil {
		updates["description"] = *description
	}
	if len(updates) == 0 {
		return mb, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(mb).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return recordMasterBudgetHistory(tx, userID, mb.ID, models.HistoryActionUpdated, &before, mb)
	})
	if err != nil {
		return nil, err
	}
	return mb, nil
}

// DeleteMasterBudget removes a template, leaving instantiated month budgets
// untouched, and appends the deletion to the history.
func (s *masterBudgetService) DeleteMasterBudget(userID, masterBudgetID uint) error {
	mb, err := s.GetMasterBudgetByID(userID, masterBudgetID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(mb).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return recordMasterBudgetHistory(tx, userID, mb.ID, models.HistoryActionDeleted, mb, nil)
	})
}

// AddMasterBudgetsToMonth copies the selected templates into a month. A
// template is skipped when the month already has a budget with the same
// master_budget_id or the same trimmed, case-insensitive name; budgets
// predating the template linkage can only match by name.
func (s *masterBudgetService) AddMasterBudgetsToMonth(userID, monthID uint, masterBudgetIDs []uint) (*PropagationResult, error) {
	var month models.MonthlyOverview
	if err := s.db.Where("id = ? AND user_id = ?", monthID, userID).First(&month).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMonthNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var existing []models.Budget
	if err := s.db.Where("monthly_overview_id = ?", month.ID).Find(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	linkedIDs := make(map[uint]bool, len(existing))
	takenNames := make(map[string]bool, len(existing))
	for _, b := range existing {
		if b.MasterBudgetID != nil {
			linkedIDs[*b.MasterBudgetID] = true
		}
		takenNames[normalizeName(b.Name)] = true
	}

	result := &PropagationResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range masterBudgetIDs {
			mb, err := s.GetMasterBudgetByID(userID, id)
			if err != nil {
				return err
			}

			if linkedIDs[mb.ID] || takenNames[normalizeName(mb.Name)] {
				result.Skipped++
				continue
			}

			masterID := mb.ID
			budget := &models.Budget{
				UserID:            userID,
				MonthlyOverviewID: month.ID,
				MasterBudgetID:    &masterID,
				Name:              mb.Name,
				Amount:            mb.Amount,
				Description:       mb.Description,
			}
			if err := tx.Create(budget).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if err := recordBudgetHistory(tx, userID, budget.ID, models.HistoryActionCreated, nil, budget); err != nil {
				return err
			}

			linkedIDs[mb.ID] = true
			takenNames[normalizeName(mb.Name)] = true
			result.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetMasterBudgetHistory returns the template's audit trail, oldest first.
func (s *masterBudgetService) GetMasterBudgetHistory(userID, masterBudgetID uint, page pagination.PageRequest) (*pagination.PageResponse[models.MasterBudgetHistoryEntry], error) {
	page.Defaults()

	base := s.db.Model(&models.MasterBudgetHistoryEntry{}).
		Where("user_id = ? AND master_budget_id = ?", userID, masterBudgetID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.MasterBudgetHistoryEntry
	if err := base.Scopes(pagination.Paginate(page)).Order("changed_at ASC").Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// ApplyDefaultMasterBudgets seeds the stock onboarding categories the user
// does not already have and returns how many were created.
func (s *masterBudgetService) ApplyDefaultMasterBudgets(userID uint) (int, error) {
	return seed.Apply(s.db, userID)
}

// normalizeName folds a budget name for duplicate detection.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
