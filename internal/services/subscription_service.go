package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/recurrence"
	"hearth/internal/validation"
)

// subscriptionService handles subscriptions and their projection into month
// budgets.
type subscriptionService struct {
	db            *gorm.DB
	budgetService BudgetServicer
}

// NewSubscriptionService creates a new SubscriptionServicer.
func NewSubscriptionService(db *gorm.DB, budgetService BudgetServicer) SubscriptionServicer {
	return &subscriptionService{db: db, budgetService: budgetService}
}

// CreateSubscription creates a subscription.
func (s *subscriptionService) CreateSubscription(
	userID uint,
	name string,
	amount float64,
	frequency models.Frequency,
	status models.SubscriptionStatus,
	nextBillingDate *time.Time,
	description string,
) (*models.Subscription, error) {
	if err := validation.PositiveAmount(amount, "Subscription amount"); err != nil {
		return nil, err
	}
	if status == "" {
		status = models.SubscriptionStatusActive
	}

	sub := &models.Subscription{
		UserID:          userID,
		Name:            name,
		Amount:          amount,
		Frequency:       frequency,
		Status:          status,
		NextBillingDate: nextBillingDate,
		Description:     description,
	}
	if err := s.db.Create(sub).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sub, nil
}

// GetSubscriptionByID returns a subscription if it belongs to the user.
func (s *subscriptionService) GetSubscriptionByID(userID, subscriptionID uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.Where("id = ? AND user_id = ?", subscriptionID, userID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubscriptionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &sub, nil
}

// GetUserSubscriptions returns a paginated list of subscriptions, optionally
// filtered by status.
func (s *subscriptionService) GetUserSubscriptions(userID uint, page pagination.PageRequest, status *models.SubscriptionStatus) (*pagination.PageResponse[models.Subscription], error) {
	page.Defaults()

	base := s.db.Model(&models.Subscription{}).Where("user_id = ?", userID)
	if status != nil {
		base = base.Where("status = ?", *status)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var subs []models.Subscription
	if err := base.Scopes(pagination.Paginate(page)).Order("name ASC").Find(&subs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(subs, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateSubscription patches a subscription's fields.
func (s *subscriptionService) UpdateSubscription(
	userID, subscriptionID uint,
	name string,
	amount *float64,
	frequency *models.Frequency,
	status *models.SubscriptionStatus,
	nextBillingDate *time.Time,
	description *string,
) (*models.Subscription, error) {
	sub, err := s.GetSubscriptionByID(userID, subscriptionID)
	if err != nil {
		return nil, err
	}

	if amount != nil {
		if err := validation.PositiveAmount(*amount, "Subscription amount"); err != nil {
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
	if frequency != nil {
		updates["frequency"] = *frequency
	}
	if status != nil {
		updates["status"] = *status
	}
	if nextBillingDate != nil {
		updates["next_billing_date"] = nextBillingDate
	}
	if description != nil {
		updates["description"] = *description
	}

	if len(updates) > 0 {
		if err := s.db.Model(sub).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return sub, nil
}

// DeleteSubscription removes a subscription.
func (s *subscriptionService) DeleteSubscription(userID, subscriptionID uint) error {
	sub, err := s.GetSubscriptionByID(userID, subscriptionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(sub).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetByDateRange returns subscriptions whose status matches and whose next
// billing date falls inside [start, end]. A subscription with no billing
// date on file is treated as always eligible while it matches the status.
func (s *subscriptionService) GetByDateRange(userID uint, start, end time.Time, status models.SubscriptionStatus) ([]models.Subscription, error) {
	if err := validation.DateRange(start, end, ""); err != nil {
		return nil, err
	}

	var subs []models.Subscription
	err := s.db.
		Where("user_id = ? AND status = ?", userID, status).
		Where("next_billing_date IS NULL OR (next_billing_date >= ? AND next_billing_date <= ?)", start, end).
		Order("name ASC").
		Find(&subs).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return subs, nil
}

// CreateBudgetsFromSubscriptions converts the selected subscriptions into
// one-off budget lines in the target month at their monthly-equivalent cost.
// Each item succeeds, is skipped as a duplicate, or fails on its own, and
// the partial result is returned rather than an error.
func (s *subscriptionService) CreateBudgetsFromSubscriptions(userID, monthID uint, start, end time.Time, subscriptionIDs []uint) (*BatchResult, error) {
	if err := validation.DateRange(start, end, ""); err != nil {
		return nil, err
	}

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
	takenNames := make(map[string]bool, len(existing))
	for _, b := range existing {
		takenNames[normalizeName(b.Name)] = true
	}

	result := &BatchResult{Errors: []BatchError{}}
	for _, id := range subscriptionIDs {
		sub, err := s.GetSubscriptionByID(userID, id)
		if err != nil {
			result.Errors = append(result.Errors, BatchError{Name: fmt.Sprintf("subscription %d", id), Error: err.Error()})
			continue
		}

		if takenNames[normalizeName(sub.Name)] {
			result.Skipped++
			continue
		}

		// A subscription that will not bill inside the window contributes
		// nothing to this month.
		if sub.NextBillingDate != nil && (sub.NextBillingDate.Before(start) || sub.NextBillingDate.After(end)) {
			result.Skipped++
			continue
		}

		monthlyCost := recurrence.MonthlyAmount(sub.Frequency, sub.Amount)
		budget := &models.Budget{
			UserID:            userID,
			MonthlyOverviewID: month.ID,
			Name:              sub.Name,
			Amount:            monthlyCost,
			Description:       subscriptionBudgetDescription(sub),
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(budget).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return recordBudgetHistory(tx, userID, budget.ID, models.HistoryActionCreated, nil, budget)
		})
		if err != nil {
			result.Errors = append(result.Errors, BatchError{Name: sub.Name, Error: err.Error()})
			continue
		}

		takenNames[normalizeName(sub.Name)] = true
		result.Created++
	}
	return result, nil
}

// subscriptionBudgetDescription labels a generated budget line with the
// subscription it came from.
func subscriptionBudgetDescription(sub *models.Subscription) string {
	var b strings.Builder
	b.WriteString("Subscription: ")
	b.WriteString(sub.Name)
	b.WriteString(" (")
	b.WriteString(string(sub.Frequency))
	b.WriteString(")")
	return b.String()
}
