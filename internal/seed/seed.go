// Package seed provides the default master budget categories applied for new
// households during onboarding.
package seed

import (
	"strings"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"

	"gorm.io/gorm"
)

// defaultCategory is one entry of the onboarding template.
type defaultCategory struct {
	Name        string
	Amount      float64
	Description string
}

// defaultCategories is the stock set of 13 master budgets. The total of 4588
// is a regression fixture consumed by onboarding flows; change it only
// together with those flows.
var defaultCategories = []defaultCategory{
	{Name: "Tithe", Amount: 460, Description: "Monthly tithe"},
	{Name: "Offering", Amount: 100, Description: "Offerings and giving"},
	{Name: "Housing", Amount: 1400, Description: "Rent or mortgage and utilities"},
	{Name: "Food", Amount: 550, Description: "Groceries and eating out"},
	{Name: "Transport", Amount: 320, Description: "Fuel, public transport, maintenance"},
	{Name: "Personal Care", Amount: 120, Description: "Haircuts, toiletries, clothing"},
	{Name: "Household", Amount: 150, Description: "Cleaning supplies and small repairs"},
	{Name: "Savings", Amount: 600, Description: "General savings"},
	{Name: "Investments", Amount: 400, Description: "Recurring investment contributions"},
	{Name: "Subscriptions", Amount: 128, Description: "Streaming, software, memberships"},
	{Name: "Health", Amount: 160, Description: "Insurance excess, pharmacy, gym"},
	{Name: "Travel", Amount: 140, Description: "Trips and holidays fund"},
	{Name: "Miscellaneous", Amount: 60, Description: "Everything else"},
}

// DefaultMasterBudgets returns the stock categories as unsaved MasterBudget
// rows for the given user.
func DefaultMasterBudgets(userID uint) []models.MasterBudget {
	out := make([]models.MasterBudget, 0, len(defaultCategories))
	for _, c := range defaultCategories {
		out = append(out, models.MasterBudget{
			UserID:      userID,
			Name:        c.Name,
			Amount:      c.Amount,
			Description: c.Description,
		})
	}
	return out
}

// DefaultTotal returns the summed amount of the stock categories.
func DefaultTotal() float64 {
	var total float64
	for _, c := range defaultCategories {
		total += c.Amount
	}
	return total
}

// Apply creates any stock category the user does not already have, matching
// existing master budgets by trimmed, case-insensitive name. It returns the
// number of categories created.
func Apply(db *gorm.DB, userID uint) (int, error) {
	var existing []models.MasterBudget
	if err := db.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	have := make(map[string]bool, len(existing))
	for _, mb := range existing {
		have[strings.ToLower(strings.TrimSpace(mb.Name))] = true
	}

	created := 0
	for _, mb := range DefaultMasterBudgets(userID) {
		if have[strings.ToLower(mb.Name)] {
			continue
		}
		mb := mb
		if err := db.Create(&mb).Error; err != nil {
			return created, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		created++
	}
	return created, nil
}
