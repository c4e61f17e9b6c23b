package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"hearth/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestMonth creates a monthly overview covering June 2026.
func CreateTestMonth(t *testing.T, db *gorm.DB, userID uint) *models.MonthlyOverview {
	t.Helper()
	start := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.June, 30, 23, 59, 59, 0, time.UTC)
	return CreateTestMonthWithDates(t, db, userID, start, end)
}

// CreateTestMonthWithDates creates a monthly overview with the given window.
func CreateTestMonthWithDates(t *testing.T, db *gorm.DB, userID uint, start, end time.Time) *models.MonthlyOverview {
	t.Helper()

	month := &models.MonthlyOverview{
		UserID:    userID,
		Name:      fmt.Sprintf("Test Month %d", nextID()),
		StartDate: start,
		EndDate:   end,
	}
	if err := db.Create(month).Error; err != nil {
		t.Fatalf("failed to create test month: %v", err)
	}
	return month
}

// CreateTestIncomeSource creates an income source attached to the month.
func CreateTestIncomeSource(t *testing.T, db *gorm.DB, userID, monthID uint, amount float64) *models.IncomeSource {
	t.Helper()

	income := &models.IncomeSource{
		UserID:            userID,
		MonthlyOverviewID: monthID,
		Name:              fmt.Sprintf("Test Income %d", nextID()),
		Amount:            amount,
	}
	if err := db.Create(income).Error; err != nil {
		t.Fatalf("failed to create test income source: %v", err)
	}
	return income
}

// CreateTestMasterBudget creates a reusable budget template.
func CreateTestMasterBudget(t *testing.T, db *gorm.DB, userID uint, amount float64) *models.MasterBudget {
	t.Helper()

	mb := &models.MasterBudget{
		UserID: userID,
		Name:   fmt.Sprintf("Test Master Budget %d", nextID()),
		Amount: amount,
	}
	if err := db.Create(mb).Error; err != nil {
		t.Fatalf("failed to create test master budget: %v", err)
	}
	return mb
}

// CreateTestBudget creates a budget in the given month.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, monthID uint, amount float64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:            userID,
		MonthlyOverviewID: monthID,
		Name:              fmt.Sprintf("Test Budget %d", nextID()),
		Amount:            amount,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestExpense creates an expense against the budget on the given date.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, budgetID uint, amount float64, date time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:   userID,
		BudgetID: budgetID,
		Name:     fmt.Sprintf("Test Expense %d", nextID()),
		Amount:   amount,
		Date:     date,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestGoal creates a financial goal with the given starting balance.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID uint, targetAmount, baseAmount float64) *models.FinancialGoal {
	t.Helper()

	goal := &models.FinancialGoal{
		UserID:       userID,
		Name:         fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount: targetAmount,
		BaseAmount:   baseAmount,
		StartDate:    time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		Priority:     models.GoalPriorityMedium,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestSubscription creates an active subscription with the given
// frequency and billing date.
func CreateTestSubscription(t *testing.T, db *gorm.DB, userID uint, amount float64, frequency models.Frequency, nextBillingDate *time.Time) *models.Subscription {
	t.Helper()

	sub := &models.Subscription{
		UserID:          userID,
		Name:            fmt.Sprintf("Test Subscription %d", nextID()),
		Amount:          amount,
		Frequency:       frequency,
		Status:          models.SubscriptionStatusActive,
		NextBillingDate: nextBillingDate,
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create test subscription: %v", err)
	}
	return sub
}
