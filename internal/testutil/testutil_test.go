package testutil_test

import (
	"testing"
	"time"

	"hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{
		"users", "monthly_overviews", "income_sources", "master_budgets",
		"budgets", "expenses", "financial_goals", "financial_sub_goals",
		"goal_contributions", "transfers", "subscriptions",
		"master_budget_history_entries", "budget_history_entries",
	} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == 0 {
		t.Fatal("user should have a non-zero ID")
	}

	month := testutil.CreateTestMonth(t, db, user.ID)
	if !month.Contains(time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)) {
		t.Error("default test month should contain June 15 2026")
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, month.ID, 250)
	if budget.Amount != 250 {
		t.Errorf("expected budget amount 250, got %f", budget.Amount)
	}

	goal := testutil.CreateTestGoal(t, db, user.ID, 1000, 100)
	if goal.BaseAmount != 100 {
		t.Errorf("expected base amount 100, got %f", goal.BaseAmount)
	}

	billing := time.Date(2026, time.June, 5, 0, 0, 0, 0, time.UTC)
	sub := testutil.CreateTestSubscription(t, db, user.ID, 9.99, models.FrequencyMonthly, &billing)
	if sub.Status != models.SubscriptionStatusActive {
		t.Errorf("expected active subscription, got %s", sub.Status)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrBudgetNotFound, "custom message")
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
