package services

import (
	"time"

	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/validation"
)

// MonthServicer defines the contract for monthly overview business logic.
type MonthServicer interface {
	CreateMonth(userID uint, name string, startDate, endDate time.Time) (*models.MonthlyOverview, error)
	GetMonthByID(userID, monthID uint) (*models.MonthlyOverview, error)
	GetUserMonths(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.MonthlyOverview], error)
	UpdateMonth(userID, monthID uint, name string, startDate, endDate *time.Time) (*models.MonthlyOverview, error)
	DeleteMonth(userID, monthID uint) error
	GetMonthSummary(userID, monthID uint) (*validation.MonthlyOverviewSummary, error)

	CreateIncomeSource(userID, monthID uint, name string, amount float64, receivedOn *time.Time) (*models.IncomeSource, error)
	UpdateIncomeSource(userID, incomeID uint, name string, amount *float64, receivedOn *time.Time) (*models.IncomeSource, error)
	DeleteIncomeSource(userID, incomeID uint) error
}

// PropagationResult reports how many master budgets were copied into a month
// and how many were skipped as duplicates.
type PropagationResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// MasterBudgetServicer defines the contract for the reusable budget templates
// and their propagation into months.
type MasterBudgetServicer interface {
	CreateMasterBudget(userID uint, name string, amount float64, description string) (*models.MasterBudget, error)
	GetMasterBudgetByID(userID, masterBudgetID uint) (*models.MasterBudget, error)
	GetUserMasterBudgets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.MasterBudget], error)
	UpdateMasterBudget(userID, masterBudgetID uint, name string, amount *float64, description *string) (*models.MasterBudget, error)
	DeleteMasterBudget(userID, masterBudgetID uint) error
	AddMasterBudgetsToMonth(userID, monthID uint, masterBudgetIDs []uint) (*PropagationResult, error)
	GetMasterBudgetHistory(userID, masterBudgetID uint, page pagination.PageRequest) (*pagination.PageResponse[models.MasterBudgetHistoryEntry], error)
	ApplyDefaultMasterBudgets(userID uint) (int, error)
}

// BudgetDeviation reports how far a budget amount diverges from its master
// template. DeviationPercent is zero when the master amount is zero.
type BudgetDeviation struct {
	Deviation        float64 `json:"deviation"`
	DeviationPercent float64 `json:"deviation_percent"`
}

// BudgetUpdate is a partial patch for a budget. Nil fields are left alone.
type BudgetUpdate struct {
	Name           *string
	Amount         *float64
	Description    *string
	OverrideReason *string
}

// BudgetServicer defines the contract for month-scoped budget lines.
type BudgetServicer interface {
	CreateBudget(userID, monthID uint, name string, amount float64, description string, masterBudgetID *uint) (*models.Budget, error)
	GetBudgetByID(userID, budgetID uint) (*models.Budget, error)
	GetMonthBudgets(userID, monthID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	UpdateBudget(userID, budgetID uint, patch BudgetUpdate) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
	GetBudgetSummary(userID, budgetID uint) (*validation.BudgetSummary, error)
	GetBudgetDeviation(userID, budgetID uint) (*BudgetDeviation, error)
	GetBudgetHistory(userID, budgetID uint, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetHistoryEntry], error)
}

// ExpenseServicer defines the contract for expenses inside budgets.
type ExpenseServicer interface {
	CreateExpense(userID, budgetID uint, name string, amount float64, date time.Time, goalID *uint, isRecurring bool, frequency *models.Frequency, notes string) (*models.Expense, error)
	GetExpenseByID(userID, expenseID uint) (*models.Expense, error)
	GetBudgetExpenses(userID, budgetID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	UpdateExpense(userID, expenseID uint, name string, amount *float64, date *time.Time, notes *string) (*models.Expense, error)
	DeleteExpense(userID, expenseID uint) error
}

// GoalUpdate is a partial patch for a financial goal.
type GoalUpdate struct {
	Name         *string
	Description  *string
	TargetAmount *float64
	BaseAmount   *float64
	StartDate    *time.Time
	EndDate      *time.Time
	Priority     *models.GoalPriority
}

// GoalServicer defines the contract for the goal ledger: goals, sub-goals,
// and the contribution/drawdown movements that drive a goal's balance.
type GoalServicer interface {
	CreateGoal(userID uint, name, description string, targetAmount, currentAmount float64, startDate time.Time, endDate *time.Time, priority models.GoalPriority) (*models.FinancialGoal, error)
	GetGoalByID(userID, goalID uint) (*models.FinancialGoal, error)
	GetUserGoals(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.FinancialGoal], error)
	UpdateGoal(userID, goalID uint, patch GoalUpdate) (*models.FinancialGoal, error)
	DeleteGoal(userID, goalID uint) error

	CreateSubGoal(userID, goalID uint, name string, progress float64, startDate, endDate *time.Time) (*models.FinancialSubGoal, error)
	UpdateSubGoal(userID, subGoalID uint, name string, progress *float64, startDate, endDate *time.Time) (*models.FinancialSubGoal, error)
	DeleteSubGoal(userID, subGoalID uint) error

	ApplyContribution(userID, goalID uint, amount float64, date time.Time, note string) (*models.GoalContribution, error)
	ApplyDrawdown(userID, goalID uint, amount float64, date time.Time, details TransferDetails) (*models.Transfer, error)
	CurrentBalance(userID, goalID uint) (float64, error)
}

// TransferFilter holds optional filter parameters for listing transfers.
type TransferFilter struct {
	Type     *models.TransferType
	FromDate *time.Time
	ToDate   *time.Time
	GoalID   *uint
	BudgetID *uint
}

// TransferDetails carries the optional descriptive fields of a transfer.
type TransferDetails struct {
	Description   string
	Notes         string
	PaymentMethod string
}

// TransferServicer coordinates money movements between budgets and goals.
// Every operation re-checks the source balance inside the same database
// transaction that writes the transfer row.
type TransferServicer interface {
	BudgetToBudget(userID, fromBudgetID, toBudgetID uint, amount float64, date time.Time, details TransferDetails) (*models.Transfer, error)
	GoalToBudget(userID, goalID, toBudgetID uint, amount float64, date time.Time, details TransferDetails) (*models.Transfer, error)
	GoalDrawdown(userID, goalID uint, amount float64, date time.Time, details TransferDetails) (*models.Transfer, error)
	GetUserTransfers(userID uint, page pagination.PageRequest, filter TransferFilter) (*pagination.PageResponse[models.Transfer], error)
}

// BatchError names a subscription that could not be converted and why.
type BatchError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// BatchResult is the partial-success outcome of a subscription-to-budget
// conversion. It is returned even when some items fail.
type BatchResult struct {
	Created int          `json:"created"`
	Skipped int          `json:"skipped"`
	Errors  []BatchError `json:"errors"`
}

// SubscriptionServicer defines the contract for subscriptions and their
// projection into month budgets.
type SubscriptionServicer interface {
	CreateSubscription(userID uint, name string, amount float64, frequency models.Frequency, status models.SubscriptionStatus, nextBillingDate *time.Time, description string) (*models.Subscription, error)
	GetSubscriptionByID(userID, subscriptionID uint) (*models.Subscription, error)
	GetUserSubscriptions(userID uint, page pagination.PageRequest, status *models.SubscriptionStatus) (*pagination.PageResponse[models.Subscription], error)
	UpdateSubscription(userID, subscriptionID uint, name string, amount *float64, frequency *models.Frequency, status *models.SubscriptionStatus, nextBillingDate *time.Time, description *string) (*models.Subscription, error)
	DeleteSubscription(userID, subscriptionID uint) error
	GetByDateRange(userID uint, start, end time.Time, status models.SubscriptionStatus) ([]models.Subscription, error)
	CreateBudgetsFromSubscriptions(userID, monthID uint, start, end time.Time, subscriptionIDs []uint) (*BatchResult, error)
}
