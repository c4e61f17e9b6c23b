package integration

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hearth/internal/config"
	"hearth/internal/handlers"
	"hearth/internal/logger"
	"hearth/internal/middleware"
	"hearth/internal/models"
	"hearth/internal/services"
	"hearth/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
	if _, err := config.Load(); err != nil {
		panic(err)
	}
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.MonthlyOverview{},
		&models.IncomeSource{},
		&models.MasterBudget{},
		&models.FinancialGoal{},
		&models.FinancialSubGoal{},
		&models.Budget{},
		&models.Expense{},
		&models.GoalContribution{},
		&models.Transfer{},
		&models.Subscription{},
		&models.MasterBudgetHistoryEntry{},
		&models.BudgetHistoryEntry{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	monthService := services.NewMonthService(db)
	masterBudgetService := services.NewMasterBudgetService(db)
	budgetService := services.NewBudgetService(db)
	expenseService := services.NewExpenseService(db, budgetService)
	goalService := services.NewGoalService(db)
	transferService := services.NewTransferService(db, budgetService, goalService)
	subscriptionService := services.NewSubscriptionService(db, budgetService)

	// Handlers
	monthHandler := handlers.NewMonthHandler(monthService)
	masterBudgetHandler := handlers.NewMasterBudgetHandler(masterBudgetService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	goalHandler := handlers.NewGoalHandler(goalService)
	transferHandler := handlers.NewTransferHandler(transferService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware())

	months := v1.Group("/months")
	months.POST("", monthHandler.CreateMonth)
	months.GET("", monthHandler.GetMonths)
	months.GET("/:id", monthHandler.GetMonth)
	months.GET("/:id/summary", monthHandler.GetMonthSummary)
	months.PUT("/:id", monthHandler.UpdateMonth)
	months.DELETE("/:id", monthHandler.DeleteMonth)
	months.POST("/:id/income-sources", monthHandler.CreateIncomeSource)
	months.GET("/:id/budgets", budgetHandler.GetMonthBudgets)
	months.POST("/:id/master-budgets", masterBudgetHandler.AddToMonth)

	incomeSources := v1.Group("/income-sources")
	incomeSources.PUT("/:id", monthHandler.UpdateIncomeSource)
	incomeSources.DELETE("/:id", monthHandler.DeleteIncomeSource)

	masterBudgets := v1.Group("/master-budgets")
	masterBudgets.POST("", masterBudgetHandler.CreateMasterBudget)
	masterBudgets.GET("", masterBudgetHandler.GetMasterBudgets)
	masterBudgets.GET("/:id", masterBudgetHandler.GetMasterBudget)
	masterBudgets.PUT("/:id", masterBudgetHandler.UpdateMasterBudget)
	masterBudgets.DELETE("/:id", masterBudgetHandler.DeleteMasterBudget)
	masterBudgets.GET("/:id/history", masterBudgetHandler.GetHistory)
	masterBudgets.POST("/defaults", masterBudgetHandler.ApplyDefaults)

	budgets := v1.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.GET("/:id/summary", budgetHandler.GetBudgetSummary)
	budgets.GET("/:id/deviation", budgetHandler.GetBudgetDeviation)
	budgets.GET("/:id/history", budgetHandler.GetBudgetHistory)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/expenses", expenseHandler.GetBudgetExpenses)

	expenses := v1.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	goals := v1.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.GET("/:id/balance", goalHandler.GetGoalBalance)
	goals.POST("/:id/sub-goals", goalHandler.CreateSubGoal)
	goals.POST("/:id/contributions", goalHandler.CreateContribution)
	goals.POST("/:id/drawdowns", goalHandler.CreateDrawdown)

	subGoals := v1.Group("/sub-goals")
	subGoals.PUT("/:subGoalID", goalHandler.UpdateSubGoal)
	subGoals.DELETE("/:subGoalID", goalHandler.DeleteSubGoal)

	transfers := v1.Group("/transfers")
	transfers.POST("", transferHandler.CreateTransfer)
	transfers.GET("", transferHandler.GetTransfers)

	subscriptions := v1.Group("/subscriptions")
	subscriptions.POST("", subscriptionHandler.CreateSubscription)
	subscriptions.GET("", subscriptionHandler.GetSubscriptions)
	subscriptions.GET("/:id", subscriptionHandler.GetSubscription)
	subscriptions.PUT("/:id", subscriptionHandler.UpdateSubscription)
	subscriptions.DELETE("/:id", subscriptionHandler.DeleteSubscription)
	subscriptions.POST("/convert-to-budgets", subscriptionHandler.ConvertToBudgets)

	return &testApp{DB: db, Router: router}
}

// newUser inserts a user row and mints a bearer token for it. Registration
// lives in the external identity service, so tests seed users directly.
func (app *testApp) newUser(t *testing.T, email string) (token string, userID uint) {
	t.Helper()

	user := &models.User{
		Email:        email,
		PasswordHash: "not-used-here",
		DisplayName:  "Test User",
	}
	if err := app.DB.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	token, err := middleware.SignToken(user.ID, email, time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token, user.ID
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// almostEqual compares money amounts to the cent.
func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// createMonth creates a June 2026 overview and returns its ID.
func (app *testApp) createMonth(t *testing.T, token string) float64 {
	t.Helper()
	rec := app.request("POST", "/api/v1/months",
		`{"name":"June 2026","start_date":"2026-06-01T00:00:00Z","end_date":"2026-06-30T23:59:59Z"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating month failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["month"].(map[string]interface{})["id"].(float64)
}

// createBudget creates a budget in the given month and returns its ID.
func (app *testApp) createBudget(t *testing.T, token string, monthID float64, name string, amount float64) float64 {
	t.Helper()
	rec := app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"monthly_overview_id":%.0f,"name":%q,"amount":%g}`, monthID, name, amount), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating budget failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["budget"].(map[string]interface{})["id"].(float64)
}
