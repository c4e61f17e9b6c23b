package main

import (
	"fmt"
	"net/http"
	"os"

	"hearth/internal/config"
	"hearth/internal/database"
	"hearth/internal/handlers"
	"hearth/internal/logger"
	"hearth/internal/middleware"
	"hearth/internal/services"
	"hearth/internal/validator"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	monthService := services.NewMonthService(db)
	masterBudgetService := services.NewMasterBudgetService(db)
	budgetService := services.NewBudgetService(db)
	expenseService := services.NewExpenseService(db, budgetService)
	goalService := services.NewGoalService(db)
	transferService := services.NewTransferService(db, budgetService, goalService)
	subscriptionService := services.NewSubscriptionService(db, budgetService)

	// Initialize handlers
	monthHandler := handlers.NewMonthHandler(monthService)
	masterBudgetHandler := handlers.NewMasterBudgetHandler(masterBudgetService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	goalHandler := handlers.NewGoalHandler(goalService)
	transferHandler := handlers.NewTransferHandler(transferService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group, all routes require a valid token
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware())

	// Monthly overview routes
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

	// Income source routes
	incomeSources := v1.Group("/income-sources")
	incomeSources.PUT("/:id", monthHandler.UpdateIncomeSource)
	incomeSources.DELETE("/:id", monthHandler.DeleteIncomeSource)

	// Master budget routes
	masterBudgets := v1.Group("/master-budgets")
	masterBudgets.POST("", masterBudgetHandler.CreateMasterBudget)
	masterBudgets.GET("", masterBudgetHandler.GetMasterBudgets)
	masterBudgets.GET("/:id", masterBudgetHandler.GetMasterBudget)
	masterBudgets.PUT("/:id", masterBudgetHandler.UpdateMasterBudget)
	masterBudgets.DELETE("/:id", masterBudgetHandler.DeleteMasterBudget)
	masterBudgets.GET("/:id/history", masterBudgetHandler.GetHistory)
	masterBudgets.POST("/defaults", masterBudgetHandler.ApplyDefaults)

	// Budget routes
	budgets := v1.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.GET("/:id/summary", budgetHandler.GetBudgetSummary)
	budgets.GET("/:id/deviation", budgetHandler.GetBudgetDeviation)
	budgets.GET("/:id/history", budgetHandler.GetBudgetHistory)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/expenses", expenseHandler.GetBudgetExpenses)

	// Expense routes
	expenses := v1.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	// Goal routes
	goals := v1.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.GET("/:id/balance", goalHandler.GetGoalBalance)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.POST("/:id/sub-goals", goalHandler.CreateSubGoal)
	goals.POST("/:id/contributions", goalHandler.CreateContribution)
	goals.POST("/:id/drawdowns", goalHandler.CreateDrawdown)

	// Sub-goal routes
	subGoals := v1.Group("/sub-goals")
	subGoals.PUT("/:subGoalID", goalHandler.UpdateSubGoal)
	subGoals.DELETE("/:subGoalID", goalHandler.DeleteSubGoal)

	// Transfer routes
	transfers := v1.Group("/transfers")
	transfers.POST("", transferHandler.CreateTransfer)
	transfers.GET("", transferHandler.GetTransfers)

	// Subscription routes
	subscriptions := v1.Group("/subscriptions")
	subscriptions.POST("", subscriptionHandler.CreateSubscription)
	subscriptions.GET("", subscriptionHandler.GetSubscriptions)
	subscriptions.GET("/:id", subscriptionHandler.GetSubscription)
	subscriptions.PUT("/:id", subscriptionHandler.UpdateSubscription)
	subscriptions.DELETE("/:id", subscriptionHandler.DeleteSubscription)
	subscriptions.POST("/convert-to-budgets", subscriptionHandler.ConvertToBudgets)

	log.Infof("Starting Hearth backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
