package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/services"
	"hearth/internal/validation"
)

// --- mock budget service ---

type mockBudgetService struct {
	createBudgetFn       func(userID, monthID uint, name string, amount float64, description string, masterBudgetID *uint) (*models.Budget, error)
	getBudgetByIDFn      func(userID, budgetID uint) (*models.Budget, error)
	getMonthBudgetsFn    func(userID, monthID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	updateBudgetFn       func(userID, budgetID uint, patch services.BudgetUpdate) (*models.Budget, error)
	deleteBudgetFn       func(userID, budgetID uint) error
	getBudgetSummaryFn   func(userID, budgetID uint) (*validation.BudgetSummary, error)
	getBudgetDeviationFn func(userID, budgetID uint) (*services.BudgetDeviation, error)
	getBudgetHistoryFn   func(userID, budgetID uint, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetHistoryEntry], error)
}

func (m *mockBudgetService) CreateBudget(userID, monthID uint, name string, amount float64, description string, masterBudgetID *uint) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(userID, monthID, name, amount, description, masterBudgetID)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	if m.getBudgetByIDFn != nil {
		return m.getBudgetByIDFn(userID, budgetID)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetMonthBudgets(userID, monthID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	if m.getMonthBudgetsFn != nil {
		return m.getMonthBudgetsFn(userID, monthID, page)
	}
	resp := pagination.NewPageResponse([]models.Budget{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockBudgetService) UpdateBudget(userID, budgetID uint, patch services.BudgetUpdate) (*models.Budget, error) {
	if m.updateBudgetFn != nil {
		return m.updateBudgetFn(userID, budgetID, patch)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(userID, budgetID uint) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(userID, budgetID)
	}
	return nil
}

func (m *mockBudgetService) GetBudgetSummary(userID, budgetID uint) (*validation.BudgetSummary, error) {
	if m.getBudgetSummaryFn != nil {
		return m.getBudgetSummaryFn(userID, budgetID)
	}
	return &validation.BudgetSummary{}, nil
}

func (m *mockBudgetService) GetBudgetDeviation(userID, budgetID uint) (*services.BudgetDeviation, error) {
	if m.getBudgetDeviationFn != nil {
		return m.getBudgetDeviationFn(userID, budgetID)
	}
	return &services.BudgetDeviation{}, nil
}

func (m *mockBudgetService) GetBudgetHistory(userID, budgetID uint, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetHistoryEntry], error) {
	if m.getBudgetHistoryFn != nil {
		return m.getBudgetHistoryFn(userID, budgetID, page)
	}
	resp := pagination.NewPageResponse([]models.BudgetHistoryEntry{}, 1, 20, 0)
	return &resp, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/budgets", handler.CreateBudget)
	auth.GET("/budgets/:id", handler.GetBudget)
	auth.GET("/budgets/:id/summary", handler.GetBudgetSummary)
	auth.GET("/budgets/:id/deviation", handler.GetBudgetDeviation)
	auth.GET("/budgets/:id/history", handler.GetBudgetHistory)
	auth.PUT("/budgets/:id", handler.UpdateBudget)
	auth.DELETE("/budgets/:id", handler.DeleteBudget)
	auth.GET("/months/:id/budgets", handler.GetMonthBudgets)
	return r
}

func TestBudgetHandler_CreateBudget(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockBudgetService{
			createBudgetFn: func(_ uint, monthID uint, name string, amount float64, _ string, _ *uint) (*models.Budget, error) {
				return &models.Budget{
					Base:              models.Base{ID: 1},
					UserID:            1,
					MonthlyOverviewID: monthID,
					Name:              name,
					Amount:            amount,
				}, nil
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets",
			`{"monthly_overview_id":1,"name":"Groceries","amount":500}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		budget := result["budget"].(map[string]interface{})
		if budget["name"] != "Groceries" {
			t.Errorf("expected Groceries, got %v", budget["name"])
		}
		if budget["amount"].(float64) != 500 {
			t.Errorf("expected amount 500, got %v", budget["amount"])
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets", `{"monthly_overview_id":1,"amount":500}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on negative amount", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets",
			`{"monthly_overview_id":1,"name":"Groceries","amount":-10}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 on unknown month", func(t *testing.T) {
		svc := &mockBudgetService{
			createBudgetFn: func(_, _ uint, _ string, _ float64, _ string, _ *uint) (*models.Budget, error) {
				return nil, apperrors.ErrMonthNotFound
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets",
			`{"monthly_overview_id":999,"name":"Groceries","amount":500}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "MONTH_NOT_FOUND")
	})

	t.Run("returns 404 on unknown master budget", func(t *testing.T) {
		svc := &mockBudgetService{
			createBudgetFn: func(_, _ uint, _ string, _ float64, _ string, _ *uint) (*models.Budget, error) {
				return nil, apperrors.ErrMasterBudgetNotFound
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets",
			`{"monthly_overview_id":1,"name":"Groceries","amount":500,"master_budget_id":999}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "MASTER_BUDGET_NOT_FOUND")
	})
}

func TestBudgetHandler_GetMonthBudgets(t *testing.T) {
	t.Run("returns 200 with paginated budgets", func(t *testing.T) {
		svc := &mockBudgetService{
			getMonthBudgetsFn: func(_, _ uint, _ pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
				resp := pagination.NewPageResponse([]models.Budget{
					{Base: models.Base{ID: 1}, Name: "Groceries"},
					{Base: models.Base{ID: 2}, Name: "Rent"},
				}, 1, 20, 2)
				return &resp, nil
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/months/1/budgets", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		data := result["data"].([]interface{})
		if len(data) != 2 {
			t.Errorf("expected 2 budgets, got %d", len(data))
		}
	})

	t.Run("returns 404 when month not found", func(t *testing.T) {
		svc := &mockBudgetService{
			getMonthBudgetsFn: func(_, _ uint, _ pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
				return nil, apperrors.ErrMonthNotFound
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/months/999/budgets", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_UpdateBudget(t *testing.T) {
	t.Run("returns 200 and passes patch through", func(t *testing.T) {
		var captured services.BudgetUpdate
		svc := &mockBudgetService{
			updateBudgetFn: func(_, budgetID uint, patch services.BudgetUpdate) (*models.Budget, error) {
				captured = patch
				b := &models.Budget{Base: models.Base{ID: budgetID}, Name: "Groceries"}
				if patch.Amount != nil {
					b.Amount = *patch.Amount
				}
				return b, nil
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "PUT", "/budgets/1",
			`{"amount":650,"override_reason":"Hosting a birthday dinner"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.Amount == nil || *captured.Amount != 650 {
			t.Error("expected amount=650 to be passed")
		}
		if captured.OverrideReason == nil || *captured.OverrideReason != "Hosting a birthday dinner" {
			t.Error("expected override reason to be passed")
		}
	})

	t.Run("returns 400 when override reason is required", func(t *testing.T) {
		svc := &mockBudgetService{
			updateBudgetFn: func(_, _ uint, _ services.BudgetUpdate) (*models.Budget, error) {
				return nil, apperrors.ErrOverrideReason
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "PUT", "/budgets/1", `{"amount":650}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "OVERRIDE_REASON_REQUIRED")
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockBudgetService{
			updateBudgetFn: func(_, _ uint, _ services.BudgetUpdate) (*models.Budget, error) {
				return nil, apperrors.ErrBudgetNotFound
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "PUT", "/budgets/999", `{"name":"Renamed"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
	})
}

func TestBudgetHandler_DeleteBudget(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "DELETE", "/budgets/1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["message"] != "Budget deleted" {
			t.Errorf("unexpected message: %v", result["message"])
		}
	})

	t.Run("returns 400 on invalid ID", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "DELETE", "/budgets/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_GetBudgetSummary(t *testing.T) {
	t.Run("returns 200 with summary", func(t *testing.T) {
		svc := &mockBudgetService{
			getBudgetSummaryFn: func(_, _ uint) (*validation.BudgetSummary, error) {
				return &validation.BudgetSummary{
					AmountSpent: 100,
					AmountLeft:  100,
					PercentUsed: 50,
				}, nil
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/1/summary", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		summary := result["summary"].(map[string]interface{})
		if summary["amount_spent"].(float64) != 100 {
			t.Errorf("expected amount_spent=100, got %v", summary["amount_spent"])
		}
		if summary["percent_used"].(float64) != 50 {
			t.Errorf("expected percent_used=50, got %v", summary["percent_used"])
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockBudgetService{
			getBudgetSummaryFn: func(_, _ uint) (*validation.BudgetSummary, error) {
				return nil, apperrors.ErrBudgetNotFound
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/999/summary", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
	})
}

func TestBudgetHandler_GetBudgetDeviation(t *testing.T) {
	t.Run("returns 200 with deviation", func(t *testing.T) {
		svc := &mockBudgetService{
			getBudgetDeviationFn: func(_, _ uint) (*services.BudgetDeviation, error) {
				return &services.BudgetDeviation{Deviation: 100, DeviationPercent: 25}, nil
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/1/deviation", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		deviation := result["deviation"].(map[string]interface{})
		if deviation["deviation"].(float64) != 100 {
			t.Errorf("expected deviation=100, got %v", deviation["deviation"])
		}
		if deviation["deviation_percent"].(float64) != 25 {
			t.Errorf("expected deviation_percent=25, got %v", deviation["deviation_percent"])
		}
	})
}

func TestBudgetHandler_GetBudgetHistory(t *testing.T) {
	t.Run("returns 200 with entries", func(t *testing.T) {
		svc := &mockBudgetService{
			getBudgetHistoryFn: func(_, budgetID uint, _ pagination.PageRequest) (*pagination.PageResponse[models.BudgetHistoryEntry], error) {
				resp := pagination.NewPageResponse([]models.BudgetHistoryEntry{
					{BudgetID: budgetID, Action: models.HistoryActionCreated},
					{BudgetID: budgetID, Action: models.HistoryActionUpdated},
				}, 1, 20, 2)
				return &resp, nil
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/1/history", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		data := result["data"].([]interface{})
		if len(data) != 2 {
			t.Errorf("expected 2 history entries, got %d", len(data))
		}
	})
}
