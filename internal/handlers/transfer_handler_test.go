package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/services"
)

// --- mock transfer service ---

type mockTransferService struct {
	budgetToBudgetFn   func(userID, fromBudgetID, toBudgetID uint, amount float64, date time.Time, details services.TransferDetails) (*models.Transfer, error)
	goalToBudgetFn     func(userID, goalID, toBudgetID uint, amount float64, date time.Time, details services.TransferDetails) (*models.Transfer, error)
	goalDrawdownFn     func(userID, goalID uint, amount float64, date time.Time, details services.TransferDetails) (*models.Transfer, error)
	getUserTransfersFn func(userID uint, page pagination.PageRequest, filter services.TransferFilter) (*pagination.PageResponse[models.Transfer], error)
}

func (m *mockTransferService) BudgetToBudget(userID, fromBudgetID, toBudgetID uint, amount float64, date time.Time, details services.TransferDetails) (*models.Transfer, error) {
	if m.budgetToBudgetFn != nil {
		return m.budgetToBudgetFn(userID, fromBudgetID, toBudgetID, amount, date, details)
	}
	return &models.Transfer{}, nil
}

func (m *mockTransferService) GoalToBudget(userID, goalID, toBudgetID uint, amount float64, date time.Time, details services.TransferDetails) (*models.Transfer, error) {
	if m.goalToBudgetFn != nil {
		return m.goalToBudgetFn(userID, goalID, toBudgetID, amount, date, details)
	}
	return &models.Transfer{}, nil
}

func (m *mockTransferService) GoalDrawdown(userID, goalID uint, amount float64, date time.Time, details services.TransferDetails) (*models.Transfer, error) {
	if m.goalDrawdownFn != nil {
		return m.goalDrawdownFn(userID, goalID, amount, date, details)
	}
	return &models.Transfer{}, nil
}

func (m *mockTransferService) GetUserTransfers(userID uint, page pagination.PageRequest, filter services.TransferFilter) (*pagination.PageResponse[models.Transfer], error) {
	if m.getUserTransfersFn != nil {
		return m.getUserTransfersFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transfer{}, 1, 20, 0)
	return &resp, nil
}

var _ services.TransferServicer = (*mockTransferService)(nil)

func setupTransferRouter(handler *TransferHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/transfers", handler.CreateTransfer)
	auth.GET("/transfers", handler.GetTransfers)
	return r
}

func TestTransferHandler_CreateTransfer(t *testing.T) {
	t.Run("budget to budget returns 201", func(t *testing.T) {
		svc := &mockTransferService{
			budgetToBudgetFn: func(_ uint, fromBudgetID, toBudgetID uint, amount float64, date time.Time, _ services.TransferDetails) (*models.Transfer, error) {
				return &models.Transfer{
					AppendOnlyBase: models.AppendOnlyBase{ID: 1},
					UserID:         1,
					Type:           models.TransferTypeBudgetToBudget,
					Amount:         amount,
					Date:           date,
					FromBudgetID:   &fromBudgetID,
					ToBudgetID:     &toBudgetID,
				}, nil
			},
		}
		handler := NewTransferHandler(svc)
		r := setupTransferRouter(handler)

		rec := doRequest(r, "POST", "/transfers",
			`{"type":"budget_to_budget","amount":150,"date":"2026-06-10T00:00:00Z","from_budget_id":1,"to_budget_id":2}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		transfer := result["transfer"].(map[string]interface{})
		if transfer["type"] != string(models.TransferTypeBudgetToBudget) {
			t.Errorf("expected budget_to_budget, got %v", transfer["type"])
		}
	})

	t.Run("budget to budget requires both budget IDs", func(t *testing.T) {
		handler := NewTransferHandler(&mockTransferService{})
		r := setupTransferRouter(handler)

		rec := doRequest(r, "POST", "/transfers",
			`{"type":"budget_to_budget","amount":150,"date":"2026-06-10T00:00:00Z","from_budget_id":1}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("goal to budget returns 201", func(t *testing.T) {
		svc := &mockTransferService{
			goalToBudgetFn: func(_ uint, goalID, toBudgetID uint, amount float64, date time.Time, _ services.TransferDetails) (*models.Transfer, error) {
				return &models.Transfer{
					AppendOnlyBase: models.AppendOnlyBase{ID: 2},
					UserID:         1,
					Type:           models.TransferTypeGoalToBudget,
					Amount:         amount,
					Date:           date,
					GoalID:         &goalID,
					ToBudgetID:     &toBudgetID,
				}, nil
			},
		}
		handler := NewTransferHandler(svc)
		r := setupTransferRouter(handler)

		rec := doRequest(r, "POST", "/transfers",
			`{"type":"goal_to_budget","amount":300,"date":"2026-06-10T00:00:00Z","goal_id":1,"to_budget_id":2}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("goal to budget requires goal and destination", func(t *testing.T) {
		handler := NewTransferHandler(&mockTransferService{})
		r := setupTransferRouter(handler)

		rec := doRequest(r, "POST", "/transfers",
			`{"type":"goal_to_budget","amount":300,"date":"2026-06-10T00:00:00Z","goal_id":1}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("goal drawdown requires goal ID", func(t *testing.T) {
		handler := NewTransferHandler(&mockTransferService{})
		r := setupTransferRouter(handler)

		rec := doRequest(r, "POST", "/transfers",
			`{"type":"goal_drawdown","amount":100,"date":"2026-06-10T00:00:00Z"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		handler := NewTransferHandler(&mockTransferService{})
		r := setupTransferRouter(handler)

		rec := doRequest(r, "POST", "/transfers",
			`{"type":"budget_to_goal","amount":100,"date":"2026-06-10T00:00:00Z"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on same budget transfer", func(t *testing.T) {
		svc := &mockTransferService{
			budgetToBudgetFn: func(_ uint, _, _ uint, _ float64, _ time.Time, _ services.TransferDetails) (*models.Transfer, error) {
				return nil, apperrors.ErrSameBudgetTransfer
			},
		}
		handler := NewTransferHandler(svc)
		r := setupTransferRouter(handler)

		rec := doRequest(r, "POST", "/transfers",
			`{"type":"budget_to_budget","amount":150,"date":"2026-06-10T00:00:00Z","from_budget_id":1,"to_budget_id":1}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "SAME_BUDGET_TRANSFER")
	})

	t.Run("returns 422 when source has insufficient funds", func(t *testing.T) {
		svc := &mockTransferService{
			budgetToBudgetFn: func(_ uint, _, _ uint, _ float64, _ time.Time, _ services.TransferDetails) (*models.Transfer, error) {
				return nil, apperrors.NewOverspending(`Cannot spend €500.00 in "Groceries": only €250.00 available, over by €250.00`)
			},
		}
		handler := NewTransferHandler(svc)
		r := setupTransferRouter(handler)

		rec := doRequest(r, "POST", "/transfers",
			`{"type":"budget_to_budget","amount":500,"date":"2026-06-10T00:00:00Z","from_budget_id":1,"to_budget_id":2}`)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "OVERSPENDING")
	})
}

func TestTransferHandler_GetTransfers(t *testing.T) {
	t.Run("returns 200 with paginated transfers", func(t *testing.T) {
		svc := &mockTransferService{
			getUserTransfersFn: func(_ uint, _ pagination.PageRequest, _ services.TransferFilter) (*pagination.PageResponse[models.Transfer], error) {
				resp := pagination.NewPageResponse([]models.Transfer{
					{AppendOnlyBase: models.AppendOnlyBase{ID: 1}, Type: models.TransferTypeBudgetToBudget},
					{AppendOnlyBase: models.AppendOnlyBase{ID: 2}, Type: models.TransferTypeGoalToBudget},
				}, 1, 20, 2)
				return &resp, nil
			},
		}
		handler := NewTransferHandler(svc)
		r := setupTransferRouter(handler)

		rec := doRequest(r, "GET", "/transfers", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		data := result["data"].([]interface{})
		if len(data) != 2 {
			t.Errorf("expected 2 transfers, got %d", len(data))
		}
	})

	t.Run("passes filters to service", func(t *testing.T) {
		var captured services.TransferFilter
		svc := &mockTransferService{
			getUserTransfersFn: func(_ uint, _ pagination.PageRequest, filter services.TransferFilter) (*pagination.PageResponse[models.Transfer], error) {
				captured = filter
				resp := pagination.NewPageResponse([]models.Transfer{}, 1, 20, 0)
				return &resp, nil
			},
		}
		handler := NewTransferHandler(svc)
		r := setupTransferRouter(handler)

		doRequest(r, "GET", "/transfers?type=goal_to_budget&goal_id=7&from_date=2026-06-01&to_date=2026-06-30", "")

		if captured.Type == nil || *captured.Type != models.TransferTypeGoalToBudget {
			t.Error("expected type filter to be passed")
		}
		if captured.GoalID == nil || *captured.GoalID != 7 {
			t.Error("expected goal_id filter to be passed")
		}
		if captured.FromDate == nil || captured.FromDate.Format("2006-01-02") != "2026-06-01" {
			t.Error("expected from_date filter to be passed")
		}
		if captured.ToDate == nil || captured.ToDate.Format("2006-01-02") != "2026-06-30" {
			t.Error("expected to_date filter to be passed")
		}
	})

	t.Run("returns 400 on invalid type filter", func(t *testing.T) {
		handler := NewTransferHandler(&mockTransferService{})
		r := setupTransferRouter(handler)

		rec := doRequest(r, "GET", "/transfers?type=wire", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}
