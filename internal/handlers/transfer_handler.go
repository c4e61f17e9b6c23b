package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/services"
)

// TransferHandler handles money movement requests.
type TransferHandler struct {
	transferService services.TransferServicer
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferService services.TransferServicer) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// CreateTransferRequest is the payload for moving money between budgets and
// goals. Which source and destination fields are required depends on the type.
type CreateTransferRequest struct {
	Type          models.TransferType `json:"type" binding:"required,transfer_type"`
	Amount        float64             `json:"amount" binding:"required,gt=0"`
	Date          time.Time           `json:"date" binding:"required"`
	FromBudgetID  *uint               `json:"from_budget_id"`
	ToBudgetID    *uint               `json:"to_budget_id"`
	GoalID        *uint               `json:"goal_id"`
	Description   string              `json:"description" binding:"omitempty,max=200"`
	Notes         string              `json:"notes" binding:"omitempty,max=500"`
	PaymentMethod string              `json:"payment_method" binding:"omitempty,max=50"`
}

// TransferFilterRequest holds the query parameters for listing transfers.
type TransferFilterRequest struct {
	Type     *models.TransferType `form:"type" binding:"omitempty,transfer_type"`
	FromDate *time.Time           `form:"from_date" time_format:"2006-01-02"`
	ToDate   *time.Time           `form:"to_date" time_format:"2006-01-02"`
	GoalID   *uint                `form:"goal_id"`
	BudgetID *uint                `form:"budget_id"`
}

// CreateTransfer executes a transfer of the requested type.
func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	details := services.TransferDetails{
		Description:   req.Description,
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
	}

	var transfer *models.Transfer
	switch req.Type {
	case models.TransferTypeBudgetToBudget:
		if req.FromBudgetID == nil || req.ToBudgetID == nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_budget_id and to_budget_id are required for budget transfers"))
			return
		}
		transfer, err = h.transferService.BudgetToBudget(userID, *req.FromBudgetID, *req.ToBudgetID, req.Amount, req.Date, details)
	case models.TransferTypeGoalToBudget:
		if req.GoalID == nil || req.ToBudgetID == nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal_id and to_budget_id are required for goal transfers"))
			return
		}
		transfer, err = h.transferService.GoalToBudget(userID, *req.GoalID, *req.ToBudgetID, req.Amount, req.Date, details)
	case models.TransferTypeGoalDrawdown:
		if req.GoalID == nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal_id is required for drawdowns"))
			return
		}
		transfer, err = h.transferService.GoalDrawdown(userID, *req.GoalID, req.Amount, req.Date, details)
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown transfer type"))
		return
	}
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transfer": transfer})
}

// GetTransfers lists the user's transfers with optional filters.
func (h *TransferHandler) GetTransfers(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter TransferFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transferService.GetUserTransfers(userID, page, services.TransferFilter{
		Type:     filter.Type,
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
		GoalID:   filter.GoalID,
		BudgetID: filter.BudgetID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
