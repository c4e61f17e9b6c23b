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

// GoalHandler handles financial goal requests.
type GoalHandler struct {
	goalService services.GoalServicer
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService services.GoalServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// CreateGoalRequest is the payload for creating a financial goal.
type CreateGoalRequest struct {
	Name          string              `json:"name" binding:"required,min=1,max=100"`
	Description   string              `json:"description" binding:"omitempty,max=500"`
	TargetAmount  float64             `json:"target_amount" binding:"required,gt=0"`
	CurrentAmount float64             `json:"current_amount" binding:"omitempty,gte=0"`
	StartDate     time.Time           `json:"start_date" binding:"required"`
	EndDate       *time.Time          `json:"end_date"`
	Priority      models.GoalPriority `json:"priority" binding:"omitempty,goal_priority"`
}

// UpdateGoalRequest is the payload for updating a financial goal.
type UpdateGoalRequest struct {
	Name         *string              `json:"name" binding:"omitempty,min=1,max=100"`
	Description  *string              `json:"description" binding:"omitempty,max=500"`
	TargetAmount *float64             `json:"target_amount" binding:"omitempty,gt=0"`
	BaseAmount   *float64             `json:"base_amount" binding:"omitempty,gte=0"`
	StartDate    *time.Time           `json:"start_date"`
	EndDate      *time.Time           `json:"end_date"`
	Priority     *models.GoalPriority `json:"priority" binding:"omitempty,goal_priority"`
}

// SubGoalRequest is the payload for creating or updating a sub-goal.
type SubGoalRequest struct {
	Name      string     `json:"name" binding:"required,min=1,max=100"`
	Progress  float64    `json:"progress" binding:"gte=0,lte=100"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// UpdateSubGoalRequest is the payload for updating a sub-goal.
type UpdateSubGoalRequest struct {
	Name      string     `json:"name" binding:"omitempty,min=1,max=100"`
	Progress  *float64   `json:"progress" binding:"omitempty,gte=0,lte=100"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// ContributionRequest is the payload for recording a goal contribution.
type ContributionRequest struct {
	Amount float64   `json:"amount" binding:"required,gt=0"`
	Date   time.Time `json:"date" binding:"required"`
	Note   string    `json:"note" binding:"omitempty,max=500"`
}

// DrawdownRequest is the payload for withdrawing from a goal without a
// destination budget.
type DrawdownRequest struct {
	Amount        float64   `json:"amount" binding:"required,gt=0"`
	Date          time.Time `json:"date" binding:"required"`
	Description   string    `json:"description" binding:"omitempty,max=200"`
	Notes         string    `json:"notes" binding:"omitempty,max=500"`
	PaymentMethod string    `json:"payment_method" binding:"omitempty,max=50"`
}

// CreateGoal creates a new financial goal.
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.CreateGoal(
		userID, req.Name, req.Description, req.TargetAmount, req.CurrentAmount,
		req.StartDate, req.EndDate, req.Priority,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// GetGoals lists the user's goals.
func (h *GoalHandler) GetGoals(c *gin.Context) {
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

	result, err := h.goalService.GetUserGoals(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetGoal returns a single goal with its sub-goals and current balance.
func (h *GoalHandler) GetGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoalByID(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// UpdateGoal updates a goal.
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.UpdateGoal(userID, goalID, services.GoalUpdate{
		Name:         req.Name,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		BaseAmount:   req.BaseAmount,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Priority:     req.Priority,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// DeleteGoal removes a goal and its sub-goals.
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(userID, goalID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted"})
}

// GetGoalBalance returns the derived balance of a goal.
func (h *GoalHandler) GetGoalBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.goalService.CurrentBalance(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// CreateSubGoal adds a sub-goal to a goal.
func (h *GoalHandler) CreateSubGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SubGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	subGoal, err := h.goalService.CreateSubGoal(userID, goalID, req.Name, req.Progress, req.StartDate, req.EndDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"sub_goal": subGoal})
}

// UpdateSubGoal updates a sub-goal.
func (h *GoalHandler) UpdateSubGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	subGoalID, err := parsePathID(c, "subGoalID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSubGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	subGoal, err := h.goalService.UpdateSubGoal(userID, subGoalID, req.Name, req.Progress, req.StartDate, req.EndDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sub_goal": subGoal})
}

// DeleteSubGoal removes a sub-goal.
func (h *GoalHandler) DeleteSubGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	subGoalID, err := parsePathID(c, "subGoalID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteSubGoal(userID, subGoalID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sub-goal deleted"})
}

// CreateContribution records a contribution to a goal.
func (h *GoalHandler) CreateContribution(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	contribution, err := h.goalService.ApplyContribution(userID, goalID, req.Amount, req.Date, req.Note)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"contribution": contribution})
}

// CreateDrawdown withdraws money from a goal without routing it into a budget.
func (h *GoalHandler) CreateDrawdown(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DrawdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transfer, err := h.goalService.ApplyDrawdown(userID, goalID, req.Amount, req.Date, services.TransferDetails{
		Description:   req.Description,
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transfer": transfer})
}
